// Package export renders flat report rows as downloadable files.
package export

import (
	"bufio"
	"io"
	"strings"

	"finsight/internal/core"
	"finsight/internal/report"
)

const dateLayout = "2006-01-02"

// Header is the fixed column order of every export.
var Header = []string{"Date", "Title", "Type", "Amount"}

// WriteCSV writes all rows, uncapped. Title and Type are always quoted
// with embedded quotes doubled; Amount carries two decimals.
func WriteCSV(w io.Writer, rows []report.FlatRow) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(strings.Join(Header, ",") + "\n"); err != nil {
		return err
	}
	for _, r := range rows {
		line := r.Date.Format(dateLayout) + "," +
			quote(r.Label) + "," +
			quote(string(r.Type)) + "," +
			core.FormatAmount(r.SignedAmount) + "\n"
		if _, err := bw.WriteString(line); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
