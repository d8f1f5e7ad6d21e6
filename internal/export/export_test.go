package export

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"finsight/internal/core"
	"finsight/internal/report"
)

func row(day int, label string, kind core.Kind, amount string) report.FlatRow {
	return report.FlatRow{
		Date:         time.Date(2024, 1, day, 0, 0, 0, 0, time.UTC),
		Label:        label,
		Type:         kind,
		SignedAmount: decimal.RequireFromString(amount),
	}
}

func TestWriteCSV(t *testing.T) {
	rows := []report.FlatRow{
		row(20, `Lunch "deluxe"`, core.Expense, "-40"),
		row(15, "Salary, January", core.Income, "100.5"),
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, rows))

	want := "Date,Title,Type,Amount\n" +
		`2024-01-20,"Lunch ""deluxe""","expense",-40.00` + "\n" +
		`2024-01-15,"Salary, January","income",100.50` + "\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteCSVIsUncapped(t *testing.T) {
	var rows []report.FlatRow
	for i := 0; i < 120; i++ {
		rows = append(rows, row(i%28+1, fmt.Sprintf("r%d", i), core.Expense, "-1"))
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, rows))

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	assert.Len(t, lines, 121)
	assert.Greater(t, len(rows), report.DisplayLimit)
}

func TestWriteCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))
	assert.Equal(t, "Date,Title,Type,Amount\n", buf.String())
}

func TestWriteXLSX(t *testing.T) {
	rows := []report.FlatRow{
		row(20, "Food", core.Expense, "-40"),
		row(15, "Salary", core.Income, "100"),
	}

	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, rows))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	got, err := f.GetRows(SheetName, excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, Header, got[0])
	assert.Equal(t, []string{"2024-01-20", "Food", "expense", "-40"}, got[1])
	assert.Equal(t, "Salary", got[2][1])
}
