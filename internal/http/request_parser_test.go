package http

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"
)

func TestParseMonthParams(t *testing.T) {
	now := time.Date(2025, time.March, 14, 9, 0, 0, 0, time.UTC)
	tests := []struct {
		name      string
		query     url.Values
		wantYear  int
		wantMonth int
		wantErr   bool
	}{
		{
			name:      "both values provided",
			query:     url.Values{"year": {"2024"}, "month": {"12"}},
			wantYear:  2024,
			wantMonth: 12,
		},
		{
			name:      "empty query uses current month",
			query:     url.Values{},
			wantYear:  2025,
			wantMonth: 3,
		},
		{
			name:      "only year",
			query:     url.Values{"year": {"2023"}},
			wantYear:  2023,
			wantMonth: 3,
		},
		{
			name:    "month zero is rejected",
			query:   url.Values{"month": {"0"}},
			wantErr: true,
		},
		{
			name:    "month thirteen is rejected",
			query:   url.Values{"month": {"13"}},
			wantErr: true,
		},
		{
			name:    "non numeric year",
			query:   url.Values{"year": {"abc"}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseMonthParams(tt.query, now)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseMonthParams() expected error, got %+v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseMonthParams() unexpected error: %v", err)
			}
			if got.Year != tt.wantYear {
				t.Errorf("Year = %d, want %d", got.Year, tt.wantYear)
			}
			if got.Month != tt.wantMonth {
				t.Errorf("Month = %d, want %d", got.Month, tt.wantMonth)
			}
		})
	}
}

func TestParseWindow(t *testing.T) {
	t.Run("no bounds", func(t *testing.T) {
		w, err := ParseWindow(url.Values{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if w.From != nil || w.To != nil {
			t.Errorf("expected open window, got %+v", w)
		}
	})

	t.Run("date-only to covers the whole day", func(t *testing.T) {
		w, err := ParseWindow(url.Values{"from": {"2025-01-01"}, "to": {"2025-01-31"}})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		late := time.Date(2025, time.January, 31, 23, 30, 0, 0, time.UTC)
		if !w.Contains(late) {
			t.Errorf("window should contain %v", late)
		}
		if w.Contains(time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC)) {
			t.Error("window should not contain the next day")
		}
	})

	t.Run("rfc3339 bounds", func(t *testing.T) {
		w, err := ParseWindow(url.Values{"to": {"2025-01-31T12:00:00Z"}})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if w.Contains(time.Date(2025, time.January, 31, 13, 0, 0, 0, time.UTC)) {
			t.Error("instant bound should not be widened")
		}
	})

	tests := []struct {
		name  string
		query url.Values
	}{
		{"garbage from", url.Values{"from": {"yesterday"}}},
		{"garbage to", url.Values{"to": {"31/01/2025"}}},
		{"to before from", url.Values{"from": {"2025-02-01"}, "to": {"2025-01-01"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseWindow(tt.query); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestParseDate(t *testing.T) {
	now := time.Date(2025, time.June, 2, 22, 15, 0, 0, time.UTC)

	got, err := parseDate("", now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := time.Date(2025, time.June, 2, 0, 0, 0, 0, time.UTC); !got.Equal(want) {
		t.Errorf("empty date = %v, want %v", got, want)
	}

	got, err = parseDate("2024-02-29", now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Month() != time.February || got.Day() != 29 {
		t.Errorf("parseDate() = %v", got)
	}

	for _, bad := range []string{"2024-02-30", "02/29/2024", "soon"} {
		if _, err := parseDate(bad, now); err == nil {
			t.Errorf("parseDate(%q) expected error", bad)
		}
	}
}

func TestRequestBodyParser(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		body        string
		key         string
		want        string
		wantJSON    bool
	}{
		{
			name:        "json string",
			contentType: "application/json",
			body:        `{"amount":"12.50"}`,
			key:         "amount",
			want:        "12.50",
			wantJSON:    true,
		},
		{
			name:        "json number",
			contentType: "application/json; charset=utf-8",
			body:        `{"amount":12.5}`,
			key:         "amount",
			want:        "12.5",
			wantJSON:    true,
		},
		{
			name:        "json without content type",
			contentType: "",
			body:        `{"label":"Salary"}`,
			key:         "label",
			want:        "Salary",
			wantJSON:    true,
		},
		{
			name:        "form encoded",
			contentType: "application/x-www-form-urlencoded",
			body:        "amount=7&label=Food",
			key:         "label",
			want:        "Food",
		},
		{
			name:        "control characters stripped",
			contentType: "application/x-www-form-urlencoded",
			body:        "description=%20lunch%00%07%20",
			key:         "description",
			want:        "lunch",
		},
		{
			name:        "missing key",
			contentType: "application/json",
			body:        `{"amount":"1"}`,
			key:         "label",
			want:        "",
			wantJSON:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			p := NewRequestBodyParser(req)
			if err := p.Parse(); err != nil {
				t.Fatalf("Parse() error: %v", err)
			}
			if got := p.Get(tt.key); got != tt.want {
				t.Errorf("Get(%q) = %q, want %q", tt.key, got, tt.want)
			}
			if p.IsJSON() != tt.wantJSON {
				t.Errorf("IsJSON() = %v, want %v", p.IsJSON(), tt.wantJSON)
			}
		})
	}
}

func TestRequestBodyParser_MalformedJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"amount":`))
	req.Header.Set("Content-Type", "application/json")
	p := NewRequestBodyParser(req)
	if err := p.Parse(); err == nil {
		t.Fatal("expected parse error")
	}
	if err := p.Parse(); err == nil {
		t.Error("second Parse() should return the same error")
	}
}

func TestDecodeJSON_RejectsTrailingData(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"text":"a"} {"text":"b"}`))
	var v struct{ Text string }
	if err := decodeJSON(req, &v); err == nil {
		t.Error("expected error for trailing data")
	}
}

func TestDecodeBase64(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"padded", "aGVsbG8=", "hello"},
		{"unpadded", "aGVsbG8", "hello"},
		{"data url", "data:image/png;base64,aGVsbG8=", "hello"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeBase64(tt.input)
			if err != nil {
				t.Fatalf("decodeBase64() error: %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("decodeBase64() = %q, want %q", got, tt.want)
			}
		})
	}
	if _, err := decodeBase64("!!not base64!!"); err == nil {
		t.Error("expected error for invalid input")
	}
}
