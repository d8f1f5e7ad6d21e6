package llm

import "testing"

func TestCleanJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain array", `[{"a":1}]`, `[{"a":1}]`},
		{"fenced json", "```json\n[1,2]\n```", "[1,2]"},
		{"fenced bare", "```\n{\"amount\": 12.5}\n```", `{"amount": 12.5}`},
		{"prose around object", "Sure! {\"amount\": 3} hope this helps", `{"amount": 3}`},
		{"prose around array", "Here:\n[1]\nDone", "[1]"},
		{"no json", "nothing here", "nothing here"},
		{"single line fence", "```", "```"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanJSON(tt.in); got != tt.want {
				t.Fatalf("CleanJSON(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
