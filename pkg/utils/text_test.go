package utils

import "testing"

func TestTruncate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{"short enough", "open notepad", 40, "open notepad"},
		{"exact length", "abcd", 4, "abcd"},
		{"truncated", "summarize the latest paper on agi", 20, "summarize the lates…"},
		{"unicode aware", "héllo wörld", 6, "héllo…"},
		{"zero width", "anything", 0, ""},
		{"width one", "ab", 1, "…"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Truncate(tt.in, tt.max); got != tt.want {
				t.Errorf("Truncate(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
			}
		})
	}
}

func TestCollapseSpaces(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"open  the\tbrowser", "open the browser"},
		{"  leading and trailing  ", "leading and trailing"},
		{"multi\nline\ncommand", "multi line command"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := CollapseSpaces(tt.in); got != tt.want {
			t.Errorf("CollapseSpaces(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFirstLine(t *testing.T) {
	if got := FirstLine("first\nsecond"); got != "first" {
		t.Errorf("FirstLine = %q, want first", got)
	}
	if got := FirstLine("only"); got != "only" {
		t.Errorf("FirstLine = %q, want only", got)
	}
}

func TestSidebarEntry(t *testing.T) {
	got := SidebarEntry("open youtube\nand search for  beat it", 25)
	want := "open youtube and search…"
	if got != want {
		t.Errorf("SidebarEntry = %q, want %q", got, want)
	}
}
