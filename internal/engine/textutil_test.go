package engine

import (
	"strings"
	"testing"
)

func TestCleanHTML(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"plain", "plain"},
		{"  <b>bold</b> text ", "bold text"},
		{"rock &amp; roll", "rock & roll"},
		{"<font color=\"#fff\">it&#39;s</font>", "it's"},
	}
	for _, tt := range tests {
		if got := CleanHTML(tt.in); got != tt.want {
			t.Errorf("CleanHTML(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestJoinNonEmpty(t *testing.T) {
	got := JoinNonEmpty([]string{" a ", "", "  ", "b", "c\n"}, " ")
	if got != "a b c" {
		t.Errorf("JoinNonEmpty = %q, want %q", got, "a b c")
	}
	if got := JoinNonEmpty(nil, " "); got != "" {
		t.Errorf("JoinNonEmpty(nil) = %q, want empty", got)
	}
}

func TestTruncateAtWord(t *testing.T) {
	short := "ciao mondo"
	if got := TruncateAtWord(short, 100); got != short {
		t.Errorf("short string should not be truncated, got %q", got)
	}
	long := strings.Repeat("parola ", 30)
	got := TruncateAtWord(long, 40)
	if len([]rune(strings.TrimSuffix(got, "..."))) > 40 {
		t.Errorf("truncated rune count = %d, should be <= 40", len([]rune(got)))
	}
}
