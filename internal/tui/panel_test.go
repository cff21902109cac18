package tui

import (
	"strings"
	"testing"
)

func TestKeyValuePanelPlain(t *testing.T) {
	panel := KeyValuePanel{
		Title: "Queue ludo:queue",
		Items: []KeyValue{
			{Key: "waiting", Value: "3"},
			{Key: "reserved", Value: "10"},
		},
		Plain: true,
	}

	got := panel.Render()
	want := "Queue ludo:queue\n  waiting:  3\n  reserved: 10"
	if got != want {
		t.Errorf("Render() =\n%q\nwant\n%q", got, want)
	}
}

func TestKeyValuePanelStyled(t *testing.T) {
	panel := KeyValuePanel{
		Title: "Stats",
		Items: []KeyValue{
			{Key: "failed", Value: "7", Style: ErrorStyle},
		},
	}

	got := panel.Render()
	for _, want := range []string{"Stats", "failed:", "7"} {
		if !strings.Contains(got, want) {
			t.Errorf("Render() missing %q in %q", want, got)
		}
	}
}

func TestPadRight(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"ab", 4, "ab  "},
		{"abcd", 2, "abcd"},
		{"", 1, " "},
	}
	for _, tt := range tests {
		if got := padRight(tt.in, tt.width); got != tt.want {
			t.Errorf("padRight(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
	}
}
