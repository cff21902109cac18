package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// KeyValue is one row of a KeyValuePanel.
type KeyValue struct {
	Key   string
	Value string
	Style lipgloss.Style // optional style for the value
}

// KeyValuePanel renders aligned key-value rows under a title.
type KeyValuePanel struct {
	Title string
	Items []KeyValue
	// Plain disables styling and borders, for pipes and scripts.
	Plain bool
}

// Render renders the panel
func (p KeyValuePanel) Render() string {
	maxKeyLen := 0
	for _, item := range p.Items {
		if len(item.Key) > maxKeyLen {
			maxKeyLen = len(item.Key)
		}
	}

	lines := make([]string, 0, len(p.Items)+1)
	if p.Plain {
		if p.Title != "" {
			lines = append(lines, p.Title)
		}
		for _, item := range p.Items {
			lines = append(lines, fmt.Sprintf("  %s %s", padRight(item.Key+":", maxKeyLen+1), item.Value))
		}
		return strings.Join(lines, "\n")
	}

	if p.Title != "" {
		lines = append(lines, TitleStyle.Render(p.Title))
	}
	for _, item := range p.Items {
		key := LabelStyle.Render(padRight(item.Key+":", maxKeyLen+1))
		style := ValueStyle
		if _, unset := item.Style.GetForeground().(lipgloss.NoColor); !unset {
			style = item.Style
		}
		lines = append(lines, key+" "+style.Render(item.Value))
	}
	return PanelStyle.Render(strings.Join(lines, "\n"))
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}
