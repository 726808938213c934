package ui

import "github.com/charmbracelet/lipgloss"

// Theme defines colors for the UI.
type Theme struct {
	Name string

	Surface string
	Text    string
	Muted   string
	Accent  string
	Success string
	Warning string
	Danger  string
}

// Styles holds the lipgloss styles derived from a theme.
type Styles struct {
	Header        lipgloss.Style
	Text          lipgloss.Style
	Muted         lipgloss.Style
	Cursor        lipgloss.Style
	DefaultDevice lipgloss.Style
	OfflineDevice lipgloss.Style
	Warning       lipgloss.Style
	Danger        lipgloss.Style
}

// Styles returns lipgloss styles for this theme.
func (t Theme) Styles() Styles {
	return Styles{
		Header: lipgloss.NewStyle().
			Background(lipgloss.Color(t.Surface)).
			Foreground(lipgloss.Color(t.Accent)).
			Bold(true).
			Padding(0, 1),
		Text: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Text)),
		Muted: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Muted)),
		Cursor: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Accent)).
			Bold(true),
		DefaultDevice: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Text)).
			Bold(true),
		OfflineDevice: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Success)).
			Underline(true),
		Warning: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Warning)),
		Danger: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Danger)).
			Bold(true),
	}
}

func nightfoxTheme() Theme {
	return Theme{
		Name:    "Nightfox",
		Surface: "#192330",
		Text:    "#cdcecf",
		Muted:   "#738091",
		Accent:  "#719cd6",
		Success: "#81b29a",
		Warning: "#dbc074",
		Danger:  "#c94f6d",
	}
}

func slateTheme() Theme {
	return Theme{
		Name:    "Slate",
		Surface: "#1e2127",
		Text:    "#d7dae0",
		Muted:   "#7f848e",
		Accent:  "#61afef",
		Success: "#98c379",
		Warning: "#e5c07b",
		Danger:  "#e06c75",
	}
}

var themes = map[string]Theme{
	"Nightfox": nightfoxTheme(),
	"Slate":    slateTheme(),
}

var themeOrder = []string{"Nightfox", "Slate"}

// GetTheme returns a theme by name.
func GetTheme(name string) Theme {
	if t, ok := themes[name]; ok {
		return t
	}
	return nightfoxTheme()
}

// NextTheme returns the next theme name in the cycle.
func NextTheme(current string) string {
	for i, name := range themeOrder {
		if name == current {
			return themeOrder[(i+1)%len(themeOrder)]
		}
	}
	return themeOrder[0]
}
