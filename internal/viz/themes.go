package viz

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/hydrosim/internal/hydraulic"
)

// Theme defines the dashboard colors. Each hydraulic circuit has its own
// color so traces and panels can be told apart.
type Theme struct {
	Name    string
	Primary lipgloss.Color
	Text    lipgloss.Color
	Muted   lipgloss.Color
	Success lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color

	Green  lipgloss.Color
	Blue   lipgloss.Color
	Yellow lipgloss.Color
}

var (
	ThemeCockpit = Theme{
		Name:    "cockpit",
		Primary: lipgloss.Color("#00ffff"),
		Text:    lipgloss.Color("#ffffff"),
		Muted:   lipgloss.Color("#666688"),
		Success: lipgloss.Color("#00ff88"),
		Warning: lipgloss.Color("#ffaa00"),
		Error:   lipgloss.Color("#ff4444"),
		Green:   lipgloss.Color("#00ff00"),
		Blue:    lipgloss.Color("#3399ff"),
		Yellow:  lipgloss.Color("#ffdd00"),
	}

	ThemeRetroGreen = Theme{
		Name:    "retro",
		Primary: lipgloss.Color("#00ff00"), // Green phosphor
		Text:    lipgloss.Color("#00ff00"),
		Muted:   lipgloss.Color("#005500"),
		Success: lipgloss.Color("#88ff88"),
		Warning: lipgloss.Color("#ffff00"),
		Error:   lipgloss.Color("#ff0000"),
		Green:   lipgloss.Color("#88ff88"),
		Blue:    lipgloss.Color("#00cc00"),
		Yellow:  lipgloss.Color("#ccff66"),
	}

	ThemeMinimal = Theme{
		Name:    "minimal",
		Primary: lipgloss.Color("#ffffff"),
		Text:    lipgloss.Color("#ffffff"),
		Muted:   lipgloss.Color("#888888"),
		Success: lipgloss.Color("#cccccc"),
		Warning: lipgloss.Color("#ffaa00"),
		Error:   lipgloss.Color("#ff0000"),
		Green:   lipgloss.Color("#dddddd"),
		Blue:    lipgloss.Color("#aaaaaa"),
		Yellow:  lipgloss.Color("#777777"),
	}

	CurrentTheme = ThemeCockpit

	Themes = []Theme{
		ThemeCockpit,
		ThemeRetroGreen,
		ThemeMinimal,
	}
)

// GetTheme returns a theme by name, falling back to the cockpit theme.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return ThemeCockpit
}

func SetTheme(name string) {
	CurrentTheme = GetTheme(name)
}

// NextTheme switches to the theme after the current one.
func NextTheme() {
	for i, t := range Themes {
		if t.Name == CurrentTheme.Name {
			CurrentTheme = Themes[(i+1)%len(Themes)]
			return
		}
	}
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}

// CircuitColor is the theme color of a hydraulic circuit.
func (t Theme) CircuitColor(c hydraulic.Color) lipgloss.Color {
	switch c {
	case hydraulic.Blue:
		return t.Blue
	case hydraulic.Yellow:
		return t.Yellow
	default:
		return t.Green
	}
}
