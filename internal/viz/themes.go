package viz

import "github.com/charmbracelet/lipgloss"

// Theme holds the colors of the live view.
type Theme struct {
	Name    string
	Mesh    lipgloss.Color
	Title   lipgloss.Color
	Label   lipgloss.Color
	Value   lipgloss.Color
	Muted   lipgloss.Color
	Graph   lipgloss.Color
	Active  lipgloss.Color
	Warning lipgloss.Color
}

var (
	ThemeLinen = Theme{
		Name:    "linen",
		Mesh:    lipgloss.Color("#e8e0cf"),
		Title:   lipgloss.Color("#f5d58a"),
		Label:   lipgloss.Color("#8a8478"),
		Value:   lipgloss.Color("#f0ebe0"),
		Muted:   lipgloss.Color("#5c574f"),
		Graph:   lipgloss.Color("#c9a86a"),
		Active:  lipgloss.Color("#ff8c69"),
		Warning: lipgloss.Color("#ff5f56"),
	}

	ThemeDenim = Theme{
		Name:    "denim",
		Mesh:    lipgloss.Color("#7aa5d8"),
		Title:   lipgloss.Color("#00ccff"),
		Label:   lipgloss.Color("#6a7d99"),
		Value:   lipgloss.Color("#dfe9f5"),
		Muted:   lipgloss.Color("#44506a"),
		Graph:   lipgloss.Color("#00ccff"),
		Active:  lipgloss.Color("#ffcc00"),
		Warning: lipgloss.Color("#ff4444"),
	}

	ThemeRetro = Theme{
		Name:    "retro",
		Mesh:    lipgloss.Color("#00ff00"),
		Title:   lipgloss.Color("#88ff88"),
		Label:   lipgloss.Color("#00aa00"),
		Value:   lipgloss.Color("#00ff00"),
		Muted:   lipgloss.Color("#005500"),
		Graph:   lipgloss.Color("#88ff88"),
		Active:  lipgloss.Color("#ffff00"),
		Warning: lipgloss.Color("#ff0000"),
	}

	CurrentTheme = ThemeLinen

	Themes = []Theme{ThemeLinen, ThemeDenim, ThemeRetro}
)

// GetTheme returns a theme by name, or the first theme.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return Themes[0]
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
	CurrentTheme = Themes[0]
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}
