package ui

import "github.com/charmbracelet/lipgloss"

// Theme bundles the styles for one color scheme. Two schemes ship: dark
// (default) and light.
type Theme struct {
	Name string

	App      lipgloss.Style
	Title    lipgloss.Style
	Banner   lipgloss.Style
	Card     lipgloss.Style
	CardName lipgloss.Style
	Value    lipgloss.Style
	Section  lipgloss.Style
	Header   lipgloss.Style
	Row      lipgloss.Style
	RowAlt   lipgloss.Style
	Selected lipgloss.Style
	Footer   lipgloss.Style
	Status   lipgloss.Style

	Up      lipgloss.Style
	Down    lipgloss.Style
	Neutral lipgloss.Style
	Spark   lipgloss.Style
	SparkDD lipgloss.Style
}

func DarkTheme() Theme {
	var (
		accent = lipgloss.Color("#0077cc")
		green  = lipgloss.Color("#33cc33")
		red    = lipgloss.Color("#cc3300")
		dim    = lipgloss.Color("#999999")
		border = lipgloss.Color("#333333")
	)
	return Theme{
		Name:     "dark",
		App:      lipgloss.NewStyle().Padding(1, 2),
		Title:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ffffff")).Background(accent).Padding(0, 1),
		Banner:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ffffff")).Background(red).Padding(0, 1),
		Card:     lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(border).Padding(0, 1),
		CardName: lipgloss.NewStyle().Foreground(dim),
		Value:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ffffff")),
		Section:  lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(border).Padding(0, 1),
		Header:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ffffff")).Background(border).Padding(0, 1),
		Row:      lipgloss.NewStyle(),
		RowAlt:   lipgloss.NewStyle().Foreground(lipgloss.Color("#cccccc")),
		Selected: lipgloss.NewStyle().Background(lipgloss.Color("#222222")),
		Footer:   lipgloss.NewStyle().Foreground(dim).Padding(0, 1),
		Status:   lipgloss.NewStyle().Foreground(green).Padding(0, 1),
		Up:       lipgloss.NewStyle().Foreground(green),
		Down:     lipgloss.NewStyle().Foreground(red),
		Neutral:  lipgloss.NewStyle().Foreground(dim),
		Spark:    lipgloss.NewStyle().Foreground(accent),
		SparkDD:  lipgloss.NewStyle().Foreground(red),
	}
}

func LightTheme() Theme {
	var (
		accent = lipgloss.Color("#005fa3")
		green  = lipgloss.Color("#1a7a1a")
		red    = lipgloss.Color("#a32400")
		dim    = lipgloss.Color("#666666")
		border = lipgloss.Color("#bbbbbb")
	)
	return Theme{
		Name:     "light",
		App:      lipgloss.NewStyle().Padding(1, 2),
		Title:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ffffff")).Background(accent).Padding(0, 1),
		Banner:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ffffff")).Background(red).Padding(0, 1),
		Card:     lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(border).Padding(0, 1),
		CardName: lipgloss.NewStyle().Foreground(dim),
		Value:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#000000")),
		Section:  lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(border).Padding(0, 1),
		Header:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#000000")).Background(border).Padding(0, 1),
		Row:      lipgloss.NewStyle(),
		RowAlt:   lipgloss.NewStyle().Foreground(lipgloss.Color("#444444")),
		Selected: lipgloss.NewStyle().Background(lipgloss.Color("#dddddd")),
		Footer:   lipgloss.NewStyle().Foreground(dim).Padding(0, 1),
		Status:   lipgloss.NewStyle().Foreground(green).Padding(0, 1),
		Up:       lipgloss.NewStyle().Foreground(green),
		Down:     lipgloss.NewStyle().Foreground(red),
		Neutral:  lipgloss.NewStyle().Foreground(dim),
		Spark:    lipgloss.NewStyle().Foreground(accent),
		SparkDD:  lipgloss.NewStyle().Foreground(red),
	}
}

// ThemeByName returns the named theme, defaulting to dark.
func ThemeByName(name string) Theme {
	if name == "light" {
		return LightTheme()
	}
	return DarkTheme()
}
