package cmd

import "github.com/charmbracelet/lipgloss"

const (
	padding  = 4
	maxWidth = 60
	dspBlue  = "#3a4f9e"
	dspSky   = "#8fa8ff"

	greenLight = "#56949f"
	greenDark  = "#9ccfd8"
	redLight   = "#b4637a"
	redDark    = "#eb6f92"
)

var (
	accent = lipgloss.AdaptiveColor{Dark: greenDark, Light: greenLight}
	main   = lipgloss.AdaptiveColor{Dark: dspSky, Light: dspBlue}
	failed = lipgloss.AdaptiveColor{Dark: redDark, Light: redLight}

	listStyle = lipgloss.NewStyle().
			Padding(1, 2).
			Margin(1).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(accent)
	listTitleStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(main).
			Bold(true)
	labelStyle = lipgloss.NewStyle().
			Foreground(accent).
			Width(14)
	errorStyle = lipgloss.NewStyle().
			Foreground(failed)
	tableBorderStyle = lipgloss.NewStyle().
				Foreground(accent)
)
