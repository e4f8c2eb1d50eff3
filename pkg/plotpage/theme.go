package plotpage

import (
	"errors"
	"fmt"
)

// Theme represents a color theme for visualizations.
type Theme string

const (
	// ThemeLight is the light color theme.
	ThemeLight Theme = "light"
	// ThemeDark is the dark color theme.
	ThemeDark Theme = "dark"
)

// ErrUnknownTheme is returned by ParseTheme for names other than light and dark.
var ErrUnknownTheme = errors.New("unknown theme")

// ParseTheme converts a configuration value into a Theme.
func ParseTheme(name string) (Theme, error) {
	switch Theme(name) {
	case ThemeLight, ThemeDark:
		return Theme(name), nil
	case "":
		return ThemeLight, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownTheme, name)
	}
}

// ThemeConfig holds all theme-specific styling values.
type ThemeConfig struct {
	// Base colors.
	Background string
	Surface    string
	Border     string

	// Text colors.
	TextPrimary   string
	TextSecondary string
	TextMuted     string

	Accent     string
	AccentText string

	// Chart-specific.
	ChartBackground string
	ChartLink       string
	ChartText       string
	ChartTextMuted  string

	// Node fill for collapsed and expanded nodes.
	NodeCollapsed string
	NodeExpanded  string

	// ECharts theme name.
	EChartsTheme string
}

// ChartPalette holds the branch colors. Every first-level branch takes the
// next color and passes it down to its descendants.
type ChartPalette struct {
	Branches []string
}

// Color returns the branch color for index i, cycling through the palette.
func (p ChartPalette) Color(i int) string {
	if len(p.Branches) == 0 {
		return ""
	}

	return p.Branches[i%len(p.Branches)]
}

// GetThemeConfig returns the configuration for a given theme.
func GetThemeConfig(theme Theme) ThemeConfig {
	if theme == ThemeDark {
		return darkTheme
	}

	return lightTheme
}

// GetChartPalette returns the chart color palette for a given theme.
func GetChartPalette(theme Theme) ChartPalette {
	if theme == ThemeDark {
		return darkChartPalette
	}

	return lightChartPalette
}

var lightTheme = ThemeConfig{
	Background: "#fafaf9", // stone-50.
	Surface:    "#ffffff",
	Border:     "#e7e5e4", // stone-200.

	TextPrimary:   "#1c1917", // stone-900.
	TextSecondary: "#44403c", // stone-700.
	TextMuted:     "#78716c", // stone-500.

	Accent:     "#a16207", // amber-700.
	AccentText: "#ffffff",

	ChartBackground: "transparent",
	ChartLink:       "#a8a29e", // stone-400.
	ChartText:       "#44403c",
	ChartTextMuted:  "#78716c",

	NodeCollapsed: "#fef3c7", // amber-100.
	NodeExpanded:  "#ffffff",
}

var darkTheme = ThemeConfig{
	Background: "#0c0a09", // stone-950.
	Surface:    "#1c1917", // stone-900.
	Border:     "#44403c", // stone-700.

	TextPrimary:   "#fafaf9",
	TextSecondary: "#d6d3d1", // stone-300.
	TextMuted:     "#a8a29e", // stone-400.

	Accent:     "#d97706", // amber-600.
	AccentText: "#ffffff",

	ChartBackground: "transparent",
	ChartLink:       "#57534e", // stone-600.
	ChartText:       "#d6d3d1",
	ChartTextMuted:  "#a8a29e",

	NodeCollapsed: "#451a03", // amber-950.
	NodeExpanded:  "#1c1917",
}

var lightChartPalette = ChartPalette{
	Branches: []string{
		"#a16207", // amber-700.
		"#0369a1", // sky-700.
		"#4d7c0f", // lime-700.
		"#7c3aed", // violet-600.
		"#be185d", // pink-700.
		"#0891b2", // cyan-600.
		"#c2410c", // orange-700.
		"#4338ca", // indigo-700.
		"#15803d", // green-700.
		"#b91c1c", // red-700.
	},
}

var darkChartPalette = ChartPalette{
	Branches: []string{
		"#fbbf24", // amber-400.
		"#38bdf8", // sky-400.
		"#a3e635", // lime-400.
		"#a78bfa", // violet-400.
		"#f472b6", // pink-400.
		"#22d3ee", // cyan-400.
		"#fb923c", // orange-400.
		"#818cf8", // indigo-400.
		"#4ade80", // green-400.
		"#f87171", // red-400.
	},
}
