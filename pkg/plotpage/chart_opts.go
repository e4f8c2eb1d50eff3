package plotpage

import (
	"github.com/go-echarts/go-echarts/v2/opts"
)

// ChartOpts provides themed chart options based on the current theme.
type ChartOpts struct {
	theme   ThemeConfig
	palette ChartPalette
}

// NewChartOpts creates a new ChartOpts with the given theme.
func NewChartOpts(theme Theme) *ChartOpts {
	return &ChartOpts{theme: GetThemeConfig(theme), palette: GetChartPalette(theme)}
}

// DefaultChartOpts returns chart options for the light theme.
func DefaultChartOpts() *ChartOpts {
	return NewChartOpts(ThemeLight)
}

// Init returns initialization options with themed background.
func (c *ChartOpts) Init(width, height string) opts.Initialization {
	return opts.Initialization{
		Width:           width,
		Height:          height,
		BackgroundColor: c.theme.ChartBackground,
		Theme:           c.theme.EChartsTheme,
	}
}

// Title returns title options with themed text colors.
func (c *ChartOpts) Title(title, subtitle string) opts.Title {
	return opts.Title{
		Title:         title,
		Subtitle:      subtitle,
		Left:          "center",
		TitleStyle:    &opts.TextStyle{Color: c.theme.ChartText},
		SubtitleStyle: &opts.TextStyle{Color: c.theme.ChartTextMuted},
	}
}

// Tooltip returns tooltip options.
func (c *ChartOpts) Tooltip(trigger string) opts.Tooltip {
	return opts.Tooltip{Show: opts.Bool(true), Trigger: trigger}
}

// Label returns series label options in the muted text color.
func (c *ChartOpts) Label(position string) *opts.Label {
	return &opts.Label{
		Show:     opts.Bool(true),
		Position: position,
		Color:    c.theme.ChartTextMuted,
	}
}

// Palette returns the branch palette of the theme.
func (c *ChartOpts) Palette() ChartPalette {
	return c.palette
}

// LinkColor returns the default link color.
func (c *ChartOpts) LinkColor() string {
	return c.theme.ChartLink
}

// NodeFill returns the fill color for a collapsed or expanded node.
func (c *ChartOpts) NodeFill(collapsed bool) string {
	if collapsed {
		return c.theme.NodeCollapsed
	}

	return c.theme.NodeExpanded
}
