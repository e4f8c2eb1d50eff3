package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/wtree/pkg/config"
	"github.com/Sumatoshi-tech/wtree/pkg/weightedtree"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "wtree.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := config.LoadConfig(writeConfig(t, ""))
	require.NoError(t, err)

	assert.InDelta(t, 600.0, cfg.Tree.Width, 1e-9)
	assert.InDelta(t, 600.0, cfg.Tree.Height, 1e-9)
	assert.Equal(t, 500*time.Millisecond, cfg.Tree.Duration)
	assert.InDelta(t, weightedtree.Auto, cfg.Tree.BranchPadding, 1e-9)
	assert.Equal(t, config.EaseCubicInOut, cfg.Tree.Ease)
	assert.Equal(t, "children", cfg.Data.Fields.Children)
	assert.Equal(t, config.FormatSVG, cfg.Render.Format)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 16*time.Millisecond, cfg.Server.TickInterval)
	assert.Equal(t, "wtree", cfg.Telemetry.ServiceName)

	margin, err := cfg.Tree.Margin()
	require.NoError(t, err)
	assert.Equal(t, weightedtree.DefaultMargin(), margin)
}

func TestLoadConfigFromFile(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
tree:
  width: 900
  duration: 1s
  fixed_span: 120
  margin:
    left: 20px
data:
  fields:
    value: size
    label: title
render:
  format: html
  expand: [a, b]
server:
  port: 9000
`)

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)

	assert.InDelta(t, 900.0, cfg.Tree.Width, 1e-9)
	assert.Equal(t, time.Second, cfg.Tree.Duration)
	assert.InDelta(t, 120.0, cfg.Tree.FixedSpan, 1e-9)
	assert.Equal(t, "size", cfg.Data.Fields.Value)
	assert.Equal(t, "title", cfg.Data.Fields.Label)
	assert.Equal(t, "id", cfg.Data.Fields.Key)
	assert.Equal(t, config.FormatHTML, cfg.Render.Format)
	assert.Equal(t, []string{"a", "b"}, cfg.Render.Expand)
	assert.Equal(t, 9000, cfg.Server.Port)

	margin, err := cfg.Tree.Margin()
	require.NoError(t, err)
	assert.Equal(t, weightedtree.Px(20), margin.Left)
	assert.Equal(t, weightedtree.Pct(5), margin.Top)
}

func TestLoadConfigFromEnvironment(t *testing.T) {
	t.Setenv("WTREE_SERVER_PORT", "9090")
	t.Setenv("WTREE_TREE_HEIGHT", "720")
	t.Setenv("WTREE_LOGGING_LEVEL", "debug")

	cfg, err := config.LoadConfig(writeConfig(t, ""))
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.InDelta(t, 720.0, cfg.Tree.Height, 1e-9)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadConfigValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		want    error
	}{
		{"port", "server:\n  port: 70000\n", config.ErrInvalidPort},
		{"size", "tree:\n  width: 0\n", config.ErrInvalidSize},
		{"duration", "tree:\n  duration: -1s\n", config.ErrInvalidDuration},
		{"ease", "tree:\n  ease: bounce\n", config.ErrInvalidEase},
		{"margin", "tree:\n  margin:\n    top: wide\n", config.ErrInvalidMargin},
		{"format", "render:\n  format: png\n", config.ErrInvalidFormat},
		{"fps", "render:\n  fps: 0\n", config.ErrInvalidFPS},
		{"tick", "server:\n  tick_interval: 0s\n", config.ErrInvalidTickInterval},
		{"sample", "telemetry:\n  sample_ratio: 2\n", config.ErrInvalidSampleRatio},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := config.LoadConfig(writeConfig(t, tt.content))
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestLoadConfigMalformedFile(t *testing.T) {
	t.Parallel()

	_, err := config.LoadConfig(writeConfig(t, "tree: [unclosed"))
	require.Error(t, err)
}
