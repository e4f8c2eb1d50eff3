// Package config provides configuration loading and validation for wtree.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/Sumatoshi-tech/wtree/pkg/dataset"
	"github.com/Sumatoshi-tech/wtree/pkg/weightedtree"
)

// Sentinel validation errors.
var (
	ErrInvalidPort         = errors.New("invalid server port")
	ErrInvalidSize         = errors.New("tree width and height must be positive")
	ErrInvalidDuration     = errors.New("transition duration must not be negative")
	ErrInvalidMargin       = errors.New("invalid tree margin")
	ErrInvalidFormat       = errors.New("invalid output format")
	ErrInvalidFPS          = errors.New("frames per second must be positive")
	ErrInvalidTickInterval = errors.New("server tick interval must be positive")
	ErrInvalidEase         = errors.New("unknown easing")
	ErrInvalidSampleRatio  = errors.New("trace sample ratio must be within [0,1]")
)

const maxPort = 65535

// Output formats accepted by render.format.
const (
	FormatSVG    = "svg"
	FormatHTML   = "html"
	FormatFrames = "frames"
)

// Easing names accepted by tree.ease.
const (
	EaseCubicInOut = "cubic-in-out"
	EaseLinear     = "linear"
)

// Config holds all configuration for wtree.
type Config struct {
	Tree      TreeConfig      `mapstructure:"tree"`
	Data      DataConfig      `mapstructure:"data"`
	Render    RenderConfig    `mapstructure:"render"`
	Server    ServerConfig    `mapstructure:"server"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// TreeConfig holds the weighted tree properties.
type TreeConfig struct {
	Width         float64       `mapstructure:"width"`
	Height        float64       `mapstructure:"height"`
	Duration      time.Duration `mapstructure:"duration"`
	BranchPadding float64       `mapstructure:"branch_padding"`
	FixedSpan     float64       `mapstructure:"fixed_span"`
	Ease          string        `mapstructure:"ease"`
	Margin        MarginConfig  `mapstructure:"margin"`
}

// MarginConfig holds margins as "12", "12px" or "5%".
type MarginConfig struct {
	Top    string `mapstructure:"top"`
	Bottom string `mapstructure:"bottom"`
	Left   string `mapstructure:"left"`
	Right  string `mapstructure:"right"`
}

// DataConfig holds dataset decoding settings.
type DataConfig struct {
	// Format overrides the file extension when set.
	Format string         `mapstructure:"format"`
	Schema string         `mapstructure:"schema"`
	Fields dataset.Fields `mapstructure:"fields"`
}

// RenderConfig holds export settings.
type RenderConfig struct {
	Format    string   `mapstructure:"format"`
	Output    string   `mapstructure:"output"`
	Theme     string   `mapstructure:"theme"`
	Expand    []string `mapstructure:"expand"`
	FPS       int      `mapstructure:"fps"`
	ExpandAll bool     `mapstructure:"expand_all"`
	LZ4       bool     `mapstructure:"lz4"`
}

// ServerConfig holds viewer server settings.
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
	TickInterval time.Duration `mapstructure:"tick_interval"`
	Port         int           `mapstructure:"port"`
}

// LoggingConfig holds logging-specific configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// TelemetryConfig holds OpenTelemetry settings.
type TelemetryConfig struct {
	ServiceName  string  `mapstructure:"service_name"`
	OTLPEndpoint string  `mapstructure:"otlp_endpoint"`
	SampleRatio  float64 `mapstructure:"sample_ratio"`
	OTLPInsecure bool    `mapstructure:"otlp_insecure"`
	Prometheus   bool    `mapstructure:"prometheus"`
}

// Margin parses the configured margins.
func (t TreeConfig) Margin() (weightedtree.Margin, error) {
	var (
		m   weightedtree.Margin
		err error
	)

	for _, side := range []struct {
		dst *weightedtree.Measure
		src string
	}{
		{&m.Top, t.Margin.Top},
		{&m.Bottom, t.Margin.Bottom},
		{&m.Left, t.Margin.Left},
		{&m.Right, t.Margin.Right},
	} {
		*side.dst, err = weightedtree.ParseMeasure(side.src)
		if err != nil {
			return weightedtree.Margin{}, fmt.Errorf("%w: %w", ErrInvalidMargin, err)
		}
	}

	return m, nil
}

// LoadConfig loads configuration from file and environment variables.
func LoadConfig(configPath string) (*Config, error) {
	viperCfg := viper.New()

	setDefaults(viperCfg)

	if configPath != "" {
		viperCfg.SetConfigFile(configPath)
	} else {
		viperCfg.SetConfigName("wtree")
		viperCfg.SetConfigType("yaml")
		viperCfg.AddConfigPath(".")
		viperCfg.AddConfigPath("./config")
		viperCfg.AddConfigPath("/etc/wtree")
	}

	viperCfg.SetEnvPrefix("WTREE")
	viperCfg.AutomaticEnv()
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	readErr := viperCfg.ReadInConfig()
	if readErr != nil {
		var notFoundErr viper.ConfigFileNotFoundError
		if !errors.As(readErr, &notFoundErr) {
			return nil, fmt.Errorf("failed to read config file: %w", readErr)
		}
	}

	var config Config

	unmarshalErr := viperCfg.Unmarshal(&config)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", unmarshalErr)
	}

	validateErr := config.Validate()
	if validateErr != nil {
		return nil, fmt.Errorf("invalid configuration: %w", validateErr)
	}

	return &config, nil
}

// setDefaults sets default configuration values.
func setDefaults(viperCfg *viper.Viper) {
	// Tree defaults.
	viperCfg.SetDefault("tree.width", DefaultWidth)
	viperCfg.SetDefault("tree.height", DefaultHeight)
	viperCfg.SetDefault("tree.duration", DefaultDuration)
	viperCfg.SetDefault("tree.branch_padding", weightedtree.Auto)
	viperCfg.SetDefault("tree.fixed_span", weightedtree.Auto)
	viperCfg.SetDefault("tree.ease", EaseCubicInOut)
	viperCfg.SetDefault("tree.margin.top", DefaultMarginTop)
	viperCfg.SetDefault("tree.margin.bottom", DefaultMarginBottom)
	viperCfg.SetDefault("tree.margin.left", DefaultMarginLeft)
	viperCfg.SetDefault("tree.margin.right", DefaultMarginRight)

	// Data defaults.
	fields := dataset.DefaultFields()
	viperCfg.SetDefault("data.format", "")
	viperCfg.SetDefault("data.schema", "")
	viperCfg.SetDefault("data.fields.children", fields.Children)
	viperCfg.SetDefault("data.fields.value", fields.Value)
	viperCfg.SetDefault("data.fields.label", fields.Label)
	viperCfg.SetDefault("data.fields.key", fields.Key)

	// Render defaults.
	viperCfg.SetDefault("render.format", FormatSVG)
	viperCfg.SetDefault("render.output", "-")
	viperCfg.SetDefault("render.theme", DefaultTheme)
	viperCfg.SetDefault("render.expand", []string{})
	viperCfg.SetDefault("render.fps", DefaultFPS)
	viperCfg.SetDefault("render.expand_all", false)
	viperCfg.SetDefault("render.lz4", false)

	// Server defaults.
	viperCfg.SetDefault("server.port", DefaultPort)
	viperCfg.SetDefault("server.host", DefaultHost)
	viperCfg.SetDefault("server.read_timeout", "30s")
	viperCfg.SetDefault("server.write_timeout", "30s")
	viperCfg.SetDefault("server.idle_timeout", "60s")
	viperCfg.SetDefault("server.tick_interval", DefaultTickInterval)

	// Logging defaults.
	viperCfg.SetDefault("logging.level", "info")
	viperCfg.SetDefault("logging.format", "text")
	viperCfg.SetDefault("logging.output", "stderr")

	// Telemetry defaults.
	viperCfg.SetDefault("telemetry.service_name", DefaultServiceName)
	viperCfg.SetDefault("telemetry.otlp_endpoint", "")
	viperCfg.SetDefault("telemetry.otlp_insecure", false)
	viperCfg.SetDefault("telemetry.sample_ratio", 1.0)
	viperCfg.SetDefault("telemetry.prometheus", true)
}

// Validate checks the configuration.
func (config *Config) Validate() error {
	if config.Server.Port <= 0 || config.Server.Port > maxPort {
		return fmt.Errorf("%w: %d", ErrInvalidPort, config.Server.Port)
	}

	if config.Tree.Width <= 0 || config.Tree.Height <= 0 {
		return fmt.Errorf("%w: %vx%v", ErrInvalidSize, config.Tree.Width, config.Tree.Height)
	}

	if config.Tree.Duration < 0 {
		return fmt.Errorf("%w: %s", ErrInvalidDuration, config.Tree.Duration)
	}

	if config.Tree.Ease != EaseCubicInOut && config.Tree.Ease != EaseLinear {
		return fmt.Errorf("%w: %q", ErrInvalidEase, config.Tree.Ease)
	}

	if _, err := config.Tree.Margin(); err != nil {
		return err
	}

	switch config.Render.Format {
	case FormatSVG, FormatHTML, FormatFrames:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidFormat, config.Render.Format)
	}

	if config.Render.FPS <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidFPS, config.Render.FPS)
	}

	if config.Server.TickInterval <= 0 {
		return fmt.Errorf("%w: %s", ErrInvalidTickInterval, config.Server.TickInterval)
	}

	if config.Telemetry.SampleRatio < 0 || config.Telemetry.SampleRatio > 1 {
		return fmt.Errorf("%w: %v", ErrInvalidSampleRatio, config.Telemetry.SampleRatio)
	}

	return nil
}
