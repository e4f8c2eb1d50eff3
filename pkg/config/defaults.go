package config

// Tree defaults.
const (
	DefaultWidth        = 600
	DefaultHeight       = 600
	DefaultDuration     = "500ms"
	DefaultMarginTop    = "5%"
	DefaultMarginBottom = "5%"
	DefaultMarginLeft   = "8%"
	DefaultMarginRight  = "7%"
)

// Render defaults.
const (
	DefaultFPS   = 30
	DefaultTheme = "light"
)

// Server defaults.
const (
	DefaultPort         = 8080
	DefaultHost         = "127.0.0.1"
	DefaultTickInterval = "16ms"
)

// Telemetry defaults.
const (
	DefaultServiceName = "wtree"
)
