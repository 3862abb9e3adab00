package logger

// Console implements a console based logger.
type Console struct {
	Enabled          bool `mapstructure:"enabled"`
	UseConsoleWriter bool `mapstructure:"useconsolewriter"`
}

// RollingFile configures one lumberjack rotated log file.
type RollingFile struct {
	Name       string `mapstructure:"name"`
	MaxSize    int    `mapstructure:"maxsize"` // megabytes
	MaxBackups int    `mapstructure:"maxbackups"`
	MaxAge     int    `mapstructure:"maxage"` // days
}

// LogFile implements a file based logger, one file per level group.
type LogFile struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`

	Error RollingFile `mapstructure:"error"`
	Info  RollingFile `mapstructure:"info"`
	Trace RollingFile `mapstructure:"trace"`
	Warn  RollingFile `mapstructure:"warn"`
}

// Log implements the logger config.
type Log struct {
	LogLevel     string `mapstructure:"loglevel"` // trace, debug, info, warn, error.
	ReportCaller bool   `mapstructure:"reportcaller"`

	AppName     string `mapstructure:"appname"`
	ServiceName string `mapstructure:"servicename"`

	// Console used mainly for docker and dev.
	Console Console `mapstructure:"console"`

	// File writes rotated log files.
	File LogFile `mapstructure:"file"`
}
