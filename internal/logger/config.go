package logger

import (
	"io"

	"github.com/aleister1102/pagewatch/internal/config"
	"github.com/rs/zerolog"
)

// LogFormat selects how console and file records are rendered.
type LogFormat string

const (
	FormatJSON    LogFormat = "json"
	FormatConsole LogFormat = "console" // colored, human readable
	FormatText    LogFormat = "text"    // console layout without colors
)

func (lf LogFormat) String() string { return string(lf) }

// LoggerConfig is the resolved logger setup. The file sink rotates through lumberjack.
type LoggerConfig struct {
	Level      zerolog.Level
	Format     LogFormat
	ConsoleOut io.Writer // nil means os.Stderr

	EnableConsole bool
	EnableFile    bool
	FilePath      string
	MaxSizeMB     int
	MaxBackups    int
}

// DefaultLoggerConfig logs info and above to stderr only.
func DefaultLoggerConfig() LoggerConfig {
	return LoggerConfig{
		Level:         zerolog.InfoLevel,
		Format:        FormatConsole,
		EnableConsole: true,
		MaxSizeMB:     config.DefaultMaxLogSizeMB,
		MaxBackups:    config.DefaultMaxLogBackups,
	}
}
