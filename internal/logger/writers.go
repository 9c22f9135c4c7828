package logger

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// newConsoleWriter renders events for a terminal. Text is the uncolored console layout.
func newConsoleWriter(out io.Writer, format LogFormat) io.Writer {
	switch format {
	case FormatJSON:
		return out
	case FormatText:
		return zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339, NoColor: true}
	default:
		return zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}
}

// newFileWriter returns a rotating file writer. Files never carry color codes.
func newFileWriter(cfg LoggerConfig) (io.Writer, io.Closer, error) {
	if dir := filepath.Dir(cfg.FilePath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, nil, err
		}
	}

	rotator := &lumberjack.Logger{
		Filename:   cfg.FilePath,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		LocalTime:  true,
	}

	if cfg.Format == FormatJSON {
		return rotator, rotator, nil
	}
	return zerolog.ConsoleWriter{Out: rotator, TimeFormat: time.RFC3339, NoColor: true}, rotator, nil
}
