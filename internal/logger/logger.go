package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/lshigami/psytest/config"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Init configures the global zerolog logger. Safe to call before the config
// is loaded; pass nil for console output at info level.
func Init(cfg *config.Log) {
	zerolog.TimeFieldFormat = time.RFC3339

	level := zerolog.InfoLevel
	format := "console"
	var file string
	if cfg != nil {
		if l, err := zerolog.ParseLevel(strings.ToLower(cfg.Level)); err == nil && cfg.Level != "" {
			level = l
		}
		if cfg.Format != "" {
			format = cfg.Format
		}
		file = cfg.File
	}
	zerolog.SetGlobalLevel(level)

	var out io.Writer = os.Stdout
	if format != "json" {
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: "15:04:05"}
	}

	if file != "" {
		rotating := &lumberjack.Logger{
			Filename:   file,
			MaxSize:    50, // MB
			MaxBackups: 5,
			MaxAge:     28, // days
			Compress:   true,
		}
		out = zerolog.MultiLevelWriter(out, rotating)
	}

	log.Logger = zerolog.New(out).With().Timestamp().Caller().Logger()
}
