// Package logger 建立服務使用的 zerolog logger
package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

type Config struct {
	Level  string
	Pretty bool
	// 額外輸出，例如 KafkaWriter
	Extra []io.Writer
}

// ParseLevel 無法辨識時回到 info
func ParseLevel(level string) zerolog.Level {
	lv, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lv == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lv
}

func New(cfg Config) zerolog.Logger {
	return newWithOutput(cfg, os.Stdout)
}

func newWithOutput(cfg Config, out io.Writer) zerolog.Logger {
	var w io.Writer = out
	if cfg.Pretty {
		w = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}
	if len(cfg.Extra) > 0 {
		writers := append([]io.Writer{w}, cfg.Extra...)
		w = zerolog.MultiLevelWriter(writers...)
	}
	return zerolog.New(w).
		Level(ParseLevel(cfg.Level)).
		With().
		Timestamp().
		Str("service", "storefront").
		Logger()
}
