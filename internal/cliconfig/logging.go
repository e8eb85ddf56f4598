package cliconfig

import (
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/altiplano-labs/camlink/pkg/log"
)

// Logger builds the process logger at the configured level. Unknown level
// names fall back to info.
func (c Config) Logger() log.Logger {
	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	zl := zerolog.New(output).With().Timestamp().Logger().Level(level)
	return log.NewZerologAdapterWithLogger(zl)
}
