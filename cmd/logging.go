package cmd

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func configureLogging(verbose bool) {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

// clientLogger bridges zerolog into the API client's logging interface.
type clientLogger struct{}

func (clientLogger) Debugf(format string, args ...any) { log.Debug().Msgf(format, args...) }
func (clientLogger) Errorf(format string, args ...any) { log.Error().Msgf(format, args...) }
