package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const prodStr string = "production"

// Init builds the base logger for the service and installs it as the
// zerolog global logger.
func Init(env, serviceName string) *zerolog.Logger {
	return InitWithWriter(env, serviceName, os.Stdout)
}

// InitWithWriter is Init with a caller-chosen output.
func InitWithWriter(env, serviceName string, out io.Writer) *zerolog.Logger {
	// Set global level based on environment
	switch env {
	case prodStr:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	var baseLogger zerolog.Logger

	if env == prodStr {
		baseLogger = zerolog.New(out)
	} else {
		baseLogger = zerolog.New(zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.RFC3339,
			PartsOrder: []string{
				"time", "level", "caller", "service", "env", "message", "err",
			},
			FormatLevel: func(i any) string {
				return strings.ToUpper(fmt.Sprintf("[%s]", i))
			},
			FormatCaller: func(caller any) string {
				return fmt.Sprintf("(%s)", caller)
			},
		})
	}

	baseLogger = baseLogger.With().
		Timestamp().
		Str("service", serviceName).
		Str("env", env).
		Logger()

	// Add caller info for dev
	if env != prodStr {
		baseLogger = baseLogger.With().Caller().Logger()
	}

	log.Logger = baseLogger

	return &baseLogger
}

// Nop returns a disabled logger, handy for tests and one-shot commands.
func Nop() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}
