package txbench

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

type LogLevelType uint8

const (
	LevelVerbose LogLevelType = 50
	LevelDebug   LogLevelType = 40
	LevelInfo    LogLevelType = 30
	LevelWarn    LogLevelType = 20
	LevelError   LogLevelType = 10
	LevelQuiet   LogLevelType = 0
)

var (
	nameToLevels = map[string]LogLevelType{
		"verbose": LevelVerbose,
		"debug":   LevelDebug,
		"info":    LevelInfo,
		"warn":    LevelWarn,
		"error":   LevelError,
		"quiet":   LevelQuiet,
	}
	levelsToZerolog = map[LogLevelType]zerolog.Level{
		LevelVerbose: zerolog.TraceLevel,
		LevelDebug:   zerolog.DebugLevel,
		LevelInfo:    zerolog.InfoLevel,
		LevelWarn:    zerolog.WarnLevel,
		LevelError:   zerolog.ErrorLevel,
		LevelQuiet:   zerolog.Disabled,
	}
)

var (
	logger = NewLogger(os.Stderr, LevelInfo)
)

// NewLogger returns a console logger writing to w at the given level.
func NewLogger(w io.Writer, level LogLevelType) zerolog.Logger {
	out := zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339, NoColor: true}
	return zerolog.New(out).Level(levelsToZerolog[level]).With().Timestamp().Logger()
}

// SetLogLevel changes the level of the package logger by name.
func SetLogLevel(name string) error {
	level, ok := nameToLevels[name]
	if !ok {
		return errors.Errorf("unknown log level: %s", name)
	}
	logger = logger.Level(levelsToZerolog[level])
	return nil
}

// SetLogOutput redirects the package logger, keeping its level.
func SetLogOutput(w io.Writer) {
	level := logger.GetLevel()
	logger = NewLogger(w, LevelInfo).Level(level)
}

// Logger returns the package logger for structured fields.
func Logger() *zerolog.Logger {
	return &logger
}

func Errorf(format string, args ...interface{}) {
	logger.Error().Msgf(format, args...)
}

func Warnf(format string, args ...interface{}) {
	logger.Warn().Msgf(format, args...)
}

func Infof(format string, args ...interface{}) {
	logger.Info().Msgf(format, args...)
}

func Debugf(format string, args ...interface{}) {
	logger.Debug().Msgf(format, args...)
}

func Verbosef(format string, args ...interface{}) {
	logger.Trace().Msgf(format, args...)
}

// Fatalf logs at fatal level and exits the process with status 1.
func Fatalf(format string, args ...interface{}) {
	logger.Fatal().Msgf(format, args...)
	// a disabled logger drops the event without exiting
	os.Exit(1)
}

func PromptPrintf(format string, args ...interface{}) {
	fmt.Printf(format, args...)
}

func Printf(format string, args ...interface{}) {
	fmt.Printf(format, args...)
	fmt.Println("")
}

func EPrintf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format, args...)
	fmt.Fprintln(os.Stderr, "")
}
