package logger

import (
	"fmt"
	"os"

	logging "github.com/ipfs/go-log/v2"
)

// Logger defines the interface for logging throughout the application.
// Different implementations can be used for different contexts (console, silent, structured, etc.)
type Logger interface {
	Info(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Debug(msg string, args ...interface{})
}

// ConsoleLogger writes human-readable logs to stderr, leaving stdout to
// reports.
type ConsoleLogger struct{}

func NewConsoleLogger() *ConsoleLogger {
	return &ConsoleLogger{}
}

func (c *ConsoleLogger) Info(msg string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "[INFO] "+msg+"\n", args...)
}

func (c *ConsoleLogger) Error(msg string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "[ERROR] "+msg+"\n", args...)
}

func (c *ConsoleLogger) Debug(msg string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "[DEBUG] "+msg+"\n", args...)
}

// SilentLogger discards all log messages.
// Used when running in TUI mode to prevent log output from interfering with the display.
type SilentLogger struct{}

func NewSilentLogger() *SilentLogger {
	return &SilentLogger{}
}

func (s *SilentLogger) Info(msg string, args ...interface{})  {}
func (s *SilentLogger) Error(msg string, args ...interface{}) {}
func (s *SilentLogger) Debug(msg string, args ...interface{}) {}

// EventLogger writes structured logs through go-log, so the level and
// output format follow GOLOG_LOG_LEVEL and GOLOG_LOG_FMT.
type EventLogger struct {
	log *logging.ZapEventLogger
}

// NewEventLogger returns a structured logger for the named subsystem.
func NewEventLogger(system string) *EventLogger {
	return &EventLogger{log: logging.Logger(system)}
}

// SetLevel sets the level of the logger's subsystem (e.g. "debug").
func (e *EventLogger) SetLevel(system, level string) error {
	return logging.SetLogLevel(system, level)
}

func (e *EventLogger) Info(msg string, args ...interface{}) {
	e.log.Infof(msg, args...)
}

func (e *EventLogger) Error(msg string, args ...interface{}) {
	e.log.Errorf(msg, args...)
}

func (e *EventLogger) Debug(msg string, args ...interface{}) {
	e.log.Debugf(msg, args...)
}

// New returns the logger for a --log-format value: "structured" selects
// the go-log logger, "silent" discards, anything else writes to the console.
func New(format, system string) Logger {
	switch format {
	case "structured":
		return NewEventLogger(system)
	case "silent":
		return NewSilentLogger()
	default:
		return NewConsoleLogger()
	}
}
