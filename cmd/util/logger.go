package util

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/lni/dragonboat/v4/logger"
)

// --------------------------------------------------------------------------
// Custom Logger (implements logger.ILogger)
// --------------------------------------------------------------------------

// gkvLogger implements the ILogger interface with a single-line format of
// the form "LEVEL [subsystem] message"
type gkvLogger struct {
	name  string
	level logger.LogLevel
	out   *log.Logger
}

func (l *gkvLogger) SetLevel(level logger.LogLevel) {
	l.level = level
}

func (l *gkvLogger) Debugf(format string, args ...interface{}) {
	l.logf(logger.DEBUG, "DEBUG", format, args...)
}

func (l *gkvLogger) Infof(format string, args ...interface{}) {
	l.logf(logger.INFO, "INFO", format, args...)
}

func (l *gkvLogger) Warningf(format string, args ...interface{}) {
	l.logf(logger.WARNING, "WARN", format, args...)
}

func (l *gkvLogger) Errorf(format string, args ...interface{}) {
	l.logf(logger.ERROR, "ERROR", format, args...)
}

// Panicf always panics; the message is written first so it reaches the log
// even when the panic is recovered higher up
func (l *gkvLogger) Panicf(format string, args ...interface{}) {
	l.logf(logger.CRITICAL, "PANIC", format, args...)
	panic(fmt.Sprintf(format, args...))
}

// logf gates on the configured level and writes one formatted line
func (l *gkvLogger) logf(level logger.LogLevel, tag string, format string, args ...interface{}) {
	if l.level < level {
		return
	}
	l.out.Printf("%-5s [%s] %s", tag, l.name, fmt.Sprintf(format, args...))
}

// --------------------------------------------------------------------------
// Logger Factory
// --------------------------------------------------------------------------

// CreateLogger implements the dragonboat logger Factory interface
func CreateLogger(pkgName string) logger.ILogger {
	return &gkvLogger{
		name:  pkgName,
		level: logger.INFO,
		out:   log.New(os.Stderr, "", log.Ldate|log.Ltime),
	}
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// parseLogLevel converts a string level to logger.LogLevel
func parseLogLevel(level string) logger.LogLevel {
	switch strings.ToLower(level) {
	case "debug":
		return logger.DEBUG
	case "info":
		return logger.INFO
	case "warning", "warn":
		return logger.WARNING
	case "error":
		return logger.ERROR
	default:
		panic(fmt.Sprintf("invalid log level: %s. must be one of debug, info, warn, error", level))
	}
}

// --------------------------------------------------------------------------
// Logger initialization
// --------------------------------------------------------------------------

// InitLoggers installs the custom factory and sets the level of all
// subsystem loggers
func InitLoggers(level string) {
	// Set as the global logger factory
	logger.SetLoggerFactory(CreateLogger)

	// configure subsystem loggers
	logger.GetLogger("guard").SetLevel(parseLogLevel(level))
	logger.GetLogger("memory").SetLevel(parseLogLevel(level))
	logger.GetLogger("resilient").SetLevel(parseLogLevel(level))
	logger.GetLogger("cmd").SetLevel(parseLogLevel(level))
}
