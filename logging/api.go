package logging

import (
	"errors"
	"os"
)

// logger is a global reference to a shared Logger (created/initialized with the
// compiler, but separated for general usage).  It starts out silent so that
// library code and tests never print.
var logger = newLogger(LogLevelSilent)

// Initialize initializes the global logger with the provided log level
func Initialize(loglevelname string) {
	logger = newLogger(ParseLogLevel(loglevelname))
}

// ParseLogLevel converts a log level name (or its numeric form) into a log
// level.  Anything unrecognized defaults to verbose.
func ParseLogLevel(loglevelname string) int {
	switch loglevelname {
	case "silent", "0":
		return LogLevelSilent
	case "error", "1":
		return LogLevelError
	case "warn", "warning", "2":
		return LogLevelWarning
	default:
		return LogLevelVerbose
	}
}

// Level returns the log level of the global logger
func Level() int {
	return logger.LogLevel
}

// ShouldProceed indicates whether or not the log module has encountered an errors.
func ShouldProceed() bool {
	return logger.errorCount == 0
}

// -----------------------------------------------------------------------------
// NOTE: All log functions will only display if the appropriate log level is
// set.  Most log functions will simply fail silently if below their appropriate
// log level.

// LogCompileHeader displays the compiler banner for a target at verbose level
func LogCompileHeader(target string, cached bool) {
	if logger.LogLevel == LogLevelVerbose {
		displayCompileHeader(target, cached)
	}
}

// LogError logs an error returned by one of the compiler phases.  Compile
// errors are displayed with a banner and source selection; everything else is
// displayed as a plain error of the given kind.
func LogError(filePath, kind string, err error) {
	var ce *CompileError
	if errors.As(err, &ce) {
		logger.handleMsg(&CompileMessage{Err: ce, FilePath: filePath, IsError: true})
	} else {
		logger.handleMsg(&ConfigError{Kind: kind, Message: err.Error()})
	}
}

// LogCompileWarning logs a compilation warning (user-induced, problematic code)
func LogCompileWarning(filePath string, kind int, message string) {
	logger.handleMsg(&CompileMessage{
		Err:      &CompileError{Kind: kind, Message: message},
		FilePath: filePath,
		IsError:  false,
	})
}

// LogConfigError logs an error related to project or compiler configuration
func LogConfigError(kind, message string) {
	logger.handleMsg(&ConfigError{Kind: kind, Message: message})
}

// LogConfigWarning logs a warning about the project configuration
func LogConfigWarning(kind, message string) {
	logger.handleMsg(&ConfigWarning{Kind: kind, Message: message})
}

// LogRuntimeError logs a fault raised while executing a program
func LogRuntimeError(err error) {
	logger.handleMsg(&RuntimeMessage{Message: err.Error()})
}

// LogBeginPhase starts the spinner for a compilation phase
func LogBeginPhase(phase string) {
	if logger.LogLevel == LogLevelVerbose {
		displayBeginPhase(phase)
	}
}

// LogEndPhase stops the spinner of the current phase
func LogEndPhase(success bool) {
	if logger.LogLevel == LogLevelVerbose {
		displayEndPhase(success)
	}
}

// LogQuadTable displays a quadruple listing as a table.  The rows are the
// rendered (op, left, right, result) columns of each quadruple.
func LogQuadTable(title string, rows [][]string) {
	if logger.LogLevel > LogLevelSilent {
		displayQuadTable(title, rows)
	}
}

// LogCompilationFinished displays the buffered warnings followed by the
// closing summary
func LogCompilationFinished() {
	logger.m.Lock()
	defer logger.m.Unlock()

	if logger.LogLevel >= LogLevelWarning {
		for _, w := range logger.warnings {
			w.display()
		}
	}

	if logger.LogLevel > LogLevelSilent {
		displayCompilationFinished(logger.errorCount == 0, logger.errorCount, len(logger.warnings))
	}
}

// LogFatal logs a fatal compilation error that was not expected: ie. the
// compiler did something it wasn't supposed to.  This exits the process.
func LogFatal(message string) {
	if logger.LogLevel > LogLevelSilent {
		displayEndPhase(false)
		displayFatalError(message)
	}

	os.Exit(1)
}
