package logging

import (
	"sync"
)

// Logger is a type that is responsible for storing and logging output from the
// compiler as necessary
type Logger struct {
	errorCount int // Total encountered errors
	LogLevel   int

	// warnings is a list of all warnings to be logged at the end of compilation
	warnings []LogMessage

	// m is the mutex used to synchonize the printing of messages
	m *sync.Mutex
}

// Enumeration of the different log levels.  These double as the numeric
// verbosity levels accepted on the command line (0-3).
const (
	LogLevelSilent  = iota // no output at all
	LogLevelError          // only errors and closing notification (success/fail)
	LogLevelWarning        // errors, warnings, and closing message
	LogLevelVerbose        // errors, warnings, version, phase progress, quadruple dumps
)

// newLogger creates a new logger struct
func newLogger(loglevel int) Logger {
	return Logger{
		LogLevel: loglevel,
		m:        &sync.Mutex{},
	}
}

// handleMsg prompts to logger to process a message.  Errors are displayed
// immediately while warnings are held until the closing summary.
func (l *Logger) handleMsg(lm LogMessage) {
	l.m.Lock()
	defer l.m.Unlock()

	if lm.isError() {
		l.errorCount++

		if l.LogLevel > LogLevelSilent {
			displayEndPhase(false)
			lm.display()
		}
	} else {
		l.warnings = append(l.warnings, lm)
	}
}

// LogMessage is implemented by everything the logger can display
type LogMessage interface {
	display()
	isError() bool
}

// CompileMessage is an error or warning produced while compiling a source file
type CompileMessage struct {
	Err *CompileError

	// FilePath is the source file the message concerns (may be empty when the
	// source was not read from disk)
	FilePath string

	IsError bool
}

func (cm *CompileMessage) isError() bool {
	return cm.IsError
}

// ConfigError is an error related to project or compiler configuration
type ConfigError struct {
	Kind, Message string
}

func (*ConfigError) isError() bool {
	return true
}

// ConfigWarning is a non-fatal problem with the project configuration
type ConfigWarning struct {
	Kind, Message string
}

func (*ConfigWarning) isError() bool {
	return false
}

// RuntimeMessage is a fault raised by the virtual machine
type RuntimeMessage struct {
	Message string
}

func (*RuntimeMessage) isError() bool {
	return true
}
