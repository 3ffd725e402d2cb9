package logging

import "fmt"

// Enumeration of compile message kinds (used to label error banners)
const (
	LMKGrammar  = iota // malformed grammar text or table conflicts
	LMKToken           // unrecognized characters
	LMKSyntax          // no parser action for a token
	LMKName            // undeclared names
	LMKDef             // duplicate definitions
	LMKTyping          // semantic cube rejections
	LMKUsage           // misuse of a well-typed construct (void in expression, etc.)
	LMKInternal        // broken generator invariants
	LMKRuntime         // virtual machine faults
)

// CompileError is a compilation error with an optional source line.  Line is
// 1-based; a zero line means the position is unknown.
type CompileError struct {
	Kind    int
	Message string
	Line    int
}

func (ce *CompileError) Error() string {
	if ce.Line > 0 {
		return fmt.Sprintf("line %d: %s", ce.Line, ce.Message)
	}

	return ce.Message
}

// Raise creates a new compile error of the given kind
func Raise(kind, line int, msg string, args ...interface{}) *CompileError {
	return &CompileError{Kind: kind, Message: fmt.Sprintf(msg, args...), Line: line}
}

// Internal creates a compile error indicating a broken internal invariant
func Internal(msg string, args ...interface{}) *CompileError {
	return Raise(LMKInternal, 0, msg, args...)
}
