package vm

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Console is the I/O collaborator of the virtual machine: `read` consumes one
// line and every `write` item produces one line
type Console interface {
	ReadLine() (string, error)
	WriteLine(line string) error
}

// StdConsole is a console over a reader and a writer (normally stdin/stdout)
type StdConsole struct {
	in  *bufio.Reader
	out io.Writer
}

// NewStdConsole creates a new console reading from in and writing to out
func NewStdConsole(in io.Reader, out io.Writer) *StdConsole {
	return &StdConsole{in: bufio.NewReader(in), out: out}
}

func (sc *StdConsole) ReadLine() (string, error) {
	line, err := sc.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}

	return strings.TrimRight(line, "\r\n"), nil
}

func (sc *StdConsole) WriteLine(line string) error {
	_, err := fmt.Fprintln(sc.out, line)
	return err
}

// ErrNoInput is returned by a scripted console that ran out of input lines
var ErrNoInput = errors.New("no more input")

// ScriptedConsole replays a fixed list of input lines and records every line
// written to it
type ScriptedConsole struct {
	Inputs []string
	Output []string

	next int
}

func (sc *ScriptedConsole) ReadLine() (string, error) {
	if sc.next >= len(sc.Inputs) {
		return "", ErrNoInput
	}

	line := sc.Inputs[sc.next]
	sc.next++
	return line, nil
}

func (sc *ScriptedConsole) WriteLine(line string) error {
	sc.Output = append(sc.Output, line)
	return nil
}
