package build

import (
	"duck/ir"
	"duck/logging"
	"duck/mods"
	"duck/vm"
	"io"
	"strings"
)

// NewConsole creates the console a program runs against: scripted input lines
// from the project settings take the place of in when present
func NewConsole(settings mods.RunSettings, in io.Reader, out io.Writer) vm.Console {
	if len(settings.Inputs) > 0 {
		in = strings.NewReader(strings.Join(settings.Inputs, "\n"))
	}

	return vm.NewStdConsole(in, out)
}

// Run executes a program object on a console.  A runtime fault is logged
// before it is returned.
func Run(prog *ir.Program, console vm.Console, settings mods.RunSettings) error {
	machine := vm.New(prog, console)
	if settings.MaxCallDepth > 0 {
		machine.MaxCallDepth = settings.MaxCallDepth
	}

	if err := machine.Run(); err != nil {
		logging.LogRuntimeError(err)
		return err
	}

	return nil
}
