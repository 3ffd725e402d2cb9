package vm

import (
	"duck/ir"
	"fmt"
)

// RuntimeError is a fault raised while executing a quadruple.  Execution stops
// at the first one.
type RuntimeError struct {
	IP      int
	Op      ir.Opcode
	Message string
}

func (re *RuntimeError) Error() string {
	return fmt.Sprintf("at L%d (%s): %s", re.IP, re.Op, re.Message)
}

// fault creates a runtime error for the quadruple at ip
func (vm *VM) fault(ip int, msg string, args ...interface{}) *RuntimeError {
	op := ir.OpEnd
	if ip >= 0 && ip < len(vm.prog.Quads) {
		op = vm.prog.Quads[ip].Op
	}

	return &RuntimeError{IP: ip, Op: op, Message: fmt.Sprintf(msg, args...)}
}
