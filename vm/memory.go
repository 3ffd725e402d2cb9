package vm

import (
	"duck/ir"
)

func (vm *VM) top(ip int) (*Frame, error) {
	if len(vm.frames) == 0 {
		return nil, vm.fault(ip, "no active call frame")
	}

	return vm.frames[len(vm.frames)-1], nil
}

// load resolves an operand to a value: literals stand for themselves and
// addresses are read from the segment they classify into
func (vm *VM) load(ip int, op ir.Operand) (ir.Value, error) {
	if op.IsLiteral() {
		return op.LiteralValue(), nil
	}

	addr, ok := op.TargetAddress()
	if !ok {
		return ir.Value{}, vm.fault(ip, "operand %s has no value", op)
	}

	seg, _, _, ok := ir.Classify(addr)
	if !ok {
		return ir.Value{}, vm.fault(ip, "address @%d is outside of every segment", addr)
	}

	var (
		v     ir.Value
		found bool
	)

	switch seg {
	case ir.SegGlobal:
		v, found = vm.globals[addr]
	case ir.SegConst:
		v, found = vm.prog.Constants[addr]
	default:
		frame, err := vm.top(ip)
		if err != nil {
			return ir.Value{}, err
		}

		v, found = frame.store(seg)[addr]
	}

	if !found {
		return ir.Value{}, vm.fault(ip, "read of %s address @%d before it was written", seg, addr)
	}

	return v, nil
}

// store writes a value to the address an operand denotes, converting it to
// the type of the destination range
func (vm *VM) store(ip int, op ir.Operand, v ir.Value) error {
	addr, ok := op.TargetAddress()
	if !ok {
		return vm.fault(ip, "operand %s is not writable", op)
	}

	seg, dt, _, ok := ir.Classify(addr)
	if !ok {
		return vm.fault(ip, "address @%d is outside of every segment", addr)
	}

	v = v.Convert(dt)

	switch seg {
	case ir.SegGlobal:
		vm.globals[addr] = v
	case ir.SegConst:
		return vm.fault(ip, "constant address @%d is read-only", addr)
	default:
		frame, err := vm.top(ip)
		if err != nil {
			return err
		}

		frame.store(seg)[addr] = v
	}

	return nil
}
