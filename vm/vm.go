package vm

import (
	"duck/common"
	"duck/ir"
	"duck/typing"
	"strconv"
	"strings"
)

// VM executes a program object.  Globals and constants are shared by every
// frame; locals and temporaries live in the frame on top of the call stack.
type VM struct {
	prog    *ir.Program
	console Console

	globals map[int]ir.Value
	frames  []*Frame

	// pending holds the frames announced by ERA whose GOSUB has not run yet.
	// Calls nest when an argument is itself a call.
	pending []*Frame

	// MaxCallDepth bounds the number of live frames
	MaxCallDepth int

	// halted is set once END runs
	halted bool
}

// New creates a virtual machine for a program
func New(prog *ir.Program, console Console) *VM {
	return &VM{
		prog:         prog,
		console:      console,
		globals:      make(map[int]ir.Value),
		MaxCallDepth: common.DefaultMaxCallDepth,
	}
}

// Run executes the program from the entry of its main body until END (or the
// end of the instruction list)
func (vm *VM) Run() error {
	entry := vm.prog.Main()
	if entry == nil {
		entry = &ir.FuncInfo{Name: ir.MainFunc, Entry: 0, ReturnType: typing.Void}
	}

	vm.halted = false
	vm.frames = []*Frame{newFrame(entry)}
	vm.pending = nil

	err := vm.execute(entry.Entry)
	vm.frames = nil
	return err
}

// execute is the fetch loop.  It returns when the current frame finishes: on
// ENDFUNC, RETURN or END, or when the instruction pointer leaves the program.
// Calls re-enter it recursively for the callee.
func (vm *VM) execute(ip int) error {
	for ip >= 0 && ip < len(vm.prog.Quads) {
		q := vm.prog.Quads[ip]
		next := ip + 1

		switch {
		case q.Op.IsArith() || q.Op.IsRelational():
			if err := vm.binary(ip, q); err != nil {
				return err
			}
		default:
			switch q.Op {
			case ir.OpAssign:
				v, err := vm.load(ip, q.Left)
				if err != nil {
					return err
				}

				if err := vm.store(ip, q.Result, v); err != nil {
					return err
				}
			case ir.OpGoto:
				target, err := vm.jumpTarget(ip, q.Result)
				if err != nil {
					return err
				}

				next = target
			case ir.OpGotoF:
				cond, err := vm.load(ip, q.Left)
				if err != nil {
					return err
				}

				if !cond.Truthy() {
					target, err := vm.jumpTarget(ip, q.Result)
					if err != nil {
						return err
					}

					next = target
				}
			case ir.OpWrite:
				if err := vm.write(ip, q.Result); err != nil {
					return err
				}
			case ir.OpRead:
				if err := vm.read(ip, q.Result); err != nil {
					return err
				}
			case ir.OpEra:
				fn, ok := vm.prog.Functions[q.Result.Name]
				if !ok {
					return vm.fault(ip, "call to undefined function `%s`", q.Result.Name)
				}

				vm.pending = append(vm.pending, newFrame(fn))
			case ir.OpParam:
				if err := vm.param(ip, q); err != nil {
					return err
				}
			case ir.OpGosub:
				if err := vm.call(ip, q); err != nil {
					return err
				}

				if vm.halted {
					return nil
				}
			case ir.OpReturn:
				frame, err := vm.top(ip)
				if err != nil {
					return err
				}

				v, err := vm.load(ip, q.Result)
				if err != nil {
					return err
				}

				v = v.Convert(frame.Func.ReturnType)
				frame.ret = &v
				return nil
			case ir.OpEndFunc:
				return nil
			case ir.OpEnd:
				vm.halted = true
				return nil
			default:
				return vm.fault(ip, "unknown operator")
			}
		}

		ip = next
	}

	return nil
}

// call runs the frame announced by the innermost ERA and copies its return
// value (if any) into the destination of the GOSUB
func (vm *VM) call(ip int, q ir.Quad) error {
	if len(vm.pending) == 0 {
		return vm.fault(ip, "GOSUB without a matching ERA")
	}

	frame := vm.pending[len(vm.pending)-1]
	vm.pending = vm.pending[:len(vm.pending)-1]

	if frame.Func.Name != q.Left.Name {
		return vm.fault(ip, "GOSUB to `%s` does not match the pending call to `%s`", q.Left.Name, frame.Func.Name)
	}

	if len(vm.frames) >= vm.MaxCallDepth {
		return vm.fault(ip, "maximum call depth (%d) exceeded calling `%s`", vm.MaxCallDepth, frame.Func.Name)
	}

	vm.frames = append(vm.frames, frame)
	if err := vm.execute(frame.Func.Entry); err != nil {
		return err
	}
	vm.frames = vm.frames[:len(vm.frames)-1]

	if vm.halted {
		return nil
	}

	if frame.Func.HasReturn && frame.ret == nil {
		return vm.fault(ip, "function `%s` finished without returning a value", frame.Func.Name)
	}

	if q.Result.Kind == ir.OKEmpty {
		return nil
	}

	if frame.ret == nil {
		return vm.fault(ip, "void function `%s` has no value", frame.Func.Name)
	}

	return vm.store(ip, q.Result, *frame.ret)
}

// param copies an argument into the parameter slot of the pending frame
func (vm *VM) param(ip int, q ir.Quad) error {
	if len(vm.pending) == 0 {
		return vm.fault(ip, "PARAM without a matching ERA")
	}
	frame := vm.pending[len(vm.pending)-1]

	v, err := vm.load(ip, q.Left)
	if err != nil {
		return err
	}

	addr, ok := q.Result.TargetAddress()
	if !ok {
		return vm.fault(ip, "invalid parameter slot %s", q.Result)
	}

	seg, dt, _, ok := ir.Classify(addr)
	if !ok || seg != ir.SegLocal {
		return vm.fault(ip, "parameter slot @%d is not a local address", addr)
	}

	frame.locals[addr] = v.Convert(dt)
	return nil
}

// binary applies an arithmetic or relational operator.  Int operands are
// combined in integer arithmetic and anything involving a float in floating
// point.
func (vm *VM) binary(ip int, q ir.Quad) error {
	l, err := vm.load(ip, q.Left)
	if err != nil {
		return err
	}

	r, err := vm.load(ip, q.Right)
	if err != nil {
		return err
	}

	var result ir.Value
	if q.Op.IsRelational() {
		result = compare(q.Op, l.AsFloat(), r.AsFloat())
	} else if l.Type != typing.Float && r.Type != typing.Float {
		if q.Op == ir.OpDiv && r.Int == 0 {
			return vm.fault(ip, "division by zero")
		}

		// ints are computed in float64 and narrowed back
		result = ir.IntValue(int(floatArith(q.Op, float64(l.Int), float64(r.Int))))
	} else {
		if q.Op == ir.OpDiv && r.AsFloat() == 0 {
			return vm.fault(ip, "division by zero")
		}

		result = ir.FloatValue(floatArith(q.Op, l.AsFloat(), r.AsFloat()))
	}

	return vm.store(ip, q.Result, result)
}

func floatArith(op ir.Opcode, l, r float64) float64 {
	switch op {
	case ir.OpAdd:
		return l + r
	case ir.OpSub:
		return l - r
	case ir.OpMul:
		return l * r
	}

	return l / r
}

func compare(op ir.Opcode, l, r float64) ir.Value {
	var res bool
	switch op {
	case ir.OpGt:
		res = l > r
	case ir.OpLt:
		res = l < r
	case ir.OpEq:
		res = l == r
	case ir.OpNe:
		res = l != r
	}

	if res {
		return ir.IntValue(1)
	}

	return ir.IntValue(0)
}

// write prints a single value or string table entry
func (vm *VM) write(ip int, op ir.Operand) error {
	var line string
	if op.Kind == ir.OKString {
		if op.Int < 0 || op.Int >= len(vm.prog.Strings) {
			return vm.fault(ip, "string s%d is not in the string table", op.Int)
		}

		line = vm.prog.Strings[op.Int]
	} else {
		v, err := vm.load(ip, op)
		if err != nil {
			return err
		}

		line = v.String()
	}

	if err := vm.console.WriteLine(line); err != nil {
		return vm.fault(ip, "write failed: %s", err)
	}

	return nil
}

// read parses one input line according to the type of the destination
func (vm *VM) read(ip int, op ir.Operand) error {
	addr, ok := op.TargetAddress()
	if !ok {
		return vm.fault(ip, "invalid read destination %s", op)
	}

	_, dt, _, ok := ir.Classify(addr)
	if !ok {
		return vm.fault(ip, "address @%d is outside of every segment", addr)
	}

	line, err := vm.console.ReadLine()
	if err != nil {
		return vm.fault(ip, "read failed: %s", err)
	}
	text := strings.TrimSpace(line)

	var v ir.Value
	switch dt {
	case typing.Int:
		n, err := strconv.Atoi(text)
		if err != nil {
			return vm.fault(ip, "cannot read `%s` as an int", text)
		}

		v = ir.IntValue(n)
	case typing.Float:
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return vm.fault(ip, "cannot read `%s` as a float", text)
		}

		v = ir.FloatValue(f)
	case typing.Char:
		runes := []rune(text)
		if len(runes) != 1 {
			return vm.fault(ip, "cannot read `%s` as a char", text)
		}

		v = ir.CharValue(runes[0])
	}

	return vm.store(ip, op, v)
}

func (vm *VM) jumpTarget(ip int, op ir.Operand) (int, error) {
	if op.Kind != ir.OKJump {
		return 0, vm.fault(ip, "jump has no resolved target")
	}

	if op.Int < 0 || op.Int > len(vm.prog.Quads) {
		return 0, vm.fault(ip, "jump target L%d is out of range", op.Int)
	}

	return op.Int, nil
}
