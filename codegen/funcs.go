package codegen

import (
	"duck/ir"
	"duck/logging"
	"duck/sem"
	"duck/typing"
)

// callRecord tracks a call whose arguments are being generated
type callRecord struct {
	fn   *sem.FunctionEntry
	args int
}

// BeginFunction registers a function and records its entry point.  The first
// function also emits the leading `GOTO main` that skips over the function
// bodies.
func (g *Generator) BeginFunction(ctx *sem.Context, name string, ret typing.DataType) error {
	if err := ctx.BeginFunction(name, ret); err != nil {
		return err
	}

	if g.leadingJump == -1 {
		g.leadingJump = g.emit(ir.OpGoto, ir.Empty, ir.Empty, ir.Pending)
	}

	g.alloc.ResetLocals()
	g.current = &ir.FuncInfo{
		Name:       name,
		Entry:      len(g.quads),
		HasReturn:  ret != typing.Void,
		ReturnType: ret,
	}
	g.funcs[name] = g.current
	return nil
}

// AddParameter allocates a local slot for a parameter of the current function
func (g *Generator) AddParameter(ctx *sem.Context, name string, dt typing.DataType) error {
	if g.current == nil {
		return logging.Internal("parameter `%s` outside of a function", name)
	}

	addr, err := g.alloc.Alloc(ir.SegLocal, dt)
	if err != nil {
		return err
	}

	if err := ctx.AddParameter(name, dt, addr); err != nil {
		return err
	}

	g.current.Params = append(g.current.Params, ir.Param{Type: dt, Address: addr})
	g.current.ParamCount++
	return nil
}

// EndFunction closes the body of the current function
func (g *Generator) EndFunction(ctx *sem.Context) error {
	if g.current == nil {
		return logging.Internal("end of function outside of a function")
	}

	g.emit(ir.OpEndFunc, ir.Empty, ir.Empty, ir.Empty)
	g.current = nil
	ctx.EndFunction()
	return nil
}

// MarkMain records the start of the main body and resolves the leading jump
func (g *Generator) MarkMain() error {
	if g.leadingJump != -1 {
		if err := g.backpatch(g.leadingJump, len(g.quads)); err != nil {
			return err
		}
	}

	g.funcs[ir.MainFunc] = &ir.FuncInfo{Name: ir.MainFunc, Entry: len(g.quads), ReturnType: typing.Void}
	return nil
}

// Return emits the return of the value on top of the operand stack
func (g *Generator) Return() error {
	if g.current == nil {
		return logging.Raise(logging.LMKUsage, 0, "`return` outside of a function")
	}

	if !g.current.HasReturn {
		return logging.Raise(logging.LMKUsage, 0, "void function `%s` cannot return a value", g.current.Name)
	}

	val, dt, err := g.popOperand()
	if err != nil {
		return err
	}

	if !typing.CanAssign(g.current.ReturnType, dt) {
		return logging.Raise(logging.LMKTyping, 0, "cannot return a value of type `%s` from `%s` (returns `%s`)", dt, g.current.Name, g.current.ReturnType)
	}

	g.emit(ir.OpReturn, ir.Empty, ir.Empty, val)
	g.release(val)
	return nil
}

// -----------------------------------------------------------------------------

// BeginCall verifies the callee and announces it with ERA
func (g *Generator) BeginCall(ctx *sem.Context, name string) error {
	fn, err := ctx.LookupFunction(name)
	if err != nil {
		return err
	}

	g.emit(ir.OpEra, ir.Empty, ir.Empty, ir.Func(name))
	g.calls = append(g.calls, &callRecord{fn: fn})
	g.OpenParen()
	return nil
}

// Argument pops the next argument of the innermost call and copies it into the
// matching parameter slot
func (g *Generator) Argument() error {
	if len(g.calls) == 0 {
		return logging.Internal("argument outside of a call")
	}
	rec := g.calls[len(g.calls)-1]

	arg, dt, err := g.popOperand()
	if err != nil {
		return err
	}

	if rec.args >= len(rec.fn.Params) {
		return logging.Raise(logging.LMKUsage, 0, "too many arguments in call to `%s` (expects %d)", rec.fn.Name, len(rec.fn.Params))
	}

	param := rec.fn.Params[rec.args]
	if !typing.CanAssign(param.Type, dt) {
		return logging.Raise(
			logging.LMKTyping, 0,
			"argument %d of `%s` must be of type `%s`, got `%s`",
			rec.args+1, rec.fn.Name, param.Type, dt,
		)
	}

	g.emit(ir.OpParam, arg, ir.Empty, ir.Address(param.Address, param.Type))
	g.release(arg)
	rec.args++
	return nil
}

// EndCall emits the GOSUB of the innermost call.  If the callee returns a
// value, a temporary receiving it is pushed onto the operand stack and the
// function returns true.
func (g *Generator) EndCall() (bool, error) {
	if len(g.calls) == 0 {
		return false, logging.Internal("end of call outside of a call")
	}

	rec := g.calls[len(g.calls)-1]
	g.calls = g.calls[:len(g.calls)-1]

	if rec.args != len(rec.fn.Params) {
		return false, logging.Raise(
			logging.LMKUsage, 0,
			"`%s` expects %d arguments, got %d",
			rec.fn.Name, len(rec.fn.Params), rec.args,
		)
	}

	if err := g.CloseParen(); err != nil {
		return false, err
	}

	if rec.fn.ReturnType == typing.Void {
		g.emit(ir.OpGosub, ir.Func(rec.fn.Name), ir.Empty, ir.Empty)
		return false, nil
	}

	dest := g.newTemp(rec.fn.ReturnType)
	g.emit(ir.OpGosub, ir.Func(rec.fn.Name), ir.Empty, dest)
	g.pushOperand(dest, rec.fn.ReturnType)
	return true, nil
}

// DiscardResult drops the value of a call used as a statement
func (g *Generator) DiscardResult() error {
	op, _, err := g.popOperand()
	if err != nil {
		return err
	}

	g.release(op)
	return nil
}
