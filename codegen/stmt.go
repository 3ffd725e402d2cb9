package codegen

import (
	"duck/ir"
	"duck/logging"
	"duck/sem"
	"duck/typing"
)

// DeclareVariable allocates storage for a variable of the context's current
// type and binds it in the current scope
func (g *Generator) DeclareVariable(ctx *sem.Context, name string) error {
	seg := ir.SegLocal
	if ctx.InGlobalScope() {
		seg = ir.SegGlobal
	}

	addr, err := g.alloc.Alloc(seg, ctx.CurrentType())
	if err != nil {
		return err
	}

	return ctx.AddVariable(name, addr)
}

// Assign pops the value on top of the operand stack and stores it into the
// named variable
func (g *Generator) Assign(ctx *sem.Context, name string) error {
	sym, err := ctx.LookupVariable(name)
	if err != nil {
		return err
	}

	src, st, err := g.popOperand()
	if err != nil {
		return err
	}

	if !typing.CanAssign(sym.Type, st) {
		return logging.Raise(logging.LMKTyping, 0, "cannot assign a value of type `%s` to `%s` of type `%s`", st, name, sym.Type)
	}

	g.emit(ir.OpAssign, src, ir.Empty, ir.Address(sym.Address, sym.Type))
	g.release(src)
	return nil
}

// Write pops one operand and emits a write of it
func (g *Generator) Write() error {
	op, dt, err := g.popOperand()
	if err != nil {
		return err
	}

	if dt == typing.Void {
		return logging.Raise(logging.LMKUsage, 0, "cannot write a value of type `void`")
	}

	g.emit(ir.OpWrite, ir.Empty, ir.Empty, op)
	g.release(op)
	return nil
}

// Read emits a read into the named variable.  It does not touch the operand
// stack.
func (g *Generator) Read(ctx *sem.Context, name string) error {
	sym, err := ctx.LookupVariable(name)
	if err != nil {
		return err
	}

	g.emit(ir.OpRead, ir.Empty, ir.Empty, ir.Address(sym.Address, sym.Type))
	return nil
}
