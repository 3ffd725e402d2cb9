package codegen

import (
	"duck/ir"
	"duck/logging"
	"duck/typing"
)

// parenSentinel is the marker pushed onto the operator stack to bracket a
// parenthesized sub-expression or an argument list
const parenSentinel = "("

// Generator produces quadruples from the semantic actions fired by the parser.
// It never holds on to the semantic context: every operation that must
// resolve a name receives the context explicitly.
type Generator struct {
	// quads is the list of quadruples generated so far.
	quads []ir.Quad

	// operands is the operand stack.  types runs parallel to it and holds the
	// data type of each operand.
	operands []ir.Operand
	types    []typing.DataType

	// operators is the stack of pending operators (and paren sentinels).
	operators []string

	// temps is the temporary id pool.
	temps TempPool

	// alloc assigns global, local and constant addresses.
	alloc ir.Allocator

	// strings is the string literal table.
	strings []string

	// controls is the stack of open if/while constructs with the jump slots
	// each of them owns.
	controls []controlRecord

	// calls is the stack of calls whose argument lists are being generated.
	calls []*callRecord

	// funcs is the linkage information of every function (and main).
	funcs map[string]*ir.FuncInfo

	// current is the function whose body is being generated (nil in main).
	current *ir.FuncInfo

	// leadingJump is the index of the `GOTO main` emitted ahead of the first
	// function.  It is -1 if no functions were declared.
	leadingJump int
}

// NewGenerator creates a new, empty generator
func NewGenerator() *Generator {
	return &Generator{
		funcs:       make(map[string]*ir.FuncInfo),
		leadingJump: -1,
	}
}

// Quads returns the quadruples generated so far
func (g *Generator) Quads() []ir.Quad {
	return g.quads
}

// Temps returns the temporary pool (exposed for inspection)
func (g *Generator) Temps() *TempPool {
	return &g.temps
}

func (g *Generator) emit(op ir.Opcode, left, right, result ir.Operand) int {
	g.quads = append(g.quads, ir.Quad{Op: op, Left: left, Right: right, Result: result})
	return len(g.quads) - 1
}

// backpatch fills the pending jump target of the quadruple at `idx`
func (g *Generator) backpatch(idx, target int) error {
	if idx < 0 || idx >= len(g.quads) {
		return logging.Internal("backpatch of missing quadruple %d", idx)
	}

	if g.quads[idx].Result.Kind != ir.OKPending {
		return logging.Internal("quadruple %d has no pending jump target", idx)
	}

	g.quads[idx].Result = ir.Jump(target)
	return nil
}

// -----------------------------------------------------------------------------

func (g *Generator) pushOperand(op ir.Operand, dt typing.DataType) {
	g.operands = append(g.operands, op)
	g.types = append(g.types, dt)
}

func (g *Generator) popOperand() (ir.Operand, typing.DataType, error) {
	if len(g.operands) == 0 {
		return ir.Empty, typing.Void, logging.Internal("operand stack is empty")
	}

	n := len(g.operands) - 1
	op, dt := g.operands[n], g.types[n]
	g.operands, g.types = g.operands[:n], g.types[:n]
	return op, dt, nil
}

func (g *Generator) topOperator() (string, bool) {
	if len(g.operators) == 0 {
		return "", false
	}

	return g.operators[len(g.operators)-1], true
}

func (g *Generator) popOperator() (string, error) {
	op, ok := g.topOperator()
	if !ok {
		return "", logging.Internal("operator stack is empty")
	}

	g.operators = g.operators[:len(g.operators)-1]
	return op, nil
}

// newTemp allocates a temporary of the given type
func (g *Generator) newTemp(dt typing.DataType) ir.Operand {
	return ir.Temp(g.temps.Alloc(), dt)
}

// release returns the operand's temporary (if it is one) to the pool
func (g *Generator) release(op ir.Operand) {
	if op.Kind == ir.OKTemp {
		g.temps.Release(op.Int)
	}
}

// -----------------------------------------------------------------------------

// Finish closes the program with the END quadruple
func (g *Generator) Finish() {
	g.emit(ir.OpEnd, ir.Empty, ir.Empty, ir.Empty)
}

// Export freezes the generated code into a program object
func (g *Generator) Export(name string) (*ir.Program, error) {
	if len(g.operands) > 0 {
		return nil, logging.Internal("%d operands left on the operand stack", len(g.operands))
	}

	if len(g.controls) > 0 || len(g.calls) > 0 {
		return nil, logging.Internal("unterminated control flow or call at the end of the program")
	}

	for i, q := range g.quads {
		if q.Result.Kind == ir.OKPending {
			return nil, logging.Internal("jump at quadruple %d was never backpatched", i)
		}
	}

	funcs := make(map[string]*ir.FuncInfo, len(g.funcs)+1)
	for name, fi := range g.funcs {
		cp := *fi
		cp.Params = append([]ir.Param(nil), fi.Params...)
		funcs[name] = &cp
	}

	if _, ok := funcs[ir.MainFunc]; !ok {
		funcs[ir.MainFunc] = &ir.FuncInfo{Name: ir.MainFunc, Entry: 0, ReturnType: typing.Void}
	}

	// the constant table is built from the literals the code actually uses
	alloc := g.alloc
	consts := ir.NewConstantTable(&alloc)
	for _, q := range g.quads {
		for _, op := range [...]ir.Operand{q.Left, q.Right, q.Result} {
			if op.IsLiteral() {
				if _, err := consts.Address(op.LiteralValue()); err != nil {
					return nil, err
				}
			}
		}
	}

	prog := &ir.Program{
		Name:      name,
		Quads:     append([]ir.Quad(nil), g.quads...),
		Functions: funcs,
		Constants: consts.Values(),
		Strings:   append([]string(nil), g.strings...),
	}

	for dt := typing.Int; dt <= typing.Char; dt++ {
		prog.Globals[dt] = g.alloc.Used(ir.SegGlobal, dt)
	}

	return prog, nil
}
