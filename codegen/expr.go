package codegen

import (
	"duck/ir"
	"duck/logging"
	"duck/sem"
	"duck/typing"
	"strconv"
)

// PushOperand resolves a variable through the semantic context and pushes its
// address onto the operand stack
func (g *Generator) PushOperand(ctx *sem.Context, name string) error {
	sym, err := ctx.LookupVariable(name)
	if err != nil {
		return err
	}

	g.pushOperand(ir.Address(sym.Address, sym.Type), sym.Type)
	return nil
}

// PushLiteral pushes an int, float or char literal
func (g *Generator) PushLiteral(v ir.Value) {
	g.pushOperand(ir.Literal(v), v.Type)
}

// PushString decodes and interns a string literal (quotes included) and
// pushes a reference to it
func (g *Generator) PushString(lit string) error {
	text, err := strconv.Unquote(lit)
	if err != nil {
		return logging.Raise(logging.LMKToken, 0, "malformed string literal %s", lit)
	}

	for i, s := range g.strings {
		if s == text {
			g.pushOperand(ir.StringRef(i), typing.String)
			return nil
		}
	}

	g.strings = append(g.strings, text)
	g.pushOperand(ir.StringRef(len(g.strings)-1), typing.String)
	return nil
}

// NegateLiteral negates the literal on top of the operand stack
func (g *Generator) NegateLiteral() error {
	op, dt, err := g.popOperand()
	if err != nil {
		return err
	}

	switch op.Kind {
	case ir.OKIntLit:
		op.Int = -op.Int
	case ir.OKFloatLit:
		op.Float = -op.Float
	default:
		return logging.Raise(logging.LMKTyping, 0, "unary `-` cannot be applied to `%s`", dt)
	}

	g.pushOperand(op, dt)
	return nil
}

// PushOperator pushes a pending operator
func (g *Generator) PushOperator(op string) {
	g.operators = append(g.operators, op)
}

// OpenParen pushes the sentinel that brackets a sub-expression
func (g *Generator) OpenParen() {
	g.operators = append(g.operators, parenSentinel)
}

// CloseParen pops the sentinel pushed by the matching OpenParen
func (g *Generator) CloseParen() error {
	op, ok := g.topOperator()
	if !ok || op != parenSentinel {
		return logging.Internal("closing parenthesis without a matching marker")
	}

	g.operators = g.operators[:len(g.operators)-1]
	return nil
}

// GenerateAdditive emits the pending `+` or `-` (if that is what is on top
// of the operator stack)
func (g *Generator) GenerateAdditive() error {
	if op, ok := g.topOperator(); ok && (op == "+" || op == "-") {
		return g.generateBinary()
	}

	return nil
}

// GenerateMultiplicative emits the pending `*` or `/`
func (g *Generator) GenerateMultiplicative() error {
	if op, ok := g.topOperator(); ok && (op == "*" || op == "/") {
		return g.generateBinary()
	}

	return nil
}

// GenerateRelational emits the pending relational operator.  If the
// expression is the whole condition of an `if` or `while` header, the
// conditional jump out of the construct is emitted right after it.
func (g *Generator) GenerateRelational() error {
	op, ok := g.topOperator()
	if !ok || typing.ClassOf(op) != typing.OpClassRel {
		return nil
	}

	if err := g.generateBinary(); err != nil {
		return err
	}

	if g.awaitsCondition() {
		return g.emitConditionJump()
	}

	return nil
}

// generateBinary pops two operands and an operator, validates them against the
// semantic cube and emits the operation into a fresh temporary
func (g *Generator) generateBinary() error {
	right, rt, err := g.popOperand()
	if err != nil {
		return err
	}

	left, lt, err := g.popOperand()
	if err != nil {
		return err
	}

	op, err := g.popOperator()
	if err != nil {
		return err
	}

	opcode, ok := ir.OpcodeOf(op)
	if !ok {
		return logging.Internal("unknown operator `%s`", op)
	}

	dt, ok := typing.Result(lt, op, rt)
	if !ok {
		return logging.Raise(logging.LMKTyping, 0, "operator `%s` cannot be applied to `%s` and `%s`", op, lt, rt)
	}

	tmp := g.newTemp(dt)
	g.emit(opcode, left, right, tmp)
	g.pushOperand(tmp, dt)

	g.release(left)
	g.release(right)
	return nil
}
