package codegen

import (
	"duck/ir"
	"duck/logging"
)

// controlRecord is an open `if` or `while` together with the jumps it owns
type controlRecord interface {
	// falseJumpSlot returns a pointer to the index of the construct's GOTOF
	falseJumpSlot() *int

	// headerOf returns the state of the construct's condition header
	headerOf() *header
}

// header tracks the condition of an `if` or `while` while it is parsed.  Only
// a relational completed at the header's own operator depth is the
// condition: one nested in parentheses or in a call argument is an operand.
type header struct {
	open bool

	// depth is the size of the operator stack when the header opened
	depth int
}

func (h *header) headerOf() *header {
	return h
}

// condRecord is the backpatch record of an `if`
type condRecord struct {
	header

	// falseJump is the GOTOF out of the `then` branch
	falseJump int

	// exitJump is the GOTO over the `else` branch (-1 without an else)
	exitJump int
}

func (cr *condRecord) falseJumpSlot() *int {
	return &cr.falseJump
}

// loopRecord is the backpatch record of a `while`
type loopRecord struct {
	header

	// top is the index of the first quadruple of the loop condition
	top int

	// falseJump is the GOTOF out of the loop
	falseJump int
}

func (lr *loopRecord) falseJumpSlot() *int {
	return &lr.falseJump
}

func (g *Generator) topControl() (controlRecord, error) {
	if len(g.controls) == 0 {
		return nil, logging.Internal("no open control construct")
	}

	return g.controls[len(g.controls)-1], nil
}

func (g *Generator) popControl() (controlRecord, error) {
	cr, err := g.topControl()
	if err != nil {
		return nil, err
	}

	g.controls = g.controls[:len(g.controls)-1]
	return cr, nil
}

// EnterCondition opens the header of an `if`
func (g *Generator) EnterCondition() {
	g.controls = append(g.controls, &condRecord{
		header:    g.openHeader(),
		falseJump: -1,
		exitJump:  -1,
	})
}

// EnterLoop opens the header of a `while`, remembering where the loop
// condition starts
func (g *Generator) EnterLoop() {
	g.controls = append(g.controls, &loopRecord{
		header:    g.openHeader(),
		top:       len(g.quads),
		falseJump: -1,
	})
}

func (g *Generator) openHeader() header {
	return header{open: true, depth: len(g.operators)}
}

// awaitsCondition reports whether a relational just generated is the condition
// of the innermost open header
func (g *Generator) awaitsCondition() bool {
	if len(g.controls) == 0 {
		return false
	}

	cr := g.controls[len(g.controls)-1]
	h := cr.headerOf()
	return h.open && *cr.falseJumpSlot() == -1 && len(g.operators) == h.depth
}

// emitConditionJump emits the GOTOF on the relational result on top of the
// operand stack and hands it to the innermost construct
func (g *Generator) emitConditionJump() error {
	cr, err := g.topControl()
	if err != nil {
		return err
	}

	cond, _, err := g.popOperand()
	if err != nil {
		return err
	}

	slot := cr.falseJumpSlot()
	if *slot != -1 {
		return logging.Internal("construct already owns a conditional jump")
	}

	*slot = g.emit(ir.OpGotoF, cond, ir.Empty, ir.Pending)
	g.release(cond)
	return nil
}

// LeaveHeader closes the header of the innermost construct (at `then` or
// `do`).  The header must have produced its conditional jump or end in a
// parenthesized relational.
func (g *Generator) LeaveHeader() error {
	cr, err := g.topControl()
	if err != nil {
		return err
	}

	cr.headerOf().open = false
	if *cr.falseJumpSlot() != -1 {
		return nil
	}

	// a parenthesized relational only finishes once its parentheses close
	if g.topIsRelational() {
		return g.emitConditionJump()
	}

	return logging.Raise(logging.LMKTyping, 0, "condition must be a relational expression")
}

// topIsRelational reports whether the operand on top of the stack is the
// result of the last quadruple and that quadruple is a relational
func (g *Generator) topIsRelational() bool {
	if len(g.operands) == 0 || len(g.quads) == 0 {
		return false
	}

	top := g.operands[len(g.operands)-1]
	last := g.quads[len(g.quads)-1]
	return top.Kind == ir.OKTemp && last.Op.IsRelational() && last.Result == top
}

// EnterElse emits the jump over the else branch and points the conditional
// jump at the start of the else branch
func (g *Generator) EnterElse() error {
	cr, err := g.topControl()
	if err != nil {
		return err
	}

	cond, ok := cr.(*condRecord)
	if !ok {
		return logging.Internal("`else` outside of an `if`")
	}

	cond.exitJump = g.emit(ir.OpGoto, ir.Empty, ir.Empty, ir.Pending)
	return g.backpatch(cond.falseJump, len(g.quads))
}

// EndCondition backpatches the jumps of the innermost `if` to the current
// position
func (g *Generator) EndCondition() error {
	cr, err := g.popControl()
	if err != nil {
		return err
	}

	cond, ok := cr.(*condRecord)
	if !ok {
		return logging.Internal("mismatched end of `if`")
	}

	if cond.exitJump != -1 {
		return g.backpatch(cond.exitJump, len(g.quads))
	}

	return g.backpatch(cond.falseJump, len(g.quads))
}

// EndLoop emits the jump back to the loop condition and points the loop's
// conditional jump past it
func (g *Generator) EndLoop() error {
	cr, err := g.popControl()
	if err != nil {
		return err
	}

	loop, ok := cr.(*loopRecord)
	if !ok {
		return logging.Internal("mismatched end of `while`")
	}

	g.emit(ir.OpGoto, ir.Empty, ir.Empty, ir.Jump(loop.top))
	return g.backpatch(loop.falseJump, len(g.quads))
}
