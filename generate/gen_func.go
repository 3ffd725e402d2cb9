package generate

import (
	"duck/ir"
	"duck/typing"
	"fmt"

	llvm "github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"
)

// funcState is the generation state of a single function
type funcState struct {
	fr     funcRange
	llFunc *llvm.Func

	// entry holds the stack allocations; it branches to the first quadruple
	entry *llvm.Block

	// blocks maps each quadruple of the function onto its basic block
	blocks map[int]*llvm.Block

	// exit is reached by running off the end of the function
	exit *llvm.Block

	// divZero is the (lazily created) block reporting a division by zero
	divZero *llvm.Block

	// block is the block currently being generated
	block *llvm.Block

	// private local and temporary segments of the function
	locals, temps [3]*segmentArray

	// calls is the stack of calls announced by ERA whose GOSUB has not been
	// generated yet
	calls []*pendingCall
}

// pendingCall is a call whose arguments are being staged
type pendingCall struct {
	info  *ir.FuncInfo
	slots []value.Value
}

// genFunc generates the body of a function
func (g *Generator) genFunc(fr funcRange) error {
	llFunc := g.funcs[fr.info.Name]
	st := &funcState{
		fr:     fr,
		llFunc: llFunc,
		blocks: make(map[int]*llvm.Block),
	}
	g.fn = st

	st.entry = llFunc.NewBlock("entry")
	for i := fr.start; i <= fr.end; i++ {
		st.blocks[i] = llFunc.NewBlock(fmt.Sprintf("L%d", i))
	}

	st.exit = llFunc.NewBlock("exit")
	st.block = st.exit
	g.genFallOff()

	if err := g.allocSegments(); err != nil {
		return err
	}

	// copy the parameters into their local slots
	st.block = st.entry
	for i, p := range fr.info.Params {
		if err := g.storeTo(ir.Address(p.Address, p.Type), llFunc.Params[i], p.Type); err != nil {
			return err
		}
	}

	for i := fr.start; i <= fr.end; i++ {
		st.block = st.blocks[i]

		if err := g.genQuad(i, g.prog.Quads[i]); err != nil {
			return fmt.Errorf("L%d %s: %s", i, g.prog.Quads[i], err)
		}

		if st.block.Term == nil {
			st.block.NewBr(g.blockAfter(i))
		}
	}

	if len(st.calls) > 0 {
		return fmt.Errorf("unterminated call to `%s` in `%s`", st.calls[len(st.calls)-1].info.Name, fr.info.Name)
	}

	st.entry.NewBr(g.blockAfter(fr.start - 1))
	return nil
}

// blockAfter returns the block following quadruple i
func (g *Generator) blockAfter(i int) *llvm.Block {
	if b, ok := g.fn.blocks[i+1]; ok {
		return b
	}

	return g.fn.exit
}

// genFallOff terminates the current block the way running off the end of the
// function does: main succeeds and other functions return a zero value
func (g *Generator) genFallOff() {
	fi := g.fn.fr.info

	switch {
	case fi.Name == ir.MainFunc:
		g.fn.block.NewRet(constant.NewInt(types.I32, 0))
	case fi.HasReturn:
		g.fn.block.NewRet(zeroOf(fi.ReturnType))
	default:
		g.fn.block.NewRet(nil)
	}
}

// allocSegments sizes and allocates the local and temporary segments of the
// function from the addresses its quadruples use
func (g *Generator) allocSegments() error {
	var localSize, tempSize [3]int

	note := func(op ir.Operand) {
		addr, ok := op.TargetAddress()
		if !ok {
			return
		}

		seg, dt, off, ok := ir.Classify(addr)
		if !ok {
			return
		}

		switch seg {
		case ir.SegLocal:
			if off+1 > localSize[dt] {
				localSize[dt] = off + 1
			}
		case ir.SegTemp:
			if off+1 > tempSize[dt] {
				tempSize[dt] = off + 1
			}
		}
	}

	for _, p := range g.fn.fr.info.Params {
		note(ir.Address(p.Address, p.Type))
	}

	for i := g.fn.fr.start; i <= g.fn.fr.end; i++ {
		q := g.prog.Quads[i]
		note(q.Left)
		note(q.Right)

		// the result of PARAM is a slot of the callee
		if q.Op != ir.OpParam {
			note(q.Result)
		}
	}

	for dt := range localSize {
		if localSize[dt] > 0 {
			g.fn.locals[dt] = g.allocArray(localSize[dt], convType(typing.DataType(dt)), fmt.Sprintf("local.%d", dt))
		}

		if tempSize[dt] > 0 {
			g.fn.temps[dt] = g.allocArray(tempSize[dt], convType(typing.DataType(dt)), fmt.Sprintf("temp.%d", dt))
		}
	}

	return nil
}

// allocArray allocates an array on the stack of the current function
func (g *Generator) allocArray(n int, elemType types.Type, name string) *segmentArray {
	arrType := types.NewArray(uint64(n), elemType)

	alloca := g.fn.entry.NewAlloca(arrType)
	alloca.SetName(name)

	return &segmentArray{typ: arrType, ptr: alloca}
}

// -----------------------------------------------------------------------------

// genQuad generates a single quadruple into the current block
func (g *Generator) genQuad(i int, q ir.Quad) error {
	if q.Op.IsArith() || q.Op.IsRelational() {
		return g.genBinary(i, q)
	}

	switch q.Op {
	case ir.OpAssign:
		v, dt, err := g.load(q.Left)
		if err != nil {
			return err
		}

		return g.storeTo(q.Result, v, dt)
	case ir.OpGoto:
		target, err := g.jumpBlock(q.Result)
		if err != nil {
			return err
		}

		g.fn.block.NewBr(target)
	case ir.OpGotoF:
		cond, dt, err := g.load(q.Left)
		if err != nil {
			return err
		}

		target, err := g.jumpBlock(q.Result)
		if err != nil {
			return err
		}

		g.fn.block.NewCondBr(g.isNonZero(cond, dt), g.blockAfter(i), target)
	case ir.OpWrite:
		return g.genWrite(q.Result)
	case ir.OpRead:
		return g.genRead(q.Result)
	case ir.OpEra:
		return g.genEra(q.Result.Name)
	case ir.OpParam:
		return g.genParam(q)
	case ir.OpGosub:
		return g.genGosub(q)
	case ir.OpReturn:
		fi := g.fn.fr.info
		if !fi.HasReturn {
			return fmt.Errorf("`%s` does not return a value", fi.Name)
		}

		v, dt, err := g.load(q.Result)
		if err != nil {
			return err
		}

		g.fn.block.NewRet(g.convert(v, dt, fi.ReturnType))
	case ir.OpEndFunc, ir.OpEnd:
		g.genFallOff()
	default:
		return fmt.Errorf("unknown operator")
	}

	return nil
}

// jumpBlock resolves a jump target to a block of the current function
func (g *Generator) jumpBlock(op ir.Operand) (*llvm.Block, error) {
	if op.Kind != ir.OKJump {
		return nil, fmt.Errorf("jump has no resolved target")
	}

	if op.Int == g.fn.fr.end+1 {
		return g.fn.exit, nil
	}

	if b, ok := g.fn.blocks[op.Int]; ok {
		return b, nil
	}

	return nil, fmt.Errorf("jump to L%d leaves `%s`", op.Int, g.fn.fr.info.Name)
}

// genEra stages a new call
func (g *Generator) genEra(name string) error {
	fi, ok := g.prog.Functions[name]
	if !ok || name == ir.MainFunc {
		return fmt.Errorf("call to undefined function `%s`", name)
	}

	pc := &pendingCall{info: fi}
	for _, p := range fi.Params {
		pc.slots = append(pc.slots, g.fn.entry.NewAlloca(convType(p.Type)))
	}

	g.fn.calls = append(g.fn.calls, pc)
	return nil
}

// genParam stages an argument of the innermost pending call
func (g *Generator) genParam(q ir.Quad) error {
	if len(g.fn.calls) == 0 {
		return fmt.Errorf("PARAM without a matching ERA")
	}
	pc := g.fn.calls[len(g.fn.calls)-1]

	addr, _ := q.Result.TargetAddress()
	for k, p := range pc.info.Params {
		if p.Address == addr {
			v, dt, err := g.load(q.Left)
			if err != nil {
				return err
			}

			g.fn.block.NewStore(g.convert(v, dt, p.Type), pc.slots[k])
			return nil
		}
	}

	return fmt.Errorf("`%s` has no parameter at @%d", pc.info.Name, addr)
}

// genGosub calls the innermost pending call with its staged arguments
func (g *Generator) genGosub(q ir.Quad) error {
	if len(g.fn.calls) == 0 {
		return fmt.Errorf("GOSUB without a matching ERA")
	}
	pc := g.fn.calls[len(g.fn.calls)-1]
	g.fn.calls = g.fn.calls[:len(g.fn.calls)-1]

	args := make([]value.Value, len(pc.slots))
	for k, slot := range pc.slots {
		args[k] = g.fn.block.NewLoad(convType(pc.info.Params[k].Type), slot)
	}

	call := g.fn.block.NewCall(g.funcs[pc.info.Name], args...)
	if q.Result.Kind == ir.OKEmpty {
		return nil
	}

	if !pc.info.HasReturn {
		return fmt.Errorf("void function `%s` has no value", pc.info.Name)
	}

	return g.storeTo(q.Result, call, pc.info.ReturnType)
}
