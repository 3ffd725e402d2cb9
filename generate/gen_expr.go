package generate

import (
	"duck/ir"
	"duck/typing"
	"fmt"

	llvm "github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"
)

var (
	intPreds = map[ir.Opcode]enum.IPred{
		ir.OpGt: enum.IPredSGT,
		ir.OpLt: enum.IPredSLT,
		ir.OpEq: enum.IPredEQ,
		ir.OpNe: enum.IPredNE,
	}

	floatPreds = map[ir.Opcode]enum.FPred{
		ir.OpGt: enum.FPredOGT,
		ir.OpLt: enum.FPredOLT,
		ir.OpEq: enum.FPredOEQ,
		ir.OpNe: enum.FPredUNE,
	}
)

// zeroOf returns the zero value of a data type
func zeroOf(dt typing.DataType) constant.Constant {
	switch dt {
	case typing.Float:
		return constant.NewFloat(types.Double, 0)
	case typing.Char:
		return constant.NewInt(types.I8, 0)
	}

	return constant.NewInt(types.I64, 0)
}

// constValue converts a runtime value into an LLVM constant
func constValue(v ir.Value) constant.Constant {
	switch v.Type {
	case typing.Float:
		return constant.NewFloat(types.Double, v.Float)
	case typing.Char:
		return constant.NewInt(types.I8, int64(v.Int))
	}

	return constant.NewInt(types.I64, int64(v.Int))
}

// slotPtr returns a pointer to the slot of a virtual address
func (g *Generator) slotPtr(addr int) (value.Value, typing.DataType, error) {
	seg, dt, off, ok := ir.Classify(addr)
	if !ok {
		return nil, typing.Void, fmt.Errorf("address @%d is outside of every segment", addr)
	}

	var arr *segmentArray
	switch seg {
	case ir.SegGlobal:
		arr = g.globals[dt]
	case ir.SegLocal:
		arr = g.fn.locals[dt]
	case ir.SegTemp:
		arr = g.fn.temps[dt]
	default:
		return nil, typing.Void, fmt.Errorf("%s address @%d has no storage", seg, addr)
	}

	if arr == nil || uint64(off) >= arr.typ.Len {
		return nil, typing.Void, fmt.Errorf("address @%d was never allocated", addr)
	}

	ptr := g.fn.block.NewGetElementPtr(
		arr.typ, arr.ptr,
		constant.NewInt(types.I64, 0),
		constant.NewInt(types.I64, int64(off)),
	)
	return ptr, dt, nil
}

// load produces the value of an operand
func (g *Generator) load(op ir.Operand) (value.Value, typing.DataType, error) {
	if op.IsLiteral() {
		v := op.LiteralValue()
		return constValue(v), v.Type, nil
	}

	addr, ok := op.TargetAddress()
	if !ok {
		return nil, typing.Void, fmt.Errorf("operand %s has no value", op)
	}

	if seg, _, _, ok := ir.Classify(addr); ok && seg == ir.SegConst {
		v, ok := g.prog.Constants[addr]
		if !ok {
			return nil, typing.Void, fmt.Errorf("constant @%d is not in the constant table", addr)
		}

		return constValue(v), v.Type, nil
	}

	ptr, dt, err := g.slotPtr(addr)
	if err != nil {
		return nil, typing.Void, err
	}

	return g.fn.block.NewLoad(convType(dt), ptr), dt, nil
}

// storeTo stores a value into the slot an operand denotes, converting it to the
// type of the slot
func (g *Generator) storeTo(op ir.Operand, v value.Value, from typing.DataType) error {
	addr, ok := op.TargetAddress()
	if !ok {
		return fmt.Errorf("operand %s is not writable", op)
	}

	ptr, dt, err := g.slotPtr(addr)
	if err != nil {
		return err
	}

	g.fn.block.NewStore(g.convert(v, from, dt), ptr)
	return nil
}

// convert converts a value between data types
func (g *Generator) convert(v value.Value, from, to typing.DataType) value.Value {
	if from == to {
		return v
	}

	b := g.fn.block
	switch to {
	case typing.Float:
		return b.NewSIToFP(v, types.Double)
	case typing.Int:
		if from == typing.Float {
			return b.NewFPToSI(v, types.I64)
		}

		return b.NewSExt(v, types.I64)
	case typing.Char:
		if from == typing.Float {
			return b.NewFPToSI(v, types.I8)
		}

		return b.NewTrunc(v, types.I8)
	}

	return v
}

// isNonZero tests a condition value
func (g *Generator) isNonZero(v value.Value, dt typing.DataType) value.Value {
	if dt == typing.Float {
		return g.fn.block.NewFCmp(enum.FPredUNE, v, zeroOf(dt))
	}

	return g.fn.block.NewICmp(enum.IPredNE, v, zeroOf(dt))
}

// genBinary generates an arithmetic or relational quadruple.  Int operands use
// integer instructions and anything involving a float is promoted to double.
func (g *Generator) genBinary(i int, q ir.Quad) error {
	l, lt, err := g.load(q.Left)
	if err != nil {
		return err
	}

	r, rt, err := g.load(q.Right)
	if err != nil {
		return err
	}

	opType := typing.Int
	if lt == typing.Float || rt == typing.Float {
		opType = typing.Float
	}

	l, r = g.convert(l, lt, opType), g.convert(r, rt, opType)

	if q.Op.IsRelational() {
		var cmp value.Value
		if opType == typing.Float {
			cmp = g.fn.block.NewFCmp(floatPreds[q.Op], l, r)
		} else {
			cmp = g.fn.block.NewICmp(intPreds[q.Op], l, r)
		}

		return g.storeTo(q.Result, g.fn.block.NewZExt(cmp, types.I64), typing.Int)
	}

	if q.Op == ir.OpDiv {
		g.checkDivisor(i, r, opType)
	}

	b := g.fn.block
	var res value.Value
	if opType == typing.Float {
		switch q.Op {
		case ir.OpAdd:
			res = b.NewFAdd(l, r)
		case ir.OpSub:
			res = b.NewFSub(l, r)
		case ir.OpMul:
			res = b.NewFMul(l, r)
		default:
			res = b.NewFDiv(l, r)
		}
	} else {
		switch q.Op {
		case ir.OpAdd:
			res = b.NewAdd(l, r)
		case ir.OpSub:
			res = b.NewSub(l, r)
		case ir.OpMul:
			res = b.NewMul(l, r)
		default:
			res = b.NewSDiv(l, r)
		}
	}

	return g.storeTo(q.Result, res, opType)
}

// checkDivisor branches to the division by zero report if the divisor is zero
// and continues generating in a fresh block otherwise
func (g *Generator) checkDivisor(i int, r value.Value, dt typing.DataType) {
	var isZero value.Value
	if dt == typing.Float {
		isZero = g.fn.block.NewFCmp(enum.FPredOEQ, r, zeroOf(dt))
	} else {
		isZero = g.fn.block.NewICmp(enum.IPredEQ, r, zeroOf(dt))
	}

	cont := g.fn.llFunc.NewBlock(fmt.Sprintf("L%d.div", i))
	g.fn.block.NewCondBr(isZero, g.divZeroBlock(), cont)
	g.fn.block = cont
}

// divZeroBlock returns the block reporting a division by zero, creating it on
// first use
func (g *Generator) divZeroBlock() *llvm.Block {
	if g.fn.divZero != nil {
		return g.fn.divZero
	}

	b := g.fn.llFunc.NewBlock("divzero")
	b.NewCall(g.rt.puts, g.stringPtrIn(b, g.rt.divZero))
	b.NewCall(g.rt.exit, constant.NewInt(types.I32, 1))
	b.NewUnreachable()

	g.fn.divZero = b
	return b
}

// -----------------------------------------------------------------------------

// stringPtr returns a pointer to the first character of a global string
func (g *Generator) stringPtr(sc *stringConst) value.Value {
	return g.stringPtrIn(g.fn.block, sc)
}

func (g *Generator) stringPtrIn(b *llvm.Block, sc *stringConst) value.Value {
	return b.NewGetElementPtr(sc.typ, sc.g, constant.NewInt(types.I64, 0), constant.NewInt(types.I64, 0))
}

// genWrite prints a value or a string followed by a newline
func (g *Generator) genWrite(op ir.Operand) error {
	if op.Kind == ir.OKString {
		if op.Int < 0 || op.Int >= len(g.strings) {
			return fmt.Errorf("string s%d is not in the string table", op.Int)
		}

		g.fn.block.NewCall(g.rt.printf, g.stringPtr(g.rt.writeStr), g.stringPtr(g.strings[op.Int]))
		return nil
	}

	v, dt, err := g.load(op)
	if err != nil {
		return err
	}

	// varargs promote chars to int
	if dt == typing.Char {
		v = g.fn.block.NewSExt(v, types.I32)
	}

	g.fn.block.NewCall(g.rt.printf, g.stringPtr(g.rt.writeFmts[dt]), v)
	return nil
}

// genRead scans a value straight into the slot of a variable
func (g *Generator) genRead(op ir.Operand) error {
	addr, ok := op.TargetAddress()
	if !ok {
		return fmt.Errorf("invalid read destination %s", op)
	}

	ptr, dt, err := g.slotPtr(addr)
	if err != nil {
		return err
	}

	g.fn.block.NewCall(g.rt.scanf, g.stringPtr(g.rt.readFmts[dt]), ptr)
	return nil
}
