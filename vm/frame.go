package vm

import (
	"duck/ir"
)

// Frame is the activation record of a running function
type Frame struct {
	Func *ir.FuncInfo

	// private local and temporary segment stores keyed by virtual address
	locals map[int]ir.Value
	temps  map[int]ir.Value

	// ret holds the value passed to RETURN (nil until the function returns)
	ret *ir.Value
}

func newFrame(fn *ir.FuncInfo) *Frame {
	return &Frame{
		Func:   fn,
		locals: make(map[int]ir.Value),
		temps:  make(map[int]ir.Value),
	}
}

// store picks the frame store for a segment (nil for the shared segments)
func (f *Frame) store(seg ir.Segment) map[int]ir.Value {
	switch seg {
	case ir.SegLocal:
		return f.locals
	case ir.SegTemp:
		return f.temps
	}

	return nil
}
