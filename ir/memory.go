package ir

import (
	"duck/logging"
	"duck/typing"
	"math"
)

// Segment is one of the four regions of the virtual memory map
type Segment int

// Enumeration of segments in address order
const (
	SegGlobal Segment = iota
	SegLocal
	SegTemp
	SegConst
)

func (s Segment) String() string {
	switch s {
	case SegGlobal:
		return "global"
	case SegLocal:
		return "local"
	case SegTemp:
		return "temporary"
	case SegConst:
		return "constant"
	}

	return "<invalid segment>"
}

// The memory map is a contiguous run of 2000-slot ranges starting at
// MemoryBase: each segment holds one range per storable type, ordered int <
// float < char, and the segments themselves are ordered global < local <
// temporary < constant.
const (
	MemoryBase  = 1000
	SegmentSize = 2000
	typeCount   = 3
	segCount    = 4
	MemoryLimit = MemoryBase + segCount*typeCount*SegmentSize
)

// RangeOf returns the half-open address range [lo, hi) of a segment/type pair
func RangeOf(seg Segment, dt typing.DataType) (int, int) {
	lo := MemoryBase + (int(seg)*typeCount+int(dt))*SegmentSize
	return lo, lo + SegmentSize
}

// Classify maps a virtual address back onto its segment, type and offset
// within that range.  The boolean is false for addresses outside the map.
func Classify(addr int) (Segment, typing.DataType, int, bool) {
	if addr < MemoryBase || addr >= MemoryLimit {
		return 0, 0, 0, false
	}

	block := (addr - MemoryBase) / SegmentSize
	return Segment(block / typeCount), typing.DataType(block % typeCount), (addr - MemoryBase) % SegmentSize, true
}

// TempAddress returns the address a temporary of the given id and type
// occupies within the temporary segment
func TempAddress(dt typing.DataType, id int) int {
	lo, _ := RangeOf(SegTemp, dt)
	return lo + id
}

// Allocator hands out virtual addresses sequentially within each segment/type
// range.  Temporaries are not allocated here: their addresses are derived from
// the temporary id (see TempAddress).
type Allocator struct {
	next [segCount][typeCount]int
}

// Alloc reserves the next free address of a segment/type pair
func (a *Allocator) Alloc(seg Segment, dt typing.DataType) (int, error) {
	if !dt.Storable() {
		return 0, logging.Internal("cannot allocate storage for type `%s`", dt)
	}

	if a.next[seg][dt] >= SegmentSize {
		return 0, logging.Raise(logging.LMKUsage, 0, "out of %s %s memory", seg, dt)
	}

	lo, _ := RangeOf(seg, dt)
	addr := lo + a.next[seg][dt]
	a.next[seg][dt]++
	return addr, nil
}

// Used returns the number of addresses handed out for a segment/type pair
func (a *Allocator) Used(seg Segment, dt typing.DataType) int {
	return a.next[seg][dt]
}

// ResetLocals clears the local counters so a new function starts at the bottom
// of the local segment
func (a *Allocator) ResetLocals() {
	a.next[SegLocal] = [typeCount]int{}
}

// -----------------------------------------------------------------------------

// floatEpsilon is the tolerance within which two float constants are
// considered the same constant
const floatEpsilon = 1e-9

// ConstantTable deduplicates literal values into the constant segment
type ConstantTable struct {
	alloc  *Allocator
	values map[int]Value
	order  []int
}

// NewConstantTable creates a constant table backed by an allocator
func NewConstantTable(alloc *Allocator) *ConstantTable {
	return &ConstantTable{alloc: alloc, values: make(map[int]Value)}
}

// Address returns the constant address holding `v`, allocating one if no equal
// constant exists yet
func (ct *ConstantTable) Address(v Value) (int, error) {
	for _, addr := range ct.order {
		if ct.values[addr].sameConstant(v) {
			return addr, nil
		}
	}

	addr, err := ct.alloc.Alloc(SegConst, v.Type)
	if err != nil {
		return 0, err
	}

	ct.values[addr] = v
	ct.order = append(ct.order, addr)
	return addr, nil
}

// Values returns the address to value mapping of every constant
func (ct *ConstantTable) Values() map[int]Value {
	out := make(map[int]Value, len(ct.values))
	for addr, v := range ct.values {
		out[addr] = v
	}

	return out
}

func (v Value) sameConstant(other Value) bool {
	if v.Type != other.Type {
		return false
	}

	if v.Type == typing.Float {
		return math.Abs(v.Float-other.Float) < floatEpsilon
	}

	return v.Int == other.Int
}
