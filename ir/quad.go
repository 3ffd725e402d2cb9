package ir

import (
	"duck/typing"
	"fmt"
	"strconv"
)

// Opcode is the operator of a quadruple
type Opcode int

// Enumeration of opcodes
const (
	OpAdd Opcode = iota
	OpSub
	OpMul
	OpDiv
	OpGt
	OpLt
	OpEq
	OpNe
	OpAssign
	OpGoto
	OpGotoF
	OpWrite
	OpRead
	OpEra
	OpParam
	OpGosub
	OpReturn
	OpEndFunc
	OpEnd
)

var opcodeNames = [...]string{
	OpAdd:     "+",
	OpSub:     "-",
	OpMul:     "*",
	OpDiv:     "/",
	OpGt:      ">",
	OpLt:      "<",
	OpEq:      "==",
	OpNe:      "!=",
	OpAssign:  "=",
	OpGoto:    "GOTO",
	OpGotoF:   "GOTOF",
	OpWrite:   "write",
	OpRead:    "read",
	OpEra:     "ERA",
	OpParam:   "PARAM",
	OpGosub:   "GOSUB",
	OpReturn:  "RETURN",
	OpEndFunc: "ENDFUNC",
	OpEnd:     "END",
}

func (op Opcode) String() string {
	if op < 0 || int(op) >= len(opcodeNames) {
		return "<invalid op>"
	}

	return opcodeNames[op]
}

// OpcodeOf returns the opcode of an operator token (arithmetic, relational or
// assignment)
func OpcodeOf(tok string) (Opcode, bool) {
	for op := OpAdd; op <= OpAssign; op++ {
		if opcodeNames[op] == tok {
			return op, true
		}
	}

	return 0, false
}

// IsArith indicates whether the opcode is an arithmetic operator
func (op Opcode) IsArith() bool {
	return op >= OpAdd && op <= OpDiv
}

// IsRelational indicates whether the opcode is a relational operator
func (op Opcode) IsRelational() bool {
	return op >= OpGt && op <= OpNe
}

// -----------------------------------------------------------------------------

// Enumeration of operand kinds (prefix OK)
const (
	OKEmpty    = iota // no operand: `-`
	OKAddress         // a virtual address: `@N`
	OKIntLit          // an integer literal
	OKFloatLit        // a float literal
	OKCharLit         // a char literal
	OKString          // an index into the string table
	OKTemp            // a temporary id: `tN`
	OKJump            // a resolved jump target: `LN`
	OKPending         // a jump target still to be backpatched: `?`
	OKFunc            // a function name (ERA and GOSUB)
)

// Operand is one slot of a quadruple.  Kind selects which of the fields is
// meaningful: Int holds addresses, integer and char literals, string indices,
// temporary ids and jump targets.
type Operand struct {
	Kind  int
	Int   int
	Float float64
	Name  string

	// Type is the data type of the value the operand denotes (unused for
	// jumps, functions and empty operands)
	Type typing.DataType
}

// Empty is the empty operand
var Empty = Operand{Kind: OKEmpty}

// Pending is an unresolved jump target
var Pending = Operand{Kind: OKPending}

// Address creates an address operand
func Address(addr int, dt typing.DataType) Operand {
	return Operand{Kind: OKAddress, Int: addr, Type: dt}
}

// Temp creates a temporary operand
func Temp(id int, dt typing.DataType) Operand {
	return Operand{Kind: OKTemp, Int: id, Type: dt}
}

// Jump creates a resolved jump target
func Jump(target int) Operand {
	return Operand{Kind: OKJump, Int: target}
}

// Func creates a function operand
func Func(name string) Operand {
	return Operand{Kind: OKFunc, Name: name}
}

// Literal creates a literal operand from a value
func Literal(v Value) Operand {
	switch v.Type {
	case typing.Float:
		return Operand{Kind: OKFloatLit, Float: v.Float, Type: typing.Float}
	case typing.Char:
		return Operand{Kind: OKCharLit, Int: v.Int, Type: typing.Char}
	}

	return Operand{Kind: OKIntLit, Int: v.Int, Type: typing.Int}
}

// StringRef creates an operand referring to an entry of the string table
func StringRef(index int) Operand {
	return Operand{Kind: OKString, Int: index, Type: typing.String}
}

// IsLiteral indicates whether the operand is an int, float or char literal
func (o Operand) IsLiteral() bool {
	return o.Kind == OKIntLit || o.Kind == OKFloatLit || o.Kind == OKCharLit
}

// LiteralValue returns the value of a literal operand
func (o Operand) LiteralValue() Value {
	switch o.Kind {
	case OKFloatLit:
		return FloatValue(o.Float)
	case OKCharLit:
		return Value{Type: typing.Char, Int: o.Int}
	}

	return IntValue(o.Int)
}

// TargetAddress resolves an address or temporary operand to its address
func (o Operand) TargetAddress() (int, bool) {
	switch o.Kind {
	case OKAddress:
		return o.Int, true
	case OKTemp:
		return TempAddress(o.Type, o.Int), true
	}

	return 0, false
}

func (o Operand) String() string {
	switch o.Kind {
	case OKAddress:
		return "@" + strconv.Itoa(o.Int)
	case OKIntLit:
		return strconv.Itoa(o.Int)
	case OKFloatLit:
		return strconv.FormatFloat(o.Float, 'f', -1, 64)
	case OKCharLit:
		return strconv.QuoteRune(rune(o.Int))
	case OKString:
		return "s" + strconv.Itoa(o.Int)
	case OKTemp:
		return "t" + strconv.Itoa(o.Int)
	case OKJump:
		return "L" + strconv.Itoa(o.Int)
	case OKPending:
		return "?"
	case OKFunc:
		return o.Name
	}

	return "-"
}

// -----------------------------------------------------------------------------

// Quad is a single three-address instruction
type Quad struct {
	Op                  Opcode
	Left, Right, Result Operand
}

func (q Quad) String() string {
	return fmt.Sprintf("(%s, %s, %s, %s)", q.Op, q.Left, q.Right, q.Result)
}

// Row returns the rendered columns of the quadruple
func (q Quad) Row() []string {
	return []string{q.Op.String(), q.Left.String(), q.Right.String(), q.Result.String()}
}
