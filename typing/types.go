package typing

// DataType represents one of the primitive Duck types.  Its value must be one
// of the enumerated primitive kinds below
type DataType uint

// Enumeration of primitive types.  The first three are the storable types;
// they double as the type category of a virtual address.
const (
	Int DataType = iota
	Float
	Char
	String // only string literals inside `write`
	Void   // the "return type" of procedures
)

// Repr of a primitive type is just its corresponding keyword
func (dt DataType) Repr() string {
	switch dt {
	case Int:
		return "int"
	case Float:
		return "float"
	case Char:
		return "char"
	case String:
		return "string"
	case Void:
		return "void"
	}

	return "<invalid>"
}

func (dt DataType) String() string {
	return dt.Repr()
}

// Storable indicates whether values of this type can live in a memory segment
func (dt DataType) Storable() bool {
	return dt <= Char
}

// ParseType converts a type keyword into a data type
func ParseType(name string) (DataType, bool) {
	switch name {
	case "int":
		return Int, true
	case "float":
		return Float, true
	case "char":
		return Char, true
	case "void":
		return Void, true
	}

	return Void, false
}
