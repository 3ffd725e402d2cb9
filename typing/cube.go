package typing

// Operator classes understood by the semantic cube
const (
	OpClassArith = iota
	OpClassRel
	OpClassAssign
	OpClassNone
)

// ClassOf returns the operator class of an operator token
func ClassOf(op string) int {
	switch op {
	case "+", "-", "*", "/":
		return OpClassArith
	case ">", "<", "==", "!=":
		return OpClassRel
	case "=":
		return OpClassAssign
	}

	return OpClassNone
}

type cubeKey struct {
	left  DataType
	op    string
	right DataType
}

// cube is the semantic cube: every (left, operator, right) triple that is
// legal maps to its result type.  Triples that are absent are incompatible.
var cube = make(map[cubeKey]DataType)

func init() {
	numeric := []DataType{Int, Float}

	for _, op := range []string{"+", "-", "*", "/"} {
		for _, l := range numeric {
			for _, r := range numeric {
				if l == Int && r == Int {
					cube[cubeKey{l, op, r}] = Int
				} else {
					cube[cubeKey{l, op, r}] = Float
				}
			}
		}
	}

	for _, op := range []string{">", "<", "==", "!="} {
		for _, l := range numeric {
			for _, r := range numeric {
				cube[cubeKey{l, op, r}] = Int
			}
		}

		cube[cubeKey{Char, op, Char}] = Int
	}

	// assignment is written (destination, =, source)
	for _, t := range []DataType{Int, Float, Char} {
		cube[cubeKey{t, "=", t}] = t
	}
	cube[cubeKey{Float, "=", Int}] = Float
}

// Result looks up the result type of applying `op` to operands of the given
// types.  The boolean is false if the combination is incompatible.
func Result(left DataType, op string, right DataType) (DataType, bool) {
	dt, ok := cube[cubeKey{left, op, right}]
	return dt, ok
}

// CanAssign reports whether a value of type `src` may be stored into a
// destination of type `dest`
func CanAssign(dest, src DataType) bool {
	_, ok := Result(dest, "=", src)
	return ok
}
