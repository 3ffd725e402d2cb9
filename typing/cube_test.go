package typing

import "testing"

func TestCubeArithmetic(t *testing.T) {
	cases := []struct {
		left, right DataType
		want        DataType
	}{
		{Int, Int, Int},
		{Int, Float, Float},
		{Float, Int, Float},
		{Float, Float, Float},
	}

	for _, op := range []string{"+", "-", "*", "/"} {
		for _, c := range cases {
			got, ok := Result(c.left, op, c.right)
			if !ok {
				t.Errorf("%s %s %s: expected %s, got incompatible", c.left, op, c.right, c.want)
				continue
			}

			if got != c.want {
				t.Errorf("%s %s %s: expected %s, got %s", c.left, op, c.right, c.want, got)
			}
		}
	}
}

func TestCubeRelational(t *testing.T) {
	for _, op := range []string{">", "<", "==", "!="} {
		for _, l := range []DataType{Int, Float} {
			for _, r := range []DataType{Int, Float} {
				got, ok := Result(l, op, r)
				if !ok || got != Int {
					t.Errorf("%s %s %s: expected int, got %s (ok=%v)", l, op, r, got, ok)
				}
			}
		}
	}

	if got, ok := Result(Char, "==", Char); !ok || got != Int {
		t.Errorf("char == char: expected int, got %s (ok=%v)", got, ok)
	}
}

func TestCubeAssignment(t *testing.T) {
	t.Run("promotion", func(t *testing.T) {
		if got, ok := Result(Float, "=", Int); !ok || got != Float {
			t.Errorf("float = int: expected float, got %s (ok=%v)", got, ok)
		}
	})

	t.Run("narrowing", func(t *testing.T) {
		if _, ok := Result(Int, "=", Float); ok {
			t.Error("int = float: expected incompatible")
		}
	})

	t.Run("identical", func(t *testing.T) {
		for _, dt := range []DataType{Int, Float, Char} {
			if !CanAssign(dt, dt) {
				t.Errorf("%s = %s: expected compatible", dt, dt)
			}
		}
	})
}

func TestCubeRejects(t *testing.T) {
	rejected := []struct {
		left  DataType
		op    string
		right DataType
	}{
		{Char, "+", Int},
		{Int, "*", Char},
		{String, "+", String},
		{Void, "+", Int},
		{Char, "=", Int},
		{Int, "<", Char},
	}

	for _, r := range rejected {
		if dt, ok := Result(r.left, r.op, r.right); ok {
			t.Errorf("%s %s %s: expected incompatible, got %s", r.left, r.op, r.right, dt)
		}
	}
}

func TestParseType(t *testing.T) {
	for _, name := range []string{"int", "float", "char", "void"} {
		dt, ok := ParseType(name)
		if !ok || dt.Repr() != name {
			t.Errorf("ParseType(%q): expected %s, got %s (ok=%v)", name, name, dt, ok)
		}
	}

	if _, ok := ParseType("string"); ok {
		t.Error("ParseType(\"string\"): expected failure")
	}
}
