package vm

import (
	"duck/ir"
	"duck/typing"
	"errors"
	"strings"
	"testing"
)

var (
	gInt   = ir.Address(1000, typing.Int)
	gFloat = ir.Address(3000, typing.Float)
	gChar  = ir.Address(5000, typing.Char)
	lInt   = ir.Address(7000, typing.Int)
)

func quad(op ir.Opcode, l, r, res ir.Operand) ir.Quad {
	return ir.Quad{Op: op, Left: l, Right: r, Result: res}
}

func intLit(n int) ir.Operand {
	return ir.Literal(ir.IntValue(n))
}

func program(quads ...ir.Quad) *ir.Program {
	return &ir.Program{
		Name:      "test",
		Quads:     quads,
		Functions: map[string]*ir.FuncInfo{ir.MainFunc: {Name: ir.MainFunc, ReturnType: typing.Void}},
		Constants: map[int]ir.Value{},
	}
}

func run(t *testing.T, prog *ir.Program, inputs ...string) ([]string, error) {
	t.Helper()

	console := &ScriptedConsole{Inputs: inputs}
	err := New(prog, console).Run()
	return console.Output, err
}

func expectOutput(t *testing.T, got []string, want ...string) {
	t.Helper()

	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("expected output %q, got %q", want, got)
	}
}

func runtimeError(t *testing.T, err error) *RuntimeError {
	t.Helper()

	var re *RuntimeError
	if !errors.As(err, &re) {
		t.Fatalf("expected a runtime error, got %v", err)
	}

	return re
}

func TestArithmetic(t *testing.T) {
	floatLit := func(f float64) ir.Operand { return ir.Literal(ir.FloatValue(f)) }

	cases := []struct {
		name string
		op   ir.Opcode
		l, r ir.Operand
		dt   typing.DataType
		want string
	}{
		{"int add", ir.OpAdd, intLit(10), intLit(20), typing.Int, "30"},
		{"int sub", ir.OpSub, intLit(3), intLit(5), typing.Int, "-2"},
		{"int div truncates", ir.OpDiv, intLit(7), intLit(2), typing.Int, "3"},
		{"negative int div", ir.OpDiv, intLit(-7), intLit(2), typing.Int, "-3"},
		{"int add past float precision", ir.OpAdd, intLit(1<<53 + 1), intLit(0), typing.Int, "9007199254740992"},
		{"int mul past float precision", ir.OpMul, intLit(1<<53 + 1), intLit(1), typing.Int, "9007199254740992"},
		{"mixed div", ir.OpDiv, intLit(7), floatLit(2), typing.Float, "3.5"},
		{"float mul", ir.OpMul, floatLit(1.5), floatLit(4), typing.Float, "6"},
		{"greater", ir.OpGt, intLit(2), intLit(1), typing.Int, "1"},
		{"less", ir.OpLt, intLit(2), intLit(1), typing.Int, "0"},
		{"mixed equal", ir.OpEq, intLit(2), floatLit(2), typing.Int, "1"},
		{"char not equal", ir.OpNe, ir.Literal(ir.CharValue('a')), ir.Literal(ir.CharValue('b')), typing.Int, "1"},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			out, err := run(t, program(
				quad(c.op, c.l, c.r, ir.Temp(0, c.dt)),
				quad(ir.OpWrite, ir.Empty, ir.Empty, ir.Temp(0, c.dt)),
				quad(ir.OpEnd, ir.Empty, ir.Empty, ir.Empty),
			))
			if err != nil {
				t.Fatal(err)
			}

			expectOutput(t, out, c.want)
		})
	}
}

func TestAssignmentConverts(t *testing.T) {
	out, err := run(t, program(
		quad(ir.OpAssign, intLit(4), ir.Empty, gFloat),
		quad(ir.OpDiv, gFloat, intLit(8), ir.Temp(0, typing.Float)),
		quad(ir.OpWrite, ir.Empty, ir.Empty, gFloat),
		quad(ir.OpWrite, ir.Empty, ir.Empty, ir.Temp(0, typing.Float)),
	))
	if err != nil {
		t.Fatal(err)
	}

	expectOutput(t, out, "4", "0.5")
}

func TestDivisionByZeroHalts(t *testing.T) {
	out, err := run(t, program(
		quad(ir.OpAssign, intLit(0), ir.Empty, gInt),
		quad(ir.OpDiv, intLit(1), gInt, ir.Temp(0, typing.Int)),
		quad(ir.OpWrite, ir.Empty, ir.Empty, intLit(99)),
		quad(ir.OpEnd, ir.Empty, ir.Empty, ir.Empty),
	))

	re := runtimeError(t, err)
	if re.IP != 1 || re.Op != ir.OpDiv {
		t.Errorf("expected the fault at L1 (/), got L%d (%s)", re.IP, re.Op)
	}

	if len(out) != 0 {
		t.Errorf("expected no output after the fault, got %q", out)
	}
}

func TestMemoryFaults(t *testing.T) {
	cases := map[string]*ir.Program{
		"unwritten global":  program(quad(ir.OpWrite, ir.Empty, ir.Empty, gInt)),
		"unwritten temp":    program(quad(ir.OpAssign, ir.Temp(3, typing.Int), ir.Empty, gInt)),
		"outside the map":   program(quad(ir.OpAssign, intLit(1), ir.Empty, ir.Address(ir.MemoryLimit, typing.Int))),
		"constant store":    program(quad(ir.OpAssign, intLit(1), ir.Empty, ir.Address(19000, typing.Int))),
		"unresolved jump":   program(quad(ir.OpGoto, ir.Empty, ir.Empty, ir.Pending)),
		"unknown function":  program(quad(ir.OpEra, ir.Empty, ir.Empty, ir.Func("nope"))),
		"param without era": program(quad(ir.OpParam, intLit(1), ir.Empty, lInt)),
	}

	for name, prog := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := run(t, prog)
			runtimeError(t, err)
		})
	}
}

func TestConstantSegment(t *testing.T) {
	prog := program(
		quad(ir.OpAssign, ir.Address(19000, typing.Int), ir.Empty, gInt),
		quad(ir.OpWrite, ir.Empty, ir.Empty, gInt),
	)
	prog.Constants[19000] = ir.IntValue(42)

	out, err := run(t, prog)
	if err != nil {
		t.Fatal(err)
	}

	expectOutput(t, out, "42")
}

func TestReadAndWrite(t *testing.T) {
	prog := program(
		quad(ir.OpRead, ir.Empty, ir.Empty, gInt),
		quad(ir.OpRead, ir.Empty, ir.Empty, gFloat),
		quad(ir.OpRead, ir.Empty, ir.Empty, gChar),
		quad(ir.OpWrite, ir.Empty, ir.Empty, ir.StringRef(0)),
		quad(ir.OpWrite, ir.Empty, ir.Empty, gInt),
		quad(ir.OpWrite, ir.Empty, ir.Empty, gFloat),
		quad(ir.OpWrite, ir.Empty, ir.Empty, gChar),
		quad(ir.OpEnd, ir.Empty, ir.Empty, ir.Empty),
	)
	prog.Strings = []string{"values:"}

	out, err := run(t, prog, " 42 ", "2.5", "x")
	if err != nil {
		t.Fatal(err)
	}

	expectOutput(t, out, "values:", "42", "2.5", "x")

	for name, input := range map[string]string{"int": "4.5", "float": "abc", "char": "xy"} {
		t.Run("bad "+name, func(t *testing.T) {
			inputs := map[string][]string{
				"int":   {input},
				"float": {"1", input},
				"char":  {"1", "1", input},
			}[name]

			_, err := run(t, prog, inputs...)
			runtimeError(t, err)
		})
	}

	t.Run("no input", func(t *testing.T) {
		_, err := run(t, prog)
		runtimeError(t, err)
	})
}

func TestLoop(t *testing.T) {
	// i = 0; while (i < 3) do { write(i); i = i + 1; }
	out, err := run(t, program(
		quad(ir.OpAssign, intLit(0), ir.Empty, gInt),
		quad(ir.OpLt, gInt, intLit(3), ir.Temp(0, typing.Int)),
		quad(ir.OpGotoF, ir.Temp(0, typing.Int), ir.Empty, ir.Jump(6)),
		quad(ir.OpWrite, ir.Empty, ir.Empty, gInt),
		quad(ir.OpAdd, gInt, intLit(1), gInt),
		quad(ir.OpGoto, ir.Empty, ir.Empty, ir.Jump(1)),
		quad(ir.OpEnd, ir.Empty, ir.Empty, ir.Empty),
	))
	if err != nil {
		t.Fatal(err)
	}

	expectOutput(t, out, "0", "1", "2")
}

func squareProgram(body ...ir.Quad) *ir.Program {
	quads := []ir.Quad{quad(ir.OpGoto, ir.Empty, ir.Empty, ir.Jump(len(body)+1))}
	quads = append(quads, body...)

	mainEntry := len(quads)
	quads = append(quads,
		quad(ir.OpEra, ir.Empty, ir.Empty, ir.Func("sq")),
		quad(ir.OpParam, intLit(4), ir.Empty, lInt),
		quad(ir.OpGosub, ir.Func("sq"), ir.Empty, ir.Temp(0, typing.Int)),
		quad(ir.OpAssign, ir.Temp(0, typing.Int), ir.Empty, gInt),
		quad(ir.OpWrite, ir.Empty, ir.Empty, gInt),
		quad(ir.OpEnd, ir.Empty, ir.Empty, ir.Empty),
	)

	prog := program(quads...)
	prog.Functions["sq"] = &ir.FuncInfo{
		Name:       "sq",
		Entry:      1,
		HasReturn:  true,
		ReturnType: typing.Int,
		ParamCount: 1,
		Params:     []ir.Param{{Type: typing.Int, Address: 7000}},
	}
	prog.Functions[ir.MainFunc].Entry = mainEntry
	return prog
}

func TestCallAndReturn(t *testing.T) {
	out, err := run(t, squareProgram(
		quad(ir.OpMul, lInt, lInt, ir.Temp(0, typing.Int)),
		quad(ir.OpReturn, ir.Empty, ir.Empty, ir.Temp(0, typing.Int)),
		quad(ir.OpEndFunc, ir.Empty, ir.Empty, ir.Empty),
	))
	if err != nil {
		t.Fatal(err)
	}

	expectOutput(t, out, "16")
}

func TestFramesArePrivate(t *testing.T) {
	// the callee's t0 lives in its own frame
	prog := squareProgram(
		quad(ir.OpAssign, intLit(100), ir.Empty, ir.Temp(0, typing.Int)),
		quad(ir.OpReturn, ir.Empty, ir.Empty, lInt),
		quad(ir.OpEndFunc, ir.Empty, ir.Empty, ir.Empty),
	)

	out, err := run(t, prog)
	if err != nil {
		t.Fatal(err)
	}

	expectOutput(t, out, "4")
}

func TestMissingReturn(t *testing.T) {
	_, err := run(t, squareProgram(
		quad(ir.OpEndFunc, ir.Empty, ir.Empty, ir.Empty),
	))

	re := runtimeError(t, err)
	if re.Op != ir.OpGosub || !strings.Contains(re.Message, "without returning") {
		t.Errorf("expected a missing return fault at GOSUB, got %s", re)
	}
}

func TestCallDepth(t *testing.T) {
	// func void f() calls itself forever
	prog := program(
		quad(ir.OpGoto, ir.Empty, ir.Empty, ir.Jump(4)),
		quad(ir.OpEra, ir.Empty, ir.Empty, ir.Func("f")),
		quad(ir.OpGosub, ir.Func("f"), ir.Empty, ir.Empty),
		quad(ir.OpEndFunc, ir.Empty, ir.Empty, ir.Empty),
		quad(ir.OpEra, ir.Empty, ir.Empty, ir.Func("f")),
		quad(ir.OpGosub, ir.Func("f"), ir.Empty, ir.Empty),
		quad(ir.OpEnd, ir.Empty, ir.Empty, ir.Empty),
	)
	prog.Functions["f"] = &ir.FuncInfo{Name: "f", Entry: 1, ReturnType: typing.Void}
	prog.Functions[ir.MainFunc].Entry = 4

	machine := New(prog, &ScriptedConsole{})
	machine.MaxCallDepth = 16

	re := runtimeError(t, machine.Run())
	if !strings.Contains(re.Message, "call depth") {
		t.Errorf("expected a call depth fault, got %s", re)
	}
}

func TestScriptedConsole(t *testing.T) {
	sc := &ScriptedConsole{Inputs: []string{"a"}}

	if line, err := sc.ReadLine(); err != nil || line != "a" {
		t.Errorf("expected `a`, got `%s` (%v)", line, err)
	}

	if _, err := sc.ReadLine(); err != ErrNoInput {
		t.Errorf("expected ErrNoInput, got %v", err)
	}
}

func TestStdConsole(t *testing.T) {
	var out strings.Builder
	sc := NewStdConsole(strings.NewReader("first\r\nlast"), &out)

	for _, want := range []string{"first", "last"} {
		if line, err := sc.ReadLine(); err != nil || line != want {
			t.Errorf("expected `%s`, got `%s` (%v)", want, line, err)
		}
	}

	if _, err := sc.ReadLine(); err == nil {
		t.Error("expected an error at the end of input")
	}

	sc.WriteLine("x")
	if out.String() != "x\n" {
		t.Errorf("expected `x\\n`, got %q", out.String())
	}
}
