package build

import (
	"bytes"
	"duck/ir"
	"duck/logging"
	"duck/mods"
	"duck/vm"
	"errors"
	"io/ioutil"
	"path/filepath"
	"strings"
	"testing"
)

func testProject() *mods.DuckProject {
	return &mods.DuckProject{Name: "test", EntryPath: "test.duck"}
}

// compileAndRun compiles source text, runs it on a scripted console and
// returns the output lines
func compileAndRun(t *testing.T, src string, inputs ...string) (*ir.Program, []string, error) {
	t.Helper()

	prog, err := NewCompiler(testProject()).CompileSource(src)
	if err != nil {
		t.Fatalf("compile: %s", err)
	}

	console := &vm.ScriptedConsole{Inputs: inputs}
	err = Run(prog, console, mods.RunSettings{})
	return prog, console.Output, err
}

func expectLines(t *testing.T, got []string, want ...string) {
	t.Helper()

	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("expected output %q, got %q", want, got)
	}
}

func TestStraightLineProgram(t *testing.T) {
	prog, out, err := compileAndRun(t, `
program sum;
var int a, b, c;
main {
  a = 10;
  b = 20;
  c = a + b;
  write(c);
}
end`)
	if err != nil {
		t.Fatal(err)
	}

	expectLines(t, out, "30")

	want := []string{
		"(=, 10, -, @1000)",
		"(=, 20, -, @1001)",
		"(+, @1000, @1001, t0)",
		"(=, t0, -, @1002)",
		"(write, -, -, @1002)",
		"(END, -, -, -)",
	}

	if len(prog.Quads) != len(want) {
		t.Fatalf("expected %d quadruples, got %d", len(want), len(prog.Quads))
	}

	for i, q := range prog.Quads {
		if q.String() != want[i] {
			t.Errorf("quad %d: expected %s, got %s", i, want[i], q)
		}
	}

	if prog.Name != "sum" {
		t.Errorf("expected program name sum, got %s", prog.Name)
	}
}

func TestConditionJumps(t *testing.T) {
	prog, out, err := compileAndRun(t, `
program cond;
var int a, b;
main {
  a = 5;
  b = 10;
  if (a > b) then {
    write(a);
  } else {
    write(b);
  }
}
end`)
	if err != nil {
		t.Fatal(err)
	}

	expectLines(t, out, "10")

	counts := make(map[ir.Opcode]int)
	for i, q := range prog.Quads {
		counts[q.Op]++

		if q.Op == ir.OpGoto || q.Op == ir.OpGotoF {
			if q.Result.Kind != ir.OKJump || q.Result.Int < 0 || q.Result.Int > len(prog.Quads) {
				t.Errorf("quad %d: jump target %s is out of range", i, q.Result)
			}
		}
	}

	if counts[ir.OpGotoF] != 1 || counts[ir.OpGoto] != 1 {
		t.Errorf("expected 1 GOTOF and 1 GOTO, got %d and %d", counts[ir.OpGotoF], counts[ir.OpGoto])
	}
}

func TestPrograms(t *testing.T) {
	cases := []struct {
		name   string
		src    string
		inputs []string
		want   []string
	}{
		{
			"while loop",
			`program loop;
var int i, s;
main {
  i = 1;
  s = 0;
  while (i < 6) do {
    s = s + i;
    i = i + 1;
  }
  write(s);
}
end`,
			nil,
			[]string{"15"},
		},
		{
			"recursion",
			`program recursion;
var int r;
func int fact(int n) [
  var int k;
  {
    if (n < 2) then {
      return(1);
    }
    k = n - 1;
    return(n * fact(k));
  }
];
main {
  r = fact(5);
  write(r);
}
end`,
			nil,
			[]string{"120"},
		},
		{
			"nested relational headers",
			`program headers;
var int a, b;
func int inc(int n) [
  {
    return(n + 1);
  }
];
main {
  a = 1;
  b = 2;
  if ((a < b) == 1) then {
    write("lt");
  } else {
    write("ge");
  }
  if (inc(1 < 2) > 1) then {
    write("call");
  }
  while ((a < b)) do {
    a = a + 1;
  }
  write(a);
}
end`,
			nil,
			[]string{"lt", "call", "2"},
		},
		{
			"string escapes",
			`program escapes;
main {
  write("a\tb", "say \"hi\"");
}
end`,
			nil,
			[]string{"a\tb", `say "hi"`},
		},
		{
			"void call",
			`program greeting;
func void greet(char c) [
  {
    write("hello", c);
  }
];
main {
  greet('d');
}
end`,
			nil,
			[]string{"hello", "d"},
		},
		{
			"read",
			`program input;
var int a; float x;
main {
  read(a, x);
  write(a * 2, x);
}
end`,
			[]string{"21", "1.5"},
			[]string{"42", "1.5"},
		},
		{
			"strings and floats",
			`program mixed;
var float f;
main {
  f = 1.5 + 2;
  write("total", f, 7 / 2);
}
end`,
			nil,
			[]string{"total", "3.5", "3"},
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, out, err := compileAndRun(t, c.src, c.inputs...)
			if err != nil {
				t.Fatal(err)
			}

			expectLines(t, out, c.want...)
		})
	}
}

func TestDivisionByZero(t *testing.T) {
	_, out, err := compileAndRun(t, `
program crash;
var int a, b;
main {
  b = 0;
  write("before");
  a = 10 / b;
  write("after");
}
end`)

	var re *vm.RuntimeError
	if !errors.As(err, &re) {
		t.Fatalf("expected a runtime error, got %v", err)
	}

	expectLines(t, out, "before")
}

func TestMissingReturn(t *testing.T) {
	_, _, err := compileAndRun(t, `
program noreturn;
var int r;
func int f(int n) [
  {
    n = n + 1;
  }
];
main {
  r = f(1);
}
end`)

	var re *vm.RuntimeError
	if !errors.As(err, &re) {
		t.Fatalf("expected a runtime error, got %v", err)
	}
}

func TestCompileErrors(t *testing.T) {
	cases := []struct {
		name string
		src  string
		kind int
	}{
		{"bad token", "program p;\nmain { a = 1 $ 2; } end", logging.LMKToken},
		{"syntax", "program p;\nmain { write(; } end", logging.LMKSyntax},
		{"undeclared", "program p;\nmain { x = 1; } end", logging.LMKName},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := NewCompiler(testProject()).CompileSource(c.src)

			var ce *logging.CompileError
			if !errors.As(err, &ce) {
				t.Fatalf("expected a compile error, got %v", err)
			}

			if ce.Kind != c.kind {
				t.Errorf("expected kind %d, got %d (%s)", c.kind, ce.Kind, ce)
			}
		})
	}
}

func TestTableCache(t *testing.T) {
	project := testProject()
	project.TableCachePath = filepath.Join(t.TempDir(), ".duck", "duck.ptable")

	first := NewCompiler(project)
	if err := first.LoadTable(); err != nil {
		t.Fatal(err)
	}

	if first.cached {
		t.Error("expected the first table to be generated")
	}

	second := NewCompiler(project)
	if err := second.LoadTable(); err != nil {
		t.Fatal(err)
	}

	if !second.cached {
		t.Error("expected the second table to come from the cache")
	}

	if len(second.parsingTable.Rows) != len(first.parsingTable.Rows) {
		t.Errorf("expected %d cached rows, got %d", len(first.parsingTable.Rows), len(second.parsingTable.Rows))
	}
}

func TestGrammarOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ambiguous.grammar")
	if err := ioutil.WriteFile(path, []byte("<S> → <S> + <S>\n<S> → id\n"), 0644); err != nil {
		t.Fatal(err)
	}

	project := testProject()
	project.GrammarPath = path

	if err := NewCompiler(project).LoadTable(); err == nil {
		t.Error("expected a conflicting grammar to be rejected")
	}

	project.AllowConflicts = true

	c := NewCompiler(project)
	if err := c.LoadTable(); err != nil {
		t.Fatal(err)
	}

	if len(c.parsingTable.Conflicts) == 0 {
		t.Error("expected the conflicts to be recorded")
	}
}

func TestScriptedInputsConsole(t *testing.T) {
	prog, err := NewCompiler(testProject()).CompileSource(`
program echo;
var int a;
main {
  read(a);
  write(a + 1);
}
end`)
	if err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	settings := mods.RunSettings{Inputs: []string{"41"}}

	if err := Run(prog, NewConsole(settings, strings.NewReader("0\n"), &out), settings); err != nil {
		t.Fatal(err)
	}

	if out.String() != "42\n" {
		t.Errorf("expected 42, got %q", out.String())
	}
}
