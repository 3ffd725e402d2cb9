package ir

import (
	"duck/typing"
	"path/filepath"
	"strings"
	"testing"
)

func sampleProgram() *Program {
	return &Program{
		Name: "sample",
		Quads: []Quad{
			{Op: OpGoto, Left: Empty, Right: Empty, Result: Jump(3)},
			{Op: OpReturn, Left: Empty, Right: Empty, Result: Address(7000, typing.Int)},
			{Op: OpEndFunc, Left: Empty, Right: Empty, Result: Empty},
			{Op: OpAssign, Left: Literal(FloatValue(2.5)), Right: Empty, Result: Address(3000, typing.Float)},
			{Op: OpWrite, Left: Empty, Right: Empty, Result: StringRef(0)},
			{Op: OpEnd, Left: Empty, Right: Empty, Result: Empty},
		},
		Functions: map[string]*FuncInfo{
			"id": {
				Name: "id", Entry: 1, HasReturn: true, ReturnType: typing.Int,
				ParamCount: 1, Params: []Param{{Type: typing.Int, Address: 7000}},
			},
			MainFunc: {Name: MainFunc, Entry: 3, ReturnType: typing.Void},
		},
		Constants: map[int]Value{19000: IntValue(10), 21000: FloatValue(2.5)},
		Strings:   []string{"hi"},
		Globals:   [3]int{0, 1, 0},
	}
}

func TestDump(t *testing.T) {
	var sb strings.Builder
	sampleProgram().Dump(&sb)
	text := sb.String()

	for _, want := range []string{
		"program sample\n",
		"func id: entry L1, returns int, 1 params\n",
		"func main: entry L3, returns void, 0 params\n",
		"const @19000 = 10\n",
		"const @21000 = 2.5\n",
		"string s0 = \"hi\"\n",
		"   0  (GOTO, -, -, L3)\n",
		"   3  (=, 2.5, -, @3000)\n",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("expected the listing to contain %q, got:\n%s", want, text)
		}
	}

	// functions are listed in name order
	if strings.Index(text, "func id") > strings.Index(text, "func main") {
		t.Error("expected functions to be sorted by name")
	}
}

func TestProgramRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.dko")
	prog := sampleProgram()

	if err := SaveProgram(path, prog); err != nil {
		t.Fatal(err)
	}

	loaded, err := LoadProgram(path)
	if err != nil {
		t.Fatal(err)
	}

	if loaded.Name != prog.Name {
		t.Errorf("name: expected %s, got %s", prog.Name, loaded.Name)
	}

	if len(loaded.Quads) != len(prog.Quads) {
		t.Fatalf("expected %d quadruples, got %d", len(prog.Quads), len(loaded.Quads))
	}

	for i, q := range prog.Quads {
		if loaded.Quads[i].String() != q.String() {
			t.Errorf("quad %d: expected %s, got %s", i, q, loaded.Quads[i])
		}
	}

	fi, ok := loaded.Functions["id"]
	if !ok || fi.Entry != 1 || len(fi.Params) != 1 || fi.Params[0].Address != 7000 {
		t.Errorf("expected the linkage of `id` to survive, got %+v", fi)
	}

	if loaded.Main() == nil || loaded.Main().Entry != 3 {
		t.Errorf("expected main to enter at L3, got %+v", loaded.Main())
	}

	if v := loaded.Constants[21000]; v.Type != typing.Float || v.Float != 2.5 {
		t.Errorf("expected constant 2.5 at @21000, got %v", v)
	}

	if loaded.Globals != prog.Globals {
		t.Errorf("globals: expected %v, got %v", prog.Globals, loaded.Globals)
	}
}
