package sem

import (
	"duck/logging"
	"duck/typing"
	"errors"
	"testing"
)

func newProgram(t *testing.T) *Context {
	t.Helper()

	c := NewContext()
	if err := c.InitProgram("demo"); err != nil {
		t.Fatalf("InitProgram: unexpected error: %s", err)
	}

	return c
}

func errKind(err error) int {
	var ce *logging.CompileError
	if errors.As(err, &ce) {
		return ce.Kind
	}

	return -1
}

func TestInitProgramTwice(t *testing.T) {
	c := newProgram(t)

	if err := c.InitProgram("again"); err == nil {
		t.Error("expected second InitProgram to fail")
	}

	if c.ProgramName != "demo" {
		t.Errorf("program name: expected demo, got %s", c.ProgramName)
	}
}

func TestGlobalVariables(t *testing.T) {
	c := newProgram(t)
	c.SetCurrentType(typing.Int)

	if err := c.AddVariable("a", 1000); err != nil {
		t.Fatal(err)
	}

	err := c.AddVariable("a", 1001)
	if errKind(err) != logging.LMKDef {
		t.Errorf("duplicate variable: expected definition error, got %v", err)
	}

	dt, err := c.LookupType("a")
	if err != nil || dt != typing.Int {
		t.Errorf("lookup a: expected int, got %s (%v)", dt, err)
	}

	if _, err := c.LookupVariable("b"); errKind(err) != logging.LMKName {
		t.Errorf("lookup b: expected name error, got %v", err)
	}
}

func TestTwoLevelScope(t *testing.T) {
	c := newProgram(t)
	c.SetCurrentType(typing.Int)
	c.AddVariable("g", 1000)
	c.AddVariable("x", 1001)

	if err := c.BeginFunction("f", typing.Float); err != nil {
		t.Fatal(err)
	}

	if c.InGlobalScope() {
		t.Error("expected to be inside `f`")
	}

	if err := c.AddParameter("p", typing.Float, 9000); err != nil {
		t.Fatal(err)
	}

	c.SetCurrentType(typing.Char)
	if err := c.AddVariable("x", 11000); err != nil {
		t.Errorf("local shadowing a global: unexpected error: %s", err)
	}

	cases := []struct {
		name string
		addr int
	}{
		{"g", 1000},
		{"x", 11000},
		{"p", 9000},
	}

	for _, tc := range cases {
		sym, err := c.LookupVariable(tc.name)
		if err != nil {
			t.Errorf("lookup %s: unexpected error: %s", tc.name, err)
			continue
		}

		if sym.Address != tc.addr {
			t.Errorf("lookup %s: expected @%d, got @%d", tc.name, tc.addr, sym.Address)
		}
	}

	fe := c.CurrentFunction()
	if len(fe.Params) != 1 || fe.Params[0].Name != "p" {
		t.Errorf("params: expected [p], got %v", fe.Params)
	}

	c.EndFunction()
	if !c.InGlobalScope() {
		t.Error("expected to be back in the global scope")
	}

	if _, err := c.LookupVariable("p"); err == nil {
		t.Error("expected parameter to be invisible from the global scope")
	}

	if sym, _ := c.LookupVariable("x"); sym == nil || sym.Address != 1001 {
		t.Error("expected global `x` after leaving `f`")
	}
}

func TestFunctionDirectory(t *testing.T) {
	c := newProgram(t)

	if err := c.BeginFunction("demo", typing.Void); errKind(err) != logging.LMKDef {
		t.Errorf("function named like the program: expected definition error, got %v", err)
	}

	if err := c.BeginFunction("f", typing.Void); err != nil {
		t.Fatal(err)
	}
	c.EndFunction()

	if err := c.BeginFunction("f", typing.Int); errKind(err) != logging.LMKDef {
		t.Errorf("duplicate function: expected definition error, got %v", err)
	}

	if _, err := c.LookupFunction("f"); err != nil {
		t.Errorf("lookup f: unexpected error: %s", err)
	}

	if _, err := c.LookupFunction("demo"); err == nil {
		t.Error("lookup demo: the global scope should not be callable")
	}

	if _, err := c.LookupFunction("g"); errKind(err) != logging.LMKName {
		t.Errorf("lookup g: expected name error, got %v", err)
	}

	if len(c.Functions()) != 1 {
		t.Errorf("functions: expected 1, got %d", len(c.Functions()))
	}
}

func TestParameterOutsideFunction(t *testing.T) {
	c := newProgram(t)

	if err := c.AddParameter("p", typing.Int, 7000); err == nil {
		t.Error("expected parameter in global scope to fail")
	}
}
