package sem

import (
	"duck/logging"
	"duck/typing"
)

// FunctionEntry is an entry of the function directory.  The global scope is
// itself an entry registered under the program name.
type FunctionEntry struct {
	Name       string
	ReturnType typing.DataType

	// Table holds the locals and parameters of the function
	Table *SymbolTable

	// Params are the parameters in declaration order
	Params []*Symbol
}

// Context is the semantic state of a single compilation: the function
// directory, the current scope and the type of the declaration list being
// processed.
type Context struct {
	// ProgramName is the name of the program (and of the global scope)
	ProgramName string

	functions map[string]*FunctionEntry
	order     []*FunctionEntry

	scope string

	currentType    typing.DataType
	hasCurrentType bool
}

// NewContext creates a new semantic context.  No program is registered yet.
func NewContext() *Context {
	return &Context{functions: make(map[string]*FunctionEntry)}
}

// InitProgram registers the global scope under the program name.  It fails if
// called twice.
func (c *Context) InitProgram(name string) error {
	if c.ProgramName != "" {
		return logging.Raise(logging.LMKDef, 0, "program `%s` is already initialized", c.ProgramName)
	}

	c.ProgramName = name
	c.functions[name] = &FunctionEntry{
		Name:       name,
		ReturnType: typing.Void,
		Table:      NewSymbolTable(),
	}
	c.scope = name
	return nil
}

// BeginFunction registers a new function and makes it the current scope
func (c *Context) BeginFunction(name string, ret typing.DataType) error {
	if c.ProgramName == "" {
		return logging.Internal("function `%s` declared before the program header", name)
	}

	if name == c.ProgramName {
		return logging.Raise(logging.LMKDef, 0, "function `%s` collides with the program name", name)
	}

	if _, ok := c.functions[name]; ok {
		return logging.Raise(logging.LMKDef, 0, "function `%s` is already defined", name)
	}

	fe := &FunctionEntry{Name: name, ReturnType: ret, Table: NewSymbolTable()}
	c.functions[name] = fe
	c.order = append(c.order, fe)
	c.scope = name
	return nil
}

// EndFunction returns the current scope to the global scope
func (c *Context) EndFunction() {
	c.scope = c.ProgramName
}

// SetCurrentType sets the type of the variables declared next
func (c *Context) SetCurrentType(dt typing.DataType) {
	c.currentType = dt
	c.hasCurrentType = true
}

// CurrentType returns the type of the declaration list being processed
func (c *Context) CurrentType() typing.DataType {
	return c.currentType
}

// InGlobalScope indicates whether declarations currently land in the global
// scope
func (c *Context) InGlobalScope() bool {
	return c.scope == c.ProgramName
}

// CurrentFunction returns the entry of the current scope
func (c *Context) CurrentFunction() *FunctionEntry {
	return c.functions[c.scope]
}

// AddVariable binds a variable of the current type in the current scope
func (c *Context) AddVariable(name string, addr int) error {
	if !c.hasCurrentType {
		return logging.Internal("variable `%s` declared without a type", name)
	}

	return c.define(&Symbol{Name: name, Type: c.currentType, Address: addr, DefKind: DefKindVar})
}

// AddParameter binds a parameter of the current function
func (c *Context) AddParameter(name string, dt typing.DataType, addr int) error {
	if c.InGlobalScope() {
		return logging.Internal("parameter `%s` declared outside of a function", name)
	}

	sym := &Symbol{Name: name, Type: dt, Address: addr, DefKind: DefKindParam}
	if err := c.define(sym); err != nil {
		return err
	}

	fe := c.CurrentFunction()
	fe.Params = append(fe.Params, sym)
	return nil
}

func (c *Context) define(sym *Symbol) error {
	fe, ok := c.functions[c.scope]
	if !ok {
		return logging.Internal("no scope to declare `%s` in", sym.Name)
	}

	if !fe.Table.Define(sym) {
		return logging.Raise(logging.LMKDef, 0, "variable `%s` is already declared in `%s`", sym.Name, c.scope)
	}

	return nil
}

// LookupVariable searches the current scope and then the global scope
func (c *Context) LookupVariable(name string) (*Symbol, error) {
	if fe, ok := c.functions[c.scope]; ok {
		if sym, ok := fe.Table.Lookup(name); ok {
			return sym, nil
		}
	}

	if !c.InGlobalScope() {
		if sym, ok := c.functions[c.ProgramName].Table.Lookup(name); ok {
			return sym, nil
		}
	}

	return nil, logging.Raise(logging.LMKName, 0, "undeclared variable `%s`", name)
}

// LookupType returns the type of a variable
func (c *Context) LookupType(name string) (typing.DataType, error) {
	sym, err := c.LookupVariable(name)
	if err != nil {
		return typing.Void, err
	}

	return sym.Type, nil
}

// LookupFunction verifies that a function exists and returns its entry.  The
// global scope is not callable.
func (c *Context) LookupFunction(name string) (*FunctionEntry, error) {
	if fe, ok := c.functions[name]; ok && name != c.ProgramName {
		return fe, nil
	}

	return nil, logging.Raise(logging.LMKName, 0, "undefined function `%s`", name)
}

// Functions returns every declared function in declaration order (the global
// scope is not included)
func (c *Context) Functions() []*FunctionEntry {
	return c.order
}
