package sem

import "duck/typing"

// Symbol represents a named variable (globally or locally)
type Symbol struct {
	// Name is the name of the symbol (as it is referenced in source code)
	Name string

	// Type stores the data type of this symbol
	Type typing.DataType

	// Address is the virtual address the symbol is stored at
	Address int

	// DefKind is the kind of definition that produced this symbol. This must
	// be one of the enumerated definition kinds below
	DefKind int
}

// Enumeration of symbol definition kinds
const (
	DefKindVar   = iota // Variables declared in a `var` block
	DefKindParam        // Function parameters
)

// SymbolTable is a single scope of symbols.
type SymbolTable struct {
	symbols map[string]*Symbol
}

// NewSymbolTable creates a new, empty symbol table
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{symbols: make(map[string]*Symbol)}
}

// Define adds a symbol to the table.  It returns false if a symbol of the same
// name already exists
func (st *SymbolTable) Define(sym *Symbol) bool {
	if _, ok := st.symbols[sym.Name]; ok {
		return false
	}

	st.symbols[sym.Name] = sym
	return true
}

// Lookup looks up a symbol and returns it if it exists.
func (st *SymbolTable) Lookup(name string) (*Symbol, bool) {
	sym, ok := st.symbols[name]
	return sym, ok
}
