package grammar

import "strings"

// Epsilon is the symbol written for an empty production body
const Epsilon = "ε"

// Arrow separates the head of a production from its body
const Arrow = "→"

// Symbol is a single element of a production body
type Symbol struct {
	// Kind should be one of the symbol kinds enumerated below
	Kind int

	// Name is the terminal name or the non-terminal name (without brackets)
	Name string
}

// Different kinds of symbols
const (
	SymTerminal = iota
	SymNonterminal
)

// Terminal creates a terminal symbol
func Terminal(name string) Symbol {
	return Symbol{Kind: SymTerminal, Name: name}
}

// Nonterminal creates a non-terminal symbol
func Nonterminal(name string) Symbol {
	return Symbol{Kind: SymNonterminal, Name: name}
}

// IsTerminal indicates whether the symbol is a terminal
func (s Symbol) IsTerminal() bool {
	return s.Kind == SymTerminal
}

func (s Symbol) String() string {
	if s.Kind == SymNonterminal {
		return "<" + s.Name + ">"
	}

	return s.Name
}

// Production is a single grammar rule.  An empty body is an epsilon rule.
type Production struct {
	ID   int
	Head string
	Body []Symbol
}

func (p *Production) String() string {
	if len(p.Body) == 0 {
		return "<" + p.Head + "> " + Arrow + " " + Epsilon
	}

	parts := make([]string, len(p.Body))
	for i, sym := range p.Body {
		parts[i] = sym.String()
	}

	return "<" + p.Head + "> " + Arrow + " " + strings.Join(parts, " ")
}

// Grammar is an augmented grammar: production 0 is always `<Start>Prime →
// <Start>`
type Grammar struct {
	Productions []*Production

	// ProductionsByHead maps each non-terminal onto the ids of its productions
	ProductionsByHead map[string][]int

	// Terminals and Nonterminals are listed in order of first appearance so
	// that every algorithm walking them is deterministic
	Terminals    []string
	Nonterminals []string

	// Start is the name of the augmented start non-terminal
	Start string

	terminalSet map[string]struct{}
}

// IsTerminal indicates whether a name is one of the grammar's terminals
func (g *Grammar) IsTerminal(name string) bool {
	_, ok := g.terminalSet[name]
	return ok
}

// Symbols returns every grammar symbol: terminals first, then non-terminals
func (g *Grammar) Symbols() []Symbol {
	syms := make([]Symbol, 0, len(g.Terminals)+len(g.Nonterminals))
	for _, t := range g.Terminals {
		syms = append(syms, Terminal(t))
	}

	for _, nt := range g.Nonterminals {
		syms = append(syms, Nonterminal(nt))
	}

	return syms
}
