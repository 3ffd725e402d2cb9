package grammar

import (
	"duck/syntax"
	"sort"
)

// TerminalSet is a set of terminal names (and possibly Epsilon)
type TerminalSet map[string]struct{}

// add adds a terminal and returns whether the set grew
func (ts TerminalSet) add(name string) bool {
	if _, ok := ts[name]; ok {
		return false
	}

	ts[name] = struct{}{}
	return true
}

// Has tests whether the set contains a terminal
func (ts TerminalSet) Has(name string) bool {
	_, ok := ts[name]
	return ok
}

// Sorted returns the members of the set in sorted order
func (ts TerminalSet) Sorted() []string {
	out := make([]string, 0, len(ts))
	for name := range ts {
		out = append(out, name)
	}

	sort.Strings(out)
	return out
}

// Analysis holds the FIRST sets of every non-terminal and the FOLLOW sets of
// every non-terminal of a grammar
type Analysis struct {
	First  map[string]TerminalSet
	Follow map[string]TerminalSet

	g *Grammar
}

// Analyze computes the FIRST and FOLLOW sets of a grammar
func Analyze(g *Grammar) *Analysis {
	a := &Analysis{
		First:  make(map[string]TerminalSet),
		Follow: make(map[string]TerminalSet),
		g:      g,
	}

	for _, nt := range g.Nonterminals {
		a.First[nt] = make(TerminalSet)
		a.Follow[nt] = make(TerminalSet)
	}

	for a.firstPass() {
	}

	a.Follow[g.Start].add(syntax.EndMarker)
	for a.followPass() {
	}

	return a
}

// FirstOf computes FIRST of a sequence of symbols.  The result contains
// Epsilon iff every symbol of the sequence can vanish (including the empty
// sequence).
func (a *Analysis) FirstOf(seq []Symbol) TerminalSet {
	out := make(TerminalSet)

	for _, sym := range seq {
		if sym.IsTerminal() {
			out.add(sym.Name)
			return out
		}

		first := a.First[sym.Name]
		for name := range first {
			if name != Epsilon {
				out.add(name)
			}
		}

		if !first.Has(Epsilon) {
			return out
		}
	}

	out.add(Epsilon)
	return out
}

// firstPass makes one pass over every production growing the FIRST sets.  It
// returns whether any set changed.
func (a *Analysis) firstPass() bool {
	changed := false

	for _, prod := range a.g.Productions {
		for name := range a.FirstOf(prod.Body) {
			if a.First[prod.Head].add(name) {
				changed = true
			}
		}
	}

	return changed
}

// followPass makes one pass over every non-terminal occurrence growing the
// FOLLOW sets.  It returns whether any set changed.
func (a *Analysis) followPass() bool {
	changed := false

	for _, prod := range a.g.Productions {
		for i, sym := range prod.Body {
			if sym.IsTerminal() {
				continue
			}

			follow := a.Follow[sym.Name]
			rest := a.FirstOf(prod.Body[i+1:])

			for name := range rest {
				if name != Epsilon && follow.add(name) {
					changed = true
				}
			}

			// everything after `sym` can vanish
			if rest.Has(Epsilon) {
				for name := range a.Follow[prod.Head] {
					if follow.add(name) {
						changed = true
					}
				}
			}
		}
	}

	return changed
}

// Nullable indicates whether a non-terminal can derive the empty string
func (a *Analysis) Nullable(nt string) bool {
	return a.First[nt].Has(Epsilon)
}
