package grammar

import (
	"fmt"
	"io"
	"strings"
)

// DescribeItem renders an LR(0) item as `<A> → α • β`
func DescribeItem(g *Grammar, item LRItem) string {
	rule := g.Productions[item.Rule]

	var sb strings.Builder
	sb.WriteString("<" + rule.Head + "> " + Arrow)

	for i, sym := range rule.Body {
		if i == item.DotPos {
			sb.WriteString(" •")
		}

		sb.WriteString(" " + sym.String())
	}

	if item.DotPos == len(rule.Body) {
		sb.WriteString(" •")
	}

	return sb.String()
}

// Dump writes every state of the automaton with its items and transitions
func (a *Automaton) Dump(w io.Writer) {
	symbols := a.Grammar.Symbols()

	for i, set := range a.States {
		fmt.Fprintf(w, "state %d:\n", i)

		for _, item := range set.SortedItems() {
			fmt.Fprintf(w, "    %s\n", DescribeItem(a.Grammar, item))
		}

		for _, sym := range symbols {
			if next, ok := set.Conns[sym]; ok {
				fmt.Fprintf(w, "    %s -> %d\n", sym, next)
			}
		}

		fmt.Fprintln(w)
	}
}

// DumpSets writes the FIRST and FOLLOW set of every non-terminal
func (an *Analysis) DumpSets(w io.Writer) {
	for _, nt := range an.g.Nonterminals {
		fmt.Fprintf(w, "FIRST(<%s>) = {%s}\n", nt, strings.Join(an.First[nt].Sorted(), ", "))
		fmt.Fprintf(w, "FOLLOW(<%s>) = {%s}\n", nt, strings.Join(an.Follow[nt].Sorted(), ", "))
	}
}
