package grammar

import (
	"duck/logging"
	"duck/syntax"
	"fmt"
)

// Conflict is an ACTION cell that two items tried to fill differently
type Conflict struct {
	State    int
	Terminal string

	// Kept is the action left in the table and Dropped the one discarded
	Kept, Dropped *syntax.Action
}

func (c *Conflict) String() string {
	kind := "shift/reduce"
	if c.Kept.Kind == syntax.AKReduce && c.Dropped.Kind == syntax.AKReduce {
		kind = "reduce/reduce"
	}

	return fmt.Sprintf("%s conflict in state %d on `%s`: kept %s, dropped %s", kind, c.State, c.Terminal, c.Kept, c.Dropped)
}

// TableBuilder holds the state used to construct the parsing table
type TableBuilder struct {
	Grammar   *Grammar
	Automaton *Automaton
	Analysis  *Analysis
	Table     *syntax.ParsingTable

	Conflicts []*Conflict
}

// BuildTable builds the SLR(1) parsing table of a grammar.  Conflicts are
// resolved in favor of shift over reduce and of the earlier production
// between two reductions; every conflict is recorded in the table.  In strict
// mode, a conflicting grammar is an error.
func BuildTable(g *Grammar, strict bool) (*syntax.ParsingTable, error) {
	return NewTableBuilder(g).Build(strict)
}

// NewTableBuilder analyzes a grammar and builds its LR(0) automaton.  The
// analysis and the automaton stay available for inspection.
func NewTableBuilder(g *Grammar) *TableBuilder {
	return &TableBuilder{
		Grammar:   g,
		Automaton: BuildAutomaton(g),
		Analysis:  Analyze(g),
	}
}

// Build derives the parsing table (see BuildTable)
func (tb *TableBuilder) Build(strict bool) (*syntax.ParsingTable, error) {
	tb.build()

	if strict && len(tb.Conflicts) > 0 {
		return nil, logging.Raise(
			logging.LMKGrammar, 0,
			"grammar is not SLR(1): %d conflicts, first: %s",
			len(tb.Conflicts), tb.Conflicts[0],
		)
	}

	return tb.Table, nil
}

// build fills the table from the automaton and the FOLLOW sets
func (tb *TableBuilder) build() {
	tb.Table = &syntax.ParsingTable{
		Rows:  make([]*syntax.PTableRow, len(tb.Automaton.States)),
		Rules: make([]*syntax.PTableRule, len(tb.Grammar.Productions)),
	}

	for i, prod := range tb.Grammar.Productions {
		tb.Table.Rules[i] = &syntax.PTableRule{Name: prod.Head, Count: len(prod.Body)}
	}

	for state, itemSet := range tb.Automaton.States {
		row := syntax.NewPTableRow()
		tb.Table.Rows[state] = row

		for _, item := range itemSet.SortedItems() {
			rule := tb.Grammar.Productions[item.Rule]

			// complete items reduce (or accept)
			if item.DotPos == len(rule.Body) {
				if item.Rule == 0 {
					tb.setAction(state, row, syntax.EndMarker, &syntax.Action{Kind: syntax.AKAccept})
					continue
				}

				for _, term := range tb.Analysis.Follow[rule.Head].Sorted() {
					tb.setAction(state, row, term, &syntax.Action{Kind: syntax.AKReduce, Operand: item.Rule})
				}

				continue
			}

			dotted := rule.Body[item.DotPos]
			next, ok := itemSet.Conns[dotted]
			if !ok {
				continue
			}

			if dotted.IsTerminal() {
				tb.setAction(state, row, dotted.Name, &syntax.Action{Kind: syntax.AKShift, Operand: next})
			} else {
				row.Gotos[dotted.Name] = next
			}
		}
	}

	for _, c := range tb.Conflicts {
		tb.Table.Conflicts = append(tb.Table.Conflicts, c.String())
	}
}

// setAction writes an ACTION cell, detecting and resolving conflicts
func (tb *TableBuilder) setAction(state int, row *syntax.PTableRow, term string, action *syntax.Action) {
	existing, ok := row.Actions[term]
	if !ok {
		row.Actions[term] = action
		return
	}

	if *existing == *action {
		return
	}

	kept, dropped := existing, action
	if preferAction(action, existing) {
		kept, dropped = action, existing
	}

	row.Actions[term] = kept
	tb.Conflicts = append(tb.Conflicts, &Conflict{State: state, Terminal: term, Kept: kept, Dropped: dropped})
}

// preferAction decides whether `incoming` should replace `existing`: accept
// beats everything, shift beats reduce and the earlier production wins between
// two reductions
func preferAction(incoming, existing *syntax.Action) bool {
	if existing.Kind == syntax.AKAccept {
		return false
	}

	if incoming.Kind == syntax.AKAccept {
		return true
	}

	if incoming.Kind != existing.Kind {
		return incoming.Kind == syntax.AKShift
	}

	// two reductions (two shifts on one terminal cannot differ in an LR(0)
	// automaton)
	return incoming.Operand < existing.Operand
}
