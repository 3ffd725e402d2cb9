package grammar

import (
	"sort"
	"strconv"
	"strings"
)

// LRItem represents an LR(0) item
type LRItem struct {
	// Rule refers to the production id
	Rule int

	// DotPos refers to the index the dot is considered to be placed BEFORE (so
	// a dot at the end of the item would have a dot pos == to the length of
	// the rule)
	DotPos int
}

// LRItemSet represents a complete LR(0) state
type LRItemSet struct {
	Items map[LRItem]struct{}

	// Conns represents all of the possible progressions for a given item set
	Conns map[Symbol]int
}

// Automaton is the LR(0) automaton of a grammar
type Automaton struct {
	Grammar *Grammar
	States  []*LRItemSet

	// stateKeys maps the canonical key of each item set onto its index
	stateKeys map[string]int
}

// BuildAutomaton computes every LR(0) item set of a grammar and the
// transitions between them.  State 0 is the closure of the augmented start
// item.
func BuildAutomaton(g *Grammar) *Automaton {
	a := &Automaton{Grammar: g, stateKeys: make(map[string]int)}

	startSet := &LRItemSet{Items: map[LRItem]struct{}{{Rule: 0, DotPos: 0}: {}}}
	a.closureOf(startSet)
	a.addState(startSet)

	symbols := g.Symbols()
	for worklist := []int{0}; len(worklist) > 0; {
		state := worklist[0]
		worklist = worklist[1:]
		itemSet := a.States[state]

		for _, sym := range symbols {
			next := a.gotoOf(itemSet, sym)
			if next == nil {
				continue
			}

			key := next.key()
			if ndx, ok := a.stateKeys[key]; ok {
				itemSet.Conns[sym] = ndx
				continue
			}

			ndx := a.addState(next)
			itemSet.Conns[sym] = ndx
			worklist = append(worklist, ndx)
		}
	}

	return a
}

// addState appends an item set to the automaton and returns its index
func (a *Automaton) addState(itemSet *LRItemSet) int {
	itemSet.Conns = make(map[Symbol]int)
	a.States = append(a.States, itemSet)
	a.stateKeys[itemSet.key()] = len(a.States) - 1
	return len(a.States) - 1
}

// closureOf calculates all of the items in LR(0) item set based on its item
// kernel
func (a *Automaton) closureOf(itemSet *LRItemSet) {
	for addedMore := true; addedMore; {
		addedMore = false

		for item := range itemSet.Items {
			rule := a.Grammar.Productions[item.Rule]

			// nothing to calculate if the dot is at the end of rule
			if item.DotPos == len(rule.Body) {
				continue
			}

			// if we have a nonterminal, add all its rule to the item set
			if dotted := rule.Body[item.DotPos]; !dotted.IsTerminal() {
				startingLength := len(itemSet.Items)

				for _, ruleRef := range a.Grammar.ProductionsByHead[dotted.Name] {
					itemSet.Items[LRItem{Rule: ruleRef, DotPos: 0}] = struct{}{}
				}

				// if the length changed, something was added
				if len(itemSet.Items) != startingLength {
					addedMore = true
				}
			}
		}
	}
}

// gotoOf advances the dot over `sym` in every item of the set that allows it
// and closes the result.  It returns nil if no item can advance.
func (a *Automaton) gotoOf(itemSet *LRItemSet, sym Symbol) *LRItemSet {
	var kernel map[LRItem]struct{}

	for item := range itemSet.Items {
		rule := a.Grammar.Productions[item.Rule]

		if item.DotPos < len(rule.Body) && rule.Body[item.DotPos] == sym {
			if kernel == nil {
				kernel = make(map[LRItem]struct{})
			}

			kernel[LRItem{Rule: item.Rule, DotPos: item.DotPos + 1}] = struct{}{}
		}
	}

	if kernel == nil {
		return nil
	}

	next := &LRItemSet{Items: kernel}
	a.closureOf(next)
	return next
}

// SortedItems returns the items of the set ordered by rule and dot position
func (set *LRItemSet) SortedItems() []LRItem {
	items := make([]LRItem, 0, len(set.Items))
	for item := range set.Items {
		items = append(items, item)
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].Rule != items[j].Rule {
			return items[i].Rule < items[j].Rule
		}

		return items[i].DotPos < items[j].DotPos
	})

	return items
}

// key returns a canonical string identifying the item set: two sets are equal
// iff their keys are equal
func (set *LRItemSet) key() string {
	var sb strings.Builder
	for _, item := range set.SortedItems() {
		sb.WriteString(strconv.Itoa(item.Rule))
		sb.WriteByte('.')
		sb.WriteString(strconv.Itoa(item.DotPos))
		sb.WriteByte(';')
	}

	return sb.String()
}

// TransitionCount returns the number of transitions of the automaton
func (a *Automaton) TransitionCount() int {
	n := 0
	for _, set := range a.States {
		n += len(set.Conns)
	}

	return n
}
