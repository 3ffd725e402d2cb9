package syntax

import (
	"bufio"
	"encoding/gob"
	"fmt"
	"io"
	"os"
	"sort"
)

// ParsingTable represents our SLR(1) parser's Action-Goto table as well as all
// of the rules it can reduce by
type ParsingTable struct {
	Rows  []*PTableRow
	Rules []*PTableRule

	// Conflicts lists every ACTION cell that was written more than once when
	// the table was built (empty for an SLR(1) grammar)
	Conflicts []string
}

// PTableRow is a particular row in the parsing table.  Any terminal for which
// there is no key in the action table is considered unexpected.
type PTableRow struct {
	// Actions is keyed by terminal name
	Actions map[string]*Action

	// Gotos is keyed by non-terminal name
	Gotos map[string]int
}

// Action contains two items: a kind and an operand.  The kind indicates what
// type of action to perform (Shift, Reduce, Accept) and the operand is used to
// store any data affiliated with the action (state to shift to for shift
// actions, rule to reduce by for reduce actions, nothing for accept actions)
type Action struct {
	// Kind should one of the action kinds enumerated below (prefix AK)
	Kind int

	Operand int
}

// Three different kinds of valid actions (that can be explicitly included)
const (
	AKReduce = iota
	AKShift
	AKAccept
)

func (a *Action) String() string {
	switch a.Kind {
	case AKShift:
		return fmt.Sprintf("s%d", a.Operand)
	case AKReduce:
		return fmt.Sprintf("r%d", a.Operand)
	}

	return "acc"
}

// PTableRule is used to represent a given reduction pattern.  Note that since
// the actual elements of a rule are not useful at run time, we simply store the
// number of items to take off the stacks and its name.
type PTableRule struct {
	Name  string
	Count int
}

// NewPTableRow creates a new, empty table row
func NewPTableRow() *PTableRow {
	return &PTableRow{Actions: make(map[string]*Action), Gotos: make(map[string]int)}
}

// Dump writes the table in a readable form: the rule list followed by every
// non-empty cell of each row
func (pt *ParsingTable) Dump(w io.Writer) {
	for i, rule := range pt.Rules {
		fmt.Fprintf(w, "r%-4d <%s> (%d)\n", i, rule.Name, rule.Count)
	}

	for i, row := range pt.Rows {
		fmt.Fprintf(w, "state %d:", i)

		terms := make([]string, 0, len(row.Actions))
		for term := range row.Actions {
			terms = append(terms, term)
		}
		sort.Strings(terms)

		for _, term := range terms {
			fmt.Fprintf(w, " %s=%s", term, row.Actions[term])
		}

		nts := make([]string, 0, len(row.Gotos))
		for nt := range row.Gotos {
			nts = append(nts, nt)
		}
		sort.Strings(nts)

		for _, nt := range nts {
			fmt.Fprintf(w, " <%s>=%d", nt, row.Gotos[nt])
		}

		fmt.Fprintln(w)
	}

	for _, c := range pt.Conflicts {
		fmt.Fprintf(w, "conflict: %s\n", c)
	}
}

// LoadParsingTable allows us to load a parsing table from a saved file
func LoadParsingTable(path string) (*ParsingTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	ptable := &ParsingTable{}
	if err := gob.NewDecoder(bufio.NewReader(f)).Decode(ptable); err != nil {
		return nil, err
	}

	return ptable, nil
}

// SaveParsingTable will dump a parsing table into a file.  If the file does not
// exist, it is created.  If it does exist, it is overwritten and truncated.
func SaveParsingTable(path string, ptable *ParsingTable) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if err := gob.NewEncoder(w).Encode(ptable); err != nil {
		return err
	}

	return w.Flush()
}
