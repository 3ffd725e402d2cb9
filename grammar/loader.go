package grammar

import (
	"bufio"
	"duck/logging"
	"duck/syntax"
	_ "embed" // embeds the default grammar
	"io/ioutil"
	"strings"
)

//go:embed duck.grammar
var defaultGrammar string

// DefaultText returns the text of the built-in Duck grammar
func DefaultText() string {
	return defaultGrammar
}

// Default parses the built-in Duck grammar
func Default() (*Grammar, error) {
	return Parse(defaultGrammar)
}

// LoadGrammar reads and parses a grammar file
func LoadGrammar(path string) (*Grammar, error) {
	buff, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, err
	}

	return Parse(string(buff))
}

// Parse parses grammar text: one production per line, `<Head> → body...`.
// Blank lines and lines starting with `#` are ignored.  The first head becomes
// the start symbol and the augmented production is inserted as production 0.
func Parse(text string) (*Grammar, error) {
	g := &Grammar{
		ProductionsByHead: make(map[string][]int),
		terminalSet:       make(map[string]struct{}),
	}

	// production 0 is filled in once the start symbol is known
	g.Productions = append(g.Productions, nil)

	seenNT := make(map[string]struct{})
	addNonterminal := func(name string) {
		if _, ok := seenNT[name]; !ok {
			seenNT[name] = struct{}{}
			g.Nonterminals = append(g.Nonterminals, name)
		}
	}

	var start string
	used := make(map[string]int)

	sc := bufio.NewScanner(strings.NewReader(text))
	for lineNumber := 1; sc.Scan(); lineNumber++ {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		sep := strings.Index(line, Arrow)
		sepLen := len(Arrow)
		if sep == -1 {
			// accept an ASCII arrow as well
			sep = strings.Index(line, "->")
			sepLen = 2
		}

		if sep == -1 {
			return nil, logging.Raise(logging.LMKGrammar, lineNumber, "missing `%s` in production", Arrow)
		}

		head, ok := nonterminalName(strings.TrimSpace(line[:sep]))
		if !ok {
			return nil, logging.Raise(logging.LMKGrammar, lineNumber, "production head must be a non-terminal: `%s`", line[:sep])
		}

		if start == "" {
			start = head
			addNonterminal(head + "Prime")
		}
		addNonterminal(head)

		prod := &Production{ID: len(g.Productions), Head: head}
		for _, field := range strings.Fields(line[sep+sepLen:]) {
			if field == Epsilon {
				continue
			}

			if name, ok := nonterminalName(field); ok {
				prod.Body = append(prod.Body, Nonterminal(name))
				if _, ok := used[name]; !ok {
					used[name] = lineNumber
				}
			} else {
				if field == syntax.EndMarker {
					return nil, logging.Raise(logging.LMKGrammar, lineNumber, "`%s` is reserved for the end of input", field)
				}

				prod.Body = append(prod.Body, Terminal(field))
				if _, ok := g.terminalSet[field]; !ok {
					g.terminalSet[field] = struct{}{}
					g.Terminals = append(g.Terminals, field)
				}
			}
		}

		g.Productions = append(g.Productions, prod)
		g.ProductionsByHead[head] = append(g.ProductionsByHead[head], prod.ID)
	}

	if start == "" {
		return nil, logging.Raise(logging.LMKGrammar, 0, "grammar has no productions (missing start symbol)")
	}

	for name, line := range used {
		if _, ok := g.ProductionsByHead[name]; !ok {
			return nil, logging.Raise(logging.LMKGrammar, line, "non-terminal `<%s>` has no productions", name)
		}
	}

	g.Start = start + "Prime"
	g.Productions[0] = &Production{ID: 0, Head: g.Start, Body: []Symbol{Nonterminal(start)}}
	g.ProductionsByHead[g.Start] = []int{0}

	g.terminalSet[syntax.EndMarker] = struct{}{}
	g.Terminals = append(g.Terminals, syntax.EndMarker)

	return g, nil
}

// nonterminalName strips the angle brackets off a non-terminal token.  A token
// is a non-terminal iff it is longer than two characters and is wrapped in
// `<` and `>`.
func nonterminalName(tok string) (string, bool) {
	if len(tok) > 2 && strings.HasPrefix(tok, "<") && strings.HasSuffix(tok, ">") {
		return tok[1 : len(tok)-1], true
	}

	return "", false
}
