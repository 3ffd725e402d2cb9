package grammar

import (
	"duck/syntax"
	"strings"
	"testing"
)

const exprGrammar = `
# classic expression grammar
<E> → <E> + <T>
<E> → <T>
<T> → <T> * <F>
<T> → <F>
<F> → ( <E> )
<F> -> id
`

func mustParse(t *testing.T, text string) *Grammar {
	t.Helper()

	g, err := Parse(text)
	if err != nil {
		t.Fatalf("parse: unexpected error: %s", err)
	}

	return g
}

func expectSet(t *testing.T, label string, got TerminalSet, want ...string) {
	t.Helper()

	if len(got) != len(want) {
		t.Errorf("%s: expected {%s}, got {%s}", label, strings.Join(want, ", "), strings.Join(got.Sorted(), ", "))
		return
	}

	for _, w := range want {
		if !got.Has(w) {
			t.Errorf("%s: expected {%s}, got {%s}", label, strings.Join(want, ", "), strings.Join(got.Sorted(), ", "))
			return
		}
	}
}

func TestParseAugments(t *testing.T) {
	g := mustParse(t, exprGrammar)

	if g.Start != "EPrime" {
		t.Errorf("start: expected EPrime, got %s", g.Start)
	}

	if len(g.Productions) != 7 {
		t.Fatalf("expected 7 productions, got %d", len(g.Productions))
	}

	if got := g.Productions[0].String(); got != "<EPrime> → <E>" {
		t.Errorf("production 0: got %s", got)
	}

	for i, prod := range g.Productions {
		if prod.ID != i {
			t.Errorf("production %d: has id %d", i, prod.ID)
		}
	}

	for _, term := range []string{"+", "*", "(", ")", "id", syntax.EndMarker} {
		if !g.IsTerminal(term) {
			t.Errorf("expected `%s` to be a terminal", term)
		}
	}
}

func TestParseErrors(t *testing.T) {
	cases := map[string]string{
		"empty":        "# nothing here\n\n",
		"no arrow":     "<A> a b",
		"bad head":     "A → a",
		"undefined nt": "<A> → <B> a",
		"end marker":   "<A> → a $",
	}

	for name, text := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Parse(text); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestFirstFollow(t *testing.T) {
	a := Analyze(mustParse(t, exprGrammar))

	for _, nt := range []string{"E", "T", "F"} {
		expectSet(t, "FIRST("+nt+")", a.First[nt], "(", "id")
	}

	expectSet(t, "FOLLOW(EPrime)", a.Follow["EPrime"], "$")
	expectSet(t, "FOLLOW(E)", a.Follow["E"], "$", "+", ")")
	expectSet(t, "FOLLOW(T)", a.Follow["T"], "$", "+", "*", ")")
	expectSet(t, "FOLLOW(F)", a.Follow["F"], "$", "+", "*", ")")
}

func TestFirstFollowEpsilon(t *testing.T) {
	a := Analyze(mustParse(t, `
<S> → <A> <B> c
<A> → a
<A> → ε
<B> → b
<B> → ε
`))

	if !a.Nullable("A") || !a.Nullable("B") || a.Nullable("S") {
		t.Error("nullable: expected A and B but not S")
	}

	expectSet(t, "FIRST(A)", a.First["A"], "a", Epsilon)
	expectSet(t, "FIRST(S)", a.First["S"], "a", "b", "c")
	expectSet(t, "FOLLOW(A)", a.Follow["A"], "b", "c")
	expectSet(t, "FOLLOW(B)", a.Follow["B"], "c")
	expectSet(t, "FIRST(A B)", a.FirstOf([]Symbol{Nonterminal("A"), Nonterminal("B")}), "a", "b", Epsilon)
}

func TestFixedPoint(t *testing.T) {
	for name, text := range map[string]string{"expr": exprGrammar, "duck": DefaultText()} {
		t.Run(name, func(t *testing.T) {
			a := Analyze(mustParse(t, text))

			if a.firstPass() {
				t.Error("FIRST changed when re-run on its own output")
			}

			if a.followPass() {
				t.Error("FOLLOW changed when re-run on its own output")
			}

			if !a.Follow[a.g.Start].Has(syntax.EndMarker) {
				t.Error("FOLLOW of the augmented start lacks the end marker")
			}
		})
	}
}

func TestAutomaton(t *testing.T) {
	g := mustParse(t, exprGrammar)
	a := BuildAutomaton(g)

	if len(a.States) != 12 {
		t.Errorf("states: expected 12, got %d", len(a.States))
	}

	if a.TransitionCount() != 22 {
		t.Errorf("transitions: expected 22, got %d", a.TransitionCount())
	}

	if got := DescribeItem(g, LRItem{Rule: 1, DotPos: 1}); got != "<E> → <E> • + <T>" {
		t.Errorf("describe item: got %s", got)
	}
}

func TestAutomatonDeterministic(t *testing.T) {
	g := mustParse(t, DefaultText())
	first := BuildAutomaton(g)

	for i := 0; i < 5; i++ {
		again := BuildAutomaton(g)

		if len(again.States) != len(first.States) || again.TransitionCount() != first.TransitionCount() {
			t.Fatalf("run %d: expected %d states/%d transitions, got %d/%d",
				i, len(first.States), first.TransitionCount(), len(again.States), again.TransitionCount())
		}

		for s := range first.States {
			if first.States[s].key() != again.States[s].key() {
				t.Fatalf("run %d: state %d differs", i, s)
			}
		}
	}
}

func TestExprTable(t *testing.T) {
	pt, err := BuildTable(mustParse(t, exprGrammar), true)
	if err != nil {
		t.Fatal(err)
	}

	if len(pt.Conflicts) != 0 {
		t.Errorf("expected no conflicts, got %v", pt.Conflicts)
	}

	if a, ok := pt.Rows[0].Actions["id"]; !ok || a.Kind != syntax.AKShift {
		t.Error("state 0: expected a shift on `id`")
	}

	if _, ok := pt.Rows[0].Gotos["E"]; !ok {
		t.Error("state 0: expected a goto on <E>")
	}

	accepts := 0
	for _, row := range pt.Rows {
		if a, ok := row.Actions[syntax.EndMarker]; ok && a.Kind == syntax.AKAccept {
			accepts++
		}
	}

	if accepts != 1 {
		t.Errorf("expected exactly one accept cell, got %d", accepts)
	}

	if pt.Rules[2].Name != "E" || pt.Rules[2].Count != 1 {
		t.Errorf("rule 2: expected <E> with 1 symbol, got <%s> with %d", pt.Rules[2].Name, pt.Rules[2].Count)
	}
}

func TestDefaultGrammarIsSLR(t *testing.T) {
	g, err := Default()
	if err != nil {
		t.Fatal(err)
	}

	pt, err := BuildTable(g, true)
	if err != nil {
		t.Fatalf("expected the built-in grammar to be SLR(1): %s", err)
	}

	if len(pt.Rules) != len(g.Productions) {
		t.Errorf("rules: expected %d, got %d", len(g.Productions), len(pt.Rules))
	}
}

func TestShiftReduceConflict(t *testing.T) {
	ambiguous := "<E> → <E> + <E>\n<E> → id\n"

	if _, err := BuildTable(mustParse(t, ambiguous), true); err == nil {
		t.Fatal("strict mode: expected an error")
	}

	pt, err := BuildTable(mustParse(t, ambiguous), false)
	if err != nil {
		t.Fatal(err)
	}

	if len(pt.Conflicts) == 0 {
		t.Fatal("expected the conflict to be recorded")
	}

	// the state reached after `E + E` must keep shifting `+`
	tb := NewTableBuilder(mustParse(t, ambiguous))
	if _, err := tb.Build(false); err != nil {
		t.Fatal(err)
	}

	if len(tb.Conflicts) == 0 {
		t.Fatal("expected the builder to report the conflict")
	}

	for _, c := range tb.Conflicts {
		if c.Terminal != "+" {
			t.Errorf("expected the conflict on `+`, got `%s`", c.Terminal)
		}

		if c.Kept.Kind != syntax.AKShift || c.Dropped.Kind != syntax.AKReduce {
			t.Errorf("state %d: expected shift kept over reduce, got kept %s, dropped %s", c.State, c.Kept, c.Dropped)
		}

		if a := tb.Table.Rows[c.State].Actions["+"]; a == nil || a.Kind != syntax.AKShift {
			t.Errorf("state %d: expected a shift on `+` in the table, got %v", c.State, a)
		}
	}

	// `<E> → id •` still reduces on `+` since `+` follows E
	reduces := 0
	for _, row := range tb.Table.Rows {
		if a, ok := row.Actions["+"]; ok && a.Kind == syntax.AKReduce {
			reduces++
		}
	}

	if reduces != 1 {
		t.Errorf("expected exactly one state to reduce on `+`, got %d", reduces)
	}
}

func TestReduceReduceConflict(t *testing.T) {
	pt, err := BuildTable(mustParse(t, "<S> → <A>\n<S> → <B>\n<A> → x\n<B> → x\n"), false)
	if err != nil {
		t.Fatal(err)
	}

	if len(pt.Conflicts) != 1 || !strings.HasPrefix(pt.Conflicts[0], "reduce/reduce") {
		t.Fatalf("expected one reduce/reduce conflict, got %v", pt.Conflicts)
	}

	for _, row := range pt.Rows {
		if a, ok := row.Actions[syntax.EndMarker]; ok && a.Kind == syntax.AKReduce && a.Operand == 4 {
			t.Error("expected the earlier production (3) to win")
		}
	}
}

func TestDumps(t *testing.T) {
	tb := NewTableBuilder(mustParse(t, exprGrammar))
	if _, err := tb.Build(true); err != nil {
		t.Fatal(err)
	}

	var sets, states strings.Builder
	tb.Analysis.DumpSets(&sets)
	tb.Automaton.Dump(&states)

	for _, want := range []string{"FIRST(<E>) = {(, id}", "FOLLOW(<E>) = {$, ), +}", "FOLLOW(<F>) = {$, ), *, +}"} {
		if !strings.Contains(sets.String(), want) {
			t.Errorf("expected the sets to contain %q, got:\n%s", want, sets.String())
		}
	}

	if got := strings.Count(states.String(), "state "); got != len(tb.Automaton.States) {
		t.Errorf("expected %d states in the dump, got %d", len(tb.Automaton.States), got)
	}

	if !strings.Contains(states.String(), "<EPrime> → • <E>") {
		t.Errorf("expected the start item in the dump, got:\n%s", states.String())
	}
}
