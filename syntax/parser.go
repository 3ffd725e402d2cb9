package syntax

import (
	"duck/codegen"
	"duck/logging"
	"duck/sem"
	"errors"
)

// Parser is a table-driven SLR(1) parser.  It does not build a tree: every
// reduction fires the semantic action registered for the reduced rule, which
// drives the semantic context and the code generator directly.
type Parser struct {
	// standard SLR(1) parser state
	ptable     *ParsingTable
	tokens     []*Token
	cursor     int
	lookahead  *Token
	stateStack []int

	// semanticStack runs parallel to the state stack and holds the synthesized
	// attribute of each symbol: a raw lexeme or a `#` marker
	semanticStack []string

	ctx *sem.Context
	gen *codegen.Generator
}

// NewParser creates a new parser for the given parsing table and token
// sequence.  The token sequence should end with an EOF token.
func NewParser(ptable *ParsingTable, tokens []*Token) *Parser {
	return &Parser{
		ptable: ptable,
		tokens: tokens,
		// set the state stack to the starting/initial state
		stateStack: []int{0},
		ctx:        sem.NewContext(),
		gen:        codegen.NewGenerator(),
	}
}

// Context returns the semantic context the parser populates
func (p *Parser) Context() *sem.Context {
	return p.ctx
}

// Parse runs the main parsing algorithm over the tokens.  On acceptance, it
// returns the completed code generator.
func (p *Parser) Parse() (*codegen.Generator, error) {
	// initialize the lookahead
	p.consume()

	for {
		top := p.stateStack[len(p.stateStack)-1]
		if top < 0 || top >= len(p.ptable.Rows) {
			return nil, logging.Internal("parser reached missing state %d", top)
		}
		state := p.ptable.Rows[top]

		action, ok := state.Actions[p.lookahead.Name()]
		if !ok {
			if p.lookahead.Kind == EOF {
				return nil, logging.Raise(logging.LMKSyntax, p.lookahead.Line, "unexpected end of file (state %d)", top)
			}

			return nil, logging.Raise(
				logging.LMKSyntax, p.lookahead.Line,
				"unexpected token: `%s` (state %d)", p.lookahead.Value, top,
			)
		}

		switch action.Kind {
		case AKShift:
			if err := p.shift(action.Operand); err != nil {
				return nil, p.stampLine(err, p.lastLine())
			}
		case AKReduce:
			if err := p.reduce(action.Operand); err != nil {
				return nil, p.stampLine(err, p.lastLine())
			}
		case AKAccept:
			return p.gen, nil
		}
	}
}

// shift performs a shift operation: it pushes the lookahead, runs the shift
// hook of the token (if it has one) and reads the next token
func (p *Parser) shift(state int) error {
	p.stateStack = append(p.stateStack, state)
	p.semanticStack = append(p.semanticStack, p.lookahead.Value)

	shifted := p.lookahead
	p.consume()

	if hook, ok := shiftHooks[shifted.Kind]; ok {
		return hook(p.gen)
	}

	return nil
}

// consume reads the next token into the lookahead.  Reading past the end of
// the tokens yields EOF tokens.
func (p *Parser) consume() {
	if p.cursor < len(p.tokens) {
		p.lookahead = p.tokens[p.cursor]
		p.cursor++
		return
	}

	line := 1
	if len(p.tokens) > 0 {
		line = p.tokens[len(p.tokens)-1].Line
	}

	p.lookahead = &Token{Kind: EOF, Value: EndMarker, Line: line}
}

// reduce performs a reduction: pops the rule's symbols, runs its semantic
// action and follows the goto of the new top state
func (p *Parser) reduce(ruleRef int) error {
	if ruleRef < 0 || ruleRef >= len(p.ptable.Rules) {
		return logging.Internal("reduction by missing rule %d", ruleRef)
	}
	rule := p.ptable.Rules[ruleRef]

	if rule.Count > len(p.semanticStack) {
		return logging.Internal("reduction of `%s` underflows the parser stack", rule.Name)
	}

	attrs := make([]string, rule.Count)
	copy(attrs, p.semanticStack[len(p.semanticStack)-rule.Count:])
	p.semanticStack = p.semanticStack[:len(p.semanticStack)-rule.Count]
	p.stateStack = p.stateStack[:len(p.stateStack)-rule.Count]

	result, err := p.runAction(rule, attrs)
	if err != nil {
		return err
	}

	// goto the next state
	currState := p.ptable.Rows[p.stateStack[len(p.stateStack)-1]]
	next, ok := currState.Gotos[rule.Name]
	if !ok {
		return logging.Internal("no goto on `<%s>` from state %d", rule.Name, p.stateStack[len(p.stateStack)-1])
	}

	p.stateStack = append(p.stateStack, next)
	p.semanticStack = append(p.semanticStack, result)
	return nil
}

// runAction dispatches the semantic action of a rule.  Rules without an action
// pass their only attribute up (or nothing for longer rules).
func (p *Parser) runAction(rule *PTableRule, attrs []string) (string, error) {
	if action, ok := semanticActions[actionKey{rule.Name, rule.Count}]; ok {
		return action(p, attrs)
	}

	if len(attrs) == 1 {
		return attrs[0], nil
	}

	return "", nil
}

// lastLine returns the line of the most recently consumed token
func (p *Parser) lastLine() int {
	// the lookahead is tokens[cursor-1]; the token before it was consumed last
	if p.cursor >= 2 && p.cursor-2 < len(p.tokens) {
		return p.tokens[p.cursor-2].Line
	}

	return p.lookahead.Line
}

// stampLine gives a positionless compile error the line it occurred on
func (p *Parser) stampLine(err error, line int) error {
	var ce *logging.CompileError
	if errors.As(err, &ce) && ce.Line == 0 && ce.Kind != logging.LMKInternal {
		ce.Line = line
	}

	return err
}
