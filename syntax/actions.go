package syntax

import (
	"duck/codegen"
	"duck/ir"
	"duck/logging"
	"duck/typing"
	"strconv"
	"strings"
)

// Attribute markers synthesized by semantic actions.  Lexemes never start with
// `#` so markers cannot be confused with identifiers.
const (
	markConst = "#const"
	markExpr  = "#expr"
	markCall  = "#call:" // followed by the callee; the call produced a value
	markVoid  = "#void:" // followed by the callee; the call produced nothing
)

// shiftHooks run when certain structural tokens are shifted, before the rule
// enclosing them is reduced
var shiftHooks = map[int]func(g *codegen.Generator) error{
	IF: func(g *codegen.Generator) error {
		g.EnterCondition()
		return nil
	},
	WHILE: func(g *codegen.Generator) error {
		g.EnterLoop()
		return nil
	},
	THEN: (*codegen.Generator).LeaveHeader,
	DO:   (*codegen.Generator).LeaveHeader,
	ELSE: (*codegen.Generator).EnterElse,
	MAIN: (*codegen.Generator).MarkMain,
}

// actionKey identifies a rule by its head and body length
type actionKey struct {
	head  string
	count int
}

// semanticAction is run on reduction with the attributes of the popped symbols
// and returns the attribute of the head
type semanticAction func(p *Parser, attrs []string) (string, error)

var semanticActions = map[actionKey]semanticAction{
	// -- program structure --
	{"ProgHeader", 3}: func(p *Parser, attrs []string) (string, error) {
		return attrs[1], p.ctx.InitProgram(attrs[1])
	},
	{"Program", 6}: func(p *Parser, attrs []string) (string, error) {
		p.gen.Finish()
		return "", nil
	},

	// -- declarations --
	{"VarType", 1}: func(p *Parser, attrs []string) (string, error) {
		dt, err := parseType(attrs[0])
		if err != nil {
			return "", err
		}

		p.ctx.SetCurrentType(dt)
		return attrs[0], nil
	},
	{"IdList", 1}: func(p *Parser, attrs []string) (string, error) {
		return "", p.gen.DeclareVariable(p.ctx, attrs[0])
	},
	{"IdList", 3}: func(p *Parser, attrs []string) (string, error) {
		return "", p.gen.DeclareVariable(p.ctx, attrs[2])
	},

	// -- functions --
	{"FuncHeader", 3}: func(p *Parser, attrs []string) (string, error) {
		dt, err := parseType(attrs[1])
		if err != nil {
			return "", err
		}

		return attrs[2], p.gen.BeginFunction(p.ctx, attrs[2], dt)
	},
	{"Param", 2}: func(p *Parser, attrs []string) (string, error) {
		dt, err := parseType(attrs[0])
		if err != nil {
			return "", err
		}

		return "", p.gen.AddParameter(p.ctx, attrs[1], dt)
	},
	{"Func", 9}: func(p *Parser, attrs []string) (string, error) {
		return "", p.gen.EndFunction(p.ctx)
	},
	{"Return", 5}: func(p *Parser, attrs []string) (string, error) {
		return "", p.gen.Return()
	},

	// -- statements --
	{"Assign", 4}: func(p *Parser, attrs []string) (string, error) {
		return "", p.gen.Assign(p.ctx, attrs[0])
	},
	{"Condition", 7}: func(p *Parser, attrs []string) (string, error) {
		return "", p.gen.EndCondition()
	},
	{"Cycle", 6}: func(p *Parser, attrs []string) (string, error) {
		return "", p.gen.EndLoop()
	},
	{"Stmt", 2}: func(p *Parser, attrs []string) (string, error) {
		// a call used as a statement throws its value away
		if strings.HasPrefix(attrs[0], markCall) {
			return "", p.gen.DiscardResult()
		}

		return "", nil
	},
	{"PrintItem", 1}: func(p *Parser, attrs []string) (string, error) {
		if strings.HasPrefix(attrs[0], "\"") {
			if err := p.gen.PushString(attrs[0]); err != nil {
				return "", err
			}
		}

		return "", p.gen.Write()
	},
	{"ReadList", 1}: func(p *Parser, attrs []string) (string, error) {
		return "", p.gen.Read(p.ctx, attrs[0])
	},
	{"ReadList", 3}: func(p *Parser, attrs []string) (string, error) {
		return "", p.gen.Read(p.ctx, attrs[2])
	},

	// -- calls --
	{"CallHead", 1}: func(p *Parser, attrs []string) (string, error) {
		return attrs[0], p.gen.BeginCall(p.ctx, attrs[0])
	},
	{"Arg", 1}: func(p *Parser, attrs []string) (string, error) {
		return "", p.gen.Argument()
	},
	{"Call", 4}: func(p *Parser, attrs []string) (string, error) {
		hasValue, err := p.gen.EndCall()
		if err != nil {
			return "", err
		}

		if hasValue {
			return markCall + attrs[0], nil
		}

		return markVoid + attrs[0], nil
	},

	// -- expressions --
	{"Expr", 3}: func(p *Parser, attrs []string) (string, error) {
		return markExpr, p.gen.GenerateRelational()
	},
	{"Expr", 1}: func(p *Parser, attrs []string) (string, error) {
		return markExpr, nil
	},
	{"RelOp", 1}: pushOperator,
	{"AddOp", 1}: pushOperator,
	{"MulOp", 1}: pushOperator,
	{"Exp", 3}: func(p *Parser, attrs []string) (string, error) {
		return markExpr, p.gen.GenerateAdditive()
	},
	{"Term", 3}: func(p *Parser, attrs []string) (string, error) {
		return markExpr, p.gen.GenerateMultiplicative()
	},
	{"LParen", 1}: func(p *Parser, attrs []string) (string, error) {
		p.gen.OpenParen()
		return "", nil
	},
	{"Factor", 3}: func(p *Parser, attrs []string) (string, error) {
		return markExpr, p.gen.CloseParen()
	},
	{"Factor", 2}: func(p *Parser, attrs []string) (string, error) {
		return markConst, p.gen.NegateLiteral()
	},
	{"Factor", 1}: func(p *Parser, attrs []string) (string, error) {
		attr := attrs[0]

		switch {
		case attr == markConst, strings.HasPrefix(attr, markCall):
			// already on the operand stack
			return attr, nil
		case strings.HasPrefix(attr, markVoid):
			return "", logging.Raise(
				logging.LMKUsage, 0,
				"void function `%s` cannot be used as a value", strings.TrimPrefix(attr, markVoid),
			)
		}

		return attr, p.gen.PushOperand(p.ctx, attr)
	},
	{"Constant", 1}: func(p *Parser, attrs []string) (string, error) {
		v, err := parseLiteral(attrs[0])
		if err != nil {
			return "", err
		}

		p.gen.PushLiteral(v)
		return markConst, nil
	},
}

func pushOperator(p *Parser, attrs []string) (string, error) {
	p.gen.PushOperator(attrs[0])
	return attrs[0], nil
}

func parseType(name string) (typing.DataType, error) {
	dt, ok := typing.ParseType(name)
	if !ok {
		return typing.Void, logging.Internal("unknown type `%s`", name)
	}

	return dt, nil
}

// parseLiteral converts the lexeme of an int, float or char literal to a value
func parseLiteral(lexeme string) (ir.Value, error) {
	switch {
	case strings.HasPrefix(lexeme, "'"):
		s, err := strconv.Unquote(lexeme)
		if err != nil || len([]rune(s)) != 1 {
			return ir.Value{}, logging.Raise(logging.LMKToken, 0, "malformed char literal %s", lexeme)
		}

		return ir.CharValue([]rune(s)[0]), nil
	case strings.Contains(lexeme, "."):
		f, err := strconv.ParseFloat(lexeme, 64)
		if err != nil {
			return ir.Value{}, logging.Raise(logging.LMKToken, 0, "malformed float literal `%s`", lexeme)
		}

		return ir.FloatValue(f), nil
	}

	n, err := strconv.Atoi(lexeme)
	if err != nil {
		return ir.Value{}, logging.Raise(logging.LMKToken, 0, "integer literal `%s` is out of range", lexeme)
	}

	return ir.IntValue(n), nil
}
