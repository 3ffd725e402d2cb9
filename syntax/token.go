package syntax

// Token represents a token read in by the scanner
type Token struct {
	Kind  int
	Value string

	// Line is line number starting at 1
	Line int
}

// The various kinds of a tokens supported by the scanner
const (
	// program structure
	PROGRAM = iota
	VAR
	MAIN
	END
	FUNC

	// type keywords
	INT
	FLOAT
	CHAR
	VOID

	// control flow
	IF
	THEN
	ELSE
	WHILE
	DO
	RETURN

	// io
	WRITE
	READ

	// arithmetic operators
	PLUS
	MINUS
	STAR
	DIVIDE

	// relational operators
	LT
	GT
	EQ
	NEQ

	// assignment
	ASSIGN

	// punctuation
	LPAREN
	RPAREN
	LBRACE
	RBRACE
	LBRACKET
	RBRACKET
	COMMA
	SEMICOLON

	// literals (and identifiers)
	IDENTIFIER
	INTLIT
	FLOATLIT
	CHARLIT
	STRINGLIT

	// used in parsing algorithm
	EOF
)

// token patterns (matching strings) for keywords
var keywordPatterns = map[string]int{
	"program": PROGRAM,
	"var":     VAR,
	"main":    MAIN,
	"end":     END,
	"func":    FUNC,
	"int":     INT,
	"float":   FLOAT,
	"char":    CHAR,
	"void":    VOID,
	"if":      IF,
	"then":    THEN,
	"else":    ELSE,
	"while":   WHILE,
	"do":      DO,
	"return":  RETURN,
	"write":   WRITE,
	"read":    READ,
}

// token patterns for symbolic items - longest match wins
var symbolPatterns = map[string]int{
	"+":  PLUS,
	"-":  MINUS,
	"*":  STAR,
	"/":  DIVIDE,
	"<":  LT,
	">":  GT,
	"==": EQ,
	"!=": NEQ,
	"!":  -1, // only valid as the start of `!=`
	"=":  ASSIGN,
	"(":  LPAREN,
	")":  RPAREN,
	"{":  LBRACE,
	"}":  RBRACE,
	"[":  LBRACKET,
	"]":  RBRACKET,
	",":  COMMA,
	";":  SEMICOLON,
}

// EndMarker is the terminal name of the end-of-input token
const EndMarker = "$"

// literalNames are the grammar terminals of the token kinds whose value is not
// their own terminal name
var literalNames = map[int]string{
	IDENTIFIER: "id",
	INTLIT:     "cte_int",
	FLOATLIT:   "cte_float",
	CHARLIT:    "cte_char",
	STRINGLIT:  "cte_string",
	EOF:        EndMarker,
}

// terminalNames maps every token kind onto the terminal the grammar uses for
// it.  Keywords and symbols are named by their spelling.
var terminalNames = make(map[int]string)

func init() {
	for spelling, kind := range keywordPatterns {
		terminalNames[kind] = spelling
	}

	for spelling, kind := range symbolPatterns {
		if kind >= 0 {
			terminalNames[kind] = spelling
		}
	}

	for kind, name := range literalNames {
		terminalNames[kind] = name
	}
}

// Name returns the grammar terminal the token is matched against
func (tok *Token) Name() string {
	return terminalNames[tok.Kind]
}
