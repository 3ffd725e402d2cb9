package syntax

import (
	"bufio"
	"duck/logging"
	"io"
	"os"
	"strings"
)

// IsLetter tests if a rune is an ASCII character
func IsLetter(r rune) bool {
	return r > '`' && r < '{' || r > '@' && r < '[' // avoid using <= and >= by checking characters on boundaries (same for IsDigit)
}

// IsDigit tests if a rune is an ASCII digit
func IsDigit(r rune) bool {
	return r > '/' && r < ':'
}

// Scanner works like an io.Reader for source text (outputting tokens)
type Scanner struct {
	file *bufio.Reader

	line int

	tokBuilder strings.Builder

	curr rune

	// done is set once the EOF token has been produced
	done bool
}

// NewScanner creates a scanner reading from the given reader
func NewScanner(r io.Reader) *Scanner {
	return &Scanner{file: bufio.NewReader(r), line: 1}
}

// Tokenize scans a whole source text.  The returned tokens always end with an
// EOF token (the `$` terminal).
func Tokenize(src string) ([]*Token, error) {
	return NewScanner(strings.NewReader(src)).ReadAll()
}

// TokenizeFile scans a whole source file
func TokenizeFile(fpath string) ([]*Token, error) {
	f, err := os.Open(fpath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return NewScanner(f).ReadAll()
}

// ReadAll reads tokens until (and including) the EOF token
func (s *Scanner) ReadAll() ([]*Token, error) {
	var toks []*Token

	for {
		tok, err := s.ReadToken()
		if err != nil {
			return nil, err
		}

		toks = append(toks, tok)
		if tok.Kind == EOF {
			return toks, nil
		}
	}
}

// ReadToken reads a single token from the stream.  Once the input is
// exhausted, every call returns an EOF token.
func (s *Scanner) ReadToken() (*Token, error) {
	for s.readNext() {
		var tok *Token
		malformed := false

		switch s.curr {
		// whitespace (newlines are counted in readNext)
		case ' ', '\t', '\r', '\n', '\f', '\v', 65279:
			s.tokBuilder.Reset()
			continue
		case '"':
			tok, malformed = s.readStringLiteral()
		case '\'':
			tok, malformed = s.readCharLiteral()
		case '/':
			// handle comments
			if ahead, more := s.peek(); more && ahead == '/' {
				s.tokBuilder.Reset()
				s.skipLineComment()
				continue
			}

			tok = s.getToken(DIVIDE)
		default:
			// check for identifiers
			if IsLetter(s.curr) || s.curr == '_' {
				tok = s.readWord()
			} else if IsDigit(s.curr) {
				// check numeric literals
				tok, malformed = s.readNumberLiteral()
			} else if kind, ok := symbolPatterns[string(s.curr)]; ok {
				// all compound tokens begin with valid single tokens so the
				// check above will match the start of any symbolic token
				for ahead, more := s.peek(); more; ahead, more = s.peek() {
					if skind, ok := symbolPatterns[s.tokBuilder.String()+string(ahead)]; ok {
						kind = skind
						s.readNext()
					} else {
						break
					}
				}

				if kind < 0 {
					malformed = true
				} else {
					tok = s.getToken(kind)
				}
			} else {
				// any other token must be malformed in some way
				malformed = true
			}
		}

		// error out on any malformed tokens (using contents of token builder)
		if malformed {
			return nil, logging.Raise(logging.LMKToken, s.line, "malformed token: `%s`", s.tokBuilder.String())
		}

		// discard the built contents for the current scanned token
		s.tokBuilder.Reset()
		return tok, nil
	}

	s.done = true
	return &Token{Kind: EOF, Value: EndMarker, Line: s.line}, nil
}

// collect the contents of the token builder into a string and create a token at
// the current position with the provided kind and token string as its value
func (s *Scanner) getToken(kind int) *Token {
	return &Token{Kind: kind, Value: s.tokBuilder.String(), Line: s.line}
}

// reads a rune from the stream into the token builder and returns whether or
// not there are more runes to be read (true = no EOF, false = EOF)
func (s *Scanner) readNext() bool {
	if s.done {
		return false
	}

	r, _, err := s.file.ReadRune()
	if err != nil {
		return false
	}

	// do line counting after the newline has been processed
	if s.curr == '\n' {
		s.line++
	}

	s.tokBuilder.WriteRune(r)
	s.curr = r
	return true
}

// peek a rune ahead on the scanner (used to test for malformed tokens)
func (s *Scanner) peek() (rune, bool) {
	r, _, err := s.file.ReadRune()
	if err != nil {
		return 0, false
	}

	s.file.UnreadRune()
	return r, true
}

// reads an identifier or a keyword from the input stream determines based on
// contents of stream (matches to all possible keywords)
func (s *Scanner) readWord() *Token {
	// if our word starts with an '_', it cannot be a keyword
	keywordValid := s.curr != '_'

	for {
		c, more := s.peek()

		if !more {
			break
		} else if IsDigit(c) || c == '_' {
			keywordValid = false
		} else if !IsLetter(c) {
			break
		}

		s.readNext()
	}

	tokValue := s.tokBuilder.String()
	if keywordValid {
		if kind, ok := keywordPatterns[tokValue]; ok {
			return s.getToken(kind)
		}
	}

	return &Token{Kind: IDENTIFIER, Value: tokValue, Line: s.line}
}

// read in a floating point or integral number.  A float needs digits on both
// sides of the decimal point.
func (s *Scanner) readNumberLiteral() (*Token, bool) {
	isFloat := false

	for {
		ahead, more := s.peek()
		if !more {
			break
		}

		if IsDigit(ahead) {
			s.readNext()
		} else if ahead == '.' && !isFloat {
			s.readNext()
			isFloat = true

			if next, ok := s.peek(); !ok || !IsDigit(next) {
				return nil, true
			}
		} else if IsLetter(ahead) || ahead == '_' {
			// `12abc` is not two tokens
			s.readNext()
			return nil, true
		} else {
			break
		}
	}

	if isFloat {
		return s.getToken(FLOATLIT), false
	}

	return s.getToken(INTLIT), false
}

// read in a string literal; the token value keeps both quotes
func (s *Scanner) readStringLiteral() (*Token, bool) {
	for next, ok := s.peek(); ok; next, ok = s.peek() {
		switch next {
		case '\\':
			s.readNext()
			if !s.readEscapeSequence('"') {
				return nil, true
			}
		case '"':
			s.readNext()
			return s.getToken(STRINGLIT), false
		case '\n':
			// catch newlines in strings
			return nil, true
		default:
			s.readNext()
		}
	}

	// if we reach here, we didn't encounter a proper closing quotation and
	// therefore, we need to indicate that this token is malformed
	return nil, true
}

// read in a char literal; the token value keeps both quotes
func (s *Scanner) readCharLiteral() (*Token, bool) {
	// if the char has no content then it is malformed
	if !s.readNext() || s.curr == '\'' || s.curr == '\n' {
		return nil, true
	}

	if s.curr == '\\' && !s.readEscapeSequence('\'') {
		return nil, true
	}

	if next, ok := s.peek(); !ok || next != '\'' {
		return nil, true
	}

	s.readNext()
	return s.getToken(CHARLIT), false
}

// read an escape sequence (the backslash is read).  quote is the delimiter of
// the enclosing literal, the only quote that may be escaped.
func (s *Scanner) readEscapeSequence(quote rune) bool {
	if !s.readNext() {
		return false
	}

	switch s.curr {
	case 'a', 'b', 'n', 'f', 'r', 't', 'v', '\\':
		return true
	}

	return s.curr == quote
}

func (s *Scanner) skipLineComment() {
	for ahead, more := s.peek(); more && ahead != '\n'; ahead, more = s.peek() {
		s.readNext()
	}

	s.tokBuilder.Reset()
}
