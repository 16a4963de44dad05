package lexer

import (
	"fmt"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// Lexer performs lexical analysis on VibeLang source.
//
// The lexer is the first phase of compilation. It breaks the source into
// tokens, records where each one starts and reports malformed input such
// as an unterminated string with its exact position.
//
// The lexer does NOT:
// - Parse syntax (that's the parser's job)
// - Resolve names or types (semantic analyzer's job)
// - Look inside prompt templates (the {name} markers are plain string
//   text here; the semantic analyzer extracts them)
//
// Comments and whitespace are skipped. Identifiers and string literals are
// normalized to Unicode NFC so that two spellings of the same name that
// differ only in composition resolve to the same symbol.
//
// DESIGN CHOICE: Lexer is pulled one token at a time by the parser through
// NextToken rather than producing a slice up front. The parser keeps a
// single token of lookahead, so nothing beyond the current token needs to
// be held.
type Lexer struct {
	// source is the complete source being lexed. Holding the whole file
	// lets the lexer peek ahead and slice lexemes out without copying.
	source string

	// filename is the name of the source file, copied into every Position.
	filename string

	// start is the byte offset of the token being scanned.
	// The token's lexeme is source[start:current].
	start int

	// current is the byte offset being examined.
	current int

	// line is the current line number (1-based).
	// Updated when a newline is consumed.
	line int

	// lineStart is the byte offset where the current line started.
	// Columns are computed from it when a token is made:
	// column = runes in source[lineStart:start] + 1.
	//
	// DESIGN CHOICE: lineStart is tracked instead of a running column so
	// that multi-byte runes are counted once, when the token is built.
	lineStart int
}

// New creates a new Lexer for the given source code.
func New(source, filename string) *Lexer {
	return &Lexer{
		source:   source,
		filename: filename,
		line:     1,
	}
}

// NextToken returns the next token from the source.
//
// Lexical errors return a TokenInvalid token together with an error that
// carries the position, so the parser can report it and keep going.
func (l *Lexer) NextToken() (Token, error) {
	if err := l.skipTrivia(); err != nil {
		return l.makeToken(TokenInvalid, ""), err
	}

	l.start = l.current
	if l.isAtEnd() {
		return l.makeToken(TokenEOF, ""), nil
	}

	ch, _ := l.advance()

	if isLetter(ch) {
		return l.scanIdentifier(), nil
	}
	if isDigit(ch) {
		return l.scanNumber(), nil
	}

	switch ch {
	case '(':
		return l.makeToken(TokenLeftParen, "("), nil
	case ')':
		return l.makeToken(TokenRightParen, ")"), nil
	case '{':
		return l.makeToken(TokenLeftBrace, "{"), nil
	case '}':
		return l.makeToken(TokenRightBrace, "}"), nil
	case ',':
		return l.makeToken(TokenComma, ","), nil
	case ';':
		return l.makeToken(TokenSemicolon, ";"), nil
	case ':':
		return l.makeToken(TokenColon, ":"), nil
	case '=':
		return l.makeToken(TokenAssign, "="), nil
	case '<':
		return l.makeToken(TokenLess, "<"), nil
	case '>':
		return l.makeToken(TokenGreater, ">"), nil
	case '-':
		if l.match('>') {
			return l.makeToken(TokenArrow, "->"), nil
		}
		if isDigit(l.peek()) {
			l.advance()
			return l.scanNumber(), nil
		}
	case '"':
		return l.scanString()
	}

	return l.makeToken(TokenInvalid, string(ch)),
		l.error(fmt.Sprintf("unexpected character %q", ch))
}

// Tokenize scans the whole input. It stops at the first lexical error.
func (l *Lexer) Tokenize() ([]Token, error) {
	var tokens []Token
	for {
		tok, err := l.NextToken()
		if err != nil {
			return tokens, err
		}
		tokens = append(tokens, tok)
		if tok.Type == TokenEOF {
			return tokens, nil
		}
	}
}

func (l *Lexer) advance() (rune, int) {
	if l.isAtEnd() {
		return 0, 0
	}
	ch, size := utf8.DecodeRuneInString(l.source[l.current:])
	l.current += size
	return ch, size
}

func (l *Lexer) peek() rune {
	if l.isAtEnd() {
		return 0
	}
	ch, _ := utf8.DecodeRuneInString(l.source[l.current:])
	return ch
}

func (l *Lexer) peekNext() rune {
	if l.current+1 >= len(l.source) {
		return 0
	}
	_, size := utf8.DecodeRuneInString(l.source[l.current:])
	ch, _ := utf8.DecodeRuneInString(l.source[l.current+size:])
	return ch
}

// match advances past the current character if it equals expected.
func (l *Lexer) match(expected rune) bool {
	if l.peek() != expected || l.isAtEnd() {
		return false
	}
	l.advance()
	return true
}

func (l *Lexer) isAtEnd() bool {
	return l.current >= len(l.source)
}

func (l *Lexer) newline() {
	l.line++
	l.lineStart = l.current
}

// skipTrivia skips whitespace, line comments and (nested) block comments.
func (l *Lexer) skipTrivia() error {
	for !l.isAtEnd() {
		switch ch := l.peek(); {
		case ch == ' ' || ch == '\r' || ch == '\t':
			l.advance()
		case ch == '\n':
			l.advance()
			l.newline()
		case ch == '/' && l.peekNext() == '/':
			for !l.isAtEnd() && l.peek() != '\n' {
				l.advance()
			}
		case ch == '/' && l.peekNext() == '*':
			if err := l.skipBlockComment(); err != nil {
				return err
			}
		default:
			return nil
		}
	}
	return nil
}

func (l *Lexer) skipBlockComment() error {
	l.start = l.current
	l.advance()
	l.advance()
	depth := 1
	for !l.isAtEnd() && depth > 0 {
		switch {
		case l.peek() == '/' && l.peekNext() == '*':
			l.advance()
			l.advance()
			depth++
		case l.peek() == '*' && l.peekNext() == '/':
			l.advance()
			l.advance()
			depth--
		case l.peek() == '\n':
			l.advance()
			l.newline()
		default:
			l.advance()
		}
	}
	if depth > 0 {
		return l.error("unterminated block comment")
	}
	return nil
}

// scanIdentifier scans an identifier or keyword. Identifiers start with a
// letter or underscore and continue with letters, digits or underscores.
func (l *Lexer) scanIdentifier() Token {
	for !l.isAtEnd() {
		ch := l.peek()
		if !isLetter(ch) && !isDigit(ch) && !isCombining(ch) {
			break
		}
		l.advance()
	}

	text := norm.NFC.String(l.source[l.start:l.current])
	return l.makeToken(LookupKeyword(text), text)
}

// scanNumber scans an integer or a decimal float such as 0.7. A leading
// minus sign has already been consumed when present.
func (l *Lexer) scanNumber() Token {
	for isDigit(l.peek()) {
		l.advance()
	}

	tokenType := TokenInt
	if l.peek() == '.' && isDigit(l.peekNext()) {
		tokenType = TokenFloat
		l.advance()
		for isDigit(l.peek()) {
			l.advance()
		}
	}

	return l.makeToken(tokenType, l.source[l.start:l.current])
}

// scanString scans a double-quoted string literal. Escape sequences are
// kept as written; the parser unescapes them.
func (l *Lexer) scanString() (Token, error) {
	for !l.isAtEnd() {
		switch l.peek() {
		case '"':
			l.advance()
			text := norm.NFC.String(l.source[l.start:l.current])
			return l.makeToken(TokenString, text), nil
		case '\n':
			return l.makeToken(TokenInvalid, ""),
				l.error("unterminated string literal")
		case '\\':
			l.advance()
			if !l.isAtEnd() {
				l.advance()
			}
		default:
			l.advance()
		}
	}

	return l.makeToken(TokenInvalid, ""),
		l.error("unterminated string literal")
}

func (l *Lexer) makeToken(tokenType TokenType, lexeme string) Token {
	return Token{
		Type:     tokenType,
		Lexeme:   lexeme,
		Position: l.currentPosition(),
		Length:   l.current - l.start,
	}
}

// currentPosition returns the position of the token being scanned. Columns
// are counted in runes.
func (l *Lexer) currentPosition() Position {
	col := 1
	if l.start >= l.lineStart {
		col = utf8.RuneCountInString(l.source[l.lineStart:l.start]) + 1
	}
	return Position{
		Filename: l.filename,
		Line:     l.line,
		Column:   col,
		Offset:   l.start,
	}
}

func (l *Lexer) error(message string) error {
	return fmt.Errorf("%s: %s", l.currentPosition().String(), message)
}

func isLetter(ch rune) bool {
	return ch == '_' || unicode.IsLetter(ch)
}

func isDigit(ch rune) bool {
	return ch >= '0' && ch <= '9'
}

// isCombining accepts combining marks inside identifiers so decomposed
// input such as "é" normalizes to a single letter.
func isCombining(ch rune) bool {
	return unicode.Is(unicode.Mn, ch)
}
