package lexer

// TokenType represents the type of a token.
//
// DESIGN CHOICE: TokenType is an int-based enum (via iota) rather than a
// string. Comparisons are integer comparisons and a misspelled token type
// is a compile error. String gives the display form for diagnostics.
type TokenType int

const (
	// Special tokens
	TokenEOF TokenType = iota
	TokenInvalid

	// Literals
	TokenIdentifier
	TokenInt
	TokenFloat
	TokenString

	// Keywords
	TokenFn
	TokenTypeKeyword
	TokenLet
	TokenPrompt
	TokenReturn
	TokenClass
	TokenImport
	TokenTrue
	TokenFalse

	// Delimiters and operators
	TokenLeftParen  // (
	TokenRightParen // )
	TokenLeftBrace  // {
	TokenRightBrace // }
	TokenComma      // ,
	TokenSemicolon  // ;
	TokenColon      // :
	TokenArrow      // ->
	TokenAssign     // =
	TokenLess       // <
	TokenGreater    // >
)

// Token is a single lexical unit.
//
// DESIGN CHOICE: Token is a value type (not a pointer). Tokens are small,
// never shared or changed after the lexer makes them, and the parser
// keeps its lookahead token by value.
type Token struct {
	// Type is the category of the token.
	Type TokenType

	// Lexeme is the source text. String literals keep their quotes;
	// identifiers and string literals are NFC-normalized.
	Lexeme string

	// Position is where this token starts.
	Position Position

	// Length is the length of the token in source bytes.
	Length int
}

// String returns a human-readable representation of the token.
// Example: "IDENTIFIER(city) at weather.vibe:3:18"
func (t Token) String() string {
	return t.Type.String() + "(" + t.Lexeme + ") at " + t.Position.String()
}

var tokenNames = map[TokenType]string{
	TokenEOF:         "EOF",
	TokenInvalid:     "INVALID",
	TokenIdentifier:  "IDENTIFIER",
	TokenInt:         "INT",
	TokenFloat:       "FLOAT",
	TokenString:      "STRING",
	TokenFn:          "fn",
	TokenTypeKeyword: "type",
	TokenLet:         "let",
	TokenPrompt:      "prompt",
	TokenReturn:      "return",
	TokenClass:       "class",
	TokenImport:      "import",
	TokenTrue:        "true",
	TokenFalse:       "false",
	TokenLeftParen:   "(",
	TokenRightParen:  ")",
	TokenLeftBrace:   "{",
	TokenRightBrace:  "}",
	TokenComma:       ",",
	TokenSemicolon:   ";",
	TokenColon:       ":",
	TokenArrow:       "->",
	TokenAssign:      "=",
	TokenLess:        "<",
	TokenGreater:     ">",
}

// String returns the display name of a token type. Keywords and punctuation
// print as they appear in source so parser errors read naturally.
func (tt TokenType) String() string {
	if name, ok := tokenNames[tt]; ok {
		return name
	}
	return "UNKNOWN"
}

// keywords maps reserved words to their token types. "Meaning" is not a
// keyword; the parser recognizes it as an identifier in type position.
var keywords = map[string]TokenType{
	"fn":     TokenFn,
	"type":   TokenTypeKeyword,
	"let":    TokenLet,
	"prompt": TokenPrompt,
	"return": TokenReturn,
	"class":  TokenClass,
	"import": TokenImport,
	"true":   TokenTrue,
	"false":  TokenFalse,
}

// LookupKeyword returns the keyword token type for identifier, or
// TokenIdentifier if it is not reserved.
func LookupKeyword(identifier string) TokenType {
	if tokenType, ok := keywords[identifier]; ok {
		return tokenType
	}
	return TokenIdentifier
}

// IsKeyword returns true if the token is a keyword.
func (tt TokenType) IsKeyword() bool {
	return tt >= TokenFn && tt <= TokenFalse
}

// IsLiteral returns true if the token is a literal value.
func (tt TokenType) IsLiteral() bool {
	return (tt >= TokenInt && tt <= TokenString) || tt == TokenTrue || tt == TokenFalse
}
