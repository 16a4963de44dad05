package lexer

import (
	"testing"
)

func TestLexer_Keywords(t *testing.T) {
	source := "fn type let prompt return class import true false"
	l := New(source, "test.vibe")

	expectedTypes := []TokenType{
		TokenFn,
		TokenTypeKeyword,
		TokenLet,
		TokenPrompt,
		TokenReturn,
		TokenClass,
		TokenImport,
		TokenTrue,
		TokenFalse,
		TokenEOF,
	}

	for i, expected := range expectedTypes {
		token, err := l.NextToken()
		if err != nil {
			t.Fatalf("token %d: unexpected error: %v", i, err)
		}
		if token.Type != expected {
			t.Errorf("token %d: expected %v, got %v", i, expected, token.Type)
		}
	}
}

func TestLexer_Identifiers(t *testing.T) {
	source := "city getTemperature _tmp Meaning x1"
	l := New(source, "test.vibe")

	expected := []string{"city", "getTemperature", "_tmp", "Meaning", "x1"}

	for i, expectedName := range expected {
		token, err := l.NextToken()
		if err != nil {
			t.Fatalf("token %d: unexpected error: %v", i, err)
		}
		if token.Type != TokenIdentifier {
			t.Errorf("token %d: expected IDENTIFIER, got %v", i, token.Type)
		}
		if token.Lexeme != expectedName {
			t.Errorf("token %d: expected %q, got %q", i, expectedName, token.Lexeme)
		}
	}
}

func TestLexer_IdentifiersAreNFC(t *testing.T) {
	composed := New("caf\u00e9", "test.vibe")
	decomposed := New("cafe\u0301", "test.vibe")

	a, err := composed.NextToken()
	if err != nil {
		t.Fatal(err)
	}
	b, err := decomposed.NextToken()
	if err != nil {
		t.Fatal(err)
	}
	if a.Lexeme != b.Lexeme {
		t.Errorf("NFC lexemes differ: %q vs %q", a.Lexeme, b.Lexeme)
	}
}

func TestLexer_Numbers(t *testing.T) {
	tests := []struct {
		source string
		typ    TokenType
		want   string
	}{
		{"42", TokenInt, "42"},
		{"0.7", TokenFloat, "0.7"},
		{"-3", TokenInt, "-3"},
		{"-2.5", TokenFloat, "-2.5"},
	}

	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			l := New(tt.source, "test.vibe")
			token, err := l.NextToken()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if token.Type != tt.typ {
				t.Errorf("expected %v, got %v", tt.typ, token.Type)
			}
			if token.Lexeme != tt.want {
				t.Errorf("expected %q, got %q", tt.want, token.Lexeme)
			}
		})
	}
}

func TestLexer_Strings(t *testing.T) {
	source := `"What is the temperature in {city}?" "with\"quotes"`
	l := New(source, "test.vibe")

	expectedLexemes := []string{
		`"What is the temperature in {city}?"`,
		`"with\"quotes"`,
	}

	for i, expected := range expectedLexemes {
		token, err := l.NextToken()
		if err != nil {
			t.Fatalf("token %d: unexpected error: %v", i, err)
		}
		if token.Type != TokenString {
			t.Errorf("token %d: expected STRING, got %v", i, token.Type)
		}
		if token.Lexeme != expected {
			t.Errorf("token %d: expected %q, got %q", i, expected, token.Lexeme)
		}
	}
}

func TestLexer_Punctuation(t *testing.T) {
	source := "( ) { } , ; : -> = < >"
	l := New(source, "test.vibe")

	expectedTypes := []TokenType{
		TokenLeftParen,
		TokenRightParen,
		TokenLeftBrace,
		TokenRightBrace,
		TokenComma,
		TokenSemicolon,
		TokenColon,
		TokenArrow,
		TokenAssign,
		TokenLess,
		TokenGreater,
		TokenEOF,
	}

	for i, expected := range expectedTypes {
		token, err := l.NextToken()
		if err != nil {
			t.Fatalf("token %d: unexpected error: %v", i, err)
		}
		if token.Type != expected {
			t.Errorf("token %d: expected %v, got %v", i, expected, token.Type)
		}
	}
}

func TestLexer_CommentsAndPositions(t *testing.T) {
	source := "// header\n/* block\n /* nested */ */\nfn  main"
	l := New(source, "test.vibe")

	tok, err := l.NextToken()
	if err != nil {
		t.Fatal(err)
	}
	if tok.Type != TokenFn {
		t.Fatalf("expected fn, got %v", tok.Type)
	}
	if tok.Position.Line != 4 || tok.Position.Column != 1 {
		t.Errorf("fn position = %s, want line 4 column 1", tok.Position)
	}

	tok, _ = l.NextToken()
	if tok.Position.Column != 5 {
		t.Errorf("main column = %d, want 5", tok.Position.Column)
	}
}

func TestLexer_ColumnsCountRunes(t *testing.T) {
	l := New("let caf\u00e9 = 1;", "test.vibe")

	want := []struct {
		lexeme string
		column int
		offset int
	}{
		{"let", 1, 0},
		{"caf\u00e9", 5, 4},
		{"=", 10, 10},
		{"1", 12, 12},
	}
	for _, w := range want {
		tok, err := l.NextToken()
		if err != nil {
			t.Fatal(err)
		}
		if tok.Lexeme != w.lexeme {
			t.Fatalf("Lexeme = %q, want %q", tok.Lexeme, w.lexeme)
		}
		if tok.Position.Column != w.column || tok.Position.Offset != w.offset {
			t.Errorf("%s at column %d offset %d, want column %d offset %d",
				w.lexeme, tok.Position.Column, tok.Position.Offset, w.column, w.offset)
		}
	}
}

func TestLexer_Errors(t *testing.T) {
	tests := []struct {
		name   string
		source string
	}{
		{"unterminated string", `"open`},
		{"newline in string", "\"a\nb\""},
		{"unterminated comment", "/* never closed"},
		{"stray character", "@"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := New(tt.source, "test.vibe")
			tok, err := l.NextToken()
			if err == nil {
				t.Fatalf("expected error, got %v", tok)
			}
			if tok.Type != TokenInvalid {
				t.Errorf("expected INVALID, got %v", tok.Type)
			}
		})
	}
}

func TestLexer_Tokenize(t *testing.T) {
	source := `type Temperature = Meaning<Int>("temperature in Celsius");`
	tokens, err := New(source, "test.vibe").Tokenize()
	if err != nil {
		t.Fatalf("Tokenize() error: %v", err)
	}
	if len(tokens) != 12 {
		t.Fatalf("Tokenize() returned %d tokens, want 12", len(tokens))
	}
	if tokens[len(tokens)-1].Type != TokenEOF {
		t.Errorf("last token = %v, want EOF", tokens[len(tokens)-1].Type)
	}
}
