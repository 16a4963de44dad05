// Package parser implements a recursive descent parser for VibeLang.
//
// PARSING STRATEGY:
// One parse function per grammar rule. VibeLang expressions have no
// operators, so no precedence climbing is needed: an expression is a call,
// an identifier or a literal.
//
// TREE CONSTRUCTION:
// Nodes are allocated in an ast.Tree and attached to their parent as soon as
// they are created. A declaration or statement that fails half way is
// therefore always reachable from its parent, and error recovery removes it
// (freeing the whole partial subtree) before resuming.
//
// ERROR HANDLING STRATEGY:
// - Report errors but continue parsing (find multiple errors in one pass)
// - Use panic/recover for error recovery at declaration and statement
//   boundaries
// - Running out of nodes or depth is fatal and stops the parse
package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hassan/vibelang/internal/lexer"
	"github.com/hassan/vibelang/internal/parser/ast"
)

// meaningKeyword introduces a Meaning type. It is an ordinary identifier
// everywhere else.
const meaningKeyword = "Meaning"

// Parser converts a stream of tokens into nodes of an ast.Tree.
//
// DESIGN CHOICE: Parser is a struct with methods rather than a set of
// functions. The current and previous tokens, the error list and the
// recursion depth are shared by every parse method, and a Parser is used
// for exactly one file.
type Parser struct {
	// lexer is the source of tokens
	lexer *lexer.Lexer

	// tree receives every node the parser creates
	tree *ast.Tree

	// current is the token we're currently examining
	current lexer.Token

	// previous is the last token we consumed (useful for error messages)
	previous lexer.Token

	// errors accumulates all parsing errors.
	//
	// DESIGN CHOICE: Errors are accumulated rather than returned at the
	// first one. Each message starts with "file:line:column", and the
	// caller decides how many to print.
	errors []error

	// panicMode tracks if we're in panic mode (recovering from an error)
	// During panic mode, further errors are suppressed until we
	// synchronize.
	panicMode bool

	// fatal is set when the tree refused a node. Parsing stops.
	fatal error
}

// bailout is the panic value used to unwind after a fatal error.
type bailout struct{}

// syntaxError is the panic value used to unwind to the nearest recovery
// point after a syntax error.
type syntaxError struct{}

// New creates a parser reading from l and building into tree.
func New(l *lexer.Lexer, tree *ast.Tree) *Parser {
	p := &Parser{
		lexer:  l,
		tree:   tree,
		errors: make([]error, 0),
	}
	// Prime the parser by reading the first token
	p.advance()
	return p
}

// Parse parses one source file into a new tree with the given limits.
// The returned tree is usable even when errors are reported; erroneous
// declarations are left out of it.
func Parse(filename, source string, limits ast.Limits) (*ast.Tree, []error) {
	tree := ast.NewTree(limits)
	p := New(lexer.New(source, filename), tree)
	p.ParseProgram()
	return tree, p.Errors()
}

// Errors returns the errors reported so far.
func (p *Parser) Errors() []error {
	return p.errors
}

// Fatal returns the error that stopped the parse, or nil. It is also
// included in Errors.
func (p *Parser) Fatal() error {
	return p.fatal
}

// ParseProgram parses a complete file and makes the Program node the root
// of the tree.
//
// GRAMMAR:
//
//	program = { import | typeDecl | funcDecl | classDecl } EOF
func (p *Parser) ParseProgram() (root ast.NodeID) {
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(bailout); !ok {
				panic(r)
			}
			p.errors = append(p.errors, p.fatal)
		}
	}()

	root = p.add(ast.NoNode, ast.KindProgram, p.current)
	p.tree.SetRoot(root)

	for !p.isAtEnd() {
		p.parseDecl(root)
	}
	return root
}

// parseDecl parses a top-level declaration into program.
func (p *Parser) parseDecl(program ast.NodeID) {
	mark := p.tree.Len(program)
	defer func() {
		if r := recover(); r != nil {
			p.discard(r, program, mark)
			p.synchronize(lexer.TokenFn, lexer.TokenTypeKeyword, lexer.TokenClass, lexer.TokenImport)
		}
	}()

	switch {
	case p.match(lexer.TokenImport):
		p.parseImport(program)
	case p.match(lexer.TokenTypeKeyword):
		p.parseTypeDecl(program)
	case p.match(lexer.TokenFn):
		p.parseFuncDecl(program)
	case p.match(lexer.TokenClass):
		p.parseClassDecl(program)
	default:
		p.error(fmt.Sprintf("expected declaration, got %s", p.current.Type))
		panic(syntaxError{})
	}
}

// parseImport parses: import "path" [";"]
func (p *Parser) parseImport(parent ast.NodeID) {
	tok := p.previous
	p.consume(lexer.TokenString, "expected import path (string)")
	path := p.parseStringLiteral(p.previous.Lexeme)

	id := p.add(parent, ast.KindImport, tok)
	p.tree.SetString(id, ast.PropPath, path)
	p.match(lexer.TokenSemicolon)
}

// parseTypeDecl parses: type Name = typeRef [";"]
func (p *Parser) parseTypeDecl(parent ast.NodeID) {
	id := p.add(parent, ast.KindTypeDecl, p.previous)
	p.consume(lexer.TokenIdentifier, "expected type name")
	p.tree.SetString(id, ast.PropName, p.previous.Lexeme)

	p.consume(lexer.TokenAssign, "expected '=' after type name")
	p.parseTypeRef(id)
	p.match(lexer.TokenSemicolon)
}

// parseTypeRef parses a type reference:
//
//	typeRef = "Meaning" "<" typeRef ">" "(" STRING ")" | IDENT
func (p *Parser) parseTypeRef(parent ast.NodeID) {
	p.consume(lexer.TokenIdentifier, "expected type")
	tok := p.previous

	if tok.Lexeme != meaningKeyword || !p.check(lexer.TokenLess) {
		id := p.add(parent, ast.KindBasicType, tok)
		p.tree.SetString(id, ast.PropType, tok.Lexeme)
		return
	}

	id := p.add(parent, ast.KindMeaningType, tok)
	p.consume(lexer.TokenLess, "expected '<' after Meaning")
	p.parseTypeRef(id)
	p.consume(lexer.TokenGreater, "expected '>' after Meaning type")
	p.consume(lexer.TokenLeftParen, "expected '(' before meaning description")
	p.consume(lexer.TokenString, "expected meaning description (string)")
	p.tree.SetString(id, ast.PropMeaning, p.parseStringLiteral(p.previous.Lexeme))
	p.consume(lexer.TokenRightParen, "expected ')' after meaning description")
}

// parseFuncDecl parses a function or method:
//
//	fn name(params) [-> typeRef] { body }
func (p *Parser) parseFuncDecl(parent ast.NodeID) {
	id := p.add(parent, ast.KindFunctionDecl, p.previous)
	p.consume(lexer.TokenIdentifier, "expected function name")
	p.tree.SetString(id, ast.PropName, p.previous.Lexeme)

	p.consume(lexer.TokenLeftParen, "expected '(' after function name")
	p.parseParameters(id)
	p.consume(lexer.TokenRightParen, "expected ')' after parameters")

	if p.match(lexer.TokenArrow) {
		p.parseTypeRef(id)
	}

	if !p.check(lexer.TokenLeftBrace) {
		p.error("expected function body")
		panic(syntaxError{})
	}
	p.parseBlock(id, ast.KindFunctionBody)
}

// parseParameters parses: [name: T {, name: T}]
func (p *Parser) parseParameters(fn ast.NodeID) {
	list := p.add(fn, ast.KindParamList, p.current)
	if p.check(lexer.TokenRightParen) {
		return
	}
	for {
		p.consume(lexer.TokenIdentifier, "expected parameter name")
		param := p.add(list, ast.KindParameter, p.previous)
		p.tree.SetString(param, ast.PropName, p.previous.Lexeme)
		p.consume(lexer.TokenColon, "expected ':' after parameter name")
		p.parseTypeRef(param)

		if !p.match(lexer.TokenComma) {
			return
		}
	}
}

// parseClassDecl parses: class Name { { member | funcDecl } }
func (p *Parser) parseClassDecl(parent ast.NodeID) {
	id := p.add(parent, ast.KindClassDecl, p.previous)
	p.consume(lexer.TokenIdentifier, "expected class name")
	p.tree.SetString(id, ast.PropName, p.previous.Lexeme)
	p.consume(lexer.TokenLeftBrace, "expected '{' after class name")

	for !p.check(lexer.TokenRightBrace) && !p.isAtEnd() {
		if p.match(lexer.TokenFn) {
			p.parseFuncDecl(id)
			continue
		}
		p.consume(lexer.TokenIdentifier, "expected member or method")
		member := p.add(id, ast.KindMemberVar, p.previous)
		p.tree.SetString(member, ast.PropName, p.previous.Lexeme)
		p.consume(lexer.TokenColon, "expected ':' after member name")
		p.parseTypeRef(member)
		p.consume(lexer.TokenSemicolon, "expected ';' after member")
	}
	p.consume(lexer.TokenRightBrace, "expected '}' after class body")
}

// parseBlock parses: { stmt* }
func (p *Parser) parseBlock(parent ast.NodeID, kind ast.Kind) {
	p.consume(lexer.TokenLeftBrace, "expected '{'")
	id := p.add(parent, kind, p.previous)

	for !p.check(lexer.TokenRightBrace) && !p.isAtEnd() && !p.atDeclStart() {
		p.parseStmt(id)
	}
	p.consume(lexer.TokenRightBrace, "expected '}'")
}

// parseStmt parses one statement into block.
func (p *Parser) parseStmt(block ast.NodeID) {
	mark := p.tree.Len(block)
	defer func() {
		if r := recover(); r != nil {
			p.discard(r, block, mark)
			p.synchronize(lexer.TokenLet, lexer.TokenReturn, lexer.TokenPrompt,
				lexer.TokenLeftBrace, lexer.TokenRightBrace,
				lexer.TokenFn, lexer.TokenTypeKeyword, lexer.TokenClass, lexer.TokenImport)
		}
	}()

	switch {
	case p.check(lexer.TokenLeftBrace):
		p.parseBlock(block, ast.KindBlock)
	case p.match(lexer.TokenLet):
		p.parseVarDecl(block)
	case p.match(lexer.TokenReturn):
		p.parseReturn(block)
	case p.match(lexer.TokenPrompt):
		p.parsePrompt(block)
	case p.match(lexer.TokenSemicolon):
		p.add(block, ast.KindExprStmt, p.previous)
	default:
		p.parseExprStmt(block)
	}
}

// parseVarDecl parses: let name [: T] [= expr];
func (p *Parser) parseVarDecl(parent ast.NodeID) {
	id := p.add(parent, ast.KindVarDecl, p.previous)
	p.consume(lexer.TokenIdentifier, "expected variable name")
	p.tree.SetString(id, ast.PropName, p.previous.Lexeme)

	if p.match(lexer.TokenColon) {
		p.parseTypeRef(id)
	}
	if p.match(lexer.TokenAssign) {
		p.parseExpression(id)
	}
	p.consume(lexer.TokenSemicolon, "expected ';' after variable declaration")
}

// parseReturn parses: return [expr];
func (p *Parser) parseReturn(parent ast.NodeID) {
	id := p.add(parent, ast.KindReturnStmt, p.previous)
	if !p.check(lexer.TokenSemicolon) {
		p.parseExpression(id)
	}
	p.consume(lexer.TokenSemicolon, "expected ';' after return")
}

// parsePrompt parses: prompt "template" [";"]
func (p *Parser) parsePrompt(parent ast.NodeID) {
	tok := p.previous
	p.consume(lexer.TokenString, "expected prompt template (string)")
	id := p.add(parent, ast.KindPromptBlock, tok)
	p.tree.SetString(id, ast.PropTemplate, p.parseStringLiteral(p.previous.Lexeme))
	p.match(lexer.TokenSemicolon)
}

func (p *Parser) parseExprStmt(parent ast.NodeID) {
	id := p.add(parent, ast.KindExprStmt, p.current)
	p.parseExpression(id)
	p.consume(lexer.TokenSemicolon, "expected ';' after expression")
}

// parseExpression parses:
//
//	expr = IDENT "(" [expr {"," expr}] ")" | IDENT | INT | FLOAT | STRING | "true" | "false"
func (p *Parser) parseExpression(parent ast.NodeID) {
	tok := p.current

	switch {
	case p.match(lexer.TokenIdentifier):
		if !p.match(lexer.TokenLeftParen) {
			id := p.add(parent, ast.KindIdentifier, tok)
			p.tree.SetString(id, ast.PropName, tok.Lexeme)
			return
		}
		call := p.add(parent, ast.KindCallExpr, tok)
		p.tree.SetString(call, ast.PropFunction, tok.Lexeme)
		if !p.check(lexer.TokenRightParen) {
			for {
				p.parseExpression(call)
				if !p.match(lexer.TokenComma) {
					break
				}
			}
		}
		p.consume(lexer.TokenRightParen, "expected ')' after arguments")

	case p.match(lexer.TokenInt):
		value, err := strconv.ParseInt(tok.Lexeme, 10, 64)
		if err != nil {
			p.error(fmt.Sprintf("invalid integer literal: %s", tok.Lexeme))
			panic(syntaxError{})
		}
		id := p.add(parent, ast.KindIntLiteral, tok)
		p.tree.SetInt(id, ast.PropValue, value)

	case p.match(lexer.TokenFloat):
		value, err := strconv.ParseFloat(tok.Lexeme, 64)
		if err != nil {
			p.error(fmt.Sprintf("invalid float literal: %s", tok.Lexeme))
			panic(syntaxError{})
		}
		id := p.add(parent, ast.KindFloatLiteral, tok)
		p.tree.SetFloat(id, ast.PropValue, value)

	case p.match(lexer.TokenString):
		id := p.add(parent, ast.KindStringLiteral, tok)
		p.tree.SetString(id, ast.PropValue, p.parseStringLiteral(tok.Lexeme))

	case p.match(lexer.TokenTrue, lexer.TokenFalse):
		id := p.add(parent, ast.KindBoolLiteral, tok)
		p.tree.SetBool(id, ast.PropValue, tok.Type == lexer.TokenTrue)

	default:
		p.error(fmt.Sprintf("expected expression, got %s", p.current.Type))
		panic(syntaxError{})
	}
}

// parseStringLiteral removes the quotes from a string lexeme and resolves
// its escapes. Unknown escapes keep the escaped character.
func (p *Parser) parseStringLiteral(lexeme string) string {
	if len(lexeme) < 2 {
		return ""
	}
	s := lexeme[1 : len(lexeme)-1]
	if !strings.Contains(s, `\`) {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i+1 == len(s) {
			b.WriteByte(s[i])
			continue
		}
		i++
		switch s[i] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		default:
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

// add creates a node of the given kind at tok and attaches it to parent.
// The tree refusing the node is fatal.
func (p *Parser) add(parent ast.NodeID, kind ast.Kind, tok lexer.Token) ast.NodeID {
	id, err := p.tree.New(kind)
	if err != nil {
		p.abort(tok, err)
	}
	p.tree.SetPos(id, tok.Position)
	if parent == ast.NoNode {
		return id
	}
	if err := p.tree.AddChild(parent, id); err != nil {
		p.tree.Free(id)
		p.abort(tok, err)
	}
	return id
}

func (p *Parser) abort(tok lexer.Token, err error) {
	p.fatal = fmt.Errorf("%s: %w", tok.Position, err)
	panic(bailout{})
}

// discard handles a recovered panic: fatal errors keep unwinding, syntax
// errors drop the children parent gained after mark.
func (p *Parser) discard(r interface{}, parent ast.NodeID, mark int) {
	switch r.(type) {
	case syntaxError:
	default:
		panic(r)
	}
	for n := p.tree.Len(parent); n > mark; n-- {
		_ = p.tree.RemoveChild(parent, n-1)
	}
}

func (p *Parser) advance() {
	p.previous = p.current
	for {
		token, err := p.lexer.NextToken()
		if err == nil {
			p.current = token
			return
		}
		// The lexer error already carries its position.
		if !p.panicMode {
			p.errors = append(p.errors, err)
		}
	}
}

func (p *Parser) check(tokenType lexer.TokenType) bool {
	return p.current.Type == tokenType
}

func (p *Parser) match(tokenTypes ...lexer.TokenType) bool {
	for _, tokenType := range tokenTypes {
		if p.check(tokenType) {
			p.advance()
			return true
		}
	}
	return false
}

func (p *Parser) consume(tokenType lexer.TokenType, message string) {
	if p.check(tokenType) {
		p.advance()
		return
	}
	p.error(message)
	panic(syntaxError{})
}

func (p *Parser) isAtEnd() bool {
	return p.current.Type == lexer.TokenEOF
}

// atDeclStart reports whether the current token can only begin a
// top-level declaration.
func (p *Parser) atDeclStart() bool {
	switch p.current.Type {
	case lexer.TokenFn, lexer.TokenTypeKeyword, lexer.TokenClass, lexer.TokenImport:
		return true
	}
	return false
}

func (p *Parser) error(message string) {
	if p.panicMode {
		return
	}
	p.panicMode = true
	err := fmt.Errorf("%s: %s", p.current.Position.String(), message)
	p.errors = append(p.errors, err)
}

// synchronize skips tokens until just after a semicolon or until one of
// stops is the current token.
func (p *Parser) synchronize(stops ...lexer.TokenType) {
	p.panicMode = false

	for !p.isAtEnd() {
		for _, s := range stops {
			if p.check(s) {
				return
			}
		}
		p.advance()
		if p.previous.Type == lexer.TokenSemicolon {
			return
		}
	}
}
