package semantic

import (
	"fmt"

	"github.com/hassan/vibelang/internal/lexer"
	"github.com/hassan/vibelang/internal/parser/ast"
)

// Kind classifies a diagnostic.
type Kind int

const (
	ResourceExhausted Kind = iota + 1
	DuplicateSymbol
	UnresolvedIdentifier
	UnresolvedFunction
	NotAFunction
	ArgumentCountMismatch
	TypeMismatch
	MissingName
	UninferableType
	UnknownNodeShape

	// Warning-only kinds.
	EmptyStatement
	UnresolvedMarker
	UnusedVariable
)

var kindNames = map[Kind]string{
	ResourceExhausted:     "resource exhausted",
	DuplicateSymbol:       "duplicate symbol",
	UnresolvedIdentifier:  "unresolved identifier",
	UnresolvedFunction:    "unresolved function",
	NotAFunction:          "not a function",
	ArgumentCountMismatch: "argument count mismatch",
	TypeMismatch:          "type mismatch",
	MissingName:           "missing name",
	UninferableType:       "uninferable type",
	UnknownNodeShape:      "unknown node shape",
	EmptyStatement:        "empty statement",
	UnresolvedMarker:      "unresolved prompt marker",
	UnusedVariable:        "unused variable",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

// Severity separates errors, which fail the analysis, from warnings.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
)

func (s Severity) String() string {
	if s == SeverityWarning {
		return "warning"
	}
	return "error"
}

// Diagnostic is one problem found during analysis.
type Diagnostic struct {
	Kind     Kind
	Severity Severity
	Pos      lexer.Position
	Node     ast.NodeID
	Message  string
}

// Error formats the diagnostic as "file:line:col: message". Diagnostics
// without a position print the message alone.
func (d Diagnostic) Error() string {
	if d.Pos.IsValid() {
		return fmt.Sprintf("%s: %s", d.Pos, d.Message)
	}
	return d.Message
}
