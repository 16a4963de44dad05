// Package ast defines the syntax tree for VibeLang.
//
// STORAGE MODEL:
// All nodes of one compilation live in a Tree, an arena addressed by NodeID
// handles. A node owns its ordered children exclusively and carries a small
// property bag (name, type, template, value...). Parent links are handles
// into the same arena and never own anything, so freeing is driven only by
// the tree that created the node.
//
// Consumers that want statically typed fields call Decode, which turns a
// node into one of the concrete view records in stmt.go and expr.go.
//
// A Tree is not safe for concurrent use. Independent compilations use
// independent trees.
package ast

import (
	"github.com/hassan/vibelang/internal/lexer"
)

// NodeID is a handle to a node inside a Tree. The zero value is NoNode.
type NodeID int32

// NoNode is the null handle.
const NoNode NodeID = 0

// Kind identifies the syntactic form of a node.
type Kind int

const (
	KindInvalid Kind = iota

	// Declarations
	KindProgram
	KindImport
	KindTypeDecl
	KindFunctionDecl
	KindParamList
	KindParameter
	KindFunctionBody
	KindClassDecl
	KindMemberVar

	// Type references
	KindBasicType
	KindMeaningType

	// Statements
	KindBlock
	KindVarDecl
	KindReturnStmt
	KindPromptBlock
	KindExprStmt

	// Expressions
	KindCallExpr
	KindIdentifier
	KindIntLiteral
	KindFloatLiteral
	KindStringLiteral
	KindBoolLiteral
)

var kindNames = [...]string{
	KindInvalid:       "Invalid",
	KindProgram:       "Program",
	KindImport:        "Import",
	KindTypeDecl:      "TypeDecl",
	KindFunctionDecl:  "FunctionDecl",
	KindParamList:     "ParamList",
	KindParameter:     "Parameter",
	KindFunctionBody:  "FunctionBody",
	KindClassDecl:     "ClassDecl",
	KindMemberVar:     "MemberVar",
	KindBasicType:     "BasicType",
	KindMeaningType:   "MeaningType",
	KindBlock:         "Block",
	KindVarDecl:       "VarDecl",
	KindReturnStmt:    "ReturnStmt",
	KindPromptBlock:   "PromptBlock",
	KindExprStmt:      "ExprStmt",
	KindCallExpr:      "CallExpr",
	KindIdentifier:    "Identifier",
	KindIntLiteral:    "IntLiteral",
	KindFloatLiteral:  "FloatLiteral",
	KindStringLiteral: "StringLiteral",
	KindBoolLiteral:   "BoolLiteral",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "Unknown"
	}
	return kindNames[k]
}

// IsType reports whether nodes of this kind describe a type.
func (k Kind) IsType() bool {
	return k == KindBasicType || k == KindMeaningType
}

// IsExpr reports whether nodes of this kind are expressions.
func (k Kind) IsExpr() bool {
	return k >= KindCallExpr && k <= KindBoolLiteral
}

// IsLiteral reports whether nodes of this kind are literals.
func (k Kind) IsLiteral() bool {
	return k >= KindIntLiteral && k <= KindBoolLiteral
}

// Property keys shared by the parser, analyzer and code generator.
const (
	PropName     = "name"
	PropPath     = "path"
	PropType     = "type"
	PropMeaning  = "meaning"
	PropTemplate = "template"
	PropFunction = "function"
	PropValue    = "value"
)

// Position is re-exported so callers of this package rarely need lexer.
type Position = lexer.Position
