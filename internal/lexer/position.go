// Package lexer turns VibeLang source text into a stream of tokens.
package lexer

import "strconv"

// Position is a location in a source file.
//
// DESIGN CHOICE: Position is a value type (not a pointer). It is small,
// never mutated once a token is made, and the zero value stands for
// "no position", so there is no nil state to check.
//
// Every token, AST node, symbol and diagnostic carries one. The generated
// C does not, since the output must not change when only whitespace does.
type Position struct {
	// Filename is the name of the source file.
	// It is stored in every Position rather than as a file ID so that a
	// diagnostic prints on its own without a file table.
	Filename string

	// Line is the 1-based line number, matching what editors display.
	// Zero means "no position".
	Line int

	// Column is the 1-based column number.
	//
	// IMPORTANT: Columns count UTF-8 runes (Unicode code points), not
	// bytes. "let café" puts the c of café in column 5 and the line ends
	// after column 8, although it is 9 bytes long.
	Column int

	// Offset is the 0-based byte offset from the start of the file.
	Offset int
}

// String formats the position as "file:line:column", the format editors
// and CI tools turn into links.
func (p Position) String() string {
	name := p.Filename
	if name == "" {
		name = "<input>"
	}
	return name + ":" + strconv.Itoa(p.Line) + ":" + strconv.Itoa(p.Column)
}

// IsValid returns true if the position carries a line number.
func (p Position) IsValid() bool {
	return p.Line > 0
}

// Before returns true if this position comes before other.
func (p Position) Before(other Position) bool {
	return p.Offset < other.Offset
}
