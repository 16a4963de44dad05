package ast

import (
	"fmt"
	"io"
	"strings"
)

// Fprint writes an indented dump of the subtree rooted at id, one node per
// line with its properties:
//
//	FunctionDecl name="getTemperature" @3:1
//	  ParamList
//	    Parameter name="city"
func Fprint(w io.Writer, t *Tree, id NodeID) error {
	return fprint(w, t, id, 0)
}

func fprint(w io.Writer, t *Tree, id NodeID, indent int) error {
	if !t.Valid(id) {
		_, err := fmt.Fprintf(w, "%s<nil>\n", strings.Repeat("  ", indent))
		return err
	}

	var b strings.Builder
	b.WriteString(strings.Repeat("  ", indent))
	b.WriteString(t.Kind(id).String())
	for _, k := range t.Keys(id) {
		fmt.Fprintf(&b, " %s=%s", k, t.Prop(id, k))
	}
	if pos := t.Pos(id); pos.IsValid() {
		fmt.Fprintf(&b, " @%d:%d", pos.Line, pos.Column)
	}
	b.WriteByte('\n')
	if _, err := io.WriteString(w, b.String()); err != nil {
		return err
	}

	for _, c := range t.Children(id) {
		if err := fprint(w, t, c, indent+1); err != nil {
			return err
		}
	}
	return nil
}
