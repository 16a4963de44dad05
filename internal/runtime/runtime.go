// Package runtime describes the contract between generated C code and the
// VibeLang runtime library: the tagged VibeValue, its accessors and their
// fallback rules, how a model reply becomes a value, and the headers the
// generated code includes.
package runtime

import (
	"embed"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode"

	"github.com/pkg/errors"

	"github.com/hassan/vibelang/internal/semantic/types"
)

//go:embed include/*.h
var headers embed.FS

// HeaderNames lists the headers generated code includes, in include order.
var HeaderNames = []string{"runtime.h", "vibelang.h"}

// Tag identifies the active member of a Value.
type Tag int

const (
	TagNull Tag = iota
	TagBool
	TagNumber
	TagString
)

func (t Tag) String() string {
	switch t {
	case TagBool:
		return "bool"
	case TagNumber:
		return "number"
	case TagString:
		return "string"
	default:
		return "null"
	}
}

// Value mirrors the C VibeValue: a tagged union of null, bool, number and
// string.
type Value struct {
	Tag Tag
	b   bool
	n   float64
	s   string
}

// NullValue, BoolValue, NumberValue and StringValue build tagged values.
func NullValue() Value            { return Value{} }
func BoolValue(b bool) Value      { return Value{Tag: TagBool, b: b} }
func NumberValue(n float64) Value { return Value{Tag: TagNumber, n: n} }
func StringValue(s string) Value  { return Value{Tag: TagString, s: s} }

// GetString returns the string, or "" for any other tag.
func (v Value) GetString() string {
	if v.Tag != TagString {
		return ""
	}
	return v.s
}

// GetNumber returns the number, or 0 for any other tag.
func (v Value) GetNumber() float64 {
	if v.Tag != TagNumber {
		return 0
	}
	return v.n
}

// GetBool returns the boolean, or false for any other tag.
func (v Value) GetBool() bool {
	if v.Tag != TagBool {
		return false
	}
	return v.b
}

// GetInt coerces any tag to an int: numbers truncate toward zero, strings
// parse their leading integer like C atoi, booleans give 0 or 1 and null
// gives 0.
func (v Value) GetInt() int {
	switch v.Tag {
	case TagNumber:
		return int(v.n)
	case TagString:
		return atoi(v.s)
	case TagBool:
		if v.b {
			return 1
		}
	}
	return 0
}

func (v Value) String() string {
	switch v.Tag {
	case TagBool:
		return strconv.FormatBool(v.b)
	case TagNumber:
		return strconv.FormatFloat(v.n, 'g', -1, 64)
	case TagString:
		return strconv.Quote(v.s)
	default:
		return "null"
	}
}

// atoi parses optional leading space, an optional sign and the digits that
// follow, ignoring anything after them.
func atoi(s string) int {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	neg := false
	if s != "" && (s[0] == '+' || s[0] == '-') {
		neg = s[0] == '-'
		s = s[1:]
	}
	n := 0
	for i := 0; i < len(s) && s[i] >= '0' && s[i] <= '9'; i++ {
		n = n*10 + int(s[i]-'0')
	}
	if neg {
		return -n
	}
	return n
}

// atof parses the longest leading decimal number of s, like C atof.
func atof(s string) float64 {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	end := 0
	seenDigit, seenDot := false, false
scan:
	for i, r := range s {
		switch {
		case (r == '+' || r == '-') && i == 0:
		case r >= '0' && r <= '9':
			seenDigit = true
		case r == '.' && !seenDot:
			seenDot = true
		default:
			break scan
		}
		end = i + 1
	}
	if !seenDigit {
		return 0
	}
	f, err := strconv.ParseFloat(strings.TrimSuffix(s[:end], "."), 64)
	if err != nil {
		return 0
	}
	return f
}

// ParseResponse turns a model reply into a Value according to the static
// type the prompt must produce. Numeric types parse the leading number,
// Bool accepts yes/true/1, anything else keeps the text.
func ParseResponse(reply string, want types.Type) Value {
	switch types.Underlying(want) {
	case types.Int, types.Float:
		return NumberValue(atof(reply))
	case types.Bool:
		word := strings.ToLower(strings.TrimSpace(reply))
		return BoolValue(strings.HasPrefix(word, "yes") ||
			strings.HasPrefix(word, "true") || word == "1")
	default:
		return StringValue(reply)
	}
}

// Render formats v the way the generated code turns a variable of type t
// into prompt text: strings as they are, booleans as true or false, ints
// with %d and floats with %g. The value is read through the accessor for
// t, so a mismatched tag renders as that accessor's fallback.
func Render(v Value, t types.Type) string {
	switch types.Underlying(t) {
	case types.Int:
		return strconv.Itoa(v.GetInt())
	case types.Float:
		return strconv.FormatFloat(v.GetNumber(), 'g', 6, 64)
	case types.Bool:
		return strconv.FormatBool(v.GetBool())
	case types.String:
		return v.GetString()
	}
	return v.String()
}

// Accessor returns the name of the C accessor that converts a VibeValue to
// the C representation of t. ok is false for types with no accessor.
func Accessor(t types.Type) (name string, ok bool) {
	switch types.Underlying(t) {
	case types.Int:
		return "vibe_value_get_int", true
	case types.Float:
		return "vibe_get_number", true
	case types.String:
		return "vibe_get_string", true
	case types.Bool:
		return "vibe_get_bool", true
	}
	return "", false
}

// Header returns the text of one of the runtime headers.
func Header(name string) (string, error) {
	b, err := headers.ReadFile("include/" + name)
	if err != nil {
		return "", errors.Wrapf(err, "runtime header %s", name)
	}
	return string(b), nil
}

// WriteHeaders writes every runtime header into dir, creating it if
// needed.
func WriteHeaders(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(err, "create header directory")
	}
	for _, name := range HeaderNames {
		text, err := Header(name)
		if err != nil {
			return err
		}
		if err := os.WriteFile(filepath.Join(dir, name), []byte(text), 0o644); err != nil {
			return errors.Wrapf(err, "write %s", name)
		}
	}
	return nil
}
