// Package prompt implements prompt template markers and substitution.
//
// A template is plain text with {name} markers. Format replaces every
// marker whose name has a value and leaves the rest verbatim, so
// "What is the temperature in {city}?" with city=Berlin becomes
// "What is the temperature in Berlin?". The generated C runtime's
// format_prompt follows the same rules.
package prompt

import "strings"

// Marker is one {name} occurrence in a template.
type Marker struct {
	Name   string
	Offset int // byte offset of the opening brace
}

// Scan returns every marker in template in order, including repeats.
// A marker is a non-empty run of characters between '{' and the next '}'
// that contains no further '{'.
func Scan(template string) []Marker {
	var out []Marker
	for i := 0; i < len(template); i++ {
		if template[i] != '{' {
			continue
		}
		end := strings.IndexAny(template[i+1:], "{}")
		if end < 0 {
			break
		}
		if template[i+1+end] == '{' {
			// "{a {b}": restart at the inner brace.
			i += end
			continue
		}
		if end > 0 {
			out = append(out, Marker{Name: template[i+1 : i+1+end], Offset: i})
		}
		i += end + 1
	}
	return out
}

// Markers returns the distinct marker names of template in order of first
// appearance.
func Markers(template string) []string {
	seen := make(map[string]bool)
	var names []string
	for _, m := range Scan(template) {
		if !seen[m.Name] {
			seen[m.Name] = true
			names = append(names, m.Name)
		}
	}
	return names
}

// Format substitutes names[i] with values[i] in template. Every occurrence
// of a marker is replaced, pairs with an empty name are skipped, and
// markers without a matching name are kept as written. When a name is
// given twice the first value wins. Substituted values are never scanned
// for further markers.
func Format(template string, names, values []string) string {
	n := len(names)
	if len(values) < n {
		n = len(values)
	}
	vars := make(map[string]string, n)
	for i := 0; i < n; i++ {
		if names[i] == "" {
			continue
		}
		if _, dup := vars[names[i]]; !dup {
			vars[names[i]] = values[i]
		}
	}
	return FormatMap(template, vars)
}

// FormatMap is Format with the bindings given as a map.
func FormatMap(template string, vars map[string]string) string {
	markers := Scan(template)
	if len(markers) == 0 || len(vars) == 0 {
		return template
	}

	var b strings.Builder
	b.Grow(len(template))
	last := 0
	for _, m := range markers {
		v, ok := vars[m.Name]
		if !ok {
			continue
		}
		b.WriteString(template[last:m.Offset])
		b.WriteString(v)
		last = m.Offset + len(m.Name) + 2
	}
	b.WriteString(template[last:])
	return b.String()
}
