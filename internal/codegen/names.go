package codegen

import "strings"

// mangledPrefix is prepended to user identifiers that would collide with a
// name the generated C already uses.
const mangledPrefix = "vl_"

// reservedNames are the identifiers user code must not take over in the
// emitted C: C keywords, the prompt lowering's temporaries, and the libc
// and runtime functions the output calls.
var reservedNames = map[string]bool{}

func init() {
	for _, group := range []string{
		// C keywords (C99 plus the common C11 ones).
		`auto break case char const continue default do double else enum
		extern float for goto if inline int long register restrict return
		short signed sizeof static struct switch typedef union unsigned void
		volatile while _Bool _Complex _Imaginary _Alignas _Alignof _Atomic
		_Generic _Noreturn _Static_assert _Thread_local`,

		// Prompt block temporaries and the method receiver.
		`prompt_result prompt_template var_count var_names var_values
		formatted_prompt self`,

		// libc.
		`malloc free strdup snprintf NULL`,

		// Runtime.
		`VibeValue format_prompt vibe_execute_prompt vibe_get_string
		vibe_get_number vibe_get_bool vibe_value_get_int`,
	} {
		for _, name := range strings.Fields(group) {
			reservedNames[name] = true
		}
	}
}

// cIdent returns the C spelling of a user identifier. Reserved names get
// mangledPrefix, and so do names that already start with it, so two
// distinct VibeLang names never map to the same C name.
//
//	count      -> count
//	var_count  -> vl_var_count
//	vl_x       -> vl_vl_x
func cIdent(name string) string {
	if reservedNames[name] || strings.HasPrefix(name, mangledPrefix) {
		return mangledPrefix + name
	}
	return name
}
