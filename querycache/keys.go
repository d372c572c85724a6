package querycache

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// KeySeparator delimits cache key segments.
const KeySeparator = "::"

// KeyOf builds a deterministic cache key: the snake_cased resource namespace,
// the operation, then each argument segment. Arguments are formatted through
// a typed switch; anything else falls back to %v, which is fine for the
// small, stable value set engines pass here.
func KeyOf(resource, op string, args ...any) string {
	parts := make([]string, 0, len(args)+2)
	parts = append(parts, Namespace(resource), op)
	for _, arg := range args {
		parts = append(parts, segment(arg))
	}
	return strings.Join(parts, KeySeparator)
}

func segment(v any) string {
	switch x := v.(type) {
	case nil:
		return "nil"
	case string:
		if x == "" {
			return "-"
		}
		return x
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case bool:
		return strconv.FormatBool(x)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprintf("%v", x)
	}
}

// Namespace normalizes a resource name into the snake_case key prefix.
// Punctuation is stripped aggressively: characters outside the alphabet would
// break prefix invalidation and produce keys some backends reject.
func Namespace(resource string) string {
	if resource == "" {
		return ""
	}

	runes := []rune(resource)
	var b strings.Builder
	b.Grow(len(runes) + len(runes)/2)

	lastUnderscore := false
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case unicode.IsUpper(r):
			if b.Len() > 0 {
				prev := runes[i-1]
				nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
				if (unicode.IsLower(prev) || unicode.IsDigit(prev) || nextLower) && !lastUnderscore {
					b.WriteByte('_')
					lastUnderscore = true
				}
			}
			b.WriteRune(unicode.ToLower(r))
			lastUnderscore = false
		case unicode.IsLower(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastUnderscore = false
		default:
			if !lastUnderscore && b.Len() > 0 {
				b.WriteByte('_')
				lastUnderscore = true
			}
		}
	}
	return strings.Trim(b.String(), "_")
}
