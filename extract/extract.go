// Package extract locates JSON values embedded in free-form model output.
//
// Generative models often wrap the JSON they were asked for in prose or
// markdown fences. The scanner here walks the text once per candidate,
// tracking nesting with a stack of expected closers and honoring string
// literals and escapes, so braces inside string values never end a span early.
package extract

// Span is a balanced JSON value found inside a larger text.
// Text is always text[Start:End].
type Span struct {
	Start int
	End   int
	Text  string
}

// FirstObject returns the first balanced top-level {...} span in text.
func FirstObject(text string) (Span, bool) {
	return First(text, '{')
}

// FirstArray returns the first balanced top-level [...] span in text.
func FirstArray(text string) (Span, bool) {
	return First(text, '[')
}

// First returns the first balanced span that opens with open ('{' or '[').
// Openers that cannot start a JSON value (stray prose brackets) are skipped.
// A candidate that is still open at the end of the text is truncated output:
// First reports not found rather than settling for a value nested inside it.
func First(text string, open byte) (Span, bool) {
	if open != '{' && open != '[' {
		return Span{}, false
	}

	for start := 0; start < len(text); start++ {
		if text[start] != open || !startsValue(text, start) {
			continue
		}
		end, res := scan(text, start)
		switch res {
		case balanced:
			return Span{Start: start, End: end, Text: text[start:end]}, true
		case truncated:
			return Span{}, false
		}
	}
	return Span{}, false
}

// startsValue reports whether the opener at start is followed by something
// that can continue a JSON object or array.
func startsValue(text string, start int) bool {
	for i := start + 1; i < len(text); i++ {
		c := text[i]
		switch c {
		case ' ', '\t', '\n', '\r':
			continue
		}
		if text[start] == '{' {
			return c == '"' || c == '}'
		}
		switch {
		case c == ']', c == '{', c == '[', c == '"', c == '-':
			return true
		case c >= '0' && c <= '9':
			return true
		case c == 't', c == 'f', c == 'n':
			return true
		}
		return false
	}
	// nothing after the opener is still a truncated value
	return true
}

type scanResult int

const (
	balanced scanResult = iota
	mismatched
	truncated
)

// scan walks from the opener at start and returns the index just past its
// matching closer.
func scan(text string, start int) (int, scanResult) {
	stack := make([]byte, 0, 8)
	inString := false
	escaped := false

	for i := start; i < len(text); i++ {
		c := text[i]

		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '{':
			stack = append(stack, '}')
		case '[':
			stack = append(stack, ']')
		case '}', ']':
			if len(stack) == 0 || stack[len(stack)-1] != c {
				return 0, mismatched
			}
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				return i + 1, balanced
			}
		}
	}
	return 0, truncated
}
