package domain

// Generation is the result of a text-generation call.
// It either carries text or is explicitly empty; callers never probe
// provider payloads for missing fields.
type Generation struct {
	text    string
	present bool
}

// GeneratedText returns a generation carrying s.
// A whitespace-only s is still content; providers decide what they return.
func GeneratedText(s string) Generation {
	return Generation{text: s, present: true}
}

// NoContent returns a generation with no textual content.
func NoContent() Generation {
	return Generation{}
}

// HasContent reports whether the provider returned text.
func (g Generation) HasContent() bool {
	return g.present
}

// Text returns the generated text, or "" for NoContent.
func (g Generation) Text() string {
	return g.text
}
