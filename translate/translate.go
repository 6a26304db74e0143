package translate

import "context"

// Gateway is the translation collaborator. Every method is best-effort: on
// backend failure the implementation degrades to a usable value instead of
// returning an error, so the pipeline never blocks on translation.
type Gateway interface {
	// Detect returns the language code of the text.
	Detect(ctx context.Context, text string) string
	// Translate converts text between languages; on failure it returns the
	// input unchanged.
	Translate(ctx context.Context, text, source, target string) string
	// FanOut translates one canonical-language string into every target
	// locale, falling back per locale to the source text.
	FanOut(ctx context.Context, text string, targets []string) map[string]string
}

// DetectByScript is the heuristic used when the backend detector is
// unavailable: Devanagari-range characters mean Hindi, Bengali-range mean
// Bengali, anything else defaults to English.
func DetectByScript(text string) string {
	for _, r := range text {
		switch {
		case r >= 0x0900 && r <= 0x097F:
			return "hi"
		case r >= 0x0980 && r <= 0x09FF:
			return "bn"
		}
	}
	return "en"
}
