package translate

import "context"

// Echo is the offline gateway used when no translation backend is
// configured: script-based detection, no actual translation. It keeps the
// pipeline runnable end to end, just monolingual.
type Echo struct{}

func (Echo) Detect(_ context.Context, text string) string {
	return DetectByScript(text)
}

func (Echo) Translate(_ context.Context, text, _, _ string) string {
	return text
}

func (Echo) FanOut(_ context.Context, text string, targets []string) map[string]string {
	out := make(map[string]string, len(targets))
	for _, locale := range targets {
		out[locale] = text
	}
	return out
}
