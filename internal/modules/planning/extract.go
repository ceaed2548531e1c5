package planning

import (
	"context"
	"regexp"
	"strings"
)

// Extractor guesses the career a user wants to move into from their own
// messages, earliest first.
type Extractor interface {
	Extract(ctx context.Context, userMessages []string) (string, error)
}

// PatternExtractor matches turns of phrase like "want to become a ..." in
// the first few user messages. It is lossy: the capture stops at the first
// period or comma and only letters and spaces are kept. When nothing matches
// it returns the fallback, never an error.
type PatternExtractor struct {
	patterns []*regexp.Regexp
	window   int
	fallback string
}

func NewPatternExtractor(p *Policy) *PatternExtractor {
	if p == nil {
		p = DefaultPolicy()
	}
	return &PatternExtractor{
		patterns: p.Patterns,
		window:   p.MessageWindow,
		fallback: p.FallbackTargetCareer,
	}
}

func (e *PatternExtractor) Extract(_ context.Context, userMessages []string) (string, error) {
	n := len(userMessages)
	if e.window > 0 && n > e.window {
		n = e.window
	}
	early := strings.Join(userMessages[:n], " ")

	for _, re := range e.patterns {
		m := re.FindStringSubmatch(early)
		if len(m) < 2 {
			continue
		}
		if v := strings.TrimSpace(m[1]); v != "" {
			return v, nil
		}
	}
	return e.fallback, nil
}
