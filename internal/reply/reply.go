// Package reply builds chat answers through a fixed cascade: greetings,
// courtesy, yes/no, knowledge lookup for questions, per-intent advice,
// then general redirects and a localized fallback.
package reply

import (
	"context"
	"strings"
	"unicode"

	"agrichat/internal/classify"
)

// Searcher looks up a stored answer for free text
type Searcher interface {
	Search(ctx context.Context, question string) (string, bool)
}

// Generator produces replies. It has no side effects; callers log.
type Generator struct {
	searcher Searcher
}

// NewGenerator creates a Generator backed by searcher
func NewGenerator(searcher Searcher) *Generator {
	return &Generator{searcher: searcher}
}

// Generate returns the reply for message given its detected intent and
// language.
func (g *Generator) Generate(ctx context.Context, message, intent, lang string) string {
	text := tokenize(message)

	if containsAny(text, greetingPhrases) {
		return localized(greetingReplies, lang)
	}
	if containsAny(text, thanksPhrases) {
		return localized(thanksReplies, lang)
	}
	if _, ok := affirmatives[text]; ok {
		return localized(yesReplies, lang)
	}
	if _, ok := negatives[text]; ok {
		return localized(noReplies, lang)
	}

	searched := false
	if isQuestion(message, text) {
		searched = true
		if answer, ok := g.searcher.Search(ctx, message); ok {
			return answer
		}
	}

	if advice, ok := intentAdvice[intent]; ok {
		for _, t := range advice.topics {
			if containsSubstring(text, t.keywords) {
				return localized(t.text, lang)
			}
		}
		return localized(advice.prompt, lang)
	}

	for _, r := range generalRedirects {
		if containsSubstring(text, r.keywords) {
			return localized(r.text, lang)
		}
	}

	// A question already missed the knowledge base above.
	if !searched {
		if answer, ok := g.searcher.Search(ctx, message); ok {
			return answer
		}
	}
	return localized(fallbackReplies, lang)
}

// localized picks the entry for lang, falling back to English.
func localized(m map[string]string, lang string) string {
	if s, ok := m[lang]; ok {
		return s
	}
	return m[classify.English]
}

// tokenize lowercases message and replaces everything that is not a
// letter, digit or apostrophe with single spaces, padded on both ends so
// phrases can be matched on word boundaries.
func tokenize(message string) string {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r) || r == '\'' {
			return unicode.ToLower(r)
		}
		return ' '
	}, message)
	return " " + strings.Join(strings.Fields(cleaned), " ") + " "
}

// containsAny reports whether any phrase occurs in text on word boundaries.
func containsAny(text string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(text, " "+p+" ") {
			return true
		}
	}
	return false
}

// containsSubstring reports whether any keyword occurs anywhere in text, so
// "tomato" also matches "tomatoes".
func containsSubstring(text string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}

func isQuestion(raw, text string) bool {
	if strings.ContainsAny(raw, "?¿؟") {
		return true
	}
	return containsAny(text, questionWords)
}
