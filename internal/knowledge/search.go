package knowledge

import (
	"context"
	"regexp"
	"strings"

	"agrichat/internal/logging"
)

// Store is the read side of the knowledge base used by search
type Store interface {
	// FindByQuestion returns the first entry whose question contains q.
	FindByQuestion(ctx context.Context, q string) (Entry, bool, error)
	// Entries returns every entry in table order.
	Entries(ctx context.Context) ([]Entry, error)
}

// Entry is a searchable question/answer pair
type Entry struct {
	Question string
	Answer   string
}

// Search outcomes reported to a Recorder
const (
	OutcomeSubstring = "substring"
	OutcomeBestMatch = "best_match"
	OutcomeMiss      = "miss"
	OutcomeError     = "error"
)

// Recorder receives one outcome per search
type Recorder interface {
	RecordSearch(outcome string)
}

// Searcher answers free-text questions from the knowledge base
type Searcher struct {
	store    Store
	logger   *logging.Logger
	recorder Recorder
}

// Option configures a Searcher
type Option func(*Searcher)

// WithRecorder reports search outcomes to r.
func WithRecorder(r Recorder) Option {
	return func(s *Searcher) { s.recorder = r }
}

// NewSearcher creates a new Searcher with the given store
func NewSearcher(store Store, logger *logging.Logger, opts ...Option) *Searcher {
	s := &Searcher{store: store, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var nonWord = regexp.MustCompile(`[^a-z0-9\s]`)

// Normalize lowercases, trims, and removes everything except ASCII letters,
// digits and whitespace.
func Normalize(s string) string {
	return nonWord.ReplaceAllString(strings.TrimSpace(strings.ToLower(s)), "")
}

// Search returns the best stored answer for question. Store failures are
// logged and reported as no match.
func (s *Searcher) Search(ctx context.Context, question string) (string, bool) {
	answer, outcome := s.search(ctx, question)
	if s.recorder != nil {
		s.recorder.RecordSearch(outcome)
	}
	return answer, outcome == OutcomeSubstring || outcome == OutcomeBestMatch
}

func (s *Searcher) search(ctx context.Context, question string) (string, string) {
	q := Normalize(question)
	if q == "" {
		return "", OutcomeMiss
	}
	logger := s.logger.WithContext("query", q)

	entry, ok, err := s.store.FindByQuestion(ctx, q)
	if err != nil {
		logger.WithContext("error", err.Error()).Error("substring search failed")
		return "", OutcomeError
	}
	if ok {
		logger.Debug("substring match")
		return entry.Answer, OutcomeSubstring
	}

	entries, err := s.store.Entries(ctx)
	if err != nil {
		logger.WithContext("error", err.Error()).Error("failed to load entries for best match")
		return "", OutcomeError
	}

	if answer, score := bestMatch(q, entries); score > 0 {
		logger.WithContext("score", score).Debug("best match")
		return answer, OutcomeBestMatch
	}

	logger.Debug("no knowledge match")
	return "", OutcomeMiss
}

// bestMatch scores each entry by how many query words appear among its
// normalized question words. Every word counts, short ones included. The
// first entry with the highest score wins.
func bestMatch(q string, entries []Entry) (string, int) {
	terms := strings.Fields(q)

	best, bestScore := "", 0
	for _, e := range entries {
		words := make(map[string]struct{})
		for _, w := range strings.Fields(Normalize(e.Question)) {
			words[w] = struct{}{}
		}

		score := 0
		for _, t := range terms {
			if _, ok := words[t]; ok {
				score++
			}
		}
		if score > bestScore {
			best, bestScore = e.Answer, score
		}
	}
	return best, bestScore
}
