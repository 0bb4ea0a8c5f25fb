package reply

import (
	"context"
	"strings"
	"testing"

	"agrichat/internal/classify"

	"github.com/stretchr/testify/assert"
)

// stubSearcher answers from a fixed map keyed by exact message
type stubSearcher struct {
	answers map[string]string
	calls   []string
}

func (s *stubSearcher) Search(ctx context.Context, question string) (string, bool) {
	s.calls = append(s.calls, question)
	a, ok := s.answers[question]
	return a, ok
}

func generate(g *Generator, msg string) string {
	return g.Generate(context.Background(), msg, classify.DetectIntent(msg), classify.DetectLanguage(msg))
}

func TestGenerate_DiseaseElaborationForTomato(t *testing.T) {
	g := NewGenerator(&stubSearcher{})

	reply := g.Generate(context.Background(), "How do I fix tomato disease", classify.IntentDisease, classify.English)

	assert.Contains(t, reply, "fungicide")
	assert.Contains(t, reply, "Treat")
}

func TestGenerate_Greetings(t *testing.T) {
	g := NewGenerator(&stubSearcher{})

	assert.Equal(t, greetingReplies[classify.English], generate(g, "Hello!"))
	assert.Equal(t, greetingReplies[classify.Swahili], generate(g, "Habari"))
	assert.Equal(t, greetingReplies[classify.Luganda], generate(g, "Oli otya"))
	assert.Equal(t, greetingReplies[classify.French], generate(g, "Bonjour"))
}

func TestGenerate_GreetingFallsBackToEnglish(t *testing.T) {
	g := NewGenerator(&stubSearcher{})
	assert.Equal(t, greetingReplies[classify.English],
		g.Generate(context.Background(), "hi", classify.IntentGeneral, "de"))
}

func TestGenerate_GreetingWinsInLongMessage(t *testing.T) {
	st := &stubSearcher{}
	g := NewGenerator(st)

	assert.Equal(t, greetingReplies[classify.English],
		generate(g, "hello there my friend I am a farmer from Gulu"))
	assert.Equal(t, greetingReplies[classify.English],
		generate(g, "hi, how do I stop armyworm damage on my maize leaves?"))
	assert.Empty(t, st.calls, "greeting short-circuits before search")
}

func TestGenerate_CourtesyWinsInLongMessage(t *testing.T) {
	g := NewGenerator(&stubSearcher{})
	assert.Equal(t, thanksReplies[classify.English],
		generate(g, "thanks, the advice on spacing my beans worked really well this season"))
}

func TestGenerate_GreetingNeedsWordBoundary(t *testing.T) {
	g := NewGenerator(&stubSearcher{})
	// "this" contains "hi" but is not a greeting.
	assert.NotEqual(t, greetingReplies[classify.English], generate(g, "this"))
}

func TestGenerate_Courtesy(t *testing.T) {
	g := NewGenerator(&stubSearcher{})
	assert.Equal(t, thanksReplies[classify.English], generate(g, "Thanks a lot"))
	assert.Equal(t, thanksReplies[classify.Swahili],
		g.Generate(context.Background(), "asante sana", classify.IntentGeneral, classify.Swahili))
}

func TestGenerate_Polarity(t *testing.T) {
	g := NewGenerator(&stubSearcher{})
	assert.Equal(t, yesReplies[classify.English], generate(g, "Yes"))
	assert.Equal(t, noReplies[classify.English], generate(g, "no."))
	// "no" inside a sentence is not a polarity answer.
	assert.NotEqual(t, noReplies[classify.English], generate(g, "no rain for weeks"))
}

func TestGenerate_QuestionUsesKnowledgeFirst(t *testing.T) {
	st := &stubSearcher{answers: map[string]string{
		"How do I fix tomato disease?": "stored answer",
	}}
	g := NewGenerator(st)

	assert.Equal(t, "stored answer", generate(g, "How do I fix tomato disease?"))
}

func TestGenerate_IntentPromptWithoutSubtopic(t *testing.T) {
	g := NewGenerator(&stubSearcher{})
	reply := g.Generate(context.Background(), "something is damaging my field", classify.IntentDisease, classify.Spanish)
	assert.Equal(t, intentAdvice[classify.IntentDisease].prompt[classify.Spanish], reply)
}

func TestGenerate_EveryIntentHasEnglishPrompt(t *testing.T) {
	for _, intent := range classify.Intents() {
		if intent == classify.IntentGeneral {
			continue
		}
		adv, ok := intentAdvice[intent]
		if assert.True(t, ok, intent) {
			assert.NotEmpty(t, adv.prompt[classify.English], intent)
			assert.GreaterOrEqual(t, len(adv.topics), 2, intent)
			for _, tp := range adv.topics {
				assert.NotEmpty(t, tp.text[classify.English], intent)
			}
		}
	}
}

func TestGenerate_GeneralRedirect(t *testing.T) {
	g := NewGenerator(&stubSearcher{})
	reply := generate(g, "I want to start growing onions")
	assert.Equal(t, generalRedirects[0].text[classify.English], reply)
}

func TestGenerate_GeneralRedirectsWithExplicitIntent(t *testing.T) {
	g := NewGenerator(&stubSearcher{})
	ctx := context.Background()

	assert.Equal(t, generalRedirects[1].text[classify.English],
		g.Generate(ctx, "my soil looks pale", classify.IntentGeneral, classify.English))
	assert.Equal(t, generalRedirects[2].text[classify.English],
		g.Generate(ctx, "a pest is here", classify.IntentGeneral, classify.English))

	// through classification the same words land on their intents
	assert.Equal(t, classify.IntentFertilizer, classify.DetectIntent("my soil looks pale"))
	assert.Equal(t, classify.IntentDisease, classify.DetectIntent("a pest is here"))
}

func TestGenerate_FinalSearchThenFallback(t *testing.T) {
	st := &stubSearcher{answers: map[string]string{"tell me about goats": "Goats need shelter."}}
	g := NewGenerator(st)

	assert.Equal(t, "Goats need shelter.", generate(g, "tell me about goats"))
	assert.Equal(t, fallbackReplies[classify.English], generate(g, "tell me about bicycles"))
}

func TestGenerate_QuestionSearchedOnlyOnce(t *testing.T) {
	st := &stubSearcher{}
	g := NewGenerator(st)

	reply := generate(g, "what about bicycles?")
	assert.Equal(t, fallbackReplies[classify.English], reply)
	assert.Len(t, st.calls, 1)
}

func TestLocalizedTablesHaveEnglish(t *testing.T) {
	for name, m := range map[string]map[string]string{
		"greeting": greetingReplies,
		"thanks":   thanksReplies,
		"yes":      yesReplies,
		"no":       noReplies,
		"fallback": fallbackReplies,
	} {
		assert.NotEmpty(t, m[classify.English], name)
	}
}

func TestTokenize(t *testing.T) {
	assert.Equal(t, " hello there ", tokenize("Hello,   there!"))
	assert.Equal(t, " what's up ", tokenize("What's up?"))
	assert.True(t, strings.HasPrefix(tokenize("नमस्ते"), " नमस्ते"))
}
