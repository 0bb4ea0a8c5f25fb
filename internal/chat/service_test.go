package chat

import (
	"context"
	"errors"
	"testing"
	"time"

	"agrichat/internal/chatlog"
	"agrichat/internal/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type stubGenerator struct {
	reply  string
	panics bool
	calls  int
	got    [3]string
}

func (g *stubGenerator) Generate(ctx context.Context, message, intent, lang string) string {
	g.calls++
	g.got = [3]string{message, intent, lang}
	if g.panics {
		panic("boom")
	}
	return g.reply
}

type memLog struct {
	records []chatlog.Record
	err     error
}

func (m *memLog) Append(rec chatlog.Record) error {
	if m.err != nil {
		return m.err
	}
	m.records = append(m.records, rec)
	return nil
}

type notifySpy []chatlog.Record

func (n *notifySpy) Notify(rec chatlog.Record) { *n = append(*n, rec) }

type replyCounter map[string]int

func (c replyCounter) RecordReply(intent, lang string) { c[intent+"/"+lang]++ }

func newService(t *testing.T, gen Generator, log Log, opts ...Option) *Service {
	fixed := time.Unix(1700000000, 0)
	opts = append([]Option{WithClock(func() time.Time { return fixed })}, opts...)
	return NewService(gen, log, logging.New("chat", zaptest.NewLogger(t)), opts...)
}

func TestRespond_EmptyMessage(t *testing.T) {
	gen := &stubGenerator{reply: "x"}
	log := &memLog{}
	s := newService(t, gen, log)

	for _, msg := range []string{"", "   ", "\n\t"} {
		resp := s.Respond(context.Background(), Request{Message: msg, Language: "es"})
		assert.Equal(t, Response{Reply: "Please send a message.", Intent: "general", Language: "en"}, resp)
	}
	assert.Zero(t, gen.calls)
	assert.Empty(t, log.records)
}

func TestRespond_DetectsAndLogs(t *testing.T) {
	gen := &stubGenerator{reply: "Use a fungicide."}
	log := &memLog{}
	spy := &notifySpy{}
	counts := replyCounter{}
	s := newService(t, gen, log, WithNotifier(spy), WithRecorder(counts))

	resp := s.Respond(context.Background(), Request{Message: "  How do I fix tomato disease  ", Language: "auto"})
	assert.Equal(t, Response{Reply: "Use a fungicide.", Intent: "disease", Language: "en"}, resp)
	assert.Equal(t, [3]string{"How do I fix tomato disease", "disease", "en"}, gen.got)

	require.Len(t, log.records, 1)
	assert.Equal(t, chatlog.Record{
		TS:      1700000000,
		Message: "How do I fix tomato disease",
		Lang:    "en",
		Reply:   "Use a fungicide.",
		Intent:  "disease",
	}, log.records[0])
	assert.Len(t, *spy, 1)
	assert.Equal(t, 1, counts["disease/en"])
}

func TestRespond_ExplicitLanguage(t *testing.T) {
	gen := &stubGenerator{reply: "ok"}
	s := newService(t, gen, &memLog{})

	resp := s.Respond(context.Background(), Request{Message: "hello", Language: "SW"})
	assert.Equal(t, "sw", resp.Language)

	resp = s.Respond(context.Background(), Request{Message: "Habari"})
	assert.Equal(t, "sw", resp.Language)
}

func TestRespond_LogFailureStillReplies(t *testing.T) {
	spy := &notifySpy{}
	s := newService(t, &stubGenerator{reply: "fine"}, &memLog{err: errors.New("disk full")}, WithNotifier(spy))

	resp := s.Respond(context.Background(), Request{Message: "water schedule"})
	assert.Equal(t, "fine", resp.Reply)
	assert.Equal(t, "irrigation", resp.Intent)
	assert.Empty(t, *spy)
}

func TestRespond_PanicBecomesApology(t *testing.T) {
	log := &memLog{}
	s := newService(t, &stubGenerator{panics: true}, log)

	resp := s.Respond(context.Background(), Request{Message: "pest problem"})
	assert.Equal(t, Response{Reply: ErrorReply, Intent: "error", Language: "en"}, resp)
	assert.Empty(t, log.records)
}
