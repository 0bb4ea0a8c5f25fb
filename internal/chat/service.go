// Package chat runs a single chat exchange: language and intent detection,
// reply generation, logging and live notification.
package chat

import (
	"context"
	"fmt"
	"strings"
	"time"

	"agrichat/internal/chatlog"
	"agrichat/internal/classify"
	"agrichat/internal/logging"
)

// Fixed replies
const (
	EmptyMessageReply = "Please send a message."
	ErrorReply        = "Sorry, I encountered an error. Please try again."
	IntentError       = "error"
	LanguageAuto      = "auto"
)

// Request is one incoming chat message
type Request struct {
	Message  string
	Language string // "auto" or empty means detect
}

// Response is the reply sent back to the client
type Response struct {
	Reply    string `json:"reply"`
	Intent   string `json:"intent"`
	Language string `json:"language"`
}

// Generator produces reply text
type Generator interface {
	Generate(ctx context.Context, message, intent, lang string) string
}

// Log persists exchanges
type Log interface {
	Append(rec chatlog.Record) error
}

// Notifier is told about every logged exchange
type Notifier interface {
	Notify(rec chatlog.Record)
}

// Recorder counts replies
type Recorder interface {
	RecordReply(intent, lang string)
}

// Service answers chat messages. Respond never returns an error; failures
// become a fixed apology.
type Service struct {
	generator Generator
	log       Log
	notifier  Notifier
	recorder  Recorder
	logger    *logging.Logger
	now       func() time.Time
}

// Option configures a Service
type Option func(*Service)

// WithNotifier sends each logged record to n.
func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

// WithRecorder counts replies in r.
func WithRecorder(r Recorder) Option {
	return func(s *Service) { s.recorder = r }
}

// WithClock replaces the time source for record timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a chat Service
func NewService(generator Generator, log Log, logger *logging.Logger, opts ...Option) *Service {
	s := &Service{
		generator: generator,
		log:       log,
		logger:    logger,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Respond handles one message.
func (s *Service) Respond(ctx context.Context, req Request) (resp Response) {
	msg := strings.TrimSpace(req.Message)
	if msg == "" {
		return Response{Reply: EmptyMessageReply, Intent: classify.IntentGeneral, Language: classify.English}
	}

	defer func() {
		if r := recover(); r != nil {
			s.logger.WithContext("panic", fmt.Sprint(r)).Error("chat handler panicked")
			resp = Response{Reply: ErrorReply, Intent: IntentError, Language: classify.English}
		}
	}()

	lang := strings.ToLower(strings.TrimSpace(req.Language))
	if lang == "" || lang == LanguageAuto {
		lang = classify.DetectLanguage(msg)
	}
	intent := classify.DetectIntent(msg)
	reply := s.generator.Generate(ctx, msg, intent, lang)

	if s.recorder != nil {
		s.recorder.RecordReply(intent, lang)
	}

	rec := chatlog.Record{
		TS:      s.now().Unix(),
		Message: msg,
		Lang:    lang,
		Reply:   reply,
		Intent:  intent,
	}
	if err := s.log.Append(rec); err != nil {
		// the reply still goes out
		s.logger.Warn("chat log error: %v", err)
	} else if s.notifier != nil {
		s.notifier.Notify(rec)
	}

	s.logger.WithFields(map[string]interface{}{
		"intent": intent,
		"lang":   lang,
	}).Debug("answered chat message")

	return Response{Reply: reply, Intent: intent, Language: lang}
}
