package app

import (
	"context"
	"errors"

	"agrichat/internal/auth"
	"agrichat/internal/ingest"
	"agrichat/internal/knowledge"
	"agrichat/internal/store"
)

// knowledgeAdapter adapts store.Store to the knowledge.Store interface
type knowledgeAdapter struct {
	store *store.Store
}

func (ka knowledgeAdapter) FindByQuestion(ctx context.Context, q string) (knowledge.Entry, bool, error) {
	e, err := ka.store.FindByQuestionSubstring(ctx, q)
	if errors.Is(err, store.ErrNotFound) {
		return knowledge.Entry{}, false, nil
	}
	if err != nil {
		return knowledge.Entry{}, false, err
	}
	return knowledge.Entry{Question: e.Question, Answer: e.Answer}, true, nil
}

func (ka knowledgeAdapter) Entries(ctx context.Context) ([]knowledge.Entry, error) {
	rows, err := ka.store.AllKnowledge(ctx)
	if err != nil {
		return nil, err
	}

	entries := make([]knowledge.Entry, len(rows))
	for i, r := range rows {
		entries[i] = knowledge.Entry{Question: r.Question, Answer: r.Answer}
	}
	return entries, nil
}

// userAdapter adapts store.Store to the auth.UserStore interface
type userAdapter struct {
	store *store.Store
}

func (ua userAdapter) GetUserByUsername(ctx context.Context, username string) (*auth.User, error) {
	u, err := ua.store.GetUserByUsername(ctx, username)
	if errors.Is(err, store.ErrNotFound) {
		return nil, auth.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &auth.User{
		ID:           u.ID,
		Username:     u.Username,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Role:         u.Role,
	}, nil
}

func (ua userAdapter) CreateUser(ctx context.Context, username, email, passwordHash, role string) (int64, error) {
	id, err := ua.store.CreateUser(ctx, username, email, passwordHash, role)
	switch {
	case errors.Is(err, store.ErrUsernameTaken):
		return 0, auth.ErrUsernameTaken
	case errors.Is(err, store.ErrEmailTaken):
		return 0, auth.ErrEmailTaken
	}
	return id, err
}

// importAdapter adapts store.Store to the ingest.Store interface
type importAdapter struct {
	store *store.Store
}

func (ia importAdapter) QuestionExists(ctx context.Context, question string) (bool, error) {
	return ia.store.QuestionExists(ctx, question)
}

func (ia importAdapter) AddEntry(ctx context.Context, e ingest.Entry) (int64, error) {
	return ia.store.CreateKnowledge(ctx, store.KnowledgeInput{
		Question: e.Question,
		Answer:   e.Answer,
		Intent:   e.Intent,
		Crop:     e.Crop,
		Language: e.Language,
		Topic:    e.Topic,
	})
}
