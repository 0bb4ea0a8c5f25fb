package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

const knowledgeColumns = `id, question, answer, intent, crop, language, topic`

// Normalized trims every field and applies defaults: intent "general",
// language "english".
func (in KnowledgeInput) Normalized() KnowledgeInput {
	out := KnowledgeInput{
		Question: strings.TrimSpace(in.Question),
		Answer:   strings.TrimSpace(in.Answer),
		Intent:   strings.TrimSpace(in.Intent),
		Crop:     strings.TrimSpace(in.Crop),
		Language: strings.TrimSpace(in.Language),
		Topic:    strings.TrimSpace(in.Topic),
	}
	if out.Intent == "" {
		out.Intent = "general"
	}
	if out.Language == "" {
		out.Language = "english"
	}
	return out
}

// nullable stores empty strings as NULL.
func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanKnowledge(row rowScanner) (*KnowledgeEntry, error) {
	var (
		e           KnowledgeEntry
		crop, topic sql.NullString
	)
	if err := row.Scan(&e.ID, &e.Question, &e.Answer, &e.Intent, &crop, &e.Language, &topic); err != nil {
		return nil, err
	}
	if crop.Valid {
		e.Crop = &crop.String
	}
	if topic.Valid {
		e.Topic = &topic.String
	}
	return &e, nil
}

func collectKnowledge(rows *sql.Rows) ([]KnowledgeEntry, error) {
	defer rows.Close()

	entries := []KnowledgeEntry{}
	for rows.Next() {
		e, err := scanKnowledge(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan knowledge entry: %w", err)
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

// likePattern escapes LIKE wildcards in s and wraps it in %...%.
func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}

// CreateKnowledge inserts a normalized entry and returns its id
func (s *Store) CreateKnowledge(ctx context.Context, in KnowledgeInput) (int64, error) {
	in = in.Normalized()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO knowledge (question, answer, intent, crop, language, topic) VALUES (?, ?, ?, ?, ?, ?)`,
		in.Question, in.Answer, in.Intent, nullable(in.Crop), in.Language, nullable(in.Topic),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to create knowledge entry: %w", err)
	}
	return res.LastInsertId()
}

// GetKnowledge returns the entry with id or ErrNotFound
func (s *Store) GetKnowledge(ctx context.Context, id int64) (*KnowledgeEntry, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+knowledgeColumns+` FROM knowledge WHERE id = ?`, id)
	e, err := scanKnowledge(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get knowledge entry: %w", err)
	}
	return e, nil
}

// UpdateKnowledge replaces every field of entry id
func (s *Store) UpdateKnowledge(ctx context.Context, id int64, in KnowledgeInput) error {
	in = in.Normalized()
	res, err := s.db.ExecContext(ctx,
		`UPDATE knowledge SET question = ?, answer = ?, intent = ?, crop = ?, language = ?, topic = ? WHERE id = ?`,
		in.Question, in.Answer, in.Intent, nullable(in.Crop), in.Language, nullable(in.Topic), id,
	)
	if err != nil {
		return fmt.Errorf("failed to update knowledge entry: %w", err)
	}
	return requireAffected(res)
}

// DeleteKnowledge removes entry id
func (s *Store) DeleteKnowledge(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM knowledge WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete knowledge entry: %w", err)
	}
	return requireAffected(res)
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListKnowledge returns entries newest first. A non-empty query filters on
// question by case-insensitive substring. limit is capped at
// MaxKnowledgeList; zero or negative means the cap.
func (s *Store) ListKnowledge(ctx context.Context, query string, limit int) ([]KnowledgeEntry, error) {
	if limit <= 0 || limit > MaxKnowledgeList {
		limit = MaxKnowledgeList
	}

	var (
		rows *sql.Rows
		err  error
	)
	query = strings.TrimSpace(query)
	if query == "" {
		rows, err = s.db.QueryContext(ctx,
			`SELECT `+knowledgeColumns+` FROM knowledge ORDER BY id DESC LIMIT ?`, limit)
	} else {
		rows, err = s.db.QueryContext(ctx,
			`SELECT `+knowledgeColumns+` FROM knowledge WHERE lower(question) LIKE lower(?) ESCAPE '\' ORDER BY id DESC LIMIT ?`,
			likePattern(query), limit)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list knowledge: %w", err)
	}
	return collectKnowledge(rows)
}

// FindByQuestionSubstring returns the first entry, in table order, whose
// question contains q case-insensitively, or ErrNotFound.
func (s *Store) FindByQuestionSubstring(ctx context.Context, q string) (*KnowledgeEntry, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+knowledgeColumns+` FROM knowledge WHERE lower(question) LIKE lower(?) ESCAPE '\' ORDER BY id LIMIT 1`,
		likePattern(q))
	e, err := scanKnowledge(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to search knowledge: %w", err)
	}
	return e, nil
}

// AllKnowledge returns every entry in table order.
func (s *Store) AllKnowledge(ctx context.Context) ([]KnowledgeEntry, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+knowledgeColumns+` FROM knowledge ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to load knowledge: %w", err)
	}
	return collectKnowledge(rows)
}

// QuestionExists reports whether a question equal to q, ignoring case and
// surrounding space, is already stored.
func (s *Store) QuestionExists(ctx context.Context, q string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM knowledge WHERE lower(trim(question)) = lower(trim(?)))`, q,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check question: %w", err)
	}
	return exists, nil
}

// CountKnowledge returns the number of stored entries.
func (s *Store) CountKnowledge(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM knowledge`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count knowledge: %w", err)
	}
	return n, nil
}

// DeleteKnowledgeByAnswer removes entries whose answer contains substr,
// ignoring case, and returns how many were deleted.
func (s *Store) DeleteKnowledgeByAnswer(ctx context.Context, substr string) (int64, error) {
	if strings.TrimSpace(substr) == "" {
		return 0, fmt.Errorf("substring must not be empty")
	}
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM knowledge WHERE lower(answer) LIKE lower(?) ESCAPE '\'`, likePattern(substr))
	if err != nil {
		return 0, fmt.Errorf("failed to prune knowledge: %w", err)
	}
	return res.RowsAffected()
}
