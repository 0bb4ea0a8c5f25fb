package store

import (
	"context"
	"database/sql"
	"fmt"
)

// runMigrations executes all database migrations in a transaction
func (s *Store) runMigrations(ctx context.Context) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin migration transaction: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	if err = createKnowledgeTable(ctx, tx); err != nil {
		return fmt.Errorf("failed to create knowledge table: %w", err)
	}

	if err = createUsersTable(ctx, tx); err != nil {
		return fmt.Errorf("failed to create users table: %w", err)
	}

	// Databases created by the early users script lack these columns.
	if err = addColumnIfMissing(ctx, tx, "users", "role", "TEXT NOT NULL DEFAULT 'farmer'"); err != nil {
		return err
	}
	if err = addColumnIfMissing(ctx, tx, "users", "created_at", "TIMESTAMP"); err != nil {
		return err
	}
	if err = addColumnIfMissing(ctx, tx, "knowledge", "topic", "TEXT"); err != nil {
		return err
	}

	if err = createIndexes(ctx, tx); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit migration transaction: %w", err)
	}
	return nil
}

func createKnowledgeTable(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS knowledge (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			question TEXT NOT NULL,
			answer TEXT NOT NULL,
			intent TEXT NOT NULL DEFAULT 'general',
			crop TEXT,
			language TEXT NOT NULL DEFAULT 'english',
			topic TEXT
		)
	`)
	return err
}

// createUsersTable relies on UNIQUE constraints for username and email so
// concurrent signups cannot both claim the same name.
func createUsersTable(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			username TEXT UNIQUE NOT NULL,
			email TEXT UNIQUE,
			password TEXT NOT NULL,
			role TEXT NOT NULL DEFAULT 'farmer',
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	return err
}

func addColumnIfMissing(ctx context.Context, tx *sql.Tx, table, column, definition string) error {
	var exists bool
	err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) > 0 FROM pragma_table_info(?) WHERE name = ?`, table, column,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check %s.%s column: %w", table, column, err)
	}
	if exists {
		return nil
	}

	if _, err := tx.ExecContext(ctx, fmt.Sprintf(`ALTER TABLE %s ADD COLUMN %s %s`, table, column, definition)); err != nil {
		return fmt.Errorf("failed to add %s.%s column: %w", table, column, err)
	}
	return nil
}

func createIndexes(ctx context.Context, tx *sql.Tx) error {
	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_knowledge_question ON knowledge(question)`,
		`CREATE INDEX IF NOT EXISTS idx_knowledge_intent ON knowledge(intent)`,
		`CREATE INDEX IF NOT EXISTS idx_knowledge_crop ON knowledge(crop)`,
	}
	for _, q := range indexes {
		if _, err := tx.ExecContext(ctx, q); err != nil {
			return err
		}
	}
	return nil
}
