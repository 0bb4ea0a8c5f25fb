package store

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "agrichat.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestNewStore_CreatesDirectoryAndIsReopenable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "db", "agrichat.db")

	s, err := NewStore(path)
	require.NoError(t, err)
	_, err = s.CreateKnowledge(context.Background(), KnowledgeInput{Question: "q", Answer: "a"})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	// Migrations are idempotent on an existing file.
	s, err = NewStore(path)
	require.NoError(t, err)
	defer s.Close()

	n, err := s.CountKnowledge(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestMigrations_UpgradeLegacyUsersTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "legacy.db")

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT UNIQUE NOT NULL,
		email TEXT UNIQUE NOT NULL,
		password TEXT NOT NULL
	)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO users (username, email, password) VALUES ('old', 'old@farm.test', 'x')`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	s, err := NewStore(path)
	require.NoError(t, err)
	defer s.Close()

	u, err := s.GetUserByUsername(context.Background(), "old")
	require.NoError(t, err)
	assert.Equal(t, RoleFarmer, u.Role)
	assert.True(t, u.CreatedAt.IsZero())
}
