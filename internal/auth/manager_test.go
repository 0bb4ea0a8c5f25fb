package auth

import (
	"context"
	"sync"
	"testing"
	"time"

	"agrichat/internal/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// memUsers is an in-memory UserStore
type memUsers struct {
	mu    sync.Mutex
	users map[string]*User
	next  int64
}

func newMemUsers() *memUsers {
	return &memUsers{users: make(map[string]*User)}
}

func (m *memUsers) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[username]
	if !ok {
		return nil, ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memUsers) CreateUser(ctx context.Context, username, email, hash, role string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[username]; ok {
		return 0, ErrUsernameTaken
	}
	for _, u := range m.users {
		if email != "" && u.Email == email {
			return 0, ErrEmailTaken
		}
	}
	m.next++
	m.users[username] = &User{ID: m.next, Username: username, Email: email, PasswordHash: hash, Role: role}
	return m.next, nil
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestManager(t *testing.T) (*Manager, *memUsers, *MemorySessionStore, *clock) {
	t.Helper()
	users := newMemUsers()
	sessions := NewMemorySessionStore()
	clk := &clock{now: time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)}
	m := NewManager(users, sessions, time.Hour, logging.New("auth", zaptest.NewLogger(t))).WithClock(clk.Now)
	return m, users, sessions, clk
}

func TestManager_AdminLoginAndVerify(t *testing.T) {
	m, _, _, _ := newTestManager(t)
	ctx := context.Background()
	require.NoError(t, m.EnsureAdmin(ctx, "admin@example.com", "admin123"))

	s, err := m.Login(ctx, "admin", "admin123", true)
	require.NoError(t, err)
	assert.NotEmpty(t, s.Token)
	assert.Equal(t, RoleAdmin, s.Role)

	got, err := m.Verify(ctx, s.Token)
	require.NoError(t, err)
	assert.Equal(t, "admin", got.Username)
}

func TestManager_LoginFailures(t *testing.T) {
	m, _, _, _ := newTestManager(t)
	ctx := context.Background()
	require.NoError(t, m.EnsureAdmin(ctx, "", "admin123"))
	_, err := m.Register(ctx, "farmer1", "f1@example.com", "secret1")
	require.NoError(t, err)

	_, err = m.Login(ctx, "admin", "wrong", true)
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = m.Login(ctx, "nobody", "admin123", false)
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = m.Login(ctx, "farmer1", "secret1", true)
	assert.ErrorIs(t, err, ErrNotAdmin)

	s, err := m.Login(ctx, "farmer1", "secret1", false)
	require.NoError(t, err)
	assert.Equal(t, RoleFarmer, s.Role)
}

func TestManager_TokensAreUnique(t *testing.T) {
	m, _, _, _ := newTestManager(t)
	ctx := context.Background()
	require.NoError(t, m.EnsureAdmin(ctx, "", "admin123"))

	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		s, err := m.Login(ctx, "admin", "admin123", true)
		require.NoError(t, err)
		assert.False(t, seen[s.Token])
		seen[s.Token] = true
	}
}

func TestManager_ExpiredTokenIsEvicted(t *testing.T) {
	m, _, sessions, clk := newTestManager(t)
	ctx := context.Background()
	require.NoError(t, m.EnsureAdmin(ctx, "", "admin123"))

	s, err := m.Login(ctx, "admin", "admin123", true)
	require.NoError(t, err)

	clk.Advance(59 * time.Minute)
	_, err = m.Verify(ctx, s.Token)
	require.NoError(t, err)
	assert.Equal(t, 1, sessions.Len())

	clk.Advance(time.Minute)
	_, err = m.Verify(ctx, s.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.Equal(t, 0, sessions.Len())
}

func TestManager_Logout(t *testing.T) {
	m, _, _, _ := newTestManager(t)
	ctx := context.Background()
	require.NoError(t, m.EnsureAdmin(ctx, "", "admin123"))

	s, err := m.Login(ctx, "admin", "admin123", true)
	require.NoError(t, err)

	require.NoError(t, m.Logout(ctx, s.Token))
	_, err = m.Verify(ctx, s.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	assert.NoError(t, m.Logout(ctx, "never-issued"))
	assert.NoError(t, m.Logout(ctx, ""))
}

func TestManager_EnsureAdminIsIdempotent(t *testing.T) {
	m, users, _, _ := newTestManager(t)
	ctx := context.Background()

	require.NoError(t, m.EnsureAdmin(ctx, "admin@example.com", "admin123"))
	first := users.users["admin"].PasswordHash

	require.NoError(t, m.EnsureAdmin(ctx, "admin@example.com", "changed"))
	assert.Len(t, users.users, 1)
	assert.Equal(t, first, users.users["admin"].PasswordHash)
}

func TestManager_RegisterCollisions(t *testing.T) {
	m, _, _, _ := newTestManager(t)
	ctx := context.Background()

	_, err := m.Register(ctx, "alice", "a@example.com", "secret1")
	require.NoError(t, err)

	_, err = m.Register(ctx, "alice", "other@example.com", "secret1")
	assert.ErrorIs(t, err, ErrUsernameTaken)

	_, err = m.Register(ctx, "bob", "a@example.com", "secret1")
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestManager_DefaultTTL(t *testing.T) {
	m := NewManager(newMemUsers(), NewMemorySessionStore(), 0, logging.New("auth", zaptest.NewLogger(t)))
	assert.Equal(t, 3*time.Hour, m.TTL())
}
