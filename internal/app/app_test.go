package app

import (
	"context"
	"path/filepath"
	"testing"

	"agrichat/internal/auth"
	"agrichat/internal/chat"
	"agrichat/internal/config"
	"agrichat/internal/ingest"
	"agrichat/internal/store"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg, err := config.Load(filepath.Join(dir, "missing.yaml"))
	require.NoError(t, err)
	cfg.Database.Path = filepath.Join(dir, "agrichat.db")
	cfg.ChatLog.Path = filepath.Join(dir, "chat_logs.txt")
	return cfg
}

func newServices(t *testing.T, cfg *config.Config) *Services {
	t.Helper()
	svc, err := New(context.Background(), cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { svc.Close() })
	return svc
}

func TestNew_BootstrapsAdmin(t *testing.T) {
	cfg := testConfig(t)
	svc := newServices(t, cfg)
	ctx := context.Background()

	s, err := svc.Auth.Login(ctx, "admin", "admin123", true)
	require.NoError(t, err)
	assert.Equal(t, auth.RoleAdmin, s.Role)

	u, err := svc.Store.GetUserByUsername(ctx, "admin")
	require.NoError(t, err)
	assert.Equal(t, "admin@example.com", u.Email)
	require.NoError(t, svc.Close())

	// a second start keeps the single admin row
	again := newServices(t, cfg)
	n, err := again.Store.CountUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestServices_ChatUsesKnowledgeBase(t *testing.T) {
	svc := newServices(t, testConfig(t))
	ctx := context.Background()

	_, err := svc.Store.CreateKnowledge(ctx, store.KnowledgeInput{
		Question: "How do I plant maize?",
		Answer:   "Plant in rows 75cm apart.",
	})
	require.NoError(t, err)

	resp := svc.Chat.Respond(ctx, chat.Request{Message: "how do i plant maize?", Language: "auto"})
	assert.Equal(t, "Plant in rows 75cm apart.", resp.Reply)

	recs, err := svc.ChatLog.Tail(10)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "how do i plant maize?", recs[0].Message)
}

func TestServices_SeedAndImport(t *testing.T) {
	svc := newServices(t, testConfig(t))
	ctx := context.Background()

	res, err := svc.Importer.Seed(ctx, svc.Auth)
	require.NoError(t, err)
	assert.Equal(t, 5, res.Added)

	_, err = svc.Auth.Login(ctx, ingest.DemoUsername, ingest.DemoPassword, false)
	require.NoError(t, err)

	entries, err := svc.Store.ListKnowledge(ctx, "harvest", 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "harvest", entries[0].Intent)
	assert.Equal(t, "english", entries[0].Language)
}

func TestUserAdapter_MapsErrors(t *testing.T) {
	svc := newServices(t, testConfig(t))
	ua := userAdapter{svc.Store}
	ctx := context.Background()

	_, err := ua.GetUserByUsername(ctx, "ghost")
	assert.ErrorIs(t, err, auth.ErrUserNotFound)

	_, err = ua.CreateUser(ctx, "admin", "", "x", "farmer")
	assert.ErrorIs(t, err, auth.ErrUsernameTaken)

	_, err = ua.CreateUser(ctx, "other", "admin@example.com", "x", "farmer")
	assert.ErrorIs(t, err, auth.ErrEmailTaken)
}

func TestNew_RedisSessions(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig(t)
	cfg.Auth.SessionStore = "redis"
	cfg.Redis.Addr = mr.Addr()

	svc := newServices(t, cfg)
	s, err := svc.Auth.Login(context.Background(), "admin", "admin123", true)
	require.NoError(t, err)
	assert.True(t, mr.Exists(cfg.Redis.KeyPrefix+s.Token))
}

func TestNew_RedisUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	cfg := testConfig(t)
	cfg.Auth.SessionStore = "redis"
	cfg.Redis.Addr = addr

	_, err := New(context.Background(), cfg, zaptest.NewLogger(t))
	assert.Error(t, err)
}
