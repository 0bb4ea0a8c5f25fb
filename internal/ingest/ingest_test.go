package ingest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"agrichat/internal/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// memStore implements Store in memory
type memStore struct {
	mu      sync.Mutex
	entries []Entry
	addErr  error
}

func (m *memStore) QuestionExists(ctx context.Context, q string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.entries {
		if strings.EqualFold(strings.TrimSpace(e.Question), strings.TrimSpace(q)) {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) AddEntry(ctx context.Context, e Entry) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.addErr != nil {
		return 0, m.addErr
	}
	m.entries = append(m.entries, e)
	return int64(len(m.entries)), nil
}

func newImporter(t *testing.T, st Store) *Importer {
	return NewImporter(st, logging.New("ingest", zaptest.NewLogger(t)))
}

func TestImportCSV(t *testing.T) {
	st := &memStore{entries: []Entry{{Question: "how do i plant maize?", Answer: "old"}}}
	imp := newImporter(t, st)

	csvData := "\ufeffQuestion,Answer,Crop\n" +
		"How do I plant maize?,Rows of 75cm,maize\n" +
		"  What kills aphids?  ,\"Neem oil, soap spray\",beans\n" +
		"what kills APHIDS?,duplicate in file,\n" +
		",no question,\n" +
		"No answer here,,\n" +
		"When to weed cassava,Three weeks after planting\n"

	res, err := imp.ImportCSV(context.Background(), strings.NewReader(csvData), "faq.csv")
	require.NoError(t, err)
	assert.Equal(t, Result{Added: 2, Duplicates: 2, Skipped: 2}, res)

	require.Len(t, st.entries, 3)
	assert.Equal(t, Entry{Question: "what kills aphids?", Answer: "Neem oil, soap spray", Crop: "beans"}, st.entries[1])
	assert.Equal(t, "when to weed cassava", st.entries[2].Question)
}

func TestImportCSV_OptionalColumns(t *testing.T) {
	st := &memStore{}
	imp := newImporter(t, st)

	csvData := "answer,QUESTION,intent,language,topic\n" +
		"Spray copper,How to treat blight,disease,english,tomato care\n"

	res, err := imp.ImportCSV(context.Background(), strings.NewReader(csvData), "x.csv")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Added)
	assert.Equal(t, Entry{
		Question: "how to treat blight",
		Answer:   "Spray copper",
		Intent:   "disease",
		Language: "english",
		Topic:    "tomato care",
	}, st.entries[0])
}

func TestImportCSV_MissingColumns(t *testing.T) {
	imp := newImporter(t, &memStore{})

	_, err := imp.ImportCSV(context.Background(), strings.NewReader("q,a\nx,y\n"), "bad.csv")
	assert.ErrorIs(t, err, ErrMissingColumns)

	_, err = imp.ImportCSV(context.Background(), strings.NewReader(""), "empty.csv")
	assert.ErrorIs(t, err, ErrMissingColumns)
}

func TestImportCSV_StoreError(t *testing.T) {
	imp := newImporter(t, &memStore{addErr: errors.New("database is locked")})

	_, err := imp.ImportCSV(context.Background(), strings.NewReader("Question,Answer\na,b\n"), "x.csv")
	assert.ErrorContains(t, err, "database is locked")
}

func TestImportFile(t *testing.T) {
	dir := t.TempDir()
	st := &memStore{}
	imp := newImporter(t, st)

	path := filepath.Join(dir, "dataset.CSV")
	require.NoError(t, os.WriteFile(path, []byte("Question,Answer\nWhat is NPK?,Nitrogen phosphorus potassium\n"), 0644))

	res, err := imp.ImportFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Added)

	txt := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(txt, []byte("hello"), 0644))
	_, err = imp.ImportFile(context.Background(), txt)
	assert.ErrorIs(t, err, ErrUnsupportedFile)

	_, err = imp.ImportFile(context.Background(), filepath.Join(dir, "missing.csv"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestIsImportable(t *testing.T) {
	assert.True(t, IsImportable("a.csv"))
	assert.True(t, IsImportable("/x/y/B.Csv"))
	assert.False(t, IsImportable("a.csv.swp"))
	assert.False(t, IsImportable("a"))
}

type usersSpy struct {
	calls []string
}

func (u *usersSpy) EnsureUser(ctx context.Context, username, email, password, role string) error {
	u.calls = append(u.calls, username+"/"+email+"/"+role)
	return nil
}

func TestSeed(t *testing.T) {
	st := &memStore{entries: []Entry{{Question: "how often should i water my crops?", Answer: "kept"}}}
	imp := newImporter(t, st)
	users := &usersSpy{}

	res, err := imp.Seed(context.Background(), users)
	require.NoError(t, err)
	assert.Equal(t, Result{Added: 4, Duplicates: 1}, res)
	assert.Equal(t, []string{"demo/demo@farming.ai/farmer"}, users.calls)
	assert.Equal(t, "kept", st.entries[0].Answer)

	intents := map[string]bool{}
	for _, e := range DemoEntries() {
		intents[e.Intent] = true
	}
	assert.Len(t, intents, 5)

	res, err = imp.Seed(context.Background(), users)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Added)
}
