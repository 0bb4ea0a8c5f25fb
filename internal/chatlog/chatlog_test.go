package chatlog

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLog(t *testing.T) *Log {
	t.Helper()
	return New(filepath.Join(t.TempDir(), "logs", "chat_logs.txt"))
}

func TestAppendAndTail(t *testing.T) {
	l := newTestLog(t)
	for i := 1; i <= 5; i++ {
		require.NoError(t, l.Append(Record{TS: int64(i), Message: fmt.Sprintf("m%d", i), Lang: "en", Reply: "r", Intent: "general"}))
	}

	recs, err := l.Tail(3)
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, "m3", recs[0].Message)
	assert.Equal(t, "m5", recs[2].Message)

	recs, err = l.Tail(100)
	require.NoError(t, err)
	assert.Len(t, recs, 5)
}

func TestAppend_DoesNotEscapeHTML(t *testing.T) {
	l := newTestLog(t)
	require.NoError(t, l.Append(Record{TS: 1, Message: "<b>maize</b> & beans", Lang: "en"}))

	data, err := os.ReadFile(l.Path())
	require.NoError(t, err)
	assert.Contains(t, string(data), "<b>maize</b> & beans")
	assert.Equal(t, 1, strings.Count(string(data), "\n"))
}

func TestTail_MissingFile(t *testing.T) {
	recs, err := newTestLog(t).Tail(10)
	require.NoError(t, err)
	assert.NotNil(t, recs)
	assert.Empty(t, recs)
}

func TestTail_SkipsMalformedLines(t *testing.T) {
	l := newTestLog(t)
	require.NoError(t, l.Append(Record{TS: 1, Message: "good"}))

	f, err := os.OpenFile(l.Path(), os.O_APPEND|os.O_WRONLY, 0644)
	require.NoError(t, err)
	_, err = f.WriteString("{not json\n\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	require.NoError(t, l.Append(Record{TS: 2, Message: "also good"}))

	recs, err := l.Tail(10)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "also good", recs[1].Message)

	// the window counts the malformed line
	recs, err = l.Tail(2)
	require.NoError(t, err)
	assert.Len(t, recs, 1)
}

func TestExport(t *testing.T) {
	l := newTestLog(t)
	require.NoError(t, l.Append(Record{TS: 1700000000, Message: "hello, farm", Lang: "en", Reply: "Hi!", Intent: "general"}))
	require.NoError(t, l.Append(Record{TS: 1700000060, Message: "hola", Lang: "es", Reply: "¡Hola!", Intent: "general"}))

	var buf bytes.Buffer
	n, err := l.Export(&buf)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"timestamp", "message", "language", "reply"},
		{"1700000000", "hello, farm", "en", "Hi!"},
		{"1700000060", "hola", "es", "¡Hola!"},
	}, rows)
}

func TestExport_Empty(t *testing.T) {
	l := newTestLog(t)

	var buf bytes.Buffer
	_, err := l.Export(&buf)
	assert.ErrorIs(t, err, ErrNoLog)

	require.NoError(t, os.MkdirAll(filepath.Dir(l.Path()), 0755))
	require.NoError(t, os.WriteFile(l.Path(), []byte("garbage\n"), 0644))
	_, err = l.Export(&buf)
	assert.ErrorIs(t, err, ErrNoData)
	assert.Zero(t, buf.Len())
}

func TestAppend_Concurrent(t *testing.T) {
	l := newTestLog(t)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, l.Append(Record{TS: int64(i), Message: strings.Repeat("x", 500)}))
		}(i)
	}
	wg.Wait()

	recs, err := l.All()
	require.NoError(t, err)
	assert.Len(t, recs, 20)
}
