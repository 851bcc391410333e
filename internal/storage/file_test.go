package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileRecorder_AppendAndLoad(t *testing.T) {
	p := filepath.Join(t.TempDir(), "logs", "events.jsonl")
	rec, err := NewFileRecorder(p)
	require.NoError(t, err)

	ev1 := Event{Timestamp: time.Unix(1, 0).UTC(), UserID: 1, Action: ActionQuestion, Question: "Two Sum", State: "awaiting_answer"}
	ev2 := Event{Timestamp: time.Unix(2, 0).UTC(), UserID: 1, Action: ActionAnswer, UserMessage: "42", State: "idle"}
	require.NoError(t, rec.AppendInteraction(ev1))
	require.NoError(t, rec.AppendInteraction(ev2))

	events, err := rec.LoadInteractions()
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, ev1, events[0])
	assert.Equal(t, ev2, events[1])
}

func TestFileRecorder_StampsMissingTimestamp(t *testing.T) {
	rec, err := NewFileRecorder(filepath.Join(t.TempDir(), "events.jsonl"))
	require.NoError(t, err)

	require.NoError(t, rec.AppendInteraction(Event{UserID: 3, Action: ActionMenu}))

	events, err := rec.LoadInteractions()
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.False(t, events[0].Timestamp.IsZero())
}

func TestFileRecorder_SkipsCorruptLines(t *testing.T) {
	p := filepath.Join(t.TempDir(), "events.jsonl")
	require.NoError(t, os.WriteFile(p, []byte("{not json}\n\n{\"user_id\":9,\"action\":\"about\"}\n"), 0o644))

	rec, err := NewFileRecorder(p)
	require.NoError(t, err)
	events, err := rec.LoadInteractions()
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, int64(9), events[0].UserID)
	assert.Equal(t, ActionAbout, events[0].Action)
}
