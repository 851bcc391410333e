package users

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock hands out the queued instants in order, repeating the last one.
type fakeClock struct{ times []time.Time }

func (c *fakeClock) Now() time.Time {
	t := c.times[0]
	if len(c.times) > 1 {
		c.times = c.times[1:]
	}
	return t
}

func newTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "users.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLiteTouch_FirstContactSetsBothDates(t *testing.T) {
	s := newTestSQLite(t)
	t0 := time.Date(2024, 3, 1, 10, 0, 0, 123456789, time.UTC)
	s.clock = (&fakeClock{times: []time.Time{t0}}).Now

	rec, err := s.Touch(context.Background(), 7)
	require.NoError(t, err)

	assert.Equal(t, int64(7), rec.ID)
	assert.True(t, rec.DateStarted.Equal(rec.DateLastUsed))
	assert.True(t, rec.DateStarted.Equal(t0.Truncate(time.Microsecond)))
}

func TestSQLiteTouch_PreservesStartAndAdvancesLastUsed(t *testing.T) {
	s := newTestSQLite(t)
	t0 := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	t1 := t0.Add(time.Hour)
	s.clock = (&fakeClock{times: []time.Time{t0, t1}}).Now
	ctx := context.Background()

	first, err := s.Touch(ctx, 1)
	require.NoError(t, err)
	second, err := s.Touch(ctx, 1)
	require.NoError(t, err)

	assert.True(t, second.DateStarted.Equal(first.DateStarted))
	assert.True(t, second.DateLastUsed.Equal(t1))
	assert.False(t, second.DateLastUsed.Before(first.DateLastUsed))
}

func TestSQLiteTouch_ClockGoingBackwardsKeepsLastUsed(t *testing.T) {
	s := newTestSQLite(t)
	t0 := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	s.clock = (&fakeClock{times: []time.Time{t0, t0.Add(-time.Minute)}}).Now
	ctx := context.Background()

	_, err := s.Touch(ctx, 1)
	require.NoError(t, err)
	rec, err := s.Touch(ctx, 1)
	require.NoError(t, err)

	assert.True(t, rec.DateLastUsed.Equal(t0))
	assert.False(t, rec.DateStarted.After(rec.DateLastUsed))
}

func TestSQLiteTouch_OneRecordPerIdentity(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := s.Touch(ctx, 5)
		require.NoError(t, err)
	}
	_, err := s.Touch(ctx, 6)
	require.NoError(t, err)

	var count int
	require.NoError(t, s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count))
	assert.Equal(t, 2, count)
}

func TestSQLiteGet(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	_, err := s.Get(ctx, 99)
	require.ErrorIs(t, err, ErrNotFound)

	touched, err := s.Touch(ctx, 99)
	require.NoError(t, err)
	got, err := s.Get(ctx, 99)
	require.NoError(t, err)
	assert.Equal(t, touched, got)
}

func TestSQLiteTouch_ClosedStoreReturnsStorageError(t *testing.T) {
	s := newTestSQLite(t)
	require.NoError(t, s.Close())

	_, err := s.Touch(context.Background(), 1)
	require.ErrorIs(t, err, ErrStorage)
}

func TestOpen_SelectsSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "bot.db")
	store, err := Open(context.Background(), "sqlite://"+path)
	require.NoError(t, err)
	defer store.Close()

	_, ok := store.(*SQLiteStore)
	assert.True(t, ok)
	require.NoError(t, store.Ping(context.Background()))
}

func TestOpen_EmptyDSN(t *testing.T) {
	_, err := Open(context.Background(), "")
	require.Error(t, err)
}

func TestSQLiteDSN_KeepsCallerQuery(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"bot.db", "bot.db?_pragma="},
		{"file:bot.db?mode=rwc", "file:bot.db?mode=rwc&_pragma="},
	}
	for _, tt := range tests {
		dsn := sqliteDSN(tt.path)
		assert.True(t, strings.HasPrefix(dsn, tt.want), dsn)
		assert.Equal(t, 1, strings.Count(dsn, "?"), dsn)
	}
}

func TestOpen_FileURIWithQuery(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "bot.db")
	store, err := Open(context.Background(), "file:"+path+"?mode=rwc")
	require.NoError(t, err)
	defer store.Close()

	_, err = store.Touch(context.Background(), 7)
	require.NoError(t, err)

	_, err = os.Stat(path)
	require.NoError(t, err)
}
