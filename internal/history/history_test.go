package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hayeah/jackdir/export"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "db", "history.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRecordAndRecent(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	s := openTestStore(t)

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	tick := 0
	s.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}

	for i, dest := range []string{"clipboard", "out.txt", "stdout"} {
		err := s.Record(ctx, export.Record{
			Root:        "proj",
			Destination: dest,
			Files:       i + 1,
			Bytes:       100 * (i + 1),
			Tokens:      25 * (i + 1),
			Message:     "done",
		})
		require.NoError(t, err)
	}

	entries, err := s.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal("stdout", entries[0].Destination)
	assert.Equal(3, entries[0].FileCount)
	assert.Equal(300, entries[0].Bytes)
	assert.Equal(75, entries[0].Tokens)
	assert.Equal("out.txt", entries[1].Destination)
}

func TestRecentEmpty(t *testing.T) {
	s := openTestStore(t)

	entries, err := s.Recent(context.Background(), 0)
	require.NoError(t, err)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)
}

func TestMigrateIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	require.NoError(t, s.Migrate(ctx))

	var n int
	require.NoError(t, s.DB.Get(&n, "SELECT COUNT(*) FROM migrations"))
	assert.Equal(t, len(migrations), n)
}

func TestStoreIsRecorder(t *testing.T) {
	var _ export.Recorder = (*Store)(nil)
}
