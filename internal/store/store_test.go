package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func entry(i int, dataset string) Entry {
	return Entry{
		TraceID:   fmt.Sprintf("trace-%03d", i),
		Dataset:   dataset,
		Question:  fmt.Sprintf("question %d", i),
		SQL:       "SELECT 1;",
		Answer:    fmt.Sprintf("answer %d", i),
		CreatedAt: time.Date(2026, 1, 2, 3, 4, 5, i, time.UTC),
	}
}

func TestOpen_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")

	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	_, err = os.Stat(path)
	assert.NoError(t, err, "database file was not created")
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")

	for i := 0; i < 3; i++ {
		s, err := Open(path)
		require.NoError(t, err, "Open() iteration %d", i)
		if i == 0 {
			_, err = s.Record(context.Background(), entry(1, "chinook"))
			require.NoError(t, err)
		}
		require.NoError(t, s.Close())
	}

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()
	got, err := reopened.Recent(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, got, 1, "history survives reopen")
}

func TestOpen_Pragmas(t *testing.T) {
	s := createTestStore(t)

	testCases := []struct{ name, want string }{
		{"journal_mode", "wal"},
		{"synchronous", "1"},
		{"busy_timeout", "5000"},
		{"foreign_keys", "1"},
		{"user_version", fmt.Sprint(currentSchemaVersion)},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.NoError(t, s.verifyPragma(tc.name, tc.want))
		})
	}
}

func TestRecord_AssignsIncreasingSeq(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	first, err := s.Record(ctx, entry(1, "chinook"))
	require.NoError(t, err)
	second, err := s.Record(ctx, entry(2, "chinook"))
	require.NoError(t, err)

	assert.Greater(t, second, first)
}

func TestRecord_DuplicateTraceID(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	_, err := s.Record(ctx, entry(1, "chinook"))
	require.NoError(t, err)
	_, err = s.Record(ctx, entry(1, "chinook"))
	assert.Error(t, err)
}

func TestRecent_OldestFirstBounded(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	for i := 1; i <= 25; i++ {
		_, err := s.Record(ctx, entry(i, "chinook"))
		require.NoError(t, err)
	}

	got, err := s.Recent(ctx, 20)
	require.NoError(t, err)
	require.Len(t, got, 20)
	assert.Equal(t, "question 6", got[0].Question)
	assert.Equal(t, "question 25", got[19].Question)
	assert.Equal(t, time.Date(2026, 1, 2, 3, 4, 5, 25, time.UTC), got[19].CreatedAt)
	for i := 1; i < len(got); i++ {
		assert.Less(t, got[i-1].Seq, got[i].Seq)
	}
}

func TestRecentForDataset(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	for i := 1; i <= 6; i++ {
		dataset := "chinook"
		if i%2 == 0 {
			dataset = "university"
		}
		_, err := s.Record(ctx, entry(i, dataset))
		require.NoError(t, err)
	}

	got, err := s.RecentForDataset(ctx, "university", 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "question 4", got[0].Question)
	assert.Equal(t, "question 6", got[1].Question)
}

func TestRecent_Empty(t *testing.T) {
	s := createTestStore(t)

	got, err := s.Recent(context.Background(), 5)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NotNil(t, got)

	got, err = s.Recent(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, got)
}
