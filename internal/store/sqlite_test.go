package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/azielinski/jobradar/internal/model"
)

func newTestSQLite(t *testing.T) *SQLite {
	t.Helper()
	path := filepath.Join(t.TempDir(), "jobs.db")
	s, err := NewSQLite(path, "job_offers_api", zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func sampleOffer(url string) model.JobOffer {
	return model.JobOffer{
		Name:        "Senior Python Developer",
		Source:      "JustJoinIt-testing",
		URL:         url,
		Description: "python pytest docker",
	}
}

func TestSQLite_InsertAndExists(t *testing.T) {
	t.Parallel()
	s := newTestSQLite(t)
	ctx := context.Background()

	require.NoError(t, s.Insert(ctx, sampleOffer("https://justjoin.it/job-offer/acme-python")))

	exists, err := s.Exists(ctx, "https://justjoin.it/job-offer/acme-python")
	require.NoError(t, err)
	require.True(t, exists)

	exists, err = s.Exists(ctx, "https://justjoin.it/job-offer/other")
	require.NoError(t, err)
	require.False(t, exists)
}

func TestSQLite_DuplicateInsertLeavesOneRow(t *testing.T) {
	t.Parallel()
	s := newTestSQLite(t)
	ctx := context.Background()

	offer := sampleOffer("https://justjoin.it/job-offer/acme-python")
	require.NoError(t, s.Insert(ctx, offer))

	offer.Name = "Same posting, republished"
	require.NoError(t, s.Insert(ctx, offer), "duplicate insert must not error")

	jobs, err := s.JobsBetween(ctx, time.Now().Add(-time.Hour), time.Now().Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	require.Equal(t, "Senior Python Developer", jobs[0].Name, "first row wins")
}

func TestSQLite_JobsBetweenOrdersByCandidateRating(t *testing.T) {
	t.Parallel()
	s := newTestSQLite(t)
	ctx := context.Background()

	low := sampleOffer("https://justjoin.it/job-offer/low")
	low.CandidateRating = 30
	high := sampleOffer("https://justjoin.it/job-offer/high")
	high.CandidateRating = 90

	require.NoError(t, s.Insert(ctx, low))
	require.NoError(t, s.Insert(ctx, high))

	jobs, err := s.JobsBetween(ctx, time.Now().Add(-time.Hour), time.Now().Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	require.Equal(t, 90, jobs[0].CandidateRating)
	require.Equal(t, 30, jobs[1].CandidateRating)
	require.False(t, jobs[0].Added.IsZero(), "added_date is server-assigned")
}

func TestSQLite_JobsBetweenExcludesOutsideRange(t *testing.T) {
	t.Parallel()
	s := newTestSQLite(t)
	ctx := context.Background()

	require.NoError(t, s.Insert(ctx, sampleOffer("https://justjoin.it/job-offer/now")))

	jobs, err := s.JobsBetween(ctx, time.Now().Add(-2*time.Hour), time.Now().Add(-time.Hour))
	require.NoError(t, err)
	require.Empty(t, jobs)
}

func TestSQLite_DropAllRequiresConfirmation(t *testing.T) {
	t.Parallel()
	s := newTestSQLite(t)
	ctx := context.Background()

	require.NoError(t, s.Insert(ctx, sampleOffer("https://justjoin.it/job-offer/acme")))

	require.NoError(t, s.DropAll(ctx, func(string) bool { return false }))
	exists, err := s.Exists(ctx, "acme")
	require.NoError(t, err)
	require.True(t, exists, "declined confirmation must not wipe data")

	require.NoError(t, s.DropAll(ctx, func(string) bool { return true }))
	_, err = s.Exists(ctx, "acme")
	require.Error(t, err, "table is gone after a confirmed wipe")
}

func TestNewSQLite_RejectsBadTableName(t *testing.T) {
	t.Parallel()
	_, err := NewSQLite(filepath.Join(t.TempDir(), "jobs.db"), "offers; DROP TABLE x", zap.NewNop())
	require.Error(t, err)
}
