package store

import (
	"context"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newMockPostgres(t *testing.T) (*Postgres, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	s, err := NewPostgresWithPool(mock, "job_offers_api", zap.NewNop())
	require.NoError(t, err)
	return s, mock
}

func TestPostgres_InsertNewRow(t *testing.T) {
	t.Parallel()
	s, mock := newMockPostgres(t)

	offer := sampleOffer("https://justjoin.it/job-offer/acme-python")
	mock.ExpectExec("INSERT INTO job_offers_api").
		WithArgs(offer.Source, offer.Name, offer.URL, offer.Description,
			offer.Analysis, offer.OfferRating, offer.CandidateRating).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, s.Insert(context.Background(), offer))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_InsertDuplicateIsNoOp(t *testing.T) {
	t.Parallel()
	s, mock := newMockPostgres(t)

	offer := sampleOffer("https://justjoin.it/job-offer/acme-python")
	mock.ExpectExec("INSERT INTO job_offers_api").
		WithArgs(offer.Source, offer.Name, offer.URL, offer.Description,
			offer.Analysis, offer.OfferRating, offer.CandidateRating).
		WillReturnResult(pgxmock.NewResult("INSERT", 0))

	require.NoError(t, s.Insert(context.Background(), offer), "conflict resolves to no-op")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_Exists(t *testing.T) {
	t.Parallel()
	s, mock := newMockPostgres(t)

	mock.ExpectQuery("SELECT COUNT").
		WithArgs("https://justjoin.it/job-offer/acme-python").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(1))

	exists, err := s.Exists(context.Background(), "https://justjoin.it/job-offer/acme-python")
	require.NoError(t, err)
	require.True(t, exists)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_JobsBetween(t *testing.T) {
	t.Parallel()
	s, mock := newMockPostgres(t)

	start := time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)
	end := start.Add(24 * time.Hour)
	added := start.Add(6 * time.Hour)

	mock.ExpectQuery("SELECT id, source, name, url").
		WithArgs(start, end).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "source", "name", "url", "description", "analysis",
			"offer_rating", "candidate_rating", "added_date",
		}).
			AddRow(int64(2), "Pracujpl", "B", "https://b", "", "", 50, 90, added).
			AddRow(int64(1), "Pracujpl", "A", "https://a", "", "", 70, 60, added))

	jobs, err := s.JobsBetween(context.Background(), start, end)
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	require.Equal(t, 90, jobs[0].CandidateRating)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_DropAllDeclined(t *testing.T) {
	t.Parallel()
	s, mock := newMockPostgres(t)

	require.NoError(t, s.DropAll(context.Background(), func(string) bool { return false }))
	require.NoError(t, mock.ExpectationsWereMet(), "no statement runs without confirmation")
}

func TestPostgres_DropAllConfirmed(t *testing.T) {
	t.Parallel()
	s, mock := newMockPostgres(t)

	mock.ExpectExec("DROP TABLE IF EXISTS job_offers_api").
		WillReturnResult(pgxmock.NewResult("DROP", 0))

	require.NoError(t, s.DropAll(context.Background(), func(string) bool { return true }))
	require.NoError(t, mock.ExpectationsWereMet())
}
