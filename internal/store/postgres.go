package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/azielinski/jobradar/internal/model"
)

// pgxPool is the subset of pgxpool.Pool the store relies on; pgxmock
// satisfies it in tests.
type pgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// Postgres persists job offers in a PostgreSQL table.
type Postgres struct {
	pool   pgxPool
	table  string
	logger *zap.Logger
}

// NewPostgres connects to the database at dsn and ensures the offers
// table exists.
func NewPostgres(ctx context.Context, dsn, table string, logger *zap.Logger) (*Postgres, error) {
	if dsn == "" {
		return nil, fmt.Errorf("store.dsn is required")
	}
	if !validTableName.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	s := &Postgres{pool: pool, table: table, logger: logger}
	schema := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		id BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
		source TEXT NOT NULL,
		name TEXT NOT NULL,
		url TEXT NOT NULL UNIQUE,
		description TEXT,
		analysis TEXT,
		offer_rating INT DEFAULT 0,
		candidate_rating INT DEFAULT 0,
		added_date TIMESTAMPTZ DEFAULT NOW()
	)`, table)
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create offers table: %w", err)
	}
	logger.Info("postgres store ready", zap.String("table", table))
	return s, nil
}

// NewPostgresWithPool constructs a store from an existing pool, primarily
// for testing. The table is assumed to exist.
func NewPostgresWithPool(pool pgxPool, table string, logger *zap.Logger) (*Postgres, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	if !validTableName.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	return &Postgres{pool: pool, table: table, logger: logger}, nil
}

// Insert stores offer; a conflicting URL is a logged no-op.
func (s *Postgres) Insert(ctx context.Context, offer model.JobOffer) error {
	query := fmt.Sprintf(`INSERT INTO %s
		(source, name, url, description, analysis, offer_rating, candidate_rating)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (url) DO NOTHING`, s.table)
	tag, err := s.pool.Exec(ctx, query,
		offer.Source,
		offer.Name,
		offer.URL,
		offer.Description,
		offer.Analysis,
		offer.OfferRating,
		offer.CandidateRating,
	)
	if err != nil {
		return fmt.Errorf("insert offer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		s.logger.Warn("duplicate offer URL, insert skipped", zap.String("url", offer.URL))
	}
	return nil
}

// Exists matches by substring, mirroring the pre-filter contract.
func (s *Postgres) Exists(ctx context.Context, url string) (bool, error) {
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE url LIKE '%%' || $1 || '%%'`, s.table)
	var count int
	if err := s.pool.QueryRow(ctx, query, url).Scan(&count); err != nil {
		return false, fmt.Errorf("search offers: %w", err)
	}
	return count > 0, nil
}

// JobsBetween returns records added in [start, end), best candidate first.
func (s *Postgres) JobsBetween(ctx context.Context, start, end time.Time) ([]model.JobOffer, error) {
	query := fmt.Sprintf(`SELECT id, source, name, url, description, analysis,
		offer_rating, candidate_rating, added_date
		FROM %s
		WHERE added_date >= $1 AND added_date < $2
		ORDER BY candidate_rating DESC`, s.table)
	rows, err := s.pool.Query(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("select offers: %w", err)
	}
	defer rows.Close()

	var offers []model.JobOffer
	for rows.Next() {
		var offer model.JobOffer
		if err := rows.Scan(
			&offer.ID,
			&offer.Source,
			&offer.Name,
			&offer.URL,
			&offer.Description,
			&offer.Analysis,
			&offer.OfferRating,
			&offer.CandidateRating,
			&offer.Added,
		); err != nil {
			return nil, fmt.Errorf("scan offer row: %w", err)
		}
		offers = append(offers, offer)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate offer rows: %w", err)
	}
	return offers, nil
}

// DropAll drops the offers table after interactive confirmation.
func (s *Postgres) DropAll(ctx context.Context, confirm Confirm) error {
	if confirm == nil || !confirm(dropPrompt) {
		s.logger.Warn("table deletion cancelled")
		return nil
	}
	if _, err := s.pool.Exec(ctx, fmt.Sprintf(`DROP TABLE IF EXISTS %s`, s.table)); err != nil {
		return fmt.Errorf("drop offers table: %w", err)
	}
	s.logger.Info("offers table deleted", zap.String("table", s.table))
	return nil
}

// Close releases the underlying pool resources.
func (s *Postgres) Close() error {
	s.pool.Close()
	return nil
}
