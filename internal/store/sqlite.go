package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite" // pure-Go sqlite driver

	"github.com/azielinski/jobradar/internal/model"
)

const sqliteTimeLayout = "2006-01-02 15:04:05"

// SQLite persists job offers in a local SQLite database file.
type SQLite struct {
	db     *sql.DB
	table  string
	logger *zap.Logger
}

// NewSQLite opens (or creates) the database at path and ensures the
// offers table exists.
func NewSQLite(path, table string, logger *zap.Logger) (*SQLite, error) {
	if !validTableName.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	schema := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		source TEXT NOT NULL,
		name TEXT NOT NULL,
		url TEXT NOT NULL UNIQUE,
		description TEXT,
		analysis TEXT,
		offer_rating INTEGER DEFAULT 0,
		candidate_rating INTEGER DEFAULT 0,
		added_date TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`, table)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create offers table: %w", err)
	}

	logger.Info("sqlite store ready", zap.String("path", path), zap.String("table", table))
	return &SQLite{db: db, table: table, logger: logger}, nil
}

// Insert stores offer. The added_date column is assigned by the database.
func (s *SQLite) Insert(ctx context.Context, offer model.JobOffer) error {
	query := fmt.Sprintf(`INSERT OR IGNORE INTO %s
		(source, name, url, description, analysis, offer_rating, candidate_rating)
		VALUES (?, ?, ?, ?, ?, ?, ?)`, s.table)
	res, err := s.db.ExecContext(ctx, query,
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
	if n, aerr := res.RowsAffected(); aerr == nil && n == 0 {
		s.logger.Warn("duplicate offer URL, insert skipped", zap.String("url", offer.URL))
	}
	return nil
}

// Exists matches by substring, mirroring the pre-filter contract. The
// unique index on url remains the final arbiter under races.
func (s *SQLite) Exists(ctx context.Context, url string) (bool, error) {
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE url LIKE ?`, s.table)
	var count int
	if err := s.db.QueryRowContext(ctx, query, "%"+url+"%").Scan(&count); err != nil {
		return false, fmt.Errorf("search offers: %w", err)
	}
	return count > 0, nil
}

// JobsBetween returns records added in [start, end), best candidate first.
func (s *SQLite) JobsBetween(ctx context.Context, start, end time.Time) ([]model.JobOffer, error) {
	query := fmt.Sprintf(`SELECT id, source, name, url, description, analysis,
		offer_rating, candidate_rating, added_date
		FROM %s
		WHERE added_date >= ? AND added_date < ?
		ORDER BY candidate_rating DESC`, s.table)
	rows, err := s.db.QueryContext(ctx, query,
		start.UTC().Format(sqliteTimeLayout),
		end.UTC().Format(sqliteTimeLayout),
	)
	if err != nil {
		return nil, fmt.Errorf("select offers: %w", err)
	}
	defer rows.Close()

	var offers []model.JobOffer
	for rows.Next() {
		var (
			offer model.JobOffer
			added string
		)
		if err := rows.Scan(
			&offer.ID,
			&offer.Source,
			&offer.Name,
			&offer.URL,
			&offer.Description,
			&offer.Analysis,
			&offer.OfferRating,
			&offer.CandidateRating,
			&added,
		); err != nil {
			return nil, fmt.Errorf("scan offer row: %w", err)
		}
		if ts, perr := time.Parse(sqliteTimeLayout, added); perr == nil {
			offer.Added = ts.UTC()
		}
		offers = append(offers, offer)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate offer rows: %w", err)
	}
	return offers, nil
}

// DropAll deletes the offers table after interactive confirmation.
func (s *SQLite) DropAll(ctx context.Context, confirm Confirm) error {
	if confirm == nil || !confirm(dropPrompt) {
		s.logger.Warn("table deletion cancelled")
		return nil
	}
	if _, err := s.db.ExecContext(ctx, fmt.Sprintf(`DROP TABLE IF EXISTS %s`, s.table)); err != nil {
		return fmt.Errorf("drop offers table: %w", err)
	}
	s.logger.Info("offers table deleted", zap.String("table", s.table))
	return nil
}

// Close closes the underlying database handle.
func (s *SQLite) Close() error {
	return s.db.Close()
}
