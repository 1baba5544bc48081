// Package store provides durable, URL-keyed persistence of job offers.
// The url column carries a unique index in every backend; duplicate
// inserts are absorbed and logged, never surfaced to the caller. Records
// are append-only: the only destructive operation is a full-table wipe
// behind an interactive confirmation.
package store

import (
	"context"
	"regexp"
	"time"

	"github.com/azielinski/jobradar/internal/model"
)

// Confirm asks a human to approve a destructive operation. It receives a
// prompt and reports whether the operation may proceed.
type Confirm func(prompt string) bool

// Store is the common interface for all persistence backends.
type Store interface {
	// Insert persists offer. A URL-uniqueness violation is a logged no-op.
	Insert(ctx context.Context, offer model.JobOffer) error

	// Exists reports whether any stored record's URL contains url.
	Exists(ctx context.Context, url string) (bool, error)

	// JobsBetween returns records added in [start, end), ordered by
	// descending candidate rating.
	JobsBetween(ctx context.Context, start, end time.Time) ([]model.JobOffer, error)

	// DropAll removes the whole offers table after confirm approves it.
	DropAll(ctx context.Context, confirm Confirm) error

	Close() error
}

var validTableName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

const dropPrompt = "Confirm deletion of the offers table by typing 'y'..."
