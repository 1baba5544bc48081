package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/azielinski/jobradar/internal/model"
)

// Memory is an in-memory Store for development and testing. It enforces
// the same URL-uniqueness contract as the durable backends.
type Memory struct {
	mu     sync.RWMutex
	nextID int64
	offers []model.JobOffer
	logger *zap.Logger
}

// NewMemory constructs an empty in-memory store.
func NewMemory(logger *zap.Logger) *Memory {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Memory{nextID: 1, logger: logger}
}

// Insert appends offer unless its URL is already present.
func (s *Memory) Insert(_ context.Context, offer model.JobOffer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.offers {
		if existing.URL == offer.URL {
			s.logger.Warn("duplicate offer URL, insert skipped", zap.String("url", offer.URL))
			return nil
		}
	}
	offer.ID = s.nextID
	s.nextID++
	if offer.Added.IsZero() {
		offer.Added = time.Now().UTC()
	}
	s.offers = append(s.offers, offer)
	return nil
}

// Exists matches by substring like the durable backends.
func (s *Memory) Exists(_ context.Context, url string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, existing := range s.offers {
		if strings.Contains(existing.URL, url) {
			return true, nil
		}
	}
	return false, nil
}

// JobsBetween returns records added in [start, end), best candidate first.
func (s *Memory) JobsBetween(_ context.Context, start, end time.Time) ([]model.JobOffer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.JobOffer
	for _, offer := range s.offers {
		if !offer.Added.Before(start) && offer.Added.Before(end) {
			out = append(out, offer)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CandidateRating > out[j].CandidateRating
	})
	return out, nil
}

// DropAll clears the store after confirmation.
func (s *Memory) DropAll(_ context.Context, confirm Confirm) error {
	if confirm == nil || !confirm(dropPrompt) {
		s.logger.Warn("table deletion cancelled")
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.offers = nil
	s.nextID = 1
	return nil
}

// Close is a no-op.
func (s *Memory) Close() error { return nil }

// Len reports the number of stored offers.
func (s *Memory) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.offers)
}

// All returns a copy of every stored offer in insertion order.
func (s *Memory) All() []model.JobOffer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.JobOffer, len(s.offers))
	copy(out, s.offers)
	return out
}
