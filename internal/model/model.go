// Package model defines the core entities shared across subsystems.
package model

import "time"

// JobOffer is the central record of the pipeline: one job posting
// identified by its URL. The extraction stage creates it with an empty
// Analysis and zero ratings; the enrichment stage fills those in exactly
// once before the record is persisted.
type JobOffer struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	Source          string    `json:"source"`
	URL             string    `json:"url"`
	Description     string    `json:"description"`
	Analysis        string    `json:"analysis"`
	OfferRating     int       `json:"offer_rating"`
	CandidateRating int       `json:"candidate_rating"`
	Added           time.Time `json:"added"`
}
