package report

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/azielinski/jobradar/internal/model"
)

func TestGenerateWritesTimestampedFile(t *testing.T) {
	dir := t.TempDir()
	g := New(filepath.Join(dir, "reports"), zap.NewNop())

	offers := []model.JobOffer{
		{
			ID:              1,
			Name:            "Senior Go Developer",
			Source:          "JustJoinIt",
			URL:             "https://justjoin.it/job-offer/acme-go-developer",
			Description:     "Build <b>services</b> in Go",
			Analysis:        `{"ocena_oferty": 70}`,
			OfferRating:     70,
			CandidateRating: 60,
			Added:           time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC),
		},
	}

	path, err := g.Generate(offers)
	require.NoError(t, err)
	require.FileExists(t, path)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	html := string(content)
	require.Contains(t, html, "Senior Go Developer")
	require.Contains(t, html, "href='https://justjoin.it/job-offer/acme-go-developer'")
	require.Contains(t, html, "2026-08-29 10:00:00")
	// Markup in stored text must arrive escaped.
	require.Contains(t, html, "&lt;b&gt;services&lt;/b&gt;")
}

func TestGenerateEmptySet(t *testing.T) {
	g := New(t.TempDir(), zap.NewNop())
	path, err := g.Generate(nil)
	require.NoError(t, err)
	require.FileExists(t, path)
}
