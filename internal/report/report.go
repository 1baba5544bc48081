// Package report renders enriched records into a static HTML table.
package report

import (
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/azielinski/jobradar/internal/model"
)

const pageTemplate = `<html><head><title>Job Offers Report</title></head><body>
<h1>Job Offers Report</h1>
<table border='1'>
<tr><th>ID</th><th>Source</th><th>Name</th><th>URL</th><th>Description</th><th>Analysis</th><th>Offer Rating</th><th>Candidate Rating</th><th>Added Date</th></tr>
{{range .}}<tr><td>{{.ID}}</td><td>{{.Source}}</td><td>{{.Name}}</td><td><a href='{{.URL}}' target='_blank'>{{.URL}}</a></td><td>{{.Description}}</td><td>{{.Analysis}}</td><td>{{.OfferRating}}</td><td>{{.CandidateRating}}</td><td>{{.Added.Format "2006-01-02 15:04:05"}}</td></tr>
{{end}}</table></body></html>
`

var page = template.Must(template.New("report").Parse(pageTemplate))

// Generator writes timestamped report files into one directory.
type Generator struct {
	dir    string
	logger *zap.Logger
}

// New constructs a Generator writing into dir, created on demand.
func New(dir string, logger *zap.Logger) *Generator {
	if dir == "" {
		dir = "reports"
	}
	return &Generator{dir: dir, logger: logger}
}

// Generate renders offers, best candidate first as handed in, into a
// new timestamped file and returns its path.
func (g *Generator) Generate(offers []model.JobOffer) (string, error) {
	if err := os.MkdirAll(g.dir, 0o755); err != nil {
		return "", fmt.Errorf("create report directory: %w", err)
	}
	path := filepath.Join(g.dir, fmt.Sprintf("report_%s.html", time.Now().Format("20060102_150405")))

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create report file: %w", err)
	}
	defer f.Close()

	if err := page.Execute(f, offers); err != nil {
		return "", fmt.Errorf("render report: %w", err)
	}
	g.logger.Info("report generated", zap.String("path", path), zap.Int("records", len(offers)))
	return path, nil
}
