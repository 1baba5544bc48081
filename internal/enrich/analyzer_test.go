package enrich

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/azielinski/jobradar/internal/model"
	"github.com/azielinski/jobradar/internal/store"
)

// stubScorer replies from a per-URL script; unscripted URLs get a
// well-formed reply with fixed ratings.
type stubScorer struct {
	replies map[string]string
	errs    map[string]error

	mu        sync.Mutex
	active    int
	maxActive int
	delay     time.Duration
}

func (s *stubScorer) Complete(_ context.Context, messages []openai.ChatCompletionMessage) (string, error) {
	url := urlFromPrompt(messages)

	s.mu.Lock()
	s.active++
	if s.active > s.maxActive {
		s.maxActive = s.active
	}
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.active--
		s.mu.Unlock()
	}()

	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	if err, ok := s.errs[url]; ok {
		return "", err
	}
	if reply, ok := s.replies[url]; ok {
		return reply, nil
	}
	return fmt.Sprintf(`{"ocena_oferty": 70, "dopasowanie_kandydata": 60, `+
		`"techstack": ["go"], "braki": [], "opinia": "Dobra oferta dla %s."}`, url), nil
}

// urlFromPrompt recovers the posting URL from the user message so the
// stub can be scripted per offer.
func urlFromPrompt(messages []openai.ChatCompletionMessage) string {
	user := messages[len(messages)-1].Content
	var url string
	fmt.Sscanf(user, "Pełny tekst ogłoszenia dla %s", &url)
	return strings.TrimSuffix(url, ":")
}

func pendingOffer(i int) model.JobOffer {
	return model.JobOffer{
		Name:        fmt.Sprintf("Go Developer %d", i),
		Source:      "testboard",
		URL:         fmt.Sprintf("https://testboard.example/job/%03d", i),
		Description: "Budowanie usług w Go.",
		Added:       time.Now().UTC(),
	}
}

func TestEnrichAllPersistsRatings(t *testing.T) {
	st := store.NewMemory(zap.NewNop())
	a := New(&stubScorer{}, st, Config{}, zap.NewNop())

	sum := a.EnrichAll(context.Background(), []model.JobOffer{pendingOffer(1), pendingOffer(2)})
	require.Equal(t, Summary{Persisted: 2}, sum)
	require.Equal(t, 2, st.Len())
	for _, row := range st.All() {
		require.Equal(t, 70, row.OfferRating)
		require.Equal(t, 60, row.CandidateRating)
		require.NotEmpty(t, row.Analysis)
	}
}

func TestEnrichAllSkipsAlreadyStored(t *testing.T) {
	st := store.NewMemory(zap.NewNop())
	stored := pendingOffer(1)
	require.NoError(t, st.Insert(context.Background(), stored))

	a := New(&stubScorer{}, st, Config{}, zap.NewNop())
	sum := a.EnrichAll(context.Background(), []model.JobOffer{stored, pendingOffer(2)})
	require.Equal(t, Summary{Persisted: 1, Skipped: 1}, sum)
	require.Equal(t, 2, st.Len())
}

func TestEnrichAllRejectsShortAnalysis(t *testing.T) {
	offer := pendingOffer(1)
	scorer := &stubScorer{replies: map[string]string{offer.URL: `{"opinia":"ok"}`}}
	st := store.NewMemory(zap.NewNop())

	a := New(scorer, st, Config{}, zap.NewNop())
	sum := a.EnrichAll(context.Background(), []model.JobOffer{offer})
	require.Equal(t, Summary{Skipped: 1}, sum)
	require.Zero(t, st.Len())
}

func TestEnrichAllIsolatesScorerFailures(t *testing.T) {
	failing := pendingOffer(1)
	scorer := &stubScorer{errs: map[string]error{failing.URL: ErrRateLimited}}
	st := store.NewMemory(zap.NewNop())

	a := New(scorer, st, Config{}, zap.NewNop())
	sum := a.EnrichAll(context.Background(), []model.JobOffer{failing, pendingOffer(2), pendingOffer(3)})
	require.Equal(t, Summary{Persisted: 2, Failed: 1}, sum)
	require.Equal(t, 2, st.Len())
}

func TestEnrichAllPersistsPlainTextAnalysis(t *testing.T) {
	offer := pendingOffer(1)
	reply := "Model odmówił formatu JSON, ale dostarczył długą ocenę słowną. " +
		"Stanowisko wymaga Go i Postgresa. [ocena_oferty=65] Dopasowanie trudne do oszacowania."
	scorer := &stubScorer{replies: map[string]string{offer.URL: reply}}
	st := store.NewMemory(zap.NewNop())

	a := New(scorer, st, Config{}, zap.NewNop())
	sum := a.EnrichAll(context.Background(), []model.JobOffer{offer})
	require.Equal(t, Summary{Persisted: 1}, sum)

	rows := st.All()
	require.Len(t, rows, 1)
	require.Equal(t, 65, rows[0].OfferRating)
	require.Zero(t, rows[0].CandidateRating)
	require.Equal(t, reply, rows[0].Analysis)
}

func TestEnrichAllBoundsConcurrency(t *testing.T) {
	scorer := &stubScorer{delay: 10 * time.Millisecond}
	st := store.NewMemory(zap.NewNop())

	offers := make([]model.JobOffer, 12)
	for i := range offers {
		offers[i] = pendingOffer(i)
	}

	a := New(scorer, st, Config{Workers: 3}, zap.NewNop())
	sum := a.EnrichAll(context.Background(), offers)
	require.Equal(t, Summary{Persisted: 12}, sum)
	require.LessOrEqual(t, scorer.maxActive, 3)
}

func TestEnrichAllCancelledContextLeavesNoSilentDrops(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	st := store.NewMemory(zap.NewNop())
	a := New(&stubScorer{}, st, Config{}, zap.NewNop())
	sum := a.EnrichAll(ctx, []model.JobOffer{pendingOffer(1), pendingOffer(2)})
	require.Equal(t, 2, sum.Persisted+sum.Skipped+sum.Failed)
}
