package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestInit_IsIdempotentAndCounts(t *testing.T) {
	Init()
	Init()

	before := testutil.ToFloat64(pagesTotal.WithLabelValues("JustJoinIt", OutcomeScraped))
	PageProcessed("JustJoinIt", OutcomeScraped)
	after := testutil.ToFloat64(pagesTotal.WithLabelValues("JustJoinIt", OutcomeScraped))
	require.Equal(t, before+1, after)

	BotBlocked("Pracujpl")
	require.Equal(t, float64(1), testutil.ToFloat64(botBlocksTotal.WithLabelValues("Pracujpl")))

	FetchStarted()
	FetchStarted()
	FetchFinished()
	require.Equal(t, float64(1), testutil.ToFloat64(activeFetches))
	FetchFinished()
}

func TestHelpers_NoOpBeforeInit(t *testing.T) {
	// Collectors are package-level; helpers must tolerate a nil vec when a
	// caller never ran Init (unit tests of other packages rely on this).
	PageProcessed("x", OutcomeFailed)
	EnrichmentDone(OutcomePersisted)
}
