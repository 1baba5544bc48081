package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "sqlite", cfg.Store.Backend)
	require.Equal(t, "job_offers_api", cfg.Store.Table)
	require.Equal(t, 15, cfg.Scrape.MaxConcurrency)
	require.Equal(t, 120*time.Second, cfg.Scrape.NavigationTimeout)
	require.Equal(t, time.Second, cfg.Scrape.SettleDelay)
	require.Equal(t, 3, cfg.Scrape.RetryAttempts)
	require.Contains(t, cfg.Scrape.ForbiddenTitles, "access denied")
	require.Equal(t, "deepseek-reasoner", cfg.Scoring.Model)
	require.Equal(t, 10, cfg.Scoring.Workers)
	require.Equal(t, 80, cfg.Scoring.MinAnalysisLength)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("JOBRADAR_SCRAPE_MAX_CONCURRENCY", "4")
	t.Setenv("JOBRADAR_STORE_TABLE", "offers_test")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 4, cfg.Scrape.MaxConcurrency)
	require.Equal(t, "offers_test", cfg.Store.Table)
}

func TestValidate_RejectsBadConfigs(t *testing.T) {
	t.Parallel()

	base := func() Config {
		return Config{
			Store:   Store{Backend: "sqlite", Path: "jobs.db", Table: "offers"},
			Scrape:  Scrape{MaxConcurrency: 15},
			Scoring: Scoring{Workers: 10},
		}
	}

	cfg := base()
	require.NoError(t, cfg.Validate())

	cfg = base()
	cfg.Store.Backend = "mysql"
	require.Error(t, cfg.Validate())

	cfg = base()
	cfg.Store.Backend = "postgres"
	require.Error(t, cfg.Validate(), "postgres without dsn")

	cfg = base()
	cfg.Scrape.MaxConcurrency = 0
	require.Error(t, cfg.Validate())

	cfg = base()
	cfg.Scoring.Workers = 0
	require.Error(t, cfg.Validate())

	cfg = base()
	cfg.Sources = []Source{{Adapter: "justjoinit"}}
	require.Error(t, cfg.Validate(), "source without seeds")
}
