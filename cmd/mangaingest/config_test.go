package main_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fwojciec/mangaingest"
	main "github.com/fwojciec/mangaingest/cmd/mangaingest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mangaingest.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfig(t *testing.T) {
	t.Run("missing file yields defaults", func(t *testing.T) {
		cfg, err := main.LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))

		require.NoError(t, err)
		assert.Equal(t, main.DefaultConfig(), cfg)
	})

	t.Run("file overrides defaults and expands env", func(t *testing.T) {
		t.Setenv("MANGAINGEST_TEST_BUCKET", "manga-assets")
		path := writeConfig(t, `
http:
  addr: ":9090"
kafka:
  brokers: ["localhost:9092"]
s3:
  bucket: ${MANGAINGEST_TEST_BUCKET}
  public_base_url: https://cdn.example.com
browser:
  pool_size: 4
  interval: 2s
fetch:
  rate_limit: 0.5
  host_rates:
    lekmanga.net: 0.2
sites:
  ares: https://ares.example.net
`)

		cfg, err := main.LoadConfig(path)

		require.NoError(t, err)
		assert.Equal(t, ":9090", cfg.HTTP.Addr)
		assert.Equal(t, []string{"localhost:9092"}, cfg.Kafka.Brokers)
		assert.Equal(t, "mangaingest", cfg.Kafka.GroupID)
		assert.Equal(t, "manga-assets", cfg.S3.Bucket)
		assert.Equal(t, "manga-assets", cfg.S3.Config().Bucket)
		assert.Equal(t, "https://cdn.example.com", cfg.S3.Config().PublicBaseURL)
		assert.True(t, cfg.Browser.Enabled)
		assert.Equal(t, 4, cfg.Browser.PoolSize)
		assert.Equal(t, 2*time.Second, cfg.Browser.Interval)
		assert.Equal(t, 6, cfg.Browser.Attempts)
		assert.Equal(t, 0.5, cfg.Fetch.RateLimit)
		assert.Equal(t, map[string]float64{"lekmanga.net": 0.2}, cfg.Fetch.HostRates)
		assert.Equal(t, 30*time.Second, cfg.Fetch.Timeout)
		assert.Equal(t, map[mangaingest.Platform]string{
			mangaingest.PlatformAres: "https://ares.example.net",
		}, cfg.SiteOverrides())
	})

	t.Run("zero values fall back to defaults", func(t *testing.T) {
		path := writeConfig(t, `
browser:
  enabled: false
  pool_size: 0
ingest:
  page_concurrency: -1
`)

		cfg, err := main.LoadConfig(path)

		require.NoError(t, err)
		assert.False(t, cfg.Browser.Enabled)
		assert.Equal(t, 2, cfg.Browser.PoolSize)
		assert.Equal(t, 4, cfg.Ingest.PageConcurrency)
	})

	t.Run("unknown site is rejected", func(t *testing.T) {
		path := writeConfig(t, `
sites:
  mangadex: https://mangadex.org
`)

		_, err := main.LoadConfig(path)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "mangadex")
	})

	t.Run("malformed yaml is rejected", func(t *testing.T) {
		path := writeConfig(t, "http: [")

		_, err := main.LoadConfig(path)

		require.Error(t, err)
	})
}
