package config

import (
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/viper"
)

func TestDefaults(t *testing.T) {
	cfg, err := load(viper.New())
	if err != nil {
		t.Fatal(err)
	}

	expected := Configuration{
		Port:             8080,
		DbUrl:            "file:wrapped.db?_journal=WAL&_timeout=5000",
		MigrationsFolder: "migrations",
		Fetch: FetchConfig{
			PageSize:       40,
			MaxPages:       100,
			PageDelay:      200 * time.Millisecond,
			RequestTimeout: 15 * time.Second,
			MaxRetries:     3,
			RetryBaseDelay: time.Second,
			MaxRetryAfter:  time.Minute,
			UserAgent:      "tootwrapped/1.0",
		},
		Cache: CacheConfig{TTL: 6 * time.Hour, PurgeInterval: time.Hour},
		Queue: QueueConfig{Workers: 2, ReleaseAfter: 10 * time.Minute, CleanupInterval: time.Hour},
	}
	if diff := cmp.Diff(expected, cfg); diff != "" {
		t.Error(diff)
	}
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("WRAPPED_PORT", "9090")
	t.Setenv("WRAPPED_FETCH_PAGE_DELAY", "1s")
	t.Setenv("WRAPPED_CACHE_TTL", "30m")

	cfg, err := load(viper.New())
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Port != 9090 || cfg.Fetch.PageDelay != time.Second || cfg.Cache.TTL != 30*time.Minute {
		t.Errorf("overrides not applied: %+v", cfg)
	}
}

func TestYamlFile(t *testing.T) {
	v := viper.New()
	v.SetConfigType("yaml")
	err := v.ReadConfig(strings.NewReader(`
debug: true
timezone: Europe/Lisbon
fetch:
  max_pages: 10
`))
	if err != nil {
		t.Fatal(err)
	}

	cfg, err := load(v)
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.Debug || cfg.Timezone != "Europe/Lisbon" || cfg.Fetch.MaxPages != 10 || cfg.Fetch.PageSize != 40 {
		t.Errorf("unexpected config: %+v", cfg)
	}
}

func TestInvalid(t *testing.T) {
	t.Setenv("WRAPPED_FETCH_PAGE_SIZE", "80")

	if _, err := load(viper.New()); err == nil {
		t.Error("expected a page size above the API limit to be rejected")
	}
}
