package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
)

func TestLoadConfigFromEnvAliases(t *testing.T) {
	t.Setenv("FOOTBALL_API_KEY", "football-key")
	t.Setenv("OPENAI_API_KEY", "openai-key")
	t.Setenv("NEWS_SOURCE_URL", "https://a/rss,https://b/rss")
	t.Setenv("DAILY_LIMIT", "3")
	t.Setenv("THROTTLE_MS", "1500")
	t.Setenv("PULSE_SCORES_PROVIDER", "apisports")

	cfg, err := loadConfig(viper.New(), filepath.Join(t.TempDir(), "none.yaml"))
	if err == nil {
		t.Fatal("an explicit missing config file should be an error")
	}

	dir := t.TempDir()
	file := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(file, []byte("server:\n  addr: \":9090\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err = loadConfig(viper.New(), file)
	if err != nil {
		t.Fatalf("loadConfig error: %v", err)
	}
	if cfg.Scores.APIKey != "football-key" || cfg.OpenAI.APIKey != "openai-key" {
		t.Errorf("keys not bound: %+v %+v", cfg.Scores, cfg.OpenAI)
	}
	if len(cfg.News.FeedURLs) != 2 || cfg.News.FeedURLs[1] != "https://b/rss" {
		t.Errorf("feed urls = %v", cfg.News.FeedURLs)
	}
	if cfg.News.DailyLimit != 3 {
		t.Errorf("daily limit = %d", cfg.News.DailyLimit)
	}
	if cfg.News.Throttle != "1.5s" {
		t.Errorf("throttle = %q", cfg.News.Throttle)
	}
	if cfg.Scores.Provider != "apisports" || cfg.Scores.BaseURL != "https://v3.football.api-sports.io" {
		t.Errorf("provider = %q base = %q", cfg.Scores.Provider, cfg.Scores.BaseURL)
	}
	if !cfg.News.Rewrite {
		t.Error("rewrite should default to true")
	}
	if cfg.Server.Addr != ":9090" {
		t.Errorf("addr = %q", cfg.Server.Addr)
	}
	if err := cfg.ValidateScores(); err != nil {
		t.Errorf("ValidateScores: %v", err)
	}
	if err := cfg.ValidateNews(); err != nil {
		t.Errorf("ValidateNews: %v", err)
	}
}

func TestLoadConfigBadThrottle(t *testing.T) {
	t.Setenv("THROTTLE_MS", "soon")
	file := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(file, []byte("app:\n  log_level: debug\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := loadConfig(viper.New(), file); err == nil {
		t.Fatal("expected error for invalid THROTTLE_MS")
	}
}
