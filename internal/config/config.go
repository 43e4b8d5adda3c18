package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// AppConfig holds application-level settings.
type AppConfig struct {
	LogLevel string `mapstructure:"log_level"`
	DataDir  string `mapstructure:"data_dir"` // where the static JSON files are written, e.g. ./public/data
}

// RedisConfig holds redis connection settings.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// ScoresConfig controls the sports-data provider.
type ScoresConfig struct {
	Provider      string   `mapstructure:"provider"` // apisports or apifootball
	BaseURL       string   `mapstructure:"base_url"`
	APIKey        string   `mapstructure:"api_key"`
	RapidAPI      bool     `mapstructure:"rapidapi"` // api-sports through RapidAPI headers
	Country       string   `mapstructure:"country"`  // resolve leagues by country when Leagues is empty
	Leagues       []string `mapstructure:"leagues"`
	Season        string   `mapstructure:"season"`
	LogosFile     string   `mapstructure:"logos_file"` // YAML map of team name to logo URL
	Timeout       string   `mapstructure:"timeout"`
	CacheTTL      string   `mapstructure:"cache_ttl"`
	PollInterval  string   `mapstructure:"poll_interval"`  // live scoreboard refresh
	FetchInterval string   `mapstructure:"fetch_interval"` // JSON file refresh
}

// ImagesConfig controls optional localization of article images.
type ImagesConfig struct {
	Localize    bool `mapstructure:"localize"`
	WebPQuality int  `mapstructure:"webp_quality"`
}

// NewsConfig controls the RSS pipeline.
type NewsConfig struct {
	FeedURLs      []string     `mapstructure:"feed_urls"`
	Source        string       `mapstructure:"source"`   // display name stored on articles
	Category      string       `mapstructure:"category"` // display category stored on articles
	Patterns      []string     `mapstructure:"patterns"` // football filter, matched against link/category/title
	DailyLimit    int          `mapstructure:"daily_limit"`
	Throttle      string       `mapstructure:"throttle"`
	MaxArticles   int          `mapstructure:"max_articles"`
	Rewrite       bool         `mapstructure:"rewrite"`
	Language      string       `mapstructure:"language"`
	SeenTTL       string       `mapstructure:"seen_ttl"`
	FetchInterval string       `mapstructure:"fetch_interval"`
	Images        ImagesConfig `mapstructure:"images"`
}

// OpenAIConfig configures the rewrite model.
type OpenAIConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"`
}

// TelegramConfig enables announcements of new articles.
type TelegramConfig struct {
	Token  string `mapstructure:"token"`
	ChatID int64  `mapstructure:"chat_id"`
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Addr      string   `mapstructure:"addr"`
	PublicDir string   `mapstructure:"public_dir"`
	SiteName  string   `mapstructure:"site_name"`
	SiteURL   string   `mapstructure:"site_url"`
	Origins   []string `mapstructure:"allowed_origins"`
}

// Config is the top-level configuration structure.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Scores   ScoresConfig   `mapstructure:"scores"`
	News     NewsConfig     `mapstructure:"news"`
	OpenAI   OpenAIConfig   `mapstructure:"openai"`
	Telegram TelegramConfig `mapstructure:"telegram"`
	Server   ServerConfig   `mapstructure:"server"`
}

// FillDefaults applies default values if not provided.
func (c *Config) FillDefaults() {
	if c.App.LogLevel == "" {
		c.App.LogLevel = "info"
	}
	if c.App.DataDir == "" {
		c.App.DataDir = "./public/data"
	}
	if c.Redis.Addr == "" {
		c.Redis.Addr = "127.0.0.1:6379"
	}
	c.Scores.Provider = strings.ToLower(strings.TrimSpace(c.Scores.Provider))
	if c.Scores.Provider == "" {
		c.Scores.Provider = "apifootball"
	}
	if c.Scores.BaseURL == "" {
		switch c.Scores.Provider {
		case "apisports":
			if c.Scores.RapidAPI {
				c.Scores.BaseURL = "https://api-football-v1.p.rapidapi.com/v3"
			} else {
				c.Scores.BaseURL = "https://v3.football.api-sports.io"
			}
		default:
			c.Scores.BaseURL = "https://apiv3.apifootball.com"
		}
	}
	if c.Scores.Season == "" {
		c.Scores.Season = fmt.Sprintf("%d", time.Now().UTC().Year())
	}
	if c.Scores.Timeout == "" {
		c.Scores.Timeout = "10s"
	}
	if c.Scores.CacheTTL == "" {
		c.Scores.CacheTTL = "30s"
	}
	if c.Scores.PollInterval == "" {
		c.Scores.PollInterval = "60s"
	}
	if c.Scores.FetchInterval == "" {
		c.Scores.FetchInterval = "5m"
	}
	if len(c.News.FeedURLs) == 0 {
		c.News.FeedURLs = []string{"https://www.cnnturk.com/feed/rss/spor/futbol"}
	}
	if c.News.Source == "" {
		c.News.Source = "CNN Türk"
	}
	if c.News.Category == "" {
		c.News.Category = "Football News"
	}
	if len(c.News.Patterns) == 0 {
		c.News.Patterns = []string{"futbol"}
	}
	if c.News.DailyLimit <= 0 {
		c.News.DailyLimit = 5
	}
	if c.News.Throttle == "" {
		c.News.Throttle = "2m"
	}
	if c.News.MaxArticles <= 0 {
		c.News.MaxArticles = 50
	}
	if c.News.Language == "" {
		c.News.Language = "Turkish"
	}
	if c.News.SeenTTL == "" {
		c.News.SeenTTL = "720h"
	}
	if c.News.FetchInterval == "" {
		c.News.FetchInterval = "1h"
	}
	if c.News.Images.WebPQuality <= 0 || c.News.Images.WebPQuality > 100 {
		c.News.Images.WebPQuality = 80
	}
	if c.OpenAI.Model == "" {
		c.OpenAI.Model = "gpt-4"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.PublicDir == "" {
		c.Server.PublicDir = "./public"
	}
	if c.Server.SiteName == "" {
		c.Server.SiteName = "FootballPulse"
	}
	if len(c.Server.Origins) == 0 {
		c.Server.Origins = []string{"*"}
	}
}

// ValidateScores reports missing configuration required before any scores fetch.
func (c *Config) ValidateScores() error {
	var errs []error
	switch c.Scores.Provider {
	case "apisports", "apifootball":
	default:
		errs = append(errs, fmt.Errorf("scores.provider must be apisports or apifootball, got %q", c.Scores.Provider))
	}
	if strings.TrimSpace(c.Scores.APIKey) == "" {
		errs = append(errs, errors.New("scores.api_key (FOOTBALL_API_KEY) is not set"))
	}
	for _, d := range []struct{ name, val string }{
		{"scores.timeout", c.Scores.Timeout},
		{"scores.cache_ttl", c.Scores.CacheTTL},
		{"scores.poll_interval", c.Scores.PollInterval},
		{"scores.fetch_interval", c.Scores.FetchInterval},
	} {
		if _, err := time.ParseDuration(d.val); err != nil {
			errs = append(errs, fmt.Errorf("invalid %s: %w", d.name, err))
		}
	}
	return errors.Join(errs...)
}

// ValidateNews reports missing configuration required before any news fetch.
func (c *Config) ValidateNews() error {
	var errs []error
	if len(c.News.FeedURLs) == 0 {
		errs = append(errs, errors.New("news.feed_urls (NEWS_SOURCE_URL) is not set"))
	}
	if c.News.Rewrite && strings.TrimSpace(c.OpenAI.APIKey) == "" {
		errs = append(errs, errors.New("openai.api_key (OPENAI_API_KEY) is not set"))
	}
	for _, d := range []struct{ name, val string }{
		{"news.throttle", c.News.Throttle},
		{"news.seen_ttl", c.News.SeenTTL},
		{"news.fetch_interval", c.News.FetchInterval},
	} {
		if _, err := time.ParseDuration(d.val); err != nil {
			errs = append(errs, fmt.Errorf("invalid %s: %w", d.name, err))
		}
	}
	return errors.Join(errs...)
}

// Duration parses a duration string that has already passed validation.
// A bad value falls back to def.
func Duration(s string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(strings.TrimSpace(s))
	if err != nil || d <= 0 {
		return def
	}
	return d
}
