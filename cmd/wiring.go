package cmd

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"football-pulse/internal/ai"
	"football-pulse/internal/config"
	"football-pulse/internal/feed"
	"football-pulse/internal/imagecache"
	"football-pulse/internal/news"
	"football-pulse/internal/notify"
	"football-pulse/internal/redisclient"
	"football-pulse/internal/scores"
	"football-pulse/internal/storage"
)

// openRedis connects to redis when it answers a ping. Without it, seen marks and
// the scores cache are skipped.
func openRedis(cfg config.Config) (*storage.RedisStore, func()) {
	if !redisclient.Enabled(cfg.Redis) {
		return nil, func() {}
	}
	rdb := redisclient.New(cfg.Redis)
	store := storage.NewRedisStore(rdb)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := store.Ping(ctx); err != nil {
		slog.Warn("redis: unavailable, continuing without it", "addr", cfg.Redis.Addr, "error", err)
		_ = rdb.Close()
		return nil, func() {}
	}
	return store, func() { _ = rdb.Close() }
}

func newScoresService(cfg config.Config, rs *storage.RedisStore) (*scores.Service, error) {
	if err := cfg.ValidateScores(); err != nil {
		return nil, err
	}
	logos, err := scores.LoadLogos(cfg.Scores.LogosFile)
	if err != nil {
		return nil, err
	}
	p, client, err := scores.NewFromConfig(cfg.Scores, logos)
	if err != nil {
		return nil, err
	}
	svc := scores.NewService(p, client)
	if rs != nil {
		svc.Cache = rs
		svc.CacheTTL = config.Duration(cfg.Scores.CacheTTL, 30*time.Second)
	}
	return svc, nil
}

func newNewsPipeline(cfg config.Config, store *storage.JSONStore, rs *storage.RedisStore) (*news.Pipeline, error) {
	if err := cfg.ValidateNews(); err != nil {
		return nil, err
	}
	filter, err := feed.NewFilter(cfg.News.Patterns)
	if err != nil {
		return nil, err
	}
	p := &news.Pipeline{
		Fetcher:     feed.NewRSSFetcher(20 * time.Second),
		Filter:      filter,
		Store:       store,
		FeedURLs:    cfg.News.FeedURLs,
		Source:      cfg.News.Source,
		Category:    cfg.News.Category,
		Language:    cfg.News.Language,
		DailyLimit:  cfg.News.DailyLimit,
		MaxArticles: cfg.News.MaxArticles,
		Throttle:    config.Duration(cfg.News.Throttle, 2*time.Minute),
		SeenTTL:     config.Duration(cfg.News.SeenTTL, 30*24*time.Hour),
	}
	if rs != nil {
		p.Seen = rs
	}
	if cfg.News.Rewrite {
		rw, err := ai.NewOpenAI(ai.Config{APIKey: cfg.OpenAI.APIKey, Model: cfg.OpenAI.Model, BaseURL: cfg.OpenAI.BaseURL})
		if err != nil {
			return nil, err
		}
		p.Rewriter = rw
	}
	if cfg.News.Images.Localize {
		p.Images = imagecache.New(filepath.Join(cfg.App.DataDir, "images"), imagePrefix(cfg), cfg.News.Images.WebPQuality, 30*time.Second)
	}
	if a := newAnnouncer(cfg); a != nil {
		p.Announcer = a
	}
	return p, nil
}

// newAnnouncer returns nil when telegram is not configured or cannot connect.
func newAnnouncer(cfg config.Config) *notify.Telegram {
	if strings.TrimSpace(cfg.Telegram.Token) == "" || cfg.Telegram.ChatID == 0 {
		return nil
	}
	tg, err := notify.NewTelegram(cfg.Telegram.Token, cfg.Telegram.ChatID, cfg.Server.SiteURL)
	if err != nil {
		slog.Warn("telegram: disabled", "error", err)
		return nil
	}
	return tg
}

// imagePrefix is the public URL of <data_dir>/images as served from public_dir.
func imagePrefix(cfg config.Config) string {
	rel, err := filepath.Rel(cfg.Server.PublicDir, cfg.App.DataDir)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "/data/images"
	}
	return "/" + filepath.ToSlash(filepath.Join(rel, "images"))
}
