package news

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"football-pulse/internal/ai"
	"football-pulse/internal/feed"
	"football-pulse/internal/model"
	"football-pulse/internal/notify"

	"github.com/google/uuid"
)

// SummaryRunes is the length of the derived summary before the ellipsis.
const SummaryRunes = 150

// Store persists the published article list.
type Store interface {
	ReadArticles() ([]model.Article, error)
	WriteArticles(articles []model.Article) error
}

// SeenStore remembers processed feed entries across runs.
type SeenStore interface {
	IsSeen(ctx context.Context, source, key string) (bool, error)
	MarkSeen(ctx context.Context, source, key string, d time.Duration) error
}

// ImageLocalizer copies a remote image into the public data directory.
type ImageLocalizer interface {
	Localize(ctx context.Context, id, src string) (string, error)
}

// Pipeline turns feed entries into published articles.
type Pipeline struct {
	Fetcher  feed.Fetcher
	Filter   *feed.Filter
	Store    Store
	Rewriter ai.Rewriter // nil keeps originals

	Seen      SeenStore      // optional
	Images    ImageLocalizer // optional
	Announcer notify.Announcer

	FeedURLs    []string
	Source      string
	Category    string
	Language    string
	DailyLimit  int
	MaxArticles int
	Throttle    time.Duration // delay between rewrite calls
	SeenTTL     time.Duration

	Now   func() time.Time
	Sleep func(ctx context.Context, d time.Duration) error
	NewID func() string
}

// Result reports what one run did.
type Result struct {
	Fetched   int
	Matched   int
	Added     int
	Rewritten int
	Total     int
}

// Run fetches, selects, rewrites and merges new articles into the store.
func (p *Pipeline) Run(ctx context.Context) (Result, error) {
	var res Result
	items, err := p.fetch(ctx)
	if err != nil {
		return res, err
	}
	res.Fetched = len(items)
	items = p.Filter.Apply(items)
	res.Matched = len(items)
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Published.After(items[j].Published)
	})

	existing, err := p.Store.ReadArticles()
	if err != nil {
		return res, fmt.Errorf("news: read articles: %w", err)
	}
	picked := p.pick(ctx, items, existing)
	if len(picked) == 0 {
		slog.Info("news: nothing new", "fetched", res.Fetched, "matched", res.Matched)
		res.Total = len(existing)
		return res, nil
	}

	fresh := make([]model.Article, 0, len(picked))
	for i, it := range picked {
		if i > 0 && p.Rewriter != nil && p.Throttle > 0 {
			if err := p.sleep(ctx, p.Throttle); err != nil {
				return res, err
			}
		}
		a, rewritten := p.build(ctx, it)
		if rewritten {
			res.Rewritten++
		}
		fresh = append(fresh, a)
	}

	merged := Merge(fresh, existing, p.maxArticles())
	if err := p.Store.WriteArticles(merged); err != nil {
		return res, fmt.Errorf("news: write articles: %w", err)
	}
	res.Added = len(fresh)
	res.Total = len(merged)

	for _, it := range picked {
		p.markSeen(ctx, it)
	}
	if p.Announcer != nil {
		for _, a := range fresh {
			if err := p.Announcer.Announce(ctx, a); err != nil {
				slog.Warn("news: announce failed", "id", a.ID, "error", err)
			}
		}
	}
	slog.Info("news: run complete", "fetched", res.Fetched, "matched", res.Matched,
		"added", res.Added, "rewritten", res.Rewritten, "total", res.Total)
	return res, nil
}

func (p *Pipeline) fetch(ctx context.Context) ([]feed.Item, error) {
	if len(p.FeedURLs) == 0 {
		return nil, errors.New("news: no feed urls configured")
	}
	var (
		out  []feed.Item
		errs []error
	)
	for _, u := range p.FeedURLs {
		items, err := p.Fetcher.Fetch(ctx, u)
		if err != nil {
			slog.Error("news: feed failed", "url", u, "error", err)
			errs = append(errs, err)
			continue
		}
		slog.Info("news: feed fetched", "url", u, "items", len(items))
		out = append(out, items...)
	}
	if len(errs) == len(p.FeedURLs) {
		return nil, errors.Join(errs...)
	}
	return out, nil
}

// pick drops entries already published or seen and applies the daily limit.
func (p *Pipeline) pick(ctx context.Context, items []feed.Item, existing []model.Article) []feed.Item {
	known := make(map[string]struct{}, len(existing))
	for _, a := range existing {
		known[Key(a.URL, a.Title)] = struct{}{}
	}
	limit := p.DailyLimit
	if limit <= 0 {
		limit = 5
	}
	out := make([]feed.Item, 0, limit)
	for _, it := range items {
		if len(out) >= limit {
			break
		}
		k := Key(it.Link, it.Title)
		if _, ok := known[k]; ok {
			continue
		}
		known[k] = struct{}{}
		if p.Seen != nil {
			seen, err := p.Seen.IsSeen(ctx, p.Source, k)
			if err != nil {
				slog.Warn("news: seen check failed", "key", k, "error", err)
			} else if seen {
				continue
			}
		}
		out = append(out, it)
	}
	return out
}

func (p *Pipeline) build(ctx context.Context, it feed.Item) (model.Article, bool) {
	title, content := it.Title, it.Content
	rewritten := false
	if p.Rewriter != nil {
		t, c, err := p.Rewriter.RewriteArticle(ctx, it.Title, it.Content, p.Language)
		if err != nil {
			slog.Warn("news: rewrite failed, keeping original", "title", it.Title, "error", err)
		} else {
			title, content, rewritten = t, c, true
		}
	}
	a := model.Article{
		ID:          p.newID(),
		Title:       title,
		Content:     content,
		Summary:     Summarize(content),
		ImageURL:    it.ImageURL,
		PublishedAt: it.Published.UTC().Format(time.RFC3339),
		Category:    p.Category,
		Source:      p.Source,
		URL:         it.Link,
	}
	if p.Images != nil && a.ImageURL != "" {
		local, err := p.Images.Localize(ctx, a.ID, a.ImageURL)
		if err != nil {
			slog.Warn("news: image localize failed, keeping remote url", "id", a.ID, "error", err)
		} else {
			a.ImageURL = local
		}
	}
	return a, rewritten
}

func (p *Pipeline) markSeen(ctx context.Context, it feed.Item) {
	if p.Seen == nil || p.SeenTTL <= 0 {
		return
	}
	if err := p.Seen.MarkSeen(ctx, p.Source, Key(it.Link, it.Title), p.SeenTTL); err != nil {
		slog.Warn("news: mark seen failed", "url", it.Link, "error", err)
	}
}

func (p *Pipeline) maxArticles() int {
	if p.MaxArticles <= 0 {
		return 50
	}
	return p.MaxArticles
}

func (p *Pipeline) newID() string {
	if p.NewID != nil {
		return p.NewID()
	}
	return uuid.NewString()
}

func (p *Pipeline) sleep(ctx context.Context, d time.Duration) error {
	if p.Sleep != nil {
		return p.Sleep(ctx, d)
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Key identifies an article: its source URL, or its lower-cased title when the URL is empty.
func Key(url, title string) string {
	if u := strings.TrimSpace(url); u != "" {
		return u
	}
	return "title:" + strings.ToLower(strings.TrimSpace(title))
}

// Summarize derives the card summary from article content.
func Summarize(content string) string {
	content = strings.TrimSpace(content)
	if content == "" {
		return ""
	}
	r := []rune(content)
	if len(r) > SummaryRunes {
		r = r[:SummaryRunes]
	}
	return strings.TrimSpace(string(r)) + "..."
}

// Merge puts fresh articles in front of existing ones, drops duplicates and caps the list.
func Merge(fresh, existing []model.Article, max int) []model.Article {
	out := make([]model.Article, 0, len(fresh)+len(existing))
	seen := make(map[string]struct{}, len(fresh)+len(existing))
	for _, list := range [][]model.Article{fresh, existing} {
		for _, a := range list {
			k := Key(a.URL, a.Title)
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			out = append(out, a)
		}
	}
	if max > 0 && len(out) > max {
		out = out[:max]
	}
	return out
}
