package feed

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
)

// Item is one feed entry reduced to what the news pipeline needs.
type Item struct {
	Title      string
	Link       string
	Content    string // plain text
	ImageURL   string
	Categories []string
	Published  time.Time
}

// Fetcher loads a feed URL.
type Fetcher interface {
	Fetch(ctx context.Context, feedURL string) ([]Item, error)
}

// RSSFetcher reads RSS/Atom feeds with gofeed.
type RSSFetcher struct {
	parser *gofeed.Parser
	now    func() time.Time
}

func NewRSSFetcher(timeout time.Duration) *RSSFetcher {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	p := gofeed.NewParser()
	p.Client = &http.Client{Timeout: timeout}
	return &RSSFetcher{parser: p, now: time.Now}
}

func (f *RSSFetcher) Fetch(ctx context.Context, feedURL string) ([]Item, error) {
	fd, err := f.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("feed: fetch %s: %w", feedURL, err)
	}
	return f.convert(fd), nil
}

// ParseString converts a feed document held in memory.
func (f *RSSFetcher) ParseString(doc string) ([]Item, error) {
	fd, err := f.parser.ParseString(doc)
	if err != nil {
		return nil, err
	}
	return f.convert(fd), nil
}

func (f *RSSFetcher) convert(fd *gofeed.Feed) []Item {
	now := f.now().UTC()
	items := make([]Item, 0, len(fd.Items))
	for _, it := range fd.Items {
		pub := now
		if it.PublishedParsed != nil {
			pub = it.PublishedParsed.UTC()
		} else if it.UpdatedParsed != nil {
			pub = it.UpdatedParsed.UTC()
		}
		text := plainText(it.Description)
		if text == "" {
			text = plainText(it.Content)
		}
		items = append(items, Item{
			Title:      strings.TrimSpace(it.Title),
			Link:       strings.TrimSpace(it.Link),
			Content:    text,
			ImageURL:   imageOf(it),
			Categories: it.Categories,
			Published:  pub,
		})
	}
	return items
}

// imageOf picks the item image: <image>, enclosure, media:thumbnail,
// media:content, then the first <img> in the HTML body.
func imageOf(it *gofeed.Item) string {
	if it.Image != nil && strings.TrimSpace(it.Image.URL) != "" {
		return strings.TrimSpace(it.Image.URL)
	}
	for _, e := range it.Enclosures {
		if e != nil && strings.TrimSpace(e.URL) != "" {
			return strings.TrimSpace(e.URL)
		}
	}
	for _, name := range []string{"thumbnail", "content"} {
		for _, ext := range it.Extensions["media"][name] {
			if u := strings.TrimSpace(ext.Attrs["url"]); u != "" {
				return u
			}
		}
	}
	if u := firstImage(it.Content); u != "" {
		return u
	}
	return firstImage(it.Description)
}

func firstImage(html string) string {
	if !strings.Contains(html, "<img") {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	src, _ := doc.Find("img[src]").First().Attr("src")
	return strings.TrimSpace(src)
}

func plainText(html string) string {
	html = strings.TrimSpace(html)
	if html == "" {
		return ""
	}
	if !strings.ContainsAny(html, "<&") {
		return strings.Join(strings.Fields(html), " ")
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return strings.Join(strings.Fields(html), " ")
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}

// Filter keeps items about a topic: a pattern in the link path, a category or the title.
type Filter struct {
	link  []*regexp.Regexp
	match []*regexp.Regexp
}

// NewFilter compiles case-insensitive patterns. An empty list keeps everything.
func NewFilter(patterns []string) (*Filter, error) {
	f := &Filter{}
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		m, err := regexp.Compile("(?i)" + p)
		if err != nil {
			return nil, fmt.Errorf("feed: bad pattern %q: %w", p, err)
		}
		l := regexp.MustCompile("(?i)/(?:" + p + ")(?:[/?#.]|$)")
		f.match = append(f.match, m)
		f.link = append(f.link, l)
	}
	return f, nil
}

// Keep reports whether the item passes the filter.
func (f *Filter) Keep(it Item) bool {
	if f == nil || len(f.match) == 0 {
		return true
	}
	for i, m := range f.match {
		if f.link[i].MatchString(it.Link) {
			return true
		}
		for _, c := range it.Categories {
			if m.MatchString(c) {
				return true
			}
		}
		if m.MatchString(it.Title) {
			return true
		}
	}
	return false
}

// Apply returns the items that pass the filter.
func (f *Filter) Apply(items []Item) []Item {
	out := make([]Item, 0, len(items))
	for _, it := range items {
		if f.Keep(it) {
			out = append(out, it)
		}
	}
	return out
}
