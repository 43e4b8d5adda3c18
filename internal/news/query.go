package news

import (
	"strings"

	"football-pulse/internal/model"
)

// PageSize is the number of articles per listing page.
const PageSize = 4

// Page returns the 1-based page of articles. Out-of-range pages are empty.
func Page(articles []model.Article, page int) []model.Article {
	if page < 1 {
		return []model.Article{}
	}
	start := (page - 1) * PageSize
	if start >= len(articles) {
		return []model.Article{}
	}
	end := start + PageSize
	if end > len(articles) {
		end = len(articles)
	}
	out := make([]model.Article, end-start)
	copy(out, articles[start:end])
	return out
}

// TotalPages is the number of pages needed for n articles.
func TotalPages(n int) int {
	if n <= 0 {
		return 0
	}
	return (n + PageSize - 1) / PageSize
}

// Search returns articles whose title, content and summary together contain every query term.
// An empty query matches nothing.
func Search(articles []model.Article, q string) []model.Article {
	terms := strings.Fields(strings.ToLower(q))
	out := []model.Article{}
	if len(terms) == 0 {
		return out
	}
	for _, a := range articles {
		hay := strings.ToLower(a.Title + " " + a.Content + " " + a.Summary)
		ok := true
		for _, t := range terms {
			if !strings.Contains(hay, t) {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, a)
		}
	}
	return out
}

// Find returns the article with the given id.
func Find(articles []model.Article, id string) (model.Article, bool) {
	for _, a := range articles {
		if a.ID == id {
			return a, true
		}
	}
	return model.Article{}, false
}
