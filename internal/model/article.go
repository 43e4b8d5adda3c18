package model

// Article is a news item as persisted in articles.json.
type Article struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Content     string `json:"content"`
	Summary     string `json:"summary"`
	ImageURL    string `json:"imageUrl"`
	PublishedAt string `json:"publishedAt"`
	Category    string `json:"category"`
	Source      string `json:"source"`
	URL         string `json:"url"`
}
