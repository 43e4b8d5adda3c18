package web

import (
	"bytes"
	_ "embed"
	"html/template"
	"strings"

	"football-pulse/internal/model"
)

const (
	defaultTitle       = "FootballPulse - Canlı Futbol Haberleri ve Skorlar"
	defaultDescription = "Türk futbolundan en güncel haberler, canlı maç skorları ve istatistikler. Her saat başı güncellenen futbol haberleri."
	defaultImage       = "https://images.pexels.com/photos/46798/the-ball-stadion-football-the-pitch-46798.jpeg"
	descriptionRunes   = 160
)

// PageData is what article.tmpl renders.
type PageData struct {
	Lang        string
	SiteName    string
	Title       string
	Description string
	Image       string
	URL         string
	Article     *model.Article
}

//go:embed article.tmpl
var articleTpl string

var articlePage = template.Must(template.New("article").Funcs(template.FuncMap{
	"paragraphs": paragraphs,
}).Parse(articleTpl))

// NewPageData fills the meta tags for an article, or the site defaults when a is nil.
func NewPageData(siteName, siteURL string, a *model.Article) PageData {
	d := PageData{
		Lang:        "tr",
		SiteName:    siteName,
		Title:       defaultTitle,
		Description: defaultDescription,
		Image:       defaultImage,
	}
	siteURL = strings.TrimRight(siteURL, "/")
	if siteURL != "" {
		d.URL = siteURL + "/"
	}
	if a == nil {
		return d
	}
	d.Article = a
	d.Title = a.Title
	d.Description = a.Summary
	if strings.TrimSpace(d.Description) == "" {
		d.Description = truncate(a.Content, descriptionRunes)
	}
	if a.ImageURL != "" {
		d.Image = a.ImageURL
		if strings.HasPrefix(a.ImageURL, "/") && siteURL != "" {
			d.Image = siteURL + a.ImageURL
		}
	}
	if siteURL != "" {
		d.URL = siteURL + "/article/" + a.ID
	}
	return d
}

// RenderPage renders the article shell.
func RenderPage(d PageData) ([]byte, error) {
	var buf bytes.Buffer
	if err := articlePage.Execute(&buf, d); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func paragraphs(s string) []string {
	var out []string
	for _, p := range strings.Split(s, "\n") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func truncate(s string, n int) string {
	r := []rune(strings.TrimSpace(s))
	if len(r) <= n {
		return string(r)
	}
	return string(r[:n])
}
