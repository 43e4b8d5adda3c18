package web

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"football-pulse/internal/model"
	"football-pulse/internal/news"
	"football-pulse/internal/scores"

	"github.com/gorilla/mux"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("web: encode response failed", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"time":   time.Now().Unix(),
	})
}

func (s *Server) loadArticles(w http.ResponseWriter) ([]model.Article, bool) {
	all, err := s.articles.ReadArticles()
	if err != nil {
		slog.Error("web: read articles failed", "error", err)
		writeError(w, http.StatusInternalServerError, "articles unavailable")
		return nil, false
	}
	return all, true
}

func (s *Server) handleArticles(w http.ResponseWriter, r *http.Request) {
	page := 1
	if p := r.URL.Query().Get("page"); p != "" {
		n, err := strconv.Atoi(p)
		if err != nil {
			writeError(w, http.StatusBadRequest, "page must be a number")
			return
		}
		page = n
	}
	all, ok := s.loadArticles(w)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"articles":   news.Page(all, page),
		"page":       page,
		"totalPages": news.TotalPages(len(all)),
		"total":      len(all),
	})
}

func (s *Server) handleArticle(w http.ResponseWriter, r *http.Request) {
	all, ok := s.loadArticles(w)
	if !ok {
		return
	}
	a, found := news.Find(all, mux.Vars(r)["id"])
	if !found {
		writeError(w, http.StatusNotFound, "article not found")
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	all, ok := s.loadArticles(w)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"query":    q,
		"articles": news.Search(all, q),
	})
}

func (s *Server) handleScores(w http.ResponseWriter, r *http.Request) {
	kind, ok := scores.ParseKind(mux.Vars(r)["kind"])
	if !ok {
		writeError(w, http.StatusNotFound, "unknown scores view")
		return
	}
	ms := s.scores.FetchFootballScores(r.Context(), kind)
	if ms == nil {
		ms = []model.Match{}
	}
	writeJSON(w, http.StatusOK, ms)
}

func (s *Server) handleArticlePage(w http.ResponseWriter, r *http.Request) {
	var a *model.Article
	status := http.StatusOK
	all, err := s.articles.ReadArticles()
	if err != nil {
		slog.Error("web: read articles failed", "error", err)
	} else if found, ok := news.Find(all, mux.Vars(r)["id"]); ok {
		a = &found
	}
	if a == nil {
		status = http.StatusNotFound
	}
	b, err := RenderPage(NewPageData(s.opts.SiteName, s.opts.SiteURL, a))
	if err != nil {
		slog.Error("web: render article page failed", "error", err)
		http.Error(w, "render error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(b)
}
