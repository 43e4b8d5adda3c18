package web

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"football-pulse/internal/model"
	"football-pulse/internal/scoreboard"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/rs/cors"
)

// ArticleSource reads the published article list.
type ArticleSource interface {
	ReadArticles() ([]model.Article, error)
}

// Options configures the HTTP server.
type Options struct {
	Addr         string
	PublicDir    string
	SiteName     string
	SiteURL      string
	Origins      []string
	PollInterval time.Duration // live scoreboard refresh for websocket viewers
}

type Server struct {
	opts       Options
	articles   ArticleSource
	scores     scoreboard.Fetcher
	upgrader   websocket.Upgrader
	httpServer *http.Server
}

func NewServer(opts Options, articles ArticleSource, scores scoreboard.Fetcher) *Server {
	if opts.Addr == "" {
		opts.Addr = ":8080"
	}
	if len(opts.Origins) == 0 {
		opts.Origins = []string{"*"}
	}
	s := &Server{opts: opts, articles: articles, scores: scores}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.checkOrigin,
	}
	return s
}

// Handler builds the router wrapped in CORS.
func (s *Server) Handler() http.Handler {
	router := mux.NewRouter()

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	api.HandleFunc("/articles", s.handleArticles).Methods(http.MethodGet)
	api.HandleFunc("/articles/{id}", s.handleArticle).Methods(http.MethodGet)
	api.HandleFunc("/search", s.handleSearch).Methods(http.MethodGet)
	api.HandleFunc("/scores/{kind}", s.handleScores).Methods(http.MethodGet)

	router.HandleFunc("/ws", s.handleWebSocket)
	router.HandleFunc("/article/{id}", s.handleArticlePage).Methods(http.MethodGet)

	if s.opts.PublicDir != "" {
		router.PathPrefix("/").Handler(http.FileServer(http.Dir(s.opts.PublicDir)))
	}

	c := cors.New(cors.Options{
		AllowedOrigins: s.opts.Origins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"*"},
	})
	return c.Handler(router)
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:         s.opts.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		slog.Info("web: listening", "addr", s.opts.Addr, "public", s.opts.PublicDir)
		errCh <- s.httpServer.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("web: shutdown error", "error", err)
		return err
	}
	slog.Info("web: stopped")
	return nil
}

func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, o := range s.opts.Origins {
		if o == "*" || o == origin {
			return true
		}
	}
	return false
}
