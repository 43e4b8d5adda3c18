package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"football-pulse/internal/config"
	"football-pulse/internal/storage"
	"football-pulse/internal/web"
	"football-pulse/worker"

	"github.com/spf13/cobra"
)

var (
	serveNoNews   bool
	serveNoScores bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server and the news and scores workers",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		rs, closeRedis := openRedis(cfg)
		defer closeRedis()
		files := storage.NewJSONStore(cfg.App.DataDir)

		svc, err := newScoresService(cfg, rs)
		if err != nil {
			return err
		}
		ws := []worker.Worker{}

		if !serveNoScores {
			pub := &worker.ScoresPublisher{
				Scores:   svc,
				Store:    files,
				Interval: config.Duration(cfg.Scores.FetchInterval, 5*time.Minute),
			}
			slog.Info("starting scores publisher", "provider", svc.Provider.Name(), "interval", pub.Interval)
			ws = append(ws, pub)
		}

		if !serveNoNews {
			p, err := newNewsPipeline(cfg, files, rs)
			if err != nil {
				return err
			}
			collector := &worker.NewsCollector{
				Pipeline: p,
				Interval: config.Duration(cfg.News.FetchInterval, time.Hour),
			}
			slog.Info("starting news collector", "feeds", cfg.News.FeedURLs, "interval", collector.Interval)
			ws = append(ws, collector)
		}

		srv := web.NewServer(web.Options{
			Addr:         cfg.Server.Addr,
			PublicDir:    cfg.Server.PublicDir,
			SiteName:     cfg.Server.SiteName,
			SiteURL:      cfg.Server.SiteURL,
			Origins:      cfg.Server.Origins,
			PollInterval: config.Duration(cfg.Scores.PollInterval, time.Minute),
		}, files, svc)
		ws = append(ws, worker.Func(srv.Run))

		mgr := worker.NewManager(ws...)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		// Signal handling for systemd
		sigc := make(chan os.Signal, 1)
		signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			s := <-sigc
			slog.Info("received signal, shutting down", "signal", s.String())
			cancel()
		}()

		return mgr.Start(ctx)
	},
}

func init() {
	serveCmd.Flags().BoolVar(&serveNoNews, "no-news", false, "do not run the news collector")
	serveCmd.Flags().BoolVar(&serveNoScores, "no-scores-files", false, "do not write the static match files")
	rootCmd.AddCommand(serveCmd)
}
