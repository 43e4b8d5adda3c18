package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"football-pulse/internal/news"
	"football-pulse/internal/storage"

	"github.com/spf13/cobra"
)

var announceCmd = &cobra.Command{
	Use:   "announce <article_id>",
	Short: "Post a stored article to the configured Telegram chat",
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) < 1 {
			return errors.New("requires <article_id>")
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		if cfg.Telegram.Token == "" || cfg.Telegram.ChatID == 0 {
			return fmt.Errorf("telegram config missing: set telegram.token and telegram.chat_id in config.yaml")
		}
		all, err := storage.NewJSONStore(cfg.App.DataDir).ReadArticles()
		if err != nil {
			return err
		}
		a, ok := news.Find(all, args[0])
		if !ok {
			return fmt.Errorf("article %s not found", args[0])
		}
		tg := newAnnouncer(cfg)
		if tg == nil {
			return errors.New("telegram bot could not be initialized")
		}
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
		defer cancel()
		if err := tg.Announce(ctx, a); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Announced article '%s'\n", a.Title)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(announceCmd)
}
