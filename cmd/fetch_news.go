package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"football-pulse/internal/storage"

	"github.com/spf13/cobra"
)

var fetchNewsNoRewrite bool

var fetchNewsCmd = &cobra.Command{
	Use:   "fetch-news",
	Short: "Fetch the football feed once and update articles.json",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		if fetchNewsNoRewrite {
			cfg.News.Rewrite = false
		}
		rs, closeRedis := openRedis(cfg)
		defer closeRedis()

		p, err := newNewsPipeline(cfg, storage.NewJSONStore(cfg.App.DataDir), rs)
		if err != nil {
			return err
		}
		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		res, err := p.Run(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "fetched %d, matched %d, added %d (rewritten %d), total %d\n",
			res.Fetched, res.Matched, res.Added, res.Rewritten, res.Total)
		return nil
	},
}

func init() {
	fetchNewsCmd.Flags().BoolVar(&fetchNewsNoRewrite, "no-rewrite", false, "store feed articles without the language model")
	rootCmd.AddCommand(fetchNewsCmd)
}
