package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"football-pulse/internal/scores"
	"football-pulse/internal/storage"
	"football-pulse/worker"

	"github.com/spf13/cobra"
)

var fetchScoresKind string

var fetchScoresCmd = &cobra.Command{
	Use:   "fetch-scores",
	Short: "Fetch live, today and upcoming matches once and write the match files",
	Long:  "Without --kind, writes live-matches.json, today-matches.json and upcoming-matches.json. With --kind, prints that view as JSON.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		svc, err := newScoresService(cfg, nil)
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		if fetchScoresKind != "" {
			kind, ok := scores.ParseKind(fetchScoresKind)
			if !ok {
				return fmt.Errorf("unknown kind %q (live, today, upcoming)", fetchScoresKind)
			}
			ms, err := svc.Fetch(ctx, kind)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(ms)
		}

		pub := &worker.ScoresPublisher{Scores: svc, Store: storage.NewJSONStore(cfg.App.DataDir)}
		if err := pub.RunOnce(ctx); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "match files written to %s\n", cfg.App.DataDir)
		return nil
	},
}

func init() {
	fetchScoresCmd.Flags().StringVar(&fetchScoresKind, "kind", "", "print one view (live, today, upcoming) instead of writing files")
	rootCmd.AddCommand(fetchScoresCmd)
}
