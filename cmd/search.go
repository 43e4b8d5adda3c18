package cmd

import (
	"fmt"
	"strings"

	"football-pulse/internal/news"
	"football-pulse/internal/storage"

	"github.com/spf13/cobra"
)

var searchCmd = &cobra.Command{
	Use:   "search <terms...>",
	Short: "Search stored articles by title, content and summary",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		all, err := storage.NewJSONStore(cfg.App.DataDir).ReadArticles()
		if err != nil {
			return err
		}
		hits := news.Search(all, strings.Join(args, " "))
		out := cmd.OutOrStdout()
		for _, a := range hits {
			fmt.Fprintf(out, "%s  %s  %s\n", a.ID, a.PublishedAt, a.Title)
		}
		fmt.Fprintf(out, "%d of %d articles match\n", len(hits), len(all))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)
}
