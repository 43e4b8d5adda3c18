package cmd

import "github.com/spf13/cobra"

// redisCmd groups Redis-related subcommands (seen marks and the scores cache live there).
var redisCmd = &cobra.Command{
	Use:   "redis",
	Short: "Redis utilities",
}

func init() {
	rootCmd.AddCommand(redisCmd)
}
