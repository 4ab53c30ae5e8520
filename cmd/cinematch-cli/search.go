package main

import (
	"github.com/spf13/cobra"
)

var searchLimit int

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "List the titles that best match a query",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		limit := searchLimit
		if limit <= 0 {
			limit = settings.DefaultSearchLimit
		}
		res, err := client.Search(cmd.Context(), args[0], limit)
		if err != nil {
			return err
		}
		if jsonOut {
			return writeJSON(cmd.OutOrStdout(), res)
		}
		renderSearch(cmd.OutOrStdout(), res)
		return nil
	},
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "l", 0, "maximum number of results (default from config)")
	rootCmd.AddCommand(searchCmd)
}
