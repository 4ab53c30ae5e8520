package main

import (
	"github.com/spf13/cobra"
)

var recommendCount int

var recommendCmd = &cobra.Command{
	Use:   "recommend <title>",
	Short: "Recommend movies similar to the closest title match",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n := recommendCount
		if n <= 0 {
			n = settings.DefaultResults
		}
		rec, err := client.Recommend(cmd.Context(), args[0], n)
		if err != nil {
			return err
		}
		if jsonOut {
			return writeJSON(cmd.OutOrStdout(), rec)
		}
		renderRecommendation(cmd.OutOrStdout(), &rec)
		return nil
	},
}

func init() {
	recommendCmd.Flags().IntVarP(&recommendCount, "count", "n", 0, "number of recommendations (default from config)")
	rootCmd.AddCommand(recommendCmd)
}
