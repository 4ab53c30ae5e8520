package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	cinematch "github.com/kailas-cloud/cinematch/pkg/sdk"
)

const shellDefaultResults = 3

var shellCount int

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Interactive prompt: type a movie name, get recommendations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runShell(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), client, shellCount)
	},
}

func init() {
	shellCmd.Flags().IntVarP(&shellCount, "count", "n", shellDefaultResults, "number of recommendations per query")
	rootCmd.AddCommand(shellCmd)
}

type recommender interface {
	Recommend(ctx context.Context, title string, n int) (cinematch.Recommendation, error)
}

// runShell reads one title per line until "exit" or EOF. Failed lookups are
// reported and the loop continues.
func runShell(ctx context.Context, in io.Reader, out io.Writer, rec recommender, n int) error {
	title := color.New(color.FgCyan, color.Bold)
	prompt := color.New(color.Bold)

	title.Fprintln(out, "Movie Recommendation System")

	sc := bufio.NewScanner(in)
	for {
		prompt.Fprint(out, "\nEnter a movie name (or type 'exit' to quit): ")
		if !sc.Scan() {
			break
		}
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if strings.EqualFold(line, "exit") {
			break
		}

		r, err := rec.Recommend(ctx, line, n)
		switch {
		case errors.Is(err, cinematch.ErrMovieNotFound):
			fmt.Fprintf(out, "%s no confident match for %q. Please try another movie.\n",
				color.RedString("Error:"), line)
			continue
		case err != nil:
			fmt.Fprintf(out, "%s %v. Please try another movie.\n", color.RedString("Error:"), err)
			continue
		}
		if jsonOut {
			if err := writeJSON(out, r); err != nil {
				return err
			}
			continue
		}
		renderRecommendation(out, &r)
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	color.New(color.FgGreen, color.Bold).Fprintln(out, "\nThanks for using the Movie Recommender!")
	return nil
}
