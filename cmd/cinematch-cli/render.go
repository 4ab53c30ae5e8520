package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/goccy/go-json"

	cinematch "github.com/kailas-cloud/cinematch/pkg/sdk"
)

const (
	overviewWidth = 50
	castWidth     = 30
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

// renderRecommendation prints the matched title and a table of neighbours.
// Cells stay uncolored so tabwriter can align them.
func renderRecommendation(w io.Writer, rec *cinematch.Recommendation) {
	fmt.Fprintf(w, "\nClosest match found: %s (%d%%)\n\n",
		color.New(color.FgYellow, color.Bold).Sprint(rec.Match.Title), rec.Confidence)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TITLE\tGENRES\tRATING\tRELEASED\tDIRECTOR\tCAST\tSIMILARITY\tOVERVIEW")
	for i := range rec.Movies {
		m := &rec.Movies[i]
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%.3f\t%s\n",
			m.Title,
			orNA(m.Genres),
			rating(m.Rating),
			orNA(m.ReleaseDate),
			orNA(m.Director),
			truncate(orNA(m.Cast), castWidth),
			m.Similarity,
			truncate(orNA(m.Overview), overviewWidth),
		)
	}
	_ = tw.Flush()
}

func renderSearch(w io.Writer, res []cinematch.SearchResult) {
	if len(res) == 0 {
		fmt.Fprintln(w, "No movies loaded.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SCORE\tTITLE\tYEAR\tRATING\tGENRES")
	for i := range res {
		r := &res[i]
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n",
			r.Confidence, r.Title, orNA(r.Year), rating(r.Rating), orNA(r.Genres))
	}
	_ = tw.Flush()
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}

func rating(r *float64) string {
	if r == nil {
		return "N/A"
	}
	return strconv.FormatFloat(*r, 'f', 1, 64)
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}
