package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/kailas-cloud/cinematch/internal/config"
	"github.com/kailas-cloud/cinematch/internal/version"
	cinematch "github.com/kailas-cloud/cinematch/pkg/sdk"
)

var (
	cfgFile  string
	jsonOut  bool
	noColor  bool
	verbose  bool
	client   *cinematch.Client
	settings config.RecommendConfig
)

var rootCmd = &cobra.Command{
	Use:   "cinematch-cli",
	Short: "Content-based movie recommendations from the terminal",
	Long: `cinematch-cli loads the TMDB movie dataset named in the config file,
builds the similarity index in memory and answers queries against it.`,
	Version:       version.String(),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if noColor || jsonOut {
			color.NoColor = true
		}
		if !needsCorpus(cmd) {
			return nil
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		settings = cfg.Recommend

		c, err := newClient(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		client = c
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (default: config/$ENV.yaml)")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "print results as JSON")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log SDK operations to stderr")
}

// needsCorpus reports whether cmd queries movies. help and completion do not.
func needsCorpus(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		switch c.Name() {
		case "help", "completion":
			return false
		}
	}
	return true
}

func loadConfig() (config.Config, error) {
	if cfgFile != "" {
		cfg, err := config.LoadFile(cfgFile)
		if err != nil {
			return config.Config{}, fmt.Errorf("load config: %w", err)
		}
		return cfg, nil
	}
	cfg, err := config.Load(config.GetEnv())
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func newClient(ctx context.Context, cfg config.Config) (*cinematch.Client, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	opts := []cinematch.Option{
		cinematch.WithAcceptanceThreshold(cfg.Recommend.AcceptanceThreshold),
		cinematch.WithCastLimit(cfg.Recommend.CastLimit),
		cinematch.WithDirectorJob(cfg.Recommend.DirectorJob),
	}
	switch cfg.Dataset.Format {
	case config.DatasetParquet:
		opts = append(opts, cinematch.WithParquet(cfg.Dataset.ParquetPath))
	default:
		opts = append(opts, cinematch.WithCSV(cfg.Dataset.MoviesPath, cfg.Dataset.CreditsPath))
	}
	if verbose {
		opts = append(opts, cinematch.WithLogger(
			slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})),
		))
	}

	c, err := cinematch.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load dataset: %w", err)
	}
	return c, nil
}
