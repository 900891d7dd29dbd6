// Command ingest is the Champions Data pipeline CLI.
//
// Usage:
//
//	champions-ingest fetch cards
//	champions-ingest fetch decks --start 2019-11-01
//	champions-ingest filter
//	champions-ingest build --workers 8 --verify
//	champions-ingest package
//	champions-ingest run
//	champions-ingest publish
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/albapepper/champions-data/internal/config"
	"github.com/albapepper/champions-data/internal/cooccurrence"
	"github.com/albapepper/champions-data/internal/db"
	"github.com/albapepper/champions-data/internal/fetch"
	"github.com/albapepper/champions-data/internal/filter"
	"github.com/albapepper/champions-data/internal/packager"
	"github.com/albapepper/champions-data/internal/progress"
	"github.com/albapepper/champions-data/internal/provider"
	"github.com/albapepper/champions-data/internal/provider/marvelcdb"
	"github.com/albapepper/champions-data/internal/publish"
)

var logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

func main() {
	// Load .env if present
	_ = godotenv.Load(".env")

	root := &cobra.Command{
		Use:          "champions-ingest",
		Short:        "Champions Data pipeline CLI",
		SilenceUsage: true,
	}

	root.AddCommand(fetchCmd())
	root.AddCommand(filterCmd())
	root.AddCommand(buildCmd())
	root.AddCommand(packageCmd())
	root.AddCommand(runCmd())
	root.AddCommand(publishCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// --------------------------------------------------------------------------
// fetch command
// --------------------------------------------------------------------------

func fetchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Fetch raw data from MarvelCDB",
	}
	cmd.AddCommand(fetchCardsCmd())
	cmd.AddCommand(fetchDecksCmd())
	return cmd
}

func newClient(cfg *config.Config) *marvelcdb.Client {
	return marvelcdb.NewClient(marvelcdb.Options{
		BaseURL:           cfg.MarvelCDBBaseURL,
		UserAgent:         cfg.UserAgent,
		RequestsPerMinute: cfg.RequestsPerMinute,
		Timeout:           cfg.HTTPRequestTimeout,
		RetryBackoff:      cfg.RetryBackoff,
	}, logger)
}

func fetchCardsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cards",
		Short: "Fetch the card catalog and build the card index",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStage(func(ctx context.Context, cfg *config.Config) error {
				start := time.Now()
				result, err := fetch.Cards(ctx, newClient(cfg),
					cfg.Path(config.RawCardsFile), cfg.Path(config.CardIndexFile), logger)
				if err != nil {
					return err
				}
				logger.Info("Card fetch finished", "duration", time.Since(start).Round(time.Second), "summary", result.Summary())
				return nil
			})
		},
	}
}

func fetchDecksCmd() *cobra.Command {
	var startDate, endDate string
	cmd := &cobra.Command{
		Use:   "decks",
		Short: "Fetch every published decklist, one day at a time (resumable)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStage(func(ctx context.Context, cfg *config.Config) error {
				opts := fetch.DeckOptions{
					Start:    cfg.FetchStartDate,
					End:      time.Now().UTC(),
					OutPath:  cfg.Path(config.RawDecksFile),
					LogEvery: cfg.ProgressLogEvery,
				}
				if startDate != "" {
					t, err := time.Parse(time.DateOnly, startDate)
					if err != nil {
						return fmt.Errorf("--start: %w", err)
					}
					opts.Start = t
				}
				if endDate != "" {
					t, err := time.Parse(time.DateOnly, endDate)
					if err != nil {
						return fmt.Errorf("--end: %w", err)
					}
					opts.End = t
				}
				if opts.End.Before(opts.Start) {
					return fmt.Errorf("end date %s is before start date %s",
						opts.End.Format(time.DateOnly), opts.Start.Format(time.DateOnly))
				}

				store, err := progress.Open(cfg.Path(config.ProgressFile))
				if err != nil {
					return err
				}
				defer store.Close()

				start := time.Now()
				result := fetch.Decks(ctx, newClient(cfg), store, opts, logger)
				logger.Info("Deck fetch finished",
					"duration", time.Since(start).Round(time.Second),
					"first_deck", result.FirstDeck, "last_deck", result.LastDeck,
					"summary", result.Summary())
				logErrors("fetch error", result.Errors)
				if result.Interrupted {
					logger.Warn("Fetch interrupted; rerun to resume from the checkpoint", "checkpoint", store.Path())
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&startDate, "start", "", "First day to fetch (YYYY-MM-DD); defaults to FETCH_START_DATE")
	cmd.Flags().StringVar(&endDate, "end", "", "Last day to fetch (YYYY-MM-DD); defaults to today (UTC)")
	return cmd
}

// --------------------------------------------------------------------------
// filter command
// --------------------------------------------------------------------------

func filterCmd() *cobra.Command {
	var minCards int
	cmd := &cobra.Command{
		Use:   "filter",
		Short: "Drop decks with no hero, too few cards, or an unreadable date",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStage(func(ctx context.Context, cfg *config.Config) error {
				if cmd.Flags().Changed("min-cards") {
					cfg.Pipeline.MinDeckCards = minCards
				}
				decks, err := provider.LoadDecks(cfg.Path(config.RawDecksFile))
				if err != nil {
					return err
				}
				logger.Info("Loaded decks", "decks", len(decks))

				kept, report := filter.Apply(decks, cfg.Pipeline.MinDeckCards)
				report.Log(logger)

				out := cfg.Path(config.FilteredDecksFile)
				if _, err := provider.WriteJSON(out, kept, "  "); err != nil {
					return err
				}
				logger.Info("Filter finished", "path", out, "summary", report.Summary())
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&minCards, "min-cards", config.DefaultPipeline().MinDeckCards, "Minimum counted cards per deck")
	return cmd
}

// --------------------------------------------------------------------------
// build / package / run commands
// --------------------------------------------------------------------------

type buildFlags struct {
	workers   int
	threshold float64
	halfLife  float64
	floor     float64
	verify    bool
}

func (f *buildFlags) register(cmd *cobra.Command) {
	def := config.DefaultPipeline()
	cmd.Flags().IntVar(&f.workers, "workers", def.Workers, "Concurrent worker count")
	cmd.Flags().Float64Var(&f.threshold, "threshold", def.FrequencyThreshold, "Minimum card frequency kept per bucket")
	cmd.Flags().Float64Var(&f.halfLife, "half-life", def.HalfLifeDays, "Recency decay constant in days")
	cmd.Flags().Float64Var(&f.floor, "floor", def.WeightFloor, "Minimum deck weight")
	cmd.Flags().BoolVar(&f.verify, "verify", false, "Check every bucket against its invariants before writing")
}

// apply overrides cfg with the flags the user actually set.
func (f *buildFlags) apply(cmd *cobra.Command, cfg *config.Config) error {
	if cmd.Flags().Changed("workers") {
		cfg.Pipeline.Workers = f.workers
	}
	if cmd.Flags().Changed("threshold") {
		cfg.Pipeline.FrequencyThreshold = f.threshold
	}
	if cmd.Flags().Changed("half-life") {
		cfg.Pipeline.HalfLifeDays = f.halfLife
	}
	if cmd.Flags().Changed("floor") {
		cfg.Pipeline.WeightFloor = f.floor
	}
	return cfg.Pipeline.Validate()
}

func buildCmd() *cobra.Command {
	var flags buildFlags
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Compute per-hero card statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStage(func(ctx context.Context, cfg *config.Config) error {
				if err := flags.apply(cmd, cfg); err != nil {
					return err
				}
				return buildStage(ctx, cfg, flags.verify)
			})
		},
	}
	flags.register(cmd)
	return cmd
}

func packageCmd() *cobra.Command {
	var topCards, topPairs int
	cmd := &cobra.Command{
		Use:   "package",
		Short: "Compress per-hero statistics into the web artifact",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStage(func(ctx context.Context, cfg *config.Config) error {
				if cmd.Flags().Changed("top-cards") {
					cfg.Pipeline.TopCardsPerAspect = topCards
				}
				if cmd.Flags().Changed("top-pairs") {
					cfg.Pipeline.TopPairsPerCard = topPairs
				}
				if err := cfg.Pipeline.Validate(); err != nil {
					return err
				}
				return packageStage(cfg)
			})
		},
	}
	def := config.DefaultPipeline()
	cmd.Flags().IntVar(&topCards, "top-cards", def.TopCardsPerAspect, "Cards kept per aspect bucket")
	cmd.Flags().IntVar(&topPairs, "top-pairs", def.TopPairsPerCard, "Partners kept per card")
	return cmd
}

func runCmd() *cobra.Command {
	var flags buildFlags
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Build then package",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStage(func(ctx context.Context, cfg *config.Config) error {
				if err := flags.apply(cmd, cfg); err != nil {
					return err
				}
				if err := buildStage(ctx, cfg, flags.verify); err != nil {
					return err
				}
				if err := ctx.Err(); err != nil {
					return fmt.Errorf("interrupted before packaging: %w", err)
				}
				return packageStage(cfg)
			})
		},
	}
	flags.register(cmd)
	return cmd
}

func buildStage(ctx context.Context, cfg *config.Config, verify bool) error {
	cards, err := provider.LoadCards(cfg.Path(config.RawCardsFile))
	if err != nil {
		return err
	}
	index, err := provider.LoadCardIndex(cfg.Path(config.CardIndexFile))
	if err != nil {
		return err
	}
	decks, err := provider.LoadDecks(cfg.Path(config.FilteredDecksFile))
	if err != nil {
		return err
	}
	logger.Info("Loaded decks", "decks", len(decks))

	outDir := cfg.Path(config.CooccurrenceDir)
	removed, err := cooccurrence.ClearResults(outDir)
	if err != nil {
		return err
	}
	if removed > 0 {
		logger.Info("Cleared previous results", "files", removed, "dir", outDir)
	}

	p := cfg.Pipeline
	logger.Info("Building co-occurrence",
		"threshold", p.FrequencyThreshold, "half_life_days", p.HalfLifeDays,
		"floor", p.WeightFloor, "workers", p.Workers, "verify", verify)

	result := cooccurrence.Run(ctx, cooccurrence.Input{Cards: cards, Index: index, Decks: decks},
		cooccurrence.RunOptions{
			Params: cooccurrence.Params{
				Threshold: p.FrequencyThreshold,
				Decay:     cooccurrence.Decay{HalfLifeDays: p.HalfLifeDays, Floor: p.WeightFloor},
			},
			OutDir:         outDir,
			Workers:        p.Workers,
			SmallHeroDecks: p.SmallHeroDecks,
			Verify:         verify,
		}, logger)

	result.LogReport(p.WeightFloor, logger)
	logger.Info("Build finished", "dir", outDir, "summary", result.Summary())
	logErrors("build error", result.Errors)
	return nil
}

func packageStage(cfg *config.Config) error {
	results, err := cooccurrence.LoadResults(cfg.Path(config.CooccurrenceDir))
	if err != nil {
		return err
	}
	if len(results) == 0 {
		return fmt.Errorf("no hero results in %s; run build first", cfg.Path(config.CooccurrenceDir))
	}
	index, err := provider.LoadCardIndex(cfg.Path(config.CardIndexFile))
	if err != nil {
		return err
	}
	cards, err := provider.LoadCards(cfg.Path(config.RawCardsFile))
	if err != nil {
		return err
	}

	p := cfg.Pipeline
	data, listing, stats := packager.Build(results, index, packager.HeroMetadata(cards),
		packager.Params{TopCards: p.TopCardsPerAspect, TopPairs: p.TopPairsPerCard})
	logger.Info("Compressed heroes",
		"heroes", len(listing), "frequency_entries", stats.FrequencyEntries, "pair_entries", stats.PairEntries)

	report, err := packager.Write(cfg.Path(config.WebDir), data, listing, p.SizeTargetBytes, logger)
	if err != nil {
		return err
	}
	logger.Info("Package finished",
		"deck_data_bytes", report.DeckDataBytes, "heroes_bytes", report.HeroesBytes, "over_target", report.OverTarget)
	return nil
}

// --------------------------------------------------------------------------
// publish command
// --------------------------------------------------------------------------

func publishCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "publish",
		Short: "Upsert per-hero statistics into Postgres",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStage(func(ctx context.Context, cfg *config.Config) error {
				results, err := cooccurrence.LoadResults(cfg.Path(config.CooccurrenceDir))
				if err != nil {
					return err
				}

				pool, err := db.New(ctx, cfg)
				if err != nil {
					return fmt.Errorf("connect to database: %w", err)
				}
				defer pool.Close()

				result := publish.Heroes(ctx, pool, results, logger)
				logger.Info("Publish finished", "summary", result.Summary())
				logErrors("publish error", result.Errors)
				return nil
			})
		},
	}
}

// --------------------------------------------------------------------------
// Shared setup
// --------------------------------------------------------------------------

// runStage handles config loading and context cancellation.
func runStage(fn func(ctx context.Context, cfg *config.Config) error) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.Debug {
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	return fn(ctx, cfg)
}

func logErrors(msg string, errs []string) {
	for _, e := range errs {
		logger.Error(msg, "error", e)
	}
}
