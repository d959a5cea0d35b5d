package main

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"os/signal"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/shabbyrobe/subcrack"
	"github.com/shabbyrobe/subcrack/internal/telemetry"
)

var errNoModel = errors.New("no model: use --model-file, --model or --corpus")

func (a *app) decryptCmd() *cobra.Command {
	var (
		modelFile     string
		modelName     string
		corpus        string
		iterations    int
		reportEvery   int
		chains        int
		seed          uint64
		distinctSwaps bool
		fastExp       bool
		quiet         bool
	)

	cmd := &cobra.Command{
		Use:   "decrypt [flags] [CIPHERTEXT... | -]",
		Short: "Recover plaintext from substitution ciphertext",
		Long: `Search for the key that makes the ciphertext most plausible under a
bigram model. The model comes from --model-file, from the store via
--model, or is trained on the fly from --corpus.

Progress (the best decoding so far) goes to stderr every --report-every
iterations; 0 or --quiet disables it. The plaintext goes to stdout.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			if flags.Changed("model") {
				a.cfg.Model = modelName
			}
			if flags.Changed("corpus") {
				a.cfg.Corpus = corpus
			}
			if flags.Changed("iterations") {
				a.cfg.Search.Iterations = iterations
			}
			if flags.Changed("report-every") {
				a.cfg.Search.ReportEvery = reportEvery
			}
			if flags.Changed("chains") {
				a.cfg.Search.Chains = chains
			}
			if flags.Changed("seed") {
				a.cfg.Search.Seed = seed
			} else if a.cfg.Search.Seed == 0 {
				a.cfg.Search.Seed = rand.Uint64()
			}
			if flags.Changed("distinct-swaps") {
				a.cfg.Search.DistinctSwaps = distinctSwaps
			}
			if flags.Changed("fast-exp") {
				a.cfg.Search.FastExp = fastExp
			}
			if err := a.cfg.Validate(); err != nil {
				return err
			}

			text, err := readInput(args, cmd.InOrStdin())
			if err != nil {
				return err
			}

			model, err := a.resolveModel(modelFile)
			if err != nil {
				return err
			}

			runID := uuid.NewString()
			log := a.logger.With(zap.String("run_id", runID))

			reg := prometheus.NewRegistry()
			metrics, err := telemetry.NewSearchMetrics(reg)
			if err != nil {
				return err
			}

			breaker, err := subcrack.NewBreaker(model, subcrack.WithLogger(log), subcrack.WithObserver(metrics))
			if err != nil {
				return err
			}

			opts := a.cfg.SearchOptions()
			if !quiet && opts.ReportEvery > 0 {
				opts.Reporter = newProgressPrinter(a.stderr, opts.Chains > 1).report
			}

			log.Info("decrypting",
				zap.Uint64("seed", opts.Seed),
				zap.Int("iterations", opts.Iterations),
				zap.Int("chains", opts.Chains))

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			res, err := breaker.Decrypt(ctx, text, opts)
			if err != nil {
				return err
			}

			if a.cfg.Metrics.Textfile != "" {
				if err := telemetry.WriteTextfile(a.cfg.Metrics.Textfile, reg); err != nil {
					log.Warn("writing metrics failed", zap.Error(err))
				}
			}

			log.Info("best key",
				zap.String("key", res.Key.String()),
				zap.Float64("score", res.Score),
				zap.Int("accepted", res.Accepted))

			_, err = fmt.Fprintln(cmd.OutOrStdout(), res.Plaintext)
			return err
		},
	}

	f := cmd.Flags()
	f.StringVar(&modelFile, "model-file", "", "Load a model written by 'train --out'")
	f.StringVarP(&modelName, "model", "m", "", "Load a model from the store by name")
	f.StringVar(&corpus, "corpus", "", "Train a model from this corpus file first")
	f.IntVarP(&iterations, "iterations", "i", subcrack.DefaultIterations, "Proposals per chain")
	f.IntVar(&reportEvery, "report-every", subcrack.DefaultReportEvery, "Report progress every N iterations; 0 disables")
	f.IntVar(&chains, "chains", 1, "Independent chains to run concurrently")
	f.Uint64Var(&seed, "seed", 0, "Seed for the search; random when unset")
	f.BoolVar(&distinctSwaps, "distinct-swaps", false, "Never propose swapping a symbol with itself")
	f.BoolVar(&fastExp, "fast-exp", false, "Use an approximate exp in the acceptance test")
	f.BoolVarP(&quiet, "quiet", "q", false, "Do not report progress")
	return cmd
}

func (a *app) resolveModel(modelFile string) (*subcrack.Model, error) {
	switch {
	case modelFile != "":
		bts, err := os.ReadFile(modelFile)
		if err != nil {
			return nil, err
		}
		var m subcrack.Model
		if err := m.UnmarshalBinary(bts); err != nil {
			return nil, fmt.Errorf("load %s: %w", modelFile, err)
		}
		return &m, nil

	case a.cfg.Model != "":
		store, err := a.openStore()
		if err != nil {
			return nil, err
		}
		defer store.Close()
		return store.Load(a.cfg.Model)

	case a.cfg.Corpus != "":
		return a.trainFiles([]string{a.cfg.Corpus})
	}
	return nil, fmt.Errorf("%w: %w", subcrack.ErrUntrained, errNoModel)
}
