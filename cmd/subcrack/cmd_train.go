package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/shabbyrobe/subcrack"
)

func (a *app) trainCmd() *cobra.Command {
	var (
		name        string
		out         string
		pseudocount float64
		smoothing   string
	)

	cmd := &cobra.Command{
		Use:   "train [flags] CORPUS...",
		Short: "Train a bigram model from one or more corpus files",
		Long: `Train a bigram model from corpus files and save it to the model store
under --name, to a file with --out, or both. Symbol pairs are counted
within each line.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if name == "" && out == "" {
				return fmt.Errorf("one of --name or --out is required")
			}
			if cmd.Flags().Changed("pseudocount") {
				a.cfg.Training.Pseudocount = pseudocount
			}
			if cmd.Flags().Changed("smoothing") {
				a.cfg.Training.Smoothing = smoothing
			}
			if err := a.cfg.Validate(); err != nil {
				return err
			}

			model, err := a.trainFiles(args)
			if err != nil {
				return err
			}

			if out != "" {
				bts, err := model.MarshalBinary()
				if err != nil {
					return err
				}
				if err := os.WriteFile(out, bts, 0644); err != nil {
					return err
				}
				a.logger.Info("model written", zap.String("path", out))
			}

			if name != "" {
				store, err := a.openStore()
				if err != nil {
					return err
				}
				defer store.Close()
				if err := store.Save(name, model); err != nil {
					return err
				}
				a.logger.Info("model stored", zap.String("name", name))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "Save the model in the store under this name")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Write the model to this file")
	cmd.Flags().Float64Var(&pseudocount, "pseudocount", subcrack.DefaultPseudocount, "Floor count for every symbol pair")
	cmd.Flags().StringVar(&smoothing, "smoothing", subcrack.SmoothingOverwrite.String(), "overwrite or additive")
	return cmd
}

func (a *app) trainFiles(paths []string) (*subcrack.Model, error) {
	tr := subcrack.NewTrainer(a.cfg.TrainerOptions()...)
	for _, p := range paths {
		f, err := os.Open(p)
		if err != nil {
			return nil, err
		}
		err = tr.Add(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("read corpus %s: %w", p, err)
		}
	}

	model, err := tr.Compile()
	if err != nil {
		return nil, err
	}
	a.logger.Info("model trained",
		zap.Strings("corpus", paths),
		zap.Int("lines", tr.Lines()),
		zap.Int("pairs", tr.Pairs()),
		zap.String("smoothing", a.cfg.Training.Smoothing))
	return model, nil
}
