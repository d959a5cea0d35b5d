package main

import (
	"fmt"
	"math/rand/v2"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/shabbyrobe/subcrack"
)

func (a *app) encryptCmd() *cobra.Command {
	var seed uint64

	cmd := &cobra.Command{
		Use:   "encrypt [TEXT... | -]",
		Short: "Encrypt text with a random substitution key",
		Long: `Canonicalize the text (lowercase, only space and a-z kept) and encrypt it
with a freshly drawn key. The key is not printed. Reads stdin when no text
is given.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(args, cmd.InOrStdin())
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("seed") {
				seed = rand.Uint64()
			}
			a.logger.Debug("encrypting", zap.Uint64("seed", seed), zap.Int("bytes", len(text)))

			_, err = fmt.Fprintln(cmd.OutOrStdout(), subcrack.Encrypt(subcrack.NewRand(seed), text))
			return err
		},
	}
	cmd.Flags().Uint64Var(&seed, "seed", 0, "Seed for the key; random when unset")
	return cmd
}
