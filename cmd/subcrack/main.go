// Command subcrack trains bigram models and breaks substitution ciphers with
// them.
package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/shabbyrobe/subcrack/internal/config"
	"github.com/shabbyrobe/subcrack/internal/modelstore"
)

type app struct {
	cfgFile string
	cfg     config.Config
	logger  *zap.Logger

	stdin  io.Reader
	stdout io.Writer
	stderr *os.File
}

func main() {
	a := &app{stdin: os.Stdin, stdout: os.Stdout, stderr: os.Stderr}
	if err := a.rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "subcrack",
		Short: "Break substitution ciphers with a bigram model and MCMC search",
		Long: `subcrack learns which letters follow which from a reference corpus, then
searches for the substitution key that makes a ciphertext read most like
that corpus.

The alphabet is fixed: space and the lowercase letters a-z. Everything else
is dropped from input text.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.cfgFile)
			if err != nil {
				return err
			}
			a.cfg = cfg
			if a.logger == nil {
				logger, err := buildLogger(cfg.Log)
				if err != nil {
					return fmt.Errorf("failed to initialize logger: %w", err)
				}
				a.logger = logger
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}
	root.SetIn(a.stdin)
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	root.PersistentFlags().StringVarP(&a.cfgFile, "config", "c", "", "YAML or JSON config file")

	root.AddCommand(
		a.trainCmd(),
		a.encryptCmd(),
		a.decryptCmd(),
		a.modelsCmd(),
	)
	return root
}

func buildLogger(lc config.LogConfig) (*zap.Logger, error) {
	var zc zap.Config
	if lc.Development {
		zc = zap.NewDevelopmentConfig()
	} else {
		zc = zap.NewProductionConfig()
	}
	lvl, err := zapcore.ParseLevel(lc.Level)
	if err != nil {
		return nil, err
	}
	zc.Level = zap.NewAtomicLevelAt(lvl)
	zc.OutputPaths = []string{"stderr"}
	return zc.Build()
}

func (a *app) openStore() (*modelstore.Store, error) {
	sc := modelstore.DefaultConfig(a.cfg.Store.Path)
	if a.cfg.Store.InMemory {
		sc = modelstore.InMemoryConfig()
	}
	sc.Logger = a.logger
	return modelstore.Open(sc)
}

// readInput joins args with spaces, or reads all of stdin when there are no
// args or the only arg is "-".
func readInput(args []string, stdin io.Reader) (string, error) {
	if len(args) == 0 || (len(args) == 1 && args[0] == "-") {
		bts, err := io.ReadAll(stdin)
		if err != nil {
			return "", err
		}
		return string(bts), nil
	}
	return strings.Join(args, " "), nil
}
