// Package cmd wires the CLI: convert for one-shot file conversion and serve
// for the HTTP API.
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/tuteke2023/bankparse/internal/category"
	"github.com/tuteke2023/bankparse/internal/config"
	"github.com/tuteke2023/bankparse/internal/parser"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "bankparse",
	Short: "Convert bank statement PDFs and model output into structured data",
	Long: `bankparse turns bank statement PDFs, and the noisy tabular text that
vision models produce from them, into validated transactions with
debit/credit assignment checked against the running balance.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "path to YAML config file")
}

func loadConfig() (*config.Config, error) {
	return config.Load(cfgPath)
}

func buildEngine(cfg *config.Config) (*parser.Engine, error) {
	opts := parser.Options{
		Epsilon:       cfg.Parser.Epsilon,
		SwapThreshold: cfg.Parser.SwapThreshold,
	}
	if cfg.Parser.CorrectionsPath != "" {
		corr, err := category.LoadCorrections(cfg.Parser.CorrectionsPath)
		if err != nil {
			return nil, err
		}
		opts.Corrections = corr
	}
	return parser.New(opts)
}
