package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tuteke2023/bankparse/internal/extractor"
	"github.com/tuteke2023/bankparse/internal/writer"
)

var (
	convertOutput string
	convertFormat string
)

var convertCmd = &cobra.Command{
	Use:   "convert <input.pdf|input.txt> [more files...]",
	Short: "Convert statement files into structured output",
	Long: `Convert reads each input file (PDF or already-extracted text), parses
the transactions, validates the ledger, and writes the result next to the
input unless --output is given.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runConvert,
}

func init() {
	convertCmd.Flags().StringVarP(&convertOutput, "output", "o", "", "output file path (single input only)")
	convertCmd.Flags().StringVarP(&convertFormat, "format", "f", "csv", "output format: csv, json, table, xlsx")
	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	if convertOutput != "" && len(args) > 1 {
		return fmt.Errorf("--output cannot be used with multiple inputs")
	}
	switch convertFormat {
	case "csv", "json", "table", "xlsx":
	default:
		return fmt.Errorf("unknown format %q; use csv, json, table, or xlsx", convertFormat)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	engine, err := buildEngine(cfg)
	if err != nil {
		return err
	}

	for _, input := range args {
		text, err := readInput(input)
		if err != nil {
			return err
		}

		st := engine.ParseToStatement(text)
		for _, w := range st.Warnings {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: warning: %s\n", input, w)
		}

		outPath := convertOutput
		if outPath == "" {
			outPath = strings.TrimSuffix(input, filepath.Ext(input)) + "." + convertFormat
		}

		var data []byte
		switch convertFormat {
		case "csv":
			data = []byte(writer.CSV(st))
		case "json":
			s, err := writer.JSON(st)
			if err != nil {
				return err
			}
			data = []byte(s)
		case "table":
			data = []byte(writer.Table(st))
		case "xlsx":
			buf, err := writer.XLSX(st)
			if err != nil {
				return err
			}
			data = buf.Bytes()
		}

		if err := os.WriteFile(outPath, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", outPath, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %d transactions -> %s\n", input, len(st.Transactions), outPath)
	}
	return nil
}

func readInput(path string) (string, error) {
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		text, err := extractor.ExtractTextCombined(path)
		if err != nil {
			return "", fmt.Errorf("extract %s: %w", path, err)
		}
		return text, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}
