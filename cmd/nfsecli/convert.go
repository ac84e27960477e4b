package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"nfseconv/internal/archive"
	"nfseconv/internal/domain"
	"nfseconv/internal/service"
)

var convertCmd = &cobra.Command{
	Use:   "convert <file>...",
	Short: "Convert NFSe documents into a spreadsheet",
	Long: `Convert one or more .txt/.xml NFSe exports (zips are expanded) into a spreadsheet.

Output modes:
  single    one document, one spreadsheet (default for a single .txt/.xml)
  combined  every row in one spreadsheet with a source file column (default otherwise)
  zip       one spreadsheet per document inside a zip`,
	Args: cobra.MinimumNArgs(1),
	RunE: runConvert,
}

var (
	convertMode   string
	convertFormat string
	convertOutput string
	convertDir    string
	convertNoDisc bool
)

func init() {
	convertCmd.Flags().StringVar(&convertMode, "out", "", "Output mode: single, combined or zip")
	convertCmd.Flags().StringVar(&convertFormat, "format", string(domain.FormatXLSX), "Output format: xlsx or csv")
	convertCmd.Flags().StringVarP(&convertOutput, "output", "o", "", "Output file path (defaults to a timestamped name in --dir)")
	convertCmd.Flags().StringVar(&convertDir, "dir", ".", "Directory for the generated file")
	convertCmd.Flags().BoolVar(&convertNoDisc, "no-disc", false, "Leave out the full Discriminação column")

	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	svc, cfg := newConvertService(!convertNoDisc && appCfg.Convert.IncludeNarrative)

	docs, err := readInputs(svc, cfg.MaxUploadBytes(), args)
	if err != nil {
		return err
	}

	opts := service.ConvertOptions{
		Mode:             defaultMode(convertMode, args),
		Format:           domain.OutputFormat(convertFormat),
		IncludeNarrative: cfg.IncludeNarrative,
	}
	out, err := svc.Convert(cmd.Context(), docs, opts)
	if err != nil {
		return err
	}

	dest := convertOutput
	if dest == "" {
		dest = filepath.Join(convertDir, out.Filename)
	}
	if err := os.WriteFile(dest, out.Data, 0o644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}

	for _, f := range out.Failures {
		appLog.Warn().Str("file", f.Name).Str("error", f.Reason).Msg("document skipped")
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %d documents, %d rows, %d failed\n", dest, out.Documents, out.Rows, len(out.Failures))
	return nil
}

// defaultMode picks single for one plain document and combined otherwise,
// unless a mode was given explicitly.
func defaultMode(explicit string, args []string) domain.OutputMode {
	if explicit != "" {
		return domain.OutputMode(explicit)
	}
	if len(args) == 1 && !archive.IsArchive(args[0]) {
		return domain.OutputSingle
	}
	return domain.OutputCombined
}
