package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"nfseconv/internal/domain"
)

var extractCmd = &cobra.Command{
	Use:   "extract <file>...",
	Short: "Print extracted rows as JSON",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runExtract,
}

var extractNoDisc bool

func init() {
	extractCmd.Flags().BoolVar(&extractNoDisc, "no-disc", false, "Leave out the full Discriminação column")

	rootCmd.AddCommand(extractCmd)
}

type extractOutput struct {
	File  string            `json:"file"`
	Rows  []domain.FieldRow `json:"rows"`
	Error string            `json:"error,omitempty"`
}

func runExtract(cmd *cobra.Command, args []string) error {
	svc, cfg := newConvertService(!extractNoDisc && appCfg.Convert.IncludeNarrative)

	docs, err := readInputs(svc, cfg.MaxUploadBytes(), args)
	if err != nil {
		return err
	}
	results, err := svc.Extract(cmd.Context(), docs, cfg.IncludeNarrative)
	if err != nil {
		return err
	}

	out := make([]extractOutput, len(results))
	for i, res := range results {
		out[i] = extractOutput{File: res.Name, Rows: res.Rows}
		if out[i].Rows == nil {
			out[i].Rows = []domain.FieldRow{}
		}
		if res.Err != nil {
			out[i].Error = res.Err.Error()
		}
	}

	jsonBytes, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(jsonBytes))
	return nil
}
