// Package main provides a command-line converter for NFSe exports.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"nfseconv/internal/config"
	"nfseconv/internal/logger"
	"nfseconv/internal/nfse"
	"nfseconv/internal/service"
)

var rootCmd = &cobra.Command{
	Use:   "nfsecli",
	Short: "NFSe export converter",
	Long:  "nfsecli converts Goiânia NFSe exports (.txt/.xml, or zips of them) into spreadsheets or JSON rows.",
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		appCfg = cfg
		if verbose {
			cfg.Log.Level = "debug"
		}
		appLog = logger.NewWithWriter(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
			Level(logger.ParseLevel(cfg.Log.Level))
		cmd.SetContext(logger.WithContext(cmd.Context(), appLog))
		return nil
	},
	SilenceUsage: true,
}

var (
	verbose bool
	appCfg  *config.Config
	appLog  zerolog.Logger
)

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

// newConvertService builds the conversion pipeline from the loaded config.
func newConvertService(includeNarrative bool) (service.ConvertService, *config.ConvertConfig) {
	convertCfg := appCfg.Convert
	convertCfg.IncludeNarrative = includeNarrative
	extractor := nfse.New(nfse.SchemaFor(convertCfg.Namespace))
	return service.NewConvertService(extractor, &convertCfg), &convertCfg
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
