package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var cfgFile string
var logger *zap.SugaredLogger

var rootCmd = &cobra.Command{
	Use:   "sitegrade",
	Short: "Website security reconnaissance: scan an origin and get a 0-100 score and A-F grade",
	Long: `sitegrade runs a bounded set of unauthenticated probes against a target
origin (TLS certificate, security headers, CMS fingerprint, exposed files,
malware signatures, outdated libraries) and reduces the findings to a
weighted score, letter grade, and per-category report.

It checks only the origin root with fixed timeouts: no exploitation, no
authenticated scanning, no crawling.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// init config
		if cfgFile != "" {
			viper.SetConfigFile(cfgFile)
		} else {
			viper.AddConfigPath("$HOME")
			viper.SetConfigName(".sitegrade")
			viper.SetConfigType("yaml")
		}
		viper.SetEnvPrefix("sitegrade")
		viper.AutomaticEnv()
		_ = viper.ReadInConfig()

		// init logger
		verbose, _ := cmd.Flags().GetBool("verbose")
		var l *zap.Logger
		var err error
		if verbose {
			l, err = zap.NewDevelopment()
		} else {
			cfg := zap.NewProductionConfig()
			cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
			l, err = cfg.Build()
		}
		if err != nil {
			return fmt.Errorf("failed to create logger: %w", err)
		}
		logger = l.Sugar()

		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.sitegrade.yaml)")
	rootCmd.PersistentFlags().Bool("verbose", false, "enable debug logging")

	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}
