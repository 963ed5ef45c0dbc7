package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/sitegrade/sitegrade/internal/scanner"
)

var scanCmd = &cobra.Command{
	Use:   "scan <url>",
	Short: "Scan one origin and print the graded report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		jsonOut, _ := cmd.Flags().GetBool("json")
		showProgress, _ := cmd.Flags().GetBool("progress")
		showRemediation, _ := cmd.Flags().GetBool("remediation")

		s := scanner.New(
			scanner.WithLogger(logger.Desugar()),
			scanner.WithPathWorkers(intFlagOrConfig(cmd.Flags(), "workers")),
			scanner.WithRequestsPerSecond(intFlagOrConfig(cmd.Flags(), "rps")),
			scanner.WithScanDeadline(durationFlagOrConfig(cmd.Flags(), "timeout")),
			scanner.WithUserAgent(viper.GetString("user_agent")),
		)

		// Ctrl+C abandons in-flight probes; completed categories are kept
		// by the engine but the command exits without a report.
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		var result *scanner.ScanResult
		var err error
		if showProgress && !jsonOut {
			printer := newProgressPrinter(len(scanner.CategoryNames))
			printer.Start()
			result, err = s.ScanWithProgress(ctx, args[0], func(snapshot scanner.ScanResult) {
				printer.Update(snapshot)
			})
			printer.Stop()
		} else {
			result, err = s.Scan(ctx, args[0])
		}
		if err != nil {
			return err
		}

		if jsonOut {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		}

		printReport(result, showRemediation)
		return nil
	},
}

func init() {
	scanCmd.Flags().Bool("json", false, "emit the raw scan result as JSON")
	scanCmd.Flags().Bool("progress", false, "print per-category progress while scanning")
	scanCmd.Flags().Bool("remediation", false, "include remediation guidance for failed findings")
	scanCmd.Flags().Int("workers", 0, "concurrent exposed-path probes (default from config)")
	scanCmd.Flags().Int("rps", 0, "max requests per second against the origin (default from config)")
	scanCmd.Flags().Duration("timeout", 0, "overall scan deadline (default 60s)")
}

// intFlagOrConfig prefers an explicitly set flag, falling back to config.
func intFlagOrConfig(flags *pflag.FlagSet, name string) int {
	if flag := flags.Lookup(name); flag != nil && flag.Changed {
		v, _ := flags.GetInt(name)
		return v
	}
	return viper.GetInt(name)
}

func durationFlagOrConfig(flags *pflag.FlagSet, name string) time.Duration {
	if flag := flags.Lookup(name); flag != nil && flag.Changed {
		v, _ := flags.GetDuration(name)
		return v
	}
	return viper.GetDuration(name)
}

func printReport(result *scanner.ScanResult, showRemediation bool) {
	fmt.Printf("\n%s  %s\n", colorInfo("Target:"), result.Target.Origin)
	fmt.Printf("%s   %s (%d/100)\n", colorInfo("Grade:"), formatGradeWithColor(result.Grade), result.Score)
	fmt.Printf("%s %d passed, %d warnings, %d failed, %d critical\n\n",
		colorInfo("Summary:"),
		result.Summary.Passed, result.Summary.Warnings, result.Summary.Failed, result.Summary.Critical)

	for _, name := range scanner.CategoryNames {
		cat := result.Categories[name]
		if cat == nil {
			continue
		}
		score := "n/a"
		if cat.Score != nil {
			score = fmt.Sprintf("%d", *cat.Score)
		}
		fmt.Printf("%-14s %s (%s)\n", name, formatStatusWithColor(cat.Status), score)
		for _, f := range cat.Findings {
			fmt.Printf("  [%s] %s: %s\n", formatStatusWithColor(f.Status), f.Name, f.Description)
			if showRemediation && f.Remediation != nil {
				fmt.Printf("        fix: %s\n", f.Remediation.HowToFix)
			}
		}
		fmt.Println()
	}
}
