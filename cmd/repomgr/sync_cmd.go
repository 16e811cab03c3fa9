package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/wgergely/repository-manager/internal/projection"
	"github.com/wgergely/repository-manager/internal/syncengine"
)

var syncDryRun bool

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Report projection health without writing anything",
	RunE: func(cmd *cobra.Command, args []string) error {
		report, err := coreForRoot().Check(syncengine.Options{})
		if err != nil {
			return err
		}
		for _, p := range report.Projections {
			fmt.Printf("%-10s %-20s %s\n", p.Status, p.Tool, p.File)
		}
		for _, id := range report.Stale {
			fmt.Printf("%-10s %s (no matching declaration)\n", "stale", id)
		}
		// check owns the 0/2 exit convention regardless of rootCmd.Execute's
		// usual error-based 0/1 mapping; exit directly rather than return
		// an error (a Healthy report is not an error).
		if report.Overall != projection.StatusHealthy {
			os.Exit(2)
		}
		return nil
	},
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Reconcile the filesystem to the resolved configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		report, err := coreForRoot().Sync(syncengine.Options{DryRun: syncDryRun})
		if err != nil {
			return err
		}
		printSyncReport(report)
		return nil
	},
}

var fixCmd = &cobra.Command{
	Use:   "fix",
	Short: "Check, then re-apply every non-healthy projection",
	RunE: func(cmd *cobra.Command, args []string) error {
		report, err := coreForRoot().Fix(syncengine.Options{DryRun: syncDryRun})
		if err != nil {
			return err
		}
		printSyncReport(report)
		for _, f := range report.Fixed {
			fmt.Println("fixed:", f)
		}
		return nil
	},
}

func printSyncReport(report syncengine.SyncReport) {
	for _, a := range report.Actions {
		fmt.Println("would:", a)
	}
	for _, id := range report.Created {
		fmt.Println("created:", id)
	}
	for _, id := range report.Updated {
		fmt.Println("updated:", id)
	}
	for _, id := range report.Retired {
		fmt.Println("retired:", id)
	}
	for _, err := range report.Errors {
		fmt.Fprintln(os.Stderr, "error:", err)
	}
}

func init() {
	syncCmd.Flags().BoolVar(&syncDryRun, "dry-run", false, "report intended actions without writing")
	fixCmd.Flags().BoolVar(&syncDryRun, "dry-run", false, "report intended actions without writing")
	rootCmd.AddCommand(checkCmd, syncCmd, fixCmd)
}
