package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var backupKeep int

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Snapshot and restore a tool's configuration files",
}

var backupCreateCmd = &cobra.Command{
	Use:   "create [tool]",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := coreForRoot().BackupCreate(args[0])
		if err != nil {
			return err
		}
		fmt.Println(id)
		return nil
	},
}

var backupRestoreCmd = &cobra.Command{
	Use:   "restore [tool] [id]",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return coreForRoot().BackupRestore(args[0], args[1])
	},
}

var backupPruneCmd = &cobra.Command{
	Use:   "prune [tool]",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		removed, err := coreForRoot().BackupPrune(args[0], backupKeep)
		if err != nil {
			return err
		}
		fmt.Printf("removed %d backups\n", removed)
		return nil
	},
}

func init() {
	backupPruneCmd.Flags().IntVar(&backupKeep, "keep", 5, "number of most recent backups to retain")
	backupCmd.AddCommand(backupCreateCmd, backupRestoreCmd, backupPruneCmd)
	rootCmd.AddCommand(backupCmd)
}
