package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var branchBase string

var branchCmd = &cobra.Command{
	Use:   "branch",
	Short: "Branch and worktree lifecycle",
}

var branchAddCmd = &cobra.Command{
	Use:   "add [name]",
	Args:  cobra.ExactArgs(1),
	Short: "Create a branch (and its worktree, under worktree layouts)",
	RunE: func(cmd *cobra.Command, args []string) error {
		info, err := coreForRoot().BranchAdd(args[0], branchBase)
		if err != nil {
			return err
		}
		fmt.Println(info.Path)
		return nil
	},
}

var branchRemoveCmd = &cobra.Command{
	Use:   "remove [name]",
	Args:  cobra.ExactArgs(1),
	Short: "Remove a branch (and its worktree, under worktree layouts)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return coreForRoot().BranchRemove(args[0])
	},
}

var branchListCmd = &cobra.Command{
	Use:   "list",
	Short: "List branches",
	RunE: func(cmd *cobra.Command, args []string) error {
		infos, err := coreForRoot().BranchList()
		if err != nil {
			return err
		}
		for _, info := range infos {
			fmt.Printf("%-40s %s\n", info.Name, info.Path)
		}
		return nil
	},
}

func init() {
	branchAddCmd.Flags().StringVar(&branchBase, "base", "", "base ref for the new branch")
	branchCmd.AddCommand(branchAddCmd, branchRemoveCmd, branchListCmd)
	rootCmd.AddCommand(branchCmd)
}
