package main

import (
	"strings"

	"github.com/spf13/cobra"
)

var (
	initMode    string
	initTools   string
	initPresets string
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Bootstrap the repository's metadata directory and manifest",
	RunE: func(cmd *cobra.Command, args []string) error {
		var tools []string
		if initTools != "" {
			tools = strings.Split(initTools, ",")
		}
		presets := map[string]any{}
		if initPresets != "" {
			for _, p := range strings.Split(initPresets, ",") {
				presets[p] = true
			}
		}
		return coreForRoot().Initialise(rootFlagRoot, initMode, tools, presets)
	},
}

func init() {
	initCmd.Flags().StringVar(&initMode, "mode", "standard", `"standard" or "worktrees"`)
	initCmd.Flags().StringVar(&initTools, "tools", "", "comma-separated initial tool slugs")
	initCmd.Flags().StringVar(&initPresets, "presets", "", "comma-separated initial preset ids")
	rootCmd.AddCommand(initCmd)
}
