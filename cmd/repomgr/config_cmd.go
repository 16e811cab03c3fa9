package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/wgergely/repository-manager/internal/manifest"
)

var addToolCmd = &cobra.Command{
	Use:   "add-tool [slug]",
	Args:  cobra.ExactArgs(1),
	Short: "Declare a tool active for this repository",
	RunE: func(cmd *cobra.Command, args []string) error {
		return coreForRoot().AddTool(args[0])
	},
}

var removeToolCmd = &cobra.Command{
	Use:   "remove-tool [slug]",
	Args:  cobra.ExactArgs(1),
	Short: "Remove a tool declaration",
	RunE: func(cmd *cobra.Command, args []string) error {
		return coreForRoot().RemoveTool(args[0])
	},
}

var (
	ruleContent  string
	ruleSeverity string
)

var addRuleCmd = &cobra.Command{
	Use:   "add-rule [id]",
	Args:  cobra.ExactArgs(1),
	Short: "Declare a rule",
	RunE: func(cmd *cobra.Command, args []string) error {
		return coreForRoot().AddRule(manifest.Rule{
			ID: args[0], Content: ruleContent, Severity: ruleSeverity,
		})
	},
}

var removeRuleCmd = &cobra.Command{
	Use:   "remove-rule [id]",
	Args:  cobra.ExactArgs(1),
	Short: "Remove a rule declaration",
	RunE: func(cmd *cobra.Command, args []string) error {
		return coreForRoot().RemoveRule(args[0])
	},
}

var addPresetCmd = &cobra.Command{
	Use:   "add-preset [id]",
	Args:  cobra.ExactArgs(1),
	Short: "Declare a preset active for this repository",
	RunE: func(cmd *cobra.Command, args []string) error {
		return coreForRoot().AddPreset(args[0], nil)
	},
}

var removePresetCmd = &cobra.Command{
	Use:   "remove-preset [id]",
	Args:  cobra.ExactArgs(1),
	Short: "Remove a preset declaration",
	RunE: func(cmd *cobra.Command, args []string) error {
		return coreForRoot().RemovePreset(args[0])
	},
}

var listToolsCmd = &cobra.Command{
	Use:   "list-tools",
	Short: "List the resolved active tool slugs",
	RunE: func(cmd *cobra.Command, args []string) error {
		tools, err := coreForRoot().ListTools()
		if err != nil {
			return err
		}
		for _, t := range tools {
			fmt.Println(t)
		}
		return nil
	},
}

var listRulesCmd = &cobra.Command{
	Use:   "list-rules",
	Short: "List the resolved rule set",
	RunE: func(cmd *cobra.Command, args []string) error {
		rules, err := coreForRoot().ListRules()
		if err != nil {
			return err
		}
		for _, r := range rules {
			fmt.Printf("%s [%s] %s\n", r.ID, r.EffectiveSeverity(), r.Content)
		}
		return nil
	},
}

var listPresetsCmd = &cobra.Command{
	Use:   "list-presets",
	Short: "List the resolved preset set",
	RunE: func(cmd *cobra.Command, args []string) error {
		presets, err := coreForRoot().ListPresets()
		if err != nil {
			return err
		}
		for id := range presets {
			fmt.Println(id)
		}
		return nil
	},
}

var listIntentsCmd = &cobra.Command{
	Use:   "list-intents",
	Short: "List the ledger's current intents",
	RunE: func(cmd *cobra.Command, args []string) error {
		intents, err := coreForRoot().ListIntents()
		if err != nil {
			return err
		}
		for _, in := range intents {
			fmt.Printf("%s  %s  %d projections\n", in.ID, in.UUID, in.ProjectionCount)
		}
		return nil
	},
}

func init() {
	addRuleCmd.Flags().StringVar(&ruleContent, "content", "", "rule body text")
	addRuleCmd.Flags().StringVar(&ruleSeverity, "severity", "suggested", `"mandatory" or "suggested"`)
	rootCmd.AddCommand(addToolCmd, removeToolCmd, addRuleCmd, removeRuleCmd,
		addPresetCmd, removePresetCmd, listToolsCmd, listRulesCmd, listPresetsCmd, listIntentsCmd)
}
