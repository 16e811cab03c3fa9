package registry

// builtinDefinitions are registered at start-up. Priority governs
// processing order within sync (higher first); values are spaced to leave
// room for externally declared descriptors to interleave.
var builtinDefinitions = []ToolDefinition{
	{
		Meta:        Meta{Slug: "cursor", Name: "Cursor", Description: "Cursor editor rules file"},
		Integration: Integration{ConfigPath: ".cursorrules", ConfigType: ConfigMarkdown},
		Capabilities: Capabilities{
			SupportsCustomInstructions: true,
			SupportsMCP:                true,
			SupportsRulesDirectory:     false,
		},
		Priority: 100,
		Category: "editor",
		SchemaKeys: map[string]string{
			"mcp_key": "mcpServers",
		},
	},
	{
		Meta:        Meta{Slug: "vscode", Name: "Visual Studio Code", Description: "VS Code workspace settings"},
		Integration: Integration{ConfigPath: ".vscode/settings.json", ConfigType: ConfigJSON},
		Capabilities: Capabilities{
			SupportsCustomInstructions: true,
			SupportsMCP:                false,
			SupportsRulesDirectory:     false,
		},
		Priority: 90,
		Category: "editor",
		SchemaKeys: map[string]string{
			"instruction_key": "repo.managed.instructions",
		},
	},
	{
		Meta:        Meta{Slug: "claude-code", Name: "Claude Code", Description: "Claude Code CLAUDE.md + MCP config"},
		Integration: Integration{ConfigPath: "CLAUDE.md", ConfigType: ConfigMarkdown, AdditionalPaths: []string{".claude/rules"}},
		Capabilities: Capabilities{
			SupportsCustomInstructions: true,
			SupportsMCP:                true,
			SupportsRulesDirectory:     true,
		},
		Priority: 80,
		Category: "assistant",
	},
	{
		Meta:        Meta{Slug: "windsurf", Name: "Windsurf", Description: "Windsurf rules file"},
		Integration: Integration{ConfigPath: ".windsurfrules", ConfigType: ConfigMarkdown},
		Capabilities: Capabilities{
			SupportsCustomInstructions: true,
			SupportsMCP:                false,
			SupportsRulesDirectory:     false,
		},
		Priority: 70,
		Category: "editor",
	},
	{
		Meta:        Meta{Slug: "copilot", Name: "GitHub Copilot", Description: "Copilot custom instructions"},
		Integration: Integration{ConfigPath: ".github/copilot-instructions.md", ConfigType: ConfigMarkdown},
		Capabilities: Capabilities{
			SupportsCustomInstructions: true,
			SupportsMCP:                false,
			SupportsRulesDirectory:     false,
		},
		Priority: 60,
		Category: "assistant",
	},
}
