package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/assistd-ai/assistd/internal/tool"
)

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List the built-in tools and their confirmation policy",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		registry := tool.DefaultRegistry(cfg)
		for _, meta := range registry.List() {
			gate := ""
			if meta.RequiresConfirmation {
				gate = " (requires confirmation)"
			}
			if meta.Name == "system_command" && !cfg.Commands.Enabled {
				gate += " [disabled]"
			}
			fmt.Printf("%-16s %-12s %s%s\n", meta.Name, meta.Category, meta.Description, gate)
		}
		return nil
	},
}
