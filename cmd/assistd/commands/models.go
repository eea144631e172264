package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/assistd-ai/assistd/internal/provider"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List models available on the inference backend",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		llm := provider.NewOllamaClient(cfg.LLM.BaseURL, cfg.LLM.Model)

		ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
		defer cancel()

		models, err := llm.ListModels(ctx)
		if err != nil {
			return fmt.Errorf("list models: %w", err)
		}

		for _, m := range models {
			marker := "  "
			if m == cfg.LLM.Model {
				marker = "* "
			}
			fmt.Printf("%s%s\n", marker, m)
		}
		return nil
	},
}
