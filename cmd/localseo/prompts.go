package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mohammad-safakhou/localseo/internal/prompts"
)

func promptsCMD(load configLoader) *cobra.Command {
	cmd := &cobra.Command{Use: "prompts", Short: "Inspect the prompt registry"}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List builtin and file prompt keys",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			reg, err := prompts.NewRegistry(prompts.Options{
				File:       cfg.Prompts.File,
				MaxEntries: cfg.Prompts.MaxEntries,
				MaxLength:  cfg.Prompts.MaxLength,
			})
			if err != nil {
				return err
			}
			for _, k := range reg.Keys() {
				marker := " "
				if k == cfg.Generation.Prompt {
					marker = "*"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", marker, k)
			}
			return nil
		},
	})
	return cmd
}
