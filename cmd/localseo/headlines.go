package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mohammad-safakhou/localseo/internal/generation"
	"github.com/mohammad-safakhou/localseo/internal/headline"
	"github.com/mohammad-safakhou/localseo/internal/prompts"
	srv "github.com/mohammad-safakhou/localseo/internal/server"
	"github.com/mohammad-safakhou/localseo/models"
)

func headlinesCMD(load configLoader) *cobra.Command {
	var d models.BusinessDescriptor
	var prompt string
	cmd := &cobra.Command{
		Use:   "headlines",
		Short: "Generate one headline set and print every variant",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !d.Complete() {
				return errors.New("--name, --main-type, --sub-type and --location are required")
			}
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
			if prompt != "" && !reg.Has(prompt) {
				return fmt.Errorf("unknown prompt: %s", prompt)
			}
			ctx := context.Background()
			logger := log.New(cmd.ErrOrStderr(), "[SERVER] ", log.LstdFlags)
			backend := srv.BuildBackend(ctx, cfg, reg, generation.NewTemplateBackend(nil), nil, logger)

			res, err := backend.Generate(ctx, generation.Request{Descriptor: d, Count: cfg.Generation.Count, PromptKey: prompt})
			if err != nil {
				return err
			}
			set := res.HeadlineSet(headline.DeriveKey(d).String())
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "fingerprint: %s\nprovenance:  %s (%s)\n", set.Fingerprint, set.Provenance, set.Model)
			for i := 0; ; {
				text, idx, total := headline.Select(set, i)
				fmt.Fprintf(out, "  [%d/%d] %s\n", idx, total, text)
				if i = headline.Next(i, total); i == 0 {
					break
				}
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&d.Name, "name", "", "business name")
	f.StringVar(&d.MainType, "main-type", "", "main business type, e.g. restaurant")
	f.StringVar(&d.SubType, "sub-type", "", "sub type, e.g. pizzeria")
	f.StringVar(&d.Location, "location", "", "business location")
	f.StringVar(&d.Description, "description", "", "optional description")
	f.StringVar(&prompt, "prompt", "", "registered prompt key (default generation.prompt)")
	cmd.PreRun = func(*cobra.Command, []string) {
		d.Name = strings.TrimSpace(d.Name)
		d.Location = strings.TrimSpace(d.Location)
	}
	return cmd
}
