package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/kitbuilder587/research-bot/internal/domain"
	"github.com/kitbuilder587/research-bot/internal/llm"
)

var modelsProvider string

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List models available per LLM provider",
	RunE:  runModels,
}

func init() {
	modelsCmd.Flags().StringVarP(&modelsProvider, "provider", "p", "", "Only list models of this provider")
}

func runModels(cmd *cobra.Command, args []string) error {
	providers := domain.Providers()
	if modelsProvider != "" {
		id, ok := domain.ParseProvider(modelsProvider)
		if !ok {
			return fmt.Errorf("%w: %q", domain.ErrUnknownProvider, modelsProvider)
		}
		providers = []domain.ProviderID{id}
	}

	a, err := loadApp()
	if err != nil {
		return err
	}
	defer func() { _ = a.logger.Sync() }()

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	catalog := make(map[domain.ProviderID][]llm.Model, len(providers))
	for _, id := range providers {
		catalog[id] = a.catalog.Models(ctx, id)
	}
	return printModels(cmd.OutOrStdout(), providers, catalog)
}

func printModels(w io.Writer, providers []domain.ProviderID, catalog map[domain.ProviderID][]llm.Model) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PROVIDER\tMODEL\tNAME")
	for _, id := range providers {
		models := catalog[id]
		if len(models) == 0 {
			fmt.Fprintf(tw, "%s\t-\t(no models available)\n", id)
			continue
		}
		for _, m := range models {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", id, m.ID, m.Name)
		}
	}
	return tw.Flush()
}
