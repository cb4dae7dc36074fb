package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/kitbuilder587/research-bot/internal/domain"
	"github.com/kitbuilder587/research-bot/internal/report"
	"github.com/kitbuilder587/research-bot/internal/service"
)

var (
	researchProvider   string
	researchModel      string
	researchDepth      string
	researchSources    []string
	researchNoSources  bool
	researchMaxResults int
	researchFormat     string
	researchOutput     string
)

var researchCmd = &cobra.Command{
	Use:   "research [topic]",
	Short: "Research a topic once and print the report",
	Long: `Run a single research request and print the report to stdout (or --output).

Provider, model and depth default to DEFAULT_PROVIDER, DEFAULT_MODEL and DEFAULT_DEPTH.`,
	Example: `  research-bot research "fusion energy" --depth comprehensive
  research-bot research "rust async runtimes" --sources web,github --format json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runResearch,
}

func init() {
	researchCmd.Flags().StringVarP(&researchProvider, "provider", "p", "", "LLM provider: openai, anthropic, ollama")
	researchCmd.Flags().StringVarP(&researchModel, "model", "m", "", "Model identifier")
	researchCmd.Flags().StringVarP(&researchDepth, "depth", "d", "", "basic, detailed or comprehensive")
	researchCmd.Flags().StringSliceVarP(&researchSources, "sources", "s", nil, "Search sources: web, wikipedia, scholar, github, news")
	researchCmd.Flags().BoolVar(&researchNoSources, "no-sources", false, "Do not include the source list in the report")
	researchCmd.Flags().IntVar(&researchMaxResults, "max-results", 0, "Override the result budget of the depth (1-20)")
	researchCmd.Flags().StringVarP(&researchFormat, "format", "f", "markdown", "Output format: markdown or json")
	researchCmd.Flags().StringVarP(&researchOutput, "output", "o", "", "Write the report to a file instead of stdout")
}

func runResearch(cmd *cobra.Command, args []string) error {
	format := strings.ToLower(researchFormat)
	if format != "markdown" && format != "json" {
		return fmt.Errorf("unknown format %q", researchFormat)
	}

	a, err := loadApp()
	if err != nil {
		return err
	}
	defer func() { _ = a.logger.Sync() }()

	req := domain.ResearchRequest{
		Topic:          strings.Join(args, " "),
		Provider:       a.defaultProvider(),
		Model:          a.cfg.Research.Model,
		Depth:          domain.Depth(a.cfg.Research.Depth),
		IncludeSources: !researchNoSources,
		MaxResults:     researchMaxResults,
	}
	if researchProvider != "" {
		req.Provider, _ = domain.ParseProvider(researchProvider)
	}
	if researchModel != "" {
		req.Model = researchModel
	}
	if researchDepth != "" {
		req.Depth = domain.Depth(strings.ToLower(researchDepth))
	}
	if cmd.Flags().Changed("sources") {
		kinds, unknown := domain.ParseSources(researchSources)
		if len(unknown) > 0 {
			return fmt.Errorf("unknown sources: %s", strings.Join(unknown, ", "))
		}
		req.Sources = kinds
		if req.Sources == nil {
			req.Sources = []domain.SourceKind{}
		}
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), a.cfg.Timeouts.Total)
	defer cancel()
	ctx = service.WithRequestID(ctx, "")

	rep, err := a.research.Research(ctx, req)
	if err != nil {
		return err
	}

	var out io.Writer = cmd.OutOrStdout()
	if researchOutput != "" {
		f, err := os.Create(researchOutput)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	return writeReport(out, format, req.Topic, rep)
}

func writeReport(w io.Writer, format, topic string, rep *domain.ResearchReport) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	}
	_, err := io.WriteString(w, report.Markdown(topic, rep, report.Options{GeneratedAt: time.Now()}))
	return err
}
