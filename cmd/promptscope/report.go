package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/thebtf/promptscope/internal/config"
	"github.com/thebtf/promptscope/internal/ingest"
	"github.com/thebtf/promptscope/internal/pipeline"
	"github.com/thebtf/promptscope/internal/quality"
	"github.com/thebtf/promptscope/internal/stats"
)

var (
	flagDays    int
	flagProject string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Run one analysis pass and print the results",
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := config.LoadSettings(config.SettingsPath())
		if err != nil {
			return err
		}
		days := settings.Days
		if cmd.Flags().Changed("days") {
			days = flagDays
		}

		analysis := config.DefaultAnalysis()
		reader := ingest.NewReader(settings.SourcePaths(), analysis.Ingest)

		result, err := pipeline.Run(context.Background(), reader, analysis, ingest.Query{
			Project: flagProject,
			Days:    days,
		})
		if err != nil {
			return err
		}

		printReport(cmd, result, analysis, days)
		return nil
	},
}

func printReport(cmd *cobra.Command, result *pipeline.Result, analysis config.Analysis, days int) {
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "Prompt health for the last %d days\n", days)
	fmt.Fprintf(out, "  prompts analyzed : %s\n", humanize.Comma(int64(len(result.Prompts))))
	fmt.Fprintf(out, "  sessions         : %s\n", humanize.Comma(int64(len(result.Sessions))))
	fmt.Fprintf(out, "  matches          : %s\n", humanize.Comma(int64(len(result.Matches))))
	fmt.Fprintf(out, "  overall score    : %.1f (grade %s)\n\n", result.Report.OverallScore, result.Report.Grade)

	if len(result.Report.Dimensions) > 0 {
		fmt.Fprintln(out, "Dimensions:")
		for _, d := range result.Report.Dimensions {
			fmt.Fprintf(out, "  %-20s %.1f (weight %.2f)\n", d.Name, d.Score, d.Weight)
			for _, issue := range d.Issues {
				fmt.Fprintf(out, "    - %s\n", issue)
			}
		}
		fmt.Fprintln(out)
	}

	if len(result.Report.ImprovementSuggestions) > 0 {
		fmt.Fprintln(out, "Suggestions:")
		for _, s := range result.Report.ImprovementSuggestions {
			fmt.Fprintf(out, "  - %s\n", s)
		}
		fmt.Fprintln(out)
	}

	svc := stats.NewService()
	overview := svc.Overview(result.Prompts, result.Sessions, days)
	fmt.Fprintln(out, "Usage:")
	fmt.Fprintf(out, "  projects               : %d\n", overview.ProjectsCount)
	fmt.Fprintf(out, "  avg prompts/session    : %.1f\n", overview.AveragePromptsPerSession)
	fmt.Fprintf(out, "  avg prompt length      : %.1f chars\n", overview.AveragePromptLength)
	fmt.Fprintf(out, "  thinking triggers      : %s\n", humanize.Comma(int64(overview.Thinking.TotalTriggers)))
	fmt.Fprintf(out, "  tokens (in/out)        : %s / %s\n",
		humanize.Comma(overview.Tokens.InputTokens), humanize.Comma(overview.Tokens.OutputTokens))
	fmt.Fprintln(out)

	scorer := quality.NewScorer(analysis.Quality)
	exemplars := scorer.Exemplars(result.Prompts, analysis.Quality.GoodScore, 3)
	if len(exemplars) > 0 {
		fmt.Fprintln(out, "Exemplar prompts:")
		for _, sp := range exemplars {
			fmt.Fprintf(out, "  [%.1f] %s\n", sp.Score, firstLine(sp.Prompt.Text, 80))
		}
	}
}

func firstLine(text string, max int) string {
	if idx := strings.IndexByte(text, '\n'); idx >= 0 {
		text = text[:idx]
	}
	runes := []rune(text)
	if len(runes) > max {
		return string(runes[:max]) + "..."
	}
	return text
}

func init() {
	reportCmd.Flags().IntVar(&flagDays, "days", config.DefaultDays, "lookback window in days")
	reportCmd.Flags().StringVar(&flagProject, "project", "", "filter to a single project")
}
