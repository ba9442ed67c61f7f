// Package pipeline wires the analysis stages together so the CLI and the
// HTTP layer share one code path: ingest, assemble, detect, score.
package pipeline

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/thebtf/promptscope/internal/antipattern"
	"github.com/thebtf/promptscope/internal/config"
	"github.com/thebtf/promptscope/internal/health"
	"github.com/thebtf/promptscope/internal/ingest"
	"github.com/thebtf/promptscope/internal/session"
	"github.com/thebtf/promptscope/pkg/models"
)

// Result is one full analysis run over the selected window.
type Result struct {
	Prompts  []models.Prompt
	Sessions []models.Session
	Matches  []models.AntipatternMatch
	Report   models.HealthReport
}

// Run executes the full pipeline for one query. Running it twice over
// unchanged source files yields identical results.
func Run(ctx context.Context, reader *ingest.Reader, analysis config.Analysis, q ingest.Query) (*Result, error) {
	prompts, logs, err := reader.Read(ctx, q)
	if err != nil {
		return nil, err
	}
	sessions := session.Assemble(logs)

	matches := antipattern.NewDetector(analysis.Detector).Detect(prompts)
	report := health.NewScorer(analysis.Health).Report(prompts, matches, q.Days)

	log.Debug().
		Int("prompts", len(prompts)).
		Int("sessions", len(sessions)).
		Int("matches", len(matches)).
		Float64("health", report.OverallScore).
		Msg("pipeline run complete")

	return &Result{
		Prompts:  prompts,
		Sessions: sessions,
		Matches:  matches,
		Report:   report,
	}, nil
}
