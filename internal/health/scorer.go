// Package health aggregates prompts and anti-pattern matches into a
// weighted health report with a letter grade.
package health

import (
	"fmt"
	"math"
	"time"

	"github.com/thebtf/promptscope/internal/config"
	"github.com/thebtf/promptscope/pkg/models"
)

// Dimension names, also used as suggestion keys.
const (
	DimClarity      = "clarity"
	DimCompleteness = "completeness"
	DimEfficiency   = "efficiency"
	DimContext      = "context_management"
)

// remedies holds the one canned suggestion per dimension.
var remedies = map[string]string{
	DimClarity:      "Improve clarity: replace vague wording with concrete values, examples and constraints.",
	DimCompleteness: "Improve completeness: when pasting code or errors, add the problem statement, environment and expected result.",
	DimEfficiency:   "Improve efficiency: state the full requirement once instead of drip-feeding follow-ups.",
	DimContext:      "Improve context management: start a fresh session after long conversations.",
}

const noDataSuggestion = "No analyzable data found for the selected period."

// Scorer computes health reports.
type Scorer struct {
	rules config.HealthRules
	now   func() time.Time
}

// NewScorer creates a health scorer.
func NewScorer(rules config.HealthRules) *Scorer {
	return &Scorer{rules: rules, now: time.Now}
}

// Report computes the weighted health report for the period. Empty input
// yields score 0, grade F, no dimensions and a single no-data suggestion.
func (s *Scorer) Report(prompts []models.Prompt, matches []models.AntipatternMatch, days int) models.HealthReport {
	if len(prompts) == 0 {
		return models.HealthReport{
			Timestamp:              s.now().UTC(),
			OverallScore:           0,
			Grade:                  "F",
			Dimensions:             []models.DimensionScore{},
			TotalPromptsAnalyzed:   0,
			PeriodDays:             days,
			ImprovementSuggestions: []string{noDataSuggestion},
		}
	}

	counts := countByType(matches)

	dimensions := []models.DimensionScore{
		s.scoreClarity(prompts, counts),
		s.scoreCompleteness(counts),
		s.scoreEfficiency(prompts, counts),
		s.scoreContext(matches, counts),
	}

	overall := 0.0
	for _, d := range dimensions {
		overall += d.Score * d.Weight
	}
	// Grade from the rounded value so the published pair stays consistent.
	overall = round1(overall)

	return models.HealthReport{
		Timestamp:              s.now().UTC(),
		OverallScore:           overall,
		Grade:                  s.grade(overall),
		Dimensions:             dimensions,
		TotalPromptsAnalyzed:   len(prompts),
		PeriodDays:             days,
		ImprovementSuggestions: s.suggestions(dimensions, counts),
	}
}

type typeCounts map[models.AntipatternType]int

func countByType(matches []models.AntipatternMatch) typeCounts {
	counts := make(typeCounts)
	for _, m := range matches {
		counts[m.Type]++
	}
	return counts
}

func (s *Scorer) scoreClarity(prompts []models.Prompt, counts typeCounts) models.DimensionScore {
	score := 100.0
	var issues []string

	if vague := counts[models.AmbiguousInstruction]; vague > 0 {
		score -= capped(5*float64(vague), 40)
		issues = append(issues, fmt.Sprintf("%d ambiguous instructions", vague))
	}

	mean := meanLength(prompts)
	if mean < 30 {
		score -= 20
		issues = append(issues, fmt.Sprintf("average prompt length is very short (%.0f chars)", mean))
	} else if mean < 50 {
		score -= 10
		issues = append(issues, fmt.Sprintf("average prompt length is short (%.0f chars)", mean))
	}

	return models.DimensionScore{Name: DimClarity, Score: clamp(score), Weight: s.rules.ClarityWeight, Issues: issues}
}

func (s *Scorer) scoreCompleteness(counts typeCounts) models.DimensionScore {
	score := 100.0
	var issues []string

	if dumps := counts[models.UnexplainedDump]; dumps > 0 {
		score -= capped(8*float64(dumps), 50)
		issues = append(issues, fmt.Sprintf("%d pastes without context", dumps))
	}
	if frag := counts[models.FragmentedInput]; frag > 0 {
		score -= capped(3*float64(frag), 30)
		issues = append(issues, fmt.Sprintf("%d fragmented prompts", frag))
	}

	return models.DimensionScore{Name: DimCompleteness, Score: clamp(score), Weight: s.rules.CompletenessWeight, Issues: issues}
}

func (s *Scorer) scoreEfficiency(prompts []models.Prompt, counts typeCounts) models.DimensionScore {
	score := 100.0
	var issues []string

	sessions := make(map[string]struct{})
	for _, p := range prompts {
		if p.SessionID != "" {
			sessions[p.SessionID] = struct{}{}
		}
	}
	if len(sessions) > 0 {
		perSession := float64(len(prompts)) / float64(len(sessions))
		if perSession > 10 {
			score -= 20
			issues = append(issues, fmt.Sprintf("%.1f prompts per session on average, high", perSession))
		} else if perSession > 5 {
			score -= 10
			issues = append(issues, fmt.Sprintf("%.1f prompts per session on average", perSession))
		}
	}

	if frag := counts[models.FragmentedInput]; frag > 0 {
		score -= capped(5*float64(frag), 30)
	}

	thinking := 0
	for _, p := range prompts {
		if p.HasThinkingTrigger {
			thinking++
		}
	}
	if ratio := float64(thinking) / float64(len(prompts)); ratio > 0.10 {
		score += 5
		issues = append(issues, fmt.Sprintf("extended thinking used on %.0f%% of prompts (good)", ratio*100))
	}

	return models.DimensionScore{Name: DimEfficiency, Score: clamp(score), Weight: s.rules.EfficiencyWeight, Issues: issues}
}

func (s *Scorer) scoreContext(matches []models.AntipatternMatch, counts typeCounts) models.DimensionScore {
	score := 100.0
	var issues []string

	if overflow := counts[models.ContextOverflow]; overflow > 0 {
		critical := 0
		for _, m := range matches {
			if m.Type == models.ContextOverflow && m.Severity == models.SeverityCritical {
				critical++
			}
		}
		score -= capped(15*float64(overflow)+10*float64(critical), 60)
		issues = append(issues, fmt.Sprintf("%d overlong sessions", overflow))
	}

	return models.DimensionScore{Name: DimContext, Score: clamp(score), Weight: s.rules.ContextWeight, Issues: issues}
}

// grade walks the ladder top-down; anything below the last rung is an F.
func (s *Scorer) grade(score float64) string {
	for _, g := range s.rules.Grades {
		if score >= g.Min {
			return g.Grade
		}
	}
	return "F"
}

// suggestions emits one canned remedy for each of the two lowest-scoring
// dimensions under 70, plus extras for heavy fragmentation and dumping,
// truncated to five entries in discovery order.
func (s *Scorer) suggestions(dimensions []models.DimensionScore, counts typeCounts) []string {
	sorted := make([]models.DimensionScore, len(dimensions))
	copy(sorted, dimensions)
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && sorted[j].Score < sorted[j-1].Score; j-- {
			sorted[j], sorted[j-1] = sorted[j-1], sorted[j]
		}
	}

	var out []string
	for i := 0; i < len(sorted) && i < 2; i++ {
		if sorted[i].Score < 70 {
			if remedy, ok := remedies[sorted[i].Name]; ok {
				out = append(out, remedy)
			}
		}
	}

	if counts[models.FragmentedInput] > 5 {
		out = append(out, "Reduce fragmentation: collect every requirement before writing the prompt.")
	}
	if counts[models.UnexplainedDump] > 3 {
		out = append(out, "Avoid raw pastes: lead with \"I hit problem X, the code follows\" style framing.")
	}

	if len(out) > 5 {
		out = out[:5]
	}
	return out
}

func meanLength(prompts []models.Prompt) float64 {
	if len(prompts) == 0 {
		return 0
	}
	total := 0
	for _, p := range prompts {
		total += p.CharCount
	}
	return float64(total) / float64(len(prompts))
}

func capped(penalty, limit float64) float64 {
	if penalty > limit {
		return limit
	}
	return penalty
}

func clamp(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
