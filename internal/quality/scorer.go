// Package quality scores individual prompts across five weighted
// dimensions and selects exemplar high-quality prompts. It is independent
// of the anti-pattern pipeline.
package quality

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"unicode/utf8"

	"github.com/thebtf/promptscope/internal/config"
	"github.com/thebtf/promptscope/pkg/models"
)

// codeBlockRe matches fenced code blocks, newlines included.
var codeBlockRe = regexp.MustCompile("(?s)```.*?```")

// Scorer computes prompt quality scores.
type Scorer struct {
	rules config.QualityRules
}

// NewScorer creates a quality scorer.
func NewScorer(rules config.QualityRules) *Scorer {
	return &Scorer{rules: rules}
}

// Score evaluates one prompt. Four dimensions are regex-driven
// (50 + 15 per distinct pattern hit, capped at 100); efficiency is a pure
// length curve. Negative patterns subtract 15 each before clamping, the
// diversity bonus adds 3 per distinct indicator (capped at +20) after.
func (s *Scorer) Score(p *models.Prompt) models.ScoredPrompt {
	dims := make(map[string]float64, len(s.rules.Dimensions))
	var indicators []string
	var reasons []string

	for _, dim := range s.rules.Dimensions {
		if dim.Name == "efficiency" {
			dims[dim.Name] = lengthScore(utf8.RuneCountInString(p.Text))
			continue
		}
		hits := 0
		for _, pattern := range s.rules.Positive[dim.Name] {
			if pattern.MatchString(p.Text) {
				hits++
				indicators = append(indicators, fmt.Sprintf("%s_%d", dim.Name, hits))
			}
		}
		dims[dim.Name] = math.Min(100, 50+15*float64(hits))
	}

	negatives := 0
	for _, pattern := range s.rules.Negative {
		if pattern.MatchString(p.Text) {
			negatives++
		}
	}

	for _, pattern := range s.rules.CodeBestPractice {
		if pattern.MatchString(p.Text) {
			indicators = append(indicators, "code_best_practice")
			reasons = append(reasons, "Requests best practices")
			break
		}
	}
	if p.HasThinkingTrigger {
		indicators = append(indicators, "uses_extended_thinking")
		reasons = append(reasons, "Uses extended thinking for complex tasks")
	}
	if p.HasCategory(models.CategoryCodeGeneration) && p.CharCount > 100 {
		indicators = append(indicators, "detailed_code_request")
		reasons = append(reasons, "Detailed code generation request")
	}
	if p.HasCategory(models.CategoryRefactoring) {
		indicators = append(indicators, "refactoring_intent")
		reasons = append(reasons, "Shows refactoring mindset")
	}

	weighted := 0.0
	for _, dim := range s.rules.Dimensions {
		weighted += dims[dim.Name] * dim.Weight
	}

	indicators = dedupeSorted(indicators)

	overall := clamp(weighted - 15*float64(negatives))
	bonus := math.Min(20, 3*float64(len(indicators)))
	overall = clamp(overall + bonus)

	for _, dim := range s.rules.Dimensions {
		if dims[dim.Name] < 70 {
			continue
		}
		switch dim.Name {
		case "clarity":
			reasons = append(reasons, "Clear and specific instructions")
		case "context":
			reasons = append(reasons, "Provides good context")
		case "structure":
			reasons = append(reasons, "Well-structured request")
		case "specificity":
			reasons = append(reasons, "Specific rather than vague")
		case "efficiency":
			reasons = append(reasons, "Good length, concise yet complete")
		}
	}

	rounded := make(map[string]float64, len(dims))
	for name, score := range dims {
		rounded[name] = round1(score)
	}

	return models.ScoredPrompt{
		Prompt:            *p,
		Score:             round1(overall),
		DimensionScores:   rounded,
		QualityIndicators: indicators,
		Reasons:           dedupeSorted(reasons),
	}
}

// lengthScore is the authoritative efficiency sub-score: a pure length
// curve with an optimal band between 200 and 500 characters.
func lengthScore(length int) float64 {
	switch {
	case length < 30:
		return 20
	case length < 50:
		return 40
	case length < 100:
		return 60
	case length < 200:
		return 80
	case length < 500:
		return 100
	case length < 1000:
		return 85
	case length < 2000:
		return 70
	case length < 5000:
		return 60
	default:
		return 40
	}
}

// dedupeSorted returns the distinct values in sorted order, keeping the
// scorer's output deterministic.
func dedupeSorted(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
