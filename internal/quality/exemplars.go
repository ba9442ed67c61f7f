package quality

import (
	"math"
	"sort"
	"unicode/utf8"

	"github.com/thebtf/promptscope/pkg/models"
)

// eligible reports whether a prompt takes part in exemplar selection and
// summary statistics: long enough to be instructive, and not dominated by
// fenced code blocks.
func (s *Scorer) eligible(p *models.Prompt) bool {
	runes := utf8.RuneCountInString(p.Text)
	if runes < s.rules.MinExemplarRunes {
		return false
	}
	blocks := len(codeBlockRe.FindAllString(p.Text, -1))
	density := float64(blocks) / math.Max(1, float64(runes)/100)
	return density <= s.rules.MaxCodeBlockDensity
}

// Exemplars scores the eligible prompts and returns the ones at or above
// minScore, highest first, capped at limit. Ties keep input order.
func (s *Scorer) Exemplars(prompts []models.Prompt, minScore float64, limit int) []models.ScoredPrompt {
	scored := make([]models.ScoredPrompt, 0, len(prompts))
	for i := range prompts {
		if !s.eligible(&prompts[i]) {
			continue
		}
		sp := s.Score(&prompts[i])
		if sp.Score >= minScore {
			scored = append(scored, sp)
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if limit > 0 && len(scored) > limit {
		scored = scored[:limit]
	}
	return scored
}

// Summary aggregates quality statistics over the same eligible set the
// exemplar selection uses.
func (s *Scorer) Summary(prompts []models.Prompt) models.QualitySummary {
	var (
		analyzed  int
		total     float64
		good      int
		excellent int
	)
	for i := range prompts {
		if !s.eligible(&prompts[i]) {
			continue
		}
		sp := s.Score(&prompts[i])
		analyzed++
		total += sp.Score
		if sp.Score >= s.rules.GoodScore {
			good++
		}
		if sp.Score >= s.rules.ExcellentScore {
			excellent++
		}
	}

	if analyzed == 0 {
		return models.QualitySummary{}
	}

	avg := total / float64(analyzed)
	return models.QualitySummary{
		TotalAnalyzed:        analyzed,
		AverageScore:         round1(avg),
		GoodPromptCount:      good,
		ExcellentPromptCount: excellent,
		GoodPercentage:       round1(100 * float64(good) / float64(analyzed)),
		ImprovementPotential: round1(math.Max(0, 100-avg)),
	}
}
