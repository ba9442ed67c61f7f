// Package stats computes aggregate usage statistics over prompts and
// sessions: extended-thinking usage, token totals, category distribution
// and per-project activity.
package stats

import (
	"math"
	"sort"

	"github.com/rs/zerolog/log"
	"github.com/tiktoken-go/tokenizer"

	"github.com/thebtf/promptscope/pkg/models"
)

// Service computes statistics. It holds no mutable state, so one instance
// is safe for concurrent use.
type Service struct {
	codec tokenizer.Codec
}

// NewService creates a statistics service. The tokenizer codec is loaded
// once here; when the encoding is unavailable token estimates degrade to 0.
func NewService() *Service {
	codec, err := tokenizer.Get(tokenizer.Cl100kBase)
	if err != nil {
		log.Warn().Err(err).Msg("tokenizer unavailable, skipping token estimates")
	}
	return &Service{codec: codec}
}

// Overview aggregates the full statistics response for one period.
func (s *Service) Overview(prompts []models.Prompt, sessions []models.Session, days int) models.Overview {
	projects := make(map[string]struct{})
	totalLength := 0
	for _, p := range prompts {
		projects[p.Project] = struct{}{}
		totalLength += p.CharCount
	}

	avgPerSession := 0.0
	if len(sessions) > 0 {
		avgPerSession = float64(len(prompts)) / float64(len(sessions))
	}
	avgLength := 0.0
	if len(prompts) > 0 {
		avgLength = float64(totalLength) / float64(len(prompts))
	}

	return models.Overview{
		PeriodDays:               days,
		Thinking:                 s.thinkingStats(prompts),
		Tokens:                   s.tokenStats(prompts, sessions),
		Categories:               s.categoryStats(prompts),
		SessionsCount:            len(sessions),
		ProjectsCount:            len(projects),
		PromptsCount:             len(prompts),
		AveragePromptsPerSession: round1(avgPerSession),
		AveragePromptLength:      round1(avgLength),
	}
}

func (s *Service) thinkingStats(prompts []models.Prompt) models.ThinkingStats {
	byWord := make(map[string]int)
	byProject := make(map[string]int)
	byDay := make(map[string]int)
	withThinking := make(map[string]struct{})

	total := 0
	for _, p := range prompts {
		for _, trigger := range p.ThinkingTriggers {
			byWord[trigger]++
		}
		if !p.HasThinkingTrigger {
			continue
		}
		total++
		byProject[p.Project]++
		byDay[p.Timestamp.UTC().Format("2006-01-02")]++
		if p.SessionID != "" {
			withThinking[p.SessionID] = struct{}{}
		}
	}

	days := make([]models.DayCount, 0, len(byDay))
	for day, count := range byDay {
		days = append(days, models.DayCount{Date: day, Count: count})
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Date < days[j].Date })

	avg := 0.0
	if len(withThinking) > 0 {
		avg = float64(total) / float64(len(withThinking))
	}

	return models.ThinkingStats{
		TotalTriggers:     total,
		ByTriggerWord:     byWord,
		ByProject:         byProject,
		ByDay:             days,
		AveragePerSession: round2(avg),
	}
}

func (s *Service) tokenStats(prompts []models.Prompt, sessions []models.Session) models.TokenStats {
	var input, output int64
	byProject := make(map[string]int64)
	for i := range sessions {
		input += sessions[i].TotalInputTokens
		output += sessions[i].TotalOutputTokens
		byProject[sessions[i].Project] += sessions[i].TotalTokens()
	}

	return models.TokenStats{
		TotalTokens:           input + output,
		InputTokens:           input,
		OutputTokens:          output,
		EstimatedPromptTokens: s.estimateTokens(prompts),
		ByProject:             byProject,
	}
}

// estimateTokens counts prompt text tokens with the cl100k_base encoding.
// It is best effort; when the encoder is unavailable the estimate is 0.
func (s *Service) estimateTokens(prompts []models.Prompt) int64 {
	if s.codec == nil {
		return 0
	}

	var total int64
	for _, p := range prompts {
		count, err := s.codec.Count(p.Text)
		if err != nil {
			log.Debug().Err(err).Msg("token count failed for prompt")
			continue
		}
		total += int64(count)
	}
	return total
}

func (s *Service) categoryStats(prompts []models.Prompt) models.CategoryStats {
	byCategory := make(map[string]int)
	categorized := 0
	withImages := 0
	for _, p := range prompts {
		if len(p.Categories) > 0 {
			categorized++
		}
		for _, c := range p.Categories {
			byCategory[string(c)]++
		}
		if p.HasImage {
			withImages++
		}
	}

	percentages := make(map[string]float64, len(byCategory))
	if categorized > 0 {
		for name, count := range byCategory {
			percentages[name] = round1(100 * float64(count) / float64(categorized))
		}
	}

	imagePct := 0.0
	if len(prompts) > 0 {
		imagePct = round1(100 * float64(withImages) / float64(len(prompts)))
	}

	return models.CategoryStats{
		TotalCategorized:     categorized,
		ByCategory:           byCategory,
		ByCategoryPercentage: percentages,
		PromptsWithImages:    withImages,
		ImagePercentage:      imagePct,
	}
}

// ProjectStats aggregates per-project activity from sessions, most active
// first by prompt count.
func (s *Service) ProjectStats(sessions []models.Session) []models.ProjectStats {
	byProject := make(map[string]*models.ProjectStats)
	for i := range sessions {
		sess := &sessions[i]
		row, ok := byProject[sess.Project]
		if !ok {
			row = &models.ProjectStats{Name: sess.Project}
			byProject[sess.Project] = row
		}
		row.Sessions++
		row.Prompts += sess.TotalPrompts
		row.Tokens += sess.TotalTokens()
		for _, p := range sess.Prompts {
			if p.HasThinkingTrigger {
				row.ThinkingTriggers++
			}
		}
	}

	out := make([]models.ProjectStats, 0, len(byProject))
	for _, row := range byProject {
		out = append(out, *row)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Prompts != out[j].Prompts {
			return out[i].Prompts > out[j].Prompts
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
