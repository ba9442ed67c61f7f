package models

import "time"

// DimensionScore is one weighted component of the overall health score.
type DimensionScore struct {
	Name   string   `json:"name"`
	Score  float64  `json:"score"`
	Weight float64  `json:"weight"`
	Issues []string `json:"issues"`
}

// HealthReport aggregates the four dimension scores into an overall score,
// letter grade and a capped list of remediation suggestions.
type HealthReport struct {
	Timestamp              time.Time        `json:"timestamp"`
	OverallScore           float64          `json:"overall_score"`
	Grade                  string           `json:"grade"`
	Dimensions             []DimensionScore `json:"dimensions"`
	TotalPromptsAnalyzed   int              `json:"total_prompts_analyzed"`
	PeriodDays             int              `json:"period_days"`
	ImprovementSuggestions []string         `json:"improvement_suggestions"`
	TrendVsLastWeek        *float64         `json:"trend_vs_last_week,omitempty"`
}
