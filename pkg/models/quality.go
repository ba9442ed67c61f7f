package models

// ScoredPrompt pairs a prompt with its quality score and the evidence
// behind it.
type ScoredPrompt struct {
	Prompt            Prompt             `json:"prompt"`
	Score             float64            `json:"score"`
	DimensionScores   map[string]float64 `json:"dimension_scores"`
	QualityIndicators []string           `json:"quality_indicators"`
	Reasons           []string           `json:"reasons"`
}

// QualitySummary holds aggregate quality statistics over the eligible
// prompt set.
type QualitySummary struct {
	TotalAnalyzed        int     `json:"total_analyzed"`
	AverageScore         float64 `json:"average_score"`
	GoodPromptCount      int     `json:"good_prompt_count"`
	ExcellentPromptCount int     `json:"excellent_prompt_count"`
	GoodPercentage       float64 `json:"good_percentage"`
	ImprovementPotential float64 `json:"improvement_potential"`
}
