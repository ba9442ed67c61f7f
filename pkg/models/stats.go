package models

// DayCount is one (date, count) bucket in a daily breakdown.
type DayCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// ThinkingStats summarizes extended-thinking trigger usage.
type ThinkingStats struct {
	TotalTriggers     int            `json:"total_triggers"`
	ByTriggerWord     map[string]int `json:"by_trigger_word"`
	ByProject         map[string]int `json:"by_project"`
	ByDay             []DayCount     `json:"by_day"`
	AveragePerSession float64        `json:"average_per_session"`
}

// TokenStats summarizes token usage across sessions. EstimatedPromptTokens
// is a tokenizer-based estimate over prompt text; the other counters come
// from the transcripts' own accounting records.
type TokenStats struct {
	TotalTokens           int64            `json:"total_tokens"`
	InputTokens           int64            `json:"input_tokens"`
	OutputTokens          int64            `json:"output_tokens"`
	EstimatedPromptTokens int64            `json:"estimated_prompt_tokens"`
	ByProject             map[string]int64 `json:"by_project"`
}

// CategoryStats summarizes the category distribution of prompts.
type CategoryStats struct {
	TotalCategorized     int                `json:"total_categorized"`
	ByCategory           map[string]int     `json:"by_category"`
	ByCategoryPercentage map[string]float64 `json:"by_category_percentage"`
	PromptsWithImages    int                `json:"prompts_with_images"`
	ImagePercentage      float64            `json:"image_percentage"`
}

// ProjectStats is one project's usage row, sorted most-active-first by the
// statistics service.
type ProjectStats struct {
	Name             string `json:"name"`
	Sessions         int    `json:"sessions"`
	Prompts          int    `json:"prompts"`
	Tokens           int64  `json:"tokens"`
	ThinkingTriggers int    `json:"thinking_triggers"`
}

// Overview is the top-level statistics response.
type Overview struct {
	PeriodDays               int           `json:"period_days"`
	Thinking                 ThinkingStats `json:"thinking"`
	Tokens                   TokenStats    `json:"tokens"`
	Categories               CategoryStats `json:"categories"`
	SessionsCount            int           `json:"sessions_count"`
	ProjectsCount            int           `json:"projects_count"`
	PromptsCount             int           `json:"prompts_count"`
	AveragePromptsPerSession float64       `json:"average_prompts_per_session"`
	AveragePromptLength      float64       `json:"average_prompt_length"`
}
