// Package models contains domain models for promptscope.
package models

import "time"

// Category classifies the topical intent of a prompt. Categories are
// non-exclusive: one prompt may carry several.
type Category string

const (
	CategoryCodeGeneration  Category = "code_generation"
	CategoryBugFix          Category = "bug_fix"
	CategoryCodeReview      Category = "code_review"
	CategoryRefactoring     Category = "refactoring"
	CategoryTesting         Category = "testing"
	CategoryDocumentation   Category = "documentation"
	CategoryConfigSetup     Category = "config_setup"
	CategoryGitOperations   Category = "git_operations"
	CategoryFileOperations  Category = "file_operations"
	CategorySearchExplore   Category = "search_explore"
	CategoryExtendedThink   Category = "extended_thinking"
	CategoryQuestion        Category = "question"
	CategoryChineseLanguage Category = "chinese_language"
	CategoryGeneral         Category = "general"
)

// Prompt is one user-authored message recovered from the history logs.
// Prompts are value objects: constructed once by the ingestor, never
// mutated and never persisted.
type Prompt struct {
	Text               string     `json:"text"`
	Timestamp          time.Time  `json:"timestamp"`
	Project            string     `json:"project"`
	SessionID          string     `json:"session_id,omitempty"`
	ThinkingTriggers   []string   `json:"thinking_triggers,omitempty"`
	Categories         []Category `json:"categories,omitempty"`
	CharCount          int        `json:"char_count"`
	HasCodeBlock       bool       `json:"has_code_block"`
	HasThinkingTrigger bool       `json:"has_thinking_trigger"`
	HasImage           bool       `json:"has_image"`
}

// HasCategory reports whether the prompt carries the given category.
func (p *Prompt) HasCategory(c Category) bool {
	for _, got := range p.Categories {
		if got == c {
			return true
		}
	}
	return false
}
