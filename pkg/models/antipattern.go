package models

import "time"

// Severity grades how damaging a detected anti-pattern instance is.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// ValidSeverity reports whether s is one of the known severity levels.
func ValidSeverity(s Severity) bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	}
	return false
}

// AntipatternType identifies the family of a detected anti-pattern.
type AntipatternType string

const (
	// FragmentedInput marks runs of short drip-fed prompts.
	FragmentedInput AntipatternType = "fragmented_input"
	// UnexplainedDump marks large pastes of code or errors without context.
	UnexplainedDump AntipatternType = "unexplained_dump"
	// AmbiguousInstruction marks vague or under-specified requests.
	AmbiguousInstruction AntipatternType = "ambiguous_instruction"
	// ContextOverflow marks sessions that grew past a healthy length.
	ContextOverflow AntipatternType = "context_overflow"
)

// ValidAntipatternType reports whether t is one of the known types.
func ValidAntipatternType(t AntipatternType) bool {
	switch t {
	case FragmentedInput, UnexplainedDump, AmbiguousInstruction, ContextOverflow:
		return true
	}
	return false
}

// AntipatternMatch is one detected anti-pattern instance. The ID is a
// deterministic fingerprint used for idempotent identification only; it is
// never a storage key.
type AntipatternMatch struct {
	ID            string          `json:"id"`
	Type          AntipatternType `json:"type"`
	Severity      Severity        `json:"severity"`
	PromptExcerpt string          `json:"prompt_excerpt"`
	Timestamp     time.Time       `json:"timestamp"`
	Project       string          `json:"project"`
	SessionID     string          `json:"session_id,omitempty"`
	Confidence    float64         `json:"confidence"`
	Explanation   string          `json:"explanation"`
	FixSuggestion string          `json:"fix_suggestion"`
}
