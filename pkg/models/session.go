package models

import "time"

// Session is an ordered conversation belonging to one project. Prompts are
// sorted ascending by timestamp; token counters are summed from the
// assistant accounting records interleaved in the same transcript.
type Session struct {
	SessionID         string    `json:"session_id"`
	Project           string    `json:"project"`
	Prompts           []Prompt  `json:"prompts"`
	TotalPrompts      int       `json:"total_prompts"`
	StartTime         time.Time `json:"start_time"`
	EndTime           time.Time `json:"end_time"`
	TotalInputTokens  int64     `json:"total_input_tokens"`
	TotalOutputTokens int64     `json:"total_output_tokens"`
}

// TotalTokens returns the combined input and output token count.
func (s *Session) TotalTokens() int64 {
	return s.TotalInputTokens + s.TotalOutputTokens
}
