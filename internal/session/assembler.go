// Package session assembles raw transcript parses into session aggregates.
package session

import (
	"sort"

	"github.com/thebtf/promptscope/internal/ingest"
	"github.com/thebtf/promptscope/pkg/models"
)

// Assemble turns raw session logs into ordered Session aggregates. Logs
// with zero surviving prompts are omitted; within a session prompts are
// sorted ascending by timestamp and the start/end bounds come from the
// first and last prompt. Sessions are returned newest-first.
func Assemble(logs []ingest.SessionLog) []models.Session {
	sessions := make([]models.Session, 0, len(logs))
	for _, sl := range logs {
		if len(sl.Prompts) == 0 {
			continue
		}

		prompts := make([]models.Prompt, len(sl.Prompts))
		copy(prompts, sl.Prompts)
		sort.SliceStable(prompts, func(i, j int) bool {
			return prompts[i].Timestamp.Before(prompts[j].Timestamp)
		})

		sessions = append(sessions, models.Session{
			SessionID:         sl.SessionID,
			Project:           sl.Project,
			Prompts:           prompts,
			TotalPrompts:      len(prompts),
			StartTime:         prompts[0].Timestamp,
			EndTime:           prompts[len(prompts)-1].Timestamp,
			TotalInputTokens:  sl.InputTokens,
			TotalOutputTokens: sl.OutputTokens,
		})
	}

	// SessionID breaks start-time ties; input arrives in scan-completion
	// order, which varies between runs.
	sort.SliceStable(sessions, func(i, j int) bool {
		if !sessions[i].StartTime.Equal(sessions[j].StartTime) {
			return sessions[i].StartTime.After(sessions[j].StartTime)
		}
		return sessions[i].SessionID < sessions[j].SessionID
	})
	return sessions
}
