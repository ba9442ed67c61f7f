package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thebtf/promptscope/internal/ingest"
	"github.com/thebtf/promptscope/pkg/models"
)

func prompt(text string, ts time.Time) models.Prompt {
	return models.Prompt{Text: text, Timestamp: ts, CharCount: len([]rune(text))}
}

func TestAssembleOrdersPromptsAscending(t *testing.T) {
	base := time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)

	logs := []ingest.SessionLog{{
		SessionID: "s1",
		Project:   "Alpha",
		Prompts: []models.Prompt{
			prompt("third", base.Add(2 * time.Minute)),
			prompt("first", base),
			prompt("second", base.Add(time.Minute)),
		},
		InputTokens:  100,
		OutputTokens: 250,
	}}

	sessions := Assemble(logs)
	require.Len(t, sessions, 1)

	got := sessions[0]
	assert.Equal(t, "s1", got.SessionID)
	assert.Equal(t, "Alpha", got.Project)
	assert.Equal(t, 3, got.TotalPrompts)
	assert.Equal(t, "first", got.Prompts[0].Text)
	assert.Equal(t, "third", got.Prompts[2].Text)
	assert.Equal(t, base, got.StartTime)
	assert.Equal(t, base.Add(2*time.Minute), got.EndTime)
	assert.Equal(t, int64(350), got.TotalTokens())
}

func TestAssembleSkipsEmptyLogs(t *testing.T) {
	logs := []ingest.SessionLog{
		{SessionID: "empty", Project: "Alpha", InputTokens: 500},
		{SessionID: "full", Project: "Alpha", Prompts: []models.Prompt{
			prompt("hello there", time.Now().UTC()),
		}},
	}

	sessions := Assemble(logs)
	require.Len(t, sessions, 1)
	assert.Equal(t, "full", sessions[0].SessionID)
}

func TestAssembleSessionsNewestFirst(t *testing.T) {
	base := time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)

	logs := []ingest.SessionLog{
		{SessionID: "old", Prompts: []models.Prompt{prompt("a", base)}},
		{SessionID: "new", Prompts: []models.Prompt{prompt("b", base.Add(time.Hour))}},
	}

	sessions := Assemble(logs)
	require.Len(t, sessions, 2)
	assert.Equal(t, "new", sessions[0].SessionID)
	assert.Equal(t, "old", sessions[1].SessionID)
}

func TestAssembleBreaksStartTimeTiesBySessionID(t *testing.T) {
	base := time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)

	logs := []ingest.SessionLog{
		{SessionID: "zeta", Prompts: []models.Prompt{prompt("a", base)}},
		{SessionID: "alpha", Prompts: []models.Prompt{prompt("b", base)}},
	}

	sessions := Assemble(logs)
	require.Len(t, sessions, 2)
	assert.Equal(t, "alpha", sessions[0].SessionID)
	assert.Equal(t, "zeta", sessions[1].SessionID)

	// Input order must not matter.
	reversed := Assemble([]ingest.SessionLog{logs[1], logs[0]})
	assert.Equal(t, sessions, reversed)
}

func TestAssembleDoesNotMutateInput(t *testing.T) {
	base := time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)
	original := []models.Prompt{
		prompt("later", base.Add(time.Minute)),
		prompt("earlier", base),
	}
	logs := []ingest.SessionLog{{SessionID: "s1", Prompts: original}}

	Assemble(logs)

	assert.Equal(t, "later", original[0].Text)
}
