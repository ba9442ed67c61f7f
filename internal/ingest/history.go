package ingest

import (
	"bufio"
	"os"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog/log"

	"github.com/thebtf/promptscope/pkg/models"
)

// scanBufSize allows for very large single-line records (big pastes).
const scanBufSize = 4 * 1024 * 1024

// historyEntry is one record of the flat history feed. The timestamp is
// kept raw because the feed mixes epoch milliseconds and ISO strings.
type historyEntry struct {
	Timestamp json.RawMessage `json:"timestamp"`
	Project   string          `json:"project"`
	Display   string          `json:"display"`
	SessionID string          `json:"sessionId"`
}

// readHistory parses the flat history feed. The feed carries no reliable
// session framing and no token accounting, so it only contributes prompts.
func (r *Reader) readHistory(q Query, cutoff time.Time) []models.Prompt {
	f, err := os.Open(r.paths.HistoryFile)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn().Err(err).Str("file", r.paths.HistoryFile).Msg("Cannot read history feed")
		}
		return nil
	}
	defer f.Close()

	var prompts []models.Prompt

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), scanBufSize)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var entry historyEntry
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			log.Debug().Err(err).Msg("Skipping malformed history line")
			continue
		}

		ts, ok := parseTimestamp(entry.Timestamp)
		if !ok || ts.Before(cutoff) {
			continue
		}
		if r.skipText(entry.Display) {
			continue
		}

		// Flat-feed paths are slash-delimited; translate them into the
		// dash-encoded shape so both sources decode to identical names.
		project := r.decodeProjectPath(entry.Project)
		if q.Project != "" && !strings.Contains(project, q.Project) {
			continue
		}

		prompts = append(prompts, r.newPrompt(entry.Display, ts, project, entry.SessionID, nil, false))
	}
	if err := scanner.Err(); err != nil {
		log.Warn().Err(err).Str("file", r.paths.HistoryFile).Msg("History feed scan aborted")
	}

	return prompts
}
