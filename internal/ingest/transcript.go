package ingest

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog/log"

	"github.com/thebtf/promptscope/pkg/models"
)

// transcriptLine is one record of a per-project session transcript.
type transcriptLine struct {
	Type             string             `json:"type"`
	Timestamp        json.RawMessage    `json:"timestamp"`
	IsMeta           bool               `json:"isMeta"`
	Message          *transcriptMessage `json:"message"`
	ThinkingMetadata *thinkingMetadata  `json:"thinkingMetadata"`
}

type transcriptMessage struct {
	Content json.RawMessage `json:"content"`
	Usage   *tokenUsage     `json:"usage"`
}

type tokenUsage struct {
	InputTokens  int64 `json:"input_tokens"`
	OutputTokens int64 `json:"output_tokens"`
}

type thinkingMetadata struct {
	Triggers []struct {
		Text string `json:"text"`
	} `json:"triggers"`
}

type projectDir struct {
	name string
	path string
}

// projectDirs lists the dash-encoded project directories.
func (r *Reader) projectDirs() ([]projectDir, error) {
	entries, err := os.ReadDir(r.paths.ProjectsDir)
	if err != nil {
		return nil, err
	}
	dirs := make([]projectDir, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		dirs = append(dirs, projectDir{
			name: e.Name(),
			path: filepath.Join(r.paths.ProjectsDir, e.Name()),
		})
	}
	return dirs, nil
}

// parseProjectDir parses every session transcript in one project directory.
// A file that cannot be read is skipped; it never aborts the directory.
func (r *Reader) parseProjectDir(dir, project string, cutoff time.Time) []SessionLog {
	entries, err := os.ReadDir(dir)
	if err != nil {
		log.Warn().Err(err).Str("dir", dir).Msg("Cannot scan project directory")
		return nil
	}

	var logs []SessionLog
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".jsonl") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		sessionID := strings.TrimSuffix(e.Name(), ".jsonl")
		sl, err := r.parseTranscript(path, sessionID, project, cutoff)
		if err != nil {
			log.Warn().Err(err).Str("file", path).Msg("Skipping unreadable transcript")
			continue
		}
		logs = append(logs, sl)
	}
	return logs
}

// parseTranscript parses one session transcript. User records inside the
// lookback window become prompts; assistant accounting records contribute
// token counters regardless of the window.
func (r *Reader) parseTranscript(path, sessionID, project string, cutoff time.Time) (SessionLog, error) {
	f, err := os.Open(path)
	if err != nil {
		return SessionLog{}, err
	}
	defer f.Close()

	sl := SessionLog{SessionID: sessionID, Project: project}

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), scanBufSize)
	for scanner.Scan() {
		raw := strings.TrimSpace(scanner.Text())
		if raw == "" {
			continue
		}

		var line transcriptLine
		if err := json.Unmarshal([]byte(raw), &line); err != nil {
			log.Debug().Err(err).Str("file", path).Msg("Skipping malformed transcript line")
			continue
		}

		switch line.Type {
		case "user":
			p, ok := r.promptFromLine(&line, sessionID, project, cutoff)
			if ok {
				sl.Prompts = append(sl.Prompts, p)
			}
		case "assistant":
			if line.Message != nil && line.Message.Usage != nil {
				sl.InputTokens += line.Message.Usage.InputTokens
				sl.OutputTokens += line.Message.Usage.OutputTokens
			}
		}
	}
	if err := scanner.Err(); err != nil {
		log.Warn().Err(err).Str("file", path).Msg("Transcript scan aborted")
	}

	return sl, nil
}

// promptFromLine converts a user transcript record into a prompt. Meta
// records, command-wrapper output, empty text and out-of-window records
// all yield ok=false.
func (r *Reader) promptFromLine(line *transcriptLine, sessionID, project string, cutoff time.Time) (models.Prompt, bool) {
	if line.IsMeta || line.Message == nil {
		return models.Prompt{}, false
	}

	ts, ok := parseTimestamp(line.Timestamp)
	if !ok || ts.Before(cutoff) {
		return models.Prompt{}, false
	}

	content, err := decodeContent(line.Message.Content)
	if err != nil {
		return models.Prompt{}, false
	}
	text, hasImage := content.JoinedText()
	if r.skipText(text) {
		return models.Prompt{}, false
	}

	var triggers []string
	if line.ThinkingMetadata != nil {
		for _, t := range line.ThinkingMetadata.Triggers {
			if t.Text != "" {
				triggers = append(triggers, t.Text)
			}
		}
	}

	return r.newPrompt(text, ts, project, sessionID, triggers, hasImage), true
}
