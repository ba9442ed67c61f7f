// Package ingest parses the raw conversation logs into canonical prompts.
//
// Two heterogeneous append-only sources feed the pipeline: the flat history
// feed (one JSONL file with one record per prompt) and the structured
// per-project transcripts (one JSONL file per session, grouped under
// dash-encoded project directories). Both are normalized into the same
// Prompt shape. Ingestion is strictly best-effort: malformed lines, missing
// files and unreadable files are skipped, never fatal.
package ingest

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/thebtf/promptscope/internal/config"
	"github.com/thebtf/promptscope/pkg/models"
)

// maxParallelDirs bounds concurrent project directory scans.
const maxParallelDirs = 8

// Query narrows what the reader returns.
type Query struct {
	// Project is a substring filter over decoded project names.
	Project string
	// Days is the lookback window; prompts older than now-Days are dropped.
	Days int
	// Limit caps the number of prompts returned (0 = no cap).
	Limit int
}

// SessionLog is the raw parse result of one transcript file: the surviving
// prompts in file order plus the token counters summed from every assistant
// record in the stream (the lookback window applies to prompts only).
type SessionLog struct {
	SessionID    string
	Project      string
	Prompts      []models.Prompt
	InputTokens  int64
	OutputTokens int64
}

// Reader ingests the raw log sources.
type Reader struct {
	paths config.Paths
	rules config.IngestRules
	now   func() time.Time
}

// NewReader creates a reader over the given source paths.
func NewReader(paths config.Paths, rules config.IngestRules) *Reader {
	return &Reader{paths: paths, rules: rules, now: time.Now}
}

// ReadPrompts returns the deduplicated prompt set from both sources,
// sorted descending by timestamp.
func (r *Reader) ReadPrompts(ctx context.Context, q Query) ([]models.Prompt, error) {
	prompts, _, err := r.Read(ctx, q)
	return prompts, err
}

// Read scans both sources once and returns the merged prompt set alongside
// the raw session logs, so callers needing both do not parse the
// transcripts twice.
func (r *Reader) Read(ctx context.Context, q Query) ([]models.Prompt, []SessionLog, error) {
	cutoff := r.cutoff(q)

	prompts := r.readHistory(q, cutoff)

	logs, err := r.ReadSessionLogs(ctx, q)
	if err != nil {
		return nil, nil, err
	}
	for _, sl := range logs {
		prompts = append(prompts, sl.Prompts...)
	}

	// Newest first, then collapse records sharing the same
	// (text prefix, timestamp) fingerprint keeping the first seen.
	sort.SliceStable(prompts, func(i, j int) bool {
		return prompts[i].Timestamp.After(prompts[j].Timestamp)
	})
	seen := make(map[string]struct{}, len(prompts))
	unique := prompts[:0]
	for _, p := range prompts {
		key := prefixRunes(p.Text, r.rules.DedupPrefixRunes) + "_" +
			p.Timestamp.UTC().Format(time.RFC3339Nano)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, p)
	}

	if q.Limit > 0 && len(unique) > q.Limit {
		unique = unique[:q.Limit]
	}
	return unique, logs, nil
}

// ReadSessionLogs scans every transcript under the projects directory and
// returns one SessionLog per file that could be opened. Directories are
// scanned in parallel; record order within a file is preserved.
func (r *Reader) ReadSessionLogs(ctx context.Context, q Query) ([]SessionLog, error) {
	cutoff := r.cutoff(q)

	dirs, err := r.projectDirs()
	if err != nil {
		// Missing projects directory means no structured source, not an error.
		log.Debug().Err(err).Str("dir", r.paths.ProjectsDir).Msg("No projects directory")
		return nil, nil
	}

	var (
		mu   sync.Mutex
		logs []SessionLog
	)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelDirs)

	for _, dir := range dirs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			project := r.decodeProjectDir(dir.name)
			if q.Project != "" && !strings.Contains(project, q.Project) {
				return nil
			}
			parsed := r.parseProjectDir(dir.path, project, cutoff)
			mu.Lock()
			logs = append(logs, parsed...)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return logs, nil
}

func (r *Reader) cutoff(q Query) time.Time {
	days := q.Days
	if days <= 0 {
		days = config.DefaultDays
	}
	return r.now().UTC().AddDate(0, 0, -days)
}

// newPrompt normalizes extracted text into a Prompt value. Trigger metadata
// supplied upstream is trusted; otherwise the trigger vocabulary is matched
// against the text.
func (r *Reader) newPrompt(text string, ts time.Time, project, sessionID string, triggers []string, hasImage bool) models.Prompt {
	if len(triggers) == 0 {
		lower := strings.ToLower(text)
		for _, trigger := range r.rules.ThinkingTriggers {
			if strings.Contains(lower, trigger) {
				triggers = append(triggers, trigger)
			}
		}
	}

	return models.Prompt{
		Text:               text,
		Timestamp:          ts.UTC(),
		Project:            project,
		SessionID:          sessionID,
		CharCount:          utf8.RuneCountInString(text),
		HasCodeBlock:       codeBlockRe.MatchString(text),
		HasThinkingTrigger: len(triggers) > 0,
		HasImage:           hasImage,
		ThinkingTriggers:   triggers,
		Categories:         r.classify(text),
	}
}

// skipText reports whether extracted text is not a user-authored prompt.
func (r *Reader) skipText(text string) bool {
	if text == "" {
		return true
	}
	for _, prefix := range r.rules.CommandPrefixes {
		if strings.HasPrefix(text, prefix) {
			return true
		}
	}
	return false
}

// prefixRunes returns the first n runes of s.
func prefixRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}
