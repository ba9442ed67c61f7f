// Package antipattern implements the rule-based anti-pattern detection
// engine. Rules are pure functions over (prompt, session context); the
// battery is an ordered slice so adding a rule means appending to it.
package antipattern

import (
	"sort"

	"github.com/thebtf/promptscope/internal/config"
	"github.com/thebtf/promptscope/pkg/models"
)

// unassignedSession buckets prompts that carry no session identifier. The
// NUL prefix keeps it from colliding with any real session id.
const unassignedSession = "\x00unassigned"

// promptContext is the sliding window handed to prompt-local rules.
type promptContext struct {
	sessionID     string
	previous      []models.Prompt // up to ContextWindow immediately preceding prompts
	position      int
	sessionLength int
}

// promptRule evaluates one prompt with its session context.
type promptRule func(p *models.Prompt, ctx *promptContext) []models.AntipatternMatch

// Detector runs the anti-pattern rule battery.
type Detector struct {
	rules   config.DetectorRules
	battery []promptRule
}

// NewDetector creates a detector with the full rule battery.
func NewDetector(rules config.DetectorRules) *Detector {
	d := &Detector{rules: rules}
	d.battery = []promptRule{
		d.detectFragmentedRun,
		d.detectFollowup,
		d.detectDump,
		d.detectAmbiguous,
	}
	return d
}

// Detect partitions prompts by session, orders each partition ascending by
// timestamp, runs every prompt-local rule with a sliding window of up to
// ContextWindow predecessors, then runs the session-level rule once per
// partition. A single prompt may fire multiple rules and sub-cases.
func (d *Detector) Detect(prompts []models.Prompt) []models.AntipatternMatch {
	buckets := make(map[string][]models.Prompt)
	for _, p := range prompts {
		key := p.SessionID
		if key == "" {
			key = unassignedSession
		}
		buckets[key] = append(buckets[key], p)
	}

	// Stable iteration keeps the output idempotent across runs.
	keys := make([]string, 0, len(buckets))
	for key := range buckets {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var matches []models.AntipatternMatch
	for _, key := range keys {
		bucket := buckets[key]
		sort.SliceStable(bucket, func(i, j int) bool {
			return bucket[i].Timestamp.Before(bucket[j].Timestamp)
		})

		for i := range bucket {
			lo := i - d.rules.ContextWindow
			if lo < 0 {
				lo = 0
			}
			ctx := &promptContext{
				sessionID:     key,
				previous:      bucket[lo:i],
				position:      i,
				sessionLength: len(bucket),
			}
			for _, rule := range d.battery {
				matches = append(matches, rule(&bucket[i], ctx)...)
			}
		}

		matches = append(matches, d.detectOverflow(bucket)...)
	}
	return matches
}
