package antipattern

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/thebtf/promptscope/pkg/models"
)

// detectFragmentedRun fires when a short prompt extends a run of short
// prompts in the same session. Bare confirmation tokens are exempt.
func (d *Detector) detectFragmentedRun(p *models.Prompt, ctx *promptContext) []models.AntipatternMatch {
	text := strings.TrimSpace(p.Text)

	if d.isConfirmation(text) {
		return nil
	}
	if utf8.RuneCountInString(text) >= d.rules.ShortPromptRunes {
		return nil
	}

	consecutive := 0
	for i := len(ctx.previous) - 1; i >= 0; i-- {
		prev := strings.TrimSpace(ctx.previous[i].Text)
		if utf8.RuneCountInString(prev) >= d.rules.ShortPromptRunes {
			break
		}
		consecutive++
	}
	if consecutive < d.rules.MinConsecutiveShort {
		return nil
	}

	severity := models.SeverityMedium
	if consecutive >= d.rules.HighConsecutiveShort {
		severity = models.SeverityHigh
	}
	confidence := 0.5 + 0.1*float64(consecutive)
	if confidence > 0.95 {
		confidence = 0.95
	}

	return []models.AntipatternMatch{{
		ID:            fingerprint(p, "fragmented_run"),
		Type:          models.FragmentedInput,
		Severity:      severity,
		PromptExcerpt: excerpt(text, 100),
		Timestamp:     p.Timestamp,
		Project:       p.Project,
		SessionID:     p.SessionID,
		Confidence:    confidence,
		Explanation: fmt.Sprintf("%d consecutive prompts under %d characters; the request arrives in fragments",
			consecutive+1, d.rules.ShortPromptRunes),
		FixSuggestion: "Combine related requirements into a single prompt that states the background, goal and constraints up front.",
	}}
}

// detectFollowup fires on continuation phrasing such as "also" or
// "forgot to mention".
func (d *Detector) detectFollowup(p *models.Prompt, ctx *promptContext) []models.AntipatternMatch {
	text := strings.TrimSpace(p.Text)

	for _, pattern := range d.rules.FollowupPatterns {
		if !pattern.MatchString(text) {
			continue
		}
		return []models.AntipatternMatch{{
			ID:            fingerprint(p, "fragmented_followup"),
			Type:          models.FragmentedInput,
			Severity:      models.SeverityLow,
			PromptExcerpt: excerpt(text, 100),
			Timestamp:     p.Timestamp,
			Project:       p.Project,
			SessionID:     p.SessionID,
			Confidence:    0.7,
			Explanation:   "Follow-up phrasing suggests this information belonged in the initial request",
			FixSuggestion: "Include all relevant details and requirements the first time you ask.",
		}}
	}
	return nil
}

// detectDump fires on large pastes of code, stack traces or other content
// with little or no surrounding explanation.
func (d *Detector) detectDump(p *models.Prompt, ctx *promptContext) []models.AntipatternMatch {
	text := p.Text
	total := utf8.RuneCountInString(text)
	if total < d.rules.MinPasteRunes {
		return nil
	}

	codeRunes := 0
	for _, block := range codeBlockRe.FindAllString(text, -1) {
		codeRunes += utf8.RuneCountInString(block)
	}
	codeRatio := float64(codeRunes) / float64(total)

	remainder := strings.TrimSpace(codeBlockRe.ReplaceAllString(text, ""))
	hasExplanation := utf8.RuneCountInString(remainder) > d.rules.ExplanationRunes

	var matches []models.AntipatternMatch

	if codeRatio > d.rules.CodeRatio && !hasExplanation {
		matches = append(matches, models.AntipatternMatch{
			ID:            fingerprint(p, "dump_code"),
			Type:          models.UnexplainedDump,
			Severity:      models.SeverityHigh,
			PromptExcerpt: excerpt(text, 150),
			Timestamp:     p.Timestamp,
			Project:       p.Project,
			SessionID:     p.SessionID,
			Confidence:    0.85,
			Explanation: fmt.Sprintf("%.0f%% of the prompt is code with no problem statement or expected outcome",
				codeRatio*100),
			FixSuggestion: "Precede the code with: 1) the problem, 2) the expected behavior, 3) what you already tried.",
		})
	}

	if d.rules.StackTrace.MatchString(text) && !hasExplanation {
		matches = append(matches, models.AntipatternMatch{
			ID:            fingerprint(p, "dump_stacktrace"),
			Type:          models.UnexplainedDump,
			Severity:      models.SeverityCritical,
			PromptExcerpt: excerpt(text, 150),
			Timestamp:     p.Timestamp,
			Project:       p.Project,
			SessionID:     p.SessionID,
			Confidence:    0.9,
			Explanation:   "Error output pasted without the triggering action or the expected behavior",
			FixSuggestion: "State: 1) what action triggered the error, 2) the environment, 3) what should have happened.",
		})
	}

	if total > d.rules.LongPasteRunes && !hasExplanation {
		matches = append(matches, models.AntipatternMatch{
			ID:            fingerprint(p, "dump_long"),
			Type:          models.UnexplainedDump,
			Severity:      models.SeverityMedium,
			PromptExcerpt: excerpt(text, 150),
			Timestamp:     p.Timestamp,
			Project:       p.Project,
			SessionID:     p.SessionID,
			Confidence:    0.75,
			Explanation:   fmt.Sprintf("Large paste (%d characters) with no context", total),
			FixSuggestion: "Add a short note: what is this content, and what should be done with it?",
		})
	}

	return matches
}

// detectAmbiguous fires on vague vocabulary and on bare ultra-short
// instructions. Questions are exempt; they are usually clarifications.
func (d *Detector) detectAmbiguous(p *models.Prompt, ctx *promptContext) []models.AntipatternMatch {
	text := strings.TrimSpace(p.Text)
	if strings.HasSuffix(text, "?") || strings.HasSuffix(text, "？") {
		return nil
	}

	var matches []models.AntipatternMatch

	lower := strings.ToLower(text)
	var found []string
	for _, term := range d.rules.VagueTerms {
		if strings.Contains(lower, term) {
			found = append(found, term)
		}
	}
	if len(found) >= d.rules.MinVagueHits {
		shown := found
		if len(shown) > 3 {
			shown = shown[:3]
		}
		matches = append(matches, models.AntipatternMatch{
			ID:            fingerprint(p, "vague_terms"),
			Type:          models.AmbiguousInstruction,
			Severity:      models.SeverityMedium,
			PromptExcerpt: excerpt(text, 100),
			Timestamp:     p.Timestamp,
			Project:       p.Project,
			SessionID:     p.SessionID,
			Confidence:    0.7,
			Explanation:   fmt.Sprintf("Vague wording (%s) leaves the outcome open to interpretation", strings.Join(shown, ", ")),
			FixSuggestion: "Replace vague wording with concrete values, acceptance criteria or examples.",
		})
	}

	if utf8.RuneCountInString(text) < d.rules.ShortInstructionRunes {
		matches = append(matches, models.AntipatternMatch{
			ID:            fingerprint(p, "vague_short"),
			Type:          models.AmbiguousInstruction,
			Severity:      models.SeverityHigh,
			PromptExcerpt: excerpt(text, 100),
			Timestamp:     p.Timestamp,
			Project:       p.Project,
			SessionID:     p.SessionID,
			Confidence:    0.8,
			Explanation:   fmt.Sprintf("Instruction is only %d characters; context and constraints are missing", utf8.RuneCountInString(text)),
			FixSuggestion: "Add the background, the concrete requirement, the output format and any constraints.",
		})
	}

	return matches
}

// detectOverflow is the session-level rule: it fires once per session that
// grew past the warning length, anchored to the session's last prompt.
func (d *Detector) detectOverflow(bucket []models.Prompt) []models.AntipatternMatch {
	length := len(bucket)
	if length < d.rules.SessionWarnLength {
		return nil
	}
	last := &bucket[length-1]

	severity := models.SeverityHigh
	confidence := 0.85
	if length >= d.rules.SessionCriticalLength {
		severity = models.SeverityCritical
		confidence = 0.95
	}

	return []models.AntipatternMatch{{
		ID:            fingerprint(last, fmt.Sprintf("overflow_%d", length)),
		Type:          models.ContextOverflow,
		Severity:      severity,
		PromptExcerpt: fmt.Sprintf("Session with %d prompts", length),
		Timestamp:     last.Timestamp,
		Project:       last.Project,
		SessionID:     last.SessionID,
		Confidence:    confidence,
		Explanation:   fmt.Sprintf("Session has grown to %d prompts; an oversized context degrades answer quality", length),
		FixSuggestion: "Start a fresh session, summarizing the progress so far instead of carrying the full history.",
	}}
}

// isConfirmation reports whether text is a bare confirmation token.
func (d *Detector) isConfirmation(text string) bool {
	lower := strings.ToLower(text)
	for _, token := range d.rules.Confirmations {
		if lower == token {
			return true
		}
	}
	return false
}

// excerpt truncates text to at most n runes, marking the cut.
func excerpt(text string, n int) string {
	if utf8.RuneCountInString(text) <= n {
		return text
	}
	return string([]rune(text)[:n]) + "..."
}
