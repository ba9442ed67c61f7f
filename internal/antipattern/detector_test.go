package antipattern

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/thebtf/promptscope/internal/config"
	"github.com/thebtf/promptscope/pkg/models"
)

// DetectorSuite exercises the full rule battery.
type DetectorSuite struct {
	suite.Suite
	detector *Detector
	base     time.Time
}

func (s *DetectorSuite) SetupTest() {
	s.detector = NewDetector(config.DefaultAnalysis().Detector)
	s.base = time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)
}

func TestDetectorSuite(t *testing.T) {
	suite.Run(t, new(DetectorSuite))
}

// mk builds a prompt i minutes into the session.
func (s *DetectorSuite) mk(text, sessionID string, i int) models.Prompt {
	return models.Prompt{
		Text:      text,
		Timestamp: s.base.Add(time.Duration(i) * time.Minute),
		Project:   "Alpha",
		SessionID: sessionID,
		CharCount: len([]rune(text)),
	}
}

func (s *DetectorSuite) ofType(matches []models.AntipatternMatch, t models.AntipatternType) []models.AntipatternMatch {
	var out []models.AntipatternMatch
	for _, m := range matches {
		if m.Type == t {
			out = append(out, m)
		}
	}
	return out
}

func (s *DetectorSuite) TestConfirmationDoesNotFireFragmented() {
	prompts := []models.Prompt{
		s.mk("short one", "s", 0),
		s.mk("short two", "s", 1),
		s.mk("ok", "s", 2),
	}

	matches := s.detector.Detect(prompts)
	s.Empty(s.ofType(matches, models.FragmentedInput))
}

func (s *DetectorSuite) TestFragmentedRun() {
	prompts := []models.Prompt{
		s.mk("add a field", "s", 0),
		s.mk("rename it", "s", 1),
		s.mk("now log it", "s", 2),
	}

	matches := s.ofType(s.detector.Detect(prompts), models.FragmentedInput)
	s.Require().Len(matches, 1)
	s.Equal(models.SeverityMedium, matches[0].Severity)
	s.InDelta(0.7, matches[0].Confidence, 1e-9)
	s.Len(matches[0].ID, 12)
}

func (s *DetectorSuite) TestFragmentedRunEscalatesToHigh() {
	var prompts []models.Prompt
	for i := 0; i < 6; i++ {
		prompts = append(prompts, s.mk(fmt.Sprintf("tweak part %d", i), "s", i))
	}

	matches := s.ofType(s.detector.Detect(prompts), models.FragmentedInput)
	s.Require().NotEmpty(matches)

	last := matches[len(matches)-1]
	s.Equal(models.SeverityHigh, last.Severity)
	s.InDelta(0.95, last.Confidence, 1e-9)
}

func (s *DetectorSuite) TestFollowupPhrasing() {
	prompts := []models.Prompt{
		s.mk("Also, we should add retry logic to the network client for transient failures", "s", 0),
	}

	matches := s.ofType(s.detector.Detect(prompts), models.FragmentedInput)
	s.Require().Len(matches, 1)
	s.Equal(models.SeverityLow, matches[0].Severity)
	s.InDelta(0.7, matches[0].Confidence, 1e-9)
}

func (s *DetectorSuite) TestLoneCodeBlockFiresCodeAndLongDump() {
	text := "```\n" + strings.Repeat("x", 3000) + "\n```"
	prompts := []models.Prompt{s.mk(text, "s", 0)}

	matches := s.ofType(s.detector.Detect(prompts), models.UnexplainedDump)
	s.Require().Len(matches, 2)

	severities := map[models.Severity]bool{}
	for _, m := range matches {
		severities[m.Severity] = true
	}
	s.True(severities[models.SeverityHigh], "code-heavy paste")
	s.True(severities[models.SeverityMedium], "long unexplained paste")
}

func (s *DetectorSuite) TestStackTraceWithoutContext() {
	trace := "Traceback (most recent call last):\n" +
		strings.Repeat("  File \"app.py\", line 10, in main\n", 4) +
		"ZeroDivisionError: division by zero"
	text := "```\n" + trace + "\n```"
	prompts := []models.Prompt{s.mk(text, "s", 0)}

	matches := s.ofType(s.detector.Detect(prompts), models.UnexplainedDump)
	s.Require().NotEmpty(matches)

	var critical bool
	for _, m := range matches {
		if m.Severity == models.SeverityCritical {
			critical = true
			s.InDelta(0.9, m.Confidence, 1e-9)
		}
	}
	s.True(critical, "stack trace paste must be critical")
}

func (s *DetectorSuite) TestExplainedPasteDoesNotFire() {
	explanation := "The parser crashes on empty input since the last refactor. " +
		"Expected behavior is returning an empty slice. Code follows:\n"
	text := explanation + "```\n" + strings.Repeat("y", 500) + "\n```"
	prompts := []models.Prompt{s.mk(text, "s", 0)}

	s.Empty(s.ofType(s.detector.Detect(prompts), models.UnexplainedDump))
}

func (s *DetectorSuite) TestVagueVocabulary() {
	prompts := []models.Prompt{
		s.mk("帮我优化一下这个模块的整体结构和性能表现", "s", 0),
	}

	matches := s.ofType(s.detector.Detect(prompts), models.AmbiguousInstruction)
	s.Require().Len(matches, 1)
	s.Equal(models.SeverityMedium, matches[0].Severity)
}

func (s *DetectorSuite) TestShortInstruction() {
	prompts := []models.Prompt{s.mk("fix the build", "s", 0)}

	matches := s.ofType(s.detector.Detect(prompts), models.AmbiguousInstruction)
	s.Require().Len(matches, 1)
	s.Equal(models.SeverityHigh, matches[0].Severity)
	s.InDelta(0.8, matches[0].Confidence, 1e-9)
}

func (s *DetectorSuite) TestQuestionsAreExempt() {
	prompts := []models.Prompt{
		s.mk("can you make it better or something?", "s", 0),
		s.mk("这样可以吗？", "s", 1),
	}

	s.Empty(s.ofType(s.detector.Detect(prompts), models.AmbiguousInstruction))
}

func (s *DetectorSuite) TestNoOverflowAt49() {
	var prompts []models.Prompt
	for i := 0; i < 49; i++ {
		prompts = append(prompts, s.mk(fmt.Sprintf("prompt number %02d", i), "s", i))
	}

	matches := s.detector.Detect(prompts)
	s.Empty(s.ofType(matches, models.ContextOverflow))
	s.NotEmpty(s.ofType(matches, models.FragmentedInput))
}

func (s *DetectorSuite) TestOverflowAtWarnLength() {
	var prompts []models.Prompt
	for i := 0; i < 50; i++ {
		prompts = append(prompts, s.mk(fmt.Sprintf("prompt number %02d", i), "s", i))
	}

	matches := s.ofType(s.detector.Detect(prompts), models.ContextOverflow)
	s.Require().Len(matches, 1)
	s.Equal(models.SeverityHigh, matches[0].Severity)
	s.InDelta(0.85, matches[0].Confidence, 1e-9)
	s.Equal("Session with 50 prompts", matches[0].PromptExcerpt)
}

func (s *DetectorSuite) TestOverflowAtCriticalLength() {
	var prompts []models.Prompt
	for i := 0; i < 100; i++ {
		prompts = append(prompts, s.mk(fmt.Sprintf("prompt number %03d", i), "s", i))
	}

	matches := s.ofType(s.detector.Detect(prompts), models.ContextOverflow)
	s.Require().Len(matches, 1)
	s.Equal(models.SeverityCritical, matches[0].Severity)
	s.InDelta(0.95, matches[0].Confidence, 1e-9)
}

func (s *DetectorSuite) TestEmptySessionIDsShareOneBucket() {
	prompts := []models.Prompt{
		s.mk("tiny", "", 0),
		s.mk("tiny too", "", 1),
		s.mk("and again", "", 2),
	}

	matches := s.ofType(s.detector.Detect(prompts), models.FragmentedInput)
	s.NotEmpty(matches)
}

func (s *DetectorSuite) TestUnassignedPromptsDoNotJoinNamedSessions() {
	// A session literally named "unknown" must not absorb prompts that
	// carry no session id: together they would form a fragmented run,
	// apart they stay below the threshold.
	prompts := []models.Prompt{
		s.mk("tiny", "unknown", 0),
		s.mk("tiny too", "unknown", 1),
		s.mk("and again", "", 2),
	}

	s.Empty(s.ofType(s.detector.Detect(prompts), models.FragmentedInput))
}

func (s *DetectorSuite) TestDetectIsIdempotent() {
	var prompts []models.Prompt
	for i := 0; i < 10; i++ {
		prompts = append(prompts, s.mk(fmt.Sprintf("step %d", i), fmt.Sprintf("s%d", i%3), i))
	}
	prompts = append(prompts, s.mk("帮我看看这个之类的问题要怎么处理比较好", "s0", 20))

	first := s.detector.Detect(prompts)
	second := s.detector.Detect(prompts)
	s.Equal(first, second)
}
