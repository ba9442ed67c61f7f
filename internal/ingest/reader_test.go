package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/thebtf/promptscope/internal/config"
	"github.com/thebtf/promptscope/pkg/models"
)

// ReaderSuite exercises ingestion over a synthetic log tree.
type ReaderSuite struct {
	suite.Suite
	tempDir string
	reader  *Reader
	now     time.Time
}

func (s *ReaderSuite) SetupTest() {
	s.tempDir = s.T().TempDir()
	s.now = time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC)

	paths := config.Paths{
		HistoryFile: filepath.Join(s.tempDir, "history.jsonl"),
		ProjectsDir: filepath.Join(s.tempDir, "projects"),
	}
	s.reader = NewReader(paths, config.DefaultAnalysis().Ingest)
	s.reader.now = func() time.Time { return s.now }

	s.writeHistory()
	s.writeTranscript()
}

func TestReaderSuite(t *testing.T) {
	suite.Run(t, new(ReaderSuite))
}

func (s *ReaderSuite) millis(age time.Duration) int64 {
	return s.now.Add(-age).UnixMilli()
}

func (s *ReaderSuite) iso(age time.Duration) string {
	return s.now.Add(-age).Format(time.RFC3339)
}

func (s *ReaderSuite) writeHistory() {
	keep := `{"timestamp": %d, "project": "/home/alpha", "display": "Please implement a function to parse the log files", "sessionId": "h1"}`
	lines := []string{
		fmt.Sprintf(keep, s.millis(time.Hour)),
		fmt.Sprintf(keep, s.millis(time.Hour)), // exact duplicate, must collapse
		fmt.Sprintf(`{"timestamp": %d, "project": "/home/alpha", "display": "too old to count"}`, s.millis(30*24*time.Hour)),
		fmt.Sprintf(`{"timestamp": %d, "project": "/home/alpha", "display": ""}`, s.millis(2*time.Hour)),
		fmt.Sprintf(`{"timestamp": %d, "project": "/home/alpha", "display": "<command-name>status</command-name>"}`, s.millis(3*time.Hour)),
		"this is not json",
		fmt.Sprintf(`{"timestamp": %d, "project": "/home/beta", "display": "review the code in parser.go please", "sessionId": "h2"}`, s.millis(4*time.Hour)),
	}

	content := ""
	for _, l := range lines {
		content += l + "\n"
	}
	s.Require().NoError(os.WriteFile(filepath.Join(s.tempDir, "history.jsonl"), []byte(content), 0o644))
}

func (s *ReaderSuite) writeTranscript() {
	dir := filepath.Join(s.tempDir, "projects", "-home-beta")
	s.Require().NoError(os.MkdirAll(dir, 0o755))

	lines := []string{
		fmt.Sprintf(`{"type":"user","timestamp":"%s","message":{"content":"Fix the crash bug in the log parser"}}`, s.iso(30*time.Minute)),
		fmt.Sprintf(`{"type":"user","timestamp":"%s","message":{"content":[{"type":"text","text":"here is a screenshot"},{"type":"image"},{"type":"text","text":"explain the error"}]}}`, s.iso(20*time.Minute)),
		fmt.Sprintf(`{"type":"user","timestamp":"%s","message":{"content":"think harder about the cache layer design"}}`, s.iso(10*time.Minute)),
		fmt.Sprintf(`{"type":"user","isMeta":true,"timestamp":"%s","message":{"content":"meta noise"}}`, s.iso(9*time.Minute)),
		`{"type":"assistant","message":{"usage":{"input_tokens":120,"output_tokens":340}}}`,
		`{"type":"assistant","message":{"usage":{"input_tokens":80,"output_tokens":60}}}`,
	}

	content := ""
	for _, l := range lines {
		content += l + "\n"
	}
	s.Require().NoError(os.WriteFile(filepath.Join(dir, "sess-b1.jsonl"), []byte(content), 0o644))
}

func (s *ReaderSuite) TestReadPromptsMergesAndFilters() {
	prompts, err := s.reader.ReadPrompts(context.Background(), Query{})
	s.Require().NoError(err)

	// 2 surviving history prompts + 3 transcript prompts.
	s.Len(prompts, 5)

	for i := 1; i < len(prompts); i++ {
		s.False(prompts[i-1].Timestamp.Before(prompts[i].Timestamp),
			"prompts must be sorted non-increasing by timestamp")
	}

	for _, p := range prompts {
		s.NotEmpty(p.Text)
		s.Equal(len([]rune(p.Text)), p.CharCount)
	}
}

func (s *ReaderSuite) TestReadPromptsDeduplicates() {
	prompts, err := s.reader.ReadPrompts(context.Background(), Query{})
	s.Require().NoError(err)

	count := 0
	for _, p := range prompts {
		if p.Text == "Please implement a function to parse the log files" {
			count++
		}
	}
	s.Equal(1, count)
}

func (s *ReaderSuite) TestReadPromptsProjectFilter() {
	prompts, err := s.reader.ReadPrompts(context.Background(), Query{Project: "Beta"})
	s.Require().NoError(err)

	s.Len(prompts, 4)
	for _, p := range prompts {
		s.Equal("Beta", p.Project)
	}
}

func (s *ReaderSuite) TestReadPromptsLimit() {
	prompts, err := s.reader.ReadPrompts(context.Background(), Query{Limit: 2})
	s.Require().NoError(err)

	s.Len(prompts, 2)
}

func (s *ReaderSuite) TestReadPromptsContentFlags() {
	prompts, err := s.reader.ReadPrompts(context.Background(), Query{})
	s.Require().NoError(err)

	var imaged, thinking *models.Prompt
	for i := range prompts {
		if prompts[i].HasImage {
			imaged = &prompts[i]
		}
		if prompts[i].HasThinkingTrigger {
			thinking = &prompts[i]
		}
	}

	s.Require().NotNil(imaged)
	s.Equal("here is a screenshot\nexplain the error", imaged.Text)

	s.Require().NotNil(thinking)
	s.Contains(thinking.ThinkingTriggers, "think harder")
}

func (s *ReaderSuite) TestReadSessionLogs() {
	logs, err := s.reader.ReadSessionLogs(context.Background(), Query{})
	s.Require().NoError(err)

	s.Require().Len(logs, 1)
	sl := logs[0]
	s.Equal("sess-b1", sl.SessionID)
	s.Equal("Beta", sl.Project)
	s.Len(sl.Prompts, 3)
	s.Equal(int64(200), sl.InputTokens)
	s.Equal(int64(400), sl.OutputTokens)
}

func (s *ReaderSuite) TestReadReturnsPromptsAndLogsTogether() {
	prompts, logs, err := s.reader.Read(context.Background(), Query{})
	s.Require().NoError(err)

	wantPrompts, err := s.reader.ReadPrompts(context.Background(), Query{})
	s.Require().NoError(err)
	s.Equal(wantPrompts, prompts)

	wantLogs, err := s.reader.ReadSessionLogs(context.Background(), Query{})
	s.Require().NoError(err)
	s.Equal(wantLogs, logs)
}

func (s *ReaderSuite) TestMissingSourcesAreNotFatal() {
	empty := NewReader(config.Paths{
		HistoryFile: filepath.Join(s.tempDir, "absent.jsonl"),
		ProjectsDir: filepath.Join(s.tempDir, "no-such-dir"),
	}, config.DefaultAnalysis().Ingest)

	prompts, err := empty.ReadPrompts(context.Background(), Query{})
	s.NoError(err)
	s.Empty(prompts)
}

func (s *ReaderSuite) TestClassify() {
	s.Contains(s.reader.classify("Please implement a function to handle retries"),
		models.CategoryCodeGeneration)
	s.Contains(s.reader.classify("为什么这个测试失败"), models.CategoryChineseLanguage)
	s.Equal([]models.Category{models.CategoryGeneral}, s.reader.classify("zzz qqq"))
}
