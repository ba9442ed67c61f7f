package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/thebtf/promptscope/internal/config"
	"github.com/thebtf/promptscope/internal/ingest"
)

// PipelineSuite runs the whole pipeline over a synthetic log tree.
type PipelineSuite struct {
	suite.Suite
	reader   *ingest.Reader
	analysis config.Analysis
}

func (s *PipelineSuite) SetupTest() {
	tempDir := s.T().TempDir()
	s.analysis = config.DefaultAnalysis()

	paths := config.Paths{
		HistoryFile: filepath.Join(tempDir, "history.jsonl"),
		ProjectsDir: filepath.Join(tempDir, "projects"),
	}
	s.reader = ingest.NewReader(paths, s.analysis.Ingest)

	dir := filepath.Join(paths.ProjectsDir, "-home-alpha")
	s.Require().NoError(os.MkdirAll(dir, 0o755))

	now := time.Now().UTC()
	content := ""
	for i := 0; i < 4; i++ {
		content += fmt.Sprintf(
			`{"type":"user","timestamp":"%s","message":{"content":"tweak part %d"}}`,
			now.Add(time.Duration(i-10)*time.Minute).Format(time.RFC3339), i) + "\n"
	}
	content += `{"type":"assistant","message":{"usage":{"input_tokens":10,"output_tokens":20}}}` + "\n"
	s.Require().NoError(os.WriteFile(filepath.Join(dir, "sess-a.jsonl"), []byte(content), 0o644))
}

func TestPipelineSuite(t *testing.T) {
	suite.Run(t, new(PipelineSuite))
}

func (s *PipelineSuite) TestRun() {
	result, err := Run(context.Background(), s.reader, s.analysis, ingest.Query{Days: 7})
	s.Require().NoError(err)

	s.Len(result.Prompts, 4)
	s.Require().Len(result.Sessions, 1)
	s.Equal(int64(30), result.Sessions[0].TotalTokens())

	// Short fragmented prompts must surface both as matches and in the report.
	s.NotEmpty(result.Matches)
	s.Equal(4, result.Report.TotalPromptsAnalyzed)
	s.NotEmpty(result.Report.Grade)
}

func (s *PipelineSuite) TestRunIsIdempotent() {
	first, err := Run(context.Background(), s.reader, s.analysis, ingest.Query{Days: 7})
	s.Require().NoError(err)
	second, err := Run(context.Background(), s.reader, s.analysis, ingest.Query{Days: 7})
	s.Require().NoError(err)

	s.Equal(first.Prompts, second.Prompts)
	s.Equal(first.Sessions, second.Sessions)
	s.Equal(first.Matches, second.Matches)
	s.Equal(first.Report.OverallScore, second.Report.OverallScore)
	s.Equal(first.Report.Grade, second.Report.Grade)
}

func (s *PipelineSuite) TestRunWithNoData() {
	tempDir := s.T().TempDir()
	empty := ingest.NewReader(config.Paths{
		HistoryFile: filepath.Join(tempDir, "absent.jsonl"),
		ProjectsDir: filepath.Join(tempDir, "absent"),
	}, s.analysis.Ingest)

	result, err := Run(context.Background(), empty, s.analysis, ingest.Query{Days: 7})
	s.Require().NoError(err)

	s.Empty(result.Prompts)
	s.Empty(result.Sessions)
	s.Empty(result.Matches)
	s.Equal("F", result.Report.Grade)
	s.Zero(result.Report.OverallScore)
}
