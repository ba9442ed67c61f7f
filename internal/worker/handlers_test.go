package worker

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/suite"

	"github.com/thebtf/promptscope/internal/config"
	"github.com/thebtf/promptscope/pkg/models"
)

// WorkerSuite exercises the HTTP surface against a synthetic log tree.
type WorkerSuite struct {
	suite.Suite
	svc *Service
}

func (s *WorkerSuite) SetupTest() {
	tempDir := s.T().TempDir()

	settings := config.Settings{
		Port:        config.DefaultPort,
		Days:        config.DefaultDays,
		HistoryFile: filepath.Join(tempDir, "history.jsonl"),
		ProjectsDir: filepath.Join(tempDir, "projects"),
	}

	now := time.Now().UTC()
	lines := ""
	// A run of short prompts in one session plus one healthy prompt.
	for i := 0; i < 4; i++ {
		lines += fmt.Sprintf(
			`{"timestamp": %d, "project": "/home/alpha", "display": "tweak part %d", "sessionId": "s1"}`,
			now.Add(time.Duration(i-30)*time.Minute).UnixMilli(), i) + "\n"
	}
	lines += fmt.Sprintf(
		`{"timestamp": %d, "project": "/home/alpha", "display": "Please implement a function that parses the access log and returns structured records", "sessionId": "s1"}`,
		now.Add(-20*time.Minute).UnixMilli()) + "\n"
	s.Require().NoError(os.WriteFile(settings.HistoryFile, []byte(lines), 0o644))
	s.Require().NoError(os.MkdirAll(settings.ProjectsDir, 0o755))

	s.svc = NewService("test", settings, config.DefaultAnalysis())
}

func TestWorkerSuite(t *testing.T) {
	suite.Run(t, new(WorkerSuite))
}

func (s *WorkerSuite) get(path string) (*httptest.ResponseRecorder, map[string]any) {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	s.svc.Router().ServeHTTP(rec, req)

	var body map[string]any
	if rec.Header().Get("Content-Type") == "application/json" && rec.Body.Len() > 0 {
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &body))
	}
	return rec, body
}

func (s *WorkerSuite) TestStatus() {
	rec, body := s.get("/api/status")

	s.Equal(http.StatusOK, rec.Code)
	s.Equal("promptscope", body["service"])
	s.Equal("test", body["version"])
	s.Equal(true, body["history_exists"])
}

func (s *WorkerSuite) TestAntipatterns() {
	rec, body := s.get("/api/antipatterns")

	s.Equal(http.StatusOK, rec.Code)
	s.Greater(body["total"].(float64), 0.0)

	byType := body["by_type"].(map[string]any)
	s.Contains(byType, string(models.FragmentedInput))

	items := body["items"].([]any)
	s.NotEmpty(items)
}

func (s *WorkerSuite) TestAntipatternsSeverityFilter() {
	_, unfiltered := s.get("/api/antipatterns")
	_, filtered := s.get("/api/antipatterns?severity=medium")

	s.LessOrEqual(filtered["total"].(float64), unfiltered["total"].(float64))

	for _, item := range filtered["items"].([]any) {
		s.Equal("medium", item.(map[string]any)["severity"])
	}
}

func (s *WorkerSuite) TestAntipatternsPagination() {
	_, all := s.get("/api/antipatterns")
	total := int(all["total"].(float64))
	s.Require().Greater(total, 1)

	_, page := s.get("/api/antipatterns?limit=1&offset=1")
	s.Len(page["items"].([]any), 1)
	s.Equal(float64(total), page["total"].(float64))
}

func (s *WorkerSuite) TestAntipatternsValidation() {
	cases := []string{
		"/api/antipatterns?days=0",
		"/api/antipatterns?days=91",
		"/api/antipatterns?days=soon",
		"/api/antipatterns?limit=0",
		"/api/antipatterns?limit=201",
		"/api/antipatterns?offset=-1",
		"/api/antipatterns?severity=serious",
		"/api/antipatterns?type=bogus",
		"/api/prompts/good?min_score=101",
	}
	for _, path := range cases {
		rec, body := s.get(path)
		s.Equal(http.StatusBadRequest, rec.Code, path)
		s.Contains(body, "error", path)
	}
}

func (s *WorkerSuite) TestAntipatternSummary() {
	rec, body := s.get("/api/antipatterns/summary")

	s.Equal(http.StatusOK, rec.Code)
	s.Greater(body["total"].(float64), 0.0)
	s.NotEmpty(body["most_common"].([]any))
}

func (s *WorkerSuite) TestHealthReport() {
	rec, body := s.get("/api/health/report")

	s.Equal(http.StatusOK, rec.Code)
	s.NotEmpty(body["grade"])
	s.EqualValues(5, body["total_prompts_analyzed"])
}

func (s *WorkerSuite) TestGoodPrompts() {
	rec, body := s.get("/api/prompts/good?min_score=0")

	s.Equal(http.StatusOK, rec.Code)
	s.Contains(body, "prompts")
	summary := body["summary"].(map[string]any)
	s.Greater(summary["total_analyzed"].(float64), 0.0)
}

func (s *WorkerSuite) TestStatisticsOverview() {
	rec, body := s.get("/api/statistics/overview")

	s.Equal(http.StatusOK, rec.Code)
	s.EqualValues(config.DefaultDays, body["period_days"])
	s.EqualValues(5, body["prompts_count"])
}

func (s *WorkerSuite) TestStatisticsProjects() {
	rec, body := s.get("/api/statistics/projects")

	s.Equal(http.StatusOK, rec.Code)
	s.Contains(body, "projects")
}

func (s *WorkerSuite) TestUnknownRoute() {
	rec, _ := s.get("/api/nope")
	s.Equal(http.StatusNotFound, rec.Code)
}
