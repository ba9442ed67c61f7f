package worker

import (
	"net/http"
	"os"
	"sort"
	"time"

	"github.com/thebtf/promptscope/internal/ingest"
	"github.com/thebtf/promptscope/internal/pipeline"
	"github.com/thebtf/promptscope/internal/session"
	"github.com/thebtf/promptscope/pkg/models"
)

// handleStatus reports service identity and data source availability.
func (s *Service) handleStatus(w http.ResponseWriter, r *http.Request) {
	paths := s.settings.SourcePaths()
	writeJSON(w, http.StatusOK, map[string]any{
		"service":          "promptscope",
		"version":          s.version,
		"uptime_seconds":   int64(time.Since(s.startTime).Seconds()),
		"history_file":     paths.HistoryFile,
		"history_exists":   fileExists(paths.HistoryFile),
		"projects_dir":     paths.ProjectsDir,
		"projects_exists":  fileExists(paths.ProjectsDir),
		"sse_client_count": s.broadcaster.ClientCount(),
	})
}

// handleAntipatterns runs the pipeline and returns filtered, paginated
// matches with aggregate counts over the filtered set.
func (s *Service) handleAntipatterns(w http.ResponseWriter, r *http.Request) {
	days, err := intParam(r, "days", s.settings.Days, minDays, maxDays)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	limit, err := intParam(r, "limit", defaultLimit, minLimit, maxLimit)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	offset, err := intParam(r, "offset", 0, 0, 1<<30)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	severity, err := severityParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	types, err := typeParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	result, err := s.run(r, days)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	matches := filterMatches(result.Matches, severity, types)
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Timestamp.After(matches[j].Timestamp)
	})

	byType := make(map[string]int)
	bySeverity := make(map[string]int)
	for _, m := range matches {
		byType[string(m.Type)]++
		bySeverity[string(m.Severity)]++
	}

	total := len(matches)
	page := paginate(matches, offset, limit)

	writeJSON(w, http.StatusOK, map[string]any{
		"total":       total,
		"items":       page,
		"by_type":     byType,
		"by_severity": bySeverity,
	})
}

// handleAntipatternSummary returns aggregate match counts and the five
// most common types.
func (s *Service) handleAntipatternSummary(w http.ResponseWriter, r *http.Request) {
	days, err := intParam(r, "days", s.settings.Days, minDays, maxDays)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	result, err := s.run(r, days)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	byType := make(map[string]int)
	bySeverity := make(map[string]int)
	for _, m := range result.Matches {
		byType[string(m.Type)]++
		bySeverity[string(m.Severity)]++
	}

	type typeCount struct {
		Type  string `json:"type"`
		Count int    `json:"count"`
	}
	common := make([]typeCount, 0, len(byType))
	for name, count := range byType {
		common = append(common, typeCount{Type: name, Count: count})
	}
	sort.Slice(common, func(i, j int) bool {
		if common[i].Count != common[j].Count {
			return common[i].Count > common[j].Count
		}
		return common[i].Type < common[j].Type
	})
	if len(common) > 5 {
		common = common[:5]
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"total":       len(result.Matches),
		"by_type":     byType,
		"by_severity": bySeverity,
		"most_common": common,
	})
}

// handleHealthReport returns the weighted health report for the window.
func (s *Service) handleHealthReport(w http.ResponseWriter, r *http.Request) {
	days, err := intParam(r, "days", s.settings.Days, minDays, maxDays)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	result, err := s.run(r, days)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	writeJSON(w, http.StatusOK, result.Report)
}

// handleGoodPrompts returns exemplar prompts above min_score plus the
// quality summary over the eligible set.
func (s *Service) handleGoodPrompts(w http.ResponseWriter, r *http.Request) {
	days, err := intParam(r, "days", s.settings.Days, minDays, maxDays)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	limit, err := intParam(r, "limit", defaultLimit, minLimit, maxLimit)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	minScore, err := floatParam(r, "min_score", s.analysis.Quality.GoodScore, 0, 100)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	prompts, err := s.readPrompts(r, days)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	exemplars := s.quality.Exemplars(prompts, minScore, limit)
	writeJSON(w, http.StatusOK, map[string]any{
		"prompts": exemplars,
		"summary": s.quality.Summary(prompts),
	})
}

// handleStatisticsOverview returns the aggregate usage statistics.
func (s *Service) handleStatisticsOverview(w http.ResponseWriter, r *http.Request) {
	days, err := intParam(r, "days", s.settings.Days, minDays, maxDays)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	result, err := s.run(r, days)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	writeJSON(w, http.StatusOK, s.stats.Overview(result.Prompts, result.Sessions, days))
}

// handleStatisticsProjects returns per-project activity rows.
func (s *Service) handleStatisticsProjects(w http.ResponseWriter, r *http.Request) {
	days, err := intParam(r, "days", s.settings.Days, minDays, maxDays)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	logs, err := s.reader.ReadSessionLogs(r.Context(), s.query(r, days))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"projects": s.stats.ProjectStats(session.Assemble(logs)),
	})
}

func (s *Service) query(r *http.Request, days int) ingest.Query {
	return ingest.Query{
		Project: r.URL.Query().Get("project"),
		Days:    days,
	}
}

func (s *Service) run(r *http.Request, days int) (*pipeline.Result, error) {
	result, err := pipeline.Run(r.Context(), s.reader, s.analysis, s.query(r, days))
	if err != nil {
		return nil, err
	}
	count(r.Context(), s.metrics.prompts, int64(len(result.Prompts)))
	count(r.Context(), s.metrics.matches, int64(len(result.Matches)))
	return result, nil
}

func (s *Service) readPrompts(r *http.Request, days int) ([]models.Prompt, error) {
	prompts, err := s.reader.ReadPrompts(r.Context(), s.query(r, days))
	if err != nil {
		return nil, err
	}
	count(r.Context(), s.metrics.prompts, int64(len(prompts)))
	return prompts, nil
}

func filterMatches(matches []models.AntipatternMatch, severity models.Severity, types []models.AntipatternType) []models.AntipatternMatch {
	out := make([]models.AntipatternMatch, 0, len(matches))
	for _, m := range matches {
		if severity != "" && m.Severity != severity {
			continue
		}
		if len(types) > 0 && !containsType(types, m.Type) {
			continue
		}
		out = append(out, m)
	}
	return out
}

func containsType(types []models.AntipatternType, t models.AntipatternType) bool {
	for _, candidate := range types {
		if candidate == t {
			return true
		}
	}
	return false
}

func paginate(matches []models.AntipatternMatch, offset, limit int) []models.AntipatternMatch {
	if offset >= len(matches) {
		return []models.AntipatternMatch{}
	}
	end := offset + limit
	if end > len(matches) {
		end = len(matches)
	}
	return matches[offset:end]
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
