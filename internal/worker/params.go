package worker

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/thebtf/promptscope/pkg/models"
)

// Query parameter bounds. The analysis core trusts its inputs; range and
// enum checks live at this boundary.
const (
	minDays      = 1
	maxDays      = 90
	minLimit     = 1
	maxLimit     = 200
	defaultLimit = 50
)

type paramError struct {
	name   string
	reason string
}

func (e *paramError) Error() string {
	return fmt.Sprintf("invalid %q parameter: %s", e.name, e.reason)
}

// intParam parses an integer query parameter with a default and an
// inclusive range.
func intParam(r *http.Request, name string, fallback, min, max int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &paramError{name: name, reason: "must be an integer"}
	}
	if value < min || value > max {
		return 0, &paramError{name: name, reason: fmt.Sprintf("must be between %d and %d", min, max)}
	}
	return value, nil
}

func floatParam(r *http.Request, name string, fallback, min, max float64) (float64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, &paramError{name: name, reason: "must be a number"}
	}
	if value < min || value > max {
		return 0, &paramError{name: name, reason: fmt.Sprintf("must be between %g and %g", min, max)}
	}
	return value, nil
}

func severityParam(r *http.Request) (models.Severity, error) {
	raw := r.URL.Query().Get("severity")
	if raw == "" {
		return "", nil
	}
	severity := models.Severity(raw)
	if !models.ValidSeverity(severity) {
		return "", &paramError{name: "severity", reason: "unknown severity"}
	}
	return severity, nil
}

func typeParams(r *http.Request) ([]models.AntipatternType, error) {
	raw := r.URL.Query()["type"]
	types := make([]models.AntipatternType, 0, len(raw))
	for _, value := range raw {
		t := models.AntipatternType(value)
		if !models.ValidAntipatternType(t) {
			return nil, &paramError{name: "type", reason: "unknown anti-pattern type"}
		}
		types = append(types, t)
	}
	return types, nil
}
