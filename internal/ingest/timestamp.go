package ingest

import (
	"time"

	json "github.com/goccy/go-json"
)

// isoLayouts are tried in order for string timestamps. Offset-less shapes
// are assumed UTC.
var isoLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
}

// parseTimestamp accepts epoch milliseconds (integer or float) and
// ISO-8601 strings (trailing Z, explicit offset, or no offset assumed
// UTC). Any other shape yields ok=false; callers drop the record.
func parseTimestamp(raw json.RawMessage) (time.Time, bool) {
	if len(raw) == 0 {
		return time.Time{}, false
	}

	var millis float64
	if err := json.Unmarshal(raw, &millis); err == nil {
		if millis <= 0 {
			return time.Time{}, false
		}
		return time.UnixMilli(int64(millis)).UTC(), true
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil || s == "" {
		return time.Time{}, false
	}
	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
