package logs

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"
)

// Entry is one record from the JSON run log.
type Entry struct {
	Time      string
	Level     string
	Message   string
	Component string
	JobID     string
	RunID     string
	Input     string
	Fields    map[string]any
}

var reservedKeys = map[string]struct{}{
	"ts": {}, "level": {}, "msg": {}, "source": {},
	"component": {}, "job_id": {}, "run_id": {}, "input": {},
}

// ParseEntry decodes a JSON log line. ok is false for anything else.
func ParseEntry(line string) (Entry, bool) {
	var raw map[string]any
	if err := json.Unmarshal([]byte(line), &raw); err != nil {
		return Entry{}, false
	}
	e := Entry{
		Time:      stringField(raw, "ts"),
		Level:     strings.ToLower(stringField(raw, "level")),
		Message:   stringField(raw, "msg"),
		Component: stringField(raw, "component"),
		JobID:     stringField(raw, "job_id"),
		RunID:     stringField(raw, "run_id"),
		Input:     stringField(raw, "input"),
		Fields:    make(map[string]any),
	}
	for k, v := range raw {
		if _, skip := reservedKeys[k]; !skip {
			e.Fields[k] = v
		}
	}
	return e, true
}

// Filter selects entries. Zero values match everything.
type Filter struct {
	JobID    string
	RunID    string
	MinLevel string
}

// Match reports whether e passes the filter. Job IDs match by prefix so the
// short form shown on the console works.
func (f Filter) Match(e Entry) bool {
	if f.JobID != "" && !strings.HasPrefix(e.JobID, f.JobID) {
		return false
	}
	if f.RunID != "" && !strings.HasPrefix(e.RunID, f.RunID) {
		return false
	}
	if f.MinLevel != "" && levelRank(e.Level) < levelRank(f.MinLevel) {
		return false
	}
	return true
}

// Format renders e on one line: "ts LEVEL component: msg key=value ...".
func (e Entry) Format() string {
	var b strings.Builder
	b.WriteString(e.Time)
	b.WriteByte(' ')
	b.WriteString(strings.ToUpper(e.Level))
	b.WriteByte(' ')
	if e.Component != "" {
		b.WriteString(e.Component)
		b.WriteString(": ")
	}
	b.WriteString(e.Message)
	if e.JobID != "" {
		fmt.Fprintf(&b, " job=%s", shortID(e.JobID))
	}
	for _, key := range slices.Sorted(maps.Keys(e.Fields)) {
		fmt.Fprintf(&b, " %s=%v", key, e.Fields[key])
	}
	return b.String()
}

func levelRank(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func stringField(raw map[string]any, key string) string {
	if v, ok := raw[key].(string); ok {
		return v
	}
	return ""
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
