package logs_test

import (
	"testing"

	"vcompress/internal/logs"
)

const sampleLine = `{"ts":"2026-10-19T10:00:00Z","level":"warn","msg":"job failed","component":"scheduler","job_id":"3f2a9c1e-aaaa-bbbb","run_id":"run-1","input":"/v/clip.mp4","event_type":"job_failed","worker":1}`

func TestParseEntry(t *testing.T) {
	e, ok := logs.ParseEntry(sampleLine)
	if !ok {
		t.Fatal("expected JSON line to parse")
	}
	if e.Level != "warn" || e.Message != "job failed" || e.Component != "scheduler" || e.RunID != "run-1" {
		t.Fatalf("unexpected entry %+v", e)
	}
	if _, ok := e.Fields["job_id"]; ok {
		t.Fatal("reserved keys should not be repeated in Fields")
	}
	want := "2026-10-19T10:00:00Z WARN scheduler: job failed job=3f2a9c1e event_type=job_failed worker=1"
	if got := e.Format(); got != want {
		t.Fatalf("Format() = %q\nwant      %q", got, want)
	}

	if _, ok := logs.ParseEntry("plain text"); ok {
		t.Fatal("non-JSON line should not parse")
	}
}

func TestFilterMatch(t *testing.T) {
	e, _ := logs.ParseEntry(sampleLine)
	tests := []struct {
		name   string
		filter logs.Filter
		want   bool
	}{
		{"empty", logs.Filter{}, true},
		{"job prefix", logs.Filter{JobID: "3f2a9c1e"}, true},
		{"other job", logs.Filter{JobID: "ffff"}, false},
		{"run", logs.Filter{RunID: "run-1"}, true},
		{"level at threshold", logs.Filter{MinLevel: "warn"}, true},
		{"level below threshold", logs.Filter{MinLevel: "error"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.filter.Match(e); got != tt.want {
				t.Fatalf("Match = %v, want %v", got, tt.want)
			}
		})
	}
}
