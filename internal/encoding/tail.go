package encoding

import (
	"bytes"
	"strings"
	"sync"
)

// tailWriter keeps the last max lines written to it.
type tailWriter struct {
	mu      sync.Mutex
	max     int
	lines   []string
	partial []byte
}

func newTailWriter(max int) *tailWriter {
	if max <= 0 {
		max = 20
	}
	return &tailWriter{max: max}
}

func (w *tailWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	data := append(w.partial, p...)
	for {
		idx := bytes.IndexAny(data, "\r\n")
		if idx < 0 {
			break
		}
		w.push(string(data[:idx]))
		data = data[idx+1:]
	}
	w.partial = append([]byte(nil), data...)
	return len(p), nil
}

func (w *tailWriter) push(line string) {
	line = strings.TrimSpace(line)
	if line == "" {
		return
	}
	w.lines = append(w.lines, line)
	if over := len(w.lines) - w.max; over > 0 {
		w.lines = append(w.lines[:0], w.lines[over:]...)
	}
}

// Lines returns the retained lines, including an unterminated final line.
func (w *tailWriter) Lines() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := append([]string(nil), w.lines...)
	if last := strings.TrimSpace(string(w.partial)); last != "" {
		out = append(out, last)
		if len(out) > w.max {
			out = out[len(out)-w.max:]
		}
	}
	return out
}
