package logs

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"
)

const defaultPoll = 250 * time.Millisecond

// Reader reads a log file by byte offset so callers can resume where they
// stopped. A missing file reads as empty.
type Reader struct {
	Path string
	Poll time.Duration
}

// Last returns up to n trailing lines and the offset of the end of file.
func (r *Reader) Last(n int) ([]string, int64, error) {
	file, err := r.open()
	if err != nil || file == nil {
		return nil, 0, err
	}
	defer file.Close()

	if n <= 0 {
		end, err := file.Seek(0, io.SeekEnd)
		if err != nil {
			return nil, 0, fmt.Errorf("seek log file: %w", err)
		}
		return nil, end, nil
	}

	ring := make([]string, n)
	count, next := 0, 0
	scanner := newScanner(file)
	for scanner.Scan() {
		ring[next] = scanner.Text()
		next = (next + 1) % n
		count = min(count+1, n)
	}
	if err := scanner.Err(); err != nil {
		return nil, 0, fmt.Errorf("read log file: %w", err)
	}
	end, err := file.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, 0, fmt.Errorf("determine log offset: %w", err)
	}

	lines := make([]string, count)
	start := 0
	if count == n {
		start = next
	}
	for i := range count {
		lines[i] = ring[(start+i)%n]
	}
	return lines, end, nil
}

// From returns complete lines written after offset and the new offset. An
// offset past the end of file (the log was truncated) restarts from zero.
func (r *Reader) From(offset int64) ([]string, int64, error) {
	file, err := r.open()
	if err != nil || file == nil {
		return nil, 0, err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, 0, fmt.Errorf("stat log file: %w", err)
	}
	if offset < 0 || offset > info.Size() {
		offset = 0
	}
	if _, err := file.Seek(offset, io.SeekStart); err != nil {
		return nil, 0, fmt.Errorf("seek log file: %w", err)
	}

	var lines []string
	br := bufio.NewReader(file)
	for {
		line, err := br.ReadString('\n')
		if err != nil {
			// A partial trailing line is left for the next read.
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, 0, fmt.Errorf("read log file: %w", err)
		}
		offset += int64(len(line))
		lines = append(lines, trimNewline(line))
	}
	return lines, offset, nil
}

// Follow polls for lines after offset and passes each to fn until ctx is
// done. It returns nil on cancellation.
func (r *Reader) Follow(ctx context.Context, offset int64, fn func(string)) error {
	poll := r.Poll
	if poll <= 0 {
		poll = defaultPoll
	}
	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	for {
		lines, next, err := r.From(offset)
		if err != nil {
			return err
		}
		offset = next
		for _, line := range lines {
			fn(line)
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (r *Reader) open() (*os.File, error) {
	file, err := os.Open(r.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log file: %w", err)
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("stat log file: %w", err)
	}
	if info.IsDir() {
		file.Close()
		return nil, fmt.Errorf("log path %q is a directory", r.Path)
	}
	return file, nil
}

func newScanner(r io.Reader) *bufio.Scanner {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return scanner
}

func trimNewline(s string) string {
	s = s[:len(s)-1]
	if n := len(s); n > 0 && s[n-1] == '\r' {
		s = s[:n-1]
	}
	return s
}
