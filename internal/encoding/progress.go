package encoding

import (
	"bufio"
	"io"
	"strconv"
	"strings"
)

const (
	progressTimeKey = "out_time_ms"
	progressEndLine = "progress=end"
)

// RelayProgress reads ffmpeg `-progress` key=value lines from r and calls fn
// with the encoded position in seconds for every numeric out_time_ms value.
// Despite its name ffmpeg reports out_time_ms in microseconds. Reading stops
// at the first progress=end line or EOF; callers drain whatever remains.
func RelayProgress(r io.Reader, fn func(seconds float64)) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(line, progressEndLine) {
			return nil
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok || key != progressTimeKey {
			continue
		}
		micros, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
		if err != nil {
			// N/A before the first frame.
			continue
		}
		if fn != nil {
			fn(float64(micros) / 1_000_000)
		}
	}
	return scanner.Err()
}
