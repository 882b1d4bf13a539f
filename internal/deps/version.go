package deps

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// Version runs `<command> -version` and returns the version token from the
// banner, e.g. "6.1.1" from "ffmpeg version 6.1.1 Copyright ...".
func Version(ctx context.Context, command string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	out, err := exec.CommandContext(ctx, command, "-version").Output()
	if err != nil {
		return "", fmt.Errorf("%s -version: %w", command, err)
	}
	return parseVersion(out), nil
}

func parseVersion(out []byte) string {
	scanner := bufio.NewScanner(bytes.NewReader(out))
	if !scanner.Scan() {
		return ""
	}
	fields := strings.Fields(scanner.Text())
	for i, field := range fields {
		if field == "version" && i+1 < len(fields) {
			return fields[i+1]
		}
	}
	return ""
}
