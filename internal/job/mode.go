package job

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
)

// Mode selects how a job's encode parameters are derived. It is either
// Quality or SizeTarget.
type Mode interface {
	// Name is the short label used in logs and tables.
	Name() string
	// Describe renders the mode with its settings, e.g. "crf 30 (slow)".
	Describe() string
	Validate() error
	sealed()
}

// Quality encodes at a constant rate factor.
type Quality struct {
	CRF    int
	Preset string
}

// SizeTarget encodes toward a total output size in bytes.
type SizeTarget struct {
	TargetBytes int64
}

func (Quality) Name() string    { return "quality" }
func (SizeTarget) Name() string { return "size" }

func (q Quality) Describe() string {
	return fmt.Sprintf("crf %d (%s)", q.CRF, q.Preset)
}

func (s SizeTarget) Describe() string {
	return "target " + humanize.IBytes(uint64(max(s.TargetBytes, 0)))
}

func (q Quality) Validate() error {
	if q.CRF < 0 || q.CRF > 51 {
		return fmt.Errorf("quality mode: crf %d outside 0-51", q.CRF)
	}
	if strings.TrimSpace(q.Preset) == "" {
		return fmt.Errorf("quality mode: preset is required")
	}
	return nil
}

func (s SizeTarget) Validate() error {
	if s.TargetBytes <= 0 {
		return fmt.Errorf("size mode: target %d bytes must be positive", s.TargetBytes)
	}
	return nil
}

func (Quality) sealed()    {}
func (SizeTarget) sealed() {}
