package memory

import (
	"math"
	"os"
	"runtime/debug"
	"strconv"
	"strings"

	"searchable-gallery/internal/logging"
)

// DefaultMemoryRatio is the share of the container limit given to the Go
// heap. The remainder covers cgo SQLite, decoder buffers and stacks.
const DefaultMemoryRatio = 0.85

// Limit sources.
const (
	SourceNone        = "none"
	SourceGOMEMLIMIT  = "GOMEMLIMIT"
	SourceMemoryLimit = "MEMORY_LIMIT"
)

// Limit is a heap limit derived from the environment.
type Limit struct {
	Source string
	// Container is the MEMORY_LIMIT value in bytes, 0 when unset.
	Container int64
	// Heap is the soft limit in bytes, 0 when none applies.
	Heap  int64
	Ratio float64
}

// FromEnv computes the limit from lookup without touching the runtime.
// An explicit GOMEMLIMIT is reported with Heap left at 0; the runtime has
// already parsed it.
func FromEnv(lookup func(string) string) Limit {
	if strings.TrimSpace(lookup("GOMEMLIMIT")) != "" {
		return Limit{Source: SourceGOMEMLIMIT}
	}

	raw := strings.TrimSpace(lookup("MEMORY_LIMIT"))
	if raw == "" {
		return Limit{Source: SourceNone}
	}
	container, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || container <= 0 {
		logging.Warn("Ignoring invalid MEMORY_LIMIT %q", raw)
		return Limit{Source: SourceNone}
	}

	ratio := DefaultMemoryRatio
	if s := strings.TrimSpace(lookup("MEMORY_RATIO")); s != "" {
		parsed, err := strconv.ParseFloat(s, 64)
		switch {
		case err != nil:
			logging.Warn("Failed to parse MEMORY_RATIO %q: %v, using default %.2f", s, err, DefaultMemoryRatio)
		case parsed <= 0 || parsed > 1:
			logging.Warn("MEMORY_RATIO %q out of range (0.0-1.0], using default %.2f", s, DefaultMemoryRatio)
		default:
			ratio = parsed
		}
	}

	return Limit{
		Source:    SourceMemoryLimit,
		Container: container,
		Heap:      int64(float64(container) * ratio),
		Ratio:     ratio,
	}
}

// Apply installs a MEMORY_LIMIT derived heap limit in the runtime.
func (l Limit) Apply() {
	switch l.Source {
	case SourceMemoryLimit:
		debug.SetMemoryLimit(l.Heap)
		logging.Info("Configured GOMEMLIMIT: %s (%.1f%% of %s container limit)",
			formatBytes(l.Heap), l.Ratio*100, formatBytes(l.Container))
	case SourceGOMEMLIMIT:
		logging.Info("GOMEMLIMIT set via environment: %s", formatBytes(currentLimit()))
	default:
		logging.Debug("MEMORY_LIMIT not set, GOMEMLIMIT will not be configured automatically")
	}
}

// ConfigureFromEnv reads the process environment and applies the result.
func ConfigureFromEnv() Limit {
	l := FromEnv(os.Getenv)
	l.Apply()
	return l
}

// currentLimit returns the runtime soft limit, or 0 when it is unlimited.
func currentLimit() int64 {
	limit := debug.SetMemoryLimit(-1)
	if limit <= 0 || limit == math.MaxInt64 {
		return 0
	}
	return limit
}

// formatBytes formats bytes using binary units.
func formatBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return strconv.FormatInt(b, 10) + " B"
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return strconv.FormatFloat(float64(b)/float64(div), 'f', 1, 64) + " " + string("KMGTPE"[exp]) + "iB"
}
