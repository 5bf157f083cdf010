package workers

import (
	"os"
	"runtime"
	"strconv"
)

// EnvOverride names the environment variable that pins the worker count.
const EnvOverride = "IMPORT_WORKERS"

// Count returns a worker count of multiplier workers per available CPU,
// capped at limit (0 for no cap). GOMAXPROCS is used rather than NumCPU so
// container CPU limits are respected.
//
// A positive integer in IMPORT_WORKERS overrides the calculation, still
// subject to limit.
func Count(multiplier float64, limit int) int {
	if override := os.Getenv(EnvOverride); override != "" {
		if count, err := strconv.Atoi(override); err == nil && count > 0 {
			if limit > 0 && count > limit {
				return limit
			}
			return count
		}
	}

	workers := int(float64(runtime.GOMAXPROCS(0)) * multiplier)

	if workers < 1 {
		workers = 1
	}
	if limit > 0 && workers > limit {
		workers = limit
	}

	return workers
}

// ForMixed returns a worker count for tasks that mix disk I/O with CPU
// work, such as decoding an image and writing its thumbnail (1.5 per CPU).
func ForMixed(limit int) int {
	return Count(1.5, limit)
}
