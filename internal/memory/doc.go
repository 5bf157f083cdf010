// Package memory sizes the Go heap for containers and throttles import
// workers under memory pressure.
//
// [ConfigureFromEnv] should run early in main. GOMEMLIMIT, when set, wins.
// Otherwise MEMORY_LIMIT (bytes, typically from the Kubernetes Downward API)
// times MEMORY_RATIO (default 0.85) becomes the runtime soft limit:
//
//	env:
//	- name: MEMORY_LIMIT
//	  valueFrom:
//	    resourceFieldRef:
//	      resource: limits.memory
//
// A [Monitor] samples heap allocation against that limit. Above the
// critical mark it pauses callers of [Monitor.Wait] until usage falls below
// the high-water mark again; thumbnail decoding is the main consumer.
package memory
