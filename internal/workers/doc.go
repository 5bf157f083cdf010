/*
Package workers sizes worker pools for the importer.

Inside a container, runtime.NumCPU reports the host's CPUs while GOMAXPROCS
follows the cgroup CPU limit (Go 1.19+). Count and ForMixed use GOMAXPROCS:

	// 1.5 workers per available CPU, at most 8
	n := workers.ForMixed(8)

Operators can pin the count with the IMPORT_WORKERS environment variable:

	env:
	- name: IMPORT_WORKERS
	  value: "4"

All functions are safe for concurrent use.
*/
package workers
