// Package timeouts centralizes the context deadlines handlers put on
// store calls, so a slow MongoDB never holds a request open
// indefinitely.
//
// Choosing a deadline:
//   - Ping: health-check connectivity probes
//   - Short: single-document reads (invite preview, content fetch)
//   - Medium: list queries and writes behind an access check
//   - Long: multi-collection work (group delete cascade, audit queries)
package timeouts

import "time"

const (
	ping   = 2 * time.Second
	short  = 5 * time.Second
	medium = 10 * time.Second
	long   = 30 * time.Second
)

// Ping returns the deadline for connectivity probes.
func Ping() time.Duration { return ping }

// Short returns the deadline for single-document reads.
func Short() time.Duration { return short }

// Medium returns the deadline for list queries and guarded writes.
func Medium() time.Duration { return medium }

// Long returns the deadline for operations touching several
// collections.
func Long() time.Duration { return long }
