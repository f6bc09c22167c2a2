// internal/app/system/status/status.go

// Package status holds the lifecycle status values shared by stored
// documents.
package status

const (
	Active   = "active"
	Archived = "archived"
)
