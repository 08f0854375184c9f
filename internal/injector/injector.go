// Package injector describes the compositor LUT injector as seen from the
// tray app. The injection engine itself lives outside this repository.
package injector

import (
	"errors"
	"log"
)

// Status is the injector's tri-state answer to "are LUTs being applied?".
type Status int

const (
	StatusUnknown Status = iota
	StatusInactive
	StatusActive
)

func (s Status) String() string {
	switch s {
	case StatusActive:
		return "active"
	case StatusInactive:
		return "inactive"
	default:
		return "unknown"
	}
}

// ErrUnavailable is returned when no injection engine is present.
var ErrUnavailable = errors.New("injector: no injection engine available")

// Unavailable is the injector used when no engine is installed. It cannot
// inject, uninjecting is a no-op, and its status is always unknown.
type Unavailable struct{}

// Inject always fails with ErrUnavailable.
func (Unavailable) Inject(targets []Target) error {
	log.Printf("injector: cannot apply %d monitor(s): %v", len(targets), ErrUnavailable)
	return ErrUnavailable
}

// Uninject has nothing to remove.
func (Unavailable) Uninject() error { return nil }

// Status is always StatusUnknown.
func (Unavailable) Status() Status { return StatusUnknown }

// Target is what an engine needs to apply LUTs to one monitor.
type Target struct {
	DevicePath string
	SourceID   int // 1-based compositor source index
	Position   string
	SdrLutPath string
	HdrLutPath string
}
