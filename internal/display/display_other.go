//go:build !windows

package display

import (
	"errors"
	"fmt"
)

// ActivePaths needs the Windows display configuration API.
func ActivePaths() ([]Path, error) {
	return nil, fmt.Errorf("display: enumerate paths: %w", errors.ErrUnsupported)
}

// WatchChanges needs a Windows message loop.
func WatchChanges(onChange func()) (stop func(), err error) {
	return nil, fmt.Errorf("display: watch changes: %w", errors.ErrUnsupported)
}
