//go:build !windows

package keyhook

import (
	"errors"
	"fmt"
)

func (h *Hook) start() error {
	close(h.done)
	return fmt.Errorf("keyhook: low-level keyboard hooks: %w", errors.ErrUnsupported)
}

func (h *Hook) stop() error { return nil }
