// Package keyhook installs a system-wide low-level keyboard hook and
// republishes key-down and key-up events as portable key names.
//
// Unlike RegisterHotKey, a low-level hook sees every key regardless of
// modifiers or focus, including keys like Pause that are already bound
// elsewhere. The hook never swallows input: every event is passed on to the
// next hook in the chain.
package keyhook

import (
	"errors"
	"log"
	"sync"
	"sync/atomic"

	"github.com/alex-vit/lutswitch/internal/keys"
)

// ErrAlreadyInstalled is returned by Start when this hook, or another Hook in
// the same process, is already installed.
var ErrAlreadyInstalled = errors.New("keyhook: a keyboard hook is already installed")

// installed guards against a second Hook replacing the first one.
var installed atomic.Bool

// Hook owns one low-level keyboard hook registration.
type Hook struct {
	mu      sync.Mutex
	d       *dispatcher
	running bool
	done    chan struct{}

	// Set by the platform code on the hook thread.
	threadID uint32
	handle   uintptr
	callback uintptr
}

// New creates an uninstalled hook. buffer is the capacity of each event
// channel; events that arrive while a channel is full are dropped.
func New(buffer int) *Hook {
	if buffer < 1 {
		buffer = 1
	}
	return &Hook{d: newDispatcher(buffer)}
}

// KeyDown delivers a key each time one is pressed anywhere in the session.
func (h *Hook) KeyDown() <-chan keys.Key { return h.d.down }

// KeyUp delivers a key each time one is released. A consumer that only
// cares about presses must still drain it, or releases count as drops.
func (h *Hook) KeyUp() <-chan keys.Key { return h.d.up }

// Dropped reports how many events were discarded because a channel was full.
func (h *Hook) Dropped() uint64 { return h.d.dropped.Load() }

// Feed pushes a key event through the same path the OS callback takes,
// whether or not the hook is installed.
func (h *Hook) Feed(down bool, vk uint32) {
	msg := uintptr(wmKeyUp)
	if down {
		msg = wmKeyDown
	}
	h.d.handle(0, msg, func() uint32 { return vk }, func() uintptr { return 0 })
}

// Start installs the hook. It returns once the OS has accepted or refused
// the registration.
func (h *Hook) Start() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.reap()
	if h.running || !installed.CompareAndSwap(false, true) {
		return ErrAlreadyInstalled
	}
	h.done = make(chan struct{})
	if err := h.start(); err != nil {
		installed.Store(false)
		return err
	}
	h.running = true
	log.Printf("keyhook: installed")
	return nil
}

// stopThread asks the hook thread to unhook and exit.
var stopThread = (*Hook).stop

// Stop removes the hook and waits for the hook thread to exit. Stopping an
// uninstalled hook is a no-op. If the thread cannot be reached the hook
// stays installed and the error is returned.
func (h *Hook) Stop() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.reap()
	if !h.running {
		return nil
	}
	if err := stopThread(h); err != nil {
		log.Printf("keyhook: stop: %v", err)
		return err
	}
	h.release()
	log.Printf("keyhook: removed (%d events dropped)", h.Dropped())
	return nil
}

// reap releases the hook if its thread already exited on its own, e.g. after
// the message loop failed.
func (h *Hook) reap() {
	if !h.running {
		return
	}
	select {
	case <-h.done:
		log.Printf("keyhook: hook thread exited")
		h.release()
	default:
	}
}

func (h *Hook) release() {
	h.running = false
	installed.Store(false)
}

// Close is Stop, for use with defer.
func (h *Hook) Close() error { return h.Stop() }
