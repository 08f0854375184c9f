package keyhook

import (
	"log"
	"sync/atomic"

	"github.com/alex-vit/lutswitch/internal/keys"
)

// Low-level keyboard hook message identifiers (wParam of the hook callback).
const (
	wmKeyDown    = 0x0100
	wmKeyUp      = 0x0101
	wmSysKeyDown = 0x0104
	wmSysKeyUp   = 0x0105
)

// dispatcher holds the OS-independent part of the hook callback so it can be
// exercised without installing a real hook.
type dispatcher struct {
	translate func(vk uint32) keys.Key
	down      chan keys.Key
	up        chan keys.Key

	dropped atomic.Uint64
}

func newDispatcher(buffer int) *dispatcher {
	return &dispatcher{
		translate: keys.FromVirtualKey,
		down:      make(chan keys.Key, buffer),
		up:        make(chan keys.Key, buffer),
	}
}

// handle processes one hook invocation and always returns next().
// readVK decodes the virtual-key code from the event payload.
func (d *dispatcher) handle(nCode int32, msg uintptr, readVK func() uint32, next func() uintptr) uintptr {
	d.inspect(nCode, msg, readVK)
	return next()
}

func (d *dispatcher) inspect(nCode int32, msg uintptr, readVK func() uint32) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("keyhook: error in hook callback: %v", r)
		}
	}()
	if nCode < 0 {
		return
	}
	var out chan keys.Key
	switch msg {
	case wmKeyDown, wmSysKeyDown:
		out = d.down
	case wmKeyUp, wmSysKeyUp:
		out = d.up
	default:
		return
	}
	k := d.translate(readVK())
	if k == keys.None {
		return
	}
	// Never block the OS input thread. Keys are not logged: the log
	// would become a record of what was typed.
	select {
	case out <- k:
	default:
		if d.dropped.Add(1) == 1 {
			log.Printf("keyhook: event channel full, dropping events")
		}
	}
}
