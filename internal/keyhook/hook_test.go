package keyhook

import (
	"bytes"
	"errors"
	"log"
	"os"
	"strings"
	"testing"

	"github.com/alex-vit/lutswitch/internal/keys"
)

func TestStopWithoutStartIsNoop(t *testing.T) {
	h := New(1)
	if err := h.Stop(); err != nil {
		t.Fatalf("Stop() on uninstalled hook = %v", err)
	}
	if err := h.Close(); err != nil {
		t.Fatalf("Close() on uninstalled hook = %v", err)
	}
}

func TestSingleInstallPerProcess(t *testing.T) {
	first := New(1)
	if err := first.Start(); err != nil {
		// No hook support here (non-Windows or no desktop session).
		if installed.Load() {
			t.Fatalf("failed Start left the process marked as installed")
		}
		t.Skipf("hook unavailable: %v", err)
	}
	defer first.Stop()

	if err := first.Start(); !errors.Is(err, ErrAlreadyInstalled) {
		t.Errorf("second Start on same hook = %v, want ErrAlreadyInstalled", err)
	}
	second := New(1)
	if err := second.Start(); !errors.Is(err, ErrAlreadyInstalled) {
		t.Errorf("Start on second hook = %v, want ErrAlreadyInstalled", err)
	}

	if err := first.Stop(); err != nil {
		t.Fatalf("Stop() = %v", err)
	}
	if err := second.Start(); err != nil {
		t.Fatalf("Start after Stop = %v", err)
	}
	second.Stop()
}

func TestNewClampsBuffer(t *testing.T) {
	h := New(0)
	if cap(h.d.down) != 1 || cap(h.d.up) != 1 {
		t.Errorf("buffers = %d/%d, want 1/1", cap(h.d.down), cap(h.d.up))
	}
}

// fakeInstalled marks h as installed with a live hook thread, without
// touching the OS.
func fakeInstalled(t *testing.T, h *Hook) {
	t.Helper()
	if !installed.CompareAndSwap(false, true) {
		t.Fatal("another hook is installed")
	}
	t.Cleanup(func() { installed.Store(false) })
	h.done = make(chan struct{})
	h.running = true
}

func TestStopFailureKeepsHookInstalled(t *testing.T) {
	h := New(1)
	fakeInstalled(t, h)
	errPost := errors.New("post failed")
	old := stopThread
	stopThread = func(*Hook) error { return errPost }
	defer func() { stopThread = old }()

	if err := h.Stop(); !errors.Is(err, errPost) {
		t.Fatalf("Stop() = %v, want %v", err, errPost)
	}
	if !h.running || !installed.Load() {
		t.Error("failed Stop released the install guard")
	}
	if err := New(1).Start(); !errors.Is(err, ErrAlreadyInstalled) {
		t.Errorf("Start after failed Stop = %v, want ErrAlreadyInstalled", err)
	}
}

func TestExitedThreadIsReaped(t *testing.T) {
	t.Run("stop", func(t *testing.T) {
		h := New(1)
		fakeInstalled(t, h)
		close(h.done)
		if err := h.Stop(); err != nil {
			t.Fatalf("Stop() = %v", err)
		}
		if h.running || installed.Load() {
			t.Error("exited hook still marked as installed")
		}
	})
	t.Run("start", func(t *testing.T) {
		h := New(1)
		fakeInstalled(t, h)
		close(h.done)
		err := h.Start()
		if errors.Is(err, ErrAlreadyInstalled) {
			t.Fatal("Start refused although the hook thread had exited")
		}
		if err == nil {
			h.Stop()
		}
	})
}

func TestFeed(t *testing.T) {
	h := New(2)
	h.Feed(true, keys.VirtualKey("F9"))
	h.Feed(false, keys.VirtualKey("F9"))
	if got := <-h.KeyDown(); got != "F9" {
		t.Errorf("KeyDown = %q, want F9", got)
	}
	if got := <-h.KeyUp(); got != "F9" {
		t.Errorf("KeyUp = %q, want F9", got)
	}
}

func TestDropsAreCountedAndLoggedOnce(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	h := New(4)
	for range 3 {
		for _, r := range "PASSWORD" {
			vk := keys.VirtualKey(keys.Key(string(r)))
			h.Feed(true, vk)
			h.Feed(false, vk)
		}
	}
	if got := h.Dropped(); got != 40 {
		t.Errorf("Dropped() = %d, want 40", got)
	}
	out := buf.String()
	if n := strings.Count(out, "keyhook:"); n != 1 {
		t.Errorf("logged %d lines, want 1:\n%s", n, out)
	}
	for _, r := range "PASWORD" {
		if strings.Contains(out, " "+string(r)+" ") {
			t.Errorf("log mentions key %c:\n%s", r, out)
		}
	}
}
