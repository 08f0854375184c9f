package main

import (
	"bytes"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/alex-vit/lutswitch/icon"
	"github.com/alex-vit/lutswitch/internal/config"
	"github.com/alex-vit/lutswitch/internal/display"
	"github.com/alex-vit/lutswitch/internal/injector"
	"github.com/alex-vit/lutswitch/internal/keyhook"
	"github.com/alex-vit/lutswitch/internal/keys"
	"github.com/alex-vit/lutswitch/internal/lutstate"
)

type stubInjector struct {
	status  injector.Status
	injects int
}

func (s *stubInjector) Inject([]injector.Target) error {
	s.injects++
	s.status = injector.StatusActive
	return nil
}

func (s *stubInjector) Uninject() error {
	if s.status == injector.StatusActive {
		s.status = injector.StatusInactive
	}
	return nil
}

func (s *stubInjector) Status() injector.Status { return s.status }

func newTestModel(t *testing.T, inj lutstate.Injector, paths lutstate.PathSource) *lutstate.Model {
	t.Helper()
	path := filepath.Join(t.TempDir(), config.FileName)
	doc := config.Document{
		ToggleKey: "F9",
		Monitors:  []config.Monitor{{Path: "A", SdrLut: "a.cube"}},
	}
	if err := config.Save(path, doc); err != nil {
		t.Fatal(err)
	}
	if paths == nil {
		paths = func() ([]display.Path, error) {
			return []display.Path{{DevicePath: "A"}}, nil
		}
	}
	return lutstate.New(path, paths, inj)
}

// drain waits until the loop has handled everything queued before it.
func drain(t *testing.T, a *app) {
	t.Helper()
	done := make(chan struct{})
	a.post(func() { close(done) })
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("event loop did not respond")
	}
}

func TestAppToggleKey(t *testing.T) {
	inj := &stubInjector{status: injector.StatusInactive}
	keyCh, upCh := make(chan keys.Key), make(chan keys.Key)
	a := newApp(newTestModel(t, inj, nil), keyCh, upCh, nil)
	go a.run()
	defer a.stop()

	keyCh <- "F8"
	drain(t, a)
	if inj.injects != 0 {
		t.Errorf("other key injected %d times", inj.injects)
	}

	keyCh <- "F9"
	drain(t, a)
	if inj.injects != 1 || inj.status != injector.StatusActive {
		t.Errorf("after toggle: injects=%d status=%v, want applied", inj.injects, inj.status)
	}

	upCh <- "F9"
	keyCh <- "F9"
	drain(t, a)
	if inj.status != injector.StatusInactive {
		t.Errorf("after second toggle: status=%v, want inactive", inj.status)
	}
}

// press feeds one key event through h and waits until the loop has taken it.
func press(t *testing.T, a *app, h *keyhook.Hook, down bool, k keys.Key) {
	t.Helper()
	h.Feed(down, keys.VirtualKey(k))
	deadline := time.Now().Add(2 * time.Second)
	for len(h.KeyDown()) > 0 || len(h.KeyUp()) > 0 {
		if time.Now().After(deadline) {
			t.Fatalf("loop did not consume %s (down=%v)", k, down)
		}
		time.Sleep(time.Millisecond)
	}
	drain(t, a)
}

func TestAppConsumesHookEvents(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	inj := &stubInjector{status: injector.StatusInactive}
	hook := keyhook.New(16)
	a := newApp(newTestModel(t, inj, nil), hook.KeyDown(), hook.KeyUp(), nil)
	go a.run()
	defer a.stop()

	// Well past the channel buffer, in both directions.
	for range 5 {
		for _, r := range "PASSWORD" {
			press(t, a, hook, true, keys.Key(string(r)))
			press(t, a, hook, false, keys.Key(string(r)))
		}
	}
	if n := hook.Dropped(); n != 0 {
		t.Errorf("hook dropped %d events", n)
	}
	if strings.Contains(buf.String(), "keyhook") {
		t.Errorf("typing was logged:\n%s", buf.String())
	}

	press(t, a, hook, true, "F9")
	if inj.injects != 1 {
		t.Errorf("injects = %d after the toggle key, want 1", inj.injects)
	}
}

func TestAppIgnoresAutoRepeat(t *testing.T) {
	inj := &stubInjector{status: injector.StatusInactive}
	hook := keyhook.New(16)
	a := newApp(newTestModel(t, inj, nil), hook.KeyDown(), hook.KeyUp(), nil)
	go a.run()
	defer a.stop()

	for range 10 {
		press(t, a, hook, true, "F9")
	}
	if inj.injects != 1 || inj.status != injector.StatusActive {
		t.Fatalf("holding the key: injects=%d status=%v, want one toggle", inj.injects, inj.status)
	}
	press(t, a, hook, false, "F9")
	press(t, a, hook, true, "F9")
	if inj.status != injector.StatusInactive {
		t.Errorf("second press: status=%v, want inactive", inj.status)
	}
}

func TestAppReleaseBeforePress(t *testing.T) {
	inj := &stubInjector{status: injector.StatusInactive}
	keyCh, upCh := make(chan keys.Key), make(chan keys.Key)
	a := newApp(newTestModel(t, inj, nil), keyCh, upCh, nil)
	go a.run()
	defer a.stop()

	// A quick tap whose release is read first.
	upCh <- "F9"
	keyCh <- "F9"
	drain(t, a)
	keyCh <- "F9"
	drain(t, a)
	if inj.injects != 1 || inj.status != injector.StatusInactive {
		t.Errorf("two taps: injects=%d status=%v, want applied then removed", inj.injects, inj.status)
	}
}

func TestAppClosedKeyChannel(t *testing.T) {
	keyCh, upCh := make(chan keys.Key), make(chan keys.Key)
	close(keyCh)
	close(upCh)
	a := newApp(newTestModel(t, &stubInjector{}, nil), keyCh, upCh, nil)
	go a.run()
	defer a.stop()
	drain(t, a)
}

func TestAppDisplayChanges(t *testing.T) {
	calls := make(chan struct{}, 10)
	paths := func() ([]display.Path, error) {
		calls <- struct{}{}
		return []display.Path{{DevicePath: "A"}}, nil
	}
	inj := &stubInjector{status: injector.StatusInactive}
	a := newApp(newTestModel(t, inj, paths), nil, nil, nil)
	<-calls // initial Refresh

	a.displaysChanged()
	a.displaysChanged()
	if n := len(a.displayChanged); n != 1 {
		t.Fatalf("queued %d display changes, want 1", n)
	}

	go a.run()
	defer a.stop()
	select {
	case <-calls:
	case <-time.After(2 * time.Second):
		t.Fatal("display change not handled")
	}
	drain(t, a)
	if inj.injects != 1 {
		t.Errorf("injects = %d, want re-apply after display change", inj.injects)
	}
}

func TestAppTick(t *testing.T) {
	inj := &stubInjector{status: injector.StatusInactive}
	tick := make(chan time.Time)
	a := newApp(newTestModel(t, inj, nil), nil, nil, tick)
	go a.run()
	defer a.stop()

	a.post(func() { inj.status = injector.StatusActive })
	drain(t, a)
	tick <- time.Now()
	drain(t, a)

	var text string
	a.post(func() { text = a.model.ActiveText() })
	drain(t, a)
	if text != "Active" {
		t.Errorf("ActiveText = %q after tick, want Active", text)
	}
}

func TestPostAfterStop(t *testing.T) {
	a := newApp(newTestModel(t, &stubInjector{}, nil), nil, nil, nil)
	go a.run()
	a.stop()

	done := make(chan struct{})
	go func() {
		for range 20 {
			a.post(func() {})
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("post blocked after stop")
	}
}

func TestIconState(t *testing.T) {
	t.Run("unknown", func(t *testing.T) {
		m := newTestModel(t, &stubInjector{status: injector.StatusUnknown}, nil)
		if got := iconState(m); got != icon.Unknown {
			t.Errorf("iconState = %v, want Unknown", got)
		}
	})
	t.Run("inactive", func(t *testing.T) {
		m := newTestModel(t, &stubInjector{status: injector.StatusInactive}, nil)
		if got := iconState(m); got != icon.Inactive {
			t.Errorf("iconState = %v, want Inactive", got)
		}
	})
	t.Run("active then changed", func(t *testing.T) {
		m := newTestModel(t, &stubInjector{status: injector.StatusInactive}, nil)
		m.ApplyReInject()
		if got := iconState(m); got != icon.Active {
			t.Errorf("iconState = %v, want Active", got)
		}
		m.SelectMonitor("A")
		m.SetLutPath(lutstate.SDR, "b.cube")
		if got := iconState(m); got != icon.ActiveChanged {
			t.Errorf("iconState = %v, want ActiveChanged", got)
		}
	})
}

func TestStampWriter(t *testing.T) {
	var buf bytes.Buffer
	sw := stampWriter{w: &buf, now: func() time.Time {
		return time.Date(2024, 3, 9, 7, 5, 1, 42_000_000, time.Local)
	}}
	n, err := sw.Write([]byte("hello\n"))
	if err != nil || n != len("hello\n") {
		t.Fatalf("Write = %d, %v", n, err)
	}
	if got, want := buf.String(), "2024-03-09 07:05:01.042 hello\n"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	buf.Reset()
	newStampWriter(&buf).Write([]byte("x\n"))
	if !regexp.MustCompile(`^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}\.\d{3} x\n$`).Match(buf.Bytes()) {
		t.Errorf("got %q", buf.String())
	}
}

func TestDisplayVersion(t *testing.T) {
	old := version
	defer func() { version = old }()

	version = ""
	if got := displayVersion(); got != "dev" {
		t.Errorf("displayVersion() = %q, want dev", got)
	}
	version = "1.2.3"
	if got := displayVersion(); got != "1.2.3" {
		t.Errorf("displayVersion() = %q, want 1.2.3", got)
	}
}

func TestAutostartCommand(t *testing.T) {
	exe := `C:\Tools\LutSwitch\LutSwitch.exe`
	tests := []struct {
		name string
		cmd  string
		want bool
	}{
		{"written by us", runCommand(exe), true},
		{"unquoted", exe, true},
		{"other case", `"c:\tools\lutswitch\LUTSWITCH.EXE"`, true},
		{"moved install", `"D:\Old\LutSwitch.exe"`, false},
		{"empty", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sameCommand(tt.cmd, exe); got != tt.want {
				t.Errorf("sameCommand(%q) = %v, want %v", tt.cmd, got, tt.want)
			}
		})
	}
}
