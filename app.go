package main

import (
	"fmt"
	"io"
	"log"
	"path/filepath"
	"runtime/debug"
	"strings"
	"time"

	"github.com/alex-vit/lutswitch/icon"
	"github.com/alex-vit/lutswitch/internal/keys"
	"github.com/alex-vit/lutswitch/internal/lutstate"
)

// version is set with -ldflags "-X main.version=...". go install builds
// fall back to the module version.
var version = ""

func displayVersion() string {
	if version != "" {
		return version
	}
	if bi, ok := debug.ReadBuildInfo(); ok && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		return strings.TrimPrefix(bi.Main.Version, "v")
	}
	return "dev"
}

// runCommand is the autostart command line for exe.
func runCommand(exe string) string {
	return `"` + exe + `"`
}

// sameCommand reports whether a stored autostart command starts exe.
// Quoting and case of the path do not matter on Windows.
func sameCommand(cmd, exe string) bool {
	cmd = strings.Trim(strings.TrimSpace(cmd), `"`)
	return strings.EqualFold(filepath.Clean(cmd), filepath.Clean(exe))
}

// stampWriter prefixes each log line with a local timestamp. Milliseconds
// keep hook and display events that land in the same second in order.
type stampWriter struct {
	w   io.Writer
	now func() time.Time
}

func newStampWriter(w io.Writer) stampWriter { return stampWriter{w: w, now: time.Now} }

func (sw stampWriter) Write(p []byte) (int, error) {
	if _, err := fmt.Fprintf(sw.w, "%s ", sw.now().Format("2006-01-02 15:04:05.000")); err != nil {
		return 0, err
	}
	return sw.w.Write(p)
}

// app owns the Model. Hook events, display changes, the status ticker and
// tray clicks all arrive on channels and are handled one at a time in run.
type app struct {
	model *lutstate.Model

	keyDown        <-chan keys.Key
	keyUp          <-chan keys.Key
	tick           <-chan time.Time
	displayChanged chan struct{}
	cmds           chan func()

	// held is the toggle key while it is down, so auto-repeat does not
	// toggle again. Down and up events come on separate channels, so a
	// quick tap can deliver the release first; early records that.
	held  keys.Key
	early bool

	done    chan struct{}
	stopped chan struct{}
}

func newApp(model *lutstate.Model, keyDown, keyUp <-chan keys.Key, tick <-chan time.Time) *app {
	return &app{
		model:          model,
		keyDown:        keyDown,
		keyUp:          keyUp,
		tick:           tick,
		displayChanged: make(chan struct{}, 1),
		cmds:           make(chan func(), 16),
		done:           make(chan struct{}),
		stopped:        make(chan struct{}),
	}
}

// post queues fn to run on the event loop. Safe to call from any goroutine.
func (a *app) post(fn func()) {
	select {
	case a.cmds <- fn:
	case <-a.done:
	}
}

// displaysChanged is called from the watcher thread. Bursts of changes
// collapse into one refresh.
func (a *app) displaysChanged() {
	select {
	case a.displayChanged <- struct{}{}:
	default:
	}
}

func (a *app) run() {
	defer close(a.stopped)
	for {
		select {
		case <-a.done:
			return
		case k, ok := <-a.keyDown:
			if !ok {
				a.keyDown = nil
				continue
			}
			a.onKeyDown(k)
		case k, ok := <-a.keyUp:
			if !ok {
				a.keyUp = nil
				continue
			}
			a.onKeyUp(k)
		case <-a.displayChanged:
			log.Printf("display settings changed")
			if err := a.model.OnDisplaySettingsChanged(); err != nil {
				log.Printf("re-apply after display change: %v", err)
			}
		case <-a.tick:
			a.model.UpdateStatus()
		case fn := <-a.cmds:
			fn()
		}
	}
}

// stop ends run and waits for it to return.
func (a *app) stop() {
	close(a.done)
	<-a.stopped
}

func (a *app) onKeyDown(k keys.Key) {
	if k != a.model.ToggleKey() || k == a.held {
		return
	}
	if a.early {
		a.early = false
	} else {
		a.held = k
	}
	log.Printf("toggle key %s pressed", k)
	if err := a.model.Toggle(); err != nil {
		log.Printf("toggle: %v", err)
	}
}

func (a *app) onKeyUp(k keys.Key) {
	switch {
	case a.held != keys.None && k == a.held:
		a.held = keys.None
	case a.held == keys.None && k == a.model.ToggleKey():
		a.early = true
	}
}

func iconState(m *lutstate.Model) icon.State {
	switch {
	case m.IsActive() && m.ConfigChanged():
		return icon.ActiveChanged
	case m.IsActive():
		return icon.Active
	case m.ActiveText() == lutstate.Placeholder:
		return icon.Unknown
	}
	return icon.Inactive
}
