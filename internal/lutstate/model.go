// Package lutstate keeps the app's view of which monitors exist and which
// LUTs they use. It merges the live display topology with config.xml,
// persists user changes, and drives the injector.
//
// A Model is not safe for concurrent use. The app owns it from a single
// event-loop goroutine and marshals hook, timer and tray events onto it.
package lutstate

import (
	"log"
	"strings"

	"github.com/alex-vit/lutswitch/internal/config"
	"github.com/alex-vit/lutswitch/internal/display"
	"github.com/alex-vit/lutswitch/internal/injector"
	"github.com/alex-vit/lutswitch/internal/keys"
)

// Injector applies and removes LUTs at the compositor level.
type Injector interface {
	Inject(targets []injector.Target) error
	Uninject() error
	Status() injector.Status
}

// PathSource lists the active display paths, e.g. display.ActivePaths.
type PathSource func() ([]display.Path, error)

// Model is the reconciled monitor/config state.
type Model struct {
	configPath string
	paths      PathSource
	inj        Injector

	all       []*Monitor // active first, then inactive
	active    []*Monitor
	selected  *Monitor
	toggleKey keys.Key

	loaded        bool
	lastWritten   config.Document
	lastApplied   config.Document
	configChanged bool

	isActive   bool
	activeText string

	subs    map[int]func(Field)
	nextSub int
}

// New creates a model and runs the first Refresh.
func New(configPath string, paths PathSource, inj Injector) *Model {
	log.Printf("lutstate: initializing, config=%s", configPath)
	m := &Model{
		configPath: configPath,
		paths:      paths,
		inj:        inj,
		toggleKey:  config.DefaultToggleKey,
		subs:       map[int]func(Field){},
	}
	m.Refresh()
	return m
}

// Refresh rebuilds the monitor lists from the live topology and config.xml.
// It never fails: a broken config or enumeration error leaves fewer monitors.
func (m *Model) Refresh() {
	log.Printf("lutstate: updating monitors")
	selectedPath := ""
	if m.selected != nil {
		selectedPath = m.selected.DevicePath
	}
	m.all, m.active = nil, nil

	doc := config.LoadOrDefault(m.configPath)
	m.toggleKey = doc.ToggleKey

	paths, err := m.paths()
	if err != nil {
		log.Printf("lutstate: enumerate display paths: %v", err)
	}
	for _, p := range paths {
		if p.CloneMember {
			continue
		}
		rec, found := doc.Find(p.DevicePath)
		mon := newActiveMonitor(p, rec, found)
		m.all = append(m.all, mon)
		m.active = append(m.active, mon)
	}
	log.Printf("lutstate: active monitors: %s", joinMonitors(m.active))

	for _, rec := range doc.Monitors {
		if m.findActive(rec.Path) != nil {
			continue
		}
		m.all = append(m.all, newInactiveMonitor(rec))
	}
	log.Printf("lutstate: all monitors: %s", joinMonitors(m.all))

	// Selection only follows monitors that are still active.
	m.selected = nil
	if selectedPath != "" {
		m.selected = m.findActive(selectedPath)
	}
	if m.selected != nil {
		log.Printf("lutstate: selected monitor: %s", m.selected)
	}

	// What was just read is what is on disk, including edits made outside
	// the app. At startup it is also what counts as applied.
	m.lastWritten = m.snapshot()
	if !m.loaded {
		m.lastApplied = m.lastWritten.Clone()
		m.loaded = true
	}
	m.updateConfigChanged()

	m.notify(FieldMonitors, FieldSelectedMonitor, FieldSdrLutPath, FieldHdrLutPath, FieldToggleKey)
	m.UpdateStatus()
}

func (m *Model) findActive(path string) *Monitor {
	for _, mon := range m.active {
		if mon.DevicePath == path {
			return mon
		}
	}
	return nil
}

func joinMonitors(ms []*Monitor) string {
	parts := make([]string, len(ms))
	for i, mon := range ms {
		parts[i] = mon.String()
	}
	return strings.Join(parts, ", ")
}

// Monitors returns copies of all known monitors, active ones first.
func (m *Model) Monitors() []Monitor { return copyMonitors(m.all) }

// ActiveMonitors returns copies of the monitors backed by a live display path.
func (m *Model) ActiveMonitors() []Monitor { return copyMonitors(m.active) }

func copyMonitors(ms []*Monitor) []Monitor {
	out := make([]Monitor, len(ms))
	for i, mon := range ms {
		out[i] = mon.clone()
	}
	return out
}

// Selected returns the selected monitor, if any.
func (m *Model) Selected() (Monitor, bool) {
	if m.selected == nil {
		return Monitor{}, false
	}
	return m.selected.clone(), true
}

// SelectMonitor selects the active monitor with the given device path.
// An empty or unknown path clears the selection. It reports whether a
// monitor is selected afterwards.
func (m *Model) SelectMonitor(devicePath string) bool {
	next := m.findActive(devicePath)
	if next == m.selected {
		return next != nil
	}
	m.selected = next
	m.notify(FieldSelectedMonitor, FieldSdrLutPath, FieldHdrLutPath)
	return next != nil
}

// SdrLutPath is the selected monitor's SDR LUT, or "".
func (m *Model) SdrLutPath() string { return m.lutPath(SDR) }

// HdrLutPath is the selected monitor's HDR LUT, or "".
func (m *Model) HdrLutPath() string { return m.lutPath(HDR) }

func (m *Model) lutPath(mode Mode) string {
	if m.selected == nil {
		return ""
	}
	return m.selected.LutPath(mode)
}

// SetLutPath sets the selected monitor's LUT for mode and saves. It is a
// no-op when nothing is selected or the value is unchanged. The returned
// error is a save failure; the in-memory change is kept either way.
func (m *Model) SetLutPath(mode Mode, path string) error {
	if m.selected == nil || m.selected.LutPath(mode) == path {
		return nil
	}
	m.selected.setLutPath(mode, path)
	m.notify(lutField(mode), FieldLutHistory)
	return m.Save()
}

// ForgetLut removes path from the selected monitor's history for mode.
func (m *Model) ForgetLut(mode Mode, path string) error {
	if m.selected == nil || !m.selected.forget(mode, path) {
		return nil
	}
	m.notify(FieldLutHistory)
	return m.Save()
}

// LutHistory returns the selected monitor's previously used LUTs for mode.
func (m *Model) LutHistory(mode Mode) []string {
	if m.selected == nil {
		return nil
	}
	return m.selected.History(mode)
}

// ToggleKey is the hotkey that toggles LUT injection.
func (m *Model) ToggleKey() keys.Key { return m.toggleKey }

// SetToggleKey changes the hotkey and saves; unchanged values are a no-op.
func (m *Model) SetToggleKey(k keys.Key) error {
	if k == m.toggleKey {
		return nil
	}
	m.toggleKey = k
	m.notify(FieldToggleKey)
	return m.Save()
}

func lutField(mode Mode) Field {
	if mode == HDR {
		return FieldHdrLutPath
	}
	return FieldSdrLutPath
}
