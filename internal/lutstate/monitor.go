package lutstate

import (
	"fmt"
	"slices"

	"github.com/alex-vit/lutswitch/internal/config"
	"github.com/alex-vit/lutswitch/internal/display"
	"github.com/alex-vit/lutswitch/internal/injector"
)

// Placeholder shown for metadata that is unknown, e.g. for unplugged monitors.
const Placeholder = "???"

// Mode selects the SDR or HDR LUT of a monitor.
type Mode int

const (
	SDR Mode = iota
	HDR
)

func (m Mode) String() string {
	if m == HDR {
		return "hdr"
	}
	return "sdr"
}

// ParseMode accepts "sdr" or "hdr".
func ParseMode(s string) (Mode, error) {
	switch s {
	case "sdr", "SDR":
		return SDR, nil
	case "hdr", "HDR":
		return HDR, nil
	}
	return SDR, fmt.Errorf("unknown mode %q (want sdr or hdr)", s)
}

// Monitor is one display known to the app: either backed by an active
// display path, or restored from config.xml so its settings survive while
// it is unplugged.
type Monitor struct {
	DevicePath string
	SourceID   int // 1-based; 0 when inactive
	Name       string
	Connector  string
	Position   string
	SdrLutPath string
	HdrLutPath string
	SdrLuts    []string // nil when never recorded
	HdrLuts    []string
	Active     bool
}

func (m *Monitor) String() string {
	if !m.Active {
		return m.DevicePath + " (inactive)"
	}
	return fmt.Sprintf("%d: %s (%s) at %s", m.SourceID, m.Name, m.Connector, m.Position)
}

// LutPath returns the selected LUT for mode, or "" if none.
func (m *Monitor) LutPath(mode Mode) string {
	if mode == HDR {
		return m.HdrLutPath
	}
	return m.SdrLutPath
}

// History returns the previously used LUTs for mode, oldest first.
func (m *Monitor) History(mode Mode) []string {
	return slices.Clone(*m.history(mode))
}

func (m *Monitor) history(mode Mode) *[]string {
	if mode == HDR {
		return &m.HdrLuts
	}
	return &m.SdrLuts
}

// setLutPath selects path and appends it to the history if it is new.
func (m *Monitor) setLutPath(mode Mode, path string) {
	if mode == HDR {
		m.HdrLutPath = path
	} else {
		m.SdrLutPath = path
	}
	if path == "" {
		return
	}
	h := m.history(mode)
	if !slices.Contains(*h, path) {
		*h = append(*h, path)
	}
}

// forget drops path from the history and reports whether it was there.
func (m *Monitor) forget(mode Mode, path string) bool {
	h := m.history(mode)
	i := slices.Index(*h, path)
	if i < 0 {
		return false
	}
	*h = slices.Delete(*h, i, i+1)
	return true
}

func (m *Monitor) hasLut() bool {
	return m.SdrLutPath != "" || m.HdrLutPath != ""
}

func (m *Monitor) record() config.Monitor {
	return config.Monitor{
		Path:    m.DevicePath,
		SdrLut:  m.SdrLutPath,
		HdrLut:  m.HdrLutPath,
		SdrLuts: slices.Clone(m.SdrLuts),
		HdrLuts: slices.Clone(m.HdrLuts),
	}
}

func (m *Monitor) target() injector.Target {
	return injector.Target{
		DevicePath: m.DevicePath,
		SourceID:   m.SourceID,
		Position:   m.Position,
		SdrLutPath: m.SdrLutPath,
		HdrLutPath: m.HdrLutPath,
	}
}

func (m *Monitor) clone() Monitor {
	c := *m
	c.SdrLuts = slices.Clone(m.SdrLuts)
	c.HdrLuts = slices.Clone(m.HdrLuts)
	return c
}

// newActiveMonitor builds an entry from a live display path, with the saved
// settings of rec merged in when found is true.
func newActiveMonitor(p display.Path, rec config.Monitor, found bool) *Monitor {
	name := p.FriendlyName
	if name == "" {
		name = Placeholder
	}
	connector := p.Connector
	if connector == "" {
		connector = Placeholder
	}
	m := &Monitor{
		DevicePath: p.DevicePath,
		SourceID:   int(p.SourceID) + 1,
		Name:       name,
		Connector:  connector,
		Position:   p.Position(),
		Active:     true,
	}
	if found {
		applyRecord(m, rec)
	}
	return m
}

// newInactiveMonitor restores an unplugged monitor from its saved record.
func newInactiveMonitor(rec config.Monitor) *Monitor {
	m := &Monitor{
		DevicePath: rec.Path,
		Name:       Placeholder,
		Connector:  Placeholder,
	}
	applyRecord(m, rec)
	return m
}

func applyRecord(m *Monitor, rec config.Monitor) {
	m.SdrLutPath = rec.SdrLut
	m.HdrLutPath = rec.HdrLut
	m.SdrLuts = slices.Clone(rec.SdrLuts)
	m.HdrLuts = slices.Clone(rec.HdrLuts)
}
