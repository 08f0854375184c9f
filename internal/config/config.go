// Package config reads and writes config.xml, the per-monitor LUT settings
// and the global toggle key.
//
//	<monitors lut_toggle="Pause">
//	  <monitor path="\\?\DISPLAY#..." sdr_lut="C:\luts\a.cube" hdr_lut="...">
//	    <sdr_luts><sdr_lut>C:\luts\a.cube</sdr_lut></sdr_luts>
//	    <hdr_luts><hdr_lut>...</hdr_lut></hdr_luts>
//	  </monitor>
//	</monitors>
package config

import (
	"slices"

	"github.com/alex-vit/lutswitch/internal/keys"
)

// FileName is the config file name, stored next to the executable.
const FileName = "config.xml"

// DefaultToggleKey is used when the file is missing or lut_toggle is invalid.
const DefaultToggleKey = keys.Pause

// Document is the whole config file.
type Document struct {
	ToggleKey keys.Key
	Monitors  []Monitor
}

// Monitor is the saved settings of one display, keyed by device path.
// Empty LUT paths mean "not set". A nil history means the element is absent;
// an empty non-nil history is written as an empty element.
type Monitor struct {
	Path    string
	SdrLut  string
	HdrLut  string
	SdrLuts []string
	HdrLuts []string
}

// Default returns an empty document with the default toggle key.
func Default() Document {
	return Document{ToggleKey: DefaultToggleKey}
}

// Find returns the record for a device path.
func (d Document) Find(path string) (Monitor, bool) {
	for _, m := range d.Monitors {
		if m.Path == path {
			return m, true
		}
	}
	return Monitor{}, false
}

// Equal compares two documents by value. Record order does not matter,
// history order does.
func (d Document) Equal(o Document) bool {
	if d.ToggleKey != o.ToggleKey || len(d.Monitors) != len(o.Monitors) {
		return false
	}
	for _, m := range d.Monitors {
		om, ok := o.Find(m.Path)
		if !ok || !m.Equal(om) {
			return false
		}
	}
	return true
}

// Equal compares two records field by field.
func (m Monitor) Equal(o Monitor) bool {
	return m.Path == o.Path &&
		m.SdrLut == o.SdrLut &&
		m.HdrLut == o.HdrLut &&
		historyEqual(m.SdrLuts, o.SdrLuts) &&
		historyEqual(m.HdrLuts, o.HdrLuts)
}

func historyEqual(a, b []string) bool {
	if (a == nil) != (b == nil) {
		return false
	}
	return slices.Equal(a, b)
}

// Clone returns a deep copy, so snapshots never alias live state.
func (d Document) Clone() Document {
	out := Document{ToggleKey: d.ToggleKey}
	if d.Monitors != nil {
		out.Monitors = make([]Monitor, len(d.Monitors))
		for i, m := range d.Monitors {
			out.Monitors[i] = m.Clone()
		}
	}
	return out
}

// Clone returns a deep copy of the record.
func (m Monitor) Clone() Monitor {
	m.SdrLuts = slices.Clone(m.SdrLuts)
	m.HdrLuts = slices.Clone(m.HdrLuts)
	return m
}
