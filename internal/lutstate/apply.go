package lutstate

import (
	"errors"
	"log"
	"slices"

	"github.com/alex-vit/lutswitch/internal/config"
	"github.com/alex-vit/lutswitch/internal/injector"
)

// Save writes every known monitor and the toggle key to config.xml,
// replacing the file. On failure the error is logged and returned, and the
// last-written snapshot is left as it was.
func (m *Model) Save() error {
	doc := m.snapshot()
	if err := config.Save(m.configPath, doc); err != nil {
		log.Printf("lutstate: save config: %v", err)
		return err
	}
	m.lastWritten = doc
	m.updateConfigChanged()
	m.UpdateStatus()
	return nil
}

func (m *Model) snapshot() config.Document {
	doc := config.Document{ToggleKey: m.toggleKey}
	for _, mon := range m.all {
		doc.Monitors = append(doc.Monitors, mon.record())
	}
	return doc
}

func (m *Model) updateConfigChanged() {
	m.configChanged = !settings(m.lastWritten).Equal(settings(m.lastApplied))
}

// settings drops records that carry nothing. Such records appear and vanish
// as monitors are plugged in, and mean the same as no record at all.
func settings(d config.Document) config.Document {
	out := config.Document{ToggleKey: d.ToggleKey}
	for _, rec := range d.Monitors {
		if !rec.Equal(config.Monitor{Path: rec.Path}) {
			out.Monitors = append(out.Monitors, rec)
		}
	}
	return out
}

// ConfigChanged reports whether the saved config differs from the one
// last handed to the injector.
func (m *Model) ConfigChanged() bool { return m.configChanged }

// ApplyReInject removes any current injection and injects the active
// monitors again. When no active monitor has a LUT, injection is skipped:
// an all-empty config means "disabled". Injector errors are logged and
// returned, but the saved config still becomes the applied one.
func (m *Model) ApplyReInject() error {
	var errs []error
	if err := m.inj.Uninject(); err != nil {
		log.Printf("lutstate: uninject: %v", err)
		errs = append(errs, err)
	}

	if slices.ContainsFunc(m.active, (*Monitor).hasLut) {
		targets := make([]injector.Target, len(m.active))
		for i, mon := range m.active {
			targets[i] = mon.target()
		}
		log.Printf("lutstate: injecting %d monitor(s)", len(targets))
		if err := m.inj.Inject(targets); err != nil {
			log.Printf("lutstate: inject: %v", err)
			errs = append(errs, err)
		}
	} else {
		log.Printf("lutstate: no LUTs on active monitors, not injecting")
	}

	m.lastApplied = m.lastWritten.Clone()
	m.updateConfigChanged()
	m.UpdateStatus()
	return errors.Join(errs...)
}

// Uninject removes the LUTs from all monitors.
func (m *Model) Uninject() error {
	err := m.inj.Uninject()
	if err != nil {
		log.Printf("lutstate: uninject: %v", err)
	}
	m.UpdateStatus()
	return err
}

// Toggle uninjects when LUTs are currently applied and re-applies otherwise.
// This is what the toggle hotkey does.
func (m *Model) Toggle() error {
	if m.inj.Status() == injector.StatusActive {
		return m.Uninject()
	}
	return m.ApplyReInject()
}

// OnDisplaySettingsChanged reloads the topology and, unless there are
// saved changes the user has not applied yet, re-applies the LUTs so they
// follow the monitors to their new sources.
func (m *Model) OnDisplaySettingsChanged() error {
	m.Refresh()
	if m.configChanged {
		log.Printf("lutstate: display settings changed, config has unapplied changes, not re-applying")
		return nil
	}
	return m.ApplyReInject()
}

// UpdateStatus polls the injector and refreshes IsActive and ActiveText.
func (m *Model) UpdateStatus() {
	var active bool
	var text string
	switch m.inj.Status() {
	case injector.StatusActive:
		active = true
		text = "Active"
		if m.configChanged {
			text += " (changed)"
		}
	case injector.StatusInactive:
		text = "Inactive"
	default:
		text = Placeholder
	}
	if active != m.isActive {
		m.isActive = active
		m.notify(FieldIsActive)
	}
	if text != m.activeText {
		m.activeText = text
		m.notify(FieldActiveText)
	}
}

// IsActive reports whether the injector last said LUTs are applied.
func (m *Model) IsActive() bool { return m.isActive }

// ActiveText is the status line: "Active", "Active (changed)", "Inactive"
// or "???" when the injector cannot tell.
func (m *Model) ActiveText() string { return m.activeText }
