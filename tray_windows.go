package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"sync"

	"github.com/alex-vit/lutswitch/icon"
	"github.com/alex-vit/lutswitch/internal/lutstate"
	"github.com/energye/systray"
)

// tray mirrors the Model in the notification area menu. Its subscriber runs
// on the event loop; click handlers run on the systray thread and only post.
type tray struct {
	app *app

	mStatus    *systray.MenuItem
	mToggleKey *systray.MenuItem
	mAutostart *systray.MenuItem

	monitors *itemPool
	sdr      *itemPool
	hdr      *itemPool
}

func newTray(a *app, configPath string) *tray {
	t := &tray{app: a}
	m := a.model

	systray.SetTooltip("LutSwitch")
	title := systray.AddMenuItem("LutSwitch "+displayVersion(), "")
	title.Disable()
	t.mStatus = systray.AddMenuItem("", "")
	t.mStatus.Disable()
	systray.AddSeparator()

	systray.AddMenuItem("Apply", "Re-apply the LUTs from config.xml").Click(func() {
		a.post(func() { m.ApplyReInject() })
	})
	systray.AddMenuItem("Disable", "Remove the LUTs from all monitors").Click(func() {
		a.post(func() { m.Uninject() })
	})
	systray.AddMenuItem("Reload config", "Re-read config.xml and the display topology").Click(func() {
		a.post(m.Refresh)
	})
	systray.AddSeparator()

	mMonitors := systray.AddMenuItem("Monitor", "Monitor whose LUTs the menus below edit")
	t.monitors = newItemPool(mMonitors, func(path string) {
		a.post(func() { m.SelectMonitor(path) })
	})
	mSdr := systray.AddMenuItem("SDR LUT", "")
	t.sdr = newItemPool(mSdr, func(path string) {
		a.post(func() { m.SetLutPath(lutstate.SDR, path) })
	})
	mHdr := systray.AddMenuItem("HDR LUT", "")
	t.hdr = newItemPool(mHdr, func(path string) {
		a.post(func() { m.SetLutPath(lutstate.HDR, path) })
	})
	t.mToggleKey = systray.AddMenuItem("", "Set lut_toggle in config.xml to change it")
	t.mToggleKey.Disable()
	systray.AddSeparator()

	systray.AddMenuItem("Open config", "Open config.xml").Click(func() {
		a.post(func() {
			// An empty install has no file yet; write the defaults first.
			if _, err := os.Stat(configPath); errors.Is(err, fs.ErrNotExist) {
				if m.Save() != nil {
					return
				}
			}
			openFile(configPath)
		})
	})
	systray.AddMenuItem("Open log", "Open log file").Click(func() {
		openFile(logPath)
	})

	t.mAutostart = systray.AddMenuItem("Start with Windows", "Launch LutSwitch at login")
	if autostart.enabled() {
		t.mAutostart.Check()
	}
	t.mAutostart.Click(t.toggleAutostart)
	systray.AddSeparator()
	systray.AddMenuItem("Quit", "Quit LutSwitch").Click(func() { systray.Quit() })

	systray.SetOnClick(func(menu systray.IMenu) { menu.ShowMenu() })
	systray.SetOnRClick(func(menu systray.IMenu) { menu.ShowMenu() })

	m.Subscribe(t.onChange)
	t.syncAll()
	return t
}

func (t *tray) onChange(f lutstate.Field) {
	switch f {
	case lutstate.FieldIsActive, lutstate.FieldActiveText:
		t.syncStatus()
	case lutstate.FieldMonitors, lutstate.FieldSelectedMonitor:
		t.syncMonitors()
		t.syncLuts()
	case lutstate.FieldSdrLutPath, lutstate.FieldHdrLutPath, lutstate.FieldLutHistory:
		t.syncLuts()
	case lutstate.FieldToggleKey:
		t.syncToggleKey()
	}
}

func (t *tray) syncAll() {
	t.syncStatus()
	t.syncMonitors()
	t.syncLuts()
	t.syncToggleKey()
}

func (t *tray) syncStatus() {
	m := t.app.model
	t.mStatus.SetTitle("Status: " + m.ActiveText())
	systray.SetIcon(icon.Generate(iconState(m)))
	systray.SetTooltip("LutSwitch: " + m.ActiveText())
}

func (t *tray) syncMonitors() {
	m := t.app.model
	sel, _ := m.Selected()
	var entries []poolEntry
	for _, mon := range m.Monitors() {
		entries = append(entries, poolEntry{
			label:    mon.String(),
			tooltip:  mon.DevicePath,
			value:    mon.DevicePath,
			checked:  mon.Active && mon.DevicePath == sel.DevicePath,
			disabled: !mon.Active,
		})
	}
	t.monitors.set(entries)
}

func (t *tray) syncLuts() {
	m := t.app.model
	_, ok := m.Selected()
	for _, mode := range []lutstate.Mode{lutstate.SDR, lutstate.HDR} {
		pool := t.sdr
		current := m.SdrLutPath()
		if mode == lutstate.HDR {
			pool, current = t.hdr, m.HdrLutPath()
		}
		if !ok {
			pool.parent.Disable()
			pool.set(nil)
			continue
		}
		pool.parent.Enable()
		entries := []poolEntry{{label: "None", value: "", checked: current == ""}}
		for _, p := range m.LutHistory(mode) {
			entries = append(entries, poolEntry{
				label:   filepath.Base(p),
				tooltip: p,
				value:   p,
				checked: p == current,
			})
		}
		pool.set(entries)
	}
}

func (t *tray) syncToggleKey() {
	t.mToggleKey.SetTitle(fmt.Sprintf("Toggle key: %s", t.app.model.ToggleKey()))
}

func (t *tray) toggleAutostart() {
	on := !t.mAutostart.Checked()
	if err := autostart.set(on); err != nil {
		log.Printf("autostart: set %v: %v", on, err)
		return
	}
	log.Printf("autostart: %v", on)
	if on {
		t.mAutostart.Check()
	} else {
		t.mAutostart.Uncheck()
	}
}

func openFile(path string) {
	if err := exec.Command("rundll32", "url.dll,FileProtocolHandler", path).Start(); err != nil {
		log.Printf("open %s: %v", path, err)
	}
}

type poolEntry struct {
	label, tooltip, value string
	checked, disabled     bool
}

// itemPool is a submenu whose entries change at runtime. systray cannot
// remove items, so surplus ones are hidden and reused later.
type itemPool struct {
	parent  *systray.MenuItem
	onClick func(value string)

	mu     sync.Mutex
	items  []*systray.MenuItem
	values []string
}

func newItemPool(parent *systray.MenuItem, onClick func(string)) *itemPool {
	return &itemPool{parent: parent, onClick: onClick}
}

func (p *itemPool) set(entries []poolEntry) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for len(p.items) < len(entries) {
		i := len(p.items)
		item := p.parent.AddSubMenuItem("", "")
		item.Click(func() { p.click(i) })
		p.items = append(p.items, item)
		p.values = append(p.values, "")
	}
	for i, item := range p.items {
		if i >= len(entries) {
			item.Hide()
			continue
		}
		e := entries[i]
		p.values[i] = e.value
		item.SetTitle(e.label)
		item.SetTooltip(e.tooltip)
		if e.checked {
			item.Check()
		} else {
			item.Uncheck()
		}
		if e.disabled {
			item.Disable()
		} else {
			item.Enable()
		}
		item.Show()
	}
}

func (p *itemPool) click(i int) {
	p.mu.Lock()
	v := p.values[i]
	p.mu.Unlock()
	p.onClick(v)
}
