package main

import (
	"errors"
	"os"

	"golang.org/x/sys/windows/registry"
)

const runKey = `Software\Microsoft\Windows\CurrentVersion\Run`

// runEntry is a per-user value under the Run key.
type runEntry struct{ name string }

var autostart = runEntry{name: "LutSwitch"}

// enabled reports whether the entry exists and starts this executable. An
// entry left behind by a moved install counts as off, so re-enabling it
// repairs the path.
func (e runEntry) enabled() bool {
	exe, err := os.Executable()
	if err != nil {
		return false
	}
	k, err := registry.OpenKey(registry.CURRENT_USER, runKey, registry.QUERY_VALUE)
	if err != nil {
		return false
	}
	defer k.Close()
	v, _, err := k.GetStringValue(e.name)
	return err == nil && sameCommand(v, exe)
}

func (e runEntry) set(on bool) error {
	k, err := registry.OpenKey(registry.CURRENT_USER, runKey, registry.SET_VALUE)
	if err != nil {
		return err
	}
	defer k.Close()
	if !on {
		if err := k.DeleteValue(e.name); err != nil && !errors.Is(err, registry.ErrNotExist) {
			return err
		}
		return nil
	}
	exe, err := os.Executable()
	if err != nil {
		return err
	}
	return k.SetStringValue(e.name, runCommand(exe))
}
