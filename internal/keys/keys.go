// Package keys maps Windows virtual-key codes to portable key names.
// Names follow the System.Windows.Input.Key spelling so config files written
// by the .NET DwmLutGUI stay readable ("Pause", "F9", "NumPad0", "OemTilde").
package keys

import (
	"errors"
	"fmt"
	"sort"
)

// Key is a portable key identifier. The zero value is None.
type Key string

const (
	None  Key = ""
	Pause Key = "Pause"
)

// ErrUnknownKey is returned by Parse for names that are not in the table.
var ErrUnknownKey = errors.New("unknown key")

var (
	byVK   = map[uint32]Key{}
	toVK   = map[Key]uint32{}
	byName = map[Key]struct{}{}
)

var named = []struct {
	vk  uint32
	key Key
}{
	{0x03, "Cancel"},
	{0x08, "Back"},
	{0x09, "Tab"},
	{0x0C, "Clear"},
	{0x0D, "Return"},
	{0x13, "Pause"},
	{0x14, "Capital"},
	{0x1B, "Escape"},
	{0x20, "Space"},
	{0x21, "PageUp"},
	{0x22, "PageDown"},
	{0x23, "End"},
	{0x24, "Home"},
	{0x25, "Left"},
	{0x26, "Up"},
	{0x27, "Right"},
	{0x28, "Down"},
	{0x29, "Select"},
	{0x2A, "Print"},
	{0x2B, "Execute"},
	{0x2C, "PrintScreen"},
	{0x2D, "Insert"},
	{0x2E, "Delete"},
	{0x2F, "Help"},
	{0x5B, "LWin"},
	{0x5C, "RWin"},
	{0x5D, "Apps"},
	{0x5F, "Sleep"},
	{0x6A, "Multiply"},
	{0x6B, "Add"},
	{0x6C, "Separator"},
	{0x6D, "Subtract"},
	{0x6E, "Decimal"},
	{0x6F, "Divide"},
	{0x90, "NumLock"},
	{0x91, "Scroll"},
	{0xA0, "LeftShift"},
	{0xA1, "RightShift"},
	{0xA2, "LeftCtrl"},
	{0xA3, "RightCtrl"},
	{0xA4, "LeftAlt"},
	{0xA5, "RightAlt"},
	{0xAD, "VolumeMute"},
	{0xAE, "VolumeDown"},
	{0xAF, "VolumeUp"},
	{0xB0, "MediaNextTrack"},
	{0xB1, "MediaPreviousTrack"},
	{0xB2, "MediaStop"},
	{0xB3, "MediaPlayPause"},
	{0xBA, "OemSemicolon"},
	{0xBB, "OemPlus"},
	{0xBC, "OemComma"},
	{0xBD, "OemMinus"},
	{0xBE, "OemPeriod"},
	{0xBF, "OemQuestion"},
	{0xC0, "OemTilde"},
	{0xDB, "OemOpenBrackets"},
	{0xDC, "OemPipe"},
	{0xDD, "OemCloseBrackets"},
	{0xDE, "OemQuotes"},
	{0xDF, "Oem8"},
	{0xE2, "OemBackslash"},
}

func init() {
	add := func(vk uint32, k Key) {
		byVK[vk] = k
		toVK[k] = vk
		byName[k] = struct{}{}
	}
	for _, n := range named {
		add(n.vk, n.key)
	}
	for i := range uint32(10) {
		add(0x30+i, Key(fmt.Sprintf("D%d", i)))
		add(0x60+i, Key(fmt.Sprintf("NumPad%d", i)))
	}
	for i := range uint32(26) {
		add(0x41+i, Key(rune('A'+i)))
	}
	for i := range uint32(24) {
		add(0x70+i, Key(fmt.Sprintf("F%d", i+1)))
	}
}

// FromVirtualKey translates a Win32 virtual-key code. Unmapped codes return None.
func FromVirtualKey(vk uint32) Key {
	return byVK[vk]
}

// VirtualKey returns the Win32 virtual-key code for k, or 0 if k is not mapped.
func VirtualKey(k Key) uint32 {
	return toVK[k]
}

// Parse looks up a key by its exact name.
func Parse(name string) (Key, error) {
	k := Key(name)
	if _, ok := byName[k]; !ok || k == None {
		return None, fmt.Errorf("%w: %q", ErrUnknownKey, name)
	}
	return k, nil
}

// Names lists every known key name in sorted order.
func Names() []string {
	out := make([]string, 0, len(byName))
	for k := range byName {
		out = append(out, string(k))
	}
	sort.Strings(out)
	return out
}

func (k Key) String() string {
	if k == None {
		return "None"
	}
	return string(k)
}
