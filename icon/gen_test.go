package icon

import (
	"bytes"
	"image/color"
	"testing"
)

func TestLerpColor(t *testing.T) {
	a := color.NRGBA{R: 0, G: 0, B: 0, A: 255}
	b := color.NRGBA{R: 200, G: 100, B: 50, A: 255}

	tests := []struct {
		name string
		t    float64
		want color.NRGBA
	}{
		{"t=0 returns first", 0, color.NRGBA{R: 0, G: 0, B: 0, A: 255}},
		{"t=1 returns second", 1, color.NRGBA{R: 200, G: 100, B: 50, A: 255}},
		{"t=0.5 midpoint", 0.5, color.NRGBA{R: 100, G: 50, B: 25, A: 255}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := lerpColor(a, b, tt.t)
			if got != tt.want {
				t.Errorf("lerpColor(a, b, %v) = %v, want %v", tt.t, got, tt.want)
			}
		})
	}
}

func TestHueColor(t *testing.T) {
	tests := []struct {
		name string
		h    float64
		want color.NRGBA
	}{
		{"h=0 red", 0, color.NRGBA{R: 0xFF, A: 0xFF}},
		{"h=0.5 cyan", 0.5, color.NRGBA{G: 0xFF, B: 0xFF, A: 0xFF}},
		{"h=1 wraps to red", 1, color.NRGBA{R: 0xFF, A: 0xFF}},
		{"negative wraps", -0.5, color.NRGBA{G: 0xFF, B: 0xFF, A: 0xFF}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := hueColor(tt.h)
			if got != tt.want {
				t.Errorf("hueColor(%v) = %v, want %v", tt.h, got, tt.want)
			}
		})
	}
}

func TestWheelImage(t *testing.T) {
	transparent := color.NRGBA{}

	tests := []struct {
		name  string
		state State
		x, y  int
		check func(color.NRGBA) bool
	}{
		{"inactive centre is grey", Inactive, 16, 16, func(c color.NRGBA) bool { return c == colorGrey }},
		{"unknown centre is hollow", Unknown, 16, 16, func(c color.NRGBA) bool { return c == transparent }},
		{"unknown ring is grey", Unknown, 31, 16, func(c color.NRGBA) bool { return c == colorGrey }},
		{"active edge is coloured", Active, 31, 16, func(c color.NRGBA) bool { return c.A == 0xFF && c != colorGrey }},
		{"corner outside the disc", Active, 0, 0, func(c color.NRGBA) bool { return c == transparent }},
		{"changed shows the dot", ActiveChanged, 26, 5, func(c color.NRGBA) bool { return c == colorDot }},
		{"unchanged has no dot", Active, 26, 5, func(c color.NRGBA) bool { return c != colorDot }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := wheelImage(32, tt.state)
			if got := img.NRGBAAt(tt.x, tt.y); !tt.check(got) {
				t.Errorf("pixel (%d,%d) = %v", tt.x, tt.y, got)
			}
		})
	}
}

func TestGenerate(t *testing.T) {
	t.Run("valid ICO header", func(t *testing.T) {
		data := Generate(Active)
		if len(data) < 6 {
			t.Fatalf("Generate(Active) returned %d bytes, expected at least 6", len(data))
		}
		// ICO header: reserved=0, type=1 (little-endian).
		if data[0] != 0 || data[1] != 0 {
			t.Errorf("reserved bytes = %x %x, want 0 0", data[0], data[1])
		}
		if data[2] != 1 || data[3] != 0 {
			t.Errorf("image type = %x %x, want 1 0 (ICO)", data[2], data[3])
		}
		// 2 images (16px + 32px).
		if data[4] != 2 || data[5] != 0 {
			t.Errorf("image count = %x %x, want 2 0", data[4], data[5])
		}
	})

	t.Run("states differ", func(t *testing.T) {
		states := []State{Unknown, Inactive, Active, ActiveChanged}
		icons := make([][]byte, len(states))
		for i, s := range states {
			icons[i] = Generate(s)
		}
		for i := range icons {
			for j := i + 1; j < len(icons); j++ {
				if bytes.Equal(icons[i], icons[j]) {
					t.Errorf("states %d and %d produce the same icon", states[i], states[j])
				}
			}
		}
	})
}
