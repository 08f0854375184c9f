package icon

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/png"
	"math"
)

// State is what the tray icon shows.
type State int

const (
	Unknown State = iota
	Inactive
	Active
	// ActiveChanged means LUTs are applied but config.xml has moved on.
	ActiveChanged
)

var (
	colorGrey = color.NRGBA{R: 0x9A, G: 0x9A, B: 0x9A, A: 0xFF}
	colorDot  = color.NRGBA{R: 0xFF, G: 0xD7, B: 0x00, A: 0xFF} // gold #FFD700
)

// Generate returns ICO bytes (16+32 px) for a status.
func Generate(s State) []byte {
	sizes := []int{16, 32}
	var pngs [][]byte
	for _, size := range sizes {
		var buf bytes.Buffer
		png.Encode(&buf, wheelImage(size, s))
		pngs = append(pngs, buf.Bytes())
	}
	return buildICO(sizes, pngs)
}

// wheelImage draws a disc whose colour runs around the hue circle when LUTs
// are applied and is flat grey when they are not. Unknown status leaves the
// centre hollow. A changed config adds a gold dot in the top-right corner.
// No anti-aliasing: every pixel is either fully opaque or fully transparent.
func wheelImage(size int, s State) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, size, size))

	center := float64(size) / 2
	outerR := center - 0.5
	innerR := 0.0
	if s == Unknown {
		innerR = outerR * 0.55
	}
	dotR := float64(size) / 6
	dotC := float64(size) - dotR - 0.5

	for y := range size {
		for x := range size {
			px := float64(x) + 0.5
			py := float64(y) + 0.5

			if s == ActiveChanged && math.Hypot(px-dotC, py-(float64(size)-dotC)) <= dotR {
				img.SetNRGBA(x, y, colorDot)
				continue
			}

			d := math.Hypot(px-center, py-center)
			if d > outerR || d < innerR {
				continue
			}
			if s == Active || s == ActiveChanged {
				angle := math.Atan2(py-center, px-center)
				hue := (angle + math.Pi) / (2 * math.Pi)
				// Fade towards white in the middle, like a colour picker.
				img.SetNRGBA(x, y, lerpColor(color.NRGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}, hueColor(hue), d/outerR))
			} else {
				img.SetNRGBA(x, y, colorGrey)
			}
		}
	}
	return img
}

// hueColor returns the fully saturated colour at h in [0, 1].
func hueColor(h float64) color.NRGBA {
	h = math.Mod(h, 1)
	if h < 0 {
		h++
	}
	stops := []color.NRGBA{
		{R: 0xFF, A: 0xFF},
		{R: 0xFF, G: 0xFF, A: 0xFF},
		{G: 0xFF, A: 0xFF},
		{G: 0xFF, B: 0xFF, A: 0xFF},
		{B: 0xFF, A: 0xFF},
		{R: 0xFF, B: 0xFF, A: 0xFF},
		{R: 0xFF, A: 0xFF},
	}
	pos := h * 6
	i := int(pos)
	if i >= 6 {
		return stops[6]
	}
	return lerpColor(stops[i], stops[i+1], pos-float64(i))
}

func lerpColor(a, b color.NRGBA, t float64) color.NRGBA {
	return color.NRGBA{
		R: uint8(float64(a.R) + t*(float64(b.R)-float64(a.R))),
		G: uint8(float64(a.G) + t*(float64(b.G)-float64(a.G))),
		B: uint8(float64(a.B) + t*(float64(b.B)-float64(a.B))),
		A: 0xFF,
	}
}

// buildICO assembles an ICO file from PNG-encoded images.
func buildICO(sizes []int, pngs [][]byte) []byte {
	n := len(sizes)
	dataOffset := 6 + n*16

	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, [3]uint16{0, 1, uint16(n)})

	offset := uint32(dataOffset)
	for i, size := range sizes {
		w := uint8(size)
		if size >= 256 {
			w = 0
		}
		buf.Write([]byte{w, w, 0, 0})
		binary.Write(&buf, binary.LittleEndian, uint16(1))
		binary.Write(&buf, binary.LittleEndian, uint16(32))
		binary.Write(&buf, binary.LittleEndian, uint32(len(pngs[i])))
		binary.Write(&buf, binary.LittleEndian, offset)
		offset += uint32(len(pngs[i]))
	}

	for _, p := range pngs {
		buf.Write(p)
	}
	return buf.Bytes()
}
