// Package logoasset renders the boot-splash bitmap petctl embeds into a
// disk image. It is ordinary hosted Go (unlike everything under kernel/,
// which must stay freestanding and allocation-free), so it is free to pull
// in a real 2D rendering stack; grounded on
// iansmith-mazarin/src/mazboot/golang's go.mod (fogleman/gg over
// golang.org/x/image/golang/freetype) and mirrors the intent of
// gopher-os-gopher-os/tools/makelogo, which performs the analogous job
// with the stdlib image package alone.
package logoasset

import (
	"image"
	"image/color"

	"github.com/fogleman/gg"
)

// Options controls the generated splash bitmap's dimensions and text.
type Options struct {
	Width, Height int
	Title         string
	Subtitle      string
	Background    color.Color
	Foreground    color.Color
}

// DefaultOptions returns the 320x200 boot-splash dimensions the kernel's
// VGA-less serial-first boot path still wants an image asset for (used by
// the disk-image builder in pkg/bootimg to embed a recognizable splash
// even though the running kernel itself never draws it onto a framebuffer).
func DefaultOptions() Options {
	return Options{
		Width:      320,
		Height:     200,
		Title:      "petos",
		Subtitle:   "preemptive kernel",
		Background: color.Black,
		Foreground: color.White,
	}
}

// Render draws a simple centered title/subtitle splash and returns it as an
// image.Image ready for pkg/bootimg to encode into the disk image. A nil
// Background or Foreground is drawn as black or white respectively.
func Render(opts Options) image.Image {
	bg, fg := opts.Background, opts.Foreground
	if bg == nil {
		bg = color.Black
	}
	if fg == nil {
		fg = color.White
	}

	dc := gg.NewContext(opts.Width, opts.Height)
	dc.SetColor(bg)
	dc.Clear()

	dc.SetColor(fg)
	_ = dc.LoadFontFace("", 24) // falls back to the built-in face when unavailable

	titleY := float64(opts.Height) / 2
	dc.DrawStringAnchored(opts.Title, float64(opts.Width)/2, titleY, 0.5, 0.5)
	dc.DrawStringAnchored(opts.Subtitle, float64(opts.Width)/2, titleY+28, 0.5, 0.5)

	return dc.Image()
}
