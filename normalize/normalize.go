package normalize

import (
	"image"
	"strings"

	"github.com/disintegration/imaging"
)

type Format int

const (
	Unknown Format = iota
	// RGB8 is 3 bytes per pixel. The bytes are read as B,G,R.
	RGB8
	// ARGB8 is 4 bytes per pixel with the alpha byte first.
	ARGB8
	// RGBA8 is 4 bytes per pixel with the alpha byte last.
	RGBA8
)

func (f Format) String() string {
	switch f {
	case RGB8:
		return "rgb"
	case ARGB8:
		return "argb"
	case RGBA8:
		return "rgba"
	default:
		return "unknown"
	}
}

// Stride returns the number of input bytes per pixel.
func (f Format) Stride() int {
	switch f {
	case RGB8:
		return 3
	case ARGB8, RGBA8:
		return 4
	default:
		return 0
	}
}

func ParseFormat(s string) Format {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "rgb", "rgb8":
		return RGB8
	case "argb", "argb8":
		return ARGB8
	case "rgba", "rgba8":
		return RGBA8
	default:
		return Unknown
	}
}

// Buffer converts in to out according to f and returns the number of pixels
// written. It never fails: conversion stops at the first pixel that does not
// fit entirely in both slices, and an unknown format writes nothing.
func Buffer(f Format, in []byte, out []float32) int {
	switch f {
	case RGB8:
		return RGB(in, out)
	case ARGB8:
		return ARGB(in, out)
	case RGBA8:
		return RGBA(in, out)
	default:
		return 0
	}
}

// RGB reads 3-byte pixels and writes them with the channel order reversed.
func RGB(in []byte, out []float32) int {
	return reversed(in, out, 3)
}

// ARGB reads 4-byte pixels, skips the leading alpha and reverses the
// remaining three channels the same way RGB does.
func ARGB(in []byte, out []float32) int {
	if len(in) == 0 {
		return 0
	}
	return reversed(in[1:], out, 4)
}

// RGBA reads 4-byte pixels, drops the trailing alpha and keeps channel order.
// Unlike RGB and ARGB there is no reversal.
func RGBA(in []byte, out []float32) int {
	n := 0
	for i, j := 0, 0; i+3 <= len(in) && j+3 <= len(out); i, j = i+4, j+3 {
		out[j] = float32(in[i]) / 255
		out[j+1] = float32(in[i+1]) / 255
		out[j+2] = float32(in[i+2]) / 255
		n++
	}
	return n
}

func reversed(in []byte, out []float32, stride int) int {
	n := 0
	for i, j := 0, 0; i+3 <= len(in) && j+3 <= len(out); i, j = i+stride, j+3 {
		out[j] = float32(in[i+2]) / 255
		out[j+1] = float32(in[i+1]) / 255
		out[j+2] = float32(in[i]) / 255
		n++
	}
	return n
}

// Image resizes img to w x h and returns it as HWC float32 RGB in [0,1].
func Image(img image.Image, w, h int) []float32 {
	var nrgba *image.NRGBA
	b := img.Bounds()
	if b.Dx() == w && b.Dy() == h {
		nrgba = imaging.Clone(img)
	} else {
		nrgba = imaging.Resize(img, w, h, imaging.Lanczos)
	}

	out := make([]float32, 3*w*h)
	RGBA(nrgba.Pix, out)
	return out
}
