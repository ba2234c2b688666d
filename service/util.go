package service

import (
	"image"
	_ "image/jpeg"
	"image/png"
	"io"

	_ "github.com/gen2brain/avif"
	_ "golang.org/x/image/webp"

	"github.com/krau/konadepth/colormap"
)

// Decode reads a JPEG, PNG, WebP or AVIF image.
func Decode(r io.Reader) (image.Image, string, error) {
	return image.Decode(r)
}

// Image renders the colour map of r, or a grayscale image of the raw values.
func (r *DepthResult) Image() image.Image {
	if r.Raw {
		return colormap.GrayImage(r.Colors, r.Width, r.Height)
	}
	return colormap.Image(r.Colors, r.Width, r.Height)
}

func (r *DepthResult) EncodePNG(w io.Writer) error {
	return png.Encode(w, r.Image())
}
