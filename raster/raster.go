// Package raster is the pixel-pushing half of imagery retrieval: a concrete
// RGBA buffer with explicit paste, crop, encode, and compare operations.
package raster

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/jpeg"
	"io"

	// The tile service serves JPEG, but placeholders have been observed
	// as PNG on other providers. Register both decoders for sniffing.
	_ "image/png"
)

// Raster is a mutable composite image. A retrieval attempt owns exactly one,
// sized to whole tiles, and discards it if the attempt fails.
type Raster struct {
	rgba *image.RGBA
}

func New(w, h int) *Raster {
	return &Raster{rgba: image.NewRGBA(image.Rect(0, 0, w, h))}
}

func (r *Raster) Bounds() image.Rectangle {
	return r.rgba.Bounds()
}

// RGBA exposes the underlying buffer, mostly for encoders and tests.
func (r *Raster) RGBA() *image.RGBA {
	return r.rgba
}

// Paste draws img with its upper-left corner at (x, y).
// Regions for distinct tiles are disjoint, so concurrent pastes of
// different tiles do not race.
func (r *Raster) Paste(img image.Image, x, y int) {
	b := img.Bounds()
	target := image.Rect(x, y, x+b.Dx(), y+b.Dy())
	draw.Draw(r.rgba, target, img, b.Min, draw.Src)
}

// Crop copies the rectangle out of the composite into a standalone raster.
// rect.Max is exclusive. The copy does not share pixels with r; the
// composite can be dropped immediately after cropping.
func (r *Raster) Crop(rect image.Rectangle) *Raster {
	out := image.NewRGBA(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	draw.Draw(out, out.Bounds(), r.rgba, rect.Min, draw.Src)
	return &Raster{rgba: out}
}

// EncodeJPEG writes the raster as a maximum-quality JPEG.
func (r *Raster) EncodeJPEG(w io.Writer) error {
	return jpeg.Encode(w, r.rgba, &jpeg.Options{Quality: 100})
}

// Decode sniffs and decodes a tile payload.
func Decode(b []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("decode tile image: %w", err)
	}
	return img, nil
}

// Equal reports whether two raw tile payloads are byte-identical.
// The tile service returns one canonical payload for any absent tile, so
// byte equality against that reference is the absence check.
func Equal(a, b []byte) bool {
	return bytes.Equal(a, b)
}
