package raster

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"strings"
)

// ErrInvalidDrawing is returned when a persisted drawing cannot be decoded
var ErrInvalidDrawing = errors.New("invalid drawing")

// DataURLPrefix precedes the base64 PNG payload of an encoded raster.
const DataURLPrefix = "data:image/png;base64,"

// EncodePNG writes the buffer as a PNG.
func (r *Raster) EncodePNG() ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, r.img); err != nil {
		return nil, fmt.Errorf("failed to encode drawing: %w", err)
	}
	return buf.Bytes(), nil
}

// Encode returns the buffer as a PNG data URL. A raster without area
// encodes as the empty string.
func (r *Raster) Encode() (string, error) {
	if r.img.Bounds().Empty() {
		return "", nil
	}
	b, err := r.EncodePNG()
	if err != nil {
		return "", err
	}
	return DataURLPrefix + base64.StdEncoding.EncodeToString(b), nil
}

// Decode draws an encoded drawing onto the buffer at the top-left corner,
// unscaled and composited over the current content. An empty string is a
// blank drawing.
func (r *Raster) Decode(data string) error {
	if data == "" {
		return nil
	}
	img, err := DecodeDataURL(data)
	if err != nil {
		return err
	}
	over(r.img, img)
	r.revision++
	return nil
}

// DecodeDataURL parses a PNG data URL into an image anchored at the origin.
func DecodeDataURL(data string) (*image.NRGBA, error) {
	header, payload, ok := strings.Cut(data, ",")
	if !ok || !strings.HasPrefix(header, "data:image/png") || !strings.HasSuffix(header, ";base64") {
		return nil, fmt.Errorf("%w: not a PNG data URL", ErrInvalidDrawing)
	}
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDrawing, err)
	}
	img, err := png.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDrawing, err)
	}
	return toNRGBA(img), nil
}

func toNRGBA(img image.Image) *image.NRGBA {
	b := img.Bounds()
	if n, ok := img.(*image.NRGBA); ok && b.Min == (image.Point{}) {
		return n
	}
	out := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)
	return out
}

// over composites src onto dst at the origin. Pixels landing on transparent
// destination pixels are copied unchanged so a decode into a cleared buffer
// reproduces the encoded bytes exactly.
func over(dst, src *image.NRGBA) {
	b := dst.Bounds().Intersect(src.Bounds())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			si, di := src.PixOffset(x, y), dst.PixOffset(x, y)
			s, d := src.Pix[si:si+4:si+4], dst.Pix[di:di+4:di+4]
			switch {
			case d[3] == 0 || s[3] == 0xFF:
				copy(d, s)
			case s[3] == 0:
			default:
				sa, da := float64(s[3])/255, float64(d[3])/255
				oa := sa + da*(1-sa)
				for c := 0; c < 3; c++ {
					v := (float64(s[c])*sa + float64(d[c])*da*(1-sa)) / oa
					d[c] = uint8(v + 0.5)
				}
				d[3] = uint8(oa*255 + 0.5)
			}
		}
	}
}
