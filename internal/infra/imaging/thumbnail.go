// Package imaging turns uploaded photos into small webp thumbnails.
package imaging

import (
	"bytes"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"

	"github.com/chai2010/webp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"github.com/BruksfildServices01/cleaning-scheduler/internal/httperr"
)

const (
	DefaultSize    = 256
	DefaultQuality = 80
	ContentType    = "image/webp"
)

// Thumbnail decodes a jpeg, png or webp image, fits it inside a size x size
// box and encodes it as webp. Images already smaller are not upscaled.
func Thumbnail(r io.Reader, size int) ([]byte, error) {
	src, _, err := image.Decode(r)
	if err != nil {
		return nil, httperr.ErrBusiness("invalid_image")
	}

	w, h := fit(src.Bounds().Dx(), src.Bounds().Dy(), size)
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)

	var buf bytes.Buffer
	if err := webp.Encode(&buf, dst, &webp.Options{Quality: DefaultQuality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func fit(w, h, size int) (int, int) {
	if w <= size && h <= size {
		return w, h
	}
	if w >= h {
		nh := h * size / w
		if nh < 1 {
			nh = 1
		}
		return size, nh
	}
	nw := w * size / h
	if nw < 1 {
		nw = 1
	}
	return nw, size
}
