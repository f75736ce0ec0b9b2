package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/chai2010/webp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/cleaning-scheduler/internal/httperr"
)

func TestFit(t *testing.T) {
	w, h := fit(1024, 512, 256)
	assert.Equal(t, 256, w)
	assert.Equal(t, 128, h)

	w, h = fit(300, 900, 256)
	assert.Equal(t, 85, w)
	assert.Equal(t, 256, h)

	w, h = fit(100, 80, 256)
	assert.Equal(t, 100, w)
	assert.Equal(t, 80, h)
}

func TestThumbnail_PNGToWebp(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 600, 300))
	for x := 0; x < 600; x++ {
		for y := 0; y < 300; y++ {
			src.Set(x, y, color.RGBA{R: uint8(x % 255), G: 120, B: 200, A: 255})
		}
	}
	var in bytes.Buffer
	require.NoError(t, png.Encode(&in, src))

	out, err := Thumbnail(&in, DefaultSize)
	require.NoError(t, err)

	cfg, err := webp.DecodeConfig(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 256, cfg.Width)
	assert.Equal(t, 128, cfg.Height)
}

func TestThumbnail_RejectsGarbage(t *testing.T) {
	_, err := Thumbnail(strings.NewReader("not an image"), DefaultSize)
	assert.True(t, httperr.IsBusiness(err, "invalid_image"))
}
