package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/chai2010/webp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 100, A: 255})
		}
	}
	buf := new(bytes.Buffer)
	require.NoError(t, png.Encode(buf, img))
	return buf.Bytes()
}

func TestToWebPDownscales(t *testing.T) {
	out, err := ToWebP(pngBytes(t, 200, 100), 50, 75)
	require.NoError(t, err)

	img, err := webp.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 50, img.Bounds().Dx())
	assert.Equal(t, 25, img.Bounds().Dy())
}

func TestToWebPKeepsSmallImages(t *testing.T) {
	out, err := ToWebP(pngBytes(t, 40, 30), 100, 0)
	require.NoError(t, err)

	img, err := webp.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 40, img.Bounds().Dx())
}

func TestToWebPRejectsNonImages(t *testing.T) {
	_, err := ToWebP([]byte("%PDF-1.4 not an image"), 100, 80)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
	assert.False(t, IsImage([]byte("plain text")))
	assert.True(t, IsImage(pngBytes(t, 2, 2)))
}
