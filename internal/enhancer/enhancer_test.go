package enhancer

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPagePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			c := color.RGBA{R: 240, G: 240, B: 230, A: 255}
			if (x/10+y/10)%2 == 0 {
				c = color.RGBA{R: 30, G: 30, B: 40, A: 255}
			}
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestEnhance_ProducesDecodablePNG(t *testing.T) {
	e := New(DefaultConfig())

	out, err := e.Enhance(testPagePNG(t, 64, 48))
	require.NoError(t, err)
	require.NotEmpty(t, out)

	img, format, err := image.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, 64, img.Bounds().Dx())
	assert.Equal(t, 48, img.Bounds().Dy())
}

func TestEnhance_GrayscaleOutput(t *testing.T) {
	e := New(Config{}) // chain disabled except grayscale

	out, err := e.Enhance(testPagePNG(t, 20, 20))
	require.NoError(t, err)

	img, _, err := image.Decode(bytes.NewReader(out))
	require.NoError(t, err)

	for y := range 20 {
		for x := range 20 {
			r, g, b, _ := img.At(x, y).RGBA()
			assert.Equal(t, r, g)
			assert.Equal(t, g, b)
		}
	}
}

func TestEnhance_InvalidInput(t *testing.T) {
	e := New(DefaultConfig())

	_, err := e.Enhance([]byte("not an image"))
	require.Error(t, err)

	var enhanceErr *EnhanceError
	assert.True(t, errors.As(err, &enhanceErr))
}

func TestEnhance_EmptyInput(t *testing.T) {
	e := New(DefaultConfig())

	_, err := e.Enhance(nil)
	require.Error(t, err)
}
