package vision

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/require"
)

func solid(w, h int, c color.Color) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// withGreen красит первые n пикселей (по строкам) в чистый зелёный, остальные в красный.
func withGreen(w, h, n int) *image.NRGBA {
	img := solid(w, h, color.NRGBA{R: 255, A: 255})
	for i := 0; i < n; i++ {
		img.Set(i%w, i/w, color.NRGBA{G: 255, A: 255})
	}
	return img
}

func TestGreenRatioValidator_SolidColors(t *testing.T) {
	v := NewGreenRatioValidator()
	ctx := context.Background()

	tests := []struct {
		name   string
		c      color.Color
		passed bool
		ratio  float64
	}{
		{"pure green", color.NRGBA{G: 255, A: 255}, true, 1},
		{"pure red", color.NRGBA{R: 255, A: 255}, false, 0},
		{"pure blue", color.NRGBA{B: 255, A: 255}, false, 0},
		{"dark green below floor", color.NRGBA{G: 50, A: 255}, false, 0},
		{"green just above floor", color.NRGBA{G: 51, A: 255}, true, 1},
		{"green tied with red", color.NRGBA{R: 200, G: 200, A: 255}, false, 0},
		{"transparent green", color.NRGBA{G: 255, A: 0}, false, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := v.Validate(ctx, encodePNG(t, solid(16, 16, tt.c)))
			require.NoError(t, err)
			require.Equal(t, tt.passed, out.Passed)
			require.InDelta(t, tt.ratio, out.Ratio, 1e-9)
		})
	}
}

func TestGreenRatio_Boundary(t *testing.T) {
	// 100x100: ровно 15% зелёных не проходит
	exact := GreenRatio(withGreen(100, 100, 1500))
	require.InDelta(t, 0.15, exact, 1e-12)
	require.False(t, decide(exact).Passed)

	below := GreenRatio(withGreen(100, 100, 1499))
	require.False(t, decide(below).Passed)

	// 1000x1000: 15.0001% уже проходит
	above := GreenRatio(withGreen(1000, 1000, 150001))
	require.Greater(t, above, MinGreenRatio)
	require.True(t, decide(above).Passed)
}

func TestGreenRatio_RGBAAndPaletted(t *testing.T) {
	rgba := image.NewRGBA(image.Rect(0, 0, 10, 10))
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			if x < 5 {
				rgba.Set(x, y, color.RGBA{G: 200, A: 255})
			} else {
				rgba.Set(x, y, color.RGBA{B: 200, A: 255})
			}
		}
	}
	require.InDelta(t, 0.5, GreenRatio(rgba), 1e-9)

	pal := image.NewPaletted(image.Rect(0, 0, 4, 1), color.Palette{
		color.RGBA{R: 255, A: 255},
		color.RGBA{G: 255, A: 255},
	})
	pal.SetColorIndex(0, 0, 1)
	require.InDelta(t, 0.25, GreenRatio(pal), 1e-9)
}

func TestGreenRatioValidator_JPEG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, solid(32, 32, color.NRGBA{G: 255, A: 255}), &jpeg.Options{Quality: 90}))

	out, err := NewGreenRatioValidator().Validate(context.Background(), buf.Bytes())
	require.NoError(t, err)
	require.True(t, out.Passed)
}

func TestGreenRatioValidator_CorruptImage(t *testing.T) {
	out, err := NewGreenRatioValidator().Validate(context.Background(), []byte("definitely not an image"))
	require.NoError(t, err)
	require.False(t, out.Passed)
	require.Zero(t, out.Ratio)
}

func TestGreenRatio_Empty(t *testing.T) {
	require.Zero(t, GreenRatio(image.NewNRGBA(image.Rect(0, 0, 0, 0))))
}

func TestGreenRatioValidator_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewGreenRatioValidator().Validate(ctx, encodePNG(t, solid(4, 4, color.NRGBA{G: 255, A: 255})))
	require.ErrorIs(t, err, context.Canceled)
}
