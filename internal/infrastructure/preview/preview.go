package preview

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"

	"github.com/nfnt/resize"
)

// DefaultMaxSide наибольшая сторона миниатюры по умолчанию
const DefaultMaxSide = 256

// Thumbnail уменьшает изображение так, чтобы большая сторона не превышала maxSide,
// и кодирует его в JPEG. Маленькие изображения не увеличиваются.
func Thumbnail(imageData []byte, maxSide uint) ([]byte, error) {
	if maxSide == 0 {
		maxSide = DefaultMaxSide
	}

	img, _, err := image.Decode(bytes.NewReader(imageData))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	thumb := resize.Thumbnail(maxSide, maxSide, img, resize.Lanczos3)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, thumb, &jpeg.Options{Quality: 85}); err != nil {
		return nil, fmt.Errorf("encode thumbnail: %w", err)
	}

	return buf.Bytes(), nil
}
