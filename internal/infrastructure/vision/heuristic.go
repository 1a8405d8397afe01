package vision

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"grape-bot/internal/domain/entity"
	"grape-bot/internal/domain/port"
)

const (
	// GreenFloor минимальное значение зелёного канала для «листового» пикселя
	GreenFloor = 50
	// MinGreenRatio доля зелёных пикселей, которую нужно строго превысить
	MinGreenRatio = 0.15
)

// isGreenDominant зелёный канал больше красного и синего и ярче порога.
func isGreenDominant(r, g, b uint8) bool {
	return g > r && g > b && g > GreenFloor
}

// decide превращает долю зелёных пикселей в итог проверки.
func decide(ratio float64) *entity.ValidationOutcome {
	out := &entity.ValidationOutcome{Ratio: ratio, Passed: ratio > MinGreenRatio}
	if !out.Passed {
		out.Reason = fmt.Sprintf("green ratio %.4f is not above %.2f", ratio, MinGreenRatio)
	}
	return out
}

// GreenRatioValidator проверяет изображение по доле пикселей с преобладанием зелёного.
type GreenRatioValidator struct{}

// NewGreenRatioValidator создаёт валидатор на стандартных декодерах (PNG, JPEG, GIF).
func NewGreenRatioValidator() *GreenRatioValidator {
	return &GreenRatioValidator{}
}

// Validate декодирует изображение и считает долю зелёных пикселей.
// Ошибка декодирования означает отрицательный результат без подробностей.
func (v *GreenRatioValidator) Validate(ctx context.Context, imageData []byte) (*entity.ValidationOutcome, error) {
	img, _, err := image.Decode(bytes.NewReader(imageData))
	if err != nil {
		return &entity.ValidationOutcome{Reason: "image could not be decoded"}, nil
	}

	ratio, err := greenRatio(ctx, img)
	if err != nil {
		return nil, err
	}
	return decide(ratio), nil
}

// GreenRatio доля пикселей с преобладанием зелёного. Для пустого изображения 0.
func GreenRatio(img image.Image) float64 {
	ratio, _ := greenRatio(context.Background(), img)
	return ratio
}

func greenRatio(ctx context.Context, img image.Image) (float64, error) {
	b := img.Bounds()
	total := b.Dx() * b.Dy()
	if total <= 0 {
		return 0, nil
	}

	green := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		if (y-b.Min.Y)%256 == 0 {
			if err := ctx.Err(); err != nil {
				return 0, err
			}
		}
		green += countRow(img, y, b.Min.X, b.Max.X)
	}

	return float64(green) / float64(total), nil
}

// countRow считает зелёные пиксели в строке. Для частых форматов без
// промежуточного color.Color.
func countRow(img image.Image, y, x0, x1 int) int {
	n := 0
	switch m := img.(type) {
	case *image.NRGBA:
		off := m.PixOffset(x0, y)
		for x := x0; x < x1; x, off = x+1, off+4 {
			p := m.Pix[off : off+4 : off+4]
			if p[3] != 0 && isGreenDominant(p[0], p[1], p[2]) {
				n++
			}
		}
	case *image.YCbCr:
		for x := x0; x < x1; x++ {
			yi := m.YOffset(x, y)
			ci := m.COffset(x, y)
			r, g, bl := color.YCbCrToRGB(m.Y[yi], m.Cb[ci], m.Cr[ci])
			if isGreenDominant(r, g, bl) {
				n++
			}
		}
	default:
		for x := x0; x < x1; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			if c.A != 0 && isGreenDominant(c.R, c.G, c.B) {
				n++
			}
		}
	}
	return n
}

// Проверка реализации интерфейса
var _ port.LeafValidator = (*GreenRatioValidator)(nil)
