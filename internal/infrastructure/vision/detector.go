//go:build gocv
// +build gocv

package vision

import (
	"context"
	"errors"

	"gocv.io/x/gocv"

	"grape-bot/internal/domain/entity"
	"grape-bot/internal/domain/port"
)

// GoCVValidator считает ту же долю зелёных пикселей масками OpenCV.
type GoCVValidator struct{}

// NewGoCVValidator создаёт валидатор на OpenCV.
func NewGoCVValidator() *GoCVValidator {
	return &GoCVValidator{}
}

// Validate запускает проверку изображения.
func (v *GoCVValidator) Validate(ctx context.Context, imageData []byte) (*entity.ValidationOutcome, error) {
	mat, err := decodeToMat(imageData)
	if err != nil {
		return &entity.ValidationOutcome{Reason: "image could not be decoded"}, nil
	}
	defer mat.Close()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return decide(greenRatioMat(mat)), nil
}

// greenRatioMat строит маску g > r && g > b && g > GreenFloor и считает её долю.
func greenRatioMat(mat gocv.Mat) float64 {
	channels := gocv.Split(mat)
	for i := range channels {
		defer channels[i].Close()
	}
	if len(channels) < 3 {
		return 0
	}
	// OpenCV хранит каналы в порядке BGR
	blue, green, red := channels[0], channels[1], channels[2]

	overRed := gocv.NewMat()
	defer overRed.Close()
	gocv.Compare(green, red, &overRed, gocv.CompareGT)

	overBlue := gocv.NewMat()
	defer overBlue.Close()
	gocv.Compare(green, blue, &overBlue, gocv.CompareGT)

	bright := gocv.NewMat()
	defer bright.Close()
	gocv.Threshold(green, &bright, GreenFloor, 255, gocv.ThresholdBinary)

	dominant := gocv.NewMat()
	defer dominant.Close()
	gocv.BitwiseAnd(overRed, overBlue, &dominant)

	mask := gocv.NewMat()
	defer mask.Close()
	gocv.BitwiseAnd(dominant, bright, &mask)

	return ratioOfMask(mask)
}

// decodeToMat превращает байты изображения в gocv.Mat.
func decodeToMat(imageData []byte) (gocv.Mat, error) {
	mat, err := gocv.IMDecode(imageData, gocv.IMReadColor)
	if err == nil && !mat.Empty() {
		return mat, nil
	}
	if !mat.Empty() {
		mat.Close()
	}
	return gocv.NewMat(), errors.New("failed to decode image")
}

func ratioOfMask(mask gocv.Mat) float64 {
	total := mask.Cols() * mask.Rows()
	if total <= 0 {
		return 0
	}
	return float64(gocv.CountNonZero(mask)) / float64(total)
}

// Проверка реализации интерфейса
var _ port.LeafValidator = (*GoCVValidator)(nil)
