//go:build !gocv
// +build !gocv

package vision

import (
	"context"
	"errors"

	"grape-bot/internal/domain/entity"
	"grape-bot/internal/domain/port"
)

// ErrGoCVDisabled сборка без тега gocv
var ErrGoCVDisabled = errors.New("gocv build tag is not enabled")

// GoCVValidator заглушка без OpenCV.
type GoCVValidator struct{}

// NewGoCVValidator создаёт валидатор-заглушку (без OpenCV).
func NewGoCVValidator() *GoCVValidator {
	return &GoCVValidator{}
}

// Validate возвращает ошибку, если сборка без тега gocv.
func (v *GoCVValidator) Validate(ctx context.Context, imageData []byte) (*entity.ValidationOutcome, error) {
	_ = ctx
	_ = imageData
	return nil, ErrGoCVDisabled
}

var _ port.LeafValidator = (*GoCVValidator)(nil)
