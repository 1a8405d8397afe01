package port

import (
	"context"

	"grape-bot/internal/domain/entity"
)

// PredictionDescriber интерфейс описателя результата
type PredictionDescriber interface {
	// Describe генерирует текстовое описание предсказания
	Describe(ctx context.Context, prediction *entity.Prediction) (*entity.Description, error)
}
