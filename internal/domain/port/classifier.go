package port

import (
	"context"

	"grape-bot/internal/domain/entity"
)

// ClassificationProvider интерфейс классификатора болезней листа
type ClassificationProvider interface {
	// Classify анализирует выбранное изображение и возвращает предсказание.
	// Ошибки сценария возвращаются как *entity.ScanError.
	Classify(ctx context.Context, selection *entity.ImageSelection) (*entity.Prediction, error)
}

// LeafValidator интерфейс предварительной проверки, что на фото лист
type LeafValidator interface {
	// Validate проверяет изображение. Ошибка означает сбой самого валидатора,
	// а не отрицательный результат проверки.
	Validate(ctx context.Context, imageData []byte) (*entity.ValidationOutcome, error)
}
