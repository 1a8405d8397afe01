package report

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"grape-bot/internal/domain/entity"
	"grape-bot/internal/domain/port"
)

// TextDescriber формирует текст результата для чата и терминала.
type TextDescriber struct{}

// NewTextDescriber создаёт описатель
func NewTextDescriber() *TextDescriber {
	return &TextDescriber{}
}

// Describe генерирует текстовое описание предсказания
func (d *TextDescriber) Describe(ctx context.Context, p *entity.Prediction) (*entity.Description, error) {
	_ = ctx
	if p == nil {
		return nil, errors.New("prediction is nil")
	}

	title := "🦠 " + string(p.Disease) + " detected"
	if p.IsHealthy() {
		title = "✅ Healthy leaf"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Disease: %s\n", p.Disease)
	fmt.Fprintf(&b, "Confidence: %.1f%%\n", p.Confidence)
	fmt.Fprintf(&b, "Severity: %s\n", p.Severity)
	fmt.Fprintf(&b, "Treatment urgency: %s (%s)\n", p.TreatmentUrgency, p.TreatmentUrgency.Advice())
	b.WriteString("\nRecommendations:\n")
	for _, rec := range p.Recommendations {
		fmt.Fprintf(&b, "• %s\n", rec)
	}

	return &entity.Description{
		Title: title,
		Text:  strings.TrimRight(b.String(), "\n"),
	}, nil
}

// Проверка реализации интерфейса
var _ port.PredictionDescriber = (*TextDescriber)(nil)
