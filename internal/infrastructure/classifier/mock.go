package classifier

import (
	"context"
	"math"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"

	"grape-bot/internal/domain/entity"
	"grape-bot/internal/domain/port"
)

const (
	DefaultDelay         = 2 * time.Second
	DefaultRejectRate    = 0.10 // «на фото нет листа винограда»
	DefaultUntrainedRate = 0.05 // «сорт не из обучающей выборки»
	DefaultMinConfidence = 75.0
	DefaultMaxConfidence = 100.0
)

// Random источник случайных чисел. *rand.Rand из math/rand/v2 подходит, но
// не потокобезопасен.
type Random interface {
	Float64() float64
	IntN(n int) int
}

// globalRandom использует потокобезопасные функции пакета math/rand/v2.
type globalRandom struct{}

func (globalRandom) Float64() float64 {
	return rand.Float64()
}

func (globalRandom) IntN(n int) int {
	return rand.IntN(n)
}

// MockClassifier заглушка вместо настоящей модели: содержимое изображения
// не используется, результат выбирается случайно после искусственной задержки.
type MockClassifier struct {
	Delay         time.Duration
	RejectRate    float64
	UntrainedRate float64
	MinConfidence float64
	MaxConfidence float64

	rnd Random
	log *zap.Logger
}

// Option настройка MockClassifier
type Option func(*MockClassifier)

// WithDelay задаёт искусственную задержку
func WithDelay(d time.Duration) Option {
	return func(c *MockClassifier) { c.Delay = d }
}

// WithRandom подменяет источник случайности
func WithRandom(r Random) Option {
	return func(c *MockClassifier) { c.rnd = r }
}

// WithLogger задаёт логгер
func WithLogger(log *zap.Logger) Option {
	return func(c *MockClassifier) { c.log = log }
}

// NewMockClassifier создаёт классификатор с параметрами по умолчанию.
func NewMockClassifier(opts ...Option) *MockClassifier {
	c := &MockClassifier{
		Delay:         DefaultDelay,
		RejectRate:    DefaultRejectRate,
		UntrainedRate: DefaultUntrainedRate,
		MinConfidence: DefaultMinConfidence,
		MaxConfidence: DefaultMaxConfidence,
		rnd:           globalRandom{},
		log:           zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Classify ждёт Delay и возвращает случайный результат или одну из внедрённых ошибок.
func (c *MockClassifier) Classify(ctx context.Context, selection *entity.ImageSelection) (*entity.Prediction, error) {
	if err := sleep(ctx, c.Delay); err != nil {
		return nil, err
	}

	draw := c.rnd.Float64()
	switch {
	case draw < c.RejectRate:
		c.log.Debug("mock classifier: injected rejection", zap.Float64("draw", draw))
		return nil, entity.ErrServerRejected
	case draw < c.RejectRate+c.UntrainedRate:
		c.log.Debug("mock classifier: injected untrained variety", zap.Float64("draw", draw))
		return nil, entity.ErrUntrainedVariety
	}

	disease := entity.Diseases[c.rnd.IntN(len(entity.Diseases))]
	prediction := &entity.Prediction{
		Disease:          disease,
		Confidence:       c.confidence(),
		Severity:         entity.SeverityNone,
		Recommendations:  entity.Recommendations(disease),
		TreatmentUrgency: entity.UrgencyNone,
	}
	if disease != entity.DiseaseHealthy {
		prediction.Severity = entity.Severities[c.rnd.IntN(len(entity.Severities))]
		prediction.TreatmentUrgency = entity.Urgencies[c.rnd.IntN(len(entity.Urgencies))]
	}

	var size int64
	if selection != nil {
		size = selection.Size
	}
	c.log.Debug("mock classifier: prediction",
		zap.String("disease", string(prediction.Disease)),
		zap.Float64("confidence", prediction.Confidence),
		zap.Int64("size", size))

	return prediction, nil
}

// confidence равномерно в [MinConfidence, MaxConfidence), один знак после запятой.
func (c *MockClassifier) confidence() float64 {
	v := c.MinConfidence + c.rnd.Float64()*(c.MaxConfidence-c.MinConfidence)
	return math.Round(v*10) / 10
}

// sleep ждёт d или отмены контекста.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Проверка реализации интерфейса
var _ port.ClassificationProvider = (*MockClassifier)(nil)
