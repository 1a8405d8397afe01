package app

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"grape-bot/internal/domain/entity"
	"grape-bot/internal/domain/port"
)

// ScanTicket описывает запущенный анализ конкретного выбора.
type ScanTicket struct {
	UserID     string
	ChatID     int64
	Generation uint64
	Selection  *entity.ImageSelection
}

type inflightScan struct {
	generation uint64
	cancel     context.CancelFunc
}

type ScanService struct {
	users         *UserService
	validator     port.LeafValidator
	classifier    port.ClassificationProvider
	log           *zap.Logger
	maxUploadSize int64

	mu       sync.Mutex
	inflight map[string]inflightScan
}

// NewScanService создаёт сервис, который ведёт сценарий выбор → проверка → анализ.
func NewScanService(users *UserService, validator port.LeafValidator, classifier port.ClassificationProvider, log *zap.Logger, maxUploadSize int64) *ScanService {
	if log == nil {
		log = zap.NewNop()
	}
	if maxUploadSize <= 0 {
		maxUploadSize = entity.DefaultMaxUploadSize
	}
	return &ScanService{
		users:         users,
		validator:     validator,
		classifier:    classifier,
		log:           log,
		maxUploadSize: maxUploadSize,
		inflight:      make(map[string]inflightScan),
	}
}

// MaxUploadSize допустимый размер файла
func (s *ScanService) MaxUploadSize() int64 {
	return s.maxUploadSize
}

// SelectFile принимает новый файл: сбрасывает прошлый результат, проверяет тип,
// размер и эвристику. Ошибки сценария попадают в State, а не в error.
func (s *ScanService) SelectFile(ctx context.Context, userID string, chatID int64, sel *entity.ImageSelection) (*entity.User, error) {
	s.cancelScan(userID)

	if scanErr := entity.CheckUpload(sel, s.maxUploadSize); scanErr != nil {
		s.log.Info("upload rejected",
			zap.String("user", userID),
			zap.String("kind", string(scanErr.Kind)))
		return s.users.Dispatch(ctx, userID, chatID, entity.FileRejected{Err: scanErr})
	}

	user, err := s.users.Dispatch(ctx, userID, chatID, entity.FileSelected{
		Selection: sel,
		Preview:   sel.DataURI(),
	})
	if err != nil {
		return nil, err
	}

	action := entity.ValidationFinished{Generation: user.State.Generation}
	outcome, err := s.validate(ctx, sel)
	switch {
	case err != nil:
		s.log.Error("leaf validation failed", zap.String("user", userID), zap.Error(err))
		action.Err = entity.Unexpected(err)
	default:
		action.Passed = outcome.Passed
		s.log.Info("leaf validation finished",
			zap.String("user", userID),
			zap.String("file", sel.Name),
			zap.Int64("size", sel.Size),
			zap.Float64("green_ratio", outcome.Ratio),
			zap.Bool("passed", outcome.Passed))
	}

	return s.users.Dispatch(context.WithoutCancel(ctx), userID, chatID, action)
}

// BeginScan отмечает начало анализа. Возвращает entity.ErrNoSelection,
// entity.ErrNotValidated или entity.ErrScanInProgress, если анализ невозможен.
func (s *ScanService) BeginScan(ctx context.Context, userID string, chatID int64) (*entity.User, *ScanTicket, error) {
	var ticket *ScanTicket
	user, err := s.users.update(ctx, userID, chatID, func(u *entity.User) error {
		if err := u.State.CanScan(); err != nil {
			return err
		}
		u.Apply(entity.ScanStarted{})
		ticket = &ScanTicket{
			UserID:     u.ID,
			ChatID:     u.ChatID,
			Generation: u.State.Generation,
			Selection:  u.State.Selection,
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return user, ticket, nil
}

// CompleteScan запускает классификатор и сохраняет итог. Loading всегда
// сбрасывается, даже если классификатор вернул ошибку или запаниковал.
func (s *ScanService) CompleteScan(ctx context.Context, ticket *ScanTicket) (*entity.User, error) {
	if ticket == nil {
		return nil, errors.New("scan ticket is nil")
	}

	scanCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	s.track(ticket, cancel)
	defer s.untrack(ticket)

	prediction, err := s.classify(scanCtx, ticket.Selection)
	if err != nil {
		s.log.Info("analysis failed", zap.String("user", ticket.UserID), zap.Error(err))
	} else if prediction != nil {
		s.log.Info("analysis finished",
			zap.String("user", ticket.UserID),
			zap.String("disease", string(prediction.Disease)),
			zap.Float64("confidence", prediction.Confidence))
	}

	// Итог сохраняется даже при отменённом ctx, иначе Loading останется true.
	return s.users.Dispatch(context.WithoutCancel(ctx), ticket.UserID, ticket.ChatID, entity.ScanFinished{
		Generation: ticket.Generation,
		Prediction: prediction,
		Err:        err,
	})
}

// Analyze запускает анализ и ждёт результата.
func (s *ScanService) Analyze(ctx context.Context, userID string, chatID int64) (*entity.User, error) {
	_, ticket, err := s.BeginScan(ctx, userID, chatID)
	if err != nil {
		return nil, err
	}
	return s.CompleteScan(ctx, ticket)
}

// ScanOnce проводит выбор и анализ в отдельной сессии и возвращает итоговое
// состояние. После анализа сессия очищается.
func (s *ScanService) ScanOnce(ctx context.Context, sessionID string, sel *entity.ImageSelection) (entity.State, error) {
	user, err := s.SelectFile(ctx, sessionID, 0, sel)
	if err != nil {
		return entity.State{}, err
	}

	if user.State.CanScan() == nil {
		user, err = s.Analyze(ctx, sessionID, 0)
		if err != nil {
			return entity.State{}, err
		}
	}

	if _, err := s.Clear(context.WithoutCancel(ctx), sessionID, 0); err != nil {
		s.log.Warn("clear session failed", zap.String("user", sessionID), zap.Error(err))
	}
	return user.State, nil
}

// Clear убирает выбранный файл и отменяет незавершённый анализ.
func (s *ScanService) Clear(ctx context.Context, userID string, chatID int64) (*entity.User, error) {
	s.cancelScan(userID)
	return s.users.Dispatch(ctx, userID, chatID, entity.Cleared{})
}

func (s *ScanService) validate(ctx context.Context, sel *entity.ImageSelection) (*entity.ValidationOutcome, error) {
	if s.validator == nil {
		return nil, errors.New("validator is not configured")
	}
	outcome, err := s.validator.Validate(ctx, sel.Data)
	if err != nil {
		return nil, err
	}
	if outcome == nil {
		return nil, errors.New("validator returned no outcome")
	}
	return outcome, nil
}

func (s *ScanService) classify(ctx context.Context, sel *entity.ImageSelection) (prediction *entity.Prediction, err error) {
	if s.classifier == nil {
		return nil, errors.New("classifier is not configured")
	}

	defer func() {
		if r := recover(); r != nil {
			s.log.Error("classifier panicked", zap.Any("panic", r))
			prediction, err = nil, entity.Unexpected(fmt.Errorf("classifier panic: %v", r))
		}
	}()

	return s.classifier.Classify(ctx, sel)
}

func (s *ScanService) track(ticket *ScanTicket, cancel context.CancelFunc) {
	s.mu.Lock()
	s.inflight[ticket.UserID] = inflightScan{generation: ticket.Generation, cancel: cancel}
	s.mu.Unlock()
}

func (s *ScanService) untrack(ticket *ScanTicket) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cur, ok := s.inflight[ticket.UserID]; ok && cur.generation == ticket.Generation {
		delete(s.inflight, ticket.UserID)
	}
}

func (s *ScanService) cancelScan(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cur, ok := s.inflight[userID]; ok {
		cur.cancel()
		delete(s.inflight, userID)
	}
}
