package app

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"grape-bot/internal/domain/entity"
	"grape-bot/internal/domain/port"
	"grape-bot/internal/infrastructure/classifier"
	"grape-bot/internal/infrastructure/storage"
	"grape-bot/internal/infrastructure/vision"
)

type classifierFunc func(ctx context.Context, sel *entity.ImageSelection) (*entity.Prediction, error)

func (f classifierFunc) Classify(ctx context.Context, sel *entity.ImageSelection) (*entity.Prediction, error) {
	return f(ctx, sel)
}

type validatorFunc func(ctx context.Context, data []byte) (*entity.ValidationOutcome, error)

func (f validatorFunc) Validate(ctx context.Context, data []byte) (*entity.ValidationOutcome, error) {
	return f(ctx, data)
}

var blackRot = &entity.Prediction{
	Disease:          entity.DiseaseBlackRot,
	Confidence:       88.8,
	Severity:         entity.SeverityMild,
	Recommendations:  entity.Recommendations(entity.DiseaseBlackRot),
	TreatmentUrgency: entity.UrgencyLow,
}

func solidPNG(t *testing.T, c color.Color) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func greenLeaf(t *testing.T) *entity.ImageSelection {
	return entity.NewImageSelection("leaf.png", "image/png", solidPNG(t, color.NRGBA{G: 200, A: 255}))
}

func newScanService(c port.ClassificationProvider) *ScanService {
	users := NewUserService(storage.NewMemoryUserRepository())
	return NewScanService(users, vision.NewGreenRatioValidator(), c, nil, 0)
}

func fixed(p *entity.Prediction, err error) classifierFunc {
	return func(context.Context, *entity.ImageSelection) (*entity.Prediction, error) {
		return p, err
	}
}

func TestScanService_SelectGreenLeaf(t *testing.T) {
	svc := newScanService(fixed(blackRot, nil))

	user, err := svc.SelectFile(context.Background(), "1", 10, greenLeaf(t))
	require.NoError(t, err)
	require.True(t, user.State.Validated)
	require.Nil(t, user.State.Err)
	require.True(t, strings.HasPrefix(user.State.Preview, "data:image/png;base64,"))
}

func TestScanService_SelectNotALeaf(t *testing.T) {
	svc := newScanService(fixed(blackRot, nil))
	ctx := context.Background()

	red := entity.NewImageSelection("brick.png", "image/png", solidPNG(t, color.NRGBA{R: 200, A: 255}))
	user, err := svc.SelectFile(ctx, "1", 10, red)
	require.NoError(t, err)
	require.ErrorIs(t, user.State.Err, entity.ErrNotALeaf)
	require.False(t, user.State.Validated)

	_, err = svc.Analyze(ctx, "1", 10)
	require.ErrorIs(t, err, entity.ErrNotValidated)
}

func TestScanService_SelectRejected(t *testing.T) {
	svc := newScanService(fixed(blackRot, nil))
	ctx := context.Background()
	leaf := solidPNG(t, color.NRGBA{G: 200, A: 255})

	tests := []struct {
		name string
		sel  *entity.ImageSelection
		want *entity.ScanError
	}{
		{"pdf", entity.NewImageSelection("doc.pdf", "application/pdf", []byte("%PDF")), entity.ErrInvalidFileType},
		{"too large", &entity.ImageSelection{MIMEType: "image/png", Size: 10*1024*1024 + 1, Data: leaf}, entity.ErrFileTooLarge},
		{"exact limit", &entity.ImageSelection{MIMEType: "image/png", Size: 10 * 1024 * 1024, Data: leaf}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, err := svc.SelectFile(ctx, tt.name, 0, tt.sel)
			require.NoError(t, err)
			if tt.want == nil {
				require.Nil(t, user.State.Err)
				require.True(t, user.State.Validated)
				return
			}
			require.Equal(t, tt.want, user.State.Err)
			require.Nil(t, user.State.Selection)
			require.Empty(t, user.State.Preview)
		})
	}
}

func TestScanService_AnalyzeSuccess(t *testing.T) {
	svc := newScanService(fixed(blackRot, nil))
	ctx := context.Background()

	_, err := svc.SelectFile(ctx, "1", 10, greenLeaf(t))
	require.NoError(t, err)

	user, err := svc.Analyze(ctx, "1", 10)
	require.NoError(t, err)
	require.False(t, user.State.Loading)
	require.Nil(t, user.State.Err)
	require.Equal(t, blackRot, user.State.Prediction)
}

func TestScanService_AnalyzeInjectedFailures(t *testing.T) {
	for _, want := range []*entity.ScanError{entity.ErrServerRejected, entity.ErrUntrainedVariety} {
		svc := newScanService(fixed(nil, want))
		ctx := context.Background()

		_, err := svc.SelectFile(ctx, "1", 10, greenLeaf(t))
		require.NoError(t, err)

		user, err := svc.Analyze(ctx, "1", 10)
		require.NoError(t, err)
		require.False(t, user.State.Loading)
		require.Nil(t, user.State.Prediction)
		require.Equal(t, want, user.State.Err)
	}
}

func TestScanService_AnalyzeRecoversPanic(t *testing.T) {
	svc := newScanService(classifierFunc(func(context.Context, *entity.ImageSelection) (*entity.Prediction, error) {
		panic("model exploded")
	}))
	ctx := context.Background()

	_, err := svc.SelectFile(ctx, "1", 10, greenLeaf(t))
	require.NoError(t, err)

	user, err := svc.Analyze(ctx, "1", 10)
	require.NoError(t, err)
	require.False(t, user.State.Loading)
	require.ErrorIs(t, user.State.Err, entity.ErrUnexpected)
}

func TestScanService_AnalyzePlainError(t *testing.T) {
	svc := newScanService(fixed(nil, errors.New("socket closed")))
	ctx := context.Background()

	_, err := svc.SelectFile(ctx, "1", 10, greenLeaf(t))
	require.NoError(t, err)

	user, err := svc.Analyze(ctx, "1", 10)
	require.NoError(t, err)
	require.Equal(t, "An error occurred during analysis", user.State.Err.Error())
}

func TestScanService_NewSelectionClearsPrediction(t *testing.T) {
	svc := newScanService(fixed(blackRot, nil))
	ctx := context.Background()

	_, err := svc.SelectFile(ctx, "1", 10, greenLeaf(t))
	require.NoError(t, err)
	user, err := svc.Analyze(ctx, "1", 10)
	require.NoError(t, err)
	require.NotNil(t, user.State.Prediction)

	user, err = svc.SelectFile(ctx, "1", 10, greenLeaf(t))
	require.NoError(t, err)
	require.Nil(t, user.State.Prediction)
	require.Nil(t, user.State.Err)
}

func TestScanService_ClearDropsPendingResult(t *testing.T) {
	started := make(chan struct{})
	svc := newScanService(classifierFunc(func(ctx context.Context, _ *entity.ImageSelection) (*entity.Prediction, error) {
		close(started)
		<-ctx.Done()
		return blackRot, nil
	}))
	ctx := context.Background()

	_, err := svc.SelectFile(ctx, "1", 10, greenLeaf(t))
	require.NoError(t, err)

	type result struct {
		user *entity.User
		err  error
	}
	done := make(chan result, 1)
	go func() {
		user, err := svc.Analyze(ctx, "1", 10)
		done <- result{user, err}
	}()

	<-started
	cleared, err := svc.Clear(ctx, "1", 10)
	require.NoError(t, err)
	require.False(t, cleared.State.Loading)

	select {
	case res := <-done:
		require.NoError(t, res.err)
		user := res.user
		require.Nil(t, user.State.Prediction)
		require.Nil(t, user.State.Selection)
		require.False(t, user.State.Loading)
	case <-time.After(5 * time.Second):
		t.Fatal("analysis was not cancelled")
	}
}

func TestScanService_ResultAppliedAfterNavigation(t *testing.T) {
	release := make(chan struct{})
	svc := newScanService(classifierFunc(func(context.Context, *entity.ImageSelection) (*entity.Prediction, error) {
		<-release
		return blackRot, nil
	}))
	ctx := context.Background()

	_, err := svc.SelectFile(ctx, "1", 10, greenLeaf(t))
	require.NoError(t, err)

	user, ticket, err := svc.BeginScan(ctx, "1", 10)
	require.NoError(t, err)
	require.True(t, user.State.Loading)

	_, _, err = svc.BeginScan(ctx, "1", 10)
	require.ErrorIs(t, err, entity.ErrScanInProgress)

	_, err = svc.users.Navigate(ctx, "1", 10, entity.SectionFeatures)
	require.NoError(t, err)

	close(release)
	user, err = svc.CompleteScan(ctx, ticket)
	require.NoError(t, err)
	require.Equal(t, entity.SectionFeatures, user.State.Section)
	require.Equal(t, blackRot, user.State.Prediction)
	require.False(t, user.State.Loading)
}

func TestScanService_AnalyzeWithoutSelection(t *testing.T) {
	svc := newScanService(fixed(blackRot, nil))
	_, err := svc.Analyze(context.Background(), "1", 10)
	require.ErrorIs(t, err, entity.ErrNoSelection)
}

func TestScanService_ValidatorFailure(t *testing.T) {
	users := NewUserService(storage.NewMemoryUserRepository())
	failing := validatorFunc(func(context.Context, []byte) (*entity.ValidationOutcome, error) {
		return nil, errors.New("opencv missing")
	})
	svc := NewScanService(users, failing, fixed(blackRot, nil), nil, 0)

	user, err := svc.SelectFile(context.Background(), "1", 10, greenLeaf(t))
	require.NoError(t, err)
	require.False(t, user.State.Validated)
	require.ErrorIs(t, user.State.Err, entity.ErrUnexpected)
}

func TestScanService_MockClassifierAlwaysSettles(t *testing.T) {
	svc := newScanService(classifier.NewMockClassifier(classifier.WithDelay(0)))
	ctx := context.Background()

	for i := 0; i < 100; i++ {
		_, err := svc.SelectFile(ctx, "1", 10, greenLeaf(t))
		require.NoError(t, err)

		user, err := svc.Analyze(ctx, "1", 10)
		require.NoError(t, err)
		require.False(t, user.State.Loading)
		require.True(t, (user.State.Err == nil) != (user.State.Prediction == nil))
	}
}

func TestScanService_ScanOnce(t *testing.T) {
	svc := newScanService(fixed(blackRot, nil))
	ctx := context.Background()

	st, err := svc.ScanOnce(ctx, "once", greenLeaf(t))
	require.NoError(t, err)
	require.Equal(t, blackRot, st.Prediction)
	require.NotNil(t, st.Selection)

	user, err := svc.users.Get(ctx, "once", 0)
	require.NoError(t, err)
	require.Nil(t, user.State.Selection)

	st, err = svc.ScanOnce(ctx, "once", entity.NewImageSelection("a.txt", "text/plain", []byte("x")))
	require.NoError(t, err)
	require.Equal(t, entity.ErrInvalidFileType, st.Err)
	require.Nil(t, st.Prediction)
}
