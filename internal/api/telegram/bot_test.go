package telegram

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"sync"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	app "grape-bot/internal/application"
	"grape-bot/internal/container"
	"grape-bot/internal/domain/entity"
	"grape-bot/internal/infrastructure/report"
	"grape-bot/internal/infrastructure/storage"
	"grape-bot/internal/infrastructure/vision"
)

type fakeSender struct {
	mu   sync.Mutex
	sent []tgbotapi.Chattable
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, nil
}

// texts возвращает текст сообщений и подписи к фото
func (f *fakeSender) texts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, c := range f.sent {
		switch m := c.(type) {
		case tgbotapi.MessageConfig:
			out = append(out, m.Text)
		case tgbotapi.PhotoConfig:
			out = append(out, m.Caption)
		}
	}
	return out
}

func (f *fakeSender) last() string {
	texts := f.texts()
	if len(texts) == 0 {
		return ""
	}
	return texts[len(texts)-1]
}

type stubClassifier struct {
	prediction *entity.Prediction
	err        error
}

func (s stubClassifier) Classify(context.Context, *entity.ImageSelection) (*entity.Prediction, error) {
	return s.prediction, s.err
}

var downy = &entity.Prediction{
	Disease:          entity.DiseaseDownyMildew,
	Confidence:       82.4,
	Severity:         entity.SeverityMild,
	Recommendations:  entity.Recommendations(entity.DiseaseDownyMildew),
	TreatmentUrgency: entity.UrgencyLow,
}

func leafPNG(t *testing.T, c color.Color) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func newTestBot(t *testing.T, cls stubClassifier, files map[string][]byte) (*Bot, *fakeSender) {
	t.Helper()
	return newLimitedBot(t, cls, files, 0)
}

func newLimitedBot(t *testing.T, cls stubClassifier, files map[string][]byte, maxSize int64) (*Bot, *fakeSender) {
	t.Helper()
	users := app.NewUserService(storage.NewMemoryUserRepository())
	c := &container.Container{
		Log:         zap.NewNop(),
		UserService: users,
		ScanService: app.NewScanService(users, vision.NewGreenRatioValidator(), cls, nil, maxSize),
		Describer:   report.NewTextDescriber(),
	}
	out := &fakeSender{}
	b := newBot(out, c)
	b.download = func(fileID string) ([]byte, error) {
		data, ok := files[fileID]
		if !ok {
			return nil, errors.New("not found")
		}
		return data, nil
	}
	return b, out
}

func command(text string) *tgbotapi.Message {
	end := len(text)
	for i, r := range text {
		if r == ' ' {
			end = i
			break
		}
	}
	return &tgbotapi.Message{
		Text:     text,
		From:     &tgbotapi.User{ID: 7},
		Chat:     &tgbotapi.Chat{ID: 70},
		Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: end}},
	}
}

func photo(fileID string) *tgbotapi.Message {
	return &tgbotapi.Message{
		From:  &tgbotapi.User{ID: 7},
		Chat:  &tgbotapi.Chat{ID: 70},
		Photo: []tgbotapi.PhotoSize{{FileID: "small"}, {FileID: fileID}},
	}
}

func TestBot_Navigation(t *testing.T) {
	b, out := newTestBot(t, stubClassifier{prediction: downy}, nil)
	ctx := context.Background()

	b.handleMessage(ctx, command("/features"))
	require.Contains(t, out.last(), "Advanced Features for Professional Vineyard Management")

	b.handleMessage(ctx, &tgbotapi.Message{Text: btnScan, From: &tgbotapi.User{ID: 7}, Chat: &tgbotapi.Chat{ID: 70}})
	require.Contains(t, out.last(), scanPrompt(entity.DefaultMaxUploadSize))

	user, err := b.users.Get(ctx, "7", 70)
	require.NoError(t, err)
	require.Equal(t, entity.SectionScan, user.State.Section)

	b.handleMessage(ctx, command("/nope"))
	require.Equal(t, msgUnknownCommand, out.last())
}

func TestBot_PhotoThenAnalyze(t *testing.T) {
	files := map[string][]byte{"leaf": leafPNG(t, color.NRGBA{G: 190, A: 255})}
	b, out := newTestBot(t, stubClassifier{prediction: downy}, files)
	ctx := context.Background()

	b.handleMessage(ctx, photo("leaf"))
	require.Equal(t, msgValidated, out.last())

	b.handleMessage(ctx, command("/analyze"))
	b.wg.Wait()

	texts := out.texts()
	require.Contains(t, texts, msgAnalyzing)
	require.Contains(t, out.last(), "🦠 Downy Mildew detected")

	out.mu.Lock()
	_, isPhoto := out.sent[len(out.sent)-1].(tgbotapi.PhotoConfig)
	out.mu.Unlock()
	require.True(t, isPhoto)
}

func TestBot_NotALeaf(t *testing.T) {
	files := map[string][]byte{"brick": leafPNG(t, color.NRGBA{R: 190, A: 255})}
	b, out := newTestBot(t, stubClassifier{prediction: downy}, files)
	ctx := context.Background()

	b.handleMessage(ctx, photo("brick"))
	require.Equal(t, "⚠️ "+entity.ErrNotALeaf.Message, out.last())

	b.handleMessage(ctx, command("/analyze"))
	require.Equal(t, msgNotValidated, out.last())
}

func TestBot_AnalyzeFailure(t *testing.T) {
	files := map[string][]byte{"leaf": leafPNG(t, color.NRGBA{G: 190, A: 255})}
	b, out := newTestBot(t, stubClassifier{err: entity.ErrServerRejected}, files)
	ctx := context.Background()

	b.handleMessage(ctx, photo("leaf"))
	b.handleMessage(ctx, command("/analyze"))
	b.wg.Wait()

	require.Equal(t, "❌ "+entity.ErrServerRejected.Message, out.last())
}

func TestBot_DocumentRejected(t *testing.T) {
	b, out := newTestBot(t, stubClassifier{prediction: downy}, nil)
	ctx := context.Background()

	b.handleMessage(ctx, &tgbotapi.Message{
		From:     &tgbotapi.User{ID: 7},
		Chat:     &tgbotapi.Chat{ID: 70},
		Document: &tgbotapi.Document{FileID: "huge", FileName: "huge.png", MimeType: "image/png", FileSize: 11 * 1024 * 1024},
	})
	require.Equal(t, "❌ "+entity.ErrFileTooLarge.Message, out.last())

	b.handleMessage(ctx, &tgbotapi.Message{
		From:     &tgbotapi.User{ID: 7},
		Chat:     &tgbotapi.Chat{ID: 70},
		Document: &tgbotapi.Document{FileID: "missing", FileName: "a.png", MimeType: "image/png", FileSize: 10},
	})
	require.Equal(t, msgDownloadError, out.last())
}

func TestBot_ClearAndStatus(t *testing.T) {
	files := map[string][]byte{"leaf": leafPNG(t, color.NRGBA{G: 190, A: 255})}
	b, out := newTestBot(t, stubClassifier{prediction: downy}, files)
	ctx := context.Background()

	b.handleMessage(ctx, command("/analyze"))
	require.Equal(t, msgNoSelection, out.last())

	b.handleMessage(ctx, photo("leaf"))
	b.handleMessage(ctx, command("/status"))
	require.Contains(t, out.last(), "photo.jpg")
	require.Contains(t, out.last(), "Validated, ready for analysis")

	b.handleMessage(ctx, command("/clear"))
	require.Equal(t, msgCleared, out.last())

	b.handleMessage(ctx, command("/status"))
	require.Contains(t, out.last(), "No image selected")
}

func TestBot_TextsFollowUploadLimit(t *testing.T) {
	b, out := newLimitedBot(t, stubClassifier{prediction: downy}, nil, 2*1024*1024)
	ctx := context.Background()

	b.handleMessage(ctx, command("/help"))
	require.Contains(t, out.last(), "up to 2MB")

	b.handleMessage(ctx, command("/scan"))
	require.Contains(t, out.last(), "PNG, JPG, JPEG up to 2MB")
	require.NotContains(t, out.last(), "10MB")

	doc := &tgbotapi.Message{
		From:     &tgbotapi.User{ID: 7},
		Chat:     &tgbotapi.Chat{ID: 70},
		Document: &tgbotapi.Document{FileID: "big", FileName: "leaf.png", MimeType: "image/png", FileSize: 3 * 1024 * 1024},
	}
	b.handleMessage(ctx, doc)
	require.Equal(t, "❌ File size must be less than 2MB", out.last())
}

func TestBot_UploadHandledBeforeNextMessage(t *testing.T) {
	files := map[string][]byte{"leaf": leafPNG(t, color.NRGBA{G: 190, A: 255})}
	b, out := newTestBot(t, stubClassifier{prediction: downy}, files)
	ctx := context.Background()

	b.handleMessage(ctx, photo("leaf"))

	// Проверка листа уже завершена, когда handleMessage вернулся
	user, err := b.users.Get(ctx, "7", 70)
	require.NoError(t, err)
	require.True(t, user.State.Validated)
	require.Equal(t, msgValidated, out.last())

	b.handleMessage(ctx, command("/analyze"))
	b.wg.Wait()
	require.Contains(t, out.last(), string(entity.DiseaseDownyMildew))
}
