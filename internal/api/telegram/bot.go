package telegram

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	app "grape-bot/internal/application"
	"grape-bot/internal/container"
	"grape-bot/internal/domain/entity"
	"grape-bot/internal/domain/port"
	"grape-bot/internal/infrastructure/preview"
)

// sender отправляет сообщения в Telegram
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Bot представляет Telegram-бота
type Bot struct {
	api       *tgbotapi.BotAPI
	out       sender
	download  func(fileID string) ([]byte, error)
	users     *app.UserService
	scans     *app.ScanService
	describer port.PredictionDescriber
	maxSide   uint
	log       *zap.Logger

	wg sync.WaitGroup
}

// NewBot создаёт нового бота
func NewBot(token string, c *container.Container) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}

	b := newBot(api, c)
	b.api = api
	b.download = b.downloadFile
	b.log.Info("authorized", zap.String("account", api.Self.UserName))

	return b, nil
}

func newBot(out sender, c *container.Container) *Bot {
	var maxSide uint
	if c.Config != nil {
		maxSide = c.Config.Scan.PreviewMaxSide
	}
	return &Bot{
		out:       out,
		users:     c.UserService,
		scans:     c.ScanService,
		describer: c.Describer,
		maxSide:   maxSide,
		log:       c.Log.Named("telegram"),
	}
}

// Run запускает основной цикл обработки сообщений и ждёт
// завершения начатых анализов после отмены ctx.
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	defer b.wg.Wait()

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil {
				continue
			}
			// Загрузка выполняется здесь же, в фоне идёт только анализ
			b.handleMessage(ctx, update.Message)
		}
	}
}

// handleMessage обрабатывает входящее сообщение
func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil || msg.Chat == nil {
		return
	}
	userID := strconv.FormatInt(msg.From.ID, 10)

	// Обработка команд
	if msg.IsCommand() {
		b.handleCommand(ctx, msg, userID)
		return
	}

	// Обработка фото и файлов
	if len(msg.Photo) > 0 || msg.Document != nil {
		b.handleUpload(ctx, msg, userID)
		return
	}

	// Кнопки навигации
	if section, ok := sectionFromButton(msg.Text); ok {
		b.navigate(ctx, msg.Chat.ID, userID, section)
		return
	}

	b.sendMessage(msg.Chat.ID, msgSendPhoto)
}

// handleCommand обрабатывает команды бота
func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message, userID string) {
	chatID := msg.Chat.ID

	switch msg.Command() {
	case "start":
		b.navigate(ctx, chatID, userID, entity.SectionHome)

	case "features":
		b.navigate(ctx, chatID, userID, entity.SectionFeatures)

	case "scan":
		b.navigate(ctx, chatID, userID, entity.SectionScan)

	case "help":
		b.sendMessage(chatID, helpText(b.scans.MaxUploadSize()))

	case "analyze":
		b.handleAnalyze(ctx, chatID, userID)

	case "clear":
		if _, err := b.scans.Clear(ctx, userID, chatID); err != nil {
			b.log.Error("clear failed", zap.String("user", userID), zap.Error(err))
			b.sendMessage(chatID, msgInternalError)
			return
		}
		b.sendMessage(chatID, msgCleared)

	case "status":
		user, err := b.users.Get(ctx, userID, chatID)
		if err != nil {
			b.log.Error("get user failed", zap.String("user", userID), zap.Error(err))
			b.sendMessage(chatID, msgInternalError)
			return
		}
		b.sendMessage(chatID, statusText(user.State))

	default:
		b.sendMessage(chatID, msgUnknownCommand)
	}
}

func (b *Bot) navigate(ctx context.Context, chatID int64, userID string, section entity.Section) {
	if _, err := b.users.Navigate(ctx, userID, chatID, section); err != nil {
		b.log.Error("navigate failed", zap.String("user", userID), zap.Error(err))
		b.sendMessage(chatID, msgInternalError)
		return
	}

	reply := tgbotapi.NewMessage(chatID, sectionText(section, b.scans.MaxUploadSize()))
	reply.ReplyMarkup = mainKeyboard()
	b.send(reply)
}

// handleUpload принимает фото или файл как новый выбор
func (b *Bot) handleUpload(ctx context.Context, msg *tgbotapi.Message, userID string) {
	chatID := msg.Chat.ID
	sel, err := b.fetchSelection(msg)
	if err != nil {
		b.log.Error("download failed", zap.String("user", userID), zap.Error(err))
		b.sendMessage(chatID, msgDownloadError)
		return
	}

	if _, err := b.users.Navigate(ctx, userID, chatID, entity.SectionScan); err != nil {
		b.log.Error("navigate failed", zap.String("user", userID), zap.Error(err))
	}

	user, err := b.scans.SelectFile(ctx, userID, chatID, sel)
	if err != nil {
		b.log.Error("select file failed", zap.String("user", userID), zap.Error(err))
		b.sendMessage(chatID, msgInternalError)
		return
	}

	if user.State.Err != nil {
		b.sendMessage(chatID, scanErrorText(user.State.Err))
		return
	}
	b.sendMessage(chatID, msgValidated)
}

// fetchSelection скачивает вложение. Слишком большие документы не скачиваются:
// выбор создаётся только с заявленным размером и будет отклонён проверкой.
func (b *Bot) fetchSelection(msg *tgbotapi.Message) (*entity.ImageSelection, error) {
	if msg.Document != nil {
		doc := msg.Document
		if int64(doc.FileSize) > b.scans.MaxUploadSize() {
			return &entity.ImageSelection{
				Name:     doc.FileName,
				MIMEType: doc.MimeType,
				Size:     int64(doc.FileSize),
			}, nil
		}
		data, err := b.download(doc.FileID)
		if err != nil {
			return nil, err
		}
		return entity.NewImageSelection(doc.FileName, doc.MimeType, data), nil
	}

	// Получаем фото с максимальным разрешением
	photo := msg.Photo[len(msg.Photo)-1]
	data, err := b.download(photo.FileID)
	if err != nil {
		return nil, err
	}
	return entity.NewImageSelection("photo.jpg", "image/jpeg", data), nil
}

// handleAnalyze запускает анализ в фоне и отвечает, когда он завершится
func (b *Bot) handleAnalyze(ctx context.Context, chatID int64, userID string) {
	_, ticket, err := b.scans.BeginScan(ctx, userID, chatID)
	if err != nil {
		b.sendMessage(chatID, preconditionText(err))
		return
	}

	b.sendMessage(chatID, msgAnalyzing)

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()

		user, err := b.scans.CompleteScan(ctx, ticket)
		if err != nil {
			b.log.Error("analysis failed", zap.String("user", userID), zap.Error(err))
			b.sendMessage(chatID, msgInternalError)
			return
		}
		// Выбор заменён или очищен, результат уже не нужен
		if user.State.Generation != ticket.Generation {
			return
		}
		b.sendResult(ctx, chatID, ticket.Selection, user.State)
	}()
}

func (b *Bot) sendResult(ctx context.Context, chatID int64, sel *entity.ImageSelection, st entity.State) {
	if st.Err != nil {
		b.sendMessage(chatID, scanErrorText(st.Err))
		return
	}
	if st.Prediction == nil {
		return
	}

	desc, err := b.describer.Describe(ctx, st.Prediction)
	if err != nil {
		b.log.Error("describe failed", zap.Error(err))
		b.sendMessage(chatID, msgInternalError)
		return
	}
	text := desc.Title + "\n\n" + desc.Text

	thumb, err := preview.Thumbnail(sel.Data, b.maxSide)
	if err != nil {
		b.log.Warn("thumbnail failed", zap.Error(err))
		b.sendMessage(chatID, text)
		return
	}

	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{Name: "leaf.jpg", Bytes: thumb})
	photo.Caption = text
	b.send(photo)
}

// downloadFile скачивает файл из Telegram
func (b *Bot) downloadFile(fileID string) ([]byte, error) {
	file, err := b.api.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return nil, fmt.Errorf("get file: %w", err)
	}

	fileURL := file.Link(b.api.Token)

	resp, err := http.Get(fileURL)
	if err != nil {
		return nil, fmt.Errorf("download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download file: unexpected status %s", resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, b.scans.MaxUploadSize()+1))
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	return data, nil
}

// sendMessage отправляет текстовое сообщение
func (b *Bot) sendMessage(chatID int64, text string) {
	b.send(tgbotapi.NewMessage(chatID, text))
}

func (b *Bot) send(c tgbotapi.Chattable) {
	if _, err := b.out.Send(c); err != nil {
		b.log.Error("send failed", zap.Error(err))
	}
}
