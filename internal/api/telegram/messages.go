package telegram

import (
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"grape-bot/internal/domain/entity"
	"grape-bot/internal/pages"
)

const (
	btnHome     = "🏠 Home"
	btnFeatures = "✨ Features"
	btnScan     = "📸 Scan"
)

const (
	helpFormat = `ℹ️ How to use the bot:

1️⃣ Open 📸 Scan and send a photo of a grape leaf (or an image file up to %s)
2️⃣ The bot checks that the image looks like a grape leaf
3️⃣ Send /analyze and get the diagnosis with treatment recommendations

💡 Tips:
• Shoot in good light
• One leaf per photo, filling most of the frame
• Send as a file to skip Telegram compression

📋 Commands:
/start — home
/features — what the system can do
/scan — upload and analyze
/analyze — analyze the selected image
/clear — remove the selected image
/status — current state
/help — this message`

	msgValidated      = "✅ Image validated successfully\nGrape leaf detected - ready for analysis. Send /analyze."
	msgAnalyzing      = "⏳ Analyzing..."
	msgCleared        = "🗑 Selection cleared. Send a new photo to start over."
	msgUnknownCommand = "❓ Unknown command. Use /help for the list of commands."
	msgSendPhoto      = "📸 Please send a photo of a grape leaf or use the buttons below."
	msgNoSelection    = "📭 No image selected. Send a photo first."
	msgNotValidated   = "⚠️ The selected image did not pass validation. Send a clear photo of a grape leaf."
	msgInProgress     = "⏳ Analysis is already running, please wait."
	msgDownloadError  = "⚠️ Could not download the file. Please try again."
	msgInternalError  = "⚠️ Something went wrong. Please try again later."
)

func mainKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnHome),
			tgbotapi.NewKeyboardButton(btnFeatures),
			tgbotapi.NewKeyboardButton(btnScan),
		),
	)
	kb.ResizeKeyboard = true
	return kb
}

// sectionFromButton сопоставляет текст кнопки с разделом
func sectionFromButton(text string) (entity.Section, bool) {
	switch text {
	case btnHome:
		return entity.SectionHome, true
	case btnFeatures:
		return entity.SectionFeatures, true
	case btnScan:
		return entity.SectionScan, true
	}
	return "", false
}

func helpText(maxSize int64) string {
	return fmt.Sprintf(helpFormat, entity.FormatLimit(maxSize))
}

func scanPrompt(maxSize int64) string {
	return "📸 Send a photo of a grape leaf. " + entity.UploadHint(maxSize) + "."
}

// sectionText текст раздела для чата
func sectionText(section entity.Section, maxSize int64) string {
	text := pages.ForLimit(section, maxSize).Text()
	if section == entity.SectionScan {
		text += "\n\n" + scanPrompt(maxSize)
	}
	return text
}

// preconditionText ответ на /analyze, когда анализ запустить нельзя
func preconditionText(err error) string {
	switch {
	case errors.Is(err, entity.ErrNoSelection):
		return msgNoSelection
	case errors.Is(err, entity.ErrNotValidated):
		return msgNotValidated
	case errors.Is(err, entity.ErrScanInProgress):
		return msgInProgress
	}
	return msgInternalError
}

func scanErrorText(err *entity.ScanError) string {
	prefix := "❌ "
	switch err.Kind {
	case entity.KindNotALeaf, entity.KindUntrainedVariety:
		prefix = "⚠️ "
	}
	return prefix + err.Message
}

// statusText краткое описание состояния сессии
func statusText(st entity.State) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📍 Section: %s\n", st.Section)

	if st.Selection == nil {
		b.WriteString("📭 No image selected")
	} else {
		name := st.Selection.Name
		if name == "" {
			name = "image"
		}
		fmt.Fprintf(&b, "🖼 %s (%.2f MB)\n", name, st.Selection.SizeMB())
		switch {
		case st.Loading:
			b.WriteString(msgAnalyzing)
		case st.Prediction != nil:
			fmt.Fprintf(&b, "🔬 %s, %.1f%%", st.Prediction.Disease, st.Prediction.Confidence)
		case st.Validated:
			b.WriteString("✅ Validated, ready for analysis")
		default:
			b.WriteString("⚠️ Not validated")
		}
	}

	if st.Err != nil {
		b.WriteString("\n")
		b.WriteString(scanErrorText(st.Err))
	}
	return b.String()
}
