package ui

import (
	"context"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	app "grape-bot/internal/application"
	"grape-bot/internal/domain/entity"
	"grape-bot/internal/infrastructure/storage"
)

// stateMsg новое состояние сессии
type stateMsg struct {
	user *entity.User
}

// scanStartedMsg анализ запущен, результат придёт отдельным stateMsg
type scanStartedMsg struct {
	user   *entity.User
	ticket *app.ScanTicket
}

// noticeMsg сообщение для строки статуса
type noticeMsg struct {
	text string
}

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func selectFileCmd(m *Model, path string) tea.Cmd {
	return func() tea.Msg {
		sel, err := storage.ReadImageFile(path, m.scans.MaxUploadSize())
		if err != nil {
			return noticeMsg{text: "Cannot open file: " + err.Error()}
		}
		user, err := m.scans.SelectFile(context.Background(), m.userID, 0, sel)
		if err != nil {
			return noticeMsg{text: err.Error()}
		}
		return stateMsg{user: user}
	}
}

// openFileCmd переходит в раздел Scan и выбирает файл одной командой,
// чтобы состояние с выбором пришло последним.
func openFileCmd(m *Model, path string) tea.Cmd {
	return func() tea.Msg {
		if _, err := m.users.Navigate(context.Background(), m.userID, 0, entity.SectionScan); err != nil {
			return noticeMsg{text: err.Error()}
		}
		return selectFileCmd(m, path)()
	}
}

func navigateCmd(m *Model, section entity.Section) tea.Cmd {
	return func() tea.Msg {
		user, err := m.users.Navigate(context.Background(), m.userID, 0, section)
		if err != nil {
			return noticeMsg{text: err.Error()}
		}
		return stateMsg{user: user}
	}
}

func beginScanCmd(m *Model) tea.Cmd {
	return func() tea.Msg {
		user, ticket, err := m.scans.BeginScan(context.Background(), m.userID, 0)
		if err != nil {
			return noticeMsg{text: capitalize(err.Error())}
		}
		return scanStartedMsg{user: user, ticket: ticket}
	}
}

func completeScanCmd(m *Model, ticket *app.ScanTicket) tea.Cmd {
	return func() tea.Msg {
		user, err := m.scans.CompleteScan(context.Background(), ticket)
		if err != nil {
			return noticeMsg{text: err.Error()}
		}
		return stateMsg{user: user}
	}
}

func clearCmd(m *Model) tea.Cmd {
	return func() tea.Msg {
		user, err := m.scans.Clear(context.Background(), m.userID, 0)
		if err != nil {
			return noticeMsg{text: err.Error()}
		}
		return stateMsg{user: user}
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
