package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	app "grape-bot/internal/application"
	"grape-bot/internal/domain/entity"
	"grape-bot/internal/pages"
)

var spinnerChars = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Model терминальный интерфейс сканера
type Model struct {
	users  *app.UserService
	scans  *app.ScanService
	userID string

	state    entity.State
	input    string // путь к файлу в разделе Scan
	initial  string // файл из аргументов командной строки
	notice   string
	frame    int
	width    int
	quitting bool
}

// NewModel создаёт модель. Если path не пуст, файл загружается при старте.
func NewModel(users *app.UserService, scans *app.ScanService, userID, path string) *Model {
	m := &Model{
		users:   users,
		scans:   scans,
		userID:  userID,
		state:   entity.InitialState(),
		initial: path,
	}
	if path != "" {
		m.state.Section = entity.SectionScan
		m.input = path
	}
	return m
}

// State последнее известное состояние сессии
func (m *Model) State() entity.State {
	return m.state
}

func (m *Model) Init() tea.Cmd {
	if m.initial == "" {
		return nil
	}
	return openFileCmd(m, m.initial)
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width

	case tea.KeyMsg:
		return m.handleKey(msg)

	case stateMsg:
		m.state = msg.user.State
		m.notice = ""

	case scanStartedMsg:
		m.state = msg.user.State
		m.notice = ""
		return m, tea.Batch(completeScanCmd(m, msg.ticket), tick())

	case noticeMsg:
		m.notice = msg.text

	case tickMsg:
		if m.state.Loading {
			m.frame = (m.frame + 1) % len(spinnerChars)
			return m, tick()
		}
	}

	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		m.quitting = true
		return m, tea.Quit
	case "tab":
		return m, navigateCmd(m, m.state.Section.Next())
	case "ctrl+r":
		return m, beginScanCmd(m)
	case "esc":
		m.input = ""
		return m, clearCmd(m)
	}

	// В разделе Scan ввод идёт в поле пути
	if m.state.Section == entity.SectionScan {
		switch msg.Type {
		case tea.KeyEnter:
			path := strings.TrimSpace(m.input)
			if path == "" {
				return m, nil
			}
			return m, selectFileCmd(m, path)
		case tea.KeyBackspace:
			if r := []rune(m.input); len(r) > 0 {
				m.input = string(r[:len(r)-1])
			}
		case tea.KeyRunes, tea.KeySpace:
			m.input += string(msg.Runes)
		}
		return m, nil
	}

	switch msg.String() {
	case "1":
		return m, navigateCmd(m, entity.SectionHome)
	case "2":
		return m, navigateCmd(m, entity.SectionFeatures)
	case "3":
		return m, navigateCmd(m, entity.SectionScan)
	case "q":
		m.quitting = true
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) View() string {
	if m.quitting {
		return successStyle.Render("Thanks for using GrapeCare! 🍇") + "\n"
	}

	var b strings.Builder
	b.WriteString(m.renderTabs())
	b.WriteString("\n\n")

	switch m.state.Section {
	case entity.SectionScan:
		b.WriteString(m.renderScan())
	default:
		b.WriteString(renderPage(pages.ForLimit(m.state.Section, m.scans.MaxUploadSize())))
	}

	if m.notice != "" {
		b.WriteString("\n\n")
		b.WriteString(warningStyle.Render(m.notice))
	}

	b.WriteString("\n\n")
	b.WriteString(mutedStyle.Render(m.helpLine()))
	b.WriteString("\n")
	return b.String()
}

func (m *Model) renderTabs() string {
	labels := map[entity.Section]string{
		entity.SectionHome:     "1 Home",
		entity.SectionFeatures: "2 Features",
		entity.SectionScan:     "3 Scan",
	}
	tabs := make([]string, 0, len(entity.Sections))
	for _, sec := range entity.Sections {
		style := tabStyle
		if sec == m.state.Section {
			style = activeTabStyle
		}
		tabs = append(tabs, style.Render(labels[sec]))
	}
	return titleStyle.Render("🍇 GrapeCare") + "  " + lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func renderPage(p pages.Page) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(p.Title))
	b.WriteString("\n")
	b.WriteString(p.Intro)

	if len(p.Stats) > 0 {
		stats := make([]string, 0, len(p.Stats))
		for _, s := range p.Stats {
			stats = append(stats, successStyle.Render(s.Value)+" "+mutedStyle.Render(s.Label))
		}
		b.WriteString("\n\n")
		b.WriteString(strings.Join(stats, "   "))
	}

	for _, block := range p.Blocks {
		b.WriteString("\n")
		b.WriteString(headingStyle.Render(block.Heading))
		if block.Text != "" {
			b.WriteString("\n")
			b.WriteString(mutedStyle.Render(block.Text))
		}
		for _, item := range block.Items {
			b.WriteString("\n  • ")
			b.WriteString(item)
		}
	}
	return b.String()
}

func (m *Model) renderScan() string {
	st := m.state
	p := pages.ForLimit(entity.SectionScan, m.scans.MaxUploadSize())

	var b strings.Builder
	b.WriteString(titleStyle.Render(p.Title))
	b.WriteString("\n")
	b.WriteString(p.Intro)
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Image path: %s█\n", m.input)
	b.WriteString(mutedStyle.Render(entity.UploadHint(m.scans.MaxUploadSize())))

	if sel := st.Selection; sel != nil {
		fmt.Fprintf(&b, "\n\n🖼 %s (%.2f MB)", sel.Name, sel.SizeMB())
		if st.Validated {
			b.WriteString("\n")
			b.WriteString(successStyle.Render("✅ Image validated successfully"))
			b.WriteString("\n")
			b.WriteString(mutedStyle.Render("Grape leaf detected - ready for analysis"))
		}
	}

	if st.Err != nil {
		title := "Validation Error"
		if st.Selection != nil && st.Validated {
			title = "Analysis Error"
		}
		b.WriteString("\n\n")
		b.WriteString(errorBoxStyle.Render(title + "\n" + st.Err.Message))
	}

	if st.Loading {
		b.WriteString("\n\n")
		b.WriteString(warningStyle.Render(spinnerChars[m.frame] + " Analyzing..."))
	}

	if st.Prediction != nil {
		b.WriteString("\n\n")
		b.WriteString(renderResult(st.Prediction))
	}
	return b.String()
}

func renderResult(p *entity.Prediction) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Analysis Results"))
	b.WriteString("\n\n")

	if p.IsHealthy() {
		b.WriteString(successStyle.Render("✅ " + string(p.Disease)))
	} else {
		b.WriteString(warningStyle.Render("🦠 " + string(p.Disease)))
	}
	fmt.Fprintf(&b, "\nConfidence: %.1f%%", p.Confidence)
	fmt.Fprintf(&b, "\nSeverity: %s", p.Severity)
	b.WriteString("\nTreatment Urgency: ")
	b.WriteString(urgencyStyle(string(p.TreatmentUrgency)).Render(string(p.TreatmentUrgency)))
	b.WriteString(" ")
	b.WriteString(mutedStyle.Render(p.TreatmentUrgency.Advice()))

	b.WriteString("\n\n")
	b.WriteString(headingStyle.UnsetMarginTop().Render("Treatment Recommendations"))
	for _, rec := range p.Recommendations {
		b.WriteString("\n  • ")
		b.WriteString(rec)
	}
	return cardStyle.Render(b.String())
}

func (m *Model) helpLine() string {
	if m.state.Section == entity.SectionScan {
		return "tab: next view • enter: load file • ctrl+r: analyze • esc: clear • ctrl+c: quit"
	}
	return "tab: next view • 1/2/3: jump • esc: clear • q: quit"
}
