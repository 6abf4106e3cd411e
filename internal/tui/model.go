// Package tui is the interactive ask console for the persistent bot
// process.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"docqa/internal/domain"
)

// AskPort is the TUI-facing subset of the answer pipeline.
type AskPort interface {
	AnswerQuestion(ctx context.Context, question string) domain.Answer
}

type answerMsg struct {
	question string
	answer   domain.Answer
}

// Model is the Bubble Tea model for the ask console.
type Model struct {
	pipeline AskPort
	input    textinput.Model
	viewport viewport.Model
	status   string
	summary  string
	waiting  bool
	ready    bool
}

// New creates a new TUI model instance.
func New(pipeline AskPort, summary string) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask a question and press Enter"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	return Model{
		pipeline: pipeline,
		input:    ti,
		viewport: vp,
		summary:  summary,
		status:   "Ready. Ask away.",
	}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, rh := answerBoxStyle.GetFrameSize()
		_, qh := questionBoxStyle.GetFrameSize()
		reserved := 2 + 1 + qh + 1 // header + summary, status, input frame, spacer
		vh := msg.Height - reserved
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, vh-rh)
		return m, nil
	case answerMsg:
		m.waiting = false
		m.status = fmt.Sprintf("Answered (%s)", msg.answer.Outcome)
		m.viewport.SetContent(renderAnswer(msg.question, msg.answer))
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			question := strings.TrimSpace(m.input.Value())
			if question != "" && !m.waiting {
				m.waiting = true
				m.status = "Thinking..."
				m.input.SetValue("")
				return m, ask(m.pipeline, question)
			}
		case "up":
			m.viewport.LineUp(1)
			return m, nil
		case "down":
			m.viewport.LineDown(1)
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the console layout.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("Documentation Q&A")
	summary := summaryStyle.Render(m.summary)
	answer := answerBoxStyle.Render(m.viewport.View())
	input := questionBoxStyle.Render(m.input.View())
	status := statusStyle.Render(m.status)
	return header + "\n" + summary + "\n" + answer + "\n" + input + "\n" + status
}

func ask(pipeline AskPort, question string) tea.Cmd {
	return func() tea.Msg {
		return answerMsg{
			question: question,
			answer:   pipeline.AnswerQuestion(context.Background(), question),
		}
	}
}

func renderAnswer(question string, answer domain.Answer) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n\n", questionLabelStyle.Render("Q:"), question)
	b.WriteString(answer.Text)
	if len(answer.Matches) > 0 {
		b.WriteString("\n\n" + matchHeaderStyle.Render("Sources"))
		for _, match := range answer.Matches {
			fmt.Fprintf(&b, "\n  %s (%s)", match.Name, match.Type)
		}
	}
	return b.String()
}

var (
	answerBoxStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	questionBoxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	summaryStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	statusStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	questionLabelStyle = lipgloss.NewStyle().Bold(true)
	matchHeaderStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
)

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
