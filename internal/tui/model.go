// Package tui is a terminal chat client for the companion HTTP API.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/iammorganparry/companion/internal/models"
)

// Backend is the part of the API the chat client uses. *client.Client
// implements it.
type Backend interface {
	Chat(ctx context.Context, conversationID, characterID, message string) (*models.ChatResponse, error)
	Opening(ctx context.Context, sessionID string) (string, error)
	Conversations(ctx context.Context) ([]models.ConversationOverview, error)
	Messages(ctx context.Context, conversationID string, limit int) ([]models.Message, error)
}

// ViewMode represents the current view
type ViewMode int

const (
	ViewModeChat   ViewMode = iota // Transcript and input
	ViewModePicker                 // Conversation list
	ViewModeHelp                   // Help overlay
)

const (
	historyLimit   = 50
	requestTimeout = 90 * time.Second
)

type role int

const (
	roleUser role = iota
	roleCompanion
	roleSystem
	roleError
)

type entry struct {
	role role
	text string
	meta string
}

// Messages
type openingMsg struct {
	text string
	err  error
}

type replyMsg struct {
	resp *models.ChatResponse
	err  error
}

type conversationsMsg struct {
	list []models.ConversationOverview
	err  error
}

type historyMsg struct {
	conversationID string
	messages       []models.Message
	err            error
}

type spinnerTickMsg struct{}

// Spinner animation frames
var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Model is the root Bubble Tea model
type Model struct {
	width  int
	height int
	ready  bool

	viewMode ViewMode

	backend     Backend
	characterID string
	sessionID   string

	// Current conversation; empty until the first reply
	conversationID string
	persona        string
	entries        []entry

	input    textinput.Model
	viewport viewport.Model
	help     help.Model
	keys     KeyMap

	busy         bool
	busySince    time.Time
	spinnerIndex int

	conversations []models.ConversationOverview
	pickerIndex   int
}

// NewModel creates the chat client. characterID may be empty to use the
// server's default persona.
func NewModel(backend Backend, characterID string) Model {
	ti := textinput.New()
	ti.Placeholder = "Say something..."
	ti.Prompt = "❯ "
	ti.PromptStyle = InputPromptStyle
	ti.CharLimit = 4000
	ti.Width = 80 // updated on WindowSizeMsg
	ti.Focus()

	return Model{
		viewMode:    ViewModeChat,
		backend:     backend,
		characterID: characterID,
		sessionID:   uuid.NewString(),
		persona:     "Companion",
		input:       ti,
		help:        help.New(),
		keys:        DefaultKeyMap(),
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.openingCmd())
}

func (m Model) openingCmd() tea.Cmd {
	backend, sessionID := m.backend, m.sessionID
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		text, err := backend.Opening(ctx, sessionID)
		return openingMsg{text: text, err: err}
	}
}

func (m Model) sendCmd(message string) tea.Cmd {
	backend, conversationID, characterID := m.backend, m.conversationID, m.characterID
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		resp, err := backend.Chat(ctx, conversationID, characterID, message)
		return replyMsg{resp: resp, err: err}
	}
}

func (m Model) conversationsCmd() tea.Cmd {
	backend := m.backend
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		list, err := backend.Conversations(ctx)
		return conversationsMsg{list: list, err: err}
	}
}

func (m Model) historyCmd(conversationID string) tea.Cmd {
	backend := m.backend
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		msgs, err := backend.Messages(ctx, conversationID, historyLimit)
		return historyMsg{conversationID: conversationID, messages: msgs, err: err}
	}
}

func spinnerTickCmd() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(time.Time) tea.Msg {
		return spinnerTickMsg{}
	})
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true

		// header (1), input box (3), status bar (1), transcript border (2)
		m.viewport.Width = max(m.width-4, 10)
		m.viewport.Height = max(m.height-7, 1)
		m.input.Width = max(m.width-8, 10)
		m.help.Width = m.width
		m.refresh()
		return m, nil

	case spinnerTickMsg:
		if !m.busy {
			return m, nil
		}
		m.spinnerIndex++
		return m, spinnerTickCmd()

	case openingMsg:
		if msg.err != nil {
			m.push(entry{role: roleError, text: "Could not fetch a greeting: " + msg.err.Error()})
		} else {
			m.push(entry{role: roleCompanion, text: msg.text})
		}
		return m, nil

	case replyMsg:
		m.busy = false
		if msg.err != nil {
			m.push(entry{role: roleError, text: msg.err.Error()})
			return m, nil
		}
		m.conversationID = msg.resp.ConversationID
		m.persona = msg.resp.Persona
		m.push(entry{role: roleCompanion, text: msg.resp.Reply, meta: describeTurn(msg.resp.Intelligence)})
		return m, nil

	case conversationsMsg:
		m.busy = false
		if msg.err != nil {
			m.push(entry{role: roleError, text: msg.err.Error()})
			return m, nil
		}
		if len(msg.list) == 0 {
			m.push(entry{role: roleSystem, text: "No conversations yet."})
			return m, nil
		}
		m.conversations = msg.list
		m.pickerIndex = 0
		m.viewMode = ViewModePicker
		return m, nil

	case historyMsg:
		m.busy = false
		if msg.err != nil {
			m.push(entry{role: roleError, text: msg.err.Error()})
			return m, nil
		}
		m.conversationID = msg.conversationID
		m.entries = m.entries[:0]
		for _, cm := range msg.messages {
			r := roleCompanion
			if cm.IsUserMessage {
				r = roleUser
			}
			m.entries = append(m.entries, entry{role: r, text: cm.Content})
		}
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			return m, tea.Quit
		}
		switch m.viewMode {
		case ViewModeHelp:
			if key.Matches(msg, m.keys.Escape, m.keys.Help) {
				m.viewMode = ViewModeChat
			}
			return m, nil
		case ViewModePicker:
			return m.updatePicker(msg)
		}
		return m.updateChat(msg)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) updateChat(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Help):
		m.viewMode = ViewModeHelp
		return m, nil

	case key.Matches(msg, m.keys.New):
		if m.busy {
			return m, nil
		}
		m.conversationID = ""
		m.entries = nil
		m.refresh()
		return m, m.openingCmd()

	case key.Matches(msg, m.keys.Conversations):
		if m.busy {
			return m, nil
		}
		m.busy = true
		m.busySince = time.Now()
		return m, tea.Batch(m.conversationsCmd(), spinnerTickCmd())

	case key.Matches(msg, m.keys.PageUp, m.keys.PageDown):
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case key.Matches(msg, m.keys.End):
		m.viewport.GotoBottom()
		return m, nil

	case key.Matches(msg, m.keys.Send):
		text := strings.TrimSpace(m.input.Value())
		if text == "" || m.busy {
			return m, nil
		}
		m.input.Reset()
		m.push(entry{role: roleUser, text: text})
		m.busy = true
		m.busySince = time.Now()
		return m, tea.Batch(m.sendCmd(text), spinnerTickCmd())
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) updatePicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape):
		m.viewMode = ViewModeChat
	case key.Matches(msg, m.keys.Up):
		if m.pickerIndex > 0 {
			m.pickerIndex--
		}
	case key.Matches(msg, m.keys.Down):
		if m.pickerIndex < len(m.conversations)-1 {
			m.pickerIndex++
		}
	case key.Matches(msg, m.keys.Select):
		m.viewMode = ViewModeChat
		m.busy = true
		m.busySince = time.Now()
		return m, tea.Batch(m.historyCmd(m.conversations[m.pickerIndex].ID), spinnerTickCmd())
	}
	return m, nil
}

func (m *Model) push(e entry) {
	m.entries = append(m.entries, e)
	m.refresh()
}

func (m *Model) refresh() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.renderTranscript(m.viewport.Width))
	m.viewport.GotoBottom()
}

// describeTurn renders the signals that shaped a reply.
func describeTurn(in models.Intelligence) string {
	parts := []string{string(in.EmotionalState), strings.ReplaceAll(string(in.RelationshipStage), "_", " ")}
	if in.SemanticContextUsed {
		parts = append(parts, "recalled context")
	}
	if in.MemoryIntegration {
		parts = append(parts, "memory")
	}
	return strings.Join(parts, " · ")
}

// View renders the model
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	switch m.viewMode {
	case ViewModeHelp:
		return m.helpView()
	case ViewModePicker:
		return m.pickerView()
	default:
		return m.chatView()
	}
}

func (m Model) chatView() string {
	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		TranscriptStyle.Width(m.width-2).Render(m.viewport.View()),
		InputStyle.Width(m.width-4).Render(m.input.View()),
		m.renderStatusBar(),
	)
}

func (m Model) renderHeader() string {
	title := HeaderStyle.Render(strings.ToUpper(m.persona))
	sub := SubtitleStyle.Render("  your companion")
	if m.conversationID != "" {
		sub += SubtitleStyle.Render(" · " + truncate(m.conversationID, 8))
	}
	return lipgloss.NewStyle().PaddingLeft(1).Width(m.width).Render(title + sub)
}

func (m Model) renderTranscript(width int) string {
	if len(m.entries) == 0 {
		return DimStyle.Render("No messages yet.")
	}

	blocks := make([]string, 0, len(m.entries))
	for _, e := range m.entries {
		switch e.role {
		case roleUser:
			blocks = append(blocks, UserStyle.Width(width).Render(UserNameStyle.Render("You")+"\n"+e.text))
		case roleCompanion:
			block := CompanionStyle.Width(width).Render(CompanionNameStyle.Render(m.persona) + "\n" + e.text)
			if e.meta != "" {
				block += "\n" + MetaStyle.Render(e.meta)
			}
			blocks = append(blocks, block)
		case roleSystem:
			blocks = append(blocks, SystemTextStyle.Width(width).Render(e.text))
		case roleError:
			blocks = append(blocks, ErrorStyle.Width(width).Render("✗ "+e.text))
		}
	}
	return strings.Join(blocks, "\n\n")
}

func (m Model) renderStatusBar() string {
	var status string
	if m.busy {
		spinner := spinnerFrames[m.spinnerIndex%len(spinnerFrames)]
		status = StatusBusyStyle.Render(fmt.Sprintf("%s %s is typing… %ds", spinner, m.persona, int(time.Since(m.busySince).Seconds())))
	} else {
		status = StatusIdleStyle.Render("○ Ready")
	}
	return StatusBarStyle.Render(status + DimStyle.Render(" │ ") + m.help.ShortHelpView(m.keys.ShortHelp()))
}

func (m Model) pickerView() string {
	var b strings.Builder
	b.WriteString(HelpTitleStyle.Render("Conversations"))
	b.WriteString("\n\n")
	for i, c := range m.conversations {
		line := fmt.Sprintf("%s  %-20s %3d msgs  %s",
			c.Timestamp.Local().Format("Jan 02 15:04"),
			truncate(c.LastMessage, 20),
			c.MessageCount,
			c.EmotionalTone)
		if i == m.pickerIndex {
			b.WriteString(PickerSelectedStyle.Render("❯ " + line))
		} else {
			b.WriteString(PickerItemStyle.Render("  " + line))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(DimStyle.Render("enter open · esc back"))

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, PickerStyle.Render(b.String()))
}

func (m Model) helpView() string {
	full := m.help
	full.ShowAll = true
	content := HelpTitleStyle.Render("Keyboard Shortcuts") + "\n\n" +
		full.View(m.keys) + "\n\n" +
		DimStyle.Render("Press F1 or Esc to close")
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, HelpStyle.Render(content))
}

func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
