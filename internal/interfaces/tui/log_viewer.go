package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/opspanel/opspanel-cli/internal/infrastructure/streaming"
)

// scrollTolerance is how close to the bottom (in lines) still counts as "at
// the bottom" for stick-to-bottom purposes.
const scrollTolerance = 3

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	jumpStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Reverse(true)
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	dimStyle   = lipgloss.NewStyle().Faint(true)
)

// EventMsg delivers one piece of streamed log output to the viewer.
type EventMsg streaming.Event

// StreamClosedMsg tells the viewer the underlying socket died.
type StreamClosedMsg struct {
	Err error
}

// SwitchFunc retargets the underlying stream to a new topic.
type SwitchFunc func(topic string) error

// TopicSwitchedMsg reports the outcome of a topic switch.
type TopicSwitchedMsg struct {
	Topic string
	Err   error
}

// Model renders one live log stream: new output sticks to the bottom while
// the user is there, and a jump affordance appears when they scroll away.
type Model struct {
	topic  string
	events <-chan streaming.Event

	topics      []string
	current     int
	switchTopic SwitchFunc

	content     string
	lines       []string
	offset      int
	width       int
	height      int
	showJump    bool
	placeholder bool
	closedErr   error
	closed      bool
}

// NewModel creates a viewer for topic fed by events.
func NewModel(topic string, events <-chan streaming.Event) Model {
	return Model{
		topic:       topic,
		events:      events,
		placeholder: true,
		width:       80,
		height:      24,
	}
}

// NewMultiTopicModel creates a viewer that starts on topics[0] and cycles
// through the rest with tab. switchTopic retargets the stream before the
// surface clears for the new topic.
func NewMultiTopicModel(topics []string, events <-chan streaming.Event, switchTopic SwitchFunc) Model {
	m := NewModel(topics[0], events)
	m.topics = topics
	m.switchTopic = switchTopic
	return m
}

func (m Model) Init() tea.Cmd {
	return waitForEvent(m.events)
}

func waitForEvent(events <-chan streaming.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return StreamClosedMsg{}
		}
		return EventMsg(ev)
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.clampOffset()
		return m, nil

	case EventMsg:
		// Events buffered before a topic switch may still carry the old
		// topic; drop them instead of painting them on the new surface.
		if msg.Topic != m.topic {
			return m, waitForEvent(m.events)
		}
		if m.placeholder {
			m.placeholder = false
		}
		atBottom := m.atBottom()
		text := msg.Content
		if msg.IsError {
			text = errStyle.Render(text) + "\n"
		}
		m.append(text)
		if atBottom {
			m.offset = m.bottomOffset()
			m.showJump = false
		} else {
			m.showJump = true
		}
		return m, waitForEvent(m.events)

	case StreamClosedMsg:
		m.closed = true
		m.closedErr = msg.Err
		return m, nil

	case TopicSwitchedMsg:
		if msg.Err != nil {
			m.closed = true
			m.closedErr = msg.Err
			return m, nil
		}
		m.clear(msg.Topic)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "up", "k":
		m.scrollBy(-1)
	case "down", "j":
		m.scrollBy(1)
	case "pgup":
		m.scrollBy(-m.viewHeight())
	case "pgdown":
		m.scrollBy(m.viewHeight())
	case "home":
		m.offset = 0
	case "G", "end":
		m.offset = m.bottomOffset()
		m.showJump = false
	case "tab":
		if len(m.topics) > 1 {
			m.current = (m.current + 1) % len(m.topics)
			next := m.topics[m.current]
			fn := m.switchTopic
			return m, func() tea.Msg {
				return TopicSwitchedMsg{Topic: next, Err: fn(next)}
			}
		}
	}
	if m.atBottom() {
		m.showJump = false
	}
	return m, nil
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("log stream: " + m.topic))
	b.WriteString("\n")

	if m.placeholder {
		b.WriteString(dimStyle.Render("waiting for log output..."))
		b.WriteString("\n")
	} else {
		visible := m.visibleLines()
		b.WriteString(strings.Join(visible, "\n"))
		b.WriteString("\n")
	}

	switch {
	case m.closed:
		if m.closedErr != nil {
			b.WriteString(errStyle.Render("stream closed: " + m.closedErr.Error()))
		} else {
			b.WriteString(dimStyle.Render("stream closed"))
		}
	case m.showJump:
		b.WriteString(jumpStyle.Render(" new output below - press G "))
	default:
		hint := "q quit / G bottom"
		if len(m.topics) > 1 {
			hint += " / tab next topic"
		}
		b.WriteString(dimStyle.Render(hint))
	}
	return b.String()
}

func (m *Model) append(text string) {
	m.content += text
	m.lines = strings.Split(strings.TrimSuffix(m.content, "\n"), "\n")
}

// clear empties the surface for a freshly switched topic.
func (m *Model) clear(topic string) {
	m.topic = topic
	m.content = ""
	m.lines = nil
	m.offset = 0
	m.placeholder = true
	m.showJump = false
}

func (m *Model) viewHeight() int {
	h := m.height - 2 // title and footer rows
	if h < 1 {
		h = 1
	}
	return h
}

func (m *Model) atBottom() bool {
	return m.offset+m.viewHeight() >= len(m.lines)-scrollTolerance
}

func (m *Model) bottomOffset() int {
	off := len(m.lines) - m.viewHeight()
	if off < 0 {
		off = 0
	}
	return off
}

func (m *Model) scrollBy(delta int) {
	m.offset += delta
	m.clampOffset()
}

func (m *Model) clampOffset() {
	if m.offset > m.bottomOffset() {
		m.offset = m.bottomOffset()
	}
	if m.offset < 0 {
		m.offset = 0
	}
}

func (m *Model) visibleLines() []string {
	if len(m.lines) == 0 {
		return nil
	}
	end := m.offset + m.viewHeight()
	if end > len(m.lines) {
		end = len(m.lines)
	}
	return m.lines[m.offset:end]
}

// Offset exposes the scroll position for tests.
func (m *Model) Offset() int { return m.offset }

// ShowingJump reports whether the scroll-to-bottom affordance is visible.
func (m *Model) ShowingJump() bool { return m.showJump }

// Lines exposes the rendered lines for tests.
func (m *Model) Lines() []string { return m.lines }
