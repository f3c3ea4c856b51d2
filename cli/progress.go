package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/yllada/mullvadctl/vpn"
)

var errConnectInterrupted = errors.New("connect interrupted")

// pollMsg carries one status poll from the controller into the program.
type pollMsg struct {
	attempt int
	status  vpn.ConnectionStatus
}

// connectResultMsg ends the program with Connect's outcome.
type connectResultMsg struct {
	connected bool
	err       error
}

// progressModel shows a spinner while Connect polls.
type progressModel struct {
	spinner  spinner.Model
	location vpn.Location
	attempts int
	attempt  int
	status   vpn.ConnectionStatus
	result   *connectResultMsg
	connect  func() (bool, error)
	color    bool
}

func newProgressModel(loc vpn.Location, attempts int, color bool, connect func() (bool, error)) progressModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	if color {
		s.Style = connectingStyle
	}
	return progressModel{
		spinner:  s,
		location: loc,
		attempts: attempts,
		connect:  connect,
		color:    color,
	}
}

func (m progressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.runConnect)
}

func (m progressModel) runConnect() tea.Msg {
	connected, err := m.connect()
	return connectResultMsg{connected: connected, err: err}
}

func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case pollMsg:
		m.attempt = msg.attempt
		m.status = msg.status
		return m, nil
	case connectResultMsg:
		m.result = &msg
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m progressModel) View() string {
	if m.result != nil {
		return ""
	}

	status := m.status.String()
	if m.color {
		status = statusStyle(m.status).Render(status)
	}
	return fmt.Sprintf("%s Connecting to %s  %s  (poll %d/%d)\n",
		m.spinner.View(), m.location, status, m.attempt, m.attempts)
}

// connectWithProgress runs Connect under a spinner drawn on w.
func (c *CLI) connectWithProgress(w io.Writer, loc vpn.Location) (bool, error) {
	model := newProgressModel(loc, c.controller.Config().PollAttempts, c.color, func() (bool, error) {
		return c.controller.Connect(loc)
	})

	p := tea.NewProgram(model, tea.WithOutput(w), tea.WithInput(nil))
	c.controller.SetPollObserver(func(attempt int, status vpn.ConnectionStatus) {
		p.Send(pollMsg{attempt: attempt, status: status})
	})
	defer c.controller.SetPollObserver(nil)

	final, err := p.Run()
	if err != nil {
		return false, fmt.Errorf("%w: %v", errConnectInterrupted, err)
	}

	result := final.(progressModel).result
	if result == nil {
		return false, errConnectInterrupted
	}
	return result.connected, result.err
}
