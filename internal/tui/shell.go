package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/idilsaglam/oadesk/internal/api"
	"github.com/idilsaglam/oadesk/internal/model"
)

const sidebarWidth = 22

// NavigateMsg asks the shell to show another view. Children never switch
// views themselves; they return navigate(...) as a command.
type NavigateMsg struct {
	To model.ViewID
}

func navigate(to model.ViewID) tea.Cmd {
	return func() tea.Msg { return NavigateMsg{To: to} }
}

// mount is handed to a view when it becomes active. ctx is cancelled and
// gen goes stale as soon as the view is switched away.
type mount struct {
	ctx context.Context
	gen int
}

// tag marks an async result with the mount that issued it.
type tag struct{ gen int }

func (t tag) mountGen() int { return t.gen }

type mountedMsg interface{ mountGen() int }

// view is one screen rendered inside the shell.
type view interface {
	Init() tea.Cmd
	Update(msg tea.Msg) (view, tea.Cmd)
	View() string
	// Typing reports whether printable keys belong to a focused input.
	Typing() bool
}

type shellKeys struct {
	Next, Prev, Quit, ForceQuit key.Binding
	Jump                        []key.Binding
}

var keys = shellKeys{
	Next:      key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next view")),
	Prev:      key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev view")),
	Quit:      key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
	ForceQuit: key.NewBinding(key.WithKeys("ctrl+c")),
	Jump: []key.Binding{
		key.NewBinding(key.WithKeys("f1")),
		key.NewBinding(key.WithKeys("f2")),
		key.NewBinding(key.WithKeys("f3")),
		key.NewBinding(key.WithKeys("f4")),
	},
}

// Shell owns the active view and is the only place it changes.
type Shell struct {
	client api.Client
	logger *zap.Logger

	active model.ViewID
	view   view
	gen    int
	cancel context.CancelFunc

	width, height int
}

// NewShell returns a shell showing the dashboard.
func NewShell(client api.Client, logger *zap.Logger) Shell {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := Shell{client: client, logger: logger, width: 100, height: 30}
	s, _ = s.activate(model.ViewDashboard)
	return s
}

// ActiveView reports the view currently displayed.
func (s Shell) ActiveView() model.ViewID { return s.active }

func (s Shell) Init() tea.Cmd { return s.view.Init() }

func (s Shell) contentSize() (int, int) {
	w := s.width - sidebarWidth - 3
	h := s.height - 2
	if w < 20 {
		w = 20
	}
	if h < 5 {
		h = 5
	}
	return w, h
}

// activate unmounts the current view and mounts a fresh one for v.
// Re-selecting the active view is a no-op.
func (s Shell) activate(v model.ViewID) (Shell, tea.Cmd) {
	if s.view != nil && v == s.active {
		return s, nil
	}
	if s.cancel != nil {
		s.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.gen++
	m := mount{ctx: ctx, gen: s.gen}
	w, h := s.contentSize()

	switch v {
	case model.ViewTodos:
		s.view = newTodosView(m, s.client, s.logger, w, h)
	case model.ViewAnnouncements:
		s.view = newAnnouncementsView(m, s.client, s.logger, w, h)
	case model.ViewAIAssistant:
		s.view = newAssistantView(m, s.client, s.logger, w, h)
	default:
		v = model.ViewDashboard
		s.view = newDashboardView(w, h)
	}
	s.active = v
	s.logger.Debug("view mounted", zap.String("view", string(v)), zap.Int("gen", s.gen))
	return s, s.view.Init()
}

// Close cancels any request still owned by the active view.
func (s Shell) Close() {
	if s.cancel != nil {
		s.cancel()
	}
}

func (s Shell) step(delta int) (Shell, tea.Cmd) {
	idx := 0
	for i, v := range model.Views {
		if v == s.active {
			idx = i
		}
	}
	n := len(model.Views)
	return s.activate(model.Views[(idx+delta+n)%n])
}

func (s Shell) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.ForceQuit):
			s.Close()
			return s, tea.Quit
		case key.Matches(msg, keys.Next):
			return s.step(1)
		case key.Matches(msg, keys.Prev):
			return s.step(-1)
		case key.Matches(msg, keys.Quit) && !s.view.Typing():
			s.Close()
			return s, tea.Quit
		}
		for i, b := range keys.Jump {
			if key.Matches(msg, b) {
				return s.activate(model.Views[i])
			}
		}

	case NavigateMsg:
		return s.activate(msg.To)

	case tea.WindowSizeMsg:
		s.width, s.height = msg.Width, msg.Height
		w, h := s.contentSize()
		var cmd tea.Cmd
		s.view, cmd = s.view.Update(tea.WindowSizeMsg{Width: w, Height: h})
		return s, cmd

	case mountedMsg:
		if msg.mountGen() != s.gen {
			s.logger.Debug("dropping result for unmounted view",
				zap.Int("gen", msg.mountGen()), zap.Int("current", s.gen))
			return s, nil
		}
	}

	var cmd tea.Cmd
	s.view, cmd = s.view.Update(msg)
	return s, cmd
}

func (s Shell) renderSidebar() string {
	lines := []string{brandStyle.Render("智能OA系统"), ""}
	for i, v := range model.Views {
		label := v.Label()
		if v == s.active {
			lines = append(lines, navActiveStyle.Render("▸ "+label))
		} else {
			lines = append(lines, navItemStyle.Render("  "+label))
		}
		lines = append(lines, helpStyle.Render("    F"+string(rune('1'+i))))
	}
	lines = append(lines, "", "", mutedStyle.Render("© 2024 Your Company."), mutedStyle.Render("All Rights Reserved."))
	return sidebarStyle.Width(sidebarWidth).Height(s.height - 2).Render(strings.Join(lines, "\n"))
}

func (s Shell) View() string {
	_, h := s.contentSize()
	main := lipgloss.NewStyle().PaddingLeft(1).Height(h).Render(s.view.View())
	footer := helpStyle.Render("tab/shift+tab 切换视图 • F1-F4 跳转 • q 退出 • ctrl+c 强制退出")
	return lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.JoinHorizontal(lipgloss.Top, s.renderSidebar(), main),
		footer,
	)
}

// Run attaches the shell to the terminal and blocks until the user quits.
func Run(client api.Client, logger *zap.Logger) error {
	p := tea.NewProgram(NewShell(client, logger), tea.WithAltScreen())
	final, err := p.Run()
	if s, ok := final.(Shell); ok {
		s.Close()
	}
	return err
}
