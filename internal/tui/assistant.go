package tui

import (
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/idilsaglam/oadesk/internal/api"
	"github.com/idilsaglam/oadesk/internal/assistant"
	"github.com/idilsaglam/oadesk/internal/model"
)

// clipboardWriteAll is a package-level variable to allow mocking in tests.
var clipboardWriteAll = clipboard.WriteAll

type chatReplyMsg struct {
	tag
	reply string
	err   error
}

// assistantView is an append-only conversation. Each send adds the user
// message at once and exactly one model message when the call settles.
type assistantView struct {
	mount  mount
	client api.Client
	logger *zap.Logger

	messages []model.ChatMessage
	sending  bool
	status   string

	input    textinput.Model
	spinner  spinner.Model
	viewport viewport.Model

	width, height int
}

func newAssistantView(m mount, client api.Client, logger *zap.Logger, w, h int) assistantView {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "输入您的问题..."
	ti.CharLimit = 2000
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = accentStyle

	v := assistantView{
		mount:    m,
		client:   client,
		logger:   logger,
		messages: []model.ChatMessage{{Sender: model.SenderModel, Text: assistant.Greeting}},
		input:    ti,
		spinner:  sp,
		viewport: viewport.New(w, h),
	}
	return v.resize(w, h)
}

func (v assistantView) Init() tea.Cmd { return textinput.Blink }

// The input keeps focus for the whole mount.
func (v assistantView) Typing() bool { return true }

// Messages returns the conversation so far.
func (v assistantView) Messages() []model.ChatMessage { return v.messages }

func (v assistantView) resize(w, h int) assistantView {
	v.width, v.height = w, h
	vh := h - 5
	if vh < 3 {
		vh = 3
	}
	v.viewport.Width = w
	v.viewport.Height = vh
	v.input.Width = w - 4
	v.viewport.SetContent(v.renderMessages())
	v.viewport.GotoBottom()
	return v
}

func (v assistantView) renderMessages() string {
	blocks := make([]string, 0, len(v.messages)+1)
	for _, m := range v.messages {
		if m.Sender == model.SenderUser {
			blocks = append(blocks, userBubbleStyle.MaxWidth(v.width).Render(m.Text))
			continue
		}
		blocks = append(blocks, modelLabelStyle.Render("AI")+"\n"+renderMarkdown(m.Text, v.width-4))
	}
	if v.sending {
		blocks = append(blocks, v.spinner.View()+" "+mutedStyle.Render("正在输入..."))
	}
	return strings.Join(blocks, "\n\n")
}

func (v assistantView) refresh() assistantView {
	v.viewport.SetContent(v.renderMessages())
	v.viewport.GotoBottom()
	return v
}

func (v assistantView) send(text string) tea.Cmd {
	m, c := v.mount, v.client
	history := append([]model.ChatMessage(nil), v.messages...)
	return func() tea.Msg {
		reply, err := c.SendChatMessage(m.ctx, text, history)
		return chatReplyMsg{tag: tag{m.gen}, reply: reply, err: err}
	}
}

func (v assistantView) lastReply() (string, bool) {
	for i := len(v.messages) - 1; i >= 0; i-- {
		if v.messages[i].Sender == model.SenderModel {
			return v.messages[i].Text, true
		}
	}
	return "", false
}

func (v assistantView) Update(msg tea.Msg) (view, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return v.resize(msg.Width, msg.Height), nil

	case chatReplyMsg:
		text := msg.reply
		if msg.err != nil {
			v.logger.Warn("chat send failed", zap.Error(msg.err))
			text = assistant.Apology
		}
		v.messages = append(v.messages, model.ChatMessage{Sender: model.SenderModel, Text: text})
		v.sending = false
		return v.refresh(), nil

	case spinner.TickMsg:
		if !v.sending {
			return v, nil
		}
		var cmd tea.Cmd
		v.spinner, cmd = v.spinner.Update(msg)
		return v.refresh(), cmd

	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			text := strings.TrimSpace(v.input.Value())
			if text == "" || v.sending {
				return v, nil
			}
			cmd := v.send(text)
			v.messages = append(v.messages, model.ChatMessage{Sender: model.SenderUser, Text: text})
			v.input.SetValue("")
			v.sending = true
			v.status = ""
			return v.refresh(), tea.Batch(cmd, v.spinner.Tick)
		case "ctrl+y":
			if reply, ok := v.lastReply(); ok {
				if err := clipboardWriteAll(reply); err != nil {
					v.status = errorStyle.Render("复制失败")
				} else {
					v.status = successStyle.Render("已复制最近一条回复")
				}
			}
			return v, nil
		case "pgup", "pgdown", "up", "down":
			var cmd tea.Cmd
			v.viewport, cmd = v.viewport.Update(msg)
			return v, cmd
		}
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v assistantView) View() string {
	footer := helpStyle.Render("enter 发送 • ctrl+y 复制回复 • ↑/↓ 滚动")
	if v.status != "" {
		footer = v.status
	}
	return strings.Join([]string{
		titleStyle.Render("AI 助手"),
		v.viewport.View(),
		panelString(v.input.View()),
		footer,
	}, "\n")
}
