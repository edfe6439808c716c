package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/idilsaglam/oadesk/internal/api"
	"github.com/idilsaglam/oadesk/internal/model"
)

const errLoadAnnouncements = "加载公告失败，请稍后重试。"

type announcementsLoadedMsg struct {
	tag
	items []model.Announcement
	err   error
}

// announcementsView is a read-only feed, fetched once per mount.
type announcementsView struct {
	mount  mount
	client api.Client
	logger *zap.Logger

	items   []model.Announcement
	loading bool
	err     string

	spinner  spinner.Model
	viewport viewport.Model

	width, height int
}

func newAnnouncementsView(m mount, client api.Client, logger *zap.Logger, w, h int) announcementsView {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = accentStyle
	v := announcementsView{
		mount:    m,
		client:   client,
		logger:   logger,
		loading:  true,
		spinner:  sp,
		viewport: viewport.New(w, h),
	}
	return v.resize(w, h)
}

func (v announcementsView) Init() tea.Cmd {
	m, c := v.mount, v.client
	fetch := func() tea.Msg {
		items, err := c.ListAnnouncements(m.ctx)
		return announcementsLoadedMsg{tag: tag{m.gen}, items: items, err: err}
	}
	return tea.Batch(fetch, v.spinner.Tick)
}

func (v announcementsView) Typing() bool { return false }

func (v announcementsView) resize(w, h int) announcementsView {
	v.width, v.height = w, h
	vh := h - 3
	if vh < 3 {
		vh = 3
	}
	v.viewport.Width = w
	v.viewport.Height = vh
	if !v.loading {
		v.viewport.SetContent(v.renderCards())
	}
	return v
}

func (v announcementsView) renderCards() string {
	cards := make([]string, 0, len(v.items))
	for _, a := range v.items {
		body := titleStyle.Render(a.Title) + "\n" +
			mutedStyle.Render("发布部门："+a.Author+" | 发布日期："+a.Date) + "\n" +
			renderMarkdown(a.Content, v.width-6)
		cards = append(cards, noticeStyle.Width(v.width-2).Render(body))
	}
	return strings.Join(cards, "\n\n")
}

func (v announcementsView) Update(msg tea.Msg) (view, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return v.resize(msg.Width, msg.Height), nil

	case announcementsLoadedMsg:
		v.loading = false
		if msg.err != nil {
			v.err = errLoadAnnouncements
			v.logger.Warn("load announcements failed", zap.Error(msg.err))
			return v, nil
		}
		v.items = msg.items
		v.viewport.SetContent(v.renderCards())
		v.viewport.GotoTop()
		return v, nil

	case spinner.TickMsg:
		if !v.loading {
			return v, nil
		}
		var cmd tea.Cmd
		v.spinner, cmd = v.spinner.Update(msg)
		return v, cmd
	}

	var cmd tea.Cmd
	v.viewport, cmd = v.viewport.Update(msg)
	return v, cmd
}

func (v announcementsView) View() string {
	lines := []string{
		titleStyle.Render("通知公告"),
		mutedStyle.Render("在这里查看最新的公司动态和重要信息。"),
	}
	switch {
	case v.loading:
		lines = append(lines, v.spinner.View()+" "+mutedStyle.Render("正在加载公告..."))
	case v.err != "":
		lines = append(lines, errorStyle.Render(v.err))
	default:
		lines = append(lines, v.viewport.View())
	}
	return strings.Join(lines, "\n")
}
