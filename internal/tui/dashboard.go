package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/idilsaglam/oadesk/internal/model"
)

type dashboardCard struct {
	to          model.ViewID
	title       string
	description string
}

var dashboardCards = []dashboardCard{
	{model.ViewTodos, "待办事项", "查看和管理您的任务列表，保持工作条理清晰。"},
	{model.ViewAnnouncements, "通知公告", "及时获取最新的公司新闻和重要通知。"},
	{model.ViewAIAssistant, "AI 助手", "您的智能伙伴，随时准备帮您起草文案或回答问题。"},
}

const userName = "管理员"

// dashboardView is purely presentational: its only effect is navigation.
type dashboardView struct {
	cursor        int
	width, height int
}

func newDashboardView(w, h int) dashboardView {
	return dashboardView{width: w, height: h}
}

func (d dashboardView) Init() tea.Cmd { return nil }
func (d dashboardView) Typing() bool  { return false }

func (d dashboardView) Update(msg tea.Msg) (view, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		d.width, d.height = msg.Width, msg.Height
	case tea.KeyMsg:
		switch msg.String() {
		case "left", "up", "h", "k":
			if d.cursor > 0 {
				d.cursor--
			}
		case "right", "down", "l", "j":
			if d.cursor < len(dashboardCards)-1 {
				d.cursor++
			}
		case "enter", " ":
			return d, navigate(dashboardCards[d.cursor].to)
		case "1", "2", "3":
			i := int(msg.String()[0] - '1')
			d.cursor = i
			return d, navigate(dashboardCards[i].to)
		}
	}
	return d, nil
}

func (d dashboardView) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("欢迎回来, " + userName + "！"))
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render("这是您的工作仪表盘，祝您今天工作愉快。"))
	b.WriteString("\n\n")

	cardWidth := (d.width - 6) / len(dashboardCards)
	if cardWidth < 18 {
		cardWidth = 18
	}
	cards := make([]string, 0, len(dashboardCards))
	for i, c := range dashboardCards {
		style := cardStyle
		title := titleStyle.Render(c.title)
		if i == d.cursor {
			style = cardActiveStyle
			title = accentStyle.Bold(true).Render(c.title)
		}
		body := title + "\n" + mutedStyle.Render(c.description) + "\n" + helpStyle.Render("按 "+string(rune('1'+i))+" 打开")
		cards = append(cards, style.Width(cardWidth).Render(body))
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cards...))
	b.WriteString("\n\n")

	b.WriteString(titleStyle.Render("快速开始"))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Width(d.width - 2).Render(
		"您可以从左侧的导航栏选择一个模块开始工作。例如，点击“待办事项”来添加您今天的第一个任务，或者向“AI 助手”打个招呼，看看它能为您做些什么。"))
	return b.String()
}
