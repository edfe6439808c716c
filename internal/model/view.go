package model

// ViewID names one of the screens of the application.
type ViewID string

const (
	ViewDashboard     ViewID = "dashboard"
	ViewTodos         ViewID = "todos"
	ViewAnnouncements ViewID = "announcements"
	ViewAIAssistant   ViewID = "ai_assistant"
)

// Views lists every view in sidebar order.
var Views = []ViewID{ViewDashboard, ViewTodos, ViewAnnouncements, ViewAIAssistant}

// ParseViewID accepts exactly the known view tags.
func ParseViewID(s string) (ViewID, bool) {
	for _, v := range Views {
		if string(v) == s {
			return v, true
		}
	}
	return "", false
}

// Label is the sidebar caption of a view.
func (v ViewID) Label() string {
	switch v {
	case ViewTodos:
		return "待办事项"
	case ViewAnnouncements:
		return "通知公告"
	case ViewAIAssistant:
		return "AI 助手"
	default:
		return "主控面板"
	}
}
