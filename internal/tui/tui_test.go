package tui

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idilsaglam/oadesk/internal/api"
	"github.com/idilsaglam/oadesk/internal/apierr"
	"github.com/idilsaglam/oadesk/internal/assistant"
	"github.com/idilsaglam/oadesk/internal/model"
	"github.com/idilsaglam/oadesk/internal/store"
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var enter = tea.KeyMsg{Type: tea.KeyEnter}

// exec runs cmd once and flattens batches into the messages they produce.
func exec(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, exec(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

// settle feeds back every async result or navigation request produced by cmd.
func settle(t *testing.T, s Shell, cmd tea.Cmd) Shell {
	t.Helper()
	for _, msg := range exec(cmd) {
		switch msg.(type) {
		case mountedMsg, NavigateMsg:
			var next tea.Model
			next, cmd = s.Update(msg)
			s = next.(Shell)
			s = settle(t, s, cmd)
		}
	}
	return s
}

func send(t *testing.T, s Shell, msg tea.Msg) (Shell, tea.Cmd) {
	t.Helper()
	next, cmd := s.Update(msg)
	sh, ok := next.(Shell)
	require.True(t, ok)
	return sh, cmd
}

func newTestShell(c api.Client) Shell {
	return NewShell(c, nil)
}

func openView(t *testing.T, s Shell, to model.ViewID) Shell {
	t.Helper()
	s, cmd := send(t, s, NavigateMsg{To: to})
	require.Equal(t, to, s.ActiveView())
	return settle(t, s, cmd)
}

func TestShellStartsOnDashboard(t *testing.T) {
	s := newTestShell(api.NewMockClient(api.WithLatencyScale(0)))
	assert.Equal(t, model.ViewDashboard, s.ActiveView())
	assert.Contains(t, s.View(), "欢迎回来, 管理员！")
	assert.Contains(t, s.View(), "智能OA系统")
}

func TestShellUnknownViewFallsBackToDashboard(t *testing.T) {
	s := newTestShell(api.NewMockClient(api.WithLatencyScale(0)))
	s = openView(t, s, model.ViewTodos)
	s, _ = s.activate(model.ViewID("settings"))
	assert.Equal(t, model.ViewDashboard, s.ActiveView())
}

func TestShellTabCycles(t *testing.T) {
	s := newTestShell(api.NewMockClient(api.WithLatencyScale(0)))
	want := []model.ViewID{model.ViewTodos, model.ViewAnnouncements, model.ViewAIAssistant, model.ViewDashboard}
	for _, v := range want {
		s, _ = send(t, s, tea.KeyMsg{Type: tea.KeyTab})
		assert.Equal(t, v, s.ActiveView())
	}
	s, _ = send(t, s, tea.KeyMsg{Type: tea.KeyShiftTab})
	assert.Equal(t, model.ViewAIAssistant, s.ActiveView())
}

func TestShellFunctionKeysJump(t *testing.T) {
	s := newTestShell(api.NewMockClient(api.WithLatencyScale(0)))
	s, _ = send(t, s, tea.KeyMsg{Type: tea.KeyF3})
	assert.Equal(t, model.ViewAnnouncements, s.ActiveView())
	s, _ = send(t, s, tea.KeyMsg{Type: tea.KeyF1})
	assert.Equal(t, model.ViewDashboard, s.ActiveView())
}

func TestShellReselectKeepsMount(t *testing.T) {
	s := newTestShell(api.NewMockClient(api.WithLatencyScale(0)))
	s = openView(t, s, model.ViewTodos)
	gen := s.gen
	s, cmd := send(t, s, NavigateMsg{To: model.ViewTodos})
	assert.Nil(t, cmd)
	assert.Equal(t, gen, s.gen)
}

func TestQuitIgnoredWhileTyping(t *testing.T) {
	s := newTestShell(api.NewMockClient(api.WithLatencyScale(0)))
	_, cmd := send(t, s, runes("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())

	s = openView(t, s, model.ViewAIAssistant)
	s, _ = send(t, s, runes("q"))
	av := s.view.(assistantView)
	assert.Equal(t, "q", av.input.Value())
}

func TestDashboardShortcuts(t *testing.T) {
	cases := map[string]model.ViewID{
		"1": model.ViewTodos,
		"2": model.ViewAnnouncements,
		"3": model.ViewAIAssistant,
	}
	for k, want := range cases {
		t.Run(k, func(t *testing.T) {
			s := newTestShell(api.NewMockClient(api.WithLatencyScale(0)))
			s, cmd := send(t, s, runes(k))
			s = settle(t, s, cmd)
			assert.Equal(t, want, s.ActiveView())
		})
	}

	d := newDashboardView(80, 24)
	next, _ := d.Update(tea.KeyMsg{Type: tea.KeyRight})
	next, cmd := next.Update(enter)
	require.NotNil(t, cmd)
	assert.Equal(t, NavigateMsg{To: model.ViewAnnouncements}, cmd())
	assert.Equal(t, 1, next.(dashboardView).cursor)
}

func TestTodosLoadsSeed(t *testing.T) {
	s := newTestShell(api.NewMockClient(api.WithLatencyScale(0)))
	s, cmd := send(t, s, NavigateMsg{To: model.ViewTodos})
	assert.True(t, s.view.(todosView).loading)
	assert.Contains(t, s.View(), "正在加载...")

	s = settle(t, s, cmd)
	tv := s.view.(todosView)
	assert.False(t, tv.loading)
	require.Len(t, tv.items, 3)
	assert.Equal(t, model.TodoItem{ID: 1, Text: "完成项目报告"}, tv.items[0])
	assert.Equal(t, model.TodoItem{ID: 2, Text: "准备周会PPT", Completed: true}, tv.items[1])
	assert.Equal(t, model.TodoItem{ID: 3, Text: "回复客户邮件"}, tv.items[2])
}

func TestTodosAddPrepends(t *testing.T) {
	s := newTestShell(api.NewMockClient(api.WithLatencyScale(0)))
	s = openView(t, s, model.ViewTodos)

	s, _ = send(t, s, runes("a"))
	require.True(t, s.view.Typing())
	s, _ = send(t, s, runes("测试任务"))
	s, cmd := send(t, s, enter)
	s = settle(t, s, cmd)

	tv := s.view.(todosView)
	require.Len(t, tv.items, 4)
	assert.Equal(t, "测试任务", tv.items[0].Text)
	assert.False(t, tv.items[0].Completed)
	assert.Greater(t, tv.items[0].ID, int64(3))
	assert.Empty(t, tv.ti.Value())
}

func TestTodosBlankAddMakesNoCall(t *testing.T) {
	s := newTestShell(api.NewMockClient(api.WithLatencyScale(0)))
	s = openView(t, s, model.ViewTodos)
	s, _ = send(t, s, runes("a"))
	s, _ = send(t, s, runes("   "))
	_, cmd := send(t, s, enter)
	assert.Nil(t, cmd)
}

func TestTodosAddFailureKeepsList(t *testing.T) {
	c := api.NewMockClient(api.WithLatencyScale(0))
	s := newTestShell(c)
	s = openView(t, s, model.ViewTodos)

	c.FailWith(api.OpCreateTodo, errors.New("offline"))
	s, _ = send(t, s, runes("a"))
	s, _ = send(t, s, runes("写周报"))
	s, cmd := send(t, s, enter)
	s = settle(t, s, cmd)

	tv := s.view.(todosView)
	assert.Len(t, tv.items, 3)
	assert.Equal(t, errAddTodo, tv.err)
	assert.Equal(t, "写周报", tv.ti.Value())
}

func TestTodosToggleAndDelete(t *testing.T) {
	s := newTestShell(api.NewMockClient(api.WithLatencyScale(0)))
	s = openView(t, s, model.ViewTodos)

	s, cmd := send(t, s, tea.KeyMsg{Type: tea.KeySpace})
	s = settle(t, s, cmd)
	assert.True(t, s.view.(todosView).items[0].Completed)

	s, cmd = send(t, s, runes("d"))
	s = settle(t, s, cmd)
	tv := s.view.(todosView)
	require.Len(t, tv.items, 2)
	for _, it := range tv.items {
		assert.NotEqual(t, int64(1), it.ID)
	}
}

func TestTodosEditReplacesAfterConfirm(t *testing.T) {
	c := api.NewMockClient(api.WithLatencyScale(0))
	s := openView(t, newTestShell(c), model.ViewTodos)

	s, _ = send(t, s, runes("e"))
	tv := s.view.(todosView)
	require.True(t, tv.editing)
	assert.True(t, s.view.Typing())
	assert.Equal(t, "完成项目报告", tv.ti.Value())
	assert.Contains(t, s.View(), "修改任务")

	s, _ = send(t, s, runes("（终稿）"))
	s, cmd := send(t, s, enter)
	assert.Equal(t, "完成项目报告", s.view.(todosView).items[0].Text, "row changes only after the update resolves")

	s = settle(t, s, cmd)
	tv = s.view.(todosView)
	assert.False(t, tv.editing)
	assert.Equal(t, model.TodoItem{ID: 1, Text: "完成项目报告（终稿）"}, tv.items[0])

	todos, err := c.ListTodos(t.Context())
	require.NoError(t, err)
	assert.Equal(t, "完成项目报告（终稿）", todos[0].Text)
}

func TestTodosEditFailureKeepsRow(t *testing.T) {
	c := api.NewMockClient(api.WithLatencyScale(0))
	s := openView(t, newTestShell(c), model.ViewTodos)
	c.FailWith(api.OpUpdateTodo, errors.New("offline"))

	s, _ = send(t, s, runes("e"))
	s, _ = send(t, s, runes("!"))
	s, cmd := send(t, s, enter)
	s = settle(t, s, cmd)

	tv := s.view.(todosView)
	assert.Equal(t, errEditTodo, tv.err)
	assert.True(t, tv.editing)
	assert.Equal(t, "完成项目报告", tv.items[0].Text)
}

func TestTodosEditBlankAndCancel(t *testing.T) {
	s := openView(t, newTestShell(api.NewMockClient(api.WithLatencyScale(0))), model.ViewTodos)

	s, _ = send(t, s, runes("e"))
	s, _ = send(t, s, tea.KeyMsg{Type: tea.KeyCtrlU})
	s, cmd := send(t, s, enter)
	assert.Nil(t, cmd)

	s, _ = send(t, s, tea.KeyMsg{Type: tea.KeyEsc})
	tv := s.view.(todosView)
	assert.False(t, tv.editing)
	assert.False(t, s.view.Typing())
	assert.Equal(t, "完成项目报告", tv.items[0].Text)
}

func TestTodosEmptyListProgress(t *testing.T) {
	assert.Equal(t, "[░░░░░] 0/0", progressBar(0, 0, 5))
	assert.Equal(t, "[███░░░] 1/2", progressBar(1, 2, 6))

	c := api.NewMockClient(api.WithLatencyScale(0), api.WithStore(store.NewMemoryFrom(nil, nil, 0)))
	s := openView(t, newTestShell(c), model.ViewTodos)
	assert.Empty(t, s.view.(todosView).items)
	assert.Contains(t, s.View(), "] 0/0")
	assert.NotContains(t, s.View(), "0/1")
}

func TestTodosLoadFailure(t *testing.T) {
	c := api.NewMockClient(api.WithLatencyScale(0))
	c.FailWith(api.OpListTodos, errors.New("boom"))
	s := newTestShell(c)
	s = openView(t, s, model.ViewTodos)

	tv := s.view.(todosView)
	assert.False(t, tv.loading)
	assert.Empty(t, tv.items)
	assert.Contains(t, s.View(), errLoadTodos)
}

func TestStaleResultDropped(t *testing.T) {
	s := newTestShell(api.NewMockClient(api.WithLatencyScale(0)))
	s, pending := send(t, s, NavigateMsg{To: model.ViewTodos})
	s, _ = send(t, s, NavigateMsg{To: model.ViewAnnouncements})

	for _, msg := range exec(pending) {
		if _, ok := msg.(todosLoadedMsg); ok {
			s, _ = send(t, s, msg)
		}
	}
	av, ok := s.view.(announcementsView)
	require.True(t, ok)
	assert.True(t, av.loading)
}

func TestUnmountCancelsRequest(t *testing.T) {
	s := newTestShell(api.NewMockClient(api.WithLatencyScale(100)))
	s, pending := send(t, s, NavigateMsg{To: model.ViewTodos})
	s, _ = send(t, s, NavigateMsg{To: model.ViewDashboard})

	var loaded *todosLoadedMsg
	for _, msg := range exec(pending) {
		if m, ok := msg.(todosLoadedMsg); ok {
			loaded = &m
		}
	}
	require.NotNil(t, loaded)
	assert.ErrorIs(t, loaded.err, apierr.ErrFetch)
	assert.NotEqual(t, s.gen, loaded.mountGen())
}

func TestRemountRefetches(t *testing.T) {
	c := api.NewMockClient(api.WithLatencyScale(0))
	s := newTestShell(c)
	s = openView(t, s, model.ViewTodos)
	s, _ = send(t, s, NavigateMsg{To: model.ViewDashboard})

	_, err := c.CreateTodo(t.Context(), "外部新增")
	require.NoError(t, err)
	s = openView(t, s, model.ViewTodos)
	assert.Len(t, s.view.(todosView).items, 4)
}

func TestAnnouncementsLoad(t *testing.T) {
	s := newTestShell(api.NewMockClient(api.WithLatencyScale(0)))
	s, cmd := send(t, s, NavigateMsg{To: model.ViewAnnouncements})
	assert.Contains(t, s.View(), "正在加载公告...")

	s = settle(t, s, cmd)
	av := s.view.(announcementsView)
	assert.False(t, av.loading)
	assert.NotEmpty(t, av.items)
	out := s.View()
	assert.Contains(t, out, "通知公告")
	assert.Contains(t, out, "发布部门：")
}

func TestAnnouncementsFailure(t *testing.T) {
	c := api.NewMockClient(api.WithLatencyScale(0))
	c.FailWith(api.OpListAnnouncements, errors.New("down"))
	s := openView(t, newTestShell(c), model.ViewAnnouncements)
	assert.Contains(t, s.View(), errLoadAnnouncements)
}

func chat(t *testing.T, s Shell, text string) Shell {
	t.Helper()
	s, _ = send(t, s, runes(text))
	s, cmd := send(t, s, enter)
	return settle(t, s, cmd)
}

func TestAssistantStartsWithGreeting(t *testing.T) {
	s := openView(t, newTestShell(api.NewMockClient(api.WithLatencyScale(0))), model.ViewAIAssistant)
	msgs := s.view.(assistantView).Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, model.ChatMessage{Sender: model.SenderModel, Text: assistant.Greeting}, msgs[0])
}

func TestAssistantAppendsExactlyTwo(t *testing.T) {
	c := api.NewMockClient(api.WithLatencyScale(0))
	s := openView(t, newTestShell(c), model.ViewAIAssistant)

	s = chat(t, s, "你好")
	msgs := s.view.(assistantView).Messages()
	require.Len(t, msgs, 3)
	assert.Equal(t, model.ChatMessage{Sender: model.SenderUser, Text: "你好"}, msgs[1])
	assert.Equal(t, model.SenderModel, msgs[2].Sender)
	assert.Contains(t, msgs[2].Text, "你好")

	c.FailWith(api.OpSendChat, errors.New("unreachable"))
	s = chat(t, s, "再见")
	msgs = s.view.(assistantView).Messages()
	require.Len(t, msgs, 5)
	assert.Equal(t, model.SenderUser, msgs[3].Sender)
	assert.Equal(t, model.ChatMessage{Sender: model.SenderModel, Text: assistant.Apology}, msgs[4])
}

func TestAssistantIgnoresBlankAndInFlight(t *testing.T) {
	s := openView(t, newTestShell(api.NewMockClient(api.WithLatencyScale(0))), model.ViewAIAssistant)
	_, cmd := send(t, s, enter)
	assert.Nil(t, cmd)

	s, _ = send(t, s, runes("第一条"))
	s, pending := send(t, s, enter)
	require.NotNil(t, pending)
	assert.True(t, s.view.(assistantView).sending)
	assert.Contains(t, s.View(), "正在输入...")

	s, _ = send(t, s, runes("第二条"))
	s, cmd = send(t, s, enter)
	assert.Nil(t, cmd)
	assert.Len(t, s.view.(assistantView).Messages(), 2)

	s = settle(t, s, pending)
	assert.Len(t, s.view.(assistantView).Messages(), 3)
	assert.False(t, s.view.(assistantView).sending)
}

func TestAssistantCopiesLastReply(t *testing.T) {
	var copied string
	old := clipboardWriteAll
	clipboardWriteAll = func(s string) error { copied = s; return nil }
	defer func() { clipboardWriteAll = old }()

	s := openView(t, newTestShell(api.NewMockClient(api.WithLatencyScale(0))), model.ViewAIAssistant)
	s = chat(t, s, "你好")
	_, _ = send(t, s, tea.KeyMsg{Type: tea.KeyCtrlY})
	assert.Equal(t, assistant.EchoReply("你好"), copied)
}
