package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/idilsaglam/oadesk/internal/api"
	"github.com/idilsaglam/oadesk/internal/model"
)

// User-facing failure banners.
const (
	errLoadTodos  = "加载待办事项失败，请稍后重试。"
	errAddTodo    = "添加任务失败，请检查网络连接。"
	errToggleTodo = "更新任务状态失败。"
	errDeleteTodo = "删除任务失败。"
	errEditTodo   = "修改任务失败。"
)

type (
	todosLoadedMsg struct {
		tag
		items []model.TodoItem
		err   error
	}
	todoAddedMsg struct {
		tag
		item model.TodoItem
		err  error
	}
	todoToggledMsg struct {
		tag
		item model.TodoItem
		err  error
	}
	todoDeletedMsg struct {
		tag
		id  int64
		err error
	}
	todoEditedMsg struct {
		tag
		item model.TodoItem
		err  error
	}
)

// listItem adapts a TodoItem to bubbles/list.Item
type listItem struct {
	model.TodoItem
}

func (i listItem) TitleText() string {
	box := boxUnchecked
	if i.Completed {
		box = boxChecked
	}
	return fmt.Sprintf("%s %s", box, i.Text)
}

// Implement list.Item interface
func (i listItem) Title() string       { return i.TitleText() }
func (i listItem) Description() string { return "" }
func (i listItem) FilterValue() string { return i.Text }

// Custom delegate to control how items render (single line)
type itemDelegate struct{}

func (d itemDelegate) Height() int                               { return 1 }
func (d itemDelegate) Spacing() int                              { return 0 }
func (d itemDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }
func (d itemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, _ := item.(listItem)
	boxStyled := mutedStyle.Render(boxUnchecked)
	textStyled := it.Text
	if it.Completed {
		boxStyled = successStyle.Render(boxChecked)
		textStyled = doneStyle.Render(it.Text)
	}

	line := fmt.Sprintf("%s %s", boxStyled, textStyled)
	prefix := "  "
	if index == m.Index() {
		prefix = selectedStyle.Render("> ")
	}
	fmt.Fprint(w, prefix+line)
}

var (
	addBind    = key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add"))
	toggleBind = key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "toggle"))
	deleteBind = key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete"))
	editBind   = key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit"))
	reloadBind = key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload"))
)

// todosView mirrors the backend list. Every mutation is applied only after
// the backend confirms it.
type todosView struct {
	mount  mount
	client api.Client
	logger *zap.Logger

	items   []model.TodoItem
	loading bool
	err     string

	list    list.Model
	spinner spinner.Model

	// Inline add & edit share ti
	adding  bool
	editing bool
	editID  int64
	ti      textinput.Model

	width, height int
}

func newTodosView(m mount, client api.Client, logger *zap.Logger, w, h int) todosView {
	l := list.New(nil, itemDelegate{}, 0, 0)
	l.SetShowTitle(false)
	l.SetShowHelp(true)
	l.SetShowPagination(true)
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.Styles.HelpStyle = helpStyle
	l.Styles.PaginationStyle = helpStyle
	l.FilterInput.Prompt = "/ "
	l.SetStatusBarItemName("item", "items")
	l.KeyMap.Quit.SetEnabled(false)
	l.KeyMap.ForceQuit.SetEnabled(false)
	l.AdditionalShortHelpKeys = func() []key.Binding { return []key.Binding{addBind, editBind, toggleBind, deleteBind, reloadBind} }
	l.AdditionalFullHelpKeys = func() []key.Binding { return []key.Binding{addBind, editBind, toggleBind, deleteBind, reloadBind} }

	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "添加一个新的任务..."
	ti.CharLimit = 200

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = accentStyle

	v := todosView{
		mount:   m,
		client:  client,
		logger:  logger,
		loading: true,
		list:    l,
		spinner: sp,
		ti:      ti,
	}
	return v.resize(w, h)
}

func (v todosView) resize(w, h int) todosView {
	v.width, v.height = w, h
	listHeight := h - 5
	if v.adding || v.editing {
		listHeight -= 4
	}
	if listHeight < 3 {
		listHeight = 3
	}
	v.list.SetSize(w-2, listHeight)
	v.ti.Width = w - 8
	return v
}

func (v todosView) Init() tea.Cmd {
	return tea.Batch(v.fetch(), v.spinner.Tick)
}

func (v todosView) Typing() bool {
	return v.adding || v.editing || v.list.FilterState() == list.Filtering
}

func (v todosView) fetch() tea.Cmd {
	m, c := v.mount, v.client
	return func() tea.Msg {
		items, err := c.ListTodos(m.ctx)
		return todosLoadedMsg{tag: tag{m.gen}, items: items, err: err}
	}
}

func (v todosView) add(text string) tea.Cmd {
	m, c := v.mount, v.client
	return func() tea.Msg {
		it, err := c.CreateTodo(m.ctx, text)
		return todoAddedMsg{tag: tag{m.gen}, item: it, err: err}
	}
}

func (v todosView) toggle(it model.TodoItem) tea.Cmd {
	m, c := v.mount, v.client
	return func() tea.Msg {
		updated, err := c.UpdateTodo(m.ctx, it.ID, model.CompletedPatch(!it.Completed))
		return todoToggledMsg{tag: tag{m.gen}, item: updated, err: err}
	}
}

func (v todosView) edit(id int64, text string) tea.Cmd {
	m, c := v.mount, v.client
	return func() tea.Msg {
		updated, err := c.UpdateTodo(m.ctx, id, model.TodoPatch{Text: &text})
		return todoEditedMsg{tag: tag{m.gen}, item: updated, err: err}
	}
}

func (v todosView) remove(id int64) tea.Cmd {
	m, c := v.mount, v.client
	return func() tea.Msg {
		err := c.DeleteTodo(m.ctx, id)
		return todoDeletedMsg{tag: tag{m.gen}, id: id, err: err}
	}
}

// replace swaps in the confirmed version of an item, keeping its position.
func (v todosView) replace(updated model.TodoItem) todosView {
	items := make([]model.TodoItem, len(v.items))
	for i, it := range v.items {
		if it.ID == updated.ID {
			it = updated
		}
		items[i] = it
	}
	v.items = items
	return v
}

// closeBar leaves add or edit mode.
func (v todosView) closeBar() todosView {
	v.adding, v.editing = false, false
	v.editID = 0
	v.ti.SetValue("")
	v.ti.Blur()
	return v.resize(v.width, v.height)
}

// sync rebuilds the list rows from items.
func (v todosView) sync() (todosView, tea.Cmd) {
	rows := make([]list.Item, 0, len(v.items))
	for _, it := range v.items {
		rows = append(rows, listItem{it})
	}
	cmd := v.list.SetItems(rows)
	return v, cmd
}

func (v todosView) selected() (model.TodoItem, bool) {
	li, ok := v.list.SelectedItem().(listItem)
	return li.TodoItem, ok
}

func (v todosView) fail(banner string, err error) todosView {
	v.err = banner
	v.logger.Warn("todo operation failed", zap.String("banner", banner), zap.Error(err))
	return v
}

func (v todosView) Update(msg tea.Msg) (view, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return v.resize(msg.Width, msg.Height), nil

	case todosLoadedMsg:
		v.loading = false
		if msg.err != nil {
			return v.fail(errLoadTodos, msg.err), nil
		}
		v.err = ""
		v.items = msg.items
		return v.sync()

	case todoAddedMsg:
		if msg.err != nil {
			return v.fail(errAddTodo, msg.err), nil
		}
		v.items = append([]model.TodoItem{msg.item}, v.items...)
		v.ti.SetValue("")
		v, cmd := v.sync()
		v.list.Select(0)
		return v, cmd

	case todoToggledMsg:
		if msg.err != nil {
			return v.fail(errToggleTodo, msg.err), nil
		}
		return v.replace(msg.item).sync()

	case todoEditedMsg:
		if msg.err != nil {
			return v.fail(errEditTodo, msg.err), nil
		}
		v = v.replace(msg.item)
		if v.editing && v.editID == msg.item.ID {
			v = v.closeBar()
		}
		return v.sync()

	case todoDeletedMsg:
		if msg.err != nil {
			return v.fail(errDeleteTodo, msg.err), nil
		}
		kept := v.items[:0:0]
		for _, it := range v.items {
			if it.ID != msg.id {
				kept = append(kept, it)
			}
		}
		v.items = kept
		return v.sync()

	case spinner.TickMsg:
		if !v.loading {
			return v, nil
		}
		var cmd tea.Cmd
		v.spinner, cmd = v.spinner.Update(msg)
		return v, cmd
	}

	// edit mode
	if v.editing {
		if k, ok := msg.(tea.KeyMsg); ok {
			switch k.String() {
			case "enter":
				text := strings.TrimSpace(v.ti.Value())
				if text == "" {
					return v, nil
				}
				return v, v.edit(v.editID, text)
			case "esc":
				return v.closeBar(), nil
			}
		}
		var cmd tea.Cmd
		v.ti, cmd = v.ti.Update(msg)
		return v, cmd
	}

	// add mode
	if v.adding {
		if k, ok := msg.(tea.KeyMsg); ok {
			switch k.String() {
			case "enter":
				text := strings.TrimSpace(v.ti.Value())
				if text == "" {
					return v, nil
				}
				return v, v.add(text)
			case "esc":
				return v.closeBar(), nil
			}
		}
		var cmd tea.Cmd
		v.ti, cmd = v.ti.Update(msg)
		return v, cmd
	}

	if k, ok := msg.(tea.KeyMsg); ok && v.list.FilterState() != list.Filtering {
		switch {
		case key.Matches(k, addBind):
			v.adding = true
			v.ti.SetValue("")
			cmd := v.ti.Focus()
			return v.resize(v.width, v.height), cmd
		case key.Matches(k, editBind):
			it, ok := v.selected()
			if !ok {
				return v, nil
			}
			v.editing = true
			v.editID = it.ID
			v.ti.SetValue(it.Text)
			v.ti.CursorEnd()
			cmd := v.ti.Focus()
			return v.resize(v.width, v.height), cmd
		case key.Matches(k, toggleBind):
			if it, ok := v.selected(); ok {
				return v, v.toggle(it)
			}
			return v, nil
		case key.Matches(k, deleteBind):
			if it, ok := v.selected(); ok {
				return v, v.remove(it.ID)
			}
			return v, nil
		case key.Matches(k, reloadBind):
			v.loading = true
			v.err = ""
			return v, tea.Batch(v.fetch(), v.spinner.Tick)
		}
	}

	var cmd tea.Cmd
	v.list, cmd = v.list.Update(msg)
	return v, cmd
}

func (v todosView) View() string {
	dn, pn := model.Stats(v.items)
	header := fmt.Sprintf("%s   %s %d  %s %d  %s %d",
		titleStyle.Render("我的待办事项"),
		successStyle.Render("✔"), dn,
		pendingStyle.Render("•"), pn,
		accentStyle.Render("Total"), len(v.items),
	)
	lines := []string{header, mutedStyle.Render(progressBar(dn, len(v.items), 24))}

	if v.err != "" {
		lines = append(lines, errorStyle.Render(v.err))
	}

	if v.loading {
		lines = append(lines, v.spinner.View()+" "+mutedStyle.Render("正在加载..."))
	} else {
		lines = append(lines, v.list.View())
	}

	if v.adding || v.editing {
		bar := lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("8")).Padding(0, 1)
		title := "添加任务 " + helpStyle.Render("(enter 添加 • esc 取消)")
		if v.editing {
			title = "修改任务 " + helpStyle.Render("(enter 保存 • esc 取消)")
		}
		inputLine := title + "\n" + v.ti.View()
		lines = append(lines, bar.Render(inputLine))
	}
	return strings.Join(lines, "\n")
}
