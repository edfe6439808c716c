package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/idilsaglam/oadesk/internal/model"
	"github.com/idilsaglam/oadesk/internal/ui"
)

func (a *app) todosCmd() *cobra.Command {
	var group bool

	cmd := &cobra.Command{
		Use:     "todos",
		Aliases: []string{"todo"},
		Short:   "Manage to-do items",
	}

	ls := &cobra.Command{
		Use:   "ls",
		Short: "List items",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.dataClient()
			if err != nil {
				return err
			}
			items, err := c.ListTodos(cmd.Context())
			if err != nil {
				return fmt.Errorf("list: %w", err)
			}
			printTodos(out(cmd), items, group)
			return nil
		},
	}
	ls.Flags().BoolVarP(&group, "group", "g", false, "group output by pending/done")

	add := &cobra.Command{
		Use:   "add <text...>",
		Short: "Add a new item (text can be multiple words)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.TrimSpace(strings.Join(args, " "))
			if text == "" {
				return fmt.Errorf("add: empty text")
			}
			c, err := a.dataClient()
			if err != nil {
				return err
			}
			it, err := c.CreateTodo(cmd.Context(), text)
			if err != nil {
				return fmt.Errorf("add: %w", err)
			}
			ui.OK(out(cmd), fmt.Sprintf("added #%d", it.ID))
			return nil
		},
	}

	setDone := func(use, short string, done bool) *cobra.Command {
		return &cobra.Command{
			Use:   use + " <id>",
			Short: short,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				c, err := a.dataClient()
				if err != nil {
					return err
				}
				it, err := c.UpdateTodo(cmd.Context(), id, model.CompletedPatch(done))
				if err != nil {
					return fmt.Errorf("%s: %w", use, err)
				}
				state := "pending"
				if it.Completed {
					state = "done"
				}
				ui.OK(out(cmd), fmt.Sprintf("#%d %s", it.ID, state))
				return nil
			},
		}
	}

	edit := &cobra.Command{
		Use:   "edit <id> <text...>",
		Short: "Replace the text of an item",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			text := strings.TrimSpace(strings.Join(args[1:], " "))
			if text == "" {
				return fmt.Errorf("edit: empty text")
			}
			c, err := a.dataClient()
			if err != nil {
				return err
			}
			it, err := c.UpdateTodo(cmd.Context(), id, model.TodoPatch{Text: &text})
			if err != nil {
				return fmt.Errorf("edit: %w", err)
			}
			ui.OK(out(cmd), fmt.Sprintf("#%d %s", it.ID, it.Text))
			return nil
		},
	}

	rm := &cobra.Command{
		Use:   "rm <id>",
		Short: "Remove an item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			c, err := a.dataClient()
			if err != nil {
				return err
			}
			if err := c.DeleteTodo(cmd.Context(), id); err != nil {
				return fmt.Errorf("rm: %w", err)
			}
			ui.OK(out(cmd), fmt.Sprintf("removed #%d", id))
			return nil
		},
	}

	cmd.AddCommand(ls, add, edit,
		setDone("done", "Mark an item done", true),
		setDone("undone", "Mark an item pending", false),
		rm)
	return cmd
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("not a valid id: %s (run `oadesk todos ls` to see ids)", s)
	}
	return id, nil
}

// -------------- rendering helpers --------------

func printTodos(w io.Writer, items []model.TodoItem, group bool) {
	t := ui.Current()
	d, p := model.Stats(items)
	header := fmt.Sprintf("%s  %s %d  %s %d  %s %d",
		ui.C(t.Title, "Todos"),
		ui.C(t.Success, t.SymDone), d,
		ui.C(t.Pending, t.SymUnchecked), p,
		ui.C(t.Accent, "Total"), len(items),
	)

	lines := []string{header, ui.C(t.Muted, ui.ProgressBar(d, d+p, 28)), ""}
	if group {
		lines = append(lines, groupLines(items)...)
	} else {
		lines = append(lines, flatLines(items)...)
	}
	lines = append(lines, "", ui.C(t.Muted, "Tip: add with `oadesk todos add 写周报`"))
	ui.Panel(w, lines)
}

func flatLines(items []model.TodoItem) []string {
	t := ui.Current()
	if len(items) == 0 {
		return []string{ui.C(t.Muted, "no items")}
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		box, color := t.BoxUnchecked, t.Muted
		if it.Completed {
			box, color = t.BoxChecked, t.Success
		}
		text := it.Text
		if r := []rune(text); len(r) > 60 {
			text = string(r[:57]) + "..."
		}
		out = append(out, fmt.Sprintf("%s %s %s",
			ui.Dim(fmt.Sprintf("#%-3d", it.ID)), ui.C(color, box), text))
	}
	return out
}

func groupLines(items []model.TodoItem) []string {
	var pend, done []model.TodoItem
	for _, it := range items {
		if it.Completed {
			done = append(done, it)
		} else {
			pend = append(pend, it)
		}
	}
	t := ui.Current()
	section := func(title string, its []model.TodoItem) []string {
		lines := []string{ui.C(t.Accent, title)}
		if len(its) == 0 {
			return append(lines, ui.C(t.Muted, "(none)"))
		}
		return append(lines, flatLines(its)...)
	}
	lines := section("Pending", pend)
	lines = append(lines, "")
	return append(lines, section("Done", done)...)
}
