package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/idilsaglam/oadesk/internal/model"
	"github.com/idilsaglam/oadesk/internal/ui"
)

func (a *app) announcementsCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "announcements",
		Aliases: []string{"news"},
		Short:   "List company announcements",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.dataClient()
			if err != nil {
				return err
			}
			anns, err := c.ListAnnouncements(cmd.Context())
			if err != nil {
				return fmt.Errorf("announcements: %w", err)
			}
			t := ui.Current()
			w := out(cmd)
			if len(anns) == 0 {
				fmt.Fprintln(w, ui.C(t.Muted, "no announcements"))
				return nil
			}
			for i, an := range anns {
				if i > 0 {
					fmt.Fprintln(w)
				}
				fmt.Fprintln(w, ui.C(t.Title, an.Title))
				fmt.Fprintln(w, ui.C(t.Muted, "发布部门："+an.Author+" | 发布日期："+an.Date))
				fmt.Fprintln(w, an.Content)
			}
			return nil
		},
	}
}

func (a *app) chatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat <message...>",
		Short: "Send one message to the AI assistant",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			msg := strings.TrimSpace(strings.Join(args, " "))
			if msg == "" {
				return fmt.Errorf("chat: empty message")
			}
			c, err := a.dataClient()
			if err != nil {
				return err
			}
			reply, err := c.SendChatMessage(cmd.Context(), msg, nil)
			if err != nil {
				return fmt.Errorf("chat: %w", err)
			}
			fmt.Fprintln(out(cmd), reply)
			return nil
		},
	}
}

// statusCmd fetches todos and announcements concurrently and prints a summary.
func (a *app) statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Summarise todos and announcements",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.dataClient()
			if err != nil {
				return err
			}
			var (
				todos []model.TodoItem
				anns  []model.Announcement
			)
			g, ctx := errgroup.WithContext(cmd.Context())
			g.Go(func() error {
				var err error
				todos, err = c.ListTodos(ctx)
				return err
			})
			g.Go(func() error {
				var err error
				anns, err = c.ListAnnouncements(ctx)
				return err
			})
			if err := g.Wait(); err != nil {
				return fmt.Errorf("status: %w", err)
			}

			t := ui.Current()
			d, p := model.Stats(todos)
			lines := []string{
				ui.C(t.Title, "智能OA系统") + "  " + ui.Dim("backend: "+a.backendName()),
				"",
				fmt.Sprintf("%s  %s %d  %s %d", ui.C(t.Accent, "待办事项"),
					ui.C(t.Success, t.SymDone), d, ui.C(t.Pending, t.SymUnchecked), p),
				ui.C(t.Muted, ui.ProgressBar(d, d+p, 20)),
				fmt.Sprintf("%s  %d", ui.C(t.Accent, "通知公告"), len(anns)),
			}
			if len(anns) > 0 {
				lines = append(lines, ui.C(t.Muted, "最新: "+anns[0].Title))
			}
			ui.Panel(out(cmd), lines)
			return nil
		},
	}
}

func (a *app) backendName() string {
	if a.client != nil {
		return "custom"
	}
	return a.cfg.Backend
}
