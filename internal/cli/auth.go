package cli

import (
	"bufio"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/idilsaglam/oadesk/internal/config"
	"github.com/idilsaglam/oadesk/internal/ui"
)

func (a *app) authCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage the bearer token sent to the http backend",
		// Loading config reads the credentials file; skip it so a corrupt
		// file can still be replaced or removed.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
	}

	var expiresIn time.Duration
	login := &cobra.Command{
		Use:   "login [token]",
		Short: "Save a token (read from stdin when omitted)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var token string
			if len(args) == 1 {
				token = args[0]
			} else {
				fmt.Fprint(cmd.ErrOrStderr(), "token: ")
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("read token: %w", err)
				}
				token = line
			}
			var expires *time.Time
			if expiresIn > 0 {
				t := time.Now().Add(expiresIn)
				expires = &t
			}
			if err := config.SetToken(token, expires); err != nil {
				return fmt.Errorf("login: %w", err)
			}
			ui.OK(out(cmd), "token saved")
			return nil
		},
	}
	login.Flags().DurationVar(&expiresIn, "expires-in", 0, "record an expiry, e.g. 720h")

	logout := &cobra.Command{
		Use:   "logout",
		Short: "Remove the saved token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.DeleteToken(); err != nil {
				return fmt.Errorf("logout: %w", err)
			}
			ui.OK(out(cmd), "logged out")
			return nil
		},
	}

	status := &cobra.Command{
		Use:   "status",
		Short: "Show where the token comes from",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ti, err := config.GetToken()
			if err != nil {
				return err
			}
			w := out(cmd)
			if ti == nil {
				fmt.Fprintln(w, "not logged in")
				return nil
			}
			fmt.Fprintf(w, "token:  %s\nsource: %s\n", maskToken(ti.Token), ti.Source)
			if ti.ExpiresAt != nil {
				state := "valid"
				if ti.Expired(time.Now()) {
					state = "expired"
				}
				fmt.Fprintf(w, "expiry: %s (%s)\n", ti.ExpiresAt.Format(time.RFC3339), state)
			}
			return nil
		},
	}

	cmd.AddCommand(login, logout, status)
	return cmd
}

func maskToken(s string) string {
	if len(s) <= 8 {
		return strings.Repeat("*", len(s))
	}
	return s[:4] + strings.Repeat("*", len(s)-8) + s[len(s)-4:]
}
