package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/idilsaglam/oadesk/internal/assistant"
	"github.com/idilsaglam/oadesk/internal/config"
	"github.com/idilsaglam/oadesk/internal/logging"
	"github.com/idilsaglam/oadesk/internal/server"
	"github.com/idilsaglam/oadesk/internal/store"
	"github.com/idilsaglam/oadesk/internal/store/jsonstore"
	"github.com/idilsaglam/oadesk/internal/store/sqlitestore"
)

func (a *app) serveCmd() *cobra.Command {
	var addr, kind, dataPath, token string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the JSON backend",
		Long: `Serve the /api contract used by the http backend.

Storage is selected with --store: memory (lost on exit), json (a single
oadesk.json file) or sqlite.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sc := a.cfg.Server
			if addr != "" {
				sc.Addr = addr
			}
			if kind != "" {
				sc.Store = kind
			}
			if dataPath != "" {
				sc.DataPath = dataPath
			}
			if token != "" {
				sc.Token = token
			}

			// The terminal is free while serving, so log there.
			logger, err := logging.New(logging.Options{Stderr: true, Level: a.cfg.Log.Level, Verbose: a.verbose})
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			st, err := openStore(ctx, sc)
			if err != nil {
				return err
			}
			defer st.Close()
			logger.Info("store ready", zap.String("store", sc.Store), zap.String("path", sc.DataPath))

			srv := server.New(server.Config{Addr: sc.Addr, Token: sc.Token}, st, assistant.Scripted{}, logger)
			return srv.Run(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().StringVar(&kind, "store", "", "storage: memory, json or sqlite")
	cmd.Flags().StringVar(&dataPath, "data", "", "data file for json/sqlite storage")
	cmd.Flags().StringVar(&token, "token", "", "require this bearer token on /api requests")
	return cmd
}

// openStore opens the storage selected by sc. DataPath is filled in with the
// default location under ~/.oadesk when empty.
func openStore(ctx context.Context, sc config.ServerConfig) (store.Store, error) {
	switch sc.Store {
	case config.StoreMemory, "":
		return store.NewMemory(), nil
	case config.StoreJSON:
		path := sc.DataPath
		if path == "" {
			dir, err := config.Dir()
			if err != nil {
				return nil, err
			}
			if path, err = jsonstore.DataPath(dir); err != nil {
				return nil, err
			}
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, fmt.Errorf("mkdir: %w", err)
		}
		return jsonstore.Open(path)
	case config.StoreSQLite:
		path := sc.DataPath
		if path == "" {
			dir, err := config.Dir()
			if err != nil {
				return nil, err
			}
			if err := os.MkdirAll(dir, 0o700); err != nil {
				return nil, fmt.Errorf("mkdir: %w", err)
			}
			path = filepath.Join(dir, "oadesk.db")
		}
		return sqlitestore.Open(ctx, path)
	}
	return nil, fmt.Errorf("unknown store %q (want memory|json|sqlite)", sc.Store)
}
