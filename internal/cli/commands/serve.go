package commands

import (
	"os/signal"
	"syscall"

	"github.com/querydeck/querydeck/internal/ui"
	"github.com/spf13/cobra"
)

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the dashboard gateway server",
		Long: `Start the local gateway the browser dashboard talks to. The gateway
renders from the snapshot cache immediately, reconciles with the remote
service in the background, and exposes all dashboard operations as a
JSON API.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := ConfigFrom(cmd)
			if err != nil {
				return err
			}
			logger := NewLogger(cfg)

			store, err := OpenCache(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			srv := ui.NewServer(ui.Config{
				Client:        NewClient(cfg),
				Cache:         store,
				Port:          cfg.Serve.Port,
				DefaultUser:   cfg.User,
				SessionSecret: cfg.Serve.SessionSecret,
				Debounce:      cfg.Sync.Debounce,
				Logger:        logger,
			})

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return srv.Serve(ctx)
		},
	}
}
