package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Dukorsa/ROYZAPP_CLIENTES_GO/internal/server"
)

func newServeCmd(root *rootOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Sobe a API HTTP de importação de clientes",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := bootstrap(root.envPath)
			if err != nil {
				return err
			}
			defer app.close()

			if addr == "" {
				addr = app.cfg.HTTPAddr
			}

			sessions := server.NewSessionStore(app.cfg.ImportSessionTTL)
			sessions.StartCleanupGoroutine(0)
			defer sessions.Shutdown()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return server.New(app.cfg, app.imports, app.audit, sessions).ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Endereço de escuta (padrão APP_HTTP_ADDR)")
	return cmd
}
