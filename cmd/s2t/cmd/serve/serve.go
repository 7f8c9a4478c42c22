package serve

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"s2t/cmd/s2t/cmd/cli"
	"s2t/internal/api/server"
	"s2t/internal/api/v1/handlers"
	v1routes "s2t/internal/api/v1/routes"
	"s2t/internal/api/v1/services"
)

var noLive bool

func init() {
	Cmd.Flags().BoolVar(&noLive, "no-live", false, "disable the live microphone endpoint")
}

// Cmd represents the serve command
var Cmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server with the browser UI",
	Long: `Start the HTTP server with the browser UI

- POST /api/v1/transcriptions/file streams upload and recognition progress
- GET /api/v1/live runs a microphone session over a websocket
- GET /metrics exposes Prometheus metrics`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := cli.Bootstrap()
		if err != nil {
			return err
		}
		defer a.Logger.Sync()

		container := &v1routes.ServiceContainer{
			FileService:     a.Files,
			ProviderService: services.NewProviderService(a.Registry),
			UploadLimits: handlers.UploadLimits{
				MaxBytes:  a.Config.Upload.MaxUploadBytes(),
				Extension: a.Config.Upload.Extension,
			},
			Logger: a.Logger,
		}
		if !noLive {
			container.LiveService = a.Live
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		srv := server.NewServer(server.ConfigFrom(a.Config.Server), container, a.Metrics, a.Logger)
		if err := srv.Run(ctx); err != nil {
			a.Logger.Error("server stopped", zap.Error(err))
			return err
		}
		return nil
	},
}
