package cli

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gots/slice"
	"github.com/urfave/cli/v3"

	"github.com/shibaleo/repomcp/internal/cli/config"
	"github.com/shibaleo/repomcp/internal/logging"
	"github.com/shibaleo/repomcp/internal/mcp"
	"github.com/shibaleo/repomcp/internal/middleware"
	"github.com/shibaleo/repomcp/internal/modules"
	"github.com/shibaleo/repomcp/internal/modules/clock"
	githubmod "github.com/shibaleo/repomcp/internal/modules/github"
)

// newHTTPServer builds the server with a header read deadline only. Read and
// write timeouts must stay unset: they cover the whole response, and the SSE
// transport holds its stream open for the life of the session.
func newHTTPServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:    addr,
		Handler: handler,

		ReadHeaderTimeout: 10 * time.Second,
	}
}

func serveCommand() *cli.Command {
	var (
		addr      string
		rateLimit int

		github config.GitHub
		sentry config.Sentry
		loki   config.Loki
	)
	serveFlags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "Binding address",
			Value:       "127.0.0.1:8089",
			Sources:     cli.EnvVars("REPOMCP_ADDR"),
			Destination: &addr,
		},
		&cli.IntFlag{
			Name:        "rate-limit",
			Usage:       "Max requests per second per client host (0 disables)",
			Value:       10,
			Sources:     cli.EnvVars("REPOMCP_RATE_LIMIT"),
			Destination: &rateLimit,
		},
	}

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Server mode",
		Flags: slice.Flatten(
			serveFlags,
			github.Flags(),
			sentry.Flags(),
			loki.Flags(),
		),
		Action: func(ctx context.Context, c *cli.Command) error {
			logging.Default().Info("starting serve",
				slog.Any("Addr", addr),
				slog.Any("RateLimit", rateLimit),
				slog.Any("GitHub", github),
				slog.Any("Sentry", sentry),
				slog.Any("Loki", loki),
			)

			if err := sentry.Configure(ctx); err != nil {
				return err
			}
			loki.Configure()

			ghClient, err := github.New()
			if err != nil {
				return err
			}

			modules.RegisterModule(githubmod.New(ghClient))
			modules.RegisterModule(clock.New())
			logging.Default().Info("registered modules", slog.Any("modules", modules.ListModules()))

			mcpHandler := mcp.NewHandler()
			rateLimiter := middleware.NewRateLimiter(rateLimit)

			r := chi.NewRouter()
			r.Use(middleware.PreProcess)
			r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
				if _, err := w.Write([]byte("ok")); err != nil {
					logging.Default().Error("fail to write response", slog.Any("error", err))
				}
			})
			r.Handle("/mcp", middleware.Recovery(rateLimiter.Middleware(middleware.Transport(mcpHandler))))

			serverErr := make(chan error, 1)
			httpServer := newHTTPServer(addr, r)

			go func() {
				logging.Default().Info("starting http server", "addr", addr)
				if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
					serverErr <- goerr.Wrap(err, "failed to listen and serve")
				}
			}()

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

			select {
			case err := <-serverErr:
				return err

			case sig := <-quit:
				logging.Default().Info("shutting down server", "signal", sig)

				ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				defer cancel()

				if err := httpServer.Shutdown(ctx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server")
				}
			}

			return nil
		},
	}
}
