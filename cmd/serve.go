package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"academictoken/internal/bootstrap"
	"academictoken/internal/bootstrap/logging"
	"academictoken/internal/errs"
	"academictoken/internal/transport/httpapi"
	"academictoken/internal/usecase/academic"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the read-only HTTP query API",
	RunE: withApp(func(cmd *cobra.Command, app *bootstrap.App, svc *academic.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))
		ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		httpCfg := app.Config.HTTP
		addr, _ := cmd.Flags().GetString("addr")
		if addr == "" {
			addr = httpCfg.Addr
		}

		server := &http.Server{
			Addr:         addr,
			Handler:      httpapi.NewRouter(svc),
			ReadTimeout:  httpCfg.ReadTimeout,
			WriteTimeout: httpCfg.WriteTimeout,
			BaseContext:  func(net.Listener) context.Context { return ctx },
		}

		serveErr := make(chan error, 1)
		go func() {
			serveErr <- server.ListenAndServe()
		}()
		logging.Info(ctx, "http api listening", slog.String("addr", addr))
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "serving http api on %s\n", addr); err != nil {
			return errs.Wrap(err, "write serve output")
		}

		select {
		case err := <-serveErr:
			if !errors.Is(err, http.ErrServerClosed) {
				return errs.Wrap(err, "serve http api")
			}
			return nil
		case <-ctx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return errs.Wrap(err, "shutdown http api")
		}
		logging.Info(ctx, "http api stopped")
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "", "Listen address (defaults to http.addr from config)")
}
