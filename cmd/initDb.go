/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"academictoken/internal/bootstrap"
	"academictoken/internal/bootstrap/logging"
	"academictoken/internal/domain/engine"
	"academictoken/internal/errs"
	"academictoken/internal/usecase/academic"
)

// initDbCmd represents the initDb command
var initDbCmd = &cobra.Command{
	Use:   "init-db",
	Short: "Initialize database schema and seed the engine state",
	RunE: withApp(func(cmd *cobra.Command, app *bootstrap.App, svc *academic.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))
		logging.Info(ctx, "start init-db")

		if err := app.InitSchema(ctx); err != nil {
			logging.Error(ctx, "initialize schema failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "initialize schema")
		}

		engineCfg := app.Config.Engine
		threshold := engineCfg.AutoApprovalThreshold
		state, err := svc.InitEngine(ctx, academic.InitEngineInput{
			Owner:                 engineCfg.Owner,
			Approvers:             engineCfg.Approvers,
			AutoApprovalThreshold: &threshold,
		})
		switch {
		case errors.Is(err, engine.ErrAlreadyInitialized):
			logging.Info(ctx, "engine state already initialized")
		case err != nil:
			logging.Error(ctx, "initialize engine state failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "initialize engine state")
		default:
			logging.Info(ctx, "engine state initialized",
				slog.String("owner", state.Owner),
				slog.Int("auto_approval_threshold", state.AutoApprovalThreshold),
			)
		}

		logging.Info(ctx, "init-db finished", slog.String("database_dsn", app.Config.Database.DSN))
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "database schema initialized: %s\n", app.Config.Database.DSN); err != nil {
			return errs.Wrap(err, "write init-db output")
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(initDbCmd)
}
