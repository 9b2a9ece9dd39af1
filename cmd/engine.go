package cmd

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"academictoken/internal/bootstrap"
	"academictoken/internal/bootstrap/logging"
	"academictoken/internal/errs"
	"academictoken/internal/usecase/academic"
)

var engineCmd = &cobra.Command{
	Use:   "engine",
	Short: "Inspect and configure the engine state",
}

var engineShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show owner, approvers, threshold and counters",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *academic.Service) error {
		state, err := svc.GetEngineState(cmd.Context())
		if err != nil {
			return errs.Wrap(err, "get engine state")
		}
		return printJSON(cmd, state)
	}),
}

var engineConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Update owner, approvers or auto-approval threshold (owner only)",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *academic.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		caller, _ := cmd.Flags().GetString("caller")
		input := academic.UpdateConfigInput{
			Caller:                caller,
			AutoApprovalThreshold: optionalInt(cmd, "threshold"),
		}
		if cmd.Flags().Changed("owner") {
			owner, _ := cmd.Flags().GetString("owner")
			input.Owner = &owner
		}
		if cmd.Flags().Changed("approver") {
			approvers, _ := cmd.Flags().GetStringSlice("approver")
			input.Approvers = &approvers
		}

		state, err := svc.UpdateConfig(ctx, input)
		if err != nil {
			logging.Error(ctx, "update engine config failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "update engine config")
		}

		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "engine config updated: owner=%s approvers=%s threshold=%d\n",
			state.Owner, strings.Join(state.Approvers, ","), state.AutoApprovalThreshold); err != nil {
			return errs.Wrap(err, "write config output")
		}
		return nil
	}),
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show engine counters and record counts",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *academic.Service) error {
		stats, err := svc.Stats(cmd.Context())
		if err != nil {
			return errs.Wrap(err, "collect stats")
		}
		return printJSON(cmd, stats)
	}),
}

var dumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Dump global records for debugging",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *academic.Service) error {
		limit, _ := cmd.Flags().GetInt("limit")
		dump, err := svc.Dump(cmd.Context(), limit)
		if err != nil {
			return errs.Wrap(err, "dump records")
		}
		return printJSON(cmd, dump)
	}),
}

func init() {
	rootCmd.AddCommand(engineCmd, statsCmd, dumpCmd)
	engineCmd.AddCommand(engineShowCmd, engineConfigCmd)

	engineConfigCmd.Flags().String("caller", "", "Caller identity (must be the current owner)")
	engineConfigCmd.Flags().String("owner", "", "New owner")
	engineConfigCmd.Flags().StringSlice("approver", nil, "Replacement approver list")
	engineConfigCmd.Flags().Int("threshold", 0, "Auto-approval confidence threshold (0-100)")
	_ = engineConfigCmd.MarkFlagRequired("caller")

	dumpCmd.Flags().Int("limit", 20, "Records per section")
}
