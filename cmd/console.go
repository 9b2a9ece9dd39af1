package cmd

import (
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"academictoken/internal/bootstrap"
	"academictoken/internal/bootstrap/logging"
	"academictoken/internal/errs"
	"academictoken/internal/usecase/academic"
	"academictoken/internal/usecase/reviewconsole"
)

var consoleCmd = &cobra.Command{
	Use:   "console",
	Short: "Terminal console commands",
}

var consoleReviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Start the equivalence review console",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *academic.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		approver, _ := cmd.Flags().GetString("approver")
		method, _ := cmd.Flags().GetString("method")
		refreshInterval, _ := cmd.Flags().GetDuration("refresh-interval")

		model := reviewconsole.NewReviewModel(ctx, svc, reviewconsole.Options{
			Approver:        approver,
			Method:          method,
			RefreshInterval: refreshInterval,
		})

		program := tea.NewProgram(model, tea.WithAltScreen())
		if _, err := program.Run(); err != nil {
			return errs.Wrap(err, "run review console")
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(consoleCmd)
	consoleCmd.AddCommand(consoleReviewCmd)
	consoleReviewCmd.Flags().String("approver", "", "Approver identity used for decisions")
	consoleReviewCmd.Flags().String("method", "manual", "Decision method recorded on the equivalence")
	consoleReviewCmd.Flags().Duration("refresh-interval", 5*time.Second, "Auto refresh interval")
}
