package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"academictoken/internal/bootstrap"
	"academictoken/internal/bootstrap/logging"
	"academictoken/internal/errs"
	"academictoken/internal/usecase/academic"
)

var transferCmd = &cobra.Command{
	Use:   "transfer",
	Short: "Submit and process credit transfer requests",
}

var transferSubmitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Submit a transfer request",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *academic.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		input := academic.SubmitTransferRequestInput{}
		input.StudentID, _ = cmd.Flags().GetString("student")
		input.SourceInstitution, _ = cmd.Flags().GetString("from")
		input.TargetInstitution, _ = cmd.Flags().GetString("to")
		input.SubjectIDs, _ = cmd.Flags().GetStringSlice("subject")
		input.EquivalenceIDs, _ = cmd.Flags().GetStringSlice("equivalence")
		input.Notes, _ = cmd.Flags().GetString("notes")

		req, err := svc.SubmitTransferRequest(ctx, input)
		if err != nil {
			logging.Error(ctx, "submit transfer failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "submit transfer request")
		}

		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "submitted transfer: %s student=%s status=%s\n", req.ID, req.StudentID, req.Status); err != nil {
			return errs.Wrap(err, "write submit output")
		}
		return nil
	}),
}

var transferProcessCmd = &cobra.Command{
	Use:   "process <transfer-id>",
	Short: "Process a pending transfer with the approved equivalences",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *academic.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		caller, _ := cmd.Flags().GetString("caller")
		approved, _ := cmd.Flags().GetStringSlice("approved")
		result, err := svc.ProcessTransferRequest(ctx, academic.ProcessTransferRequestInput{
			Caller:               caller,
			TransferID:           cmd.Flags().Arg(0),
			ApprovedEquivalences: approved,
		})
		if err != nil {
			logging.Error(ctx, "process transfer failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "process transfer request")
		}

		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "processed transfer: %s status=%s credited=%d total_credits=%d\n",
			result.Request.ID, result.Request.Status, len(result.CreditedSubjects), result.Student.TotalCredits); err != nil {
			return errs.Wrap(err, "write process output")
		}
		return nil
	}),
}

var transferShowCmd = &cobra.Command{
	Use:   "show <transfer-id>",
	Short: "Show a transfer request",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *academic.Service) error {
		req, err := svc.GetTransferRequest(cmd.Context(), cmd.Flags().Arg(0))
		if err != nil {
			return errs.Wrap(err, "get transfer request")
		}
		return printJSON(cmd, req)
	}),
}

var transferListCmd = &cobra.Command{
	Use:   "list <student-id>",
	Short: "List a student's transfer requests and processed history",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *academic.Service) error {
		ctx := cmd.Context()
		studentID := cmd.Flags().Arg(0)

		page, err := svc.ListTransfersByStudent(ctx, studentID, pageRequest(cmd))
		if err != nil {
			return errs.Wrap(err, "list transfers")
		}
		history, err := svc.GetTransferHistory(ctx, studentID)
		if err != nil {
			return errs.Wrap(err, "get transfer history")
		}
		return printJSON(cmd, map[string]any{
			"requests": page,
			"history":  history,
		})
	}),
}

func init() {
	rootCmd.AddCommand(transferCmd)
	transferCmd.AddCommand(transferSubmitCmd, transferProcessCmd, transferShowCmd, transferListCmd)

	transferSubmitCmd.Flags().String("student", "", "Student ID")
	transferSubmitCmd.Flags().String("from", "", "Source institution")
	transferSubmitCmd.Flags().String("to", "", "Target institution")
	transferSubmitCmd.Flags().StringSlice("subject", nil, "Completed source subject IDs")
	transferSubmitCmd.Flags().StringSlice("equivalence", nil, "Requested equivalence IDs")
	transferSubmitCmd.Flags().String("notes", "", "Notes")
	_ = transferSubmitCmd.MarkFlagRequired("student")
	_ = transferSubmitCmd.MarkFlagRequired("from")
	_ = transferSubmitCmd.MarkFlagRequired("to")

	transferProcessCmd.Flags().String("caller", "", "Approver identity")
	transferProcessCmd.Flags().StringSlice("approved", nil, "Approved subset of the requested equivalences")
	_ = transferProcessCmd.MarkFlagRequired("caller")

	pageFlags(transferListCmd)
}
