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

var subjectCmd = &cobra.Command{
	Use:   "subject",
	Short: "Register and inspect subjects",
}

var subjectRegisterCmd = &cobra.Command{
	Use:   "register",
	Short: "Register a subject",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *academic.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		input := academic.RegisterSubjectInput{}
		input.ID, _ = cmd.Flags().GetString("id")
		input.Title, _ = cmd.Flags().GetString("title")
		input.Institution, _ = cmd.Flags().GetString("institution")
		input.Credits, _ = cmd.Flags().GetInt("credits")
		input.ContentLocator, _ = cmd.Flags().GetString("content")
		input.ContentHash, _ = cmd.Flags().GetString("hash")
		input.Level, _ = cmd.Flags().GetString("level")
		input.Department, _ = cmd.Flags().GetString("department")
		input.WorkloadHours, _ = cmd.Flags().GetInt("workload-hours")
		input.Semester, _ = cmd.Flags().GetString("semester")
		input.Language, _ = cmd.Flags().GetString("language")

		subject, err := svc.RegisterSubject(ctx, input)
		if err != nil {
			logging.Error(ctx, "register subject failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "register subject")
		}

		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "registered subject: %s credits=%d hash=%s\n", subject.ID, subject.Credits, subject.ContentHash); err != nil {
			return errs.Wrap(err, "write register output")
		}
		return nil
	}),
}

var subjectShowCmd = &cobra.Command{
	Use:   "show <subject-id>",
	Short: "Show a subject with its prerequisite groups",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *academic.Service) error {
		ctx := cmd.Context()
		subjectID := cmd.Flags().Arg(0)

		subject, err := svc.GetSubject(ctx, subjectID)
		if err != nil {
			return errs.Wrap(err, "get subject")
		}
		groups, err := svc.GetPrerequisites(ctx, subjectID)
		if err != nil {
			return errs.Wrap(err, "get prerequisites")
		}
		return printJSON(cmd, map[string]any{
			"subject":       subject,
			"prerequisites": groups,
		})
	}),
}

var subjectListCmd = &cobra.Command{
	Use:   "list",
	Short: "List subjects of an institution",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *academic.Service) error {
		institution, _ := cmd.Flags().GetString("institution")
		page, err := svc.ListSubjectsByInstitution(cmd.Context(), institution, pageRequest(cmd))
		if err != nil {
			return errs.Wrap(err, "list subjects")
		}
		return printJSON(cmd, page)
	}),
}

func init() {
	rootCmd.AddCommand(subjectCmd)
	subjectCmd.AddCommand(subjectRegisterCmd, subjectShowCmd, subjectListCmd)

	subjectRegisterCmd.Flags().String("id", "", "Subject ID")
	subjectRegisterCmd.Flags().String("title", "", "Subject title")
	subjectRegisterCmd.Flags().String("institution", "", "Institution that offers the subject")
	subjectRegisterCmd.Flags().Int("credits", 0, "Credit value (1-50)")
	subjectRegisterCmd.Flags().String("content", "", "Syllabus content locator")
	subjectRegisterCmd.Flags().String("hash", "", "Syllabus content hash (filled from the cache when empty)")
	subjectRegisterCmd.Flags().String("level", "undergraduate", "Level (undergraduate|graduate|postgraduate)")
	subjectRegisterCmd.Flags().String("department", "", "Department")
	subjectRegisterCmd.Flags().Int("workload-hours", 0, "Workload in hours")
	subjectRegisterCmd.Flags().String("semester", "", "Semester label")
	subjectRegisterCmd.Flags().String("language", "", "Teaching language")
	_ = subjectRegisterCmd.MarkFlagRequired("id")
	_ = subjectRegisterCmd.MarkFlagRequired("institution")

	subjectListCmd.Flags().String("institution", "", "Institution")
	_ = subjectListCmd.MarkFlagRequired("institution")
	pageFlags(subjectListCmd)
}
