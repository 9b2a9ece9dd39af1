package cmd

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"academictoken/internal/bootstrap"
	"academictoken/internal/bootstrap/logging"
	"academictoken/internal/errs"
	"academictoken/internal/usecase/academic"
)

var errInvalidDate = errs.New(errs.KindInvalidInput, "completion date must be YYYY-MM-DD")

type completedSubjectFile struct {
	Subject    string `yaml:"subject"`
	Credits    int    `yaml:"credits"`
	Date       string `yaml:"date"`
	Grade      int    `yaml:"grade"`
	Credential string `yaml:"credential"`
	Content    string `yaml:"content"`
}

func (f completedSubjectFile) input() (academic.CompletedSubjectInput, error) {
	in := academic.CompletedSubjectInput{
		SubjectID:      f.Subject,
		Credits:        f.Credits,
		Grade:          f.Grade,
		CredentialRef:  f.Credential,
		ContentLocator: f.Content,
	}
	if date := strings.TrimSpace(f.Date); date != "" {
		parsed, err := time.Parse(time.DateOnly, date)
		if err != nil {
			return academic.CompletedSubjectInput{}, errs.E(errInvalidDate, "subject_id", f.Subject, "date", date)
		}
		in.CompletionDate = parsed
	}
	return in, nil
}

var studentCmd = &cobra.Command{
	Use:   "student",
	Short: "Manage student records, enrollment checks and degree validation",
}

var studentShowCmd = &cobra.Command{
	Use:   "show <student-id>",
	Short: "Show a student's completed subjects",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *academic.Service) error {
		record, err := svc.GetStudentRecord(cmd.Context(), cmd.Flags().Arg(0))
		if err != nil {
			return errs.Wrap(err, "get student record")
		}
		return printJSON(cmd, record)
	}),
}

var studentCompleteCmd = &cobra.Command{
	Use:   "complete",
	Short: "Append completed subjects to a student record",
	Long:  "Append one completed subject from flags, or many from a YAML list of {subject, credits, date, grade, credential, content}.",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *academic.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		studentID, _ := cmd.Flags().GetString("student")
		file, _ := cmd.Flags().GetString("file")

		var entries []completedSubjectFile
		if file != "" {
			if err := decodeYAMLFile(cmd, file, &entries); err != nil {
				return err
			}
		} else {
			var entry completedSubjectFile
			entry.Subject, _ = cmd.Flags().GetString("subject")
			entry.Credits, _ = cmd.Flags().GetInt("credits")
			entry.Date, _ = cmd.Flags().GetString("date")
			entry.Grade, _ = cmd.Flags().GetInt("grade")
			entry.Credential, _ = cmd.Flags().GetString("credential")
			entry.Content, _ = cmd.Flags().GetString("content")
			entries = append(entries, entry)
		}

		subjects := make([]academic.CompletedSubjectInput, 0, len(entries))
		for _, entry := range entries {
			in, err := entry.input()
			if err != nil {
				return err
			}
			subjects = append(subjects, in)
		}

		record, err := svc.UpdateStudentRecord(ctx, academic.UpdateStudentRecordInput{
			StudentID: studentID,
			Subjects:  subjects,
		})
		if err != nil {
			logging.Error(ctx, "update student record failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "update student record")
		}

		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "updated student: %s subjects=%d total_credits=%d\n",
			record.StudentID, len(record.CompletedSubjects), record.TotalCredits); err != nil {
			return errs.Wrap(err, "write update output")
		}
		return nil
	}),
}

var studentVerifyCmd = &cobra.Command{
	Use:     "verify",
	Aliases: []string{"enroll"},
	Short:   "Check whether a student may enroll in a subject",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *academic.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		studentID, _ := cmd.Flags().GetString("student")
		subjectID, _ := cmd.Flags().GetString("subject")
		verification, err := svc.VerifyEnrollment(ctx, academic.VerifyEnrollmentInput{
			StudentID: studentID,
			SubjectID: subjectID,
		})
		if err != nil {
			logging.Error(ctx, "verify enrollment failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "verify enrollment")
		}
		return printJSON(cmd, verification)
	}),
}

var studentVerificationsCmd = &cobra.Command{
	Use:   "verifications <student-id>",
	Short: "List enrollment verifications of a student",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *academic.Service) error {
		page, err := svc.ListVerificationsByStudent(cmd.Context(), cmd.Flags().Arg(0), pageRequest(cmd))
		if err != nil {
			return errs.Wrap(err, "list verifications")
		}
		return printJSON(cmd, page)
	}),
}

var studentDegreeCmd = &cobra.Command{
	Use:   "degree",
	Short: "Validate a student's history against a curriculum",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *academic.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		studentID, _ := cmd.Flags().GetString("student")
		curriculumID, _ := cmd.Flags().GetString("curriculum")
		satisfied, _ := cmd.Flags().GetStringSlice("satisfied")
		refresh, _ := cmd.Flags().GetBool("refresh")
		result, err := svc.ValidateDegree(ctx, academic.ValidateDegreeInput{
			StudentID:    studentID,
			CurriculumID: curriculumID,
			Satisfied:    satisfied,
			Refresh:      refresh,
		})
		if err != nil {
			logging.Error(ctx, "validate degree failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "validate degree")
		}
		return printJSON(cmd, result)
	}),
}

func init() {
	rootCmd.AddCommand(studentCmd)
	studentCmd.AddCommand(studentShowCmd, studentCompleteCmd, studentVerifyCmd, studentVerificationsCmd, studentDegreeCmd)

	studentCompleteCmd.Flags().String("student", "", "Student ID")
	studentCompleteCmd.Flags().String("file", "", "YAML list of completed subjects (- for stdin)")
	studentCompleteCmd.Flags().String("subject", "", "Completed subject ID")
	studentCompleteCmd.Flags().Int("credits", 0, "Credits earned (0 uses the subject's credits)")
	studentCompleteCmd.Flags().String("date", "", "Completion date YYYY-MM-DD (default today)")
	studentCompleteCmd.Flags().Int("grade", 0, "Grade on the 0-1000 scale")
	studentCompleteCmd.Flags().String("credential", "", "Credential reference")
	studentCompleteCmd.Flags().String("content", "", "Content locator of the subject version taken")
	_ = studentCompleteCmd.MarkFlagRequired("student")

	studentVerifyCmd.Flags().String("student", "", "Student ID")
	studentVerifyCmd.Flags().String("subject", "", "Subject to enroll in")
	_ = studentVerifyCmd.MarkFlagRequired("student")
	_ = studentVerifyCmd.MarkFlagRequired("subject")

	pageFlags(studentVerificationsCmd)

	studentDegreeCmd.Flags().String("student", "", "Student ID")
	studentDegreeCmd.Flags().String("curriculum", "", "Curriculum ID")
	studentDegreeCmd.Flags().StringSlice("satisfied", nil, "Additional requirements already satisfied")
	studentDegreeCmd.Flags().Bool("refresh", false, "Ignore a cached validation result")
	_ = studentDegreeCmd.MarkFlagRequired("student")
	_ = studentDegreeCmd.MarkFlagRequired("curriculum")
}
