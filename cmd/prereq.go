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

type prerequisiteGroupFile struct {
	ID                       string   `yaml:"id"`
	Type                     string   `yaml:"type"`
	Logic                    string   `yaml:"logic"`
	MinimumCredits           int      `yaml:"minimum_credits"`
	MinimumCompletedSubjects int      `yaml:"minimum_completed_subjects"`
	Subjects                 []string `yaml:"subjects"`
	Priority                 int      `yaml:"priority"`
	Confidence               int      `yaml:"confidence"`
	Content                  string   `yaml:"content"`
}

type prerequisiteFile struct {
	SubjectID string                  `yaml:"subject_id"`
	Groups    []prerequisiteGroupFile `yaml:"groups"`
}

func (f prerequisiteFile) input() academic.RegisterPrerequisitesInput {
	groups := make([]academic.PrerequisiteGroupInput, 0, len(f.Groups))
	for _, g := range f.Groups {
		groups = append(groups, academic.PrerequisiteGroupInput{
			ID:                       g.ID,
			GroupType:                g.Type,
			MinimumCredits:           g.MinimumCredits,
			MinimumCompletedSubjects: g.MinimumCompletedSubjects,
			SubjectIDs:               g.Subjects,
			Logic:                    g.Logic,
			Priority:                 g.Priority,
			Confidence:               g.Confidence,
			ContentLocator:           g.Content,
		})
	}
	return academic.RegisterPrerequisitesInput{SubjectID: f.SubjectID, Groups: groups}
}

var prereqCmd = &cobra.Command{
	Use:   "prereq",
	Short: "Manage prerequisite groups",
}

var prereqRegisterCmd = &cobra.Command{
	Use:   "register",
	Short: "Replace the prerequisite groups of one subject from a YAML file",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *academic.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		file, _ := cmd.Flags().GetString("file")
		var doc prerequisiteFile
		if err := decodeYAMLFile(cmd, file, &doc); err != nil {
			return err
		}

		groups, err := svc.RegisterPrerequisites(ctx, doc.input())
		if err != nil {
			logging.Error(ctx, "register prerequisites failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "register prerequisites")
		}

		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "registered prerequisites: %s groups=%d\n", doc.SubjectID, len(groups)); err != nil {
			return errs.Wrap(err, "write register output")
		}
		return nil
	}),
}

var prereqBatchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Register prerequisite groups for many subjects (owner or approver)",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *academic.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		file, _ := cmd.Flags().GetString("file")
		caller, _ := cmd.Flags().GetString("caller")
		var batch struct {
			Items []prerequisiteFile `yaml:"items"`
		}
		if err := decodeYAMLFile(cmd, file, &batch); err != nil {
			return err
		}

		items := make([]academic.RegisterPrerequisitesInput, 0, len(batch.Items))
		for _, item := range batch.Items {
			items = append(items, item.input())
		}
		results, err := svc.BatchRegisterPrerequisites(ctx, academic.BatchRegisterPrerequisitesInput{
			Caller: caller,
			Items:  items,
		})
		if err != nil {
			logging.Error(ctx, "batch register prerequisites failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "batch register prerequisites")
		}
		return printBatch(cmd, results)
	}),
}

var prereqAnalyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Score a candidate prerequisite and update group confidence",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *academic.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		subjectID, _ := cmd.Flags().GetString("subject")
		candidateID, _ := cmd.Flags().GetString("candidate")
		result, err := svc.AnalyzePrerequisiteRelationship(ctx, academic.AnalyzePrerequisiteRelationshipInput{
			SubjectID:   subjectID,
			CandidateID: candidateID,
		})
		if err != nil {
			logging.Error(ctx, "analyze prerequisite failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "analyze prerequisite relationship")
		}
		return printJSON(cmd, result)
	}),
}

func init() {
	rootCmd.AddCommand(prereqCmd)
	prereqCmd.AddCommand(prereqRegisterCmd, prereqBatchCmd, prereqAnalyzeCmd)

	prereqRegisterCmd.Flags().String("file", "", "YAML file with subject_id and groups (- for stdin)")
	prereqBatchCmd.Flags().String("file", "", "YAML file with an items list (- for stdin)")
	prereqBatchCmd.Flags().String("caller", "", "Caller identity (must be the engine owner)")
	prereqAnalyzeCmd.Flags().String("subject", "", "Subject that would require the candidate")
	prereqAnalyzeCmd.Flags().String("candidate", "", "Candidate prerequisite subject")
	_ = prereqAnalyzeCmd.MarkFlagRequired("subject")
	_ = prereqAnalyzeCmd.MarkFlagRequired("candidate")
}
