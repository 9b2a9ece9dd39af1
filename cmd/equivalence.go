package cmd

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"academictoken/internal/bootstrap"
	"academictoken/internal/bootstrap/logging"
	"academictoken/internal/domain/equivalence"
	"academictoken/internal/errs"
	"academictoken/internal/usecase/academic"
)

type equivalenceFile struct {
	Source string `yaml:"source"`
	Target string `yaml:"target"`
	Method string `yaml:"method"`
	Notes  string `yaml:"notes"`
}

var equivalenceCmd = &cobra.Command{
	Use:     "equivalence",
	Aliases: []string{"eq"},
	Short:   "Register, analyze and approve subject equivalences",
}

var equivalenceRegisterCmd = &cobra.Command{
	Use:   "register",
	Short: "Register a source to target equivalence",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *academic.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		source, _ := cmd.Flags().GetString("source")
		target, _ := cmd.Flags().GetString("target")
		method, _ := cmd.Flags().GetString("method")
		notes, _ := cmd.Flags().GetString("notes")
		eq, err := svc.RegisterEquivalence(ctx, academic.RegisterEquivalenceInput{
			SourceSubjectID: source,
			TargetSubjectID: target,
			Method:          method,
			Notes:           notes,
		})
		if err != nil {
			logging.Error(ctx, "register equivalence failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "register equivalence")
		}

		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "registered equivalence: %s %s -> %s status=%s\n",
			eq.ID, eq.Source.ID, eq.Target.ID, eq.Status); err != nil {
			return errs.Wrap(err, "write register output")
		}
		return nil
	}),
}

var equivalenceBatchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Register many equivalences from a YAML list (owner or approver)",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *academic.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		file, _ := cmd.Flags().GetString("file")
		caller, _ := cmd.Flags().GetString("caller")
		var entries []equivalenceFile
		if err := decodeYAMLFile(cmd, file, &entries); err != nil {
			return err
		}

		items := make([]academic.RegisterEquivalenceInput, 0, len(entries))
		for _, e := range entries {
			items = append(items, academic.RegisterEquivalenceInput{
				SourceSubjectID: e.Source,
				TargetSubjectID: e.Target,
				Method:          e.Method,
				Notes:           e.Notes,
			})
		}
		results, err := svc.BatchRegisterEquivalences(ctx, academic.BatchRegisterEquivalencesInput{
			Caller: caller,
			Items:  items,
		})
		if err != nil {
			logging.Error(ctx, "batch register equivalences failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "batch register equivalences")
		}
		return printBatch(cmd, results)
	}),
}

var equivalenceAnalyzeCmd = &cobra.Command{
	Use:   "analyze <equivalence-id>",
	Short: "Score an equivalence from its cached syllabi",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *academic.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		enhanced, _ := cmd.Flags().GetBool("enhanced")
		force, _ := cmd.Flags().GetBool("force")
		timeout, _ := cmd.Flags().GetDuration("timeout")
		input := academic.AnalyzeEquivalenceInput{
			EquivalenceID:   cmd.Flags().Arg(0),
			ForceReanalysis: force,
		}
		if timeout > 0 {
			input.Deadline = time.Now().Add(timeout)
		}

		analyze := svc.AnalyzeEquivalence
		if enhanced {
			analyze = svc.AnalyzeEquivalenceEnhanced
		}
		result, err := analyze(ctx, input)
		if err != nil {
			logging.Error(ctx, "analyze equivalence failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "analyze equivalence")
		}
		return printJSON(cmd, result)
	}),
}

var equivalenceApproveCmd = &cobra.Command{
	Use:   "approve <equivalence-id>",
	Short: "Approve or reject an equivalence under review",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *academic.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		caller, _ := cmd.Flags().GetString("caller")
		reject, _ := cmd.Flags().GetBool("reject")
		eqType, _ := cmd.Flags().GetString("type")
		method, _ := cmd.Flags().GetString("method")
		notes, _ := cmd.Flags().GetString("notes")
		eq, err := svc.ApproveEquivalence(ctx, academic.ApproveEquivalenceInput{
			Caller:               caller,
			EquivalenceID:        cmd.Flags().Arg(0),
			Approve:              !reject,
			Type:                 eqType,
			SimilarityPercentage: optionalInt(cmd, "similarity"),
			Method:               method,
			Notes:                notes,
		})
		if err != nil {
			logging.Error(ctx, "approve equivalence failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "approve equivalence")
		}

		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "equivalence %s: status=%s type=%s similarity=%d\n",
			eq.ID, eq.Status, eq.Type, eq.SimilarityPercentage); err != nil {
			return errs.Wrap(err, "write approve output")
		}
		return nil
	}),
}

var equivalenceShowCmd = &cobra.Command{
	Use:   "show <equivalence-id>",
	Short: "Show an equivalence and its latest analysis",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *academic.Service) error {
		ctx := cmd.Context()
		eq, err := svc.GetEquivalence(ctx, cmd.Flags().Arg(0))
		if err != nil {
			return errs.Wrap(err, "get equivalence")
		}
		out := map[string]any{"equivalence": eq}
		if analysis, err := svc.GetAnalysis(ctx, eq.ID); err == nil {
			out["analysis"] = analysis
		}
		return printJSON(cmd, out)
	}),
}

var equivalenceListCmd = &cobra.Command{
	Use:   "list",
	Short: "List equivalences by institution or status",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *academic.Service) error {
		ctx := cmd.Context()
		institution, _ := cmd.Flags().GetString("institution")
		status, _ := cmd.Flags().GetString("status")

		var (
			page academic.PageResult[equivalence.Equivalence]
			err  error
		)
		if institution != "" {
			page, err = svc.ListEquivalencesByInstitution(ctx, institution, pageRequest(cmd))
		} else {
			page, err = svc.ListEquivalencesByStatus(ctx, equivalence.Status(status), pageRequest(cmd))
		}
		if err != nil {
			return errs.Wrap(err, "list equivalences")
		}
		return printJSON(cmd, page)
	}),
}

func init() {
	rootCmd.AddCommand(equivalenceCmd)
	equivalenceCmd.AddCommand(
		equivalenceRegisterCmd,
		equivalenceBatchCmd,
		equivalenceAnalyzeCmd,
		equivalenceApproveCmd,
		equivalenceShowCmd,
		equivalenceListCmd,
	)

	equivalenceRegisterCmd.Flags().String("source", "", "Source subject ID")
	equivalenceRegisterCmd.Flags().String("target", "", "Target subject ID")
	equivalenceRegisterCmd.Flags().String("method", "", "Analysis method (automatic|manual|hybrid|institutional)")
	equivalenceRegisterCmd.Flags().String("notes", "", "Notes")
	_ = equivalenceRegisterCmd.MarkFlagRequired("source")
	_ = equivalenceRegisterCmd.MarkFlagRequired("target")

	equivalenceBatchCmd.Flags().String("file", "", "YAML list of {source, target, method, notes} (- for stdin)")
	equivalenceBatchCmd.Flags().String("caller", "", "Caller identity (must be the engine owner)")

	equivalenceAnalyzeCmd.Flags().Bool("enhanced", false, "Use the ten-factor enhanced analysis")
	equivalenceAnalyzeCmd.Flags().Bool("force", false, "Re-analyze an equivalence already under review")
	equivalenceAnalyzeCmd.Flags().Duration("timeout", 0, "Analysis deadline (0 means none)")

	equivalenceApproveCmd.Flags().String("caller", "", "Approver identity")
	equivalenceApproveCmd.Flags().Bool("reject", false, "Reject instead of approve")
	equivalenceApproveCmd.Flags().String("type", "", "Override the equivalence type (Full|Partial|Conditional|None)")
	equivalenceApproveCmd.Flags().Int("similarity", 0, "Override the similarity percentage")
	equivalenceApproveCmd.Flags().String("method", "", "Decision method (automatic|manual|hybrid|institutional)")
	equivalenceApproveCmd.Flags().String("notes", "", "Decision notes")
	_ = equivalenceApproveCmd.MarkFlagRequired("caller")

	equivalenceListCmd.Flags().String("institution", "", "Institution on either side of the pair")
	equivalenceListCmd.Flags().String("status", string(equivalence.StatusUnderReview), "Status filter when no institution is given")
	pageFlags(equivalenceListCmd)
}
