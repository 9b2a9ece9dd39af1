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

var curriculumCmd = &cobra.Command{
	Use:   "curriculum",
	Short: "Register and inspect degree curricula",
}

var curriculumRegisterCmd = &cobra.Command{
	Use:   "register",
	Short: "Register one curriculum",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *academic.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		input := academic.RegisterCurriculumInput{MinimumGPA: optionalInt(cmd, "minimum-gpa")}
		input.ID, _ = cmd.Flags().GetString("id")
		input.Name, _ = cmd.Flags().GetString("name")
		input.MinimumCredits, _ = cmd.Flags().GetInt("minimum-credits")
		input.RequiredSubjects, _ = cmd.Flags().GetStringSlice("required")
		input.AdditionalRequirements, _ = cmd.Flags().GetStringSlice("additional")
		input.Replace, _ = cmd.Flags().GetBool("replace")

		req, err := svc.RegisterCurriculum(ctx, input)
		if err != nil {
			logging.Error(ctx, "register curriculum failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "register curriculum")
		}

		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "registered curriculum: %s minimum_credits=%d required=%d\n",
			req.ID, req.MinimumCredits, len(req.RequiredSubjects)); err != nil {
			return errs.Wrap(err, "write register output")
		}
		return nil
	}),
}

var curriculumImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Import a TOML catalog of [[curriculum]] tables",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *academic.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		file, _ := cmd.Flags().GetString("file")
		replace, _ := cmd.Flags().GetBool("replace")
		raw, err := readInput(cmd, file)
		if err != nil {
			return err
		}

		results, err := svc.ImportCurricula(ctx, academic.ImportCurriculaInput{Raw: raw, Replace: replace})
		if err != nil {
			logging.Error(ctx, "import curricula failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "import curricula")
		}
		return printBatch(cmd, results)
	}),
}

var curriculumShowCmd = &cobra.Command{
	Use:   "show <curriculum-id>",
	Short: "Show a curriculum",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *academic.Service) error {
		req, err := svc.GetCurriculum(cmd.Context(), cmd.Flags().Arg(0))
		if err != nil {
			return errs.Wrap(err, "get curriculum")
		}
		return printJSON(cmd, req)
	}),
}

var curriculumListCmd = &cobra.Command{
	Use:   "list",
	Short: "List curricula",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *academic.Service) error {
		page, err := svc.ListCurricula(cmd.Context(), pageRequest(cmd))
		if err != nil {
			return errs.Wrap(err, "list curricula")
		}
		return printJSON(cmd, page)
	}),
}

func init() {
	rootCmd.AddCommand(curriculumCmd)
	curriculumCmd.AddCommand(curriculumRegisterCmd, curriculumImportCmd, curriculumShowCmd, curriculumListCmd)

	curriculumRegisterCmd.Flags().String("id", "", "Curriculum ID")
	curriculumRegisterCmd.Flags().String("name", "", "Curriculum name")
	curriculumRegisterCmd.Flags().Int("minimum-credits", 0, "Minimum total credits")
	curriculumRegisterCmd.Flags().StringSlice("required", nil, "Required subject IDs")
	curriculumRegisterCmd.Flags().Int("minimum-gpa", 0, "Minimum GPA on the 0-1000 scale")
	curriculumRegisterCmd.Flags().StringSlice("additional", nil, "Additional requirement labels")
	curriculumRegisterCmd.Flags().Bool("replace", false, "Overwrite an existing curriculum")
	_ = curriculumRegisterCmd.MarkFlagRequired("id")

	curriculumImportCmd.Flags().String("file", "", "TOML catalog file (- for stdin)")
	curriculumImportCmd.Flags().Bool("replace", false, "Overwrite existing curricula")

	pageFlags(curriculumListCmd)
}
