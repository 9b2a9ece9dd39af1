package cmd

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"academictoken/internal/bootstrap"
	"academictoken/internal/bootstrap/logging"
	"academictoken/internal/errs"
	"academictoken/internal/usecase/academic"
)

var contentCmd = &cobra.Command{
	Use:   "content",
	Short: "Cache and inspect syllabus documents",
}

var contentCacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Cache a syllabus document file under its locator",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *academic.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		locator, _ := cmd.Flags().GetString("locator")
		file, _ := cmd.Flags().GetString("file")
		format, _ := cmd.Flags().GetString("format")
		language, _ := cmd.Flags().GetString("language")

		raw, format, err := readContentSource(cmd, file, format)
		if err != nil {
			logging.Error(ctx, "read content source failed", slog.Any("err", errs.Loggable(err)))
			return err
		}

		result, err := svc.CacheContent(ctx, academic.CacheContentInput{
			Locator:  locator,
			Format:   format,
			Language: language,
			Raw:      raw,
		})
		if err != nil {
			logging.Error(ctx, "cache content failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "cache content")
		}

		doc := result.Document
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "cached content: %s format=%s hash=%s replaced=%t\n",
			doc.Locator, doc.Format, doc.Hash, result.Replaced); err != nil {
			return errs.Wrap(err, "write cache output")
		}
		return nil
	}),
}

// readContentSource reads the document body and infers the format from the
// file extension when none is given.
func readContentSource(cmd *cobra.Command, file, format string) ([]byte, string, error) {
	raw, err := readInput(cmd, file)
	if err != nil {
		return nil, "", err
	}
	if strings.TrimSpace(format) == "" {
		format = strings.TrimPrefix(filepath.Ext(strings.TrimSpace(file)), ".")
	}
	return raw, format, nil
}

var contentShowCmd = &cobra.Command{
	Use:   "show <locator>",
	Short: "Show a cached document",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *academic.Service) error {
		doc, err := svc.GetContent(cmd.Context(), cmd.Flags().Arg(0))
		if err != nil {
			return errs.Wrap(err, "get content")
		}
		return printJSON(cmd, doc)
	}),
}

func init() {
	rootCmd.AddCommand(contentCmd)
	contentCmd.AddCommand(contentCacheCmd, contentShowCmd)

	contentCacheCmd.Flags().String("locator", "", "Locator the document is cached under")
	contentCacheCmd.Flags().String("file", "", "Read the document from a file (- for stdin)")
	contentCacheCmd.Flags().String("format", "", "Document format (yaml|json|html|text), inferred from --file when empty")
	contentCacheCmd.Flags().String("language", "", "Document language when the body does not declare one")
	_ = contentCacheCmd.MarkFlagRequired("locator")
	_ = contentCacheCmd.MarkFlagRequired("file")
}
