package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"academictoken/internal/errs"
	"academictoken/internal/usecase/academic"
)

var (
	errFileRequired = errs.New(errs.KindInvalidInput, "--file is required")
	errDecodeInput  = errs.New(errs.KindInvalidInput, "decode input file")
)

// readInput reads a file, or stdin when path is "-".
func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errFileRequired
	}
	if path == "-" {
		raw, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, errs.Wrap(err, "read stdin")
		}
		return raw, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.Wrapf(err, "read %s", path)
	}
	return raw, nil
}

// decodeYAMLFile reads path and decodes it as YAML (JSON is valid YAML).
func decodeYAMLFile(cmd *cobra.Command, path string, out any) error {
	raw, err := readInput(cmd, path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(raw, out); err != nil {
		return errs.E(errDecodeInput, "path", path, "reason", err.Error())
	}
	return nil
}

func printJSON(cmd *cobra.Command, v any) error {
	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		return errs.Wrap(err, "write json output")
	}
	return nil
}

// printBatch writes one line per batch item and fails when any item failed.
func printBatch(cmd *cobra.Command, results []academic.BatchItemResult) error {
	failed := 0
	for _, r := range results {
		line := fmt.Sprintf("#%d ok id=%s", r.Index, r.ID)
		if r.Err != nil {
			failed++
			line = fmt.Sprintf("#%d failed kind=%s err=%v", r.Index, errs.KindOf(r.Err), r.Err)
		}
		if _, err := fmt.Fprintln(cmd.OutOrStdout(), line); err != nil {
			return errs.Wrap(err, "write batch output")
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d batch items failed", failed, len(results))
	}
	return nil
}

func pageFlags(cmd *cobra.Command) {
	cmd.Flags().Int("limit", 0, "Page size (0 uses the default)")
	cmd.Flags().String("start-after", "", "Cursor returned by the previous page")
}

func pageRequest(cmd *cobra.Command) academic.PageRequest {
	limit, _ := cmd.Flags().GetInt("limit")
	startAfter, _ := cmd.Flags().GetString("start-after")
	return academic.PageRequest{Limit: limit, StartAfter: startAfter}
}

// optionalInt returns nil unless the flag was set explicitly.
func optionalInt(cmd *cobra.Command, name string) *int {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, _ := cmd.Flags().GetInt(name)
	return &v
}
