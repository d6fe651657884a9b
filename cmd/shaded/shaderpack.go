package main

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pictomancers/shaded/pkg/shaded/output"
	"github.com/pictomancers/shaded/pkg/shaded/shaderpack"
	"github.com/pictomancers/shaded/pkg/shaded/validate"
)

var shaderpackCmd = &cobra.Command{
	Use:   "shaderpack",
	Short: "Work with a single shaderpack manifest",
}

func init() {
	shaderpackCmd.AddCommand(newValidateCmd(), newFormatCmd())
	rootCmd.AddCommand(newValidateCmd(), newFormatCmd(), shaderpackCmd)
}

// newValidateCmd is built per parent because a cobra command has exactly one.
func newValidateCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "validate <manifest>",
		Short: "Validate a shaderpack manifest",
		Long: `Check a shaderpack manifest and report every problem found.

Warnings (such as a missing license file) do not fail the command; any error
finding makes it exit non-zero after the full report is printed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("format") && getPlain() {
				format = "plain"
			}
			return runValidate(cmd, args[0], format)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "pretty",
		fmt.Sprintf("report format (%s)", strings.Join(output.Available(), ", ")))
	return cmd
}

func runValidate(cmd *cobra.Command, path, format string) error {
	formatter, err := output.Get(format)
	if err != nil {
		return err
	}

	report, err := validate.ValidateFile(path)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := formatter.Format(&buf, report); err != nil {
		return fmt.Errorf("failed to format report: %w", err)
	}
	if _, err := cmd.OutOrStdout().Write(buf.Bytes()); err != nil {
		return err
	}

	if report.Status == validate.Invalid {
		return validate.ErrInvalidManifest
	}
	return nil
}

func newFormatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "format <manifest>",
		Short: "Sort the file lists of a shaderpack manifest",
		Long: `Rewrite a shaderpack manifest with its shader, texture, preset and addon
lists sorted by source and then output path. The manifest is not validated.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := shaderpack.Format(args[0]); err != nil {
				return err
			}
			printInfo(cmd, "Formatted %s", args[0])
			return nil
		},
	}
}
