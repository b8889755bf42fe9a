package cmd

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"
)

// addFormatFlag registers the --format/-f flag shared by commands that
// print structured output.
func addFormatFlag(cmd *cobra.Command, target *string, formats []string) {
	cmd.Flags().StringVarP(target, "format", "f", formats[0],
		fmt.Sprintf("output format (%s)", strings.Join(formats, ", ")))
	_ = cmd.RegisterFlagCompletionFunc("format", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return formats, cobra.ShellCompDirectiveNoFileComp
	})
}

// ValidateFormat checks an output format against the allowed ones.
func ValidateFormat(format string, valid []string) error {
	if slices.Contains(valid, strings.ToLower(format)) {
		return nil
	}
	return fmt.Errorf("invalid output format %s, must be one of: %s", format, strings.Join(valid, ", "))
}
