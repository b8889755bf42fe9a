package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/toudaivocadou/vocadou/internal/version"
)

var versionFormats = []string{"text", "json"}

func newVersionCmd() *cobra.Command {
	var (
		format string
		short  bool
	)

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long: `Display the version, git commit, build time, Go version and platform
of this binary.

Examples:
  vocadou version                 # Show version info
  vocadou version --short         # Show short version only
  vocadou version --format json   # Output as JSON`,
		Args: cobra.NoArgs,
		// no configuration is needed to print the version
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := ValidateFormat(format, versionFormats); err != nil {
				return err
			}

			info := version.Get()
			out := cmd.OutOrStdout()
			switch {
			case strings.EqualFold(format, "json"):
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(info)
			case short:
				_, err := fmt.Fprintln(out, info.Short())
				return err
			default:
				_, err := fmt.Fprint(out, info.String())
				return err
			}
		},
	}

	addFormatFlag(cmd, &format, versionFormats)
	cmd.Flags().BoolVar(&short, "short", false, "show short version only")
	return cmd
}
