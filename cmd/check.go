package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newCheckCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:     "check",
		Aliases: []string{"validate"},
		Short:   "Validate the content tree without writing anything",
		Long: `Parse every record and check every handle, work reference and album
track against the member list. Exits non-zero on the first problem.

Examples:
  vocadou check
  vocadou check -d ../homepage-content`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig(cmd, v)
			if err != nil {
				return err
			}

			graph, err := newBuilder(cfg, logger, false).Check(cmd.Context())
			if err != nil {
				return err
			}

			set := graph.Set
			fmt.Fprintf(cmd.OutOrStdout(), "OK: %d members, %d works, %d posts, %d albums\n",
				len(set.Members), len(set.Works), len(set.Posts), len(set.Albums))
			return nil
		},
	}
}
