package main

import (
	"github.com/spf13/cobra"

	"github.com/comalice/statenode/internal/production"
)

func newInspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect FILE",
		Short: "Print the resolved definition of a machine",
		Long:  `Builds the machine and prints its definition view, including compiled transitions and the computed version.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := loadMachine(cmd, args[0])
			if err != nil {
				return err
			}
			format, _ := cmd.Flags().GetString("format")
			return production.Encode(cmd.OutOrStdout(), m.Definition(), production.Format(format))
		},
	}
	cmd.Flags().StringP("format", "f", string(production.FormatYAML), "Output format (json or yaml)")
	return cmd
}
