package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/comalice/statenode/internal/production"
)

func newDotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dot FILE",
		Short: "Export the node tree as a Graphviz DOT graph",
		Long:  `Outputs a DOT digraph of the node tree and its transitions. Nodes active in --state are highlighted.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := loadMachine(cmd, args[0])
			if err != nil {
				return err
			}
			current, err := m.InitialState()
			if err != nil {
				return err
			}
			if value, ok := stateFromFlags(cmd, m); ok {
				current.Value = value
			}
			var v production.DefaultVisualizer
			fmt.Fprint(cmd.OutOrStdout(), v.ExportDOT(m, current.Value))
			return nil
		},
	}
	cmd.Flags().StringArrayP("state", "s", nil, "State to highlight as a delimited path; repeat for parallel regions")
	return cmd
}
