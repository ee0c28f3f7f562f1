package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/comalice/statenode"
)

func newEventsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events FILE",
		Short: "List the events a machine or node accepts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := loadMachine(cmd, args[0])
			if err != nil {
				return err
			}
			events := m.Events()
			if id, _ := cmd.Flags().GetString("node"); id != "" {
				n, err := m.StateNodeByID(id)
				if err != nil {
					return err
				}
				events = n.Events()
				if own, _ := cmd.Flags().GetBool("own"); own {
					events = n.OwnEvents()
				}
			}
			for _, e := range events {
				if e == statenode.NullEvent {
					e = "(always)"
				}
				fmt.Fprintln(cmd.OutOrStdout(), e)
			}
			return nil
		},
	}
	cmd.Flags().String("node", "", "Restrict the listing to the node with this id")
	cmd.Flags().Bool("own", false, "With --node, list only the node's own events")
	return cmd
}
