package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newIDsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ids FILE",
		Short: "List every state node id in document order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := loadMachine(cmd, args[0])
			if err != nil {
				return err
			}
			for _, id := range m.StateIDs() {
				fmt.Fprintln(cmd.OutOrStdout(), id)
			}
			return nil
		},
	}
}
