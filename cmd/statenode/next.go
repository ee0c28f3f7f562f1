package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/comalice/statenode"
)

func newNextCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "next FILE",
		Short: "Resolve an event against a state",
		Long: `Resolves --event from --state (default: the initial state) and prints, for
every handling node, the transitions taken, the exit and entry sets and the
resulting configuration.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := loadMachine(cmd, args[0])
			if err != nil {
				return err
			}

			state, err := m.InitialState()
			if err != nil {
				return err
			}
			if value, ok := stateFromFlags(cmd, m); ok {
				state.Value = value
			}

			if raw, _ := cmd.Flags().GetString("context"); raw != "" {
				if err := json.Unmarshal([]byte(raw), &state.Context); err != nil {
					return fmt.Errorf("invalid --context: %w", err)
				}
			}

			eventType, _ := cmd.Flags().GetString("event")
			var data any
			if raw, _ := cmd.Flags().GetString("data"); raw != "" {
				if err := json.Unmarshal([]byte(raw), &data); err != nil {
					return fmt.Errorf("invalid --data: %w", err)
				}
			}

			steps, err := m.Transition(state, statenode.NewEvent(eventType, data))
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(steps) == 0 {
				fmt.Fprintf(out, "%s: not handled in %s\n", eventType, state.Value)
				return nil
			}
			for _, st := range steps {
				printStep(out, st)
			}
			return nil
		},
	}
	cmd.Flags().StringArrayP("state", "s", nil, "Current state as a delimited path (e.g. red.walk); repeat for parallel regions")
	cmd.Flags().StringP("event", "e", "", "Event type to resolve")
	cmd.Flags().String("data", "", "Event payload as JSON")
	cmd.Flags().String("context", "", "Extended state as JSON, read by expression guards")
	_ = cmd.MarkFlagRequired("event")
	return cmd
}

func printStep(w io.Writer, st *statenode.StateTransition) {
	var targets []string
	for _, t := range st.Transitions {
		for _, n := range t.Target {
			targets = append(targets, n.ID)
		}
	}
	var actions []string
	for _, a := range st.Actions {
		actions = append(actions, a.Type)
	}
	fmt.Fprintf(w, "source:        %s\n", st.Source.ID)
	fmt.Fprintf(w, "targets:       %s\n", strings.Join(targets, ", "))
	fmt.Fprintf(w, "exit:          %s\n", nodeIDs(st.ExitSet))
	fmt.Fprintf(w, "entry:         %s\n", nodeIDs(st.EntrySet))
	fmt.Fprintf(w, "configuration: %s\n", nodeIDs(st.Configuration))
	fmt.Fprintf(w, "actions:       %s\n", strings.Join(actions, ", "))
}

func nodeIDs(nodes []*statenode.Node) string {
	ids := make([]string, len(nodes))
	for i, n := range nodes {
		ids[i] = n.ID
	}
	return strings.Join(ids, ", ")
}
