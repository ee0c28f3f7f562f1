package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/comalice/statenode"
	"github.com/comalice/statenode/internal/logging"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "statenode",
		Short:         "statenode inspects statechart node trees",
		Long:          `statenode loads a YAML machine definition and reports its ids, events, resolved transitions and graph.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().String("log-level", "warn", "Log level (debug, info, warn, error)")

	cmd.AddCommand(
		newInspectCmd(),
		newIDsCmd(),
		newEventsCmd(),
		newNextCmd(),
		newDotCmd(),
	)
	return cmd
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadMachine builds the machine declared in path. String guards are
// evaluated as expressions over the context; evaluations are logged at the
// level given by --log-level.
func loadMachine(cmd *cobra.Command, path string) (*statenode.Machine, error) {
	raw, _ := cmd.Flags().GetString("log-level")
	var level slog.Level
	if err := level.UnmarshalText([]byte(raw)); err != nil {
		return nil, fmt.Errorf("invalid --log-level %q: %w", raw, err)
	}
	logger := logging.NewWriter(cmd.ErrOrStderr(), level)

	guards := statenode.NewLoggingGuardEvaluator(statenode.NewExpressionGuardEvaluator(), logger)
	m, err := statenode.LoadFile(path, statenode.WithLogger(logger), statenode.WithGuardEvaluator(guards))
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	logger.Debug("machine loaded", "file", path, "nodes", len(m.StateIDs()))
	return m, nil
}

// stateFromFlags merges every --state reference into one value, so parallel
// regions can be given as repeated flags. ok is false when none was given.
func stateFromFlags(cmd *cobra.Command, m *statenode.Machine) (value statenode.StateValue, ok bool) {
	refs, _ := cmd.Flags().GetStringArray("state")
	if len(refs) == 0 {
		return nil, false
	}
	value = statenode.StateValue{}
	for _, ref := range refs {
		value = value.Merge(m.ParseStateValue(ref))
	}
	return value, true
}
