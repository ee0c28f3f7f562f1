package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comalice/statenode/internal/primitives"
)

// playerConfig has a power switch and a compound "on" state remembering its
// mode through both a shallow and a deep history node.
func playerConfig(shallowTarget string) primitives.MachineConfig {
	root := primitives.NewStateConfig("player", "").WithInitial("off")
	root.State("off").
		Transition("POWER", "on.hist").
		Transition("POWER_DEEP", "on.deep")
	on := root.State("on").WithInitial("radio").Transition("POWER", "off")
	on.State("radio")
	cd := on.State("cd").WithInitial("stopped")
	cd.State("stopped")
	cd.State("playing")
	on.State("hist").WithHistory(primitives.ShallowHistory, shallowTarget)
	on.State("deep").WithHistory(primitives.DeepHistory, "")
	return primitives.NewMachineConfig(root)
}

func TestHistoryTarget(t *testing.T) {
	tests := []struct {
		name   string
		target string
		want   primitives.StateValue
	}{
		{name: "none", target: "", want: nil},
		{name: "relative", target: "cd", want: primitives.StateValue{"cd": nil}},
		{name: "relative nested", target: "cd.playing", want: primitives.StateValue{"cd": {"playing": nil}}},
		{name: "absolute id", target: "#player.on.cd.playing", want: primitives.StateValue{"cd": {"playing": nil}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := mustMachine(t, playerConfig(tt.target))
			h := mustNode(t, m, "player.on.hist")
			assert.Equal(t, primitives.History, h.Kind)
			assert.Equal(t, tt.want, h.HistoryTarget())
		})
	}
}

func TestResolveHistory(t *testing.T) {
	m := mustMachine(t, playerConfig(""))
	hist := mustNode(t, m, "player.on.hist")
	deep := mustNode(t, m, "player.on.deep")
	cd := mustNode(t, m, "player.on.cd")
	playing := mustNode(t, m, "player.on.cd.playing")

	got, err := hist.ResolveHistory(nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"player.on.radio"}, ids(got), "falls back to the parent's initial state")

	got, err = hist.ResolveHistory(HistoryValue{hist.ID: {cd}})
	require.NoError(t, err)
	assert.Equal(t, []string{"player.on.cd.stopped"}, ids(got), "shallow record re-enters the child's initial state")

	got, err = deep.ResolveHistory(HistoryValue{deep.ID: {playing}})
	require.NoError(t, err)
	assert.Equal(t, []string{"player.on.cd.playing"}, ids(got))

	_, err = cd.ResolveHistory(nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	withTarget := mustMachine(t, playerConfig("cd.playing"))
	got, err = mustNode(t, withTarget, "player.on.hist").ResolveHistory(nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"player.on.cd.playing"}, ids(got))
}

func TestNext_TargetingHistory(t *testing.T) {
	m := mustMachine(t, playerConfig(""))
	off := mustNode(t, m, "player.off")
	cd := mustNode(t, m, "player.on.cd")
	playing := mustNode(t, m, "player.on.cd.playing")
	state := State{Value: primitives.StateValue{"off": nil}}

	st, err := off.Next(state, primitives.NewEvent("POWER", nil))
	require.NoError(t, err)
	assert.Equal(t, []string{"player.on.radio"}, ids(st.Configuration))
	assert.Equal(t, []string{"player.on", "player.on.radio"}, ids(st.EntrySet))

	state.History = HistoryValue{"player.on.hist": {cd}, "player.on.deep": {playing}}
	st, err = off.Next(state, primitives.NewEvent("POWER", nil))
	require.NoError(t, err)
	assert.Equal(t, []string{"player.on.cd.stopped"}, ids(st.Configuration))
	assert.Equal(t, []string{"player.on", "player.on.cd", "player.on.cd.stopped"}, ids(st.EntrySet))

	st, err = off.Next(state, primitives.NewEvent("POWER_DEEP", nil))
	require.NoError(t, err)
	assert.Equal(t, []string{"player.on.cd.playing"}, ids(st.Configuration))
}

func TestHistoryManager_RecordExit(t *testing.T) {
	m := mustMachine(t, playerConfig(""))
	on := mustNode(t, m, "player.on")
	cd := mustNode(t, m, "player.on.cd")
	playing := mustNode(t, m, "player.on.cd.playing")

	h := NewHistoryManager()
	h.RecordExit([]*Node{on}, []*Node{playing})

	shallow, found := h.Restore("player.on.hist")
	require.True(t, found)
	assert.Equal(t, []*Node{cd}, shallow)

	deep, found := h.Restore("player.on.deep")
	require.True(t, found)
	assert.Equal(t, []*Node{playing}, deep)

	hv := h.Value()
	assert.Len(t, hv, 2)

	// The recorded value feeds straight back into resolution.
	st, err := mustNode(t, m, "player.off").Next(
		State{Value: primitives.StateValue{"off": nil}, History: hv},
		primitives.NewEvent("POWER_DEEP", nil))
	require.NoError(t, err)
	assert.Equal(t, []*Node{playing}, st.Configuration)

	h.Clear("player.on.hist")
	_, found = h.Restore("player.on.hist")
	assert.False(t, found)
}

func TestHistoryManager_IgnoresUnrelatedLeaves(t *testing.T) {
	m := mustMachine(t, playerConfig(""))
	on := mustNode(t, m, "player.on")
	off := mustNode(t, m, "player.off")

	h := NewHistoryManager()
	h.RecordExit([]*Node{on}, []*Node{off})
	assert.Empty(t, h.Value())
}

func TestHistoryManager_Concurrent(t *testing.T) {
	m := mustMachine(t, playerConfig(""))
	on := mustNode(t, m, "player.on")
	radio := mustNode(t, m, "player.on.radio")

	h := NewHistoryManager()
	const n = 100
	done := make(chan bool)
	for i := 0; i < n; i++ {
		go func() {
			h.RecordExit([]*Node{on}, []*Node{radio})
			_, _ = h.Restore("player.on.hist")
			_ = h.Value()
			done <- true
		}()
	}
	for i := 0; i < n; i++ {
		<-done
	}
	rec, found := h.Restore("player.on.hist")
	require.True(t, found)
	assert.Equal(t, []*Node{radio}, rec)
}
