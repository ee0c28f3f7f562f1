package core

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comalice/statenode/internal/primitives"
)

func idleActiveMachine(t *testing.T, opts ...Option) *Machine {
	t.Helper()
	root := primitives.NewStateConfig("toggle", "").WithInitial("idle")
	root.State("idle").
		Transition("START", "active").
		Transition("RESET", "idle").
		AddTransition("TICK", primitives.TransitionConfig{Actions: []primitives.ActionRef{"tick"}}.AsInternal(true))
	root.State("active")
	return mustMachine(t, primitives.NewMachineConfig(root), opts...)
}

func TestNext_SimpleTransition(t *testing.T) {
	m := idleActiveMachine(t)
	idle := mustNode(t, m, "toggle.idle")
	active := mustNode(t, m, "toggle.active")

	st, err := idle.Next(State{Value: primitives.StateValue{"idle": nil}}, primitives.NewEvent("START", nil))
	require.NoError(t, err)
	require.NotNil(t, st)

	assert.Equal(t, []*Node{active}, st.Configuration)
	assert.Equal(t, []*Node{idle}, st.ExitSet)
	assert.Equal(t, []*Node{active}, st.EntrySet)
	require.Len(t, st.Transitions, 1)
	assert.Equal(t, []*Node{active}, st.Transitions[0].Target)
	assert.False(t, st.Transitions[0].Internal)
	assert.Equal(t, idle, st.Source)
}

func TestNext_Unhandled(t *testing.T) {
	obs := newCountingObserver()
	m := idleActiveMachine(t, WithObserver(obs))
	idle := mustNode(t, m, "toggle.idle")

	st, err := idle.Next(State{Value: primitives.StateValue{"idle": nil}}, primitives.NewEvent("STOP", nil))
	require.NoError(t, err)
	assert.Nil(t, st)
	assert.Equal(t, 1, obs.outcomes[OutcomeUnhandled])
}

func TestNext_InternalTransition(t *testing.T) {
	m := idleActiveMachine(t)
	idle := mustNode(t, m, "toggle.idle")

	st, err := idle.Next(State{Value: primitives.StateValue{"idle": nil}}, primitives.NewEvent("TICK", nil))
	require.NoError(t, err)
	require.NotNil(t, st)

	assert.Empty(t, st.EntrySet)
	assert.Empty(t, st.ExitSet)
	assert.Equal(t, []*Node{idle}, st.Configuration)
	require.Len(t, st.Actions, 1)
	assert.Equal(t, "tick", st.Actions[0].Type)

	// Without a prior value there is nothing to stay in.
	st, err = idle.Next(State{}, primitives.NewEvent("TICK", nil))
	require.NoError(t, err)
	assert.Empty(t, st.Configuration)
}

func TestNext_ExternalSelfTransitionReenters(t *testing.T) {
	m := idleActiveMachine(t)
	idle := mustNode(t, m, "toggle.idle")

	st, err := idle.Next(State{Value: primitives.StateValue{"idle": nil}}, primitives.NewEvent("RESET", nil))
	require.NoError(t, err)
	assert.Equal(t, []*Node{idle}, st.ExitSet)
	assert.Equal(t, []*Node{idle}, st.EntrySet)
	assert.Equal(t, []*Node{idle}, st.Configuration)
}

func TestNext_GuardSelection(t *testing.T) {
	var calls []string
	g1 := primitives.GuardFunc(func(any, primitives.Event) (bool, error) {
		calls = append(calls, "g1")
		return false, nil
	})
	g2 := primitives.GuardFunc(func(any, primitives.Event) (bool, error) {
		calls = append(calls, "g2")
		return true, nil
	})
	g3 := primitives.GuardFunc(func(any, primitives.Event) (bool, error) {
		calls = append(calls, "g3")
		return true, nil
	})

	root := primitives.NewStateConfig("m", "").WithInitial("a")
	root.State("a").
		AddTransition("GO", primitives.To("b").WithGuard(g1)).
		AddTransition("GO", primitives.To("c").WithGuard(g2)).
		AddTransition("GO", primitives.To("b").WithGuard(g3))
	root.State("b")
	root.State("c")
	m := mustMachine(t, primitives.NewMachineConfig(root))

	st, err := mustNode(t, m, "m.a").Next(State{Value: primitives.StateValue{"a": nil}}, primitives.NewEvent("GO", nil))
	require.NoError(t, err)
	require.NotNil(t, st)
	assert.Equal(t, "m.c", st.Transitions[0].Target[0].ID)
	assert.Equal(t, []string{"g1", "g2"}, calls)
}

func TestNext_GuardErrors(t *testing.T) {
	boom := errors.New("boom")
	tests := []struct {
		name    string
		guard   primitives.GuardRef
		opts    []Option
		wantIs  error
		wantMsg string
	}{
		{
			name: "callback error",
			guard: primitives.Guard{Type: "failing", Predicate: func(any, primitives.Event) (bool, error) {
				return false, boom
			}},
			wantIs:  boom,
			wantMsg: `unable to evaluate guard "failing" in transition for event "GO" in state node "m.a": boom`,
		},
		{
			name: "callback panic",
			guard: primitives.Guard{Type: "panicky", Predicate: func(any, primitives.Event) (bool, error) {
				panic("kaboom")
			}},
			wantMsg: "panic: kaboom",
		},
		{
			name:    "unregistered named guard",
			guard:   "isReady",
			wantIs:  ErrGuardNotRegistered,
			wantMsg: `"isReady"`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := primitives.NewStateConfig("m", "").WithInitial("a")
			root.State("a").AddTransition("GO", primitives.To("b").WithGuard(tt.guard))
			root.State("b")
			m := mustMachine(t, primitives.NewMachineConfig(root), tt.opts...)
			a := mustNode(t, m, "m.a")

			st, err := a.Next(State{Value: primitives.StateValue{"a": nil}}, primitives.NewEvent("GO", nil))
			require.Error(t, err)
			assert.Nil(t, st)

			var gErr *GuardError
			require.True(t, errors.As(err, &gErr))
			assert.Equal(t, "GO", gErr.Event)
			assert.Equal(t, "m.a", gErr.NodeID)
			if tt.wantIs != nil {
				assert.ErrorIs(t, err, tt.wantIs)
			}
			assert.Contains(t, err.Error(), tt.wantMsg)

			// The cached candidates are unaffected by the failure.
			assert.Len(t, a.Candidates("GO"), 1)
		})
	}
}

func TestNext_NamedGuard(t *testing.T) {
	root := primitives.NewStateConfig("m", "").WithInitial("a")
	root.State("a").AddTransition("GO", primitives.To("b").WithGuard("hasTicket"))
	root.State("b")
	m := mustMachine(t, primitives.NewMachineConfig(root), WithGuards(map[string]primitives.GuardFunc{
		"hasTicket": func(ctx any, _ primitives.Event) (bool, error) {
			return ctx.(map[string]any)["ticket"] == true, nil
		},
	}))
	a := mustNode(t, m, "m.a")
	evt := primitives.NewEvent("GO", nil)

	st, err := a.Next(State{Value: primitives.StateValue{"a": nil}, Context: map[string]any{"ticket": false}}, evt)
	require.NoError(t, err)
	assert.Nil(t, st)

	st, err = a.Next(State{Value: primitives.StateValue{"a": nil}, Context: map[string]any{"ticket": true}}, evt)
	require.NoError(t, err)
	require.NotNil(t, st)
	assert.Equal(t, "m.b", st.Configuration[0].ID)
}

func TestNext_CustomGuardEvaluator(t *testing.T) {
	var seen []string
	eval := GuardEvaluatorFunc(func(node *Node, guard *primitives.Guard, _ any, evt primitives.Event, state State) (bool, error) {
		seen = append(seen, node.ID+":"+guard.Type+":"+evt.Type)
		return state.Matches(primitives.StateValue{"a": nil}), nil
	})
	root := primitives.NewStateConfig("m", "").WithInitial("a")
	root.State("a").AddTransition("GO", primitives.To("b").WithGuard("custom"))
	root.State("b")
	m := mustMachine(t, primitives.NewMachineConfig(root), WithGuardEvaluator(eval))

	st, err := mustNode(t, m, "m.a").Next(State{Value: primitives.StateValue{"a": nil}}, primitives.NewEvent("GO", nil))
	require.NoError(t, err)
	require.NotNil(t, st)
	assert.Equal(t, []string{"m.a:custom:GO"}, seen)
}

func TestNext_InCondition(t *testing.T) {
	root := primitives.NewStateConfig("m", primitives.Parallel)
	door := root.State("door").WithInitial("closed")
	door.State("closed").
		AddTransition("OPEN", primitives.To("open").WithIn("#m.lock.unlocked")).
		AddTransition("FORCE", primitives.To("open").WithIn("lock.unlocked"))
	door.State("open")
	lock := root.State("lock").WithInitial("locked")
	lock.State("locked")
	lock.State("unlocked")
	m := mustMachine(t, primitives.NewMachineConfig(root))
	closed := mustNode(t, m, "m.door.closed")

	locked := State{Value: primitives.StateValue{"door": {"closed": nil}, "lock": {"locked": nil}}}
	unlocked := State{Value: primitives.StateValue{"door": {"closed": nil}, "lock": {"unlocked": nil}}}

	for _, evt := range []string{"OPEN", "FORCE"} {
		st, err := closed.Next(locked, primitives.NewEvent(evt, nil))
		require.NoError(t, err)
		assert.Nil(t, st, evt)

		st, err = closed.Next(unlocked, primitives.NewEvent(evt, nil))
		require.NoError(t, err)
		require.NotNil(t, st, evt)
		assert.Equal(t, "m.door.open", st.Configuration[0].ID)
	}
}

func TestNext_InConditionSkipsGuard(t *testing.T) {
	called := false
	root := primitives.NewStateConfig("m", "").WithInitial("a")
	root.State("a").AddTransition("GO", primitives.To("b").WithIn("#m.b").WithGuard(
		primitives.GuardFunc(func(any, primitives.Event) (bool, error) {
			called = true
			return true, nil
		})))
	root.State("b")
	m := mustMachine(t, primitives.NewMachineConfig(root))

	st, err := mustNode(t, m, "m.a").Next(State{Value: primitives.StateValue{"a": nil}}, primitives.NewEvent("GO", nil))
	require.NoError(t, err)
	assert.Nil(t, st)
	assert.False(t, called)
}

func TestNext_WildcardAndNullEvent(t *testing.T) {
	root := primitives.NewStateConfig("m", "").WithInitial("a")
	root.State("a").
		Transition("GO", "b").
		Transition(primitives.WildcardEvent, "c").
		AddAlways(primitives.To("b"))
	root.State("b")
	root.State("c")
	m := mustMachine(t, primitives.NewMachineConfig(root))
	a := mustNode(t, m, "m.a")
	assert.True(t, a.Transient)

	state := State{Value: primitives.StateValue{"a": nil}}
	tests := []struct {
		event string
		want  string
	}{
		{event: "GO", want: "m.b"},
		{event: "ANYTHING", want: "m.c"},
		{event: primitives.NullEvent, want: "m.b"},
	}
	for _, tt := range tests {
		st, err := a.Next(state, primitives.NewEvent(tt.event, nil))
		require.NoError(t, err)
		require.NotNil(t, st, tt.event)
		assert.Equal(t, tt.want, st.Configuration[0].ID, tt.event)
	}

	assert.Len(t, a.Candidates("GO"), 2)
	assert.Len(t, a.Candidates(primitives.NullEvent), 1)
}

func TestNext_ExactEventBeatsWildcard(t *testing.T) {
	fromOn := func() primitives.MachineConfig {
		root := primitives.NewStateConfig("m", "").WithInitial("a")
		root.State("a").WithOn(map[string][]primitives.TransitionConfig{
			"GO":                     {primitives.To("b")},
			primitives.WildcardEvent: {primitives.To("c")},
		})
		root.State("b")
		root.State("c")
		return primitives.NewMachineConfig(root)
	}
	fromYAML := func() primitives.MachineConfig {
		cfg, err := primitives.LoadYAML([]byte(`
key: m
initial: a
children:
  - key: a
    on:
      "*": c
      GO: b
  - key: b
  - key: c
`))
		require.NoError(t, err)
		return cfg
	}

	for name, newConfig := range map[string]func() primitives.MachineConfig{
		"map literal": fromOn,
		"yaml":        fromYAML,
	} {
		t.Run(name, func(t *testing.T) {
			m := mustMachine(t, newConfig())
			a := mustNode(t, m, "m.a")
			state := State{Value: primitives.StateValue{"a": nil}}

			st, err := a.Next(state, primitives.NewEvent("GO", nil))
			require.NoError(t, err)
			require.NotNil(t, st)
			assert.Equal(t, "m.b", st.Configuration[0].ID)

			st, err = a.Next(state, primitives.NewEvent("OTHER", nil))
			require.NoError(t, err)
			require.NotNil(t, st)
			assert.Equal(t, "m.c", st.Configuration[0].ID)

			candidates := a.Candidates("GO")
			require.Len(t, candidates, 2)
			assert.Equal(t, "GO", candidates[0].EventType)
			assert.Equal(t, primitives.WildcardEvent, candidates[1].EventType)
		})
	}
}

func TestCandidates_UndeclaredEventsShareBucket(t *testing.T) {
	obs := newCountingObserver()
	root := primitives.NewStateConfig("m", "").WithInitial("a")
	root.State("a").
		Transition("GO", "b").
		Transition(primitives.WildcardEvent, "b")
	root.State("b")
	m := mustMachine(t, primitives.NewMachineConfig(root), WithObserver(obs))
	a := mustNode(t, m, "m.a")

	for i := 0; i < 100; i++ {
		assert.Len(t, a.Candidates(fmt.Sprintf("RANDOM_%d", i)), 1)
	}
	assert.Equal(t, 1, obs.count(ViewCandidates, a.ID))
	assert.Len(t, a.Candidates("GO"), 2)
	assert.Equal(t, 2, obs.count(ViewCandidates, a.ID))
}

func TestNext_TargetExpansion(t *testing.T) {
	root := primitives.NewStateConfig("m", "").WithInitial("idle")
	root.State("idle").
		Transition("ENTER_COMPOUND", "menu").
		Transition("ENTER_PARALLEL", "player").
		Transition("DEEP", "menu.settings.audio").
		AddTransition("MULTI", primitives.To("#m.player.video.off", "#m.player.audio.on"))
	menu := root.State("menu").WithInitial("main")
	menu.State("main")
	settings := menu.State("settings").WithInitial("video")
	settings.State("video")
	settings.State("audio")
	player := root.State("player", primitives.Parallel)
	video := player.State("video").WithInitial("on")
	video.State("on")
	video.State("off")
	audio := player.State("audio").WithInitial("on")
	audio.State("on")
	audio.State("off")
	m := mustMachine(t, primitives.NewMachineConfig(root))
	idle := mustNode(t, m, "m.idle")
	state := State{Value: primitives.StateValue{"idle": nil}}

	tests := []struct {
		event      string
		wantConfig []string
		wantEntry  []string
	}{
		{
			event:      "ENTER_COMPOUND",
			wantConfig: []string{"m.menu.main"},
			wantEntry:  []string{"m.menu", "m.menu.main"},
		},
		{
			event:      "ENTER_PARALLEL",
			wantConfig: []string{"m.player.video.on", "m.player.audio.on"},
			wantEntry:  []string{"m.player", "m.player.video", "m.player.video.on", "m.player.audio", "m.player.audio.on"},
		},
		{
			event:      "DEEP",
			wantConfig: []string{"m.menu.settings.audio"},
			wantEntry:  []string{"m.menu", "m.menu.settings", "m.menu.settings.audio"},
		},
		{
			event:      "MULTI",
			wantConfig: []string{"m.player.video.off", "m.player.audio.on"},
			wantEntry:  []string{"m.player", "m.player.video", "m.player.video.off", "m.player.audio", "m.player.audio.on"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.event, func(t *testing.T) {
			st, err := idle.Next(state, primitives.NewEvent(tt.event, nil))
			require.NoError(t, err)
			require.NotNil(t, st)
			assert.Equal(t, tt.wantConfig, ids(st.Configuration))
			assert.Equal(t, tt.wantEntry, ids(st.EntrySet))
			assert.Equal(t, []string{"m.idle"}, ids(st.ExitSet))
		})
	}
}

func TestNext_ChildTargets(t *testing.T) {
	root := primitives.NewStateConfig("m", "").WithInitial("form")
	form := root.State("form").WithInitial("editing").
		Transition("SAVE", ".saving").
		Transition("RESTART", ".editing", primitives.To(".editing").AsInternal(false)).
		Transition("REFRESH", ".editing")
	editing := form.State("editing").WithInitial("clean")
	editing.State("clean").Transition("TYPE", "dirty")
	editing.State("dirty")
	form.State("saving")
	m := mustMachine(t, primitives.NewMachineConfig(root))
	formNode := mustNode(t, m, "m.form")
	state := State{Value: primitives.StateValue{"form": {"editing": {"dirty": nil}}}}

	st, err := formNode.Next(state, primitives.NewEvent("SAVE", nil))
	require.NoError(t, err)
	assert.True(t, st.Transitions[0].Internal)
	assert.Equal(t, []string{"m.form.saving"}, ids(st.Configuration))
	assert.Empty(t, st.EntrySet)
	assert.Empty(t, st.ExitSet)

	// Internal re-targeting of an active compound keeps its active child.
	st, err = formNode.Next(state, primitives.NewEvent("REFRESH", nil))
	require.NoError(t, err)
	assert.Equal(t, []string{"m.form.editing.dirty"}, ids(st.Configuration))

	// An explicit external transition restarts the branch from its initial child.
	st, err = formNode.Next(state, primitives.NewEvent("RESTART", nil))
	require.NoError(t, err)
	assert.False(t, st.Transitions[0].Internal)
	assert.Equal(t, []string{"m.form.editing.clean"}, ids(st.Configuration))
	assert.Equal(t, []string{"m.form"}, ids(st.ExitSet))
	assert.Equal(t, []string{"m.form", "m.form.editing", "m.form.editing.clean"}, ids(st.EntrySet))
}

func TestNext_HistoryShortCircuit(t *testing.T) {
	root := primitives.NewStateConfig("m", "").WithInitial("a")
	a := root.State("a").WithInitial("x")
	a.State("x")
	a.State("y")
	a.State("h", primitives.History).Transition("GO", "x")
	m := mustMachine(t, primitives.NewMachineConfig(root))
	h := mustNode(t, m, "m.a.h")
	x := mustNode(t, m, "m.a.x")
	y := mustNode(t, m, "m.a.y")

	st, err := h.Next(State{History: HistoryValue{h.ID: {x, y}}}, primitives.NewEvent("GO", nil))
	require.NoError(t, err)
	require.NotNil(t, st)
	assert.Equal(t, []*Node{x, y}, st.Configuration)
	assert.Empty(t, st.Transitions)
	assert.Empty(t, st.EntrySet)
	assert.Empty(t, st.ExitSet)
	assert.Empty(t, st.Actions)

	// Without a recorded value the history node resolves handlers normally.
	st, err = h.Next(State{Value: primitives.StateValue{"a": {"y": nil}}}, primitives.NewEvent("GO", nil))
	require.NoError(t, err)
	require.NotNil(t, st)
	assert.Equal(t, []*Node{x}, st.Configuration)
	require.Len(t, st.Transitions, 1)
}
