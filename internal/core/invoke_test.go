package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comalice/statenode/internal/primitives"
)

type fetcher struct{ url string }

func invokeConfig() primitives.MachineConfig {
	root := primitives.NewStateConfig("app", "").WithInitial("loading")
	root.State("loading").
		AddInvoke(primitives.InvokeConfig{Src: "fetchUser"}).
		AddInvoke(primitives.InvokeConfig{Src: &fetcher{url: "/orders"}, OnDone: []primitives.TransitionConfig{primitives.To("ready")}}).
		AddInvoke(primitives.InvokeConfig{ID: "poller", Src: &fetcher{url: "/poll"}, AutoForward: true})
	root.State("ready")
	return primitives.NewMachineConfig(root)
}

func TestInvoke(t *testing.T) {
	m := mustMachine(t, invokeConfig())
	loading := mustNode(t, m, "app.loading")

	invs := loading.Invoke()
	require.Len(t, invs, 3)
	assert.Equal(t, Invocation{ID: "app.loading:invocation[0]", Src: "fetchUser"}, invs[0])
	assert.Equal(t, Invocation{ID: "app.loading:invocation[1]", Src: "app.loading:invocation[1]"}, invs[1])
	assert.Equal(t, Invocation{ID: "poller", Src: "poller", AutoForward: true}, invs[2])

	impl, ok := m.Services().Get("app.loading:invocation[1]")
	require.True(t, ok)
	assert.Equal(t, "/orders", impl.(*fetcher).url)
	_, ok = m.Services().Get("fetchUser")
	assert.False(t, ok, "named sources are not registered")

	on := loading.On()
	require.Len(t, on["done.invoke.app.loading:invocation[1]"], 1)
}

func TestInvoke_RegistrationIsIdempotent(t *testing.T) {
	existing := &fetcher{url: "/seeded"}
	m := mustMachine(t, invokeConfig(), WithServices(map[string]any{"poller": existing}))
	mustNode(t, m, "app.loading").Invoke()

	impl, ok := m.Services().Get("poller")
	require.True(t, ok)
	assert.Same(t, existing, impl)
}

func TestInvoke_Lazy(t *testing.T) {
	obs := newCountingObserver()
	m := mustMachine(t, invokeConfig(), WithLazyInvocations(), WithObserver(obs))
	assert.Empty(t, m.Services().Names())
	assert.Equal(t, 0, obs.count(ViewInvoke, "app.loading"))

	loading := mustNode(t, m, "app.loading")
	loading.Invoke()
	loading.Invoke()
	assert.Equal(t, []string{"app.loading:invocation[1]", "poller"}, m.Services().Names())
	assert.Equal(t, 1, obs.count(ViewInvoke, "app.loading"))
}
