package primitives

import (
	"sort"
	"sync"
)

// ServiceTable is the machine-wide registry of invokable service
// implementations, keyed by source name. Safe for concurrent use.
type ServiceTable struct {
	data sync.Map
}

// NewServiceTable creates a table seeded with the given services.
func NewServiceTable(seed map[string]any) *ServiceTable {
	t := &ServiceTable{}
	for k, v := range seed {
		t.data.Store(k, v)
	}
	return t
}

// Get retrieves a service by source name. Safe for concurrent reads.
func (t *ServiceTable) Get(src string) (any, bool) {
	return t.data.Load(src)
}

// Register stores impl under src only if src is absent. It returns the
// implementation held after the call and whether this call stored it.
func (t *ServiceTable) Register(src string, impl any) (any, bool) {
	actual, loaded := t.data.LoadOrStore(src, impl)
	return actual, !loaded
}

// Names lists registered source names in sorted order.
func (t *ServiceTable) Names() []string {
	var names []string
	t.data.Range(func(k, _ any) bool {
		names = append(names, k.(string))
		return true
	})
	sort.Strings(names)
	return names
}

// Snapshot returns a copy of the table contents.
func (t *ServiceTable) Snapshot() map[string]any {
	snap := map[string]any{}
	t.data.Range(func(k, v any) bool {
		snap[k.(string)] = v
		return true
	})
	return snap
}
