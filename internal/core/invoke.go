package core

import (
	"fmt"

	"github.com/comalice/statenode/internal/primitives"
)

// Invocation is a bound service definition. Src always names an entry in the
// machine's ServiceTable once the invocation is bound.
type Invocation struct {
	ID          string         `json:"id" yaml:"id"`
	Src         string         `json:"src" yaml:"src"`
	Data        map[string]any `json:"data,omitempty" yaml:"data,omitempty"`
	AutoForward bool           `json:"autoForward,omitempty" yaml:"autoForward,omitempty"`
}

// Invoke returns the node's bound invocations. Anonymous implementations are
// registered in the service table under the invocation id on first access.
func (n *Node) Invoke() []Invocation {
	n.memo.invokeOnce.Do(func() {
		n.machine.observer.ViewComputed(ViewInvoke, n.ID)
		for i, cfg := range n.config.Invoke {
			n.memo.invoke = append(n.memo.invoke, n.bindInvocation(i, cfg))
		}
	})
	return n.memo.invoke
}

func (n *Node) bindInvocation(i int, cfg primitives.InvokeConfig) Invocation {
	inv := Invocation{
		ID:          invocationID(n, i, cfg),
		Data:        cfg.Data,
		AutoForward: cfg.AutoForward,
	}
	if src, ok := cfg.Src.(string); ok {
		inv.Src = src
		return inv
	}
	inv.Src = inv.ID
	if _, stored := n.machine.services.Register(inv.ID, cfg.Src); !stored {
		n.machine.logger.Warn("service already registered, keeping existing implementation",
			"node", n.ID, "src", inv.ID)
	}
	return inv
}

func invocationID(n *Node, i int, cfg primitives.InvokeConfig) string {
	if cfg.ID != "" {
		return cfg.ID
	}
	return fmt.Sprintf("%s:invocation[%d]", n.ID, i)
}
