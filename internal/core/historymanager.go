package core

import (
	"sync"

	"github.com/comalice/statenode/internal/primitives"
)

// HistoryManager records history configurations for shallow and deep history
// nodes and produces the HistoryValue that Next reads.
// Shallow: remembers the active direct children of the history node's parent.
// Deep: remembers the full active leaf configuration under the parent.
// Thread-safe for concurrent access.
type HistoryManager struct {
	mu       sync.RWMutex
	recorded map[string][]*Node // history node id -> configuration
}

// NewHistoryManager creates a new HistoryManager.
func NewHistoryManager() *HistoryManager {
	return &HistoryManager{
		recorded: make(map[string][]*Node),
	}
}

// RecordExit records, for every history child of each exited node, the part
// of configuration that was active under that node. configuration is the
// active leaf set before the exit.
func (h *HistoryManager) RecordExit(exited, configuration []*Node) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, parent := range exited {
		for _, hist := range parent.Children {
			if hist.Kind != primitives.History {
				continue
			}
			var rec []*Node
			for _, leaf := range configuration {
				if !isDescendant(leaf, parent) {
					continue
				}
				if hist.History == primitives.DeepHistory {
					rec = append(rec, leaf)
					continue
				}
				cursor := leaf
				for cursor.Parent != parent {
					cursor = cursor.Parent
				}
				rec = append(rec, cursor)
			}
			if rec = dedupe(rec); len(rec) > 0 {
				h.recorded[hist.ID] = rec
			}
		}
	}
}

// Restore returns the recorded configuration for a history node, if any.
func (h *HistoryManager) Restore(historyID string) ([]*Node, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	rec, ok := h.recorded[historyID]
	if !ok {
		return nil, false
	}
	return append([]*Node(nil), rec...), true
}

// Clear removes recorded history for the given history node id.
func (h *HistoryManager) Clear(historyID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.recorded, historyID)
}

// Value returns a copy of everything recorded, ready for State.History.
func (h *HistoryManager) Value() HistoryValue {
	h.mu.RLock()
	defer h.mu.RUnlock()

	hv := make(HistoryValue, len(h.recorded))
	for id, rec := range h.recorded {
		hv[id] = append([]*Node(nil), rec...)
	}
	return hv
}
