// Package primitives provides versioning utilities for machine definitions.
package primitives

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
)

// ComputeVersion returns a deterministic version for a serializable definition.
// Priority: explicit version, else SHA256(definition JSON)[:8] in hex.
func ComputeVersion(explicit string, definition any) string {
	if explicit != "" {
		return explicit
	}

	data, err := json.Marshal(definition)
	if err != nil {
		return "unversioned"
	}

	hash := sha256.Sum256(data)
	return fmt.Sprintf("%x", hash[:8])
}
