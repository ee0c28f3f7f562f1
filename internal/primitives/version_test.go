package primitives

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeVersion(t *testing.T) {
	def := map[string]any{"id": "light", "states": []string{"green", "red"}}
	v1 := ComputeVersion("", def)
	v2 := ComputeVersion("", map[string]any{"id": "light", "states": []string{"green", "red"}})
	assert.Len(t, v1, 16)
	assert.Equal(t, v1, v2, "version must be deterministic")

	assert.NotEqual(t, v1, ComputeVersion("", map[string]any{"id": "light"}))
	assert.Equal(t, "2.0.0", ComputeVersion("2.0.0", def))
	assert.Equal(t, "unversioned", ComputeVersion("", map[string]any{"f": func() {}}))
}
