package policy

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	r := Defaults()

	modes := r.All()
	require.Len(t, modes, 3)
	assert.Equal(t, "nudge", modes[0].Name)
	assert.Equal(t, "guardrail", modes[1].Name)
	assert.Equal(t, "monk", modes[2].Name)

	nudge, ok := r.Get("nudge")
	require.True(t, ok)
	assert.True(t, nudge.Nudge)

	monk, ok := r.Get("monk")
	require.True(t, ok)
	assert.False(t, monk.Nudge)
	assert.Greater(t, monk.BlockThreshold, nudge.BlockThreshold)
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	r, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Len(t, r.All(), 3)
}

func TestLoad_CustomModes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "modes.yaml")
	content := `modes:
  - name: deep-work
    description: Custom strict mode
    block_threshold: 0.8
  - name: casual
    description: Barely enforced
    block_threshold: 0.1
    nudge: true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	r, err := Load(path)
	require.NoError(t, err)

	modes := r.All()
	require.Len(t, modes, 2)
	assert.Equal(t, "deep-work", modes[0].Name)
	assert.Equal(t, 0.8, modes[0].BlockThreshold)

	casual, ok := r.Get("casual")
	require.True(t, ok)
	assert.True(t, casual.Nudge)

	_, ok = r.Get("monk")
	assert.False(t, ok)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "modes.yaml")
	require.NoError(t, os.WriteFile(path, []byte("modes: [unclosed"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_EmptyFileReturnsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "modes.yaml")
	require.NoError(t, os.WriteFile(path, []byte(""), 0o644))

	r, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, r.All(), 3)
}
