package stash

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadPolicy_MissingFileUsesDefaults(t *testing.T) {
	p, err := LoadPolicy(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultPolicy(), p)
}

func TestLoadPolicy_ParsesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.yaml")
	content := []byte("debounce: 250ms\nexclude:\n  - \"**/*.log\"\n  - \"**/node_modules/**\"\n")
	require.NoError(t, os.WriteFile(path, content, 0644))

	p, err := LoadPolicy(path)
	require.NoError(t, err)

	d, err := p.interval()
	require.NoError(t, err)
	assert.Equal(t, "250ms", d.String())
	assert.Equal(t, []string{"**/*.log", "**/node_modules/**"}, p.Exclude)
	assert.Equal(t, ReconcileSnapshotWins, p.Reconcile)
}

func TestLoadPolicy_RejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.yaml")
	require.NoError(t, os.WriteFile(path, []byte("debounce: [unclosed"), 0644))

	_, err := LoadPolicy(path)
	assert.Error(t, err)
}

func TestLoadPolicy_RejectsUnknownReconcilePolicy(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.yaml")
	require.NoError(t, os.WriteFile(path, []byte("reconcile: disk-wins\n"), 0644))

	_, err := LoadPolicy(path)
	assert.Error(t, err)
}

func TestPolicy_IntervalValidation(t *testing.T) {
	for _, bad := range []string{"soon", "-1s", "0s"} {
		p := Policy{Debounce: bad}
		if _, err := p.interval(); err == nil {
			t.Errorf("expected error for debounce %q", bad)
		}
	}
}

func TestResolveBackupRoot_DevRunGoesToTemp(t *testing.T) {
	// Tests run as a .test binary, so dev mode is active.
	root := ResolveBackupRoot("", false)
	rel, err := filepath.Rel(os.TempDir(), root)
	require.NoError(t, err)
	assert.NotContains(t, rel, "..", "dev runs must stay inside the temp dir")
}

func TestResolveBackupRoot_TrustsTempOverride(t *testing.T) {
	dir := t.TempDir()
	assert.Equal(t, filepath.Clean(dir), ResolveBackupRoot(dir, true))
}
