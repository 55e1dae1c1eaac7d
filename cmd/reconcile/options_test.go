package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadOptions_Defaults(t *testing.T) {
	opts, err := loadOptions("")
	require.NoError(t, err)

	assert.False(t, opts.DryRun)
	assert.Equal(t, 10*time.Minute, opts.Timeout)
}

func TestLoadOptions_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reconcile.yaml")
	require.NoError(t, os.WriteFile(path, []byte("dry_run: false\ntimeout: 1m\n"), 0o600))
	t.Setenv("RECONCILE_DRY_RUN", "true")

	opts, err := loadOptions(path)
	require.NoError(t, err)

	assert.True(t, opts.DryRun)
	assert.Equal(t, time.Minute, opts.Timeout)
}
