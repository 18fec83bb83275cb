package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

// run registers its flags on the global set, so it can only be called once per test binary.
func TestRunMissingConfig(t *testing.T) {
	args := os.Args
	t.Cleanup(func() { os.Args = args })

	os.Args = []string{"menugen", "-config", filepath.Join(t.TempDir(), "missing.yaml")}

	assert.Equal(t, 1, run())
}
