package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/roach88/nlsql/internal/config"
	"github.com/roach88/nlsql/internal/testutil"
)

// writeConfig writes a config pointing at fresh fixtures and returns its path.
func writeConfig(t *testing.T, mutate ...func(*config.Config)) string {
	t.Helper()
	cfg := testutil.Config(t)
	for _, m := range mutate {
		m(cfg)
	}
	data, err := yaml.Marshal(cfg)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "nlsql.yaml")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

// execute runs the root command with args and returns stdout and the error.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}
