package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/nlsql/internal/catalog"
	"github.com/roach88/nlsql/internal/testutil"
)

func TestSchemaCommand_Text(t *testing.T) {
	cfg := writeConfig(t)

	out, err := execute(t, "--config", cfg, "schema", "--dataset", "university")
	require.NoError(t, err)

	for _, table := range testutil.UniversityTables {
		assert.Contains(t, out, table)
	}
	assert.Contains(t, out, "Email")
	assert.Contains(t, out, "Nullable")
}

func TestSchemaCommand_JSON(t *testing.T) {
	cfg := writeConfig(t)

	out, err := execute(t, "--config", cfg, "--format", "json", "schema")
	require.NoError(t, err)

	var resp struct {
		Status string                      `json:"status"`
		Data   map[string][]catalog.Column `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Len(t, resp.Data, len(testutil.ChinookTables))
	require.NotEmpty(t, resp.Data["Track"])
	assert.Equal(t, "TrackId", resp.Data["Track"][0].Name)
}

func TestSchemaCommand_UnknownDataset(t *testing.T) {
	cfg := writeConfig(t)

	out, err := execute(t, "--config", cfg, "--format", "json", "schema", "--dataset", "northwind")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "CONFIGURATION", resp.Error.Code)
}
