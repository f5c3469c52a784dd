package logsvc

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/masomo-dashboard/core"
)

func TestRollbarLogger(t *testing.T) {
	out := new(bytes.Buffer)
	logger := NewRollbarLogger(out, &core.Config{Env: "TEST", LogLevel: "info"})
	logger.Enable(false)

	logger.Debug("hidden")
	logger.Error(
		"creating course",
		errors.New("boom"),
		map[string]interface{}{"code": "CSC101"},
		core.Session{UserID: "u1", Username: "admin"},
	)

	lines := bytes.Split(bytes.TrimSpace(out.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(lines[0], &entry))
	assert.Equal(t, "creating course", entry["msg"])
	assert.Equal(t, "error", entry["level"])
	assert.Equal(t, "boom", entry["error"])
	assert.Equal(t, "CSC101", entry["code"])
	assert.Equal(t, "admin", entry["user"])
}
