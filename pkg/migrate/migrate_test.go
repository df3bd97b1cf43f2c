package migrate

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

func TestParseVersion(t *testing.T) {
	v, err := parseVersion("20250301090400")
	require.NoError(t, err)
	assert.Equal(t, int64(20250301090400), v)

	for _, raw := range []string{"", "2025", "2025030109040x", "202503010904001"} {
		_, err := parseVersion(raw)
		assert.Error(t, err, raw)
	}
}

func TestExecRejectsUnknownCommand(t *testing.T) {
	err := Exec(context.Background(), nil, DefaultDir, "redo-all", "")
	assert.ErrorIs(t, err, ErrUnknownCommand)
}

func TestExecRequiresDatabase(t *testing.T) {
	err := Exec(context.Background(), nil, DefaultDir, "up", "")
	assert.EqualError(t, err, "db is required")
}

func TestValidateDirReportsEveryProblem(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"20250301090000_ok.sql":        "-- +goose Up\nSELECT 1;\n-- +goose Down\n",
		"20250301090000_duplicate.sql": "-- +goose Up\n-- +goose Down\n",
		"20250301090100_no_down.sql":   "-- +goose Up\nSELECT 1;\n",
		"20250301090200_reversed.sql":  "-- +goose Down\n-- +goose Up\n",
		"bad-name.sql":                 "-- +goose Up\n-- +goose Down\n",
		"notes.txt":                    "ignored",
	}
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}

	err := ValidateDir(dir)
	require.Error(t, err)
	assert.Len(t, multierr.Errors(err), 4)
}
