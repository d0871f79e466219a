package focuslint

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func write(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestScanFindsMarker(t *testing.T) {
	dir := t.TempDir()
	focused := write(t, dir, "e2e/lead_test.go",
		"package e2e\n\nfunc TestLead(t *testing.T) {\n\thelpers.Only(t)\n}\n")
	write(t, dir, "e2e/smoke_test.go",
		"package e2e\n\nfunc TestSmoke(t *testing.T) {}\n")

	findings, err := Scan(dir)
	require.NoError(t, err)
	require.Len(t, findings, 1)
	assert.Equal(t, focused, findings[0].File)
	assert.Equal(t, 4, findings[0].Line)
	assert.Contains(t, findings[0].String(), "helpers.Only")
}

func TestScanIgnoresNonTestFilesAndComments(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "helper.go", "package e2e\n\n// helpers.Only(t) lives here\n")
	write(t, dir, "doc_test.go", "package e2e\n\n// helpers.Only(t)\n")

	findings, err := Scan(dir)
	require.NoError(t, err)
	assert.Empty(t, findings)
}

func TestScanCleanTree(t *testing.T) {
	findings, err := Scan(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, findings)
}
