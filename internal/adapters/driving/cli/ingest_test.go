package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempDoc(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestIngestCmd_Use(t *testing.T) {
	assert.Equal(t, "ingest [file...]", ingestCmd.Use)
}

func TestIngestCmd_RequiresAtLeastOneArg(t *testing.T) {
	resetRootCmd(t)
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"ingest"})

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "requires at least 1 arg(s)")
}

func TestIngestCmd_HasFlags(t *testing.T) {
	source := ingestCmd.Flags().Lookup("source")
	require.NotNil(t, source)
	assert.Equal(t, "s", source.Shorthand)

	reindex := ingestCmd.Flags().Lookup("reindex")
	require.NotNil(t, reindex)
	assert.Equal(t, "false", reindex.DefValue)
}

func TestIngestCmd_IndexesFile(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	resetRootCmd(t)

	path := writeTempDoc(t, "notes.md", "Traffic rules change at the city boundary. The limit drops to thirty.")

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"ingest", path})

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "notes.md: indexed")
}

func TestIngestCmd_UnchangedFileIsNoOp(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	resetRootCmd(t)

	path := writeTempDoc(t, "notes.md", "Traffic rules change at the city boundary.")

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"ingest", path})
	require.NoError(t, rootCmd.Execute())

	buf.Reset()
	rootCmd.SetArgs([]string{"ingest", path})
	require.NoError(t, rootCmd.Execute())

	assert.Contains(t, buf.String(), "already indexed")
	assert.Contains(t, buf.String(), "nothing to do")
}

func TestIngestCmd_SourceOverride(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	resetRootCmd(t)
	defer func() { ingestSource = "" }()

	path := writeTempDoc(t, "raw.txt", "Some content worth indexing for later retrieval.")

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"ingest", "--source", "renamed.md", path})

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "renamed.md: indexed")
}

func TestIngestCmd_SourceOverrideRejectsMultipleFiles(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	resetRootCmd(t)
	defer func() { ingestSource = "" }()

	a := writeTempDoc(t, "a.md", "first")
	b := writeTempDoc(t, "b.md", "second")

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"ingest", "--source", "combined.md", a, b})

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "--source can only be used with a single file")
}

func TestIngestCmd_ReindexFlag(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	resetRootCmd(t)
	defer func() { ingestReindex = false }()

	path := writeTempDoc(t, "notes.md", "Original content about city traffic rules and limits.")

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"ingest", path})
	require.NoError(t, rootCmd.Execute())

	require.NoError(t, os.WriteFile(path, []byte("Rewritten content about country roads and cattle grids."), 0600))

	buf.Reset()
	rootCmd.SetArgs([]string{"ingest", "--reindex", path})
	require.NoError(t, rootCmd.Execute())

	assert.Contains(t, buf.String(), "notes.md: removed")
	assert.Contains(t, buf.String(), "indexed")
}

func TestIngestCmd_MissingFile(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	resetRootCmd(t)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"ingest", filepath.Join(t.TempDir(), "absent.md")})

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "reading")
}

func TestIngestCmd_ServiceNotConfigured(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	resetRootCmd(t)

	oldService := ingestService
	ingestService = nil
	defer func() { ingestService = oldService }()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"ingest", "whatever.md"})

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "ingest service not configured")
}
