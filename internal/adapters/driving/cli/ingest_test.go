package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIngestCmd_Use(t *testing.T) {
	assert.Equal(t, "ingest [doc-id] [file]", ingestCmd.Use)
}

func TestIngestCmd_FromFile(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	mock := corpusService.(*mockCorpusService)

	path := filepath.Join(t.TempDir(), "runbook.md")
	require.NoError(t, os.WriteFile(path, []byte("Phase one is DNS cutover."), 0600))

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"ingest", "dr_runbook.md", path})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Equal(t, "dr_runbook.md", mock.lastDocID)
	assert.Equal(t, "Phase one is DNS cutover.", mock.lastText)
	assert.Contains(t, buf.String(), "Ingested dr_runbook.md: 3 chunks.")
}

func TestIngestCmd_FromStdin(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	mock := corpusService.(*mockCorpusService)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetIn(strings.NewReader("weekly full backups"))
	rootCmd.SetArgs([]string{"ingest", "backup_policy.md"})
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Equal(t, "backup_policy.md", mock.lastDocID)
	assert.Equal(t, "weekly full backups", mock.lastText)
}

func TestIngestCmd_DomainHintFlag(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	mock := corpusService.(*mockCorpusService)

	rootCmd.SetOut(new(bytes.Buffer))
	rootCmd.SetIn(strings.NewReader("content"))
	rootCmd.SetArgs([]string{"ingest", "--domain", "legal", "contract.md"})
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
		ingestDomain = ""
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Equal(t, "legal", mock.lastOpts.DomainHint)
}

func TestIngestCmd_MissingFile(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"ingest", "doc", "/no/such/file.txt"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
}
