package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runExtractForTest(t *testing.T, path string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	extractTextCmd.SetOut(&out)
	extractTextCmd.SetErr(&errOut)
	err := runExtractText(extractTextCmd, []string{path})
	return out.String(), err
}

func TestRunExtractText_MissingFile(t *testing.T) {
	_, err := runExtractForTest(t, filepath.Join(t.TempDir(), "nope.pdf"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read")
}

func TestRunExtractText_UnsupportedFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "resume.txt")
	require.NoError(t, os.WriteFile(path, []byte("plain text"), 0o644))

	_, err := runExtractForTest(t, path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported")
}

func TestRunExtractText_CorruptPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "resume.pdf")
	require.NoError(t, os.WriteFile(path, []byte("not a pdf"), 0o644))

	_, err := runExtractForTest(t, path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to extract text")
}
