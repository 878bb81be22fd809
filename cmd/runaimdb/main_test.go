package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const schema = "DATABASE\ttpch\n" +
	"TABLE\tsupplier\tROWTABLE\n" +
	"COLUMN\ts_nationkey\tINT32\n" +
	"COLUMN\ts_name\tCHARN\t12\n"

func runCapturing(t *testing.T, args []string) (int, string, string) {
	t.Helper()
	stdoutFile, err := os.CreateTemp(t.TempDir(), "stdout")
	require.NoError(t, err)
	defer stdoutFile.Close()
	stderrFile, err := os.CreateTemp(t.TempDir(), "stderr")
	require.NoError(t, err)
	defer stderrFile.Close()

	code := run(args, stdoutFile, stderrFile)

	stdoutBytes, err := os.ReadFile(stdoutFile.Name())
	require.NoError(t, err)
	stderrBytes, err := os.ReadFile(stderrFile.Name())
	require.NoError(t, err)
	return code, string(stdoutBytes), string(stderrBytes)
}

func TestRunDumpsLoadedTable(t *testing.T) {
	dir := t.TempDir()
	schemaPath := filepath.Join(dir, "schema.txt")
	require.NoError(t, os.WriteFile(schemaPath, []byte(schema), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "supplier.tab"), []byte("18\tacme\n4\tglobex\n"), 0o644))

	code, stdout, stderr := runCapturing(t, []string{schemaPath, dir})
	require.Equal(t, exitOK, code)
	require.Empty(t, stderr)
	require.True(t, strings.Contains(stdout, "acme"))
	require.True(t, strings.Contains(stdout, "globex"))
}

func TestRunReportsSchemaError(t *testing.T) {
	code, _, stderr := runCapturing(t, []string{"/no/such/file", t.TempDir()})
	require.Equal(t, exitSchemaError, code)
	require.NotEmpty(t, stderr)
}

func TestRunReportsUsageError(t *testing.T) {
	code, _, stderr := runCapturing(t, []string{"only-one-arg"})
	require.Equal(t, exitUsage, code)
	require.NotEmpty(t, stderr)
}

func TestRunVerboseLogsToStderr(t *testing.T) {
	dir := t.TempDir()
	schemaPath := filepath.Join(dir, "schema.txt")
	require.NoError(t, os.WriteFile(schemaPath, []byte(schema), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "supplier.tab"), []byte("18\tacme\n"), 0o644))

	code, _, stderr := runCapturing(t, []string{"-v", schemaPath, dir})
	require.Equal(t, exitOK, code)
	require.True(t, strings.Contains(stderr, "runaimdb:"))
}
