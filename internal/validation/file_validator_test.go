package validation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestValidateDataFile(t *testing.T) {
	v := NewFileValidator(nil)

	t.Run("accepts csv", func(t *testing.T) {
		path := writeTempFile(t, "sales.csv", "날짜,매출액\n")
		assert.NoError(t, v.ValidateDataFile(path))
	})

	t.Run("accepts xlsx", func(t *testing.T) {
		path := writeTempFile(t, "sales.xlsx", "stub")
		assert.NoError(t, v.ValidateDataFile(path))
	})

	t.Run("rejects legacy xls", func(t *testing.T) {
		path := writeTempFile(t, "sales.xls", "ole")
		err := v.ValidateDataFile(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not a supported data file")
	})

	t.Run("rejects unsupported extension", func(t *testing.T) {
		path := writeTempFile(t, "sales.txt", "text")
		err := v.ValidateDataFile(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not a supported data file")
	})

	t.Run("rejects excel lock file", func(t *testing.T) {
		path := writeTempFile(t, "~$sales.xlsx", "lock")
		err := v.ValidateDataFile(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "lock file")
	})

	t.Run("rejects missing file", func(t *testing.T) {
		err := v.ValidateDataFile(filepath.Join(t.TempDir(), "missing.csv"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "does not exist")
	})

	t.Run("rejects directory", func(t *testing.T) {
		err := v.ValidateDataFile(t.TempDir())
		assert.Error(t, err)
	})
}

func TestValidateDataFiles(t *testing.T) {
	v := NewFileValidator(nil)

	assert.Error(t, v.ValidateDataFiles(nil))

	good := writeTempFile(t, "a.csv", "x")
	assert.NoError(t, v.ValidateDataFiles([]string{good}))
	assert.Error(t, v.ValidateDataFiles([]string{good, "missing.csv"}))
}

func TestValidateOutputDirectory(t *testing.T) {
	v := NewFileValidator(nil)

	dir := filepath.Join(t.TempDir(), "reports", "monthly")
	require.NoError(t, v.ValidateOutputDirectory(dir))

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
