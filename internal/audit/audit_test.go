package audit

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArchiver(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "archive")
	archiver := NewArchiver(dir)

	t.Run("SaveJSON creates directory and saves file", func(t *testing.T) {
		payload := map[string]any{
			"import_id": "imp-1",
			"year":      2024,
			"text":      "◆OCEAN PIONEER",
		}

		filename, err := archiver.SaveJSON("imp-1", payload)
		require.NoError(t, err)
		assert.Equal(t, "imp-1.json", filename)

		content, err := os.ReadFile(filepath.Join(dir, filename))
		require.NoError(t, err)

		var saved map[string]any
		require.NoError(t, json.Unmarshal(content, &saved))
		assert.Equal(t, "imp-1", saved["import_id"])
		assert.Equal(t, float64(2024), saved["year"])
		assert.Equal(t, "◆OCEAN PIONEER", saved["text"])
	})

	t.Run("empty name generates unique filenames", func(t *testing.T) {
		f1, err := archiver.SaveJSON("", map[string]string{"k": "v"})
		require.NoError(t, err)
		f2, err := archiver.SaveJSON("", map[string]string{"k": "v"})
		require.NoError(t, err)
		assert.NotEqual(t, f1, f2)
	})

	t.Run("unsafe characters are replaced", func(t *testing.T) {
		filename, err := archiver.SaveJSON("../etc/passwd", map[string]string{})
		require.NoError(t, err)
		assert.Equal(t, ".._etc_passwd.json", filename)
		_, err = os.Stat(filepath.Join(dir, filename))
		assert.NoError(t, err)
	})

	t.Run("unmarshalable data", func(t *testing.T) {
		_, err := archiver.SaveJSON("bad", map[string]any{"ch": make(chan int)})
		assert.Error(t, err)
	})
}
