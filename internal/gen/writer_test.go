package gen

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteFiles_CreatesDirectories(t *testing.T) {
	dir := t.TempDir()

	files := []GeneratedFile{
		{Path: "app/routers/send_email.py", Content: []byte("router\n")},
		{Path: "requirements.txt", Content: []byte("fastapi\n")},
	}

	require.NoError(t, WriteFiles(files, filepath.Join(dir, "out")))

	data, err := os.ReadFile(filepath.Join(dir, "out", "app", "routers", "send_email.py"))
	require.NoError(t, err)
	assert.Equal(t, "router\n", string(data))

	data, err = os.ReadFile(filepath.Join(dir, "out", "requirements.txt"))
	require.NoError(t, err)
	assert.Equal(t, "fastapi\n", string(data))
}
