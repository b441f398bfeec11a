package gen

import (
	"fmt"
	"os"
	"path/filepath"
)

// File permission constants.
const (
	dirPerm  = 0o755
	filePerm = 0o644
)

// WriteFiles writes all generated files under the output directory,
// creating intermediate directories as needed.
func WriteFiles(files []GeneratedFile, outputDir string) error {
	err := os.MkdirAll(outputDir, dirPerm)
	if err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	for _, file := range files {
		outputPath := filepath.Join(outputDir, filepath.FromSlash(file.Path))

		if err := os.MkdirAll(filepath.Dir(outputPath), dirPerm); err != nil {
			return fmt.Errorf("creating directory for %s: %w", file.Path, err)
		}

		err := os.WriteFile(outputPath, file.Content, filePerm)
		if err != nil {
			return fmt.Errorf("writing file %s: %w", file.Path, err)
		}
	}

	return nil
}
