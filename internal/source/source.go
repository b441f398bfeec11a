// Package source discovers a project's files on local disk by directory
// convention and builds the analysis file set.
package source

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"bridge-generator/internal/analyze"
)

// ErrNotDirectory is returned when the project root is not a directory.
var ErrNotDirectory = errors.New("not a directory")

const sharedDir = "_shared"

var (
	componentRoots = []string{"src/components/", "src/pages/"}
	componentExts  = []string{".tsx", ".jsx"}
	generatedTypes = "src/integrations/supabase/types.ts"
)

// Classify returns the file kind for a slash-separated path relative to the
// project root, or FileUnknown when no convention matches.
func Classify(rel string) analyze.FileKind {
	parts := strings.Split(rel, "/")

	switch {
	case len(parts) == 4 && parts[0] == "supabase" && parts[1] == "functions" &&
		parts[3] == "index.ts" && parts[2] != sharedDir:
		return analyze.FileHandler
	case len(parts) == 3 && parts[0] == "supabase" && parts[1] == "migrations" && path.Ext(rel) == ".sql":
		return analyze.FileMigration
	case rel == generatedTypes,
		strings.HasPrefix(rel, "src/types/") && path.Ext(rel) == ".ts":
		return analyze.FileTypeDeclaration
	}

	for _, root := range componentRoots {
		if !strings.HasPrefix(rel, root) {
			continue
		}

		for _, ext := range componentExts {
			if path.Ext(rel) == ext {
				return analyze.FileComponent
			}
		}
	}

	return analyze.FileUnknown
}

// LoadDir walks root and returns every conventional file, sorted by path.
// The project identity defaults to the directory's base name.
func LoadDir(root, project string) (analyze.FileSet, error) {
	info, err := os.Stat(root)
	if err != nil {
		return analyze.FileSet{}, fmt.Errorf("opening project: %w", err)
	}

	if !info.IsDir() {
		return analyze.FileSet{}, fmt.Errorf("%s: %w", root, ErrNotDirectory)
	}

	if project == "" {
		abs, err := filepath.Abs(root)
		if err != nil {
			return analyze.FileSet{}, fmt.Errorf("resolving project path: %w", err)
		}

		project = filepath.Base(abs)
	}

	set := analyze.FileSet{Project: project}

	err = fs.WalkDir(os.DirFS(root), ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			if p != "." && (d.Name() == "node_modules" || strings.HasPrefix(d.Name(), ".")) {
				return fs.SkipDir
			}

			return nil
		}

		kind := Classify(p)
		if kind == analyze.FileUnknown {
			return nil
		}

		data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(p)))
		if err != nil {
			return fmt.Errorf("reading %s: %w", p, err)
		}

		f := analyze.SourceFile{Path: p, Kind: kind, Content: string(data)}
		if kind == analyze.FileMigration {
			f.OrderKey = analyze.MigrationOrderKey(p)
		}

		set.Files = append(set.Files, f)

		return nil
	})
	if err != nil {
		return analyze.FileSet{}, fmt.Errorf("scanning %s: %w", root, err)
	}

	sort.Slice(set.Files, func(i, j int) bool { return set.Files[i].Path < set.Files[j].Path })

	return set, nil
}
