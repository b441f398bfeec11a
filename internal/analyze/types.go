package analyze

import (
	"cmp"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"

	"github.com/zeebo/xxh3"

	"bridge-generator/internal/common"
)

// FileKind tags how a source file is analyzed.
type FileKind int

const (
	FileUnknown         FileKind = iota
	FileHandler                  // API handler source
	FileMigration                // SQL migration
	FileTypeDeclaration          // type declarations only
	FileComponent                // UI component, informational
)

// String returns the file kind tag.
func (k FileKind) String() string {
	switch k {
	case FileHandler:
		return "handler"
	case FileMigration:
		return "migration"
	case FileTypeDeclaration:
		return "type-declaration"
	case FileComponent:
		return "component"
	default:
		return common.UnknownStr
	}
}

// ParseFileKind maps a file kind tag back to its value.
func ParseFileKind(s string) (FileKind, bool) {
	for k := FileHandler; k <= FileComponent; k++ {
		if k.String() == s {
			return k, true
		}
	}

	return FileUnknown, false
}

// SourceFile is one entry of a resolved file set.
type SourceFile struct {
	Path    string
	Kind    FileKind
	Content string
	// OrderKey orders migrations. Files with equal keys fall back to Path.
	OrderKey string
}

// FileSet is the input of one analysis run.
type FileSet struct {
	// Project is the identity used for isolation and reporting.
	Project string
	Files   []SourceFile
}

// Count returns the number of files of the given kind.
func (s FileSet) Count(kind FileKind) int {
	n := 0

	for _, f := range s.Files {
		if f.Kind == kind {
			n++
		}
	}

	return n
}

// Fingerprint returns a content hash of the file set that does not depend
// on file order.
func (s FileSet) Fingerprint() string {
	files := make([]SourceFile, len(s.Files))
	copy(files, s.Files)
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })

	h := xxh3.New()
	for _, f := range files {
		fmt.Fprintf(h, "%s\x00%s\x00%s\x00%d\x00", f.Path, f.Kind, f.OrderKey, len(f.Content))
		_, _ = io.WriteString(h, f.Content)
	}

	return fmt.Sprintf("%016x", h.Sum64())
}

const orderKeyWidth = 20

// MigrationOrderKey derives an ordering key from the numeric prefix of a
// migration file name, zero-padded so keys sort numerically. Names without
// a numeric prefix get an empty key.
func MigrationOrderKey(p string) string {
	base := path.Base(strings.ReplaceAll(p, "\\", "/"))

	end := 0
	for end < len(base) && base[end] >= '0' && base[end] <= '9' {
		end++
	}

	if end == 0 {
		return ""
	}

	digits := strings.TrimLeft(base[:end], "0")
	if len(digits) >= orderKeyWidth {
		return digits
	}

	return strings.Repeat("0", orderKeyWidth-len(digits)) + digits
}

// CompareOrderKeys orders keys produced by MigrationOrderKey numerically.
// Prefixes wider than the padding sort after every padded key.
func CompareOrderKeys(a, b string) int {
	if len(a) != len(b) {
		return cmp.Compare(len(a), len(b))
	}

	return strings.Compare(a, b)
}
