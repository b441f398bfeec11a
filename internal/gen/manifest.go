package gen

import (
	"fmt"

	"github.com/goccy/go-json"
	"github.com/zeebo/xxh3"
)

// ManifestEntry is one artifact listed in manifest.json.
type ManifestEntry struct {
	Path   string `json:"path"`
	Digest string `json:"xxh3"`
	Bytes  int    `json:"bytes"`
}

// Manifest describes a generated tree. It carries no timestamps so an
// unchanged model always produces the same manifest.
type Manifest struct {
	Project     string          `json:"project"`
	Fingerprint string          `json:"fingerprint"`
	Tier        string          `json:"scaling_tier"`
	Artifacts   []ManifestEntry `json:"artifacts"`
	Failed      []string        `json:"failed,omitempty"`
}

// Digest returns the hex xxh3 digest of content.
func Digest(content []byte) string {
	return fmt.Sprintf("%016x", xxh3.Hash(content))
}

// BuildManifest renders the manifest for the artifacts of out.
func BuildManifest(project, fingerprint string, tier ScalingTier, out *Output) ([]byte, error) {
	m := Manifest{
		Project:     project,
		Fingerprint: fingerprint,
		Tier:        tier.Name,
		Artifacts:   make([]ManifestEntry, 0, len(out.Files)),
	}

	for _, f := range out.Files {
		m.Artifacts = append(m.Artifacts, ManifestEntry{Path: f.Path, Digest: Digest(f.Content), Bytes: len(f.Content)})
	}

	for _, e := range out.Failures {
		m.Failed = append(m.Failed, e.Path)
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, err
	}

	return append(data, '\n'), nil
}

// ParseManifest decodes a manifest.json document.
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}

	return &m, nil
}
