package mapping

import (
	"embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed defaults/*.yaml
var defaultsFS embed.FS

const currentVersion = "1"

// DefaultRules returns a fresh copy of the embedded type rule table.
func DefaultRules() *RuleFile {
	data, err := defaultsFS.ReadFile("defaults/rules.yaml")
	if err != nil {
		panic(fmt.Sprintf("embedded rules missing: %v", err))
	}

	rf, err := ParseRules(data)
	if err != nil {
		panic(fmt.Sprintf("embedded rules invalid: %v", err))
	}

	return rf
}

// DefaultTiers returns a fresh copy of the embedded API tier table.
func DefaultTiers() *TierFile {
	data, err := defaultsFS.ReadFile("defaults/tiers.yaml")
	if err != nil {
		panic(fmt.Sprintf("embedded tiers missing: %v", err))
	}

	tf, err := ParseTiers(data)
	if err != nil {
		panic(fmt.Sprintf("embedded tiers invalid: %v", err))
	}

	return tf
}

// DefaultRulesYAML returns the embedded type rule document.
func DefaultRulesYAML() []byte {
	data, _ := defaultsFS.ReadFile("defaults/rules.yaml")
	return data
}

// DefaultTiersYAML returns the embedded API tier document.
func DefaultTiersYAML() []byte {
	data, _ := defaultsFS.ReadFile("defaults/tiers.yaml")
	return data
}

// LoadRuleFile loads and parses a YAML rule file from the given path.
func LoadRuleFile(path string) (*RuleFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rule file %s: %w", path, err)
	}

	return ParseRules(data)
}

// ParseRules parses YAML data into a RuleFile.
func ParseRules(data []byte) (*RuleFile, error) {
	var rf RuleFile

	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("failed to parse rule YAML: %w", err)
	}

	applyRuleDefaults(&rf)

	return &rf, nil
}

// LoadTierFile loads and parses a YAML tier file from the given path.
func LoadTierFile(path string) (*TierFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read tier file %s: %w", path, err)
	}

	return ParseTiers(data)
}

// ParseTiers parses YAML data into a TierFile.
func ParseTiers(data []byte) (*TierFile, error) {
	var tf TierFile

	if err := yaml.Unmarshal(data, &tf); err != nil {
		return nil, fmt.Errorf("failed to parse tier YAML: %w", err)
	}

	applyTierDefaults(&tf)

	return &tf, nil
}

// applyRuleDefaults fills in the version, drops empty dialects and builds
// lookup indexes. Dialect names are lower-cased.
func applyRuleDefaults(rf *RuleFile) {
	if rf.Version == "" {
		rf.Version = currentVersion
	}

	dialects := make(map[string]*DialectRules, len(rf.Dialects))

	for name, d := range rf.Dialects {
		if d == nil {
			continue
		}

		d.buildIndex()
		dialects[strings.ToLower(strings.TrimSpace(name))] = d
	}

	rf.Dialects = dialects
}

// applyTierDefaults fills in the version, lower-cases provider and
// capability keys and builds lookup indexes.
func applyTierDefaults(tf *TierFile) {
	if tf.Version == "" {
		tf.Version = currentVersion
	}

	caps := make(map[string]string, len(tf.Capabilities))
	for k, v := range tf.Capabilities {
		caps[strings.ToLower(strings.TrimSpace(k))] = v
	}

	tf.Capabilities = caps

	providers := make(map[string]*ProviderTiers, len(tf.Providers))

	for name, p := range tf.Providers {
		if p == nil {
			continue
		}

		p.buildIndex()
		providers[strings.ToLower(strings.TrimSpace(name))] = p
	}

	tf.Providers = providers
}

// MarshalRules serializes a RuleFile to YAML.
func MarshalRules(rf *RuleFile) ([]byte, error) {
	return yaml.Marshal(rf)
}

// MarshalTiers serializes a TierFile to YAML.
func MarshalTiers(tf *TierFile) ([]byte, error) {
	return yaml.Marshal(tf)
}
