package mapping

import (
	"sort"
	"strings"
)

// Dialect names used by the converters.
const (
	DialectTypeScript = "typescript"
	DialectPostgres   = "postgres"
)

// RuleFile is the root of a type rule document.
type RuleFile struct {
	Version  string                   `yaml:"version"`
	Dialects map[string]*DialectRules `yaml:"dialects"`
}

// DialectRules holds the rules for one source dialect.
type DialectRules struct {
	// Fallback is the target for source names with no rule.
	Fallback       string      `yaml:"fallback,omitempty"`
	FallbackImport string      `yaml:"fallback_import,omitempty"`
	Rules          []RuleEntry `yaml:"rules"`

	index map[string]int
}

// RuleEntry maps one or more source names to a target type.
type RuleEntry struct {
	Source StringOrArray `yaml:"source"`
	Target string        `yaml:"target"`
	// Import is the statement the target type needs, if any.
	Import string `yaml:"import,omitempty"`
	// Column is the column type constructor used in migrations.
	Column     string `yaml:"column,omitempty"`
	Confidence string `yaml:"confidence,omitempty"`
}

// Approximate reports whether the rule is marked approximate.
func (r RuleEntry) Approximate() bool {
	return strings.EqualFold(r.Confidence, "approximate")
}

// Dialect returns the rules for name, or nil.
func (rf *RuleFile) Dialect(name string) *DialectRules {
	if rf == nil {
		return nil
	}

	return rf.Dialects[name]
}

// DialectNames returns the dialect names in sorted order.
func (rf *RuleFile) DialectNames() []string {
	names := make([]string, 0, len(rf.Dialects))
	for n := range rf.Dialects {
		names = append(names, n)
	}

	sort.Strings(names)

	return names
}

// Lookup finds the rule for a source type name in a dialect.
func (rf *RuleFile) Lookup(dialect, source string) (RuleEntry, bool) {
	d := rf.Dialect(dialect)
	if d == nil {
		return RuleEntry{}, false
	}

	return d.Lookup(source)
}

// Lookup finds the rule for a source type name.
func (d *DialectRules) Lookup(source string) (RuleEntry, bool) {
	key := strings.ToLower(strings.TrimSpace(source))

	if d.index != nil {
		i, ok := d.index[key]
		if !ok {
			return RuleEntry{}, false
		}

		return d.Rules[i], true
	}

	for _, r := range d.Rules {
		if r.Source.ContainsFold(key) {
			return r, true
		}
	}

	return RuleEntry{}, false
}

// buildIndex maps every source name to its first rule.
func (d *DialectRules) buildIndex() {
	d.index = make(map[string]int)

	for i, r := range d.Rules {
		for _, s := range r.Source {
			key := strings.ToLower(strings.TrimSpace(s))
			if _, dup := d.index[key]; !dup {
				d.index[key] = i
			}
		}
	}
}

// TierFile is the root of an API tier document.
type TierFile struct {
	Version string `yaml:"version"`
	// Capabilities maps a capability tag to a target capability family.
	Capabilities map[string]string `yaml:"capabilities"`
	// Tiers maps a tier name to a target model identifier.
	Tiers     map[string]string         `yaml:"tiers"`
	Providers map[string]*ProviderTiers `yaml:"providers"`
}

// ProviderTiers buckets one provider's model identifiers by tier.
type ProviderTiers struct {
	// Default is the tier for model identifiers not listed in Models.
	Default string `yaml:"default"`
	// CapabilityDefaults overrides Default per capability tag.
	CapabilityDefaults map[string]string `yaml:"capability_defaults,omitempty"`
	// Models maps a tier name to the source model identifiers in it.
	Models map[string]StringOrArray `yaml:"models"`

	index map[string]string
}

// Family returns the target capability family for a capability tag.
func (tf *TierFile) Family(capability string) (string, bool) {
	f, ok := tf.Capabilities[capability]
	return f, ok
}

// Provider returns the tiers of a provider, or nil.
func (tf *TierFile) Provider(name string) *ProviderTiers {
	if tf == nil {
		return nil
	}

	return tf.Providers[name]
}

// TierOf returns the tier a normalized model identifier belongs to.
func (p *ProviderTiers) TierOf(model string) (string, bool) {
	if p.index != nil {
		t, ok := p.index[model]
		return t, ok
	}

	for _, tier := range sortedKeys(p.Models) {
		if p.Models[tier].ContainsFold(model) {
			return tier, true
		}
	}

	return "", false
}

// DefaultTier returns the fallback tier for a capability tag.
func (p *ProviderTiers) DefaultTier(capability string) string {
	if t, ok := p.CapabilityDefaults[capability]; ok {
		return t
	}

	return p.Default
}

func (p *ProviderTiers) buildIndex() {
	p.index = make(map[string]string)

	for _, tier := range sortedKeys(p.Models) {
		for _, m := range p.Models[tier] {
			key := strings.ToLower(strings.TrimSpace(m))
			if _, dup := p.index[key]; !dup {
				p.index[key] = tier
			}
		}
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return keys
}
