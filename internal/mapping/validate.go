package mapping

import (
	"fmt"

	"bridge-generator/internal/diagnostic"
	"bridge-generator/internal/ir"
)

// Validation codes.
const (
	CodeTableIsNil        = "table_is_nil"
	CodeDuplicateSource   = "duplicate_source"
	CodeEmptyTarget       = "empty_target"
	CodeEmptySource       = "empty_source"
	CodeBadConfidence     = "bad_confidence"
	CodeUnknownTier       = "unknown_tier"
	CodeUnknownCapability = "unknown_capability"
	CodeUnknownProvider   = "unknown_provider"
	CodeMissingDialect    = "missing_dialect"
)

// ValidateRules checks a rule table for structural problems. Problems
// that make lookups ambiguous or empty are errors; the rest are warnings.
func ValidateRules(rf *RuleFile) *diagnostic.Diagnostics {
	res := &diagnostic.Diagnostics{}
	if rf == nil {
		res.AddError(CodeTableIsNil, "rule table is nil", "")
		return res
	}

	for _, name := range []string{DialectTypeScript, DialectPostgres} {
		if rf.Dialect(name) == nil {
			res.AddWarning(CodeMissingDialect, fmt.Sprintf("dialect %q has no rules; every type falls back", name), name)
		}
	}

	for _, name := range rf.DialectNames() {
		d := rf.Dialects[name]
		seen := map[string]int{}

		for i, r := range d.Rules {
			subject := fmt.Sprintf("%s.rules[%d]", name, i)

			if r.Source.IsEmpty() {
				res.AddError(CodeEmptySource, "rule has no source type", subject)
			}

			if r.Target == "" {
				res.AddError(CodeEmptyTarget, fmt.Sprintf("rule for %v has no target type", []string(r.Source)), subject)
			}

			if r.Confidence != "" && r.Confidence != "exact" && !r.Approximate() {
				res.AddWarning(CodeBadConfidence, fmt.Sprintf("confidence %q is not exact or approximate", r.Confidence), subject)
			}

			for _, s := range r.Source {
				if prev, dup := seen[s]; dup {
					res.AddError(CodeDuplicateSource,
						fmt.Sprintf("source %q already mapped by %s.rules[%d]", s, name, prev), subject)

					continue
				}

				seen[s] = i
			}
		}
	}

	return res
}

// ValidateTiers checks a tier table for references to undefined tiers,
// unknown capability tags and unknown providers.
func ValidateTiers(tf *TierFile) *diagnostic.Diagnostics {
	res := &diagnostic.Diagnostics{}
	if tf == nil {
		res.AddError(CodeTableIsNil, "tier table is nil", "")
		return res
	}

	for _, c := range sortedKeys(tf.Capabilities) {
		if _, ok := ir.ParseCapability(c); !ok || c == ir.CapabilityUnknown.String() {
			res.AddWarning(CodeUnknownCapability, fmt.Sprintf("capability %q is not recognized by the scanner", c), "capabilities."+c)
		}
	}

	for _, name := range sortedKeys(tf.Providers) {
		p := tf.Providers[name]
		subject := "providers." + name

		if prov, ok := ir.ParseProvider(name); !ok || prov == ir.ProviderUnknown {
			res.AddWarning(CodeUnknownProvider, fmt.Sprintf("provider %q is not recognized by the scanner", name), subject)
		}

		checkTier := func(tier, where string) {
			if _, ok := tf.Tiers[tier]; !ok {
				res.AddError(CodeUnknownTier, fmt.Sprintf("%s refers to undefined tier %q", where, tier), subject)
			}
		}

		if p.Default == "" {
			res.AddError(CodeUnknownTier, "provider has no default tier", subject)
		} else {
			checkTier(p.Default, "default")
		}

		for _, c := range sortedKeys(p.CapabilityDefaults) {
			checkTier(p.CapabilityDefaults[c], "capability_defaults."+c)
		}

		for _, tier := range sortedKeys(p.Models) {
			checkTier(tier, "models")
		}
	}

	return res
}
