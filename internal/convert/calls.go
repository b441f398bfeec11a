package convert

import (
	"fmt"
	"regexp"
	"strings"

	"bridge-generator/internal/diagnostic"
	"bridge-generator/internal/ir"
	"bridge-generator/internal/mapping"
)

// ConvertedCall is the target form of an external call site.
type ConvertedCall struct {
	ID         ir.CallSiteID
	Handler    ir.HandlerID
	Provider   ir.Provider
	Capability ir.Capability
	// Family is the target capability family, empty when none applies.
	Family string
	// SourceModel is the model identifier as written in source.
	SourceModel string
	// Model is the normalized identifier used for the tier lookup.
	Model       string
	Tier        string
	TargetModel string
	Endpoint    string
	Line        int
	Binding     string
	Confidence  ir.Confidence
}

// IsFoundationModel reports whether the call routes to a serving endpoint.
func (c ConvertedCall) IsFoundationModel() bool {
	return c.TargetModel != ""
}

// APICallConverter classifies call sites through a tier table.
type APICallConverter struct {
	tiers *mapping.TierFile
}

// NewAPICallConverter creates a converter over tiers.
func NewAPICallConverter(tiers *mapping.TierFile) *APICallConverter {
	return &APICallConverter{tiers: tiers}
}

// Convert routes one call site. The capability picks the target family;
// the normalized model identifier picks the tier. Models missing from the
// provider's buckets take the provider default and are approximate.
func (c *APICallConverter) Convert(handler ir.HandlerID, site ir.ExternalCallSite) (ConvertedCall, []diagnostic.Diagnostic) {
	out := ConvertedCall{
		ID:          site.ID,
		Handler:     handler,
		Provider:    site.Provider,
		Capability:  site.Capability,
		SourceModel: site.Model,
		Model:       NormalizeModelID(site.Model),
		Endpoint:    site.Endpoint,
		Line:        site.Line,
		Binding:     site.Binding,
	}
	subject := string(site.ID)

	downgrade := func(conf ir.Confidence, format string, args ...any) (ConvertedCall, []diagnostic.Diagnostic) {
		out.Confidence = ir.Worst(out.Confidence, conf)
		return out, []diagnostic.Diagnostic{diagnostic.Warningf(diagnostic.CodeConversionDowngrade, subject, format, args...)}
	}

	if c.tiers == nil {
		return downgrade(ir.ConfidenceManualReview, "no tier table; %s call left unconverted", site.Provider)
	}

	family, ok := c.tiers.Family(site.Capability.String())
	if !ok || site.Capability == ir.CapabilityUnknown {
		return downgrade(ir.ConfidenceManualReview, "capability %q has no target family", site.Capability)
	}

	out.Family = family

	if site.Capability == ir.CapabilityHTTPRequest {
		if site.Provider != ir.ProviderUnknown {
			return downgrade(ir.ConfidenceApproximate,
				"%s endpoint %s is not a recognized API; kept as a plain HTTP request", site.Provider, site.Endpoint)
		}

		return out, nil
	}

	p := c.tiers.Provider(site.Provider.String())
	if p == nil {
		return downgrade(ir.ConfidenceManualReview, "provider %q has no tier table entry", site.Provider)
	}

	var diags []diagnostic.Diagnostic

	switch tier, known := p.TierOf(out.Model); {
	case out.Model == "":
		out.Tier = p.DefaultTier(site.Capability.String())
		out.Confidence = ir.ConfidenceApproximate
		diags = append(diags, diagnostic.Warningf(diagnostic.CodeConversionDowngrade, subject,
			"model is not a literal; using the %s default tier %q", site.Provider, out.Tier))
	case !known:
		out.Tier = p.DefaultTier(site.Capability.String())
		out.Confidence = ir.ConfidenceApproximate
		diags = append(diags, diagnostic.Warningf(diagnostic.CodeConversionDowngrade, subject,
			"model %q is not in the %s tier table; using the default tier %q", site.Model, site.Provider, out.Tier))
	default:
		out.Tier = tier
	}

	target, ok := c.tiers.Tiers[out.Tier]
	if !ok {
		res, more := downgrade(ir.ConfidenceManualReview, "tier %q has no target model", out.Tier)
		return res, append(diags, more...)
	}

	out.TargetModel = target

	return out, diags
}

var (
	dateSuffixRe  = regexp.MustCompile(`-(\d{8}|\d{4}-\d{2}-\d{2}|\d{4})$`)
	latestSuffix  = "-latest"
	modelPrefixes = []string{"models/", "openai/", "anthropic/", "google/"}
)

// NormalizeModelID lower-cases and trims a model identifier and strips
// provider path prefixes, a "-latest" suffix and trailing date stamps
// ("-20240229", "-2024-08-06", "-0613").
func NormalizeModelID(model string) string {
	m := strings.ToLower(strings.TrimSpace(model))

	for _, p := range modelPrefixes {
		m = strings.TrimPrefix(m, p)
	}

	m = strings.TrimSuffix(m, latestSuffix)
	m = dateSuffixRe.ReplaceAllString(m, "")

	return m
}

// String renders the routing for reports.
func (c ConvertedCall) String() string {
	if c.TargetModel == "" {
		return fmt.Sprintf("%s %s -> %s", c.Provider, c.Capability, c.Family)
	}

	return fmt.Sprintf("%s %s -> %s (%s)", c.Provider, c.SourceModel, c.TargetModel, c.Tier)
}
