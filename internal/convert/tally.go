package convert

import (
	"maps"
	"slices"

	"bridge-generator/internal/ir"
)

// ConfidenceCounts counts entities per confidence tag.
type ConfidenceCounts struct {
	Exact        int `json:"exact"`
	Approximate  int `json:"approximate"`
	ManualReview int `json:"manual_review"`
}

// Add returns the counts with one more entity tagged c.
func (cc ConfidenceCounts) Add(c ir.Confidence) ConfidenceCounts {
	switch c {
	case ir.ConfidenceExact:
		cc.Exact++
	case ir.ConfidenceApproximate:
		cc.Approximate++
	default:
		cc.ManualReview++
	}

	return cc
}

// Total returns the number of counted entities.
func (cc ConfidenceCounts) Total() int {
	return cc.Exact + cc.Approximate + cc.ManualReview
}

// Tally summarizes a conversion. It is computed from the results and never
// updated afterwards.
type Tally struct {
	Handlers     ConfidenceCounts `json:"handlers"`
	Tables       ConfidenceCounts `json:"tables"`
	Declarations ConfidenceCounts `json:"declarations"`
	Calls        ConfidenceCounts `json:"calls"`
	// ByFamily counts call sites per target capability family. Calls with
	// no family are counted under "unrouted".
	ByFamily map[string]int `json:"by_family"`
	// ByProvider counts call sites per source provider.
	ByProvider map[string]int `json:"by_provider"`
	// ByTargetModel counts foundation-model calls per target model.
	ByTargetModel map[string]int `json:"by_target_model"`
}

const unroutedFamily = "unrouted"

// ComputeTally folds the conversion results into a Tally.
func ComputeTally(res ConversionResult, decls []ConvertedDeclaration) Tally {
	t := Tally{
		ByFamily:      map[string]int{},
		ByProvider:    map[string]int{},
		ByTargetModel: map[string]int{},
	}

	for _, h := range res.Handlers {
		t.Handlers = t.Handlers.Add(h.Confidence)
	}

	for _, tbl := range res.Tables {
		t.Tables = t.Tables.Add(tbl.Confidence)
	}

	for _, d := range decls {
		t.Declarations = t.Declarations.Add(d.Confidence)
	}

	for _, c := range res.Calls {
		t = t.withCall(c)
	}

	return t
}

func (t Tally) withCall(c ConvertedCall) Tally {
	t.Calls = t.Calls.Add(c.Confidence)

	family := c.Family
	if family == "" {
		family = unroutedFamily
	}

	t.ByFamily[family]++
	t.ByProvider[c.Provider.String()]++

	if c.TargetModel != "" {
		t.ByTargetModel[c.TargetModel]++
	}

	return t
}

// Families returns the counted families in sorted order.
func (t Tally) Families() []string {
	return slices.Sorted(maps.Keys(t.ByFamily))
}

// Providers returns the counted providers in sorted order.
func (t Tally) Providers() []string {
	return slices.Sorted(maps.Keys(t.ByProvider))
}

// TargetModels returns the counted target models in sorted order.
func (t Tally) TargetModels() []string {
	return slices.Sorted(maps.Keys(t.ByTargetModel))
}
