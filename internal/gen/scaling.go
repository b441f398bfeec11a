package gen

// ScalingTier is a resource profile chosen by project size.
type ScalingTier struct {
	Name string `mapstructure:"name" json:"name"`
	// MaxEntities is the largest handler plus table count the tier serves.
	// Zero means unbounded.
	MaxEntities   int    `mapstructure:"max_entities" json:"max_entities"`
	MemoryRequest string `mapstructure:"memory_request" json:"memory_request"`
	MemoryLimit   string `mapstructure:"memory_limit" json:"memory_limit"`
	CPURequest    string `mapstructure:"cpu_request" json:"cpu_request"`
	CPULimit      string `mapstructure:"cpu_limit" json:"cpu_limit"`
}

// DefaultScalingTiers returns the small, medium and large profiles.
func DefaultScalingTiers() []ScalingTier {
	return []ScalingTier{
		{Name: "small", MaxEntities: 10, MemoryRequest: "512Mi", MemoryLimit: "1Gi", CPURequest: "250m", CPULimit: "500m"},
		{Name: "medium", MaxEntities: 30, MemoryRequest: "1Gi", MemoryLimit: "2Gi", CPURequest: "500m", CPULimit: "1000m"},
		{Name: "large", MemoryRequest: "2Gi", MemoryLimit: "4Gi", CPURequest: "1000m", CPULimit: "2000m"},
	}
}

// SelectScalingTier returns the first tier whose bound covers count. Tiers
// are expected in ascending order; the last tier takes any overflow. An
// empty list selects from the defaults.
func SelectScalingTier(count int, tiers []ScalingTier) ScalingTier {
	if len(tiers) == 0 {
		tiers = DefaultScalingTiers()
	}

	for _, t := range tiers {
		if t.MaxEntities == 0 || count <= t.MaxEntities {
			return t
		}
	}

	return tiers[len(tiers)-1]
}
