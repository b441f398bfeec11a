package convert

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bridge-generator/internal/diagnostic"
	"bridge-generator/internal/ir"
	"bridge-generator/internal/mapping"
)

func TestTypeConverter_BaseRulesRoundTrip(t *testing.T) {
	rf := mapping.DefaultRules()

	for _, dialect := range rf.DialectNames() {
		rules := rf.Dialect(dialect)
		tc := NewTypeConverter(rules, nil)

		for _, r := range rules.Rules {
			for _, src := range r.Source {
				res := tc.Convert(ir.Primitive(src), "t")
				assert.Equal(t, ir.Primitive(r.Target), res.Type, "%s/%s", dialect, src)
				assert.Empty(t, res.Diagnostics)

				arr := tc.Convert(ir.ArrayOf(ir.Primitive(src)), "t")
				assert.Equal(t, ir.ArrayOf(ir.Primitive(r.Target)), arr.Type, "%s/%s[]", dialect, src)
			}
		}
	}
}

func TestTypeConverter_Structural(t *testing.T) {
	reg := NewRegistry()
	reg.Register("User", RegistryEntry{Target: ir.Named("User")})

	tc := NewTypeConverter(mapping.DefaultRules().Dialect(mapping.DialectTypeScript), reg)

	tests := []struct {
		name string
		in   ir.TypeDescriptor
		want ir.TypeDescriptor
		conf ir.Confidence
	}{
		{"optional", ir.OptionalOf(ir.Primitive("number")), ir.OptionalOf(ir.Primitive("float")), ir.ConfidenceExact},
		{
			"record",
			ir.RecordOf(ir.Primitive("string"), ir.Named("User")),
			ir.RecordOf(ir.Primitive("str"), ir.Named("User")),
			ir.ConfidenceExact,
		},
		{
			"union collapses equal variants",
			ir.UnionOf(ir.Primitive("string"), ir.Primitive("symbol"), ir.Primitive("boolean")),
			ir.UnionOf(ir.Primitive("str"), ir.Primitive("bool")),
			ir.ConfidenceApproximate,
		},
		{"unknown passes through", ir.Unknown("{ a: 1 }"), ir.Unknown("{ a: 1 }"), ir.ConfidenceManualReview},
		{"fallback", ir.Primitive("Blob"), ir.Primitive("Any"), ir.ConfidenceApproximate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := tc.Convert(tt.in, "subject")
			assert.Equal(t, tt.want, res.Type)
			assert.Equal(t, tt.conf, res.Confidence)
		})
	}
}

func TestTypeConverter_UnresolvedNamed(t *testing.T) {
	reg := NewRegistry()
	reg.Register("UserProfile", RegistryEntry{Target: ir.Named("UserProfile")})

	tc := NewTypeConverter(nil, reg)

	res := tc.Convert(ir.ArrayOf(ir.Named("UserProfil")), "h.users")
	assert.Equal(t, ir.ArrayOf(ir.Unknown("UserProfil")), res.Type)
	assert.Equal(t, ir.ConfidenceManualReview, res.Confidence)
	require.Len(t, res.Diagnostics, 1)

	d := res.Diagnostics[0]
	assert.Equal(t, diagnostic.CodeConversionDowngrade, d.Code)
	assert.Equal(t, "h.users", d.Subject)
	assert.Equal(t, []string{"UserProfile"}, d.Suggestions)
	assert.Contains(t, d.Message, `did you mean "UserProfile"`)
}

func TestTypeConverter_NoRules(t *testing.T) {
	res := NewTypeConverter(nil, nil).Convert(ir.Primitive("string"), "x")
	assert.Equal(t, ir.Unknown("string"), res.Type)
	assert.Equal(t, ir.ConfidenceManualReview, res.Confidence)
	assert.Len(t, res.Diagnostics, 1)
}

func TestTypeConverter_Deterministic(t *testing.T) {
	tc := NewTypeConverter(mapping.DefaultRules().Dialect(mapping.DialectTypeScript), NewRegistry())
	in := ir.UnionOf(ir.ArrayOf(ir.Primitive("Date")), ir.RecordOf(ir.Primitive("string"), ir.Primitive("number")))

	assert.Equal(t, tc.Convert(in, "x"), tc.Convert(in, "x"))
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry()
	assert.True(t, reg.Register("A", RegistryEntry{Target: ir.Named("A")}))
	assert.False(t, reg.Register("A", RegistryEntry{Target: ir.Primitive("str")}))
	assert.True(t, reg.Register("B", RegistryEntry{Target: ir.Primitive("str")}))

	e, ok := reg.Lookup("A")
	require.True(t, ok)
	assert.Equal(t, ir.Named("A"), e.Target)
	assert.Equal(t, []string{"A", "B"}, reg.Names())

	var nilReg *Registry

	_, ok = nilReg.Lookup("A")
	assert.False(t, ok)
	assert.Nil(t, nilReg.Names())
}
