package mapping

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRules(t *testing.T) {
	rf := DefaultRules()
	require.NotNil(t, rf)
	assert.Equal(t, "1", rf.Version)
	assert.Equal(t, []string{DialectPostgres, DialectTypeScript}, rf.DialectNames())

	tests := []struct {
		dialect string
		source  string
		target  string
	}{
		{DialectTypeScript, "string", "str"},
		{DialectTypeScript, "number", "float"},
		{DialectTypeScript, "Date", "datetime"},
		{DialectTypeScript, "null", "None"},
		{DialectPostgres, "uuid", "UUID"},
		{DialectPostgres, "TIMESTAMPTZ", "datetime"},
		{DialectPostgres, "double precision", "float"},
		{DialectPostgres, "jsonb", "dict"},
	}

	for _, tt := range tests {
		t.Run(tt.dialect+"/"+tt.source, func(t *testing.T) {
			r, ok := rf.Lookup(tt.dialect, tt.source)
			require.True(t, ok)
			assert.Equal(t, tt.target, r.Target)
		})
	}

	_, ok := rf.Lookup(DialectPostgres, "geometry")
	assert.False(t, ok)

	_, ok = rf.Lookup("rust", "string")
	assert.False(t, ok)

	assert.False(t, ValidateRules(rf).HasErrors())
	assert.Empty(t, ValidateRules(rf).Items)
}

func TestDefaultTiers(t *testing.T) {
	tf := DefaultTiers()
	require.NotNil(t, tf)

	family, ok := tf.Family("chat-completion")
	require.True(t, ok)
	assert.Equal(t, "foundation-model-chat", family)

	openai := tf.Provider("openai")
	require.NotNil(t, openai)

	tier, ok := openai.TierOf("gpt-4o")
	require.True(t, ok)
	assert.Equal(t, "flagship", tier)
	assert.Equal(t, "databricks-dbrx-instruct", tf.Tiers[tier])

	_, ok = openai.TierOf("gpt-9")
	assert.False(t, ok)
	assert.Equal(t, "flagship", openai.DefaultTier("chat-completion"))
	assert.Equal(t, "embedding", openai.DefaultTier("embedding"))

	assert.Empty(t, ValidateTiers(tf).Items)
}

func TestParseRules_ScalarAndListSources(t *testing.T) {
	rf, err := ParseRules([]byte(`
dialects:
  TypeScript:
    rules:
      - source: string
        target: str
      - source: [int, Integer]
        target: int
`))
	require.NoError(t, err)
	assert.Equal(t, "1", rf.Version)

	d := rf.Dialect(DialectTypeScript)
	require.NotNil(t, d)
	assert.Equal(t, StringOrArray{"string"}, d.Rules[0].Source)
	assert.Equal(t, StringOrArray{"int", "Integer"}, d.Rules[1].Source)

	r, ok := d.Lookup("INTEGER")
	require.True(t, ok)
	assert.Equal(t, "int", r.Target)

	out, err := MarshalRules(rf)
	require.NoError(t, err)
	assert.Contains(t, string(out), "source: string")
}

func TestParseRules_Invalid(t *testing.T) {
	_, err := ParseRules([]byte("dialects: [1, 2"))
	require.Error(t, err)

	_, err = ParseRules([]byte("dialects:\n  ts:\n    rules:\n      - source: {a: 1}\n"))
	require.Error(t, err)
}

func TestLoadFiles(t *testing.T) {
	dir := t.TempDir()

	rulesPath := filepath.Join(dir, "rules.yaml")
	require.NoError(t, os.WriteFile(rulesPath, DefaultRulesYAML(), 0o644))

	rf, err := LoadRuleFile(rulesPath)
	require.NoError(t, err)
	assert.NotNil(t, rf.Dialect(DialectPostgres))

	tiersPath := filepath.Join(dir, "tiers.yaml")
	require.NoError(t, os.WriteFile(tiersPath, DefaultTiersYAML(), 0o644))

	tf, err := LoadTierFile(tiersPath)
	require.NoError(t, err)
	assert.NotNil(t, tf.Provider("anthropic"))

	_, err = LoadRuleFile(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
}
