package mapping

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateRules(t *testing.T) {
	rf, err := ParseRules([]byte(`
dialects:
  typescript:
    rules:
      - source: string
        target: str
      - source: [String2, string]
        target: text
      - source: number
      - source: boolean
        target: bool
        confidence: maybe
`))
	require.NoError(t, err)

	res := ValidateRules(rf)

	assert.Len(t, res.WithCode(CodeDuplicateSource), 1)
	assert.Len(t, res.WithCode(CodeEmptyTarget), 1)
	assert.Len(t, res.WithCode(CodeBadConfidence), 1)
	assert.Len(t, res.WithCode(CodeMissingDialect), 1)
	assert.True(t, res.HasErrors())

	assert.True(t, ValidateRules(nil).HasErrors())
}

func TestValidateTiers(t *testing.T) {
	tf, err := ParseTiers([]byte(`
capabilities:
  chat-completion: foundation-model-chat
  summarize: foundation-model-chat
tiers:
  flagship: big-model
providers:
  openai:
    default: flagship
    capability_defaults:
      embedding: embedding
    models:
      flagship: [gpt-4]
      tiny: [gpt-3]
  mistral:
    default: flagship
`))
	require.NoError(t, err)

	res := ValidateTiers(tf)

	assert.Len(t, res.WithCode(CodeUnknownCapability), 1)
	assert.Len(t, res.WithCode(CodeUnknownProvider), 1)
	assert.Len(t, res.WithCode(CodeUnknownTier), 2)
	assert.True(t, res.HasErrors())
}
