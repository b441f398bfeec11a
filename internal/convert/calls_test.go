package convert

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bridge-generator/internal/ir"
	"bridge-generator/internal/mapping"
)

func TestNormalizeModelID(t *testing.T) {
	tests := map[string]string{
		"gpt-4":                      "gpt-4",
		" GPT-4-0613 ":               "gpt-4",
		"claude-3-opus-20240229":     "claude-3-opus",
		"claude-3-5-sonnet-latest":   "claude-3-5-sonnet",
		"gpt-4o-2024-08-06":          "gpt-4o",
		"models/gemini-1.5-pro":      "gemini-1.5-pro",
		"text-embedding-3-small":     "text-embedding-3-small",
		"claude-2.1":                 "claude-2.1",
		"":                           "",
	}

	for in, want := range tests {
		assert.Equal(t, want, NormalizeModelID(in), in)
	}
}

func TestAPICallConverter(t *testing.T) {
	api := NewAPICallConverter(mapping.DefaultTiers())
	handler := ir.NewHandlerID("supabase/functions/chat/index.ts", "chat")

	tests := []struct {
		name   string
		site   ir.ExternalCallSite
		tier   string
		target string
		family string
		conf   ir.Confidence
		diags  int
	}{
		{
			name:   "flagship model is exact",
			site:   ir.ExternalCallSite{Provider: ir.ProviderOpenAI, Capability: ir.CapabilityChatCompletion, Model: "gpt-4"},
			tier:   "flagship",
			target: "databricks-dbrx-instruct",
			family: "foundation-model-chat",
			conf:   ir.ConfidenceExact,
		},
		{
			name:   "dated small model is exact",
			site:   ir.ExternalCallSite{Provider: ir.ProviderAnthropic, Capability: ir.CapabilityChatCompletion, Model: "claude-3-haiku-20240307"},
			tier:   "small",
			target: "databricks-meta-llama-3-8b-instruct",
			family: "foundation-model-chat",
			conf:   ir.ConfidenceExact,
		},
		{
			name:   "unseen model takes provider default",
			site:   ir.ExternalCallSite{Provider: ir.ProviderOpenAI, Capability: ir.CapabilityChatCompletion, Model: "flagship-v9"},
			tier:   "flagship",
			target: "databricks-dbrx-instruct",
			family: "foundation-model-chat",
			conf:   ir.ConfidenceApproximate,
			diags:  1,
		},
		{
			name:   "embedding without model uses capability default",
			site:   ir.ExternalCallSite{Provider: ir.ProviderOpenAI, Capability: ir.CapabilityEmbedding},
			tier:   "embedding",
			target: "databricks-bge-large-en",
			family: "foundation-model-embedding",
			conf:   ir.ConfidenceApproximate,
			diags:  1,
		},
		{
			name:   "unknown provider http request",
			site:   ir.ExternalCallSite{Provider: ir.ProviderUnknown, Capability: ir.CapabilityHTTPRequest, Endpoint: "https://api.stripe.com/v1/charges"},
			family: "http-client",
			conf:   ir.ConfidenceExact,
		},
		{
			name:  "unknown capability",
			site:  ir.ExternalCallSite{Provider: ir.ProviderOpenAI, Capability: ir.CapabilityUnknown},
			conf:  ir.ConfidenceManualReview,
			diags: 1,
		},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.site.ID = handler.CallSite(i)

			got, diags := api.Convert(handler, tt.site)
			assert.Equal(t, tt.site.ID, got.ID)
			assert.Equal(t, handler, got.Handler)
			assert.Equal(t, tt.tier, got.Tier)
			assert.Equal(t, tt.target, got.TargetModel)
			assert.Equal(t, tt.family, got.Family)
			assert.Equal(t, tt.conf, got.Confidence)
			assert.Len(t, diags, tt.diags)
		})
	}
}

func TestAPICallConverter_ProviderWithoutTiers(t *testing.T) {
	tiers, err := mapping.ParseTiers([]byte(`
capabilities:
  chat-completion: foundation-model-chat
tiers:
  flagship: big
providers: {}
`))
	require.NoError(t, err)

	got, diags := NewAPICallConverter(tiers).Convert("h", ir.ExternalCallSite{
		ID: "h@0", Provider: ir.ProviderGoogle, Capability: ir.CapabilityChatCompletion, Model: "gemini-pro",
	})
	assert.Equal(t, ir.ConfidenceManualReview, got.Confidence)
	assert.Equal(t, "foundation-model-chat", got.Family)
	assert.Empty(t, got.TargetModel)
	require.Len(t, diags, 1)
	assert.Equal(t, "h@0", diags[0].Subject)
}
