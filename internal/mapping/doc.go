// Package mapping provides the YAML rule and tier tables that drive
// conversion, their embedded defaults, parsing, and validation.
//
// Tables are configuration data: the converters never hard-code a target
// type or model, they look it up here. Overrides are plain YAML files with
// the same shape as the embedded defaults.
//
// # Rule tables
//
// A rule file maps source primitive type names to target type names, per
// source dialect:
//
//	version: "1"
//	dialects:
//	  typescript:
//	    fallback: Any
//	    fallback_import: "from typing import Any"
//	    rules:
//	      - source: string
//	        target: str
//	      - source: [number, float]   # several source names, one target
//	        target: float
//	      - source: Date
//	        target: datetime
//	        import: "from datetime import datetime"
//	  postgres:
//	    rules:
//	      - source: [varchar, text]
//	        target: str
//	        column: sa.String
//
// Lookups are case-insensitive on the source name. A rule may declare
// confidence: approximate when the target only approximates the source.
//
// # Tier tables
//
// A tier file maps external API calls to target capability families and
// model identifiers in two stages:
//
//	version: "1"
//	capabilities:                 # stage (a): capability -> family
//	  chat-completion: foundation-model-chat
//	  http-request: http-client
//	tiers:                        # tier -> target model
//	  flagship: databricks-dbrx-instruct
//	  small: databricks-meta-llama-3-8b-instruct
//	providers:                    # stage (b): source model -> tier
//	  openai:
//	    default: flagship
//	    capability_defaults:
//	      embedding: embedding
//	    models:
//	      flagship: [gpt-4, gpt-4o]
//	      small: [gpt-3.5]
//
// A model identifier absent from its provider's buckets falls back to the
// provider default (or the capability default) and is flagged approximate.
package mapping
