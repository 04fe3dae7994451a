// Package gemini implements the Google Gemini transport adapter.
//
// It embeds providers.HTTPProvider for pooling, retries, and health
// tracking, and speaks the generateContent REST API. The adapter's one
// domain-specific responsibility is the safety settings block: when a
// request sets DisableSafetyFilter, every harm category is sent with
// threshold BLOCK_NONE so that governance decisions remain the engine's
// alone, never the vendor filter's.
package gemini
