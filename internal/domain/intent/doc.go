// Package intent extracts place search parameters from a chat utterance.
//
// One non-streaming LLM call with a few-shot prompt and format "json" runs
// under a soft deadline (resilience.Race). The reply is validated against a
// JSON schema; any timeout, transport error, or malformed reply yields the
// literal fallback {query: u, location: "near me", formatted_query: u}.
//
// Prompts come from an embedded YAML pack that LLM_PROMPTS_FILE can replace.
package intent
