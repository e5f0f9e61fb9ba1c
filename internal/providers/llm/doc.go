// Package llm is a client for an Ollama-compatible /api/chat endpoint.
//
// Chat performs one non-streaming completion (used for intent extraction
// with format "json"). StreamChat reads newline-delimited JSON frames and
// hands each content delta to a callback in arrival order; undecodable
// frames are skipped and counted.
package llm
