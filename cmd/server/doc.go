// Package main is the entry point for the placechat server.
//
// The server answers chat turns by extracting a place search from the user's
// message with a local LLM, querying Google Maps, and streaming the places
// together with a short narration.
//
//	Client → placechat → Ollama (intent, narration)
//	                   → Google Maps web services (places, geocode, directions)
//
// Configuration comes from the environment (optionally a .env file) and the
// flags below, which win over the environment.
//
// Usage:
//
//	./server -port 8000
//
//	# Development mode (colored logs, debug level)
//	./server -dev
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown
package main
