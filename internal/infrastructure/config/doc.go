// Package config loads server configuration from environment variables.
//
// Values come from struct tags processed by envconfig. An optional .env file
// (path in ENV_FILE, else ./.env when present) is read first with godotenv;
// it never overrides variables that are already set.
//
//	GOOGLE_MAPS_API_KEY  maps web services key (lookups degrade when empty)
//	OLLAMA_URL           chat endpoint base, default http://localhost:11434
//	LLM_MODEL            model name
//	LLM_INTENT_TIMEOUT   soft budget for intent extraction, default 3s
//	LLM_NARRATION_TIMEOUT hard budget for narration, default 10s
//	LLM_PROMPTS_FILE     optional YAML prompt pack override
package config
