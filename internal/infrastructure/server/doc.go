// Package server assembles the placechat HTTP server.
//
// Startup order: metrics and tracer, prompt pack, LLM client and maps
// gateway, intent extractor, chat orchestrator, then the gin router with
// recovery, tracing, metrics, CORS and rate limiting in that order. Lookup
// routes are gzip-compressed; the chat stream is not.
//
//	cfg, err := config.Load()
//	srv, err := server.NewServer(cfg, logger)
//	err = srv.Run(ctx) // returns after ctx is cancelled and requests drain
package server
