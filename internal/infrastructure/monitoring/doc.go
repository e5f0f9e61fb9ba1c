/*
Package monitoring collects Prometheus metrics.

Collectors live on a private registry owned by each Metrics value and are
served by Metrics.Handler at /metrics.

  - HTTP requests: count, latency and response size per route template
  - provider calls: Google Maps and Ollama calls by outcome (ok, degraded, fatal)
  - circuit breaker position per upstream
  - chat turns by terminal outcome, stream events by kind
  - intent fallbacks by reason, malformed streaming frames skipped
  - active WebSocket connections

Usage:

	metrics := monitoring.NewMetrics()
	router.Use(monitoring.Middleware(metrics))
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	timer := monitoring.NewTimer(metrics, "google", "textsearch")
	defer timer.Stop("ok")
*/
package monitoring
