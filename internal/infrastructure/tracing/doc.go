/*
Package tracing provides lightweight request tracing.

Spans carry ULID trace and span IDs, propagate through context.Context, and
are logged through zap by a buffered collector when they end. Inbound HTTP
requests continue a trace sent in X-Trace-ID / X-Span-ID; outbound calls to
the LLM and maps APIs carry the same headers via Inject.

	tracer := tracing.New("placechat", logger)
	defer tracer.Close()

	router.Use(tracing.HTTPMiddleware(tracer))

	span, ctx := tracer.StartSpan(ctx, "chat.search")
	defer span.End(err)
*/
package tracing
