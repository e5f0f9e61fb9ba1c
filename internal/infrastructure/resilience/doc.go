/*
Package resilience guards calls to upstream dependencies.

# Breaker

A three-state circuit breaker (closed, open, half-open) wraps the Google Maps
and Ollama clients. Settings.IsSuccessful decides which errors count as
upstream failures, so provider answers such as REQUEST_DENIED leave the
breaker closed while transport errors and 5xx responses trip it.

	breaker := resilience.New("google-maps", resilience.Settings{
		Timeout: 30 * time.Second,
		ReadyToTrip: func(c resilience.Counts) bool {
			return c.ConsecutiveFailures >= 5
		},
	})

	done, err := breaker.Allow()
	if err != nil {
		return err // ErrCircuitOpen or ErrTooManyRequests
	}
	resp, err := send(ctx)
	done(err)

	Closed --[failures]-> Open --[timeout]-> Half-Open --[successes]-> Closed
	                                              |
	                                          [failure]
	                                              v
	                                             Open

# Race

Race applies a soft deadline: the caller stops waiting after the budget and
the abandoned call is cancelled through its context. Intent extraction uses it
to fall back to the raw utterance after three seconds.
*/
package resilience
