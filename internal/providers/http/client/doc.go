// Package client provides the outbound HTTP client shared by the Google Maps
// gateway and the Ollama client.
//
// Built on go-resty/resty over a hashicorp/go-retryablehttp transport:
//   - retries with exponential backoff on connection errors and 5xx
//   - token-bucket rate limiting per upstream (x/time/rate)
//   - a circuit breaker that trips on transport errors and 5xx answers only
//   - trace header propagation from the request context
//
// Example Usage:
//
//	c := client.New(client.Options{Name: "google-maps", BaseURL: base, Timeout: 10 * time.Second})
//	resp, err := c.Execute(ctx, http.MethodGet, "/place/textsearch/json", func(r *resty.Request) {
//		r.SetQueryParam("query", q)
//	})
package client
