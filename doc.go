// Package musclemap is the request core of the MuscleMap API client:
// a resilient request pipeline combined with runtime schema validation.
//
//   - Response caching with per-request TTLs and lazy expiry
//   - Retries with linear backoff on transport and 5xx failures
//   - Bearer token injection via a pluggable TokenProvider
//   - 401 recovery: session clearing + onUnauthorized callback
//   - Runtime schema validation of decoded payloads (see the schema package)
//   - Optional de-duplication of concurrent identical requests
//   - Prometheus metrics and lightweight structured debug logging
//
// Design goals:
//   - Explicit ownership: each Client holds its own cache and configuration
//   - Small surface area: functional options configure everything
//   - Safe concurrent use of a single *Client instance
//
// Typical usage:
//
//	client := musclemap.New(
//	    musclemap.WithBaseURL("https://api.musclemap.me"),
//	    musclemap.WithTokenProvider(musclemap.NewMemoryTokenProvider(token)),
//	    musclemap.WithMaxRetries(2),
//	    musclemap.WithCacheTTL(30*time.Second),
//	)
//
//	workouts, err := client.Execute(ctx, musclemap.Get("/v1/workouts").
//	    WithSchema(schema.Array(schema.Object(
//	        schema.F("id", schema.String()),
//	        schema.F("name", schema.String()),
//	    ))))
//
// Only transport failures and 5xx responses are retried; 401 clears the
// session and fails immediately, and schema mismatches are never retried.
package musclemap
