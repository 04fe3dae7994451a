// Package providers defines the model transport layer.
//
// The governance engine never talks to a model API directly. It builds a
// provider-agnostic GenerateRequest (system instruction, conversation turns,
// sampling parameters) and hands it to a Provider implementation, which
// transforms it to the vendor wire format, sends it with retry and health
// tracking, and normalizes the response.
//
// # Provider Interface
//
// Provider is the single abstraction all adapters implement. The engine
// treats any error returned from Generate as a transport failure: the budget
// charge for the exchange has already been committed by the time the
// transport is invoked, and it is never rolled back.
//
// # HTTPProvider
//
// HTTPProvider is the shared base for HTTP adapters. It owns the pooled
// http.Client, retries transient failures with exponential backoff, and
// maintains health status with a consecutive-failure circuit breaker.
// Concrete adapters (see the gemini subpackage) embed it and supply the
// request/response transformation.
//
// # Error Types
//
// All failures are typed: AuthError, RateLimitError, TimeoutError,
// ParseError, ValidationError, ConfigError, and the general TransportError.
// Callers can use errors.As to branch on the failure class.
package providers
