package gateway

import (
	"context"
	"encoding/json"
)

// ErrorKind classifies why a remote call did not produce a usable result.
type ErrorKind int

const (
	KindNone ErrorKind = iota
	// KindUnauthorized means the bearer token or its scope was rejected.
	// Recoverable: the gateway re-authenticates once and retries.
	KindUnauthorized
	// KindRequestFailed covers every other non-2xx outcome and all
	// transport-level failures. Not auto-retried.
	KindRequestFailed
	// KindValidation means caller-supplied data failed a local
	// precondition check and was never sent to the remote service.
	KindValidation
)

func (k ErrorKind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindUnauthorized:
		return "unauthorized"
	case KindRequestFailed:
		return "request-failed"
	case KindValidation:
		return "validation"
	default:
		return "unknown"
	}
}

// Result is the uniform outcome of a remote call. The gateway never lets a
// transport exception escape: every failure mode ends up in here.
type Result struct {
	OK         bool
	NoOp       bool
	Kind       ErrorKind
	StatusCode int
	Body       map[string]any
	ErrorBody  map[string]any
}

// DecodeInto unmarshals the response body into a typed value.
func (r Result) DecodeInto(v any) error {
	data, err := json.Marshal(r.Body)
	if err != nil {
		return err
	}

	return json.Unmarshal(data, v)
}

type CallOptions struct {
	// RequireCustomerAuth makes the call a no-op when no customer
	// (client) token is present: no network call is made.
	RequireCustomerAuth bool
	// AttachClientToken adds the Client-Authorization header when a
	// customer token is present. Used for customer-scoped routes.
	AttachClientToken bool
	// AllowAnonymous skips the merchant bearer header, for routes like
	// login that establish the credentials in the first place.
	AllowAnonymous bool
	// ReturnErrorBody parses the error response body into
	// Result.ErrorBody so callers can read structured validation detail.
	ReturnErrorBody bool
}

//go:generate mockgen -source=api.go -package gateway -destination caller_mock.go Caller
type Caller interface {
	Call(c context.Context, route string, body map[string]any, opts CallOptions) Result
}

// TokenSource provides the credentials that get attached to outgoing calls.
// Implemented by the auth-session manager; defined here so the gateway does
// not depend on it.
type TokenSource interface {
	// AccessToken returns the merchant bearer token, establishing one
	// first if the session does not hold a validated token yet.
	AccessToken(c context.Context) (string, bool)
	// ClientToken returns the customer token layered on top of the
	// merchant session, if an end customer has authenticated.
	ClientToken(c context.Context) (string, bool)
	// Renew re-authenticates after an unauthorized outcome. Returns
	// whether a fresh token was obtained.
	Renew(c context.Context) bool
}
