package mycontext

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
)

// CtxTraceContext is a context key for the trace context (used by mylog)
type CtxTraceContext struct{}

// CtxSessionUID is a context key for the uid of the storefront session
// that drives the current request. Every session-scoped component
// (auth, basket, checkout) reads and writes session storage under this uid.
type CtxSessionUID struct{}

// CtxUserAgent is a context key for the caller's user-agent (used by mycrawler)
type CtxUserAgent struct{}

func ContextFromHTTPRequest(r *http.Request) context.Context {
	var trace string

	projectID := os.Getenv("GOOGLE_CLOUD_PROJECT")
	traceContext := r.Header.Get("X-Cloud-Trace-Context")
	traceParts := strings.Split(traceContext, "/")

	if len(traceParts) > 0 && len(traceParts[0]) > 0 {
		trace = fmt.Sprintf("projects/%s/traces/%s", projectID, traceParts[0])
	}

	// build on the request context so middleware-provided values like the
	// session uid survive
	c := context.WithValue(r.Context(), CtxTraceContext{}, trace)

	return WithUserAgent(c, r.UserAgent())
}

func WithUserAgent(c context.Context, userAgent string) context.Context {
	return context.WithValue(c, CtxUserAgent{}, userAgent)
}

func UserAgent(c context.Context) string {
	userAgent, _ := c.Value(CtxUserAgent{}).(string)
	return userAgent
}

func WithSessionUID(c context.Context, sessionUID string) context.Context {
	return context.WithValue(c, CtxSessionUID{}, sessionUID)
}

func SessionUID(c context.Context) string {
	uid, _ := c.Value(CtxSessionUID{}).(string)
	return uid
}
