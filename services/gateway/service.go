package gateway

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/MarcGrol/shopconnector/lib/myhttpclient"
	"github.com/MarcGrol/shopconnector/lib/mylog"
)

type Config struct {
	// BaseURL of the remote commerce api, without trailing slash.
	BaseURL string
	// Origin is sent on every request so the remote side can tie calls
	// to the storefront deployment.
	Origin string
	// ChannelFlags are static storefront-mode markers merged into the
	// body and filter of every outgoing call.
	ChannelFlags map[string]any
}

type client struct {
	cfg        Config
	httpSender myhttpclient.HTTPSender
	tokens     TokenSource
	logger     mylog.Logger
}

// Use dependency injection to isolate the infrastructure and easy testing
func NewClient(cfg Config, httpSender myhttpclient.HTTPSender, tokens TokenSource, logger mylog.Logger) Caller {
	return &client{
		cfg:        cfg,
		httpSender: httpSender,
		tokens:     tokens,
		logger:     logger,
	}
}

func (g *client) Call(c context.Context, route string, body map[string]any, opts CallOptions) Result {
	payload := g.normalizeBody(body)

	clientToken, hasClientToken := g.tokens.ClientToken(c)
	if opts.RequireCustomerAuth && !hasClientToken {
		// fail fast: customer-scoped route without a customer identity
		g.logger.Log(c, route, mylog.SeverityDebug, "Skipping %s: no client token", route)
		return Result{NoOp: true, Kind: KindUnauthorized}
	}

	headers := map[string]string{
		"Origin": g.cfg.Origin,
	}
	if !opts.AllowAnonymous {
		if token, found := g.tokens.AccessToken(c); found {
			headers["Authorization"] = "Bearer " + token
		}
	}
	if opts.AttachClientToken && hasClientToken {
		headers["Client-Authorization"] = clientToken
	}

	result := g.send(c, route, payload, headers, opts)
	if result.Kind != KindUnauthorized || opts.AllowAnonymous {
		return result
	}

	// The token was rejected: re-authenticate once and retry. A second
	// unauthorized outcome is surfaced as a plain failure so callers do
	// not end up in a retry loop.
	if !g.tokens.Renew(c) {
		result.Kind = KindRequestFailed
		return result
	}

	if token, found := g.tokens.AccessToken(c); found {
		headers["Authorization"] = "Bearer " + token
	}

	result = g.send(c, route, payload, headers, opts)
	if result.Kind == KindUnauthorized {
		result.Kind = KindRequestFailed
	}

	return result
}

func (g *client) send(c context.Context, route string, payload map[string]any, headers map[string]string, opts CallOptions) Result {
	data, err := json.Marshal(payload)
	if err != nil {
		g.logger.Log(c, route, mylog.SeverityError, "Error marshalling body for %s: %s", route, err)
		return Result{Kind: KindRequestFailed}
	}

	status, respBody, err := g.httpSender.Send(c, http.MethodPost, g.cfg.BaseURL+"/"+route, headers, data)
	if err != nil {
		g.logger.Log(c, route, mylog.SeverityError, "Error calling %s: %s", route, err)
		return Result{Kind: KindRequestFailed}
	}

	switch {
	case status == http.StatusOK:
		parsed := map[string]any{}
		err = json.Unmarshal(respBody, &parsed)
		if err != nil {
			g.logger.Log(c, route, mylog.SeverityError, "Error parsing response of %s: %s", route, err)
			return Result{Kind: KindRequestFailed, StatusCode: status}
		}
		return Result{OK: true, StatusCode: status, Body: parsed}

	case status == http.StatusUnauthorized:
		// expected and recoverable, so only a warning
		g.logger.Log(c, route, mylog.SeverityWarn, "Unauthorized on %s: %v", route, mylog.Scrub(payload))
		return g.errorResult(KindUnauthorized, status, respBody, opts)

	default:
		g.logger.Log(c, route, mylog.SeverityError, "Error %d on %s: %v", status, route, mylog.Scrub(payload))
		return g.errorResult(KindRequestFailed, status, respBody, opts)
	}
}

func (g *client) errorResult(errorKind ErrorKind, status int, respBody []byte, opts CallOptions) Result {
	result := Result{Kind: errorKind, StatusCode: status}

	if opts.ReturnErrorBody {
		errorBody := map[string]any{}
		if err := json.Unmarshal(respBody, &errorBody); err == nil {
			result.ErrorBody = errorBody
		}
	}

	return result
}

// normalizeBody copies the caller-supplied body, makes sure a filter
// sub-object exists and merges the configured channel flags into both.
func (g *client) normalizeBody(body map[string]any) map[string]any {
	payload := make(map[string]any, len(body)+1)
	for key, value := range body {
		payload[key] = value
	}

	filter := map[string]any{}
	if existing, ok := payload["filter"].(map[string]any); ok {
		for key, value := range existing {
			filter[key] = value
		}
	}

	for key, value := range g.cfg.ChannelFlags {
		payload[key] = value
		filter[key] = value
	}
	payload["filter"] = filter

	return payload
}
