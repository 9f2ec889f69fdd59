package checkout

// Outcome tells which payment flow a committed order ended up in. The
// branches are mutually exclusive, in this order of precedence:
// external redirect, hosted session, synchronous completion.
type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomeExternalRedirect
	OutcomeHostedSession
	OutcomeCompleted
)

func (o Outcome) String() string {
	switch o {
	case OutcomeExternalRedirect:
		return "redirect"
	case OutcomeHostedSession:
		return "hosted-session"
	case OutcomeCompleted:
		return "completed"
	default:
		return "none"
	}
}

// HostedSession is the provider payload the storefront SDK consumes. The
// fields are passed through verbatim, never interpreted.
type HostedSession struct {
	SessionID      string `json:"sessionId"`
	AccountID      string `json:"accountId"`
	PublishableKey string `json:"publishableKey"`
}

// Result is the outcome of committing (or previewing) a checkout.
type Result struct {
	Outcome     Outcome        `json:"outcome"`
	Order       map[string]any `json:"order,omitempty"`
	RedirectURL string         `json:"redirectUrl,omitempty"`
	Hosted      *HostedSession `json:"session,omitempty"`
}

const (
	sessionKeyOrderID       = "order_id"
	sessionKeyOrderUUID     = "order_uuid"
	sessionKeyCheckoutID    = "checkout_id"
	sessionKeyHostedSession = "checkout_session"
	sessionKeyRedirectURL   = "checkout_redirect"
	sessionKeyPreview       = "checkout_preview"
	sessionKeyOrder         = "order"
	sessionKeyFinishedID    = "payment_finished"

	routePrepareCheckout = "checkouts/prepare"
	routeProcessCheckout = "checkouts/process"
	routeCancelCheckout  = "checkouts/cancel"
	routeGetCheckout     = "checkouts/get"
	routeExecutePayment  = "payments/execute"
	routeGetOrder        = "orders/get"
)
