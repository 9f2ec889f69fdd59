package checkout

import (
	"context"

	"github.com/MarcGrol/shopconnector/lib/mycrawler"
	"github.com/MarcGrol/shopconnector/lib/myevents"
	"github.com/MarcGrol/shopconnector/lib/mylog"
	"github.com/MarcGrol/shopconnector/lib/mypublisher"
	"github.com/MarcGrol/shopconnector/lib/mysession"
	"github.com/MarcGrol/shopconnector/services/basket"
	"github.com/MarcGrol/shopconnector/services/checkoutevents"
	"github.com/MarcGrol/shopconnector/services/gateway"
)

// Service drives the checkout state machine: prepare (pure preview),
// process (commit), and the follow-up finish/cancel callbacks. The order
// correlation key lives in session storage so an asynchronous provider
// callback can be matched to the order that started it.
type Service struct {
	caller    gateway.Caller
	baskets   *basket.Service
	session   mysession.Store
	crawler   mycrawler.Detector
	publisher mypublisher.Publisher
	logger    mylog.Logger
}

// Use dependency injection to isolate the infrastructure and easy testing
func NewService(caller gateway.Caller, baskets *basket.Service, session mysession.Store, crawler mycrawler.Detector, publisher mypublisher.Publisher, logger mylog.Logger) *Service {
	return &Service{
		caller:    caller,
		baskets:   baskets,
		session:   session,
		crawler:   crawler,
		publisher: publisher,
		logger:    logger,
	}
}

// Checkout posts the basket for checkout. With prepare set it is a pure,
// repeatable pricing preview; without it the order is committed and the
// payment flow is selected.
func (s *Service) Checkout(c context.Context, data map[string]any, prepare bool) (Result, bool) {
	if s.crawler.IsCrawler(c) {
		return Result{}, false
	}

	body := map[string]any{"data": data}
	if uuid, found := s.baskets.Handle(c); found {
		body["uuid"] = uuid
	}

	if prepare {
		return s.prepare(c, body)
	}

	return s.process(c, body)
}

func (s *Service) prepare(c context.Context, body map[string]any) (Result, bool) {
	result := s.caller.Call(c, routePrepareCheckout, body, gateway.CallOptions{ReturnErrorBody: true})
	if !result.OK {
		return Result{}, false
	}

	preview, found := gateway.Unwrap(result.Body, "data", true)
	if !found {
		return Result{}, false
	}
	asMap, ok := preview.(map[string]any)
	if !ok {
		return Result{}, false
	}

	err := s.session.Put(c, sessionKeyPreview, asMap)
	if err != nil {
		s.logger.Log(c, "", mylog.SeverityError, "Error persisting checkout preview: %s", err)
		return Result{}, false
	}

	return Result{Outcome: OutcomeNone, Order: asMap}, true
}

func (s *Service) process(c context.Context, body map[string]any) (Result, bool) {
	result := s.caller.Call(c, routeProcessCheckout, body, gateway.CallOptions{ReturnErrorBody: true})
	if !result.OK {
		// state unchanged, the caller re-attempts from prepared
		return Result{}, false
	}

	data, found := gateway.Unwrap(result.Body, "data", false)
	if !found {
		return Result{}, false
	}
	order, ok := data.(map[string]any)
	if !ok {
		return Result{}, false
	}

	// stale correlation keys must never survive into a new order
	s.clearCheckoutSession(c)

	orderUUID := asString(order["uuid"])
	if orderUUID != "" {
		s.session.Put(c, sessionKeyOrderUUID, orderUUID)
	}
	if orderID := asInt64(order["id"]); orderID != 0 {
		s.session.Put(c, sessionKeyOrderID, orderID)
	}
	checkoutID := asString(order["checkout_id"])
	if checkoutID != "" {
		s.session.Put(c, sessionKeyCheckoutID, checkoutID)
	}

	checkoutResult := s.selectPaymentFlow(c, order)
	checkoutResult.Order = order

	s.publish(c, checkoutevents.CheckoutStarted{
		OrderUUID:  orderUUID,
		CheckoutID: checkoutID,
		Outcome:    checkoutResult.Outcome.String(),
	})
	if checkoutResult.Outcome == OutcomeCompleted {
		s.session.Put(c, sessionKeyOrder, order)
		s.publish(c, checkoutevents.CheckoutCompleted{OrderUUID: orderUUID})
	}

	return checkoutResult, true
}

// selectPaymentFlow picks exactly one payment branch. A redirect target
// wins over hosted-session fields even when both are present.
func (s *Service) selectPaymentFlow(c context.Context, order map[string]any) Result {
	if target := asString(order["targetUrl"]); target != "" {
		s.session.Put(c, sessionKeyRedirectURL, target)
		return Result{Outcome: OutcomeExternalRedirect, RedirectURL: target}
	}

	hosted := HostedSession{
		SessionID:      asString(order["sessionId"]),
		AccountID:      asString(order["accountId"]),
		PublishableKey: asString(order["publishableKey"]),
	}
	if hosted.SessionID != "" {
		s.session.Put(c, sessionKeyHostedSession, hosted)
		return Result{Outcome: OutcomeHostedSession, Hosted: &hosted}
	}

	return Result{Outcome: OutcomeCompleted}
}

// FinishPayment completes an order from an asynchronous provider callback.
// Repeating the callback with the same correlation id is a no-op that
// returns the already-persisted order.
func (s *Service) FinishPayment(c context.Context, data map[string]any) (map[string]any, bool) {
	paymentID := firstNonEmpty(
		asString(data["payment_id"]),
		asString(data["paymentId"]),
		asString(data["token"]),
		asString(data["id"]),
	)
	if paymentID == "" {
		return nil, false
	}

	finishedID, found, _ := mysession.Value[string](c, s.session, sessionKeyFinishedID)
	if found && finishedID == paymentID {
		order, _, _ := mysession.Value[map[string]any](c, s.session, sessionKeyOrder)
		return order, true
	}

	body := map[string]any{"id": paymentID}
	orderUUID, found, _ := mysession.Value[string](c, s.session, sessionKeyOrderUUID)
	if found && orderUUID != "" {
		body["uuid"] = orderUUID
	}

	result := s.caller.Call(c, routeExecutePayment, body, gateway.CallOptions{ReturnErrorBody: true})
	if !result.OK {
		// correlation key stays intact so the callback can be retried
		return nil, false
	}

	payload, _ := gateway.Unwrap(result.Body, "data", true)
	order, _ := payload.(map[string]any)

	s.session.Put(c, sessionKeyOrder, order)
	s.session.Put(c, sessionKeyFinishedID, paymentID)
	s.session.Delete(c, sessionKeyCheckoutID)
	s.session.Delete(c, sessionKeyHostedSession)
	s.session.Delete(c, sessionKeyRedirectURL)

	s.publish(c, checkoutevents.CheckoutCompleted{OrderUUID: orderUUID, PaymentID: paymentID})

	return order, true
}

// CancelPayment cancels the active checkout. Depending on which checkout
// api generation produced the session, the cancellable identifier is the
// checkout id or the order uuid.
func (s *Service) CancelPayment(c context.Context) bool {
	body := map[string]any{}

	checkoutID, foundCheckout, _ := mysession.Value[string](c, s.session, sessionKeyCheckoutID)
	orderUUID, foundOrder, _ := mysession.Value[string](c, s.session, sessionKeyOrderUUID)
	switch {
	case foundCheckout && checkoutID != "":
		body["id"] = checkoutID
	case foundOrder && orderUUID != "":
		body["uuid"] = orderUUID
	default:
		return false
	}

	result := s.caller.Call(c, routeCancelCheckout, body, gateway.CallOptions{})
	if !result.OK {
		return false
	}

	s.clearCheckoutSession(c)

	s.publish(c, checkoutevents.CheckoutCancelled{OrderUUID: orderUUID, CheckoutID: checkoutID})

	return true
}

// SessionOrder re-fetches the order the session is correlated to. Used
// when a page reloads mid-flow.
func (s *Service) SessionOrder(c context.Context) (map[string]any, bool) {
	orderUUID, found, _ := mysession.Value[string](c, s.session, sessionKeyOrderUUID)
	if !found || orderUUID == "" {
		return nil, false
	}

	return s.fetch(c, routeGetOrder, map[string]any{"uuid": orderUUID})
}

// SessionCheckout re-fetches the active checkout detail.
func (s *Service) SessionCheckout(c context.Context) (map[string]any, bool) {
	checkoutID, found, _ := mysession.Value[string](c, s.session, sessionKeyCheckoutID)
	if !found || checkoutID == "" {
		return nil, false
	}

	return s.fetch(c, routeGetCheckout, map[string]any{"id": checkoutID})
}

func (s *Service) fetch(c context.Context, route string, body map[string]any) (map[string]any, bool) {
	result := s.caller.Call(c, route, body, gateway.CallOptions{})
	if !result.OK {
		return nil, false
	}

	data, found := gateway.Unwrap(result.Body, "data", false)
	if !found {
		return nil, false
	}

	asMap, ok := data.(map[string]any)

	return asMap, ok
}

func (s *Service) clearCheckoutSession(c context.Context) {
	for _, key := range []string{
		sessionKeyOrderID,
		sessionKeyOrderUUID,
		sessionKeyCheckoutID,
		sessionKeyHostedSession,
		sessionKeyRedirectURL,
		sessionKeyOrder,
		sessionKeyFinishedID,
	} {
		s.session.Delete(c, key)
	}
}

func (s *Service) publish(c context.Context, event myevents.Event) {
	err := s.publisher.Publish(c, checkoutevents.TopicName, event)
	if err != nil {
		s.logger.Log(c, "", mylog.SeverityWarn, "Error publishing %s: %s", event.GetEventTypeName(), err)
	}
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asInt64(v any) int64 {
	switch typed := v.(type) {
	case float64:
		return int64(typed)
	case int:
		return int64(typed)
	case int64:
		return typed
	default:
		return 0
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}

	return ""
}
