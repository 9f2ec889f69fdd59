package checkout

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/MarcGrol/shopconnector/lib/mycontext"
	"github.com/MarcGrol/shopconnector/lib/myerrors"
	"github.com/MarcGrol/shopconnector/lib/myhttp"
	"github.com/MarcGrol/shopconnector/lib/mylog"
	"github.com/MarcGrol/shopconnector/lib/myredirect"
)

type webService struct {
	service *Service
	logger  mylog.Logger
}

// Use dependency injection to isolate the infrastructure and easy testing
func NewWebService(service *Service, logger mylog.Logger) *webService {
	return &webService{
		service: service,
		logger:  logger,
	}
}

func (s webService) RegisterEndpoints(c context.Context, router *mux.Router) {

	// Endpoints driven by the storefront's checkout form and javascript
	router.HandleFunc("/api/checkout/prepare", s.preparePage()).Methods("POST")
	router.HandleFunc("/checkout", s.processPage()).Methods("POST")
	router.HandleFunc("/api/checkout", s.sessionCheckoutPage()).Methods("GET")
	router.HandleFunc("/api/order", s.sessionOrderPage()).Methods("GET")

	// Payment provider callbacks
	router.HandleFunc("/checkout/finish", s.finishPaymentCallback()).Methods("GET")
	router.HandleFunc("/checkout/cancel", s.cancelPaymentCallback()).Methods("GET")
}

func (s webService) preparePage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		responseWriter := myhttp.NewWriter(s.logger)

		checkoutForm, err := DecodeForm(r)
		if err != nil {
			responseWriter.WriteError(c, w, 1, err)
			return
		}

		preview, ok := s.service.Checkout(c, checkoutForm.OrderData(), true)
		if !ok {
			responseWriter.WriteError(c, w, 2, myerrors.NewInternalError(fmt.Errorf("error preparing checkout")))
			return
		}

		responseWriter.Write(c, w, http.StatusOK, preview.Order)
	}
}

func (s webService) processPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		responseWriter := myhttp.NewWriter(s.logger)

		checkoutForm, err := DecodeForm(r)
		if err != nil {
			responseWriter.WriteError(c, w, 1, err)
			return
		}
		err = checkoutForm.Validate()
		if err != nil {
			responseWriter.WriteError(c, w, 2, err)
			return
		}

		result, ok := s.service.Checkout(c, checkoutForm.OrderData(), false)
		if !ok {
			responseWriter.WriteError(c, w, 3, myerrors.NewInternalError(fmt.Errorf("error processing checkout")))
			return
		}

		s.logger.Log(c, "", mylog.SeverityInfo, "Checkout committed with outcome %s", result.Outcome)

		switch result.Outcome {
		case OutcomeExternalRedirect:
			myredirect.External(w, r, result.RedirectURL)
		case OutcomeHostedSession:
			// the storefront SDK consumes the session payload
			responseWriter.Write(c, w, http.StatusOK, result)
		default:
			myredirect.Internal(w, r, "/checkout/completed")
		}
	}
}

func (s webService) finishPaymentCallback() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		responseWriter := myhttp.NewWriter(s.logger)

		data := map[string]any{}
		for key, values := range r.URL.Query() {
			if len(values) > 0 {
				data[key] = values[0]
			}
		}

		_, ok := s.service.FinishPayment(c, data)
		if !ok {
			responseWriter.WriteError(c, w, 1, myerrors.NewInvalidInputErrorf("error finishing payment"))
			return
		}

		myredirect.Internal(w, r, "/checkout/completed")
	}
}

func (s webService) cancelPaymentCallback() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		responseWriter := myhttp.NewWriter(s.logger)

		if !s.service.CancelPayment(c) {
			responseWriter.WriteError(c, w, 1, myerrors.NewNotFoundError(fmt.Errorf("no checkout to cancel")))
			return
		}

		myredirect.Internal(w, r, "/checkout/cancelled")
	}
}

func (s webService) sessionOrderPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		responseWriter := myhttp.NewWriter(s.logger)

		order, found := s.service.SessionOrder(c)
		if !found {
			responseWriter.WriteError(c, w, 1, myerrors.NewNotFoundError(fmt.Errorf("no active order")))
			return
		}

		responseWriter.Write(c, w, http.StatusOK, order)
	}
}

func (s webService) sessionCheckoutPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		responseWriter := myhttp.NewWriter(s.logger)

		checkout, found := s.service.SessionCheckout(c)
		if !found {
			responseWriter.WriteError(c, w, 1, myerrors.NewNotFoundError(fmt.Errorf("no active checkout")))
			return
		}

		responseWriter.Write(c, w, http.StatusOK, checkout)
	}
}
