package authsession

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/MarcGrol/shopconnector/lib/mycontext"
	"github.com/MarcGrol/shopconnector/lib/myerrors"
	"github.com/MarcGrol/shopconnector/lib/myhttp"
	"github.com/MarcGrol/shopconnector/lib/mylog"
)

type webService struct {
	customers *CustomerService
	auth      *Manager
	logger    mylog.Logger
}

// Use dependency injection to isolate the infrastructure and easy testing
func NewWebService(customers *CustomerService, auth *Manager, logger mylog.Logger) *webService {
	return &webService{
		customers: customers,
		auth:      auth,
		logger:    logger,
	}
}

func (s webService) RegisterEndpoints(c context.Context, router *mux.Router) {
	router.HandleFunc("/api/auth/status", s.authStatusPage()).Methods("GET")
	router.HandleFunc("/api/customer/register", s.registerPage()).Methods("POST")
	router.HandleFunc("/api/customer/activate/{hash}", s.activatePage()).Methods("GET")
	router.HandleFunc("/api/customer/login", s.loginPage()).Methods("POST")
	router.HandleFunc("/api/customer/logout", s.logoutPage()).Methods("POST")
	router.HandleFunc("/api/customer", s.customerPage()).Methods("GET")
}

func (s webService) authStatusPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		responseWriter := myhttp.NewWriter(s.logger)

		_, loggedIn := s.auth.ClientToken(c)

		responseWriter.Write(c, w, http.StatusOK, map[string]any{
			"connected": s.auth.Connected(c),
			"loggedIn":  loggedIn,
		})
	}
}

func (s webService) registerPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		responseWriter := myhttp.NewWriter(s.logger)

		data, err := parseJSONBody(r)
		if err != nil {
			responseWriter.WriteError(c, w, 1, err)
			return
		}

		customer, err := s.customers.Register(c, data)
		if err != nil {
			responseWriter.WriteError(c, w, 2, err)
			return
		}

		responseWriter.Write(c, w, http.StatusOK, customer)
	}
}

func (s webService) activatePage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		responseWriter := myhttp.NewWriter(s.logger)

		hash := mux.Vars(r)["hash"]

		err := s.customers.Activate(c, hash)
		if err != nil {
			responseWriter.WriteError(c, w, 1, err)
			return
		}

		responseWriter.Write(c, w, http.StatusOK, myhttp.EmptyResponse{})
	}
}

func (s webService) loginPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		responseWriter := myhttp.NewWriter(s.logger)

		credentials, err := parseJSONBody(r)
		if err != nil {
			responseWriter.WriteError(c, w, 1, err)
			return
		}

		err = s.customers.Login(c, credentials)
		if err != nil {
			responseWriter.WriteError(c, w, 2, err)
			return
		}

		responseWriter.Write(c, w, http.StatusOK, myhttp.EmptyResponse{})
	}
}

func (s webService) logoutPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		responseWriter := myhttp.NewWriter(s.logger)

		err := s.customers.Logout(c)
		if err != nil {
			responseWriter.WriteError(c, w, 1, myerrors.NewInternalError(err))
			return
		}

		responseWriter.Write(c, w, http.StatusOK, myhttp.EmptyResponse{})
	}
}

func (s webService) customerPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		responseWriter := myhttp.NewWriter(s.logger)

		customer, found := s.customers.GetCustomer(c)
		if !found {
			responseWriter.WriteError(c, w, 1, myerrors.NewNotFoundError(fmt.Errorf("no authenticated customer")))
			return
		}

		responseWriter.Write(c, w, http.StatusOK, customer)
	}
}

func parseJSONBody(r *http.Request) (map[string]any, error) {
	data := map[string]any{}
	err := json.NewDecoder(r.Body).Decode(&data)
	if err != nil {
		return nil, myerrors.NewInvalidInputErrorf("error parsing request body: %s", err)
	}

	return data, nil
}
