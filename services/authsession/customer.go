package authsession

import (
	"context"
	"fmt"

	"github.com/MarcGrol/shopconnector/lib/myerrors"
	"github.com/MarcGrol/shopconnector/lib/mylog"
	"github.com/MarcGrol/shopconnector/services/gateway"
)

// CustomerService layers an end-customer identity on top of the merchant
// session. All operations here are customer-scoped: they either establish
// the client token or require it to be present.
type CustomerService struct {
	auth   *Manager
	caller gateway.Caller
	logger mylog.Logger
}

func NewCustomerService(auth *Manager, caller gateway.Caller, logger mylog.Logger) *CustomerService {
	return &CustomerService{
		auth:   auth,
		caller: caller,
		logger: logger,
	}
}

var requiredRegistrationFields = []string{"mail", "password", "lastname"}

// Register creates a new customer account. Incomplete registrations are
// rejected locally and never reach the remote service.
func (s *CustomerService) Register(c context.Context, data map[string]any) (map[string]any, error) {
	for _, field := range requiredRegistrationFields {
		value, found := data[field]
		if !found || value == "" {
			return nil, myerrors.NewInvalidInputErrorf("missing registration field %s", field)
		}
	}

	result := s.caller.Call(c, routeRegister, data, gateway.CallOptions{ReturnErrorBody: true})
	if !result.OK {
		// structured detail such as "mail already registered" is passed on
		return result.ErrorBody, myerrors.NewInvalidInputErrorf("registration rejected: %v", result.ErrorBody)
	}

	customer, _ := gateway.Unwrap(result.Body, "data", true)
	asMap, _ := customer.(map[string]any)

	return asMap, nil
}

// Login authenticates an end customer and attaches the resulting client
// token to the session. The merchant token is left untouched.
func (s *CustomerService) Login(c context.Context, credentials map[string]any) error {
	result := s.caller.Call(c, routeClientLogin, credentials, gateway.CallOptions{ReturnErrorBody: true})
	if !result.OK {
		return myerrors.NewUnauthenticatedError(fmt.Errorf("customer login failed: %v", result.ErrorBody))
	}

	token, _ := result.Body["token"].(string)
	refreshToken, _ := result.Body["refreshToken"].(string)
	if token == "" || refreshToken == "" {
		return myerrors.NewUnauthenticatedError(fmt.Errorf("customer login response missing token pair"))
	}

	err := s.auth.setClientToken(c, token)
	if err != nil {
		return myerrors.NewInternalError(fmt.Errorf("error persisting client token: %s", err))
	}

	s.logger.Log(c, "", mylog.SeverityInfo, "Customer login succeeded")

	return nil
}

// Logout removes only the client token; the merchant session stays valid.
func (s *CustomerService) Logout(c context.Context) error {
	return s.auth.setClientToken(c, "")
}

// Activate confirms a registration using the activation hash mailed to
// the customer.
func (s *CustomerService) Activate(c context.Context, hash string) error {
	result := s.caller.Call(c, routeActivate, map[string]any{"hash": hash}, gateway.CallOptions{ReturnErrorBody: true})
	if !result.OK {
		return myerrors.NewInvalidInputErrorf("activation rejected: %v", result.ErrorBody)
	}

	return nil
}

// GetCustomer fetches the profile of the authenticated customer. Without a
// client token this is a no-op and returns absent.
func (s *CustomerService) GetCustomer(c context.Context) (map[string]any, bool) {
	result := s.caller.Call(c, routeGetCustomer, nil, gateway.CallOptions{
		RequireCustomerAuth: true,
		AttachClientToken:   true,
	})
	if !result.OK {
		return nil, false
	}

	customer, found := gateway.Unwrap(result.Body, "data", false)
	if !found {
		return nil, false
	}

	asMap, ok := customer.(map[string]any)

	return asMap, ok
}
