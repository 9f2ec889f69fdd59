package authsession

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/MarcGrol/shopconnector/lib/mycontext"
	"github.com/MarcGrol/shopconnector/lib/myerrors"
	"github.com/MarcGrol/shopconnector/lib/myhttpclient"
	"github.com/MarcGrol/shopconnector/lib/mylog"
	"github.com/MarcGrol/shopconnector/lib/mysession"
	"github.com/MarcGrol/shopconnector/services/gateway"
)

var testConfig = Config{
	BaseURL:        "https://api.example.org/service",
	Origin:         "shop.example.org",
	MerchantToken:  "merchant-token",
	MerchantAuthID: "merchant-auth-id",
}

func TestAccessToken(t *testing.T) {

	t.Run("First use of a session logs in and persists the token pair", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		c, sender, session, manager := setup(t, ctrl)

		sender.EXPECT().Send(gomock.Any(), http.MethodPost, "https://api.example.org/service/login",
			gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, _ string, _ string, headers map[string]string, body []byte) (int, []byte, error) {
				assert.Equal(t, "shop.example.org", headers["Origin"])

				credentials := map[string]string{}
				assert.NoError(t, json.Unmarshal(body, &credentials))
				assert.Equal(t, "merchant-token", credentials["token"])
				assert.Equal(t, "merchant-auth-id", credentials["authid"])

				return 200, []byte(`{"token":"access-token","refreshToken":"refresh-token"}`), nil
			})

		// when
		token, ok := manager.AccessToken(c)

		// then
		assert.True(t, ok)
		assert.Equal(t, "access-token", token)
		assert.True(t, manager.Connected(c))

		auth, found, err := mysession.Value[SessionAuth](c, session, sessionKeyAuth)
		assert.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, "refresh-token", auth.RefreshToken)
	})

	t.Run("Failed login leaves the session unauthenticated", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		c, sender, _, manager := setup(t, ctrl)

		sender.EXPECT().Send(gomock.Any(), http.MethodPost, "https://api.example.org/service/login",
			gomock.Any(), gomock.Any()).Return(500, []byte(`{}`), nil)

		// when
		_, ok := manager.AccessToken(c)

		// then
		assert.False(t, ok)
		assert.False(t, manager.Connected(c))
	})

	t.Run("Login response without refresh token is rejected", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		c, sender, _, manager := setup(t, ctrl)

		sender.EXPECT().Send(gomock.Any(), http.MethodPost, "https://api.example.org/service/login",
			gomock.Any(), gomock.Any()).Return(200, []byte(`{"token":"access-token"}`), nil)

		// when
		_, ok := manager.AccessToken(c)

		// then
		assert.False(t, ok)
		assert.False(t, manager.Connected(c))
	})

	t.Run("Persisted token is validated once and then trusted", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		c, sender, session, manager := setup(t, ctrl)

		err := session.Put(c, sessionKeyAuth, SessionAuth{AccessToken: "persisted-token", RefreshToken: "refresh-token"})
		assert.NoError(t, err)

		sender.EXPECT().Send(gomock.Any(), http.MethodPost, "https://api.example.org/service/check/login",
			gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, _ string, _ string, headers map[string]string, _ []byte) (int, []byte, error) {
				assert.Equal(t, "Bearer persisted-token", headers["Authorization"])
				return 200, []byte(`{}`), nil
			}).Times(1)

		// when: two token fetches, one validation probe
		token, ok := manager.AccessToken(c)
		assert.True(t, ok)
		assert.Equal(t, "persisted-token", token)

		token, ok = manager.AccessToken(c)

		// then
		assert.True(t, ok)
		assert.Equal(t, "persisted-token", token)
	})

	t.Run("Expired persisted token triggers a fresh login", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		c, sender, session, manager := setup(t, ctrl)

		err := session.Put(c, sessionKeyAuth, SessionAuth{AccessToken: "expired-token", RefreshToken: "refresh-token"})
		assert.NoError(t, err)

		sender.EXPECT().Send(gomock.Any(), http.MethodPost, "https://api.example.org/service/check/login",
			gomock.Any(), gomock.Any()).Return(401, []byte(`{}`), nil)
		sender.EXPECT().Send(gomock.Any(), http.MethodPost, "https://api.example.org/service/login",
			gomock.Any(), gomock.Any()).Return(200, []byte(`{"token":"fresh-token","refreshToken":"fresh-refresh"}`), nil)

		// when
		token, ok := manager.AccessToken(c)

		// then
		assert.True(t, ok)
		assert.Equal(t, "fresh-token", token)
	})

	t.Run("Renew replaces the token wholesale", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		c, sender, session, manager := setup(t, ctrl)

		err := session.Put(c, sessionKeyAuth, SessionAuth{AccessToken: "stale-token", RefreshToken: "refresh-token"})
		assert.NoError(t, err)

		sender.EXPECT().Send(gomock.Any(), http.MethodPost, "https://api.example.org/service/login",
			gomock.Any(), gomock.Any()).Return(200, []byte(`{"token":"fresh-token","refreshToken":"fresh-refresh"}`), nil)

		// when
		ok := manager.Renew(c)

		// then
		assert.True(t, ok)

		auth, _, err := mysession.Value[SessionAuth](c, session, sessionKeyAuth)
		assert.NoError(t, err)
		assert.Equal(t, "fresh-token", auth.AccessToken)
	})

	t.Run("Merchant re-login preserves the customer token", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		c, sender, session, manager := setup(t, ctrl)

		err := session.Put(c, sessionKeyAuth, SessionAuth{
			AccessToken:  "stale-token",
			RefreshToken: "refresh-token",
			ClientToken:  "customer-token",
		})
		assert.NoError(t, err)

		sender.EXPECT().Send(gomock.Any(), http.MethodPost, "https://api.example.org/service/login",
			gomock.Any(), gomock.Any()).Return(200, []byte(`{"token":"fresh-token","refreshToken":"fresh-refresh"}`), nil)

		// when
		ok := manager.Renew(c)

		// then
		assert.True(t, ok)

		clientToken, found := manager.ClientToken(c)
		assert.True(t, found)
		assert.Equal(t, "customer-token", clientToken)
	})
}

func TestCustomerService(t *testing.T) {

	t.Run("Customer login attaches the client token to the session", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		c, _, session, manager := setup(t, ctrl)
		caller := gateway.NewMockCaller(ctrl)
		customers := NewCustomerService(manager, caller, mylog.New("authsession-test"))

		err := session.Put(c, sessionKeyAuth, SessionAuth{AccessToken: "access-token", RefreshToken: "refresh-token"})
		assert.NoError(t, err)

		caller.EXPECT().Call(gomock.Any(), routeClientLogin, gomock.Any(), gomock.Any()).Return(gateway.Result{
			OK:   true,
			Body: map[string]any{"token": "customer-token", "refreshToken": "customer-refresh"},
		})

		// when
		err = customers.Login(c, map[string]any{"mail": "me@example.org", "password": "secret"})

		// then
		assert.NoError(t, err)

		clientToken, found := manager.ClientToken(c)
		assert.True(t, found)
		assert.Equal(t, "customer-token", clientToken)
	})

	t.Run("Customer logout clears only the client token", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		c, _, session, manager := setup(t, ctrl)
		caller := gateway.NewMockCaller(ctrl)
		customers := NewCustomerService(manager, caller, mylog.New("authsession-test"))

		err := session.Put(c, sessionKeyAuth, SessionAuth{
			AccessToken:  "access-token",
			RefreshToken: "refresh-token",
			ClientToken:  "customer-token",
		})
		assert.NoError(t, err)

		// when
		err = customers.Logout(c)

		// then
		assert.NoError(t, err)

		_, found := manager.ClientToken(c)
		assert.False(t, found)

		auth, _, err := mysession.Value[SessionAuth](c, session, sessionKeyAuth)
		assert.NoError(t, err)
		assert.Equal(t, "access-token", auth.AccessToken)
	})

	t.Run("Incomplete registration is rejected without a remote call", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		c, _, _, manager := setup(t, ctrl)
		caller := gateway.NewMockCaller(ctrl)
		customers := NewCustomerService(manager, caller, mylog.New("authsession-test"))
		// no Call expected

		// when
		_, err := customers.Register(c, map[string]any{"mail": "me@example.org", "password": "secret"})

		// then
		assert.Error(t, err)
		assert.Equal(t, http.StatusBadRequest, myerrors.GetHTTPStatus(err))
	})

	t.Run("Registration rejection passes the structured detail on", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		c, _, _, manager := setup(t, ctrl)
		caller := gateway.NewMockCaller(ctrl)
		customers := NewCustomerService(manager, caller, mylog.New("authsession-test"))

		caller.EXPECT().Call(gomock.Any(), routeRegister, gomock.Any(), gomock.Any()).Return(gateway.Result{
			OK:        false,
			Kind:      gateway.KindRequestFailed,
			ErrorBody: map[string]any{"details": "mail already registered"},
		})

		// when
		detail, err := customers.Register(c, map[string]any{
			"mail":     "me@example.org",
			"password": "secret",
			"lastname": "Jansen",
		})

		// then
		assert.Error(t, err)
		assert.Equal(t, "mail already registered", detail["details"])
	})

	t.Run("Profile fetch without customer identity reports absent", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		c, _, _, manager := setup(t, ctrl)
		caller := gateway.NewMockCaller(ctrl)
		customers := NewCustomerService(manager, caller, mylog.New("authsession-test"))

		caller.EXPECT().Call(gomock.Any(), routeGetCustomer, gomock.Any(), gomock.Any()).Return(gateway.Result{
			OK:   false,
			NoOp: true,
			Kind: gateway.KindUnauthorized,
		})

		// when
		_, found := customers.GetCustomer(c)

		// then
		assert.False(t, found)
	})
}

func setup(t *testing.T, ctrl *gomock.Controller) (context.Context, *myhttpclient.MockHTTPSender, mysession.Store, *Manager) {
	c := mycontext.WithSessionUID(context.TODO(), "session-123")
	sender := myhttpclient.NewMockHTTPSender(ctrl)

	session, cleanup, err := mysession.NewInMemoryStore(c)
	assert.NoError(t, err)
	t.Cleanup(cleanup)

	manager := NewManager(testConfig, sender, session, mylog.New("authsession-test"))

	return c, sender, session, manager
}
