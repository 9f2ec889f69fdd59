package authsession

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/MarcGrol/shopconnector/lib/mycontext"
	"github.com/MarcGrol/shopconnector/lib/myhttpclient"
	"github.com/MarcGrol/shopconnector/lib/mylog"
	"github.com/MarcGrol/shopconnector/lib/mysession"
)

// Manager owns the merchant access-token lifecycle: validate-or-login when a
// session first needs a token, re-login when the remote side rejects one.
// It implements gateway.TokenSource. Login failures are not retried in a
// loop: the next request cycle naturally re-attempts.
type Manager struct {
	cfg        Config
	httpSender myhttpclient.HTTPSender
	session    mysession.Store
	logger     mylog.Logger

	mutex     sync.Mutex
	validated map[string]bool
	connected map[string]bool
}

// Use dependency injection to isolate the infrastructure and easy testing
func NewManager(cfg Config, httpSender myhttpclient.HTTPSender, session mysession.Store, logger mylog.Logger) *Manager {
	return &Manager{
		cfg:        cfg,
		httpSender: httpSender,
		session:    session,
		logger:     logger,
		validated:  map[string]bool{},
		connected:  map[string]bool{},
	}
}

// AccessToken returns the merchant bearer token for the current session,
// establishing one first when none exists and validating a persisted one
// once per process lifetime.
func (m *Manager) AccessToken(c context.Context) (string, bool) {
	auth, found, err := mysession.Value[SessionAuth](c, m.session, sessionKeyAuth)
	if err != nil {
		m.logger.Log(c, "", mylog.SeverityError, "Error reading session auth: %s", err)
		return "", false
	}

	if !found || auth.AccessToken == "" {
		auth, found = m.login(c)
		return auth.AccessToken, found
	}

	if !m.isValidated(c) {
		if m.validate(c, auth.AccessToken) {
			m.markValidated(c, true)
		} else {
			// token expired: replace it wholesale by logging in again
			m.logger.Log(c, "", mylog.SeverityInfo, "Token expired, re-authenticating")
			auth, found = m.login(c)
			return auth.AccessToken, found
		}
	}

	return auth.AccessToken, true
}

// Renew force-replaces the token after an unauthorized outcome.
func (m *Manager) Renew(c context.Context) bool {
	m.markValidated(c, false)
	_, ok := m.login(c)
	return ok
}

// ClientToken returns the customer token layered on top of the merchant
// session, if any.
func (m *Manager) ClientToken(c context.Context) (string, bool) {
	auth, found, err := mysession.Value[SessionAuth](c, m.session, sessionKeyAuth)
	if err != nil || !found || auth.ClientToken == "" {
		return "", false
	}

	return auth.ClientToken, true
}

// Connected reports whether the last authentication attempt for this
// session succeeded. It is a status flag, not an error: callers decide
// whether to surface it.
func (m *Manager) Connected(c context.Context) bool {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	connected, known := m.connected[sessionUID(c)]
	return !known || connected
}

func (m *Manager) login(c context.Context) (SessionAuth, bool) {
	body, err := json.Marshal(map[string]string{
		"token":  m.cfg.MerchantToken,
		"authid": m.cfg.MerchantAuthID,
	})
	if err != nil {
		return SessionAuth{}, false
	}

	headers := map[string]string{"Origin": m.cfg.Origin}
	status, respBody, err := m.httpSender.Send(c, http.MethodPost, m.cfg.BaseURL+"/"+routeLogin, headers, body)
	if err != nil || status != http.StatusOK {
		m.logger.Log(c, "", mylog.SeverityWarn, "Login failed: status %d: %v", status, err)
		m.markConnected(c, false)
		return SessionAuth{}, false
	}

	tokens := SessionAuth{}
	err = json.Unmarshal(respBody, &tokens)
	if err != nil || tokens.AccessToken == "" || tokens.RefreshToken == "" {
		// both tokens are required; without them we stay unauthenticated
		// and let the next request cycle try again
		m.logger.Log(c, "", mylog.SeverityWarn, "Login response missing token pair")
		m.markConnected(c, false)
		return SessionAuth{}, false
	}

	// a customer identity established earlier survives a merchant re-login
	previous, found, _ := mysession.Value[SessionAuth](c, m.session, sessionKeyAuth)
	if found {
		tokens.ClientToken = previous.ClientToken
	}

	err = m.session.Put(c, sessionKeyAuth, tokens)
	if err != nil {
		m.logger.Log(c, "", mylog.SeverityError, "Error persisting session auth: %s", err)
		return SessionAuth{}, false
	}

	m.markValidated(c, true)
	m.markConnected(c, true)
	m.logger.Log(c, "", mylog.SeverityInfo, "Login succeeded")

	return tokens, true
}

// validate probes the remote api with the persisted token. Any failure is
// treated as an expired token.
func (m *Manager) validate(c context.Context, accessToken string) bool {
	headers := map[string]string{
		"Origin":        m.cfg.Origin,
		"Authorization": "Bearer " + accessToken,
	}

	status, _, err := m.httpSender.Send(c, http.MethodPost, m.cfg.BaseURL+"/"+routeValidateLogin, headers, []byte("{}"))
	return err == nil && status == http.StatusOK
}

func (m *Manager) setClientToken(c context.Context, clientToken string) error {
	auth, _, err := mysession.Value[SessionAuth](c, m.session, sessionKeyAuth)
	if err != nil {
		return err
	}

	auth.ClientToken = clientToken

	return m.session.Put(c, sessionKeyAuth, auth)
}

func (m *Manager) isValidated(c context.Context) bool {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	return m.validated[sessionUID(c)]
}

func (m *Manager) markValidated(c context.Context, validated bool) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.validated[sessionUID(c)] = validated
}

func (m *Manager) markConnected(c context.Context, connected bool) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.connected[sessionUID(c)] = connected
}

func sessionUID(c context.Context) string {
	uid := mycontext.SessionUID(c)
	if uid == "" {
		uid = "anonymous"
	}
	return uid
}
