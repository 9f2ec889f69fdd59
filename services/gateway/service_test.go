package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/MarcGrol/shopconnector/lib/myhttpclient"
	"github.com/MarcGrol/shopconnector/lib/mylog"
)

var testConfig = Config{
	BaseURL:      "https://api.example.org/service",
	Origin:       "shop.example.org",
	ChannelFlags: map[string]any{"inshop": true},
}

func TestCall(t *testing.T) {

	t.Run("Successful call attaches bearer and merges channel flags", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		c, sender, tokens, client := setup(t, ctrl)

		tokens.EXPECT().ClientToken(gomock.Any()).Return("", false)
		tokens.EXPECT().AccessToken(gomock.Any()).Return("access-token", true)
		sender.EXPECT().Send(gomock.Any(), http.MethodPost, "https://api.example.org/service/wines/getAll",
			gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, _ string, _ string, headers map[string]string, body []byte) (int, []byte, error) {
				assert.Equal(t, "Bearer access-token", headers["Authorization"])
				assert.Equal(t, "shop.example.org", headers["Origin"])

				payload := map[string]any{}
				assert.NoError(t, json.Unmarshal(body, &payload))
				assert.Equal(t, true, payload["inshop"])
				assert.Equal(t, map[string]any{"inshop": true, "language": "de"}, payload["filter"])

				return 200, []byte(`{"data":{"wines":[]}}`), nil
			})

		result := client.Call(c, "wines/getAll", map[string]any{
			"filter": map[string]any{"language": "de"},
		}, CallOptions{})

		assert.True(t, result.OK)
		assert.Equal(t, KindNone, result.Kind)
		assert.NotNil(t, result.Body["data"])
	})

	t.Run("Unauthorized triggers one renew and retry", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		c, sender, tokens, client := setup(t, ctrl)

		tokens.EXPECT().ClientToken(gomock.Any()).Return("", false)
		tokens.EXPECT().AccessToken(gomock.Any()).Return("stale-token", true)
		sender.EXPECT().Send(gomock.Any(), http.MethodPost, gomock.Any(), gomock.Any(), gomock.Any()).
			Return(401, []byte(`{"error":"unauthorized"}`), nil)

		tokens.EXPECT().Renew(gomock.Any()).Return(true)
		tokens.EXPECT().AccessToken(gomock.Any()).Return("fresh-token", true)
		sender.EXPECT().Send(gomock.Any(), http.MethodPost, gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, _ string, _ string, headers map[string]string, _ []byte) (int, []byte, error) {
				assert.Equal(t, "Bearer fresh-token", headers["Authorization"])
				return 200, []byte(`{"data":{}}`), nil
			})

		result := client.Call(c, "baskets/get", nil, CallOptions{})

		assert.True(t, result.OK)
	})

	t.Run("Second consecutive unauthorized is surfaced as request-failed", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		c, sender, tokens, client := setup(t, ctrl)

		tokens.EXPECT().ClientToken(gomock.Any()).Return("", false)
		tokens.EXPECT().AccessToken(gomock.Any()).Return("stale-token", true).Times(2)
		tokens.EXPECT().Renew(gomock.Any()).Return(true)
		sender.EXPECT().Send(gomock.Any(), http.MethodPost, gomock.Any(), gomock.Any(), gomock.Any()).
			Return(401, []byte(`{"error":"unauthorized"}`), nil).Times(2)

		result := client.Call(c, "baskets/get", nil, CallOptions{})

		assert.False(t, result.OK)
		assert.Equal(t, KindRequestFailed, result.Kind)
	})

	t.Run("Failed renew is surfaced as request-failed", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		c, sender, tokens, client := setup(t, ctrl)

		tokens.EXPECT().ClientToken(gomock.Any()).Return("", false)
		tokens.EXPECT().AccessToken(gomock.Any()).Return("stale-token", true)
		tokens.EXPECT().Renew(gomock.Any()).Return(false)
		sender.EXPECT().Send(gomock.Any(), http.MethodPost, gomock.Any(), gomock.Any(), gomock.Any()).
			Return(401, []byte(`{"error":"unauthorized"}`), nil)

		result := client.Call(c, "baskets/get", nil, CallOptions{})

		assert.False(t, result.OK)
		assert.Equal(t, KindRequestFailed, result.Kind)
	})

	t.Run("Transport error never escapes", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		c, sender, tokens, client := setup(t, ctrl)

		tokens.EXPECT().ClientToken(gomock.Any()).Return("", false)
		tokens.EXPECT().AccessToken(gomock.Any()).Return("access-token", true)
		sender.EXPECT().Send(gomock.Any(), http.MethodPost, gomock.Any(), gomock.Any(), gomock.Any()).
			Return(0, []byte{}, assert.AnError)

		result := client.Call(c, "wines/getAll", nil, CallOptions{})

		assert.False(t, result.OK)
		assert.Equal(t, KindRequestFailed, result.Kind)
	})

	t.Run("Customer-scoped call without client token is a no-op", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		c, _, tokens, client := setup(t, ctrl)

		tokens.EXPECT().ClientToken(gomock.Any()).Return("", false)
		// no Send expected: zero network calls

		result := client.Call(c, "customers/get", nil, CallOptions{RequireCustomerAuth: true})

		assert.False(t, result.OK)
		assert.True(t, result.NoOp)
	})

	t.Run("Client token is attached on customer-scoped routes", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		c, sender, tokens, client := setup(t, ctrl)

		tokens.EXPECT().ClientToken(gomock.Any()).Return("client-token", true)
		tokens.EXPECT().AccessToken(gomock.Any()).Return("access-token", true)
		sender.EXPECT().Send(gomock.Any(), http.MethodPost, gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, _ string, _ string, headers map[string]string, _ []byte) (int, []byte, error) {
				assert.Equal(t, "client-token", headers["Client-Authorization"])
				return 200, []byte(`{"data":{}}`), nil
			})

		result := client.Call(c, "customers/get", nil, CallOptions{RequireCustomerAuth: true, AttachClientToken: true})

		assert.True(t, result.OK)
	})

	t.Run("Error body is returned when asked for", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		c, sender, tokens, client := setup(t, ctrl)

		tokens.EXPECT().ClientToken(gomock.Any()).Return("", false)
		tokens.EXPECT().AccessToken(gomock.Any()).Return("access-token", true)
		sender.EXPECT().Send(gomock.Any(), http.MethodPost, gomock.Any(), gomock.Any(), gomock.Any()).
			Return(400, []byte(`{"code":400,"details":"mail already registered"}`), nil)

		result := client.Call(c, "customers/register", nil, CallOptions{ReturnErrorBody: true})

		assert.False(t, result.OK)
		assert.Equal(t, KindRequestFailed, result.Kind)
		assert.Equal(t, "mail already registered", result.ErrorBody["details"])
	})
}

func setup(t *testing.T, ctrl *gomock.Controller) (context.Context, *myhttpclient.MockHTTPSender, *MockTokenSource, Caller) {
	c := context.TODO()
	sender := myhttpclient.NewMockHTTPSender(ctrl)
	tokens := NewMockTokenSource(ctrl)
	client := NewClient(testConfig, sender, tokens, mylog.New("gateway-test"))

	return c, sender, tokens, client
}
