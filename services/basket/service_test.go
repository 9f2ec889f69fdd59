package basket

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/MarcGrol/shopconnector/lib/mycontext"
	"github.com/MarcGrol/shopconnector/lib/mycrawler"
	"github.com/MarcGrol/shopconnector/lib/mylog"
	"github.com/MarcGrol/shopconnector/lib/mypublisher"
	"github.com/MarcGrol/shopconnector/lib/mysession"
	"github.com/MarcGrol/shopconnector/services/gateway"
)

func TestBasket(t *testing.T) {

	t.Run("Fetched basket carries derived line totals", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		c, caller, crawler, _, _, service := setup(t, ctrl)

		crawler.EXPECT().IsCrawler(gomock.Any()).Return(false)
		caller.EXPECT().Call(gomock.Any(), "baskets/get", map[string]any{"uuid": "basket-123"}, gomock.Any()).
			Return(okResult(map[string]any{
				"data": map[string]any{
					"uuid": "basket-123",
					"basketItems": []any{
						map[string]any{
							"id": float64(1), "item_type": "wine", "item_id": float64(7), "quantity": float64(3),
							"item": map[string]any{"net": 8.40, "tax": 1.60, "gross": 10.0},
						},
					},
				},
			}))

		// when
		basket, found := service.GetBasket(c, "basket-123")

		// then
		assert.True(t, found)
		assert.Len(t, basket.Items, 1)
		assert.Equal(t, 30.0, basket.Items[0].Gross)
		assert.InDelta(t, 25.2, basket.Items[0].Net, 0.001)
		assert.InDelta(t, 4.8, basket.Items[0].Tax, 0.001)
	})

	t.Run("Mutation re-syncs the mirror wholesale", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		c, caller, crawler, publisher, session, service := setup(t, ctrl)

		err := session.Put(c, sessionKeyBasketUUID, "basket-123")
		assert.NoError(t, err)
		err = session.Put(c, sessionKeyBasketItems, []Item{{ID: 99, ItemType: "wine", Quantity: 1}})
		assert.NoError(t, err)

		crawler.EXPECT().IsCrawler(gomock.Any()).Return(false)
		caller.EXPECT().Call(gomock.Any(), "baskets/addItem", gomock.Any(), gomock.Any()).
			Return(okResult(map[string]any{"data": map[string]any{}}))
		caller.EXPECT().Call(gomock.Any(), "baskets/get", map[string]any{"uuid": "basket-123"}, gomock.Any()).
			Return(okResult(map[string]any{
				"data": map[string]any{
					"uuid": "basket-123",
					"basketItems": []any{
						map[string]any{
							"id": float64(1), "item_type": "wine", "item_id": float64(7), "quantity": float64(3),
							"item": map[string]any{"net": 8.40, "tax": 1.60, "gross": 10.0},
						},
						map[string]any{
							"id": float64(2), "item_type": "bundle", "item_id": float64(8), "quantity": float64(2),
							"item": map[string]any{"net": 42.0, "tax": 8.0, "gross": 50.0, "package_quantity": float64(6)},
						},
					},
				},
			}))
		publisher.EXPECT().Publish(gomock.Any(), "basket", gomock.Any()).Return(nil)

		// when
		_, ok := service.AddItem(c, map[string]any{"item_type": "wine", "item_id": float64(7), "quantity": float64(3)})

		// then: the stale single-line mirror is fully replaced
		assert.True(t, ok)

		summary, found := service.GetSummary(c)
		assert.True(t, found)
		assert.Equal(t, 5, summary.Quantity)
		assert.Equal(t, 3+2*6, summary.Bottles)
	})

	t.Run("Bottle count multiplies package quantity for bundles", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		c, _, _, _, session, service := setup(t, ctrl)

		err := session.Put(c, sessionKeyBasketItems, []Item{
			{ItemType: "wine", Quantity: 3},
			{ItemType: "bundle", Quantity: 2, Item: ItemDetails{PackageQuantity: 6}},
			{ItemType: "voucher", Quantity: 4},
		})
		assert.NoError(t, err)

		// when
		summary, found := service.GetSummary(c)

		// then: unknown item types contribute no bottles
		assert.True(t, found)
		assert.Equal(t, 15, summary.Bottles)
	})

	t.Run("Summary tax is the difference between gross and net", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		c, _, _, _, session, service := setup(t, ctrl)

		err := session.Put(c, sessionKeyBasketItems, []Item{
			{ItemType: "wine", Quantity: 2, Item: ItemDetails{Net: 8.40, Gross: 10.0}},
		})
		assert.NoError(t, err)

		// when
		summary, found := service.GetSummary(c)

		// then
		assert.True(t, found)
		assert.Equal(t, 20.0, summary.Gross)
		assert.InDelta(t, 16.8, summary.Net, 0.001)
		assert.InDelta(t, 3.2, summary.Tax, 0.001)
	})

	t.Run("Empty mirror yields absent, not a zero summary", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		c, _, _, _, _, service := setup(t, ctrl)

		// when
		_, found := service.GetSummary(c)

		// then
		assert.False(t, found)
	})

	t.Run("Gone remote basket self-heals into a fresh one", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		c, caller, crawler, publisher, session, service := setup(t, ctrl)

		err := session.Put(c, sessionKeyBasketUUID, "gone-basket")
		assert.NoError(t, err)

		crawler.EXPECT().IsCrawler(gomock.Any()).Return(false).Times(2)
		caller.EXPECT().Call(gomock.Any(), "baskets/get", map[string]any{"uuid": "gone-basket"}, gomock.Any()).
			Return(gateway.Result{OK: false, Kind: gateway.KindRequestFailed})
		caller.EXPECT().Call(gomock.Any(), "baskets/add", gomock.Any(), gomock.Any()).
			Return(okResult(map[string]any{"data": map[string]any{"uuid": "fresh-basket"}}))
		publisher.EXPECT().Publish(gomock.Any(), "basket", gomock.Any()).Return(nil)

		// when
		ok := service.InitBasket(c)

		// then: the old handle is discarded and replaced
		assert.True(t, ok)

		uuid, found, err := mysession.Value[string](c, session, sessionKeyBasketUUID)
		assert.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, "fresh-basket", uuid)
	})

	t.Run("Crawler traffic never reaches the remote basket", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		c, _, crawler, _, _, service := setup(t, ctrl)

		crawler.EXPECT().IsCrawler(gomock.Any()).Return(true).AnyTimes()
		// no Call expected: zero network calls

		// when
		_, addOK := service.AddItem(c, map[string]any{"item_type": "wine", "item_id": float64(7), "quantity": float64(1)})
		_, createOK := service.CreateBasket(c)
		initOK := service.InitBasket(c)

		// then
		assert.False(t, addOK)
		assert.False(t, createOK)
		assert.False(t, initOK)
	})
}

func setup(t *testing.T, ctrl *gomock.Controller) (context.Context, *gateway.MockCaller, *mycrawler.MockDetector, *mypublisher.MockPublisher, mysession.Store, *Service) {
	c := mycontext.WithSessionUID(context.TODO(), "session-123")
	caller := gateway.NewMockCaller(ctrl)
	crawler := mycrawler.NewMockDetector(ctrl)
	publisher := mypublisher.NewMockPublisher(ctrl)

	session, cleanup, err := mysession.NewInMemoryStore(c)
	assert.NoError(t, err)
	t.Cleanup(cleanup)

	service := NewService(caller, session, crawler, publisher, mylog.New("basket-test"))

	return c, caller, crawler, publisher, session, service
}

func okResult(body map[string]any) gateway.Result {
	return gateway.Result{OK: true, StatusCode: 200, Body: body}
}
