package basket

import (
	"context"
	"encoding/json"

	"github.com/MarcGrol/shopconnector/lib/mycrawler"
	"github.com/MarcGrol/shopconnector/lib/myevents"
	"github.com/MarcGrol/shopconnector/lib/mylog"
	"github.com/MarcGrol/shopconnector/lib/mypublisher"
	"github.com/MarcGrol/shopconnector/lib/mysession"
	"github.com/MarcGrol/shopconnector/services/basketevents"
	"github.com/MarcGrol/shopconnector/services/gateway"
)

// Service keeps a local mirror of the remote basket in session storage so
// summary totals can be computed without a round trip. The mirror is a
// cache, never a source of truth: every mutation re-pulls the canonical
// state wholesale.
type Service struct {
	caller    gateway.Caller
	session   mysession.Store
	crawler   mycrawler.Detector
	publisher mypublisher.Publisher
	logger    mylog.Logger
}

// Use dependency injection to isolate the infrastructure and easy testing
func NewService(caller gateway.Caller, session mysession.Store, crawler mycrawler.Detector, publisher mypublisher.Publisher, logger mylog.Logger) *Service {
	return &Service{
		caller:    caller,
		session:   session,
		crawler:   crawler,
		publisher: publisher,
		logger:    logger,
	}
}

// GetBasket fetches the basket identified by uuid, falling back to the
// session's basket handle when uuid is empty. Line totals are derived
// client-side from the unit prices.
func (s *Service) GetBasket(c context.Context, uuid string) (Basket, bool) {
	if s.crawler.IsCrawler(c) {
		return Basket{}, false
	}

	if uuid == "" {
		var found bool
		uuid, found = s.basketHandle(c)
		if !found {
			return Basket{}, false
		}
	}

	return s.fetchBasket(c, uuid)
}

// InitBasket makes sure the session points at a live remote basket and the
// item mirror matches it. A handle whose remote basket is gone is discarded
// and replaced by a freshly created basket.
func (s *Service) InitBasket(c context.Context) bool {
	if s.crawler.IsCrawler(c) {
		return false
	}

	uuid, found := s.basketHandle(c)
	if found {
		if s.refreshMirror(c, uuid) {
			return true
		}

		// remote basket was purged or expired: discard and start over
		s.logger.Log(c, uuid, mylog.SeverityInfo, "Basket %s is gone, creating a new one", uuid)
		s.session.Delete(c, sessionKeyBasketUUID)
		s.session.Delete(c, sessionKeyBasketItems)
	}

	_, created := s.CreateBasket(c)

	return created
}

// CreateBasket creates a fresh remote basket and persists its handle.
func (s *Service) CreateBasket(c context.Context) (string, bool) {
	if s.crawler.IsCrawler(c) {
		return "", false
	}

	result := s.caller.Call(c, routeCreateBasket, nil, gateway.CallOptions{})
	if !result.OK {
		return "", false
	}

	basket := Basket{}
	if !decodeData(result, &basket) || basket.UUID == "" {
		return "", false
	}

	err := s.session.Put(c, sessionKeyBasketUUID, basket.UUID)
	if err != nil {
		s.logger.Log(c, basket.UUID, mylog.SeverityError, "Error persisting basket handle: %s", err)
		return "", false
	}
	err = s.session.Put(c, sessionKeyBasketItems, []Item{})
	if err != nil {
		s.logger.Log(c, basket.UUID, mylog.SeverityError, "Error persisting basket mirror: %s", err)
		return "", false
	}

	s.publish(c, basketevents.BasketCreated{BasketUID: basket.UUID})

	return basket.UUID, true
}

// AddItem adds a line to the remote basket and re-syncs the mirror.
func (s *Service) AddItem(c context.Context, data map[string]any) (Basket, bool) {
	if s.crawler.IsCrawler(c) {
		return Basket{}, false
	}

	uuid, found := s.basketHandle(c)
	if !found {
		if !s.InitBasket(c) {
			return Basket{}, false
		}
		uuid, _ = s.basketHandle(c)
	}

	result := s.caller.Call(c, routeAddItem, map[string]any{"uuid": uuid, "data": data}, gateway.CallOptions{})
	if !result.OK {
		return Basket{}, false
	}

	s.publish(c, basketevents.BasketItemAdded{
		BasketUID: uuid,
		ItemType:  asString(data["item_type"]),
		ItemID:    asInt64(data["item_id"]),
		Quantity:  int(asInt64(data["quantity"])),
	})

	return s.resync(c, uuid)
}

// EditItem changes an existing line and re-syncs the mirror.
func (s *Service) EditItem(c context.Context, data map[string]any) (Basket, bool) {
	if s.crawler.IsCrawler(c) {
		return Basket{}, false
	}

	uuid, found := s.basketHandle(c)
	if !found {
		return Basket{}, false
	}

	result := s.caller.Call(c, routeEditItem, map[string]any{"uuid": uuid, "data": data}, gateway.CallOptions{})
	if !result.OK {
		return Basket{}, false
	}

	s.publish(c, basketevents.BasketItemEdited{
		BasketUID: uuid,
		ItemID:    asInt64(data["id"]),
		Quantity:  int(asInt64(data["quantity"])),
	})

	return s.resync(c, uuid)
}

// DeleteItem removes a line and re-syncs the mirror.
func (s *Service) DeleteItem(c context.Context, id int64) (Basket, bool) {
	if s.crawler.IsCrawler(c) {
		return Basket{}, false
	}

	uuid, found := s.basketHandle(c)
	if !found {
		return Basket{}, false
	}

	result := s.caller.Call(c, routeDeleteItem, map[string]any{"uuid": uuid, "id": id}, gateway.CallOptions{})
	if !result.OK {
		return Basket{}, false
	}

	s.publish(c, basketevents.BasketItemRemoved{BasketUID: uuid, ItemID: id})

	return s.resync(c, uuid)
}

// GetSummary folds the mirrored line items. An empty or absent mirror
// yields an explicit absent result, not a zero summary.
func (s *Service) GetSummary(c context.Context) (Summary, bool) {
	items, found, err := mysession.Value[[]Item](c, s.session, sessionKeyBasketItems)
	if err != nil || !found || len(items) == 0 {
		return Summary{}, false
	}

	summary := Summary{}
	for _, item := range items {
		gross := float64(item.Quantity) * item.Item.Gross
		net := float64(item.Quantity) * item.Item.Net

		summary.Quantity += item.Quantity
		summary.Gross += gross
		summary.Net += net
		summary.Tax += gross - net
		summary.Bottles += bottleCount(item)
	}

	return summary, true
}

// FindPackage looks up the packaging that fits a given bottle count.
func (s *Service) FindPackage(c context.Context, packageType string, count int) (map[string]any, bool) {
	result := s.caller.Call(c, routeFindPackage, map[string]any{
		"type":      packageType,
		packageType: count,
	}, gateway.CallOptions{})
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

func (s *Service) GetAllPackages(c context.Context) (any, bool) {
	result := s.caller.Call(c, routeAllPackages, nil, gateway.CallOptions{})
	if !result.OK {
		return nil, false
	}

	return gateway.Unwrap(result.Body, "data", false)
}

// Handle returns the session's basket handle without touching the remote
// basket.
func (s *Service) Handle(c context.Context) (string, bool) {
	return s.basketHandle(c)
}

// resync re-pulls the canonical basket after a mutation. The mirror is
// replaced wholesale, never patched.
func (s *Service) resync(c context.Context, uuid string) (Basket, bool) {
	basket, ok := s.fetchBasket(c, uuid)
	if !ok {
		return Basket{}, false
	}

	err := s.session.Put(c, sessionKeyBasketItems, basket.Items)
	if err != nil {
		s.logger.Log(c, uuid, mylog.SeverityError, "Error persisting basket mirror: %s", err)
		return Basket{}, false
	}

	return basket, true
}

func (s *Service) refreshMirror(c context.Context, uuid string) bool {
	_, ok := s.resync(c, uuid)
	return ok
}

func (s *Service) fetchBasket(c context.Context, uuid string) (Basket, bool) {
	result := s.caller.Call(c, routeGetBasket, map[string]any{"uuid": uuid}, gateway.CallOptions{})
	if !result.OK {
		return Basket{}, false
	}

	basket := Basket{}
	if !decodeData(result, &basket) {
		return Basket{}, false
	}

	for i, item := range basket.Items {
		basket.Items[i].Gross = float64(item.Quantity) * item.Item.Gross
		basket.Items[i].Net = float64(item.Quantity) * item.Item.Net
		basket.Items[i].Tax = basket.Items[i].Gross - basket.Items[i].Net
	}

	return basket, true
}

func (s *Service) basketHandle(c context.Context) (string, bool) {
	uuid, found, err := mysession.Value[string](c, s.session, sessionKeyBasketUUID)
	if err != nil || !found || uuid == "" {
		return "", false
	}

	return uuid, true
}

func (s *Service) publish(c context.Context, event myevents.Event) {
	err := s.publisher.Publish(c, basketevents.TopicName, event)
	if err != nil {
		s.logger.Log(c, "", mylog.SeverityWarn, "Error publishing %s: %s", event.GetEventTypeName(), err)
	}
}

func bottleCount(item Item) int {
	switch item.ItemType {
	case ItemTypeWine:
		return item.Quantity
	case ItemTypeBundle, ItemTypeProduct:
		return item.Quantity * item.Item.PackageQuantity
	default:
		return 0
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

func decodeData(result gateway.Result, v any) bool {
	data, found := gateway.Unwrap(result.Body, "data", false)
	if !found {
		return false
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return false
	}

	return json.Unmarshal(raw, v) == nil
}
