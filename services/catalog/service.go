package catalog

import (
	"context"

	"github.com/MarcGrol/shopconnector/lib/mylog"
	"github.com/MarcGrol/shopconnector/lib/mysession"
	"github.com/MarcGrol/shopconnector/services/gateway"
	"github.com/MarcGrol/shopconnector/services/ident"
)

const (
	sessionKeyLanguage = "language"

	defaultLanguage   = "de"
	defaultSearchSort = "chstamp DESC"
	defaultSearchMax  = 9
)

// Service bundles the stateless catalog lookups. Every operation is a
// plain request/response pair: resolve the reference, call the route,
// unwrap the envelope.
type Service struct {
	caller  gateway.Caller
	session mysession.Store
	logger  mylog.Logger
}

// Use dependency injection to isolate the infrastructure and easy testing
func NewService(caller gateway.Caller, session mysession.Store, logger mylog.Logger) *Service {
	return &Service{
		caller:  caller,
		session: session,
		logger:  logger,
	}
}

func (s *Service) GetWine(c context.Context, ref ident.Ref) (any, bool) {
	return s.flat(c, "wines/getPublic", ref.Payload(), false)
}

func (s *Service) GetAllWines(c context.Context, filter map[string]any) (map[string]any, bool) {
	return s.paged(c, "wines/getAll", filter, "wines")
}

// SearchWine requires a query and fills in language, sort order and page
// size defaults.
func (s *Service) SearchWine(c context.Context, query string, params map[string]any) (map[string]any, bool) {
	if query == "" {
		return nil, false
	}

	body := s.searchBody(c, query, params)

	return s.paged(c, "wines/search", body, "wines")
}

func (s *Service) GetWineFilters(c context.Context, params map[string]any) (any, bool) {
	return s.flat(c, "wines/getFilters", params, false)
}

func (s *Service) GetByCategory(c context.Context, ref ident.Ref) (any, bool) {
	return s.flat(c, "wines/getByCategory", ref.Payload(), false)
}

// GetExpertise returns the link to a wine's expertise document.
func (s *Service) GetExpertise(c context.Context, id int64) (string, bool) {
	result := s.caller.Call(c, "wines/getExpertise", ident.ByID(id).Payload(), gateway.CallOptions{})
	if !result.OK {
		return "", false
	}

	pdf, found := gateway.Unwrap(result.Body, "pdf", false)
	if !found {
		return "", false
	}

	url, ok := pdf.(string)

	return url, ok
}

func (s *Service) GetCategory(c context.Context, ref ident.Ref) (any, bool) {
	return s.flat(c, "categories/get", ref.Payload(), false)
}

func (s *Service) GetAllCategories(c context.Context) (any, bool) {
	result := s.caller.Call(c, "categories/getAll", nil, gateway.CallOptions{})
	if !result.OK {
		return nil, false
	}

	return gateway.Unwrap(result.Body, "categories", false)
}

func (s *Service) GetWinery(c context.Context, id int64) (any, bool) {
	return s.flat(c, "wineries/get", ident.ByID(id).Payload(), true)
}

func (s *Service) SearchWinery(c context.Context, query string, params map[string]any) (map[string]any, bool) {
	if query == "" {
		return nil, false
	}

	body := s.searchBody(c, query, params)

	return s.paged(c, "wineries/search", body, "wineries")
}

func (s *Service) GetProduct(c context.Context, ref ident.Ref) (any, bool) {
	return s.flat(c, "products/get", ref.Payload(), false)
}

func (s *Service) GetAllProducts(c context.Context, filter map[string]any) (any, bool) {
	return s.flat(c, "products/getAll", filter, false)
}

func (s *Service) GetCountries(c context.Context) (any, bool) {
	return s.flat(c, "countries/getAll", nil, false)
}

// GetWineregions lists wine regions, optionally restricted to a country.
func (s *Service) GetWineregions(c context.Context, countryCode string) (any, bool) {
	if countryCode != "" {
		return s.flat(c, "wineregions/getAllByCountryCode", map[string]any{"country_code": countryCode}, false)
	}

	return s.flat(c, "wineregions/getAll", nil, false)
}

func (s *Service) flat(c context.Context, route string, body map[string]any, fallbackToFull bool) (any, bool) {
	result := s.caller.Call(c, route, body, gateway.CallOptions{})
	if !result.OK {
		return nil, false
	}

	return gateway.Unwrap(result.Body, "data", fallbackToFull)
}

func (s *Service) paged(c context.Context, route string, body map[string]any, dataKey string) (map[string]any, bool) {
	result := s.caller.Call(c, route, body, gateway.CallOptions{})
	if !result.OK {
		return nil, false
	}

	return gateway.UnwrapPaged(result.Body, dataKey)
}

func (s *Service) searchBody(c context.Context, query string, params map[string]any) map[string]any {
	body := map[string]any{}
	for key, value := range params {
		body[key] = value
	}
	body["query"] = query

	if _, found := body["language"]; !found {
		body["language"] = s.language(c)
	}
	if _, found := body["orderBy"]; !found {
		body["orderBy"] = defaultSearchSort
	}
	if _, found := body["max"]; !found {
		body["max"] = defaultSearchMax
	}

	return body
}

func (s *Service) language(c context.Context) string {
	language, found, err := mysession.Value[string](c, s.session, sessionKeyLanguage)
	if err != nil || !found || language == "" {
		return defaultLanguage
	}

	return language
}
