package catalog

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/MarcGrol/shopconnector/lib/mycontext"
	"github.com/MarcGrol/shopconnector/lib/myerrors"
	"github.com/MarcGrol/shopconnector/lib/myhttp"
	"github.com/MarcGrol/shopconnector/lib/mylog"
	"github.com/MarcGrol/shopconnector/services/ident"
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
	router.HandleFunc("/api/wines", s.allWinesPage()).Methods("GET")
	router.HandleFunc("/api/wines/search", s.searchWinesPage()).Methods("GET")
	router.HandleFunc("/api/wines/{ref}", s.winePage()).Methods("GET")
	router.HandleFunc("/api/wines/{id:[0-9]+}/expertise", s.expertisePage()).Methods("GET")
	router.HandleFunc("/api/categories", s.allCategoriesPage()).Methods("GET")
	router.HandleFunc("/api/categories/{ref}", s.categoryPage()).Methods("GET")
	router.HandleFunc("/api/categories/{ref}/wines", s.winesByCategoryPage()).Methods("GET")
	router.HandleFunc("/api/wineries/search", s.searchWineriesPage()).Methods("GET")
	router.HandleFunc("/api/wineries/{id:[0-9]+}", s.wineryPage()).Methods("GET")
	router.HandleFunc("/api/products", s.allProductsPage()).Methods("GET")
	router.HandleFunc("/api/products/{ref}", s.productPage()).Methods("GET")
	router.HandleFunc("/api/countries", s.countriesPage()).Methods("GET")
	router.HandleFunc("/api/wineregions", s.wineregionsPage()).Methods("GET")
}

func (s webService) allWinesPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		responseWriter := myhttp.NewWriter(s.logger)

		page, found := s.service.GetAllWines(c, queryFilter(r))
		if !found {
			responseWriter.WriteError(c, w, 1, myerrors.NewNotFoundError(fmt.Errorf("no wines")))
			return
		}

		responseWriter.Write(c, w, http.StatusOK, page)
	}
}

func (s webService) searchWinesPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		responseWriter := myhttp.NewWriter(s.logger)

		query := r.URL.Query().Get("q")
		if query == "" {
			responseWriter.WriteError(c, w, 1, myerrors.NewInvalidInputErrorf("missing query"))
			return
		}

		page, found := s.service.SearchWine(c, query, queryFilter(r))
		if !found {
			responseWriter.WriteError(c, w, 2, myerrors.NewNotFoundError(fmt.Errorf("no wines matching %s", query)))
			return
		}

		responseWriter.Write(c, w, http.StatusOK, page)
	}
}

func (s webService) winePage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		responseWriter := myhttp.NewWriter(s.logger)

		ref := ident.FromAny(mux.Vars(r)["ref"])

		wine, found := s.service.GetWine(c, ref)
		if !found {
			responseWriter.WriteError(c, w, 1, myerrors.NewNotFoundError(fmt.Errorf("wine not found")))
			return
		}

		responseWriter.Write(c, w, http.StatusOK, wine)
	}
}

func (s webService) expertisePage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		responseWriter := myhttp.NewWriter(s.logger)

		id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
		if err != nil {
			responseWriter.WriteError(c, w, 1, myerrors.NewInvalidInputErrorf("invalid wine id: %s", err))
			return
		}

		url, found := s.service.GetExpertise(c, id)
		if !found {
			responseWriter.WriteError(c, w, 2, myerrors.NewNotFoundError(fmt.Errorf("no expertise for wine %d", id)))
			return
		}

		responseWriter.Write(c, w, http.StatusOK, map[string]string{"pdf": url})
	}
}

func (s webService) allCategoriesPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		responseWriter := myhttp.NewWriter(s.logger)

		categories, found := s.service.GetAllCategories(c)
		if !found {
			responseWriter.WriteError(c, w, 1, myerrors.NewNotFoundError(fmt.Errorf("no categories")))
			return
		}

		responseWriter.Write(c, w, http.StatusOK, categories)
	}
}

func (s webService) categoryPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		responseWriter := myhttp.NewWriter(s.logger)

		category, found := s.service.GetCategory(c, ident.FromAny(mux.Vars(r)["ref"]))
		if !found {
			responseWriter.WriteError(c, w, 1, myerrors.NewNotFoundError(fmt.Errorf("category not found")))
			return
		}

		responseWriter.Write(c, w, http.StatusOK, category)
	}
}

func (s webService) winesByCategoryPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		responseWriter := myhttp.NewWriter(s.logger)

		wines, found := s.service.GetByCategory(c, ident.FromAny(mux.Vars(r)["ref"]))
		if !found {
			responseWriter.WriteError(c, w, 1, myerrors.NewNotFoundError(fmt.Errorf("category not found")))
			return
		}

		responseWriter.Write(c, w, http.StatusOK, wines)
	}
}

func (s webService) searchWineriesPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		responseWriter := myhttp.NewWriter(s.logger)

		query := r.URL.Query().Get("q")
		if query == "" {
			responseWriter.WriteError(c, w, 1, myerrors.NewInvalidInputErrorf("missing query"))
			return
		}

		page, found := s.service.SearchWinery(c, query, queryFilter(r))
		if !found {
			responseWriter.WriteError(c, w, 2, myerrors.NewNotFoundError(fmt.Errorf("no wineries matching %s", query)))
			return
		}

		responseWriter.Write(c, w, http.StatusOK, page)
	}
}

func (s webService) wineryPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		responseWriter := myhttp.NewWriter(s.logger)

		id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
		if err != nil {
			responseWriter.WriteError(c, w, 1, myerrors.NewInvalidInputErrorf("invalid winery id: %s", err))
			return
		}

		winery, found := s.service.GetWinery(c, id)
		if !found {
			responseWriter.WriteError(c, w, 2, myerrors.NewNotFoundError(fmt.Errorf("winery %d not found", id)))
			return
		}

		responseWriter.Write(c, w, http.StatusOK, winery)
	}
}

func (s webService) allProductsPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		responseWriter := myhttp.NewWriter(s.logger)

		products, found := s.service.GetAllProducts(c, queryFilter(r))
		if !found {
			responseWriter.WriteError(c, w, 1, myerrors.NewNotFoundError(fmt.Errorf("no products")))
			return
		}

		responseWriter.Write(c, w, http.StatusOK, products)
	}
}

func (s webService) productPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		responseWriter := myhttp.NewWriter(s.logger)

		product, found := s.service.GetProduct(c, ident.FromAny(mux.Vars(r)["ref"]))
		if !found {
			responseWriter.WriteError(c, w, 1, myerrors.NewNotFoundError(fmt.Errorf("product not found")))
			return
		}

		responseWriter.Write(c, w, http.StatusOK, product)
	}
}

func (s webService) countriesPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		responseWriter := myhttp.NewWriter(s.logger)

		countries, found := s.service.GetCountries(c)
		if !found {
			responseWriter.WriteError(c, w, 1, myerrors.NewNotFoundError(fmt.Errorf("no countries")))
			return
		}

		responseWriter.Write(c, w, http.StatusOK, countries)
	}
}

func (s webService) wineregionsPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		responseWriter := myhttp.NewWriter(s.logger)

		regions, found := s.service.GetWineregions(c, r.URL.Query().Get("country"))
		if !found {
			responseWriter.WriteError(c, w, 1, myerrors.NewNotFoundError(fmt.Errorf("no wine regions")))
			return
		}

		responseWriter.Write(c, w, http.StatusOK, regions)
	}
}

// queryFilter turns query params into a filter body, skipping the params
// the handlers consume themselves.
func queryFilter(r *http.Request) map[string]any {
	filter := map[string]any{}
	for key, values := range r.URL.Query() {
		if key == "q" || key == "country" {
			continue
		}
		if len(values) > 0 {
			filter[key] = values[0]
		}
	}

	if len(filter) == 0 {
		return nil
	}

	return filter
}
