package basket

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/MarcGrol/shopconnector/lib/mycontext"
	"github.com/MarcGrol/shopconnector/lib/myerrors"
	"github.com/MarcGrol/shopconnector/lib/myhttp"
	"github.com/MarcGrol/shopconnector/lib/mylog"
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

	// Endpoints called by the storefront's javascript
	router.HandleFunc("/api/basket", s.getBasketPage()).Methods("GET")
	router.HandleFunc("/api/basket/summary", s.summaryPage()).Methods("GET")
	router.HandleFunc("/api/basket/items", s.addItemPage()).Methods("POST")
	router.HandleFunc("/api/basket/items/{id}", s.editItemPage()).Methods("PUT")
	router.HandleFunc("/api/basket/items/{id}", s.deleteItemPage()).Methods("DELETE")
	router.HandleFunc("/api/basket/package", s.findPackagePage()).Methods("GET")
	router.HandleFunc("/api/packages", s.allPackagesPage()).Methods("GET")
}

func (s webService) getBasketPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		responseWriter := myhttp.NewWriter(s.logger)

		basket, found := s.service.GetBasket(c, r.URL.Query().Get("uuid"))
		if !found {
			responseWriter.WriteError(c, w, 1, myerrors.NewNotFoundError(fmt.Errorf("no basket")))
			return
		}

		responseWriter.Write(c, w, http.StatusOK, basket)
	}
}

func (s webService) summaryPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		responseWriter := myhttp.NewWriter(s.logger)

		summary, found := s.service.GetSummary(c)
		if !found {
			responseWriter.WriteError(c, w, 1, myerrors.NewNotFoundError(fmt.Errorf("basket is empty")))
			return
		}

		responseWriter.Write(c, w, http.StatusOK, summary)
	}
}

func (s webService) addItemPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		responseWriter := myhttp.NewWriter(s.logger)

		data := map[string]any{}
		err := json.NewDecoder(r.Body).Decode(&data)
		if err != nil {
			responseWriter.WriteError(c, w, 1, myerrors.NewInvalidInputErrorf("error parsing item: %s", err))
			return
		}

		basket, ok := s.service.AddItem(c, data)
		if !ok {
			responseWriter.WriteError(c, w, 2, myerrors.NewInternalError(fmt.Errorf("error adding item to basket")))
			return
		}

		responseWriter.Write(c, w, http.StatusOK, basket)
	}
}

func (s webService) editItemPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		responseWriter := myhttp.NewWriter(s.logger)

		id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
		if err != nil {
			responseWriter.WriteError(c, w, 1, myerrors.NewInvalidInputErrorf("invalid item id: %s", err))
			return
		}

		data := map[string]any{}
		err = json.NewDecoder(r.Body).Decode(&data)
		if err != nil {
			responseWriter.WriteError(c, w, 2, myerrors.NewInvalidInputErrorf("error parsing item: %s", err))
			return
		}
		data["id"] = id

		basket, ok := s.service.EditItem(c, data)
		if !ok {
			responseWriter.WriteError(c, w, 3, myerrors.NewInternalError(fmt.Errorf("error editing basket item %d", id)))
			return
		}

		responseWriter.Write(c, w, http.StatusOK, basket)
	}
}

func (s webService) deleteItemPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		responseWriter := myhttp.NewWriter(s.logger)

		id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
		if err != nil {
			responseWriter.WriteError(c, w, 1, myerrors.NewInvalidInputErrorf("invalid item id: %s", err))
			return
		}

		basket, ok := s.service.DeleteItem(c, id)
		if !ok {
			responseWriter.WriteError(c, w, 2, myerrors.NewInternalError(fmt.Errorf("error deleting basket item %d", id)))
			return
		}

		responseWriter.Write(c, w, http.StatusOK, basket)
	}
}

// findPackagePage uses the mirrored summary's bottle count to look up the
// packaging that fits the current basket.
func (s webService) findPackagePage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		responseWriter := myhttp.NewWriter(s.logger)

		summary, found := s.service.GetSummary(c)
		if !found {
			responseWriter.WriteError(c, w, 1, myerrors.NewNotFoundError(fmt.Errorf("basket is empty")))
			return
		}

		pkg, found := s.service.FindPackage(c, "bottles", summary.Bottles)
		if !found {
			responseWriter.WriteError(c, w, 2, myerrors.NewNotFoundError(fmt.Errorf("no package for %d bottles", summary.Bottles)))
			return
		}

		responseWriter.Write(c, w, http.StatusOK, pkg)
	}
}

func (s webService) allPackagesPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		responseWriter := myhttp.NewWriter(s.logger)

		packages, found := s.service.GetAllPackages(c)
		if !found {
			responseWriter.WriteError(c, w, 1, myerrors.NewNotFoundError(fmt.Errorf("no packages")))
			return
		}

		responseWriter.Write(c, w, http.StatusOK, packages)
	}
}
