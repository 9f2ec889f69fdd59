package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/gorilla/mux"

	"github.com/MarcGrol/shopconnector/lib/mycontext"
	"github.com/MarcGrol/shopconnector/lib/mycrawler"
	"github.com/MarcGrol/shopconnector/lib/myhttpclient"
	"github.com/MarcGrol/shopconnector/lib/mylog"
	"github.com/MarcGrol/shopconnector/lib/mypublisher"
	"github.com/MarcGrol/shopconnector/lib/mysession"
	"github.com/MarcGrol/shopconnector/lib/mytime"
	"github.com/MarcGrol/shopconnector/lib/myuuid"
	"github.com/MarcGrol/shopconnector/services/authsession"
	"github.com/MarcGrol/shopconnector/services/basket"
	"github.com/MarcGrol/shopconnector/services/catalog"
	"github.com/MarcGrol/shopconnector/services/checkout"
	"github.com/MarcGrol/shopconnector/services/gateway"
)

const sessionCookieName = "shop_session"

func main() {
	c := context.Background()

	cfg, err := readConfig()
	if err != nil {
		log.Fatalf("Error reading config: %s", err)
	}

	session, sessionCleanup, err := mysession.New(c)
	if err != nil {
		log.Fatalf("Error creating session store: %s", err)
	}
	defer sessionCleanup()

	publisher, publisherCleanup, err := mypublisher.New(c)
	if err != nil {
		log.Fatalf("Error creating publisher: %s", err)
	}
	defer publisherCleanup()

	httpClient := myhttpclient.NewJSONHTTPClient()
	crawler := mycrawler.NewDetector()

	authManager := authsession.NewManager(authsession.Config{
		BaseURL:        cfg.apiBaseURL,
		Origin:         cfg.origin,
		MerchantToken:  cfg.merchantToken,
		MerchantAuthID: cfg.merchantAuthID,
	}, httpClient, session, mylog.New("authsession"))

	caller := gateway.NewClient(gateway.Config{
		BaseURL:      cfg.apiBaseURL,
		Origin:       cfg.origin,
		ChannelFlags: map[string]any{"inshop": true},
	}, httpClient, authManager, mylog.New("gateway"))

	customerService := authsession.NewCustomerService(authManager, caller, mylog.New("authsession"))
	basketService := basket.NewService(caller, session, crawler, publisher, mylog.New("basket"))
	checkoutService := checkout.NewService(caller, basketService, session, crawler, publisher, mylog.New("checkout"))
	catalogService := catalog.NewService(caller, session, mylog.New("catalog"))

	router := mux.NewRouter()
	router.Use(sessionMiddleware(session, myuuid.RealUUIDer{}, mytime.RealNower{}))

	authsession.NewWebService(customerService, authManager, mylog.New("authsession-web")).RegisterEndpoints(c, router)
	basket.NewWebService(basketService, mylog.New("basket-web")).RegisterEndpoints(c, router)
	checkout.NewWebService(checkoutService, mylog.New("checkout-web")).RegisterEndpoints(c, router)
	catalog.NewWebService(catalogService, mylog.New("catalog-web")).RegisterEndpoints(c, router)

	startWebServerBlocking(router)
}

// sessionMiddleware makes sure every request runs under a session uid. A
// fresh session gets a cookie and a start stamp.
func sessionMiddleware(session mysession.Store, uuider myuuid.UUIDer, nower mytime.Nower) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			uid := ""
			cookie, err := r.Cookie(sessionCookieName)
			if err == nil && cookie.Value != "" {
				uid = cookie.Value
			}

			if uid == "" {
				uid = uuider.Create()
				http.SetCookie(w, &http.Cookie{
					Name:     sessionCookieName,
					Value:    uid,
					Path:     "/",
					HttpOnly: true,
				})

				c := mycontext.WithSessionUID(r.Context(), uid)
				session.Put(c, "start", nower.Now())
				r = r.WithContext(c)
			} else {
				r = r.WithContext(mycontext.WithSessionUID(r.Context(), uid))
			}

			next.ServeHTTP(w, r)
		})
	}
}

func startWebServerBlocking(router *mux.Router) {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Starting webserver on port %s (try http://localhost:%s)", port, port)
	err := http.ListenAndServe(fmt.Sprintf(":%s", port), router)
	if err != nil {
		log.Fatalf("Error starting webserver on port %s: %s", port, err)
	}
}
