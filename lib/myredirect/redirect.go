package myredirect

import (
	"net/http"

	"github.com/MarcGrol/shopconnector/lib/myhttp"
)

// External sends the shopper to an off-site url, typically the page of an
// external payment provider. Terminates the current request.
func External(w http.ResponseWriter, r *http.Request, url string) {
	http.Redirect(w, r, url, http.StatusSeeOther)
}

// Internal sends the shopper to a path on the storefront itself.
// Terminates the current request.
func Internal(w http.ResponseWriter, r *http.Request, path string) {
	http.Redirect(w, r, myhttp.HostnameWithScheme(r)+path, http.StatusSeeOther)
}
