package authsession

type Config struct {
	// BaseURL of the remote commerce api, without trailing slash.
	BaseURL string
	// Origin sent on login and validation calls.
	Origin string
	// MerchantToken and MerchantAuthID identify the storefront
	// integration itself, not an end customer.
	MerchantToken  string
	MerchantAuthID string
}

// SessionAuth is the token set persisted in session storage. The access and
// refresh tokens belong to the merchant integration; ClientToken is only
// present once an end customer has authenticated on top of the merchant
// session and is cleared independently on customer logout.
type SessionAuth struct {
	AccessToken  string `json:"token"`
	RefreshToken string `json:"refreshToken"`
	ClientToken  string `json:"clientToken,omitempty"`
}

const (
	sessionKeyAuth = "auth"

	routeLogin         = "login"
	routeValidateLogin = "check/login"
	routeClientLogin   = "clients/login"
	routeRegister      = "customers/register"
	routeActivate      = "customers/activate"
	routeGetCustomer   = "customers/get"
)
