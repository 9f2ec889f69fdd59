package basket

const (
	ItemTypeWine    = "wine"
	ItemTypeBundle  = "bundle"
	ItemTypeProduct = "product"
)

// Basket is the remote basket as returned by the commerce api, enriched
// client-side with per-line derived totals.
type Basket struct {
	UUID  string `json:"uuid"`
	Items []Item `json:"basketItems"`
}

type Item struct {
	ID       int64       `json:"id"`
	ItemType string      `json:"item_type"`
	ItemID   int64       `json:"item_id"`
	Quantity int         `json:"quantity"`
	Item     ItemDetails `json:"item"`

	// line totals derived from the unit prices, never taken from the server
	Net   float64 `json:"net"`
	Tax   float64 `json:"tax"`
	Gross float64 `json:"gross"`
}

// ItemDetails carries the unit prices and, for bundles and products, the
// number of bottles a single unit contains.
type ItemDetails struct {
	Net             float64 `json:"net"`
	Tax             float64 `json:"tax"`
	Gross           float64 `json:"gross"`
	PackageQuantity int     `json:"package_quantity,omitempty"`
}

// Summary is the fold over the locally mirrored line items. Bottles applies
// the package-quantity multiplier for bundle and product lines.
type Summary struct {
	Bottles  int     `json:"bottles"`
	Net      float64 `json:"net"`
	Tax      float64 `json:"tax"`
	Gross    float64 `json:"gross"`
	Quantity int     `json:"quantity"`
}

const (
	sessionKeyBasketUUID  = "basket"
	sessionKeyBasketItems = "basketItems"

	routeGetBasket    = "baskets/get"
	routeCreateBasket = "baskets/add"
	routeAddItem      = "baskets/addItem"
	routeEditItem     = "baskets/editItem"
	routeDeleteItem   = "baskets/deleteItem"
	routeFindPackage  = "packaging/find"
	routeAllPackages  = "packaging/getAll"
)
