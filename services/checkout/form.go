package checkout

import (
	"net/http"

	"github.com/go-playground/form/v4"

	"github.com/MarcGrol/shopconnector/lib/myerrors"
)

// Form is the checkout form posted by the storefront.
type Form struct {
	FirstName     string `form:"first_name"`
	LastName      string `form:"last_name"`
	Mail          string `form:"mail"`
	Phone         string `form:"phone"`
	Address       string `form:"address"`
	ZIP           string `form:"zip"`
	City          string `form:"city"`
	Country       string `form:"country"`
	Note          string `form:"note"`
	PaymentMethod string `form:"payment_method"`
}

var formDecoder = form.NewDecoder()

func DecodeForm(r *http.Request) (Form, error) {
	err := r.ParseForm()
	if err != nil {
		return Form{}, myerrors.NewInvalidInputErrorf("error parsing checkout form: %s", err)
	}

	decoded := Form{}
	err = formDecoder.Decode(&decoded, r.PostForm)
	if err != nil {
		return Form{}, myerrors.NewInvalidInputErrorf("error decoding checkout form: %s", err)
	}

	return decoded, nil
}

func (f Form) Validate() error {
	if f.LastName == "" || f.Mail == "" {
		return myerrors.NewInvalidInputErrorf("checkout form needs at least lastname and mail")
	}

	return nil
}

// OrderData flattens the form into the shape the commerce api expects.
func (f Form) OrderData() map[string]any {
	return map[string]any{
		"client": map[string]any{
			"first_name": f.FirstName,
			"last_name":  f.LastName,
			"mail":       f.Mail,
			"phone":      f.Phone,
		},
		"delivery": map[string]any{
			"address": f.Address,
			"zip":     f.ZIP,
			"city":    f.City,
			"country": f.Country,
		},
		"note":           f.Note,
		"payment_method": f.PaymentMethod,
	}
}
