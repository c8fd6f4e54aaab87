package checkout

import (
	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/domain/validate"
)

// Validate 進入付款前的表單檢查
// 密碼只有訪客勾選建立帳號時才需要
func Validate(info model.ShippingInfo, guest bool) error {
	c := validate.NewCollector("shipping")
	c.Email("email", info.Email)
	c.Required("first_name", info.FirstName, "First name is required")
	c.Required("last_name", info.LastName, "Last name is required")
	c.Required("phone", info.Phone, "Phone number is required")
	c.Required("address", info.Address, "Address is required")
	c.Required("city", info.City, "City is required")
	c.Required("state", info.State, "State is required")
	c.Required("zip_code", info.ZipCode, "ZIP code is required")
	if guest && info.CreateAccount {
		c.Required("password", info.Password, "Password is required for account creation")
	}
	return c.Err()
}
