package profile

import (
	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/domain/validate"
)

// Validate 名稱不可為空，email 格式大致合理
func Validate(p model.UserProfile) error {
	c := validate.NewCollector("profile")
	c.Required("name", p.Name, "Name is required")
	c.Email("email", p.Email)
	return c.Err()
}
