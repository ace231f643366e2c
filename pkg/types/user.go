package types

import "github.com/goldstore/storefront/pkg/enums"

// User is the identity snapshot persisted on login.
type User struct {
	ID    FlexID     `json:"id"`
	Name  string     `json:"name"`
	Email string     `json:"email"`
	Role  enums.Role `json:"role"`
}
