package roles

import (
	"syncdeck-api/internal/models"
)

// Actor is the authenticated principal attached to a request. It is supplied
// by the auth layer; the business packages never re-derive identity.
type Actor struct {
	ID       string
	Username string
	Role     models.UserRole
	TeamID   string
}
