package service

import "github.com/TrackBD/trackbd_api/internal/utils"

// Actor identifies the authenticated caller of a service operation.
type Actor struct {
	ID   string
	Name string
	Role string
}

// IsAdmin reports whether the actor is the administrator.
func (a Actor) IsAdmin() bool {
	return a.Role == utils.RoleAdmin
}

// AdminActorID is the author id recorded for admin-made notes and approvals.
const AdminActorID = "admin"
