package domain

type Role string

const (
	RoleStaff   Role = "staff"
	RoleKitchen Role = "kitchen"
	RoleFinance Role = "finance"
	RoleAdmin   Role = "admin"
)

// Actor is the authenticated caller as supplied by the identity layer.
type Actor struct {
	UserID string
	Name   string
	Role   Role
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

func (a Actor) CanRunKitchen() bool {
	return a.Role == RoleKitchen || a.Role == RoleAdmin
}

func (a Actor) CanReadReports() bool {
	return a.Role == RoleFinance || a.Role == RoleAdmin
}
