package domain

import "time"

type Property struct {
	ID          int64
	TenantID    int64
	CityID      int64
	CategoryID  int64
	Name        string
	Description string
	Address     string
	Image       *string
	DeletedAt   *time.Time
}

type Review struct {
	ID         int64
	PropertyID int64
	Author     string
	Photo      *string
	Rating     int
	Comment    string
	CreatedAt  time.Time
}

type Role string

const (
	RoleUser   Role = "USER"
	RoleTenant Role = "TENANT"
)

// Actor is the authenticated caller, extracted once by the auth middleware
// and passed explicitly into every command. Services never reach back into
// the request for identity.
type Actor struct {
	UserID int64
	Role   Role
}

func (a Actor) IsTenant() bool { return a.Role == RoleTenant }
