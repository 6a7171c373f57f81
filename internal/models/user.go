// Package models contains the domain structures shared between the business
// logic and the storage layer, plus the "Dummy" structures used to receive and
// validate JSON request bodies before they are converted to domain values.
package models

import "time"

// Roles assigned to accounts.
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// Profile types an account can have. Only creators and professionals can be
// subscribed to; shops run on the business plan instead.
const (
	ProfileTypeViewer       = "VIEWER"
	ProfileTypeCreator      = "CREATOR"
	ProfileTypeProfessional = "PROFESSIONAL"
	ProfileTypeShop         = "SHOP"
)

// User represents a registered account. MembershipExpiresAt and ShopTrialEndsAt
// are nil when the user never paid / never had a trial.
type User struct {
	ID                  string
	Email               string
	Username            string
	DisplayName         *string
	PasswordHash        string
	Role                string
	ProfileType         string
	MembershipExpiresAt *time.Time
	ShopTrialEndsAt     *time.Time
	SubscriptionPrice   *int
	AvatarURL           *string
	Bio                 *string
	Address             *string
	City                *string
	Latitude            *float64
	Longitude           *float64
	ServiceCategory     *string
	ServiceDescription  *string
	CreatedAt           time.Time
}

// DummyRegister receives registration data from a JSON request.
type DummyRegister struct {
	Email       string `json:"email" validate:"required,email"`
	Username    string `json:"username" validate:"required,min=3,max=50,alphanum"`
	Password    string `json:"password" validate:"required,min=8,max=128"`
	DisplayName string `json:"display_name,omitempty" validate:"omitempty,min=2,max=50"`
	ProfileType string `json:"profile_type,omitempty" validate:"omitempty,oneof=VIEWER CREATOR PROFESSIONAL SHOP"`
}

// DummyLogin receives login credentials from a JSON request.
type DummyLogin struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Password string `json:"password" validate:"required,min=8"`
}
