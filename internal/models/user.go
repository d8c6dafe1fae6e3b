package models

// Role enumerates the fixed set of user roles.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleCustomer   Role = "customer"
	RoleFieldAgent Role = "field_agent"
	RoleMarketer   Role = "marketer"
)

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleCustomer, RoleFieldAgent, RoleMarketer:
		return true
	}
	return false
}

// AccountStatus enumerates the fixed set of account states.
type AccountStatus string

const (
	StatusActive  AccountStatus = "active"
	StatusSuspend AccountStatus = "suspend"
	StatusPending AccountStatus = "pending"
)

// Valid reports whether the status is one of the known values.
func (s AccountStatus) Valid() bool {
	switch s {
	case StatusActive, StatusSuspend, StatusPending:
		return true
	}
	return false
}

// User is the identity record behind signup, OTP verification and login.
//
// Email is stored exactly as received. The upstream mobile clients send the
// address the user typed, and comparisons stay case-sensitive on purpose so
// the behaviour is explicit rather than silently normalised.
type User struct {
	BaseModel

	Email    string `gorm:"uniqueIndex;not null" json:"email"`
	Password string `json:"-"`

	GoogleID    string `gorm:"index" json:"google_id,omitempty"`
	AvatarURL   string `json:"avatar_url,omitempty"`
	PhoneNumber string `json:"phone_number,omitempty"`

	IsVerified    bool          `gorm:"default:false" json:"is_verified"`
	Role          Role          `gorm:"type:varchar(32);default:customer" json:"role"`
	AccountStatus AccountStatus `gorm:"type:varchar(32);default:active" json:"account_status"`
}
