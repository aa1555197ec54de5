package models

// UserStatus enumerates account states recognised by the authorization engine.
type UserStatus string

const (
	// UserStatusActive marks accounts that may receive allow decisions.
	UserStatusActive UserStatus = "ACTIVE"
	// UserStatusInactive marks disabled accounts.
	UserStatusInactive UserStatus = "INACTIVE"
	// UserStatusSuspended marks accounts blocked by an administrator.
	UserStatusSuspended UserStatus = "SUSPENDED"
)

// User describes platform users and their role memberships. Account
// administration happens in external services; this engine only reads users.
type User struct {
	BaseModel

	Username    string     `gorm:"uniqueIndex;not null" json:"username"`
	DisplayName string     `json:"display_name"`
	Status      UserStatus `gorm:"type:varchar(16);not null;default:ACTIVE;index" json:"status"`

	Roles []Role `gorm:"many2many:user_roles;" json:"roles,omitempty"`
}

// IsActive reports whether the account may be granted any permission at all.
func (u *User) IsActive() bool {
	return u != nil && u.Status == UserStatusActive
}
