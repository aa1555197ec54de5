package models

// Permission is a named capability identified by a unique code such as
// "DOC:EDIT". Codes are immutable once referenced by policy logic.
type Permission struct {
	BaseModel

	Code        string `gorm:"uniqueIndex;not null;size:128" json:"code"`
	Module      string `gorm:"not null;index" json:"module"`
	Description string `json:"description"`
}

// RolePermission is the join row binding a role to a permission. Kept as an
// explicit model so both directions of the relation are resolved with
// queries instead of embedded back-pointers.
type RolePermission struct {
	RoleID       string `gorm:"primaryKey;type:uuid" json:"role_id"`
	PermissionID string `gorm:"primaryKey;type:uuid" json:"permission_id"`
}

// TableName overrides the default table name for GORM.
func (RolePermission) TableName() string {
	return "role_permissions"
}
