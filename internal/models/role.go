package models

// Role groups permission grants under a named authority level.
//
// The role→permission relation lives exclusively in RolePermission join rows
// and is resolved by explicit queries; neither side embeds the other, so no
// reference cycle exists between Role and Permission.
type Role struct {
	BaseModel

	Name        string `gorm:"uniqueIndex;not null" json:"name"`
	Description string `json:"description"`
	IsSystem    bool   `gorm:"default:false" json:"is_system"`
}
