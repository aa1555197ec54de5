package models

import (
	"time"

	"gorm.io/datatypes"
)

// AssignmentType distinguishes the two per-document grant kinds.
type AssignmentType string

const (
	// AssignmentEditor grants write-side document permissions.
	AssignmentEditor AssignmentType = "EDITOR"
	// AssignmentApprover grants the scoped approval permission.
	AssignmentApprover AssignmentType = "APPROVER"
)

// DocumentAssignment ties a user to a document with a specific grant.
//
// The composite primary key means a user holds at most one assignment per
// document; granting a second type replaces the first.
type DocumentAssignment struct {
	DocumentID string `gorm:"primaryKey;type:uuid" json:"document_id"`
	UserID     string `gorm:"primaryKey;type:uuid" json:"user_id"`

	AssignmentType AssignmentType `gorm:"type:varchar(16);not null;index" json:"assignment_type"`
	AssignedByID   *string        `gorm:"type:uuid" json:"assigned_by_id"`
	AssignedAt     time.Time      `json:"assigned_at"`
	Metadata       datatypes.JSON `json:"metadata"`
}

// TableName overrides the default table name for GORM.
func (DocumentAssignment) TableName() string {
	return "document_assignments"
}

// IsEditor reports whether the assignment carries editor rights.
func (a DocumentAssignment) IsEditor() bool {
	return a.AssignmentType == AssignmentEditor
}

// IsApprover reports whether the assignment carries approver rights.
func (a DocumentAssignment) IsApprover() bool {
	return a.AssignmentType == AssignmentApprover
}
