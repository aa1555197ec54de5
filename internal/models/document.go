package models

// Document is the resource instance decisions are scoped to. Content,
// versioning and lifecycle belong to external services; the engine reads
// only identity and visibility.
type Document struct {
	BaseModel

	Title    string `json:"title"`
	IsPublic bool   `gorm:"default:false;index" json:"is_public"`
	Status   string `gorm:"type:varchar(32);index" json:"status"`
}
