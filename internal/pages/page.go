package pages

import "time"

// Page is the only persisted entity: one published document per successful
// generation request. The HTMLContent field holds sanitized output
// exclusively; the service layer owns the single write path into it.
type Page struct {
	ID          string         `gorm:"primaryKey;size:36"`
	Email       string         `gorm:"size:254;index:idx_pages_email;not null"`
	Prompt      string         `gorm:"type:text;not null"`
	PageType    string         `gorm:"size:50;not null;default:other"`
	Theme       string         `gorm:"size:50;not null;default:modern"`
	HTMLContent string         `gorm:"type:text;not null"`
	IsPublic    bool           `gorm:"not null"`
	ViewCount   int64          `gorm:"not null;default:0"`
	CreatedAt   time.Time      `gorm:"index"`
	MetaData    map[string]any `gorm:"serializer:json"`
}

// TableName defines the table name for the Page model.
func (Page) TableName() string {
	return "pages"
}
