package models

// Artwork represents a single piece owned by one tenant. Tenant ownership is
// a plain indexed column rather than a database constraint; the repair layer
// enforces it logically.
type Artwork struct {
	ID          uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	TenantID    string  `gorm:"not null;index" json:"tenant_id"`
	Title       string  `gorm:"not null;default:''" json:"title"`
	Year        int     `gorm:"not null;index" json:"year"`
	Month       *int    `gorm:"" json:"month,omitempty"` // Nullable
	Medium      string  `gorm:"not null;default:''" json:"medium"`
	Dimensions  string  `gorm:"not null;default:''" json:"dimensions"`
	Description string  `gorm:"not null;default:''" json:"description"`
	ImagePath   *string `gorm:"" json:"image_path,omitempty"`     // Nullable, full-size image
	BlurImage   *string `gorm:"" json:"blur_image,omitempty"`     // Nullable, low-res placeholder
	CreatedAt   int64   `gorm:"not null;index" json:"created_at"` // Unix timestamp, default ordering key
}

// TableName explicitly sets the table name for GORM.
func (Artwork) TableName() string {
	return "artworks"
}
