package models

import (
	"golang.org/x/crypto/bcrypt"
)

// Settings holds one artist tenant's gallery configuration. There is at most
// one row per tenant id; absence of a row is a valid state distinct from a
// row with empty fields.
type Settings struct {
	TenantID        string  `gorm:"primaryKey" json:"tenant_id"`
	GalleryName     string  `gorm:"not null;default:''" json:"gallery_name"`
	GalleryNameEn   *string `gorm:"" json:"gallery_name_en,omitempty"` // Nullable localized variant
	ArtistName      string  `gorm:"not null;default:''" json:"artist_name"`
	SiteTitle       string  `gorm:"not null;default:''" json:"site_title"`
	SiteDescription *string `gorm:"" json:"site_description,omitempty"` // Nullable
	ProfileImage    *string `gorm:"" json:"profile_image,omitempty"`    // Nullable
	AboutImage      *string `gorm:"" json:"about_image,omitempty"`      // Nullable
	PasswordHash    string  `gorm:"not null;default:''" json:"-"`       // "-" means don't include in JSON responses
	UpdatedAt       int64   `gorm:"not null" json:"updated_at"`         // Unix timestamp, stamped by the repository
}

// TableName explicitly sets the table name for GORM.
func (Settings) TableName() string {
	return "settings"
}

// SetPassword hashes the given password and sets it on the settings record.
func (s *Settings) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	s.PasswordHash = string(hashedPassword)
	return nil
}

// CheckPassword verifies if the given password matches the stored hash.
func (s *Settings) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(s.PasswordHash), []byte(password))
	return err == nil
}
