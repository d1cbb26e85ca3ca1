package repository

import (
	"github.com/camden-git/gallerybackend/models"
)

// SettingsRepositoryInterface defines the methods for tenant settings data operations
type SettingsRepositoryInterface interface {
	Get(tenantID string) (*models.Settings, error)
	Upsert(tenantID string, update SettingsUpdate) (*models.Settings, error)
	ChangePassword(tenantID, newPassword, confirmPassword string) error
	ForceUpdate(tenantID string, fields map[string]interface{}) (before, after *models.Settings, err error)
	ListTenantIDs() ([]string, error)
}

// ArtworkRepositoryInterface defines the methods for artwork data operations
type ArtworkRepositoryInterface interface {
	Create(artwork *models.Artwork) error
	GetByID(id uint) (*models.Artwork, error)
	ListByTenant(tenantID string, opts ListOptions) ([]models.Artwork, error)
	DistinctYears(tenantID string) ([]int, error)
	Update(artworkID uint, update ArtworkUpdate) error
	SetImagePaths(artworkID uint, imagePath, blurPath *string) error
	Delete(id uint) error
	ReassignTenant(fromTenantID, toTenantID string) (int64, error)
	CountByTenant() ([]TenantCount, error)
}
