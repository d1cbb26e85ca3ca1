package repository

import (
	"errors"
	"fmt"
	"time"

	"github.com/camden-git/gallerybackend/models"
	"github.com/camden-git/gallerybackend/tenant"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// SettingsUpdate carries the fields an upsert may merge into a tenant's
// settings record. Nil pointers mean "leave unchanged"; for the nullable
// columns a pointer to the empty string clears the value.
type SettingsUpdate struct {
	GalleryName     *string
	GalleryNameEn   *string
	ArtistName      *string
	SiteTitle       *string
	SiteDescription *string
	ProfileImage    *string
	AboutImage      *string
}

// SettingsRepository handles database operations for per-tenant Settings
// records. mainTenantID is the process-wide configured tenant; it gates
// writes to the sentinel placeholder once a real tenant exists.
type SettingsRepository struct {
	DB           *gorm.DB
	mainTenantID string
}

// NewSettingsRepository creates a new instance of SettingsRepository
func NewSettingsRepository(db *gorm.DB, mainTenantID string) *SettingsRepository {
	return &SettingsRepository{DB: db, mainTenantID: mainTenantID}
}

// Get retrieves the settings record for a tenant. Absence is not an error:
// it returns (nil, nil) so callers can distinguish "no record yet" from a
// record with empty fields.
func (r *SettingsRepository) Get(tenantID string) (*models.Settings, error) {
	if tenantID == "" {
		return nil, &ValidationError{Field: "tenant_id", Reason: "must not be empty"}
	}
	var settings models.Settings
	err := r.DB.Where("tenant_id = ?", tenantID).First(&settings).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, storeErr(fmt.Sprintf("get settings for tenant %s", tenantID), err)
	}
	return &settings, nil
}

func (r *SettingsRepository) validateWrite(tenantID string) error {
	if tenantID == "" {
		return &ValidationError{Field: "tenant_id", Reason: "must not be empty"}
	}
	if tenant.IsSentinel(tenantID) && r.mainTenantID != "" && !tenant.IsSentinel(r.mainTenantID) {
		return &ValidationError{
			Field:  "tenant_id",
			Reason: fmt.Sprintf("refusing to write to placeholder tenant while main tenant %q is configured", r.mainTenantID),
		}
	}
	return nil
}

// Upsert merges the supplied fields into the tenant's settings record,
// creating the record if none exists, and stamps the audit timestamp. It
// returns the full record as persisted.
func (r *SettingsRepository) Upsert(tenantID string, update SettingsUpdate) (*models.Settings, error) {
	if err := r.validateWrite(tenantID); err != nil {
		return nil, err
	}

	now := time.Now().Unix()
	var result models.Settings

	err := r.DB.Transaction(func(tx *gorm.DB) error {
		var existing models.Settings
		err := tx.Where("tenant_id = ?", tenantID).First(&existing).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if errors.Is(err, gorm.ErrRecordNotFound) {
			record := models.Settings{TenantID: tenantID, UpdatedAt: now}
			applyUpdate(&record, update)
			if err := tx.Create(&record).Error; err != nil {
				return err
			}
			result = record
			return nil
		}

		applyUpdate(&existing, update)
		existing.UpdatedAt = now
		if err := tx.Save(&existing).Error; err != nil {
			return err
		}
		result = existing
		return nil
	})
	if err != nil {
		return nil, storeErr(fmt.Sprintf("upsert settings for tenant %s", tenantID), err)
	}
	return &result, nil
}

func applyUpdate(s *models.Settings, update SettingsUpdate) {
	if update.GalleryName != nil {
		s.GalleryName = *update.GalleryName
	}
	if update.GalleryNameEn != nil {
		s.GalleryNameEn = nilIfEmpty(update.GalleryNameEn)
	}
	if update.ArtistName != nil {
		s.ArtistName = *update.ArtistName
	}
	if update.SiteTitle != nil {
		s.SiteTitle = *update.SiteTitle
	}
	if update.SiteDescription != nil {
		s.SiteDescription = nilIfEmpty(update.SiteDescription)
	}
	if update.ProfileImage != nil {
		s.ProfileImage = nilIfEmpty(update.ProfileImage)
	}
	if update.AboutImage != nil {
		s.AboutImage = nilIfEmpty(update.AboutImage)
	}
}

// nilIfEmpty maps a pointer to "" to NULL so cleared optional fields do not
// linger as empty strings.
func nilIfEmpty(v *string) *string {
	if v == nil || *v == "" {
		return nil
	}
	return v
}

// ChangePassword validates and rotates the tenant's credential. Only the
// password hash and the audit timestamp are written; no other field is
// touched. Missing settings record yields gorm.ErrRecordNotFound.
func (r *SettingsRepository) ChangePassword(tenantID, newPassword, confirmPassword string) error {
	if err := r.validateWrite(tenantID); err != nil {
		return err
	}
	if newPassword == "" || confirmPassword == "" {
		return &ValidationError{Field: "password", Reason: "must not be empty"}
	}
	if newPassword != confirmPassword {
		return &ValidationError{Field: "password", Reason: "confirmation does not match"}
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password for tenant %s: %w", tenantID, err)
	}

	result := r.DB.Model(&models.Settings{}).Where("tenant_id = ?", tenantID).Updates(map[string]interface{}{
		"password_hash": string(hashed),
		"updated_at":    time.Now().Unix(),
	})
	if result.Error != nil {
		return storeErr(fmt.Sprintf("change password for tenant %s", tenantID), result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// forceUpdatableColumns enumerates the columns an operator force-update may
// touch. The settings schema is fixed and versioned so repair code can
// enumerate fields exhaustively.
var forceUpdatableColumns = map[string]bool{
	"gallery_name":     true,
	"gallery_name_en":  true,
	"artist_name":      true,
	"site_title":       true,
	"site_description": true,
	"profile_image":    true,
	"about_image":      true,
}

// ForceUpdate overwrites named columns on a known tenant's settings record,
// bypassing workflow validation. Intended only for operator-driven one-time
// corrections; it has no undo, so it returns the before and after records
// for the caller to log.
func (r *SettingsRepository) ForceUpdate(tenantID string, fields map[string]interface{}) (*models.Settings, *models.Settings, error) {
	if tenantID == "" {
		return nil, nil, &ValidationError{Field: "tenant_id", Reason: "must not be empty"}
	}
	if len(fields) == 0 {
		return nil, nil, &ValidationError{Field: "fields", Reason: "must name at least one column"}
	}
	for col := range fields {
		if !forceUpdatableColumns[col] {
			return nil, nil, &ValidationError{Field: col, Reason: "not a force-updatable settings column"}
		}
	}

	var before models.Settings
	if err := r.DB.Where("tenant_id = ?", tenantID).First(&before).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, gorm.ErrRecordNotFound
		}
		return nil, nil, storeErr(fmt.Sprintf("load settings for tenant %s", tenantID), err)
	}

	updates := make(map[string]interface{}, len(fields)+1)
	for col, val := range fields {
		updates[col] = val
	}
	updates["updated_at"] = time.Now().Unix()

	if err := r.DB.Model(&models.Settings{}).Where("tenant_id = ?", tenantID).Updates(updates).Error; err != nil {
		return nil, nil, storeErr(fmt.Sprintf("force-update settings for tenant %s", tenantID), err)
	}

	var after models.Settings
	if err := r.DB.Where("tenant_id = ?", tenantID).First(&after).Error; err != nil {
		return &before, nil, storeErr(fmt.Sprintf("reload settings for tenant %s", tenantID), err)
	}
	return &before, &after, nil
}

// ListTenantIDs returns the ids of every tenant that has a settings record,
// used by audits to cross-check artwork ownership.
func (r *SettingsRepository) ListTenantIDs() ([]string, error) {
	var ids []string
	err := r.DB.Model(&models.Settings{}).Order("tenant_id ASC").Pluck("tenant_id", &ids).Error
	if err != nil {
		return nil, storeErr("list settings tenant ids", err)
	}
	return ids, nil
}
