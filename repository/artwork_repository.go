package repository

import (
	"fmt"
	"sort"
	"time"

	"github.com/camden-git/gallerybackend/database"
	"github.com/camden-git/gallerybackend/models"
	"github.com/facette/natsort"
	"gorm.io/gorm"
)

// ListOptions narrows and orders a tenant artwork listing. A nil Year means
// no year filter; an empty Sort falls back to the default order.
type ListOptions struct {
	Year *int
	Sort string
}

// ArtworkUpdate carries the descriptive fields an edit may change. Nil
// pointers mean "leave unchanged".
type ArtworkUpdate struct {
	Title       *string
	Year        *int
	Month       *int
	Medium      *string
	Dimensions  *string
	Description *string
}

// TenantCount is one row of the counts-by-tenant audit.
type TenantCount struct {
	TenantID string `json:"tenant_id"`
	Count    int64  `json:"count"`
}

// ArtworkRepository handles database operations for Artwork entities
type ArtworkRepository struct {
	DB *gorm.DB
}

// NewArtworkRepository creates a new instance of ArtworkRepository
func NewArtworkRepository(db *gorm.DB) *ArtworkRepository {
	return &ArtworkRepository{DB: db}
}

// Create creates a new artwork record in the database
func (r *ArtworkRepository) Create(artwork *models.Artwork) error {
	if artwork.TenantID == "" {
		return &ValidationError{Field: "tenant_id", Reason: "must not be empty"}
	}
	if artwork.CreatedAt == 0 {
		artwork.CreatedAt = time.Now().Unix()
	}

	err := r.DB.Create(artwork).Error
	if err != nil {
		return storeErr(fmt.Sprintf("create artwork %s", artwork.Title), err)
	}
	return nil
}

// GetByID retrieves an artwork by its ID
func (r *ArtworkRepository) GetByID(id uint) (*models.Artwork, error) {
	var artwork models.Artwork
	err := r.DB.First(&artwork, id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, err
		}
		return nil, storeErr(fmt.Sprintf("get artwork by ID %d", id), err)
	}
	return &artwork, nil
}

// ListByTenant retrieves a tenant's artworks, newest first by default. An
// empty tenant yields an empty slice, not an error.
func (r *ArtworkRepository) ListByTenant(tenantID string, opts ListOptions) ([]models.Artwork, error) {
	if tenantID == "" {
		return nil, &ValidationError{Field: "tenant_id", Reason: "must not be empty"}
	}
	sortOrder := opts.Sort
	if sortOrder == "" {
		sortOrder = database.DefaultSortOrder
	}
	if !database.IsValidSortOrder(sortOrder) {
		return nil, &ValidationError{Field: "sort", Reason: fmt.Sprintf("unknown sort order %q", sortOrder)}
	}

	query := r.DB.Where("tenant_id = ?", tenantID)
	if opts.Year != nil {
		query = query.Where("year = ?", *opts.Year)
	}

	switch sortOrder {
	case database.SortDateAsc:
		query = query.Order("created_at ASC, id ASC")
	case database.SortTitleAsc, database.SortTitleNat:
		query = query.Order("title ASC, id ASC")
	default:
		query = query.Order("created_at DESC, id DESC")
	}

	var artworks []models.Artwork
	if err := query.Find(&artworks).Error; err != nil {
		return nil, storeErr(fmt.Sprintf("list artworks for tenant %s", tenantID), err)
	}

	// natural ordering ("Untitled 2" before "Untitled 10") is done in memory;
	// the store only knows lexicographic order
	if sortOrder == database.SortTitleNat {
		sort.SliceStable(artworks, func(i, j int) bool {
			return natsort.Compare(artworks[i].Title, artworks[j].Title)
		})
	}
	return artworks, nil
}

// DistinctYears derives the ordered set of distinct years present among a
// tenant's artworks, descending. It is recomputed from the rows on every
// call; storing it would silently desynchronize after any edit.
func (r *ArtworkRepository) DistinctYears(tenantID string) ([]int, error) {
	if tenantID == "" {
		return nil, &ValidationError{Field: "tenant_id", Reason: "must not be empty"}
	}
	var years []int
	err := r.DB.Model(&models.Artwork{}).
		Where("tenant_id = ?", tenantID).
		Distinct("year").
		Order("year DESC").
		Pluck("year", &years).Error
	if err != nil {
		return nil, storeErr(fmt.Sprintf("distinct years for tenant %s", tenantID), err)
	}
	return years, nil
}

// Update updates an existing artwork's descriptive fields
func (r *ArtworkRepository) Update(artworkID uint, update ArtworkUpdate) error {
	updates := map[string]interface{}{}
	if update.Title != nil {
		updates["title"] = *update.Title
	}
	if update.Year != nil {
		updates["year"] = *update.Year
	}
	if update.Month != nil {
		if *update.Month == 0 { // allow clearing the month
			updates["month"] = gorm.Expr("NULL")
		} else {
			updates["month"] = *update.Month
		}
	}
	if update.Medium != nil {
		updates["medium"] = *update.Medium
	}
	if update.Dimensions != nil {
		updates["dimensions"] = *update.Dimensions
	}
	if update.Description != nil {
		updates["description"] = *update.Description
	}
	if len(updates) == 0 {
		return nil
	}

	result := r.DB.Model(&models.Artwork{}).Where("id = ?", artworkID).Updates(updates)
	if result.Error != nil {
		return storeErr(fmt.Sprintf("update artwork ID %d", artworkID), result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// SetImagePaths updates the media references for an artwork after upload
// processing. Passing nil clears a reference.
func (r *ArtworkRepository) SetImagePaths(artworkID uint, imagePath, blurPath *string) error {
	result := r.DB.Model(&models.Artwork{}).Where("id = ?", artworkID).Updates(map[string]interface{}{
		"image_path": imagePath,
		"blur_image": blurPath,
	})
	if result.Error != nil {
		return storeErr(fmt.Sprintf("set image paths for artwork ID %d", artworkID), result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes an artwork by its ID
func (r *ArtworkRepository) Delete(id uint) error {
	result := r.DB.Delete(&models.Artwork{}, id)
	if result.Error != nil {
		return storeErr(fmt.Sprintf("delete artwork ID %d", id), result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ReassignTenant bulk-updates every artwork owned by fromTenantID to
// toTenantID inside a transaction and returns the number of rows changed.
// On failure it reports zero changes; the caller must treat that as unknown
// state and re-audit before retrying.
func (r *ArtworkRepository) ReassignTenant(fromTenantID, toTenantID string) (int64, error) {
	if fromTenantID == "" || toTenantID == "" {
		return 0, &ValidationError{Field: "tenant_id", Reason: "both source and target must be non-empty"}
	}
	if fromTenantID == toTenantID {
		return 0, &ValidationError{Field: "tenant_id", Reason: "source and target are the same tenant"}
	}

	var changed int64
	err := r.DB.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Artwork{}).
			Where("tenant_id = ?", fromTenantID).
			Update("tenant_id", toTenantID)
		if result.Error != nil {
			return result.Error
		}
		changed = result.RowsAffected
		return nil
	})
	if err != nil {
		return 0, storeErr(fmt.Sprintf("reassign artworks from %s to %s", fromTenantID, toTenantID), err)
	}
	return changed, nil
}

// CountByTenant counts artworks grouped by tenant id, ordered by tenant id.
// Read-only, always safe to re-run.
func (r *ArtworkRepository) CountByTenant() ([]TenantCount, error) {
	var counts []TenantCount
	err := r.DB.Model(&models.Artwork{}).
		Select("tenant_id, COUNT(*) as count").
		Group("tenant_id").
		Order("tenant_id ASC").
		Scan(&counts).Error
	if err != nil {
		return nil, storeErr("count artworks by tenant", err)
	}
	return counts, nil
}
