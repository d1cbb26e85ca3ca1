package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/camden-git/gallerybackend/media"
	"github.com/camden-git/gallerybackend/models"
	"github.com/camden-git/gallerybackend/repository"
	"github.com/camden-git/gallerybackend/tenant"
	"github.com/camden-git/gallerybackend/utils"
	"github.com/go-chi/chi/v5"
)

// ArtworkHandler exposes tenant-scoped artwork CRUD, year browsing, and
// image upload.
type ArtworkHandler struct {
	ArtworkRepo    repository.ArtworkRepositoryInterface
	MediaProcessor *media.Processor
	MediaStore     media.Store
	MainTenantID   string
}

func NewArtworkHandler(artworkRepo repository.ArtworkRepositoryInterface, mediaProcessor *media.Processor, mediaStore media.Store, mainTenantID string) *ArtworkHandler {
	return &ArtworkHandler{
		ArtworkRepo:    artworkRepo,
		MediaProcessor: mediaProcessor,
		MediaStore:     mediaStore,
		MainTenantID:   mainTenantID,
	}
}

func (h *ArtworkHandler) effectiveTenant(r *http.Request) string {
	return tenant.Resolve(r.URL.Query().Get("tenant"), h.MainTenantID)
}

func artworkIDFromURL(r *http.Request) (uint, error) {
	idStr := chi.URLParam(r, "artwork_id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}

// ListArtworks returns the tenant's artworks, optionally restricted to one
// year (?year=) and re-ordered (?sort=). An empty tenant yields [].
func (h *ArtworkHandler) ListArtworks(w http.ResponseWriter, r *http.Request) {
	tenantID := h.effectiveTenant(r)

	opts := repository.ListOptions{Sort: r.URL.Query().Get("sort")}
	if yearStr := r.URL.Query().Get("year"); yearStr != "" {
		year, err := strconv.Atoi(yearStr)
		if err != nil {
			WriteAPIError(w, http.StatusBadRequest, "invalid_year", "year must be an integer")
			return
		}
		opts.Year = &year
	}

	artworks, err := h.ArtworkRepo.ListByTenant(tenantID, opts)
	if err != nil {
		WriteRepositoryError(w, err)
		return
	}
	if artworks == nil {
		artworks = []models.Artwork{}
	}
	writeJSON(w, http.StatusOK, artworks)
}

// ListYears returns the distinct years present among the tenant's artworks,
// newest first. It is derived from the rows on every call so year tabs never
// drift from the data.
func (h *ArtworkHandler) ListYears(w http.ResponseWriter, r *http.Request) {
	tenantID := h.effectiveTenant(r)

	years, err := h.ArtworkRepo.DistinctYears(tenantID)
	if err != nil {
		WriteRepositoryError(w, err)
		return
	}
	if years == nil {
		years = []int{}
	}
	writeJSON(w, http.StatusOK, years)
}

type ArtworkCreatePayload struct {
	Title       string `json:"title"`
	Year        int    `json:"year"`
	Month       *int   `json:"month,omitempty"`
	Medium      string `json:"medium"`
	Dimensions  string `json:"dimensions"`
	Description string `json:"description"`
}

// CreateArtwork adds an artwork under the effective tenant.
func (h *ArtworkHandler) CreateArtwork(w http.ResponseWriter, r *http.Request) {
	tenantID := h.effectiveTenant(r)

	var payload ArtworkCreatePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_payload", "invalid request payload: "+err.Error())
		return
	}
	if payload.Title == "" {
		WriteAPIError(w, http.StatusBadRequest, "validation_error", "title must not be empty")
		return
	}

	artwork := &models.Artwork{
		TenantID:    tenantID,
		Title:       payload.Title,
		Year:        payload.Year,
		Month:       payload.Month,
		Medium:      payload.Medium,
		Dimensions:  payload.Dimensions,
		Description: payload.Description,
	}
	if err := h.ArtworkRepo.Create(artwork); err != nil {
		WriteRepositoryError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, artwork)
}

// GetArtwork returns one artwork by id.
func (h *ArtworkHandler) GetArtwork(w http.ResponseWriter, r *http.Request) {
	id, err := artworkIDFromURL(r)
	if err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_id", "artwork id must be an integer")
		return
	}

	artwork, err := h.ArtworkRepo.GetByID(id)
	if err != nil {
		WriteRepositoryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, artwork)
}

type ArtworkUpdatePayload struct {
	Title       *string `json:"title,omitempty"`
	Year        *int    `json:"year,omitempty"`
	Month       *int    `json:"month,omitempty"`
	Medium      *string `json:"medium,omitempty"`
	Dimensions  *string `json:"dimensions,omitempty"`
	Description *string `json:"description,omitempty"`
}

// UpdateArtwork edits an artwork's descriptive fields.
func (h *ArtworkHandler) UpdateArtwork(w http.ResponseWriter, r *http.Request) {
	id, err := artworkIDFromURL(r)
	if err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_id", "artwork id must be an integer")
		return
	}

	var payload ArtworkUpdatePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_payload", "invalid request payload: "+err.Error())
		return
	}

	update := repository.ArtworkUpdate{
		Title:       payload.Title,
		Year:        payload.Year,
		Month:       payload.Month,
		Medium:      payload.Medium,
		Dimensions:  payload.Dimensions,
		Description: payload.Description,
	}
	if err := h.ArtworkRepo.Update(id, update); err != nil {
		WriteRepositoryError(w, err)
		return
	}

	artwork, err := h.ArtworkRepo.GetByID(id)
	if err != nil {
		WriteRepositoryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, artwork)
}

// DeleteArtwork removes an artwork and best-effort deletes its stored
// images.
func (h *ArtworkHandler) DeleteArtwork(w http.ResponseWriter, r *http.Request) {
	id, err := artworkIDFromURL(r)
	if err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_id", "artwork id must be an integer")
		return
	}

	artwork, err := h.ArtworkRepo.GetByID(id)
	if err != nil {
		WriteRepositoryError(w, err)
		return
	}

	if err := h.ArtworkRepo.Delete(id); err != nil {
		WriteRepositoryError(w, err)
		return
	}

	for _, path := range []*string{artwork.ImagePath, artwork.BlurImage} {
		if path == nil {
			continue
		}
		if err := h.MediaStore.Delete(*path); err != nil {
			log.Printf("Warning: failed to delete stored asset %s: %v", *path, err)
		}
	}

	w.WriteHeader(http.StatusNoContent)
}

// UploadArtworkImage accepts a multipart image, stores the full-size copy
// and blur placeholder, and updates the artwork's media references. When the
// artwork has no year yet and the image carries an EXIF capture time, the
// year is prefilled from it.
func (h *ArtworkHandler) UploadArtworkImage(w http.ResponseWriter, r *http.Request) {
	id, err := artworkIDFromURL(r)
	if err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_id", "artwork id must be an integer")
		return
	}

	artwork, err := h.ArtworkRepo.GetByID(id)
	if err != nil {
		WriteRepositoryError(w, err)
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_upload", "missing 'image' form file: "+err.Error())
		return
	}
	defer file.Close()

	if !media.IsRasterImage(header.Filename) {
		WriteAPIError(w, http.StatusBadRequest, "unsupported_type", "uploaded file is not a supported image type")
		return
	}

	meta, err := utils.GetCaptureMetadata(file)
	if err != nil {
		WriteAPIError(w, http.StatusInternalServerError, "processing_failed", err.Error())
		return
	}
	if _, err := file.Seek(0, 0); err != nil {
		WriteAPIError(w, http.StatusInternalServerError, "processing_failed", "failed to rewind upload: "+err.Error())
		return
	}

	fullPath, blurPath, err := h.MediaProcessor.ProcessArtwork(file)
	if err != nil {
		WriteAPIError(w, http.StatusInternalServerError, "processing_failed", err.Error())
		return
	}

	oldFull, oldBlur := artwork.ImagePath, artwork.BlurImage
	if err := h.ArtworkRepo.SetImagePaths(id, &fullPath, &blurPath); err != nil {
		WriteRepositoryError(w, err)
		return
	}

	if artwork.Year == 0 {
		if year := meta.CaptureYear(); year != nil {
			if err := h.ArtworkRepo.Update(id, repository.ArtworkUpdate{Year: year}); err != nil {
				log.Printf("Warning: failed to prefill year for artwork %d: %v", id, err)
			}
		}
	}

	for _, path := range []*string{oldFull, oldBlur} {
		if path == nil {
			continue
		}
		if err := h.MediaStore.Delete(*path); err != nil {
			log.Printf("Warning: failed to delete replaced asset %s: %v", *path, err)
		}
	}

	artwork, err = h.ArtworkRepo.GetByID(id)
	if err != nil {
		WriteRepositoryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, artwork)
}
