package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/camden-git/gallerybackend/media"
	"github.com/camden-git/gallerybackend/repository"
	"github.com/camden-git/gallerybackend/services"
	"github.com/camden-git/gallerybackend/tenant"
)

// SettingsHandler exposes the admin settings surface: read, save, password
// rotation, and profile imagery upload. Saves and password changes go
// through the per-tenant AdminSession so rapid double-submission cannot
// issue duplicate writes.
type SettingsHandler struct {
	SettingsRepo   repository.SettingsRepositoryInterface
	Sessions       *services.SessionManager
	MediaProcessor *media.Processor
	MainTenantID   string
}

func NewSettingsHandler(settingsRepo repository.SettingsRepositoryInterface, sessions *services.SessionManager, mediaProcessor *media.Processor, mainTenantID string) *SettingsHandler {
	return &SettingsHandler{
		SettingsRepo:   settingsRepo,
		Sessions:       sessions,
		MediaProcessor: mediaProcessor,
		MainTenantID:   mainTenantID,
	}
}

func (h *SettingsHandler) effectiveTenant(r *http.Request) string {
	return tenant.Resolve(r.URL.Query().Get("tenant"), h.MainTenantID)
}

// GetSettings returns the tenant's settings record. A tenant with no record
// yet is a 404, distinct from a record with empty fields.
func (h *SettingsHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	tenantID := h.effectiveTenant(r)

	settings, err := h.SettingsRepo.Get(tenantID)
	if err != nil {
		WriteRepositoryError(w, err)
		return
	}
	if settings == nil {
		WriteAPIError(w, http.StatusNotFound, "not_found", "no settings record for tenant "+tenantID)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

// SettingsUpdatePayload carries the fields a save may change. Absent fields
// are left untouched.
type SettingsUpdatePayload struct {
	GalleryName     *string `json:"gallery_name,omitempty"`
	GalleryNameEn   *string `json:"gallery_name_en,omitempty"`
	ArtistName      *string `json:"artist_name,omitempty"`
	SiteTitle       *string `json:"site_title,omitempty"`
	SiteDescription *string `json:"site_description,omitempty"`
	ProfileImage    *string `json:"profile_image,omitempty"`
	AboutImage      *string `json:"about_image,omitempty"`
}

func (p SettingsUpdatePayload) toUpdate() repository.SettingsUpdate {
	return repository.SettingsUpdate{
		GalleryName:     p.GalleryName,
		GalleryNameEn:   p.GalleryNameEn,
		ArtistName:      p.ArtistName,
		SiteTitle:       p.SiteTitle,
		SiteDescription: p.SiteDescription,
		ProfileImage:    p.ProfileImage,
		AboutImage:      p.AboutImage,
	}
}

// SettingsSaveResponse reports the workflow state the save landed in along
// with the record as persisted.
type SettingsSaveResponse struct {
	State    string      `json:"state"`
	Settings interface{} `json:"settings,omitempty"`
}

// UpdateSettings merges the submitted fields into the tenant's settings via
// the session workflow (upsert semantics: a first save creates the record).
func (h *SettingsHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	tenantID := h.effectiveTenant(r)

	var payload SettingsUpdatePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_payload", "invalid request payload: "+err.Error())
		return
	}

	session := h.Sessions.Session(tenantID)
	session.Edit(payload.toUpdate())
	if err := session.Save(); err != nil {
		WriteRepositoryError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, SettingsSaveResponse{
		State:    session.State(),
		Settings: session.LastSaved(),
	})
}

type PasswordChangePayload struct {
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

// PasswordChangeResponse carries the terminal workflow state and, on
// failure, the categorized reason for user-facing messaging.
type PasswordChangeResponse struct {
	State  string `json:"state"`
	Reason string `json:"reason,omitempty"`
}

// ChangePassword rotates the tenant credential. Empty or mismatched inputs
// are rejected in the workflow before any store call happens.
func (h *SettingsHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	tenantID := h.effectiveTenant(r)

	var payload PasswordChangePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_payload", "invalid request payload: "+err.Error())
		return
	}

	session := h.Sessions.Session(tenantID)
	err := session.ChangePassword(payload.NewPassword, payload.ConfirmPassword)
	state := session.PasswordState()
	reason, _ := session.PasswordFailure()

	if err != nil {
		status := http.StatusBadRequest
		if reason == services.PasswordFailureStore {
			status = http.StatusBadGateway
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(PasswordChangeResponse{State: state, Reason: reason})
		return
	}

	writeJSON(w, http.StatusOK, PasswordChangeResponse{State: state})
}

// UploadSettingsImage accepts a multipart image for the profile or about
// slot (?slot=profile|about), processes it, and saves the reference through
// the session workflow.
func (h *SettingsHandler) UploadSettingsImage(w http.ResponseWriter, r *http.Request) {
	tenantID := h.effectiveTenant(r)

	slot := r.URL.Query().Get("slot")
	if slot != "profile" && slot != "about" {
		WriteAPIError(w, http.StatusBadRequest, "invalid_slot", "slot must be 'profile' or 'about'")
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

	savedPath, err := h.MediaProcessor.ProcessProfileImage(file)
	if err != nil {
		WriteAPIError(w, http.StatusInternalServerError, "processing_failed", err.Error())
		return
	}

	update := repository.SettingsUpdate{}
	if slot == "profile" {
		update.ProfileImage = &savedPath
	} else {
		update.AboutImage = &savedPath
	}

	session := h.Sessions.Session(tenantID)
	session.Edit(update)
	if err := session.Save(); err != nil {
		WriteRepositoryError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, SettingsSaveResponse{
		State:    session.State(),
		Settings: session.LastSaved(),
	})
}
