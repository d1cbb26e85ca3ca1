package services

import (
	"sync"

	"github.com/camden-git/gallerybackend/models"
	"github.com/camden-git/gallerybackend/repository"
)

// Save workflow states.
const (
	StateIdle       = "idle"
	StateEditing    = "editing"
	StateSaving     = "saving"
	StateSaved      = "saved"
	StateSaveFailed = "save_failed"
)

// Password-change workflow states, independent of the save states.
const (
	PasswordStateIdle     = "idle"
	PasswordStateChanging = "changing"
	PasswordStateChanged  = "changed"
	PasswordStateFailed   = "change_failed"
)

// Password-change failure reasons, categorized for user-facing messaging.
const (
	PasswordFailureNone     = ""
	PasswordFailureEmpty    = "empty"
	PasswordFailureMismatch = "mismatch"
	PasswordFailureStore    = "store_error"
)

// AdminSession orchestrates one admin editing session for a single tenant:
// settings edit/save and credential rotation. It validates inputs before any
// store call, allows only one save or password change in flight at a time,
// and preserves edited fields when a write fails so the admin can retry
// without re-typing.
type AdminSession struct {
	mu           sync.Mutex
	settingsRepo repository.SettingsRepositoryInterface
	tenantID     string

	state    string
	edits    repository.SettingsUpdate
	lastSave *models.Settings
	saveErr  error

	passwordState   string
	passwordFailure string
	passwordErr     error
	newPassword     string
	confirmPassword string

	closed bool
}

// NewAdminSession creates a session bound to one tenant.
func NewAdminSession(settingsRepo repository.SettingsRepositoryInterface, tenantID string) *AdminSession {
	return &AdminSession{
		settingsRepo:  settingsRepo,
		tenantID:      tenantID,
		state:         StateIdle,
		passwordState: PasswordStateIdle,
	}
}

// TenantID returns the tenant this session edits.
func (s *AdminSession) TenantID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tenantID
}

// State returns the current save-workflow state.
func (s *AdminSession) State() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// SaveError returns the error carried by a SaveFailed state, nil otherwise.
func (s *AdminSession) SaveError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveErr
}

// LastSaved returns the record returned by the most recent successful save.
func (s *AdminSession) LastSaved() *models.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSave
}

// PendingEdits returns the locally edited field set not yet saved.
func (s *AdminSession) PendingEdits() repository.SettingsUpdate {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.edits
}

// PasswordState returns the current password-workflow state.
func (s *AdminSession) PasswordState() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.passwordState
}

// PasswordFailure returns the categorized reason of the last password-change
// failure: empty, mismatch, or store_error.
func (s *AdminSession) PasswordFailure() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.passwordFailure, s.passwordErr
}

// Edit merges the supplied fields into the session's local edit set and
// moves the save workflow to Editing. No store call happens here.
func (s *AdminSession) Edit(update repository.SettingsUpdate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.state == StateSaving {
		return
	}
	mergeUpdate(&s.edits, update)
	s.state = StateEditing
}

func mergeUpdate(dst *repository.SettingsUpdate, src repository.SettingsUpdate) {
	if src.GalleryName != nil {
		dst.GalleryName = src.GalleryName
	}
	if src.GalleryNameEn != nil {
		dst.GalleryNameEn = src.GalleryNameEn
	}
	if src.ArtistName != nil {
		dst.ArtistName = src.ArtistName
	}
	if src.SiteTitle != nil {
		dst.SiteTitle = src.SiteTitle
	}
	if src.SiteDescription != nil {
		dst.SiteDescription = src.SiteDescription
	}
	if src.ProfileImage != nil {
		dst.ProfileImage = src.ProfileImage
	}
	if src.AboutImage != nil {
		dst.AboutImage = src.AboutImage
	}
}

// Save pushes the locally edited field set to the store. A second trigger
// while a save is already in flight is a no-op, so rapid double-submission
// cannot issue duplicate writes. On failure the edits are preserved and the
// session lands in SaveFailed carrying the error; on success the edit set is
// cleared and the session lands in Saved.
func (s *AdminSession) Save() error {
	s.mu.Lock()
	if s.closed || s.state == StateSaving {
		s.mu.Unlock()
		return nil
	}
	s.state = StateSaving
	edits := s.edits
	tenantID := s.tenantID
	s.mu.Unlock()

	saved, err := s.settingsRepo.Upsert(tenantID, edits)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		// session is gone; the response is discarded
		return nil
	}
	if err != nil {
		s.state = StateSaveFailed
		s.saveErr = err
		return err
	}
	s.state = StateSaved
	s.saveErr = nil
	s.lastSave = saved
	s.edits = repository.SettingsUpdate{}
	return nil
}

// ChangePassword validates the two password inputs and, only if they are
// non-empty and equal, rotates the credential. Validation happens here, not
// in the repository call path, so an invalid submission never costs a store
// round-trip. Inputs are cleared on success and preserved on failure.
func (s *AdminSession) ChangePassword(newPassword, confirmPassword string) error {
	s.mu.Lock()
	if s.closed || s.passwordState == PasswordStateChanging {
		s.mu.Unlock()
		return nil
	}
	s.newPassword = newPassword
	s.confirmPassword = confirmPassword

	if newPassword == "" || confirmPassword == "" {
		s.passwordState = PasswordStateFailed
		s.passwordFailure = PasswordFailureEmpty
		s.passwordErr = &repository.ValidationError{Field: "password", Reason: "must not be empty"}
		err := s.passwordErr
		s.mu.Unlock()
		return err
	}
	if newPassword != confirmPassword {
		s.passwordState = PasswordStateFailed
		s.passwordFailure = PasswordFailureMismatch
		s.passwordErr = &repository.ValidationError{Field: "password", Reason: "confirmation does not match"}
		err := s.passwordErr
		s.mu.Unlock()
		return err
	}

	s.passwordState = PasswordStateChanging
	tenantID := s.tenantID
	s.mu.Unlock()

	err := s.settingsRepo.ChangePassword(tenantID, newPassword, confirmPassword)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	if err != nil {
		s.passwordState = PasswordStateFailed
		s.passwordFailure = PasswordFailureStore
		s.passwordErr = err
		return err
	}
	s.passwordState = PasswordStateChanged
	s.passwordFailure = PasswordFailureNone
	s.passwordErr = nil
	s.newPassword = ""
	s.confirmPassword = ""
	return nil
}

// PasswordInputs returns the retained input values. They survive a failed
// change so the admin does not re-type them.
func (s *AdminSession) PasswordInputs() (string, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.newPassword, s.confirmPassword
}

// Close abandons the session. In-flight store calls are not cancelled; their
// responses are discarded when they complete.
func (s *AdminSession) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

// SessionManager hands out one AdminSession per tenant so the HTTP layer
// gets the same single-in-flight guarantees across requests.
type SessionManager struct {
	mu           sync.Mutex
	settingsRepo repository.SettingsRepositoryInterface
	sessions     map[string]*AdminSession
}

// NewSessionManager creates an empty manager over the settings repository.
func NewSessionManager(settingsRepo repository.SettingsRepositoryInterface) *SessionManager {
	return &SessionManager{
		settingsRepo: settingsRepo,
		sessions:     make(map[string]*AdminSession),
	}
}

// Session returns the tenant's session, creating it on first use.
func (m *SessionManager) Session(tenantID string) *AdminSession {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[tenantID]; ok {
		return s
	}
	s := NewAdminSession(m.settingsRepo, tenantID)
	m.sessions[tenantID] = s
	return s
}
