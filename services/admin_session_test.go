package services

import (
	"sync"
	"testing"

	"github.com/camden-git/gallerybackend/models"
	"github.com/camden-git/gallerybackend/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// spySettingsRepo counts store calls so tests can assert that invalid
// submissions never reach the store.
type spySettingsRepo struct {
	mu            sync.Mutex
	upsertCalls   int
	passwordCalls int

	upsertErr   error
	passwordErr error
	lastUpdate  repository.SettingsUpdate

	// blockUpsert, when non-nil, makes Upsert wait until the channel closes
	blockUpsert chan struct{}
}

func (s *spySettingsRepo) Get(tenantID string) (*models.Settings, error) {
	return nil, nil
}

func (s *spySettingsRepo) Upsert(tenantID string, update repository.SettingsUpdate) (*models.Settings, error) {
	s.mu.Lock()
	s.upsertCalls++
	s.lastUpdate = update
	block := s.blockUpsert
	err := s.upsertErr
	s.mu.Unlock()

	if block != nil {
		<-block
	}
	if err != nil {
		return nil, err
	}
	return &models.Settings{TenantID: tenantID}, nil
}

func (s *spySettingsRepo) ChangePassword(tenantID, newPassword, confirmPassword string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.passwordCalls++
	return s.passwordErr
}

func (s *spySettingsRepo) ForceUpdate(tenantID string, fields map[string]interface{}) (*models.Settings, *models.Settings, error) {
	return nil, nil, nil
}

func (s *spySettingsRepo) ListTenantIDs() ([]string, error) {
	return nil, nil
}

func (s *spySettingsRepo) counts() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.upsertCalls, s.passwordCalls
}

func strPtr(s string) *string { return &s }

func TestSaveSuccessClearsEditsAndLandsInSaved(t *testing.T) {
	spy := &spySettingsRepo{}
	session := NewAdminSession(spy, "-vqsk")

	session.Edit(repository.SettingsUpdate{GalleryName: strPtr("Gallery VQSK")})
	assert.Equal(t, StateEditing, session.State())

	require.NoError(t, session.Save())
	assert.Equal(t, StateSaved, session.State())
	assert.Nil(t, session.PendingEdits().GalleryName)

	upserts, _ := spy.counts()
	assert.Equal(t, 1, upserts)
}

func TestSaveFailurePreservesEdits(t *testing.T) {
	spy := &spySettingsRepo{upsertErr: &repository.StoreError{Op: "upsert", Err: assert.AnError}}
	session := NewAdminSession(spy, "-vqsk")

	session.Edit(repository.SettingsUpdate{GalleryName: strPtr("Gallery VQSK")})
	err := session.Save()
	require.Error(t, err)

	assert.Equal(t, StateSaveFailed, session.State())
	assert.Error(t, session.SaveError())
	// edits survive so the admin can retry without re-typing
	require.NotNil(t, session.PendingEdits().GalleryName)
	assert.Equal(t, "Gallery VQSK", *session.PendingEdits().GalleryName)

	// retry after the store recovers
	spy.mu.Lock()
	spy.upsertErr = nil
	spy.mu.Unlock()
	require.NoError(t, session.Save())
	assert.Equal(t, StateSaved, session.State())
	assert.Equal(t, "Gallery VQSK", *spy.lastUpdate.GalleryName)
}

func TestSaveSecondTriggerWhileInFlightIsNoOp(t *testing.T) {
	block := make(chan struct{})
	spy := &spySettingsRepo{blockUpsert: block}
	session := NewAdminSession(spy, "-vqsk")

	session.Edit(repository.SettingsUpdate{GalleryName: strPtr("x")})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = session.Save()
	}()

	// wait for the first save to reach the store
	for {
		if upserts, _ := spy.counts(); upserts == 1 {
			break
		}
	}
	assert.Equal(t, StateSaving, session.State())

	// double-submission while saving must not issue a second write
	require.NoError(t, session.Save())
	upserts, _ := spy.counts()
	assert.Equal(t, 1, upserts)

	close(block)
	wg.Wait()
	assert.Equal(t, StateSaved, session.State())
}

func TestResponseAfterCloseIsDiscarded(t *testing.T) {
	block := make(chan struct{})
	spy := &spySettingsRepo{blockUpsert: block}
	session := NewAdminSession(spy, "-vqsk")

	session.Edit(repository.SettingsUpdate{GalleryName: strPtr("x")})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = session.Save()
	}()
	for {
		if upserts, _ := spy.counts(); upserts == 1 {
			break
		}
	}

	session.Close()
	close(block)
	wg.Wait()

	// the late response must not mutate the closed session's state
	assert.Equal(t, StateSaving, session.State())
	assert.Nil(t, session.LastSaved())
}

func TestChangePasswordMismatchNeverReachesStore(t *testing.T) {
	spy := &spySettingsRepo{}
	session := NewAdminSession(spy, "-vqsk")

	err := session.ChangePassword("hunter22", "hunter23")
	require.Error(t, err)

	assert.Equal(t, PasswordStateFailed, session.PasswordState())
	reason, _ := session.PasswordFailure()
	assert.Equal(t, PasswordFailureMismatch, reason)

	_, passwordCalls := spy.counts()
	assert.Equal(t, 0, passwordCalls)

	// inputs are preserved for correction
	newPw, confirmPw := session.PasswordInputs()
	assert.Equal(t, "hunter22", newPw)
	assert.Equal(t, "hunter23", confirmPw)
}

func TestChangePasswordEmptyNeverReachesStore(t *testing.T) {
	spy := &spySettingsRepo{}
	session := NewAdminSession(spy, "-vqsk")

	err := session.ChangePassword("", "")
	require.Error(t, err)

	reason, _ := session.PasswordFailure()
	assert.Equal(t, PasswordFailureEmpty, reason)
	_, passwordCalls := spy.counts()
	assert.Equal(t, 0, passwordCalls)
}

func TestChangePasswordSuccessClearsInputs(t *testing.T) {
	spy := &spySettingsRepo{}
	session := NewAdminSession(spy, "-vqsk")

	require.NoError(t, session.ChangePassword("hunter22", "hunter22"))

	assert.Equal(t, PasswordStateChanged, session.PasswordState())
	newPw, confirmPw := session.PasswordInputs()
	assert.Empty(t, newPw)
	assert.Empty(t, confirmPw)

	_, passwordCalls := spy.counts()
	assert.Equal(t, 1, passwordCalls)
}

func TestChangePasswordStoreFailurePreservesInputs(t *testing.T) {
	spy := &spySettingsRepo{passwordErr: &repository.StoreError{Op: "change password", Err: assert.AnError}}
	session := NewAdminSession(spy, "-vqsk")

	err := session.ChangePassword("hunter22", "hunter22")
	require.Error(t, err)

	assert.Equal(t, PasswordStateFailed, session.PasswordState())
	reason, reasonErr := session.PasswordFailure()
	assert.Equal(t, PasswordFailureStore, reason)
	assert.Error(t, reasonErr)

	newPw, _ := session.PasswordInputs()
	assert.Equal(t, "hunter22", newPw)
}

func TestSessionManagerReturnsSameSessionPerTenant(t *testing.T) {
	manager := NewSessionManager(&spySettingsRepo{})

	a := manager.Session("-vqsk")
	b := manager.Session("-vqsk")
	c := manager.Session("-hyunju")

	assert.Same(t, a, b)
	assert.NotSame(t, a, c)
	assert.Equal(t, "-vqsk", a.TenantID())
	assert.Equal(t, "-hyunju", c.TenantID())
}
