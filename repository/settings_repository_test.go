package repository

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/camden-git/gallerybackend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	// named in-memory database so every test gets its own isolated store
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Settings{}, &models.Artwork{}))
	return db
}

func strPtr(s string) *string { return &s }

func TestSettingsGetAbsentIsNotAnError(t *testing.T) {
	repo := NewSettingsRepository(newTestDB(t), "")

	settings, err := repo.Get("-vqsk")
	require.NoError(t, err)
	assert.Nil(t, settings)
}

func TestSettingsUpsertCreatesRecordWithTimestamp(t *testing.T) {
	repo := NewSettingsRepository(newTestDB(t), "")

	before := time.Now().Unix()
	settings, err := repo.Upsert("-vqsk", SettingsUpdate{
		GalleryName: strPtr("Gallery VQSK"),
		SiteTitle:   strPtr("VQSK"),
	})
	require.NoError(t, err)
	require.NotNil(t, settings)

	assert.Equal(t, "-vqsk", settings.TenantID)
	assert.Equal(t, "Gallery VQSK", settings.GalleryName)
	assert.Equal(t, "VQSK", settings.SiteTitle)
	assert.GreaterOrEqual(t, settings.UpdatedAt, before)

	stored, err := repo.Get("-vqsk")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, settings.UpdatedAt, stored.UpdatedAt)
}

func TestSettingsUpsertMergesFields(t *testing.T) {
	repo := NewSettingsRepository(newTestDB(t), "")

	_, err := repo.Upsert("-vqsk", SettingsUpdate{
		GalleryName: strPtr("Gallery VQSK"),
		ArtistName:  strPtr("Kim"),
	})
	require.NoError(t, err)

	updated, err := repo.Upsert("-vqsk", SettingsUpdate{
		SiteTitle: strPtr("New Title"),
	})
	require.NoError(t, err)

	// untouched fields survive the merge
	assert.Equal(t, "Gallery VQSK", updated.GalleryName)
	assert.Equal(t, "Kim", updated.ArtistName)
	assert.Equal(t, "New Title", updated.SiteTitle)
}

func TestSettingsUpsertClearsNullableFieldOnEmptyString(t *testing.T) {
	repo := NewSettingsRepository(newTestDB(t), "")

	_, err := repo.Upsert("-vqsk", SettingsUpdate{
		SiteDescription: strPtr("paintings and prints"),
	})
	require.NoError(t, err)

	updated, err := repo.Upsert("-vqsk", SettingsUpdate{
		SiteDescription: strPtr(""),
	})
	require.NoError(t, err)
	assert.Nil(t, updated.SiteDescription)
}

func TestSettingsUpsertRejectsEmptyTenant(t *testing.T) {
	repo := NewSettingsRepository(newTestDB(t), "")

	_, err := repo.Upsert("", SettingsUpdate{GalleryName: strPtr("x")})
	require.Error(t, err)
	assert.True(t, IsValidation(err))
}

func TestSettingsUpsertRejectsSentinelWhenMainTenantConfigured(t *testing.T) {
	repo := NewSettingsRepository(newTestDB(t), "-vqsk")

	_, err := repo.Upsert("default", SettingsUpdate{GalleryName: strPtr("x")})
	require.Error(t, err)
	assert.True(t, IsValidation(err))

	// without a configured main tenant, the placeholder is a legal target
	open := NewSettingsRepository(newTestDB(t), "")
	_, err = open.Upsert("default", SettingsUpdate{GalleryName: strPtr("x")})
	assert.NoError(t, err)
}

func TestChangePasswordDoesNotTouchOtherFields(t *testing.T) {
	repo := NewSettingsRepository(newTestDB(t), "")

	created, err := repo.Upsert("-vqsk", SettingsUpdate{
		GalleryName: strPtr("Gallery VQSK"),
		ArtistName:  strPtr("Kim"),
	})
	require.NoError(t, err)

	require.NoError(t, repo.ChangePassword("-vqsk", "hunter22", "hunter22"))

	after, err := repo.Get("-vqsk")
	require.NoError(t, err)
	require.NotNil(t, after)
	assert.Equal(t, created.GalleryName, after.GalleryName)
	assert.Equal(t, created.ArtistName, after.ArtistName)
	assert.NotEmpty(t, after.PasswordHash)
	assert.True(t, after.CheckPassword("hunter22"))
	assert.False(t, after.CheckPassword("wrong"))
}

func TestChangePasswordValidation(t *testing.T) {
	repo := NewSettingsRepository(newTestDB(t), "")

	err := repo.ChangePassword("-vqsk", "a", "b")
	require.Error(t, err)
	assert.True(t, IsValidation(err))

	err = repo.ChangePassword("-vqsk", "", "")
	require.Error(t, err)
	assert.True(t, IsValidation(err))
}

func TestChangePasswordMissingTenant(t *testing.T) {
	repo := NewSettingsRepository(newTestDB(t), "")

	err := repo.ChangePassword("-hyunju", "pw", "pw")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestForceUpdateReturnsBeforeAndAfter(t *testing.T) {
	repo := NewSettingsRepository(newTestDB(t), "")

	_, err := repo.Upsert("-vqsk", SettingsUpdate{SiteTitle: strPtr("Old Title")})
	require.NoError(t, err)

	before, after, err := repo.ForceUpdate("-vqsk", map[string]interface{}{
		"site_title": "Corrected Title",
	})
	require.NoError(t, err)
	assert.Equal(t, "Old Title", before.SiteTitle)
	assert.Equal(t, "Corrected Title", after.SiteTitle)
}

func TestForceUpdateRejectsUnknownColumn(t *testing.T) {
	repo := NewSettingsRepository(newTestDB(t), "")

	_, _, err := repo.ForceUpdate("-vqsk", map[string]interface{}{
		"password_hash": "nope",
	})
	require.Error(t, err)
	assert.True(t, IsValidation(err))
}

func TestListTenantIDs(t *testing.T) {
	repo := NewSettingsRepository(newTestDB(t), "")

	_, err := repo.Upsert("-vqsk", SettingsUpdate{})
	require.NoError(t, err)
	_, err = repo.Upsert("-hyunju", SettingsUpdate{})
	require.NoError(t, err)

	ids, err := repo.ListTenantIDs()
	require.NoError(t, err)
	assert.Equal(t, []string{"-hyunju", "-vqsk"}, ids)
}
