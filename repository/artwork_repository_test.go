package repository

import (
	"testing"

	"github.com/camden-git/gallerybackend/database"
	"github.com/camden-git/gallerybackend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedArtwork(t *testing.T, repo *ArtworkRepository, tenantID, title string, year int, createdAt int64) *models.Artwork {
	t.Helper()
	a := &models.Artwork{TenantID: tenantID, Title: title, Year: year, CreatedAt: createdAt}
	require.NoError(t, repo.Create(a))
	return a
}

func TestListByTenantDefaultOrderNewestFirst(t *testing.T) {
	repo := NewArtworkRepository(newTestDB(t))

	seedArtwork(t, repo, "-vqsk", "older", 2021, 100)
	seedArtwork(t, repo, "-vqsk", "newest", 2023, 300)
	seedArtwork(t, repo, "-vqsk", "middle", 2022, 200)
	seedArtwork(t, repo, "-hyunju", "other tenant", 2023, 400)

	artworks, err := repo.ListByTenant("-vqsk", ListOptions{})
	require.NoError(t, err)
	require.Len(t, artworks, 3)
	assert.Equal(t, "newest", artworks[0].Title)
	assert.Equal(t, "middle", artworks[1].Title)
	assert.Equal(t, "older", artworks[2].Title)
}

func TestListByTenantYearFilter(t *testing.T) {
	repo := NewArtworkRepository(newTestDB(t))

	seedArtwork(t, repo, "-vqsk", "a", 2023, 100)
	seedArtwork(t, repo, "-vqsk", "b", 2021, 200)
	seedArtwork(t, repo, "-vqsk", "c", 2023, 300)

	year := 2023
	artworks, err := repo.ListByTenant("-vqsk", ListOptions{Year: &year})
	require.NoError(t, err)
	require.Len(t, artworks, 2)
	for _, a := range artworks {
		assert.Equal(t, 2023, a.Year)
	}
}

func TestListByTenantEmptyTenantYieldsEmptySlice(t *testing.T) {
	repo := NewArtworkRepository(newTestDB(t))

	artworks, err := repo.ListByTenant("-vqsk", ListOptions{})
	require.NoError(t, err)
	assert.Empty(t, artworks)
}

func TestListByTenantNaturalTitleSort(t *testing.T) {
	repo := NewArtworkRepository(newTestDB(t))

	seedArtwork(t, repo, "-vqsk", "Untitled 10", 2023, 100)
	seedArtwork(t, repo, "-vqsk", "Untitled 2", 2023, 200)
	seedArtwork(t, repo, "-vqsk", "Untitled 1", 2023, 300)

	artworks, err := repo.ListByTenant("-vqsk", ListOptions{Sort: database.SortTitleNat})
	require.NoError(t, err)
	require.Len(t, artworks, 3)
	assert.Equal(t, "Untitled 1", artworks[0].Title)
	assert.Equal(t, "Untitled 2", artworks[1].Title)
	assert.Equal(t, "Untitled 10", artworks[2].Title)
}

func TestListByTenantRejectsUnknownSort(t *testing.T) {
	repo := NewArtworkRepository(newTestDB(t))

	_, err := repo.ListByTenant("-vqsk", ListOptions{Sort: "size_desc"})
	require.Error(t, err)
	assert.True(t, IsValidation(err))
}

func TestDistinctYearsDescendingNoDuplicates(t *testing.T) {
	repo := NewArtworkRepository(newTestDB(t))

	for i, year := range []int{2023, 2021, 2023, 2020} {
		seedArtwork(t, repo, "-vqsk", "piece", year, int64(100+i))
	}

	years, err := repo.DistinctYears("-vqsk")
	require.NoError(t, err)
	assert.Equal(t, []int{2023, 2021, 2020}, years)
}

func TestDistinctYearsRecomputedAfterEdits(t *testing.T) {
	repo := NewArtworkRepository(newTestDB(t))

	a := seedArtwork(t, repo, "-vqsk", "only", 2020, 100)
	years, err := repo.DistinctYears("-vqsk")
	require.NoError(t, err)
	assert.Equal(t, []int{2020}, years)

	newYear := 2024
	require.NoError(t, repo.Update(a.ID, ArtworkUpdate{Year: &newYear}))
	years, err = repo.DistinctYears("-vqsk")
	require.NoError(t, err)
	assert.Equal(t, []int{2024}, years)

	require.NoError(t, repo.Delete(a.ID))
	years, err = repo.DistinctYears("-vqsk")
	require.NoError(t, err)
	assert.Empty(t, years)
}

func TestReassignTenantMovesAllRows(t *testing.T) {
	repo := NewArtworkRepository(newTestDB(t))

	seedArtwork(t, repo, "default", "orphan 1", 2020, 100)
	seedArtwork(t, repo, "default", "orphan 2", 2021, 200)
	seedArtwork(t, repo, "-vqsk", "already owned", 2022, 300)

	changed, err := repo.ReassignTenant("default", "-vqsk")
	require.NoError(t, err)
	assert.Equal(t, int64(2), changed)

	source, err := repo.ListByTenant("default", ListOptions{})
	require.NoError(t, err)
	assert.Empty(t, source)

	target, err := repo.ListByTenant("-vqsk", ListOptions{})
	require.NoError(t, err)
	assert.Len(t, target, 3)

	// second run is a no-op
	changed, err = repo.ReassignTenant("default", "-vqsk")
	require.NoError(t, err)
	assert.Equal(t, int64(0), changed)
}

func TestReassignTenantValidation(t *testing.T) {
	repo := NewArtworkRepository(newTestDB(t))

	_, err := repo.ReassignTenant("", "-vqsk")
	assert.True(t, IsValidation(err))

	_, err = repo.ReassignTenant("-vqsk", "-vqsk")
	assert.True(t, IsValidation(err))
}

func TestCountByTenant(t *testing.T) {
	repo := NewArtworkRepository(newTestDB(t))

	seedArtwork(t, repo, "-vqsk", "a", 2023, 100)
	seedArtwork(t, repo, "-vqsk", "b", 2022, 200)
	seedArtwork(t, repo, "-hyunju", "c", 2023, 300)

	counts, err := repo.CountByTenant()
	require.NoError(t, err)
	assert.Equal(t, []TenantCount{
		{TenantID: "-hyunju", Count: 1},
		{TenantID: "-vqsk", Count: 2},
	}, counts)
}

func TestUpdateMissingArtwork(t *testing.T) {
	repo := NewArtworkRepository(newTestDB(t))

	title := "ghost"
	err := repo.Update(999, ArtworkUpdate{Title: &title})
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestSetImagePaths(t *testing.T) {
	repo := NewArtworkRepository(newTestDB(t))

	a := seedArtwork(t, repo, "-vqsk", "piece", 2023, 100)
	full := "artworks/abc.jpg"
	blur := "blur/abc.jpg"
	require.NoError(t, repo.SetImagePaths(a.ID, &full, &blur))

	stored, err := repo.GetByID(a.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.ImagePath)
	require.NotNil(t, stored.BlurImage)
	assert.Equal(t, full, *stored.ImagePath)
	assert.Equal(t, blur, *stored.BlurImage)
}
