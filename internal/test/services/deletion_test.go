package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"site-admin-backend/internal/apperr"
	"site-admin-backend/internal/models"
	"site-admin-backend/internal/services"
)

func registerFoo(t *testing.T, e *env, logo *string) *models.Site {
	t.Helper()
	req := fooRequest()
	req.LogoImage = logo
	site, err := e.registration.RegisterSite(context.Background(), req)
	require.NoError(t, err)
	return site
}

func TestDeleteSite_WithLogo(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	logo, err := e.images.UploadImage(ctx, pngUpload())
	require.NoError(t, err)
	path := onlyDetail(t, e)

	site := registerFoo(t, e, &logo.FileID)
	e.store.SeedEvent(models.SiteEvent{SiteSeq: site.ID, Name: "Launch"})
	e.counts.Set(ctx, services.SiteCountsKey, map[string]int{"all": 1})

	require.NoError(t, e.deletion.DeleteSite(ctx, site.ID))

	sites, infos, promos, events, files, details := e.store.Len()
	assert.Zero(t, sites)
	assert.Zero(t, infos)
	assert.Zero(t, promos)
	assert.Zero(t, events)
	assert.Zero(t, files)
	assert.Zero(t, details)
	assert.False(t, e.bucket.Has(path))

	_, cached := e.counts.Get(ctx, services.SiteCountsKey)
	assert.False(t, cached)
}

func TestDeleteSite_WithoutLogoMakesNoStorageCall(t *testing.T) {
	e := newEnv()
	site := registerFoo(t, e, nil)

	require.NoError(t, e.deletion.DeleteSite(context.Background(), site.ID))

	assert.Zero(t, e.bucket.Removes())
	assert.Zero(t, e.store.Calls("GetStoredFileDetail"))
	assert.Equal(t, 0, e.store.CountSitesNamed("Foo"))
}

func TestDeleteSite_LogoCleanupFailureStillDeletesSite(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	logo, err := e.images.UploadImage(ctx, pngUpload())
	require.NoError(t, err)
	site := registerFoo(t, e, &logo.FileID)
	e.bucket.RemoveErr = errors.New("remove failed")

	require.NoError(t, e.deletion.DeleteSite(ctx, site.ID))

	assert.Equal(t, 0, e.store.CountSitesNamed("Foo"))
	_, _, _, _, files, _ := e.store.Len()
	assert.Equal(t, 1, files, "metadata stays with the blob it describes")
}

func TestDeleteSite_EventThumbnailsAreRetained(t *testing.T) {
	e := newEnv()
	thumb := e.store.SeedFile("https://cdn.test/t.png", "images/t.png")
	e.bucket.Put("images/t.png", pngBytes)
	site := registerFoo(t, e, nil)
	e.store.SeedEvent(models.SiteEvent{SiteSeq: site.ID, ThumbnailImage: &thumb.ID})

	require.NoError(t, e.deletion.DeleteSite(context.Background(), site.ID))

	_, _, _, events, files, _ := e.store.Len()
	assert.Zero(t, events)
	assert.Equal(t, 1, files)
	assert.True(t, e.bucket.Has("images/t.png"))
}

func TestDeleteSite_UnknownSite(t *testing.T) {
	e := newEnv()

	err := e.deletion.DeleteSite(context.Background(), "00000000-0000-0000-0000-000000000000")
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	assert.Zero(t, e.store.Calls("DeleteSite"))
}

func TestPreviewDeletion(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	logo := e.store.SeedFile("https://cdn.test/logo.png", "images/logo.png")
	thumb := e.store.SeedFile("https://cdn.test/t.png", "images/t.png")

	site := registerFoo(t, e, &logo.ID)
	e.store.SeedEvent(models.SiteEvent{SiteSeq: site.ID, ThumbnailImage: &thumb.ID})
	e.store.SeedEvent(models.SiteEvent{SiteSeq: site.ID, ThumbnailImage: &thumb.ID})
	e.store.SeedEvent(models.SiteEvent{SiteSeq: site.ID})

	p, err := e.deletion.PreviewDeletion(ctx, site.ID)
	require.NoError(t, err)

	assert.Equal(t, site.ID, p.Site.ID)
	assert.True(t, p.HasOperationalInfo)
	assert.Equal(t, 1, p.PromotionCount)
	assert.Equal(t, 3, p.EventCount)
	require.NotNil(t, p.Logo)
	assert.Equal(t, logo.ID, p.Logo.ID)
	assert.Equal(t, []string{thumb.ID}, p.RetainedThumbnails)
	assert.Empty(t, p.Warnings)

	assert.Equal(t, 1, e.store.CountSitesNamed("Foo"), "preview does not mutate")
	assert.Zero(t, e.bucket.Removes())
}

func TestPreviewDeletion_ChildFailuresBecomeWarnings(t *testing.T) {
	e := newEnv()
	site := registerFoo(t, e, nil)
	e.store.FailOn("ListEvents", nil)
	e.store.FailOn("ListPromotions", nil)

	p, err := e.deletion.PreviewDeletion(context.Background(), site.ID)
	require.NoError(t, err)
	assert.Len(t, p.Warnings, 2)
	assert.Zero(t, p.EventCount)
	assert.Empty(t, p.RetainedThumbnails)
}
