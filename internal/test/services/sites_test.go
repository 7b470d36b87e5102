package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"site-admin-backend/internal/apperr"
	"site-admin-backend/internal/models"
	"site-admin-backend/internal/services"
)

func TestUpdateSite_ReplacingLogoDeletesPrevious(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	oldLogo, err := e.images.UploadImage(ctx, pngUpload())
	require.NoError(t, err)
	oldPath := onlyDetail(t, e)
	newLogo, err := e.images.UploadImage(ctx, pngUpload())
	require.NoError(t, err)
	site := registerFoo(t, e, &oldLogo.FileID)

	updated, err := e.sites.UpdateSite(ctx, site.ID, models.SitePatch{LogoImage: &newLogo.FileID})
	require.NoError(t, err)
	require.NotNil(t, updated.LogoImage)
	assert.Equal(t, newLogo.FileID, *updated.LogoImage)

	assert.False(t, e.bucket.Has(oldPath))
	_, stillThere := e.store.Files[oldLogo.FileID]
	assert.False(t, stillThere)
	_, kept := e.store.Files[newLogo.FileID]
	assert.True(t, kept)
}

func TestUpdateSite_ClearLogo(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	logo, err := e.images.UploadImage(ctx, pngUpload())
	require.NoError(t, err)
	site := registerFoo(t, e, &logo.FileID)

	updated, err := e.sites.UpdateSite(ctx, site.ID, models.SitePatch{ClearLogo: true})
	require.NoError(t, err)
	assert.Nil(t, updated.LogoImage)
	assert.Empty(t, e.store.Files)
}

func TestUpdateSite_SameLogoIsKept(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	logo, err := e.images.UploadImage(ctx, pngUpload())
	require.NoError(t, err)
	site := registerFoo(t, e, &logo.FileID)

	_, err = e.sites.UpdateSite(ctx, site.ID, models.SitePatch{LogoImage: &logo.FileID})
	require.NoError(t, err)
	assert.Len(t, e.store.Files, 1)
	assert.Zero(t, e.bucket.Removes())
}

func TestUpdateSite_PlainFieldsSkipLogoHandling(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	site := registerFoo(t, e, nil)
	e.counts.Set(ctx, services.SiteCountsKey, map[string]int{"all": 1})
	gets := e.store.Calls("GetSite")

	status := models.StatusSuspended
	updated, err := e.sites.UpdateSite(ctx, site.ID, models.SitePatch{Name: ptr("Foo Prime"), Status: &status})
	require.NoError(t, err)
	assert.Equal(t, "Foo Prime", updated.Name)
	assert.Equal(t, models.StatusSuspended, updated.Status)
	assert.Equal(t, gets, e.store.Calls("GetSite"))

	_, cached := e.counts.Get(ctx, services.SiteCountsKey)
	assert.False(t, cached)
}

func TestUpdateSite_Validation(t *testing.T) {
	e := newEnv()
	site := registerFoo(t, e, nil)
	ctx := context.Background()

	for name, patch := range map[string]models.SitePatch{
		"empty":         {},
		"blank name":    {Name: ptr("   ")},
		"bad url":       {URL: ptr("not-a-url")},
		"bad logo id":   {LogoImage: ptr("logo.png")},
		"empty logo id": {LogoImage: ptr("")},
	} {
		_, err := e.sites.UpdateSite(ctx, site.ID, patch)
		require.Error(t, err, name)
		assert.Equal(t, apperr.KindValidation, apperr.KindOf(err), name)
	}
	assert.Zero(t, e.store.Calls("UpdateSite"))
}

func TestUpdateSite_UnknownSite(t *testing.T) {
	e := newEnv()

	_, err := e.sites.UpdateSite(context.Background(), "00000000-0000-0000-0000-000000000000", models.SitePatch{Name: ptr("x")})
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestAddPromotion(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	site := registerFoo(t, e, nil)

	promo, err := e.sites.AddPromotion(ctx, site.ID, models.PromotionInput{BonusRate: 5, BonusAmount: 1, DisplayOrder: 2})
	require.NoError(t, err)
	assert.Equal(t, "5+1 입플", promo.Name)
	assert.Equal(t, models.DepositFirst, promo.DepositType)
	assert.True(t, promo.IsActive)
	assert.Len(t, e.store.PromotionsFor(site.ID), 2)

	inactive := false
	promo, err = e.sites.AddPromotion(ctx, site.ID, models.PromotionInput{
		Name: "Weekend", DepositType: models.DepositEvery, BonusRate: 10, IsActive: &inactive,
	})
	require.NoError(t, err)
	assert.Equal(t, "Weekend", promo.Name)
	assert.False(t, promo.IsActive)
}

func TestAddPromotion_Rejects(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	site := registerFoo(t, e, nil)
	from := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	until := from.Add(-time.Hour)

	_, err := e.sites.AddPromotion(ctx, site.ID, models.PromotionInput{BonusRate: 1, ValidFrom: &from, ValidUntil: &until})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = e.sites.AddPromotion(ctx, site.ID, models.PromotionInput{BonusRate: 0})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = e.sites.AddPromotion(ctx, "00000000-0000-0000-0000-000000000000", models.PromotionInput{BonusRate: 1})
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestUpdateAndDeletePromotion(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	site := registerFoo(t, e, nil)
	promo := e.store.PromotionsFor(site.ID)[0]

	updated, err := e.sites.UpdatePromotion(ctx, promo.ID, models.PromotionPatch{IsActive: ptr(false), MaxBonus: ptr(50.0)})
	require.NoError(t, err)
	assert.False(t, updated.IsActive)
	require.NotNil(t, updated.MaxBonus)
	assert.Equal(t, 50.0, *updated.MaxBonus)

	_, err = e.sites.UpdatePromotion(ctx, promo.ID, models.PromotionPatch{})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	require.NoError(t, e.sites.DeletePromotion(ctx, promo.ID))
	assert.Empty(t, e.store.PromotionsFor(site.ID))

	err = e.sites.DeletePromotion(ctx, promo.ID)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}
