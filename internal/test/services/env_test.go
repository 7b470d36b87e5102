package services_test

import (
	"time"

	"site-admin-backend/internal/cache"
	"site-admin-backend/internal/services"
	"site-admin-backend/internal/test/testutil"
)

const maxUpload = 1 << 20

var pngBytes = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), make([]byte, 32)...)

type env struct {
	store  *testutil.Store
	bucket *testutil.Bucket
	counts *cache.MemoryCounts

	images       *services.ImageService
	resolver     *services.FileURLResolver
	registration *services.RegistrationService
	listing      *services.ListingService
	sites        *services.SiteService
	deletion     *services.DeletionService
	users        *services.UserService
}

func newEnv() *env {
	e := &env{
		store:  testutil.NewStore(),
		bucket: testutil.NewBucket(),
		counts: cache.NewMemoryCounts(5 * time.Minute),
	}
	e.images = services.NewImageService(e.store, e.bucket, "images", maxUpload, nil)
	e.resolver = services.NewFileURLResolver(e.store, nil)
	e.registration = services.NewRegistrationService(e.store, e.store, e.counts, nil)
	e.listing = services.NewListingService(e.store, e.resolver, e.counts, nil)
	e.sites = services.NewSiteService(e.store, e.store, e.images, e.counts, nil)
	e.deletion = services.NewDeletionService(e.store, e.store, e.store, e.images, e.counts, nil)
	e.users = services.NewUserService(e.store, nil)
	return e
}

func ptr[T any](v T) *T { return &v }
