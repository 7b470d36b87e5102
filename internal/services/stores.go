package services

import (
	"context"

	"site-admin-backend/internal/models"
)

// SiteStore is the sites table. Implementations return apperr.ErrNotFound
// (wrapped) when an id matches no row.
type SiteStore interface {
	InsertSite(ctx context.Context, site *models.Site) (*models.Site, error)
	GetSite(ctx context.Context, id string) (*models.Site, error)
	UpdateSite(ctx context.Context, id string, fields map[string]any) (*models.Site, error)
	// DeleteSite relies on the store's cascade rules for operational info,
	// promotions and events.
	DeleteSite(ctx context.Context, id string) error
	// ListSites returns rows [from, to] of the filtered set and the exact
	// size of that set in a single call.
	ListSites(ctx context.Context, filter models.SiteFilter, from, to int) ([]models.Site, int, error)
	CountSites(ctx context.Context, filter models.SiteFilter) (int, error)
}

// SiteChildStore covers the tables hanging off a site.
type SiteChildStore interface {
	InsertOperationalInfo(ctx context.Context, info *models.SiteOperationalInfo) (*models.SiteOperationalInfo, error)
	// GetOperationalInfo returns nil, nil when the site has no row.
	GetOperationalInfo(ctx context.Context, siteID string) (*models.SiteOperationalInfo, error)
	InsertPromotions(ctx context.Context, promotions []models.DepositPromotion) ([]models.DepositPromotion, error)
	ListPromotions(ctx context.Context, siteID string) ([]models.DepositPromotion, error)
	UpdatePromotion(ctx context.Context, id string, fields map[string]any) (*models.DepositPromotion, error)
	DeletePromotion(ctx context.Context, id string) error
	ListEvents(ctx context.Context, siteID string) ([]models.SiteEvent, error)
}

// FileStore covers stored_files and stored_file_details. Deleting a
// StoredFile cascades to its detail row.
type FileStore interface {
	InsertStoredFile(ctx context.Context, file *models.StoredFile) (*models.StoredFile, error)
	InsertStoredFileDetail(ctx context.Context, detail *models.StoredFileDetail) (*models.StoredFileDetail, error)
	GetStoredFileDetail(ctx context.Context, fileID string) (*models.StoredFileDetail, error)
	GetStoredFilesByIDs(ctx context.Context, ids []string) ([]models.StoredFile, error)
	DeleteStoredFile(ctx context.Context, id string) error
}

type UserStore interface {
	ListUsers(ctx context.Context, filter models.UserFilter, from, to int) ([]models.UserAccount, int, error)
	GetUserByAuthID(ctx context.Context, authUserID string) (*models.UserAccount, error)
	UpdateUser(ctx context.Context, id string, fields map[string]any) (*models.UserAccount, error)
}

// ObjectStorage is a single bucket. Upload never overwrites an existing path.
type ObjectStorage interface {
	Upload(ctx context.Context, path, contentType string, data []byte) error
	PublicURL(path string) string
	Remove(ctx context.Context, path string) error
}

// CountCache stores per-tab counts. Misses and backend failures look the same.
// Invalidate bumps the key's generation; SetIfGeneration refuses to store a
// value computed under an older generation.
type CountCache interface {
	Get(ctx context.Context, key string) (map[string]int, bool)
	Generation(ctx context.Context, key string) uint64
	SetIfGeneration(ctx context.Context, key string, gen uint64, counts map[string]int) bool
	Invalidate(ctx context.Context, key string)
}

// ImageDeleter is the coordinator's delete path as seen by other services.
type ImageDeleter interface {
	DeleteImage(ctx context.Context, fileID string) error
}

// SiteCountsKey is the cache key for the status tab badges.
const SiteCountsKey = "site_status_counts"
