package services

import (
	"context"
	"fmt"

	"site-admin-backend/internal/apperr"
	"site-admin-backend/internal/logger"
	"site-admin-backend/internal/metrics"
	"site-admin-backend/internal/models"
)

// DeletionService removes a site aggregate. The store cascades the hard
// children; the logo, a soft reference, is removed here explicitly. Event
// thumbnails are not cleaned up.
type DeletionService struct {
	sites    SiteStore
	children SiteChildStore
	files    FileStore
	images   ImageDeleter
	counts   CountCache
	log      *logger.Logger
}

func NewDeletionService(sites SiteStore, children SiteChildStore, files FileStore, images ImageDeleter, counts CountCache, log *logger.Logger) *DeletionService {
	return &DeletionService{
		sites:    sites,
		children: children,
		files:    files,
		images:   images,
		counts:   counts,
		log:      logger.OrNop(log).With("service", "DeletionService"),
	}
}

// DeleteSite deletes the logo first and the site second. A logo that cannot
// be deleted is logged and does not block the site deletion.
func (s *DeletionService) DeleteSite(ctx context.Context, siteID string) (err error) {
	const op = "DeleteSite"
	defer recoverInto(op, s.log, &err)

	if siteID == "" {
		return apperr.Validationf(op, "site id is required")
	}

	site, err := s.sites.GetSite(ctx, siteID)
	if err != nil {
		return apperr.Remote(op, err)
	}

	if site.LogoImage != nil && *site.LogoImage != "" {
		if err := s.images.DeleteImage(ctx, *site.LogoImage); err != nil {
			metrics.LogoCleanupFailuresTotal.Inc()
			s.log.Warn("logo cleanup failed, deleting site anyway",
				"site_id", siteID, "file_id", *site.LogoImage, "err", err)
		}
	}

	if err := s.sites.DeleteSite(ctx, siteID); err != nil {
		return apperr.Remote(op, err)
	}

	s.counts.Invalidate(ctx, SiteCountsKey)
	s.log.Info("site deleted", "site_id", siteID)
	return nil
}

// PreviewDeletion reports what DeleteSite would remove without mutating
// anything. Only the site lookup can fail the call; child lookups that fail
// are reported as warnings with zero counts.
func (s *DeletionService) PreviewDeletion(ctx context.Context, siteID string) (preview *models.DeletionPreview, err error) {
	const op = "PreviewDeletion"
	defer recoverInto(op, s.log, &err)

	if siteID == "" {
		return nil, apperr.Validationf(op, "site id is required")
	}

	site, err := s.sites.GetSite(ctx, siteID)
	if err != nil {
		return nil, apperr.Remote(op, err)
	}

	p := &models.DeletionPreview{Site: site, RetainedThumbnails: []string{}}
	warn := func(what string, err error) {
		p.Warnings = append(p.Warnings, fmt.Sprintf("%s unavailable: %v", what, err))
	}

	if info, err := s.children.GetOperationalInfo(ctx, siteID); err != nil {
		warn("operational info", err)
	} else {
		p.HasOperationalInfo = info != nil
	}

	if promos, err := s.children.ListPromotions(ctx, siteID); err != nil {
		warn("promotions", err)
	} else {
		p.PromotionCount = len(promos)
	}

	if events, err := s.children.ListEvents(ctx, siteID); err != nil {
		warn("events", err)
	} else {
		p.EventCount = len(events)
		refs := make([]*string, len(events))
		for i := range events {
			refs[i] = events[i].ThumbnailImage
		}
		p.RetainedThumbnails = distinctIDs(refs)
	}

	if site.LogoImage != nil && *site.LogoImage != "" {
		files, err := s.files.GetStoredFilesByIDs(ctx, []string{*site.LogoImage})
		switch {
		case err != nil:
			warn("logo", err)
		case len(files) > 0:
			p.Logo = &files[0]
		}
	}

	return p, nil
}
