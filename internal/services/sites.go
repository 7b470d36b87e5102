package services

import (
	"context"
	"strings"

	"site-admin-backend/internal/apperr"
	"site-admin-backend/internal/logger"
	"site-admin-backend/internal/metrics"
	"site-admin-backend/internal/models"
)

// SiteService edits existing sites and their promotions.
type SiteService struct {
	sites    SiteStore
	children SiteChildStore
	images   ImageDeleter
	counts   CountCache
	log      *logger.Logger
}

func NewSiteService(sites SiteStore, children SiteChildStore, images ImageDeleter, counts CountCache, log *logger.Logger) *SiteService {
	return &SiteService{
		sites:    sites,
		children: children,
		images:   images,
		counts:   counts,
		log:      logger.OrNop(log).With("service", "SiteService"),
	}
}

func (s *SiteService) GetSite(ctx context.Context, siteID string) (site *models.Site, err error) {
	const op = "GetSite"
	defer recoverInto(op, s.log, &err)

	if siteID == "" {
		return nil, apperr.Validationf(op, "site id is required")
	}
	site, err = s.sites.GetSite(ctx, siteID)
	if err != nil {
		return nil, apperr.Remote(op, err)
	}
	return site, nil
}

// UpdateSite applies a partial update. When the logo reference changes, the
// previous logo is deleted after the update succeeds; a failed cleanup is
// logged only. Concurrent updates are last-write-wins.
func (s *SiteService) UpdateSite(ctx context.Context, siteID string, patch models.SitePatch) (site *models.Site, err error) {
	const op = "UpdateSite"
	defer recoverInto(op, s.log, &err)

	if siteID == "" {
		return nil, apperr.Validationf(op, "site id is required")
	}
	if err := validate.Struct(patch); err != nil {
		return nil, apperr.Validation(op, err)
	}
	fields := patch.Fields()
	if len(fields) == 0 {
		return nil, apperr.Validationf(op, "nothing to update")
	}
	if name, ok := fields["name"].(string); ok && strings.TrimSpace(name) == "" {
		return nil, apperr.Validationf(op, "name must not be blank")
	}

	var previousLogo string
	if patch.TouchesLogo() {
		current, err := s.sites.GetSite(ctx, siteID)
		if err != nil {
			return nil, apperr.Remote(op, err)
		}
		if current.LogoImage != nil {
			previousLogo = *current.LogoImage
		}
	}

	site, err = s.sites.UpdateSite(ctx, siteID, fields)
	if err != nil {
		return nil, apperr.Remote(op, err)
	}

	if previousLogo != "" && (site.LogoImage == nil || *site.LogoImage != previousLogo) {
		if err := s.images.DeleteImage(ctx, previousLogo); err != nil {
			metrics.LogoCleanupFailuresTotal.Inc()
			s.log.Warn("replaced logo cleanup failed", "site_id", siteID, "file_id", previousLogo, "err", err)
		}
	}

	s.counts.Invalidate(ctx, SiteCountsKey)
	s.log.Info("site updated", "site_id", siteID, "fields", len(fields))
	return site, nil
}

func (s *SiteService) ListPromotions(ctx context.Context, siteID string) (promos []models.DepositPromotion, err error) {
	const op = "ListPromotions"
	defer recoverInto(op, s.log, &err)

	if siteID == "" {
		return nil, apperr.Validationf(op, "site id is required")
	}
	promos, err = s.children.ListPromotions(ctx, siteID)
	if err != nil {
		return nil, apperr.Remote(op, err)
	}
	return promos, nil
}

// AddPromotion appends one promotion. An empty name is derived from the
// bonus figures the same way registration does.
func (s *SiteService) AddPromotion(ctx context.Context, siteID string, in models.PromotionInput) (promo *models.DepositPromotion, err error) {
	const op = "AddPromotion"
	defer recoverInto(op, s.log, &err)

	if siteID == "" {
		return nil, apperr.Validationf(op, "site id is required")
	}
	if err := validate.Struct(in); err != nil {
		return nil, apperr.Validation(op, err)
	}
	if in.ValidFrom != nil && in.ValidUntil != nil && in.ValidUntil.Before(*in.ValidFrom) {
		return nil, apperr.Validationf(op, "valid_until must not be before valid_from")
	}
	if _, err := s.sites.GetSite(ctx, siteID); err != nil {
		return nil, apperr.Remote(op, err)
	}

	row := models.DepositPromotion{
		SiteSeq:      siteID,
		Name:         strings.TrimSpace(in.Name),
		DepositType:  in.DepositType,
		BonusRate:    in.BonusRate,
		BonusAmount:  in.BonusAmount,
		MinDeposit:   in.MinDeposit,
		MaxBonus:     in.MaxBonus,
		Rollover:     in.Rollover,
		ValidFrom:    in.ValidFrom,
		ValidUntil:   in.ValidUntil,
		IsActive:     true,
		DisplayOrder: in.DisplayOrder,
	}
	if row.Name == "" {
		row.Name = PromotionName(in.BonusRate, in.BonusAmount)
	}
	if row.DepositType == "" {
		row.DepositType = models.DepositFirst
	}
	if in.IsActive != nil {
		row.IsActive = *in.IsActive
	}

	rows, err := s.children.InsertPromotions(ctx, []models.DepositPromotion{row})
	if err != nil {
		return nil, apperr.Remote(op, err)
	}
	if len(rows) == 0 {
		return nil, apperr.Remote(op, apperr.ErrNotFound)
	}
	s.counts.Invalidate(ctx, SiteCountsKey)
	s.log.Info("promotion added", "site_id", siteID, "promotion_id", rows[0].ID)
	return &rows[0], nil
}

func (s *SiteService) UpdatePromotion(ctx context.Context, promotionID string, patch models.PromotionPatch) (promo *models.DepositPromotion, err error) {
	const op = "UpdatePromotion"
	defer recoverInto(op, s.log, &err)

	if promotionID == "" {
		return nil, apperr.Validationf(op, "promotion id is required")
	}
	if err := validate.Struct(patch); err != nil {
		return nil, apperr.Validation(op, err)
	}
	fields := patch.Fields()
	if len(fields) == 0 {
		return nil, apperr.Validationf(op, "nothing to update")
	}

	promo, err = s.children.UpdatePromotion(ctx, promotionID, fields)
	if err != nil {
		return nil, apperr.Remote(op, err)
	}
	s.counts.Invalidate(ctx, SiteCountsKey)
	return promo, nil
}

func (s *SiteService) DeletePromotion(ctx context.Context, promotionID string) (err error) {
	const op = "DeletePromotion"
	defer recoverInto(op, s.log, &err)

	if promotionID == "" {
		return apperr.Validationf(op, "promotion id is required")
	}
	if err := s.children.DeletePromotion(ctx, promotionID); err != nil {
		return apperr.Remote(op, err)
	}
	s.counts.Invalidate(ctx, SiteCountsKey)
	s.log.Info("promotion deleted", "promotion_id", promotionID)
	return nil
}
