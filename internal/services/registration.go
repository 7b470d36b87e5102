package services

import (
	"context"
	"strconv"

	"site-admin-backend/internal/apperr"
	"site-admin-backend/internal/logger"
	"site-admin-backend/internal/models"
	"site-admin-backend/internal/saga"
)

// RegistrationService creates a site together with its operational info and
// promotions. If a dependent insert fails the site row is deleted again and
// the store cascade removes whatever children were already written.
type RegistrationService struct {
	sites    SiteStore
	children SiteChildStore
	counts   CountCache
	log      *logger.Logger
}

func NewRegistrationService(sites SiteStore, children SiteChildStore, counts CountCache, log *logger.Logger) *RegistrationService {
	return &RegistrationService{
		sites:    sites,
		children: children,
		counts:   counts,
		log:      logger.OrNop(log).With("service", "RegistrationService"),
	}
}

// RegisterSite is at-most-once: nothing is retried. A logo uploaded before
// registration is not deleted when a later step fails.
func (s *RegistrationService) RegisterSite(ctx context.Context, req models.RegisterSiteRequest) (site *models.Site, err error) {
	const op = "RegisterSite"
	defer recoverInto(op, s.log, &err)

	if err := validate.Struct(req); err != nil {
		return nil, apperr.Validation(op, err)
	}

	var created *models.Site
	run := saga.New("register_site", s.log).
		Step("insert_site", func(ctx context.Context) error {
			row, err := s.sites.InsertSite(ctx, newSiteRow(req))
			if err != nil {
				return err
			}
			created = row
			return nil
		}, func(ctx context.Context) error {
			return s.sites.DeleteSite(ctx, created.ID)
		}).
		Step("insert_operational_info", func(ctx context.Context) error {
			_, err := s.children.InsertOperationalInfo(ctx, newOperationalInfoRow(created.ID, req.OperationalInfo))
			return err
		}, nil).
		Step("insert_promotions", func(ctx context.Context) error {
			_, err := s.children.InsertPromotions(ctx, newPromotionRows(created.ID, req.Promotions))
			return err
		}, nil)

	if err := run.Run(ctx); err != nil {
		return nil, apperr.Remote(op, err)
	}

	s.counts.Invalidate(ctx, SiteCountsKey)
	s.log.Info("site registered", "site_id", created.ID, "name", created.Name, "promotions", len(req.Promotions))
	return created, nil
}

func newSiteRow(req models.RegisterSiteRequest) *models.Site {
	category := req.Category
	if category == "" {
		category = models.CategoryCasino
	}
	status := req.Status
	if status == "" {
		status = models.StatusActive
	}
	var logo *string
	if req.LogoImage != nil && *req.LogoImage != "" {
		id := *req.LogoImage
		logo = &id
	}
	return &models.Site{
		Name:      req.Name,
		URL:       req.URL,
		Category:  category,
		Status:    status,
		LogoImage: logo,
	}
}

func newOperationalInfoRow(siteID string, d models.OperationalInfoDraft) *models.SiteOperationalInfo {
	return &models.SiteOperationalInfo{
		SiteSeq:           siteID,
		MinDeposit:        d.MinDeposit,
		FirstDepositBonus: d.FirstDepositBonus,
		EveryDepositBonus: d.EveryDepositBonus,
		CasinoPayback:     d.CasinoPayback,
		SportsPayback:     d.SportsPayback,
		RollingRate:       d.RollingRate,
		MinBet:            d.MinBet,
		MaxBet:            d.MaxBet,
		Features:          d.Features,
		DepositMethods:    d.DepositMethods,
	}
}

// newPromotionRows keeps submission order; duplicates stay distinct rows.
func newPromotionRows(siteID string, drafts []models.PromotionDraft) []models.DepositPromotion {
	rows := make([]models.DepositPromotion, len(drafts))
	for i, d := range drafts {
		rows[i] = models.DepositPromotion{
			SiteSeq:      siteID,
			Name:         PromotionName(d.BonusRate, d.BonusAmount),
			DepositType:  models.DepositFirst,
			BonusRate:    d.BonusRate,
			BonusAmount:  d.BonusAmount,
			IsActive:     true,
			DisplayOrder: i + 1,
		}
	}
	return rows
}

// PromotionName renders the display name, e.g. 3 and 2 -> "3+2 입플".
func PromotionName(rate, amount float64) string {
	return strconv.FormatFloat(rate, 'f', -1, 64) + "+" + strconv.FormatFloat(amount, 'f', -1, 64) + " 입플"
}
