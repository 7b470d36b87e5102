package models

import "time"

// RegisterSiteRequest is the site registration wizard payload.
type RegisterSiteRequest struct {
	Name            string               `json:"name" validate:"required,max=100"`
	URL             string               `json:"url" validate:"required,url"`
	Category        SiteCategory         `json:"category" validate:"omitempty,oneof=casino sports holdem sport mixed"`
	Status          SiteStatus           `json:"status" validate:"omitempty,oneof=active suspended closed"`
	LogoImage       *string              `json:"logo_image" validate:"omitnil,uuid"`
	OperationalInfo OperationalInfoDraft `json:"operational_info"`
	Promotions      []PromotionDraft     `json:"promotions" validate:"required,min=1,dive"`
}

type OperationalInfoDraft struct {
	MinDeposit        *float64 `json:"min_deposit" validate:"omitempty,gte=0"`
	FirstDepositBonus *float64 `json:"first_deposit_bonus" validate:"omitempty,gte=0,lte=100"`
	EveryDepositBonus *float64 `json:"every_deposit_bonus" validate:"omitempty,gte=0,lte=100"`
	CasinoPayback     *float64 `json:"casino_payback" validate:"omitempty,gte=0,lte=100"`
	SportsPayback     *float64 `json:"sports_payback" validate:"omitempty,gte=0,lte=100"`
	RollingRate       *float64 `json:"rolling_rate" validate:"omitempty,gte=0"`
	MinBet            *float64 `json:"min_bet" validate:"omitempty,gte=0"`
	MaxBet            *float64 `json:"max_bet" validate:"omitempty,gte=0"`
	Features          string   `json:"features"`
	DepositMethods    string   `json:"deposit_methods"`
}

// PromotionDraft carries only the structural fields; the rest are defaulted.
type PromotionDraft struct {
	BonusRate   float64 `json:"bonus_rate" validate:"gt=0"`
	BonusAmount float64 `json:"bonus_amount" validate:"gte=0"`
}

// SitePatch is a partial site update. Nil fields are left untouched;
// ClearLogo drops the logo reference.
type SitePatch struct {
	Name           *string       `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	URL            *string       `json:"url,omitempty" validate:"omitempty,url"`
	Category       *SiteCategory `json:"category,omitempty" validate:"omitempty,oneof=casino sports holdem sport mixed"`
	Status         *SiteStatus   `json:"status,omitempty" validate:"omitempty,oneof=active suspended closed"`
	IsRecommended  *bool         `json:"is_recommended,omitempty"`
	RecommendOrder *int          `json:"recommend_order,omitempty" validate:"omitempty,gte=0"`
	LogoImage      *string       `json:"logo_image,omitempty" validate:"omitnil,uuid"`
	ClearLogo      bool          `json:"clear_logo,omitempty"`
}

// Fields returns the column values to write.
func (p SitePatch) Fields() map[string]any {
	f := map[string]any{}
	if p.Name != nil {
		f["name"] = *p.Name
	}
	if p.URL != nil {
		f["url"] = *p.URL
	}
	if p.Category != nil {
		f["category"] = *p.Category
	}
	if p.Status != nil {
		f["status"] = *p.Status
	}
	if p.IsRecommended != nil {
		f["is_recommended"] = *p.IsRecommended
	}
	if p.RecommendOrder != nil {
		f["recommend_order"] = *p.RecommendOrder
	}
	switch {
	case p.ClearLogo:
		f["logo_image"] = nil
	case p.LogoImage != nil:
		f["logo_image"] = *p.LogoImage
	}
	return f
}

// TouchesLogo reports whether the patch changes the logo reference.
func (p SitePatch) TouchesLogo() bool {
	return p.ClearLogo || p.LogoImage != nil
}

// PromotionInput adds a single promotion to an existing site.
type PromotionInput struct {
	Name         string      `json:"name" validate:"max=100"`
	DepositType  DepositType `json:"deposit_type" validate:"omitempty,oneof=first every daily_first"`
	BonusRate    float64     `json:"bonus_rate" validate:"gt=0"`
	BonusAmount  float64     `json:"bonus_amount" validate:"gte=0"`
	MinDeposit   float64     `json:"min_deposit" validate:"gte=0"`
	MaxBonus     *float64    `json:"max_bonus" validate:"omitempty,gte=0"`
	Rollover     *float64    `json:"rollover" validate:"omitempty,gte=0"`
	ValidFrom    *time.Time  `json:"valid_from"`
	ValidUntil   *time.Time  `json:"valid_until"`
	IsActive     *bool       `json:"is_active"`
	DisplayOrder int         `json:"display_order" validate:"gte=0"`
}

type PromotionPatch struct {
	Name         *string      `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	DepositType  *DepositType `json:"deposit_type,omitempty" validate:"omitempty,oneof=first every daily_first"`
	BonusRate    *float64     `json:"bonus_rate,omitempty" validate:"omitempty,gt=0"`
	BonusAmount  *float64     `json:"bonus_amount,omitempty" validate:"omitempty,gte=0"`
	MinDeposit   *float64     `json:"min_deposit,omitempty" validate:"omitempty,gte=0"`
	MaxBonus     *float64     `json:"max_bonus,omitempty" validate:"omitempty,gte=0"`
	Rollover     *float64     `json:"rollover,omitempty" validate:"omitempty,gte=0"`
	IsActive     *bool        `json:"is_active,omitempty"`
	DisplayOrder *int         `json:"display_order,omitempty" validate:"omitempty,gte=0"`
}

func (p PromotionPatch) Fields() map[string]any {
	f := map[string]any{}
	if p.Name != nil {
		f["name"] = *p.Name
	}
	if p.DepositType != nil {
		f["deposit_type"] = *p.DepositType
	}
	if p.BonusRate != nil {
		f["bonus_rate"] = *p.BonusRate
	}
	if p.BonusAmount != nil {
		f["bonus_amount"] = *p.BonusAmount
	}
	if p.MinDeposit != nil {
		f["min_deposit"] = *p.MinDeposit
	}
	if p.MaxBonus != nil {
		f["max_bonus"] = *p.MaxBonus
	}
	if p.Rollover != nil {
		f["rollover"] = *p.Rollover
	}
	if p.IsActive != nil {
		f["is_active"] = *p.IsActive
	}
	if p.DisplayOrder != nil {
		f["display_order"] = *p.DisplayOrder
	}
	return f
}

type UserPatch struct {
	Role       *UserRole `json:"role,omitempty" validate:"omitempty,oneof=user admin super_admin"`
	IsApproved *bool     `json:"is_approved,omitempty"`
}

func (p UserPatch) Fields() map[string]any {
	f := map[string]any{}
	if p.Role != nil {
		f["role"] = *p.Role
	}
	if p.IsApproved != nil {
		f["is_approved"] = *p.IsApproved
	}
	return f
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
