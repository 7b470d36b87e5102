package models

import "time"

type SiteCategory string

const (
	CategoryCasino SiteCategory = "casino"
	CategorySports SiteCategory = "sports"
	CategoryHoldem SiteCategory = "holdem"
	CategorySport  SiteCategory = "sport"
	CategoryMixed  SiteCategory = "mixed"
)

type SiteStatus string

const (
	StatusActive    SiteStatus = "active"
	StatusSuspended SiteStatus = "suspended"
	StatusClosed    SiteStatus = "closed"
)

// SiteStatuses lists the lifecycle states in tab order.
var SiteStatuses = []SiteStatus{StatusActive, StatusSuspended, StatusClosed}

// Site is the aggregate root. LogoImage is a weak reference to
// StoredFile.ID; the store does not cascade it.
type Site struct {
	ID              string       `json:"id,omitempty"`
	Name            string       `json:"name"`
	URL             string       `json:"url"`
	Category        SiteCategory `json:"category"`
	Status          SiteStatus   `json:"status"`
	IsRecommended   bool         `json:"is_recommended"`
	RecommendOrder  int          `json:"recommend_order"`
	SubscriberCount int          `json:"subscriber_count"`
	ViewCount       int          `json:"view_count"`
	AverageRating   float64      `json:"average_rating"`
	LogoImage       *string      `json:"logo_image"`
	CreatedAt       *time.Time   `json:"created_at,omitempty"`
	UpdatedAt       *time.Time   `json:"updated_at,omitempty"`
}

// SiteWithLogo is a listing row with its resolved logo URL.
type SiteWithLogo struct {
	Site
	LogoURL *string `json:"logo_url"`
}

type SiteOperationalInfo struct {
	ID                string     `json:"id,omitempty"`
	SiteSeq           string     `json:"site_seq"`
	MinDeposit        *float64   `json:"min_deposit"`
	FirstDepositBonus *float64   `json:"first_deposit_bonus"`
	EveryDepositBonus *float64   `json:"every_deposit_bonus"`
	CasinoPayback     *float64   `json:"casino_payback"`
	SportsPayback     *float64   `json:"sports_payback"`
	RollingRate       *float64   `json:"rolling_rate"`
	MinBet            *float64   `json:"min_bet"`
	MaxBet            *float64   `json:"max_bet"`
	Features          string     `json:"features"`
	DepositMethods    string     `json:"deposit_methods"`
	CreatedAt         *time.Time `json:"created_at,omitempty"`
}

type DepositType string

const (
	DepositFirst      DepositType = "first"
	DepositEvery      DepositType = "every"
	DepositDailyFirst DepositType = "daily_first"
)

type DepositPromotion struct {
	ID           string      `json:"id,omitempty"`
	SiteSeq      string      `json:"site_seq"`
	Name         string      `json:"name"`
	DepositType  DepositType `json:"deposit_type"`
	BonusRate    float64     `json:"bonus_rate"`
	BonusAmount  float64     `json:"bonus_amount"`
	MinDeposit   float64     `json:"min_deposit"`
	MaxBonus     *float64    `json:"max_bonus"`
	Rollover     *float64    `json:"rollover"`
	ValidFrom    *time.Time  `json:"valid_from"`
	ValidUntil   *time.Time  `json:"valid_until"`
	IsActive     bool        `json:"is_active"`
	DisplayOrder int         `json:"display_order"`
	CreatedAt    *time.Time  `json:"created_at,omitempty"`
}

type EventStatus string

const (
	EventBefore  EventStatus = "before"
	EventOngoing EventStatus = "ongoing"
	EventEnded   EventStatus = "ended"
)

// SiteEvent.ThumbnailImage is a weak reference to StoredFile.ID.
type SiteEvent struct {
	ID             string      `json:"id,omitempty"`
	SiteSeq        string      `json:"site_seq"`
	Name           string      `json:"name"`
	Description    string      `json:"description"`
	EventType      string      `json:"event_type"`
	Status         EventStatus `json:"status"`
	StartDate      *time.Time  `json:"start_date"`
	EndDate        *time.Time  `json:"end_date"`
	IsFeatured     bool        `json:"is_featured"`
	DisplayOrder   int         `json:"display_order"`
	ViewCount      int         `json:"view_count"`
	ThumbnailImage *string     `json:"thumbnail_image"`
	CreatedAt      *time.Time  `json:"created_at,omitempty"`
}

// SiteFilter is the listing predicate. Empty fields do not filter.
type SiteFilter struct {
	Category SiteCategory `form:"category" validate:"omitempty,oneof=casino sports holdem sport mixed"`
	Status   SiteStatus   `form:"status" validate:"omitempty,oneof=active suspended closed"`
	Search   string       `form:"search" validate:"max=100"`
}
