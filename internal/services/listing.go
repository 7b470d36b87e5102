package services

import (
	"context"
	"strconv"
	"strings"

	"golang.org/x/sync/singleflight"

	"site-admin-backend/internal/apperr"
	"site-admin-backend/internal/logger"
	"site-admin-backend/internal/metrics"
	"site-admin-backend/internal/models"
)

// CountAll is the tab key for the unfiltered total.
const CountAll = "all"

type SitePage struct {
	Data       []models.SiteWithLogo `json:"data"`
	TotalCount int                   `json:"totalCount"`
}

// ListingService serves filtered, paginated site listings and the cached
// per-status counts shown on the listing tabs.
type ListingService struct {
	sites    SiteStore
	resolver *FileURLResolver
	counts   CountCache
	sfg      singleflight.Group
	log      *logger.Logger
}

func NewListingService(sites SiteStore, resolver *FileURLResolver, counts CountCache, log *logger.Logger) *ListingService {
	return &ListingService{
		sites:    sites,
		resolver: resolver,
		counts:   counts,
		log:      logger.OrNop(log).With("service", "ListingService"),
	}
}

// ListSites returns one page of the filtered set with logo URLs resolved by
// a single batch lookup. TotalCount counts the filtered set.
func (s *ListingService) ListSites(ctx context.Context, filter models.SiteFilter, page, pageSize int) (res *SitePage, err error) {
	const op = "ListSites"
	defer recoverInto(op, s.log, &err)

	filter.Search = strings.TrimSpace(filter.Search)
	if err := validate.Struct(filter); err != nil {
		return nil, apperr.Validation(op, err)
	}
	from, to, err := PageRange(page, pageSize)
	if err != nil {
		return nil, apperr.Validation(op, err)
	}

	rows, total, err := s.sites.ListSites(ctx, filter, from, to)
	if err != nil {
		return nil, apperr.Remote(op, err)
	}

	refs := make([]*string, len(rows))
	for i := range rows {
		refs[i] = rows[i].LogoImage
	}
	urls := s.resolver.ResolveURLs(ctx, refs)

	out := make([]models.SiteWithLogo, len(rows))
	for i, row := range rows {
		out[i] = models.SiteWithLogo{Site: row, LogoURL: Lookup(urls, row.LogoImage)}
	}
	return &SitePage{Data: out, TotalCount: total}, nil
}

// StatusCounts returns {all, active, suspended, closed}. A cached value is
// returned as is until it expires or a mutation invalidates it; concurrent
// misses share one round of count queries.
func (s *ListingService) StatusCounts(ctx context.Context) (counts map[string]int, err error) {
	const op = "StatusCounts"
	defer recoverInto(op, s.log, &err)

	if cached, ok := s.counts.Get(ctx, SiteCountsKey); ok {
		metrics.CountCacheHitsTotal.Inc()
		return cached, nil
	}
	metrics.CountCacheMissesTotal.Inc()

	// Flights are keyed by generation so a caller arriving after an
	// invalidation never joins a computation that started before it.
	gen := s.counts.Generation(ctx, SiteCountsKey)
	flight := SiteCountsKey + "@" + strconv.FormatUint(gen, 10)
	v, err, _ := s.sfg.Do(flight, func() (interface{}, error) {
		// Joined callers share this result; the first caller's
		// cancellation must not fail them.
		ctx := context.WithoutCancel(ctx)
		fresh := make(map[string]int, len(models.SiteStatuses)+1)
		all, err := s.sites.CountSites(ctx, models.SiteFilter{})
		if err != nil {
			return nil, err
		}
		fresh[CountAll] = all
		for _, st := range models.SiteStatuses {
			n, err := s.sites.CountSites(ctx, models.SiteFilter{Status: st})
			if err != nil {
				return nil, err
			}
			fresh[string(st)] = n
		}
		if !s.counts.SetIfGeneration(ctx, SiteCountsKey, gen, fresh) {
			s.log.Debug("counts invalidated while computing, not cached", "generation", gen)
		}
		return fresh, nil
	})
	if err != nil {
		return nil, apperr.Remote(op, err)
	}

	shared := v.(map[string]int)
	out := make(map[string]int, len(shared))
	for k, n := range shared {
		out[k] = n
	}
	return out, nil
}

// InvalidateCounts drops the cached tab counts.
func (s *ListingService) InvalidateCounts(ctx context.Context) {
	s.counts.Invalidate(ctx, SiteCountsKey)
}
