package supabase

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/supabase-community/postgrest-go"

	"site-admin-backend/internal/apperr"
	"site-admin-backend/internal/models"
)

const (
	tableSites           = "sites"
	tableOperationalInfo = "site_operational_info"
	tablePromotions      = "deposit_promotions"
	tableEvents          = "site_events"
	tableStoredFiles     = "stored_files"
	tableFileDetails     = "stored_file_details"
	tableUsers           = "user_accounts"
)

const (
	returnRows = "representation"
	countExact = "exact"
)

// Querier is satisfied by both *supabase.Client and *postgrest.Client.
type Querier interface {
	From(table string) *postgrest.QueryBuilder
}

// DatabaseClient implements the service stores over the Supabase REST API.
// Cascades and uniqueness are enforced by the schema, not here.
type DatabaseClient struct {
	rest Querier
}

func NewDatabaseClient(rest Querier) *DatabaseClient {
	return &DatabaseClient{rest: rest}
}

func (d *DatabaseClient) from(ctx context.Context, table string) (*postgrest.QueryBuilder, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return d.rest.From(table), nil
}

func first[T any](rows []T, what, id string) (*T, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s %s: %w", what, id, apperr.ErrNotFound)
	}
	return &rows[0], nil
}

// sites

func (d *DatabaseClient) InsertSite(ctx context.Context, site *models.Site) (*models.Site, error) {
	q, err := d.from(ctx, tableSites)
	if err != nil {
		return nil, err
	}
	var rows []models.Site
	if _, err := q.Insert(site, false, "", returnRows, "").ExecuteTo(&rows); err != nil {
		return nil, fmt.Errorf("failed to insert site: %w", err)
	}
	return first(rows, "site", site.Name)
}

func (d *DatabaseClient) GetSite(ctx context.Context, id string) (*models.Site, error) {
	q, err := d.from(ctx, tableSites)
	if err != nil {
		return nil, err
	}
	var rows []models.Site
	if _, err := q.Select("*", "", false).Eq("id", id).ExecuteTo(&rows); err != nil {
		return nil, fmt.Errorf("failed to get site: %w", err)
	}
	return first(rows, "site", id)
}

func (d *DatabaseClient) UpdateSite(ctx context.Context, id string, fields map[string]any) (*models.Site, error) {
	q, err := d.from(ctx, tableSites)
	if err != nil {
		return nil, err
	}
	var rows []models.Site
	if _, err := q.Update(fields, returnRows, "").Eq("id", id).ExecuteTo(&rows); err != nil {
		return nil, fmt.Errorf("failed to update site: %w", err)
	}
	return first(rows, "site", id)
}

func (d *DatabaseClient) DeleteSite(ctx context.Context, id string) error {
	q, err := d.from(ctx, tableSites)
	if err != nil {
		return err
	}
	var rows []models.Site
	if _, err := q.Delete(returnRows, "").Eq("id", id).ExecuteTo(&rows); err != nil {
		return fmt.Errorf("failed to delete site: %w", err)
	}
	_, err = first(rows, "site", id)
	return err
}

// ListSites orders by registration time, newest first, and asks for the
// exact filtered count in the same request.
func (d *DatabaseClient) ListSites(ctx context.Context, filter models.SiteFilter, from, to int) ([]models.Site, int, error) {
	q, err := d.from(ctx, tableSites)
	if err != nil {
		return nil, 0, err
	}
	var rows []models.Site
	fb := applySiteFilter(q.Select("*", countExact, false), filter).
		Order("created_at", &postgrest.OrderOpts{Ascending: false}).
		Range(from, to, "")
	count, err := fb.ExecuteTo(&rows)
	if isRangeNotSatisfiable(err) {
		total, cerr := d.CountSites(ctx, filter)
		if cerr != nil {
			return nil, 0, cerr
		}
		return []models.Site{}, total, nil
	}
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list sites: %w", err)
	}
	if rows == nil {
		rows = []models.Site{}
	}
	return rows, int(count), nil
}

func (d *DatabaseClient) CountSites(ctx context.Context, filter models.SiteFilter) (int, error) {
	q, err := d.from(ctx, tableSites)
	if err != nil {
		return 0, err
	}
	_, count, err := applySiteFilter(q.Select("id", countExact, true), filter).Execute()
	if err != nil {
		return 0, fmt.Errorf("failed to count sites: %w", err)
	}
	return int(count), nil
}

func applySiteFilter(fb *postgrest.FilterBuilder, filter models.SiteFilter) *postgrest.FilterBuilder {
	if filter.Category != "" {
		fb = fb.Eq("category", string(filter.Category))
	}
	if filter.Status != "" {
		fb = fb.Eq("status", string(filter.Status))
	}
	if or := OrFilter(filter.Search, "name", "url"); or != "" {
		fb = fb.Or(or, "")
	}
	return fb
}

// operational info, promotions, events

func (d *DatabaseClient) InsertOperationalInfo(ctx context.Context, info *models.SiteOperationalInfo) (*models.SiteOperationalInfo, error) {
	q, err := d.from(ctx, tableOperationalInfo)
	if err != nil {
		return nil, err
	}
	var rows []models.SiteOperationalInfo
	if _, err := q.Insert(info, false, "", returnRows, "").ExecuteTo(&rows); err != nil {
		return nil, fmt.Errorf("failed to insert operational info: %w", err)
	}
	return first(rows, "operational info for site", info.SiteSeq)
}

func (d *DatabaseClient) GetOperationalInfo(ctx context.Context, siteID string) (*models.SiteOperationalInfo, error) {
	q, err := d.from(ctx, tableOperationalInfo)
	if err != nil {
		return nil, err
	}
	var rows []models.SiteOperationalInfo
	if _, err := q.Select("*", "", false).Eq("site_seq", siteID).ExecuteTo(&rows); err != nil {
		return nil, fmt.Errorf("failed to get operational info: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// InsertPromotions writes all rows in one request, so the batch lands or
// fails as a whole.
func (d *DatabaseClient) InsertPromotions(ctx context.Context, promotions []models.DepositPromotion) ([]models.DepositPromotion, error) {
	if len(promotions) == 0 {
		return []models.DepositPromotion{}, nil
	}
	q, err := d.from(ctx, tablePromotions)
	if err != nil {
		return nil, err
	}
	var rows []models.DepositPromotion
	if _, err := q.Insert(promotions, false, "", returnRows, "").ExecuteTo(&rows); err != nil {
		return nil, fmt.Errorf("failed to insert promotions: %w", err)
	}
	return rows, nil
}

func (d *DatabaseClient) ListPromotions(ctx context.Context, siteID string) ([]models.DepositPromotion, error) {
	q, err := d.from(ctx, tablePromotions)
	if err != nil {
		return nil, err
	}
	var rows []models.DepositPromotion
	_, err = q.Select("*", "", false).Eq("site_seq", siteID).
		Order("display_order", &postgrest.OrderOpts{Ascending: true}).
		ExecuteTo(&rows)
	if err != nil {
		return nil, fmt.Errorf("failed to list promotions: %w", err)
	}
	if rows == nil {
		rows = []models.DepositPromotion{}
	}
	return rows, nil
}

func (d *DatabaseClient) UpdatePromotion(ctx context.Context, id string, fields map[string]any) (*models.DepositPromotion, error) {
	q, err := d.from(ctx, tablePromotions)
	if err != nil {
		return nil, err
	}
	var rows []models.DepositPromotion
	if _, err := q.Update(fields, returnRows, "").Eq("id", id).ExecuteTo(&rows); err != nil {
		return nil, fmt.Errorf("failed to update promotion: %w", err)
	}
	return first(rows, "promotion", id)
}

func (d *DatabaseClient) DeletePromotion(ctx context.Context, id string) error {
	q, err := d.from(ctx, tablePromotions)
	if err != nil {
		return err
	}
	var rows []models.DepositPromotion
	if _, err := q.Delete(returnRows, "").Eq("id", id).ExecuteTo(&rows); err != nil {
		return fmt.Errorf("failed to delete promotion: %w", err)
	}
	_, err = first(rows, "promotion", id)
	return err
}

func (d *DatabaseClient) ListEvents(ctx context.Context, siteID string) ([]models.SiteEvent, error) {
	q, err := d.from(ctx, tableEvents)
	if err != nil {
		return nil, err
	}
	var rows []models.SiteEvent
	_, err = q.Select("*", "", false).Eq("site_seq", siteID).
		Order("display_order", &postgrest.OrderOpts{Ascending: true}).
		ExecuteTo(&rows)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	if rows == nil {
		rows = []models.SiteEvent{}
	}
	return rows, nil
}

// stored files

func (d *DatabaseClient) InsertStoredFile(ctx context.Context, file *models.StoredFile) (*models.StoredFile, error) {
	q, err := d.from(ctx, tableStoredFiles)
	if err != nil {
		return nil, err
	}
	var rows []models.StoredFile
	if _, err := q.Insert(file, false, "", returnRows, "").ExecuteTo(&rows); err != nil {
		return nil, fmt.Errorf("failed to insert stored file: %w", err)
	}
	return first(rows, "stored file", file.URL)
}

func (d *DatabaseClient) InsertStoredFileDetail(ctx context.Context, detail *models.StoredFileDetail) (*models.StoredFileDetail, error) {
	q, err := d.from(ctx, tableFileDetails)
	if err != nil {
		return nil, err
	}
	var rows []models.StoredFileDetail
	if _, err := q.Insert(detail, false, "", returnRows, "").ExecuteTo(&rows); err != nil {
		return nil, fmt.Errorf("failed to insert stored file detail: %w", err)
	}
	return first(rows, "stored file detail", detail.FileID)
}

func (d *DatabaseClient) GetStoredFileDetail(ctx context.Context, fileID string) (*models.StoredFileDetail, error) {
	q, err := d.from(ctx, tableFileDetails)
	if err != nil {
		return nil, err
	}
	var rows []models.StoredFileDetail
	if _, err := q.Select("*", "", false).Eq("file_id", fileID).ExecuteTo(&rows); err != nil {
		return nil, fmt.Errorf("failed to get stored file detail: %w", err)
	}
	return first(rows, "stored file detail", fileID)
}

// GetStoredFilesByIDs issues one request regardless of len(ids) and none
// when ids is empty.
func (d *DatabaseClient) GetStoredFilesByIDs(ctx context.Context, ids []string) ([]models.StoredFile, error) {
	if len(ids) == 0 {
		return []models.StoredFile{}, nil
	}
	q, err := d.from(ctx, tableStoredFiles)
	if err != nil {
		return nil, err
	}
	var rows []models.StoredFile
	if _, err := q.Select("id,url,mime_type,created_at", "", false).In("id", ids).ExecuteTo(&rows); err != nil {
		return nil, fmt.Errorf("failed to get stored files: %w", err)
	}
	if rows == nil {
		rows = []models.StoredFile{}
	}
	return rows, nil
}

func (d *DatabaseClient) DeleteStoredFile(ctx context.Context, id string) error {
	q, err := d.from(ctx, tableStoredFiles)
	if err != nil {
		return err
	}
	var rows []models.StoredFile
	if _, err := q.Delete(returnRows, "").Eq("id", id).ExecuteTo(&rows); err != nil {
		return fmt.Errorf("failed to delete stored file: %w", err)
	}
	_, err = first(rows, "stored file", id)
	return err
}

// users

func (d *DatabaseClient) ListUsers(ctx context.Context, filter models.UserFilter, from, to int) ([]models.UserAccount, int, error) {
	q, err := d.from(ctx, tableUsers)
	if err != nil {
		return nil, 0, err
	}
	var rows []models.UserAccount
	count, err := applyUserFilter(q.Select("*", countExact, false), filter).
		Order("created_at", &postgrest.OrderOpts{Ascending: false}).
		Range(from, to, "").
		ExecuteTo(&rows)
	if isRangeNotSatisfiable(err) {
		total, cerr := d.countUsers(ctx, filter)
		if cerr != nil {
			return nil, 0, cerr
		}
		return []models.UserAccount{}, total, nil
	}
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	if rows == nil {
		rows = []models.UserAccount{}
	}
	return rows, int(count), nil
}

func (d *DatabaseClient) countUsers(ctx context.Context, filter models.UserFilter) (int, error) {
	q, err := d.from(ctx, tableUsers)
	if err != nil {
		return 0, err
	}
	_, count, err := applyUserFilter(q.Select("id", countExact, true), filter).Execute()
	if err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return int(count), nil
}

func applyUserFilter(fb *postgrest.FilterBuilder, filter models.UserFilter) *postgrest.FilterBuilder {
	if filter.Role != "" {
		fb = fb.Eq("role", string(filter.Role))
	}
	if filter.Approved != nil {
		fb = fb.Eq("is_approved", strconv.FormatBool(*filter.Approved))
	}
	if or := OrFilter(filter.Search, "name", "nickname", "email"); or != "" {
		fb = fb.Or(or, "")
	}
	return fb
}

// isRangeNotSatisfiable matches the 416 PostgREST returns when an exact-count
// request starts past the end of the filtered set.
func isRangeNotSatisfiable(err error) bool {
	return err != nil && strings.Contains(err.Error(), "PGRST103")
}

func (d *DatabaseClient) GetUserByAuthID(ctx context.Context, authUserID string) (*models.UserAccount, error) {
	q, err := d.from(ctx, tableUsers)
	if err != nil {
		return nil, err
	}
	var rows []models.UserAccount
	if _, err := q.Select("*", "", false).Eq("auth_user_id", authUserID).ExecuteTo(&rows); err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return first(rows, "user", authUserID)
}

func (d *DatabaseClient) UpdateUser(ctx context.Context, id string, fields map[string]any) (*models.UserAccount, error) {
	q, err := d.from(ctx, tableUsers)
	if err != nil {
		return nil, err
	}
	var rows []models.UserAccount
	if _, err := q.Update(fields, returnRows, "").Eq("id", id).ExecuteTo(&rows); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return first(rows, "user", id)
}

// OrFilter builds a PostgREST or= expression matching term as a
// case-insensitive substring of any column. Characters that would break the
// expression are dropped; an empty result means no filter.
func OrFilter(term string, columns ...string) string {
	term = strings.Map(func(r rune) rune {
		switch r {
		case ',', '(', ')', '"', '*', '%', '\\', ':':
			return -1
		}
		return r
	}, strings.TrimSpace(term))
	term = strings.TrimSpace(term)
	if term == "" || len(columns) == 0 {
		return ""
	}
	parts := make([]string, len(columns))
	for i, c := range columns {
		parts[i] = c + ".ilike.*" + term + "*"
	}
	return strings.Join(parts, ",")
}
