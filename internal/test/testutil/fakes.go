// Package testutil holds in-memory stand-ins for the REST store and the
// storage bucket. Both honour the cascade rules of the real schema and can
// be told to fail a named method.
package testutil

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"site-admin-backend/internal/apperr"
	"site-admin-backend/internal/models"
)

// ErrInjected is the default failure returned by FailOn.
var ErrInjected = errors.New("injected failure")

type Store struct {
	mu sync.Mutex

	Sites           map[string]models.Site
	OperationalInfo map[string]models.SiteOperationalInfo
	Promotions      map[string]models.DepositPromotion
	Events          map[string]models.SiteEvent
	Files           map[string]models.StoredFile
	Details         map[string]models.StoredFileDetail
	Users           map[string]models.UserAccount

	clock    time.Time
	failures map[string]error
	calls    map[string]int
	lookups  [][]string
}

func NewStore() *Store {
	return &Store{
		Sites:           map[string]models.Site{},
		OperationalInfo: map[string]models.SiteOperationalInfo{},
		Promotions:      map[string]models.DepositPromotion{},
		Events:          map[string]models.SiteEvent{},
		Files:           map[string]models.StoredFile{},
		Details:         map[string]models.StoredFileDetail{},
		Users:           map[string]models.UserAccount{},
		clock:           time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		failures:        map[string]error{},
		calls:           map[string]int{},
	}
}

// FailOn makes method return err (ErrInjected when nil) until cleared with
// Recover.
func (s *Store) FailOn(method string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		err = ErrInjected
	}
	s.failures[method] = err
}

func (s *Store) Recover(method string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.failures, method)
}

func (s *Store) Calls(method string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[method]
}

// FileLookups returns the id batches passed to GetStoredFilesByIDs.
func (s *Store) FileLookups() [][]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([][]string, len(s.lookups))
	copy(out, s.lookups)
	return out
}

// enter records the call and returns the injected failure, if any. The
// caller must hold s.mu.
func (s *Store) enter(ctx context.Context, method string) error {
	s.calls[method]++
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.failures[method]
}

func (s *Store) tick() *time.Time {
	s.clock = s.clock.Add(time.Second)
	t := s.clock
	return &t
}

func notFound(what, id string) error {
	return fmt.Errorf("%s %s: %w", what, id, apperr.ErrNotFound)
}

// Seeding helpers bypass failure injection and call counting.

func (s *Store) SeedSite(site models.Site) models.Site {
	s.mu.Lock()
	defer s.mu.Unlock()
	if site.ID == "" {
		site.ID = uuid.NewString()
	}
	if site.Category == "" {
		site.Category = models.CategoryCasino
	}
	if site.Status == "" {
		site.Status = models.StatusActive
	}
	site.CreatedAt = s.tick()
	s.Sites[site.ID] = site
	return site
}

func (s *Store) SeedEvent(ev models.SiteEvent) models.SiteEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	ev.CreatedAt = s.tick()
	s.Events[ev.ID] = ev
	return ev
}

func (s *Store) SeedFile(url, path string) models.StoredFile {
	s.mu.Lock()
	defer s.mu.Unlock()
	f := models.StoredFile{ID: uuid.NewString(), URL: url, MimeType: "image/png", CreatedAt: s.tick()}
	s.Files[f.ID] = f
	d := models.StoredFileDetail{ID: uuid.NewString(), FileID: f.ID, Path: path, Size: 1, Extension: "png"}
	s.Details[d.ID] = d
	return f
}

func (s *Store) SeedUser(u models.UserAccount) models.UserAccount {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.AuthUserID == "" {
		u.AuthUserID = uuid.NewString()
	}
	if u.Role == "" {
		u.Role = models.RoleUser
	}
	u.CreatedAt = s.tick()
	s.Users[u.ID] = u
	return u
}

// Row counters for assertions.

func (s *Store) CountSitesNamed(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, site := range s.Sites {
		if site.Name == name {
			n++
		}
	}
	return n
}

func (s *Store) PromotionsFor(siteID string) []models.DepositPromotion {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.DepositPromotion
	for _, p := range s.Promotions {
		if p.SiteSeq == siteID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DisplayOrder < out[j].DisplayOrder })
	return out
}

func (s *Store) Len() (sites, infos, promotions, events, files, details int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Sites), len(s.OperationalInfo), len(s.Promotions), len(s.Events), len(s.Files), len(s.Details)
}

// SiteStore

func (s *Store) InsertSite(ctx context.Context, site *models.Site) (*models.Site, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(ctx, "InsertSite"); err != nil {
		return nil, err
	}
	row := *site
	row.ID = uuid.NewString()
	row.CreatedAt = s.tick()
	row.UpdatedAt = row.CreatedAt
	s.Sites[row.ID] = row
	return &row, nil
}

func (s *Store) GetSite(ctx context.Context, id string) (*models.Site, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(ctx, "GetSite"); err != nil {
		return nil, err
	}
	row, ok := s.Sites[id]
	if !ok {
		return nil, notFound("site", id)
	}
	return &row, nil
}

func (s *Store) UpdateSite(ctx context.Context, id string, fields map[string]any) (*models.Site, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(ctx, "UpdateSite"); err != nil {
		return nil, err
	}
	row, ok := s.Sites[id]
	if !ok {
		return nil, notFound("site", id)
	}
	for k, v := range fields {
		switch k {
		case "name":
			row.Name = v.(string)
		case "url":
			row.URL = v.(string)
		case "category":
			row.Category = v.(models.SiteCategory)
		case "status":
			row.Status = v.(models.SiteStatus)
		case "is_recommended":
			row.IsRecommended = v.(bool)
		case "recommend_order":
			row.RecommendOrder = v.(int)
		case "logo_image":
			if v == nil {
				row.LogoImage = nil
			} else {
				logo := v.(string)
				row.LogoImage = &logo
			}
		default:
			return nil, fmt.Errorf("unknown site column %q", k)
		}
	}
	row.UpdatedAt = s.tick()
	s.Sites[id] = row
	return &row, nil
}

// DeleteSite cascades to operational info, promotions and events. Logo
// files are left alone.
func (s *Store) DeleteSite(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(ctx, "DeleteSite"); err != nil {
		return err
	}
	if _, ok := s.Sites[id]; !ok {
		return notFound("site", id)
	}
	delete(s.Sites, id)
	for k, v := range s.OperationalInfo {
		if v.SiteSeq == id {
			delete(s.OperationalInfo, k)
		}
	}
	for k, v := range s.Promotions {
		if v.SiteSeq == id {
			delete(s.Promotions, k)
		}
	}
	for k, v := range s.Events {
		if v.SiteSeq == id {
			delete(s.Events, k)
		}
	}
	return nil
}

func (s *Store) matching(filter models.SiteFilter) []models.Site {
	term := strings.ToLower(strings.TrimSpace(filter.Search))
	var out []models.Site
	for _, site := range s.Sites {
		if filter.Category != "" && site.Category != filter.Category {
			continue
		}
		if filter.Status != "" && site.Status != filter.Status {
			continue
		}
		if term != "" && !strings.Contains(strings.ToLower(site.Name), term) && !strings.Contains(strings.ToLower(site.URL), term) {
			continue
		}
		out = append(out, site)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(*out[j].CreatedAt) })
	return out
}

func (s *Store) ListSites(ctx context.Context, filter models.SiteFilter, from, to int) ([]models.Site, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(ctx, "ListSites"); err != nil {
		return nil, 0, err
	}
	all := s.matching(filter)
	return window(all, from, to), len(all), nil
}

func (s *Store) CountSites(ctx context.Context, filter models.SiteFilter) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(ctx, "CountSites"); err != nil {
		return 0, err
	}
	return len(s.matching(filter)), nil
}

func window[T any](rows []T, from, to int) []T {
	if from >= len(rows) {
		return []T{}
	}
	if to >= len(rows) {
		to = len(rows) - 1
	}
	return append([]T{}, rows[from:to+1]...)
}

// SiteChildStore

func (s *Store) InsertOperationalInfo(ctx context.Context, info *models.SiteOperationalInfo) (*models.SiteOperationalInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(ctx, "InsertOperationalInfo"); err != nil {
		return nil, err
	}
	if _, ok := s.Sites[info.SiteSeq]; !ok {
		return nil, fmt.Errorf("operational info references missing site %s", info.SiteSeq)
	}
	for _, v := range s.OperationalInfo {
		if v.SiteSeq == info.SiteSeq {
			return nil, fmt.Errorf("duplicate operational info for site %s", info.SiteSeq)
		}
	}
	row := *info
	row.ID = uuid.NewString()
	row.CreatedAt = s.tick()
	s.OperationalInfo[row.ID] = row
	return &row, nil
}

func (s *Store) GetOperationalInfo(ctx context.Context, siteID string) (*models.SiteOperationalInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(ctx, "GetOperationalInfo"); err != nil {
		return nil, err
	}
	for _, v := range s.OperationalInfo {
		if v.SiteSeq == siteID {
			row := v
			return &row, nil
		}
	}
	return nil, nil
}

// InsertPromotions is all-or-nothing, like a single REST bulk insert.
func (s *Store) InsertPromotions(ctx context.Context, promotions []models.DepositPromotion) ([]models.DepositPromotion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(ctx, "InsertPromotions"); err != nil {
		return nil, err
	}
	out := make([]models.DepositPromotion, len(promotions))
	for i, p := range promotions {
		if _, ok := s.Sites[p.SiteSeq]; !ok {
			return nil, fmt.Errorf("promotion references missing site %s", p.SiteSeq)
		}
		p.ID = uuid.NewString()
		p.CreatedAt = s.tick()
		out[i] = p
	}
	for _, p := range out {
		s.Promotions[p.ID] = p
	}
	return out, nil
}

func (s *Store) ListPromotions(ctx context.Context, siteID string) ([]models.DepositPromotion, error) {
	s.mu.Lock()
	if err := s.enter(ctx, "ListPromotions"); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	s.mu.Unlock()
	out := s.PromotionsFor(siteID)
	if out == nil {
		out = []models.DepositPromotion{}
	}
	return out, nil
}

func (s *Store) UpdatePromotion(ctx context.Context, id string, fields map[string]any) (*models.DepositPromotion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(ctx, "UpdatePromotion"); err != nil {
		return nil, err
	}
	row, ok := s.Promotions[id]
	if !ok {
		return nil, notFound("promotion", id)
	}
	for k, v := range fields {
		switch k {
		case "name":
			row.Name = v.(string)
		case "deposit_type":
			row.DepositType = v.(models.DepositType)
		case "bonus_rate":
			row.BonusRate = v.(float64)
		case "bonus_amount":
			row.BonusAmount = v.(float64)
		case "min_deposit":
			row.MinDeposit = v.(float64)
		case "max_bonus":
			f := v.(float64)
			row.MaxBonus = &f
		case "rollover":
			f := v.(float64)
			row.Rollover = &f
		case "is_active":
			row.IsActive = v.(bool)
		case "display_order":
			row.DisplayOrder = v.(int)
		default:
			return nil, fmt.Errorf("unknown promotion column %q", k)
		}
	}
	s.Promotions[id] = row
	return &row, nil
}

func (s *Store) DeletePromotion(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(ctx, "DeletePromotion"); err != nil {
		return err
	}
	if _, ok := s.Promotions[id]; !ok {
		return notFound("promotion", id)
	}
	delete(s.Promotions, id)
	return nil
}

func (s *Store) ListEvents(ctx context.Context, siteID string) ([]models.SiteEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(ctx, "ListEvents"); err != nil {
		return nil, err
	}
	out := []models.SiteEvent{}
	for _, ev := range s.Events {
		if ev.SiteSeq == siteID {
			out = append(out, ev)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(*out[j].CreatedAt) })
	return out, nil
}

// FileStore

func (s *Store) InsertStoredFile(ctx context.Context, file *models.StoredFile) (*models.StoredFile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(ctx, "InsertStoredFile"); err != nil {
		return nil, err
	}
	row := *file
	row.ID = uuid.NewString()
	row.CreatedAt = s.tick()
	s.Files[row.ID] = row
	return &row, nil
}

func (s *Store) InsertStoredFileDetail(ctx context.Context, detail *models.StoredFileDetail) (*models.StoredFileDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(ctx, "InsertStoredFileDetail"); err != nil {
		return nil, err
	}
	if _, ok := s.Files[detail.FileID]; !ok {
		return nil, fmt.Errorf("detail references missing file %s", detail.FileID)
	}
	row := *detail
	row.ID = uuid.NewString()
	s.Details[row.ID] = row
	return &row, nil
}

func (s *Store) GetStoredFileDetail(ctx context.Context, fileID string) (*models.StoredFileDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(ctx, "GetStoredFileDetail"); err != nil {
		return nil, err
	}
	for _, d := range s.Details {
		if d.FileID == fileID {
			row := d
			return &row, nil
		}
	}
	return nil, notFound("stored file detail", fileID)
}

func (s *Store) GetStoredFilesByIDs(ctx context.Context, ids []string) ([]models.StoredFile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lookups = append(s.lookups, append([]string{}, ids...))
	if err := s.enter(ctx, "GetStoredFilesByIDs"); err != nil {
		return nil, err
	}
	out := []models.StoredFile{}
	for _, id := range ids {
		if f, ok := s.Files[id]; ok {
			out = append(out, f)
		}
	}
	return out, nil
}

// DeleteStoredFile cascades to the detail row.
func (s *Store) DeleteStoredFile(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(ctx, "DeleteStoredFile"); err != nil {
		return err
	}
	if _, ok := s.Files[id]; !ok {
		return notFound("stored file", id)
	}
	delete(s.Files, id)
	for k, d := range s.Details {
		if d.FileID == id {
			delete(s.Details, k)
		}
	}
	return nil
}

// UserStore

func (s *Store) ListUsers(ctx context.Context, filter models.UserFilter, from, to int) ([]models.UserAccount, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(ctx, "ListUsers"); err != nil {
		return nil, 0, err
	}
	term := strings.ToLower(filter.Search)
	var all []models.UserAccount
	for _, u := range s.Users {
		if filter.Role != "" && u.Role != filter.Role {
			continue
		}
		if filter.Approved != nil && u.IsApproved != *filter.Approved {
			continue
		}
		if term != "" &&
			!strings.Contains(strings.ToLower(u.Name), term) &&
			!strings.Contains(strings.ToLower(u.Nickname), term) &&
			!strings.Contains(strings.ToLower(u.Email), term) {
			continue
		}
		all = append(all, u)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(*all[j].CreatedAt) })
	return window(all, from, to), len(all), nil
}

func (s *Store) GetUserByAuthID(ctx context.Context, authUserID string) (*models.UserAccount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(ctx, "GetUserByAuthID"); err != nil {
		return nil, err
	}
	for _, u := range s.Users {
		if u.AuthUserID == authUserID {
			row := u
			return &row, nil
		}
	}
	return nil, notFound("user", authUserID)
}

func (s *Store) UpdateUser(ctx context.Context, id string, fields map[string]any) (*models.UserAccount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(ctx, "UpdateUser"); err != nil {
		return nil, err
	}
	row, ok := s.Users[id]
	if !ok {
		return nil, notFound("user", id)
	}
	for k, v := range fields {
		switch k {
		case "role":
			row.Role = v.(models.UserRole)
		case "is_approved":
			row.IsApproved = v.(bool)
		default:
			return nil, fmt.Errorf("unknown user column %q", k)
		}
	}
	s.Users[id] = row
	return &row, nil
}

// Bucket is an in-memory object store with no-overwrite uploads.
type Bucket struct {
	mu      sync.Mutex
	Objects map[string][]byte
	Types   map[string]string

	UploadErr error
	RemoveErr error
	uploads   int
	removes   int
}

func NewBucket() *Bucket {
	return &Bucket{Objects: map[string][]byte{}, Types: map[string]string{}}
}

func (b *Bucket) Upload(ctx context.Context, path, contentType string, data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.uploads++
	if err := ctx.Err(); err != nil {
		return err
	}
	if b.UploadErr != nil {
		return b.UploadErr
	}
	if _, exists := b.Objects[path]; exists {
		return fmt.Errorf("object %s already exists", path)
	}
	b.Objects[path] = append([]byte{}, data...)
	b.Types[path] = contentType
	return nil
}

func (b *Bucket) PublicURL(path string) string {
	return "https://cdn.test/site-images/" + path
}

func (b *Bucket) Remove(ctx context.Context, path string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.removes++
	if err := ctx.Err(); err != nil {
		return err
	}
	if b.RemoveErr != nil {
		return b.RemoveErr
	}
	delete(b.Objects, path)
	delete(b.Types, path)
	return nil
}

func (b *Bucket) Put(path string, data []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Objects[path] = data
}

func (b *Bucket) Has(path string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.Objects[path]
	return ok
}

func (b *Bucket) Uploads() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.uploads
}

func (b *Bucket) Removes() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.removes
}
