package services

import (
	"context"
	"strings"

	"site-admin-backend/internal/apperr"
	"site-admin-backend/internal/logger"
	"site-admin-backend/internal/models"
)

type UserPage struct {
	Data       []models.UserAccount `json:"data"`
	TotalCount int                  `json:"totalCount"`
}

// UserService backs the member management screens and the admin gate.
type UserService struct {
	users UserStore
	log   *logger.Logger
}

func NewUserService(users UserStore, log *logger.Logger) *UserService {
	return &UserService{
		users: users,
		log:   logger.OrNop(log).With("service", "UserService"),
	}
}

func (s *UserService) ListUsers(ctx context.Context, filter models.UserFilter, page, pageSize int) (res *UserPage, err error) {
	const op = "ListUsers"
	defer recoverInto(op, s.log, &err)

	filter.Search = strings.TrimSpace(filter.Search)
	if err := validate.Struct(filter); err != nil {
		return nil, apperr.Validation(op, err)
	}
	from, to, err := PageRange(page, pageSize)
	if err != nil {
		return nil, apperr.Validation(op, err)
	}

	rows, total, err := s.users.ListUsers(ctx, filter, from, to)
	if err != nil {
		return nil, apperr.Remote(op, err)
	}
	if rows == nil {
		rows = []models.UserAccount{}
	}
	return &UserPage{Data: rows, TotalCount: total}, nil
}

func (s *UserService) UpdateUser(ctx context.Context, userID string, patch models.UserPatch) (user *models.UserAccount, err error) {
	const op = "UpdateUser"
	defer recoverInto(op, s.log, &err)

	if userID == "" {
		return nil, apperr.Validationf(op, "user id is required")
	}
	if err := validate.Struct(patch); err != nil {
		return nil, apperr.Validation(op, err)
	}
	fields := patch.Fields()
	if len(fields) == 0 {
		return nil, apperr.Validationf(op, "nothing to update")
	}

	user, err = s.users.UpdateUser(ctx, userID, fields)
	if err != nil {
		return nil, apperr.Remote(op, err)
	}
	s.log.Info("user updated", "user_id", userID, "fields", len(fields))
	return user, nil
}

// AuthorizeAdmin resolves the account behind an auth subject and fails with
// a forbidden error unless it holds an admin role.
func (s *UserService) AuthorizeAdmin(ctx context.Context, authUserID string) (user *models.UserAccount, err error) {
	const op = "AuthorizeAdmin"
	defer recoverInto(op, s.log, &err)

	if authUserID == "" {
		return nil, apperr.New(apperr.KindForbidden, op, apperr.ErrForbidden)
	}
	user, err = s.users.GetUserByAuthID(ctx, authUserID)
	if err != nil {
		if apperr.KindOf(apperr.Remote(op, err)) == apperr.KindNotFound {
			return nil, apperr.New(apperr.KindForbidden, op, apperr.ErrForbidden)
		}
		return nil, apperr.Remote(op, err)
	}
	if !user.Role.IsAdmin() {
		return nil, apperr.New(apperr.KindForbidden, op, apperr.ErrForbidden)
	}
	return user, nil
}
