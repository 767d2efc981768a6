package service

import (
	"context"
	"errors"

	"recruit/tracker/app/internal/domain"

	"go.uber.org/zap"
)

// Profile is what the chat platform tells us about a user.
type Profile struct {
	TelegramID int64  `json:"telegram_id"`
	Username   string `json:"username"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
}

// UsersService registers users and manages roles.
type UsersService struct {
	Env
	directorID  int64
	autoPromote bool
}

// NewUsersService promotes directorTelegramID to director on registration
// when autoPromote is set.
func NewUsersService(env Env, directorTelegramID int64, autoPromote bool) *UsersService {
	return &UsersService{Env: env, directorID: directorTelegramID, autoPromote: autoPromote && directorTelegramID != 0}
}

// Register is get-or-create. New users are candidates; an existing user's
// profile is refreshed when it changed.
func (s *UsersService) Register(ctx context.Context, p Profile) (domain.User, error) {
	if p.TelegramID <= 0 {
		return domain.User{}, domain.ValidationError("telegram id is required", map[string]string{"telegram_id": "required"})
	}
	p.Username = domain.CleanText(p.Username)
	p.FirstName = domain.CleanText(p.FirstName)
	p.LastName = domain.CleanText(p.LastName)

	u, err := s.Users.GetByTelegramID(ctx, nil, p.TelegramID)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		u, err = s.create(ctx, p)
		if errors.Is(err, domain.ErrConflict) {
			// a concurrent registration won; read theirs
			u, err = s.Users.GetByTelegramID(ctx, nil, p.TelegramID)
		}
		if err != nil {
			return domain.User{}, err
		}
	case err != nil:
		return domain.User{}, err
	case u.Username != p.Username || u.FirstName != p.FirstName || u.LastName != p.LastName:
		u.Username, u.FirstName, u.LastName = p.Username, p.FirstName, p.LastName
		if err := s.Users.UpdateProfile(ctx, nil, u, s.now()); err != nil {
			return domain.User{}, err
		}
	}

	if s.autoPromote && u.TelegramID == s.directorID && u.Role != domain.RoleDirector {
		if err := s.Users.SetRole(ctx, nil, u.ID, domain.RoleDirector, s.now()); err != nil {
			return domain.User{}, err
		}
		u.Role = domain.RoleDirector
		s.Log.Info("director assigned", zap.Int64("telegram_id", u.TelegramID))
	}
	return u, nil
}

func (s *UsersService) create(ctx context.Context, p Profile) (domain.User, error) {
	now := s.now()
	u := domain.User{
		TelegramID: p.TelegramID,
		Username:   p.Username,
		FirstName:  p.FirstName,
		LastName:   p.LastName,
		Role:       domain.RoleCandidate,
		IsActive:   true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.Users.Create(ctx, nil, &u); err != nil {
		return domain.User{}, err
	}
	s.Log.Info("user registered", zap.Int64("user_id", u.ID), zap.Int64("telegram_id", u.TelegramID))
	return u, nil
}

// EnsureDirector makes sure the configured director exists with the director role.
func (s *UsersService) EnsureDirector(ctx context.Context) error {
	if !s.autoPromote {
		return nil
	}
	_, err := s.Register(ctx, Profile{TelegramID: s.directorID})
	return err
}

func (s *UsersService) ByTelegramID(ctx context.Context, telegramID int64) (domain.User, error) {
	return s.Users.GetByTelegramID(ctx, nil, telegramID)
}

// SetRole changes the role of the user with telegramID.
func (s *UsersService) SetRole(ctx context.Context, telegramID int64, role domain.Role) (domain.User, error) {
	if _, err := domain.ParseRole(string(role)); err != nil {
		return domain.User{}, err
	}
	u, err := s.Users.GetByTelegramID(ctx, nil, telegramID)
	if err != nil {
		return domain.User{}, err
	}
	if err := s.Users.SetRole(ctx, nil, u.ID, role, s.now()); err != nil {
		return domain.User{}, err
	}
	s.Log.Info("role changed", zap.Int64("telegram_id", telegramID), zap.String("from", string(u.Role)), zap.String("to", string(role)))
	u.Role = role
	return u, nil
}

// List returns users, optionally of one role.
func (s *UsersService) List(ctx context.Context, role *domain.Role) ([]domain.User, error) {
	return s.Users.List(ctx, nil, role)
}
