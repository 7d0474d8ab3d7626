package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/baharkarakas/maverick-bank/internal/api/validate"
	"github.com/baharkarakas/maverick-bank/internal/auth"
	"github.com/baharkarakas/maverick-bank/internal/models"
	repo "github.com/baharkarakas/maverick-bank/internal/repository"
)

type UserService struct {
	store repo.Store
	tm    *auth.TokenManager
	log   *slog.Logger
}

func NewUserService(store repo.Store, tm *auth.TokenManager, log *slog.Logger) *UserService {
	if log == nil {
		log = slog.Default()
	}
	return &UserService{store: store, tm: tm, log: log}
}

func (s *UserService) Login(ctx context.Context, req models.LoginRequest) (models.LoginResult, error) {
	if err := invalid(validate.Struct(req)); err != nil {
		return models.LoginResult{}, err
	}
	r := s.store.Repos()
	u, err := r.Users.GetByUsername(ctx, strings.TrimSpace(req.Username))
	if errors.Is(err, repo.ErrNotFound) {
		return models.LoginResult{}, ErrInvalidCredentials
	}
	if err != nil {
		return models.LoginResult{}, err
	}
	if err := auth.VerifyPassword(req.Password, u.PasswordHash); err != nil {
		return models.LoginResult{}, ErrInvalidCredentials
	}
	subject, err := s.subjectID(ctx, r, u)
	if err != nil {
		return models.LoginResult{}, err
	}
	res, err := s.issue(u, subject)
	if err != nil {
		return models.LoginResult{}, err
	}
	s.log.Info("user logged in", "user_id", u.ID, "role", u.Role)
	return res, nil
}

// Refresh exchanges a refresh token for a new pair. The user must still exist.
func (s *UserService) Refresh(ctx context.Context, req models.RefreshRequest) (models.LoginResult, error) {
	if err := invalid(validate.Struct(req)); err != nil {
		return models.LoginResult{}, err
	}
	claims, err := s.tm.ParseRefresh(req.RefreshToken)
	if err != nil {
		return models.LoginResult{}, ErrInvalidCredentials
	}
	u, err := s.store.Repos().Users.GetByID(ctx, claims.UserID)
	if errors.Is(err, repo.ErrNotFound) {
		return models.LoginResult{}, ErrInvalidCredentials
	}
	if err != nil {
		return models.LoginResult{}, err
	}
	return s.issue(u, claims.SubjectID)
}

// CreateStaff adds an Admin or Employee user.
func (s *UserService) CreateStaff(ctx context.Context, req models.StaffRequest) (models.User, error) {
	req.Username = strings.TrimSpace(req.Username)
	if err := invalid(validate.Struct(req)); err != nil {
		return models.User{}, err
	}
	return s.create(ctx, req.Username, req.Password, req.Role)
}

// EnsureAdmin creates the bootstrap admin unless a user with that name exists.
func (s *UserService) EnsureAdmin(ctx context.Context, username, password string) error {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil
	}
	_, err := s.store.Repos().Users.GetByUsername(ctx, username)
	if err == nil {
		return nil
	}
	if !errors.Is(err, repo.ErrNotFound) {
		return err
	}
	if _, err := s.create(ctx, username, password, models.RoleAdmin); err != nil && !errors.Is(err, ErrUsernameTaken) {
		return err
	}
	s.log.Info("bootstrap admin ensured", "username", username)
	return nil
}

func (s *UserService) create(ctx context.Context, username, password, role string) (models.User, error) {
	u := models.User{Username: username, Role: role}
	if err := u.Validate(); err != nil {
		return models.User{}, invalid(err)
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return models.User{}, err
	}
	u.PasswordHash = hash
	u, err = s.store.Repos().Users.Create(ctx, u)
	if errors.Is(err, repo.ErrDuplicate) {
		return models.User{}, fmt.Errorf("%w: %s", ErrUsernameTaken, username)
	}
	return u, err
}

func (s *UserService) subjectID(ctx context.Context, r repo.Repositories, u models.User) (int64, error) {
	if u.Role != models.RoleCustomer {
		return u.ID, nil
	}
	c, err := r.Customers.GetByUserID(ctx, u.ID)
	if err != nil {
		return 0, fmt.Errorf("customer profile of user %d: %w", u.ID, err)
	}
	return c.ID, nil
}

func (s *UserService) issue(u models.User, subject int64) (models.LoginResult, error) {
	pair, err := s.tm.GeneratePair(u.ID, subject, u.Role)
	if err != nil {
		return models.LoginResult{}, err
	}
	return models.LoginResult{
		ID:           subject,
		Username:     u.Username,
		Role:         u.Role,
		AccessToken:  pair.Access,
		RefreshToken: pair.Refresh,
		ExpiresIn:    int64(time.Until(pair.AccessExp).Seconds()),
	}, nil
}
