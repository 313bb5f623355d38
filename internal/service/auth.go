package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/tablewise/restaurant-api/internal/domain"
	"github.com/tablewise/restaurant-api/internal/repository"
)

var (
	ErrUserExists      = repository.ErrUserExists
	ErrWrongPassword   = errors.New("wrong password")
	ErrInvalidPassword = domain.NewError(domain.ErrInvalidArgument, "invalid password")
	ErrUnknownRole     = domain.NewError(domain.ErrInvalidArgument, "role must be one of manager, chef, waiter, cashier, host")
)

type AuthUserRepository interface {
	Create(ctx context.Context, user domain.User) (domain.User, error)
	FindByID(ctx context.Context, id uint) (domain.User, error)
	FindByUsername(ctx context.Context, username string) (domain.User, error)
	UpdatePassword(ctx context.Context, id uint, hash string) error
}

type AuthService struct {
	repo AuthUserRepository
}

func NewAuthService(repo AuthUserRepository) *AuthService {
	return &AuthService{
		repo: repo,
	}
}

func (s *AuthService) Register(ctx context.Context, user domain.User) (domain.User, error) {
	if user.Role == "" {
		user.Role = domain.RoleWaiter
	}
	if !user.Role.Valid() {
		return domain.User{}, ErrUnknownRole
	}

	hash, err := hashPassword(user.Password)
	if err != nil {
		return domain.User{}, err
	}
	user.Password = hash

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		return domain.User{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	zap.L().Info("user registered", zap.Uint("user_id", created.ID), zap.String("role", string(created.Role)))

	return created, nil
}

func (s *AuthService) Login(ctx context.Context, username, password string) (domain.User, error) {
	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return domain.User{}, ErrUserNotFound
		}

		return domain.User{}, fmt.Errorf("s.repo.FindByUsername -> %w", err)
	}

	if err = bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return domain.User{}, ErrWrongPassword
	}

	return user, nil
}

func (s *AuthService) ChangePassword(ctx context.Context, actor domain.Actor, oldPassword, newPassword string) error {
	user, err := s.repo.FindByID(ctx, actor.UserID)
	if err != nil {
		return fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	if err = bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(oldPassword)); err != nil {
		return ErrInvalidPassword
	}

	hash, err := hashPassword(newPassword)
	if err != nil {
		return err
	}

	if err = s.repo.UpdatePassword(ctx, user.ID, hash); err != nil {
		return fmt.Errorf("s.repo.UpdatePassword -> %w", err)
	}

	return nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("bcrypt.GenerateFromPassword -> %w", err)
	}
	return string(hash), nil
}
