package services

import (
	"context"
	"errors"
	"strings"

	"innkeeper/internal/common"
	"innkeeper/internal/models"
	"innkeeper/internal/repositories"

	"github.com/google/uuid"
)

type UserService interface {
	CreateUser(ctx context.Context, tenantID uuid.UUID, email, password, name string) (*models.User, error)
	GetUser(ctx context.Context, tenantID, id uuid.UUID) (*models.User, error)
	UpdateUser(ctx context.Context, tenantID uuid.UUID, user *models.User) error
	DeleteUser(ctx context.Context, tenantID, id uuid.UUID) error
	ListUsers(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.User, error)
}

type userService struct {
	userRepo repositories.UserRepository
}

func NewUserService(userRepo repositories.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

func (s *userService) CreateUser(ctx context.Context, tenantID uuid.UUID, email, password, name string) (*models.User, error) {
	if tenantID == uuid.Nil {
		return nil, common.ErrCrossTenantWrite
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || len(password) < 8 {
		return nil, errors.New("email and a password of at least 8 characters are required")
	}

	hash, err := hashPassword(password)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		ID:           uuid.New(),
		TenantID:     tenantID,
		Email:        email,
		PasswordHash: hash,
		Name:         name,
		Status:       "active",
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *userService) GetUser(ctx context.Context, tenantID, id uuid.UUID) (*models.User, error) {
	return s.userRepo.GetByID(ctx, tenantID, id)
}

func (s *userService) UpdateUser(ctx context.Context, tenantID uuid.UUID, user *models.User) error {
	if err := stampTenant(&user.TenantID, tenantID); err != nil {
		return err
	}
	return s.userRepo.Update(ctx, user)
}

func (s *userService) DeleteUser(ctx context.Context, tenantID, id uuid.UUID) error {
	return s.userRepo.Delete(ctx, tenantID, id)
}

func (s *userService) ListUsers(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.User, error) {
	limit, offset = common.ValidatePaginationParams(limit, offset)
	return s.userRepo.List(ctx, tenantID, limit, offset)
}
