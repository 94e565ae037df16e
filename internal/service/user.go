package service

import (
	"context"
	"fmt"

	"github.com/vietanh2810/stand-portal-api/internal/domain"
	"github.com/vietanh2810/stand-portal-api/internal/repository"
)

var (
	ErrUserNotFound = repository.ErrUserNotFound
)

type UserRepository interface {
	FindByID(ctx context.Context, id uint) (domain.User, error)
	FindByRole(ctx context.Context, role domain.Role) ([]domain.User, error)
}

type UserService struct {
	repo UserRepository
}

func NewUserService(repo UserRepository) *UserService {
	return &UserService{
		repo: repo,
	}
}

func (s *UserService) GetUser(ctx context.Context, id uint) (domain.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.User{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	return user, nil
}

// ListPartners is the administrator's view of partner accounts.
func (s *UserService) ListPartners(ctx context.Context, actor domain.User) ([]domain.Partner, error) {
	if !actor.IsAdmin() {
		return nil, domain.ErrAdminOnly
	}

	users, err := s.repo.FindByRole(ctx, domain.RolePartner)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindByRole -> %w", err)
	}

	partners := make([]domain.Partner, 0, len(users))
	for _, u := range users {
		partners = append(partners, toPartner(u))
	}

	return partners, nil
}

func toPartner(u domain.User) domain.Partner {
	return domain.Partner{
		ID:      u.ID,
		Name:    u.Name,
		Company: u.Company,
		Email:   u.Email,
	}
}
