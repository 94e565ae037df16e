package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vietanh2810/stand-portal-api/internal/domain"
	"github.com/vietanh2810/stand-portal-api/internal/repository"
)

var ErrConfigurationNotFound = repository.ErrConfigurationNotFound

type ConfigurationRepository interface {
	Create(ctx context.Context, cfg domain.StandConfiguration) (domain.StandConfiguration, error)
	FindByID(ctx context.Context, id uint) (domain.StandConfiguration, error)
	FindDefault(ctx context.Context) (domain.StandConfiguration, error)
	List(ctx context.Context, status domain.ConfigurationStatus) ([]domain.StandConfiguration, error)
	Update(ctx context.Context, id uint, fn func(cfg *domain.StandConfiguration) error) (domain.StandConfiguration, error)
	SetDefault(ctx context.Context, id uint) (domain.StandConfiguration, error)
	Delete(ctx context.Context, id uint) error
}

// ConfigurationService manages requirement templates. Reads are open to
// every authenticated user; writes need an administrator.
type ConfigurationService struct {
	repo ConfigurationRepository
	now  func() time.Time
}

func NewConfigurationService(repo ConfigurationRepository) *ConfigurationService {
	return &ConfigurationService{
		repo: repo,
		now:  time.Now,
	}
}

func (s *ConfigurationService) Create(ctx context.Context, actor domain.User, name string) (domain.StandConfiguration, error) {
	if !actor.IsAdmin() {
		return domain.StandConfiguration{}, domain.ErrAdminOnly
	}
	if strings.TrimSpace(name) == "" {
		return domain.StandConfiguration{}, domain.ErrNameRequired
	}

	created, err := s.repo.Create(ctx, domain.NewConfiguration(name))
	if err != nil {
		return domain.StandConfiguration{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	return created, nil
}

func (s *ConfigurationService) Get(ctx context.Context, id uint) (domain.StandConfiguration, error) {
	cfg, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.StandConfiguration{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	return cfg, nil
}

func (s *ConfigurationService) GetDefault(ctx context.Context) (domain.StandConfiguration, error) {
	cfg, err := s.repo.FindDefault(ctx)
	if err != nil {
		return domain.StandConfiguration{}, fmt.Errorf("s.repo.FindDefault -> %w", err)
	}

	return cfg, nil
}

func (s *ConfigurationService) List(ctx context.Context, status domain.ConfigurationStatus) ([]domain.StandConfiguration, error) {
	if status != "" && !status.Valid() {
		return nil, domain.ErrInvalidConfigStatus
	}

	configs, err := s.repo.List(ctx, status)
	if err != nil {
		return nil, fmt.Errorf("s.repo.List -> %w", err)
	}

	return configs, nil
}

func (s *ConfigurationService) Duplicate(ctx context.Context, actor domain.User, id uint) (domain.StandConfiguration, error) {
	if !actor.IsAdmin() {
		return domain.StandConfiguration{}, domain.ErrAdminOnly
	}

	source, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.StandConfiguration{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	created, err := s.repo.Create(ctx, source.Duplicate())
	if err != nil {
		return domain.StandConfiguration{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	return created, nil
}

// SetDefault makes id the only default template and activates it.
func (s *ConfigurationService) SetDefault(ctx context.Context, actor domain.User, id uint) (domain.StandConfiguration, error) {
	if !actor.IsAdmin() {
		return domain.StandConfiguration{}, domain.ErrAdminOnly
	}

	cfg, err := s.repo.SetDefault(ctx, id)
	if err != nil {
		return domain.StandConfiguration{}, fmt.Errorf("s.repo.SetDefault -> %w", err)
	}

	return cfg, nil
}

func (s *ConfigurationService) Archive(ctx context.Context, actor domain.User, id uint) (domain.StandConfiguration, error) {
	archived := domain.ConfigurationArchived
	return s.Update(ctx, actor, id, domain.ConfigurationPatch{Status: &archived})
}

func (s *ConfigurationService) Update(ctx context.Context, actor domain.User, id uint, patch domain.ConfigurationPatch) (domain.StandConfiguration, error) {
	if !actor.IsAdmin() {
		return domain.StandConfiguration{}, domain.ErrAdminOnly
	}
	if err := patch.Validate(); err != nil {
		return domain.StandConfiguration{}, err
	}

	return s.update(ctx, actor, id, func(cfg *domain.StandConfiguration) error {
		patch.Apply(cfg, s.now())
		return nil
	})
}

func (s *ConfigurationService) AddRequirement(ctx context.Context, actor domain.User, id uint, req domain.ArtworkRequirement) (domain.StandConfiguration, error) {
	if !actor.IsAdmin() {
		return domain.StandConfiguration{}, domain.ErrAdminOnly
	}
	if err := req.Validate(); err != nil {
		return domain.StandConfiguration{}, err
	}
	req.ID = uuid.New()
	req.Name = strings.TrimSpace(req.Name)

	return s.update(ctx, actor, id, func(cfg *domain.StandConfiguration) error {
		if _, exists := cfg.FindRequirement(req.Name); exists {
			return domain.ErrDuplicateRequirement
		}
		cfg.UpsertRequirement(req)
		return nil
	})
}

func (s *ConfigurationService) UpdateRequirement(ctx context.Context, actor domain.User, id uint, reqID uuid.UUID, req domain.ArtworkRequirement) (domain.StandConfiguration, error) {
	if !actor.IsAdmin() {
		return domain.StandConfiguration{}, domain.ErrAdminOnly
	}
	if err := req.Validate(); err != nil {
		return domain.StandConfiguration{}, err
	}
	req.ID = reqID
	req.Name = strings.TrimSpace(req.Name)

	return s.update(ctx, actor, id, func(cfg *domain.StandConfiguration) error {
		found := false
		for _, existing := range cfg.ArtworkRequirements {
			if existing.ID == reqID {
				found = true
			} else if existing.Name == req.Name {
				return domain.ErrDuplicateRequirement
			}
		}
		if !found {
			return domain.ErrRequirementNotFound
		}
		cfg.UpsertRequirement(req)
		return nil
	})
}

func (s *ConfigurationService) RemoveRequirement(ctx context.Context, actor domain.User, id uint, reqID uuid.UUID) (domain.StandConfiguration, error) {
	return s.update(ctx, actor, id, func(cfg *domain.StandConfiguration) error {
		if !cfg.RemoveRequirement(reqID) {
			return domain.ErrRequirementNotFound
		}
		return nil
	})
}

// AddVoltage is idempotent: adding an offered voltage changes nothing.
func (s *ConfigurationService) AddVoltage(ctx context.Context, actor domain.User, id uint, voltage string) (domain.StandConfiguration, error) {
	if !actor.IsAdmin() {
		return domain.StandConfiguration{}, domain.ErrAdminOnly
	}
	if strings.TrimSpace(voltage) == "" {
		return domain.StandConfiguration{}, domain.ErrBlankVoltage
	}

	return s.update(ctx, actor, id, func(cfg *domain.StandConfiguration) error {
		cfg.AddVoltage(voltage)
		return nil
	})
}

func (s *ConfigurationService) RemoveVoltage(ctx context.Context, actor domain.User, id uint, voltage string) (domain.StandConfiguration, error) {
	return s.update(ctx, actor, id, func(cfg *domain.StandConfiguration) error {
		cfg.RemoveVoltage(strings.TrimSpace(voltage))
		return nil
	})
}

func (s *ConfigurationService) Delete(ctx context.Context, actor domain.User, id uint) error {
	if !actor.IsAdmin() {
		return domain.ErrAdminOnly
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrConfigurationIsDefault) {
			return domain.ErrDefaultConfiguration
		}
		return fmt.Errorf("s.repo.Delete -> %w", err)
	}

	return nil
}

func (s *ConfigurationService) update(ctx context.Context, actor domain.User, id uint, fn func(cfg *domain.StandConfiguration) error) (domain.StandConfiguration, error) {
	if !actor.IsAdmin() {
		return domain.StandConfiguration{}, domain.ErrAdminOnly
	}

	cfg, err := s.repo.Update(ctx, id, fn)
	if err != nil {
		return domain.StandConfiguration{}, fmt.Errorf("s.repo.Update -> %w", err)
	}

	return cfg, nil
}
