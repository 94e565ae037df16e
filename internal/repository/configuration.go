package repository

import (
	"context"
	"fmt"

	"gorm.io/datatypes"

	"github.com/vietanh2810/stand-portal-api/internal/domain"
	"github.com/vietanh2810/stand-portal-api/internal/repository/dao"
)

var (
	ErrConfigurationNotFound  = dao.ErrConfigurationNotFound
	ErrConfigurationIsDefault = dao.ErrConfigurationIsDefault
)

type ConfigurationDAO interface {
	Insert(ctx context.Context, cfg dao.Configuration) (dao.Configuration, error)
	FindByID(ctx context.Context, id uint) (dao.Configuration, error)
	FindDefault(ctx context.Context) (dao.Configuration, error)
	List(ctx context.Context, status string) ([]dao.Configuration, error)
	Update(ctx context.Context, id uint, fn func(cfg *dao.Configuration) error) (dao.Configuration, error)
	SetDefault(ctx context.Context, id uint) (dao.Configuration, error)
	Delete(ctx context.Context, id uint) error
}

type ConfigurationRepository struct {
	dao ConfigurationDAO
}

func NewConfigurationRepository(dao ConfigurationDAO) *ConfigurationRepository {
	return &ConfigurationRepository{
		dao: dao,
	}
}

func (r *ConfigurationRepository) Create(ctx context.Context, cfg domain.StandConfiguration) (domain.StandConfiguration, error) {
	created, err := r.dao.Insert(ctx, configurationDomainToDao(cfg))
	if err != nil {
		return domain.StandConfiguration{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return configurationDaoToDomain(created), nil
}

func (r *ConfigurationRepository) FindByID(ctx context.Context, id uint) (domain.StandConfiguration, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.StandConfiguration{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return configurationDaoToDomain(found), nil
}

func (r *ConfigurationRepository) FindDefault(ctx context.Context) (domain.StandConfiguration, error) {
	found, err := r.dao.FindDefault(ctx)
	if err != nil {
		return domain.StandConfiguration{}, fmt.Errorf("r.dao.FindDefault -> %w", err)
	}

	return configurationDaoToDomain(found), nil
}

func (r *ConfigurationRepository) List(ctx context.Context, status domain.ConfigurationStatus) ([]domain.StandConfiguration, error) {
	found, err := r.dao.List(ctx, string(status))
	if err != nil {
		return nil, fmt.Errorf("r.dao.List -> %w", err)
	}

	configs := make([]domain.StandConfiguration, 0, len(found))
	for _, c := range found {
		configs = append(configs, configurationDaoToDomain(c))
	}

	return configs, nil
}

// Update hands fn the locked template; whatever fn leaves in it is saved.
func (r *ConfigurationRepository) Update(ctx context.Context, id uint, fn func(cfg *domain.StandConfiguration) error) (domain.StandConfiguration, error) {
	updated, err := r.dao.Update(ctx, id, func(row *dao.Configuration) error {
		cfg := configurationDaoToDomain(*row)
		if err := fn(&cfg); err != nil {
			return err
		}

		next := configurationDomainToDao(cfg)
		next.ID = row.ID
		next.CreatedAt = row.CreatedAt
		*row = next
		return nil
	})
	if err != nil {
		return domain.StandConfiguration{}, fmt.Errorf("r.dao.Update -> %w", err)
	}

	return configurationDaoToDomain(updated), nil
}

func (r *ConfigurationRepository) SetDefault(ctx context.Context, id uint) (domain.StandConfiguration, error) {
	updated, err := r.dao.SetDefault(ctx, id)
	if err != nil {
		return domain.StandConfiguration{}, fmt.Errorf("r.dao.SetDefault -> %w", err)
	}

	return configurationDaoToDomain(updated), nil
}

func (r *ConfigurationRepository) Delete(ctx context.Context, id uint) error {
	if err := r.dao.Delete(ctx, id); err != nil {
		return fmt.Errorf("r.dao.Delete -> %w", err)
	}

	return nil
}

func configurationDomainToDao(c domain.StandConfiguration) dao.Configuration {
	history := make([]dao.VersionEntry, 0, len(c.VersionHistory))
	for _, h := range c.VersionHistory {
		history = append(history, dao.VersionEntry{
			Version:     h.Version,
			ChangedAt:   h.ChangedAt,
			ChangeNotes: h.ChangeNotes,
		})
	}

	reqs := make([]dao.ArtworkRequirement, 0, len(c.ArtworkRequirements))
	for _, req := range c.ArtworkRequirements {
		reqs = append(reqs, dao.ArtworkRequirement{
			ID:               req.ID,
			Name:             req.Name,
			Width:            req.Width,
			Height:           req.Height,
			AcceptedFormats:  append([]string{}, req.AcceptedFormats...),
			MinResolutionDPI: req.MinResolutionDPI,
			ColorMode:        req.ColorMode,
			BleedAreaMM:      req.BleedAreaMM,
			MaxFileSizeMB:    req.MaxFileSizeMB,
			IsRequired:       req.IsRequired,
			Description:      req.Description,
		})
	}

	boothTypes := make([]string, 0, len(c.ApplicableBoothTypes))
	for _, t := range c.ApplicableBoothTypes {
		boothTypes = append(boothTypes, string(t))
	}

	return dao.Configuration{
		ID:                  c.ID,
		Name:                c.Name,
		Status:              string(c.Status),
		Version:             c.Version,
		VersionHistory:      datatypes.JSONSlice[dao.VersionEntry](history),
		ArtworkRequirements: datatypes.JSONSlice[dao.ArtworkRequirement](reqs),
		AvailableVoltages:   datatypes.JSONSlice[string](append([]string{}, c.AvailableVoltages...)),
		Guidelines: datatypes.NewJSONType(dao.Guidelines{
			FileFormats:   c.Guidelines.FileFormats,
			MinResolution: c.Guidelines.MinResolution,
			ColorMode:     c.Guidelines.ColorMode,
			BleedArea:     c.Guidelines.BleedArea,
			ReviewTime:    c.Guidelines.ReviewTime,
		}),
		ApplicableBoothTypes: datatypes.JSONSlice[string](boothTypes),
		IsDefault:            c.IsDefault,
		CreatedAt:            c.CreatedAt,
		UpdatedAt:            c.UpdatedAt,
	}
}

func configurationDaoToDomain(c dao.Configuration) domain.StandConfiguration {
	history := make([]domain.VersionEntry, 0, len(c.VersionHistory))
	for _, h := range c.VersionHistory {
		history = append(history, domain.VersionEntry{
			Version:     h.Version,
			ChangedAt:   h.ChangedAt,
			ChangeNotes: h.ChangeNotes,
		})
	}

	reqs := make([]domain.ArtworkRequirement, 0, len(c.ArtworkRequirements))
	for _, req := range c.ArtworkRequirements {
		reqs = append(reqs, domain.ArtworkRequirement{
			ID:               req.ID,
			Name:             req.Name,
			Width:            req.Width,
			Height:           req.Height,
			AcceptedFormats:  append([]string{}, req.AcceptedFormats...),
			MinResolutionDPI: req.MinResolutionDPI,
			ColorMode:        req.ColorMode,
			BleedAreaMM:      req.BleedAreaMM,
			MaxFileSizeMB:    req.MaxFileSizeMB,
			IsRequired:       req.IsRequired,
			Description:      req.Description,
		})
	}

	boothTypes := make([]domain.ConstructionType, 0, len(c.ApplicableBoothTypes))
	for _, t := range c.ApplicableBoothTypes {
		boothTypes = append(boothTypes, domain.ConstructionType(t))
	}

	g := c.Guidelines.Data()

	return domain.StandConfiguration{
		ID:                  c.ID,
		Name:                c.Name,
		Status:              domain.ConfigurationStatus(c.Status),
		Version:             c.Version,
		VersionHistory:      history,
		ArtworkRequirements: reqs,
		AvailableVoltages:   append([]string{}, c.AvailableVoltages...),
		Guidelines: domain.Guidelines{
			FileFormats:   g.FileFormats,
			MinResolution: g.MinResolution,
			ColorMode:     g.ColorMode,
			BleedArea:     g.BleedArea,
			ReviewTime:    g.ReviewTime,
		},
		ApplicableBoothTypes: boothTypes,
		IsDefault:            c.IsDefault,
		CreatedAt:            c.CreatedAt,
		UpdatedAt:            c.UpdatedAt,
	}
}
