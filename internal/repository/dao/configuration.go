package dao

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrConfigurationNotFound  = errors.New("stand configuration not found")
	ErrConfigurationIsDefault = errors.New("stand configuration is the default")
)

type VersionEntry struct {
	Version     string    `json:"version"`
	ChangedAt   time.Time `json:"changed_at"`
	ChangeNotes string    `json:"change_notes"`
}

type ArtworkRequirement struct {
	ID               uuid.UUID `json:"id"`
	Name             string    `json:"name"`
	Width            float64   `json:"width"`
	Height           float64   `json:"height"`
	AcceptedFormats  []string  `json:"accepted_formats"`
	MinResolutionDPI int       `json:"min_resolution_dpi"`
	ColorMode        string    `json:"color_mode"`
	BleedAreaMM      float64   `json:"bleed_area_mm"`
	MaxFileSizeMB    int       `json:"max_file_size_mb"`
	IsRequired       bool      `json:"is_required"`
	Description      string    `json:"description"`
}

type Guidelines struct {
	FileFormats   string `json:"file_formats"`
	MinResolution string `json:"min_resolution"`
	ColorMode     string `json:"color_mode"`
	BleedArea     string `json:"bleed_area"`
	ReviewTime    string `json:"review_time"`
}

// Configuration keeps the template sub-documents in jsonb columns; the
// template is always rewritten as a whole under a row lock.
type Configuration struct {
	ID                   uint                                    `gorm:"primaryKey"`
	Name                 string                                  `gorm:"not null"`
	Status               string                                  `gorm:"not null;index"`
	Version              string                                  `gorm:"not null"`
	VersionHistory       datatypes.JSONSlice[VersionEntry]       `gorm:"type:jsonb"`
	ArtworkRequirements  datatypes.JSONSlice[ArtworkRequirement] `gorm:"type:jsonb"`
	AvailableVoltages    datatypes.JSONSlice[string]             `gorm:"type:jsonb"`
	Guidelines           datatypes.JSONType[Guidelines]          `gorm:"type:jsonb"`
	ApplicableBoothTypes datatypes.JSONSlice[string]             `gorm:"type:jsonb"`
	IsDefault            bool                                    `gorm:"not null;default:false;uniqueIndex:idx_configurations_single_default,where:is_default"`
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

type ConfigurationDAO struct {
	db *gorm.DB
}

func NewConfigurationDAO(db *gorm.DB) *ConfigurationDAO {
	return &ConfigurationDAO{
		db: db,
	}
}

func (d *ConfigurationDAO) Insert(ctx context.Context, cfg Configuration) (Configuration, error) {
	result := d.db.WithContext(ctx).Create(&cfg)
	if result.Error != nil {
		return Configuration{}, result.Error
	}

	return cfg, nil
}

func (d *ConfigurationDAO) FindByID(ctx context.Context, id uint) (Configuration, error) {
	var cfg Configuration

	result := d.db.WithContext(ctx).First(&cfg, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Configuration{}, ErrConfigurationNotFound
		}

		return Configuration{}, result.Error
	}

	return cfg, nil
}

func (d *ConfigurationDAO) FindDefault(ctx context.Context) (Configuration, error) {
	var cfg Configuration

	result := d.db.WithContext(ctx).Where("is_default").First(&cfg)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Configuration{}, ErrConfigurationNotFound
		}

		return Configuration{}, result.Error
	}

	return cfg, nil
}

func (d *ConfigurationDAO) List(ctx context.Context, status string) ([]Configuration, error) {
	var configs []Configuration

	query := d.db.WithContext(ctx)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	result := query.Order("id").Find(&configs)
	if result.Error != nil {
		return nil, result.Error
	}

	return configs, nil
}

// Update locks the row, lets fn mutate it and saves the result.
func (d *ConfigurationDAO) Update(ctx context.Context, id uint, fn func(cfg *Configuration) error) (Configuration, error) {
	var cfg Configuration

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&cfg, id)
		if result.Error != nil {
			if errors.Is(result.Error, gorm.ErrRecordNotFound) {
				return ErrConfigurationNotFound
			}
			return result.Error
		}

		if err := fn(&cfg); err != nil {
			return err
		}

		return tx.Save(&cfg).Error
	})
	if err != nil {
		return Configuration{}, err
	}

	return cfg, nil
}

// SetDefault clears the flag everywhere else and sets it on id in one transaction.
func (d *ConfigurationDAO) SetDefault(ctx context.Context, id uint) (Configuration, error) {
	var cfg Configuration

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&cfg, id)
		if result.Error != nil {
			if errors.Is(result.Error, gorm.ErrRecordNotFound) {
				return ErrConfigurationNotFound
			}
			return result.Error
		}

		if err := tx.Model(&Configuration{}).
			Where("id <> ? AND is_default", id).
			Update("is_default", false).Error; err != nil {
			return err
		}

		if err := tx.Model(&cfg).Updates(map[string]interface{}{
			"is_default": true,
			"status":     "active",
		}).Error; err != nil {
			return err
		}

		return tx.First(&cfg, id).Error
	})
	if err != nil {
		return Configuration{}, err
	}

	return cfg, nil
}

// Delete removes a non-default template and detaches the stands that used it.
func (d *ConfigurationDAO) Delete(ctx context.Context, id uint) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("id = ? AND NOT is_default", id).Delete(&Configuration{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			var count int64
			if err := tx.Model(&Configuration{}).Where("id = ?", id).Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				return ErrConfigurationIsDefault
			}
			return ErrConfigurationNotFound
		}

		return tx.Model(&Stand{}).
			Where("configuration_id = ?", id).
			Update("configuration_id", nil).Error
	})
}
