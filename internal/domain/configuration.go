package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type ConfigurationStatus string

const (
	ConfigurationDraft    ConfigurationStatus = "draft"
	ConfigurationActive   ConfigurationStatus = "active"
	ConfigurationArchived ConfigurationStatus = "archived"
)

func (s ConfigurationStatus) Valid() bool {
	return s == ConfigurationDraft || s == ConfigurationActive || s == ConfigurationArchived
}

const InitialConfigurationVersion = "1.0"

var DefaultVoltages = []string{"110V", "220V", "380V"}

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

func (r ArtworkRequirement) Validate() error {
	if strings.TrimSpace(r.Name) == "" || r.Width <= 0 || r.Height <= 0 {
		return ErrInvalidRequirement
	}
	return nil
}

type Guidelines struct {
	FileFormats   string `json:"file_formats"`
	MinResolution string `json:"min_resolution"`
	ColorMode     string `json:"color_mode"`
	BleedArea     string `json:"bleed_area"`
	ReviewTime    string `json:"review_time"`
}

var DefaultGuidelines = Guidelines{
	FileFormats:   "PDF, AI, EPS, high resolution PNG",
	MinResolution: "150 DPI at full size",
	ColorMode:     "CMYK",
	BleedArea:     "5mm on all sides",
	ReviewTime:    "3-5 business days",
}

type StandConfiguration struct {
	ID                   uint                 `json:"id"`
	Name                 string               `json:"name"`
	Status               ConfigurationStatus  `json:"status"`
	Version              string               `json:"version"`
	VersionHistory       []VersionEntry       `json:"version_history"`
	ArtworkRequirements  []ArtworkRequirement `json:"artwork_requirements"`
	AvailableVoltages    []string             `json:"available_voltages"`
	Guidelines           Guidelines           `json:"guidelines"`
	ApplicableBoothTypes []ConstructionType   `json:"applicable_booth_types"`
	IsDefault            bool                 `json:"is_default"`
	CreatedAt            time.Time            `json:"created_at"`
	UpdatedAt            time.Time            `json:"updated_at"`
}

// NewConfiguration returns a draft template with the standard defaults.
func NewConfiguration(name string) StandConfiguration {
	return StandConfiguration{
		Name:                 strings.TrimSpace(name),
		Status:               ConfigurationDraft,
		Version:              InitialConfigurationVersion,
		VersionHistory:       []VersionEntry{},
		ArtworkRequirements:  []ArtworkRequirement{},
		AvailableVoltages:    append([]string(nil), DefaultVoltages...),
		Guidelines:           DefaultGuidelines,
		ApplicableBoothTypes: []ConstructionType{ConstructionSEFBuilt, ConstructionPartnerBuilt},
	}
}

func (c StandConfiguration) FindRequirement(name string) (ArtworkRequirement, bool) {
	for _, req := range c.ArtworkRequirements {
		if req.Name == name {
			return req, true
		}
	}
	return ArtworkRequirement{}, false
}

// Duplicate deep-copies the template as a fresh, non-default draft.
func (c StandConfiguration) Duplicate() StandConfiguration {
	dup := StandConfiguration{
		Name:                 c.Name + " (Copy)",
		Status:               ConfigurationDraft,
		Version:              c.Version,
		VersionHistory:       []VersionEntry{},
		ArtworkRequirements:  make([]ArtworkRequirement, len(c.ArtworkRequirements)),
		AvailableVoltages:    append([]string{}, c.AvailableVoltages...),
		Guidelines:           c.Guidelines,
		ApplicableBoothTypes: append([]ConstructionType{}, c.ApplicableBoothTypes...),
	}
	for i, req := range c.ArtworkRequirements {
		req.ID = uuid.New()
		req.AcceptedFormats = append([]string{}, req.AcceptedFormats...)
		dup.ArtworkRequirements[i] = req
	}
	return dup
}

// ConfigurationPatch is a partial template update; nil fields are left alone.
type ConfigurationPatch struct {
	Name                 *string
	Version              *string
	Status               *ConfigurationStatus
	Guidelines           *Guidelines
	ApplicableBoothTypes []ConstructionType
}

func (p ConfigurationPatch) Validate() error {
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return ErrNameRequired
	}
	if p.Version != nil && strings.TrimSpace(*p.Version) == "" {
		return fmt.Errorf("%w: version cannot be blank", ErrValidation)
	}
	if p.Status != nil && !p.Status.Valid() {
		return ErrInvalidConfigStatus
	}
	for _, t := range p.ApplicableBoothTypes {
		if !t.Valid() {
			return ErrInvalidBoothType
		}
	}
	return nil
}

// Apply merges p into c, appending a version history line when the version moves.
func (p ConfigurationPatch) Apply(c *StandConfiguration, now time.Time) {
	if p.Version != nil && *p.Version != c.Version {
		c.VersionHistory = append(c.VersionHistory, VersionEntry{
			Version:     c.Version,
			ChangedAt:   now,
			ChangeNotes: "Updated to v" + *p.Version,
		})
		c.Version = *p.Version
	}
	if p.Name != nil {
		c.Name = strings.TrimSpace(*p.Name)
	}
	if p.Status != nil {
		c.Status = *p.Status
		if c.Status == ConfigurationArchived {
			c.IsDefault = false
		}
	}
	if p.Guidelines != nil {
		c.Guidelines = *p.Guidelines
	}
	if p.ApplicableBoothTypes != nil {
		c.ApplicableBoothTypes = p.ApplicableBoothTypes
	}
}

// AddVoltage appends v unless it is already offered.
func (c *StandConfiguration) AddVoltage(v string) bool {
	v = strings.TrimSpace(v)
	if v == "" {
		return false
	}
	for _, existing := range c.AvailableVoltages {
		if existing == v {
			return false
		}
	}
	c.AvailableVoltages = append(c.AvailableVoltages, v)
	return true
}

func (c *StandConfiguration) RemoveVoltage(v string) bool {
	for i, existing := range c.AvailableVoltages {
		if existing == v {
			c.AvailableVoltages = append(c.AvailableVoltages[:i], c.AvailableVoltages[i+1:]...)
			return true
		}
	}
	return false
}

func (c *StandConfiguration) UpsertRequirement(req ArtworkRequirement) {
	for i, existing := range c.ArtworkRequirements {
		if existing.ID == req.ID {
			c.ArtworkRequirements[i] = req
			return
		}
	}
	c.ArtworkRequirements = append(c.ArtworkRequirements, req)
}

func (c *StandConfiguration) RemoveRequirement(id uuid.UUID) bool {
	for i, existing := range c.ArtworkRequirements {
		if existing.ID == id {
			c.ArtworkRequirements = append(c.ArtworkRequirements[:i], c.ArtworkRequirements[i+1:]...)
			return true
		}
	}
	return false
}
