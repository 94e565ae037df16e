package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfiguration(t *testing.T) {
	cfg := NewConfiguration("  Summit 2026 ")

	assert.Equal(t, "Summit 2026", cfg.Name)
	assert.Equal(t, ConfigurationDraft, cfg.Status)
	assert.Equal(t, InitialConfigurationVersion, cfg.Version)
	assert.Equal(t, DefaultVoltages, cfg.AvailableVoltages)
	assert.Empty(t, cfg.ArtworkRequirements)
	assert.False(t, cfg.IsDefault)

	cfg.AvailableVoltages[0] = "changed"
	assert.Equal(t, "110V", DefaultVoltages[0])
}

func TestStandConfiguration_Duplicate(t *testing.T) {
	reqID := uuid.New()
	src := StandConfiguration{
		ID:                  4,
		Name:                "Summit",
		Status:              ConfigurationActive,
		Version:             "2.1",
		VersionHistory:      []VersionEntry{{Version: "2.0"}},
		ArtworkRequirements: []ArtworkRequirement{{ID: reqID, Name: "Main Banner", AcceptedFormats: []string{"PDF"}}},
		AvailableVoltages:   []string{"220V"},
		IsDefault:           true,
	}

	dup := src.Duplicate()

	assert.Zero(t, dup.ID)
	assert.Equal(t, "Summit (Copy)", dup.Name)
	assert.Equal(t, ConfigurationDraft, dup.Status)
	assert.False(t, dup.IsDefault)
	assert.Empty(t, dup.VersionHistory)
	require.Len(t, dup.ArtworkRequirements, 1)
	assert.NotEqual(t, reqID, dup.ArtworkRequirements[0].ID)

	dup.ArtworkRequirements[0].AcceptedFormats[0] = "PNG"
	dup.AvailableVoltages[0] = "110V"
	assert.Equal(t, "PDF", src.ArtworkRequirements[0].AcceptedFormats[0])
	assert.Equal(t, "220V", src.AvailableVoltages[0])
}

func TestConfigurationPatch_Apply(t *testing.T) {
	now := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	cfg := NewConfiguration("Summit")

	same := "1.0"
	ConfigurationPatch{Version: &same}.Apply(&cfg, now)
	assert.Empty(t, cfg.VersionHistory)

	next := "1.1"
	ConfigurationPatch{Version: &next}.Apply(&cfg, now)
	require.Len(t, cfg.VersionHistory, 1)
	assert.Equal(t, VersionEntry{Version: "1.0", ChangedAt: now, ChangeNotes: "Updated to v1.1"}, cfg.VersionHistory[0])
	assert.Equal(t, "1.1", cfg.Version)

	archived := ConfigurationArchived
	cfg.IsDefault = true
	ConfigurationPatch{Status: &archived}.Apply(&cfg, now)
	assert.False(t, cfg.IsDefault)
}

func TestStandConfiguration_Voltages(t *testing.T) {
	cfg := NewConfiguration("Summit")

	assert.False(t, cfg.AddVoltage("220V"))
	assert.False(t, cfg.AddVoltage(" "))
	assert.True(t, cfg.AddVoltage("415V"))
	assert.Equal(t, []string{"110V", "220V", "380V", "415V"}, cfg.AvailableVoltages)

	assert.True(t, cfg.RemoveVoltage("220V"))
	assert.False(t, cfg.RemoveVoltage("220V"))
	assert.Equal(t, []string{"110V", "380V", "415V"}, cfg.AvailableVoltages)
}

func TestStandConfiguration_Requirements(t *testing.T) {
	cfg := NewConfiguration("Summit")
	first := ArtworkRequirement{ID: uuid.New(), Name: "Banner", Width: 3, Height: 1}
	twin := ArtworkRequirement{ID: uuid.New(), Name: "Banner", Width: 3, Height: 1}

	cfg.UpsertRequirement(first)
	cfg.UpsertRequirement(twin)
	require.Len(t, cfg.ArtworkRequirements, 2)

	first.Width = 4
	cfg.UpsertRequirement(first)
	assert.Equal(t, 4.0, cfg.ArtworkRequirements[0].Width)

	assert.True(t, cfg.RemoveRequirement(twin.ID))
	require.Len(t, cfg.ArtworkRequirements, 1)
	assert.Equal(t, first.ID, cfg.ArtworkRequirements[0].ID)
	assert.False(t, cfg.RemoveRequirement(twin.ID))
}

func TestArtworkRequirement_Validate(t *testing.T) {
	assert.NoError(t, ArtworkRequirement{Name: "Main Banner", Width: 6, Height: 3}.Validate())
	assert.ErrorIs(t, ArtworkRequirement{Name: " ", Width: 6, Height: 3}.Validate(), ErrInvalidRequirement)
	assert.ErrorIs(t, ArtworkRequirement{Name: "Flag", Width: 0, Height: 3}.Validate(), ErrValidation)
}

func TestConfigurationPatch_Validate(t *testing.T) {
	blank := "  "
	bogus := ConfigurationStatus("retired")

	assert.NoError(t, ConfigurationPatch{}.Validate())
	assert.ErrorIs(t, ConfigurationPatch{Name: &blank}.Validate(), ErrNameRequired)
	assert.ErrorIs(t, ConfigurationPatch{Version: &blank}.Validate(), ErrValidation)
	assert.ErrorIs(t, ConfigurationPatch{Status: &bogus}.Validate(), ErrInvalidConfigStatus)
	assert.ErrorIs(t, ConfigurationPatch{ApplicableBoothTypes: []ConstructionType{"tent"}}.Validate(), ErrInvalidBoothType)
}
