package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/vietanh2810/stand-portal-api/internal/domain"
	"github.com/vietanh2810/stand-portal-api/internal/export"
	"github.com/vietanh2810/stand-portal-api/internal/metrics"
	"github.com/vietanh2810/stand-portal-api/internal/repository"
)

var (
	ErrStandNotFound      = repository.ErrStandNotFound
	ErrStandExists        = repository.ErrStandExists
	ErrSubmissionNotFound = repository.ErrSubmissionNotFound
)

type StandRepository interface {
	Create(ctx context.Context, stand domain.Stand) (domain.Stand, error)
	FindByID(ctx context.Context, id uint) (domain.Stand, error)
	FindHeader(ctx context.Context, id uint) (domain.Stand, error)
	FindByPartnerAndEvent(ctx context.Context, partnerID uint, eventName string) (domain.Stand, error)
	List(ctx context.Context, filter domain.StandFilter) ([]domain.Stand, error)
	CountByStatus(ctx context.Context) ([]domain.StatusCount, error)
	UpdateDetails(ctx context.Context, id uint, details domain.StandDetails) error
	Delete(ctx context.Context, id uint) error
	AppendMessage(ctx context.Context, msg domain.Message) (domain.Message, error)
	FindMessages(ctx context.Context, standID uint) ([]domain.Message, error)
	FindRevisions(ctx context.Context, standID uint) ([]domain.RevisionEntry, error)
	Transact(ctx context.Context, id uint, fn func(tx repository.StandTx) error) error
}

// Publisher is the notification service.
type Publisher interface {
	Publish(ctx context.Context, n domain.Notification) error
}

type PartnerLookup interface {
	Lookup(ctx context.Context, partnerID uint) (domain.Partner, error)
}

type StandService struct {
	repo      StandRepository
	configs   ConfigurationRepository
	directory PartnerLookup
	eventName string
	now       func() time.Time
}

func NewStandService(repo StandRepository, configs ConfigurationRepository, directory PartnerLookup, eventName string) *StandService {
	return &StandService{
		repo:      repo,
		configs:   configs,
		directory: directory,
		eventName: eventName,
		now:       time.Now,
	}
}

// Create opens a stand for a partner on behalf of an administrator. The stand
// gets the default template when none is given.
func (s *StandService) Create(ctx context.Context, actor domain.User, stand domain.Stand) (domain.Stand, error) {
	if !actor.IsAdmin() {
		return domain.Stand{}, domain.ErrAdminOnly
	}
	if stand.PartnerID == 0 {
		return domain.Stand{}, fmt.Errorf("%w: partner is required", domain.ErrValidation)
	}
	if stand.BoothConstructionType != domain.ConstructionUnset && !stand.BoothConstructionType.Valid() {
		return domain.Stand{}, domain.ErrInvalidConstruction
	}
	if strings.TrimSpace(stand.EventName) == "" {
		stand.EventName = s.eventName
	}

	stand.Status = domain.StatusPendingPartnerReview
	stand.RevisionFeedback = ""
	if stand.ConfigurationID == nil {
		stand.ConfigurationID = s.defaultConfigurationID(ctx)
	}

	created, err := s.repo.Create(ctx, stand)
	if err != nil {
		return domain.Stand{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	return created, nil
}

// GetOrCreateForPartner returns the partner's stand for the current event,
// creating it on first access.
func (s *StandService) GetOrCreateForPartner(ctx context.Context, actor domain.User) (domain.Stand, error) {
	if actor.IsAdmin() {
		return domain.Stand{}, fmt.Errorf("%w: administrators do not own stands", domain.ErrValidation)
	}

	stand, err := s.repo.FindByPartnerAndEvent(ctx, actor.ID, s.eventName)
	if err == nil {
		return stand, nil
	}
	if !errors.Is(err, repository.ErrStandNotFound) {
		return domain.Stand{}, fmt.Errorf("s.repo.FindByPartnerAndEvent -> %w", err)
	}

	_, err = s.repo.Create(ctx, domain.Stand{
		PartnerID:       actor.ID,
		EventName:       s.eventName,
		Status:          domain.StatusPendingPartnerReview,
		ConfigurationID: s.defaultConfigurationID(ctx),
	})
	if err != nil && !errors.Is(err, repository.ErrStandExists) {
		return domain.Stand{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	// A concurrent first request may have created it; read back either way.
	stand, err = s.repo.FindByPartnerAndEvent(ctx, actor.ID, s.eventName)
	if err != nil {
		return domain.Stand{}, fmt.Errorf("s.repo.FindByPartnerAndEvent -> %w", err)
	}

	return stand, nil
}

func (s *StandService) Get(ctx context.Context, actor domain.User, id uint) (domain.Stand, error) {
	stand, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Stand{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	if err = authorize(actor, stand); err != nil {
		return domain.Stand{}, err
	}

	return stand, nil
}

// List returns stand headers. Partners only ever see their own stands.
func (s *StandService) List(ctx context.Context, actor domain.User, filter domain.StandFilter) ([]domain.StandListItem, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, domain.ErrInvalidStatus
	}
	if !actor.IsAdmin() {
		filter.PartnerID = actor.ID
	}

	stands, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("s.repo.List -> %w", err)
	}

	items := make([]domain.StandListItem, 0, len(stands))
	for _, stand := range stands {
		items = append(items, domain.StandListItem{
			Stand:   stand,
			Partner: s.partner(ctx, stand.PartnerID),
		})
	}

	return items, nil
}

// Summary counts stands per status, including statuses with no stands.
func (s *StandService) Summary(ctx context.Context, actor domain.User) ([]domain.StatusCount, error) {
	if !actor.IsAdmin() {
		return nil, domain.ErrAdminOnly
	}

	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("s.repo.CountByStatus -> %w", err)
	}

	byStatus := make(map[domain.StandStatus]int64, len(counts))
	for _, c := range counts {
		byStatus[c.Status] = c.Count
	}

	summary := make([]domain.StatusCount, 0, len(domain.StandStatuses))
	for _, status := range domain.StandStatuses {
		summary = append(summary, domain.StatusCount{Status: status, Count: byStatus[status]})
	}

	return summary, nil
}

func (s *StandService) UpdateDetails(ctx context.Context, actor domain.User, id uint, details domain.StandDetails) (domain.Stand, error) {
	if !actor.IsAdmin() {
		return domain.Stand{}, domain.ErrAdminOnly
	}
	if details.EventName != nil && strings.TrimSpace(*details.EventName) == "" {
		return domain.Stand{}, domain.ErrNameRequired
	}
	if details.AdminDefinedVoltages != nil {
		voltages := make([]string, 0, len(details.AdminDefinedVoltages))
		for _, v := range details.AdminDefinedVoltages {
			v = strings.TrimSpace(v)
			if v == "" {
				return domain.Stand{}, domain.ErrBlankVoltage
			}
			voltages = append(voltages, v)
		}
		details.AdminDefinedVoltages = voltages
	}
	if details.ConfigurationID != nil {
		if _, err := s.configs.FindByID(ctx, *details.ConfigurationID); err != nil {
			return domain.Stand{}, fmt.Errorf("s.configs.FindByID -> %w", err)
		}
	}

	if err := s.repo.UpdateDetails(ctx, id, details); err != nil {
		return domain.Stand{}, fmt.Errorf("s.repo.UpdateDetails -> %w", err)
	}

	return s.Get(ctx, actor, id)
}

func (s *StandService) Delete(ctx context.Context, actor domain.User, id uint) error {
	if !actor.IsAdmin() {
		return domain.ErrAdminOnly
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("s.repo.Delete -> %w", err)
	}

	return nil
}

// Sheet renders the printable review sheet for a stand.
func (s *StandService) Sheet(ctx context.Context, actor domain.User, id uint, publicURL string) ([]byte, error) {
	if !actor.IsAdmin() {
		return nil, domain.ErrAdminOnly
	}

	stand, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	standURL := fmt.Sprintf("%s/admin/stands/%d", strings.TrimRight(publicURL, "/"), stand.ID)
	pdf, err := export.StandSheet(stand, s.partner(ctx, stand.PartnerID), standURL)
	if err != nil {
		return nil, fmt.Errorf("export.StandSheet -> %w", err)
	}

	return pdf, nil
}

func (s *StandService) defaultConfigurationID(ctx context.Context) *uint {
	if s.configs == nil {
		return nil
	}

	cfg, err := s.configs.FindDefault(ctx)
	if err != nil {
		if !errors.Is(err, repository.ErrConfigurationNotFound) {
			zap.L().Warn("failed to look up default template", zap.Error(err))
		}
		return nil
	}

	return &cfg.ID
}

// partner falls back to an id-only entry when the directory has no record.
func (s *StandService) partner(ctx context.Context, id uint) domain.Partner {
	if s.directory == nil {
		return domain.Partner{ID: id}
	}

	p, err := s.directory.Lookup(ctx, id)
	if err != nil {
		zap.L().Debug("partner lookup failed", zap.Uint("partner_id", id), zap.Error(err))
		return domain.Partner{ID: id}
	}

	return p
}

// authorize lets administrators through and partners only onto their own stand.
func authorize(actor domain.User, stand domain.Stand) error {
	if actor.IsAdmin() || stand.PartnerID == actor.ID {
		return nil
	}
	return domain.ErrNotStandOwner
}

// publish sends n after the workflow write has committed. Failures are
// logged and counted, never returned.
func publish(ctx context.Context, pub Publisher, n domain.Notification) {
	if pub == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	if err := pub.Publish(ctx, n); err != nil {
		metrics.NotificationFailures.Inc()
		zap.L().Warn("failed to publish notification",
			zap.String("type", string(n.Type)),
			zap.Uint("stand_id", n.StandID),
			zap.Error(err),
		)
	}
}
