package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vietanh2810/stand-portal-api/internal/domain"
	"github.com/vietanh2810/stand-portal-api/internal/repository"
	"github.com/vietanh2810/stand-portal-api/internal/storage"
)

var (
	testAdmin   = domain.User{ID: 1, Email: "admin@sef.test", Name: "Ada Admin", Role: domain.RoleAdmin}
	testPartner = domain.User{ID: 2, Email: "partner@acme.test", Name: "Pat Partner", Company: "Acme", Role: domain.RolePartner}
	testOther   = domain.User{ID: 3, Email: "other@globex.test", Name: "Otto Other", Company: "Globex", Role: domain.RolePartner}
)

var fixedNow = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

// memStands is an in-memory stand store. Transact works on a copy and only
// commits it when fn succeeds.
type memStands struct {
	mu       sync.Mutex
	nextID   uint
	stands   map[uint]domain.Stand
	messages map[uint][]domain.Message
}

func newMemStands(stands ...domain.Stand) *memStands {
	m := &memStands{
		stands:   map[uint]domain.Stand{},
		messages: map[uint][]domain.Message{},
	}
	for _, s := range stands {
		m.put(s)
	}
	return m
}

func (m *memStands) put(s domain.Stand) domain.Stand {
	if s.ID == 0 {
		m.nextID++
		s.ID = m.nextID
	} else if s.ID > m.nextID {
		m.nextID = s.ID
	}
	m.stands[s.ID] = cloneStand(s)
	return s
}

func (m *memStands) get(id uint) domain.Stand {
	m.mu.Lock()
	defer m.mu.Unlock()
	return cloneStand(m.stands[id])
}

func (m *memStands) Create(_ context.Context, stand domain.Stand) (domain.Stand, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.stands {
		if existing.PartnerID == stand.PartnerID && existing.EventName == stand.EventName {
			return domain.Stand{}, repository.ErrStandExists
		}
	}
	return m.put(stand), nil
}

func (m *memStands) FindByID(_ context.Context, id uint) (domain.Stand, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.stands[id]
	if !ok {
		return domain.Stand{}, repository.ErrStandNotFound
	}
	s = cloneStand(s)
	s.DiscussionThread = slices.Clone(m.messages[id])
	return s, nil
}

func (m *memStands) FindHeader(ctx context.Context, id uint) (domain.Stand, error) {
	return m.FindByID(ctx, id)
}

func (m *memStands) FindByPartnerAndEvent(_ context.Context, partnerID uint, eventName string) (domain.Stand, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, s := range m.stands {
		if s.PartnerID == partnerID && s.EventName == eventName {
			return cloneStand(s), nil
		}
	}
	return domain.Stand{}, repository.ErrStandNotFound
}

func (m *memStands) List(_ context.Context, filter domain.StandFilter) ([]domain.Stand, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []domain.Stand
	for id := uint(1); id <= m.nextID; id++ {
		s, ok := m.stands[id]
		if !ok {
			continue
		}
		if filter.Status != "" && s.Status != filter.Status {
			continue
		}
		if filter.PartnerID != 0 && s.PartnerID != filter.PartnerID {
			continue
		}
		out = append(out, cloneStand(s))
	}
	return out, nil
}

func (m *memStands) CountByStatus(_ context.Context) ([]domain.StatusCount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	counts := map[domain.StandStatus]int64{}
	for _, s := range m.stands {
		counts[s.Status]++
	}
	var out []domain.StatusCount
	for status, n := range counts {
		out = append(out, domain.StatusCount{Status: status, Count: n})
	}
	return out, nil
}

func (m *memStands) UpdateDetails(_ context.Context, id uint, d domain.StandDetails) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.stands[id]
	if !ok {
		return repository.ErrStandNotFound
	}
	if d.ConfigurationID != nil {
		s.ConfigurationID = d.ConfigurationID
	}
	if d.EventName != nil {
		s.EventName = *d.EventName
	}
	if d.BoothNumber != nil {
		s.BoothNumber = d.BoothNumber
	}
	if d.SubmissionDeadline != nil {
		s.SubmissionDeadline = d.SubmissionDeadline
	}
	if d.Links != nil {
		s.StandLinks = *d.Links
	}
	if d.AdminNotes != nil {
		s.AdminNotes = *d.AdminNotes
	}
	if d.AdminDefinedVoltages != nil {
		s.AdminDefinedVoltages = slices.Clone(d.AdminDefinedVoltages)
	}
	m.stands[id] = s
	return nil
}

func (m *memStands) Delete(_ context.Context, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.stands[id]; !ok {
		return repository.ErrStandNotFound
	}
	delete(m.stands, id)
	delete(m.messages, id)
	return nil
}

func (m *memStands) AppendMessage(_ context.Context, msg domain.Message) (domain.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.messages[msg.StandID] = append(m.messages[msg.StandID], msg)
	return msg, nil
}

func (m *memStands) FindMessages(_ context.Context, standID uint) ([]domain.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return slices.Clone(m.messages[standID]), nil
}

func (m *memStands) FindRevisions(_ context.Context, standID uint) ([]domain.RevisionEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return slices.Clone(m.stands[standID].RevisionHistory), nil
}

func (m *memStands) Transact(_ context.Context, id uint, fn func(tx repository.StandTx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.stands[id]
	if !ok {
		return repository.ErrStandNotFound
	}

	tx := &memTx{stand: cloneStand(s)}
	if err := fn(tx); err != nil {
		return err
	}
	m.stands[id] = tx.stand
	return nil
}

type memTx struct {
	stand domain.Stand
}

func (t *memTx) Stand() domain.Stand { return cloneStand(t.stand) }

func (t *memTx) UpdateStatus(status domain.StandStatus, revisionFeedback string) error {
	t.stand.Status = status
	t.stand.RevisionFeedback = revisionFeedback
	return nil
}

func (t *memTx) UpdateConstructionType(ct domain.ConstructionType) error {
	t.stand.BoothConstructionType = ct
	return nil
}

func (t *memTx) UpdateRequirements(req domain.StandRequirements) error {
	t.stand.StandRequirements = req
	return nil
}

func (t *memTx) AddArtwork(a domain.ArtworkSubmission) error {
	t.stand.ArtworkSubmissions = append(t.stand.ArtworkSubmissions, a)
	return nil
}

func (t *memTx) AddFile(f domain.FileSubmission) error {
	switch f.Kind {
	case domain.KindLogo:
		t.stand.LogoSubmissions = append(t.stand.LogoSubmissions, f)
	case domain.KindRender:
		t.stand.RenderSubmissions = append(t.stand.RenderSubmissions, f)
	default:
		return fmt.Errorf("unexpected file kind %q", f.Kind)
	}
	return nil
}

func (t *memTx) AddDrawing(d domain.DrawingSubmission) error {
	t.stand.TechnicalDrawingSubmissions = append(t.stand.TechnicalDrawingSubmissions, d)
	return nil
}

func (t *memTx) AddSubmissionComment(c domain.SubmissionComment) error {
	attach := func(comments, feedback *[]domain.Comment) {
		if c.Feedback {
			*feedback = append(*feedback, c.Comment)
		} else {
			*comments = append(*comments, c.Comment)
		}
	}

	switch c.Kind {
	case domain.KindArtwork:
		for i := range t.stand.ArtworkSubmissions {
			if a := &t.stand.ArtworkSubmissions[i]; a.ID == c.SubmissionID {
				attach(&a.Comments, &a.AdminFeedback)
				return nil
			}
		}
	case domain.KindLogo, domain.KindRender:
		for _, list := range [][]domain.FileSubmission{t.stand.LogoSubmissions, t.stand.RenderSubmissions} {
			for i := range list {
				if f := &list[i]; f.ID == c.SubmissionID {
					attach(&f.Comments, &f.AdminFeedback)
					return nil
				}
			}
		}
	case domain.KindDrawing:
		for i := range t.stand.TechnicalDrawingSubmissions {
			if d := &t.stand.TechnicalDrawingSubmissions[i]; d.ID == c.SubmissionID {
				attach(&d.Comments, &d.AdminFeedback)
				return nil
			}
		}
	}
	return repository.ErrSubmissionNotFound
}

func (t *memTx) AddPartnerComment(c domain.Comment) error {
	t.stand.PartnerComments = append(t.stand.PartnerComments, c)
	return nil
}

func (t *memTx) AddRevision(e domain.RevisionEntry) error {
	t.stand.RevisionHistory = append(t.stand.RevisionHistory, e)
	return nil
}

func (t *memTx) SubmissionExists(kind domain.SubmissionKind, id uuid.UUID) (bool, error) {
	switch kind {
	case domain.KindArtwork:
		return slices.ContainsFunc(t.stand.ArtworkSubmissions, func(a domain.ArtworkSubmission) bool { return a.ID == id }), nil
	case domain.KindLogo:
		return slices.ContainsFunc(t.stand.LogoSubmissions, func(f domain.FileSubmission) bool { return f.ID == id }), nil
	case domain.KindRender:
		return slices.ContainsFunc(t.stand.RenderSubmissions, func(f domain.FileSubmission) bool { return f.ID == id }), nil
	case domain.KindDrawing:
		return slices.ContainsFunc(t.stand.TechnicalDrawingSubmissions, func(d domain.DrawingSubmission) bool { return d.ID == id }), nil
	}
	return false, nil
}

func (t *memTx) DeleteSubmission(kind domain.SubmissionKind, id uuid.UUID) error {
	before := submissionCount(t.stand)
	switch kind {
	case domain.KindArtwork:
		t.stand.ArtworkSubmissions = slices.DeleteFunc(t.stand.ArtworkSubmissions, func(a domain.ArtworkSubmission) bool { return a.ID == id })
	case domain.KindLogo:
		t.stand.LogoSubmissions = slices.DeleteFunc(t.stand.LogoSubmissions, func(f domain.FileSubmission) bool { return f.ID == id })
	case domain.KindRender:
		t.stand.RenderSubmissions = slices.DeleteFunc(t.stand.RenderSubmissions, func(f domain.FileSubmission) bool { return f.ID == id })
	case domain.KindDrawing:
		t.stand.TechnicalDrawingSubmissions = slices.DeleteFunc(t.stand.TechnicalDrawingSubmissions, func(d domain.DrawingSubmission) bool { return d.ID == id })
	}
	if submissionCount(t.stand) == before {
		return repository.ErrSubmissionNotFound
	}
	return nil
}

func submissionCount(s domain.Stand) int {
	return len(s.ArtworkSubmissions) + len(s.LogoSubmissions) + len(s.RenderSubmissions) + len(s.TechnicalDrawingSubmissions)
}

func cloneStand(s domain.Stand) domain.Stand {
	s.AdminDefinedVoltages = slices.Clone(s.AdminDefinedVoltages)
	s.RevisionHistory = slices.Clone(s.RevisionHistory)
	s.PartnerComments = slices.Clone(s.PartnerComments)
	s.DiscussionThread = slices.Clone(s.DiscussionThread)

	s.ArtworkSubmissions = slices.Clone(s.ArtworkSubmissions)
	for i := range s.ArtworkSubmissions {
		s.ArtworkSubmissions[i].Comments = slices.Clone(s.ArtworkSubmissions[i].Comments)
		s.ArtworkSubmissions[i].AdminFeedback = slices.Clone(s.ArtworkSubmissions[i].AdminFeedback)
	}
	s.LogoSubmissions = cloneFiles(s.LogoSubmissions)
	s.RenderSubmissions = cloneFiles(s.RenderSubmissions)
	s.TechnicalDrawingSubmissions = slices.Clone(s.TechnicalDrawingSubmissions)
	for i := range s.TechnicalDrawingSubmissions {
		s.TechnicalDrawingSubmissions[i].Comments = slices.Clone(s.TechnicalDrawingSubmissions[i].Comments)
		s.TechnicalDrawingSubmissions[i].AdminFeedback = slices.Clone(s.TechnicalDrawingSubmissions[i].AdminFeedback)
	}
	return s
}

func cloneFiles(files []domain.FileSubmission) []domain.FileSubmission {
	files = slices.Clone(files)
	for i := range files {
		files[i].Comments = slices.Clone(files[i].Comments)
		files[i].AdminFeedback = slices.Clone(files[i].AdminFeedback)
	}
	return files
}

// memConfigs is an in-memory template store.
type memConfigs struct {
	mu      sync.Mutex
	nextID  uint
	configs map[uint]domain.StandConfiguration
}

func newMemConfigs(configs ...domain.StandConfiguration) *memConfigs {
	m := &memConfigs{configs: map[uint]domain.StandConfiguration{}}
	for _, c := range configs {
		_, _ = m.Create(context.Background(), c)
	}
	return m
}

func (m *memConfigs) Create(_ context.Context, cfg domain.StandConfiguration) (domain.StandConfiguration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if cfg.ID == 0 {
		m.nextID++
		cfg.ID = m.nextID
	} else if cfg.ID > m.nextID {
		m.nextID = cfg.ID
	}
	m.configs[cfg.ID] = cfg
	return cfg, nil
}

func (m *memConfigs) FindByID(_ context.Context, id uint) (domain.StandConfiguration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cfg, ok := m.configs[id]
	if !ok {
		return domain.StandConfiguration{}, repository.ErrConfigurationNotFound
	}
	return cfg, nil
}

func (m *memConfigs) FindDefault(_ context.Context) (domain.StandConfiguration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, cfg := range m.configs {
		if cfg.IsDefault {
			return cfg, nil
		}
	}
	return domain.StandConfiguration{}, repository.ErrConfigurationNotFound
}

func (m *memConfigs) List(_ context.Context, status domain.ConfigurationStatus) ([]domain.StandConfiguration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []domain.StandConfiguration
	for id := uint(1); id <= m.nextID; id++ {
		cfg, ok := m.configs[id]
		if ok && (status == "" || cfg.Status == status) {
			out = append(out, cfg)
		}
	}
	return out, nil
}

func (m *memConfigs) Update(_ context.Context, id uint, fn func(cfg *domain.StandConfiguration) error) (domain.StandConfiguration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cfg, ok := m.configs[id]
	if !ok {
		return domain.StandConfiguration{}, repository.ErrConfigurationNotFound
	}
	cfg.ArtworkRequirements = slices.Clone(cfg.ArtworkRequirements)
	cfg.AvailableVoltages = slices.Clone(cfg.AvailableVoltages)
	if err := fn(&cfg); err != nil {
		return domain.StandConfiguration{}, err
	}
	m.configs[id] = cfg
	return cfg, nil
}

func (m *memConfigs) SetDefault(_ context.Context, id uint) (domain.StandConfiguration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	target, ok := m.configs[id]
	if !ok {
		return domain.StandConfiguration{}, repository.ErrConfigurationNotFound
	}
	for otherID, cfg := range m.configs {
		cfg.IsDefault = false
		m.configs[otherID] = cfg
	}
	target.IsDefault = true
	target.Status = domain.ConfigurationActive
	m.configs[id] = target
	return target, nil
}

func (m *memConfigs) Delete(_ context.Context, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cfg, ok := m.configs[id]
	if !ok {
		return repository.ErrConfigurationNotFound
	}
	if cfg.IsDefault {
		return repository.ErrConfigurationIsDefault
	}
	delete(m.configs, id)
	return nil
}

type recordingPublisher struct {
	mu   sync.Mutex
	sent []domain.Notification
	err  error
}

func (p *recordingPublisher) Publish(_ context.Context, n domain.Notification) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.err != nil {
		return p.err
	}
	p.sent = append(p.sent, n)
	return nil
}

func (p *recordingPublisher) all() []domain.Notification {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.sent)
}

type memBlobs struct {
	uploads []string
	err     error
}

func (b *memBlobs) Upload(_ context.Context, prefix, fileName string, r io.Reader, _ int64, _ string) (storage.Object, error) {
	if b.err != nil {
		return storage.Object{}, b.err
	}
	if _, err := io.Copy(io.Discard, r); err != nil {
		return storage.Object{}, err
	}
	name := prefix + "/" + fileName
	b.uploads = append(b.uploads, name)
	return storage.Object{URL: "https://blobs.test/" + name, Name: name}, nil
}

type recordingHub struct {
	messages []domain.Message
}

func (h *recordingHub) Broadcast(_ uint, msg domain.Message) {
	h.messages = append(h.messages, msg)
}

var errBoom = errors.New("boom")

// mainBannerTemplate is the default template used across the workflow tests.
func mainBannerTemplate() domain.StandConfiguration {
	cfg := domain.NewConfiguration("Standard Booth")
	cfg.IsDefault = true
	cfg.Status = domain.ConfigurationActive
	cfg.ArtworkRequirements = []domain.ArtworkRequirement{
		{ID: uuid.New(), Name: "Main Banner", Width: 6, Height: 3, IsRequired: true},
		{ID: uuid.New(), Name: "Side Panel", Width: 2, Height: 2.5},
	}
	return cfg
}

type workflowFixture struct {
	stands      *memStands
	configs     *memConfigs
	pub         *recordingPublisher
	blobs       *memBlobs
	review      *ReviewService
	submissions *SubmissionService
}

func newWorkflowFixture(stands ...domain.Stand) *workflowFixture {
	f := &workflowFixture{
		stands:  newMemStands(stands...),
		configs: newMemConfigs(mainBannerTemplate()),
		pub:     &recordingPublisher{},
		blobs:   &memBlobs{},
	}
	f.review = NewReviewService(f.stands, f.pub)
	f.review.now = fixedClock
	f.submissions = NewSubmissionService(f.stands, f.configs, f.review, f.blobs, f.pub, 1<<20)
	f.submissions.now = fixedClock
	return f
}

func partnerStand(status domain.StandStatus) domain.Stand {
	return domain.Stand{
		ID:        10,
		PartnerID: testPartner.ID,
		EventName: "Expo 2025",
		Status:    status,
	}
}
