package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/vietanh2810/stand-portal-api/internal/domain"
	"github.com/vietanh2810/stand-portal-api/internal/repository/dao"
)

var (
	ErrStandNotFound      = dao.ErrStandNotFound
	ErrStandExists        = dao.ErrStandExists
	ErrSubmissionNotFound = dao.ErrSubmissionNotFound
)

type StandDAO interface {
	Insert(ctx context.Context, stand dao.Stand) (dao.Stand, error)
	FindByID(ctx context.Context, id uint) (dao.Stand, error)
	FindHeader(ctx context.Context, id uint) (dao.Stand, error)
	FindByPartnerAndEvent(ctx context.Context, partnerID uint, eventName string) (dao.Stand, error)
	List(ctx context.Context, status string, partnerID uint) ([]dao.Stand, error)
	CountByStatus(ctx context.Context) ([]dao.StatusCount, error)
	UpdateColumns(ctx context.Context, id uint, columns map[string]interface{}) error
	Delete(ctx context.Context, id uint) error
	InsertMessage(ctx context.Context, msg dao.DiscussionMessage) (dao.DiscussionMessage, error)
	FindMessages(ctx context.Context, standID uint) ([]dao.DiscussionMessage, error)
	FindRevisions(ctx context.Context, standID uint) ([]dao.RevisionEntry, error)
	Transact(ctx context.Context, id uint, fn func(tx *dao.StandTx) error) error
}

// StandTx is the write handle for one locked stand. Every method runs inside
// the same database transaction; the stand header returned by Stand reflects
// the last update made through the handle.
type StandTx interface {
	Stand() domain.Stand
	UpdateStatus(status domain.StandStatus, revisionFeedback string) error
	UpdateConstructionType(ct domain.ConstructionType) error
	UpdateRequirements(req domain.StandRequirements) error
	AddArtwork(a domain.ArtworkSubmission) error
	AddFile(f domain.FileSubmission) error
	AddDrawing(d domain.DrawingSubmission) error
	AddSubmissionComment(c domain.SubmissionComment) error
	AddPartnerComment(c domain.Comment) error
	AddRevision(e domain.RevisionEntry) error
	SubmissionExists(kind domain.SubmissionKind, id uuid.UUID) (bool, error)
	DeleteSubmission(kind domain.SubmissionKind, id uuid.UUID) error
}

type StandRepository struct {
	dao StandDAO
}

func NewStandRepository(dao StandDAO) *StandRepository {
	return &StandRepository{
		dao: dao,
	}
}

func (r *StandRepository) Create(ctx context.Context, stand domain.Stand) (domain.Stand, error) {
	created, err := r.dao.Insert(ctx, standDomainToDao(stand))
	if err != nil {
		return domain.Stand{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return standDaoToDomain(created), nil
}

func (r *StandRepository) FindByID(ctx context.Context, id uint) (domain.Stand, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Stand{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return standDaoToDomain(found), nil
}

// FindHeader returns the stand without its nested collections.
func (r *StandRepository) FindHeader(ctx context.Context, id uint) (domain.Stand, error) {
	found, err := r.dao.FindHeader(ctx, id)
	if err != nil {
		return domain.Stand{}, fmt.Errorf("r.dao.FindHeader -> %w", err)
	}

	return standDaoToDomain(found), nil
}

func (r *StandRepository) FindByPartnerAndEvent(ctx context.Context, partnerID uint, eventName string) (domain.Stand, error) {
	found, err := r.dao.FindByPartnerAndEvent(ctx, partnerID, eventName)
	if err != nil {
		return domain.Stand{}, fmt.Errorf("r.dao.FindByPartnerAndEvent -> %w", err)
	}

	return standDaoToDomain(found), nil
}

func (r *StandRepository) List(ctx context.Context, filter domain.StandFilter) ([]domain.Stand, error) {
	found, err := r.dao.List(ctx, string(filter.Status), filter.PartnerID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.List -> %w", err)
	}

	stands := make([]domain.Stand, 0, len(found))
	for _, s := range found {
		stands = append(stands, standDaoToDomain(s))
	}

	return stands, nil
}

func (r *StandRepository) CountByStatus(ctx context.Context) ([]domain.StatusCount, error) {
	counts, err := r.dao.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("r.dao.CountByStatus -> %w", err)
	}

	result := make([]domain.StatusCount, 0, len(counts))
	for _, c := range counts {
		result = append(result, domain.StatusCount{
			Status: domain.StandStatus(c.Status),
			Count:  c.Count,
		})
	}

	return result, nil
}

func (r *StandRepository) UpdateDetails(ctx context.Context, id uint, details domain.StandDetails) error {
	columns := detailColumns(details)
	if len(columns) == 0 {
		return nil
	}

	if err := r.dao.UpdateColumns(ctx, id, columns); err != nil {
		return fmt.Errorf("r.dao.UpdateColumns -> %w", err)
	}

	return nil
}

func (r *StandRepository) Delete(ctx context.Context, id uint) error {
	if err := r.dao.Delete(ctx, id); err != nil {
		return fmt.Errorf("r.dao.Delete -> %w", err)
	}

	return nil
}

func (r *StandRepository) AppendMessage(ctx context.Context, msg domain.Message) (domain.Message, error) {
	created, err := r.dao.InsertMessage(ctx, messageDomainToDao(msg))
	if err != nil {
		return domain.Message{}, fmt.Errorf("r.dao.InsertMessage -> %w", err)
	}

	return messageDaoToDomain(created), nil
}

func (r *StandRepository) FindMessages(ctx context.Context, standID uint) ([]domain.Message, error) {
	found, err := r.dao.FindMessages(ctx, standID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindMessages -> %w", err)
	}

	return messagesDaoToDomain(found), nil
}

func (r *StandRepository) FindRevisions(ctx context.Context, standID uint) ([]domain.RevisionEntry, error) {
	found, err := r.dao.FindRevisions(ctx, standID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindRevisions -> %w", err)
	}

	return revisionsDaoToDomain(found), nil
}

// Transact locks the stand row and hands fn a write handle. The transaction
// commits when fn returns nil.
func (r *StandRepository) Transact(ctx context.Context, id uint, fn func(tx StandTx) error) error {
	err := r.dao.Transact(ctx, id, func(tx *dao.StandTx) error {
		return fn(&standTx{tx: tx})
	})
	if err != nil {
		return fmt.Errorf("r.dao.Transact -> %w", err)
	}

	return nil
}

type standTx struct {
	tx *dao.StandTx
}

func (t *standTx) Stand() domain.Stand {
	return standDaoToDomain(t.tx.Stand())
}

func (t *standTx) UpdateStatus(status domain.StandStatus, revisionFeedback string) error {
	return t.tx.UpdateColumns(map[string]interface{}{
		"status":            string(status),
		"revision_feedback": revisionFeedback,
	})
}

func (t *standTx) UpdateConstructionType(ct domain.ConstructionType) error {
	return t.tx.UpdateColumns(map[string]interface{}{
		"booth_construction_type": string(ct),
	})
}

func (t *standTx) UpdateRequirements(req domain.StandRequirements) error {
	return t.tx.UpdateColumns(map[string]interface{}{
		"av_equipment_list":       req.AV.EquipmentList,
		"av_special_instructions": req.AV.SpecialInstructions,
		"power_voltage":           req.PowerVoltage,
		"power_outlets":           req.PowerOutlets,
		"special_requirements":    req.SpecialRequirements,
	})
}

func (t *standTx) AddArtwork(a domain.ArtworkSubmission) error {
	return t.tx.InsertArtwork(dao.ArtworkSubmission{
		ID:             a.ID,
		StandID:        t.tx.Stand().ID,
		SubmissionType: string(a.Type),
		FileURL:        a.FileURL,
		FileName:       a.FileName,
		LinkURL:        a.LinkURL,
		Width:          a.Width,
		Height:         a.Height,
		Description:    a.Description,
		ArtworkType:    a.ArtworkType,
		SubmittedAt:    a.SubmittedAt,
		SubmittedBy:    a.SubmittedBy,
	})
}

func (t *standTx) AddFile(f domain.FileSubmission) error {
	return t.tx.InsertFile(dao.FileSubmission{
		ID:             f.ID,
		StandID:        t.tx.Stand().ID,
		Kind:           string(f.Kind),
		SubmissionType: string(f.Type),
		FileURL:        f.FileURL,
		FileName:       f.FileName,
		LinkURL:        f.LinkURL,
		Description:    f.Description,
		SubmittedAt:    f.SubmittedAt,
		SubmittedBy:    f.SubmittedBy,
	})
}

func (t *standTx) AddDrawing(d domain.DrawingSubmission) error {
	return t.tx.InsertDrawing(dao.DrawingSubmission{
		ID:             d.ID,
		StandID:        t.tx.Stand().ID,
		DrawingType:    string(d.DrawingType),
		SubmissionType: string(d.Type),
		FileURL:        d.FileURL,
		FileName:       d.FileName,
		LinkURL:        d.LinkURL,
		Description:    d.Description,
		SubmittedAt:    d.SubmittedAt,
		SubmittedBy:    d.SubmittedBy,
	})
}

func (t *standTx) AddSubmissionComment(c domain.SubmissionComment) error {
	return t.tx.InsertSubmissionComment(dao.SubmissionComment{
		ID:           c.ID,
		StandID:      t.tx.Stand().ID,
		SubmissionID: c.SubmissionID,
		Kind:         string(c.Kind),
		Feedback:     c.Feedback,
		Text:         c.Text,
		AuthorEmail:  c.AuthorEmail,
		AuthorName:   c.AuthorName,
		IsAdmin:      c.IsAdmin,
		CreatedAt:    c.CreatedAt,
	})
}

func (t *standTx) AddPartnerComment(c domain.Comment) error {
	return t.tx.InsertPartnerComment(dao.PartnerComment{
		ID:          c.ID,
		StandID:     t.tx.Stand().ID,
		Text:        c.Text,
		AuthorEmail: c.AuthorEmail,
		AuthorName:  c.AuthorName,
		IsAdmin:     c.IsAdmin,
		CreatedAt:   c.CreatedAt,
	})
}

func (t *standTx) AddRevision(e domain.RevisionEntry) error {
	return t.tx.InsertRevision(dao.RevisionEntry{
		ID:        e.ID,
		StandID:   t.tx.Stand().ID,
		Status:    string(e.Status),
		Feedback:  e.Feedback,
		ChangedBy: e.ChangedBy,
		ChangedAt: e.ChangedAt,
	})
}

func (t *standTx) SubmissionExists(kind domain.SubmissionKind, id uuid.UUID) (bool, error) {
	return t.tx.SubmissionExists(string(kind), id)
}

func (t *standTx) DeleteSubmission(kind domain.SubmissionKind, id uuid.UUID) error {
	return t.tx.DeleteSubmission(string(kind), id)
}

func detailColumns(d domain.StandDetails) map[string]interface{} {
	columns := map[string]interface{}{}
	if d.ConfigurationID != nil {
		columns["configuration_id"] = *d.ConfigurationID
	}
	if d.EventName != nil {
		columns["event_name"] = *d.EventName
	}
	if d.BoothNumber != nil {
		columns["booth_number"] = *d.BoothNumber
	}
	if d.SubmissionDeadline != nil {
		columns["submission_deadline"] = *d.SubmissionDeadline
	}
	if d.Links != nil {
		columns["technical_drawing_link"] = d.Links.TechnicalDrawingLink
		columns["stand_render_link"] = d.Links.StandRenderLink
		columns["technical_specs_link"] = d.Links.TechnicalSpecsLink
		columns["branding_areas_link"] = d.Links.BrandingAreasLink
		columns["exhibitor_manual_link"] = d.Links.ExhibitorManualLink
	}
	if d.AdminNotes != nil {
		columns["admin_notes"] = *d.AdminNotes
	}
	if d.AdminDefinedVoltages != nil {
		columns["admin_defined_voltages"] = datatypes.JSONSlice[string](d.AdminDefinedVoltages)
	}
	return columns
}

func standDomainToDao(s domain.Stand) dao.Stand {
	return dao.Stand{
		ID:                    s.ID,
		PartnerID:             s.PartnerID,
		ConfigurationID:       s.ConfigurationID,
		EventName:             s.EventName,
		BoothNumber:           s.BoothNumber,
		BoothConstructionType: string(s.BoothConstructionType),
		Status:                string(s.Status),
		SubmissionDeadline:    s.SubmissionDeadline,
		TechnicalDrawingLink:  s.StandLinks.TechnicalDrawingLink,
		StandRenderLink:       s.StandLinks.StandRenderLink,
		TechnicalSpecsLink:    s.StandLinks.TechnicalSpecsLink,
		BrandingAreasLink:     s.StandLinks.BrandingAreasLink,
		ExhibitorManualLink:   s.StandLinks.ExhibitorManualLink,
		AdminNotes:            s.AdminNotes,
		RevisionFeedback:      s.RevisionFeedback,
		AVEquipmentList:       s.StandRequirements.AV.EquipmentList,
		AVSpecialInstructions: s.StandRequirements.AV.SpecialInstructions,
		PowerVoltage:          s.StandRequirements.PowerVoltage,
		PowerOutlets:          s.StandRequirements.PowerOutlets,
		SpecialRequirements:   s.StandRequirements.SpecialRequirements,
		AdminDefinedVoltages:  datatypes.JSONSlice[string](s.AdminDefinedVoltages),
	}
}

func standDaoToDomain(s dao.Stand) domain.Stand {
	stand := domain.Stand{
		ID:                    s.ID,
		PartnerID:             s.PartnerID,
		ConfigurationID:       s.ConfigurationID,
		EventName:             s.EventName,
		BoothNumber:           s.BoothNumber,
		BoothConstructionType: domain.ConstructionType(s.BoothConstructionType),
		Status:                domain.StandStatus(s.Status),
		SubmissionDeadline:    s.SubmissionDeadline,
		StandLinks: domain.StandLinks{
			TechnicalDrawingLink: s.TechnicalDrawingLink,
			StandRenderLink:      s.StandRenderLink,
			TechnicalSpecsLink:   s.TechnicalSpecsLink,
			BrandingAreasLink:    s.BrandingAreasLink,
			ExhibitorManualLink:  s.ExhibitorManualLink,
		},
		AdminNotes:       s.AdminNotes,
		RevisionFeedback: s.RevisionFeedback,
		StandRequirements: domain.StandRequirements{
			AV: domain.AVRequirements{
				EquipmentList:       s.AVEquipmentList,
				SpecialInstructions: s.AVSpecialInstructions,
			},
			PowerVoltage:        s.PowerVoltage,
			PowerOutlets:        s.PowerOutlets,
			SpecialRequirements: s.SpecialRequirements,
		},
		AdminDefinedVoltages:        append([]string{}, s.AdminDefinedVoltages...),
		RevisionHistory:             revisionsDaoToDomain(s.Revisions),
		ArtworkSubmissions:          []domain.ArtworkSubmission{},
		LogoSubmissions:             []domain.FileSubmission{},
		RenderSubmissions:           []domain.FileSubmission{},
		TechnicalDrawingSubmissions: []domain.DrawingSubmission{},
		PartnerComments:             make([]domain.Comment, 0, len(s.PartnerComments)),
		DiscussionThread:            messagesDaoToDomain(s.Messages),
		CreatedAt:                   s.CreatedAt,
		UpdatedAt:                   s.UpdatedAt,
	}

	comments, feedback := groupSubmissionComments(s.Comments)

	for _, a := range s.Artworks {
		stand.ArtworkSubmissions = append(stand.ArtworkSubmissions, domain.ArtworkSubmission{
			ID:               a.ID,
			SubmissionSource: sourceDaoToDomain(a.SubmissionType, a.FileURL, a.FileName, a.LinkURL),
			Width:            a.Width,
			Height:           a.Height,
			Description:      a.Description,
			ArtworkType:      a.ArtworkType,
			SubmittedAt:      a.SubmittedAt,
			SubmittedBy:      a.SubmittedBy,
			Comments:         orEmpty(comments[a.ID]),
			AdminFeedback:    orEmpty(feedback[a.ID]),
		})
	}

	for _, f := range s.Files {
		entry := domain.FileSubmission{
			ID:               f.ID,
			Kind:             domain.SubmissionKind(f.Kind),
			SubmissionSource: sourceDaoToDomain(f.SubmissionType, f.FileURL, f.FileName, f.LinkURL),
			Description:      f.Description,
			SubmittedAt:      f.SubmittedAt,
			SubmittedBy:      f.SubmittedBy,
			Comments:         orEmpty(comments[f.ID]),
			AdminFeedback:    orEmpty(feedback[f.ID]),
		}
		if entry.Kind == domain.KindRender {
			stand.RenderSubmissions = append(stand.RenderSubmissions, entry)
		} else {
			stand.LogoSubmissions = append(stand.LogoSubmissions, entry)
		}
	}

	for _, d := range s.Drawings {
		stand.TechnicalDrawingSubmissions = append(stand.TechnicalDrawingSubmissions, domain.DrawingSubmission{
			ID:               d.ID,
			DrawingType:      domain.DrawingType(d.DrawingType),
			SubmissionSource: sourceDaoToDomain(d.SubmissionType, d.FileURL, d.FileName, d.LinkURL),
			Description:      d.Description,
			SubmittedAt:      d.SubmittedAt,
			SubmittedBy:      d.SubmittedBy,
			Comments:         orEmpty(comments[d.ID]),
			AdminFeedback:    orEmpty(feedback[d.ID]),
		})
	}

	for _, c := range s.PartnerComments {
		stand.PartnerComments = append(stand.PartnerComments, domain.Comment{
			ID:          c.ID,
			Text:        c.Text,
			AuthorEmail: c.AuthorEmail,
			AuthorName:  c.AuthorName,
			IsAdmin:     c.IsAdmin,
			CreatedAt:   c.CreatedAt,
		})
	}

	return stand
}

// groupSubmissionComments splits comment rows per submission into partner
// comments and administrator feedback.
func groupSubmissionComments(rows []dao.SubmissionComment) (map[uuid.UUID][]domain.Comment, map[uuid.UUID][]domain.Comment) {
	comments := map[uuid.UUID][]domain.Comment{}
	feedback := map[uuid.UUID][]domain.Comment{}
	for _, c := range rows {
		comment := domain.Comment{
			ID:          c.ID,
			Text:        c.Text,
			AuthorEmail: c.AuthorEmail,
			AuthorName:  c.AuthorName,
			IsAdmin:     c.IsAdmin,
			CreatedAt:   c.CreatedAt,
		}
		if c.Feedback {
			feedback[c.SubmissionID] = append(feedback[c.SubmissionID], comment)
		} else {
			comments[c.SubmissionID] = append(comments[c.SubmissionID], comment)
		}
	}
	return comments, feedback
}

func orEmpty(c []domain.Comment) []domain.Comment {
	if c == nil {
		return []domain.Comment{}
	}
	return c
}

func sourceDaoToDomain(submissionType, fileURL, fileName, linkURL string) domain.SubmissionSource {
	return domain.SubmissionSource{
		Type:     domain.SubmissionType(submissionType),
		FileURL:  fileURL,
		FileName: fileName,
		LinkURL:  linkURL,
	}
}

func revisionsDaoToDomain(rows []dao.RevisionEntry) []domain.RevisionEntry {
	entries := make([]domain.RevisionEntry, 0, len(rows))
	for _, e := range rows {
		entries = append(entries, domain.RevisionEntry{
			ID:        e.ID,
			Status:    domain.StandStatus(e.Status),
			Feedback:  e.Feedback,
			ChangedBy: e.ChangedBy,
			ChangedAt: e.ChangedAt,
		})
	}
	return entries
}

func messageDomainToDao(m domain.Message) dao.DiscussionMessage {
	return dao.DiscussionMessage{
		ID:             m.ID,
		StandID:        m.StandID,
		Message:        m.Message,
		SenderEmail:    m.SenderEmail,
		SenderName:     m.SenderName,
		SenderTitle:    m.SenderTitle,
		IsAdmin:        m.IsAdmin,
		AttachmentURL:  m.AttachmentURL,
		AttachmentName: m.AttachmentName,
		CreatedAt:      m.CreatedAt,
	}
}

func messageDaoToDomain(m dao.DiscussionMessage) domain.Message {
	return domain.Message{
		ID:             m.ID,
		StandID:        m.StandID,
		Message:        m.Message,
		SenderEmail:    m.SenderEmail,
		SenderName:     m.SenderName,
		SenderTitle:    m.SenderTitle,
		IsAdmin:        m.IsAdmin,
		AttachmentURL:  m.AttachmentURL,
		AttachmentName: m.AttachmentName,
		CreatedAt:      m.CreatedAt,
	}
}

func messagesDaoToDomain(rows []dao.DiscussionMessage) []domain.Message {
	messages := make([]domain.Message, 0, len(rows))
	for _, m := range rows {
		messages = append(messages, messageDaoToDomain(m))
	}
	return messages
}
