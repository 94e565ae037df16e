package dao

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrStandNotFound      = errors.New("stand not found")
	ErrStandExists        = errors.New("partner already has a stand for this event")
	ErrSubmissionNotFound = errors.New("submission not found")
)

type Stand struct {
	ID                    uint   `gorm:"primaryKey"`
	PartnerID             uint   `gorm:"not null;uniqueIndex:idx_stands_partner_event"`
	ConfigurationID       *uint  `gorm:"index"`
	EventName             string `gorm:"not null;default:'';uniqueIndex:idx_stands_partner_event"`
	BoothNumber           *string
	BoothConstructionType string `gorm:"not null;default:''"`
	Status                string `gorm:"not null;index"`
	SubmissionDeadline    *time.Time

	TechnicalDrawingLink string
	StandRenderLink      string
	TechnicalSpecsLink   string
	BrandingAreasLink    string
	ExhibitorManualLink  string

	AdminNotes       string `gorm:"type:text"`
	RevisionFeedback string `gorm:"type:text"`

	AVEquipmentList       string `gorm:"type:text"`
	AVSpecialInstructions string `gorm:"type:text"`
	PowerVoltage          *string
	PowerOutlets          *int
	SpecialRequirements   *string `gorm:"type:text"`

	AdminDefinedVoltages datatypes.JSONSlice[string]

	Revisions       []RevisionEntry     `gorm:"foreignKey:StandID;constraint:OnDelete:CASCADE"`
	Artworks        []ArtworkSubmission `gorm:"foreignKey:StandID;constraint:OnDelete:CASCADE"`
	Files           []FileSubmission    `gorm:"foreignKey:StandID;constraint:OnDelete:CASCADE"`
	Drawings        []DrawingSubmission `gorm:"foreignKey:StandID;constraint:OnDelete:CASCADE"`
	Comments        []SubmissionComment `gorm:"foreignKey:StandID;constraint:OnDelete:CASCADE"`
	PartnerComments []PartnerComment    `gorm:"foreignKey:StandID;constraint:OnDelete:CASCADE"`
	Messages        []DiscussionMessage `gorm:"foreignKey:StandID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Child rows carry a Seq column so reads come back in insertion order.

type ArtworkSubmission struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	Seq            int64     `gorm:"autoIncrement;index"`
	StandID        uint      `gorm:"not null;index"`
	SubmissionType string    `gorm:"not null"`
	FileURL        string
	FileName       string
	LinkURL        string
	Width          float64
	Height         float64
	Description    string    `gorm:"type:text"`
	ArtworkType    string    `gorm:"not null"`
	SubmittedAt    time.Time `gorm:"not null"`
	SubmittedBy    string    `gorm:"not null"`
}

// FileSubmission stores logo and render deliverables, told apart by Kind.
type FileSubmission struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	Seq            int64     `gorm:"autoIncrement;index"`
	StandID        uint      `gorm:"not null;index"`
	Kind           string    `gorm:"not null;index"`
	SubmissionType string    `gorm:"not null"`
	FileURL        string
	FileName       string
	LinkURL        string
	Description    string    `gorm:"type:text"`
	SubmittedAt    time.Time `gorm:"not null"`
	SubmittedBy    string    `gorm:"not null"`
}

type DrawingSubmission struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	Seq            int64     `gorm:"autoIncrement;index"`
	StandID        uint      `gorm:"not null;index"`
	DrawingType    string    `gorm:"not null"`
	SubmissionType string    `gorm:"not null"`
	FileURL        string
	FileName       string
	LinkURL        string
	Description    string    `gorm:"type:text"`
	SubmittedAt    time.Time `gorm:"not null"`
	SubmittedBy    string    `gorm:"not null"`
}

type SubmissionComment struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	Seq          int64     `gorm:"autoIncrement;index"`
	StandID      uint      `gorm:"not null;index"`
	SubmissionID uuid.UUID `gorm:"type:uuid;not null;index"`
	Kind         string    `gorm:"not null"`
	Feedback     bool      `gorm:"not null"`
	Text         string    `gorm:"type:text;not null"`
	AuthorEmail  string    `gorm:"not null"`
	AuthorName   string
	IsAdmin      bool      `gorm:"not null"`
	CreatedAt    time.Time `gorm:"not null"`
}

type PartnerComment struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	Seq         int64     `gorm:"autoIncrement;index"`
	StandID     uint      `gorm:"not null;index"`
	Text        string    `gorm:"type:text;not null"`
	AuthorEmail string    `gorm:"not null"`
	AuthorName  string
	IsAdmin     bool      `gorm:"not null"`
	CreatedAt   time.Time `gorm:"not null"`
}

type RevisionEntry struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Seq       int64     `gorm:"autoIncrement;index"`
	StandID   uint      `gorm:"not null;index"`
	Status    string    `gorm:"not null"`
	Feedback  string    `gorm:"type:text"`
	ChangedBy string    `gorm:"not null"`
	ChangedAt time.Time `gorm:"not null"`
}

type DiscussionMessage struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	Seq            int64     `gorm:"autoIncrement;index"`
	StandID        uint      `gorm:"not null;index"`
	Message        string    `gorm:"type:text"`
	SenderEmail    string    `gorm:"not null"`
	SenderName     string
	SenderTitle    string
	IsAdmin        bool `gorm:"not null"`
	AttachmentURL  *string
	AttachmentName *string
	CreatedAt      time.Time `gorm:"not null"`
}

type StatusCount struct {
	Status string
	Count  int64
}

type StandDAO struct {
	db *gorm.DB
}

func NewStandDAO(db *gorm.DB) *StandDAO {
	return &StandDAO{
		db: db,
	}
}

func bySeq(db *gorm.DB) *gorm.DB {
	return db.Order("seq")
}

func (d *StandDAO) Insert(ctx context.Context, stand Stand) (Stand, error) {
	result := d.db.WithContext(ctx).Omit(clause.Associations).Create(&stand)
	if result.Error != nil {
		var err *pgconn.PgError
		if errors.As(result.Error, &err) && err.Code == pgerrcode.UniqueViolation {
			return Stand{}, ErrStandExists
		}

		return Stand{}, result.Error
	}

	return stand, nil
}

// FindByID loads a stand with every nested collection.
func (d *StandDAO) FindByID(ctx context.Context, id uint) (Stand, error) {
	var stand Stand

	result := d.db.WithContext(ctx).
		Preload("Revisions", bySeq).
		Preload("Artworks", bySeq).
		Preload("Files", bySeq).
		Preload("Drawings", bySeq).
		Preload("Comments", bySeq).
		Preload("PartnerComments", bySeq).
		Preload("Messages", bySeq).
		First(&stand, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Stand{}, ErrStandNotFound
		}

		return Stand{}, result.Error
	}

	return stand, nil
}

// FindHeader loads the stand row only.
func (d *StandDAO) FindHeader(ctx context.Context, id uint) (Stand, error) {
	var stand Stand

	result := d.db.WithContext(ctx).First(&stand, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Stand{}, ErrStandNotFound
		}

		return Stand{}, result.Error
	}

	return stand, nil
}

func (d *StandDAO) FindByPartnerAndEvent(ctx context.Context, partnerID uint, eventName string) (Stand, error) {
	var stand Stand

	result := d.db.WithContext(ctx).
		Where("partner_id = ? AND event_name = ?", partnerID, eventName).
		First(&stand)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Stand{}, ErrStandNotFound
		}

		return Stand{}, result.Error
	}

	return d.FindByID(ctx, stand.ID)
}

// List returns stand headers without nested collections.
func (d *StandDAO) List(ctx context.Context, status string, partnerID uint) ([]Stand, error) {
	var stands []Stand

	query := d.db.WithContext(ctx).Model(&Stand{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if partnerID != 0 {
		query = query.Where("partner_id = ?", partnerID)
	}

	result := query.Order("id").Find(&stands)
	if result.Error != nil {
		return nil, result.Error
	}

	return stands, nil
}

func (d *StandDAO) CountByStatus(ctx context.Context) ([]StatusCount, error) {
	var counts []StatusCount

	result := d.db.WithContext(ctx).Model(&Stand{}).
		Select("status, count(*) as count").
		Group("status").
		Order("status").
		Scan(&counts)
	if result.Error != nil {
		return nil, result.Error
	}

	return counts, nil
}

func (d *StandDAO) UpdateColumns(ctx context.Context, id uint, columns map[string]interface{}) error {
	result := d.db.WithContext(ctx).Model(&Stand{ID: id}).Updates(columns)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrStandNotFound
	}

	return nil
}

// Delete removes the stand and all of its history.
func (d *StandDAO) Delete(ctx context.Context, id uint) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		children := []interface{}{
			&DiscussionMessage{}, &RevisionEntry{}, &PartnerComment{}, &SubmissionComment{},
			&DrawingSubmission{}, &FileSubmission{}, &ArtworkSubmission{},
		}
		for _, child := range children {
			if err := tx.Where("stand_id = ?", id).Delete(child).Error; err != nil {
				return err
			}
		}

		result := tx.Delete(&Stand{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrStandNotFound
		}

		return nil
	})
}

func (d *StandDAO) InsertMessage(ctx context.Context, msg DiscussionMessage) (DiscussionMessage, error) {
	result := d.db.WithContext(ctx).Create(&msg)
	if result.Error != nil {
		return DiscussionMessage{}, result.Error
	}

	return msg, nil
}

func (d *StandDAO) FindMessages(ctx context.Context, standID uint) ([]DiscussionMessage, error) {
	var messages []DiscussionMessage

	result := d.db.WithContext(ctx).Where("stand_id = ?", standID).Order("seq").Find(&messages)
	if result.Error != nil {
		return nil, result.Error
	}

	return messages, nil
}

func (d *StandDAO) FindRevisions(ctx context.Context, standID uint) ([]RevisionEntry, error) {
	var entries []RevisionEntry

	result := d.db.WithContext(ctx).Where("stand_id = ?", standID).Order("seq").Find(&entries)
	if result.Error != nil {
		return nil, result.Error
	}

	return entries, nil
}

// Transact runs fn inside a transaction holding a row lock on the stand.
// Writers that check the stand status before appending must go through here.
func (d *StandDAO) Transact(ctx context.Context, id uint, fn func(tx *StandTx) error) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var stand Stand
		result := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&stand, id)
		if result.Error != nil {
			if errors.Is(result.Error, gorm.ErrRecordNotFound) {
				return ErrStandNotFound
			}
			return result.Error
		}

		return fn(&StandTx{tx: tx, stand: stand})
	})
}

// StandTx is the write handle passed to Transact callbacks.
type StandTx struct {
	tx    *gorm.DB
	stand Stand
}

func (t *StandTx) Stand() Stand {
	return t.stand
}

func (t *StandTx) InsertArtwork(a ArtworkSubmission) error {
	return t.tx.Create(&a).Error
}

func (t *StandTx) InsertFile(f FileSubmission) error {
	return t.tx.Create(&f).Error
}

func (t *StandTx) InsertDrawing(dr DrawingSubmission) error {
	return t.tx.Create(&dr).Error
}

func (t *StandTx) InsertSubmissionComment(c SubmissionComment) error {
	return t.tx.Create(&c).Error
}

func (t *StandTx) InsertPartnerComment(c PartnerComment) error {
	return t.tx.Create(&c).Error
}

func (t *StandTx) InsertRevision(e RevisionEntry) error {
	return t.tx.Create(&e).Error
}

func submissionModel(kind string) (interface{}, string) {
	switch kind {
	case "artwork":
		return &ArtworkSubmission{}, ""
	case "drawing":
		return &DrawingSubmission{}, ""
	default:
		return &FileSubmission{}, kind
	}
}

func (t *StandTx) SubmissionExists(kind string, id uuid.UUID) (bool, error) {
	model, fileKind := submissionModel(kind)

	query := t.tx.Model(model).Where("id = ? AND stand_id = ?", id, t.stand.ID)
	if fileKind != "" {
		query = query.Where("kind = ?", fileKind)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}

	return count > 0, nil
}

// DeleteSubmission removes one entry and the comments attached to it.
func (t *StandTx) DeleteSubmission(kind string, id uuid.UUID) error {
	model, fileKind := submissionModel(kind)

	query := t.tx.Where("id = ? AND stand_id = ?", id, t.stand.ID)
	if fileKind != "" {
		query = query.Where("kind = ?", fileKind)
	}

	result := query.Delete(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrSubmissionNotFound
	}

	return t.tx.Where("submission_id = ?", id).Delete(&SubmissionComment{}).Error
}

func (t *StandTx) UpdateColumns(columns map[string]interface{}) error {
	if err := t.tx.Model(&Stand{ID: t.stand.ID}).Updates(columns).Error; err != nil {
		return err
	}

	return t.tx.First(&t.stand, t.stand.ID).Error
}
