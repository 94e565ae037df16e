package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type StandStatus string

const (
	StatusPendingPartnerReview StandStatus = "pending_partner_review"
	StatusPendingAdminReview   StandStatus = "pending_admin_review"
	StatusRevisionNeeded       StandStatus = "revision_needed"
	StatusApproved             StandStatus = "approved"
	StatusCompleted            StandStatus = "completed"
)

var StandStatuses = []StandStatus{
	StatusPendingPartnerReview,
	StatusPendingAdminReview,
	StatusRevisionNeeded,
	StatusApproved,
	StatusCompleted,
}

func (s StandStatus) Valid() bool {
	for _, status := range StandStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// Locked reports whether partner-side mutation is closed.
func (s StandStatus) Locked() bool {
	return s == StatusApproved || s == StatusCompleted
}

type ConstructionType string

const (
	ConstructionUnset        ConstructionType = ""
	ConstructionSEFBuilt     ConstructionType = "sef_built"
	ConstructionPartnerBuilt ConstructionType = "partner_built"
)

func (c ConstructionType) Valid() bool {
	return c == ConstructionSEFBuilt || c == ConstructionPartnerBuilt
}

// MarshalJSON writes null until the partner has chosen a construction type.
func (c ConstructionType) MarshalJSON() ([]byte, error) {
	if c == ConstructionUnset {
		return []byte("null"), nil
	}
	return json.Marshal(string(c))
}

func (c *ConstructionType) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*c = ConstructionUnset
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*c = ConstructionType(s)

	return nil
}

type StandLinks struct {
	TechnicalDrawingLink string `json:"technical_drawing_link"`
	StandRenderLink      string `json:"stand_render_link"`
	TechnicalSpecsLink   string `json:"technical_specs_link"`
	BrandingAreasLink    string `json:"branding_areas_link"`
	ExhibitorManualLink  string `json:"exhibitor_manual_link"`
}

type AVRequirements struct {
	EquipmentList       string `json:"equipment_list"`
	SpecialInstructions string `json:"special_instructions"`
}

// StandRequirements holds the partner's AV and power answers. Each field is
// overwritten as a whole.
type StandRequirements struct {
	AV                  AVRequirements `json:"av_requirements"`
	PowerVoltage        *string        `json:"power_voltage"`
	PowerOutlets        *int           `json:"power_outlets"`
	SpecialRequirements *string        `json:"special_requirements"`
}

type Stand struct {
	ID                    uint             `json:"id"`
	PartnerID             uint             `json:"partner_id"`
	ConfigurationID       *uint            `json:"configuration_id"`
	EventName             string           `json:"event_name"`
	BoothNumber           *string          `json:"booth_number"`
	BoothConstructionType ConstructionType `json:"booth_construction_type"`
	Status                StandStatus      `json:"status"`
	SubmissionDeadline    *time.Time       `json:"submission_deadline"`
	StandLinks
	AdminNotes       string `json:"admin_notes"`
	RevisionFeedback string `json:"revision_feedback"`
	StandRequirements
	AdminDefinedVoltages []string `json:"admin_defined_voltages"`

	RevisionHistory             []RevisionEntry     `json:"revision_history"`
	ArtworkSubmissions          []ArtworkSubmission `json:"artwork_submissions"`
	LogoSubmissions             []FileSubmission    `json:"logo_submissions"`
	RenderSubmissions           []FileSubmission    `json:"render_submissions"`
	TechnicalDrawingSubmissions []DrawingSubmission `json:"technical_drawing_submissions"`
	PartnerComments             []Comment           `json:"partner_comments"`
	DiscussionThread            []Message           `json:"discussion_thread"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (s Stand) IsLocked() bool {
	return s.Status.Locked()
}

// OffersVoltage reports whether v may be chosen. An empty admin list accepts anything.
func (s Stand) OffersVoltage(v string) bool {
	if len(s.AdminDefinedVoltages) == 0 {
		return true
	}
	for _, offered := range s.AdminDefinedVoltages {
		if offered == v {
			return true
		}
	}
	return false
}

// StandDetails is the administrator-editable header of a stand.
type StandDetails struct {
	ConfigurationID      *uint
	EventName            *string
	BoothNumber          *string
	SubmissionDeadline   *time.Time
	Links                *StandLinks
	AdminNotes           *string
	AdminDefinedVoltages []string
}

type StandFilter struct {
	Status    StandStatus
	PartnerID uint
}

// RevisionEntry is one immutable line of a stand's audit trail.
type RevisionEntry struct {
	ID        uuid.UUID   `json:"id"`
	Status    StandStatus `json:"status"`
	Feedback  string      `json:"feedback"`
	ChangedBy string      `json:"changed_by"`
	ChangedAt time.Time   `json:"changed_at"`
}

type Comment struct {
	ID          uuid.UUID `json:"id"`
	Text        string    `json:"text"`
	AuthorEmail string    `json:"author_email"`
	AuthorName  string    `json:"author_name"`
	IsAdmin     bool      `json:"is_admin"`
	CreatedAt   time.Time `json:"created_at"`
}

type StatusCount struct {
	Status StandStatus `json:"status"`
	Count  int64       `json:"count"`
}

// StandListItem pairs a stand header with its partner's directory entry.
type StandListItem struct {
	Stand   Stand   `json:"stand"`
	Partner Partner `json:"partner"`
}
