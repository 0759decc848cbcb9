package types

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Discovery categories. CategoryOrder fixes the concatenation order used by
// the questionnaire compiler.
const (
	CategoryFormInterrogatories    = "form_interrogatories"
	CategoryRequestsForAdmission   = "requests_for_admission"
	CategoryRequestsForProduction  = "requests_for_production"
	CategorySpecialInterrogatories = "special_interrogatories"
)

var CategoryOrder = []string{
	CategoryFormInterrogatories,
	CategoryRequestsForAdmission,
	CategoryRequestsForProduction,
	CategorySpecialInterrogatories,
}

func ValidCategory(category string) bool {
	for _, c := range CategoryOrder {
		if c == category {
			return true
		}
	}
	return false
}

// DiscoveryQuestion is one extracted request, stored inside
// DiscoveryDocument.Questions in extraction order.
type DiscoveryQuestion struct {
	Number int    `json:"number"`
	Text   string `json:"text"`
}

// DiscoveryDocument holds the structured extraction of one uploaded discovery
// set. At most one row per (case, category); re-upload replaces it.
type DiscoveryDocument struct {
	ID       uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	CaseID   uuid.UUID `gorm:"type:uuid;not null;index:idx_discovery_doc_case_category,unique,priority:1" json:"case_id"`
	Category string    `gorm:"not null;index:idx_discovery_doc_case_category,unique,priority:2" json:"category"`

	StorageKey string `gorm:"not null" json:"storage_key"`
	MimeType   string `json:"mime_type"`

	DocumentType     string     `json:"document_type"`
	PropoundingParty string     `json:"propounding_party"`
	RespondingParty  string     `json:"responding_party"`
	CaseNumber       string     `json:"case_number"`
	SetNumber        string     `json:"set_number"`
	ServiceDate      *time.Time `json:"service_date,omitempty"`
	ResponseDeadline *time.Time `json:"response_deadline,omitempty"`

	Questions datatypes.JSON `gorm:"type:jsonb" json:"questions"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (DiscoveryDocument) TableName() string { return "discovery_document" }

func (d *DiscoveryDocument) DecodeQuestions() []DiscoveryQuestion {
	if d == nil || len(d.Questions) == 0 {
		return nil
	}
	var out []DiscoveryQuestion
	if err := json.Unmarshal(d.Questions, &out); err != nil {
		return nil
	}
	return out
}

func EncodeQuestions(questions []DiscoveryQuestion) datatypes.JSON {
	if questions == nil {
		questions = []DiscoveryQuestion{}
	}
	b, err := json.Marshal(questions)
	if err != nil {
		return datatypes.JSON([]byte("[]"))
	}
	return datatypes.JSON(b)
}
