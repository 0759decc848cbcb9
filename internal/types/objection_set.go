package types

import (
	"time"

	"github.com/google/uuid"
)

// ObjectionOptionCount is fixed: each request gets three independently
// regenerable objection framings.
const ObjectionOptionCount = 3

// Objection option focuses, by slot index.
const (
	ObjectionFocusVagueness   = "vagueness"
	ObjectionFocusPrematurity = "prematurity"
	ObjectionFocusExpert      = "expert_opinion"
)

var ObjectionFocusOrder = []string{
	ObjectionFocusVagueness,
	ObjectionFocusPrematurity,
	ObjectionFocusExpert,
}

// ObjectionSet holds the candidate responses for one discovery request. A nil
// option slot is one that has not been generated yet or whose generation
// failed; slots are written independently. SelectedOption and UseDirectAnswer
// may both hold data, but only the one matching UseDirectAnswer is
// authoritative for assembly.
type ObjectionSet struct {
	ID           uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	CaseID       uuid.UUID `gorm:"type:uuid;not null;index:idx_objection_set_case_request,unique,priority:1" json:"case_id"`
	RequestIndex int       `gorm:"not null;index:idx_objection_set_case_request,unique,priority:2" json:"request_index"`

	RequestText  string `gorm:"type:text;not null" json:"request_text"`
	ClientAnswer string `gorm:"type:text" json:"client_answer"`

	OptionVagueness   *string `gorm:"type:text" json:"option_vagueness,omitempty"`
	OptionPrematurity *string `gorm:"type:text" json:"option_prematurity,omitempty"`
	OptionExpert      *string `gorm:"type:text" json:"option_expert,omitempty"`

	SelectedOption  *int    `json:"selected_option,omitempty"`
	DirectAnswer    *string `gorm:"type:text" json:"direct_answer,omitempty"`
	UseDirectAnswer bool    `gorm:"not null;default:false" json:"use_direct_answer"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (ObjectionSet) TableName() string { return "objection_set" }

// Option returns the option text for slot index 0..2, or nil.
func (s *ObjectionSet) Option(index int) *string {
	if s == nil {
		return nil
	}
	switch index {
	case 0:
		return s.OptionVagueness
	case 1:
		return s.OptionPrematurity
	case 2:
		return s.OptionExpert
	}
	return nil
}

// OptionColumn maps a slot index to its database column name.
func OptionColumn(index int) string {
	switch index {
	case 0:
		return "option_vagueness"
	case 1:
		return "option_prematurity"
	case 2:
		return "option_expert"
	}
	return ""
}

// Resolved reports whether an authoritative response exists for assembly.
func (s *ObjectionSet) Resolved() bool {
	if s == nil {
		return false
	}
	if s.UseDirectAnswer {
		return s.DirectAnswer != nil && *s.DirectAnswer != ""
	}
	if s.SelectedOption == nil {
		return false
	}
	opt := s.Option(*s.SelectedOption)
	return opt != nil && *opt != ""
}
