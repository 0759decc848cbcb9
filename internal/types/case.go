package types

import (
	"time"

	"github.com/google/uuid"
)

// Case type constants
const (
	CaseTypePersonalInjury  = "personal_injury"
	CaseTypeContractDispute = "contract_dispute"
	CaseTypeEmployment      = "employment"
	CaseTypeOther           = "other"
)

type Case struct {
	ID         uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Title      string    `gorm:"not null" json:"title"`
	CaseNumber string    `gorm:"index" json:"case_number"`
	// Empty until the lawyer picks one; gates the case_info stage.
	CaseType string `json:"case_type,omitempty"`

	ClientID *uuid.UUID `gorm:"type:uuid;index" json:"client_id,omitempty"`
	Client   *Client    `gorm:"foreignKey:ClientID;references:ID" json:"client,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Case) TableName() string { return "legal_case" }
