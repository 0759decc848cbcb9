package types

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Narrative strength values
const (
	NarrativeStrengthStrong   = "strong"
	NarrativeStrengthModerate = "moderate"
	NarrativeStrengthWeak     = "weak"
)

// CaseNarrative is one candidate case-theory. Narratives are generated as a
// batch and immutable afterward; regeneration replaces the whole batch.
// Exactly one per case carries Selected=true.
type CaseNarrative struct {
	ID     uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	CaseID uuid.UUID `gorm:"type:uuid;not null;index" json:"case_id"`

	Position    int    `gorm:"not null" json:"position"`
	Title       string `gorm:"not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`
	Strength    string `gorm:"not null;default:'moderate'" json:"strength"`

	KeyPoints           datatypes.JSON `gorm:"type:jsonb" json:"key_points"`
	SuggestedObjections datatypes.JSON `gorm:"type:jsonb" json:"suggested_objections"`

	Selected bool `gorm:"not null;default:false" json:"selected"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (CaseNarrative) TableName() string { return "case_narrative" }

func (n *CaseNarrative) DecodeKeyPoints() []string {
	return decodeStringList(n.KeyPoints)
}

func (n *CaseNarrative) DecodeSuggestedObjections() []string {
	return decodeStringList(n.SuggestedObjections)
}

func EncodeStringList(items []string) datatypes.JSON {
	if items == nil {
		items = []string{}
	}
	b, err := json.Marshal(items)
	if err != nil {
		return datatypes.JSON([]byte("[]"))
	}
	return datatypes.JSON(b)
}

func decodeStringList(raw datatypes.JSON) []string {
	if len(raw) == 0 {
		return nil
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	return out
}
