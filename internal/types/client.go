package types

import (
	"time"

	"github.com/google/uuid"
)

type Client struct {
	ID    uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Name  string    `gorm:"not null" json:"name"`
	Phone string    `gorm:"column:phone" json:"phone,omitempty"`
	Email string    `gorm:"column:email" json:"email,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Client) TableName() string { return "client" }
