package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BaseModel provides common persistence fields for journal rows.
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// BeforeCreate assigns a fresh id when none was set.
func (m *BaseModel) BeforeCreate(*gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// CommandRef records which command produced a row.
type CommandRef struct {
	CommandID uuid.UUID `gorm:"type:uuid;not null;index"`
}

// All returns one zero value of every persisted model, in migration order.
func All() []any {
	return []any{
		&Customer{},
		&Invoice{},
		&Payment{},
		&MaterialTransaction{},
	}
}
