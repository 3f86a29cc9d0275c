package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Customer is the persistence model for the customers table.
// SkoonieKey is the internal key; CustomerID is the id users type.
type Customer struct {
	SkoonieKey   uuid.UUID `gorm:"column:skoonie_key;type:uuid;primaryKey"`
	CustomerID   string    `gorm:"column:id;type:varchar(50);not null;uniqueIndex" validate:"required,max=50"`
	Name         string    `gorm:"type:varchar(200);not null" validate:"required,max=200"`
	AddressLine1 string    `gorm:"column:address_line1;type:varchar(200)" validate:"max=200"`
	AddressLine2 string    `gorm:"column:address_line2;type:varchar(200)" validate:"max=200"`
	City         string    `gorm:"type:varchar(100)" validate:"max=100"`
	State        string    `gorm:"type:varchar(50)" validate:"max=50"`
	ZipCode      string    `gorm:"column:zip_code;type:varchar(20)" validate:"max=20"`
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (Customer) TableName() string {
	return "customers"
}

// BeforeCreate assigns a fresh skoonie key when none was set.
func (m *Customer) BeforeCreate(*gorm.DB) error {
	if m.SkoonieKey == uuid.Nil {
		m.SkoonieKey = uuid.New()
	}
	return nil
}

// CustomerColumns maps command field names to customers columns. Fields not
// listed here are ignored.
var CustomerColumns = map[string]string{
	"id":            "id",
	"name":          "name",
	"address_line1": "address_line1",
	"address_line2": "address_line2",
	"city":          "city",
	"state":         "state",
	"zip_code":      "zip_code",
}
