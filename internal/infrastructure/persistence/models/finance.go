package models

import "github.com/shopspring/decimal"

// Invoice is the persistence model for the invoices table.
type Invoice struct {
	BaseModel
	CommandRef
	CustomerID string          `gorm:"type:varchar(50);not null;index" validate:"required,max=50"`
	Number     string          `gorm:"type:varchar(50);not null;uniqueIndex" validate:"required,max=50"`
	Amount     decimal.Decimal `gorm:"type:decimal(18,4);not null" validate:"dgt0"`
}

// TableName returns the table name for GORM
func (Invoice) TableName() string {
	return "invoices"
}

// Payment is the persistence model for the payments table.
type Payment struct {
	BaseModel
	CommandRef
	CustomerID    string          `gorm:"type:varchar(50);not null;index" validate:"required,max=50"`
	InvoiceNumber string          `gorm:"type:varchar(50);index" validate:"max=50"`
	Amount        decimal.Decimal `gorm:"type:decimal(18,4);not null" validate:"dgt0"`
}

// TableName returns the table name for GORM
func (Payment) TableName() string {
	return "payments"
}
