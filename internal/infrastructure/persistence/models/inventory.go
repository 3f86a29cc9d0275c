package models

import "github.com/shopspring/decimal"

// MaterialTransaction is one row of the material journal. Kind is the
// action name that produced it (for example "move material").
type MaterialTransaction struct {
	BaseModel
	CommandRef
	Kind       string          `gorm:"type:varchar(30);not null;index" validate:"required"`
	CustomerID string          `gorm:"type:varchar(50);index" validate:"max=50"`
	Rack       string          `gorm:"type:varchar(50)" validate:"max=50"`
	ToRack     string          `gorm:"type:varchar(50)" validate:"max=50"`
	ToCustomer string          `gorm:"type:varchar(50)" validate:"max=50"`
	Quantity   decimal.Decimal `gorm:"type:decimal(18,4);not null" validate:"dgt0"`
	Reference  string          `gorm:"type:varchar(100)" validate:"max=100"`
}

// TableName returns the table name for GORM
func (MaterialTransaction) TableName() string {
	return "material_transactions"
}
