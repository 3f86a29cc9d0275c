package persistence

import (
	"github.com/tallyzap/inventory/internal/domain/command"
	"github.com/tallyzap/inventory/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

func (g *Gateway) createInvoice(tx *gorm.DB, cmd command.Command) error {
	fields, err := requireFields(cmd, FieldCustomerID, FieldNumber)
	if err != nil {
		return err
	}
	amount, err := positiveDecimal(cmd, FieldAmount)
	if err != nil {
		return err
	}

	invoice := models.Invoice{
		CommandRef: models.CommandRef{CommandID: cmd.ID},
		CustomerID: fields[0],
		Number:     fields[1],
		Amount:     amount,
	}
	if err := g.check(cmd.Action, &invoice); err != nil {
		return err
	}
	if err := requireCustomer(tx, cmd.Action, invoice.CustomerID); err != nil {
		return err
	}
	return translate(cmd.Action, tx.Create(&invoice).Error)
}

func (g *Gateway) makePayment(tx *gorm.DB, cmd command.Command) error {
	fields, err := requireFields(cmd, FieldCustomerID)
	if err != nil {
		return err
	}
	amount, err := positiveDecimal(cmd, FieldAmount)
	if err != nil {
		return err
	}

	payment := models.Payment{
		CommandRef:    models.CommandRef{CommandID: cmd.ID},
		CustomerID:    fields[0],
		InvoiceNumber: cmd.Field(FieldInvoiceNumber),
		Amount:        amount,
	}
	if err := g.check(cmd.Action, &payment); err != nil {
		return err
	}
	if err := requireCustomer(tx, cmd.Action, payment.CustomerID); err != nil {
		return err
	}
	return translate(cmd.Action, tx.Create(&payment).Error)
}
