package persistence

import (
	"github.com/tallyzap/inventory/internal/domain/command"
	"github.com/tallyzap/inventory/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// materialRequirements lists the fields each material action must carry in
// addition to quantity.
var materialRequirements = map[command.Action][]string{
	command.ActionReceiveMaterial:  {FieldRack},
	command.ActionShipMaterial:     {FieldCustomerID, FieldRack},
	command.ActionMoveMaterial:     {FieldRack, FieldToRack},
	command.ActionTransferMaterial: {FieldCustomerID, FieldToCustomer},
	command.ActionReserveMaterial:  {FieldCustomerID},
}

// recordMaterial appends one row to the material journal.
func (g *Gateway) recordMaterial(tx *gorm.DB, cmd command.Command) error {
	if _, err := requireFields(cmd, materialRequirements[cmd.Action]...); err != nil {
		return err
	}
	quantity, err := positiveDecimal(cmd, FieldQuantity)
	if err != nil {
		return err
	}

	row := models.MaterialTransaction{
		CommandRef: models.CommandRef{CommandID: cmd.ID},
		Kind:       cmd.Action.String(),
		CustomerID: cmd.Field(FieldCustomerID),
		Rack:       cmd.Field(FieldRack),
		ToRack:     cmd.Field(FieldToRack),
		ToCustomer: cmd.Field(FieldToCustomer),
		Quantity:   quantity,
		Reference:  cmd.Field(FieldReference),
	}
	if err := g.check(cmd.Action, &row); err != nil {
		return err
	}

	for _, id := range []string{row.CustomerID, row.ToCustomer} {
		if id == "" {
			continue
		}
		if err := requireCustomer(tx, cmd.Action, id); err != nil {
			return err
		}
	}
	return translate(cmd.Action, tx.Create(&row).Error)
}
