package persistence

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/tallyzap/inventory/internal/domain/command"
	"github.com/tallyzap/inventory/internal/domain/shared"
	"github.com/tallyzap/inventory/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

func (g *Gateway) addCustomer(tx *gorm.DB, cmd command.Command) error {
	if _, err := requireFields(cmd, FieldID, FieldName); err != nil {
		return err
	}

	customer := models.Customer{}
	applyCustomerFields(&customer, cmd)

	if err := g.check(cmd.Action, &customer); err != nil {
		return err
	}
	return translate(cmd.Action, tx.Create(&customer).Error)
}

func (g *Gateway) updateCustomer(tx *gorm.DB, cmd command.Command) error {
	column, key, err := customerKey(cmd)
	if err != nil {
		return err
	}

	var existing models.Customer
	if err := tx.Where(column+" = ?", key).First(&existing).Error; err != nil {
		return translate(cmd.Action, err)
	}

	changes := make(map[string]any)
	for _, field := range cmd.Params.Keys() {
		col, ok := models.CustomerColumns[field]
		if !ok || (field == FieldID && column == FieldID) {
			continue
		}
		changes[col] = cmd.Field(field)
	}
	if len(changes) == 0 {
		return fmt.Errorf("%s: nothing to update: %w", cmd.Action, shared.ErrInvalidInput)
	}

	updated := existing
	applyCustomerFields(&updated, cmd)
	if err := g.check(cmd.Action, &updated); err != nil {
		return err
	}

	return translate(cmd.Action, tx.Model(&existing).Updates(changes).Error)
}

func (g *Gateway) deleteCustomer(tx *gorm.DB, cmd command.Command) error {
	column, key, err := customerKey(cmd)
	if err != nil {
		return err
	}

	result := tx.Where(column+" = ?", key).Delete(&models.Customer{})
	if result.Error != nil {
		return translate(cmd.Action, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%s: customer %q: %w", cmd.Action, key, shared.ErrNotFound)
	}
	return nil
}

// customerKey picks the lookup column for update and delete: the skoonie key
// when given, otherwise the user-facing id.
func customerKey(cmd command.Command) (string, any, error) {
	if raw := cmd.Field(FieldSkoonieKey); raw != "" {
		key, err := uuid.Parse(raw)
		if err != nil {
			return "", nil, fmt.Errorf("%s: field %q is not a uuid: %w", cmd.Action, FieldSkoonieKey, shared.ErrInvalidInput)
		}
		return FieldSkoonieKey, key, nil
	}
	id, err := requireFields(cmd, FieldID)
	if err != nil {
		return "", nil, err
	}
	return FieldID, id[0], nil
}

// applyCustomerFields copies every customer field present in cmd onto c.
func applyCustomerFields(c *models.Customer, cmd command.Command) {
	set := func(key string, dst *string) {
		if v, ok := cmd.Params.Get(key); ok {
			*dst = v
		}
	}
	set("id", &c.CustomerID)
	set("name", &c.Name)
	set("address_line1", &c.AddressLine1)
	set("address_line2", &c.AddressLine2)
	set("city", &c.City)
	set("state", &c.State)
	set("zip_code", &c.ZipCode)
}

// requireCustomer fails with ErrNotFound unless a customer with the given
// user-facing id exists.
func requireCustomer(tx *gorm.DB, action command.Action, id string) error {
	var count int64
	if err := tx.Model(&models.Customer{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return translate(action, err)
	}
	if count == 0 {
		return fmt.Errorf("%s: customer %q: %w", action, id, shared.ErrNotFound)
	}
	return nil
}
