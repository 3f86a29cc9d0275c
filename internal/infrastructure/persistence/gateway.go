package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/tallyzap/inventory/internal/domain/command"
	"github.com/tallyzap/inventory/internal/domain/shared"
	"github.com/tallyzap/inventory/internal/infrastructure/logger"
	"github.com/tallyzap/inventory/internal/infrastructure/persistence/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Command field names understood by the gateway.
const (
	FieldSkoonieKey    = "skoonie_key"
	FieldID            = "id"
	FieldName          = "name"
	FieldCustomerID    = "customer_id"
	FieldNumber        = "number"
	FieldAmount        = "amount"
	FieldInvoiceNumber = "invoice_number"
	FieldRack          = "rack"
	FieldToRack        = "to_rack"
	FieldToCustomer    = "to_customer"
	FieldQuantity      = "quantity"
	FieldReference     = "reference"
)

// Gateway executes commands against the database. Every call runs in a
// fresh GORM session, so nothing carries over from one command to the next.
type Gateway struct {
	db       *gorm.DB
	logger   *zap.Logger
	validate *validator.Validate
}

// NewGateway creates a Gateway on top of db.
func NewGateway(db *Database, log *zap.Logger) *Gateway {
	if log == nil {
		log = zap.NewNop()
	}
	return &Gateway{
		db:       db.DB,
		logger:   log.Named("gateway"),
		validate: models.NewValidator(),
	}
}

// Execute applies cmd. Parameters the action does not use are ignored.
func (g *Gateway) Execute(ctx context.Context, cmd command.Command) error {
	ctx, log := logger.WithCommandID(ctx, g.logger, cmd.ID.String())
	tx := g.db.Session(&gorm.Session{NewDB: true, Context: ctx})

	var err error
	switch cmd.Action {
	case command.ActionAddCustomer:
		err = g.addCustomer(tx, cmd)
	case command.ActionUpdateCustomer:
		err = g.updateCustomer(tx, cmd)
	case command.ActionDeleteCustomer:
		err = g.deleteCustomer(tx, cmd)
	case command.ActionCreateInvoice:
		err = g.createInvoice(tx, cmd)
	case command.ActionMakePayment:
		err = g.makePayment(tx, cmd)
	case command.ActionReceiveMaterial,
		command.ActionShipMaterial,
		command.ActionMoveMaterial,
		command.ActionTransferMaterial,
		command.ActionReserveMaterial:
		err = g.recordMaterial(tx, cmd)
	default:
		err = fmt.Errorf("%s: %w", cmd.Action, shared.ErrUnknownAction)
	}
	if err != nil {
		return err
	}

	log.Debug("command persisted", zap.Stringer("action", cmd.Action))
	return nil
}

// requireFields returns the values of keys, failing on the first one that
// is absent or blank.
func requireFields(cmd command.Command, keys ...string) ([]string, error) {
	out := make([]string, len(keys))
	for i, k := range keys {
		v := cmd.Field(k)
		if v == "" {
			return nil, fmt.Errorf("%s: missing field %q: %w", cmd.Action, k, shared.ErrInvalidInput)
		}
		out[i] = v
	}
	return out, nil
}

// positiveDecimal parses the field under key as a decimal greater than zero.
func positiveDecimal(cmd command.Command, key string) (decimal.Decimal, error) {
	raw, err := requireFields(cmd, key)
	if err != nil {
		return decimal.Zero, err
	}
	d, err := decimal.NewFromString(raw[0])
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s: field %q is not a number: %w", cmd.Action, key, shared.ErrInvalidInput)
	}
	if !d.IsPositive() {
		return decimal.Zero, fmt.Errorf("%s: field %q must be positive: %w", cmd.Action, key, shared.ErrInvalidInput)
	}
	return d, nil
}

func (g *Gateway) check(action command.Action, model any) error {
	if err := g.validate.Struct(model); err != nil {
		return fmt.Errorf("%s: %w: %w", action, shared.ErrInvalidInput, err)
	}
	return nil
}

// translate maps driver errors onto domain errors.
func translate(action command.Action, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%s: %w", action, shared.ErrNotFound)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%s: %w", action, shared.ErrAlreadyExists)
	default:
		return fmt.Errorf("%s: %w", action, err)
	}
}
