package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BondRepository defines the interface for managing bonds.
type BondRepository interface {
	// CreateBond saves a new bond.
	CreateBond(bond *Bond) error
	// UpdateBond updates an existing bond.
	UpdateBond(bond *Bond) error
	// GetBond retrieves a bond by ID, scoped to the tenant.
	GetBond(tenantID, id uuid.UUID) (*Bond, error)
	// DeleteBond removes a bond.
	DeleteBond(tenantID, id uuid.UUID) error
	// GetBonds retrieves all bonds for a person, newest first.
	GetBonds(personID uuid.UUID) ([]*Bond, error)
}

// Bond represents a bail bond written for a defendant.
//
// BondAmount is the face value of the bond. Amount is a legacy premium
// column kept from earlier imports; reports fall back to it when
// BondAmount is unset.
type Bond struct {
	ID           uuid.UUID
	TenantID     uuid.UUID
	PersonID     uuid.UUID
	Date         time.Time // Date the bond was written. Zero when unknown.
	Agency       string
	OffenseType  string
	BondAmount   decimal.Decimal
	Jurisdiction string
	Amount       decimal.Decimal
	County       string
	Charge       string
	Notes        string
}

// EffectiveAmount returns the amount a report should attribute to the bond:
// BondAmount when positive, otherwise the legacy Amount column.
func (b *Bond) EffectiveAmount() decimal.Decimal {
	if b.BondAmount.IsPositive() {
		return b.BondAmount
	}
	return b.Amount
}
