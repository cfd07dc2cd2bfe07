package db

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"bondkeeper/domain"
)

var _ domain.BondRepository = (*Repository)(nil)

var (
	// ErrBondNotFound is returned when a bond does not exist for the tenant.
	ErrBondNotFound = errors.New("bond not found")
)

// dbBond represents a bond as stored in the database.
type dbBond struct {
	ID           uuid.UUID           `db:"id"`
	TenantID     uuid.UUID           `db:"tenant_id"`
	PersonID     uuid.UUID           `db:"person_id"`
	Date         sql.NullTime        `db:"bond_date"`
	Agency       string              `db:"agency"`
	OffenseType  string              `db:"offense_type"`
	BondAmount   decimal.NullDecimal `db:"bond_amount"`
	Jurisdiction string              `db:"jurisdiction"`
	Amount       decimal.NullDecimal `db:"amount"`
	County       string              `db:"county"`
	Charge       string              `db:"charge"`
	Notes        string              `db:"notes"`
}

// toDomainBond converts a dbBond to a domain.Bond.
func toDomainBond(dbBond *dbBond) *domain.Bond {
	return &domain.Bond{
		ID:           dbBond.ID,
		TenantID:     dbBond.TenantID,
		PersonID:     dbBond.PersonID,
		Date:         timeValue(dbBond.Date),
		Agency:       dbBond.Agency,
		OffenseType:  dbBond.OffenseType,
		BondAmount:   decimalValue(dbBond.BondAmount),
		Jurisdiction: dbBond.Jurisdiction,
		Amount:       decimalValue(dbBond.Amount),
		County:       dbBond.County,
		Charge:       dbBond.Charge,
		Notes:        dbBond.Notes,
	}
}

// fromDomainBond converts a domain.Bond to a dbBond.
func fromDomainBond(bond *domain.Bond) *dbBond {
	return &dbBond{
		ID:           bond.ID,
		TenantID:     bond.TenantID,
		PersonID:     bond.PersonID,
		Date:         nullTime(bond.Date),
		Agency:       bond.Agency,
		OffenseType:  bond.OffenseType,
		BondAmount:   nullDecimal(bond.BondAmount),
		Jurisdiction: bond.Jurisdiction,
		Amount:       nullDecimal(bond.Amount),
		County:       bond.County,
		Charge:       bond.Charge,
		Notes:        bond.Notes,
	}
}

// CreateBond saves a new bond to the database.
func (repo *Repository) CreateBond(bond *domain.Bond) error {
	query := `INSERT INTO bond (id, tenant_id, person_id, bond_date, agency, offense_type, bond_amount, jurisdiction, amount, county, charge, notes)
	          VALUES (:id, :tenant_id, :person_id, :bond_date, :agency, :offense_type, :bond_amount, :jurisdiction, :amount, :county, :charge, :notes)`

	_, err := repo.dbConn.NamedExec(query, fromDomainBond(bond))
	if err != nil {
		return fmt.Errorf("creating bond %s: %w", bond.ID, err)
	}

	return nil
}

// UpdateBond updates an existing bond.
func (repo *Repository) UpdateBond(bond *domain.Bond) error {
	query := `UPDATE bond
	          SET bond_date = :bond_date, agency = :agency, offense_type = :offense_type,
	              bond_amount = :bond_amount, jurisdiction = :jurisdiction, amount = :amount,
	              county = :county, charge = :charge, notes = :notes
	          WHERE id = :id AND tenant_id = :tenant_id`

	result, err := repo.dbConn.NamedExec(query, fromDomainBond(bond))
	if err != nil {
		return fmt.Errorf("updating bond %s: %w", bond.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking update rows affected for %s: %w", bond.ID, err)
	}
	if rowsAffected == 0 {
		return ErrBondNotFound
	}

	return nil
}

// GetBond retrieves a bond by ID, scoped to the tenant.
func (repo *Repository) GetBond(tenantID, id uuid.UUID) (*domain.Bond, error) {
	var dbBond dbBond
	query := `SELECT * FROM bond WHERE id = ? AND tenant_id = ?`

	err := repo.dbConn.Get(&dbBond, query, id, tenantID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBondNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting bond %s: %w", id, err)
	}

	return toDomainBond(&dbBond), nil
}

// DeleteBond removes a bond.
func (repo *Repository) DeleteBond(tenantID, id uuid.UUID) error {
	query := `DELETE FROM bond WHERE id = ? AND tenant_id = ?`

	result, err := repo.dbConn.Exec(query, id, tenantID)
	if err != nil {
		return fmt.Errorf("deleting bond %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking deletion rows affected for %s: %w", id, err)
	}
	if rowsAffected == 0 {
		return ErrBondNotFound
	}

	return nil
}

// GetBonds retrieves all bonds for a person, newest first.
func (repo *Repository) GetBonds(personID uuid.UUID) ([]*domain.Bond, error) {
	var dbBonds []*dbBond
	query := `SELECT * FROM bond WHERE person_id = ? ORDER BY bond_date DESC, id DESC`

	err := repo.dbConn.Select(&dbBonds, query, personID)
	if err != nil {
		return nil, fmt.Errorf("retrieving bonds for %s: %w", personID, err)
	}

	bonds := make([]*domain.Bond, len(dbBonds))
	for i, dbBond := range dbBonds {
		bonds[i] = toDomainBond(dbBond)
	}

	return bonds, nil
}
