package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"supplier-compliance-backend/models"
)

// Matrices owns the responsibility matrix of each supplier. Every write validates the whole
// resulting matrix before touching the database, so a rule violation never persists partially.
type Matrices struct {
	bus *Bus
}

func NewMatrices(bus *Bus) *Matrices { return &Matrices{bus: bus} }

// Create seeds the organization defaults, applies patch over them and stores the result.
func (m *Matrices) Create(ctx context.Context, db *gorm.DB, supplierID uint, patch models.Assignments) (*models.ResponsibilityMatrix, error) {
	if err := supplierExists(db, supplierID); err != nil {
		return nil, err
	}
	merged := models.DefaultAssignments().Merge(patch)
	if err := validateAssignments(merged); err != nil {
		return nil, err
	}

	row := models.ResponsibilityMatrix{
		SupplierID:  supplierID,
		Assignments: datatypes.NewJSONType(merged),
	}
	res := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&row)
	if res.Error != nil {
		return nil, fmt.Errorf("create responsibility matrix: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrMatrixExists
	}
	if err := m.bus.Publish(ctx, db, MatrixChanged{Supplier: supplierID}); err != nil {
		return nil, err
	}
	return &row, nil
}

func (m *Matrices) Get(db *gorm.DB, supplierID uint) (*models.ResponsibilityMatrix, error) {
	var row models.ResponsibilityMatrix
	err := db.Where("supplier_id = ?", supplierID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrMatrixNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load responsibility matrix: %w", err)
	}
	return &row, nil
}

// Update merges patch over the stored matrix.
func (m *Matrices) Update(ctx context.Context, db *gorm.DB, supplierID uint, patch models.Assignments) (*models.ResponsibilityMatrix, error) {
	row, err := m.Get(db, supplierID)
	if err != nil {
		return nil, err
	}
	merged := row.Assignments.Data().Merge(patch)
	if err := validateAssignments(merged); err != nil {
		return nil, err
	}
	row.Assignments = datatypes.NewJSONType(merged)
	if err := db.Model(row).Update("assignments", row.Assignments).Error; err != nil {
		return nil, fmt.Errorf("update responsibility matrix: %w", err)
	}
	if err := m.bus.Publish(ctx, db, MatrixChanged{Supplier: supplierID}); err != nil {
		return nil, err
	}
	return row, nil
}

// validateAssignments turns a RACI rule violation into a validation error naming the activity.
func validateAssignments(a models.Assignments) error {
	err := a.Validate()
	var me *models.MatrixError
	if errors.As(err, &me) {
		field := string(me.Activity)
		if me.Role != "" {
			field += "." + string(me.Role)
		}
		return validationError(field, me.Message)
	}
	return err
}

func supplierExists(db *gorm.DB, supplierID uint) error {
	var n int64
	if err := db.Model(&models.Supplier{}).Where("id = ?", supplierID).Count(&n).Error; err != nil {
		return fmt.Errorf("check supplier: %w", err)
	}
	if n == 0 {
		return ErrSupplierNotFound
	}
	return nil
}
