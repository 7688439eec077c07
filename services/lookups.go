package services

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"supplier-compliance-backend/models"
)

type Lookups struct{}

func (Lookups) List(db *gorm.DB, kind models.LookupKind) ([]models.Lookup, error) {
	q := db.Order("kind ASC").Order("name ASC")
	if kind != "" {
		if !kind.Valid() {
			return nil, validationError("kind", fmt.Sprintf("unknown lookup kind %q", kind))
		}
		q = q.Where("kind = ?", kind)
	}
	var out []models.Lookup
	if err := q.Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list lookups: %w", err)
	}
	return out, nil
}

func (Lookups) Create(db *gorm.DB, kind models.LookupKind, name string) (*models.Lookup, error) {
	if !kind.Valid() {
		return nil, validationError("kind", fmt.Sprintf("unknown lookup kind %q", kind))
	}
	l := models.Lookup{Kind: kind, Name: strings.TrimSpace(name)}
	if !models.IsComplete(&l) {
		return nil, validationError("name", "name is required")
	}
	res := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&l)
	if res.Error != nil {
		return nil, fmt.Errorf("create lookup: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrLookupExists
	}
	return &l, nil
}

// Delete refuses to remove a value that any record still points at.
func (Lookups) Delete(db *gorm.DB, id uint) error {
	var l models.Lookup
	if err := db.First(&l, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrLookupNotFound
		}
		return fmt.Errorf("load lookup: %w", err)
	}
	for _, col := range models.LookupColumns {
		var n int64
		if err := db.Table(col.Table).Where(col.Column+" = ?", id).Count(&n).Error; err != nil {
			return fmt.Errorf("check %s.%s: %w", col.Table, col.Column, err)
		}
		if n > 0 {
			return &Error{Kind: KindConflict, Field: col.Table + "." + col.Column, Message: ErrLookupInUse.Message}
		}
	}
	if err := db.Delete(&l).Error; err != nil {
		return fmt.Errorf("delete lookup: %w", err)
	}
	return nil
}

// CheckRefs verifies every set lookup foreign key of r points at a value of the expected kind.
func (Lookups) CheckRefs(db *gorm.DB, r models.LookupReferrer) error {
	for _, ref := range r.LookupRefs() {
		if ref.ID == nil {
			continue
		}
		var l models.Lookup
		err := db.First(&l, *ref.ID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return validationError(ref.Field, "referenced lookup does not exist")
		}
		if err != nil {
			return fmt.Errorf("load lookup %d: %w", *ref.ID, err)
		}
		if l.Kind != ref.Kind {
			return validationError(ref.Field, fmt.Sprintf("must reference a %s lookup", ref.Kind))
		}
	}
	return nil
}
