package services

import (
	"context"
	"database/sql"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"supplier-compliance-backend/models"
)

// Suppliers handles the supplier aggregate and its one-to-one registration records.
// Every successful write publishes SupplierChanged inside the caller's transaction.
type Suppliers struct {
	bus     *Bus
	lookups Lookups
}

func NewSuppliers(bus *Bus) *Suppliers { return &Suppliers{bus: bus} }

func (s *Suppliers) Create(ctx context.Context, db *gorm.DB, sup *models.Supplier) error {
	if err := s.lookups.CheckRefs(db, sup); err != nil {
		return err
	}
	if err := uniqueSupplier(db, sup.LegalName, sup.TaxID, 0); err != nil {
		return err
	}
	if err := db.Omit(clause.Associations).Create(sup).Error; err != nil {
		return fmt.Errorf("create supplier: %w", err)
	}
	return s.bus.Publish(ctx, db, SupplierChanged{Supplier: sup.ID})
}

func (s *Suppliers) Get(db *gorm.DB, id uint) (*models.Supplier, error) {
	return LoadSupplier(db, id)
}

func (s *Suppliers) List(db *gorm.DB) ([]models.Supplier, error) {
	var out []models.Supplier
	err := db.Preload("Classification").Preload("Category").Preload("RiskLevel").Preload("Type").
		Order("legal_name ASC").Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("list suppliers: %w", err)
	}
	return out, nil
}

// Update applies a partial column map to the supplier row.
func (s *Suppliers) Update(ctx context.Context, db *gorm.DB, id uint, updates map[string]any) (*models.Supplier, error) {
	cur, err := LoadSupplier(db, id)
	if err != nil {
		return nil, err
	}
	legal, tax := cur.LegalName, cur.TaxID
	if v, ok := updates["legal_name"].(string); ok {
		legal = v
	}
	if v, ok := updates["tax_id"].(string); ok {
		tax = v
	}
	if err := uniqueSupplier(db, legal, tax, id); err != nil {
		return nil, err
	}
	if len(updates) > 0 {
		if err := db.Model(&models.Supplier{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("update supplier: %w", err)
		}
	}
	out, err := LoadSupplier(db, id)
	if err != nil {
		return nil, err
	}
	if err := s.lookups.CheckRefs(db, out); err != nil {
		return nil, err
	}
	if err := s.bus.Publish(ctx, db, SupplierChanged{Supplier: id}); err != nil {
		return nil, err
	}
	return out, nil
}

// SavePart creates or replaces one registration record of the supplier and links it.
func (s *Suppliers) SavePart(ctx context.Context, db *gorm.DB, supplierID uint, part models.Part) error {
	if err := supplierExists(db, supplierID); err != nil {
		return err
	}
	if ref, ok := part.(models.LookupReferrer); ok {
		if err := s.lookups.CheckRefs(db, ref); err != nil {
			return err
		}
	}

	var fk sql.NullInt64
	if err := db.Model(&models.Supplier{}).Select(part.SupplierColumn()).Where("id = ?", supplierID).Row().Scan(&fk); err != nil {
		return fmt.Errorf("load %s: %w", part.SupplierColumn(), err)
	}
	if fk.Valid {
		part.SetPartID(uint(fk.Int64))
		if err := db.Omit(clause.Associations, "created_at").Save(part).Error; err != nil {
			return fmt.Errorf("save %s: %w", part.SupplierColumn(), err)
		}
	} else {
		part.SetPartID(0)
		if err := db.Omit(clause.Associations).Create(part).Error; err != nil {
			return fmt.Errorf("create %s: %w", part.SupplierColumn(), err)
		}
		if err := db.Model(&models.Supplier{}).Where("id = ?", supplierID).
			Update(part.SupplierColumn(), part.PartID()).Error; err != nil {
			return fmt.Errorf("link %s: %w", part.SupplierColumn(), err)
		}
	}
	return s.bus.Publish(ctx, db, SupplierChanged{Supplier: supplierID})
}

// Delete removes the supplier with everything it owns and returns the storage paths of its
// attachments so the caller can remove the files after commit.
func (s *Suppliers) Delete(db *gorm.DB, id uint) ([]string, error) {
	sup, err := LoadSupplier(db, id)
	if err != nil {
		return nil, err
	}

	var paths []string
	if err := db.Model(&models.SupplierAttachment{}).Where("supplier_id = ?", id).Pluck("storage_path", &paths).Error; err != nil {
		return nil, fmt.Errorf("list attachments: %w", err)
	}

	var flowIDs []uint
	if err := db.Model(&models.ApprovalFlow{}).Where("supplier_id = ?", id).Pluck("id", &flowIDs).Error; err != nil {
		return nil, fmt.Errorf("list approval flows: %w", err)
	}
	if len(flowIDs) > 0 {
		if err := db.Where("flow_id IN ?", flowIDs).Delete(&models.NotificationLog{}).Error; err != nil {
			return nil, fmt.Errorf("delete notification logs: %w", err)
		}
	}
	evaluations := db.Model(&models.SupplierEvaluation{}).Select("id").Where("supplier_id = ?", id)
	if err := db.Where("evaluation_id IN (?)", evaluations).Delete(&models.CriterionScore{}).Error; err != nil {
		return nil, fmt.Errorf("delete criterion scores: %w", err)
	}
	for _, m := range []any{
		&models.SupplierEvaluation{},
		&models.SupplierSituation{},
		&models.SupplierAttachment{},
		&models.ResponsibilityMatrix{},
		&models.ApprovalFlow{},
	} {
		if err := db.Where("supplier_id = ?", id).Delete(m).Error; err != nil {
			return nil, fmt.Errorf("delete owned rows: %w", err)
		}
	}
	if err := db.Delete(&models.Supplier{}, id).Error; err != nil {
		return nil, fmt.Errorf("delete supplier: %w", err)
	}
	for table, partID := range sup.PartIDs() {
		if err := db.Exec("DELETE FROM "+table+" WHERE id = ?", partID).Error; err != nil {
			return nil, fmt.Errorf("delete %s: %w", table, err)
		}
	}
	return paths, nil
}

func uniqueSupplier(db *gorm.DB, legalName, taxID string, self uint) error {
	q := db.Model(&models.Supplier{}).Where("(legal_name = ? OR tax_id = ?)", legalName, taxID)
	if self != 0 {
		q = q.Where("id <> ?", self)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return fmt.Errorf("check supplier uniqueness: %w", err)
	}
	if n > 0 {
		return ErrSupplierExists
	}
	return nil
}

var ErrUnknownPart = &Error{Kind: KindNotFound, Message: "unknown registration record"}

// NewPart returns an empty record for the given path segment.
func NewPart(name string) (models.Part, error) {
	switch name {
	case "address":
		return &models.Address{}, nil
	case "contact":
		return &models.Contact{}, nil
	case "payment-details":
		return &models.PaymentDetails{}, nil
	case "organizational-details":
		return &models.OrganizationalDetails{}, nil
	case "fiscal-details":
		return &models.FiscalDetails{}, nil
	case "company-information":
		return &models.CompanyInformation{}, nil
	case "contract":
		return &models.Contract{}, nil
	}
	return nil, ErrUnknownPart
}
