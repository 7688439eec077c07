package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"supplier-compliance-backend/models"
)

// Attachments manages the attachment type catalog and each supplier's uploaded documents.
type Attachments struct {
	bus     *Bus
	checker *Checker
	lookups Lookups
}

func NewAttachments(bus *Bus, checker *Checker) *Attachments {
	return &Attachments{bus: bus, checker: checker}
}

func (a *Attachments) Types(db *gorm.DB) ([]models.AttachmentType, error) {
	var out []models.AttachmentType
	if err := db.Preload("RiskLevel").Order("name ASC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list attachment types: %w", err)
	}
	return out, nil
}

func (a *Attachments) CreateType(db *gorm.DB, name string, riskLevelID *uint) (*models.AttachmentType, error) {
	t := models.AttachmentType{Name: strings.TrimSpace(name), RiskLevelID: riskLevelID}
	if t.Name == "" {
		return nil, validationError("name", "name is required")
	}
	ref := lookupRefs{{Field: "risk_level_id", Kind: models.KindRiskLevel, ID: riskLevelID}}
	if err := a.lookups.CheckRefs(db, ref); err != nil {
		return nil, err
	}
	var n int64
	if err := db.Model(&models.AttachmentType{}).Where("name = ?", t.Name).Count(&n).Error; err != nil {
		return nil, fmt.Errorf("check attachment type: %w", err)
	}
	if n > 0 {
		return nil, &Error{Kind: KindConflict, Field: "name", Message: "attachment type already exists"}
	}
	if err := db.Create(&t).Error; err != nil {
		return nil, fmt.Errorf("create attachment type: %w", err)
	}
	return &t, nil
}

func (a *Attachments) List(db *gorm.DB, supplierID uint) ([]models.SupplierAttachment, error) {
	if err := supplierExists(db, supplierID); err != nil {
		return nil, err
	}
	var out []models.SupplierAttachment
	err := db.Preload("AttachmentType").Where("supplier_id = ?", supplierID).Order("id ASC").Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("list attachments: %w", err)
	}
	return out, nil
}

func (a *Attachments) Get(db *gorm.DB, supplierID, id uint) (*models.SupplierAttachment, error) {
	var att models.SupplierAttachment
	err := db.Preload("AttachmentType").Where("id = ? AND supplier_id = ?", id, supplierID).First(&att).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrAttachmentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load attachment: %w", err)
	}
	return &att, nil
}

// Replace stores att as the supplier's document for its type. Any previous row of the same type
// is deleted and returned so the caller can drop its file.
func (a *Attachments) Replace(ctx context.Context, db *gorm.DB, att *models.SupplierAttachment) (*models.SupplierAttachment, error) {
	if err := supplierExists(db, att.SupplierID); err != nil {
		return nil, err
	}
	var typ models.AttachmentType
	if err := db.First(&typ, att.AttachmentTypeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAttachmentTypeNotFound
		}
		return nil, fmt.Errorf("load attachment type: %w", err)
	}

	var old *models.SupplierAttachment
	var prev models.SupplierAttachment
	err := db.Where("supplier_id = ? AND attachment_type_id = ?", att.SupplierID, att.AttachmentTypeID).First(&prev).Error
	switch {
	case err == nil:
		if err := db.Delete(&prev).Error; err != nil {
			return nil, fmt.Errorf("delete previous attachment: %w", err)
		}
		old = &prev
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, fmt.Errorf("load previous attachment: %w", err)
	}

	att.ID = 0
	if err := db.Omit("AttachmentType").Create(att).Error; err != nil {
		return nil, fmt.Errorf("create attachment: %w", err)
	}
	att.AttachmentType = &typ
	if err := a.bus.Publish(ctx, db, AttachmentChanged{Supplier: att.SupplierID}); err != nil {
		return nil, err
	}
	return old, nil
}

func (a *Attachments) Delete(ctx context.Context, db *gorm.DB, supplierID, id uint) (*models.SupplierAttachment, error) {
	att, err := a.Get(db, supplierID, id)
	if err != nil {
		return nil, err
	}
	if err := db.Delete(&models.SupplierAttachment{}, att.ID).Error; err != nil {
		return nil, fmt.Errorf("delete attachment: %w", err)
	}
	if err := a.bus.Publish(ctx, db, AttachmentChanged{Supplier: supplierID}); err != nil {
		return nil, err
	}
	return att, nil
}

// Report is the document completeness of one supplier.
func (a *Attachments) Report(db *gorm.DB, supplierID uint) (DocumentReport, error) {
	s, err := LoadSupplier(db, supplierID)
	if err != nil {
		return DocumentReport{}, err
	}
	return a.checker.Documents(db, s)
}

type lookupRefs []models.LookupRef

func (l lookupRefs) LookupRefs() []models.LookupRef { return l }
