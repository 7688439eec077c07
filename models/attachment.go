package models

import "time"

// AttachmentType is a required document kind. A nil RiskLevelID means the type applies to
// suppliers that have no risk level assigned yet.
type AttachmentType struct {
	ID          uint    `json:"id" gorm:"primaryKey"`
	Name        string  `json:"name" gorm:"size:255;not null;uniqueIndex"`
	RiskLevelID *uint   `json:"risk_level_id" gorm:"index"`
	RiskLevel   *Lookup `json:"risk_level,omitempty" gorm:"foreignKey:RiskLevelID;constraint:OnUpdate:RESTRICT,OnDelete:RESTRICT"`
}

func (AttachmentType) TableName() string { return "attachment_types" }

// SupplierAttachment is at most one file per (supplier, attachment type).
type SupplierAttachment struct {
	ID               uint            `json:"id" gorm:"primaryKey"`
	SupplierID       uint            `json:"supplier_id" gorm:"not null;uniqueIndex:idx_supplier_attachments_supplier_type,priority:1"`
	AttachmentTypeID uint            `json:"attachment_type_id" gorm:"not null;uniqueIndex:idx_supplier_attachments_supplier_type,priority:2"`
	AttachmentType   *AttachmentType `json:"attachment_type,omitempty" gorm:"foreignKey:AttachmentTypeID;constraint:OnUpdate:RESTRICT,OnDelete:RESTRICT"`
	FileName         string          `json:"file_name" gorm:"size:255;not null"`
	StoragePath      string          `json:"-" gorm:"size:512;not null"`
	ContentType      string          `json:"content_type" gorm:"size:100"`
	Size             int64           `json:"size"`
	Description      string          `json:"description" gorm:"size:255"`
	CreatedAt        time.Time       `json:"created_at"`
}

func (SupplierAttachment) TableName() string { return "supplier_attachments" }
