package models

import "time"

type SituationName string

const (
	SituationActive  SituationName = "ACTIVE"
	SituationPending SituationName = "PENDING"
)

// PendencyReason is why a supplier is pending. ACTIVE rows carry ReasonNone.
type PendencyReason string

const (
	ReasonNone                 PendencyReason = ""
	ReasonRegistration         PendencyReason = "registration"
	ReasonDocumentation        PendencyReason = "documentation"
	ReasonResponsibilityMatrix PendencyReason = "responsibility_matrix"
	ReasonEvaluation           PendencyReason = "evaluation"
)

var PendencyReasons = []PendencyReason{
	ReasonRegistration, ReasonDocumentation, ReasonResponsibilityMatrix, ReasonEvaluation,
}

// SituationStatus is the status catalog: one ACTIVE row and one PENDING row per reason.
type SituationStatus struct {
	ID     uint           `json:"id" gorm:"primaryKey"`
	Name   SituationName  `json:"name" gorm:"size:20;not null;uniqueIndex:idx_situation_statuses_name_reason,priority:1"`
	Reason PendencyReason `json:"reason" gorm:"size:40;not null;uniqueIndex:idx_situation_statuses_name_reason,priority:2"`
}

func (SituationStatus) TableName() string { return "situation_statuses" }

func (s SituationStatus) Is(name SituationName, reason PendencyReason) bool {
	return s.Name == name && s.Reason == reason
}

// SupplierSituation is an append-only history row. The most recent row is the current situation.
type SupplierSituation struct {
	ID         uint             `json:"id" gorm:"primaryKey"`
	SupplierID uint             `json:"supplier_id" gorm:"not null;index:idx_supplier_situations_supplier_created,priority:1"`
	StatusID   uint             `json:"status_id" gorm:"not null"`
	Status     *SituationStatus `json:"status,omitempty" gorm:"foreignKey:StatusID;constraint:OnUpdate:RESTRICT,OnDelete:RESTRICT"`
	CreatedAt  time.Time        `json:"created_at" gorm:"index:idx_supplier_situations_supplier_created,priority:2"`
}

func (SupplierSituation) TableName() string { return "supplier_situations" }
