package models

import (
	"time"

	"gorm.io/datatypes"
)

// ApprovalStep is one stage of the linear approval chain. Order is unique and defines the sequence.
type ApprovalStep struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	Name        string `json:"name" gorm:"size:255;not null"`
	Order       int    `json:"order" gorm:"column:step_order;not null;uniqueIndex"`
	Department  string `json:"department" gorm:"size:255;not null"`
	IsMandatory bool   `json:"is_mandatory"`
}

func (ApprovalStep) TableName() string { return "approval_steps" }

// Approver is identified by email. The name recorded first is kept.
type Approver struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"size:255;not null"`
	Email     string    `json:"email" gorm:"size:254;not null;uniqueIndex"`
	CreatedAt time.Time `json:"created_at"`
}

func (Approver) TableName() string { return "approvers" }

// ApprovalFlow is one visit of a supplier to one step. Rows are appended as the supplier
// advances; a row is open until ApprovedAt is set. CompletedAt is only set on the row whose
// approval finished the chain.
type ApprovalFlow struct {
	ID           uint          `json:"id" gorm:"primaryKey"`
	SupplierID   uint          `json:"supplier_id" gorm:"not null;uniqueIndex:idx_approval_flows_supplier_step,priority:1"`
	StepID       uint          `json:"step_id" gorm:"not null;uniqueIndex:idx_approval_flows_supplier_step,priority:2"`
	Step         *ApprovalStep `json:"step,omitempty" gorm:"foreignKey:StepID;constraint:OnUpdate:RESTRICT,OnDelete:RESTRICT"`
	ApproverID   *uint         `json:"approver_id"`
	Approver     *Approver     `json:"approver,omitempty" gorm:"foreignKey:ApproverID;constraint:OnUpdate:RESTRICT,OnDelete:RESTRICT"`
	ApprovedAt   *time.Time    `json:"approved_at"`
	ReprovedAt   *time.Time    `json:"reproved_at"`
	CompletedAt  *time.Time    `json:"completed_at,omitempty"`
	Observations string        `json:"observations"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

func (ApprovalFlow) TableName() string { return "approval_flows" }

func (f *ApprovalFlow) Decided() bool { return f.ApprovedAt != nil }

func (f *ApprovalFlow) Rejected() bool { return f.ReprovedAt != nil && f.ApprovedAt == nil }

// NotificationLog records each attempt to email an approver.
type NotificationLog struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	FlowID    uint           `json:"flow_id" gorm:"index"`
	Recipient string         `json:"recipient" gorm:"size:254;not null"`
	Subject   string         `json:"subject" gorm:"size:255"`
	Payload   datatypes.JSON `json:"payload"`
	Error     string         `json:"error"`
	SentAt    *time.Time     `json:"sent_at"`
	CreatedAt time.Time      `json:"created_at"`
}

func (NotificationLog) TableName() string { return "notification_logs" }
