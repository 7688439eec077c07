package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"supplier-compliance-backend/models"
)

// DocumentReport compares a supplier's attachments with the types required for its risk level.
// Complete follows the count rule; Missing lists the required types with no upload, for display.
type DocumentReport struct {
	Have     int64                   `json:"have"`
	Required int64                   `json:"required"`
	Complete bool                    `json:"complete"`
	Missing  []models.AttachmentType `json:"missing"`
}

// Readiness is the full registration verdict of one supplier.
type Readiness struct {
	SupplierID           uint           `json:"supplier_id"`
	FieldsComplete       bool           `json:"fields_complete"`
	MissingField         string         `json:"missing_field,omitempty"`
	Documents            DocumentReport `json:"documents"`
	MatrixComplete       bool           `json:"matrix_complete"`
	RegistrationComplete bool           `json:"registration_complete"`
	// EvaluationDue is set when the last closed period has no evaluation for a supplier that
	// existed before it closed.
	EvaluationDue bool                     `json:"evaluation_due"`
	DuePeriod     *models.EvaluationPeriod `json:"due_period,omitempty"`
}

// Pendency returns the first reason that keeps the supplier from being active, in the order
// registration, documentation, responsibility matrix, evaluation. ReasonNone means ready.
func (r Readiness) Pendency() models.PendencyReason {
	switch {
	case !r.FieldsComplete:
		return models.ReasonRegistration
	case !r.Documents.Complete:
		return models.ReasonDocumentation
	case !r.MatrixComplete:
		return models.ReasonResponsibilityMatrix
	case r.EvaluationDue:
		return models.ReasonEvaluation
	}
	return models.ReasonNone
}

// Checker evaluates registration completeness against the database.
type Checker struct {
	Rule models.CompletenessRule
	now  func() time.Time
}

func NewChecker(rule models.CompletenessRule) *Checker {
	if !rule.Valid() {
		rule = models.RuleTerminalActivity
	}
	return &Checker{Rule: rule, now: time.Now}
}

// LoadSupplier reads the supplier with every record the completeness walk needs.
func LoadSupplier(db *gorm.DB, supplierID uint) (*models.Supplier, error) {
	var s models.Supplier
	if err := models.PreloadSupplierGraph(db).First(&s, supplierID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSupplierNotFound
		}
		return nil, fmt.Errorf("load supplier %d: %w", supplierID, err)
	}
	return &s, nil
}

func (ch *Checker) Documents(db *gorm.DB, s *models.Supplier) (DocumentReport, error) {
	var rep DocumentReport
	if err := db.Model(&models.SupplierAttachment{}).Where("supplier_id = ?", s.ID).Count(&rep.Have).Error; err != nil {
		return rep, fmt.Errorf("count attachments: %w", err)
	}

	types := db.Model(&models.AttachmentType{})
	if s.RiskLevelID != nil {
		types = types.Where("risk_level_id = ?", *s.RiskLevelID)
	} else {
		types = types.Where("risk_level_id IS NULL")
	}
	var required []models.AttachmentType
	if err := types.Order("id").Find(&required).Error; err != nil {
		return rep, fmt.Errorf("load attachment types: %w", err)
	}
	rep.Required = int64(len(required))
	rep.Complete = rep.Have > 0 && rep.Have >= rep.Required

	var uploaded []uint
	if err := db.Model(&models.SupplierAttachment{}).Where("supplier_id = ?", s.ID).Pluck("attachment_type_id", &uploaded).Error; err != nil {
		return rep, fmt.Errorf("list attachments: %w", err)
	}
	seen := make(map[uint]bool, len(uploaded))
	for _, id := range uploaded {
		seen[id] = true
	}
	rep.Missing = []models.AttachmentType{}
	for _, t := range required {
		if !seen[t.ID] {
			rep.Missing = append(rep.Missing, t)
		}
	}
	return rep, nil
}

// MatrixComplete is false when the supplier has no matrix yet.
func (ch *Checker) MatrixComplete(db *gorm.DB, supplierID uint) (bool, error) {
	var m models.ResponsibilityMatrix
	err := db.Where("supplier_id = ?", supplierID).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("load responsibility matrix: %w", err)
	}
	return m.IsComplete(ch.Rule), nil
}

func (ch *Checker) Readiness(db *gorm.DB, supplierID uint) (Readiness, error) {
	s, err := LoadSupplier(db, supplierID)
	if err != nil {
		return Readiness{}, err
	}
	return ch.readiness(db, s)
}

func (ch *Checker) readiness(db *gorm.DB, s *models.Supplier) (Readiness, error) {
	r := Readiness{SupplierID: s.ID}
	r.MissingField, r.FieldsComplete = models.MissingField(s)

	docs, err := ch.Documents(db, s)
	if err != nil {
		return r, err
	}
	r.Documents = docs

	if r.MatrixComplete, err = ch.MatrixComplete(db, s.ID); err != nil {
		return r, err
	}
	r.RegistrationComplete = r.FieldsComplete && r.Documents.Complete && r.MatrixComplete

	if r.DuePeriod, err = ch.EvaluationDue(db, s); err != nil {
		return r, err
	}
	r.EvaluationDue = r.DuePeriod != nil
	return r, nil
}

// EvaluationDue returns the most recently closed period when s was already registered before it
// closed and has no evaluation for it; nil otherwise.
func (ch *Checker) EvaluationDue(db *gorm.DB, s *models.Supplier) (*models.EvaluationPeriod, error) {
	var periods []models.EvaluationPeriod
	if err := db.Order("year DESC").Order("period_number DESC").Find(&periods).Error; err != nil {
		return nil, fmt.Errorf("load evaluation periods: %w", err)
	}
	now := ch.now()
	var last *models.EvaluationPeriod
	for i := range periods {
		if periods[i].EndedBy(now) && (last == nil || periods[i].EndDate.After(last.EndDate)) {
			last = &periods[i]
		}
	}
	if last == nil || !s.CreatedAt.Before(last.ClosesAt()) {
		return nil, nil
	}

	var n int64
	if err := db.Model(&models.SupplierEvaluation{}).
		Where("supplier_id = ? AND period_id = ?", s.ID, last.ID).
		Count(&n).Error; err != nil {
		return nil, fmt.Errorf("count evaluations: %w", err)
	}
	if n > 0 {
		return nil, nil
	}
	return last, nil
}
