package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"supplier-compliance-backend/logger"
	"supplier-compliance-backend/metrics"
	"supplier-compliance-backend/models"
)

// SituationDeriver keeps each supplier's situation history in step with its registration data,
// responsibility matrix, attachments and evaluations. It only ever appends rows.
type SituationDeriver struct {
	checker *Checker
}

func NewSituationDeriver(checker *Checker) *SituationDeriver {
	return &SituationDeriver{checker: checker}
}

func (d *SituationDeriver) Handle(ctx context.Context, db *gorm.DB, ev Event) error {
	s, err := LoadSupplier(db, ev.SupplierID())
	if err != nil {
		return err
	}
	r, err := d.checker.readiness(db, s)
	if err != nil {
		return err
	}

	switch ev.(type) {
	case SupplierChanged:
		if reason := r.Pendency(); reason != models.ReasonNone {
			_, err = d.ensure(ctx, db, s.ID, models.SituationPending, reason)
		} else {
			_, err = d.ensure(ctx, db, s.ID, models.SituationActive, models.ReasonNone)
		}
	case MatrixChanged:
		if !r.MatrixComplete {
			_, err = d.ensure(ctx, db, s.ID, models.SituationPending, models.ReasonResponsibilityMatrix)
		} else if r.RegistrationComplete {
			err = d.settle(ctx, db, r)
		}
	case AttachmentChanged:
		if !r.Documents.Complete {
			_, err = d.ensure(ctx, db, s.ID, models.SituationPending, models.ReasonDocumentation)
		} else if r.RegistrationComplete {
			err = d.settle(ctx, db, r)
		}
	case EvaluationChanged:
		if r.RegistrationComplete {
			err = d.settle(ctx, db, r)
		}
	default:
		return fmt.Errorf("situation deriver: unexpected event %s", ev.Name())
	}
	return err
}

// settle places a fully registered supplier: pending an overdue evaluation, or active.
func (d *SituationDeriver) settle(ctx context.Context, db *gorm.DB, r Readiness) error {
	var err error
	if r.EvaluationDue {
		_, err = d.ensure(ctx, db, r.SupplierID, models.SituationPending, models.ReasonEvaluation)
	} else {
		_, err = d.ensure(ctx, db, r.SupplierID, models.SituationActive, models.ReasonNone)
	}
	return err
}

// Current returns the most recent situation row, or nil when the supplier has none yet.
func (d *SituationDeriver) Current(db *gorm.DB, supplierID uint) (*models.SupplierSituation, error) {
	var row models.SupplierSituation
	err := db.Preload("Status").
		Where("supplier_id = ?", supplierID).
		Order("created_at DESC").Order("id DESC").
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load current situation: %w", err)
	}
	return &row, nil
}

// History lists the situation rows of a supplier, oldest first.
func (d *SituationDeriver) History(db *gorm.DB, supplierID uint) ([]models.SupplierSituation, error) {
	var rows []models.SupplierSituation
	err := db.Preload("Status").
		Where("supplier_id = ?", supplierID).
		Order("created_at ASC").Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("load situation history: %w", err)
	}
	return rows, nil
}

// ensure appends (name, reason) unless it already is the current situation.
func (d *SituationDeriver) ensure(ctx context.Context, db *gorm.DB, supplierID uint, name models.SituationName, reason models.PendencyReason) (bool, error) {
	cur, err := d.Current(db, supplierID)
	if err != nil {
		return false, err
	}
	if cur != nil && cur.Status != nil && cur.Status.Is(name, reason) {
		return false, nil
	}

	status, err := StatusFor(db, name, reason)
	if err != nil {
		return false, err
	}
	row := models.SupplierSituation{SupplierID: supplierID, StatusID: status.ID}
	if err := db.Create(&row).Error; err != nil {
		return false, fmt.Errorf("append situation: %w", err)
	}

	from := "none"
	if cur != nil && cur.Status != nil {
		from = string(cur.Status.Name) + "/" + string(cur.Status.Reason)
	}
	logger.FromContext(ctx).Info("supplier situation changed",
		zap.Uint("supplier_id", supplierID),
		zap.String("from", from),
		zap.String("status", string(name)),
		zap.String("reason", string(reason)),
	)
	metrics.RecordSituation(string(name), string(reason))
	return true, nil
}

// StatusFor returns the catalog row for (name, reason), creating it on first use.
func StatusFor(db *gorm.DB, name models.SituationName, reason models.PendencyReason) (*models.SituationStatus, error) {
	status := models.SituationStatus{Name: name, Reason: reason}
	if err := db.Where(map[string]any{"name": name, "reason": reason}).FirstOrCreate(&status).Error; err != nil {
		return nil, fmt.Errorf("situation status %s/%s: %w", name, reason, err)
	}
	return &status, nil
}
