package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"supplier-compliance-backend/database"
	"supplier-compliance-backend/logger"
	"supplier-compliance-backend/metrics"
	"supplier-compliance-backend/models"
)

// Notifier is told whenever a flow row gets an approver who has to act. Calls happen after the
// surrounding transaction committed. Implementations must not fail the transition; errors are
// theirs to log.
type Notifier interface {
	NotifyApprover(ctx context.Context, db *gorm.DB, flow *models.ApprovalFlow)
}

type ApproverInput struct {
	Name  string `json:"name" validate:"required,max=255"`
	Email string `json:"email" validate:"required,email,max=254"`
}

// Decision is the outcome of deciding a step. Next is the row opened for the following step
// after an approval; Completed is set when the last step was approved.
type Decision struct {
	Flow      *models.ApprovalFlow `json:"flow"`
	Next      *models.ApprovalFlow `json:"next,omitempty"`
	Completed bool                 `json:"completed"`
}

// FlowState is a supplier's path through the approval chain, ordered by step order.
type FlowState struct {
	SupplierID  uint                  `json:"supplier_id"`
	Path        []models.ApprovalFlow `json:"path"`
	Current     *models.ApprovalFlow  `json:"current,omitempty"`
	CurrentStep *models.ApprovalStep  `json:"current_step,omitempty"`
	Completed   bool                  `json:"completed"`
	CompletedAt *time.Time            `json:"completed_at,omitempty"`
}

// Workflow drives the linear approval chain. Each visit to a step is its own row; a supplier
// has at most one row without an approval at any time.
type Workflow struct {
	notifier Notifier
	now      func() time.Time
}

func NewWorkflow(n Notifier) *Workflow {
	return &Workflow{notifier: n, now: time.Now}
}

// FirstStep returns the step with the lowest order.
func (w *Workflow) FirstStep(db *gorm.DB) (*models.ApprovalStep, error) {
	var step models.ApprovalStep
	err := db.Order("step_order ASC").First(&step).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNoSteps
	}
	if err != nil {
		return nil, fmt.Errorf("load first step: %w", err)
	}
	return &step, nil
}

// NextStep returns the step with the smallest order greater than step's, or nil after the last one.
func (w *Workflow) NextStep(db *gorm.DB, step *models.ApprovalStep) (*models.ApprovalStep, error) {
	var next models.ApprovalStep
	err := db.Where("step_order > ?", step.Order).Order("step_order ASC").First(&next).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load next step: %w", err)
	}
	return &next, nil
}

// UpsertApprover finds the approver by email or creates it. An existing name is never overwritten.
func (w *Workflow) UpsertApprover(db *gorm.DB, in ApproverInput) (*models.Approver, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" {
		return nil, validationError("email", "approver email is required")
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = email
	}

	candidate := models.Approver{Name: name, Email: email}
	if err := db.Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "email"}}, DoNothing: true}).
		Create(&candidate).Error; err != nil {
		return nil, fmt.Errorf("create approver: %w", err)
	}
	var a models.Approver
	if err := db.Where("email = ?", email).First(&a).Error; err != nil {
		return nil, fmt.Errorf("load approver: %w", err)
	}
	return &a, nil
}

// Start opens the supplier's flow on the first step. The insert itself is the existence check:
// any prior flow row for the supplier makes it a no-op and the call fails with ErrFlowExists.
func (w *Workflow) Start(ctx context.Context, db *gorm.DB, supplierID uint, approver ApproverInput, observations string) (*models.ApprovalFlow, error) {
	if err := supplierExists(db, supplierID); err != nil {
		return nil, err
	}

	first, err := w.FirstStep(db)
	if err != nil {
		return nil, err
	}
	a, err := w.UpsertApprover(db, approver)
	if err != nil {
		return nil, err
	}

	flow := models.ApprovalFlow{
		SupplierID:   supplierID,
		StepID:       first.ID,
		ApproverID:   &a.ID,
		Observations: strings.TrimSpace(observations),
	}
	res := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&flow)
	if res.Error != nil {
		return nil, fmt.Errorf("start approval flow: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrFlowExists
	}
	flow.Step = first
	flow.Approver = a

	metrics.ApprovalFlowsStarted.Inc()
	logger.FromContext(ctx).Info("approval flow started",
		zap.Uint("supplier_id", supplierID),
		zap.Uint("flow_id", flow.ID),
		zap.String("step", first.Name),
		zap.String("approver", a.Email),
	)
	w.notify(ctx, db, &flow)
	return &flow, nil
}

// AssignResponsible sets who acts on the step after flowID's step. The current step must be
// approved; the next row is created, or updated while it is still undecided.
func (w *Workflow) AssignResponsible(ctx context.Context, db *gorm.DB, flowID, stepID uint, approver ApproverInput, observations string) (*models.ApprovalFlow, error) {
	flow, err := w.loadFlow(db, flowID)
	if err != nil {
		return nil, err
	}
	if err := w.notCompleted(db, flow.SupplierID); err != nil {
		return nil, err
	}
	if flow.StepID != stepID {
		var exists int64
		if err := db.Model(&models.ApprovalStep{}).Where("id = ?", stepID).Count(&exists).Error; err != nil {
			return nil, fmt.Errorf("check step: %w", err)
		}
		if exists == 0 {
			return nil, ErrStepNotFound
		}
		return nil, ErrFlowNotFound
	}

	next, err := w.NextStep(db, flow.Step)
	if err != nil {
		return nil, err
	}
	if next == nil {
		return nil, ErrNoNextStep
	}
	if !flow.Decided() {
		return nil, ErrStepNotApproved
	}

	a, err := w.UpsertApprover(db, approver)
	if err != nil {
		return nil, err
	}

	var row models.ApprovalFlow
	err = db.Where("supplier_id = ? AND step_id = ?", flow.SupplierID, next.ID).First(&row).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		row = models.ApprovalFlow{
			SupplierID:   flow.SupplierID,
			StepID:       next.ID,
			ApproverID:   &a.ID,
			Observations: strings.TrimSpace(observations),
		}
		if err := db.Create(&row).Error; err != nil {
			return nil, fmt.Errorf("open next step: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("load next flow row: %w", err)
	case row.Decided():
		return nil, ErrStepAlreadyDecided
	default:
		updates := map[string]any{"approver_id": a.ID}
		if obs := strings.TrimSpace(observations); obs != "" {
			updates["observations"] = obs
		}
		if err := db.Model(&row).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("assign approver: %w", err)
		}
		row.ApproverID = &a.ID
	}
	row.Step = next
	row.Approver = a

	logger.FromContext(ctx).Info("approval step assigned",
		zap.Uint("supplier_id", row.SupplierID),
		zap.Uint("flow_id", row.ID),
		zap.String("step", next.Name),
		zap.String("approver", a.Email),
	)
	w.notify(ctx, db, &row)
	return &row, nil
}

// Decide records an approval or a rejection on flowID. The two timestamps are mutually exclusive.
// A rejection leaves the supplier on the same step awaiting a new decision; an approval opens
// the next step or completes the flow. decidedBy, when set, becomes the step's approver.
func (w *Workflow) Decide(ctx context.Context, db *gorm.DB, flowID uint, approved bool, decidedBy *ApproverInput, observations string) (*Decision, error) {
	flow, err := w.openFlow(db, flowID)
	if err != nil {
		return nil, err
	}
	if decidedBy != nil {
		a, err := w.UpsertApprover(db, *decidedBy)
		if err != nil {
			return nil, err
		}
		flow.ApproverID = &a.ID
		flow.Approver = a
	}
	if flow.ApproverID == nil {
		return nil, ErrApproverRequired
	}
	return w.record(ctx, db, flow, approved, observations, nil)
}

// DecideAs records a decision made by approverID, who must still be the step's approver.
// Links mailed to an approver stop working once the step is handed to someone else.
func (w *Workflow) DecideAs(ctx context.Context, db *gorm.DB, flowID, approverID uint, approved bool) (*Decision, error) {
	flow, err := w.openFlow(db, flowID)
	if err != nil {
		return nil, err
	}
	if flow.ApproverID == nil || *flow.ApproverID != approverID {
		return nil, ErrApproverReplaced
	}
	return w.record(ctx, db, flow, approved, "", &approverID)
}

// openFlow loads a flow row that can still take a decision.
func (w *Workflow) openFlow(db *gorm.DB, flowID uint) (*models.ApprovalFlow, error) {
	flow, err := w.loadFlow(db, flowID)
	if err != nil {
		return nil, err
	}
	if err := w.notCompleted(db, flow.SupplierID); err != nil {
		return nil, err
	}
	if flow.Decided() {
		return nil, ErrStepAlreadyDecided
	}
	return flow, nil
}

func (w *Workflow) record(ctx context.Context, db *gorm.DB, flow *models.ApprovalFlow, approved bool, observations string, expectApprover *uint) (*Decision, error) {
	var next *models.ApprovalStep
	if approved {
		var err error
		if next, err = w.NextStep(db, flow.Step); err != nil {
			return nil, err
		}
	}

	now := w.now().UTC()
	updates := map[string]any{"approver_id": *flow.ApproverID}
	if approved {
		flow.ApprovedAt, flow.ReprovedAt = &now, nil
		if next == nil {
			flow.CompletedAt = &now
			updates["completed_at"] = flow.CompletedAt
		}
	} else {
		flow.ApprovedAt, flow.ReprovedAt = nil, &now
	}
	updates["approved_at"] = flow.ApprovedAt
	updates["reproved_at"] = flow.ReprovedAt
	if obs := strings.TrimSpace(observations); obs != "" {
		flow.Observations = obs
		updates["observations"] = obs
	}

	// Guard on approved_at so two concurrent decisions cannot both win.
	q := db.Model(&models.ApprovalFlow{}).Where("id = ? AND approved_at IS NULL", flow.ID)
	if expectApprover != nil {
		q = q.Where("approver_id = ?", *expectApprover)
	}
	res := q.Updates(updates)
	if res.Error != nil {
		return nil, fmt.Errorf("record decision: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		if expectApprover != nil {
			if cur, err := w.loadFlow(db, flow.ID); err == nil && !cur.Decided() {
				return nil, ErrApproverReplaced
			}
		}
		return nil, ErrStepAlreadyDecided
	}
	metrics.RecordDecision(approved)

	out := &Decision{Flow: flow}
	log := logger.FromContext(ctx).With(
		zap.Uint("supplier_id", flow.SupplierID),
		zap.Uint("flow_id", flow.ID),
		zap.String("step", flow.Step.Name),
	)
	if !approved {
		log.Info("approval step rejected")
		return out, nil
	}
	if next == nil {
		out.Completed = true
		log.Info("approval flow completed")
		return out, nil
	}
	row := models.ApprovalFlow{SupplierID: flow.SupplierID, StepID: next.ID}
	if err := db.Create(&row).Error; err != nil {
		return nil, fmt.Errorf("open next step: %w", err)
	}
	row.Step = next
	out.Next = &row
	log.Info("approval step approved", zap.String("next_step", next.Name))
	return out, nil
}

// State reconstructs the supplier's path. Suppliers without a flow get ErrFlowNotFound.
func (w *Workflow) State(db *gorm.DB, supplierID uint) (*FlowState, error) {
	var rows []models.ApprovalFlow
	err := db.Preload("Step").Preload("Approver").
		Joins("JOIN approval_steps ON approval_steps.id = approval_flows.step_id").
		Where("approval_flows.supplier_id = ?", supplierID).
		Order("approval_steps.step_order ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("load approval path: %w", err)
	}
	if len(rows) == 0 {
		return nil, ErrFlowNotFound
	}

	st := &FlowState{SupplierID: supplierID, Path: rows}
	for i := range st.Path {
		if at := st.Path[i].CompletedAt; at != nil {
			st.Completed = true
			st.CompletedAt = at
			return st, nil
		}
	}
	if last := &st.Path[len(st.Path)-1]; !last.Decided() {
		st.Current = last
		st.CurrentStep = last.Step
	}
	return st, nil
}

// Flow loads one flow row with its step and approver.
func (w *Workflow) Flow(db *gorm.DB, flowID uint) (*models.ApprovalFlow, error) {
	return w.loadFlow(db, flowID)
}

func (w *Workflow) loadFlow(db *gorm.DB, flowID uint) (*models.ApprovalFlow, error) {
	var flow models.ApprovalFlow
	err := db.Preload("Step").Preload("Approver").First(&flow, flowID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrFlowNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load approval flow: %w", err)
	}
	return &flow, nil
}

// notCompleted fails once the supplier's terminal step has been approved. Completion is stored,
// so steps added to the catalog later do not reopen a finished flow.
func (w *Workflow) notCompleted(db *gorm.DB, supplierID uint) error {
	var n int64
	if err := db.Model(&models.ApprovalFlow{}).
		Where("supplier_id = ? AND completed_at IS NOT NULL", supplierID).
		Count(&n).Error; err != nil {
		return fmt.Errorf("check flow completion: %w", err)
	}
	if n > 0 {
		return ErrFlowCompleted
	}
	return nil
}

// notify hands the row to the notifier once the surrounding transaction commits.
func (w *Workflow) notify(ctx context.Context, db *gorm.DB, flow *models.ApprovalFlow) {
	if w.notifier == nil || flow.ApproverID == nil {
		return
	}
	row := *flow
	send := func(ctx context.Context, db *gorm.DB) { w.notifier.NotifyApprover(ctx, db, &row) }
	if database.AfterCommit(ctx, send) {
		return
	}
	if database.InTransaction(db) {
		logger.FromContext(ctx).Warn("approval notification dropped: transaction has no commit queue",
			zap.Uint("flow_id", row.ID))
		return
	}
	send(ctx, db)
}
