package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"supplier-compliance-backend/database"
	"supplier-compliance-backend/models"
)

// threeSteps replaces the seeded chain with Admin(1), Finance(2), Board(3).
func threeSteps(t *testing.T, db *gorm.DB) []models.ApprovalStep {
	t.Helper()
	require.NoError(t, db.Exec("DELETE FROM approval_steps").Error)
	steps := []models.ApprovalStep{
		{Name: "Admin review", Order: 1, Department: "Admin", IsMandatory: true},
		{Name: "Finance review", Order: 2, Department: "Finance", IsMandatory: true},
		{Name: "Board review", Order: 3, Department: "Board", IsMandatory: true},
	}
	for i := range steps {
		require.NoError(t, db.Create(&steps[i]).Error)
	}
	return steps
}

func newWorkflowFixture(t *testing.T) (*gorm.DB, *Services, *fakeNotifier, *models.Supplier, []models.ApprovalStep) {
	t.Helper()
	db := newTestDB(t)
	n := &fakeNotifier{}
	svc := New(models.RuleTerminalActivity, n)
	steps := threeSteps(t, db)
	s := createSupplier(t, db, svc, "Acme Ltda", "12345678000199")
	return db, svc, n, s, steps
}

func approver(name string) *ApproverInput {
	return &ApproverInput{Name: name, Email: name + "@acme.test"}
}

func TestWorkflow_ThreeStepChainCompletes(t *testing.T) {
	db, svc, n, s, _ := newWorkflowFixture(t)
	ctx := context.Background()

	flow, err := svc.Workflow.Start(ctx, db, s.ID, *approver("a"), "")
	require.NoError(t, err)
	require.Len(t, n.flows, 1)

	st, err := svc.Workflow.State(db, s.ID)
	require.NoError(t, err)
	require.NotNil(t, st.CurrentStep)
	assert.Equal(t, 1, st.CurrentStep.Order)
	assert.Equal(t, "Admin", st.CurrentStep.Department)

	d, err := svc.Workflow.Decide(ctx, db, flow.ID, true, approver("A"), "")
	require.NoError(t, err)
	require.NotNil(t, d.Next)
	assert.False(t, d.Completed)

	st, err = svc.Workflow.State(db, s.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, st.CurrentStep.Order)

	d, err = svc.Workflow.Decide(ctx, db, d.Next.ID, true, approver("B"), "")
	require.NoError(t, err)
	st, err = svc.Workflow.State(db, s.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, st.CurrentStep.Order)
	assert.Equal(t, "Board", st.CurrentStep.Department)

	d, err = svc.Workflow.Decide(ctx, db, d.Next.ID, true, approver("C"), "looks good")
	require.NoError(t, err)
	assert.True(t, d.Completed)
	assert.Nil(t, d.Next)

	st, err = svc.Workflow.State(db, s.ID)
	require.NoError(t, err)
	assert.True(t, st.Completed)
	assert.NotNil(t, st.CompletedAt)
	assert.Nil(t, st.CurrentStep)
	assert.Nil(t, st.Current)
	require.Len(t, st.Path, 3)
	for i, row := range st.Path {
		assert.Equal(t, i+1, row.Step.Order)
		assert.NotNil(t, row.ApprovedAt)
	}
	assert.Equal(t, "c@acme.test", st.Path[2].Approver.Email)
	assert.Equal(t, "looks good", st.Path[2].Observations)
}

func TestWorkflow_RejectKeepsStep(t *testing.T) {
	db, svc, _, s, _ := newWorkflowFixture(t)
	ctx := context.Background()

	flow, err := svc.Workflow.Start(ctx, db, s.ID, *approver("a"), "")
	require.NoError(t, err)

	d, err := svc.Workflow.Decide(ctx, db, flow.ID, false, nil, "missing contract")
	require.NoError(t, err)
	assert.True(t, d.Flow.Rejected())
	assert.Nil(t, d.Next)

	st, err := svc.Workflow.State(db, s.ID)
	require.NoError(t, err)
	require.NotNil(t, st.Current)
	assert.Equal(t, flow.ID, st.Current.ID)
	assert.Equal(t, 1, st.CurrentStep.Order)
	assert.NotNil(t, st.Current.ReprovedAt)

	// A rejected step can be decided again; approval clears the rejection.
	d, err = svc.Workflow.Decide(ctx, db, flow.ID, true, nil, "")
	require.NoError(t, err)
	assert.Nil(t, d.Flow.ReprovedAt)
	require.NotNil(t, d.Next)

	var stored models.ApprovalFlow
	require.NoError(t, db.First(&stored, flow.ID).Error)
	assert.NotNil(t, stored.ApprovedAt)
	assert.Nil(t, stored.ReprovedAt)
}

func TestWorkflow_StartTwiceConflicts(t *testing.T) {
	db, svc, _, s, _ := newWorkflowFixture(t)
	ctx := context.Background()

	_, err := svc.Workflow.Start(ctx, db, s.ID, *approver("a"), "")
	require.NoError(t, err)

	_, err = svc.Workflow.Start(ctx, db, s.ID, *approver("b"), "")
	assert.ErrorIs(t, err, ErrFlowExists)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestWorkflow_StartPreconditions(t *testing.T) {
	db, svc, _, s, _ := newWorkflowFixture(t)
	ctx := context.Background()

	_, err := svc.Workflow.Start(ctx, db, 999, *approver("a"), "")
	assert.ErrorIs(t, err, ErrSupplierNotFound)

	require.NoError(t, db.Exec("DELETE FROM approval_steps").Error)
	_, err = svc.Workflow.Start(ctx, db, s.ID, *approver("a"), "")
	assert.ErrorIs(t, err, ErrNoSteps)
	assert.ErrorIs(t, err, ErrPrecondition)
}

func TestWorkflow_AssignResponsible(t *testing.T) {
	db, svc, n, s, steps := newWorkflowFixture(t)
	ctx := context.Background()

	flow, err := svc.Workflow.Start(ctx, db, s.ID, *approver("a"), "")
	require.NoError(t, err)

	_, err = svc.Workflow.AssignResponsible(ctx, db, flow.ID, steps[0].ID, *approver("b"), "")
	assert.ErrorIs(t, err, ErrStepNotApproved)

	d, err := svc.Workflow.Decide(ctx, db, flow.ID, true, nil, "")
	require.NoError(t, err)
	require.NotNil(t, d.Next)
	assert.Nil(t, d.Next.ApproverID)

	// Deciding the opened step needs someone responsible for it.
	_, err = svc.Workflow.Decide(ctx, db, d.Next.ID, true, nil, "")
	assert.ErrorIs(t, err, ErrApproverRequired)

	sent := len(n.flows)
	row, err := svc.Workflow.AssignResponsible(ctx, db, flow.ID, steps[0].ID, *approver("b"), "please review")
	require.NoError(t, err)
	assert.Equal(t, d.Next.ID, row.ID, "the opened row is reused")
	assert.Equal(t, steps[1].ID, row.StepID)
	assert.Equal(t, "b@acme.test", row.Approver.Email)
	assert.Len(t, n.flows, sent+1)

	_, err = svc.Workflow.AssignResponsible(ctx, db, flow.ID, steps[2].ID, *approver("b"), "")
	assert.ErrorIs(t, err, ErrFlowNotFound)
	_, err = svc.Workflow.AssignResponsible(ctx, db, flow.ID, 999, *approver("b"), "")
	assert.ErrorIs(t, err, ErrStepNotFound)
}

func TestWorkflow_AssignOnLastStepFails(t *testing.T) {
	db, svc, _, s, steps := newWorkflowFixture(t)
	ctx := context.Background()

	flow, err := svc.Workflow.Start(ctx, db, s.ID, *approver("a"), "")
	require.NoError(t, err)
	d, err := svc.Workflow.Decide(ctx, db, flow.ID, true, nil, "")
	require.NoError(t, err)
	d, err = svc.Workflow.Decide(ctx, db, d.Next.ID, true, approver("b"), "")
	require.NoError(t, err)
	last := d.Next

	_, err = svc.Workflow.AssignResponsible(ctx, db, last.ID, steps[2].ID, *approver("c"), "")
	assert.ErrorIs(t, err, ErrNoNextStep)
	assert.ErrorIs(t, err, ErrPrecondition)
}

func TestWorkflow_DecideTwice(t *testing.T) {
	db, svc, _, s, _ := newWorkflowFixture(t)
	ctx := context.Background()

	flow, err := svc.Workflow.Start(ctx, db, s.ID, *approver("a"), "")
	require.NoError(t, err)
	_, err = svc.Workflow.Decide(ctx, db, flow.ID, true, nil, "")
	require.NoError(t, err)

	_, err = svc.Workflow.Decide(ctx, db, flow.ID, false, nil, "")
	assert.ErrorIs(t, err, ErrStepAlreadyDecided)

	_, err = svc.Workflow.Decide(ctx, db, 999, true, nil, "")
	assert.ErrorIs(t, err, ErrFlowNotFound)
}

func TestWorkflow_DecisionUsesClock(t *testing.T) {
	db, svc, _, s, _ := newWorkflowFixture(t)
	fixed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc.Workflow.now = func() time.Time { return fixed }

	flow, err := svc.Workflow.Start(context.Background(), db, s.ID, *approver("a"), "")
	require.NoError(t, err)
	d, err := svc.Workflow.Decide(context.Background(), db, flow.ID, true, nil, "")
	require.NoError(t, err)
	assert.True(t, d.Flow.ApprovedAt.Equal(fixed))
}

func TestWorkflow_CompletionIsStored(t *testing.T) {
	db, svc, _, s, steps := newWorkflowFixture(t)
	ctx := context.Background()

	flow, err := svc.Workflow.Start(ctx, db, s.ID, *approver("a"), "")
	require.NoError(t, err)
	d, err := svc.Workflow.Decide(ctx, db, flow.ID, true, nil, "")
	require.NoError(t, err)
	d, err = svc.Workflow.Decide(ctx, db, d.Next.ID, true, approver("b"), "")
	require.NoError(t, err)
	last := d.Next
	d, err = svc.Workflow.Decide(ctx, db, last.ID, true, approver("c"), "")
	require.NoError(t, err)
	require.True(t, d.Completed)

	var stored models.ApprovalFlow
	require.NoError(t, db.First(&stored, last.ID).Error)
	require.NotNil(t, stored.CompletedAt)

	// A step appended to the catalog afterwards does not reopen the flow.
	_, err = svc.Steps.Create(db, StepInput{Name: "Audit", Order: 4, Department: "Audit"})
	require.NoError(t, err)

	st, err := svc.Workflow.State(db, s.ID)
	require.NoError(t, err)
	assert.True(t, st.Completed)
	assert.Nil(t, st.Current)
	assert.Len(t, st.Path, 3)

	_, err = svc.Workflow.AssignResponsible(ctx, db, last.ID, steps[2].ID, *approver("d"), "")
	assert.ErrorIs(t, err, ErrFlowCompleted)
	assert.ErrorIs(t, err, ErrPrecondition)

	_, err = svc.Workflow.Decide(ctx, db, last.ID, false, nil, "")
	assert.ErrorIs(t, err, ErrFlowCompleted)
}

func TestSteps_RefuseOrderBeforeVisitedStep(t *testing.T) {
	db := newTestDB(t)
	svc := New(models.RuleTerminalActivity, nil)
	ctx := context.Background()

	require.NoError(t, db.Exec("DELETE FROM approval_steps").Error)
	var steps []models.ApprovalStep
	for _, order := range []int{10, 20, 30} {
		st := models.ApprovalStep{Name: "Review", Order: order, Department: "Dept"}
		require.NoError(t, db.Create(&st).Error)
		steps = append(steps, st)
	}
	s := createSupplier(t, db, svc, "Acme Ltda", "12345678000199")

	flow, err := svc.Workflow.Start(ctx, db, s.ID, *approver("a"), "")
	require.NoError(t, err)
	_, err = svc.Steps.Create(db, StepInput{Name: "Early", Order: 5, Department: "X"})
	assert.ErrorIs(t, err, ErrStepBeforeVisited)

	_, err = svc.Workflow.Decide(ctx, db, flow.ID, true, nil, "")
	require.NoError(t, err)

	_, err = svc.Steps.Create(db, StepInput{Name: "Between", Order: 15, Department: "X"})
	assert.ErrorIs(t, err, ErrStepBeforeVisited)
	assert.ErrorIs(t, err, ErrConflict)
	_, err = svc.Steps.Update(db, steps[2].ID, StepInput{Name: "Moved", Order: 12, Department: "X"})
	assert.ErrorIs(t, err, ErrStepBeforeVisited)

	// Ahead of the reached step is fine: the flow picks it up when it gets there.
	added, err := svc.Steps.Create(db, StepInput{Name: "Later", Order: 25, Department: "X"})
	require.NoError(t, err)
	st, err := svc.Workflow.State(db, s.ID)
	require.NoError(t, err)
	next, err := svc.Workflow.NextStep(db, st.CurrentStep)
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, added.ID, next.ID)
}

func TestWorkflow_DecideAsRequiresCurrentApprover(t *testing.T) {
	db, svc, _, s, steps := newWorkflowFixture(t)
	ctx := context.Background()

	flow, err := svc.Workflow.Start(ctx, db, s.ID, *approver("ana"), "")
	require.NoError(t, err)
	d, err := svc.Workflow.DecideAs(ctx, db, flow.ID, *flow.ApproverID, true)
	require.NoError(t, err)
	require.NotNil(t, d.Next)

	bo, err := svc.Workflow.AssignResponsible(ctx, db, flow.ID, steps[0].ID, *approver("bo"), "")
	require.NoError(t, err)
	boID := *bo.ApproverID
	cy, err := svc.Workflow.AssignResponsible(ctx, db, flow.ID, steps[0].ID, *approver("cy"), "")
	require.NoError(t, err)
	require.Equal(t, bo.ID, cy.ID)

	_, err = svc.Workflow.DecideAs(ctx, db, bo.ID, boID, true)
	assert.ErrorIs(t, err, ErrApproverReplaced)
	assert.ErrorIs(t, err, ErrConflict)

	var stored models.ApprovalFlow
	require.NoError(t, db.First(&stored, bo.ID).Error)
	assert.False(t, stored.Decided())

	d, err = svc.Workflow.DecideAs(ctx, db, cy.ID, *cy.ApproverID, false)
	require.NoError(t, err)
	assert.True(t, d.Flow.Rejected())
}

func TestWorkflow_RecordGuardsApproverSwap(t *testing.T) {
	db, svc, _, s, _ := newWorkflowFixture(t)
	ctx := context.Background()

	flow, err := svc.Workflow.Start(ctx, db, s.ID, *approver("ana"), "")
	require.NoError(t, err)
	anaID := *flow.ApproverID

	// The row was read with Ana as approver, then reassigned before the update ran.
	loaded, err := svc.Workflow.Flow(db, flow.ID)
	require.NoError(t, err)
	other, err := svc.Workflow.UpsertApprover(db, *approver("bo"))
	require.NoError(t, err)
	require.NoError(t, db.Model(&models.ApprovalFlow{}).Where("id = ?", flow.ID).Update("approver_id", other.ID).Error)

	_, err = svc.Workflow.record(ctx, db, loaded, true, "", &anaID)
	assert.ErrorIs(t, err, ErrApproverReplaced)

	var stored models.ApprovalFlow
	require.NoError(t, db.First(&stored, flow.ID).Error)
	assert.Nil(t, stored.ApprovedAt)
	assert.Equal(t, other.ID, *stored.ApproverID)
}

func TestWorkflow_NotifiesOnlyAfterCommit(t *testing.T) {
	db, svc, n, s, steps := newWorkflowFixture(t)
	ctx := context.Background()

	var flowID uint
	err := database.Transaction(ctx, db, func(ctx context.Context, tx *gorm.DB) error {
		flow, err := svc.Workflow.Start(ctx, tx, s.ID, *approver("a"), "")
		if err != nil {
			return err
		}
		flowID = flow.ID
		assert.Empty(t, n.flows, "nothing is sent before commit")
		return nil
	})
	require.NoError(t, err)
	require.Len(t, n.flows, 1)

	_, err = svc.Workflow.Decide(ctx, db, flowID, true, nil, "")
	require.NoError(t, err)

	rollback := errors.New("rolled back")
	err = database.Transaction(ctx, db, func(ctx context.Context, tx *gorm.DB) error {
		if _, err := svc.Workflow.AssignResponsible(ctx, tx, flowID, steps[0].ID, *approver("b"), ""); err != nil {
			return err
		}
		return rollback
	})
	assert.ErrorIs(t, err, rollback)
	assert.Len(t, n.flows, 1, "a rolled back assignment mails nobody")

	var assigned int64
	require.NoError(t, db.Model(&models.ApprovalFlow{}).Where("approver_id IS NOT NULL AND id <> ?", flowID).Count(&assigned).Error)
	assert.Zero(t, assigned)
}

func TestWorkflow_StateWithoutFlow(t *testing.T) {
	db, svc, _, s, _ := newWorkflowFixture(t)
	_, err := svc.Workflow.State(db, s.ID)
	assert.ErrorIs(t, err, ErrFlowNotFound)
}

func TestUpsertApprover_FirstNameWins(t *testing.T) {
	db := newTestDB(t)
	w := NewWorkflow(nil)

	a, err := w.UpsertApprover(db, ApproverInput{Name: "Ana", Email: "ANA@acme.test "})
	require.NoError(t, err)
	b, err := w.UpsertApprover(db, ApproverInput{Name: "Someone Else", Email: "ana@acme.test"})
	require.NoError(t, err)

	assert.Equal(t, a.ID, b.ID)
	assert.Equal(t, "Ana", b.Name)
	assert.Equal(t, "ana@acme.test", b.Email)

	_, err = w.UpsertApprover(db, ApproverInput{Name: "x"})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestSteps_Catalog(t *testing.T) {
	db, svc, _, s, steps := newWorkflowFixture(t)

	_, err := svc.Steps.Create(db, StepInput{Name: "Dup", Order: 2, Department: "X"})
	assert.ErrorIs(t, err, ErrStepOrderTaken)

	extra, err := svc.Steps.Create(db, StepInput{Name: "Legal review", Order: 4, Department: "Legal"})
	require.NoError(t, err)
	list, err := svc.Steps.List(db)
	require.NoError(t, err)
	require.Len(t, list, 4)
	assert.Equal(t, extra.ID, list[3].ID)

	_, err = svc.Workflow.Start(context.Background(), db, s.ID, *approver("a"), "")
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Steps.Delete(db, steps[0].ID), ErrStepInUse)
	_, err = svc.Steps.Update(db, steps[0].ID, StepInput{Name: "Renamed", Order: 1, Department: "Admin"})
	assert.ErrorIs(t, err, ErrStepInUse)

	updated, err := svc.Steps.Update(db, extra.ID, StepInput{Name: "Legal", Order: 5, Department: "Legal"})
	require.NoError(t, err)
	assert.Equal(t, 5, updated.Order)
	require.NoError(t, svc.Steps.Delete(db, extra.ID))
}
