package notifications

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"supplier-compliance-backend/database"
	"supplier-compliance-backend/models"
)

type mockMailer struct {
	mock.Mock
}

func (m *mockMailer) Send(ctx context.Context, msg Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func dispatcherFixture(t *testing.T) (*gorm.DB, *models.ApprovalFlow) {
	t.Helper()
	db, err := database.OpenSQLite(":memory:", nil)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	sup := models.Supplier{LegalName: "Acme Ltda", TaxID: "1", TradeName: "Acme"}
	require.NoError(t, db.Create(&sup).Error)
	step := models.ApprovalStep{Name: "Risk assessment", Order: 1, Department: "Integrity"}
	require.NoError(t, db.Create(&step).Error)
	a := models.Approver{Name: "Ana", Email: "ana@acme.test"}
	require.NoError(t, db.Create(&a).Error)
	flow := models.ApprovalFlow{SupplierID: sup.ID, StepID: step.ID, ApproverID: &a.ID}
	require.NoError(t, db.Create(&flow).Error)
	return db, &flow
}

func TestDispatcher_SendsSignedLinks(t *testing.T) {
	db, flow := dispatcherFixture(t)
	tokens := NewTokens("secret", time.Hour)
	m := &mockMailer{}
	var sent Message
	m.On("Send", mock.Anything, mock.MatchedBy(func(msg Message) bool { return msg.To == "ana@acme.test" })).
		Run(func(args mock.Arguments) { sent = args.Get(1).(Message) }).
		Return(nil).Once()

	d := NewDispatcher(m, tokens, "https://compliance.test")
	d.NotifyApprover(context.Background(), db, flow)
	m.AssertExpectations(t)

	assert.Equal(t, "Supplier approval - Acme", sent.Subject)
	assert.Contains(t, sent.Text, "Risk assessment")
	assert.Contains(t, sent.HTML, "Integrity")

	// Both links decode back to this flow and approver with their own action.
	var actions []Action
	for _, line := range strings.Split(sent.Text, "\n") {
		i := strings.Index(line, "https://compliance.test/api/approval/decide?token=")
		if i < 0 {
			continue
		}
		u, err := url.Parse(strings.TrimSpace(line[i:]))
		require.NoError(t, err)
		claims, err := tokens.Parse(u.Query().Get("token"))
		require.NoError(t, err)
		assert.Equal(t, flow.ID, claims.FlowID)
		assert.Equal(t, *flow.ApproverID, claims.ApproverID)
		actions = append(actions, claims.Action)
	}
	assert.ElementsMatch(t, []Action{ActionAccept, ActionReject}, actions)

	var logs []models.NotificationLog
	require.NoError(t, db.Find(&logs).Error)
	require.Len(t, logs, 1)
	assert.Equal(t, "ana@acme.test", logs[0].Recipient)
	assert.NotNil(t, logs[0].SentAt)
	assert.Empty(t, logs[0].Error)
	assert.Contains(t, string(logs[0].Payload), `"approver":"ana@acme.test"`)
}

func TestDispatcher_FailureIsRecordedNotReturned(t *testing.T) {
	db, flow := dispatcherFixture(t)
	m := &mockMailer{}
	m.On("Send", mock.Anything, mock.Anything).Return(errors.New("relay down")).Once()

	NewDispatcher(m, NewTokens("secret", time.Hour), "http://localhost").NotifyApprover(context.Background(), db, flow)
	m.AssertExpectations(t)

	var entry models.NotificationLog
	require.NoError(t, db.First(&entry).Error)
	assert.Equal(t, "relay down", entry.Error)
	assert.Nil(t, entry.SentAt)
}

func TestDispatcher_SkipsFlowWithoutApprover(t *testing.T) {
	db, flow := dispatcherFixture(t)
	flow.ApproverID = nil
	m := &mockMailer{}

	NewDispatcher(m, NewTokens("secret", time.Hour), "http://localhost").NotifyApprover(context.Background(), db, flow)
	m.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)

	var n int64
	require.NoError(t, db.Model(&models.NotificationLog{}).Count(&n).Error)
	assert.Zero(t, n)
}
