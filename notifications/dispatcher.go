package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"supplier-compliance-backend/logger"
	"supplier-compliance-backend/metrics"
	"supplier-compliance-backend/models"
)

// Dispatcher emails the approver of a flow row with signed accept/reject links.
// Delivery is best effort: failures are logged and recorded, never returned. It runs after the
// request committed, so db is the shared connection and the log row is its own short write.
type Dispatcher struct {
	mailer Mailer
	tokens *Tokens
	appURL string
	now    func() time.Time
}

func NewDispatcher(mailer Mailer, tokens *Tokens, appURL string) *Dispatcher {
	return &Dispatcher{mailer: mailer, tokens: tokens, appURL: appURL, now: time.Now}
}

func (d *Dispatcher) NotifyApprover(ctx context.Context, db *gorm.DB, flow *models.ApprovalFlow) {
	log := logger.FromContext(ctx).With(zap.Uint("flow_id", flow.ID))

	msg, payload, err := d.compose(db, flow)
	if err != nil {
		metrics.RecordNotification(err)
		log.Warn("approval notification not composed", zap.Error(err))
		return
	}

	sendErr := d.mailer.Send(ctx, msg)
	metrics.RecordNotification(sendErr)

	entry := models.NotificationLog{
		FlowID:    flow.ID,
		Recipient: msg.To,
		Subject:   msg.Subject,
		Payload:   payload,
	}
	if sendErr != nil {
		entry.Error = sendErr.Error()
		log.Warn("approval notification failed", zap.String("to", msg.To), zap.Error(sendErr))
	} else {
		sent := d.now().UTC()
		entry.SentAt = &sent
		log.Info("approval notification sent", zap.String("to", msg.To))
	}
	if err := db.Create(&entry).Error; err != nil {
		log.Warn("notification log not stored", zap.Error(err))
	}
}

func (d *Dispatcher) compose(db *gorm.DB, flow *models.ApprovalFlow) (Message, datatypes.JSON, error) {
	if flow.Approver == nil && flow.ApproverID != nil {
		var a models.Approver
		if err := db.First(&a, *flow.ApproverID).Error; err != nil {
			return Message{}, nil, fmt.Errorf("load approver: %w", err)
		}
		flow.Approver = &a
	}
	if flow.Approver == nil || flow.ApproverID == nil {
		return Message{}, nil, fmt.Errorf("flow %d has no approver", flow.ID)
	}
	if flow.Step == nil {
		var st models.ApprovalStep
		if err := db.First(&st, flow.StepID).Error; err != nil {
			return Message{}, nil, fmt.Errorf("load step: %w", err)
		}
		flow.Step = &st
	}
	var sup models.Supplier
	if err := db.Select("id", "legal_name", "trade_name").First(&sup, flow.SupplierID).Error; err != nil {
		return Message{}, nil, fmt.Errorf("load supplier: %w", err)
	}
	name := sup.TradeName
	if name == "" {
		name = sup.LegalName
	}

	accept, err := d.link(flow.ID, *flow.ApproverID, ActionAccept)
	if err != nil {
		return Message{}, nil, err
	}
	reject, err := d.link(flow.ID, *flow.ApproverID, ActionReject)
	if err != nil {
		return Message{}, nil, err
	}
	view := approvalView{
		Supplier:     name,
		ApproverName: flow.Approver.Name,
		Step:         flow.Step.Name,
		Department:   flow.Step.Department,
		AcceptURL:    accept,
		RejectURL:    reject,
	}
	text, html, err := renderApproval(view)
	if err != nil {
		return Message{}, nil, err
	}
	payload, err := json.Marshal(map[string]any{
		"supplier_id": flow.SupplierID,
		"step_id":     flow.StepID,
		"step":        flow.Step.Name,
		"approver":    flow.Approver.Email,
	})
	if err != nil {
		return Message{}, nil, fmt.Errorf("encode payload: %w", err)
	}
	return Message{
		To:      flow.Approver.Email,
		Subject: "Supplier approval - " + name,
		HTML:    html,
		Text:    text,
	}, datatypes.JSON(payload), nil
}

func (d *Dispatcher) link(flowID, approverID uint, action Action) (string, error) {
	tok, err := d.tokens.Issue(flowID, approverID, action)
	if err != nil {
		return "", err
	}
	return d.appURL + "/api/approval/decide?token=" + url.QueryEscape(tok), nil
}
