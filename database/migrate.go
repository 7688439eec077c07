package database

import (
	"fmt"

	"gorm.io/gorm"

	"supplier-compliance-backend/models"
)

// Migrate applies (idempotent) schema migrations:
// - AutoMigrate (tables/columns/index tags)
// - partial unique index: one open approval flow per supplier
// - Postgres CHECK constraints on step order and decision timestamps
func Migrate(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.AutoMigrate(
			&models.User{},
			&models.IdempotencyKey{},
			&models.Lookup{},
			&models.Address{},
			&models.Contact{},
			&models.PaymentDetails{},
			&models.OrganizationalDetails{},
			&models.FiscalDetails{},
			&models.CompanyInformation{},
			&models.Contract{},
			&models.Supplier{},
			&models.SituationStatus{},
			&models.SupplierSituation{},
			&models.ResponsibilityMatrix{},
			&models.AttachmentType{},
			&models.SupplierAttachment{},
			&models.ApprovalStep{},
			&models.Approver{},
			&models.ApprovalFlow{},
			&models.NotificationLog{},
			&models.EvaluationCriterion{},
			&models.EvaluationPeriod{},
			&models.SupplierEvaluation{},
			&models.CriterionScore{},
		); err != nil {
			return fmt.Errorf("automigrate failed: %w", err)
		}

		// --- Indexes that struct tags cannot express (idempotent) ---
		indexes := []string{
			`CREATE UNIQUE INDEX IF NOT EXISTS idx_approval_flows_open ON approval_flows (supplier_id) WHERE approved_at IS NULL`,
			`CREATE INDEX IF NOT EXISTS idx_approval_flows_step ON approval_flows (step_id)`,
		}
		for _, stmt := range indexes {
			if err := tx.Exec(stmt).Error; err != nil {
				return fmt.Errorf("index migration failed on: %s - %w", stmt, err)
			}
		}

		if tx.Dialector.Name() != "postgres" {
			return nil
		}

		// --- Basic CHECK constraints (idempotent, Postgres only) ---
		checks := []string{
			// Step order is positive
			`DO $$
			BEGIN
				IF NOT EXISTS (
					SELECT 1 FROM pg_constraint
					WHERE conrelid = 'approval_steps'::regclass
					  AND conname  = 'chk_approval_steps_order_pos'
				) THEN
					ALTER TABLE approval_steps
					ADD CONSTRAINT chk_approval_steps_order_pos
					CHECK (step_order > 0);
				END IF;
			END $$;`,
			// A flow row is approved or rejected, never both
			`DO $$
			BEGIN
				IF NOT EXISTS (
					SELECT 1 FROM pg_constraint
					WHERE conrelid = 'approval_flows'::regclass
					  AND conname  = 'chk_approval_flows_single_decision'
				) THEN
					ALTER TABLE approval_flows
					ADD CONSTRAINT chk_approval_flows_single_decision
					CHECK (approved_at IS NULL OR reproved_at IS NULL);
				END IF;
			END $$;`,
			// Only an approved row can complete the flow
			`DO $$
			BEGIN
				IF NOT EXISTS (
					SELECT 1 FROM pg_constraint
					WHERE conrelid = 'approval_flows'::regclass
					  AND conname  = 'chk_approval_flows_completed_approved'
				) THEN
					ALTER TABLE approval_flows
					ADD CONSTRAINT chk_approval_flows_completed_approved
					CHECK (completed_at IS NULL OR approved_at IS NOT NULL);
				END IF;
			END $$;`,
			// Scores and weights are percentages
			`DO $$
			BEGIN
				IF NOT EXISTS (
					SELECT 1 FROM pg_constraint
					WHERE conrelid = 'criterion_scores'::regclass
					  AND conname  = 'chk_criterion_scores_range'
				) THEN
					ALTER TABLE criterion_scores
					ADD CONSTRAINT chk_criterion_scores_range
					CHECK (score >= 0 AND score <= 100);
				END IF;
			END $$;`,
			`DO $$
			BEGIN
				IF NOT EXISTS (
					SELECT 1 FROM pg_constraint
					WHERE conrelid = 'evaluation_criteria'::regclass
					  AND conname  = 'chk_evaluation_criteria_weight'
				) THEN
					ALTER TABLE evaluation_criteria
					ADD CONSTRAINT chk_evaluation_criteria_weight
					CHECK (weight >= 0 AND weight <= 100);
				END IF;
			END $$;`,
			// Contract values are non-negative
			`DO $$
			BEGIN
				IF NOT EXISTS (
					SELECT 1 FROM pg_constraint
					WHERE conrelid = 'payment_details'::regclass
					  AND conname  = 'chk_payment_details_values_nonneg'
				) THEN
					ALTER TABLE payment_details
					ADD CONSTRAINT chk_payment_details_values_nonneg
					CHECK (contract_total_value >= 0 AND contract_monthly_value >= 0);
				END IF;
			END $$;`,
		}
		for _, stmt := range checks {
			if err := tx.Exec(stmt).Error; err != nil {
				return fmt.Errorf("check constraint migration failed: %w", err)
			}
		}
		return nil
	})
}
