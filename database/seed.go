package database

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"supplier-compliance-backend/models"
)

// DefaultSteps is the organization's approval chain.
var DefaultSteps = []models.ApprovalStep{
	{Name: "Contract request", Order: 1, Department: "Requesting Area", IsMandatory: true},
	{Name: "Document analysis", Order: 2, Department: "Administrative", IsMandatory: true},
	{Name: "Risk assessment", Order: 3, Department: "Integrity", IsMandatory: true},
	{Name: "Contract draft", Order: 4, Department: "Legal", IsMandatory: true},
	{Name: "Compliance validation", Order: 5, Department: "Integrity", IsMandatory: true},
	{Name: "Financial review", Order: 6, Department: "Financial", IsMandatory: true},
	{Name: "Final approval", Order: 7, Department: "Board", IsMandatory: true},
	{Name: "Contract signing", Order: 8, Department: "Legal", IsMandatory: false},
}

// DefaultCriteria are the evaluation criteria; weights add up to 100.
var DefaultCriteria = []models.EvaluationCriterion{
	{Name: "Quality", Description: "Conformity of goods and services with the contract", Weight: decimal.NewFromInt(30), Order: 1},
	{Name: "Delivery", Description: "Deadlines and completeness of deliveries", Weight: decimal.NewFromInt(25), Order: 2},
	{Name: "Price", Description: "Adherence to agreed prices and conditions", Weight: decimal.NewFromInt(20), Order: 3},
	{Name: "Service", Description: "Responsiveness and communication", Weight: decimal.NewFromInt(15), Order: 4},
	{Name: "Compliance", Description: "Documentation, legal and integrity obligations", Weight: decimal.NewFromInt(10), Order: 5},
}

var defaultLookups = map[models.LookupKind][]string{
	models.KindClassification:         {"Goods", "Services", "Goods and services"},
	models.KindCategory:               {"Strategic", "Critical", "Routine"},
	models.KindRiskLevel:              {"Low", "Medium", "High"},
	models.KindSupplierType:           {"Legal entity", "Individual"},
	models.KindPaymentMethod:          {"Bank transfer", "Pix", "Bank slip"},
	models.KindPixType:                {"Tax id", "Email", "Phone", "Random key"},
	models.KindPayerType:              {"Private", "Public"},
	models.KindBusinessSector:         {"Industry", "Commerce", "Services"},
	models.KindTaxpayerClassification: {"Regular", "Exempt"},
	models.KindPublicEntity:           {"No", "Municipal", "State", "Federal"},
	models.KindIssWithholding:         {"Withheld", "Not withheld"},
	models.KindIssRegime:              {"Fixed", "Variable"},
	models.KindWithholdingTax:         {"Services", "Rentals", "Royalties"},
	models.KindCompanySize:            {"Micro", "Small", "Medium", "Large"},
	models.KindIcmsTaxpayer:           {"Contributor", "Non contributor", "Exempt"},
	models.KindTaxationRegime:         {"Simples Nacional", "Presumed profit", "Real profit"},
	models.KindIncomeType:             {"Operational", "Non operational"},
	models.KindTaxationMethod:         {"Cumulative", "Non cumulative"},
	models.KindCustomerType:           {"Private", "Government"},
}

// documentsByRisk lists the attachment types required per risk level; "" means no risk level.
var documentsByRisk = map[string][]string{
	"":       {"Articles of incorporation"},
	"Low":    {"Articles of incorporation (low risk)", "Tax clearance certificate (low risk)"},
	"Medium": {"Articles of incorporation (medium risk)", "Tax clearance certificate (medium risk)", "Labor clearance certificate (medium risk)"},
	"High": {
		"Articles of incorporation (high risk)",
		"Tax clearance certificate (high risk)",
		"Labor clearance certificate (high risk)",
		"Integrity due diligence questionnaire",
	},
}

// Seed inserts the catalogs the service needs. It can be run repeatedly.
func Seed(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		statuses := []models.SituationStatus{{Name: models.SituationActive, Reason: models.ReasonNone}}
		for _, r := range models.PendencyReasons {
			statuses = append(statuses, models.SituationStatus{Name: models.SituationPending, Reason: r})
		}
		for _, s := range statuses {
			row := s
			if err := tx.Where(map[string]any{"name": s.Name, "reason": s.Reason}).FirstOrCreate(&row).Error; err != nil {
				return fmt.Errorf("seed situation status %s/%s: %w", s.Name, s.Reason, err)
			}
		}

		var steps int64
		if err := tx.Model(&models.ApprovalStep{}).Count(&steps).Error; err != nil {
			return fmt.Errorf("count approval steps: %w", err)
		}
		if steps == 0 {
			for _, s := range DefaultSteps {
				row := s
				if err := tx.Create(&row).Error; err != nil {
					return fmt.Errorf("seed approval step %q: %w", s.Name, err)
				}
			}
		}

		riskIDs := map[string]*uint{"": nil}
		for kind, names := range defaultLookups {
			for _, name := range names {
				row := models.Lookup{Kind: kind, Name: name}
				if err := tx.Where(map[string]any{"kind": kind, "name": name}).FirstOrCreate(&row).Error; err != nil {
					return fmt.Errorf("seed lookup %s/%s: %w", kind, name, err)
				}
				if kind == models.KindRiskLevel {
					id := row.ID
					riskIDs[name] = &id
				}
			}
		}

		for _, c := range DefaultCriteria {
			row := c
			if err := tx.Where(map[string]any{"name": c.Name}).Attrs(c).FirstOrCreate(&row).Error; err != nil {
				return fmt.Errorf("seed evaluation criterion %q: %w", c.Name, err)
			}
		}
		if _, err := EnsurePeriods(tx, time.Now().UTC().Year()); err != nil {
			return err
		}

		for risk, docs := range documentsByRisk {
			for _, name := range docs {
				row := models.AttachmentType{Name: name, RiskLevelID: riskIDs[risk]}
				if err := tx.Where(map[string]any{"name": name}).Attrs(models.AttachmentType{RiskLevelID: riskIDs[risk]}).FirstOrCreate(&row).Error; err != nil {
					return fmt.Errorf("seed attachment type %q: %w", name, err)
				}
			}
		}
		return nil
	})
}

// EnsurePeriods creates the evaluation periods of year that do not exist yet and returns all
// of them in order.
func EnsurePeriods(db *gorm.DB, year int) ([]models.EvaluationPeriod, error) {
	for _, p := range models.PeriodsForYear(year) {
		row := p
		err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "year"}, {Name: "period_number"}},
			DoNothing: true,
		}).Create(&row).Error
		if err != nil {
			return nil, fmt.Errorf("create evaluation period %d/%d: %w", year, p.Number, err)
		}
	}
	var out []models.EvaluationPeriod
	if err := db.Where("year = ?", year).Order("period_number ASC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("load evaluation periods %d: %w", year, err)
	}
	return out, nil
}
