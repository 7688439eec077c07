package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// EvaluationCriterion is one weighted aspect suppliers are scored on.
type EvaluationCriterion struct {
	ID          uint            `json:"id" gorm:"primaryKey"`
	Name        string          `json:"name" gorm:"size:100;not null;uniqueIndex"`
	Description string          `json:"description"`
	Weight      decimal.Decimal `json:"weight" gorm:"type:numeric(5,2);not null"`
	Order       int             `json:"order" gorm:"column:criterion_order;not null;default:0"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func (EvaluationCriterion) TableName() string { return "evaluation_criteria" }

// PeriodsPerYear is the number of four-month evaluation periods in a year.
const PeriodsPerYear = 3

// EvaluationPeriod is one four-month window. StartDate and EndDate are whole days in UTC;
// EndDate is the last day inside the period.
type EvaluationPeriod struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"size:100;not null"`
	StartDate time.Time `json:"start_date" gorm:"not null"`
	EndDate   time.Time `json:"end_date" gorm:"not null"`
	Year      int       `json:"year" gorm:"not null;uniqueIndex:idx_evaluation_periods_year_number,priority:1"`
	Number    int       `json:"number" gorm:"column:period_number;not null;uniqueIndex:idx_evaluation_periods_year_number,priority:2"`
	CreatedAt time.Time `json:"created_at"`
}

func (EvaluationPeriod) TableName() string { return "evaluation_periods" }

// Contains reports whether t falls on a day of the period.
func (p EvaluationPeriod) Contains(t time.Time) bool {
	t = t.UTC()
	return !t.Before(p.StartDate) && t.Before(p.ClosesAt())
}

// EndedBy reports whether the period's last day is over at t.
func (p EvaluationPeriod) EndedBy(t time.Time) bool {
	return !t.UTC().Before(p.ClosesAt())
}

// ClosesAt is the first instant after the period.
func (p EvaluationPeriod) ClosesAt() time.Time { return p.EndDate.AddDate(0, 0, 1) }

var periodNames = [PeriodsPerYear]string{"First", "Second", "Third"}

// PeriodsForYear returns the three periods of year: January-April, May-August, September-December.
func PeriodsForYear(year int) []EvaluationPeriod {
	out := make([]EvaluationPeriod, 0, PeriodsPerYear)
	for i := 0; i < PeriodsPerYear; i++ {
		start := time.Date(year, time.Month(1+4*i), 1, 0, 0, 0, 0, time.UTC)
		out = append(out, EvaluationPeriod{
			Name:      fmt.Sprintf("%s four-month period %d", periodNames[i], year),
			StartDate: start,
			EndDate:   start.AddDate(0, 4, -1),
			Year:      year,
			Number:    i + 1,
		})
	}
	return out
}

// SupplierEvaluation is the assessment of one supplier in one period.
type SupplierEvaluation struct {
	ID             uint              `json:"id" gorm:"primaryKey"`
	SupplierID     uint              `json:"supplier_id" gorm:"not null;uniqueIndex:idx_supplier_evaluations_supplier_period,priority:1"`
	PeriodID       uint              `json:"period_id" gorm:"not null;uniqueIndex:idx_supplier_evaluations_supplier_period,priority:2"`
	Period         *EvaluationPeriod `json:"period,omitempty" gorm:"foreignKey:PeriodID;constraint:OnUpdate:RESTRICT,OnDelete:RESTRICT"`
	EvaluatorName  string            `json:"evaluator_name" gorm:"size:255;not null"`
	EvaluationDate time.Time         `json:"evaluation_date" gorm:"not null"`
	Comments       string            `json:"comments"`
	FinalScore     *decimal.Decimal  `json:"final_score" gorm:"type:numeric(5,2)"`
	Scores         []CriterionScore  `json:"scores,omitempty" gorm:"foreignKey:EvaluationID"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

func (SupplierEvaluation) TableName() string { return "supplier_evaluations" }

// CriterionScore is the 0-100 score given to one criterion within an evaluation.
type CriterionScore struct {
	ID           uint                 `json:"id" gorm:"primaryKey"`
	EvaluationID uint                 `json:"evaluation_id" gorm:"not null;uniqueIndex:idx_criterion_scores_evaluation_criterion,priority:1"`
	CriterionID  uint                 `json:"criterion_id" gorm:"not null;uniqueIndex:idx_criterion_scores_evaluation_criterion,priority:2"`
	Criterion    *EvaluationCriterion `json:"criterion,omitempty" gorm:"foreignKey:CriterionID;constraint:OnUpdate:RESTRICT,OnDelete:RESTRICT"`
	Score        decimal.Decimal      `json:"score" gorm:"type:numeric(5,2);not null"`
	Comments     string               `json:"comments"`
	CreatedAt    time.Time            `json:"created_at"`
}

func (CriterionScore) TableName() string { return "criterion_scores" }

// WeightedScore is the weight-averaged score rounded to two places. It is nil without scores
// and zero when the criteria carry no weight. Every score must have its Criterion loaded.
func WeightedScore(scores []CriterionScore) *decimal.Decimal {
	if len(scores) == 0 {
		return nil
	}
	total := decimal.Zero
	sum := decimal.Zero
	for _, s := range scores {
		total = total.Add(s.Criterion.Weight)
		sum = sum.Add(s.Score.Mul(s.Criterion.Weight))
	}
	if !total.IsPositive() {
		zero := decimal.Zero
		return &zero
	}
	out := sum.DivRound(total, 2)
	return &out
}
