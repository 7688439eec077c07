package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"supplier-compliance-backend/database"
	"supplier-compliance-backend/logger"
	"supplier-compliance-backend/metrics"
	"supplier-compliance-backend/models"
)

var hundred = decimal.NewFromInt(100)

type CriterionInput struct {
	Name        string          `json:"name" validate:"required,max=100"`
	Description string          `json:"description" validate:"omitempty,max=2000"`
	Weight      decimal.Decimal `json:"weight"`
	Order       int             `json:"order" validate:"gte=0"`
}

type ScoreInput struct {
	CriterionID uint            `json:"criterion_id" validate:"required,gt=0"`
	Score       decimal.Decimal `json:"score"`
	Comments    string          `json:"comments" validate:"omitempty,max=2000"`
}

type EvaluationInput struct {
	PeriodID       uint         `json:"period_id" validate:"required,gt=0"`
	EvaluatorName  string       `json:"evaluator_name" validate:"required,max=255"`
	EvaluationDate *time.Time   `json:"evaluation_date"`
	Comments       string       `json:"comments" validate:"omitempty,max=4000"`
	Scores         []ScoreInput `json:"scores" validate:"required,min=1,dive"`
}

// Evaluations scores suppliers once per four-month period. Recording an evaluation re-derives
// the supplier's situation, since an overdue evaluation keeps an otherwise ready supplier pending.
type Evaluations struct {
	bus *Bus
	now func() time.Time
}

func NewEvaluations(bus *Bus) *Evaluations {
	return &Evaluations{bus: bus, now: time.Now}
}

func (e *Evaluations) Criteria(db *gorm.DB) ([]models.EvaluationCriterion, error) {
	var out []models.EvaluationCriterion
	if err := db.Order("criterion_order ASC").Order("id ASC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list evaluation criteria: %w", err)
	}
	return out, nil
}

func (e *Evaluations) CreateCriterion(db *gorm.DB, in CriterionInput) (*models.EvaluationCriterion, error) {
	if in.Weight.IsNegative() || in.Weight.GreaterThan(hundred) {
		return nil, validationError("weight", "weight must be between 0 and 100")
	}
	row := models.EvaluationCriterion{
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
		Weight:      in.Weight.Round(2),
		Order:       in.Order,
	}
	res := db.Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "name"}}, DoNothing: true}).Create(&row)
	if res.Error != nil {
		return nil, fmt.Errorf("create evaluation criterion: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrCriterionExists
	}
	return &row, nil
}

// Periods lists the periods of year, or every period when year is 0. Newest year first.
func (e *Evaluations) Periods(db *gorm.DB, year int) ([]models.EvaluationPeriod, error) {
	q := db.Order("year DESC").Order("period_number ASC")
	if year != 0 {
		q = q.Where("year = ?", year)
	}
	var out []models.EvaluationPeriod
	if err := q.Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list evaluation periods: %w", err)
	}
	return out, nil
}

// OpenYear creates the three periods of year. Existing periods are kept.
func (e *Evaluations) OpenYear(db *gorm.DB, year int) ([]models.EvaluationPeriod, error) {
	if year < 2000 || year > 9999 {
		return nil, validationError("year", "year out of range")
	}
	return database.EnsurePeriods(db, year)
}

// CurrentPeriod returns the period containing today, opening the current year when it has no
// periods yet.
func (e *Evaluations) CurrentPeriod(db *gorm.DB) (*models.EvaluationPeriod, error) {
	now := e.now().UTC()
	periods, err := database.EnsurePeriods(db, now.Year())
	if err != nil {
		return nil, err
	}
	for i := range periods {
		if periods[i].Contains(now) {
			return &periods[i], nil
		}
	}
	return nil, ErrPeriodNotFound
}

// Record stores a supplier's evaluation for one period with its criterion scores and final score.
func (e *Evaluations) Record(ctx context.Context, db *gorm.DB, supplierID uint, in EvaluationInput) (*models.SupplierEvaluation, error) {
	if err := supplierExists(db, supplierID); err != nil {
		return nil, err
	}
	var period models.EvaluationPeriod
	if err := db.First(&period, in.PeriodID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPeriodNotFound
		}
		return nil, fmt.Errorf("load evaluation period: %w", err)
	}
	scores, err := e.scores(db, in.Scores)
	if err != nil {
		return nil, err
	}

	date := e.now().UTC()
	if in.EvaluationDate != nil {
		date = in.EvaluationDate.UTC()
	}
	ev := models.SupplierEvaluation{
		SupplierID:     supplierID,
		PeriodID:       period.ID,
		EvaluatorName:  strings.TrimSpace(in.EvaluatorName),
		EvaluationDate: date,
		Comments:       strings.TrimSpace(in.Comments),
		FinalScore:     models.WeightedScore(scores),
	}
	res := db.Omit(clause.Associations).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "supplier_id"}, {Name: "period_id"}}, DoNothing: true}).
		Create(&ev)
	if res.Error != nil {
		return nil, fmt.Errorf("create supplier evaluation: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrEvaluationExists
	}
	for i := range scores {
		scores[i].EvaluationID = ev.ID
		if err := db.Omit(clause.Associations).Create(&scores[i]).Error; err != nil {
			return nil, fmt.Errorf("create criterion score: %w", err)
		}
	}
	ev.Period = &period
	ev.Scores = scores
	metrics.SupplierEvaluations.Inc()

	logger.FromContext(ctx).Info("supplier evaluated",
		zap.Uint("supplier_id", supplierID),
		zap.String("period", period.Name),
		zap.Stringer("final_score", ev.FinalScore),
	)
	if err := e.bus.Publish(ctx, db, EvaluationChanged{Supplier: supplierID}); err != nil {
		return nil, err
	}
	return &ev, nil
}

// scores checks the inputs and loads their criteria for weighting.
func (e *Evaluations) scores(db *gorm.DB, in []ScoreInput) ([]models.CriterionScore, error) {
	if len(in) == 0 {
		return nil, validationError("scores", "at least one criterion score is required")
	}
	seen := make(map[uint]bool, len(in))
	out := make([]models.CriterionScore, 0, len(in))
	for i, s := range in {
		field := fmt.Sprintf("scores[%d]", i)
		if seen[s.CriterionID] {
			return nil, validationError(field+".criterion_id", "criterion scored twice")
		}
		seen[s.CriterionID] = true
		if s.Score.IsNegative() || s.Score.GreaterThan(hundred) {
			return nil, validationError(field+".score", "score must be between 0 and 100")
		}
		var c models.EvaluationCriterion
		if err := db.First(&c, s.CriterionID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, &Error{Kind: KindNotFound, Field: field + ".criterion_id", Message: "evaluation criterion not found"}
			}
			return nil, fmt.Errorf("load evaluation criterion: %w", err)
		}
		out = append(out, models.CriterionScore{
			CriterionID: c.ID,
			Criterion:   &c,
			Score:       s.Score.Round(2),
			Comments:    strings.TrimSpace(s.Comments),
		})
	}
	return out, nil
}

// ForSupplier lists a supplier's evaluations, most recent first.
func (e *Evaluations) ForSupplier(db *gorm.DB, supplierID uint) ([]models.SupplierEvaluation, error) {
	if err := supplierExists(db, supplierID); err != nil {
		return nil, err
	}
	var out []models.SupplierEvaluation
	err := db.Preload("Period").Preload("Scores.Criterion").
		Where("supplier_id = ?", supplierID).
		Order("evaluation_date DESC").Order("id DESC").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("list supplier evaluations: %w", err)
	}
	return out, nil
}

// Sweep re-derives every supplier's situation against the evaluation calendar. Run it when a
// period closes; nothing else moves a supplier into PENDING/evaluation as time passes.
func (e *Evaluations) Sweep(ctx context.Context, db *gorm.DB) (int, error) {
	var ids []uint
	if err := db.Model(&models.Supplier{}).Order("id").Pluck("id", &ids).Error; err != nil {
		return 0, fmt.Errorf("list suppliers: %w", err)
	}
	for _, id := range ids {
		if err := e.bus.Publish(ctx, db, EvaluationChanged{Supplier: id}); err != nil {
			return 0, fmt.Errorf("supplier %d: %w", id, err)
		}
	}
	return len(ids), nil
}
