package services

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"supplier-compliance-backend/models"
)

type StepInput struct {
	Name        string `json:"name" validate:"required,max=255"`
	Order       int    `json:"order" validate:"required,gt=0"`
	Department  string `json:"department" validate:"required,max=255"`
	IsMandatory bool   `json:"is_mandatory"`
}

// Steps manages the approval step catalog. A step is frozen once any flow row references it,
// and new orders may not land before a step some flow has already reached: that flow would
// never visit it. Steps appended after the last visited one join running flows; completed
// flows stay completed.
type Steps struct{}

func (Steps) List(db *gorm.DB) ([]models.ApprovalStep, error) {
	var steps []models.ApprovalStep
	if err := db.Order("step_order ASC").Find(&steps).Error; err != nil {
		return nil, fmt.Errorf("list approval steps: %w", err)
	}
	return steps, nil
}

func (Steps) Create(db *gorm.DB, in StepInput) (*models.ApprovalStep, error) {
	if err := orderFree(db, in.Order, 0); err != nil {
		return nil, err
	}
	if err := orderAfterVisited(db, in.Order); err != nil {
		return nil, err
	}
	step := models.ApprovalStep{
		Name:        strings.TrimSpace(in.Name),
		Order:       in.Order,
		Department:  strings.TrimSpace(in.Department),
		IsMandatory: in.IsMandatory,
	}
	if err := db.Create(&step).Error; err != nil {
		return nil, fmt.Errorf("create approval step: %w", err)
	}
	return &step, nil
}

func (s Steps) Update(db *gorm.DB, id uint, in StepInput) (*models.ApprovalStep, error) {
	step, err := s.get(db, id)
	if err != nil {
		return nil, err
	}
	if err := stepUnused(db, id); err != nil {
		return nil, err
	}
	if err := orderFree(db, in.Order, id); err != nil {
		return nil, err
	}
	if err := orderAfterVisited(db, in.Order); err != nil {
		return nil, err
	}
	step.Name = strings.TrimSpace(in.Name)
	step.Order = in.Order
	step.Department = strings.TrimSpace(in.Department)
	step.IsMandatory = in.IsMandatory
	if err := db.Save(step).Error; err != nil {
		return nil, fmt.Errorf("update approval step: %w", err)
	}
	return step, nil
}

func (s Steps) Delete(db *gorm.DB, id uint) error {
	step, err := s.get(db, id)
	if err != nil {
		return err
	}
	if err := stepUnused(db, id); err != nil {
		return err
	}
	if err := db.Delete(step).Error; err != nil {
		return fmt.Errorf("delete approval step: %w", err)
	}
	return nil
}

func (Steps) get(db *gorm.DB, id uint) (*models.ApprovalStep, error) {
	var step models.ApprovalStep
	err := db.First(&step, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrStepNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load approval step: %w", err)
	}
	return &step, nil
}

func stepUnused(db *gorm.DB, id uint) error {
	var n int64
	if err := db.Model(&models.ApprovalFlow{}).Where("step_id = ?", id).Count(&n).Error; err != nil {
		return fmt.Errorf("check step usage: %w", err)
	}
	if n > 0 {
		return ErrStepInUse
	}
	return nil
}

// orderFree rejects an order already used by a step other than self.
func orderFree(db *gorm.DB, order int, self uint) error {
	q := db.Model(&models.ApprovalStep{}).Where("step_order = ?", order)
	if self != 0 {
		q = q.Where("id <> ?", self)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return fmt.Errorf("check step order: %w", err)
	}
	if n > 0 {
		return ErrStepOrderTaken
	}
	return nil
}

func orderAfterVisited(db *gorm.DB, order int) error {
	var reached int
	err := db.Model(&models.ApprovalStep{}).
		Joins("JOIN approval_flows ON approval_flows.step_id = approval_steps.id").
		Select("COALESCE(MAX(approval_steps.step_order), 0)").
		Scan(&reached).Error
	if err != nil {
		return fmt.Errorf("check visited steps: %w", err)
	}
	if order < reached {
		return ErrStepBeforeVisited
	}
	return nil
}
