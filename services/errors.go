package services

import (
	"errors"
	"fmt"
)

// Kind classifies business errors so the HTTP layer can map them to status codes.
type Kind int

const (
	KindConflict Kind = iota + 1
	KindNotFound
	KindValidation
	KindPrecondition
)

func (k Kind) String() string {
	switch k {
	case KindConflict:
		return "conflict"
	case KindNotFound:
		return "not_found"
	case KindValidation:
		return "validation"
	case KindPrecondition:
		return "precondition"
	}
	return "unknown"
}

// Error is a user-reportable business error. Field names the offending input or activity.
type Error struct {
	Kind    Kind
	Field   string
	Message string
}

func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

// Is matches kind-only sentinels (no message) against any error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Message == "" && t.Field == "" && t.Kind == e.Kind
}

var (
	ErrConflict     = &Error{Kind: KindConflict}
	ErrNotFound     = &Error{Kind: KindNotFound}
	ErrValidation   = &Error{Kind: KindValidation}
	ErrPrecondition = &Error{Kind: KindPrecondition}
)

var (
	ErrSupplierNotFound       = &Error{Kind: KindNotFound, Message: "supplier not found"}
	ErrFlowNotFound           = &Error{Kind: KindNotFound, Message: "approval flow not found"}
	ErrStepNotFound           = &Error{Kind: KindNotFound, Message: "approval step not found"}
	ErrMatrixNotFound         = &Error{Kind: KindNotFound, Message: "responsibility matrix not found"}
	ErrLookupNotFound         = &Error{Kind: KindNotFound, Message: "lookup not found"}
	ErrAttachmentNotFound     = &Error{Kind: KindNotFound, Message: "attachment not found"}
	ErrAttachmentTypeNotFound = &Error{Kind: KindNotFound, Message: "attachment type not found"}
	ErrPeriodNotFound         = &Error{Kind: KindNotFound, Message: "evaluation period not found"}

	ErrFlowExists         = &Error{Kind: KindConflict, Message: "an approval flow already exists for this supplier"}
	ErrMatrixExists       = &Error{Kind: KindConflict, Message: "supplier already has a responsibility matrix"}
	ErrSupplierExists     = &Error{Kind: KindConflict, Message: "supplier with this legal name or tax id already exists"}
	ErrLookupInUse        = &Error{Kind: KindConflict, Message: "lookup is referenced and cannot be deleted"}
	ErrLookupExists       = &Error{Kind: KindConflict, Message: "lookup already exists"}
	ErrStepInUse          = &Error{Kind: KindConflict, Message: "approval step is referenced by a flow"}
	ErrStepOrderTaken     = &Error{Kind: KindConflict, Message: "another approval step already uses this order"}
	ErrStepAlreadyDecided = &Error{Kind: KindConflict, Message: "step already carries a decision"}
	ErrCriterionExists    = &Error{Kind: KindConflict, Message: "an evaluation criterion with this name already exists"}
	ErrEvaluationExists   = &Error{Kind: KindConflict, Message: "supplier already has an evaluation for this period"}
	ErrApproverReplaced   = &Error{Kind: KindConflict, Message: "step is assigned to another approver"}
	ErrStepBeforeVisited  = &Error{Kind: KindConflict, Message: "order precedes a step an approval flow has already reached"}

	ErrNoSteps          = &Error{Kind: KindPrecondition, Message: "no approval steps are defined"}
	ErrNoNextStep       = &Error{Kind: KindPrecondition, Message: "current step is the last one"}
	ErrStepNotApproved  = &Error{Kind: KindPrecondition, Message: "current step must be approved before assigning the next one"}
	ErrApproverRequired = &Error{Kind: KindPrecondition, Message: "an approver must be assigned before deciding"}
	ErrFlowCompleted    = &Error{Kind: KindPrecondition, Message: "approval flow is already completed"}
)

func validationError(field, msg string) error {
	return &Error{Kind: KindValidation, Field: field, Message: msg}
}

// KindOf returns the kind of err, or 0 when it is not a business error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}
