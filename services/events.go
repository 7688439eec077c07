package services

import (
	"context"

	"gorm.io/gorm"
)

// Event is a change to one of the aggregates the supplier situation is derived from.
type Event interface {
	SupplierID() uint
	Name() string
}

// SupplierChanged is emitted after the supplier row or one of its registration sub-records is written.
type SupplierChanged struct{ Supplier uint }

// MatrixChanged is emitted after the supplier's responsibility matrix is written.
type MatrixChanged struct{ Supplier uint }

// AttachmentChanged is emitted after an attachment is added, replaced or removed.
type AttachmentChanged struct{ Supplier uint }

// EvaluationChanged is emitted after an evaluation is recorded, and for every supplier when the
// evaluation calendar is swept.
type EvaluationChanged struct{ Supplier uint }

func (e SupplierChanged) SupplierID() uint   { return e.Supplier }
func (e MatrixChanged) SupplierID() uint     { return e.Supplier }
func (e AttachmentChanged) SupplierID() uint { return e.Supplier }
func (e EvaluationChanged) SupplierID() uint { return e.Supplier }

func (SupplierChanged) Name() string   { return "supplier_changed" }
func (MatrixChanged) Name() string     { return "matrix_changed" }
func (AttachmentChanged) Name() string { return "attachment_changed" }
func (EvaluationChanged) Name() string { return "evaluation_changed" }

// Handler reacts to an event inside the transaction that produced it.
type Handler interface {
	Handle(ctx context.Context, db *gorm.DB, ev Event) error
}

type HandlerFunc func(ctx context.Context, db *gorm.DB, ev Event) error

func (f HandlerFunc) Handle(ctx context.Context, db *gorm.DB, ev Event) error { return f(ctx, db, ev) }

// Bus dispatches events synchronously, in subscription order. The first handler error aborts
// the dispatch so the surrounding transaction can roll back.
type Bus struct {
	handlers []Handler
}

func NewBus() *Bus { return &Bus{} }

// Subscribe must be called during wiring, before the bus is used concurrently.
func (b *Bus) Subscribe(h Handler) {
	b.handlers = append(b.handlers, h)
}

func (b *Bus) Publish(ctx context.Context, db *gorm.DB, ev Event) error {
	for _, h := range b.handlers {
		if err := h.Handle(ctx, db, ev); err != nil {
			return err
		}
	}
	return nil
}
