package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestBus_PublishesInOrderAndStopsOnError(t *testing.T) {
	bus := NewBus()
	var seen []string
	boom := errors.New("boom")

	bus.Subscribe(HandlerFunc(func(_ context.Context, _ *gorm.DB, ev Event) error {
		seen = append(seen, "first:"+ev.Name())
		return nil
	}))
	bus.Subscribe(HandlerFunc(func(_ context.Context, _ *gorm.DB, ev Event) error {
		seen = append(seen, "second:"+ev.Name())
		if ev.SupplierID() == 2 {
			return boom
		}
		return nil
	}))
	bus.Subscribe(HandlerFunc(func(_ context.Context, _ *gorm.DB, ev Event) error {
		seen = append(seen, "third:"+ev.Name())
		return nil
	}))

	assert.NoError(t, bus.Publish(context.Background(), nil, MatrixChanged{Supplier: 1}))
	assert.Equal(t, []string{"first:matrix_changed", "second:matrix_changed", "third:matrix_changed"}, seen)

	seen = nil
	err := bus.Publish(context.Background(), nil, AttachmentChanged{Supplier: 2})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"first:attachment_changed", "second:attachment_changed"}, seen)
}

func TestErrors_KindMatching(t *testing.T) {
	assert.ErrorIs(t, ErrFlowExists, ErrConflict)
	assert.NotErrorIs(t, ErrFlowExists, ErrNotFound)
	assert.NotErrorIs(t, ErrFlowExists, ErrMatrixExists)
	assert.Equal(t, KindValidation, KindOf(validationError("name", "required")))
	assert.Equal(t, Kind(0), KindOf(errors.New("plain")))
	assert.Equal(t, "name: required", validationError("name", "required").Error())
}
