package utils

import (
	"reflect"
	"strings"

	"github.com/shopspring/decimal"
)

var decimalType = reflect.TypeOf(decimal.Decimal{})

// NormalizePtrDTO trims *string fields and rounds *decimal.Decimal fields on a pointer-to-struct DTO.
// Only non-nil pointer fields are touched; nils stay nil so GORM won't update them.
func NormalizePtrDTO(dto any) {
	v := reflect.ValueOf(dto)
	if v.Kind() != reflect.Ptr {
		return
	}
	s := v.Elem()
	if s.Kind() != reflect.Struct {
		return
	}
	for i := 0; i < s.NumField(); i++ {
		f := s.Field(i)
		if f.Kind() != reflect.Ptr || f.IsNil() {
			continue
		}
		normalizeValue(f.Elem())
	}
}

// NormalizeDTO trims string fields and rounds decimal fields on a pointer-to-struct DTO.
// Useful for create DTOs that use non-pointer fields.
func NormalizeDTO(dto any) {
	v := reflect.ValueOf(dto)
	if v.Kind() != reflect.Ptr {
		return
	}
	s := v.Elem()
	if s.Kind() != reflect.Struct {
		return
	}
	for i := 0; i < s.NumField(); i++ {
		normalizeValue(s.Field(i))
	}
}

func normalizeValue(f reflect.Value) {
	if !f.CanSet() {
		return
	}
	switch {
	case f.Type() == decimalType:
		f.Set(reflect.ValueOf(RoundMoney(f.Interface().(decimal.Decimal))))
	case f.Kind() == reflect.String:
		f.SetString(strings.TrimSpace(f.String()))
	}
}
