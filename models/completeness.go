package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Field is one required scalar of a record and whether it differs from its empty default.
type Field struct {
	Name   string
	Filled bool
}

// Relation is one required link to another record. Target is nil when the link is unset.
type Relation struct {
	Name   string
	Target Completable
}

// Descriptor lists what a record needs before it counts as filled in.
// Optional columns and booleans are left out on purpose: any value of them is an answer.
type Descriptor struct {
	Fields    []Field
	Relations []Relation
}

// Completable is implemented by every record that takes part in the registration check.
type Completable interface {
	Completeness() Descriptor
}

func Text(name, v string) Field {
	return Field{Name: name, Filled: strings.TrimSpace(v) != ""}
}

func Number(name string, v int) Field {
	return Field{Name: name, Filled: v != 0}
}

func Date(name string, v *time.Time) Field {
	return Field{Name: name, Filled: v != nil && !v.IsZero()}
}

func Money(name string, v decimal.Decimal) Field {
	return Field{Name: name, Filled: !v.IsZero()}
}

// Ref builds a Relation from a typed pointer so that a nil *T never turns into a non-nil interface.
func Ref[T any, P interface {
	*T
	Completable
}](name string, p P) Relation {
	if p == nil {
		return Relation{Name: name}
	}
	return Relation{Name: name, Target: p}
}

// MissingField walks the record tree depth-first and returns the dotted path of the first
// required value that is still empty. ok is true when nothing is missing.
// The relationship graph is a tree; there is no cycle detection.
func MissingField(c Completable) (path string, ok bool) {
	d := c.Completeness()
	for _, f := range d.Fields {
		if !f.Filled {
			return f.Name, false
		}
	}
	for _, r := range d.Relations {
		if r.Target == nil {
			return r.Name, false
		}
		if sub, ok := MissingField(r.Target); !ok {
			return r.Name + "." + sub, false
		}
	}
	return "", true
}

// IsComplete reports whether c and everything reachable through its required relations is filled in.
func IsComplete(c Completable) bool {
	_, ok := MissingField(c)
	return ok
}
