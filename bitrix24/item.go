package bitrix24

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Item is a typed view over one raw record of a result. Domain items such as
// UserItem embed it and declare their fields through its accessors.
//
// Accessors come in two forms. The required form (Int, String, ...) fails
// with a FieldMissing error when the field is absent or null. The optional
// form (OptionalInt, OptionalString, ...) returns nil instead. Both fail with
// a TypeCoercion error when the value cannot be converted. No accessor
// modifies the record and accessors do not depend on each other.
//
// For every type except string an empty string counts as absent, because the
// API renders unset numbers and dates as "".
type Item struct {
	record   Record
	position string
}

// NewItem wraps a raw map value. position labels the record in errors.
func NewItem(v Value, position string) (Item, error) {
	rec, err := v.Record()
	if err != nil {
		return Item{}, annotate(err, "", position)
	}
	return Item{record: rec, position: position}, nil
}

// Position returns the label of the record within its result.
func (i Item) Position() string {
	return i.position
}

// Record returns the underlying raw record. Unknown fields are reachable
// through it unchanged.
func (i Item) Record() Record {
	return i.record
}

// Get returns the raw value of field.
func (i Item) Get(field string) (Value, bool) {
	return i.record.Get(field)
}

// Has reports whether field is present, even if null.
func (i Item) Has(field string) bool {
	_, ok := i.record.Get(field)
	return ok
}

// Keys returns the field names in server order.
func (i Item) Keys() []string {
	return i.record.Keys()
}

func (i Item) lookup(field string, blankIsAbsent bool) (Value, bool) {
	v, ok := i.record.Get(field)
	if !ok || v.IsNull() {
		return Value{}, false
	}
	if blankIsAbsent && v.isBlank() {
		return Value{}, false
	}
	return v, true
}

func requiredField[T any](i Item, field string, blankIsAbsent bool, coerce func(Value) (T, error)) (T, error) {
	var zero T
	v, ok := i.lookup(field, blankIsAbsent)
	if !ok {
		return zero, missingError(field, i.position)
	}
	out, err := coerce(v)
	if err != nil {
		return zero, annotate(err, field, i.position)
	}
	return out, nil
}

func optionalField[T any](i Item, field string, blankIsAbsent bool, coerce func(Value) (T, error)) (*T, error) {
	v, ok := i.lookup(field, blankIsAbsent)
	if !ok {
		return nil, nil
	}
	out, err := coerce(v)
	if err != nil {
		return nil, annotate(err, field, i.position)
	}
	return &out, nil
}

// Int returns a required integer field.
func (i Item) Int(field string) (int64, error) {
	return requiredField(i, field, true, Value.AsInt)
}

// OptionalInt returns an optional integer field.
func (i Item) OptionalInt(field string) (*int64, error) {
	return optionalField(i, field, true, Value.AsInt)
}

// OptionalFloat returns an optional floating point field.
func (i Item) OptionalFloat(field string) (*float64, error) {
	return optionalField(i, field, true, Value.AsFloat)
}

// String returns a required string field. An empty string is a value.
func (i Item) String(field string) (string, error) {
	return requiredField(i, field, false, Value.AsString)
}

// OptionalString returns an optional string field.
func (i Item) OptionalString(field string) (*string, error) {
	return optionalField(i, field, false, Value.AsString)
}

// Bool returns a required boolean or Y/N flag field.
func (i Item) Bool(field string) (bool, error) {
	return requiredField(i, field, true, Value.AsBool)
}

// OptionalBool returns an optional boolean or Y/N flag field.
func (i Item) OptionalBool(field string) (*bool, error) {
	return optionalField(i, field, true, Value.AsBool)
}

// Time returns a required date/time field.
func (i Item) Time(field string) (time.Time, error) {
	return requiredField(i, field, true, Value.AsTime)
}

// OptionalTime returns an optional date/time field.
func (i Item) OptionalTime(field string) (*time.Time, error) {
	return optionalField(i, field, true, Value.AsTime)
}

// Decimal returns a required exact decimal field.
func (i Item) Decimal(field string) (decimal.Decimal, error) {
	return requiredField(i, field, true, Value.AsDecimal)
}

// OptionalDecimal returns an optional exact decimal field.
func (i Item) OptionalDecimal(field string) (*decimal.Decimal, error) {
	return optionalField(i, field, true, Value.AsDecimal)
}

// IntList returns a list of integers. An absent field yields an empty slice;
// a single scalar is treated as a list of one.
func (i Item) IntList(field string) ([]int64, error) {
	v, ok := i.lookup(field, true)
	if !ok {
		return []int64{}, nil
	}
	if v.Kind() != KindList {
		n, err := v.AsInt()
		if err != nil {
			return nil, annotate(err, field, i.position)
		}
		return []int64{n}, nil
	}

	out := make([]int64, 0, len(v.list))
	for idx, elem := range v.list {
		n, err := elem.AsInt()
		if err != nil {
			return nil, annotate(err, fmt.Sprintf("%s[%d]", field, idx), i.position)
		}
		out = append(out, n)
	}
	return out, nil
}

// Items returns a list of nested records. An absent field yields an empty
// slice.
func (i Item) Items(field string) ([]Item, error) {
	v, ok := i.lookup(field, true)
	if !ok {
		return []Item{}, nil
	}
	if v.Kind() != KindList {
		return nil, annotate(shapeError("list", v), field, i.position)
	}

	out := make([]Item, 0, len(v.list))
	for idx, elem := range v.list {
		nested, err := NewItem(elem, fmt.Sprintf("%s[%d]", childPosition(i.position, field), idx))
		if err != nil {
			return nil, err
		}
		out = append(out, nested)
	}
	return out, nil
}

// Nested returns a required nested record.
func (i Item) Nested(field string) (Item, error) {
	v, ok := i.lookup(field, true)
	if !ok {
		return Item{}, missingError(field, i.position)
	}
	if v.Kind() != KindMap {
		return Item{}, annotate(shapeError("map", v), field, i.position)
	}
	return Item{record: v.record, position: childPosition(i.position, field)}, nil
}

// enumField decodes an integer field and maps it through parse. A number
// parse rejects is a TypeCoercion error.
func enumField[T any](i Item, field string, want string, parse func(int64) (T, error)) (T, error) {
	var zero T
	n, err := i.Int(field)
	if err != nil {
		return zero, err
	}
	out, err := parse(n)
	if err != nil {
		raw, _ := i.record.Get(field)
		return zero, coercionError(want, raw, err).at(field, i.position)
	}
	return out, nil
}

func childPosition(parent, field string) string {
	if parent == "" {
		return field
	}
	return parent + "." + field
}
