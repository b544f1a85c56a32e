package bitrix24

import "fmt"

// Result is the base of every typed result. It owns exactly one
// CoreResponse; variants embed Result and add interpretation on top.
//
// Variants do not cache anything: each accessor decodes the raw payload
// again, so calling it twice returns the same value and never touches the
// underlying data.
type Result struct {
	core *CoreResponse
}

// NewResult wraps a CoreResponse.
func NewResult(core *CoreResponse) Result {
	return Result{core: core}
}

// CoreResponse returns the wrapped response. Using a Result that was never
// populated, such as the zero value of a variant, is a PreconditionViolation.
func (r Result) CoreResponse() (*CoreResponse, error) {
	if r.core == nil || r.core.data == nil {
		return nil, &DecodeError{
			Kind: PreconditionViolation,
			Want: "result used before its response was populated",
		}
	}
	return r.core, nil
}

// raw returns the "result" payload.
func (r Result) raw() (Value, error) {
	core, err := r.CoreResponse()
	if err != nil {
		return Value{}, err
	}
	return core.ResponseData().Result(), nil
}

// The functions below are the closed set of decode strategies. Domain result
// types pick one and supply the per-item constructor.

// DecodeScalarID reads an identifier from the first element of a list
// result. A bare scalar result is accepted as well.
func DecodeScalarID(r Result) (int64, error) {
	raw, err := r.raw()
	if err != nil {
		return 0, err
	}

	switch raw.Kind() {
	case KindList:
		if len(raw.list) == 0 {
			return 0, missingError("[0]", "result")
		}
		first := raw.list[0]
		if k := first.Kind(); k == KindList || k == KindMap {
			return 0, annotate(shapeError("scalar identifier", first), "[0]", "result")
		}
		id, err := first.AsInt()
		if err != nil {
			return 0, annotate(err, "[0]", "result")
		}
		return id, nil
	case KindNumber, KindString:
		id, err := raw.AsInt()
		if err != nil {
			return 0, annotate(err, "", "result")
		}
		return id, nil
	default:
		return 0, annotate(shapeError("scalar identifier", raw), "", "result")
	}
}

// DecodeSuccess reads a boolean result such as the one returned by update
// and delete methods.
func DecodeSuccess(r Result) (bool, error) {
	raw, err := r.raw()
	if err != nil {
		return false, err
	}
	if raw.Kind() == KindList || raw.Kind() == KindMap {
		return false, annotate(shapeError("bool", raw), "", "result")
	}
	ok, err := raw.AsBool()
	if err != nil {
		return false, annotate(err, "", "result")
	}
	return ok, nil
}

// DecodeRecord wraps a result that is a single record.
func DecodeRecord[T any](r Result, wrap func(Item) T) (T, error) {
	var zero T
	raw, err := r.raw()
	if err != nil {
		return zero, err
	}
	item, err := NewItem(raw, "result")
	if err != nil {
		return zero, err
	}
	return wrap(item), nil
}

// DecodeList wraps every element of a list result, in server order. An empty
// list yields an empty slice.
func DecodeList[T any](r Result, wrap func(Item) T) ([]T, error) {
	raw, err := r.raw()
	if err != nil {
		return nil, err
	}
	if raw.Kind() != KindList {
		return nil, annotate(shapeError("list", raw), "", "result")
	}

	out := make([]T, 0, len(raw.list))
	for idx, elem := range raw.list {
		item, err := NewItem(elem, fmt.Sprintf("[%d]", idx))
		if err != nil {
			return nil, err
		}
		out = append(out, wrap(item))
	}
	return out, nil
}

// DecodeKeyed decodes a map result entry by entry, in the order the server
// sent the keys. Entries may be records or scalars, so decode receives the
// raw value. An empty list is accepted as an empty map, since that is how
// the server encodes one.
func DecodeKeyed[T any](r Result, decode func(key string, v Value) (T, error)) ([]T, error) {
	raw, err := r.raw()
	if err != nil {
		return nil, err
	}

	switch {
	case raw.Kind() == KindList && len(raw.list) == 0:
		return []T{}, nil
	case raw.Kind() != KindMap:
		return nil, annotate(shapeError("map", raw), "", "result")
	}

	out := make([]T, 0, raw.record.Len())
	for key, v := range raw.record.All() {
		decoded, err := decode(key, v)
		if err != nil {
			return nil, annotate(err, "", key)
		}
		out = append(out, decoded)
	}
	return out, nil
}

// DecodeKeyedItems is DecodeKeyed for maps whose entries are records.
func DecodeKeyedItems[T any](r Result, wrap func(key string, item Item) T) ([]T, error) {
	return DecodeKeyed(r, func(key string, v Value) (T, error) {
		var zero T
		item, err := NewItem(v, key)
		if err != nil {
			return zero, err
		}
		return wrap(key, item), nil
	})
}

// decodeScalars decodes a list result of scalars, in server order.
func decodeScalars[T any](r Result, coerce func(Value) (T, error)) ([]T, error) {
	raw, err := r.raw()
	if err != nil {
		return nil, err
	}
	if raw.Kind() != KindList {
		return nil, annotate(shapeError("list", raw), "", "result")
	}

	out := make([]T, 0, len(raw.list))
	for idx, elem := range raw.list {
		v, err := coerce(elem)
		if err != nil {
			return nil, annotate(err, "", fmt.Sprintf("[%d]", idx))
		}
		out = append(out, v)
	}
	return out, nil
}

// AddedItemResult is returned by methods that create an entity.
type AddedItemResult struct {
	Result
}

// ID returns the identifier of the created entity.
func (r *AddedItemResult) ID() (int64, error) {
	return DecodeScalarID(r.Result)
}

// SuccessResult is returned by methods that answer with a bare boolean.
type SuccessResult struct {
	Result
}

// IsSuccess reports whether the server acknowledged the operation.
func (r *SuccessResult) IsSuccess() (bool, error) {
	return DecodeSuccess(r.Result)
}

// DeletedCountResult is returned by methods that answer {"count": n}.
type DeletedCountResult struct {
	Result
}

// Count returns the number of removed entries.
func (r *DeletedCountResult) Count() (int64, error) {
	item, err := DecodeRecord(r.Result, func(item Item) Item { return item })
	if err != nil {
		return 0, err
	}
	return item.Int("count")
}
