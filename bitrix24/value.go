package bitrix24

import (
	"bytes"
	"encoding/json"
	"fmt"
	"iter"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Kind identifies the dynamic shape of a raw Value.
type Kind int

const (
	// KindNull is JSON null and the zero Value.
	KindNull Kind = iota
	// KindBool is true or false.
	KindBool
	// KindNumber is a JSON number kept as its literal text.
	KindNumber
	// KindString is a JSON string.
	KindString
	// KindList is a JSON array.
	KindList
	// KindMap is a JSON object with its key order preserved.
	KindMap
)

// String implements fmt.Stringer.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Value is one node of the schema-less payload returned by a Bitrix24 REST
// method. The zero Value is JSON null.
//
// A Value is immutable once decoded. Accessors that hand out containers
// return copies or read-only views so that decoding the same Value twice
// always observes the same data.
type Value struct {
	kind    Kind
	boolean bool
	text    string // number literal or string contents
	list    []Value
	record  Record
}

// ParseValue decodes a JSON document into a Value.
func ParseValue(data []byte) (Value, error) {
	var v Value
	if err := json.Unmarshal(data, &v); err != nil {
		return Value{}, err
	}
	return v, nil
}

// UnmarshalJSON implements json.Unmarshaler. Object keys keep the order in
// which the server sent them.
func (v *Value) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return fmt.Errorf("bitrix24: empty JSON value")
	}

	switch trimmed[0] {
	case 'n':
		if !bytes.Equal(trimmed, []byte("null")) {
			return fmt.Errorf("bitrix24: invalid JSON literal %q", trimmed)
		}
		*v = Value{}
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(trimmed, &b); err != nil {
			return err
		}
		*v = Value{kind: KindBool, boolean: b}
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*v = Value{kind: KindString, text: s}
	case '[':
		var items []Value
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return err
		}
		if items == nil {
			items = []Value{}
		}
		*v = Value{kind: KindList, list: items}
	case '{':
		fields := orderedmap.New[string, Value]()
		if err := fields.UnmarshalJSON(trimmed); err != nil {
			return err
		}
		*v = Value{kind: KindMap, record: Record{fields: fields}}
	default:
		var n json.Number
		if err := json.Unmarshal(trimmed, &n); err != nil {
			return err
		}
		*v = Value{kind: KindNumber, text: n.String()}
	}

	return nil
}

// MarshalJSON implements json.Marshaler.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindBool:
		return json.Marshal(v.boolean)
	case KindNumber:
		return []byte(v.text), nil
	case KindString:
		return json.Marshal(v.text)
	case KindList:
		if v.list == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.list)
	case KindMap:
		if v.record.fields == nil {
			return []byte("{}"), nil
		}
		return v.record.fields.MarshalJSON()
	default:
		return []byte("null"), nil
	}
}

// Kind reports the dynamic shape of the value.
func (v Value) Kind() Kind {
	return v.kind
}

// IsNull reports whether the value is JSON null.
func (v Value) IsNull() bool {
	return v.kind == KindNull
}

// isBlank reports whether the value carries no data for non-string fields.
// The API renders empty dates and numbers as "".
func (v Value) isBlank() bool {
	return v.kind == KindNull || (v.kind == KindString && strings.TrimSpace(v.text) == "")
}

// List returns a copy of the elements of a list value.
func (v Value) List() ([]Value, error) {
	if v.kind != KindList {
		return nil, shapeError("list", v)
	}
	out := make([]Value, len(v.list))
	copy(out, v.list)
	return out, nil
}

// Record returns the read-only mapping held by a map value.
func (v Value) Record() (Record, error) {
	if v.kind != KindMap {
		return Record{}, shapeError("map", v)
	}
	return v.record, nil
}

// AsInt coerces the value to an integer. Numeric strings are accepted and
// fractional numbers are truncated toward zero.
func (v Value) AsInt() (int64, error) {
	var literal string
	switch v.kind {
	case KindNumber:
		literal = v.text
	case KindString:
		literal = strings.TrimSpace(v.text)
	default:
		return 0, coercionError("integer", v, nil)
	}

	if n, err := strconv.ParseInt(literal, 10, 64); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(literal, 64)
	if err != nil {
		return 0, coercionError("integer", v, err)
	}
	// float64(math.MaxInt64) rounds up to 2^63, which int64 cannot hold.
	if math.IsNaN(f) || f >= 0x1p63 || f < -0x1p63 {
		return 0, coercionError("integer", v, nil)
	}
	return int64(f), nil
}

// AsFloat coerces the value to a float64.
func (v Value) AsFloat() (float64, error) {
	switch v.kind {
	case KindNumber, KindString:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.text), 64)
		if err != nil {
			return 0, coercionError("float", v, err)
		}
		return f, nil
	default:
		return 0, coercionError("float", v, nil)
	}
}

// AsString coerces the value to a string. Numbers render as sent.
func (v Value) AsString() (string, error) {
	switch v.kind {
	case KindString, KindNumber:
		return v.text, nil
	default:
		return "", coercionError("string", v, nil)
	}
}

// AsBool coerces the value to a bool. Besides JSON booleans the API uses
// "Y"/"N" flags, "1"/"0" and "true"/"false".
func (v Value) AsBool() (bool, error) {
	switch v.kind {
	case KindBool:
		return v.boolean, nil
	case KindNumber, KindString:
		switch strings.ToUpper(strings.TrimSpace(v.text)) {
		case "Y", "1", "TRUE":
			return true, nil
		case "N", "0", "FALSE":
			return false, nil
		}
	}
	return false, coercionError("bool", v, nil)
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05-0700",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// AsTime coerces an ISO 8601 string to a time.Time.
func (v Value) AsTime() (time.Time, error) {
	if v.kind != KindString {
		return time.Time{}, coercionError("date/time", v, nil)
	}
	s := strings.TrimSpace(v.text)
	var lastErr error
	for _, layout := range timeLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, coercionError("date/time", v, lastErr)
}

// AsDecimal coerces a number or numeric string to an exact decimal.
func (v Value) AsDecimal() (decimal.Decimal, error) {
	switch v.kind {
	case KindNumber, KindString:
		d, err := decimal.NewFromString(strings.TrimSpace(v.text))
		if err != nil {
			return decimal.Decimal{}, coercionError("decimal", v, err)
		}
		return d, nil
	default:
		return decimal.Decimal{}, coercionError("decimal", v, nil)
	}
}

// summary renders a short form of the value for error messages.
func (v Value) summary() string {
	switch v.kind {
	case KindString:
		s := v.text
		if utf8.RuneCountInString(s) > 32 {
			s = string([]rune(s)[:32]) + "..."
		}
		return strconv.Quote(s)
	case KindNumber:
		return v.text
	case KindBool:
		return strconv.FormatBool(v.boolean)
	case KindList:
		return fmt.Sprintf("list of %d", len(v.list))
	case KindMap:
		return fmt.Sprintf("map of %d", v.record.Len())
	default:
		return "null"
	}
}

// Record is a read-only mapping from field name to raw value that keeps the
// server's key order.
type Record struct {
	fields *orderedmap.OrderedMap[string, Value]
}

// Len returns the number of fields.
func (r Record) Len() int {
	if r.fields == nil {
		return 0
	}
	return r.fields.Len()
}

// Get returns the value stored under key.
func (r Record) Get(key string) (Value, bool) {
	if r.fields == nil {
		return Value{}, false
	}
	return r.fields.Get(key)
}

// Keys returns the field names in server order.
func (r Record) Keys() []string {
	keys := make([]string, 0, r.Len())
	for key := range r.All() {
		keys = append(keys, key)
	}
	return keys
}

// All iterates the fields in server order.
func (r Record) All() iter.Seq2[string, Value] {
	return func(yield func(string, Value) bool) {
		if r.fields == nil {
			return
		}
		for pair := r.fields.Oldest(); pair != nil; pair = pair.Next() {
			if !yield(pair.Key, pair.Value) {
				return
			}
		}
	}
}
