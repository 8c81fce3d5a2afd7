package models

import (
	"encoding/json"
	"strconv"
	"strings"
)

// ValueKind tags the runtime representation of a cell value.
type ValueKind string

const (
	ValueKindNull    ValueKind = "null"
	ValueKindString  ValueKind = "string"
	ValueKindNumber  ValueKind = "number"
	ValueKindBoolean ValueKind = "boolean"
	ValueKindDate    ValueKind = "date"
	ValueKindList    ValueKind = "list"
)

// Value is a tagged cell value: a scalar of one of the column types, a list of
// scalars for list columns, or null. It marshals to the natural JSON form
// (string, number, bool, array or null), so persisted documents stay readable
// and compatible with the export format.
type Value struct {
	Kind ValueKind
	Str  string
	Num  float64
	Bool bool
	List []Value
}

func NullValue() Value              { return Value{Kind: ValueKindNull} }
func StringValue(s string) Value    { return Value{Kind: ValueKindString, Str: s} }
func NumberValue(n float64) Value   { return Value{Kind: ValueKindNumber, Num: n} }
func BoolValue(b bool) Value        { return Value{Kind: ValueKindBoolean, Bool: b} }
func DateValue(iso string) Value    { return Value{Kind: ValueKindDate, Str: iso} }
func ListValue(items []Value) Value { return Value{Kind: ValueKindList, List: items} }

// IsNull reports whether the value carries no data.
func (v Value) IsNull() bool {
	return v.Kind == "" || v.Kind == ValueKindNull
}

// Clone returns a deep copy of the value.
func (v Value) Clone() Value {
	if v.Kind != ValueKindList {
		return v
	}

	items := make([]Value, len(v.List))
	for i, item := range v.List {
		items[i] = item.Clone()
	}

	return Value{Kind: ValueKindList, List: items}
}

// MarshalJSON encodes the value in its natural JSON form. Dates are encoded as
// their ISO string.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case ValueKindString, ValueKindDate:
		return json.Marshal(v.Str)
	case ValueKindNumber:
		return json.Marshal(v.Num)
	case ValueKindBoolean:
		return json.Marshal(v.Bool)
	case ValueKindList:
		if v.List == nil {
			return []byte("[]"), nil
		}

		return json.Marshal(v.List)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON decodes a value from its JSON form, tagging it by the JSON
// type. Date strings decode as string values; the declared column type decides
// how they are interpreted downstream.
func (v *Value) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		*v = NullValue()

		return nil
	}

	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}

		*v = StringValue(s)
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return err
		}

		*v = BoolValue(b)
	case '[':
		var items []Value
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}

		*v = ListValue(items)
	default:
		var n float64
		if err := json.Unmarshal(data, &n); err != nil {
			return err
		}

		*v = NumberValue(n)
	}

	return nil
}

// Equal reports structural equality. String and date values with the same text
// are considered equal, since both round-trip through JSON as strings.
func (v Value) Equal(other Value) bool {
	if v.IsNull() && other.IsNull() {
		return true
	}

	textual := func(k ValueKind) bool { return k == ValueKindString || k == ValueKindDate }

	if textual(v.Kind) && textual(other.Kind) {
		return v.Str == other.Str
	}

	if v.Kind != other.Kind {
		return false
	}

	switch v.Kind {
	case ValueKindNumber:
		return v.Num == other.Num
	case ValueKindBoolean:
		return v.Bool == other.Bool
	case ValueKindList:
		if len(v.List) != len(other.List) {
			return false
		}

		for i := range v.List {
			if !v.List[i].Equal(other.List[i]) {
				return false
			}
		}

		return true
	default:
		return false
	}
}

// CoerceScalar converts a raw textual value into a tagged value of the given
// column type. Numbers that fail to parse become 0; booleans are true only for
// a case-insensitive "true"; dates pass through as ISO strings.
func CoerceScalar(t ColumnType, raw string) Value {
	switch t {
	case ColumnTypeNumber:
		n, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			n = 0
		}

		return NumberValue(n)
	case ColumnTypeBoolean:
		return BoolValue(strings.EqualFold(strings.TrimSpace(raw), "true"))
	case ColumnTypeDate:
		return DateValue(raw)
	default:
		return StringValue(raw)
	}
}

// CoerceValue converts a raw textual value for the given column, splitting
// list columns on ";".
func CoerceValue(col Column, raw string) Value {
	if !col.IsList {
		return CoerceScalar(col.Type, raw)
	}

	if strings.TrimSpace(raw) == "" {
		return ListValue([]Value{})
	}

	parts := strings.Split(raw, ";")
	items := make([]Value, 0, len(parts))

	for _, part := range parts {
		items = append(items, CoerceScalar(col.Type, part))
	}

	return ListValue(items)
}

// CoerceToColumn converts string-kinded values into the column's declared
// type where the text parses as that type. Rows arriving from the editor
// carry every cell as text, so "29" on a number column stores as the number
// 29. Values of other kinds, and strings that do not parse, come back
// unchanged for the caller's type check to reject.
func (v Value) CoerceToColumn(col Column) Value {
	if col.IsList && v.Kind == ValueKindList {
		items := make([]Value, len(v.List))
		for i, item := range v.List {
			items[i] = item.coerceScalarTo(col.Type)
		}

		return ListValue(items)
	}

	return v.coerceScalarTo(col.Type)
}

func (v Value) coerceScalarTo(t ColumnType) Value {
	if v.Kind != ValueKindString {
		return v
	}

	switch t {
	case ColumnTypeNumber:
		if n, err := strconv.ParseFloat(strings.TrimSpace(v.Str), 64); err == nil {
			return NumberValue(n)
		}
	case ColumnTypeBoolean:
		if strings.EqualFold(strings.TrimSpace(v.Str), "true") {
			return BoolValue(true)
		}

		if strings.EqualFold(strings.TrimSpace(v.Str), "false") {
			return BoolValue(false)
		}
	case ColumnTypeDate:
		return DateValue(v.Str)
	}

	return v
}

// MatchesColumn reports whether the value is acceptable for the column's
// declared type. Null is acceptable for any non-required column; dates accept
// plain strings since they travel as ISO strings.
func (v Value) MatchesColumn(col Column) bool {
	if v.IsNull() {
		return !col.Required
	}

	if col.IsList {
		if v.Kind != ValueKindList {
			return false
		}

		for _, item := range v.List {
			if !item.matchesScalar(col.Type) {
				return false
			}
		}

		return true
	}

	return v.matchesScalar(col.Type)
}

func (v Value) matchesScalar(t ColumnType) bool {
	switch t {
	case ColumnTypeString, ColumnTypeDate:
		return v.Kind == ValueKindString || v.Kind == ValueKindDate
	case ColumnTypeNumber:
		return v.Kind == ValueKindNumber
	case ColumnTypeBoolean:
		return v.Kind == ValueKindBoolean
	}

	return false
}

// Text renders the value as the textual form used by CSV export: lists joined
// with ";", numbers in their shortest decimal form.
func (v Value) Text() string {
	switch v.Kind {
	case ValueKindString, ValueKindDate:
		return v.Str
	case ValueKindNumber:
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	case ValueKindBoolean:
		return strconv.FormatBool(v.Bool)
	case ValueKindList:
		parts := make([]string, len(v.List))
		for i, item := range v.List {
			parts[i] = item.Text()
		}

		return strings.Join(parts, ";")
	default:
		return ""
	}
}
