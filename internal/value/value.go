// Package value defines the tagged result a metafeature evaluates to. The
// tag is chosen from the catalog's declared kind rather than inferred from
// whatever Go type a primitive happened to return.
package value

import (
	"fmt"
	"math"
	"strconv"

	"github.com/goccy/go-json"
)

// Tag identifies which variant a Value holds.
type Tag int

const (
	TagNumber Tag = iota
	TagLabel
	TagSentinel
	TagFailure
)

// Sentinel strings reported in place of a value.
const (
	NoTargets = "NO_TARGETS"
	Timeout   = "TIMEOUT"
)

// Kind is the declared return kind of a metafeature.
type Kind string

const (
	KindNumber Kind = "number"
	KindLabel  Kind = "label"
)

// ParseKind validates a declared kind. The empty string means KindNumber.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case "", KindNumber:
		return KindNumber, nil
	case KindLabel:
		return KindLabel, nil
	default:
		return "", fmt.Errorf("unknown metafeature kind %q, expected %q or %q", s, KindNumber, KindLabel)
	}
}

// Value is a single cell of the result row.
type Value struct {
	tag    Tag
	number float64
	text   string
}

func Number(f float64) Value { return Value{tag: TagNumber, number: f} }
func Label(s string) Value   { return Value{tag: TagLabel, text: s} }
func NoTargetsValue() Value  { return Value{tag: TagSentinel, text: NoTargets} }
func TimeoutValue() Value    { return Value{tag: TagSentinel, text: Timeout} }
func Failure(description string) Value {
	return Value{tag: TagFailure, text: description}
}

func (v Value) Tag() Tag { return v.tag }

// Float returns the numeric payload and whether v is a number.
func (v Value) Float() (float64, bool) { return v.number, v.tag == TagNumber }

// Text returns the label, sentinel name, or failure description.
func (v Value) Text() string { return v.text }

func (v Value) IsSentinel(name string) bool { return v.tag == TagSentinel && v.text == name }

// Equal compares two values. NaN numbers are equal to each other so that
// repeated runs over the same data compare as identical.
func (v Value) Equal(o Value) bool {
	if v.tag != o.tag {
		return false
	}
	if v.tag == TagNumber {
		if math.IsNaN(v.number) && math.IsNaN(o.number) {
			return true
		}
		return v.number == o.number
	}
	return v.text == o.text
}

func (v Value) String() string {
	switch v.tag {
	case TagNumber:
		return strconv.FormatFloat(v.number, 'g', -1, 64)
	case TagFailure:
		return "FAILED: " + v.text
	default:
		return v.text
	}
}

// MarshalJSON renders numbers as JSON numbers (NaN and infinities as null)
// and every other variant as a string.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.tag == TagNumber {
		if math.IsNaN(v.number) || math.IsInf(v.number, 0) {
			return []byte("null"), nil
		}
		return json.Marshal(v.number)
	}
	return json.Marshal(v.String())
}

// Coerce converts a primitive's raw output into a Value of the declared kind.
func Coerce(kind Kind, raw any) (Value, error) {
	switch kind {
	case KindLabel:
		switch x := raw.(type) {
		case string:
			return Label(x), nil
		case fmt.Stringer:
			return Label(x.String()), nil
		}
		return Value{}, fmt.Errorf("expected a label, got %T", raw)
	default:
		f, err := ToFloat(raw)
		if err != nil {
			return Value{}, err
		}
		return Number(f), nil
	}
}

// ToFloat widens any Go numeric type to float64.
func ToFloat(raw any) (float64, error) {
	switch x := raw.(type) {
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case int:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case int32:
		return float64(x), nil
	case uint:
		return float64(x), nil
	case uint64:
		return float64(x), nil
	case uint32:
		return float64(x), nil
	case bool:
		if x {
			return 1, nil
		}
		return 0, nil
	}
	return 0, fmt.Errorf("expected a number, got %T", raw)
}
