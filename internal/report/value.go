package report

import (
	"strconv"

	jsoniter "github.com/json-iterator/go"
)

// Sentinels rendered in place of a value.
const (
	// SentinelUnavailable marks a derived quantity no source could resolve.
	SentinelUnavailable = "unavailable"
	// SentinelNA marks an attribute the entity does not carry.
	SentinelNA = "N/A"
)

type valueKind uint8

const (
	kindUnavailable valueKind = iota
	kindNumber
	kindText
	kindNA
)

// Value is a record cell: a number, a piece of text, or one of the two
// sentinels. The zero Value is unavailable.
type Value struct {
	kind valueKind
	num  float64
	text string
}

// Number returns a numeric Value.
func Number(v float64) Value { return Value{kind: kindNumber, num: v} }

// Text returns a textual Value.
func Text(s string) Value { return Value{kind: kindText, text: s} }

// Unavailable returns the "unavailable" sentinel.
func Unavailable() Value { return Value{} }

// NotApplicable returns the "N/A" sentinel.
func NotApplicable() Value { return Value{kind: kindNA} }

// Float returns the numeric value; ok is false for text and sentinels.
func (v Value) Float() (float64, bool) {
	if v.kind != kindNumber {
		return 0, false
	}
	return v.num, true
}

// IsNumber reports whether v holds a number.
func (v Value) IsNumber() bool { return v.kind == kindNumber }

// String renders numbers in their shortest exact form.
func (v Value) String() string { return v.Format(-1) }

// Format renders numbers with prec decimals (-1 for the shortest form);
// text and sentinels are returned as they are.
func (v Value) Format(prec int) string {
	switch v.kind {
	case kindNumber:
		return strconv.FormatFloat(v.num, 'f', prec, 64)
	case kindText:
		return v.text
	case kindNA:
		return SentinelNA
	}
	return SentinelUnavailable
}

// Interface returns the value as float64 or string.
func (v Value) Interface() any {
	if v.kind == kindNumber {
		return v.num
	}
	return v.Format(-1)
}

func (v Value) MarshalYAML() (any, error) { return v.Interface(), nil }

func (v Value) MarshalJSON() ([]byte, error) {
	return jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(v.Interface())
}
