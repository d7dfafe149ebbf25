package device

import (
	"fmt"
	"strconv"

	"github.com/benmeehan/sentinel/internal/models"
)

// Kind tags the payload of a Value.
type Kind int

const (
	KindNone Kind = iota
	KindBool
	KindNumber
	KindInt
	KindStatus
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindInt:
		return "int"
	case KindStatus:
		return "status"
	default:
		return "none"
	}
}

// Value is the successful outcome of a read or call. The zero Value
// (KindNone) accompanies every error.
type Value struct {
	kind   Kind
	b      bool
	number float64
	i      int
	status models.StatusRecord
}

// BoolValue wraps a boolean variable.
func BoolValue(b bool) Value { return Value{kind: KindBool, b: b} }

// NumberValue wraps a floating point variable.
func NumberValue(n float64) Value { return Value{kind: KindNumber, number: n} }

// IntValue wraps a function's return value.
func IntValue(i int) Value { return Value{kind: KindInt, i: i} }

// StatusValue wraps a decoded status record.
func StatusValue(r models.StatusRecord) Value { return Value{kind: KindStatus, status: r} }

func (v Value) Kind() Kind { return v.kind }

func (v Value) Bool() bool { return v.b }

func (v Value) Number() float64 { return v.number }

func (v Value) Int() int { return v.i }

func (v Value) Status() models.StatusRecord { return v.status }

func (v Value) IsZero() bool { return v.kind == KindNone }

func (v Value) String() string {
	switch v.kind {
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindNumber:
		return strconv.FormatFloat(v.number, 'f', -1, 64)
	case KindInt:
		return strconv.Itoa(v.i)
	case KindStatus:
		return v.status.Encode()
	default:
		return fmt.Sprintf("<%s>", v.kind)
	}
}
