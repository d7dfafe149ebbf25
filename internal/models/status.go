package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/benmeehan/sentinel/internal/constants"
)

// ErrDecode is matched by every status decoding failure.
var ErrDecode = errors.New("status decode failed")

// DecodeError describes why a compact status string could not be decoded.
type DecodeError struct {
	Token  string
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	msg := fmt.Sprintf("decoding status token %q: %s", e.Token, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *DecodeError) Is(target error) bool { return target == ErrDecode }

func (e *DecodeError) Unwrap() error { return e.Err }

// FieldKind selects how a status value is parsed.
type FieldKind int

const (
	FieldNumber FieldKind = iota
	FieldBool
)

// StatusFieldKinds lists the status fields that carry a boolean. Any field not
// listed here is a floating point measurement.
var StatusFieldKinds = map[string]FieldKind{
	constants.StatusFieldPower: FieldBool,
	constants.StatusFieldUPS:   FieldBool,
	constants.StatusFieldArmed: FieldBool,
}

// KindOf returns the parse kind for a status field name.
func KindOf(key string) FieldKind {
	if kind, ok := StatusFieldKinds[key]; ok {
		return kind
	}
	return FieldNumber
}

// StatusField is one typed entry of a StatusRecord.
type StatusField struct {
	Key    string
	Kind   FieldKind
	Bool   bool
	Number float64
}

// Value returns the field's value as a bool or a float64.
func (f StatusField) Value() any {
	if f.Kind == FieldBool {
		return f.Bool
	}
	return f.Number
}

// StatusRecord is the decoded device status. Fields keep the order in which
// the device reported them.
type StatusRecord struct {
	fields []StatusField
}

// Fields returns a copy of the record's fields in device order.
func (r StatusRecord) Fields() []StatusField {
	out := make([]StatusField, len(r.fields))
	copy(out, r.fields)
	return out
}

// Len returns the number of fields.
func (r StatusRecord) Len() int { return len(r.fields) }

// Get looks a field up by name.
func (r StatusRecord) Get(key string) (StatusField, bool) {
	for _, f := range r.fields {
		if f.Key == key {
			return f, true
		}
	}
	return StatusField{}, false
}

// Bool returns a boolean field, false when absent or numeric.
func (r StatusRecord) Bool(key string) (bool, bool) {
	f, ok := r.Get(key)
	if !ok || f.Kind != FieldBool {
		return false, false
	}
	return f.Bool, true
}

// Number returns a numeric field.
func (r StatusRecord) Number(key string) (float64, bool) {
	f, ok := r.Get(key)
	if !ok || f.Kind != FieldNumber {
		return 0, false
	}
	return f.Number, true
}

func (r *StatusRecord) set(field StatusField) {
	for i := range r.fields {
		if r.fields[i].Key == field.Key {
			r.fields[i] = field
			return
		}
	}
	r.fields = append(r.fields, field)
}

// NewStatusRecord builds a record from already typed fields, in order.
func NewStatusRecord(fields ...StatusField) StatusRecord {
	var r StatusRecord
	for _, f := range fields {
		r.set(f)
	}
	return r
}

// DecodeStatus parses the firmware's "key:value,key:value" status string.
// Decoding is all-or-nothing: the first bad token fails the whole record.
func DecodeStatus(raw string) (StatusRecord, error) {
	var record StatusRecord
	for _, token := range strings.Split(raw, ",") {
		field, err := decodeToken(token)
		if err != nil {
			return StatusRecord{}, err
		}
		record.set(field)
	}
	return record, nil
}

func decodeToken(token string) (StatusField, error) {
	if strings.Count(token, ":") != 1 {
		return StatusField{}, &DecodeError{Token: token, Reason: "expected exactly one key:value separator"}
	}
	key, value, _ := strings.Cut(token, ":")
	key = strings.TrimSpace(key)
	value = strings.TrimSpace(value)
	if key == "" || value == "" {
		return StatusField{}, &DecodeError{Token: token, Reason: "empty key or value"}
	}

	field := StatusField{Key: key, Kind: KindOf(key)}
	switch field.Kind {
	case FieldBool:
		n, err := strconv.Atoi(value)
		if err != nil {
			return StatusField{}, &DecodeError{Token: token, Reason: "value is not an integer", Err: err}
		}
		field.Bool = n != 0
	default:
		n, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return StatusField{}, &DecodeError{Token: token, Reason: "value is not a number", Err: err}
		}
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return StatusField{}, &DecodeError{Token: token, Reason: "value is not finite"}
		}
		field.Number = n
	}
	return field, nil
}

// Encode renders the record in the firmware's compact form.
func (r StatusRecord) Encode() string {
	parts := make([]string, 0, len(r.fields))
	for _, f := range r.fields {
		parts = append(parts, f.Key+":"+formatValue(f))
	}
	return strings.Join(parts, ",")
}

func formatValue(f StatusField) string {
	if f.Kind == FieldBool {
		if f.Bool {
			return "1"
		}
		return "0"
	}
	return strconv.FormatFloat(f.Number, 'f', -1, 64)
}

// MarshalJSON writes the record as a JSON object with keys in device order.
func (r StatusRecord) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range r.fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.Key)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(f.Value())
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
