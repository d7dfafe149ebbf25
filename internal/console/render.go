package console

import (
	"fmt"

	"github.com/benmeehan/sentinel/internal/constants"
	"github.com/benmeehan/sentinel/internal/device"
	"github.com/benmeehan/sentinel/internal/models"
)

// Severity classifies a rendered line.
type Severity int

const (
	SeverityPlain Severity = iota
	SeverityOK
	SeverityWarning
	SeverityFail
	SeverityHeading
	SeverityTitle
)

func (s Severity) String() string {
	switch s {
	case SeverityOK:
		return "ok"
	case SeverityWarning:
		return "warning"
	case SeverityFail:
		return "fail"
	case SeverityHeading:
		return "heading"
	case SeverityTitle:
		return "title"
	default:
		return "plain"
	}
}

// Line is one classified line of console output.
type Line struct {
	Text     string
	Severity Severity
}

// phrasing holds a field's message and, for boolean fields, the words used
// for true and false.
type phrasing struct {
	format string
	ok     string
	fail   string
}

var phrasings = map[string]phrasing{
	constants.VariablePower:        {"External power is %s.", "OK", "DOWN"},
	constants.VariableUPSPower:     {"UPS power is %s.", "OK", "DOWN"},
	constants.StatusFieldUPS:       {"UPS power is %s.", "OK", "DOWN"},
	constants.StatusFieldArmed:     {"Alarms are %s.", "enabled", "disabled"},
	constants.VariablePressure:     {format: "Pressure is %.2f mbar."},
	constants.StatusFieldThreshold: {format: "Pressure threshold is %.0f mbar."},
}

// pressureFields are classified against the fixed display limit.
var pressureFields = map[string]struct{}{
	constants.StatusFieldPressure:  {},
	constants.StatusFieldThreshold: {},
}

// ClassifyBool maps true to ok and false to fail.
func ClassifyBool(v bool) Severity {
	if v {
		return SeverityOK
	}
	return SeverityFail
}

// ClassifyNumber puts pressure-like fields at or above the display limit in
// warning; every other number is ok.
func ClassifyNumber(key string, v float64) Severity {
	if _, ok := pressureFields[key]; ok && !(v < constants.DisplayPressureLimit) {
		return SeverityWarning
	}
	return SeverityOK
}

// RenderBool renders a boolean field with its per-field phrasing.
func RenderBool(key string, v bool) Line {
	p, ok := phrasings[key]
	if !ok || p.ok == "" {
		p = phrasing{format: key + " is %s.", ok: "true", fail: "false"}
	}
	word := p.fail
	if v {
		word = p.ok
	}
	return Line{Text: fmt.Sprintf(p.format, word), Severity: ClassifyBool(v)}
}

// RenderNumber renders a numeric field.
func RenderNumber(key string, v float64) Line {
	p, ok := phrasings[key]
	if !ok || p.ok != "" {
		p = phrasing{format: key + " is %.2f."}
	}
	return Line{Text: fmt.Sprintf(p.format, v), Severity: ClassifyNumber(key, v)}
}

// RenderField renders one decoded status field.
func RenderField(f models.StatusField) Line {
	if f.Kind == models.FieldBool {
		return RenderBool(f.Key, f.Bool)
	}
	return RenderNumber(f.Key, f.Number)
}

// RenderValue renders the result of reading variable name. A status record
// yields one line per field, in device order.
func RenderValue(name string, v device.Value) []Line {
	switch v.Kind() {
	case device.KindBool:
		return []Line{RenderBool(name, v.Bool())}
	case device.KindNumber:
		return []Line{RenderNumber(name, v.Number())}
	case device.KindInt:
		return []Line{{Text: fmt.Sprintf("%s returned %d.", name, v.Int()), Severity: SeverityPlain}}
	case device.KindStatus:
		fields := v.Status().Fields()
		lines := make([]Line, 0, len(fields))
		for _, f := range fields {
			lines = append(lines, RenderField(f))
		}
		return lines
	default:
		return []Line{{Text: fmt.Sprintf("%s has no value.", name), Severity: SeverityFail}}
	}
}
