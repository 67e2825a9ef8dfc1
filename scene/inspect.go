package scene

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
)

// Widget selects how the inspector draws a field.
type Widget int

const (
	WidgetAuto Widget = iota
	WidgetLabel
	WidgetBar
	WidgetAngle
	WidgetBool
	WidgetSkip
)

var widgetNames = map[string]Widget{
	"label": WidgetLabel,
	"bar":   WidgetBar,
	"angle": WidgetAngle,
	"bool":  WidgetBool,
	"skip":  WidgetSkip,
}

// TagOptions are the key:value options of an inspect tag.
type TagOptions struct {
	Format string  // fmt verb, e.g. %.3f
	Max    float64 // full-scale value for bars; 0 means 1
}

// Field is one exported component field prepared for the inspector.
type Field struct {
	Name    string
	Value   any
	Widget  Widget
	Options TagOptions
}

// Text renders the value. Angles are shown in degrees.
func (f Field) Text() string {
	if f.Widget == WidgetAngle {
		if rad, ok := toFloat(f.Value); ok {
			return fmt.Sprintf("%.1f°", rad*180/math.Pi)
		}
	}
	return FormatValue(f.Value, f.Options.Format)
}

// Ratio is the value over the Max option, clamped to [0, 1].
func (f Field) Ratio() float32 {
	v, ok := toFloat(f.Value)
	if !ok {
		return 0
	}
	full := f.Options.Max
	if full == 0 {
		full = 1
	}
	return float32(min(max(v/full, 0), 1))
}

// ParseTag reads `inspect:"widget[,key:value...]"`, e.g. `inspect:"bar,max:2"`.
// Unknown widgets fall back to WidgetAuto; unknown keys are ignored.
func ParseTag(tag string) (Widget, TagOptions) {
	var opts TagOptions
	name, rest, _ := strings.Cut(tag, ",")
	widget := widgetNames[strings.TrimSpace(name)]

	for part := range strings.SplitSeq(rest, ",") {
		key, val, ok := strings.Cut(strings.TrimSpace(part), ":")
		if !ok {
			continue
		}
		switch key {
		case "fmt":
			opts.Format = val
		case "max":
			if m, err := strconv.ParseFloat(val, 64); err == nil {
				opts.Max = m
			}
		}
	}
	return widget, opts
}

// ExtractFields returns the inspectable fields of a struct or struct
// pointer, in declaration order. Anything else yields nil.
func ExtractFields(component any) []Field {
	v := reflect.Indirect(reflect.ValueOf(component))
	if v.Kind() != reflect.Struct {
		return nil
	}

	t := v.Type()
	var fields []Field
	for i := range t.NumField() {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		widget, opts := ParseTag(sf.Tag.Get("inspect"))
		if widget == WidgetSkip {
			continue
		}
		fv := v.Field(i)
		if widget == WidgetAuto {
			widget = WidgetLabel
			if fv.Kind() == reflect.Bool {
				widget = WidgetBool
			}
		}
		fields = append(fields, Field{Name: sf.Name, Value: fv.Interface(), Widget: widget, Options: opts})
	}
	return fields
}

// FormatValue applies format, or %.2f for floats and %v otherwise.
func FormatValue(value any, format string) string {
	switch {
	case format != "":
		return fmt.Sprintf(format, value)
	case isFloat(value):
		return fmt.Sprintf("%.2f", value)
	}
	return fmt.Sprint(value)
}

func isFloat(value any) bool {
	switch value.(type) {
	case float32, float64:
		return true
	}
	return false
}

func toFloat(value any) (float64, bool) {
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	case reflect.Int, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	}
	return 0, false
}
