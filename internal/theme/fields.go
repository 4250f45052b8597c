// Package theme defines the closed set of themeable display fields and
// the helpers the resolution engine builds on.
package theme

import (
	"encoding/json"
	"fmt"
)

// ErrInvalidField is wrapped by every field validation failure.
var ErrInvalidField = fmt.Errorf("invalid theme field")

// Known field names. Adding a display capability means adding a name
// here plus its kind and default below; unknown names always fail
// validation so corrupt rows cannot reach a display.
const (
	FieldHideClock        = "hideClock"
	FieldClockColor       = "clockColor"
	FieldClockSize        = "clockSize"
	FieldNewsTickerText   = "newsTickerText"
	FieldNewsTickerSpeed  = "newsTickerSpeed"
	FieldNewsTickerLoop   = "newsTickerLoop"
	FieldNewsTickerHidden = "newsTickerHidden"
)

type kind int

const (
	kindBool kind = iota
	kindString
	kindNumber
)

var fieldKinds = map[string]kind{
	FieldHideClock:        kindBool,
	FieldClockColor:       kindString,
	FieldClockSize:        kindNumber,
	FieldNewsTickerText:   kindString,
	FieldNewsTickerSpeed:  kindNumber,
	FieldNewsTickerLoop:   kindNumber,
	FieldNewsTickerHidden: kindBool,
}

// Field is a single theme override. enabled=false means the value is
// kept but not applied: resolution falls through to the next layer.
type Field struct {
	Name    string `json:"name"`
	Value   any    `json:"value"`
	Enabled bool   `json:"enabled"`
}

// Defaults returns one disabled entry per known field, so every name
// is present after merging with partial stored data.
func Defaults() map[string]Field {
	return map[string]Field{
		FieldHideClock:        {Name: FieldHideClock, Value: false},
		FieldClockColor:       {Name: FieldClockColor, Value: "#ff0000"},
		FieldClockSize:        {Name: FieldClockSize, Value: float64(64)},
		FieldNewsTickerText:   {Name: FieldNewsTickerText, Value: ""},
		FieldNewsTickerSpeed:  {Name: FieldNewsTickerSpeed, Value: float64(50)},
		FieldNewsTickerLoop:   {Name: FieldNewsTickerLoop, Value: float64(0)},
		FieldNewsTickerHidden: {Name: FieldNewsTickerHidden, Value: false},
	}
}

// Validate checks every field against the closed set: the name must be
// known and the value must have that name's type. It never repairs or
// coerces; stored data that fails here is surfaced, not rendered.
func Validate(fields []Field) error {
	for _, f := range fields {
		k, ok := fieldKinds[f.Name]
		if !ok {
			return fmt.Errorf("%w: unknown name %q", ErrInvalidField, f.Name)
		}
		if !valueMatches(k, f.Value) {
			return fmt.Errorf("%w: wrong value type for %q", ErrInvalidField, f.Name)
		}
	}
	return nil
}

func valueMatches(k kind, v any) bool {
	switch k {
	case kindBool:
		_, ok := v.(bool)
		return ok
	case kindString:
		_, ok := v.(string)
		return ok
	case kindNumber:
		switch v.(type) {
		case float64, int, json.Number:
			return true
		}
	}
	return false
}

// OnlyEnabled drops fields whose enabled flag is off.
func OnlyEnabled(fields []Field) []Field {
	out := make([]Field, 0, len(fields))
	for _, f := range fields {
		if f.Enabled {
			out = append(out, f)
		}
	}
	return out
}

// ByName keys fields by name. Last write wins on duplicates, which the
// unique-per-theme constraint rules out for stored data.
func ByName(fields []Field) map[string]Field {
	out := make(map[string]Field, len(fields))
	for _, f := range fields {
		out[f.Name] = f
	}
	return out
}

// NameValue projects a field record down to plain name→value pairs,
// the shape delivered to display instances.
func NameValue(fields map[string]Field) map[string]any {
	out := make(map[string]any, len(fields))
	for name, f := range fields {
		out[name] = f.Value
	}
	return out
}
