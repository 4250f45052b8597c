package condition

import (
	"encoding/json"
	"fmt"
	"time"
)

// ErrInvalid is wrapped by every validation failure in this package so
// callers can map malformed condition input to a bad-request response.
var ErrInvalid = fmt.Errorf("invalid condition")

// Type discriminates the variants of the condition union. TypeBoolean
// nodes combine children; every other type compares one circumstance.
type Type string

const (
	TypeBoolean  Type = "boolean"
	TypeWeekday  Type = "weekday"
	TypeDay      Type = "day"
	TypeMonth    Type = "month"
	TypeYear     Type = "year"
	TypeHour     Type = "hour"
	TypeMinute   Type = "minute"
	TypeSecond   Type = "second"
	TypeDatetime Type = "datetime"
)

type Operator string

const (
	OpAnd Operator = "and"
	OpOr  Operator = "or"

	OpEq  Operator = "eq"
	OpNeq Operator = "neq"
	OpGt  Operator = "gt"
	OpLt  Operator = "lt"
)

// Condition is one node of a condition tree. A boolean node owns its
// children exclusively; trees are rebuilt wholesale on every edit, so
// there is never any sharing between nodes.
type Condition struct {
	Type     Type
	Operator Operator

	// Value is set on numeric leaves, Datetime on datetime leaves,
	// Children on boolean nodes. The other fields are zero.
	Value    float64
	Datetime time.Time
	Children []Condition
}

// Default returns the condition new rules start with: an AND of
// nothing, which matches under any circumstances.
func Default() Condition {
	return Condition{Type: TypeBoolean, Operator: OpAnd, Children: []Condition{}}
}

// DefaultJSON is the serialized form of Default, suitable for column
// defaults and seed data.
const DefaultJSON = `{"type":"boolean","operator":"and","conditions":[]}`

// Evaluate reports whether the condition holds under the given
// circumstances. It is pure and total over validated trees: an empty
// AND is vacuously true, an empty OR vacuously false.
func Evaluate(c Condition, circ Circumstances) bool {
	if c.Type == TypeBoolean {
		if c.Operator == OpAnd {
			for _, child := range c.Children {
				if !Evaluate(child, circ) {
					return false
				}
			}
			return true
		}
		for _, child := range c.Children {
			if Evaluate(child, circ) {
				return true
			}
		}
		return false
	}

	if c.Type == TypeDatetime {
		return evaluateDatetime(c, circ.Datetime)
	}

	have := float64(circ.value(c.Type))
	switch c.Operator {
	case OpEq:
		return have == c.Value
	case OpNeq:
		return have != c.Value
	case OpGt:
		return have > c.Value
	case OpLt:
		return have < c.Value
	}
	return false
}

// Datetime equality is resolved at millisecond precision; ordering
// comparisons are strict on the full instant.
func evaluateDatetime(c Condition, at time.Time) bool {
	switch c.Operator {
	case OpEq:
		return at.Truncate(time.Millisecond).Equal(c.Datetime.Truncate(time.Millisecond))
	case OpNeq:
		return !at.Truncate(time.Millisecond).Equal(c.Datetime.Truncate(time.Millisecond))
	case OpGt:
		return at.After(c.Datetime)
	case OpLt:
		return at.Before(c.Datetime)
	}
	return false
}

// CountLeaves returns the number of simple conditions in the tree.
// The dashboard uses it to warn before deleting a boolean subtree that
// still carries several comparisons.
func CountLeaves(c Condition) int {
	if c.Type != TypeBoolean {
		return 1
	}
	n := 0
	for _, child := range c.Children {
		n += CountLeaves(child)
	}
	return n
}

// Parse decodes untrusted JSON into a validated condition tree.
func Parse(raw []byte) (Condition, error) {
	var c Condition
	if err := json.Unmarshal(raw, &c); err != nil {
		return Condition{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if err := Validate(c); err != nil {
		return Condition{}, err
	}
	return c, nil
}

// numericRange bounds the value of each numeric leaf type.
var numericRange = map[Type][2]float64{
	TypeWeekday: {0, 6},
	TypeDay:     {1, 31},
	TypeMonth:   {1, 12},
	TypeYear:    {0, 1<<31 - 1},
	TypeHour:    {0, 23},
	TypeMinute:  {0, 59},
	TypeSecond:  {0, 59},
}

// Validate checks that every node matches one of the union variants:
// known type, operator legal for that type, value inside the type's
// range. Weekday never allows ordering comparisons.
func Validate(c Condition) error {
	switch c.Type {
	case TypeBoolean:
		if c.Operator != OpAnd && c.Operator != OpOr {
			return fmt.Errorf("%w: boolean operator %q", ErrInvalid, c.Operator)
		}
		for _, child := range c.Children {
			if err := Validate(child); err != nil {
				return err
			}
		}
		return nil

	case TypeDatetime:
		if !comparisonOperator(c.Operator) {
			return fmt.Errorf("%w: datetime operator %q", ErrInvalid, c.Operator)
		}
		if c.Datetime.IsZero() {
			return fmt.Errorf("%w: datetime value missing", ErrInvalid)
		}
		return nil

	case TypeWeekday:
		if c.Operator != OpEq && c.Operator != OpNeq {
			return fmt.Errorf("%w: weekday operator %q", ErrInvalid, c.Operator)
		}
		return validateRange(c)

	case TypeDay, TypeMonth, TypeYear, TypeHour, TypeMinute, TypeSecond:
		if !comparisonOperator(c.Operator) {
			return fmt.Errorf("%w: %s operator %q", ErrInvalid, c.Type, c.Operator)
		}
		return validateRange(c)
	}
	return fmt.Errorf("%w: unknown type %q", ErrInvalid, c.Type)
}

func comparisonOperator(op Operator) bool {
	return op == OpEq || op == OpNeq || op == OpGt || op == OpLt
}

func validateRange(c Condition) error {
	bounds := numericRange[c.Type]
	if c.Value < bounds[0] || c.Value > bounds[1] {
		return fmt.Errorf("%w: %s value %v out of range", ErrInvalid, c.Type, c.Value)
	}
	return nil
}

// wireCondition is the JSON shape shared with the dashboard and the
// stored rule column. Datetime values travel as RFC 3339 strings,
// numeric values as numbers; boolean nodes carry "conditions" instead
// of a value.
type wireCondition struct {
	Type       Type            `json:"type"`
	Operator   Operator        `json:"operator"`
	Value      json.RawMessage `json:"value,omitempty"`
	Conditions []Condition     `json:"conditions,omitempty"`
}

func (c Condition) MarshalJSON() ([]byte, error) {
	w := wireCondition{Type: c.Type, Operator: c.Operator}

	switch c.Type {
	case TypeBoolean:
		children := c.Children
		if children == nil {
			children = []Condition{}
		}
		// marshal explicitly so an empty tree round-trips as [] and not null
		raw, err := json.Marshal(children)
		if err != nil {
			return nil, err
		}
		return json.Marshal(struct {
			Type       Type            `json:"type"`
			Operator   Operator        `json:"operator"`
			Conditions json.RawMessage `json:"conditions"`
		}{c.Type, c.Operator, raw})
	case TypeDatetime:
		raw, err := json.Marshal(c.Datetime.Format(time.RFC3339Nano))
		if err != nil {
			return nil, err
		}
		w.Value = raw
	default:
		raw, err := json.Marshal(c.Value)
		if err != nil {
			return nil, err
		}
		w.Value = raw
	}
	return json.Marshal(w)
}

func (c *Condition) UnmarshalJSON(data []byte) error {
	var w wireCondition
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	*c = Condition{Type: w.Type, Operator: w.Operator}

	switch w.Type {
	case TypeBoolean:
		if w.Conditions == nil {
			return fmt.Errorf("%w: boolean node without conditions", ErrInvalid)
		}
		c.Children = w.Conditions
	case TypeDatetime:
		var s string
		if err := json.Unmarshal(w.Value, &s); err != nil {
			return fmt.Errorf("%w: datetime value is not a string", ErrInvalid)
		}
		t, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return fmt.Errorf("%w: datetime value %q", ErrInvalid, s)
		}
		c.Datetime = t
	default:
		if err := json.Unmarshal(w.Value, &c.Value); err != nil {
			return fmt.Errorf("%w: %s value is not a number", ErrInvalid, w.Type)
		}
	}
	return nil
}
