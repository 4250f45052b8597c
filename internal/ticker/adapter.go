// Package ticker maps the operator-facing news ticker onto the
// general rule+condition+theme representation and back. A ticker is
// one newsTicker-group rule whose condition is a datetime window and
// whose internal theme carries the four ticker fields.
package ticker

import (
	"errors"
	"fmt"

	"github.com/kubagp1/school-clock/internal/condition"
	"github.com/kubagp1/school-clock/internal/model"
	"github.com/kubagp1/school-clock/internal/theme"
)

// ErrMalformed signals that a newsTicker-group rule does not have the
// shape this adapter writes. The adapter owns that data exclusively,
// so a decompose failure is a corruption defect, not a user error.
var ErrMalformed = errors.New("malformed news ticker rule")

// Condition builds the activation window: strictly after startAt and
// strictly before endAt.
func Condition(nt model.NewsTicker) condition.Condition {
	return condition.Condition{
		Type:     condition.TypeBoolean,
		Operator: condition.OpAnd,
		Children: []condition.Condition{
			{Type: condition.TypeDatetime, Operator: condition.OpGt, Datetime: nt.StartAt},
			{Type: condition.TypeDatetime, Operator: condition.OpLt, Datetime: nt.EndAt},
		},
	}
}

// Fields builds the internal theme's field set. The hidden field is
// always false-valued; forceHiddenFalse decides whether it is applied
// (overriding any rule that hides the ticker) or left to defer.
func Fields(nt model.NewsTicker) []theme.Field {
	return []theme.Field{
		{Name: theme.FieldNewsTickerText, Value: nt.Text, Enabled: true},
		{Name: theme.FieldNewsTickerSpeed, Value: nt.Speed, Enabled: true},
		{Name: theme.FieldNewsTickerLoop, Value: float64(nt.Loop), Enabled: true},
		{Name: theme.FieldNewsTickerHidden, Value: false, Enabled: nt.ForceHiddenFalse},
	}
}

// Decompose reverses the mapping for one newsTicker-group rule loaded
// with its theme fields.
func Decompose(r model.Rule) (model.NewsTicker, error) {
	nt := model.NewsTicker{ID: r.ID, ConfigurationID: r.ConfigurationID}

	if !r.InGroup(model.InternalGroupNewsTicker) || r.Theme == nil {
		return model.NewsTicker{}, fmt.Errorf("%w: rule %d is not a ticker rule", ErrMalformed, r.ID)
	}

	cond, err := condition.Parse(r.Condition)
	if err != nil {
		return model.NewsTicker{}, fmt.Errorf("%w: rule %d: %v", ErrMalformed, r.ID, err)
	}
	if cond.Type != condition.TypeBoolean || cond.Operator != condition.OpAnd || len(cond.Children) != 2 {
		return model.NewsTicker{}, fmt.Errorf("%w: rule %d: unexpected condition shape", ErrMalformed, r.ID)
	}
	for _, leaf := range cond.Children {
		if leaf.Type != condition.TypeDatetime {
			return model.NewsTicker{}, fmt.Errorf("%w: rule %d: non-datetime leaf", ErrMalformed, r.ID)
		}
		switch leaf.Operator {
		case condition.OpGt:
			nt.StartAt = leaf.Datetime
		case condition.OpLt:
			nt.EndAt = leaf.Datetime
		default:
			return model.NewsTicker{}, fmt.Errorf("%w: rule %d: leaf operator %q", ErrMalformed, r.ID, leaf.Operator)
		}
	}
	if nt.StartAt.IsZero() || nt.EndAt.IsZero() {
		return model.NewsTicker{}, fmt.Errorf("%w: rule %d: missing window bound", ErrMalformed, r.ID)
	}

	fields := theme.ByName(r.Theme.Fields)

	text, ok := fields[theme.FieldNewsTickerText]
	if !ok {
		return model.NewsTicker{}, fieldError(r.ID, theme.FieldNewsTickerText)
	}
	if nt.Text, ok = text.Value.(string); !ok {
		return model.NewsTicker{}, fieldError(r.ID, theme.FieldNewsTickerText)
	}

	speed, ok := fields[theme.FieldNewsTickerSpeed]
	if !ok {
		return model.NewsTicker{}, fieldError(r.ID, theme.FieldNewsTickerSpeed)
	}
	if nt.Speed, ok = numeric(speed.Value); !ok {
		return model.NewsTicker{}, fieldError(r.ID, theme.FieldNewsTickerSpeed)
	}

	loop, ok := fields[theme.FieldNewsTickerLoop]
	if !ok {
		return model.NewsTicker{}, fieldError(r.ID, theme.FieldNewsTickerLoop)
	}
	loopVal, ok := numeric(loop.Value)
	if !ok {
		return model.NewsTicker{}, fieldError(r.ID, theme.FieldNewsTickerLoop)
	}
	nt.Loop = int(loopVal)

	hidden, ok := fields[theme.FieldNewsTickerHidden]
	if !ok {
		return model.NewsTicker{}, fieldError(r.ID, theme.FieldNewsTickerHidden)
	}
	nt.ForceHiddenFalse = hidden.Enabled

	return nt, nil
}

func numeric(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	}
	return 0, false
}

func fieldError(ruleID int, name string) error {
	return fmt.Errorf("%w: rule %d: missing or invalid field %q", ErrMalformed, ruleID, name)
}
