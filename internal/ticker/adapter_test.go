package ticker

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kubagp1/school-clock/internal/condition"
	"github.com/kubagp1/school-clock/internal/model"
	"github.com/kubagp1/school-clock/internal/theme"
)

var (
	startAt = time.Date(2025, time.June, 1, 8, 0, 0, 0, time.UTC)
	endAt   = time.Date(2025, time.June, 7, 18, 0, 0, 0, time.UTC)
)

func sampleTicker() model.NewsTicker {
	return model.NewsTicker{
		ConfigurationID:  1,
		Text:             "sports day friday",
		Loop:             3,
		Speed:            75,
		ForceHiddenFalse: true,
		StartAt:          startAt,
		EndAt:            endAt,
	}
}

// materialize builds the rule the store would persist for a ticker.
func materialize(t *testing.T, nt model.NewsTicker) model.Rule {
	t.Helper()
	raw, err := json.Marshal(Condition(nt))
	require.NoError(t, err)

	group := model.InternalGroupNewsTicker
	return model.Rule{
		ID:              nt.ID,
		ConfigurationID: nt.ConfigurationID,
		Enabled:         true,
		Condition:       raw,
		InternalGroup:   &group,
		Theme:           &model.Theme{ID: 9, Internal: true, Fields: Fields(nt)},
	}
}

func TestCondition_Window(t *testing.T) {
	cond := Condition(sampleTicker())

	require.NoError(t, condition.Validate(cond))
	assert.Equal(t, condition.TypeBoolean, cond.Type)
	assert.Equal(t, condition.OpAnd, cond.Operator)
	require.Len(t, cond.Children, 2)

	inside := condition.At(startAt.Add(24 * time.Hour))
	assert.True(t, condition.Evaluate(cond, inside))

	// both bounds are strict
	assert.False(t, condition.Evaluate(cond, condition.At(startAt)))
	assert.False(t, condition.Evaluate(cond, condition.At(endAt)))
	assert.False(t, condition.Evaluate(cond, condition.At(endAt.Add(time.Second))))
}

func TestFields_HiddenFollowsForceFlag(t *testing.T) {
	nt := sampleTicker()

	byName := theme.ByName(Fields(nt))
	require.NoError(t, theme.Validate(Fields(nt)))

	hidden := byName[theme.FieldNewsTickerHidden]
	assert.Equal(t, false, hidden.Value)
	assert.True(t, hidden.Enabled)

	nt.ForceHiddenFalse = false
	hidden = theme.ByName(Fields(nt))[theme.FieldNewsTickerHidden]
	assert.Equal(t, false, hidden.Value)
	assert.False(t, hidden.Enabled)

	assert.True(t, byName[theme.FieldNewsTickerText].Enabled)
	assert.True(t, byName[theme.FieldNewsTickerSpeed].Enabled)
	assert.True(t, byName[theme.FieldNewsTickerLoop].Enabled)
}

func TestDecompose_RoundTrip(t *testing.T) {
	nt := sampleTicker()
	nt.ID = 42

	got, err := Decompose(materialize(t, nt))
	require.NoError(t, err)

	assert.Equal(t, 42, got.ID)
	assert.Equal(t, nt.ConfigurationID, got.ConfigurationID)
	assert.Equal(t, nt.Text, got.Text)
	assert.Equal(t, nt.Loop, got.Loop)
	assert.Equal(t, nt.Speed, got.Speed)
	assert.Equal(t, nt.ForceHiddenFalse, got.ForceHiddenFalse)
	assert.True(t, got.StartAt.Equal(nt.StartAt))
	assert.True(t, got.EndAt.Equal(nt.EndAt))
}

func TestDecompose_RoundTripWithoutForceHidden(t *testing.T) {
	nt := sampleTicker()
	nt.ForceHiddenFalse = false

	got, err := Decompose(materialize(t, nt))
	require.NoError(t, err)
	assert.False(t, got.ForceHiddenFalse)
}

func TestDecompose_Rejections(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*model.Rule)
	}{
		{"wrong group", func(r *model.Rule) { r.InternalGroup = nil }},
		{"missing theme", func(r *model.Rule) { r.Theme = nil }},
		{"unparseable condition", func(r *model.Rule) { r.Condition = json.RawMessage(`{`) }},
		{"condition not a window", func(r *model.Rule) {
			r.Condition = json.RawMessage(condition.DefaultJSON)
		}},
		{"non-datetime leaf", func(r *model.Rule) {
			r.Condition = json.RawMessage(`{"type":"boolean","operator":"and","conditions":[
				{"type":"hour","operator":"gt","value":8},
				{"type":"hour","operator":"lt","value":18}]}`)
		}},
		{"eq leaf instead of bounds", func(r *model.Rule) {
			raw, _ := json.Marshal(condition.Condition{
				Type: condition.TypeBoolean, Operator: condition.OpAnd,
				Children: []condition.Condition{
					{Type: condition.TypeDatetime, Operator: condition.OpEq, Datetime: startAt},
					{Type: condition.TypeDatetime, Operator: condition.OpLt, Datetime: endAt},
				},
			})
			r.Condition = raw
		}},
		{"two lower bounds", func(r *model.Rule) {
			raw, _ := json.Marshal(condition.Condition{
				Type: condition.TypeBoolean, Operator: condition.OpAnd,
				Children: []condition.Condition{
					{Type: condition.TypeDatetime, Operator: condition.OpGt, Datetime: startAt},
					{Type: condition.TypeDatetime, Operator: condition.OpGt, Datetime: endAt},
				},
			})
			r.Condition = raw
		}},
		{"missing text field", func(r *model.Rule) {
			r.Theme.Fields = r.Theme.Fields[1:]
		}},
		{"text field wrong type", func(r *model.Rule) {
			r.Theme.Fields[0].Value = 12
		}},
		{"speed field wrong type", func(r *model.Rule) {
			r.Theme.Fields[1].Value = "fast"
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := materialize(t, sampleTicker())
			tc.mutate(&r)

			_, err := Decompose(r)
			assert.ErrorIs(t, err, ErrMalformed)
		})
	}
}
