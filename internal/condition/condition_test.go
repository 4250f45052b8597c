package condition

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// a Tuesday at 14:30:15
var tuesday = time.Date(2025, time.March, 4, 14, 30, 15, 0, time.UTC)

func TestEvaluate_EmptyBooleanNodes(t *testing.T) {
	circ := At(tuesday)

	assert.True(t, Evaluate(Condition{Type: TypeBoolean, Operator: OpAnd}, circ))
	assert.False(t, Evaluate(Condition{Type: TypeBoolean, Operator: OpOr}, circ))
	assert.True(t, Evaluate(Default(), circ))
}

func TestEvaluate_NumericLeaves(t *testing.T) {
	circ := At(tuesday)

	cases := []struct {
		name string
		cond Condition
		want bool
	}{
		{"weekday eq matches", Condition{Type: TypeWeekday, Operator: OpEq, Value: 2}, true},
		{"weekday neq", Condition{Type: TypeWeekday, Operator: OpNeq, Value: 2}, false},
		{"hour gt", Condition{Type: TypeHour, Operator: OpGt, Value: 13}, true},
		{"hour gt equal is false", Condition{Type: TypeHour, Operator: OpGt, Value: 14}, false},
		{"minute lt", Condition{Type: TypeMinute, Operator: OpLt, Value: 31}, true},
		{"month eq one-based", Condition{Type: TypeMonth, Operator: OpEq, Value: 3}, true},
		{"day eq", Condition{Type: TypeDay, Operator: OpEq, Value: 4}, true},
		{"year eq", Condition{Type: TypeYear, Operator: OpEq, Value: 2025}, true},
		{"second lt equal is false", Condition{Type: TypeSecond, Operator: OpLt, Value: 15}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Evaluate(tc.cond, circ))
		})
	}
}

func TestEvaluate_NestedBoolean(t *testing.T) {
	circ := At(tuesday)

	// tuesday AND (hour < 9 OR hour > 12)
	cond := Condition{
		Type: TypeBoolean, Operator: OpAnd,
		Children: []Condition{
			{Type: TypeWeekday, Operator: OpEq, Value: 2},
			{
				Type: TypeBoolean, Operator: OpOr,
				Children: []Condition{
					{Type: TypeHour, Operator: OpLt, Value: 9},
					{Type: TypeHour, Operator: OpGt, Value: 12},
				},
			},
		},
	}
	assert.True(t, Evaluate(cond, circ))

	cond.Children[0].Value = 3
	assert.False(t, Evaluate(cond, circ))
}

func TestEvaluate_DatetimeWindow(t *testing.T) {
	start := time.Date(2025, time.March, 4, 8, 0, 0, 0, time.UTC)
	end := time.Date(2025, time.March, 4, 16, 0, 0, 0, time.UTC)
	window := Condition{
		Type: TypeBoolean, Operator: OpAnd,
		Children: []Condition{
			{Type: TypeDatetime, Operator: OpGt, Datetime: start},
			{Type: TypeDatetime, Operator: OpLt, Datetime: end},
		},
	}

	assert.True(t, Evaluate(window, At(tuesday)))
	// the bounds themselves are excluded
	assert.False(t, Evaluate(window, At(start)))
	assert.False(t, Evaluate(window, At(end)))
	assert.False(t, Evaluate(window, At(start.Add(-time.Second))))
}

func TestEvaluate_DatetimeEqualityMillisecond(t *testing.T) {
	at := time.Date(2025, time.March, 4, 14, 30, 15, 500*int(time.Millisecond), time.UTC)
	eq := Condition{Type: TypeDatetime, Operator: OpEq, Datetime: at}

	// sub-millisecond difference still counts as equal
	assert.True(t, Evaluate(eq, At(at.Add(400*time.Microsecond))))
	assert.False(t, Evaluate(eq, At(at.Add(time.Millisecond))))

	neq := Condition{Type: TypeDatetime, Operator: OpNeq, Datetime: at}
	assert.False(t, Evaluate(neq, At(at)))
	assert.True(t, Evaluate(neq, At(at.Add(2*time.Millisecond))))
}

func TestCountLeaves(t *testing.T) {
	assert.Equal(t, 0, CountLeaves(Default()))
	assert.Equal(t, 1, CountLeaves(Condition{Type: TypeHour, Operator: OpEq, Value: 8}))

	nested := Condition{
		Type: TypeBoolean, Operator: OpOr,
		Children: []Condition{
			{Type: TypeWeekday, Operator: OpEq, Value: 0},
			{
				Type: TypeBoolean, Operator: OpAnd,
				Children: []Condition{
					{Type: TypeHour, Operator: OpGt, Value: 8},
					{Type: TypeHour, Operator: OpLt, Value: 16},
				},
			},
		},
	}
	assert.Equal(t, 3, CountLeaves(nested))
}

func TestValidate_Rejections(t *testing.T) {
	cases := []struct {
		name string
		cond Condition
	}{
		{"unknown type", Condition{Type: "fortnight", Operator: OpEq, Value: 1}},
		{"weekday gt", Condition{Type: TypeWeekday, Operator: OpGt, Value: 2}},
		{"weekday lt", Condition{Type: TypeWeekday, Operator: OpLt, Value: 2}},
		{"weekday out of range", Condition{Type: TypeWeekday, Operator: OpEq, Value: 7}},
		{"day zero", Condition{Type: TypeDay, Operator: OpEq, Value: 0}},
		{"month thirteen", Condition{Type: TypeMonth, Operator: OpEq, Value: 13}},
		{"hour 24", Condition{Type: TypeHour, Operator: OpEq, Value: 24}},
		{"minute 60", Condition{Type: TypeMinute, Operator: OpEq, Value: 60}},
		{"negative year", Condition{Type: TypeYear, Operator: OpEq, Value: -1}},
		{"boolean with comparison operator", Condition{Type: TypeBoolean, Operator: OpEq}},
		{"numeric leaf with boolean operator", Condition{Type: TypeHour, Operator: OpAnd, Value: 8}},
		{"datetime without value", Condition{Type: TypeDatetime, Operator: OpGt}},
		{"invalid child", Condition{
			Type: TypeBoolean, Operator: OpAnd,
			Children: []Condition{{Type: TypeHour, Operator: OpEq, Value: 25}},
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Validate(tc.cond)
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}
}

func TestValidate_Accepts(t *testing.T) {
	assert.NoError(t, Validate(Default()))
	assert.NoError(t, Validate(Condition{Type: TypeWeekday, Operator: OpNeq, Value: 6}))
	assert.NoError(t, Validate(Condition{Type: TypeDatetime, Operator: OpLt, Datetime: tuesday}))
}

func TestParse_DefaultJSON(t *testing.T) {
	c, err := Parse([]byte(DefaultJSON))
	require.NoError(t, err)
	assert.Equal(t, Default(), c)
}

func TestParse_RejectsInvalid(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"not json", `{`},
		{"weekday ordering", `{"type":"weekday","operator":"gt","value":2}`},
		{"boolean without conditions", `{"type":"boolean","operator":"and"}`},
		{"datetime numeric value", `{"type":"datetime","operator":"gt","value":12345}`},
		{"datetime bad string", `{"type":"datetime","operator":"gt","value":"yesterday"}`},
		{"hour string value", `{"type":"hour","operator":"eq","value":"8"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.raw))
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}
}

func TestJSON_RoundTrip(t *testing.T) {
	cond := Condition{
		Type: TypeBoolean, Operator: OpAnd,
		Children: []Condition{
			{Type: TypeWeekday, Operator: OpEq, Value: 2},
			{Type: TypeDatetime, Operator: OpLt, Datetime: tuesday},
			{Type: TypeBoolean, Operator: OpOr, Children: []Condition{
				{Type: TypeMinute, Operator: OpGt, Value: 29},
			}},
		},
	}

	raw, err := json.Marshal(cond)
	require.NoError(t, err)

	var back Condition
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.True(t, back.Children[1].Datetime.Equal(tuesday))

	// time.Time values may differ in location after a round trip, so
	// compare everything else structurally
	back.Children[1].Datetime = cond.Children[1].Datetime
	assert.Equal(t, cond, back)
}

func TestJSON_EmptyBooleanMarshalsConditionsArray(t *testing.T) {
	raw, err := json.Marshal(Default())
	require.NoError(t, err)
	assert.JSONEq(t, DefaultJSON, string(raw))
}

func TestAt_Decomposition(t *testing.T) {
	circ := At(tuesday)

	assert.Equal(t, 2, circ.Weekday)
	assert.Equal(t, 4, circ.Day)
	assert.Equal(t, 3, circ.Month)
	assert.Equal(t, 2025, circ.Year)
	assert.Equal(t, 14, circ.Hour)
	assert.Equal(t, 30, circ.Minute)
	assert.Equal(t, 15, circ.Second)
	assert.True(t, circ.Datetime.Equal(tuesday))

	sunday := time.Date(2025, time.March, 2, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 0, At(sunday).Weekday)
}
