package resolve

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

// a Tuesday at 10:00
var tuesdayMorning = time.Date(2025, time.March, 4, 10, 0, 0, 0, time.UTC)

func alwaysTrue() json.RawMessage {
	return json.RawMessage(condition.DefaultJSON)
}

func weekdayIs(day float64) json.RawMessage {
	raw, _ := json.Marshal(condition.Condition{
		Type: condition.TypeWeekday, Operator: condition.OpEq, Value: day,
	})
	return raw
}

func userRule(id, index int, enabled bool, cond json.RawMessage, fields ...theme.Field) model.Rule {
	return model.Rule{
		ID:              id,
		ConfigurationID: 1,
		Enabled:         enabled,
		Index:           index,
		Condition:       cond,
		Theme:           &model.Theme{ID: 100 + id, Fields: fields},
	}
}

func tickerRule(id, index int, cond json.RawMessage, fields ...theme.Field) model.Rule {
	group := model.InternalGroupNewsTicker
	r := userRule(id, index, true, cond, fields...)
	r.InternalGroup = &group
	return r
}

func TestEffectiveTheme_DefaultsOnly(t *testing.T) {
	got, err := EffectiveTheme(nil, nil, condition.At(tuesdayMorning))
	require.NoError(t, err)

	assert.Equal(t, map[string]any{
		theme.FieldHideClock:        false,
		theme.FieldClockColor:       "#ff0000",
		theme.FieldClockSize:        float64(64),
		theme.FieldNewsTickerText:   "",
		theme.FieldNewsTickerSpeed:  float64(50),
		theme.FieldNewsTickerLoop:   float64(0),
		theme.FieldNewsTickerHidden: false,
	}, got)
}

func TestEffectiveTheme_BaseFields(t *testing.T) {
	base := []theme.Field{
		{Name: theme.FieldClockColor, Value: "#000000", Enabled: true},
		// disabled fields keep their value but are not applied
		{Name: theme.FieldClockSize, Value: float64(200), Enabled: false},
	}

	got, err := EffectiveTheme(base, nil, condition.At(tuesdayMorning))
	require.NoError(t, err)

	assert.Equal(t, "#000000", got[theme.FieldClockColor])
	assert.Equal(t, float64(64), got[theme.FieldClockSize])
}

func TestEffectiveTheme_LowestIndexWins(t *testing.T) {
	base := []theme.Field{{Name: theme.FieldClockColor, Value: "#000000", Enabled: true}}
	rules := []model.Rule{
		userRule(2, 1, true, alwaysTrue(),
			theme.Field{Name: theme.FieldClockColor, Value: "#222222", Enabled: true}),
		userRule(1, 0, true, alwaysTrue(),
			theme.Field{Name: theme.FieldClockColor, Value: "#111111", Enabled: true}),
	}

	got, err := EffectiveTheme(base, rules, condition.At(tuesdayMorning))
	require.NoError(t, err)
	assert.Equal(t, "#111111", got[theme.FieldClockColor])
}

func TestEffectiveTheme_LowerPriorityStillFills(t *testing.T) {
	rules := []model.Rule{
		userRule(1, 0, true, alwaysTrue(),
			theme.Field{Name: theme.FieldClockColor, Value: "#111111", Enabled: true}),
		userRule(2, 1, true, alwaysTrue(),
			theme.Field{Name: theme.FieldClockColor, Value: "#222222", Enabled: true},
			theme.Field{Name: theme.FieldClockSize, Value: float64(96), Enabled: true}),
	}

	got, err := EffectiveTheme(nil, rules, condition.At(tuesdayMorning))
	require.NoError(t, err)

	// the higher-priority rule wins the contested field, the rest of
	// the lower-priority rule still applies
	assert.Equal(t, "#111111", got[theme.FieldClockColor])
	assert.Equal(t, float64(96), got[theme.FieldClockSize])
}

func TestEffectiveTheme_InactiveRulesIgnored(t *testing.T) {
	rules := []model.Rule{
		// condition does not hold on a Tuesday
		userRule(1, 0, true, weekdayIs(5),
			theme.Field{Name: theme.FieldClockColor, Value: "#111111", Enabled: true}),
		// disabled regardless of its condition
		userRule(2, 1, false, alwaysTrue(),
			theme.Field{Name: theme.FieldClockSize, Value: float64(96), Enabled: true}),
	}

	got, err := EffectiveTheme(nil, rules, condition.At(tuesdayMorning))
	require.NoError(t, err)

	assert.Equal(t, "#ff0000", got[theme.FieldClockColor])
	assert.Equal(t, float64(64), got[theme.FieldClockSize])
}

func TestEffectiveTheme_DisabledRuleFieldFallsThrough(t *testing.T) {
	rules := []model.Rule{
		userRule(1, 0, true, alwaysTrue(),
			theme.Field{Name: theme.FieldClockColor, Value: "#111111", Enabled: false}),
	}

	got, err := EffectiveTheme(nil, rules, condition.At(tuesdayMorning))
	require.NoError(t, err)
	assert.Equal(t, "#ff0000", got[theme.FieldClockColor])
}

func TestEffectiveTheme_TickerLayersOnTop(t *testing.T) {
	rules := []model.Rule{
		userRule(1, 0, true, alwaysTrue(),
			theme.Field{Name: theme.FieldClockColor, Value: "#111111", Enabled: true}),
		tickerRule(2, 0, alwaysTrue(),
			theme.Field{Name: theme.FieldNewsTickerText, Value: "exam week", Enabled: true},
			theme.Field{Name: theme.FieldNewsTickerSpeed, Value: float64(80), Enabled: true}),
	}

	got, err := EffectiveTheme(nil, rules, condition.At(tuesdayMorning))
	require.NoError(t, err)

	assert.Equal(t, "#111111", got[theme.FieldClockColor])
	assert.Equal(t, "exam week", got[theme.FieldNewsTickerText])
	assert.Equal(t, float64(80), got[theme.FieldNewsTickerSpeed])
}

func TestEffectiveTheme_Deterministic(t *testing.T) {
	base := []theme.Field{{Name: theme.FieldClockColor, Value: "#000000", Enabled: true}}
	rules := []model.Rule{
		userRule(1, 0, true, weekdayIs(2),
			theme.Field{Name: theme.FieldClockSize, Value: float64(96), Enabled: true}),
		userRule(2, 1, true, alwaysTrue(),
			theme.Field{Name: theme.FieldHideClock, Value: true, Enabled: true}),
	}
	circ := condition.At(tuesdayMorning)

	first, err := EffectiveTheme(base, rules, circ)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := EffectiveTheme(base, rules, circ)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestEffectiveTheme_CorruptDataFailsClosed(t *testing.T) {
	badCondition := []model.Rule{
		userRule(1, 0, true, json.RawMessage(`{"type":"hour","operator":"eq","value":99}`)),
	}
	_, err := EffectiveTheme(nil, badCondition, condition.At(tuesdayMorning))
	assert.ErrorIs(t, err, condition.ErrInvalid)

	badField := []model.Rule{
		userRule(1, 0, true, alwaysTrue(),
			theme.Field{Name: "marquee", Value: "x", Enabled: true}),
	}
	_, err = EffectiveTheme(nil, badField, condition.At(tuesdayMorning))
	assert.ErrorIs(t, err, theme.ErrInvalidField)

	badBase := []theme.Field{{Name: theme.FieldClockSize, Value: "huge", Enabled: true}}
	_, err = EffectiveTheme(badBase, nil, condition.At(tuesdayMorning))
	assert.ErrorIs(t, err, theme.ErrInvalidField)
}

func TestEffectiveTheme_RuleWithoutThemeSkipped(t *testing.T) {
	r := userRule(1, 0, true, alwaysTrue())
	r.Theme = nil

	got, err := EffectiveTheme(nil, []model.Rule{r}, condition.At(tuesdayMorning))
	require.NoError(t, err)
	assert.Equal(t, "#ff0000", got[theme.FieldClockColor])
}
