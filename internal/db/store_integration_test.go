package db

import (
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kubagp1/school-clock/internal/condition"
	"github.com/kubagp1/school-clock/internal/model"
	"github.com/kubagp1/school-clock/internal/rules"
	"github.com/kubagp1/school-clock/internal/theme"
	"github.com/kubagp1/school-clock/internal/ticker"
)

// testStore runs the suite against a real database when
// TEST_DATABASE_URL is set and skips otherwise.
func testStore(t *testing.T) Store {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	if DB == nil {
		require.NoError(t, Init(url))
		require.NoError(t, RunMigrations("../../migrations"))
	}
	return NewStore(nil)
}

func seedUser(t *testing.T, s Store) int {
	t.Helper()
	email := time.Now().Format("20060102150405.000000000") + "@example.com"
	id, err := s.CreateUser(email, "hashed", nil)
	require.NoError(t, err)
	return id
}

func seedConfiguration(t *testing.T, s Store, userID int) model.Configuration {
	t.Helper()
	th, err := s.CreateTheme("base", userID, false, []theme.Field{
		{Name: theme.FieldClockColor, Value: "#000000", Enabled: true},
	})
	require.NoError(t, err)

	conf, err := s.CreateConfiguration("main hall", th.ID, userID)
	require.NoError(t, err)
	return conf
}

func TestStore_ThemeLifecycle(t *testing.T) {
	s := testStore(t)
	userID := seedUser(t, s)

	created, err := s.CreateTheme("exam mode", userID, false, []theme.Field{
		{Name: theme.FieldHideClock, Value: true, Enabled: true},
		{Name: theme.FieldClockSize, Value: float64(96), Enabled: false},
	})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)

	got, err := s.GetThemeByID(created.ID)
	require.NoError(t, err)
	assert.Equal(t, "exam mode", got.Name)
	require.Len(t, got.Fields, 2)

	// jsonb round trip preserves value types
	byName := theme.ByName(got.Fields)
	assert.Equal(t, true, byName[theme.FieldHideClock].Value)
	assert.Equal(t, float64(96), byName[theme.FieldClockSize].Value)
	assert.False(t, byName[theme.FieldClockSize].Enabled)

	require.NoError(t, s.SetThemeFields(created.ID, []theme.Field{
		{Name: theme.FieldClockColor, Value: "#ffffff", Enabled: true},
	}))
	got, err = s.GetThemeByID(created.ID)
	require.NoError(t, err)
	require.Len(t, got.Fields, 1)
	assert.Equal(t, theme.FieldClockColor, got.Fields[0].Name)

	require.NoError(t, s.RenameTheme(created.ID, "renamed"))
	listed, err := s.ListThemes(userID)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "renamed", listed[0].Name)

	require.NoError(t, s.DeleteTheme(created.ID))
	_, err = s.GetThemeByID(created.ID)
	assert.Error(t, err)
}

func TestStore_RuleIndexingAndReorder(t *testing.T) {
	s := testStore(t)
	userID := seedUser(t, s)
	conf := seedConfiguration(t, s, userID)

	ruleTheme, err := s.CreateTheme("override", userID, false, nil)
	require.NoError(t, err)

	var ids []int
	for _, name := range []string{"first", "second", "third"} {
		r, err := s.CreateRule(conf.ID, name, ruleTheme.ID)
		require.NoError(t, err)
		assert.True(t, r.IsUserRule())
		assert.JSONEq(t, condition.DefaultJSON, string(r.Condition))
		ids = append(ids, r.ID)
	}

	// fresh rules are appended at the end of the order
	listed, err := s.ListRules(conf.ID, nil)
	require.NoError(t, err)
	require.Len(t, listed, 3)
	for i, r := range listed {
		assert.Equal(t, i, r.Index)
	}

	require.NoError(t, s.ReorderRules(conf.ID, []rules.Entry{
		{ID: ids[0], Index: 2},
		{ID: ids[1], Index: 0},
		{ID: ids[2], Index: 1},
	}))

	listed, err = s.ListRules(conf.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, []int{ids[1], ids[2], ids[0]}, []int{listed[0].ID, listed[1].ID, listed[2].ID})

	// an incomplete batch rejects without changing anything
	err = s.ReorderRules(conf.ID, []rules.Entry{{ID: ids[0], Index: 0}})
	assert.ErrorIs(t, err, rules.ErrBatchCover)

	after, err := s.ListRules(conf.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, listed[0].ID, after[0].ID)
}

func TestStore_RuleConditionUpdate(t *testing.T) {
	s := testStore(t)
	userID := seedUser(t, s)
	conf := seedConfiguration(t, s, userID)

	ruleTheme, err := s.CreateTheme("override", userID, false, nil)
	require.NoError(t, err)
	r, err := s.CreateRule(conf.ID, "mornings", ruleTheme.ID)
	require.NoError(t, err)

	cond := json.RawMessage(`{"type":"hour","operator":"lt","value":12}`)
	require.NoError(t, s.UpdateRuleCondition(r.ID, cond))

	got, err := s.GetRuleByID(r.ID)
	require.NoError(t, err)
	assert.JSONEq(t, string(cond), string(got.Condition))
	require.NotNil(t, got.Theme)
	assert.Equal(t, ruleTheme.ID, got.Theme.ID)
}

func TestStore_NewsTickerReplaceAndDelete(t *testing.T) {
	s := testStore(t)
	userID := seedUser(t, s)
	conf := seedConfiguration(t, s, userID)

	nt := model.NewsTicker{
		ConfigurationID: conf.ID,
		Text:            "assembly at noon",
		Speed:           60,
		StartAt:         time.Date(2025, time.September, 1, 8, 0, 0, 0, time.UTC),
		EndAt:           time.Date(2025, time.September, 1, 12, 0, 0, 0, time.UTC),
	}
	cond, err := json.Marshal(ticker.Condition(nt))
	require.NoError(t, err)

	created, err := s.ReplaceNewsTicker(conf.ID, nil, cond, ticker.Fields(nt))
	require.NoError(t, err)
	assert.True(t, created.InGroup(model.InternalGroupNewsTicker))
	require.NotNil(t, created.Theme)
	assert.True(t, created.Theme.Internal)

	back, err := ticker.Decompose(created)
	require.NoError(t, err)
	assert.Equal(t, nt.Text, back.Text)
	assert.True(t, back.StartAt.Equal(nt.StartAt))

	// internal themes never leak into the owner's theme list
	themes, err := s.ListThemes(userID)
	require.NoError(t, err)
	for _, th := range themes {
		assert.False(t, th.Internal)
	}

	// replacing swaps rule and theme in one step
	nt.Text = "assembly moved to one"
	oldRuleID, oldThemeID := created.ID, created.ThemeID
	cond, err = json.Marshal(ticker.Condition(nt))
	require.NoError(t, err)

	replaced, err := s.ReplaceNewsTicker(conf.ID, &oldRuleID, cond, ticker.Fields(nt))
	require.NoError(t, err)
	assert.NotEqual(t, oldRuleID, replaced.ID)

	_, err = s.GetRuleByID(oldRuleID)
	assert.Error(t, err)
	_, err = s.GetThemeByID(oldThemeID)
	assert.Error(t, err)

	tickers, err := s.ListNewsTickerRules(conf.ID)
	require.NoError(t, err)
	require.Len(t, tickers, 1)

	require.NoError(t, s.DeleteNewsTicker(replaced.ID))
	tickers, err = s.ListNewsTickerRules(conf.ID)
	require.NoError(t, err)
	assert.Empty(t, tickers)
}

func TestStore_InstancePairingAndLiveness(t *testing.T) {
	s := testStore(t)
	userID := seedUser(t, s)
	conf := seedConfiguration(t, s, userID)

	in, err := s.CreateInstance(conf.ID, "gym entrance")
	require.NoError(t, err)
	assert.Nil(t, in.Secret)

	require.NoError(t, s.SetInstanceSecret(in.ID, "secret-1"))
	paired, err := s.GetInstanceBySecret("secret-1")
	require.NoError(t, err)
	assert.Equal(t, in.ID, paired.ID)

	seenAt := time.Now().Truncate(time.Second)
	require.NoError(t, s.TouchInstance(in.ID, seenAt))
	got, err := s.GetInstanceByID(in.ID)
	require.NoError(t, err)
	require.NotNil(t, got.LastSeen)

	// rotating the secret resets liveness
	require.NoError(t, s.SetInstanceSecret(in.ID, "secret-2"))
	got, err = s.GetInstanceByID(in.ID)
	require.NoError(t, err)
	assert.Nil(t, got.LastSeen)
	_, err = s.GetInstanceBySecret("secret-1")
	assert.Error(t, err)

	owner, err := s.InstanceOwner(in.ID)
	require.NoError(t, err)
	assert.Equal(t, userID, owner)
}

func TestStore_ConfigurationAggregate(t *testing.T) {
	s := testStore(t)
	userID := seedUser(t, s)
	conf := seedConfiguration(t, s, userID)

	ruleTheme, err := s.CreateTheme("override", userID, false, nil)
	require.NoError(t, err)
	_, err = s.CreateRule(conf.ID, "weekends", ruleTheme.ID)
	require.NoError(t, err)
	_, err = s.CreateInstance(conf.ID, "front door")
	require.NoError(t, err)

	got, err := s.GetConfigurationByID(conf.ID)
	require.NoError(t, err)
	require.NotNil(t, got.BaseTheme)
	assert.Equal(t, conf.BaseThemeID, got.BaseTheme.ID)
	assert.Len(t, got.Rules, 1)
	require.NotNil(t, got.Rules[0].Theme)
	assert.Len(t, got.Instances, 1)

	owner, err := s.ConfigurationOwner(conf.ID)
	require.NoError(t, err)
	assert.Equal(t, userID, owner)
}
