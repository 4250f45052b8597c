package endpoints

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kubagp1/school-clock/internal/condition"
	"github.com/kubagp1/school-clock/internal/db"
	"github.com/kubagp1/school-clock/internal/http/api/admin/control/packets"
	"github.com/kubagp1/school-clock/internal/model"
	"github.com/kubagp1/school-clock/internal/ticker"
)

// tickerListStore stubs just what listNewsTickers touches; any other
// store call panics through the embedded nil interface.
type tickerListStore struct {
	db.Store
	owner int
	rules []model.Rule
}

func (s *tickerListStore) ConfigurationOwner(id int) (int, error) { return s.owner, nil }

func (s *tickerListStore) ListNewsTickerRules(configurationID int) ([]model.Rule, error) {
	return s.rules, nil
}

func tickerListContext(t *testing.T) *gin.Context {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctx, _ := gin.CreateTestContext(httptest.NewRecorder())
	ctx.Params = gin.Params{{Key: "id", Value: "1"}}
	return ctx
}

func wellFormedTickerRule(t *testing.T, id int) model.Rule {
	t.Helper()
	nt := model.NewsTicker{
		ConfigurationID: 1,
		Text:            "open house saturday",
		Speed:           60,
		StartAt:         time.Date(2025, time.October, 1, 8, 0, 0, 0, time.UTC),
		EndAt:           time.Date(2025, time.October, 4, 18, 0, 0, 0, time.UTC),
	}
	raw, err := json.Marshal(ticker.Condition(nt))
	require.NoError(t, err)

	group := model.InternalGroupNewsTicker
	return model.Rule{
		ID:              id,
		ConfigurationID: 1,
		Enabled:         true,
		Condition:       raw,
		InternalGroup:   &group,
		Theme:           &model.Theme{ID: 10 + id, Internal: true, Fields: ticker.Fields(nt)},
	}
}

func TestListNewsTickers_ReturnsDecomposedRules(t *testing.T) {
	store := &tickerListStore{owner: 7, rules: []model.Rule{wellFormedTickerRule(t, 42)}}
	ctl := newNewsTickerController(store)

	result, apiErr := ctl.listNewsTickers(tickerListContext(t), &model.User{ID: 7})
	require.Nil(t, apiErr)

	listed, ok := result.([]packets.NewsTickerResponse)
	require.True(t, ok)
	require.Len(t, listed, 1)
	assert.Equal(t, 42, listed[0].ID)
	assert.Equal(t, "open house saturday", listed[0].Text)
}

// A ticker rule the adapter cannot read back is corrupt data; the
// list must fail loudly instead of quietly omitting the rule.
func TestListNewsTickers_CorruptRuleFailsTheList(t *testing.T) {
	corrupt := wellFormedTickerRule(t, 43)
	corrupt.Condition = json.RawMessage(condition.DefaultJSON)

	store := &tickerListStore{owner: 7, rules: []model.Rule{wellFormedTickerRule(t, 42), corrupt}}
	ctl := newNewsTickerController(store)

	result, apiErr := ctl.listNewsTickers(tickerListContext(t), &model.User{ID: 7})
	require.NotNil(t, apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.Code)
	assert.Nil(t, result)
}

func TestListNewsTickers_ForeignConfigurationForbidden(t *testing.T) {
	store := &tickerListStore{owner: 7}
	ctl := newNewsTickerController(store)

	_, apiErr := ctl.listNewsTickers(tickerListContext(t), &model.User{ID: 8})
	require.NotNil(t, apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.Code)
}
