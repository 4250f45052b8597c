package endpoints

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/kubagp1/school-clock/internal/db"
	"github.com/kubagp1/school-clock/internal/http/api"
	"github.com/kubagp1/school-clock/internal/http/api/admin/control/packets"
	"github.com/kubagp1/school-clock/internal/model"
	"github.com/kubagp1/school-clock/internal/ticker"
)

type NewsTickerController struct {
	store db.Store
}

func newNewsTickerController(store db.Store) *NewsTickerController {
	return &NewsTickerController{store: store}
}

// NewsTickerModule mounts all authenticated news ticker endpoints.
// Tickers are views over internal rules, so everything is addressed
// through the owning configuration.
func NewsTickerModule(store db.Store) api.Module {
	ctl := newNewsTickerController(store)
	return api.ModuleFunc(func(c *api.Controller) {
		c.GET("/configurations/:id/newstickers", ctl.listNewsTickers)
		c.POST("/configurations/:id/newstickers", ctl.createNewsTicker)
		c.PUT("/configurations/:id/newstickers/:ruleId", ctl.updateNewsTicker)
		c.DELETE("/configurations/:id/newstickers/:ruleId", ctl.deleteNewsTicker)
	})
}

func (nc *NewsTickerController) listNewsTickers(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	configurationID, apiErr := nc.ownedConfigurationID(ctx, user)
	if apiErr != nil {
		return nil, apiErr
	}

	rules, err := nc.store.ListNewsTickerRules(configurationID)
	if err != nil {
		log.Error().Err(err).Int("configuration_id", configurationID).Msg("[newsticker] list failed")
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not list news tickers"}
	}

	out := make([]packets.NewsTickerResponse, 0, len(rules))
	for _, r := range rules {
		nt, err := ticker.Decompose(r)
		if err != nil {
			// the adapter owns every rule in this group, so a rule it
			// cannot read back is corrupt data, not a partial result
			log.Error().Err(err).Int("rule_id", r.ID).Msg("[newsticker] malformed ticker rule")
			return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "news ticker data is corrupt"}
		}
		out = append(out, mapNewsTicker(nt))
	}
	return out, nil
}

func (nc *NewsTickerController) createNewsTicker(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	configurationID, apiErr := nc.ownedConfigurationID(ctx, user)
	if apiErr != nil {
		return nil, apiErr
	}

	nt, apiErr := nc.bindTicker(ctx, configurationID)
	if apiErr != nil {
		return nil, apiErr
	}

	created, apiErr := nc.replaceTicker(configurationID, nil, nt)
	if apiErr != nil {
		return nil, apiErr
	}
	return created, nil
}

// updateNewsTicker swaps out the whole rule and its internal theme
// rather than patching fields in place; the replacement happens in a
// single transaction so a display never observes a half-edited ticker.
func (nc *NewsTickerController) updateNewsTicker(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	configurationID, apiErr := nc.ownedConfigurationID(ctx, user)
	if apiErr != nil {
		return nil, apiErr
	}
	ruleID, apiErr := nc.tickerRuleID(ctx, configurationID)
	if apiErr != nil {
		return nil, apiErr
	}

	nt, apiErr := nc.bindTicker(ctx, configurationID)
	if apiErr != nil {
		return nil, apiErr
	}

	updated, apiErr := nc.replaceTicker(configurationID, &ruleID, nt)
	if apiErr != nil {
		return nil, apiErr
	}
	return updated, nil
}

func (nc *NewsTickerController) deleteNewsTicker(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	configurationID, apiErr := nc.ownedConfigurationID(ctx, user)
	if apiErr != nil {
		return nil, apiErr
	}
	ruleID, apiErr := nc.tickerRuleID(ctx, configurationID)
	if apiErr != nil {
		return nil, apiErr
	}

	if err := nc.store.DeleteNewsTicker(ruleID); err != nil {
		log.Error().Err(err).Int("rule_id", ruleID).Msg("[newsticker] delete failed")
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not delete news ticker"}
	}

	go notifyConfigurationUpdated(nc.store, configurationID)
	return nil, nil
}

func (nc *NewsTickerController) bindTicker(ctx *gin.Context, configurationID int) (model.NewsTicker, *api.APIError) {
	var req packets.NewsTickerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return model.NewsTicker{}, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}
	if !req.EndAt.After(req.StartAt) {
		return model.NewsTicker{}, &api.APIError{Code: http.StatusBadRequest, Message: "end_at must be after start_at"}
	}
	return model.NewsTicker{
		ConfigurationID:  configurationID,
		Text:             req.Text,
		Loop:             req.Loop,
		Speed:            req.Speed,
		ForceHiddenFalse: req.ForceHiddenFalse,
		StartAt:          req.StartAt,
		EndAt:            req.EndAt,
	}, nil
}

func (nc *NewsTickerController) replaceTicker(configurationID int, replaceRuleID *int, nt model.NewsTicker) (packets.NewsTickerResponse, *api.APIError) {
	cond, err := json.Marshal(ticker.Condition(nt))
	if err != nil {
		return packets.NewsTickerResponse{}, &api.APIError{Code: http.StatusInternalServerError, Message: "could not encode condition"}
	}

	rule, err := nc.store.ReplaceNewsTicker(configurationID, replaceRuleID, cond, ticker.Fields(nt))
	if err != nil {
		log.Error().Err(err).Int("configuration_id", configurationID).Msg("[newsticker] replace failed")
		return packets.NewsTickerResponse{}, &api.APIError{Code: http.StatusInternalServerError, Message: "could not save news ticker"}
	}

	go notifyConfigurationUpdated(nc.store, configurationID)

	saved, err := ticker.Decompose(rule)
	if err != nil {
		log.Error().Err(err).Int("rule_id", rule.ID).Msg("[newsticker] decompose after save failed")
		return packets.NewsTickerResponse{}, &api.APIError{Code: http.StatusInternalServerError, Message: "could not read back news ticker"}
	}
	return mapNewsTicker(saved), nil
}

// tickerRuleID checks that :ruleId names a newsTicker-group rule in
// this configuration before any mutation touches it.
func (nc *NewsTickerController) tickerRuleID(ctx *gin.Context, configurationID int) (int, *api.APIError) {
	id, err := strconv.Atoi(ctx.Param("ruleId"))
	if err != nil {
		return 0, &api.APIError{Code: http.StatusBadRequest, Message: "invalid id"}
	}
	r, err := nc.store.GetRuleByID(id)
	if err != nil {
		return 0, &api.APIError{Code: http.StatusNotFound, Message: "not found"}
	}
	if r.ConfigurationID != configurationID || !r.InGroup(model.InternalGroupNewsTicker) {
		return 0, &api.APIError{Code: http.StatusNotFound, Message: "not found"}
	}
	return id, nil
}

func (nc *NewsTickerController) ownedConfigurationID(ctx *gin.Context, user *model.User) (int, *api.APIError) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return 0, &api.APIError{Code: http.StatusBadRequest, Message: "invalid id"}
	}
	owner, err := nc.store.ConfigurationOwner(id)
	if err != nil {
		return 0, &api.APIError{Code: http.StatusNotFound, Message: "not found"}
	}
	if owner != user.ID {
		return 0, &api.APIError{Code: http.StatusForbidden, Message: "forbidden"}
	}
	return id, nil
}

func mapNewsTicker(nt model.NewsTicker) packets.NewsTickerResponse {
	return packets.NewsTickerResponse{
		ID:               nt.ID,
		ConfigurationID:  nt.ConfigurationID,
		Text:             nt.Text,
		Loop:             nt.Loop,
		Speed:            nt.Speed,
		ForceHiddenFalse: nt.ForceHiddenFalse,
		StartAt:          nt.StartAt.Format(time.RFC3339),
		EndAt:            nt.EndAt.Format(time.RFC3339),
	}
}
