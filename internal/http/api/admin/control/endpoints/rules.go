package endpoints

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/kubagp1/school-clock/internal/condition"
	"github.com/kubagp1/school-clock/internal/db"
	"github.com/kubagp1/school-clock/internal/http/api"
	"github.com/kubagp1/school-clock/internal/http/api/admin/control/packets"
	"github.com/kubagp1/school-clock/internal/model"
	"github.com/kubagp1/school-clock/internal/rules"
)

type RuleController struct {
	store db.Store
}

func newRuleController(store db.Store) *RuleController {
	return &RuleController{store: store}
}

// RuleModule mounts all authenticated rule endpoints. Creation and
// reordering live under the owning configuration; everything else is
// addressed by rule id.
func RuleModule(store db.Store) api.Module {
	ctl := newRuleController(store)
	return api.ModuleFunc(func(c *api.Controller) {
		c.GET("/configurations/:id/rules", ctl.listRules)
		c.POST("/configurations/:id/rules", ctl.createRule)
		c.PUT("/configurations/:id/rules/order", ctl.reorderRules)
		c.GET("/rules/:id", ctl.getRule)
		c.PUT("/rules/:id", ctl.updateRule)
		c.PUT("/rules/:id/condition", ctl.updateCondition)
		c.DELETE("/rules/:id", ctl.deleteRule)
	})
}

func (rc *RuleController) listRules(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	configurationID, apiErr := rc.ownedConfigurationID(ctx, user)
	if apiErr != nil {
		return nil, apiErr
	}

	all, err := rc.store.ListRules(configurationID, nil)
	if err != nil {
		log.Error().Err(err).Int("configuration_id", configurationID).Msg("[rule] list failed")
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not list rules"}
	}

	out := make([]packets.RuleResponse, 0, len(all))
	for _, r := range all {
		out = append(out, mapRule(r))
	}
	return out, nil
}

func (rc *RuleController) createRule(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	configurationID, apiErr := rc.ownedConfigurationID(ctx, user)
	if apiErr != nil {
		return nil, apiErr
	}

	var req packets.CreateRuleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	th, err := rc.store.GetThemeByID(req.ThemeID)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "theme does not exist"}
	}
	if th.CreatedBy != user.ID || th.Internal {
		return nil, &api.APIError{Code: http.StatusForbidden, Message: "forbidden"}
	}

	created, err := rc.store.CreateRule(configurationID, req.Name, req.ThemeID)
	if err != nil {
		log.Error().Err(err).Int("configuration_id", configurationID).Msg("[rule] create failed")
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not create rule"}
	}

	go notifyConfigurationUpdated(rc.store, configurationID)
	return mapRule(created), nil
}

// reorderRules applies a whole new ordering for the configuration's
// user rules in one shot. Partial batches are rejected so a stale
// dashboard cannot scramble rules it has never seen.
func (rc *RuleController) reorderRules(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	configurationID, apiErr := rc.ownedConfigurationID(ctx, user)
	if apiErr != nil {
		return nil, apiErr
	}

	var req []packets.RuleOrderEntry
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	entries := make([]rules.Entry, 0, len(req))
	for _, e := range req {
		entries = append(entries, rules.Entry{ID: e.ID, Index: e.Index})
	}

	if err := rc.store.ReorderRules(configurationID, entries); err != nil {
		if errors.Is(err, rules.ErrDuplicateID) || errors.Is(err, rules.ErrDuplicateIndex) || errors.Is(err, rules.ErrBatchCover) {
			return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
		}
		log.Error().Err(err).Int("configuration_id", configurationID).Msg("[rule] reorder failed")
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not reorder rules"}
	}

	go notifyConfigurationUpdated(rc.store, configurationID)

	ordered, err := rc.store.ListRules(configurationID, nil)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not list rules"}
	}
	out := make([]packets.RuleResponse, 0, len(ordered))
	for _, r := range ordered {
		out = append(out, mapRule(r))
	}
	return out, nil
}

func (rc *RuleController) getRule(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	r, apiErr := rc.ownedRule(ctx, user)
	if apiErr != nil {
		return nil, apiErr
	}
	return mapRule(*r), nil
}

func (rc *RuleController) updateRule(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	r, apiErr := rc.ownedRule(ctx, user)
	if apiErr != nil {
		return nil, apiErr
	}

	var req packets.UpdateRuleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	th, err := rc.store.GetThemeByID(req.ThemeID)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "theme does not exist"}
	}
	if th.CreatedBy != user.ID || th.Internal {
		return nil, &api.APIError{Code: http.StatusForbidden, Message: "forbidden"}
	}

	if err := rc.store.UpdateRule(r.ID, req.Name, *req.Enabled, req.ThemeID); err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not update rule"}
	}

	go notifyConfigurationUpdated(rc.store, r.ConfigurationID)

	updated, _ := rc.store.GetRuleByID(r.ID)
	return mapRule(updated), nil
}

// updateCondition validates the new condition tree before it is stored
// and returns the leaf count so the dashboard can warn when an edit
// collapses a large tree.
func (rc *RuleController) updateCondition(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	r, apiErr := rc.ownedRule(ctx, user)
	if apiErr != nil {
		return nil, apiErr
	}

	var req packets.UpdateRuleConditionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	cond, err := condition.Parse(req.Condition)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	if err := rc.store.UpdateRuleCondition(r.ID, req.Condition); err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not update condition"}
	}

	go notifyConfigurationUpdated(rc.store, r.ConfigurationID)

	return packets.ConditionResponse{
		Condition: req.Condition,
		LeafCount: condition.CountLeaves(cond),
	}, nil
}

func (rc *RuleController) deleteRule(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	r, apiErr := rc.ownedRule(ctx, user)
	if apiErr != nil {
		return nil, apiErr
	}

	if err := rc.store.DeleteRule(r.ID); err != nil {
		log.Error().Err(err).Int("rule_id", r.ID).Msg("[rule] delete failed")
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not delete rule"}
	}

	go notifyConfigurationUpdated(rc.store, r.ConfigurationID)
	return nil, nil
}

// ownedRule resolves :id to a user rule the caller owns. Internal
// rules reject with not found so their ids are not probeable.
func (rc *RuleController) ownedRule(ctx *gin.Context, user *model.User) (*model.Rule, *api.APIError) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "invalid id"}
	}
	owner, err := rc.store.RuleOwner(id)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusNotFound, Message: "not found"}
	}
	if owner != user.ID {
		return nil, &api.APIError{Code: http.StatusForbidden, Message: "forbidden"}
	}
	r, err := rc.store.GetRuleByID(id)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusNotFound, Message: "not found"}
	}
	if !r.IsUserRule() {
		return nil, &api.APIError{Code: http.StatusNotFound, Message: "not found"}
	}
	return &r, nil
}

func (rc *RuleController) ownedConfigurationID(ctx *gin.Context, user *model.User) (int, *api.APIError) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return 0, &api.APIError{Code: http.StatusBadRequest, Message: "invalid id"}
	}
	owner, err := rc.store.ConfigurationOwner(id)
	if err != nil {
		return 0, &api.APIError{Code: http.StatusNotFound, Message: "not found"}
	}
	if owner != user.ID {
		return 0, &api.APIError{Code: http.StatusForbidden, Message: "forbidden"}
	}
	return id, nil
}
