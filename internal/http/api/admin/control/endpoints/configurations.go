package endpoints

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/kubagp1/school-clock/internal/db"
	"github.com/kubagp1/school-clock/internal/http/api"
	"github.com/kubagp1/school-clock/internal/http/api/admin/control/packets"
	"github.com/kubagp1/school-clock/internal/model"
)

type ConfigurationController struct {
	store db.Store
}

func newConfigurationController(store db.Store) *ConfigurationController {
	return &ConfigurationController{store: store}
}

// ConfigurationModule mounts all authenticated /configurations endpoints.
func ConfigurationModule(store db.Store) api.Module {
	ctl := newConfigurationController(store)
	return api.ModuleFunc(func(c *api.Controller) {
		c.GET("/configurations", ctl.listConfigurations)
		c.POST("/configurations", ctl.createConfiguration)
		c.GET("/configurations/:id", ctl.getConfiguration)
		c.PUT("/configurations/:id", ctl.renameConfiguration)
		c.PUT("/configurations/:id/base_theme", ctl.changeBaseTheme)
		c.DELETE("/configurations/:id", ctl.deleteConfiguration)
	})
}

func (cc *ConfigurationController) listConfigurations(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	all, err := cc.store.ListConfigurations(user.ID)
	if err != nil {
		log.Error().Err(err).Msg("[configuration] list: could not list configurations")
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not list configurations"}
	}

	out := make([]packets.ConfigurationResponse, 0, len(all))
	for _, conf := range all {
		out = append(out, mapConfiguration(conf))
	}
	return out, nil
}

func (cc *ConfigurationController) createConfiguration(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	var req packets.CreateConfigurationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	if apiErr := cc.checkThemeUsable(req.BaseThemeID, user); apiErr != nil {
		return nil, apiErr
	}

	created, err := cc.store.CreateConfiguration(req.Name, req.BaseThemeID, user.ID)
	if err != nil {
		log.Error().Err(err).Msg("[configuration] create: could not create configuration")
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not create configuration"}
	}
	return mapConfiguration(created), nil
}

func (cc *ConfigurationController) getConfiguration(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	conf, apiErr := cc.ownedConfiguration(ctx, user)
	if apiErr != nil {
		return nil, apiErr
	}
	return mapConfiguration(*conf), nil
}

func (cc *ConfigurationController) renameConfiguration(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	conf, apiErr := cc.ownedConfiguration(ctx, user)
	if apiErr != nil {
		return nil, apiErr
	}

	var req packets.RenameRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	if err := cc.store.RenameConfiguration(conf.ID, req.Name); err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not rename configuration"}
	}

	updated, _ := cc.store.GetConfigurationByID(conf.ID)
	return mapConfiguration(updated), nil
}

func (cc *ConfigurationController) changeBaseTheme(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	conf, apiErr := cc.ownedConfiguration(ctx, user)
	if apiErr != nil {
		return nil, apiErr
	}

	var req packets.ChangeBaseThemeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}
	if apiErr := cc.checkThemeUsable(req.BaseThemeID, user); apiErr != nil {
		return nil, apiErr
	}

	if err := cc.store.SetBaseTheme(conf.ID, req.BaseThemeID); err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not change base theme"}
	}

	go notifyConfigurationUpdated(cc.store, conf.ID)

	updated, _ := cc.store.GetConfigurationByID(conf.ID)
	return mapConfiguration(updated), nil
}

func (cc *ConfigurationController) deleteConfiguration(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	conf, apiErr := cc.ownedConfiguration(ctx, user)
	if apiErr != nil {
		return nil, apiErr
	}

	if err := cc.store.DeleteConfiguration(conf.ID); err != nil {
		log.Error().Err(err).Int("configuration_id", conf.ID).Msg("[configuration] delete failed")
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not delete configuration"}
	}
	return nil, nil
}

// checkThemeUsable rejects base themes the caller does not own and
// internal themes, which only the news ticker may reference.
func (cc *ConfigurationController) checkThemeUsable(themeID int, user *model.User) *api.APIError {
	th, err := cc.store.GetThemeByID(themeID)
	if err != nil {
		return &api.APIError{Code: http.StatusBadRequest, Message: "theme does not exist"}
	}
	if th.CreatedBy != user.ID || th.Internal {
		return &api.APIError{Code: http.StatusForbidden, Message: "forbidden"}
	}
	return nil
}

func (cc *ConfigurationController) ownedConfiguration(ctx *gin.Context, user *model.User) (*model.Configuration, *api.APIError) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "invalid id"}
	}
	conf, err := cc.store.GetConfigurationByID(id)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusNotFound, Message: "not found"}
	}
	if conf.CreatedBy != user.ID {
		return nil, &api.APIError{Code: http.StatusForbidden, Message: "forbidden"}
	}
	return &conf, nil
}
