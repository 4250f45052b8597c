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
	"github.com/kubagp1/school-clock/internal/theme"
)

type ThemeController struct {
	store db.Store
}

func newThemeController(store db.Store) *ThemeController {
	return &ThemeController{store: store}
}

// ThemeModule mounts all authenticated /themes endpoints.
func ThemeModule(store db.Store) api.Module {
	ctl := newThemeController(store)
	return api.ModuleFunc(func(c *api.Controller) {
		c.GET("/themes", ctl.listThemes)
		c.POST("/themes", ctl.createTheme)
		c.GET("/themes/:id", ctl.getTheme)
		c.PUT("/themes/:id", ctl.renameTheme)
		c.PUT("/themes/:id/fields", ctl.setFields)
		c.DELETE("/themes/:id", ctl.deleteTheme)
	})
}

func (t *ThemeController) listThemes(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	all, err := t.store.ListThemes(user.ID)
	if err != nil {
		log.Error().Err(err).Msg("[theme] list: could not list themes")
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not list themes"}
	}

	out := make([]packets.ThemeResponse, 0, len(all))
	for _, th := range all {
		out = append(out, mapTheme(th))
	}
	return out, nil
}

func (t *ThemeController) createTheme(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	var req packets.CreateThemeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	if err := theme.Validate(req.Fields); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	created, err := t.store.CreateTheme(req.Name, user.ID, false, req.Fields)
	if err != nil {
		log.Error().Err(err).Msg("[theme] create: could not create theme")
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not create theme"}
	}
	return mapTheme(created), nil
}

func (t *ThemeController) getTheme(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	th, apiErr := t.ownedTheme(ctx, user)
	if apiErr != nil {
		return nil, apiErr
	}
	return mapTheme(*th), nil
}

func (t *ThemeController) renameTheme(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	th, apiErr := t.ownedTheme(ctx, user)
	if apiErr != nil {
		return nil, apiErr
	}

	var req packets.RenameRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	if err := t.store.RenameTheme(th.ID, req.Name); err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not rename theme"}
	}

	updated, _ := t.store.GetThemeByID(th.ID)
	return mapTheme(updated), nil
}

// PUT /themes/:id/fields replaces the theme's whole field set. Fields
// are validated against the closed set before anything is written.
func (t *ThemeController) setFields(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	th, apiErr := t.ownedTheme(ctx, user)
	if apiErr != nil {
		return nil, apiErr
	}

	var req packets.SetThemeFieldsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}
	if err := theme.Validate(req.Fields); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	if err := t.store.SetThemeFields(th.ID, req.Fields); err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not update theme fields"}
	}

	go t.notifyThemeUsers(th.ID)

	updated, _ := t.store.GetThemeByID(th.ID)
	return mapTheme(updated), nil
}

func (t *ThemeController) deleteTheme(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	th, apiErr := t.ownedTheme(ctx, user)
	if apiErr != nil {
		return nil, apiErr
	}

	if err := t.store.DeleteTheme(th.ID); err != nil {
		// themes referenced by a configuration or rule are protected
		return nil, &api.APIError{Code: http.StatusConflict, Message: "theme is in use"}
	}
	return nil, nil
}

// notifyThemeUsers pokes every configuration that renders this theme,
// whether as base theme or through a rule.
func (t *ThemeController) notifyThemeUsers(themeID int) {
	ids, err := t.store.ConfigurationIDsByTheme(themeID)
	if err != nil {
		return
	}
	for _, id := range ids {
		notifyConfigurationUpdated(t.store, id)
	}
}

func (t *ThemeController) ownedTheme(ctx *gin.Context, user *model.User) (*model.Theme, *api.APIError) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "invalid id"}
	}
	th, err := t.store.GetThemeByID(id)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusNotFound, Message: "not found"}
	}
	if th.CreatedBy != user.ID || th.Internal {
		return nil, &api.APIError{Code: http.StatusForbidden, Message: "forbidden"}
	}
	return &th, nil
}
