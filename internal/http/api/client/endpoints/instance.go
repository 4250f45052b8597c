package endpoints

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/kubagp1/school-clock/internal/condition"
	"github.com/kubagp1/school-clock/internal/db"
	"github.com/kubagp1/school-clock/internal/http/api"
	"github.com/kubagp1/school-clock/internal/http/api/client/packets"
	"github.com/kubagp1/school-clock/internal/model"
	"github.com/kubagp1/school-clock/internal/redis"
	"github.com/kubagp1/school-clock/internal/resolve"
	"github.com/kubagp1/school-clock/internal/theme"
)

type InstanceController struct {
	store db.Store
}

// InstanceModule mounts the endpoints a paired display polls. Both
// identify the caller by its secret rather than a session.
func InstanceModule(store db.Store) api.Module {
	ctl := &InstanceController{store: store}
	return api.ModuleFunc(func(c *api.Controller) {
		c.PUBLIC_GET("/instance", ctl.getState)
		c.PUBLIC_GET("/instance/effective", ctl.getEffectiveTheme)
	})
}

// getState returns the full configuration the display resolves
// locally. An ETag is cached per configuration and dropped on every
// mutation, so an unchanged configuration answers 304 without
// touching postgres for the payload.
func (ic *InstanceController) getState(ctx *gin.Context) (any, *api.APIError) {
	in, apiErr := ic.caller(ctx)
	if apiErr != nil {
		return nil, apiErr
	}

	etagKey := fmt.Sprintf("configuration:%d:etag", in.ConfigurationID)
	etag, ok := redis.Get(ctx, etagKey)
	if !ok {
		etag = uuid.NewString()
		redis.Set(ctx, etagKey, etag, 0)
	}
	if match := ctx.GetHeader("If-None-Match"); match != "" && match == etag {
		ctx.AbortWithStatus(http.StatusNotModified)
		return nil, nil
	}

	conf, err := ic.store.GetConfigurationByID(in.ConfigurationID)
	if err != nil {
		log.Error().Err(err).Int("configuration_id", in.ConfigurationID).Msg("[client] load configuration failed")
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not load configuration"}
	}

	ctx.Header("ETag", etag)
	return buildState(*in, conf), nil
}

// getEffectiveTheme resolves the configuration on the server against
// the current wall clock, for displays too thin to evaluate
// conditions themselves.
func (ic *InstanceController) getEffectiveTheme(ctx *gin.Context) (any, *api.APIError) {
	in, apiErr := ic.caller(ctx)
	if apiErr != nil {
		return nil, apiErr
	}

	conf, err := ic.store.GetConfigurationByID(in.ConfigurationID)
	if err != nil {
		log.Error().Err(err).Int("configuration_id", in.ConfigurationID).Msg("[client] load configuration failed")
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not load configuration"}
	}

	var baseFields []theme.Field
	if conf.BaseTheme != nil {
		baseFields = conf.BaseTheme.Fields
	}

	now := time.Now()
	fields, err := resolve.EffectiveTheme(baseFields, conf.Rules, condition.At(now))
	if err != nil {
		log.Error().Err(err).Int("configuration_id", in.ConfigurationID).Msg("[client] resolve failed")
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not resolve theme"}
	}

	return packets.EffectiveThemeResponse{
		Fields:     fields,
		ResolvedAt: now.Format(time.RFC3339),
	}, nil
}

// caller authenticates the display by its secret and records the poll
// as a liveness signal.
func (ic *InstanceController) caller(ctx *gin.Context) (*model.Instance, *api.APIError) {
	secret := ctx.Query("secret")
	if secret == "" {
		return nil, &api.APIError{Code: http.StatusUnauthorized, Message: "missing secret"}
	}
	in, err := ic.store.GetInstanceBySecret(secret)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusUnauthorized, Message: "unknown secret"}
	}
	if err := ic.store.TouchInstance(in.ID, time.Now()); err != nil {
		log.Error().Err(err).Int("instance_id", in.ID).Msg("[client] could not record last_seen")
	}
	return &in, nil
}

func buildState(in model.Instance, conf model.Configuration) packets.InstanceStateResponse {
	out := packets.InstanceStateResponse{
		InstanceID:      in.ID,
		Name:            in.Name,
		ConfigurationID: conf.ID,
		Rules:           []packets.RulePayload{},
	}
	if conf.BaseTheme != nil {
		out.BaseTheme = packets.ThemePayload{Fields: conf.BaseTheme.Fields}
	}
	for _, r := range conf.Rules {
		p := packets.RulePayload{
			ID:            r.ID,
			Name:          r.Name,
			Enabled:       r.Enabled,
			Index:         r.Index,
			InternalGroup: r.InternalGroup,
			Condition:     r.Condition,
		}
		if r.Theme != nil {
			p.Theme = packets.ThemePayload{Fields: r.Theme.Fields}
		}
		out.Rules = append(out.Rules, p)
	}
	return out
}
