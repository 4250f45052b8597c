package endpoints

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/kubagp1/school-clock/internal/db"
	"github.com/kubagp1/school-clock/internal/http/api"
	"github.com/kubagp1/school-clock/internal/http/api/admin/control/packets"
	"github.com/kubagp1/school-clock/internal/model"
	"github.com/kubagp1/school-clock/internal/pairing"
	"github.com/kubagp1/school-clock/internal/redis"
)

type InstanceController struct {
	store db.Store
}

func newInstanceController(store db.Store) *InstanceController {
	return &InstanceController{store: store}
}

// InstanceModule mounts all authenticated /instances endpoints.
func InstanceModule(store db.Store) api.Module {
	ctl := newInstanceController(store)
	return api.ModuleFunc(func(c *api.Controller) {
		c.GET("/instances", ctl.listInstances)
		c.POST("/instances", ctl.createInstance)
		c.GET("/instances/:id", ctl.getInstance)
		c.PUT("/instances/:id", ctl.renameInstance)
		c.POST("/instances/:id/secret", ctl.linkInstance)
		c.DELETE("/instances/:id", ctl.deleteInstance)
	})
}

func (ic *InstanceController) listInstances(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	all, err := ic.store.ListInstances(user.ID)
	if err != nil {
		log.Error().Err(err).Msg("[instance] list failed")
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not list instances"}
	}

	out := make([]packets.InstanceResponse, 0, len(all))
	for _, in := range all {
		out = append(out, mapInstance(in))
	}
	return out, nil
}

func (ic *InstanceController) createInstance(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	var req packets.CreateInstanceRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	owner, err := ic.store.ConfigurationOwner(req.ConfigurationID)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "configuration does not exist"}
	}
	if owner != user.ID {
		return nil, &api.APIError{Code: http.StatusForbidden, Message: "forbidden"}
	}

	created, err := ic.store.CreateInstance(req.ConfigurationID, req.Name)
	if err != nil {
		log.Error().Err(err).Msg("[instance] create failed")
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not create instance"}
	}
	return mapInstance(created), nil
}

func (ic *InstanceController) getInstance(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	in, apiErr := ic.ownedInstance(ctx, user)
	if apiErr != nil {
		return nil, apiErr
	}
	return mapInstance(*in), nil
}

func (ic *InstanceController) renameInstance(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	in, apiErr := ic.ownedInstance(ctx, user)
	if apiErr != nil {
		return nil, apiErr
	}

	var req packets.RenameRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	if err := ic.store.RenameInstance(in.ID, req.Name); err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not rename instance"}
	}

	updated, _ := ic.store.GetInstanceByID(in.ID)
	return mapInstance(updated), nil
}

// linkInstance completes a pairing handshake: the operator types the
// code shown on the display, a fresh secret is minted for the
// instance, and the secret is parked in redis for the display's next
// poll. Re-linking an already paired instance rotates its secret.
func (ic *InstanceController) linkInstance(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	in, apiErr := ic.ownedInstance(ctx, user)
	if apiErr != nil {
		return nil, apiErr
	}

	var req packets.LinkInstanceRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	if _, ok := redis.Get(ctx, pairing.TokenKey(req.RequestCode)); !ok {
		return nil, &api.APIError{Code: http.StatusNotFound, Message: "pairing request not found or expired"}
	}

	secret := uuid.NewString()
	if err := ic.store.SetInstanceSecret(in.ID, secret); err != nil {
		log.Error().Err(err).Int("instance_id", in.ID).Msg("[instance] link failed")
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not link instance"}
	}

	redis.Set(ctx, pairing.SecretKey(req.RequestCode), secret, pairing.TTL)

	updated, _ := ic.store.GetInstanceByID(in.ID)
	return mapInstance(updated), nil
}

func (ic *InstanceController) deleteInstance(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	in, apiErr := ic.ownedInstance(ctx, user)
	if apiErr != nil {
		return nil, apiErr
	}

	if err := ic.store.DeleteInstance(in.ID); err != nil {
		log.Error().Err(err).Int("instance_id", in.ID).Msg("[instance] delete failed")
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not delete instance"}
	}
	return nil, nil
}

func (ic *InstanceController) ownedInstance(ctx *gin.Context, user *model.User) (*model.Instance, *api.APIError) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "invalid id"}
	}
	owner, err := ic.store.InstanceOwner(id)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusNotFound, Message: "not found"}
	}
	if owner != user.ID {
		return nil, &api.APIError{Code: http.StatusForbidden, Message: "forbidden"}
	}
	in, err := ic.store.GetInstanceByID(id)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusNotFound, Message: "not found"}
	}
	return &in, nil
}
