package api

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/kubagp1/school-clock/internal/db"
	"github.com/kubagp1/school-clock/internal/http/middleware"
)

// Module is one mountable feature: a set of endpoints registered on a
// Controller.
type Module interface {
	Mount(c *Controller)
}

// ModuleFunc adapts a plain function into a Module.
type ModuleFunc func(c *Controller)

func (f ModuleFunc) Mount(c *Controller) { f(c) }

// GroupConfig describes how one route group is mounted.
type GroupConfig struct {
	Prefix string

	// Auth guards the whole group with JWTMiddleware; SecretKey and
	// Store are required when it is set.
	Auth      bool
	SecretKey string
	Store     db.Store

	Middleware []gin.HandlerFunc
}

// MountGroup attaches the modules' endpoints to the engine under the
// configured prefix.
func MountGroup(r *gin.Engine, cfg GroupConfig, modules ...Module) {
	grp := r.Group(cfg.Prefix)

	for _, mw := range cfg.Middleware {
		grp.Use(mw)
	}
	if cfg.Auth {
		if cfg.SecretKey == "" || cfg.Store == nil {
			log.Fatal().Str("prefix", cfg.Prefix).Msg("authenticated group mounted without secret or store")
		}
		grp.Use(middleware.JWTMiddleware(cfg.SecretKey, cfg.Store))
	}

	ctl := &Controller{Group: grp}
	for _, m := range modules {
		m.Mount(ctl)
	}
}
