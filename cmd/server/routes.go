package main

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/kubagp1/school-clock/internal/db"
	"github.com/kubagp1/school-clock/internal/http/api"
	authapi "github.com/kubagp1/school-clock/internal/http/api/admin/auth/endpoints"
	adminapi "github.com/kubagp1/school-clock/internal/http/api/admin/control/endpoints"
	clientapi "github.com/kubagp1/school-clock/internal/http/api/client/endpoints"
)

// RegisterRoutes sets up all application routes
func RegisterRoutes(r *gin.Engine, env Environment, store db.Store) {
	// CORS
	r.Use(cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool { return true },
		AllowMethods: []string{
			"GET",
			"POST",
			"PUT",
			"PATCH",
			"DELETE",
			"OPTIONS",
			"HEAD",
		},
		AllowHeaders: []string{
			"Origin",
			"Content-Type",
			"Authorization",
			"Accept",
			"If-None-Match",
		},
		ExposeHeaders: []string{
			"Content-Length",
			"ETag",
		},
		AllowCredentials: false,
	}))

	api.MountGroup(r, api.GroupConfig{
		Prefix: "/api/admin",
		Auth:   false,
	},
		authapi.AuthPublicModule(env.SecretKey, store),
	)

	api.MountGroup(r, api.GroupConfig{
		Prefix:    "/api/admin",
		Auth:      true,
		SecretKey: env.SecretKey,
		Store:     store,
	},
		// control modules
		adminapi.ThemeModule(store),
		adminapi.ConfigurationModule(store),
		adminapi.RuleModule(store),
		adminapi.NewsTickerModule(store),
		adminapi.InstanceModule(store),
		// session endpoints that require auth
		authapi.AuthSessionModule(env.SecretKey, store),
	)

	api.MountGroup(r, api.GroupConfig{
		Prefix: "/api/client",
	},
		clientapi.PairingModule(),
		clientapi.InstanceModule(store),
	)
}
