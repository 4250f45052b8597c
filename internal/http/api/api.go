package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kubagp1/school-clock/internal/http/middleware"
	"github.com/kubagp1/school-clock/internal/model"
)

type APIError struct {
	Code    int
	Message string
}

// AuthHandlerFunc is a handler that needs the authenticated user;
// HandlerFunc serves public endpoints.
type AuthHandlerFunc func(ctx *gin.Context, user *model.User) (any, *APIError)
type HandlerFunc func(ctx *gin.Context) (any, *APIError)

// Controller wraps a gin group so modules can register endpoints with
// the (result, *APIError) handler shape instead of raw gin handlers.
type Controller struct {
	Group *gin.RouterGroup
}

func (c *Controller) GET(path string, h AuthHandlerFunc)    { c.Group.GET(path, resolveWithAuth(h)) }
func (c *Controller) POST(path string, h AuthHandlerFunc)   { c.Group.POST(path, resolveWithAuth(h)) }
func (c *Controller) PUT(path string, h AuthHandlerFunc)    { c.Group.PUT(path, resolveWithAuth(h)) }
func (c *Controller) DELETE(path string, h AuthHandlerFunc) { c.Group.DELETE(path, resolveWithAuth(h)) }

func (c *Controller) PUBLIC_GET(path string, h HandlerFunc)  { c.Group.GET(path, resolve(h)) }
func (c *Controller) PUBLIC_POST(path string, h HandlerFunc) { c.Group.POST(path, resolve(h)) }

func resolveWithAuth(h AuthHandlerFunc) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		user, ok := middleware.GetCurrentUser(ctx)
		if !ok {
			ctx.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		result, apiErr := h(ctx, user)
		if apiErr != nil {
			ctx.JSON(apiErr.Code, gin.H{"error": apiErr.Message})
			return
		}

		respond(ctx, result)
	}
}

func resolve(h HandlerFunc) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		result, apiErr := h(ctx)
		if apiErr != nil {
			ctx.JSON(apiErr.Code, gin.H{"error": apiErr.Message})
			return
		}

		respond(ctx, result)
	}
}

func respond(ctx *gin.Context, result any) {
	// a handler may have already written (e.g. a 304 on an ETag match)
	if ctx.Writer.Written() {
		return
	}
	if result == nil {
		ctx.Status(http.StatusNoContent)
		return
	}
	ctx.JSON(http.StatusOK, result)
}
