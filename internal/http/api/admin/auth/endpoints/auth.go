package endpoints

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/kubagp1/school-clock/internal/db"
	"github.com/kubagp1/school-clock/internal/http/api"
	"github.com/kubagp1/school-clock/internal/http/api/admin/auth/packets"
	"github.com/kubagp1/school-clock/internal/http/middleware"
	"github.com/kubagp1/school-clock/internal/model"
)

type AccountController struct {
	jwtSecret string
	store     db.Store
}

// AuthPublicModule mounts signup and login, the only endpoints
// reachable without a token.
func AuthPublicModule(jwtSecret string, store db.Store) api.Module {
	ctl := &AccountController{jwtSecret: jwtSecret, store: store}
	return api.ModuleFunc(func(c *api.Controller) {
		c.PUBLIC_POST("/auth/signup", ctl.signup)
		c.PUBLIC_POST("/auth/login", ctl.login)
	})
}

// AuthSessionModule mounts the profile endpoints of the logged-in
// operator.
func AuthSessionModule(jwtSecret string, store db.Store) api.Module {
	ctl := &AccountController{jwtSecret: jwtSecret, store: store}
	return api.ModuleFunc(func(c *api.Controller) {
		c.GET("/auth/current_profile", ctl.profile)
		c.PUT("/auth/current_profile", ctl.updateProfile)
	})
}

func (a *AccountController) signup(ctx *gin.Context) (any, *api.APIError) {
	var req packets.SignupRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	if existing, _ := a.store.GetUserByEmail(req.Email); existing != nil {
		log.Warn().Str("email", req.Email).Msg("signup with registered email")
		return nil, &api.APIError{Code: http.StatusConflict, Message: "email already registered"}
	}

	hashed, err := middleware.HashPassword(req.Password)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not hash password"}
	}
	userID, err := a.store.CreateUser(req.Email, hashed, req.Name)
	if err != nil {
		log.Error().Err(err).Msg("[auth] signup: could not create user")
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not create user"}
	}

	return a.issueToken(userID)
}

func (a *AccountController) login(ctx *gin.Context) (any, *api.APIError) {
	var req packets.LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	u, err := a.store.GetUserByEmail(req.Email)
	if err != nil || u == nil || !middleware.CheckPassword(u.HashedPassword, req.Password) {
		// same answer for unknown email and wrong password
		return nil, &api.APIError{Code: http.StatusUnauthorized, Message: "invalid credentials"}
	}

	return a.issueToken(u.ID)
}

func (a *AccountController) profile(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	return mapProfile(user), nil
}

func (a *AccountController) updateProfile(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	var req packets.UpdateCurrentProfileRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	if req.Email != user.Email {
		if other, _ := a.store.GetUserByEmail(req.Email); other != nil {
			return nil, &api.APIError{Code: http.StatusConflict, Message: "email already in use"}
		}
	}
	if err := a.store.UpdateUserProfile(user.ID, req.Email, req.Name); err != nil {
		log.Error().Err(err).Int("user_id", user.ID).Msg("[auth] profile update failed")
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not update profile"}
	}

	updated, err := a.store.GetUserByID(user.ID)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not load profile"}
	}
	return mapProfile(updated), nil
}

func (a *AccountController) issueToken(userID int) (any, *api.APIError) {
	token, err := middleware.GenerateJWT(userID, a.jwtSecret)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not generate token"}
	}
	return gin.H{"token": token}, nil
}

func mapProfile(u *model.User) packets.ProfileResponse {
	return packets.ProfileResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		CreatedAt: u.CreatedAt.Format(time.RFC3339),
		UpdatedAt: u.UpdatedAt.Format(time.RFC3339),
	}
}
