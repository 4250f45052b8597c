package endpoints

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/kubagp1/school-clock/internal/http/api"
	"github.com/kubagp1/school-clock/internal/http/api/client/packets"
	"github.com/kubagp1/school-clock/internal/pairing"
	"github.com/kubagp1/school-clock/internal/redis"
)

// PairingModule mounts the unauthenticated pairing handshake a fresh
// display runs before it has a secret.
func PairingModule() api.Module {
	return api.ModuleFunc(func(c *api.Controller) {
		c.PUBLIC_POST("/pairing/requests", openPairingRequest)
		c.PUBLIC_GET("/pairing/requests/:code", pollPairingRequest)
	})
}

// openPairingRequest mints a code for the display to show on screen.
// The claim token never leaves the display, so knowing the code alone
// is not enough to collect the secret later.
func openPairingRequest(ctx *gin.Context) (any, *api.APIError) {
	token := uuid.NewString()

	for attempt := 0; attempt < 5; attempt++ {
		code, err := pairing.NewCode()
		if err != nil {
			return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not create pairing request"}
		}
		if redis.SetNX(ctx, pairing.TokenKey(code), token, pairing.TTL) {
			return packets.PairingRequestResponse{RequestCode: code, ClaimToken: token}, nil
		}
	}

	log.Error().Msg("[pairing] could not allocate a free request code")
	return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not create pairing request"}
}

// pollPairingRequest is called by the display until an operator links
// it. The secret is handed out once and the request is consumed.
func pollPairingRequest(ctx *gin.Context) (any, *api.APIError) {
	code := ctx.Param("code")
	claim := ctx.Query("claim_token")

	token, ok := redis.Get(ctx, pairing.TokenKey(code))
	if !ok {
		return nil, &api.APIError{Code: http.StatusNotFound, Message: "pairing request not found or expired"}
	}
	if claim == "" || claim != token {
		return nil, &api.APIError{Code: http.StatusForbidden, Message: "invalid claim token"}
	}

	secret, ok := redis.Get(ctx, pairing.SecretKey(code))
	if !ok {
		return packets.PairingPollResponse{Paired: false}, nil
	}

	redis.Del(ctx, pairing.TokenKey(code), pairing.SecretKey(code))
	return packets.PairingPollResponse{Paired: true, Secret: secret}, nil
}
