package middleware

import (
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/kubagp1/school-clock/internal/model"
)

// context key JWTMiddleware stores the authenticated user under.
const currentUserKey = "currentUser"

func HashPassword(plain string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func CheckPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// GetCurrentUser returns the user JWTMiddleware resolved for this
// request, if any.
func GetCurrentUser(c *gin.Context) (*model.User, bool) {
	v, ok := c.Get(currentUserKey)
	if !ok {
		return nil, false
	}
	user, ok := v.(*model.User)
	return user, ok
}
