// Package pairing holds the shared pieces of the display pairing
// handshake: short-lived redis keys bridging the unauthenticated
// display that opened a request and the operator who links it.
package pairing

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

// TTL bounds the whole handshake; an unclaimed request simply expires.
const TTL = time.Hour

const codeDigits = 9

// NewCode returns a zero-padded numeric code short enough to type off
// a display.
func NewCode() (string, error) {
	max := big.NewInt(1)
	for i := 0; i < codeDigits; i++ {
		max.Mul(max, big.NewInt(10))
	}
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", codeDigits, n), nil
}

// TokenKey stores the claim token the display must present when
// polling, so only the display that opened the request can collect
// the secret.
func TokenKey(code string) string {
	return fmt.Sprintf("pairing:%s:token", code)
}

// SecretKey is written by the operator side once an instance is
// linked and consumed by the display's next poll.
func SecretKey(code string) string {
	return fmt.Sprintf("pairing:%s:secret", code)
}
