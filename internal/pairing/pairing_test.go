package pairing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCode(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		code, err := NewCode()
		require.NoError(t, err)
		assert.Len(t, code, 9)
		assert.Regexp(t, `^\d{9}$`, code)
		seen[code] = true
	}
	// 100 draws from a 10^9 space colliding down to a handful would
	// mean the generator is broken
	assert.Greater(t, len(seen), 90)
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "pairing:123456789:token", TokenKey("123456789"))
	assert.Equal(t, "pairing:123456789:secret", SecretKey("123456789"))
	assert.NotEqual(t, TokenKey("1"), SecretKey("1"))
}
