package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_GenerateVerificationCode(t *testing.T) {
	t.Run("returns only digits with the requested length", func(t *testing.T) {
		code, err := GenerateVerificationCode(6)
		require.NoError(t, err)
		assert.Len(t, code, 6)
		assert.Regexp(t, `^[0-9]{6}$`, code)
	})

	t.Run("rejects non-positive length", func(t *testing.T) {
		_, err := GenerateVerificationCode(0)
		assert.EqualError(t, err, "verification code length must be positive")
	})
}

func Test_GenerateResetToken(t *testing.T) {
	t.Run("returns a hex string twice the byte size", func(t *testing.T) {
		token, err := GenerateResetToken(32)
		require.NoError(t, err)
		assert.Len(t, token, 64)
		assert.Regexp(t, `^[0-9a-f]+$`, token)
	})

	t.Run("two tokens differ", func(t *testing.T) {
		token1, err := GenerateResetToken(32)
		require.NoError(t, err)
		token2, err := GenerateResetToken(32)
		require.NoError(t, err)
		assert.NotEqual(t, token1, token2)
	})

	t.Run("rejects non-positive size", func(t *testing.T) {
		_, err := GenerateResetToken(-1)
		assert.EqualError(t, err, "reset token size must be positive")
	})
}
