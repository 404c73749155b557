package jwtPkg

import (
	"testing"
	"time"

	"avril/internal/entity"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSign_RoundTrip(t *testing.T) {
	t.Setenv(AccessTokenSecret, "test-secret")

	signed, exp, err := Sign(entity.Operator{ID: "op-1", Username: "kitchen"}, time.Hour)
	require.NoError(t, err)
	assert.Greater(t, exp, time.Now().Unix())

	token, err := jwt.Parse(signed, func(*jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)

	operator, err := OperatorFromToken(token)
	require.NoError(t, err)
	assert.Equal(t, entity.Operator{ID: "op-1", Username: "kitchen"}, operator)
}

func TestSign_NoSecret(t *testing.T) {
	t.Setenv(AccessTokenSecret, "")

	_, _, err := Sign(entity.Operator{ID: "op-1", Username: "kitchen"}, time.Hour)
	assert.ErrorIs(t, err, ErrNoSecret)
}

func TestOperatorFromToken_MissingClaims(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"id": "op-1"})

	_, err := OperatorFromToken(token)
	assert.ErrorIs(t, err, ErrInvalidClaims)
}
