package jwtPkg

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"avril/internal/entity"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
)

const (
	AccessTokenSecret = "JWT_ACCESS_TOKEN_SECRET"
	OperatorKey       = "operator"
)

var (
	ErrEmptyHeader    = errors.New("empty Authorization header")
	ErrInvalidFormat  = errors.New("invalid Authorization format")
	ErrNoSecret       = errors.New("JWT secret not configured")
	ErrInvalidClaims  = errors.New("token claims are missing required fields")
	ErrUnexpectedAlgo = errors.New("unexpected signing method")
)

// Sign issues an operator token for the settings endpoints.
func Sign(operator entity.Operator, expiresIn time.Duration) (string, int64, error) {
	secret := os.Getenv(AccessTokenSecret)
	if secret == "" {
		return "", 0, ErrNoSecret
	}

	expiresAt := time.Now().Add(expiresIn).Unix()
	claims := jwt.MapClaims{
		"exp":      expiresAt,
		"id":       operator.ID,
		"username": operator.Username,
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", 0, err
	}

	return token, expiresAt, nil
}

func VerifyTokenHeader(c *fiber.Ctx, secretEnvKey string) (*jwt.Token, error) {
	log := logrus.WithField("func", "VerifyTokenHeader")

	header := c.Get("Authorization")
	if header == "" {
		return nil, ErrEmptyHeader
	}

	accessToken, ok := strings.CutPrefix(header, "Bearer ")
	accessToken = strings.TrimSpace(accessToken)
	if !ok || accessToken == "" {
		return nil, ErrInvalidFormat
	}

	secret := os.Getenv(secretEnvKey)
	if secret == "" {
		log.Error("JWT secret environment variable not set")
		return nil, ErrNoSecret
	}

	token, err := jwt.Parse(accessToken, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("%w: %v", ErrUnexpectedAlgo, token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		log.WithError(err).Debug("Failed to parse JWT token")
		return nil, err
	}

	return token, nil
}

// OperatorFromToken extracts the operator identity from verified claims.
func OperatorFromToken(token *jwt.Token) (entity.Operator, error) {
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return entity.Operator{}, ErrInvalidClaims
	}

	id, _ := claims["id"].(string)
	username, _ := claims["username"].(string)
	if id == "" || username == "" {
		return entity.Operator{}, ErrInvalidClaims
	}

	return entity.Operator{ID: id, Username: username}, nil
}

func GetOperator(c *fiber.Ctx) (entity.Operator, error) {
	operator, ok := c.Locals(OperatorKey).(entity.Operator)
	if !ok {
		return entity.Operator{}, fiber.ErrUnauthorized
	}
	return operator, nil
}
