package api

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const contextOwnerKey = "current_owner"

var errInvalidBearerToken = errors.New("invalid bearer token")

type ownerFields struct {
	OwnerID     string `json:"ownerId"`
	UserID      string `json:"userId"`
	LocalUserID string `json:"localUserId"`
}

func (fields ownerFields) first() string {
	for _, candidate := range []string{fields.OwnerID, fields.UserID, fields.LocalUserID} {
		if trimmed := strings.TrimSpace(candidate); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

// ResolveOwner stores the caller's owner id in the request locals. A verified
// bearer token wins over any id supplied in the body or query string. The body
// is read with the same rule the handlers use, whatever its Content-Type.
func (handler *Handler) ResolveOwner(c *fiber.Ctx) error {
	ownerID, err := handler.bearerOwner(c)
	if err != nil {
		return apiError(c, fiber.StatusUnauthorized, "Invalid bearer token")
	}

	if ownerID == "" {
		var fields ownerFields
		if decodeJSONBody(c, &fields) == nil {
			ownerID = fields.first()
		}
	}
	if ownerID == "" {
		ownerID = ownerFields{
			OwnerID:     c.Query("ownerId"),
			UserID:      c.Query("userId"),
			LocalUserID: c.Query("localUserId"),
		}.first()
	}

	c.Locals(contextOwnerKey, ownerID)
	return c.Next()
}

func currentOwner(c *fiber.Ctx) string {
	ownerID, _ := c.Locals(contextOwnerKey).(string)
	return ownerID
}

// bearerOwner returns "" when no token is presented or verification is
// disabled.
func (handler *Handler) bearerOwner(c *fiber.Ctx) (string, error) {
	if len(handler.jwtSecret) == 0 {
		return "", nil
	}
	header := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
	if header == "" {
		return "", nil
	}
	rawToken, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || strings.TrimSpace(rawToken) == "" {
		return "", errInvalidBearerToken
	}

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(strings.TrimSpace(rawToken), claims, func(token *jwt.Token) (interface{}, error) {
		return handler.jwtSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return "", errInvalidBearerToken
	}

	subject := strings.TrimSpace(claims.Subject)
	if subject == "" {
		return "", errInvalidBearerToken
	}
	return subject, nil
}
