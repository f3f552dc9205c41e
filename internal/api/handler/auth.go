package handler

import (
	"net/http"
	"strings"
	"time"

	"beastbattle/backend/internal/apperr"
	"beastbattle/backend/internal/config"
	"beastbattle/backend/internal/models"
	"beastbattle/backend/internal/storage"

	"github.com/gin-gonic/gin"
	jwt "github.com/golang-jwt/jwt/v5"
)

const userIDKey = "userID"

// generateToken issues a signed bearer token for the user.
func (h *Handler) generateToken(userID string) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(config.TokenTTL).Unix(),
		"iss":     "beastbattle-service",
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(h.JWTSecret)
}

// validateToken parses a bearer token and returns the embedded user id.
func (h *Handler) validateToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return h.JWTSecret, nil
	})
	if err != nil || !token.Valid {
		return "", apperr.New(apperr.Unauthorized, "invalid or expired token")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", apperr.New(apperr.Unauthorized, "invalid token claims")
	}
	userID, _ := claims["user_id"].(string)
	if userID == "" {
		return "", apperr.New(apperr.Unauthorized, "invalid token claims")
	}
	return userID, nil
}

// AuthRequired is the bearer-credential middleware. It resolves the token
// to a user id and stores it on the request context.
func (h *Handler) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			writeError(c, apperr.New(apperr.Unauthorized, "authorization token missing"))
			return
		}
		userID, err := h.validateToken(strings.TrimPrefix(authHeader, "Bearer "))
		if err != nil {
			writeError(c, err)
			return
		}
		c.Set(userIDKey, userID)
		c.Next()
	}
}

func currentUserID(c *gin.Context) string {
	return c.GetString(userIDKey)
}

type registerRequest struct {
	DisplayName string `json:"display_name" binding:"required"`
}

// Register creates a player account and returns its bearer token. Identity
// is deliberately minimal: the engine treats authentication as a black box
// that yields a verified user id.
func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeValidation(c, "display_name is required")
		return
	}

	if existing, err := h.Storage.GetUserByDisplayName(req.DisplayName); err == nil && existing != nil {
		writeValidation(c, "display name already taken")
		return
	}

	user := &models.User{DisplayName: req.DisplayName}
	if err := h.Storage.CreateUser(user); err != nil {
		writeError(c, apperr.New(apperr.Internal, "failed to create user"))
		return
	}

	token, err := h.generateToken(user.ID)
	if err != nil {
		writeError(c, apperr.New(apperr.Internal, "failed to create token"))
		return
	}
	c.JSON(http.StatusCreated, gin.H{"token": token, "user": user})
}

type tokenRequest struct {
	DisplayName string `json:"display_name" binding:"required"`
}

// Token re-issues a bearer token for an existing account.
func (h *Handler) Token(c *gin.Context) {
	var req tokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeValidation(c, "display_name is required")
		return
	}

	user, err := h.Storage.GetUserByDisplayName(req.DisplayName)
	if err != nil {
		if err == storage.ErrNotFound {
			writeError(c, apperr.New(apperr.NotFound, "unknown display name"))
			return
		}
		writeError(c, apperr.New(apperr.Internal, "lookup failed"))
		return
	}

	token, err := h.generateToken(user.ID)
	if err != nil {
		writeError(c, apperr.New(apperr.Internal, "failed to create token"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
}
