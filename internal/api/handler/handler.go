package handler

import (
	"errors"
	"net/http"

	"beastbattle/backend/internal/apperr"
	"beastbattle/backend/internal/battle"
	"beastbattle/backend/internal/battlehub"
	"beastbattle/backend/internal/localization"
	"beastbattle/backend/internal/matchmaking"
	"beastbattle/backend/internal/moderation"
	"beastbattle/backend/internal/storage"

	"github.com/gin-gonic/gin"
)

// Handler carries the engine services the HTTP layer dispatches into.
type Handler struct {
	Storage    *storage.Service
	Resolver   *battle.Resolver
	Matchmaker *matchmaking.Matchmaker
	Screen     *moderation.Screen
	Ledger     *moderation.Ledger
	Hub        *battlehub.FeedService
	Catalog    *localization.Catalog
	JWTSecret  []byte
}

// NewHandler wires the handler.
func NewHandler(
	s *storage.Service,
	resolver *battle.Resolver,
	matchmaker *matchmaking.Matchmaker,
	screen *moderation.Screen,
	ledger *moderation.Ledger,
	hub *battlehub.FeedService,
	catalog *localization.Catalog,
	jwtSecret []byte,
) *Handler {
	return &Handler{
		Storage:    s,
		Resolver:   resolver,
		Matchmaker: matchmaker,
		Screen:     screen,
		Ledger:     ledger,
		Hub:        hub,
		Catalog:    catalog,
		JWTSecret:  jwtSecret,
	}
}

// writeError translates an engine error into the stable wire shape:
// {"error": {"kind", "message", "violations"?}}.
func writeError(c *gin.Context, err error) {
	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		appErr = apperr.New(apperr.Internal, "internal error")
	}

	body := gin.H{
		"kind":    appErr.Kind,
		"message": appErr.Message,
	}
	if len(appErr.Violations) > 0 {
		body["violations"] = appErr.Violations
	}
	c.AbortWithStatusJSON(apperr.HTTPStatus(appErr.Kind), gin.H{"error": body})
}

func writeValidation(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
		"error": gin.H{"kind": apperr.ValidationError, "message": message},
	})
}
