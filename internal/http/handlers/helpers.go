package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/gigmarket/backend/internal/domain/valueobject"
	"github.com/gigmarket/backend/internal/http/middleware"
	"github.com/gigmarket/backend/internal/pkg/apperror"
)

// currentActor pulls the Actor the auth middleware resolved.
func currentActor(c *gin.Context) (valueobject.Actor, bool) {
	raw, exists := c.Get(middleware.ContextActorKey)
	if !exists {
		respondError(c, apperror.ErrUnauthorized)
		return valueobject.Actor{}, false
	}

	actor, ok := raw.(valueobject.Actor)
	if !ok {
		respondError(c, apperror.ErrUnauthorized)
		return valueobject.Actor{}, false
	}
	return actor, true
}

// respondError hands the error to the central error middleware.
func respondError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

func badRequest(c *gin.Context, message string) {
	respondError(c, apperror.New(apperror.ErrCodeValidation, message))
}

// uuidParam parses a path parameter as a UUID.
func uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		badRequest(c, "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

// parseUUID parses a UUID from a request body field.
func parseUUID(c *gin.Context, raw, field string) (uuid.UUID, bool) {
	id, err := uuid.Parse(raw)
	if err != nil {
		badRequest(c, "invalid "+field)
		return uuid.Nil, false
	}
	return id, true
}

// pagination reads limit/offset query parameters with sane defaults.
func pagination(c *gin.Context) (limit, offset int) {
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
