package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/pageza/recipehub/backend/internal/service"
	"github.com/pageza/recipehub/backend/internal/types"
)

// UserMessage maps an error to an HTTP status and a short message that is
// safe to show a client.
func UserMessage(err error) (int, string) {
	var (
		malformed  *types.MalformedRecordError
		notFound   *types.NotFoundError
		inProgress *types.OperationInProgressError
		empty      *types.EmptyCatalogError
		network    *types.NetworkError
		server     *types.ServerError
		transition *types.InvalidTransitionError
		validation *types.ValidationError
		forbidden  *types.ForbiddenError
	)

	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest, "Missing or invalid fields: " + strings.Join(validation.Fields, ", ")
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Invalid email or password"
	case errors.Is(err, service.ErrInvalidToken):
		return http.StatusUnauthorized, "Invalid or expired token"
	case errors.As(err, &forbidden):
		return http.StatusForbidden, "You do not have permission to do that"
	case errors.As(err, &notFound):
		return http.StatusNotFound, "Recipe not found"
	case errors.As(err, &empty):
		return http.StatusNotFound, "No recipes available"
	case errors.As(err, &inProgress):
		return http.StatusConflict, "This recipe is already being processed"
	case errors.As(err, &transition):
		return http.StatusConflict, fmt.Sprintf("Cannot %s a recipe that is %s", transition.Action, transition.From)
	case errors.As(err, &malformed):
		return http.StatusUnprocessableEntity, "The recipe data could not be read"
	case errors.As(err, &network):
		if errors.Is(err, context.DeadlineExceeded) {
			return http.StatusGatewayTimeout, "The recipe service took too long to respond"
		}
		return http.StatusBadGateway, "The recipe service is unreachable, please try again"
	case errors.As(err, &server):
		return http.StatusBadGateway, "The recipe service returned an error"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "The request timed out"
	default:
		return http.StatusInternalServerError, "Internal Server Error"
	}
}

// respondError logs the raw error and writes the client-safe message
func respondError(c *gin.Context, log logrus.FieldLogger, err error) {
	status, msg := UserMessage(err)
	entry := log.WithError(err).WithFields(logrus.Fields{
		"path":       c.Request.URL.Path,
		"status":     status,
		"request_id": c.GetString("request_id"),
	})
	if status >= http.StatusInternalServerError {
		entry.Error("request failed")
	} else {
		entry.Info("request rejected")
	}
	_ = c.Error(err)
	c.JSON(status, gin.H{"error": msg})
}

// intParam parses a positive integer path parameter, writing a 400 when it is invalid
func intParam(c *gin.Context, name string) (int, bool) {
	v, err := strconv.Atoi(c.Param(name))
	if err != nil || v <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return 0, false
	}
	return v, true
}
