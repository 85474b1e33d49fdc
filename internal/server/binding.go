package server

import (
	"encoding/json"
	"errors"

	"pickleball/internal/apperr"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

type bindMessages map[string]map[string]string

// bindJSON decodes the body into req and writes a validation error naming the
// first failing field. Messages are keyed by JSON field name and tag.
func bindJSON(c *gin.Context, req any, messages bindMessages, fallback string) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		writeError(c, resolveBindError(err, messages, fallback))
		return false
	}
	return true
}

// bindID parses a UUID path parameter. A malformed id cannot name an existing
// row, so it is reported with the given not-found code.
func bindID(c *gin.Context, param string, code apperr.Code, message string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		writeError(c, apperr.NotFound(code, message))
		return uuid.Nil, false
	}
	return id, true
}

func resolveBindError(err error, messages bindMessages, fallback string) *apperr.Error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, verr := range verrs {
			field := verr.Field()
			if fieldMsgs, ok := messages[field]; ok {
				if msg, ok := fieldMsgs[verr.Tag()]; ok {
					return apperr.Validation(field, msg)
				}
			}
			return apperr.Validation(field, field+" is invalid")
		}
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		field := typeErr.Field
		if fieldMsgs, ok := messages[field]; ok {
			if msg, ok := fieldMsgs["type"]; ok {
				return apperr.Validation(field, msg)
			}
		}
		return apperr.Validation(field, field+" is invalid")
	}
	if fallback != "" {
		return apperr.Validation("", fallback)
	}
	return apperr.Validation("", "invalid request")
}
