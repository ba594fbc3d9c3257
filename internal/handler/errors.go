package handler

import (
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sysocial/sysocial-backend/internal/apperror"
	"github.com/sysocial/sysocial-backend/internal/response"
)

// writeError maps the apperror taxonomy to the response envelope. Duplicates
// share the 400 status with validation failures and differ only by code.
func writeError(c *gin.Context, err error) {
	var ve *apperror.ValidationError
	var ce *apperror.ConflictError
	switch {
	case errors.As(err, &ve):
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, ve.Fields)
	case errors.As(err, &ce):
		var fields map[string]string
		if ce.Field != "" {
			fields = map[string]string{ce.Field: ce.Error()}
		}
		response.FailWithFields(c, http.StatusBadRequest, response.ErrConflict, fields)
	case apperror.IsNotFound(err):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	default:
		_ = c.Error(err)
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}

// maxID is the largest value of a PostgreSQL INTEGER key.
const maxID = math.MaxInt32

// parseID accepts a positive integer that fits an INTEGER column.
func parseID(raw string) (int, bool) {
	id, err := strconv.Atoi(raw)
	if err != nil || id < 1 || id > maxID {
		return 0, false
	}
	return id, true
}

// paramID parses the :id path parameter, answering 400 when it is not a
// valid key.
func paramID(c *gin.Context) (int, bool) {
	id, ok := parseID(c.Param("id"))
	if !ok {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return 0, false
	}
	return id, true
}

// queryID parses an optional id filter from the query string. A missing
// value yields nil.
func queryID(c *gin.Context, key string) (*int, bool) {
	raw := c.Query(key)
	if raw == "" {
		return nil, true
	}
	id, ok := parseID(raw)
	if !ok {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return nil, false
	}
	return &id, true
}
