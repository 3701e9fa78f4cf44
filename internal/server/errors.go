package server

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"taskboard/internal/util"
)

// statusFor maps the error taxonomy onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, util.ErrInvalidArgument), errors.Is(err, util.ErrAlreadyExist):
		return http.StatusBadRequest
	case errors.Is(err, util.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, util.ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, util.ErrNotExist):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// respondError maps err to a status and a JSON payload. Unexpected errors are
// logged and hidden behind a generic message.
func (s *Server) respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed",
			slog.String("method", c.Request.Method),
			slog.String("path", c.FullPath()),
			slog.String("error", err.Error()))
		c.AbortWithStatusJSON(status, gin.H{"detail": "internal server error"})
		return
	}
	s.logger.Debug("request rejected", slog.String("path", c.FullPath()), slog.Int("status", status), slog.String("error", err.Error()))
	c.AbortWithStatusJSON(status, gin.H{"detail": err.Error()})
}

// bindJSON decodes the request body into dst and turns decoding failures into
// client errors.
func (s *Server) bindJSON(c *gin.Context, dst any) error {
	err := c.ShouldBindJSON(dst)
	if err == nil {
		return nil
	}

	var (
		typeErr *json.UnmarshalTypeError
		verrs   validator.ValidationErrors
	)
	switch {
	case errors.Is(err, io.EOF):
		return util.NewInvalidArgumentErrorf("request body is missing")
	case errors.As(err, &typeErr):
		return util.NewInvalidArgumentErrorf("%s: has the wrong type", typeErr.Field)
	case errors.As(err, &verrs) && len(verrs) > 0:
		return util.NewInvalidArgumentErrorf("%s: this field is required", verrs[0].Field())
	case isSyntaxError(err):
		return util.NewInvalidArgumentErrorf("Invalid JSON. Make sure all keys and string values are in double quotes.")
	default:
		s.logger.Debug("request body rejected", slog.String("path", c.FullPath()), slog.String("error", err.Error()))
		return util.NewInvalidArgumentErrorf("invalid request body: check field types and formats (dates use YYYY-MM-DD)")
	}
}

func isSyntaxError(err error) bool {
	var syntaxErr *json.SyntaxError
	return errors.As(err, &syntaxErr) || errors.Is(err, io.ErrUnexpectedEOF)
}

var jsonNamesOnce sync.Once

// useJSONFieldNames makes binding errors report payload names.
func useJSONFieldNames() {
	jsonNamesOnce.Do(registerJSONFieldNames)
}

func registerJSONFieldNames() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return field.Name
		}
		return name
	})
}
