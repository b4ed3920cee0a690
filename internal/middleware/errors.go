package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/kumarbhakta81/Garment-platform/internal/apperr"
	"github.com/kumarbhakta81/Garment-platform/internal/db"
)

const internalMessage = "Internal Server Error"

// ErrorHandler renders the last error a handler attached with c.Error.
// 5xx details are logged; in production their message never reaches the client.
func ErrorHandler(log *slog.Logger, production bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err
		status, msg := Resolve(err)

		if status >= http.StatusInternalServerError {
			log.Error("request failed",
				"method", c.Request.Method,
				"path", c.Request.URL.Path,
				"status", status,
				"err", err,
			)
			if production {
				msg = internalMessage
			}
		}
		if c.Writer.Written() {
			return
		}
		c.AbortWithStatusJSON(status, Envelope(c, msg))
	}
}

// Envelope is the error body shared by every failure response.
func Envelope(c *gin.Context, msg string) gin.H {
	return gin.H{
		"success":   false,
		"message":   msg,
		"error":     gin.H{"message": msg},
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"path":      c.Request.URL.Path,
		"method":    c.Request.Method,
	}
}

// Resolve maps an error to an HTTP status and a client-facing message.
func Resolve(err error) (int, string) {
	if e, ok := apperr.As(db.Classify(err)); ok {
		return e.Status(), e.Message
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		msgs := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			msgs = append(msgs, fieldMessage(fe))
		}
		return http.StatusBadRequest, strings.Join(msgs, ", ")
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &syntaxErr), errors.Is(err, io.ErrUnexpectedEOF):
		return http.StatusBadRequest, "malformed JSON body"
	case errors.As(err, &typeErr):
		return http.StatusBadRequest, fmt.Sprintf("%s has the wrong type", typeErr.Field)
	case errors.Is(err, io.EOF):
		return http.StatusBadRequest, "request body is required"
	}

	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return http.StatusBadRequest, "file too large"
	}
	return http.StatusInternalServerError, err.Error()
}

func fieldMessage(fe validator.FieldError) string {
	f := fe.Field()
	switch fe.Tag() {
	case "required":
		return f + " is required"
	case "email":
		return f + " must be a valid email"
	case "min", "gte":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", f, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", f, fe.Param())
	case "max", "lte":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must not exceed %s characters", f, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", f, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", f, fe.Param())
	case "len":
		return fmt.Sprintf("%s must be %s characters long", f, fe.Param())
	}
	return f + " is invalid"
}

// UseJSONFieldNames makes validation messages name fields the way clients send them.
func UseJSONFieldNames() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return fld.Name
	})
}

// Recovery turns a panic into a 500 envelope instead of a dropped connection.
func Recovery(log *slog.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		log.Error("panic recovered", "path", c.Request.URL.Path, "panic", recovered)
		c.AbortWithStatusJSON(http.StatusInternalServerError, Envelope(c, internalMessage))
	})
}
