package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"expense_tracker/internal/feature/auth/domain"
	"expense_tracker/internal/feature/auth/transport/http/dto"
)

const internalErrorMessage = "Internal server error"

var jsonFieldNames sync.Once

// useJSONFieldNames makes validation errors report fields by their JSON names.
func useJSONFieldNames() {
	jsonFieldNames.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			switch name {
			case "-":
				return ""
			case "":
				return f.Name
			}
			return name
		})
	})
}

// bindJSON decodes and validates the request body into req.
// On failure it writes a 400 response and returns false.
func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		slog.Warn("request validation failed", "path", c.FullPath(), "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, dto.ErrorRes{Error: bindingMessage(err)})
		return false
	}
	return true
}

// bindingMessage turns a binding error into a message naming the offending field.
func bindingMessage(err error) string {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) && len(ve) > 0 {
		fe := ve[0]
		switch fe.Tag() {
		case "required":
			return fmt.Sprintf("%s is required", fe.Field())
		case "max":
			return fmt.Sprintf("%s must be at most %s characters long", fe.Field(), fe.Param())
		default:
			return fmt.Sprintf("%s is invalid", fe.Field())
		}
	}
	var te *json.UnmarshalTypeError
	if errors.As(err, &te) && te.Field != "" {
		return fmt.Sprintf("%s has an invalid type", te.Field)
	}
	return "Invalid request body"
}

func statusFor(kind domain.Kind) int {
	switch kind {
	case domain.KindValidation:
		return http.StatusBadRequest
	case domain.KindConflict:
		return http.StatusConflict
	case domain.KindAuth:
		return http.StatusUnauthorized
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindRateLimit:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// respondError maps err to a status code. Domain errors carry their own message;
// anything else is logged and answered with a generic one.
func respondError(c *gin.Context, op string, err error) {
	var de *domain.Error
	if !errors.As(err, &de) {
		slog.Error(op+" failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusInternalServerError, dto.ErrorRes{Error: internalErrorMessage})
		return
	}

	status := statusFor(de.Kind)
	if status >= http.StatusInternalServerError {
		slog.Error(op+" failed", "error", err, "remote_addr", c.ClientIP())
	} else {
		slog.Warn(op+" rejected", "error", de.Message, "remote_addr", c.ClientIP())
	}
	c.JSON(status, dto.ErrorRes{Error: de.Message})
}
