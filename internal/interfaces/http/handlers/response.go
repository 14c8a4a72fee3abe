// internal/interfaces/http/handlers/response.go
package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
	"github.com/your-org/inventory-backend/internal/domain/supplierarticle"
	"github.com/your-org/inventory-backend/internal/interfaces/http/middleware"
	"github.com/your-org/inventory-backend/internal/pkg/apperror"
	"github.com/your-org/inventory-backend/internal/pkg/stockmath"
)

var (
	registerOnce sync.Once
	registerErr  error
)

// RegisterValidators adds the domain binding tags to gin's validator
func RegisterValidators() error {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			registerErr = errors.New("binding validator is not a validator.Validate")
			return
		}
		if err := v.RegisterValidation("policy", func(fl validator.FieldLevel) bool {
			return supplierarticle.Policy(fl.Field().String()).IsValid()
		}); err != nil {
			registerErr = fmt.Errorf("register policy validator: %w", err)
			return
		}
		if err := v.RegisterValidation("service_level", func(fl validator.FieldLevel) bool {
			_, ok := stockmath.ZScore(int(fl.Field().Int()))
			return ok
		}); err != nil {
			registerErr = fmt.Errorf("register service_level validator: %w", err)
		}
	})
	return registerErr
}

// respondError writes err with the status of its kind
func respondError(c *gin.Context, logger logrus.FieldLogger, err error) {
	appErr, ok := apperror.As(err)
	if !ok {
		appErr = apperror.Internal("internal server error", err)
	}

	status := http.StatusInternalServerError
	switch appErr.Kind {
	case apperror.KindValidation:
		status = http.StatusBadRequest
	case apperror.KindNotFound:
		status = http.StatusNotFound
	case apperror.KindConflict:
		status = http.StatusConflict
	}

	if status == http.StatusInternalServerError {
		logger.WithError(err).
			WithField("request_id", c.GetString(middleware.RequestIDKey)).
			Error("Request failed")
		c.JSON(status, gin.H{
			"error": "Internal server error",
			"kind":  apperror.KindInternal,
		})
		return
	}

	body := gin.H{
		"error": appErr.Message,
		"kind":  appErr.Kind,
	}
	if len(appErr.Details) > 0 {
		body["details"] = appErr.Details
	}
	c.JSON(status, body)
}

// bindJSON binds the request body and answers 400 when it does not validate
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": bindingDetails(err),
		})
		return false
	}
	return true
}

func bindingDetails(err error) interface{} {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}

	details := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		details[fieldName(fe.Namespace())] = fe.Tag()
	}
	return details
}

// fieldName drops the struct name from a validator namespace
func fieldName(namespace string) string {
	if i := strings.Index(namespace, "."); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}

// parseID reads a numeric path parameter, answering 400 when it is malformed
func parseID(c *gin.Context, param, label string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(param), 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid " + label + " ID",
		})
		return 0, false
	}
	return uint(id), true
}

func queryID(c *gin.Context, key string) (uint, error) {
	raw := c.Query(key)
	if raw == "" {
		return 0, nil
	}
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, apperror.Validation("%s must be a positive integer", key)
	}
	return uint(id), nil
}
