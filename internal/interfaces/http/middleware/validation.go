package middleware

import (
	"errors"
	"net/http"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/destocard/backend/internal/domain/marketplace"
	"github.com/destocard/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	postcodeShape = regexp.MustCompile(`^[A-Za-z0-9-]{2,10}$`)
	digitsOnly    = regexp.MustCompile(`^[0-9]+$`)
	setupOnce     sync.Once
)

// SetupValidator registers the custom tags on gin's validator and reports
// field names by their json or form tag. It is safe to call more than once.
func SetupValidator() {
	setupOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
			}
			return name
		})
		_ = v.RegisterValidation("card_condition", validateCardCondition)
		_ = v.RegisterValidation("fr_postcode", validatePostcode)
	})
}

func validateCardCondition(fl validator.FieldLevel) bool {
	return marketplace.Condition(fl.Field().String()).IsValid()
}

// validatePostcode accepts five digits for numeric codes, which covers
// France, and short alphanumeric codes for other countries.
func validatePostcode(fl validator.FieldLevel) bool {
	code := strings.ReplaceAll(strings.TrimSpace(fl.Field().String()), " ", "")
	if digitsOnly.MatchString(code) {
		return len(code) == 5
	}
	return postcodeShape.MatchString(code)
}

// FormatValidationErrors formats validation errors into a standard response
func FormatValidationErrors(err error, requestID string) dto.Response {
	var details []dto.ValidationDetail

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		for _, e := range validationErrors {
			details = append(details, dto.ValidationDetail{
				Field:   e.Field(),
				Message: getValidationMessage(e),
			})
		}
	}

	return dto.NewValidationErrorResponse("Données invalides", requestID, details)
}

// HandleValidationError answers 400 for a failed bind. Malformed JSON and
// type mismatches get a generic message; validator failures list the fields.
func HandleValidationError(c *gin.Context, err error) {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponseWithRequestID(
			dto.ErrCodeInvalidJSON, "Requête invalide", GetRequestID(c)))
		return
	}
	c.JSON(http.StatusBadRequest, FormatValidationErrors(err, GetRequestID(c)))
}

// getValidationMessage returns a French message for a failed rule
func getValidationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "Ce champ est obligatoire"
	case "email":
		return "Adresse email invalide"
	case "min":
		if e.Type().Kind() == reflect.String {
			return "Doit contenir au moins " + e.Param() + " caractères"
		}
		return "Doit être supérieur ou égal à " + e.Param()
	case "max":
		if e.Type().Kind() == reflect.String {
			return "Doit contenir au plus " + e.Param() + " caractères"
		}
		return "Doit être inférieur ou égal à " + e.Param()
	case "len":
		return "Doit contenir exactement " + e.Param() + " caractères"
	case "uuid":
		return "Identifiant invalide"
	case "oneof":
		return "Doit valoir l'une des valeurs : " + e.Param()
	case "url":
		return "URL invalide"
	case "numeric":
		return "Doit être un nombre"
	case "card_condition":
		return "État de carte inconnu"
	case "fr_postcode":
		return "Code postal invalide"
	default:
		return "Valeur invalide"
	}
}
