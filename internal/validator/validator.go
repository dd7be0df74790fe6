package validator

import (
	"reflect"
	"strings"

	apperrors "github.com/SAP-F-2025/voice-service/internal/errors"
	"github.com/SAP-F-2025/voice-service/internal/models"
	"github.com/go-playground/validator/v10"
)

const maxResponseValueLength = 255

// Validator wraps the struct validator with the survey block's custom tags
type Validator struct {
	structValidator *validator.Validate
}

func New() *Validator {
	structValidator := validator.New()
	registerCustomValidators(structValidator)
	return &Validator{structValidator: structValidator}
}

// Validate checks struct tags and returns ValidationErrors on failure.
func (v *Validator) Validate(s interface{}) error {
	if err := v.structValidator.Struct(s); err != nil {
		if errs := apperrors.ToValidationErrors(err); len(errs) > 0 {
			return errs
		}
		return err
	}
	return nil
}

// Var validates a single value against a tag expression.
func (v *Validator) Var(field interface{}, tag string) error {
	if err := v.structValidator.Var(field, tag); err != nil {
		if errs := apperrors.ToValidationErrors(err); len(errs) > 0 {
			return errs
		}
		return err
	}
	return nil
}

func registerCustomValidators(validate *validator.Validate) {
	validate.RegisterValidation("survey_format", validateSurveyFormat)
	validate.RegisterValidation("audience_selector", validateAudienceSelector)
	validate.RegisterValidation("order_policy", validateOrderPolicy)
	validate.RegisterValidation("response_value", validateResponseValue)

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

func validateSurveyFormat(fl validator.FieldLevel) bool {
	return models.SurveyFormat(fl.Field().String()).Valid()
}

// An empty selector is accepted; it leaves the block without an audience.
func validateAudienceSelector(fl validator.FieldLevel) bool {
	value := strings.TrimSpace(fl.Field().String())
	if value == "" {
		return true
	}
	return models.ParseAudience(value).Kind != models.AudienceNone
}

func validateOrderPolicy(fl validator.FieldLevel) bool {
	return models.OrderPolicy(fl.Field().String()).Valid()
}

func validateResponseValue(fl validator.FieldLevel) bool {
	value := strings.TrimSpace(fl.Field().String())
	return value != "" && len(value) <= maxResponseValueLength
}
