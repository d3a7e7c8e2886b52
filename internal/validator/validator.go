package validator

import (
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/SAP-F-2025/tutoring-service/internal/models"
	"github.com/go-playground/validator/v10"
)

var timeOfDayPattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

// Validator wraps a configured go-playground validator instance.
type Validator struct {
	structValidator *validator.Validate
}

// New creates a validator with all custom tags registered.
func New() *Validator {
	structValidator := validator.New()
	registerCustomValidators(structValidator)

	return &Validator{
		structValidator: structValidator,
	}
}

// ValidateStruct validates struct tags only
func (v *Validator) ValidateStruct(s interface{}) error {
	return v.structValidator.Struct(s)
}

// Validate validates s and converts tag failures into ValidationErrors.
func (v *Validator) Validate(s interface{}) error {
	if err := v.ValidateStruct(s); err != nil {
		if errs := ToValidationErrors(err); len(errs) > 0 {
			return errs
		}
		return err
	}
	return nil
}

// ValidateSlots checks each slot for format and start < end.
func (v *Validator) ValidateSlots(slots []models.AvailabilitySlot) ValidationErrors {
	var errs ValidationErrors
	for i, slot := range slots {
		if err := v.ValidateStruct(slot); err != nil {
			for _, fe := range ToValidationErrors(err) {
				fe.Field = "slots[" + strconv.Itoa(i) + "]." + fe.Field
				errs = append(errs, fe)
			}
			continue
		}
		if slot.Start >= slot.End {
			errs = append(errs, ValidationError{
				Field:   "slots[" + strconv.Itoa(i) + "]",
				Message: "start must be before end",
				Value:   slot,
				Rule:    "slot_order",
			})
		}
	}
	return errs
}

func registerCustomValidators(validate *validator.Validate) {
	validate.RegisterValidation("user_role", validateUserRole)
	validate.RegisterValidation("weekday", validateWeekday)
	validate.RegisterValidation("time_of_day", validateTimeOfDay)
	validate.RegisterValidation("request_status", validateRequestStatus)
	validate.RegisterValidation("review_action", validateReviewAction)

	// Report json field names in errors
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// Self-registration only admits students and tutors.
func validateUserRole(fl validator.FieldLevel) bool {
	value := models.UserRole(fl.Field().String())
	return value == models.RoleStudent || value == models.RoleTutor
}

func validateWeekday(fl validator.FieldLevel) bool {
	return models.Weekday(fl.Field().String()).Valid()
}

func validateTimeOfDay(fl validator.FieldLevel) bool {
	return timeOfDayPattern.MatchString(fl.Field().String())
}

func validateRequestStatus(fl validator.FieldLevel) bool {
	return models.RequestStatus(fl.Field().String()).Valid()
}

func validateReviewAction(fl validator.FieldLevel) bool {
	value := models.ModerationAction(fl.Field().String())
	return value == models.ModerationApprove || value == models.ModerationDelete
}
