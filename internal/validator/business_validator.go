package validator

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/usv-fiesc/exam-scheduler/internal/models"
)

// BusinessValidator handles request and business rule validation
type BusinessValidator struct {
	validate *validator.Validate
}

// NewBusinessValidator creates a new business validator
func NewBusinessValidator() *BusinessValidator {
	validate := validator.New()

	bv := &BusinessValidator{validate: validate}
	bv.registerBusinessRules()

	return bv
}

// Validate runs the struct tags for any request
func (bv *BusinessValidator) Validate(s interface{}) ValidationErrors {
	if err := bv.validate.Struct(s); err != nil {
		return ToValidationErrors(err)
	}
	return nil
}

// ValidatePeriodCreate validates an examination window beyond the tags:
// the window must not end before it starts.
func (bv *BusinessValidator) ValidatePeriodCreate(req *PeriodCreateRequest) ValidationErrors {
	errors := bv.Validate(req)
	if errors.HasErrors() {
		return errors
	}

	start, _ := time.Parse(DateLayout, req.StartDate)
	end, _ := time.Parse(DateLayout, req.EndDate)
	if end.Before(start) {
		errors = append(errors, ValidationError{
			Field:   "end_date",
			Message: "must not be before start_date",
			Value:   req.EndDate,
			Rule:    "date_order",
		})
	}
	return errors
}

// ValidateExamProposal validates a proposal request beyond the tags. Only
// shape is checked here; whether the date is acceptable is decided against
// the active examination periods.
func (bv *BusinessValidator) ValidateExamProposal(req *ExamProposalRequest) (time.Time, ValidationErrors) {
	errors := bv.Validate(req)
	if errors.HasErrors() {
		return time.Time{}, errors
	}

	date, err := time.Parse(DateLayout, req.ExamDate)
	if err != nil {
		return time.Time{}, ValidationErrors{{
			Field:   "exam_date",
			Message: "must be a date in YYYY-MM-DD format",
			Value:   req.ExamDate,
			Rule:    "datetime",
		}}
	}

	return date, nil
}

// registerBusinessRules registers custom rule validators
func (bv *BusinessValidator) registerBusinessRules() {
	// role names accepted on user create and update
	bv.validate.RegisterValidation("user_role", func(fl validator.FieldLevel) bool {
		return models.UserRole(fl.Field().String()).Valid()
	})

	// a decision settles a proposal, PROPOSED is not a decision
	bv.validate.RegisterValidation("exam_decision", func(fl validator.FieldLevel) bool {
		status := models.ExamStatus(fl.Field().String())
		return status.Terminal()
	})
}
