package validator

import (
	"math"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/SAP-F-2025/course-review-service/internal/models"
)

const (
	PasswordPolicyMessage = "Passwords must contain at least 6 characters and should contain an uppercase, lowercase and numeric value."
	RatingMessage         = "Your rating must be a whole number from 1 to 10."
	CostMessage           = "The cost must be between 1 and 200."
	CommentMessage        = "Your comment can't be longer than 2000 characters."
	NothingToUpdate       = "Nothing to update."
)

// BusinessValidator applies the per-field rules shared by create and update
type BusinessValidator struct {
	validate *validator.Validate
}

func NewBusinessValidator() *BusinessValidator {
	bv := &BusinessValidator{validate: newValidate()}
	bv.registerBusinessRules()
	return bv
}

// Validate validates struct tags
func (bv *BusinessValidator) Validate(s interface{}) ValidationErrors {
	return ToValidationErrors(bv.validate.Struct(s))
}

func (bv *BusinessValidator) ValidateSignup(req *SignupRequest) ValidationErrors {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	return bv.Validate(req)
}

func (bv *BusinessValidator) ValidatePasswordReset(req *ResetPasswordRequest) ValidationErrors {
	return bv.Validate(req)
}

func (bv *BusinessValidator) ValidateProfileUpdate(req *UpdateProfileRequest, hasImage bool) ValidationErrors {
	trimPtr(req.Name)
	trimPtr(req.Email)
	if req.Name == nil && req.Email == nil && req.Password == nil && !hasImage {
		return nothingToUpdate()
	}

	errors := bv.Validate(req)
	if req.Name != nil && *req.Name == "" {
		errors = append(errors, ValidationError{Field: "name", Message: "You must provide a name.", Rule: "required"})
	}
	if req.Email != nil && *req.Email == "" {
		errors = append(errors, ValidationError{Field: "email", Message: "Must submit a valid email address.", Rule: "email"})
	}
	if req.Password != nil {
		if *req.Password == "" {
			errors = append(errors, ValidationError{Field: "password", Message: PasswordPolicyMessage, Rule: "password_strength"})
		}
		if req.ConfirmPassword == nil || *req.ConfirmPassword != *req.Password {
			errors = append(errors, ValidationError{Field: "confirm_password", Message: "Passwords should match.", Rule: "eqfield"})
		}
	}
	return errors
}

func (bv *BusinessValidator) ValidateDisciplineCreate(req *DisciplineCreateRequest) ValidationErrors {
	req.Name = strings.TrimSpace(req.Name)
	return bv.Validate(req)
}

func (bv *BusinessValidator) ValidateDisciplineUpdate(req *DisciplineUpdateRequest, hasImage bool) ValidationErrors {
	trimPtr(req.Name)
	if req.Name == nil && !hasImage {
		return nothingToUpdate()
	}
	errors := bv.Validate(req)
	if req.Name != nil && *req.Name == "" {
		errors = append(errors, ValidationError{Field: "name", Message: "You must add a name for your discipline.", Rule: "required"})
	}
	return errors
}

func (bv *BusinessValidator) ValidateCourseCreate(req *CourseCreateRequest) ValidationErrors {
	req.Name = strings.TrimSpace(req.Name)
	return bv.Validate(req)
}

func (bv *BusinessValidator) ValidateCourseUpdate(req *CourseUpdateRequest) ValidationErrors {
	trimPtr(req.Name)
	if req.Name == nil && req.Cost == nil {
		return nothingToUpdate()
	}
	errors := bv.Validate(req)
	if req.Name != nil && *req.Name == "" {
		errors = append(errors, ValidationError{Field: "name", Message: "You must provide name for your course.", Rule: "required"})
	}
	if req.Cost != nil && *req.Cost == 0 {
		errors = append(errors, ValidationError{Field: "cost", Message: CostMessage, Rule: "course_cost"})
	}
	return errors
}

func (bv *BusinessValidator) ValidateReviewCreate(req *ReviewCreateRequest) ValidationErrors {
	req.Comment = strings.TrimSpace(req.Comment)
	return bv.Validate(req)
}

func (bv *BusinessValidator) ValidateReviewUpdate(req *ReviewUpdateRequest) ValidationErrors {
	if req.Comment != nil {
		trimmed := strings.TrimSpace(*req.Comment)
		req.Comment = &trimmed
	}
	if req.Comment == nil && req.Rating == nil {
		return nothingToUpdate()
	}
	errors := bv.Validate(req)
	if req.Rating != nil && *req.Rating == 0 {
		errors = append(errors, ValidationError{Field: "rating", Message: RatingMessage, Rule: "whole_number"})
	}
	return errors
}

// registerBusinessRules registers custom business rule validators
func (bv *BusinessValidator) registerBusinessRules() {
	// at least 6 characters with a lowercase, an uppercase and a digit
	bv.validate.RegisterValidation("password_strength", func(fl validator.FieldLevel) bool {
		return IsStrongPassword(fl.Field().String())
	})

	// rating must be integral in [1,10]
	bv.validate.RegisterValidation("whole_number", func(fl validator.FieldLevel) bool {
		return IsValidRating(fl.Field().Float())
	})

	// course cost range
	bv.validate.RegisterValidation("course_cost", func(fl validator.FieldLevel) bool {
		return IsValidCost(fl.Field().Float())
	})
}

func IsStrongPassword(password string) bool {
	if len(password) < 6 || len(password) > 100 {
		return false
	}
	var lower, upper, digit bool
	for _, r := range password {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	return lower && upper && digit
}

func IsValidRating(rating float64) bool {
	return rating == math.Trunc(rating) && rating >= models.MinRating && rating <= models.MaxRating
}

func IsValidCost(cost float64) bool {
	return !math.IsNaN(cost) && cost >= models.MinCourseCost && cost <= models.MaxCourseCost
}

func nothingToUpdate() ValidationErrors {
	return ValidationErrors{{Field: "request", Message: NothingToUpdate, Rule: "nothing_to_update"}}
}

func trimPtr(s *string) {
	if s != nil {
		*s = strings.TrimSpace(*s)
	}
}
