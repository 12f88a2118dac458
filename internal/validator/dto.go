package validator

// SignupRequest creates a local account
type SignupRequest struct {
	Name            string `json:"name" form:"name" validate:"required,min=2,max=50"`
	Email           string `json:"email" form:"email" validate:"required,email,max=255"`
	Password        string `json:"password" form:"password" validate:"required,password_strength"`
	ConfirmPassword string `json:"confirm_password" form:"confirm_password" validate:"required,eqfield=Password"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Password        string `json:"password" validate:"required,password_strength"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
}

// UpdateProfileRequest carries a partial profile update, nil means unchanged
type UpdateProfileRequest struct {
	Name            *string `json:"name" form:"name" validate:"omitempty,min=2,max=50"`
	Email           *string `json:"email" form:"email" validate:"omitempty,email,max=255"`
	Password        *string `json:"password" form:"password" validate:"omitempty,password_strength"`
	ConfirmPassword *string `json:"confirm_password" form:"confirm_password"`
}

type DisciplineCreateRequest struct {
	Name string `json:"name" form:"name" validate:"required,max=200"`
}

type DisciplineUpdateRequest struct {
	Name *string `json:"name" form:"name" validate:"omitempty,max=200"`
}

type CourseCreateRequest struct {
	Name string  `json:"name" validate:"required,max=200"`
	Cost float64 `json:"cost" validate:"required,course_cost"`
}

type CourseUpdateRequest struct {
	Name *string  `json:"name" validate:"omitempty,max=200"`
	Cost *float64 `json:"cost" validate:"omitempty,course_cost"`
}

type ReviewCreateRequest struct {
	Comment string  `json:"comment" validate:"required,max=2000"`
	Rating  float64 `json:"rating" validate:"required,whole_number"`
}

type ReviewUpdateRequest struct {
	Comment *string  `json:"comment" validate:"omitempty,max=2000"`
	Rating  *float64 `json:"rating" validate:"omitempty,whole_number"`
}
