package validator

import (
	"strings"
	"testing"
)

func strPtr(s string) *string     { return &s }
func floatPtr(f float64) *float64 { return &f }

func hasRule(errs ValidationErrors, rule string) bool {
	for _, e := range errs {
		if e.Rule == rule {
			return true
		}
	}
	return false
}

func TestIsStrongPassword(t *testing.T) {
	tests := []struct {
		password string
		want     bool
	}{
		{"Secret1", true},
		{"aB3456", true},
		{"aB345", false},
		{"secret1", false},
		{"SECRET1", false},
		{"Secrets", false},
	}
	for _, tt := range tests {
		if got := IsStrongPassword(tt.password); got != tt.want {
			t.Errorf("IsStrongPassword(%q) = %v, want %v", tt.password, got, tt.want)
		}
	}
}

func TestIsValidRating(t *testing.T) {
	for _, r := range []float64{1, 5, 10} {
		if !IsValidRating(r) {
			t.Errorf("IsValidRating(%v) = false, want true", r)
		}
	}
	for _, r := range []float64{0, 11, 7.5, -1} {
		if IsValidRating(r) {
			t.Errorf("IsValidRating(%v) = true, want false", r)
		}
	}
}

func TestValidateSignup(t *testing.T) {
	bv := NewBusinessValidator()

	tests := []struct {
		name     string
		req      SignupRequest
		wantRule string
	}{
		{
			name: "valid",
			req:  SignupRequest{Name: "Ada", Email: "ada@example.com", Password: "Secret1", ConfirmPassword: "Secret1"},
		},
		{
			name:     "bad email",
			req:      SignupRequest{Name: "Ada", Email: "ada@", Password: "Secret1", ConfirmPassword: "Secret1"},
			wantRule: "email",
		},
		{
			name:     "weak password",
			req:      SignupRequest{Name: "Ada", Email: "ada@example.com", Password: "secret", ConfirmPassword: "secret"},
			wantRule: "password_strength",
		},
		{
			name:     "passwords differ",
			req:      SignupRequest{Name: "Ada", Email: "ada@example.com", Password: "Secret1", ConfirmPassword: "Secret2"},
			wantRule: "eqfield",
		},
		{
			name:     "short name after trim",
			req:      SignupRequest{Name: "  A ", Email: "ada@example.com", Password: "Secret1", ConfirmPassword: "Secret1"},
			wantRule: "min",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := bv.ValidateSignup(&tt.req)
			if tt.wantRule == "" {
				if len(errs) != 0 {
					t.Fatalf("ValidateSignup() = %v, want no errors", errs)
				}
				return
			}
			if !hasRule(errs, tt.wantRule) {
				t.Errorf("ValidateSignup() = %v, want rule %s", errs, tt.wantRule)
			}
		})
	}
}

func TestValidateReviewCreate(t *testing.T) {
	bv := NewBusinessValidator()

	tests := []struct {
		name    string
		req     ReviewCreateRequest
		wantErr bool
	}{
		{name: "valid", req: ReviewCreateRequest{Comment: "Great", Rating: 9}},
		{name: "missing comment", req: ReviewCreateRequest{Comment: "   ", Rating: 9}, wantErr: true},
		{name: "missing rating", req: ReviewCreateRequest{Comment: "Great"}, wantErr: true},
		{name: "fractional rating", req: ReviewCreateRequest{Comment: "Great", Rating: 7.5}, wantErr: true},
		{name: "rating too high", req: ReviewCreateRequest{Comment: "Great", Rating: 11}, wantErr: true},
		{name: "comment too long", req: ReviewCreateRequest{Comment: strings.Repeat("x", 2001), Rating: 3}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := bv.ValidateReviewCreate(&tt.req)
			if (len(errs) > 0) != tt.wantErr {
				t.Errorf("ValidateReviewCreate() = %v, wantErr %v", errs, tt.wantErr)
			}
		})
	}
}

func TestNothingToUpdate(t *testing.T) {
	bv := NewBusinessValidator()

	checks := map[string]ValidationErrors{
		"course":     bv.ValidateCourseUpdate(&CourseUpdateRequest{}),
		"discipline": bv.ValidateDisciplineUpdate(&DisciplineUpdateRequest{}, false),
		"review":     bv.ValidateReviewUpdate(&ReviewUpdateRequest{}),
		"profile":    bv.ValidateProfileUpdate(&UpdateProfileRequest{}, false),
	}
	for name, errs := range checks {
		if !hasRule(errs, "nothing_to_update") {
			t.Errorf("%s: got %v, want nothing_to_update", name, errs)
		}
		if errs.Error() != NothingToUpdate {
			t.Errorf("%s: Error() = %q", name, errs.Error())
		}
	}

	if errs := bv.ValidateDisciplineUpdate(&DisciplineUpdateRequest{}, true); len(errs) != 0 {
		t.Errorf("image-only discipline update rejected: %v", errs)
	}
}

func TestValidateUpdates(t *testing.T) {
	bv := NewBusinessValidator()

	if errs := bv.ValidateCourseUpdate(&CourseUpdateRequest{Cost: floatPtr(250)}); !hasRule(errs, "course_cost") {
		t.Errorf("cost 250 accepted: %v", errs)
	}
	if errs := bv.ValidateCourseUpdate(&CourseUpdateRequest{Cost: floatPtr(0)}); len(errs) == 0 {
		t.Error("cost 0 accepted")
	}
	if errs := bv.ValidateCourseUpdate(&CourseUpdateRequest{Name: strPtr("  ")}); len(errs) == 0 {
		t.Error("blank course name accepted")
	}
	if errs := bv.ValidateReviewUpdate(&ReviewUpdateRequest{Rating: floatPtr(3.2)}); !hasRule(errs, "whole_number") {
		t.Errorf("fractional rating accepted: %v", errs)
	}
	if errs := bv.ValidateReviewUpdate(&ReviewUpdateRequest{Comment: strPtr("")}); len(errs) != 0 {
		t.Errorf("empty comment update rejected: %v", errs)
	}
	errs := bv.ValidateProfileUpdate(&UpdateProfileRequest{Password: strPtr("Secret1"), ConfirmPassword: strPtr("Other1x")}, false)
	if !hasRule(errs, "eqfield") {
		t.Errorf("mismatched confirm accepted: %v", errs)
	}
}

func TestCourseCostBoundaries(t *testing.T) {
	bv := NewBusinessValidator()

	tests := []struct {
		name  string
		cost  float64
		valid bool
	}{
		{name: "lower bound", cost: 1, valid: true},
		{name: "upper bound", cost: 200, valid: true},
		{name: "inside range", cost: 99.5, valid: true},
		{name: "just below", cost: 0.99, valid: false},
		{name: "just above", cost: 200.01, valid: false},
		{name: "zero", cost: 0, valid: false},
		{name: "negative", cost: -5, valid: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			createErrs := bv.ValidateCourseCreate(&CourseCreateRequest{Name: "Optics", Cost: tt.cost})
			updateErrs := bv.ValidateCourseUpdate(&CourseUpdateRequest{Cost: floatPtr(tt.cost)})

			if tt.valid {
				if len(createErrs) != 0 {
					t.Errorf("create with cost %v rejected: %v", tt.cost, createErrs)
				}
				if len(updateErrs) != 0 {
					t.Errorf("update with cost %v rejected: %v", tt.cost, updateErrs)
				}
				return
			}
			if len(createErrs) == 0 {
				t.Errorf("create with cost %v accepted", tt.cost)
			}
			if !hasRule(updateErrs, "course_cost") {
				t.Errorf("update with cost %v accepted: %v", tt.cost, updateErrs)
			}
		})
	}
}
