package models

import (
	"strings"

	"github.com/google/uuid"

	dErrors "github.com/devifer12/TableGenie/pkg/domain-errors"
	"github.com/devifer12/TableGenie/pkg/email"
)

// SubmitRestaurantRequest carries the step 1 facts.
type SubmitRestaurantRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address,omitempty"`
}

// Normalize trims whitespace and canonicalizes the email.
func (r *SubmitRestaurantRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = email.Normalize(r.Email)
	r.Phone = strings.TrimSpace(r.Phone)
	r.Address = strings.TrimSpace(r.Address)
}

// Validate fails fast before any write.
func (r *SubmitRestaurantRequest) Validate() error {
	if r.Name == "" {
		return dErrors.New(dErrors.CodeValidation, "name is required")
	}
	if r.Email == "" {
		return dErrors.New(dErrors.CodeValidation, "email is required")
	}
	if !email.IsValid(r.Email) {
		return dErrors.New(dErrors.CodeValidation, "email is not a valid address")
	}
	if r.Phone == "" {
		return dErrors.New(dErrors.CodeValidation, "phone is required")
	}
	return nil
}

// SubmitRestaurantResult echoes the token value the client must present on
// the next step.
type SubmitRestaurantResult struct {
	TempToken    string    `json:"temp_token"`
	RestaurantID uuid.UUID `json:"restaurant_id"`
}

// VerifyCodeRequest carries the step 2 inputs.
type VerifyCodeRequest struct {
	TempToken string `json:"temp_token"`
	Code      string `json:"code"`
}

func (r *VerifyCodeRequest) Normalize() {
	r.TempToken = strings.TrimSpace(r.TempToken)
	r.Code = strings.TrimSpace(r.Code)
}

func (r *VerifyCodeRequest) Validate() error {
	if r.TempToken == "" {
		return dErrors.New(dErrors.CodeValidation, "temp_token is required")
	}
	if r.Code == "" {
		return dErrors.New(dErrors.CodeValidation, "code is required")
	}
	return nil
}

// VerifyCodeResult returns the token that authorizes step 3. The value equals
// the submitted one (promotion is an in-place flag flip); the distinct field
// keeps the client contract explicit.
type VerifyCodeResult struct {
	VerifiedToken string `json:"verified_token"`
}

// CompleteRegistrationRequest carries the step 3 inputs.
type CompleteRegistrationRequest struct {
	TempToken   string      `json:"temp_token"`
	Name        string      `json:"name"`
	Designation Designation `json:"designation"`
}

func (r *CompleteRegistrationRequest) Normalize() {
	r.TempToken = strings.TrimSpace(r.TempToken)
	r.Name = strings.TrimSpace(r.Name)
	r.Designation = Designation(strings.TrimSpace(string(r.Designation)))
}

func (r *CompleteRegistrationRequest) Validate() error {
	if r.TempToken == "" {
		return dErrors.New(dErrors.CodeValidation, "temp_token is required")
	}
	if r.Name == "" {
		return dErrors.New(dErrors.CodeValidation, "name is required")
	}
	if !r.Designation.Valid() {
		return dErrors.New(dErrors.CodeValidation, "designation must be one of the accepted values")
	}
	return nil
}

// PublicUser is the user trimmed to fields safe for API responses.
type PublicUser struct {
	ID          uuid.UUID   `json:"id"`
	Name        string      `json:"name"`
	Designation Designation `json:"designation"`
	Email       string      `json:"email"`
}

// PublicRestaurant is the restaurant trimmed to fields safe for API responses.
type PublicRestaurant struct {
	ID     uuid.UUID        `json:"id"`
	Name   string           `json:"name"`
	Email  string           `json:"email"`
	Phone  string           `json:"phone"`
	Status RestaurantStatus `json:"status"`
}

// CompleteRegistrationResult is the step 3 success payload.
type CompleteRegistrationResult struct {
	SessionToken string           `json:"session_token"`
	User         PublicUser       `json:"user"`
	Restaurant   PublicRestaurant `json:"restaurant"`
}

// PublicUserOf trims a user for API responses.
func PublicUserOf(u *User) PublicUser {
	return PublicUser{ID: u.ID, Name: u.Name, Designation: u.Designation, Email: u.Email}
}

// PublicRestaurantOf trims a restaurant for API responses.
func PublicRestaurantOf(r *Restaurant) PublicRestaurant {
	return PublicRestaurant{ID: r.ID, Name: r.Name, Email: r.Email, Phone: r.Phone, Status: r.Status}
}
