package api

import (
	"github.com/propertyplus/propertyplus/internal/validation"
)

type AuthRegisterCodeRequest struct {
	Email string `json:"email"`
}

func (r *AuthRegisterCodeRequest) Validate() error {
	return validation.ValidateMailAddress(r.Email)
}

type AuthRegisterVerifyRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

func (r *AuthRegisterVerifyRequest) Validate() error {
	if err := validation.ValidateMailAddress(r.Email); err != nil {
		return err
	} else if r.Code == "" {
		return validation.NewValidationFailedError("code is empty")
	}
	return nil
}

type AuthRegistrationRequest struct {
	Email         string  `json:"email"`
	Code          string  `json:"code"`
	Name          string  `json:"name"`
	Password      string  `json:"password"`
	ContactNumber *string `json:"contactNumber,omitempty"`
	City          *string `json:"city,omitempty"`
	State         *string `json:"state,omitempty"`
}

func (r *AuthRegistrationRequest) Validate() error {
	if err := validation.ValidateMailAddress(r.Email); err != nil {
		return err
	} else if r.Name == "" {
		return validation.NewValidationFailedError("name is empty")
	} else if err := validation.ValidatePassword(r.Password); err != nil {
		return err
	}
	return nil
}

type AuthLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthLoginResponse struct {
	Token string              `json:"token"`
	User  UserAccountResponse `json:"user"`
}

type AuthPasswordResetCodeRequest struct {
	Email string `json:"email"`
}

func (r *AuthPasswordResetCodeRequest) Validate() error {
	return validation.ValidateMailAddress(r.Email)
}

type AuthPasswordResetVerifyRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

func (r *AuthPasswordResetVerifyRequest) Validate() error {
	if err := validation.ValidateMailAddress(r.Email); err != nil {
		return err
	} else if r.Code == "" {
		return validation.NewValidationFailedError("code is empty")
	}
	return nil
}

type AuthPasswordResetRequest struct {
	Email       string `json:"email"`
	Code        string `json:"code"`
	NewPassword string `json:"newPassword"`
}

func (r *AuthPasswordResetRequest) Validate() error {
	if err := validation.ValidateMailAddress(r.Email); err != nil {
		return err
	} else if r.Code == "" {
		return validation.NewValidationFailedError("code is empty")
	} else if err := validation.ValidatePassword(r.NewPassword); err != nil {
		return err
	}
	return nil
}
