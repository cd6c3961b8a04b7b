package handler

import (
	"net/mail"
	"strings"
	"time"

	locmodels "vecinal/internal/location/models"
	"vecinal/internal/user/service"
	dErrors "vecinal/pkg/domain-errors"
)

const minPasswordLength = 8

// RegisterRequest is the body for POST /auth/register.
type RegisterRequest struct {
	Name        string             `json:"name"`
	Username    string             `json:"username"`
	Email       string             `json:"email"`
	Password    string             `json:"password"`
	Location    locmodels.Location `json:"location"`
	BirthDate   string             `json:"birthDate"`
	Gender      string             `json:"gender"`
	IDCard      string             `json:"idCard"`
	PhoneNumber string             `json:"phoneNumber"`

	parsedBirthDate *time.Time
}

func (r *RegisterRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	r.Username = strings.ToLower(strings.TrimSpace(r.Username))
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))

	switch {
	case r.Name == "":
		return dErrors.New(dErrors.CodeBadRequest, "name is required")
	case r.Username == "":
		return dErrors.New(dErrors.CodeBadRequest, "username is required")
	case r.Email == "":
		return dErrors.New(dErrors.CodeBadRequest, "email is required")
	case r.Password == "":
		return dErrors.New(dErrors.CodeBadRequest, "password is required")
	}
	if _, err := mail.ParseAddress(r.Email); err != nil {
		return dErrors.New(dErrors.CodeBadRequest, "email is not a valid address")
	}
	if len(r.Password) < minPasswordLength {
		return dErrors.Newf(dErrors.CodeBadRequest, "password must be at least %d characters", minPasswordLength)
	}
	if r.BirthDate != "" {
		parsed, err := time.Parse("2006-01-02", r.BirthDate)
		if err != nil {
			return dErrors.New(dErrors.CodeBadRequest, "birthDate must be YYYY-MM-DD")
		}
		r.parsedBirthDate = &parsed
	}
	return nil
}

// Input converts the request into the service input.
func (r *RegisterRequest) Input() service.RegisterInput {
	return service.RegisterInput{
		Name:        r.Name,
		Username:    r.Username,
		Email:       r.Email,
		Password:    r.Password,
		Location:    r.Location,
		BirthDate:   r.parsedBirthDate,
		Gender:      strings.TrimSpace(r.Gender),
		IDCard:      strings.TrimSpace(r.IDCard),
		PhoneNumber: strings.TrimSpace(r.PhoneNumber),
	}
}

// LoginRequest is the body for POST /auth/login. Login matches either the
// username or the email.
type LoginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

func (r *LoginRequest) Validate() error {
	r.Login = strings.ToLower(strings.TrimSpace(r.Login))
	if r.Login == "" {
		return dErrors.New(dErrors.CodeBadRequest, "login is required")
	}
	if r.Password == "" {
		return dErrors.New(dErrors.CodeBadRequest, "password is required")
	}
	return nil
}

// LocationRequest is the body for PUT /users/me/location.
type LocationRequest struct {
	locmodels.Location
}

func (r *LocationRequest) Validate() error {
	r.Zone = strings.TrimSpace(r.Zone)
	r.Barrio = strings.TrimSpace(r.Barrio)
	return nil
}

// LinkRequest is the body for PUT /users/me/link-member.
type LinkRequest struct {
	RegistrationCode string `json:"registrationCode"`
}

func (r *LinkRequest) Validate() error {
	r.RegistrationCode = strings.ToUpper(strings.TrimSpace(r.RegistrationCode))
	if r.RegistrationCode == "" {
		return dErrors.New(dErrors.CodeBadRequest, "registrationCode is required")
	}
	return nil
}

// RoleRequest is the body for PUT /users/{id}/role.
type RoleRequest struct {
	Role string `json:"role"`
}

func (r *RoleRequest) Validate() error {
	r.Role = strings.ToUpper(strings.TrimSpace(r.Role))
	if r.Role == "" {
		return dErrors.New(dErrors.CodeBadRequest, "role is required")
	}
	return nil
}
