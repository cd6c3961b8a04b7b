// Package models defines portal account records.
package models

import (
	"time"

	locmodels "vecinal/internal/location/models"
)

// Account roles. ADMIN implies STAFF access throughout the portal.
const (
	RoleUser  = "USER"
	RoleStaff = "STAFF"
	RoleAdmin = "ADMIN"
)

// ParseRole validates an incoming role value.
func ParseRole(raw string) (string, bool) {
	switch raw {
	case RoleUser, RoleStaff, RoleAdmin:
		return raw, true
	}
	return "", false
}

// User is one portal account. Username and Email are stored lowercased and
// are each unique across accounts. MemberRegistrationCode is set once the
// account is linked to a verified member record.
type User struct {
	ID                     string             `json:"id"`
	Name                   string             `json:"name"`
	Username               string             `json:"username"`
	Email                  string             `json:"email"`
	PasswordHash           string             `json:"-"`
	Role                   string             `json:"role"`
	IsActive               bool               `json:"isActive"`
	BirthDate              *time.Time         `json:"birthDate,omitempty"`
	Gender                 string             `json:"gender,omitempty"`
	IDCard                 string             `json:"idCard,omitempty"`
	PhoneNumber            string             `json:"phoneNumber,omitempty"`
	ProfilePictureURL      string             `json:"profilePictureUrl,omitempty"`
	Location               locmodels.Location `json:"location"`
	MemberRegistrationCode string             `json:"memberRegistrationCode,omitempty"`
	CreatedAt              time.Time          `json:"createdAt"`
	UpdatedAt              time.Time          `json:"updatedAt"`
}

// Enriched is a User with location display names resolved.
type Enriched struct {
	User
	Location locmodels.Enriched `json:"location"`
}
