// Package models defines the membership registry records and their status
// machine.
package models

import (
	"crypto/rand"
	"fmt"
	"time"

	locmodels "vecinal/internal/location/models"
)

// Status is the verification state of a member record.
type Status string

const (
	StatusPending  Status = "PENDING"
	StatusVerified Status = "VERIFIED"
	StatusRejected Status = "REJECTED"
	StatusInactive Status = "INACTIVE"
)

// ParseStatus validates an incoming status value.
func ParseStatus(raw string) (Status, bool) {
	switch Status(raw) {
	case StatusPending, StatusVerified, StatusRejected, StatusInactive:
		return Status(raw), true
	}
	return "", false
}

// CanTransitionTo reports whether the edge s -> target is in the allowed
// set. REJECTED and INACTIVE are terminal.
func (s Status) CanTransitionTo(target Status) bool {
	switch s {
	case StatusPending:
		return target == StatusVerified || target == StatusRejected
	case StatusVerified:
		return target == StatusInactive
	}
	return false
}

// Member is one citizen registration. RegistrationCode is the public,
// immutable handle used later to link the record to a login account; the
// database identifier never leaves the store layer.
type Member struct {
	ID                      string             `json:"id"`
	RegistrationCode        string             `json:"registrationCode"`
	FirstName               string             `json:"firstName"`
	LastName                string             `json:"lastName"`
	IDCard                  string             `json:"idCard"`
	IDCardExtension         string             `json:"idCardExtension"`
	BirthDate               time.Time          `json:"birthDate"`
	Gender                  string             `json:"gender,omitempty"`
	PhoneNumber             string             `json:"phoneNumber"`
	Location                locmodels.Location `json:"location"`
	NeighborhoodCouncilName string             `json:"neighborhoodCouncilName"`
	CouncilRoleCode         int                `json:"councilRoleCode,omitempty"`
	PhotoURL                string             `json:"photoUrl,omitempty"`
	Status                  Status             `json:"status"`
	LinkedUserID            string             `json:"linkedUserId,omitempty"`
	CreatedAt               time.Time          `json:"createdAt"`
	UpdatedAt               time.Time          `json:"updatedAt"`
}

// Enriched is a Member whose location carries resolved display names.
type Enriched struct {
	Member
	Location locmodels.Enriched `json:"location"`
}

const registrationCodeAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// NewRegistrationCode generates the public member handle: "CON-" followed by
// ten characters of [0-9A-Z]. Uniqueness is enforced by the store on insert.
func NewRegistrationCode() (string, error) {
	buf := make([]byte, 10)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate registration code: %w", err)
	}
	for i, b := range buf {
		buf[i] = registrationCodeAlphabet[int(b)%len(registrationCodeAlphabet)]
	}
	return "CON-" + string(buf), nil
}

// CouncilRole is a catalog entry for positions inside a neighborhood
// council directive board. Order drives display in listings.
type CouncilRole struct {
	Code  int    `json:"code"`
	Name  string `json:"name"`
	Order int    `json:"order"`
}

// CouncilRoles is the fixed catalog registrations validate against. The
// codes and names are the standing directiva positions.
var CouncilRoles = []CouncilRole{
	{Code: 1, Name: "Presidente", Order: 1},
	{Code: 2, Name: "Vicepresidente", Order: 2},
	{Code: 3, Name: "Strio. General", Order: 3},
	{Code: 4, Name: "Stria. De Relaciones", Order: 4},
	{Code: 5, Name: "Strio. De Organización", Order: 5},
	{Code: 6, Name: "Strio. De Conflictos", Order: 6},
	{Code: 7, Name: "Strio. De Actas", Order: 7},
	{Code: 8, Name: "Stria. De Hacienda", Order: 8},
	{Code: 9, Name: "Stria. Desarrollo Económico Productivo", Order: 9},
	{Code: 10, Name: "Strio. De Deportes", Order: 10},
	{Code: 11, Name: "Strio. De Juventudes", Order: 11},
	{Code: 12, Name: "Strio. De Educación y Cultura", Order: 12},
	{Code: 13, Name: "Strio. De Vivienda", Order: 13},
	{Code: 14, Name: "Stria. De Genero y Generación", Order: 14},
	{Code: 15, Name: "Stria. De Defenza Cívico Vecinal", Order: 15},
	{Code: 16, Name: "Strio. De Seguridad Ciudadana", Order: 16},
	{Code: 17, Name: "Strio. De Salud", Order: 17},
	{Code: 18, Name: "Strio. De Estadística", Order: 18},
	{Code: 19, Name: "Strio. De Medio Ambiente y Recursos Naturales", Order: 19},
	{Code: 20, Name: "Vocal", Order: 20},
}

// ValidCouncilRole reports whether code names a catalog entry. Zero is
// valid; the role is optional at registration.
func ValidCouncilRole(code int) bool {
	if code == 0 {
		return true
	}
	for _, r := range CouncilRoles {
		if r.Code == code {
			return true
		}
	}
	return false
}
