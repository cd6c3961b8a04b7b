package handler

import (
	"strings"
	"time"

	locmodels "vecinal/internal/location/models"
	"vecinal/internal/member/models"
	"vecinal/internal/member/service"
	dErrors "vecinal/pkg/domain-errors"
)

// RegisterRequest is the body for POST /members/register. The same shape
// arrives as JSON or as multipart form fields (multipart carries the photo).
type RegisterRequest struct {
	FirstName               string             `json:"firstName"`
	LastName                string             `json:"lastName"`
	IDCard                  string             `json:"idCard"`
	IDCardExtension         string             `json:"idCardExtension"`
	BirthDate               string             `json:"birthDate"`
	Gender                  string             `json:"gender"`
	PhoneNumber             string             `json:"phoneNumber"`
	Location                locmodels.Location `json:"location"`
	NeighborhoodCouncilName string             `json:"neighborhoodCouncilName"`
	CouncilRoleCode         int                `json:"councilRoleCode"`

	parsedBirthDate time.Time
}

// Validate checks required fields and parses the birth date. Location
// completeness and hierarchy are the service's concern.
func (r *RegisterRequest) Validate() error {
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	r.IDCard = strings.TrimSpace(r.IDCard)
	r.IDCardExtension = strings.ToUpper(strings.TrimSpace(r.IDCardExtension))
	r.PhoneNumber = strings.TrimSpace(r.PhoneNumber)
	r.NeighborhoodCouncilName = strings.TrimSpace(r.NeighborhoodCouncilName)

	switch {
	case r.FirstName == "":
		return dErrors.New(dErrors.CodeBadRequest, "firstName is required")
	case r.LastName == "":
		return dErrors.New(dErrors.CodeBadRequest, "lastName is required")
	case r.IDCard == "":
		return dErrors.New(dErrors.CodeBadRequest, "idCard is required")
	case r.IDCardExtension == "":
		return dErrors.New(dErrors.CodeBadRequest, "idCardExtension is required")
	case r.PhoneNumber == "":
		return dErrors.New(dErrors.CodeBadRequest, "phoneNumber is required")
	case r.NeighborhoodCouncilName == "":
		return dErrors.New(dErrors.CodeBadRequest, "neighborhoodCouncilName is required")
	case r.BirthDate == "":
		return dErrors.New(dErrors.CodeBadRequest, "birthDate is required")
	}

	parsed, err := time.Parse("2006-01-02", r.BirthDate)
	if err != nil {
		return dErrors.New(dErrors.CodeBadRequest, "birthDate must be YYYY-MM-DD")
	}
	r.parsedBirthDate = parsed
	return nil
}

// Input converts the request into the service input.
func (r *RegisterRequest) Input() service.RegisterInput {
	return service.RegisterInput{
		FirstName:               r.FirstName,
		LastName:                r.LastName,
		IDCard:                  r.IDCard,
		IDCardExtension:         r.IDCardExtension,
		BirthDate:               r.parsedBirthDate,
		Gender:                  r.Gender,
		PhoneNumber:             r.PhoneNumber,
		Location:                r.Location,
		NeighborhoodCouncilName: r.NeighborhoodCouncilName,
		CouncilRoleCode:         r.CouncilRoleCode,
	}
}

// StatusRequest is the body for PUT /members/{code}/status.
type StatusRequest struct {
	Status string `json:"status"`

	parsedStatus models.Status
}

func (r *StatusRequest) Validate() error {
	status, ok := models.ParseStatus(strings.ToUpper(strings.TrimSpace(r.Status)))
	if !ok {
		return dErrors.Newf(dErrors.CodeBadRequest, "unknown status %q", r.Status)
	}
	r.parsedStatus = status
	return nil
}

// ParsedStatus returns the validated status.
func (r *StatusRequest) ParsedStatus() models.Status {
	return r.parsedStatus
}
