// Package transport contains the pharmacies module's request and response
// DTOs.
package transport

import "github.com/google/uuid"

// CreatePharmacyRequest is the payload for creating a pharmacy.
type CreatePharmacyRequest struct {
	Name            string `json:"name" validate:"required,min=2,max=200"`
	Address         string `json:"address" validate:"required,min=5,max=300"`
	FacebookPageID  string `json:"facebookPageId" validate:"required"`
	PageAccessToken string `json:"pageAccessToken" validate:"required"`
	DutyAPIToken    string `json:"dutyApiToken"`
	APIMode         string `json:"apiMode" validate:"omitempty,oneof=public private"`
	Weekday         int    `json:"weekday" validate:"min=0,max=6"`
	Frequency       string `json:"frequency" validate:"omitempty,oneof=weekly biweekly"`
	RadiusKm        int    `json:"radiusKm" validate:"omitempty,min=1,max=35"`
}

// UpdatePharmacyRequest is the payload for partially updating a pharmacy.
type UpdatePharmacyRequest struct {
	Name            *string `json:"name" validate:"omitempty,min=2,max=200"`
	Address         *string `json:"address" validate:"omitempty,min=5,max=300"`
	FacebookPageID  *string `json:"facebookPageId"`
	PageAccessToken *string `json:"pageAccessToken"`
	DutyAPIToken    *string `json:"dutyApiToken"`
	APIMode         *string `json:"apiMode" validate:"omitempty,oneof=public private"`
	Weekday         *int    `json:"weekday" validate:"omitempty,min=0,max=6"`
	Frequency       *string `json:"frequency" validate:"omitempty,oneof=weekly biweekly"`
	RadiusKm        *int    `json:"radiusKm" validate:"omitempty,min=1,max=35"`
}

// PharmacyResponse is the API representation of a pharmacy. Tokens are never
// returned, only whether they are set.
type PharmacyResponse struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	Address        string    `json:"address"`
	Latitude       *float64  `json:"latitude"`
	Longitude      *float64  `json:"longitude"`
	FacebookPageID string    `json:"facebookPageId"`
	HasPageToken   bool      `json:"hasPageToken"`
	HasDutyToken   bool      `json:"hasDutyToken"`
	APIMode        string    `json:"apiMode"`
	Weekday        int       `json:"weekday"`
	Frequency      string    `json:"frequency"`
	RadiusKm       int       `json:"radiusKm"`
	CreatedAt      string    `json:"createdAt"`
	UpdatedAt      string    `json:"updatedAt"`
}

// ListPharmaciesResponse wraps the pharmacy collection.
type ListPharmaciesResponse struct {
	Pharmacies []PharmacyResponse `json:"pharmacies"`
	Total      int                `json:"total"`
}
