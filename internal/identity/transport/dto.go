package transport

import "time"

type OrganizationResponse struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Type            string    `json:"type"`
	PrimaryCurrency string    `json:"primaryCurrency"`
	Address         *string   `json:"address,omitempty"`
	Phone           *string   `json:"phone,omitempty"`
	PricingPlan     string    `json:"pricingPlan"`
	CreatedAt       time.Time `json:"createdAt"`
}

type MyOrganizationResponse struct {
	Success      bool                 `json:"success"`
	Organization OrganizationResponse `json:"organization"`
	Role         string               `json:"role"`
	Modules      []string             `json:"modules"`
}
