package service

import (
	"strings"

	"ngo_erp_backend/internal/identity/catalog"
	"ngo_erp_backend/internal/registration/transport"
	"ngo_erp_backend/platform/phone"
)

const (
	msgOrganizationNameRequired = "organizationName is required"
	msgContactNameRequired      = "contactName is required"
	msgEmailRequired            = "email is required"
	msgPasswordRequired         = "password is required"
	msgModulesRequired          = "At least one module is required"
	msgTermsNotAccepted         = "termsAccepted must be true"

	defaultCurrency = "USD"
)

// Validate returns every violation of the registration input, in field order.
// An empty result means the request may proceed.
func Validate(req transport.RegisterRequest) []string {
	var violations []string
	if strings.TrimSpace(req.OrganizationName) == "" {
		violations = append(violations, msgOrganizationNameRequired)
	}
	if strings.TrimSpace(req.ContactName) == "" {
		violations = append(violations, msgContactNameRequired)
	}
	if strings.TrimSpace(req.Email) == "" {
		violations = append(violations, msgEmailRequired)
	}
	if req.Password == "" {
		violations = append(violations, msgPasswordRequired)
	}
	if len(req.Modules) == 0 {
		violations = append(violations, msgModulesRequired)
	}
	if req.TermsAccepted != nil && !*req.TermsAccepted {
		violations = append(violations, msgTermsNotAccepted)
	}
	return append(violations, req.Invalid...)
}

// Registration is a validated request with every field in its stored form.
type Registration struct {
	OrganizationName string
	ContactName      string
	Email            string
	Password         string
	OrganizationType string
	PrimaryCurrency  string
	Address          *string
	Phone            *string
	PricingPlan      string
	// Modules holds the recognized module keys plus the mandatory module.
	Modules []string
}

// Normalize converts a validated request into a Registration.
func Normalize(req transport.RegisterRequest) (Registration, error) {
	plan, err := catalog.ResolvePlan(req.PricingPlan)
	if err != nil {
		return Registration{}, err
	}

	currency := strings.ToUpper(strings.TrimSpace(req.PrimaryCurrency))
	if currency == "" {
		currency = defaultCurrency
	}

	return Registration{
		OrganizationName: strings.TrimSpace(req.OrganizationName),
		ContactName:      strings.TrimSpace(req.ContactName),
		Email:            strings.ToLower(strings.TrimSpace(req.Email)),
		Password:         req.Password,
		OrganizationType: normalizeOrganizationType(req.OrganizationType),
		PrimaryCurrency:  currency,
		Address:          optional(req.Address),
		Phone:            optional(phone.NormalizeE164(req.Phone)),
		PricingPlan:      plan.Key,
		Modules:          catalog.WithMandatory(catalog.NormalizeModules(req.Modules)),
	}, nil
}

func normalizeOrganizationType(raw string) string {
	if strings.EqualFold(strings.TrimSpace(raw), "donor") {
		return "Donor"
	}
	return "NGO"
}

func optional(s string) *string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
