package transport

import "encoding/json"

// RegisterRequest is the self-service tenant registration payload.
// TermsAccepted is a pointer so that an omitted field can be told apart
// from an explicit false.
type RegisterRequest struct {
	OrganizationName string   `json:"organizationName"`
	ContactName      string   `json:"contactName"`
	Email            string   `json:"email"`
	Password         string   `json:"password"`
	Modules          []string `json:"modules"`
	TermsAccepted    *bool    `json:"termsAccepted"`
	OrganizationType string   `json:"organizationType"`
	Address          string   `json:"address"`
	PrimaryCurrency  string   `json:"primaryCurrency"`
	Phone            string   `json:"phone"`
	PricingPlan      string   `json:"pricingPlan"`

	// Invalid lists optional fields that arrived with the wrong JSON type.
	Invalid []string `json:"-"`
}

// UnmarshalJSON decodes field by field so that a wrong-typed value becomes a
// validation violation instead of failing the whole body. A mistyped required
// field is left empty, a mistyped termsAccepted counts as not accepted.
func (r *RegisterRequest) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	*r = RegisterRequest{}
	r.OrganizationName = r.text(fields, "organizationName", true)
	r.ContactName = r.text(fields, "contactName", true)
	r.Email = r.text(fields, "email", true)
	r.Password = r.text(fields, "password", true)
	r.OrganizationType = r.text(fields, "organizationType", false)
	r.Address = r.text(fields, "address", false)
	r.PrimaryCurrency = r.text(fields, "primaryCurrency", false)
	r.Phone = r.text(fields, "phone", false)
	r.PricingPlan = r.text(fields, "pricingPlan", false)

	if raw, ok := fields["modules"]; ok {
		if err := json.Unmarshal(raw, &r.Modules); err != nil {
			r.Modules = nil
		}
	}
	if raw, ok := fields["termsAccepted"]; ok {
		var accepted *bool
		if err := json.Unmarshal(raw, &accepted); err != nil {
			rejected := false
			accepted = &rejected
		}
		r.TermsAccepted = accepted
	}
	return nil
}

func (r *RegisterRequest) text(fields map[string]json.RawMessage, key string, required bool) string {
	raw, ok := fields[key]
	if !ok {
		return ""
	}
	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		if !required {
			r.Invalid = append(r.Invalid, key+" must be a string")
		}
		return ""
	}
	return value
}

type RegisterResponse struct {
	Success bool   `json:"success"`
	OrgID   string `json:"orgId"`
	UserID  string `json:"userId"`
}
