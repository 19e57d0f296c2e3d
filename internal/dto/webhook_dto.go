package dto

import "encoding/json"

// ClerkEvent is the envelope of an identity-provider webhook delivery.
type ClerkEvent struct {
	Type   string          `json:"type"`
	Object string          `json:"object"`
	Data   json.RawMessage `json:"data"`
}

type ClerkUserData struct {
	ID                    string              `json:"id"`
	EmailAddresses        []ClerkEmailAddress `json:"email_addresses"`
	PrimaryEmailAddressID string              `json:"primary_email_address_id"`
	FirstName             *string             `json:"first_name"`
	LastName              *string             `json:"last_name"`
}

type ClerkEmailAddress struct {
	ID           string `json:"id"`
	EmailAddress string `json:"email_address"`
}

// PrimaryEmail picks the address named by PrimaryEmailAddressID, else the first.
func (d ClerkUserData) PrimaryEmail() string {
	for _, addr := range d.EmailAddresses {
		if addr.ID != "" && addr.ID == d.PrimaryEmailAddressID {
			return addr.EmailAddress
		}
	}
	if len(d.EmailAddresses) > 0 {
		return d.EmailAddresses[0].EmailAddress
	}
	return ""
}

type WebhookResult struct {
	Event     string `json:"event"`
	UserID    string `json:"user_id,omitempty"`
	Handled   bool   `json:"handled"`
	Duplicate bool   `json:"duplicate,omitempty"`
}
