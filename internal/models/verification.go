package models

import "encoding/json"

// Verification is the provider-asserted identity record embedded in a Resume.
// It is always written wholesale: a re-run or revoked verification never
// leaves fields from a previous attempt behind.
type Verification struct {
	IsVerified       bool         `bson:"is_verified" json:"is_verified"`
	VerifiedBy       string       `bson:"verified_by,omitempty" json:"verified_by,omitempty"` // digilocker|pan|phone_otp|email_otp|...
	VerificationDate string       `bson:"verification_date,omitempty" json:"verification_date,omitempty"`
	VerifiedFields   []string     `bson:"verified_fields" json:"verified_fields"`
	Confidence       float64      `bson:"confidence" json:"confidence"` // provider-supplied, 0..1
	VerifiedData     VerifiedData `bson:"verified_data" json:"verified_data"`

	// Opaque provider payload, persisted for audit only. Never interpreted.
	RawData json.RawMessage `bson:"raw_data,omitempty" json:"raw_data,omitempty"`
}

// VerifiedData carries the values the provider asserted for each field.
type VerifiedData struct {
	Name    string `bson:"name,omitempty" json:"name,omitempty"`
	Email   string `bson:"email,omitempty" json:"email,omitempty"`
	Phone   string `bson:"phone,omitempty" json:"phone,omitempty"`
	Aadhaar string `bson:"aadhaar,omitempty" json:"aadhaar,omitempty"`
	PAN     string `bson:"pan,omitempty" json:"pan,omitempty"`
	Address string `bson:"address,omitempty" json:"address,omitempty"`
}

// FieldValue returns the asserted value for a verified field name, or "" when
// the provider asserted nothing for it.
func (d VerifiedData) FieldValue(field string) string {
	switch field {
	case "name":
		return d.Name
	case "email":
		return d.Email
	case "phone":
		return d.Phone
	case "aadhaar":
		return d.Aadhaar
	case "pan":
		return d.PAN
	case "address":
		return d.Address
	default:
		return ""
	}
}
